package symbols

import (
	"regionck/internal/ast"
	"regionck/internal/source"
)

// SymbolKind classifies what a path resolves to.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolLocal
	SymbolParam
	SymbolBinding
	SymbolUpvar
	SymbolSelf
	SymbolFunction
	SymbolModule
	SymbolExternModule
	SymbolConst
	SymbolImport
	SymbolVariant
	SymbolType
	SymbolPrimType
	SymbolTypeParam
	SymbolClass
	SymbolRegion
)

var symbolKindNames = [...]string{
	SymbolInvalid:      "invalid",
	SymbolLocal:        "local",
	SymbolParam:        "param",
	SymbolBinding:      "binding",
	SymbolUpvar:        "upvar",
	SymbolSelf:         "self",
	SymbolFunction:     "fn",
	SymbolModule:       "mod",
	SymbolExternModule: "extern_mod",
	SymbolConst:        "const",
	SymbolImport:       "use",
	SymbolVariant:      "variant",
	SymbolType:         "ty",
	SymbolPrimType:     "prim_ty",
	SymbolTypeParam:    "ty_param",
	SymbolClass:        "class",
	SymbolRegion:       "region",
}

func (k SymbolKind) String() string {
	if int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}
	return "invalid"
}

// ParseSymbolKind is the inverse of String.
func ParseSymbolKind(s string) (SymbolKind, bool) {
	for i, name := range symbolKindNames {
		if i != int(SymbolInvalid) && name == s {
			return SymbolKind(i), true
		}
	}
	return SymbolInvalid, false
}

// IsLocalStorage reports kinds whose storage lives in a lexical scope of the
// current function (locals, params, pattern bindings).
func (k SymbolKind) IsLocalStorage() bool {
	switch k {
	case SymbolLocal, SymbolParam, SymbolBinding:
		return true
	default:
		return false
	}
}

// Symbol is the definition a path expression resolves to.
type Symbol struct {
	Name source.StringID
	Kind SymbolKind
	Span source.Span
	// Binding is the declaration node for locals, params and pattern bindings.
	Binding ast.BindingID
	// Captured is the outer definition an upvar refers to.
	Captured SymbolID
}
