package regions

import (
	"regionck/internal/ast"
	"regionck/internal/source"
	"regionck/internal/symbols"
	"regionck/internal/types"
)

// FunctionContext is what the region operations need from the checker of
// the enclosing function body.
type FunctionContext interface {
	Aborter

	Types() *types.Interner
	Exprs() *ast.Exprs
	Strings() *source.Interner

	// FreshRegionVar allocates a globally unique inference variable.
	FreshRegionVar() types.Region

	// LookupScope maps an expression or binding node to its innermost scope.
	LookupScope(node ast.NodeID) (symbols.ScopeID, bool)
	// LookupDef resolves a path expression to its definition.
	LookupDef(expr ast.ExprID) (*symbols.Symbol, bool)
	// LookupSymbol returns a definition by id; used to follow upvar captures.
	LookupSymbol(id symbols.SymbolID) (*symbols.Symbol, bool)
	// BindingNode returns the node of a declaration site.
	BindingNode(id ast.BindingID) (ast.NodeID, bool)

	// SelfRegion is the receiver region when checking a method body.
	SelfRegion() (types.Region, bool)
	// ExprType is the already-resolved type of expr.
	ExprType(expr ast.ExprID) (types.TypeID, bool)
}
