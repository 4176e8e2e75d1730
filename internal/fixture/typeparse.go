package fixture

import (
	"fmt"

	"regionck/internal/diag"
	"regionck/internal/source"
	"regionck/internal/types"
)

// typeEnv holds the names a scenario file declares at top level.
type typeEnv struct {
	types   *types.Interner
	strings *source.Interner
	structs map[string]uint32
	aliases map[string]types.TypeID
}

func newTypeEnv(in *types.Interner, strs *source.Interner) *typeEnv {
	return &typeEnv{
		types:   in,
		strings: strs,
		structs: make(map[string]uint32),
		aliases: make(map[string]types.TypeID),
	}
}

var primitives = map[string]types.Type{
	"bool":    {Kind: types.KindBool},
	"string":  {Kind: types.KindString},
	"int":     types.MakeInt(types.WidthAny),
	"int8":    types.MakeInt(types.Width8),
	"int16":   types.MakeInt(types.Width16),
	"int32":   types.MakeInt(types.Width32),
	"int64":   types.MakeInt(types.Width64),
	"uint":    types.MakeUint(types.WidthAny),
	"uint8":   types.MakeUint(types.Width8),
	"uint16":  types.MakeUint(types.Width16),
	"uint32":  types.MakeUint(types.Width32),
	"uint64":  types.MakeUint(types.Width64),
	"float":   types.MakeFloat(types.WidthAny),
	"float32": types.MakeFloat(types.Width32),
	"float64": types.MakeFloat(types.Width64),
}

// ParseType parses a complete type snippet.
func (e *typeEnv) ParseType(text string, base source.Span, r diag.Reporter) (types.TypeID, bool) {
	p := newParser(text, base, e, r)
	ty, ok := p.parseType()
	if !ok || !p.finish(diag.FixBadType) {
		return types.NoTypeID, false
	}
	return ty, true
}

// ParseRegion parses a complete region snippet.
func (e *typeEnv) ParseRegion(text string, base source.Span, r diag.Reporter) (types.Region, bool) {
	p := newParser(text, base, e, r)
	region, ok := p.parseRegion()
	if !ok || !p.finish(diag.FixBadRegion) {
		return types.Region{}, false
	}
	return region, true
}

// parseType распознаёт типы:
//
//	&'r T, &'r mut T, &T, *T, box T, own T (префиксы)
//	[T], [T; N], (), (T,), (T, U), !, fn(T, U) -> R
//	примитивы, Name<'r, T>, алиасы
func (p *parser) parseType() (types.TypeID, bool) {
	in := p.env.types
	tok := p.peek()
	switch {
	case p.eat("&"):
		region := types.MakeBound(types.AnonBound())
		if p.peek().Kind == tokLifetime {
			var ok bool
			if region, ok = p.parseRegion(); !ok {
				return types.NoTypeID, false
			}
		}
		mutable := p.eat("mut")
		elem, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		return in.Intern(types.MakeReference(region, elem, mutable)), true

	case p.eat("*"):
		elem, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		return in.Intern(types.MakePointer(elem)), true

	case p.at("box") || p.at("own"):
		kw := p.advance().Text
		elem, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		if kw == "box" {
			return in.Intern(types.MakeBox(elem)), true
		}
		return in.Intern(types.MakeOwn(elem)), true

	case p.eat("["):
		elem, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		count := types.ArrayDynamicLength
		if p.eat(";") {
			if count, ok = p.parseUint32(diag.FixBadType); !ok {
				return types.NoTypeID, false
			}
		}
		if !p.expect(diag.FixBadType, "]") {
			return types.NoTypeID, false
		}
		return in.Intern(types.MakeArray(elem, count)), true

	case p.eat("("):
		return p.parseTupleRest()

	case p.eat("!"):
		return in.Builtins().Nothing, true

	case p.eat("fn"):
		return p.parseFnRest()

	case tok.Kind == tokIdent:
		p.advance()
		return p.parseNamedType(tok)

	default:
		p.errAt(diag.FixBadType, tok.Span, fmt.Sprintf("expected type, got %s", describe(tok)))
		return types.NoTypeID, false
	}
}

// parseTupleRest разбирает всё после '(': (), (T), (T,), (T, U, ...).
func (p *parser) parseTupleRest() (types.TypeID, bool) {
	if p.eat(")") {
		return p.env.types.Builtins().Unit, true
	}
	var elems []types.TypeID
	trailing := false
	for {
		elem, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		elems = append(elems, elem)
		trailing = p.eat(",")
		if !trailing || p.at(")") {
			break
		}
	}
	if !p.expect(diag.FixBadType, ")") {
		return types.NoTypeID, false
	}
	if len(elems) == 1 && !trailing {
		return elems[0], true
	}
	return p.env.types.RegisterTuple(elems), true
}

func (p *parser) parseFnRest() (types.TypeID, bool) {
	if !p.expect(diag.FixBadType, "(") {
		return types.NoTypeID, false
	}
	var params []types.TypeID
	for !p.at(")") {
		param, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		params = append(params, param)
		if !p.eat(",") {
			break
		}
	}
	if !p.expect(diag.FixBadType, ")") {
		return types.NoTypeID, false
	}
	result := p.env.types.Builtins().Unit
	if p.eat("->") {
		var ok bool
		if result, ok = p.parseType(); !ok {
			return types.NoTypeID, false
		}
	}
	return p.env.types.RegisterFn(params, result), true
}

func (p *parser) parseNamedType(name token) (types.TypeID, bool) {
	in := p.env.types
	if prim, ok := primitives[name.Text]; ok {
		return in.Intern(prim), true
	}
	if alias, ok := p.env.aliases[name.Text]; ok {
		return alias, true
	}
	decl, ok := p.env.structs[name.Text]
	if !ok {
		p.errAt(diag.FixUnknownStruct, name.Span, fmt.Sprintf("unknown type %q", name.Text))
		return types.NoTypeID, false
	}

	var regions []types.Region
	var args []types.TypeID
	if p.eat("<") {
		for !p.at(">") {
			if p.peek().Kind == tokLifetime {
				r, ok := p.parseRegion()
				if !ok {
					return types.NoTypeID, false
				}
				regions = append(regions, r)
			} else {
				arg, ok := p.parseType()
				if !ok {
					return types.NoTypeID, false
				}
				args = append(args, arg)
			}
			if !p.eat(",") {
				break
			}
		}
		if !p.expect(diag.FixBadType, ">") {
			return types.NoTypeID, false
		}
	}

	info, _ := in.StructDecl(decl)
	if len(regions) != len(info.RegionParams) {
		p.errAt(diag.FixBadType, name.Span, fmt.Sprintf("%s expects %d region arguments, got %d", name.Text, len(info.RegionParams), len(regions)))
		return types.NoTypeID, false
	}
	return in.RegisterStruct(decl, regions, args), true
}
