package types

import (
	"fmt"
	"strings"

	"regionck/internal/source"
)

// Printer renders types and regions in the notation accepted by scenario
// files. An alias whose target carries regions prints as `Name = target`.
// Strings may be nil, in which case names print as #id.
type Printer struct {
	Types   *Interner
	Strings *source.Interner
}

func (p Printer) name(id source.StringID) string {
	if p.Strings != nil {
		if s, ok := p.Strings.Lookup(id); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("#%d", id)
}

// BoundString renders a bound region name including the leading quote.
func (p Printer) BoundString(br BoundRegion) string {
	switch br.Kind {
	case BoundNamed:
		return "'" + p.name(br.Name)
	case BoundSelf:
		return "'self"
	default:
		return "'&"
	}
}

// RegionString renders r.
func (p Printer) RegionString(r Region) string {
	switch r.Kind {
	case RegionStatic:
		return "'static"
	case RegionScope:
		return fmt.Sprintf("'scope(%d)", r.Scope)
	case RegionFree:
		return fmt.Sprintf("'free(%d,%s)", r.Scope, p.BoundString(r.Bound))
	case RegionBound:
		return p.BoundString(r.Bound)
	case RegionVar:
		return fmt.Sprintf("'?%d", r.Var)
	default:
		return "'<invalid>"
	}
}

// TypeString renders id.
func (p Printer) TypeString(id TypeID) string {
	var sb strings.Builder
	p.writeType(&sb, id)
	return sb.String()
}

func (p Printer) writeType(sb *strings.Builder, id TypeID) {
	if p.Types == nil {
		sb.WriteString("<?>")
		return
	}
	tt, ok := p.Types.Lookup(id)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindUnit:
		sb.WriteString("()")
	case KindNothing:
		sb.WriteString("!")
	case KindBool:
		sb.WriteString("bool")
	case KindString:
		sb.WriteString("string")
	case KindInt, KindUint, KindFloat:
		sb.WriteString(tt.Kind.String())
		if tt.Width != WidthAny {
			fmt.Fprintf(sb, "%d", tt.Width)
		}
	case KindArray:
		sb.WriteByte('[')
		p.writeType(sb, tt.Elem)
		if tt.Count != ArrayDynamicLength {
			fmt.Fprintf(sb, "; %d", tt.Count)
		}
		sb.WriteByte(']')
	case KindPointer:
		sb.WriteByte('*')
		p.writeType(sb, tt.Elem)
	case KindReference:
		sb.WriteByte('&')
		if !(tt.Region.Kind == RegionBound && tt.Region.Bound.Kind == BoundAnon) {
			sb.WriteString(p.RegionString(tt.Region))
			sb.WriteByte(' ')
		}
		if tt.Mutable {
			sb.WriteString("mut ")
		}
		p.writeType(sb, tt.Elem)
	case KindBox:
		sb.WriteString("box ")
		p.writeType(sb, tt.Elem)
	case KindOwn:
		sb.WriteString("own ")
		p.writeType(sb, tt.Elem)
	case KindTuple:
		info, _ := p.Types.TupleInfo(id)
		sb.WriteByte('(')
		if info != nil {
			for i, elem := range info.Elems {
				if i > 0 {
					sb.WriteString(", ")
				}
				p.writeType(sb, elem)
			}
			if len(info.Elems) == 1 {
				sb.WriteByte(',')
			}
		}
		sb.WriteByte(')')
	case KindFn:
		info, _ := p.Types.FnInfo(id)
		sb.WriteString("fn(")
		if info != nil {
			for i, param := range info.Params {
				if i > 0 {
					sb.WriteString(", ")
				}
				p.writeType(sb, param)
			}
		}
		sb.WriteByte(')')
		if info != nil && info.Result != p.Types.Builtins().Unit && info.Result != NoTypeID {
			sb.WriteString(" -> ")
			p.writeType(sb, info.Result)
		}
	case KindStruct:
		info, _ := p.Types.StructInfo(id)
		if info == nil {
			sb.WriteString("<struct>")
			return
		}
		decl, _ := p.Types.StructDecl(info.Decl)
		if decl != nil {
			sb.WriteString(p.name(decl.Name))
		}
		if len(info.Regions)+len(info.TypeArgs) == 0 {
			return
		}
		sb.WriteByte('<')
		n := 0
		for _, r := range info.Regions {
			if n > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.RegionString(r))
			n++
		}
		for _, arg := range info.TypeArgs {
			if n > 0 {
				sb.WriteString(", ")
			}
			p.writeType(sb, arg)
			n++
		}
		sb.WriteByte('>')
	case KindAlias:
		info, _ := p.Types.AliasInfo(id)
		if info == nil {
			sb.WriteString("<alias>")
			return
		}
		sb.WriteString(p.name(info.Name))
		// Регионы цели видны, иначе инстанцированный алиас не отличить от исходного.
		if p.Types.HasRegions(info.Target) {
			sb.WriteString(" = ")
			p.writeType(sb, info.Target)
		}
	default:
		sb.WriteString(tt.Kind.String())
	}
}
