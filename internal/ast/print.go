package ast

import "strings"

// ExprString renders id back into surface syntax. It is used by trace
// output and reports, not for round-tripping.
func (b *Builder) ExprString(id ExprID) string {
	var sb strings.Builder
	b.writeExpr(&sb, id)
	return sb.String()
}

func (b *Builder) writeExpr(sb *strings.Builder, id ExprID) {
	expr := b.Exprs.Get(id)
	if expr == nil {
		sb.WriteString("<invalid>")
		return
	}
	switch expr.Kind {
	case ExprIdent:
		data, _ := b.Exprs.Ident(id)
		sb.WriteString(b.Strings.MustLookup(data.Name))
	case ExprLit:
		data, _ := b.Exprs.Literal(id)
		switch data.Kind {
		case ExprLitTrue:
			sb.WriteString("true")
		case ExprLitFalse:
			sb.WriteString("false")
		case ExprLitString:
			sb.WriteByte('"')
			sb.WriteString(b.Strings.MustLookup(data.Value))
			sb.WriteByte('"')
		default:
			sb.WriteString(b.Strings.MustLookup(data.Value))
		}
	case ExprBinary:
		data, _ := b.Exprs.Binary(id)
		b.writeExpr(sb, data.Left)
		sb.WriteByte(' ')
		sb.WriteString(data.Op.String())
		sb.WriteByte(' ')
		b.writeExpr(sb, data.Right)
	case ExprUnary:
		data, _ := b.Exprs.Unary(id)
		sb.WriteString(data.Op.String())
		b.writeExpr(sb, data.Operand)
	case ExprCall:
		data, _ := b.Exprs.Call(id)
		b.writeExpr(sb, data.Target)
		sb.WriteByte('(')
		for i, arg := range data.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			b.writeExpr(sb, arg)
		}
		sb.WriteByte(')')
	case ExprIndex:
		data, _ := b.Exprs.Index(id)
		b.writeExpr(sb, data.Target)
		sb.WriteByte('[')
		b.writeExpr(sb, data.Index)
		sb.WriteByte(']')
	case ExprMember:
		data, _ := b.Exprs.Member(id)
		b.writeExpr(sb, data.Target)
		sb.WriteByte('.')
		sb.WriteString(b.Strings.MustLookup(data.Field))
	case ExprGroup:
		data, _ := b.Exprs.Group(id)
		sb.WriteByte('(')
		b.writeExpr(sb, data.Inner)
		sb.WriteByte(')')
	}
}
