package ast

import (
	"regionck/internal/source"
)

type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprLit
	ExprCall
	ExprBinary
	ExprUnary
	ExprGroup
	ExprIndex
	ExprMember
)

func (k ExprKind) String() string {
	switch k {
	case ExprIdent:
		return "ident"
	case ExprLit:
		return "lit"
	case ExprCall:
		return "call"
	case ExprBinary:
		return "binary"
	case ExprUnary:
		return "unary"
	case ExprGroup:
		return "group"
	case ExprIndex:
		return "index"
	case ExprMember:
		return "member"
	default:
		return "invalid"
	}
}

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Node    NodeID
	Payload PayloadID
}

type ExprLitKind uint8

const (
	ExprLitInt ExprLitKind = iota
	ExprLitFloat
	ExprLitString
	ExprLitTrue
	ExprLitFalse
)

type ExprUnaryOp uint8

const (
	ExprUnaryDeref ExprUnaryOp = iota
	ExprUnaryRef
	ExprUnaryRefMut
	ExprUnaryMinus
	ExprUnaryNot
)

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryDeref:
		return "*"
	case ExprUnaryRef:
		return "&"
	case ExprUnaryRefMut:
		return "&mut "
	case ExprUnaryMinus:
		return "-"
	case ExprUnaryNot:
		return "!"
	default:
		return "?"
	}
}

type ExprBinaryOp uint8

const (
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryEq
	ExprBinaryLess
	ExprBinaryAssign
)

func (op ExprBinaryOp) String() string {
	switch op {
	case ExprBinaryAdd:
		return "+"
	case ExprBinarySub:
		return "-"
	case ExprBinaryMul:
		return "*"
	case ExprBinaryDiv:
		return "/"
	case ExprBinaryEq:
		return "=="
	case ExprBinaryLess:
		return "<"
	case ExprBinaryAssign:
		return "="
	default:
		return "?"
	}
}

type ExprIdentData struct {
	Name source.StringID
}

type ExprLiteralData struct {
	Kind  ExprLitKind
	Value source.StringID
}

type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprCallData struct {
	Target ExprID
	Args   []ExprID
}

type ExprIndexData struct {
	Target ExprID
	Index  ExprID
}

type ExprMemberData struct {
	Target ExprID
	Field  source.StringID
}

type ExprGroupData struct {
	Inner ExprID
}
