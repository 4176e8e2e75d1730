package fixture

import (
	"strconv"

	"regionck/internal/ast"
	"regionck/internal/symbols"
	"regionck/internal/types"
)

// typeExprs assigns types to freshly parsed expressions. created lists
// children before parents, so one forward pass sees every operand typed.
// Expressions whose type cannot be derived are left without an entry.
func (fb *funcBuilder) typeExprs(created []ast.ExprID, scope symbols.ScopeID) {
	for _, id := range created {
		if ty := fb.typeOf(id, scope); ty != types.NoTypeID {
			fb.fn.ExprTypes[id] = ty
		}
	}
}

func (fb *funcBuilder) typeOf(id ast.ExprID, scope symbols.ScopeID) types.TypeID {
	in := fb.env.types
	exprs := fb.fn.Builder.Exprs
	known := fb.fn.ExprTypes
	builtins := in.Builtins()

	switch exprs.Get(id).Kind {
	case ast.ExprIdent:
		sym, ok := fb.fn.Symbols.Resolution(id)
		if !ok {
			return types.NoTypeID
		}
		for _, info := range fb.locals {
			if info.sym == sym {
				return info.ty
			}
		}

	case ast.ExprLit:
		lit, _ := exprs.Literal(id)
		switch lit.Kind {
		case ast.ExprLitInt:
			return builtins.Int
		case ast.ExprLitFloat:
			return builtins.Float
		case ast.ExprLitString:
			return builtins.String
		default:
			return builtins.Bool
		}

	case ast.ExprGroup:
		group, _ := exprs.Group(id)
		return known[group.Inner]

	case ast.ExprMember:
		member, _ := exprs.Member(id)
		base := autoDeref(in, known[member.Target])
		if ty, ok := in.FieldType(base, member.Field); ok {
			return ty
		}
		if info, ok := in.TupleInfo(base); ok {
			idx, err := strconv.Atoi(fb.env.strings.MustLookup(member.Field))
			if err == nil && idx >= 0 && idx < len(info.Elems) {
				return info.Elems[idx]
			}
		}

	case ast.ExprIndex:
		index, _ := exprs.Index(id)
		base := autoDeref(in, known[index.Target])
		if tt, ok := in.Lookup(base); ok && tt.Kind == types.KindArray {
			return tt.Elem
		}

	case ast.ExprUnary:
		un, _ := exprs.Unary(id)
		operand := known[un.Operand]
		switch un.Op {
		case ast.ExprUnaryDeref:
			if tt, ok := in.Lookup(in.ResolveAlias(operand)); ok && pointerLike(tt.Kind) {
				return tt.Elem
			}
		case ast.ExprUnaryRef, ast.ExprUnaryRefMut:
			if operand == types.NoTypeID {
				return types.NoTypeID
			}
			return in.Intern(types.MakeReference(types.MakeScope(scope), operand, un.Op == ast.ExprUnaryRefMut))
		default:
			return operand
		}

	case ast.ExprBinary:
		bin, _ := exprs.Binary(id)
		switch bin.Op {
		case ast.ExprBinaryEq, ast.ExprBinaryLess:
			return builtins.Bool
		default:
			return known[bin.Left]
		}

	case ast.ExprCall:
		call, _ := exprs.Call(id)
		if info, ok := in.FnInfo(in.ResolveAlias(known[call.Target])); ok {
			return info.Result
		}
	}
	return types.NoTypeID
}

func pointerLike(k types.Kind) bool {
	return k == types.KindReference || k == types.KindPointer || k.IsOwningPointer()
}

// autoDeref strips references and pointers the way field access and
// indexing do.
func autoDeref(in *types.Interner, ty types.TypeID) types.TypeID {
	for range in.Len() {
		ty = in.ResolveAlias(ty)
		tt, ok := in.Lookup(ty)
		if !ok || !pointerLike(tt.Kind) {
			return ty
		}
		ty = tt.Elem
	}
	return ty
}
