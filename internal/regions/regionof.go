package regions

import (
	"context"
	"fmt"

	"regionck/internal/ast"
	"regionck/internal/source"
	"regionck/internal/symbols"
	"regionck/internal/trace"
	"regionck/internal/types"
)

// SelfFallback decides what RegionOf does with a `self` path when the
// function context has no receiver region.
type SelfFallback uint8

const (
	// SelfFallbackBorrow treats the self expression as a temporary of its
	// enclosing scope.
	SelfFallbackBorrow SelfFallback = iota
	// SelfFallbackAbort treats a missing receiver region as an internal
	// invariant violation.
	SelfFallbackAbort
)

func (f SelfFallback) String() string {
	switch f {
	case SelfFallbackBorrow:
		return "borrow"
	case SelfFallbackAbort:
		return "abort"
	default:
		return fmt.Sprintf("SelfFallback(%d)", f)
	}
}

// ParseSelfFallback accepts "borrow" and "abort".
func ParseSelfFallback(s string) (SelfFallback, error) {
	switch s {
	case "", "borrow":
		return SelfFallbackBorrow, nil
	case "abort":
		return SelfFallbackAbort, nil
	default:
		return SelfFallbackBorrow, fmt.Errorf("invalid self fallback %q (expected: borrow|abort)", s)
	}
}

// DefaultMaxDepth bounds expression nesting when Options.MaxDepth is unset.
const DefaultMaxDepth = 256

// Options tune a Resolver.
type Options struct {
	SelfFallback SelfFallback
	MaxDepth     int
}

// Resolver computes the region that governs the storage an expression
// denotes, i.e. the region `&expr` would carry.
type Resolver struct {
	fcx  FunctionContext
	opts Options
}

// NewResolver binds a resolver to one function context.
func NewResolver(fcx FunctionContext, opts Options) *Resolver {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Resolver{fcx: fcx, opts: opts}
}

// RegionOf classifies expr:
//
//   - paths resolve to their definition's region;
//   - field, index and deref projections take the region of the place
//     they project from (see derefRegion);
//   - parentheses are transparent;
//   - everything else is a temporary living in its enclosing scope.
func (r *Resolver) RegionOf(ctx context.Context, expr ast.ExprID) (types.Region, error) {
	sp, _ := trace.Start(ctx, trace.ScopeOp, "regionOf")
	region, err := r.regionOf(expr, 0)
	if err != nil {
		sp.End("aborted")
		return types.Region{}, err
	}
	if sp.ID() != 0 {
		sp.WithExtra("region", types.Printer{Strings: r.fcx.Strings()}.RegionString(region))
	}
	sp.End("")
	return region, nil
}

func (r *Resolver) regionOf(expr ast.ExprID, depth int) (types.Region, error) {
	exprs := r.fcx.Exprs()
	e := exprs.Get(expr)
	if e == nil {
		return types.Region{}, abort(r.fcx, source.Span{}, fmt.Sprintf("unknown expression #%d", expr))
	}
	if depth > r.opts.MaxDepth {
		return types.Region{}, abort(r.fcx, e.Span, fmt.Sprintf("expression nesting exceeds %d levels", r.opts.MaxDepth))
	}

	switch e.Kind {
	case ast.ExprIdent:
		sym, ok := r.fcx.LookupDef(expr)
		if !ok || sym == nil {
			return types.Region{}, abort(r.fcx, e.Span, "path has no recorded definition")
		}
		return r.defRegion(expr, sym, depth)

	case ast.ExprMember:
		data, _ := exprs.Member(expr)
		return r.derefRegion(data.Target, depth)

	case ast.ExprIndex:
		data, _ := exprs.Index(expr)
		return r.derefRegion(data.Target, depth)

	case ast.ExprUnary:
		data, _ := exprs.Unary(expr)
		if data.Op == ast.ExprUnaryDeref {
			return r.derefRegion(data.Operand, depth)
		}
		return r.borrow(expr)

	case ast.ExprGroup:
		data, _ := exprs.Group(expr)
		return r.regionOf(data.Inner, depth+1)

	default:
		return r.borrow(expr)
	}
}

// derefRegion is the region of a place projected out of base:
// a reference's own region, the enclosing scope of an owning pointer, or
// the region of base itself when it is held by value.
func (r *Resolver) derefRegion(base ast.ExprID, depth int) (types.Region, error) {
	ty, ok := r.fcx.ExprType(base)
	if !ok {
		return types.Region{}, abort(r.fcx, r.span(base), "expression has no resolved type")
	}
	in := r.fcx.Types()
	tt, ok := in.Lookup(in.ResolveAlias(ty))
	if !ok {
		return types.Region{}, abort(r.fcx, r.span(base), fmt.Sprintf("invalid type #%d", ty))
	}
	switch {
	case tt.Kind == types.KindReference:
		return tt.Region, nil
	case tt.Kind.IsOwningPointer():
		return r.borrow(base)
	default:
		return r.regionOf(base, depth+1)
	}
}

// borrow is the region of a temporary holding expr.
func (r *Resolver) borrow(expr ast.ExprID) (types.Region, error) {
	node := r.fcx.Exprs().Node(expr)
	scope, ok := r.fcx.LookupScope(node)
	if !ok {
		return types.Region{}, abort(r.fcx, r.span(expr), fmt.Sprintf("node %d has no enclosing scope", node))
	}
	return types.MakeScope(scope), nil
}

func (r *Resolver) defRegion(expr ast.ExprID, sym *symbols.Symbol, depth int) (types.Region, error) {
	switch sym.Kind {
	case symbols.SymbolLocal, symbols.SymbolParam, symbols.SymbolBinding:
		node, ok := r.fcx.BindingNode(sym.Binding)
		if !ok {
			return types.Region{}, abort(r.fcx, sym.Span, fmt.Sprintf("%s has no declaration node", sym.Kind))
		}
		scope, ok := r.fcx.LookupScope(node)
		if !ok {
			return types.Region{}, abort(r.fcx, sym.Span, fmt.Sprintf("declaration node %d has no scope", node))
		}
		return types.MakeScope(scope), nil

	case symbols.SymbolUpvar:
		inner, ok := r.fcx.LookupSymbol(sym.Captured)
		if !ok || inner == nil {
			return types.Region{}, abort(r.fcx, sym.Span, "upvar does not capture a definition")
		}
		if depth >= r.opts.MaxDepth {
			return types.Region{}, abort(r.fcx, sym.Span, fmt.Sprintf("upvar chain exceeds %d levels", r.opts.MaxDepth))
		}
		return r.defRegion(expr, inner, depth+1)

	case symbols.SymbolSelf:
		if region, ok := r.fcx.SelfRegion(); ok {
			return region, nil
		}
		if r.opts.SelfFallback == SelfFallbackAbort {
			return types.Region{}, abort(r.fcx, r.span(expr), "self receiver has no region")
		}
		return r.borrow(expr)

	case symbols.SymbolFunction, symbols.SymbolModule, symbols.SymbolExternModule,
		symbols.SymbolConst, symbols.SymbolImport, symbols.SymbolVariant,
		symbols.SymbolType, symbols.SymbolPrimType, symbols.SymbolTypeParam,
		symbols.SymbolClass, symbols.SymbolRegion:
		return types.MakeStatic(), nil

	default:
		return types.Region{}, abort(r.fcx, sym.Span, fmt.Sprintf("unexpected definition kind %s", sym.Kind))
	}
}

func (r *Resolver) span(expr ast.ExprID) source.Span {
	if e := r.fcx.Exprs().Get(expr); e != nil {
		return e.Span
	}
	return source.Span{}
}
