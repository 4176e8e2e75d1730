package regions

import (
	"regionck/internal/source"
	"regionck/internal/types"
)

// Apply replaces bound regions in ty according to subst.
//
// Outside any fn type every Bound region must be mapped; a missing entry
// means the signature was built inconsistently and the operation aborts
// through ab with no partial result. Inside a fn type, anonymous bound
// regions stay bound and named ones are replaced only when subst happens
// to map them (an outer binder reused by the inner signature). Free,
// Static, Scope and Var regions are never touched.
func Apply(in *types.Interner, ab Aborter, span source.Span, subst *Substitution, ty types.TypeID) (types.TypeID, error) {
	// Проверяем до перестройки: прерванный Apply не должен ничего интернировать.
	var missing *types.BoundRegion
	in.WalkRegions(ty, func(r types.Region, inFn bool) {
		if missing != nil || inFn || !r.IsBound() || subst.Has(r.Bound) {
			return
		}
		br := r.Bound
		missing = &br
	})
	if missing != nil {
		return types.NoTypeID, abort(ab, span, "bound region not found in in-scope regions list: "+boundName(ab, *missing))
	}

	return in.FoldRegions(ty, func(r types.Region, inFn bool) types.Region {
		if !r.IsBound() {
			return r
		}
		if inFn && r.Bound.Kind == types.BoundAnon {
			return r
		}
		if mapped, ok := subst.Lookup(r.Bound); ok {
			return mapped
		}
		return r
	}), nil
}

// boundName renders br using the aborter's string table when it has one.
func boundName(ab Aborter, br types.BoundRegion) string {
	p := types.Printer{}
	if named, ok := ab.(interface{ Strings() *source.Interner }); ok {
		p.Strings = named.Strings()
	}
	return p.BoundString(br)
}
