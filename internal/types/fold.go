package types

import "slices"

// RegionVisitor is called for every region occurrence during a fold. inFn
// is true exactly when the occurrence sits inside the parameter or result
// structure of a function type.
type RegionVisitor func(r Region, inFn bool) Region

// FoldRegions rebuilds id with every region replaced by visit. Regions are
// visited in a fixed pre-order (a reference's own region before its
// referent, struct region arguments before type arguments, params before
// result), so visitors with side effects see a deterministic sequence.
//
// Subtrees whose regions all come back unchanged keep their TypeID.
func (in *Interner) FoldRegions(id TypeID, visit RegionVisitor) TypeID {
	if in == nil || visit == nil {
		return id
	}
	return in.foldRegions(id, false, visit)
}

func (in *Interner) foldRegions(id TypeID, inFn bool, visit RegionVisitor) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindReference:
		region := visit(tt.Region, inFn)
		elem := in.foldRegions(tt.Elem, inFn, visit)
		if region == tt.Region && elem == tt.Elem {
			return id
		}
		return in.Intern(MakeReference(region, elem, tt.Mutable))

	case KindArray, KindPointer, KindBox, KindOwn:
		elem := in.foldRegions(tt.Elem, inFn, visit)
		if elem == tt.Elem {
			return id
		}
		tt.Elem = elem
		return in.Intern(tt)

	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return id
		}
		elems := slices.Clone(info.Elems)
		changed := false
		for i, elem := range elems {
			folded := in.foldRegions(elem, inFn, visit)
			changed = changed || folded != elem
			elems[i] = folded
		}
		if !changed {
			return id
		}
		return in.RegisterTuple(elems)

	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return id
		}
		params := slices.Clone(info.Params)
		result := info.Result
		changed := false
		for i, param := range params {
			folded := in.foldRegions(param, true, visit)
			changed = changed || folded != param
			params[i] = folded
		}
		if folded := in.foldRegions(result, true, visit); folded != result {
			result = folded
			changed = true
		}
		if !changed {
			return id
		}
		return in.RegisterFn(params, result)

	case KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return id
		}
		decl := info.Decl
		regions := slices.Clone(info.Regions)
		args := slices.Clone(info.TypeArgs)
		changed := false
		for i, r := range regions {
			folded := visit(r, inFn)
			changed = changed || folded != r
			regions[i] = folded
		}
		for i, arg := range args {
			folded := in.foldRegions(arg, inFn, visit)
			changed = changed || folded != arg
			args[i] = folded
		}
		if !changed {
			return id
		}
		return in.RegisterStruct(decl, regions, args)

	case KindAlias:
		info, ok := in.AliasInfo(id)
		if !ok {
			return id
		}
		name, target := info.Name, info.Target
		folded := in.foldRegions(target, inFn, visit)
		if folded == target {
			return id
		}
		return in.RegisterAlias(name, folded)

	default:
		return id
	}
}

// WalkRegions visits every region occurrence without rebuilding anything.
func (in *Interner) WalkRegions(id TypeID, visit func(r Region, inFn bool)) {
	in.FoldRegions(id, func(r Region, inFn bool) Region {
		visit(r, inFn)
		return r
	})
}

// HasRegions reports whether any region occurs in id.
func (in *Interner) HasRegions(id TypeID) bool {
	found := false
	in.WalkRegions(id, func(Region, bool) { found = true })
	return found
}

// ExpandAliases rebuilds id with every alias, at any depth, replaced by its
// target. Two types that differ only in alias spelling expand to the same
// TypeID.
func (in *Interner) ExpandAliases(id TypeID) TypeID {
	if in == nil {
		return id
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindAlias:
		info, ok := in.AliasInfo(id)
		if !ok {
			return id
		}
		return in.ExpandAliases(info.Target)

	case KindReference, KindArray, KindPointer, KindBox, KindOwn:
		elem := in.ExpandAliases(tt.Elem)
		if elem == tt.Elem {
			return id
		}
		tt.Elem = elem
		return in.Intern(tt)

	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return id
		}
		elems, changed := in.expandAll(info.Elems)
		if !changed {
			return id
		}
		return in.RegisterTuple(elems)

	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return id
		}
		oldResult := info.Result
		params, changed := in.expandAll(info.Params)
		result := in.ExpandAliases(oldResult)
		if !changed && result == oldResult {
			return id
		}
		return in.RegisterFn(params, result)

	case KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return id
		}
		decl, regions := info.Decl, slices.Clone(info.Regions)
		args, changed := in.expandAll(info.TypeArgs)
		if !changed {
			return id
		}
		return in.RegisterStruct(decl, regions, args)

	default:
		return id
	}
}

func (in *Interner) expandAll(ids []TypeID) ([]TypeID, bool) {
	out := slices.Clone(ids)
	changed := false
	for i, id := range out {
		expanded := in.ExpandAliases(id)
		changed = changed || expanded != id
		out[i] = expanded
	}
	return out, changed
}
