package fixture

import "regionck/internal/types"

// CanonicalVars expands every alias in ty and renumbers its region
// variables by first appearance, starting at '?0. Variable IDs come from an
// allocator shared by the whole run, and an instantiated alias is a new
// alias under the old name, so results are compared in this form.
func CanonicalVars(in *types.Interner, ty types.TypeID) types.TypeID {
	ty = in.ExpandAliases(ty)
	renamed := make(map[types.RegionVarID]types.RegionVarID)
	var next types.RegionVarID
	return in.FoldRegions(ty, func(r types.Region, _ bool) types.Region {
		if r.Kind != types.RegionVar {
			return r
		}
		id, ok := renamed[r.Var]
		if !ok {
			id = next
			renamed[r.Var] = id
			next++
		}
		return types.MakeVar(id)
	})
}
