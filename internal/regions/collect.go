package regions

import (
	"regionck/internal/types"
)

// Generator produces the region a newly discovered bound name maps to.
type Generator func(br types.BoundRegion) types.Region

// Collect walks tys in order and adds every bound region found outside a
// fn type to a copy of seed, mapping it to generate(name). Names already
// present (in seed or discovered earlier) are skipped, so generate runs at
// most once per name. Regions inside fn types are left for that function's
// own instantiation.
func Collect(in *types.Interner, tys []types.TypeID, seed *Substitution, generate Generator) *Substitution {
	out := seed.Clone()
	for _, ty := range tys {
		in.WalkRegions(ty, func(r types.Region, inFn bool) {
			if inFn || !r.IsBound() || out.Has(r.Bound) {
				return
			}
			out.Insert(r.Bound, generate(r.Bound))
		})
	}
	return out
}
