package regions

import (
	"fmt"
	"sync/atomic"

	"fortio.org/safecast"

	"regionck/internal/types"
)

// VarAllocator hands out region inference variables. IDs start at 0, grow
// monotonically and are never reused. It is safe for concurrent use and is
// meant to be shared by every function checked in a run.
type VarAllocator struct {
	next atomic.Uint64
}

// NewVarAllocator returns an allocator whose first variable is '?0.
func NewVarAllocator() *VarAllocator {
	return &VarAllocator{}
}

// Next allocates a fresh variable id.
func (a *VarAllocator) Next() types.RegionVarID {
	n := a.next.Add(1) - 1
	id, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("region variable space exhausted: %w", err))
	}
	return types.RegionVarID(id)
}

// Fresh allocates a fresh variable region.
func (a *VarAllocator) Fresh() types.Region {
	return types.MakeVar(a.Next())
}

// Allocated reports how many variables have been handed out so far.
func (a *VarAllocator) Allocated() uint64 {
	return a.next.Load()
}
