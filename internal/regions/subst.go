package regions

import (
	"regionck/internal/types"
)

// Substitution maps bound region names to regions. Entries keep their
// insertion order and the first binding of a name wins.
type Substitution struct {
	entries []Binding
	index   map[types.BoundRegion]int
}

// Binding is one entry of a Substitution.
type Binding struct {
	Bound  types.BoundRegion
	Region types.Region
}

// NewSubstitution returns an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{index: make(map[types.BoundRegion]int)}
}

// Insert adds br -> r unless br is already mapped. It reports whether the
// entry was added.
func (s *Substitution) Insert(br types.BoundRegion, r types.Region) bool {
	if _, ok := s.index[br]; ok {
		return false
	}
	if s.index == nil {
		s.index = make(map[types.BoundRegion]int)
	}
	s.index[br] = len(s.entries)
	s.entries = append(s.entries, Binding{Bound: br, Region: r})
	return true
}

// Lookup returns the region bound to br.
func (s *Substitution) Lookup(br types.BoundRegion) (types.Region, bool) {
	if s == nil {
		return types.Region{}, false
	}
	i, ok := s.index[br]
	if !ok {
		return types.Region{}, false
	}
	return s.entries[i].Region, true
}

// Has reports whether br is mapped.
func (s *Substitution) Has(br types.BoundRegion) bool {
	_, ok := s.Lookup(br)
	return ok
}

// Len returns the number of entries.
func (s *Substitution) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the entries in insertion order.
func (s *Substitution) Entries() []Binding {
	if s == nil || len(s.entries) == 0 {
		return nil
	}
	out := make([]Binding, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clone returns an independent copy; a nil receiver yields an empty one.
func (s *Substitution) Clone() *Substitution {
	out := NewSubstitution()
	if s == nil {
		return out
	}
	out.entries = make([]Binding, len(s.entries), len(s.entries)+4)
	copy(out.entries, s.entries)
	for br, i := range s.index {
		out.index[br] = i
	}
	return out
}
