package ast

import "regionck/internal/source"

type Hints struct{ Exprs, Bindings uint }

// Builder owns every node of one function body. Expressions and bindings
// draw NodeIDs from the same counter so one scope map covers both.
type Builder struct {
	Exprs    *Exprs
	Bindings *Bindings
	Strings  *source.Interner
}

func NewBuilder(hints Hints, strs *source.Interner) *Builder {
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Bindings == 0 {
		hints.Bindings = 1 << 5
	}
	if strs == nil {
		strs = source.NewInterner()
	}
	nodes := &nodeCounter{}
	return &Builder{
		Exprs:    newExprs(hints.Exprs, nodes),
		Bindings: &Bindings{Arena: NewArena[Binding](hints.Bindings), nodes: nodes},
		Strings:  strs,
	}
}

// Intern is a shorthand for b.Strings.Intern.
func (b *Builder) Intern(s string) source.StringID {
	return b.Strings.Intern(s)
}
