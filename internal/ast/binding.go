package ast

import "regionck/internal/source"

// BindingKind tells how a name was introduced into a function body.
type BindingKind uint8

const (
	BindingLet BindingKind = iota
	BindingParam
	BindingPattern
)

// Binding is a declaration site: `let x`, a parameter, or a name bound by a
// pattern. Its Node is what the scope map records.
type Binding struct {
	Kind BindingKind
	Name source.StringID
	Span source.Span
	Node NodeID
}

type Bindings struct {
	Arena *Arena[Binding]
	nodes *nodeCounter
}

func (b *Bindings) New(kind BindingKind, span source.Span, name source.StringID) BindingID {
	return BindingID(b.Arena.Allocate(Binding{
		Kind: kind,
		Name: name,
		Span: span,
		Node: b.nodes.alloc(),
	}))
}

func (b *Bindings) Get(id BindingID) *Binding {
	return b.Arena.Get(uint32(id))
}
