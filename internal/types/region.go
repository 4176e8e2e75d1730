package types

import (
	"regionck/internal/source"
	"regionck/internal/symbols"
)

// RegionVarID names an inference variable handed out by the region
// variable allocator. IDs are never reused.
type RegionVarID uint32

// BoundKind distinguishes the forms a bound region name can take.
type BoundKind uint8

const (
	BoundAnon BoundKind = iota
	BoundNamed
	BoundSelf
)

// BoundRegion is the name of a region placeholder in a generic signature.
type BoundRegion struct {
	Kind BoundKind
	Name source.StringID // BoundNamed only
}

// AnonBound is the anonymous bound region written as a bare `&T`.
func AnonBound() BoundRegion { return BoundRegion{Kind: BoundAnon} }

// NamedBound is a bound region written as `&'name T`.
func NamedBound(name source.StringID) BoundRegion {
	return BoundRegion{Kind: BoundNamed, Name: name}
}

// SelfBound is the region bound to the implicit receiver.
func SelfBound() BoundRegion { return BoundRegion{Kind: BoundSelf} }

// RegionKind enumerates region forms.
type RegionKind uint8

const (
	RegionInvalid RegionKind = iota
	RegionStatic
	RegionScope
	RegionFree
	RegionBound
	RegionVar
)

func (k RegionKind) String() string {
	switch k {
	case RegionStatic:
		return "static"
	case RegionScope:
		return "scope"
	case RegionFree:
		return "free"
	case RegionBound:
		return "bound"
	case RegionVar:
		return "var"
	default:
		return "invalid"
	}
}

// Region is an immutable, comparable value. Only the fields relevant to
// Kind are set:
//
//	RegionStatic  -
//	RegionScope   Scope
//	RegionFree    Scope, Bound
//	RegionBound   Bound
//	RegionVar     Var
type Region struct {
	Kind  RegionKind
	Scope symbols.ScopeID
	Bound BoundRegion
	Var   RegionVarID
}

// MakeStatic is the program-lifetime region.
func MakeStatic() Region { return Region{Kind: RegionStatic} }

// MakeScope is the region of a lexical block or statement.
func MakeScope(scope symbols.ScopeID) Region {
	return Region{Kind: RegionScope, Scope: scope}
}

// MakeFree is a region free relative to the function whose body scope is
// given, tagged with the bound name it came from.
func MakeFree(scope symbols.ScopeID, br BoundRegion) Region {
	return Region{Kind: RegionFree, Scope: scope, Bound: br}
}

// MakeBound is an uninstantiated placeholder.
func MakeBound(br BoundRegion) Region {
	return Region{Kind: RegionBound, Bound: br}
}

// MakeVar is an inference variable.
func MakeVar(id RegionVarID) Region {
	return Region{Kind: RegionVar, Var: id}
}

// IsBound reports whether r is still a placeholder.
func (r Region) IsBound() bool { return r.Kind == RegionBound }

// IsValid reports whether r has been set.
func (r Region) IsValid() bool { return r.Kind != RegionInvalid }
