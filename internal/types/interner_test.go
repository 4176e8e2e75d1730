package types

import (
	"testing"

	"regionck/internal/source"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Bool == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	unit, _ := in.Lookup(b.Unit)
	if unit.Kind != KindUnit {
		t.Fatalf("expected unit kind, got %v", unit.Kind)
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().String
	arr1 := in.Intern(MakeArray(elem, ArrayDynamicLength))
	arr2 := in.Intern(MakeArray(elem, ArrayDynamicLength))
	if arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
	fn1 := in.RegisterFn([]TypeID{arr1}, elem)
	fn2 := in.RegisterFn([]TypeID{arr2}, elem)
	if fn1 != fn2 {
		t.Fatalf("fn types should be deduplicated")
	}
	tup1 := in.RegisterTuple([]TypeID{elem, arr1})
	tup2 := in.RegisterTuple([]TypeID{elem, arr1})
	if tup1 != tup2 {
		t.Fatalf("tuple types should be deduplicated")
	}
}

func TestReferenceRegionAffectsIdentity(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	elem := in.Builtins().Int
	a := in.Intern(MakeReference(MakeBound(NamedBound(strs.Intern("a"))), elem, false))
	b := in.Intern(MakeReference(MakeBound(NamedBound(strs.Intern("b"))), elem, false))
	mut := in.Intern(MakeReference(MakeBound(NamedBound(strs.Intern("a"))), elem, true))
	if a == b {
		t.Fatalf("references with different regions must differ")
	}
	if a == mut {
		t.Fatalf("mutable and immutable references must differ")
	}
}

func TestResolveAliasFollowsChains(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	ref := in.Intern(MakeReference(MakeStatic(), in.Builtins().Int, false))
	inner := in.RegisterAlias(strs.Intern("IntRef"), ref)
	outer := in.RegisterAlias(strs.Intern("Handle"), inner)
	if got := in.ResolveAlias(outer); got != ref {
		t.Fatalf("ResolveAlias = %d, want %d", got, ref)
	}
	if got := in.ResolveAlias(ref); got != ref {
		t.Fatalf("ResolveAlias of a non-alias must be identity")
	}
}

func TestFieldTypeSubstitutesRegionParams(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	a := NamedBound(strs.Intern("a"))
	fieldTy := in.Intern(MakeReference(MakeBound(a), in.Builtins().Int, false))
	decl := in.DeclareStruct(strs.Intern("Holder"), []BoundRegion{a}, []StructField{{Name: strs.Intern("ptr"), Type: fieldTy}})
	inst := in.RegisterStruct(decl, []Region{MakeScope(4)}, nil)

	got, ok := in.FieldType(inst, strs.Intern("ptr"))
	if !ok {
		t.Fatalf("field not found")
	}
	want := in.Intern(MakeReference(MakeScope(4), in.Builtins().Int, false))
	if got != want {
		t.Fatalf("FieldType = %s, want %s", Printer{Types: in, Strings: strs}.TypeString(got), Printer{Types: in, Strings: strs}.TypeString(want))
	}
	if _, ok := in.FieldType(inst, strs.Intern("missing")); ok {
		t.Fatalf("unknown field must not resolve")
	}
}
