package types

import (
	"testing"

	"regionck/internal/source"
)

type regionVisit struct {
	region Region
	inFn   bool
}

func TestFoldRegionsReportsFunctionBoundary(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	a := MakeBound(NamedBound(strs.Intern("a")))
	b := MakeBound(NamedBound(strs.Intern("b")))
	c := MakeBound(NamedBound(strs.Intern("c")))
	intTy := in.Builtins().Int

	refA := in.Intern(MakeReference(a, intTy, false))
	refB := in.Intern(MakeReference(b, intTy, false))
	refC := in.Intern(MakeReference(c, intTy, false))
	fn := in.RegisterFn([]TypeID{refB}, refC)
	ty := in.RegisterTuple([]TypeID{refA, fn})

	var seen []regionVisit
	in.WalkRegions(ty, func(r Region, inFn bool) {
		seen = append(seen, regionVisit{r, inFn})
	})

	want := []regionVisit{{a, false}, {b, true}, {c, true}}
	if len(seen) != len(want) {
		t.Fatalf("visited %d regions, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("visit %d = %+v, want %+v", i, seen[i], want[i])
		}
	}
}

func TestFoldRegionsSharesUnchangedSubtrees(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	a := MakeBound(NamedBound(strs.Intern("a")))
	intTy := in.Builtins().Int

	untouched := in.Intern(MakeReference(MakeStatic(), intTy, false))
	boxed := in.Intern(MakeBox(in.Intern(MakeReference(a, intTy, true))))
	ty := in.RegisterTuple([]TypeID{untouched, boxed})

	identity := in.FoldRegions(ty, func(r Region, _ bool) Region { return r })
	if identity != ty {
		t.Fatalf("identity fold must return the same TypeID")
	}

	replaced := in.FoldRegions(ty, func(r Region, _ bool) Region {
		if r == a {
			return MakeVar(0)
		}
		return r
	})
	if replaced == ty {
		t.Fatalf("fold that changes a region must produce a new type")
	}
	info, ok := in.TupleInfo(replaced)
	if !ok {
		t.Fatalf("result must still be a tuple")
	}
	if info.Elems[0] != untouched {
		t.Fatalf("unchanged element must keep its TypeID")
	}
	want := in.Intern(MakeBox(in.Intern(MakeReference(MakeVar(0), intTy, true))))
	if info.Elems[1] != want {
		t.Fatalf("changed element mismatch")
	}
}

func TestFoldRegionsVisitsStructRegionArgs(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	a := MakeBound(NamedBound(strs.Intern("a")))
	decl := in.DeclareStruct(strs.Intern("Iter"), []BoundRegion{NamedBound(strs.Intern("x"))}, nil)
	inst := in.RegisterStruct(decl, []Region{a}, []TypeID{in.Builtins().Bool})

	got := in.FoldRegions(inst, func(r Region, inFn bool) Region {
		if inFn {
			t.Fatalf("struct region args are not inside a fn type")
		}
		return MakeStatic()
	})
	info, _ := in.StructInfo(got)
	if info == nil || info.Regions[0] != MakeStatic() || info.TypeArgs[0] != in.Builtins().Bool {
		t.Fatalf("struct instance not rebuilt correctly")
	}
}

func TestExpandAliasesReachesNestedAliases(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	intTy := in.Builtins().Int
	ref := in.Intern(MakeReference(MakeVar(0), in.Intern(MakeArray(intTy, ArrayDynamicLength)), false))
	inner := in.RegisterAlias(strs.Intern("Ints"), ref)
	outer := in.RegisterAlias(strs.Intern("Handle"), inner)

	spelled := in.RegisterTuple([]TypeID{outer, in.RegisterFn([]TypeID{inner}, intTy)})
	expanded := in.RegisterTuple([]TypeID{ref, in.RegisterFn([]TypeID{ref}, intTy)})
	if got := in.ExpandAliases(spelled); got != expanded {
		p := Printer{Types: in, Strings: strs}
		t.Fatalf("ExpandAliases = %s, want %s", p.TypeString(got), p.TypeString(expanded))
	}
	if got := in.ExpandAliases(expanded); got != expanded {
		t.Fatalf("alias-free types must keep their TypeID")
	}
	if in.HasRegions(intTy) || !in.HasRegions(outer) {
		t.Fatalf("HasRegions must look through aliases")
	}
}
