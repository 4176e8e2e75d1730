package regions

import (
	"context"
	"testing"

	"regionck/internal/ast"
	"regionck/internal/source"
	"regionck/internal/symbols"
	"regionck/internal/types"
)

func regionOf(t *testing.T, c *testCtx, opts Options, expr ast.ExprID) types.Region {
	t.Helper()
	r, err := NewResolver(c, opts).RegionOf(context.Background(), expr)
	if err != nil {
		t.Fatalf("RegionOf: %v", err)
	}
	return r
}

func TestRegionOfLocalUsesDeclarationScope(t *testing.T) {
	c := newTestCtx()
	outer := c.scope(symbols.NoScopeID)
	inner := c.scope(outer)
	for _, kind := range []symbols.SymbolKind{symbols.SymbolLocal, symbols.SymbolParam, symbols.SymbolBinding} {
		x := c.local("x", kind, outer)
		use := c.ident(x, inner, c.in.Builtins().Int)
		if got := regionOf(t, c, Options{}, use); got != types.MakeScope(outer) {
			t.Fatalf("%s: got %v, want scope %d", kind, got, outer)
		}
	}
}

func TestRegionOfProjectionThroughReference(t *testing.T) {
	c := newTestCtx()
	s := c.scope(symbols.NoScopeID)
	inner := c.scope(s)
	a := types.MakeBound(c.named("a"))
	intTy := c.in.Builtins().Int
	arrTy := c.ref(a, c.in.Intern(types.MakeArray(intTy, types.ArrayDynamicLength)))

	arr := c.ident(c.local("arr", symbols.SymbolLocal, s), inner, arrTy)
	i := c.ident(c.local("i", symbols.SymbolLocal, inner), inner, intTy)
	idx := c.place(c.b.Exprs.NewIndex(source.Span{}, arr, i), inner, intTy)

	if got := regionOf(t, c, Options{}, idx); got != a {
		t.Fatalf("arr[i] = %v, want 'a", got)
	}

	// the same through field access and explicit deref
	holder := c.in.DeclareStruct(c.b.Intern("H"), nil, []types.StructField{{Name: c.b.Intern("n"), Type: intTy}})
	hTy := c.ref(types.MakeScope(42), c.in.RegisterStruct(holder, nil, nil))
	h := c.ident(c.local("h", symbols.SymbolParam, inner), inner, hTy)
	field := c.place(c.b.Exprs.NewMember(source.Span{}, h, c.b.Intern("n")), inner, intTy)
	if got := regionOf(t, c, Options{}, field); got != types.MakeScope(42) {
		t.Fatalf("h.n = %v, want scope 42", got)
	}
	deref := c.place(c.b.Exprs.NewUnary(source.Span{}, ast.ExprUnaryDeref, h), inner, intTy)
	if got := regionOf(t, c, Options{}, deref); got != types.MakeScope(42) {
		t.Fatalf("*h = %v, want scope 42", got)
	}
}

func TestRegionOfProjectionThroughOwningPointer(t *testing.T) {
	for _, mk := range []func(types.TypeID) types.Type{types.MakeBox, types.MakeOwn} {
		c := newTestCtx()
		decl := c.scope(symbols.NoScopeID)
		use := c.scope(decl)
		intTy := c.in.Builtins().Int
		boxTy := c.in.Intern(mk(intTy))

		b := c.ident(c.local("b", symbols.SymbolLocal, decl), use, boxTy)
		deref := c.place(c.b.Exprs.NewUnary(source.Span{}, ast.ExprUnaryDeref, b), use, intTy)

		// the enclosing scope of the base expression, not the declaration
		if got := regionOf(t, c, Options{}, deref); got != types.MakeScope(use) {
			t.Fatalf("*b = %v, want scope %d", got, use)
		}
	}
}

func TestRegionOfProjectionByValueFollowsContainer(t *testing.T) {
	c := newTestCtx()
	decl := c.scope(symbols.NoScopeID)
	use := c.scope(decl)
	intTy := c.in.Builtins().Int
	arrTy := c.in.Intern(types.MakeArray(intTy, 4))
	aliasTy := c.in.RegisterAlias(c.b.Intern("Quad"), arrTy)

	arr := c.ident(c.local("arr", symbols.SymbolLocal, decl), use, aliasTy)
	zero := c.place(c.b.Exprs.NewLiteral(source.Span{}, ast.ExprLitInt, c.b.Intern("0")), use, intTy)
	idx := c.place(c.b.Exprs.NewIndex(source.Span{}, arr, zero), use, intTy)
	if got := regionOf(t, c, Options{}, idx); got != types.MakeScope(decl) {
		t.Fatalf("arr[0] = %v, want declaration scope %d", got, decl)
	}
}

func TestRegionOfRvalueUsesOwnScope(t *testing.T) {
	c := newTestCtx()
	s := c.scope(symbols.NoScopeID)
	stmt := c.scope(s)
	intTy := c.in.Builtins().Int
	x := c.ident(c.local("x", symbols.SymbolLocal, s), stmt, intTy)
	one := c.place(c.b.Exprs.NewLiteral(source.Span{}, ast.ExprLitInt, c.b.Intern("1")), stmt, intTy)
	sum := c.place(c.b.Exprs.NewBinary(source.Span{}, ast.ExprBinaryAdd, x, one), stmt, intTy)

	for _, e := range []ast.ExprID{one, sum} {
		if got := regionOf(t, c, Options{}, e); got != types.MakeScope(stmt) {
			t.Fatalf("rvalue region = %v, want scope %d", got, stmt)
		}
	}
	// parentheses do not create a temporary
	group := c.place(c.b.Exprs.NewGroup(source.Span{}, x), stmt, intTy)
	if got := regionOf(t, c, Options{}, group); got != types.MakeScope(s) {
		t.Fatalf("(x) = %v, want scope %d", got, s)
	}
}

func TestRegionOfItemsAreStatic(t *testing.T) {
	c := newTestCtx()
	s := c.scope(symbols.NoScopeID)
	kinds := []symbols.SymbolKind{
		symbols.SymbolFunction, symbols.SymbolModule, symbols.SymbolExternModule,
		symbols.SymbolConst, symbols.SymbolImport, symbols.SymbolVariant,
		symbols.SymbolType, symbols.SymbolPrimType, symbols.SymbolTypeParam,
		symbols.SymbolClass, symbols.SymbolRegion,
	}
	for _, kind := range kinds {
		sym := c.table.Symbols.New(&symbols.Symbol{Name: c.b.Intern(kind.String()), Kind: kind})
		e := c.ident(sym, s, types.NoTypeID)
		if got := regionOf(t, c, Options{}, e); got != types.MakeStatic() {
			t.Fatalf("%s: got %v, want 'static", kind, got)
		}
	}
}

func TestRegionOfUpvarFollowsCapture(t *testing.T) {
	c := newTestCtx()
	outer := c.scope(symbols.NoScopeID)
	closure := c.scope(outer)
	x := c.local("x", symbols.SymbolLocal, outer)
	up1 := c.table.Symbols.New(&symbols.Symbol{Name: c.b.Intern("x"), Kind: symbols.SymbolUpvar, Captured: x})
	up2 := c.table.Symbols.New(&symbols.Symbol{Name: c.b.Intern("x"), Kind: symbols.SymbolUpvar, Captured: up1})
	use := c.ident(up2, closure, c.in.Builtins().Int)
	if got := regionOf(t, c, Options{}, use); got != types.MakeScope(outer) {
		t.Fatalf("upvar = %v, want scope %d", got, outer)
	}
}

func TestRegionOfSelf(t *testing.T) {
	c := newTestCtx()
	s := c.scope(symbols.NoScopeID)
	self := c.table.Symbols.New(&symbols.Symbol{Name: c.b.Intern("self"), Kind: symbols.SymbolSelf})
	use := c.ident(self, s, types.NoTypeID)

	if got := regionOf(t, c, Options{}, use); got != types.MakeScope(s) {
		t.Fatalf("self fallback = %v, want borrow of scope %d", got, s)
	}
	if _, err := NewResolver(c, Options{SelfFallback: SelfFallbackAbort}).RegionOf(context.Background(), use); !IsAbort(err) {
		t.Fatalf("abort policy must abort, got %v", err)
	}

	c.self = types.MakeFree(s, types.SelfBound())
	for _, policy := range []SelfFallback{SelfFallbackBorrow, SelfFallbackAbort} {
		if got := regionOf(t, c, Options{SelfFallback: policy}, use); got != c.self {
			t.Fatalf("bound self = %v, want %v", got, c.self)
		}
	}
}

func TestRegionOfBorrowOfIndexIgnoresIndexScope(t *testing.T) {
	c := newTestCtx()
	fn := c.scope(symbols.NoScopeID)
	block := c.scope(fn)
	stmt := c.scope(block)
	intTy := c.in.Builtins().Int
	a := types.MakeBound(c.named("a"))

	arr := c.ident(c.local("arr", symbols.SymbolParam, fn), stmt, c.ref(a, c.in.Intern(types.MakeArray(intTy, types.ArrayDynamicLength))))
	i := c.ident(c.local("i", symbols.SymbolLocal, block), stmt, intTy)
	idx := c.place(c.b.Exprs.NewIndex(source.Span{}, arr, i), stmt, intTy)
	borrow := c.place(c.b.Exprs.NewUnary(source.Span{}, ast.ExprUnaryRef, idx), stmt, c.ref(a, intTy))

	operand, _ := c.b.Exprs.Unary(borrow)
	if got := regionOf(t, c, Options{}, operand.Operand); got != a {
		t.Fatalf("&arr[i] = %v, want 'a", got)
	}
}

func TestRegionOfAbortsOnMissingData(t *testing.T) {
	c := newTestCtx()
	s := c.scope(symbols.NoScopeID)

	unresolved := c.place(c.b.Exprs.NewIdent(source.Span{}, c.b.Intern("ghost")), s, types.NoTypeID)
	noScope := c.b.Exprs.NewLiteral(source.Span{}, ast.ExprLitInt, c.b.Intern("1"))
	x := c.ident(c.local("x", symbols.SymbolLocal, s), s, types.NoTypeID)
	untyped := c.place(c.b.Exprs.NewMember(source.Span{}, x, c.b.Intern("f")), s, types.NoTypeID)

	for name, e := range map[string]ast.ExprID{"unresolved": unresolved, "no scope": noScope, "untyped base": untyped, "invalid": ast.NoExprID} {
		if _, err := NewResolver(c, Options{}).RegionOf(context.Background(), e); !IsAbort(err) {
			t.Fatalf("%s: expected abort, got %v", name, err)
		}
	}
}

func TestRegionOfDepthGuard(t *testing.T) {
	c := newTestCtx()
	s := c.scope(symbols.NoScopeID)
	e := c.ident(c.local("x", symbols.SymbolLocal, s), s, c.in.Builtins().Int)
	for range 10 {
		e = c.place(c.b.Exprs.NewGroup(source.Span{}, e), s, c.in.Builtins().Int)
	}
	if got := regionOf(t, c, Options{MaxDepth: 20}, e); got != types.MakeScope(s) {
		t.Fatalf("nested groups = %v", got)
	}
	if _, err := NewResolver(c, Options{MaxDepth: 5}).RegionOf(context.Background(), e); !IsAbort(err) {
		t.Fatalf("depth guard must abort, got %v", err)
	}
}
