package sema

import (
	"context"
	"errors"
	"testing"

	"regionck/internal/ast"
	"regionck/internal/diag"
	"regionck/internal/regions"
	"regionck/internal/source"
	"regionck/internal/symbols"
	"regionck/internal/types"
)

type fixture struct {
	b     *ast.Builder
	table *symbols.Table
	in    *types.Interner
	tys   map[ast.ExprID]types.TypeID
	bag   *diag.Bag
}

func newFixture() *fixture {
	strs := source.NewInterner()
	return &fixture{
		b:     ast.NewBuilder(ast.Hints{}, strs),
		table: symbols.NewTable(symbols.Hints{}, strs),
		in:    types.NewInterner(),
		tys:   make(map[ast.ExprID]types.TypeID),
		bag:   diag.NewBag(16),
	}
}

func (f *fixture) fnctxt(t *testing.T, vars *regions.VarAllocator) *FnCtxt {
	t.Helper()
	fcx, err := NewFnCtxt(Options{
		Builder:   f.b,
		Symbols:   f.table,
		Types:     f.in,
		ExprTypes: f.tys,
		Vars:      vars,
		Reporter:  diag.BagReporter{Bag: f.bag},
	})
	if err != nil {
		t.Fatalf("NewFnCtxt: %v", err)
	}
	return fcx
}

func TestRegionOfBorrowStripsReference(t *testing.T) {
	f := newFixture()
	fn := f.table.Scopes.New(symbols.ScopeFunction, symbols.NoScopeID, source.Span{})
	stmt := f.table.Scopes.New(symbols.ScopeStmt, fn, source.Span{})

	bind := f.b.Bindings.New(ast.BindingLet, source.Span{}, f.b.Intern("x"))
	f.table.SetScope(f.b.Bindings.Get(bind).Node, fn)
	x := f.table.Symbols.New(&symbols.Symbol{Name: f.b.Intern("x"), Kind: symbols.SymbolLocal, Binding: bind})

	use := f.b.Exprs.NewIdent(source.Span{}, f.b.Intern("x"))
	f.table.Resolve(use, x)
	f.table.SetScope(f.b.Exprs.Node(use), stmt)
	borrow := f.b.Exprs.NewUnary(source.Span{}, ast.ExprUnaryRef, use)
	f.table.SetScope(f.b.Exprs.Node(borrow), stmt)

	fcx := f.fnctxt(t, nil)
	for _, e := range []ast.ExprID{borrow, use} {
		got, err := fcx.RegionOfBorrow(context.Background(), e)
		if err != nil {
			t.Fatalf("RegionOfBorrow: %v", err)
		}
		if got != types.MakeScope(fn) {
			t.Fatalf("region = %v, want scope %d", got, fn)
		}
	}
}

func TestInstantiateImplSharesAllocator(t *testing.T) {
	f := newFixture()
	vars := regions.NewVarAllocator()
	vars.Next() // '?0 taken by another function

	a := types.NamedBound(f.b.Intern("a"))
	ty := f.in.Intern(types.MakeReference(types.MakeBound(a), f.in.Builtins().Int, true))

	fcx := f.fnctxt(t, vars)
	got, err := fcx.InstantiateImpl(context.Background(), source.Span{}, []types.TypeID{ty}, ty)
	if err != nil {
		t.Fatalf("InstantiateImpl: %v", err)
	}
	want := f.in.Intern(types.MakeReference(types.MakeVar(1), f.in.Builtins().Int, true))
	if got != want {
		t.Fatalf("got %s", types.Printer{Types: f.in, Strings: f.b.Strings}.TypeString(got))
	}
}

func TestAbortReportsFatalAndStopsFunction(t *testing.T) {
	f := newFixture()
	ty := f.in.Intern(types.MakeReference(types.MakeBound(types.NamedBound(f.b.Intern("z"))), f.in.Builtins().Int, false))
	fcx := f.fnctxt(t, nil)

	_, err := fcx.InstantiateImpl(context.Background(), source.Span{File: 1}, nil, ty)
	if !regions.IsAbort(err) {
		t.Fatalf("expected abort, got %v", err)
	}
	if !fcx.Aborted() || !f.bag.HasFatal() {
		t.Fatalf("abort must be recorded as a fatal diagnostic")
	}
	if d := f.bag.Items()[0]; d.Code != diag.SemaRegionInternal {
		t.Fatalf("code = %s", d.Code.ID())
	}

	if _, err := fcx.RegionOfBorrow(context.Background(), ast.NoExprID); !errors.Is(err, ErrFunctionAborted) {
		t.Fatalf("aborted function must refuse further work, got %v", err)
	}
	if f.bag.Len() != 1 {
		t.Fatalf("no further diagnostics expected, got %d", f.bag.Len())
	}
}

func TestNewFnCtxtRequiresTables(t *testing.T) {
	if _, err := NewFnCtxt(Options{}); err == nil {
		t.Fatalf("missing tables must be rejected")
	}
}
