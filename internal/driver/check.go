package driver

import (
	"context"
	"errors"
	"fmt"

	"regionck/internal/diag"
	"regionck/internal/fixture"
	"regionck/internal/regions"
	"regionck/internal/sema"
	"regionck/internal/source"
	"regionck/internal/trace"
)

// CaseKind tells which operation a case exercises.
type CaseKind uint8

const (
	CaseBorrow CaseKind = iota
	CaseInstantiate
)

func (k CaseKind) String() string {
	if k == CaseInstantiate {
		return "instantiate"
	}
	return "borrow"
}

// Outcome is the result of one case.
type Outcome struct {
	Function string
	Kind     CaseKind
	Text     string
	Span     source.Span
	Got      string
	Want     string
	Pass     bool
	Aborted  bool
}

const abortLabel = "abort"

// checkScenario runs every case of sc. Each case gets a fresh function
// context, so an abort stops only the case that raised it; all contexts
// draw region variables from vars.
func checkScenario(ctx context.Context, sc *fixture.Scenario, vars *regions.VarAllocator, opts regions.Options, r diag.Reporter) []Outcome {
	out := make([]Outcome, 0, sc.Cases())
	for _, fn := range sc.Functions {
		sp, fctx := trace.Start(ctx, trace.ScopeFunction, fn.Name)
		failed := 0
		for _, c := range fn.Borrows {
			o := checkBorrow(fctx, sc, fn, c, vars, opts, r)
			if !o.Pass {
				failed++
			}
			out = append(out, o)
		}
		for _, c := range fn.Instantiations {
			o := checkInstantiate(fctx, sc, fn, c, vars, opts, r)
			if !o.Pass {
				failed++
			}
			out = append(out, o)
		}
		sp.WithExtra("failed", fmt.Sprint(failed))
		sp.End("")
	}
	return out
}

func newFnCtxt(sc *fixture.Scenario, fn *fixture.Function, vars *regions.VarAllocator, opts regions.Options, r diag.Reporter) (*sema.FnCtxt, error) {
	return sema.NewFnCtxt(sema.Options{
		Builder:    fn.Builder,
		Symbols:    fn.Symbols,
		Types:      sc.Types,
		ExprTypes:  fn.ExprTypes,
		SelfRegion: fn.SelfRegion,
		Vars:       vars,
		Reporter:   r,
		Regions:    opts,
	})
}

func checkBorrow(ctx context.Context, sc *fixture.Scenario, fn *fixture.Function, c fixture.BorrowCase, vars *regions.VarAllocator, opts regions.Options, r diag.Reporter) Outcome {
	p := sc.Printer()
	o := Outcome{Function: fn.Name, Kind: CaseBorrow, Text: c.Text, Span: c.Span, Want: abortLabel}
	if !c.WantAbort {
		o.Want = p.RegionString(c.Want)
	}
	caseBag := diag.NewBag(8)
	fcx, err := newFnCtxt(sc, fn, vars, opts, diag.BagReporter{Bag: caseBag})
	if err != nil {
		o.settle(err, "", false, c.WantAbort, caseBag, r)
		return o
	}
	region, err := fcx.RegionOfBorrow(ctx, c.Expr)
	o.settle(err, p.RegionString(region), region == c.Want, c.WantAbort, caseBag, r)
	return o
}

func checkInstantiate(ctx context.Context, sc *fixture.Scenario, fn *fixture.Function, c fixture.InstantiateCase, vars *regions.VarAllocator, opts regions.Options, r diag.Reporter) Outcome {
	p := sc.Printer()
	o := Outcome{Function: fn.Name, Kind: CaseInstantiate, Text: c.Text, Span: c.Span, Want: abortLabel}
	want := c.Want
	if !c.WantAbort {
		want = fixture.CanonicalVars(sc.Types, c.Want)
		o.Want = p.TypeString(want)
	}
	caseBag := diag.NewBag(8)
	fcx, err := newFnCtxt(sc, fn, vars, opts, diag.BagReporter{Bag: caseBag})
	if err != nil {
		o.settle(err, "", false, c.WantAbort, caseBag, r)
		return o
	}
	ty, err := fcx.InstantiateImpl(ctx, c.Span, c.Bound, c.Target)
	got := ty
	if err == nil {
		got = fixture.CanonicalVars(sc.Types, ty)
	}
	o.settle(err, p.TypeString(got), got == want, c.WantAbort, caseBag, r)
	return o
}

// settle decides pass/fail and reports what the user needs to see:
// the fatal diagnostic of an unexpected abort, or a mismatch error.
func (o *Outcome) settle(err error, got string, match, wantAbort bool, caseBag *diag.Bag, r diag.Reporter) {
	code := diag.SemaRegionMismatch
	what := "region of " + o.Text
	if o.Kind == CaseInstantiate {
		code = diag.SemaInstantiateMismatch
		what = "instantiation of " + o.Text
	}

	var abortErr *regions.AbortError
	switch {
	case errors.As(err, &abortErr):
		o.Aborted = true
		o.Got = abortLabel
		o.Pass = wantAbort
		if !o.Pass {
			for _, d := range caseBag.Items() {
				r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
			}
		}

	case err != nil:
		o.Got = "error"
		diag.ReportError(r, diag.SemaRegionInternal, o.Span, fmt.Sprintf("%s in %s: %v", what, o.Function, err)).Emit()

	default:
		o.Got = got
		o.Pass = match && !wantAbort
		if !o.Pass {
			diag.ReportError(r, code, o.Span, fmt.Sprintf("%s in %s: got %s, expected %s", what, o.Function, o.Got, o.Want)).Emit()
		}
	}
}
