package testkit

import (
	"strings"
	"testing"

	"regionck/internal/ast"
	"regionck/internal/source"
)

func TestCheckExprSpans(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("case.toml", []byte(`expr = "&a[i]"`))
	sf := fs.Get(id)
	span := func(start, end uint32) source.Span { return source.Span{File: id, Start: start, End: end} }

	b := ast.NewBuilder(ast.Hints{}, nil)
	a := b.Exprs.NewIdent(span(9, 10), b.Intern("a"))
	i := b.Exprs.NewIdent(span(11, 12), b.Intern("i"))
	index := b.Exprs.NewIndex(span(9, 13), a, i)
	root := b.Exprs.NewUnary(span(8, 13), ast.ExprUnaryRef, index)

	if err := CheckExprSpans(b.Exprs, root, sf, span(8, 13)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckExprSpans(b.Exprs, root, sf, span(9, 13)); err == nil {
		t.Fatalf("root outside the case span should fail")
	}

	stray := b.Exprs.NewIdent(span(2, 4), b.Intern("x"))
	bad := b.Exprs.NewUnary(span(8, 13), ast.ExprUnaryDeref, stray)
	err := CheckExprSpans(b.Exprs, bad, sf, span(0, 14))
	if err == nil || !strings.Contains(err.Error(), "outside parent span") {
		t.Fatalf("expected containment error, got %v", err)
	}

	empty := b.Exprs.NewIdent(span(5, 5), b.Intern("e"))
	if err := CheckExprSpans(b.Exprs, empty, sf, span(0, 14)); err == nil {
		t.Fatalf("empty span should fail")
	}
}
