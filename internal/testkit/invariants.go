// Package testkit holds invariant checks shared by package tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"regionck/internal/ast"
	"regionck/internal/source"
)

// CheckExprSpans checks the spans of the expression tree under root:
//  1. root's span is non-empty, lies in sf and inside within
//  2. every node's span is non-empty and points at sf
//  3. every child span is contained in its parent's span
func CheckExprSpans(exprs *ast.Exprs, root ast.ExprID, sf *source.File, within source.Span) error {
	if exprs == nil || sf == nil {
		return fmt.Errorf("nil exprs or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	e := exprs.Get(root)
	if e == nil {
		return fmt.Errorf("root expression %d not found", root)
	}
	if e.Span.End > lenContent {
		return fmt.Errorf("root span end beyond content: %d > %d", e.Span.End, lenContent)
	}
	if e.Span.Start < within.Start || e.Span.End > within.End {
		return fmt.Errorf("root span %v is outside %v", e.Span, within)
	}
	return checkExpr(exprs, root, e.Span, sf.ID)
}

func checkExpr(exprs *ast.Exprs, id ast.ExprID, parent source.Span, file source.FileID) error {
	e := exprs.Get(id)
	if e == nil {
		return fmt.Errorf("nil expression for id=%d", id)
	}
	sp := e.Span
	if sp.End <= sp.Start {
		return fmt.Errorf("empty %s span: %v", e.Kind, sp)
	}
	if sp.File != file {
		return fmt.Errorf("%s span file mismatch: got=%d want=%d", e.Kind, sp.File, file)
	}
	if sp.Start < parent.Start || sp.End > parent.End {
		return fmt.Errorf("%s span %v is outside parent span %v", e.Kind, sp, parent)
	}
	for _, child := range children(exprs, id) {
		if err := checkExpr(exprs, child, sp, file); err != nil {
			return err
		}
	}
	return nil
}

func children(exprs *ast.Exprs, id ast.ExprID) []ast.ExprID {
	if d, ok := exprs.Binary(id); ok {
		return []ast.ExprID{d.Left, d.Right}
	}
	if d, ok := exprs.Unary(id); ok {
		return []ast.ExprID{d.Operand}
	}
	if d, ok := exprs.Call(id); ok {
		return append([]ast.ExprID{d.Target}, d.Args...)
	}
	if d, ok := exprs.Index(id); ok {
		return []ast.ExprID{d.Target, d.Index}
	}
	if d, ok := exprs.Member(id); ok {
		return []ast.ExprID{d.Target}
	}
	if d, ok := exprs.Group(id); ok {
		return []ast.ExprID{d.Inner}
	}
	return nil
}
