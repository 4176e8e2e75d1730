package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	got := a.Cover(b)
	if got.Start != 2 || got.End != 8 {
		t.Fatalf("unexpected cover: %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if a.Cover(other) != a {
		t.Fatalf("spans from different files must not merge")
	}
}

func TestSpanShift(t *testing.T) {
	s := Span{File: 3, Start: 1, End: 5}.Shift(10)
	if s.Start != 11 || s.End != 15 || s.Len() != 4 {
		t.Fatalf("unexpected shifted span: %v", s)
	}
}
