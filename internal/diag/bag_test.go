package diag

import (
	"testing"

	"regionck/internal/source"
)

func TestBagLimitAndSeverity(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	r.Report(SemaRegionMismatch, SevWarning, source.Span{File: 1, Start: 4, End: 5}, "w", nil)
	if bag.HasErrors() {
		t.Fatalf("warning must not count as error")
	}
	ReportFatal(r, SemaRegionInternal, source.Span{File: 1}, "boom").Emit()
	if !bag.HasErrors() || !bag.HasFatal() {
		t.Fatalf("fatal must count as error and fatal")
	}
	r.Report(SemaInfo, SevInfo, source.Span{}, "dropped", nil)
	if bag.Len() != 2 {
		t.Fatalf("bag must honour its limit, got %d", bag.Len())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 1, Start: 10, End: 12}
	r.Report(SemaRegionMismatch, SevError, sp, "late", nil)
	r.Report(SemaRegionMismatch, SevError, sp, "late", nil)
	r.Report(FixBadType, SevError, source.Span{File: 1, Start: 1, End: 2}, "early", nil)
	if bag.Len() != 2 {
		t.Fatalf("duplicates must be suppressed, got %d", bag.Len())
	}
	bag.Sort()
	if bag.Items()[0].Message != "early" {
		t.Fatalf("bag not sorted by position")
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Add("cases/a.toml", []byte("x\ny = 1\n"))
	d := NewError(SemaRegionMismatch, source.Span{File: file, Start: 2, End: 3}, "region\nmismatch").
		WithNote(source.Span{File: file, Start: 0, End: 1}, "declared here")
	got := FormatShort([]Diagnostic{d}, fs, true)
	want := "note SEM3002 cases/a.toml:1:1 declared here\n" +
		"error SEM3002 cases/a.toml:2:1 region mismatch"
	if got != want {
		t.Fatalf("FormatShort:\nwant:\n%s\ngot:\n%s", want, got)
	}
}
