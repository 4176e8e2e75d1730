package driver

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"regionck/internal/diag"
	"regionck/internal/observ"
)

// ReportOptions control WriteReport.
type ReportOptions struct {
	Color   bool
	Verbose bool // list every case, not only failures
	Notes   bool // include diagnostic notes
	Width   int  // terminal width for case lines; 0 means 100
}

type palette struct {
	pass, fail, cached, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		pass:   color.New(color.FgGreen, color.Bold),
		fail:   color.New(color.FgRed, color.Bold),
		cached: color.New(color.FgCyan),
		dim:    color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.pass, p.fail, p.cached, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// WriteReport renders res: one status line per file, the failing (or,
// when verbose, all) cases, the file's diagnostics and a summary line.
func WriteReport(w io.Writer, res *Result, opts ReportOptions) error {
	if res == nil {
		return nil
	}
	pal := newPalette(opts.Color)
	width := opts.Width
	if width <= 0 {
		width = 100
	}

	for i := range res.Files {
		f := &res.Files[i]
		status := pal.pass.Sprint("PASS")
		if f.Failed() {
			status = pal.fail.Sprint("FAIL")
		}
		passed := 0
		for _, o := range f.Outcomes {
			if o.Pass {
				passed++
			}
		}
		line := fmt.Sprintf("%s %s %d/%d cases", status, displayPath(f.Path), passed, len(f.Outcomes))
		if f.Cached {
			line += " " + pal.cached.Sprint("(cached)")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		for _, o := range f.Outcomes {
			if o.Pass && !opts.Verbose {
				continue
			}
			if _, err := fmt.Fprintln(w, caseLine(o, pal, width)); err != nil {
				return err
			}
		}

		if f.Bag != nil && f.Bag.Len() > 0 {
			text := diag.FormatShort(f.Bag.Items(), res.FileSet, opts.Notes)
			if _, err := fmt.Fprintln(w, text); err != nil {
				return err
			}
		}
	}

	s := res.Summary()
	summary := fmt.Sprintf("%d files, %d cases: %d passed, %d failed", s.Files, s.Cases, s.Passed, s.Failed)
	if s.ExpectedAborts > 0 {
		summary += fmt.Sprintf(" (%d expected aborts)", s.ExpectedAborts)
	}
	if s.Cached > 0 {
		summary += fmt.Sprintf(", %d cached", s.Cached)
	}
	if s.Failed > 0 {
		summary = pal.fail.Sprint(summary)
	} else {
		summary = pal.pass.Sprint(summary)
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

// WriteTimings prints the per-file phase table followed by the totals.
func WriteTimings(w io.Writer, res *Result) error {
	reports := make([]observ.Report, 0, len(res.Files))
	for i := range res.Files {
		f := &res.Files[i]
		if len(f.Timings.Phases) == 0 {
			continue
		}
		reports = append(reports, f.Timings)
		if _, err := fmt.Fprintf(w, "%s\n%s", displayPath(f.Path), f.Timings.String()); err != nil {
			return err
		}
	}
	if len(reports) < 2 {
		return nil
	}
	_, err := fmt.Fprintf(w, "total\n%s", observ.Sum(reports...).String())
	return err
}

const caseLabelWidth = 40

func caseLine(o Outcome, pal palette, width int) string {
	mark := pal.pass.Sprint("ok  ")
	if !o.Pass {
		mark = pal.fail.Sprint("FAIL")
	}
	label := fmt.Sprintf("%s %s: %s", o.Kind, o.Function, o.Text)
	label = runewidth.FillRight(runewidth.Truncate(label, caseLabelWidth, "…"), caseLabelWidth)
	detail := "=> " + o.Got
	if !o.Pass {
		detail += ", expected " + o.Want
	}
	rest := max(width-caseLabelWidth-8, 10)
	return fmt.Sprintf("  %s %s %s", mark, label, pal.dim.Sprint(runewidth.Truncate(detail, rest, "…")))
}

func displayPath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
