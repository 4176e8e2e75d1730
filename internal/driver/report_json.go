package driver

import (
	"encoding/json"
	"io"

	"regionck/internal/diag"
	"regionck/internal/source"
)

// LocationJSON is a resolved span.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
	Notes    []string      `json:"notes,omitempty"`
}

// CaseJSON is one outcome.
type CaseJSON struct {
	Function string        `json:"function"`
	Kind     string        `json:"kind"`
	Case     string        `json:"case"`
	Got      string        `json:"got"`
	Want     string        `json:"want"`
	Pass     bool          `json:"pass"`
	Location *LocationJSON `json:"location,omitempty"`
}

// FileJSON is one scenario file.
type FileJSON struct {
	Path        string           `json:"path"`
	Pass        bool             `json:"pass"`
	Cached      bool             `json:"cached,omitempty"`
	Cases       []CaseJSON       `json:"cases"`
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty"`
}

// ReportJSON is the root of the JSON report.
type ReportJSON struct {
	Files   []FileJSON `json:"files"`
	Summary Summary    `json:"summary"`
}

// WriteJSON writes res as one indented JSON document.
func WriteJSON(w io.Writer, res *Result) error {
	out := ReportJSON{Files: make([]FileJSON, 0, len(res.Files)), Summary: res.Summary()}
	for i := range res.Files {
		f := &res.Files[i]
		fj := FileJSON{Path: displayPath(f.Path), Pass: !f.Failed(), Cached: f.Cached, Cases: make([]CaseJSON, 0, len(f.Outcomes))}
		for _, o := range f.Outcomes {
			fj.Cases = append(fj.Cases, CaseJSON{
				Function: o.Function,
				Kind:     o.Kind.String(),
				Case:     o.Text,
				Got:      o.Got,
				Want:     o.Want,
				Pass:     o.Pass,
				Location: makeLocation(res.FileSet, o.Span),
			})
		}
		if f.Bag != nil {
			for _, d := range f.Bag.Items() {
				dj := DiagnosticJSON{
					Severity: diag.SeverityLabel(d.Severity),
					Code:     d.Code.ID(),
					Message:  d.Message,
					Location: makeLocation(res.FileSet, d.Primary),
				}
				for _, n := range d.Notes {
					dj.Notes = append(dj.Notes, n.Msg)
				}
				fj.Diagnostics = append(fj.Diagnostics, dj)
			}
		}
		out.Files = append(out.Files, fj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// makeLocation returns nil for spans that do not resolve.
func makeLocation(fs *source.FileSet, span source.Span) *LocationJSON {
	if fs == nil {
		return nil
	}
	start, _, ok := fs.Resolve(span)
	if !ok {
		return nil
	}
	return &LocationJSON{
		File:      displayPath(fs.Get(span.File).Path),
		StartByte: span.Start,
		EndByte:   span.End,
		StartLine: start.Line,
		StartCol:  start.Col,
	}
}
