package diag

import (
	"fmt"
	"sort"
	"strings"

	"regionck/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders diagnostics one per line as
// "severity CODE path:line:col message", sorted by position. Spans that
// do not resolve against fs are printed with an empty location.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, shortLine(fs, d.Primary, SeverityLabel(d.Severity), d.Code, d.Message))
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			rendered = append(rendered, shortLine(fs, note.Span, "note", d.Code, note.Msg))
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		return di.Column < dj.Column
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func shortLine(fs *source.FileSet, span source.Span, sev string, code Code, msg string) shortDiagnostic {
	out := shortDiagnostic{
		Severity: sev,
		Code:     code.ID(),
		Message:  sanitizeMessage(msg),
	}
	if fs == nil {
		return out
	}
	start, _, ok := fs.Resolve(span)
	if !ok {
		return out
	}
	out.Path = fs.Get(span.File).Path
	out.Line = start.Line
	out.Column = start.Col
	return out
}

// SeverityLabel is the lower-case word used in rendered output.
func SeverityLabel(sev Severity) string {
	switch sev {
	case SevFatal:
		return "fatal"
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
