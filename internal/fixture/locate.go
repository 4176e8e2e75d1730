package fixture

import (
	"bytes"
	"strings"

	"regionck/internal/source"
)

// extent is a byte range of the scenario file.
type extent struct {
	start, end int
}

type tableHeader struct {
	name  string
	start int
}

// scanHeaders records every [table] and [[array-of-tables]] header line.
func scanHeaders(content []byte) []tableHeader {
	var headers []tableHeader
	offset := 0
	for line := range bytes.Lines(content) {
		start := offset
		offset += len(line)
		text := strings.TrimSpace(string(line))
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(text, "["), "]")
		name = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(name, "["), "]"))
		// строки многострочных массивов тоже начинаются с '['
		if name == "" || strings.ContainsAny(name, "\"',=[]") {
			continue
		}
		headers = append(headers, tableHeader{name: name, start: start})
	}
	return headers
}

func (l *loader) whole() extent {
	return extent{0, len(l.file.Content)}
}

// table returns the extent of the n-th [[name]] entry inside within,
// including its sub-tables. Entries written inline have no header, so
// within itself is returned.
func (l *loader) table(within extent, name string, n int) extent {
	for i, h := range l.headers {
		if h.start < within.start || h.start >= within.end || h.name != name {
			continue
		}
		if n > 0 {
			n--
			continue
		}
		end := within.end
		for _, next := range l.headers[i+1:] {
			if next.start >= within.end {
				break
			}
			if !strings.HasPrefix(next.name, name+".") {
				end = next.start
				break
			}
		}
		return extent{h.start, end}
	}
	return within
}

// locate finds the span of the quoted value text of key inside ext. TOML
// decoding keeps no positions, so the key line is found first and the
// value searched for after it.
func (l *loader) locate(ext extent, key, text string) source.Span {
	spans := l.locateList(ext, key, []string{text})
	return spans[0]
}

// locateList is locate for array values: each element is searched for
// after the previous one.
func (l *loader) locateList(ext extent, key string, texts []string) []source.Span {
	spans := make([]source.Span, len(texts))
	from, found := l.findKey(ext, key)
	if !found {
		from = ext.start
	}
	for i, text := range texts {
		spans[i] = l.span(0, 0)
		if text == "" {
			continue
		}
		if start, ok := l.findQuoted(from, ext.end, text); ok {
			spans[i] = l.span(start, start+len(text))
			from = start + len(text)
			continue
		}
		// inline tables carry no header, the first occurrence is the best guess
		if start, ok := l.findQuoted(0, len(l.file.Content), text); ok {
			spans[i] = l.span(start, start+len(text))
		}
	}
	return spans
}

// findKey returns the offset just past `key =` on a line of ext.
func (l *loader) findKey(ext extent, key string) (int, bool) {
	content := l.file.Content[:ext.end]
	offset := ext.start
	for line := range bytes.Lines(content[ext.start:]) {
		start := offset
		offset += len(line)
		rest := bytes.TrimLeft(line, " \t")
		if !bytes.HasPrefix(rest, []byte(key)) {
			continue
		}
		rest = bytes.TrimLeft(rest[len(key):], " \t")
		if len(rest) == 0 || rest[0] != '=' {
			continue
		}
		return start + len(line) - len(rest) + 1, true
	}
	return 0, false
}

// findQuoted returns the offset of the earliest "text" or 'text' in
// [from, to), pointing past the opening quote.
func (l *loader) findQuoted(from, to int, text string) (int, bool) {
	if from >= to {
		return 0, false
	}
	content := l.file.Content[from:to]
	best := -1
	for _, q := range [...]string{`"`, `'`} {
		i := bytes.Index(content, []byte(q+text+q))
		if i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return from + best + 1, true
}
