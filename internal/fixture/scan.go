package fixture

import (
	"fmt"

	"fortio.org/safecast"

	"regionck/internal/source"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokInvalid
	tokIdent
	tokInt
	tokFloat
	tokString
	tokLifetime // 'a, 'static, '&, '?3 (Text holds what follows the quote)
	tokPunct
)

type token struct {
	Kind tokKind
	Text string
	Span source.Span
}

// multi-byte punctuation is matched before single bytes
var puncts = []string{"->", "==", "(", ")", "[", "]", "<", ">", ",", ";", "&", "*", "!", "-", "+", "/", ".", "="}

// scan splits a notation snippet into tokens. base is the span of the
// snippet inside its scenario file; token spans are shifted into it.
func scan(text string, base source.Span) []token {
	var toks []token
	emit := func(kind tokKind, start, end int) {
		toks = append(toks, token{Kind: kind, Text: text[start:end], Span: spanAt(base, start, end)})
	}
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isIdentStart(c):
			j := i + 1
			for j < len(text) && isIdentPart(text[j]) {
				j++
			}
			emit(tokIdent, i, j)
			i = j

		case isDigit(c):
			j := i + 1
			for j < len(text) && isDigit(text[j]) {
				j++
			}
			kind := tokInt
			if j+1 < len(text) && text[j] == '.' && isDigit(text[j+1]) {
				kind = tokFloat
				j++
				for j < len(text) && isDigit(text[j]) {
					j++
				}
			}
			emit(kind, i, j)
			i = j

		case c == '"':
			j := i + 1
			for j < len(text) && text[j] != '"' {
				if text[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(text) {
				emit(tokInvalid, i, len(text))
				i = len(text)
				continue
			}
			toks = append(toks, token{Kind: tokString, Text: text[i+1 : j], Span: spanAt(base, i, j+1)})
			i = j + 1

		case c == '\'':
			j := i + 1
			switch {
			case j < len(text) && text[j] == '&':
				j++
			case j < len(text) && text[j] == '?':
				j++
				for j < len(text) && isDigit(text[j]) {
					j++
				}
			default:
				for j < len(text) && isIdentPart(text[j]) {
					j++
				}
			}
			if j == i+1 {
				emit(tokInvalid, i, j)
			} else {
				toks = append(toks, token{Kind: tokLifetime, Text: text[i+1 : j], Span: spanAt(base, i, j)})
			}
			i = j

		default:
			matched := false
			for _, p := range puncts {
				if len(text)-i >= len(p) && text[i:i+len(p)] == p {
					emit(tokPunct, i, i+len(p))
					i += len(p)
					matched = true
					break
				}
			}
			if !matched {
				emit(tokInvalid, i, i+1)
				i++
			}
		}
	}
	toks = append(toks, token{Kind: tokEOF, Span: spanAt(base, len(text), len(text))})
	return toks
}

func spanAt(base source.Span, start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("snippet offset overflow: %w", err))
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("snippet offset overflow: %w", err))
	}
	return source.Span{File: base.File, Start: base.Start + s, End: base.Start + e}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
