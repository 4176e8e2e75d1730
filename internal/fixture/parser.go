package fixture

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"regionck/internal/ast"
	"regionck/internal/diag"
	"regionck/internal/source"
	"regionck/internal/symbols"
	"regionck/internal/types"
)

// parser reads one notation snippet (a type, a region or an expression).
type parser struct {
	toks     []token
	pos      int
	env      *typeEnv
	reporter diag.Reporter
	failed   bool

	// set for expression snippets only
	builder *ast.Builder
	created []ast.ExprID
}

func newParser(text string, base source.Span, env *typeEnv, r diag.Reporter) *parser {
	return &parser{toks: scan(text, base), env: env, reporter: r}
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekN(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.Kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) at(text string) bool {
	tok := p.peek()
	return (tok.Kind == tokPunct || tok.Kind == tokIdent) && tok.Text == text
}

func (p *parser) eat(text string) bool {
	if p.at(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(code diag.Code, text string) bool {
	if p.eat(text) {
		return true
	}
	p.errAt(code, p.peek().Span, fmt.Sprintf("expected %q, got %s", text, describe(p.peek())))
	return false
}

// errAt reports only the first error of a snippet; later ones are noise.
func (p *parser) errAt(code diag.Code, sp source.Span, msg string) {
	if p.failed {
		return
	}
	p.failed = true
	diag.ReportError(p.reporter, code, sp, msg).Emit()
}

// finish checks that the whole snippet was consumed.
func (p *parser) finish(code diag.Code) bool {
	if p.peek().Kind != tokEOF {
		p.errAt(code, p.peek().Span, fmt.Sprintf("unexpected %s", describe(p.peek())))
	}
	return !p.failed
}

func describe(tok token) string {
	switch tok.Kind {
	case tokEOF:
		return "end of input"
	case tokLifetime:
		return fmt.Sprintf("region '%s", tok.Text)
	case tokInvalid:
		return fmt.Sprintf("invalid input %q", tok.Text)
	default:
		return strconv.Quote(tok.Text)
	}
}

func (p *parser) parseUint32(code diag.Code) (uint32, bool) {
	tok := p.peek()
	if tok.Kind != tokInt {
		p.errAt(code, tok.Span, fmt.Sprintf("expected number, got %s", describe(tok)))
		return 0, false
	}
	p.advance()
	n, err := strconv.ParseUint(tok.Text, 10, 64)
	if err == nil {
		var v uint32
		if v, err = safecast.Conv[uint32](n); err == nil {
			return v, true
		}
	}
	p.errAt(code, tok.Span, fmt.Sprintf("number %s out of range", tok.Text))
	return 0, false
}

// parseBoundName reads a bound region name: '&, 'self or 'name.
func (p *parser) parseBoundName() (types.BoundRegion, bool) {
	tok := p.peek()
	if tok.Kind != tokLifetime {
		p.errAt(diag.FixBadRegion, tok.Span, fmt.Sprintf("expected region name, got %s", describe(tok)))
		return types.BoundRegion{}, false
	}
	p.advance()
	switch tok.Text {
	case "&":
		return types.AnonBound(), true
	case "self":
		return types.SelfBound(), true
	case "static", "scope", "free":
		p.errAt(diag.FixBadRegion, tok.Span, fmt.Sprintf("'%s is not a bound region name", tok.Text))
		return types.BoundRegion{}, false
	}
	if tok.Text[0] == '?' {
		p.errAt(diag.FixBadRegion, tok.Span, "region variables cannot be bound names")
		return types.BoundRegion{}, false
	}
	return types.NamedBound(p.env.strings.Intern(tok.Text)), true
}

// parseRegion reads any region form:
//
//	'static  '&  'self  'name  '?N  'scope(N)  'free(N, 'name)
func (p *parser) parseRegion() (types.Region, bool) {
	tok := p.peek()
	if tok.Kind != tokLifetime {
		p.errAt(diag.FixBadRegion, tok.Span, fmt.Sprintf("expected region, got %s", describe(tok)))
		return types.Region{}, false
	}
	switch {
	case tok.Text == "static":
		p.advance()
		return types.MakeStatic(), true

	case tok.Text == "scope":
		p.advance()
		if !p.expect(diag.FixBadRegion, "(") {
			return types.Region{}, false
		}
		n, ok := p.parseUint32(diag.FixBadRegion)
		if !ok || !p.expect(diag.FixBadRegion, ")") {
			return types.Region{}, false
		}
		return types.MakeScope(symbols.ScopeID(n)), true

	case tok.Text == "free":
		p.advance()
		if !p.expect(diag.FixBadRegion, "(") {
			return types.Region{}, false
		}
		n, ok := p.parseUint32(diag.FixBadRegion)
		if !ok || !p.expect(diag.FixBadRegion, ",") {
			return types.Region{}, false
		}
		br, ok := p.parseBoundName()
		if !ok || !p.expect(diag.FixBadRegion, ")") {
			return types.Region{}, false
		}
		return types.MakeFree(symbols.ScopeID(n), br), true

	case tok.Text[0] == '?':
		p.advance()
		n, err := strconv.ParseUint(tok.Text[1:], 10, 32)
		if err != nil {
			p.errAt(diag.FixBadRegion, tok.Span, fmt.Sprintf("malformed region variable '%s", tok.Text))
			return types.Region{}, false
		}
		return types.MakeVar(types.RegionVarID(n)), true

	default:
		br, ok := p.parseBoundName()
		if !ok {
			return types.Region{}, false
		}
		return types.MakeBound(br), true
	}
}
