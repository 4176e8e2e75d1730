package fixture

import (
	"fmt"

	"regionck/internal/ast"
	"regionck/internal/diag"
	"regionck/internal/source"
)

// parseExprSnippet parses a complete expression into b and returns the
// root together with every node created for it.
func parseExprSnippet(text string, base source.Span, env *typeEnv, b *ast.Builder, r diag.Reporter) (ast.ExprID, []ast.ExprID, bool) {
	p := newParser(text, base, env, r)
	p.builder = b
	root, ok := p.parseExpr()
	if !ok || !p.finish(diag.FixBadExpr) {
		return ast.NoExprID, nil, false
	}
	return root, p.created, true
}

func (p *parser) record(id ast.ExprID) ast.ExprID {
	p.created = append(p.created, id)
	return id
}

func (p *parser) exprSpan(id ast.ExprID) source.Span {
	return p.builder.Exprs.Get(id).Span
}

func (p *parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinaryExpr(1)
}

func binaryPrec(tok token) (ast.ExprBinaryOp, int) {
	if tok.Kind != tokPunct {
		return 0, 0
	}
	switch tok.Text {
	case "==":
		return ast.ExprBinaryEq, 1
	case "<":
		return ast.ExprBinaryLess, 1
	case "+":
		return ast.ExprBinaryAdd, 2
	case "-":
		return ast.ExprBinarySub, 2
	case "*":
		return ast.ExprBinaryMul, 3
	case "/":
		return ast.ExprBinaryDiv, 3
	}
	return 0, 0
}

// parseBinaryExpr: Pratt parsing, все операторы левоассоциативны.
func (p *parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		op, prec := binaryPrec(p.peek())
		if prec == 0 || prec < minPrec {
			return left, true
		}
		p.advance()
		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return ast.NoExprID, false
		}
		sp := p.exprSpan(left).Cover(p.exprSpan(right))
		left = p.record(p.builder.Exprs.NewBinary(sp, op, left, right))
	}
}

func (p *parser) parseUnaryExpr() (ast.ExprID, bool) {
	tok := p.peek()
	var op ast.ExprUnaryOp
	switch {
	case p.at("*"):
		op = ast.ExprUnaryDeref
	case p.at("&"):
		op = ast.ExprUnaryRef
		if next := p.peekN(1); next.Kind == tokIdent && next.Text == "mut" {
			p.advance()
			op = ast.ExprUnaryRefMut
		}
	case p.at("-"):
		op = ast.ExprUnaryMinus
	case p.at("!"):
		op = ast.ExprUnaryNot
	default:
		return p.parsePostfixExpr()
	}
	p.advance()
	operand, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	sp := tok.Span.Cover(p.exprSpan(operand))
	return p.record(p.builder.Exprs.NewUnary(sp, op, operand)), true
}

func (p *parser) parsePostfixExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		switch {
		case p.eat("."):
			field := p.peek()
			if field.Kind != tokIdent && field.Kind != tokInt {
				p.errAt(diag.FixBadExpr, field.Span, fmt.Sprintf("expected field name, got %s", describe(field)))
				return ast.NoExprID, false
			}
			p.advance()
			sp := p.exprSpan(expr).Cover(field.Span)
			expr = p.record(p.builder.Exprs.NewMember(sp, expr, p.builder.Intern(field.Text)))

		case p.eat("["):
			index, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			closing := p.peek()
			if !p.expect(diag.FixBadExpr, "]") {
				return ast.NoExprID, false
			}
			expr = p.record(p.builder.Exprs.NewIndex(p.exprSpan(expr).Cover(closing.Span), expr, index))

		case p.eat("("):
			var args []ast.ExprID
			for !p.at(")") {
				arg, ok := p.parseExpr()
				if !ok {
					return ast.NoExprID, false
				}
				args = append(args, arg)
				if !p.eat(",") {
					break
				}
			}
			closing := p.peek()
			if !p.expect(diag.FixBadExpr, ")") {
				return ast.NoExprID, false
			}
			expr = p.record(p.builder.Exprs.NewCall(p.exprSpan(expr).Cover(closing.Span), expr, args))

		default:
			return expr, true
		}
	}
}

func (p *parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.peek()
	exprs := p.builder.Exprs
	switch tok.Kind {
	case tokIdent:
		p.advance()
		switch tok.Text {
		case "true":
			return p.record(exprs.NewLiteral(tok.Span, ast.ExprLitTrue, p.builder.Intern(tok.Text))), true
		case "false":
			return p.record(exprs.NewLiteral(tok.Span, ast.ExprLitFalse, p.builder.Intern(tok.Text))), true
		}
		return p.record(exprs.NewIdent(tok.Span, p.builder.Intern(tok.Text))), true

	case tokInt:
		p.advance()
		return p.record(exprs.NewLiteral(tok.Span, ast.ExprLitInt, p.builder.Intern(tok.Text))), true

	case tokFloat:
		p.advance()
		return p.record(exprs.NewLiteral(tok.Span, ast.ExprLitFloat, p.builder.Intern(tok.Text))), true

	case tokString:
		p.advance()
		return p.record(exprs.NewLiteral(tok.Span, ast.ExprLitString, p.builder.Intern(tok.Text))), true

	case tokPunct:
		if tok.Text == "(" {
			p.advance()
			inner, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			closing := p.peek()
			if !p.expect(diag.FixBadExpr, ")") {
				return ast.NoExprID, false
			}
			return p.record(exprs.NewGroup(tok.Span.Cover(closing.Span), inner)), true
		}
	}
	p.errAt(diag.FixBadExpr, tok.Span, fmt.Sprintf("expected expression, got %s", describe(tok)))
	return ast.NoExprID, false
}
