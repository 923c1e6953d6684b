package propql

import (
	"fmt"
	"strings"
)

// Binding powers, loosest to tightest. OR binds loosest so
// "a AND b OR c" groups as "(a AND b) OR c". NOT sits between AND and
// the comparisons, unary minus between * / and the primaries.
const (
	bpOr = iota + 1
	bpAnd
	bpCompare
	bpAdd
	bpMul
)

// bindingPower reports how tightly t binds as an infix operator, or 0
// when t cannot appear in infix position.
func bindingPower(t token) int {
	switch t.kind {
	case tokOr:
		return bpOr
	case tokAnd:
		return bpAnd
	case tokOp:
		switch t.text {
		case ">", "<", ">=", "<=", "==", "!=":
			return bpCompare
		case "+", "-":
			return bpAdd
		case "*", "/":
			return bpMul
		}
	}
	return 0
}

// parser holds one token of lookahead over the lexer.
type parser struct {
	lex *lexer
	cur token
}

// bump slides the lookahead forward and returns the token it replaced.
func (p *parser) bump() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) take() (token, error) {
	t := p.cur
	return t, p.bump()
}

func (p *parser) expect(k tokKind, what string) error {
	if p.cur.kind != k {
		return &ParseError{Line: p.cur.line, Col: p.cur.col,
			Msg: fmt.Sprintf("expected %s, got %s", what, describe(p.cur))}
	}
	return p.bump()
}

// parseExpr climbs operator precedence: it parses one operand, then
// keeps folding in operators that bind at least as tightly as minBP.
func (p *parser) parseExpr(minBP int) (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for {
		bp := bindingPower(p.cur)
		if bp == 0 || bp < minBP {
			return left, nil
		}
		op, err := p.take()
		if err != nil {
			return nil, err
		}
		right, err := p.parseExpr(bp + 1)
		if err != nil {
			return nil, err
		}
		// a > b > c is always a typo; refuse it rather than compare
		// a condition against a number.
		if bp == bpCompare && bindingPower(p.cur) == bpCompare {
			return nil, &ParseError{Line: p.cur.line, Col: p.cur.col,
				Msg: fmt.Sprintf("comparisons do not chain (unexpected %q)", p.cur.text)}
		}
		left = &binary{op: op.text, left: left, right: right}
	}
}

// parseOperand handles prefix position: literals, NOT, unary minus,
// parenthesised groups, fields and function calls.
func (p *parser) parseOperand() (Expr, error) {
	t, err := p.take()
	if err != nil {
		return nil, err
	}
	switch t.kind {
	case tokNum:
		return &lit{val: num(t.val), raw: t.text}, nil
	case tokStr:
		return &lit{val: str(t.text), raw: fmt.Sprintf("%q", t.text)}, nil
	case tokNot:
		sub, err := p.parseExpr(bpCompare)
		if err != nil {
			return nil, err
		}
		return &unary{op: "NOT", sub: sub}, nil
	case tokOp:
		if t.text == "-" {
			sub, err := p.parseExpr(bpMul + 1)
			if err != nil {
				return nil, err
			}
			return &unary{op: "-", sub: sub}, nil
		}
	case tokLParen:
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdent:
		return p.parseIdent(t)
	}
	return nil, &ParseError{Line: t.line, Col: t.col, Msg: fmt.Sprintf("unexpected %s", describe(t))}
}

// parseIdent resolves a bare word into true/false, a function call, or
// a field reference.
func (p *parser) parseIdent(t token) (Expr, error) {
	switch strings.ToLower(t.text) {
	case "true":
		return &lit{val: truth(true), raw: "true"}, nil
	case "false":
		return &lit{val: truth(false), raw: "false"}, nil
	}

	if p.cur.kind != tokLParen {
		return &field{name: t.text, line: t.line, col: t.col}, nil
	}
	if err := p.bump(); err != nil {
		return nil, err
	}

	c := &call{name: strings.ToLower(t.text), line: t.line, col: t.col}
	for p.cur.kind != tokRParen && p.cur.kind != tokEOF {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		c.args = append(c.args, arg)
		if p.cur.kind != tokComma {
			break
		}
		if err := p.bump(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokRParen, "')' after arguments"); err != nil {
		return nil, err
	}
	return c, nil
}

func describe(t token) string {
	switch t.kind {
	case tokEOF:
		return "end of query"
	case tokStr:
		return fmt.Sprintf("string %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}
