package propql

import (
	"fmt"
	"strconv"
	"strings"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokStr
	tokIdent
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokComma
	tokOp // one of + - * / > < >= <= == !=
)

// token is one lexeme with its position in the query.
type token struct {
	kind      tokKind
	text      string  // literal text; canonical form for keywords and operators
	val       float64 // numeric value for tokNum, scale suffix applied
	line, col int
}

// lexer walks the query byte by byte, handing tokens to the parser on
// demand. Positions advance with the scan, so errors carry line and
// column without a second pass.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

// next returns the following token, skipping whitespace and # comments.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: line, col: col}, nil
	}

	c := l.src[l.pos]
	switch {
	case c == '(':
		l.step()
		return token{kind: tokLParen, text: "(", line: line, col: col}, nil
	case c == ')':
		l.step()
		return token{kind: tokRParen, text: ")", line: line, col: col}, nil
	case c == ',':
		l.step()
		return token{kind: tokComma, text: ",", line: line, col: col}, nil
	case c == '+' || c == '-' || c == '*' || c == '/':
		l.step()
		return token{kind: tokOp, text: string(c), line: line, col: col}, nil
	case c == '>' || c == '<':
		op := string(c)
		l.step()
		if l.peek() == '=' {
			l.step()
			op += "="
		}
		return token{kind: tokOp, text: op, line: line, col: col}, nil
	case c == '=':
		// A bare = reads as equality too; queries are not assignments.
		l.step()
		if l.peek() == '=' {
			l.step()
		}
		return token{kind: tokOp, text: "==", line: line, col: col}, nil
	case c == '!':
		l.step()
		if l.peek() == '=' {
			l.step()
			return token{kind: tokOp, text: "!=", line: line, col: col}, nil
		}
		return token{}, &ParseError{Line: line, Col: col, Msg: "unexpected '!', did you mean '!='?"}
	case c == '"' || c == '\'':
		return l.scanString(line, col)
	case isDigit(c), c == '.' && l.digitAt(l.pos+1):
		return l.scanNumber(line, col)
	case isIdentStart(c):
		return l.scanIdent(line, col)
	}
	return token{}, &ParseError{Line: line, Col: col, Msg: fmt.Sprintf("unexpected character %q", c)}
}

// step consumes one byte and keeps the line/column counters current.
func (l *lexer) step() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) digitAt(i int) bool {
	return i < len(l.src) && isDigit(l.src[i])
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.step()
			}
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.step()
		default:
			return
		}
	}
}

// scanString reads a quoted literal. Both quote styles work and the
// usual backslash escapes are honoured; an unknown escape keeps the
// escaped byte as-is.
func (l *lexer) scanString(line, col int) (token, error) {
	quote := l.step()
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, &ParseError{Line: line, Col: col, Msg: "unterminated string literal"}
		}
		c := l.step()
		switch {
		case c == quote:
			return token{kind: tokStr, text: sb.String(), line: line, col: col}, nil
		case c == '\\' && l.pos < len(l.src):
			switch esc := l.step(); esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(esc)
			}
		default:
			sb.WriteByte(c)
		}
	}
}

// scanNumber reads digits with one optional decimal point, then an
// optional scale suffix: m for millions, k for thousands, either
// case. The suffix only counts when it is a single letter — "5min"
// stays NUMBER(5) IDENT(min), decided by lookahead rather than by
// consuming and backtracking.
func (l *lexer) scanNumber(line, col int) (token, error) {
	start := l.pos
	seenDot := false
digits:
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case isDigit(c):
			l.step()
		case c == '.' && !seenDot:
			seenDot = true
			l.step()
		default:
			break digits
		}
	}
	numEnd := l.pos

	mult := 1.0
	if letterRun(l.src[l.pos:]) == 1 {
		switch l.src[l.pos] | 0x20 {
		case 'm':
			mult = 1e6
			l.step()
		case 'k':
			mult = 1e3
			l.step()
		}
	}

	f, err := strconv.ParseFloat(l.src[start:numEnd], 64)
	if err != nil {
		return token{}, &ParseError{Line: line, Col: col,
			Msg: fmt.Sprintf("invalid number %q", l.src[start:numEnd])}
	}
	return token{kind: tokNum, text: l.src[start:l.pos], val: f * mult, line: line, col: col}, nil
}

func (l *lexer) scanIdent(line, col int) (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.step()
	}
	word := l.src[start:l.pos]
	switch strings.ToUpper(word) {
	case "AND":
		return token{kind: tokAnd, text: "AND", line: line, col: col}, nil
	case "OR":
		return token{kind: tokOr, text: "OR", line: line, col: col}, nil
	case "NOT":
		return token{kind: tokNot, text: "NOT", line: line, col: col}, nil
	}
	return token{kind: tokIdent, text: word, line: line, col: col}, nil
}

// letterRun counts leading ASCII letters.
func letterRun(s string) int {
	n := 0
	for n < len(s) && isAlpha(s[n]) {
		n++
	}
	return n
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool { return isAlpha(c) || c == '_' }

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
