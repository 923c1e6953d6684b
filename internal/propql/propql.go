// Package propql implements PropQL, a small expression language for
// screening properties by their metrics. A query is compiled once and
// then evaluated against one property at a time under the portfolio's
// global assumptions.
//
// Example queries:
//
//	cashflow > 0 AND yield >= 5
//	roi(10) > 50 OR (price < 30m AND rent > 120k)
//	NOT name == "Old Export"
package propql

import (
	"fmt"
	"strings"

	"github.com/seenimoa/propfolio/internal/projection"
	"github.com/seenimoa/propfolio/pkg/models"
)

// Kind tags the runtime type of a Value.
type Kind int

const (
	KindNil Kind = iota
	KindNum
	KindStr
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNum:
		return "number"
	case KindStr:
		return "string"
	case KindBool:
		return "condition"
	default:
		return "nil"
	}
}

// Value is the result of evaluating a PropQL expression.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
}

func num(v float64) Value { return Value{Kind: KindNum, Num: v} }
func str(s string) Value  { return Value{Kind: KindStr, Str: s} }
func truth(b bool) Value  { return Value{Kind: KindBool, Bool: b} }

// float coerces a value to a number: conditions count as 0 or 1.
func (v Value) float() float64 {
	switch v.Kind {
	case KindNum:
		return v.Num
	case KindBool:
		if v.Bool {
			return 1
		}
	}
	return 0
}

// truthy coerces a value to a condition: non-zero numbers and
// non-empty strings count as true.
func (v Value) truthy() bool {
	switch v.Kind {
	case KindNum:
		return v.Num != 0
	case KindStr:
		return v.Str != ""
	case KindBool:
		return v.Bool
	}
	return false
}

// ParseError reports a syntax problem with its position in the query.
type ParseError struct {
	Line, Col int
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, col %d: %s", e.Line, e.Col, e.Msg)
}

// Expr is a compiled query, evaluable against one property at a time.
type Expr interface {
	eval(*scope) (Value, error)
	String() string
}

// scope is the per-property evaluation environment. The property is
// recomputed under the assumptions first, so queries see current
// derived fields regardless of what the caller stored.
type scope struct {
	prop models.Property
	asm  models.GlobalAssumptions
}

func newScope(p models.Property, a models.GlobalAssumptions) *scope {
	return &scope{prop: projection.Recompute(p, a), asm: a}
}

// Parse compiles a query into an evaluable expression.
func Parse(query string) (Expr, error) {
	p := &parser{lex: newLexer(query)}
	if err := p.bump(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, &ParseError{Line: p.cur.line, Col: p.cur.col,
			Msg: fmt.Sprintf("unexpected %s after expression", describe(p.cur))}
	}
	return expr, nil
}

// EvalQuery parses and evaluates a query against a single property.
func EvalQuery(p models.Property, a models.GlobalAssumptions, query string) (Value, error) {
	expr, err := Parse(query)
	if err != nil {
		return Value{}, err
	}
	return expr.eval(newScope(p, a))
}

// Screen filters properties down to those satisfying the query. The
// query must evaluate to a condition (boolean); a bare arithmetic
// expression is rejected.
func Screen(props []models.Property, a models.GlobalAssumptions, query string) ([]models.Property, error) {
	expr, err := Parse(query)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Property, 0, len(props))
	for _, p := range props {
		val, err := expr.eval(newScope(p, a))
		if err != nil {
			return nil, fmt.Errorf("evaluate against %q: %w", p.Name, err)
		}
		if val.Kind != KindBool {
			return nil, fmt.Errorf("screen query must be a condition, got %s", val.Kind)
		}
		if val.Bool {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// valueEq compares likes: strings case-insensitively (names are typed
// by hand), everything else numerically.
func valueEq(a, b Value) bool {
	if a.Kind == KindStr && b.Kind == KindStr {
		return strings.EqualFold(a.Str, b.Str)
	}
	return a.float() == b.float()
}
