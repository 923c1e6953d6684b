package propql

import (
	"fmt"
	"math"
	"strings"
)

// lit is a literal number, string, or boolean. raw keeps the query
// text so String() round-trips "30m" instead of "3e+07".
type lit struct {
	val Value
	raw string
}

func (n *lit) eval(*scope) (Value, error) { return n.val, nil }
func (n *lit) String() string             { return n.raw }

// field references a property metric by name.
type field struct {
	name      string
	line, col int
}

func (n *field) eval(sc *scope) (Value, error) {
	if v, ok := sc.metric(n.name); ok {
		return v, nil
	}
	return Value{}, fmt.Errorf("unknown field %q at line %d, col %d", n.name, n.line, n.col)
}

func (n *field) String() string { return n.name }

// call invokes a builtin function with evaluated arguments.
type call struct {
	name      string
	args      []Expr
	line, col int
}

func (n *call) eval(sc *scope) (Value, error) {
	fn, ok := builtins[n.name]
	if !ok {
		return Value{}, fmt.Errorf("unknown function %q at line %d, col %d", n.name, n.line, n.col)
	}
	args := make([]Value, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(sc)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	return fn(sc, args)
}

func (n *call) String() string {
	parts := make([]string, len(n.args))
	for i, a := range n.args {
		parts[i] = a.String()
	}
	return n.name + "(" + strings.Join(parts, ", ") + ")"
}

// binary applies an infix operator. AND and OR short-circuit on the
// left operand.
type binary struct {
	op          string
	left, right Expr
}

func (n *binary) eval(sc *scope) (Value, error) {
	lv, err := n.left.eval(sc)
	if err != nil {
		return Value{}, err
	}

	switch n.op {
	case "AND":
		if !lv.truthy() {
			return truth(false), nil
		}
		rv, err := n.right.eval(sc)
		if err != nil {
			return Value{}, err
		}
		return truth(rv.truthy()), nil
	case "OR":
		if lv.truthy() {
			return truth(true), nil
		}
		rv, err := n.right.eval(sc)
		if err != nil {
			return Value{}, err
		}
		return truth(rv.truthy()), nil
	}

	rv, err := n.right.eval(sc)
	if err != nil {
		return Value{}, err
	}
	switch n.op {
	case "+":
		return num(lv.float() + rv.float()), nil
	case "-":
		return num(lv.float() - rv.float()), nil
	case "*":
		return num(lv.float() * rv.float()), nil
	case "/":
		if rv.float() == 0 {
			return num(math.NaN()), nil
		}
		return num(lv.float() / rv.float()), nil
	case ">":
		return truth(lv.float() > rv.float()), nil
	case "<":
		return truth(lv.float() < rv.float()), nil
	case ">=":
		return truth(lv.float() >= rv.float()), nil
	case "<=":
		return truth(lv.float() <= rv.float()), nil
	case "==":
		return truth(valueEq(lv, rv)), nil
	case "!=":
		return truth(!valueEq(lv, rv)), nil
	}
	return Value{}, fmt.Errorf("unknown operator %q", n.op)
}

func (n *binary) String() string {
	return fmt.Sprintf("(%s %s %s)", n.left, n.op, n.right)
}

// unary applies NOT or numeric negation.
type unary struct {
	op  string
	sub Expr
}

func (n *unary) eval(sc *scope) (Value, error) {
	v, err := n.sub.eval(sc)
	if err != nil {
		return Value{}, err
	}
	if n.op == "NOT" {
		return truth(!v.truthy()), nil
	}
	if v.Kind != KindNum {
		return Value{}, fmt.Errorf("cannot negate a %s", v.Kind)
	}
	return num(-v.Num), nil
}

func (n *unary) String() string {
	return fmt.Sprintf("(%s %s)", n.op, n.sub)
}

// metric resolves a field name against the property under evaluation.
// Matching ignores case and underscores, so down_payment, downPayment
// and downpayment all hit the same metric.
func (sc *scope) metric(name string) (Value, bool) {
	p := sc.prop
	switch strings.ReplaceAll(strings.ToLower(name), "_", "") {
	case "name":
		return str(p.Name), true
	case "price":
		return num(p.Price), true
	case "rent":
		return num(p.Rent), true
	case "renovation", "renovationcost":
		return num(p.RenovationCost), true
	case "postrenovationvalue", "renovatedvalue":
		return num(p.PostRenovationValue), true
	case "costs", "recurringcosts", "monthlyrecurringcosts":
		return num(p.MonthlyRecurringCosts), true
	case "downpayment", "downpaymentamount":
		return num(p.DownPaymentAmount), true
	case "downpaymentpercent":
		return num(p.DownPaymentPercent), true
	case "investment", "totalinitialinvestment":
		return num(p.TotalInitialInvestment), true
	case "loan", "principal", "loanprincipal":
		return num(p.LoanPrincipal), true
	case "payment", "monthlypayment":
		return num(p.MonthlyPaymentAmount), true
	case "cashflow", "monthlycashflow":
		return num(p.MonthlyCashflow), true
	case "rate", "interestrate", "annualinterestrate":
		return num(p.AnnualInterestRate), true
	case "term", "loantermyears":
		return num(float64(p.LoanTermYears)), true
	case "yield", "grossyield":
		if p.Price <= 0 {
			return num(0), true
		}
		return num(p.Rent * 12 / p.Price * 100), true
	case "netyield":
		if p.Price <= 0 {
			return num(0), true
		}
		return num((p.Rent - p.MonthlyRecurringCosts) * 12 / p.Price * 100), true
	}
	return Value{}, false
}
