package propql

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/propfolio/internal/finance"
	"github.com/seenimoa/propfolio/internal/projection"
	"github.com/seenimoa/propfolio/pkg/models"
)

// A builtin implements one PropQL function. Arguments arrive already
// evaluated; the scope carries the property under evaluation.
type builtin func(sc *scope, args []Value) (Value, error)

// builtins is the function table. Call names are matched lower-case.
var builtins = map[string]builtin{
	"roi":         projected("roi", func(pr models.Projection) float64 { return pr.ROIPercent }),
	"profit":      projected("profit", func(pr models.Projection) float64 { return pr.Profit }),
	"equity":      projected("equity", func(pr models.Projection) float64 { return pr.Equity }),
	"value":       projected("value", func(pr models.Projection) float64 { return pr.ProjectedValue }),
	"balance":     projected("balance", func(pr models.Projection) float64 { return pr.RemainingLoan }),
	"cumcashflow": projected("cumcashflow", func(pr models.Projection) float64 { return pr.CumulativeCashflow }),

	"payment":  fnPayment,
	"abs":      mathFn("abs", math.Abs),
	"round":    mathFn("round", math.Round),
	"min":      func(_ *scope, args []Value) (Value, error) { return fold("min", args, math.Min) },
	"max":      func(_ *scope, args []Value) (Value, error) { return fold("max", args, math.Max) },
	"contains": fnContains,
}

// projected builds a builtin that projects the property to the
// requested year and picks one metric off the result.
func projected(name string, pick func(models.Projection) float64) builtin {
	return func(sc *scope, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Kind != KindNum {
			return Value{}, fmt.Errorf("%s takes one numeric argument (year)", name)
		}
		year := int(args[0].Num)
		if year < 0 {
			return Value{}, fmt.Errorf("%s expects year >= 0, got %d", name, year)
		}
		return num(pick(projection.ProjectAt(sc.prop, sc.asm, year))), nil
	}
}

// mathFn wraps a one-argument math function.
func mathFn(name string, f func(float64) float64) builtin {
	return func(_ *scope, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Kind != KindNum {
			return Value{}, fmt.Errorf("%s takes one numeric argument", name)
		}
		return num(f(args[0].Num)), nil
	}
}

// fold reduces one or more numeric arguments pairwise.
func fold(name string, args []Value, f func(a, b float64) float64) (Value, error) {
	if len(args) == 0 {
		return Value{}, fmt.Errorf("%s needs at least one argument", name)
	}
	var acc float64
	for i, a := range args {
		if a.Kind != KindNum {
			return Value{}, fmt.Errorf("%s: argument %d must be numeric", name, i+1)
		}
		if i == 0 {
			acc = a.Num
		} else {
			acc = f(acc, a.Num)
		}
	}
	return num(acc), nil
}

// payment(principal, annualRatePercent, termYears) prices a
// hypothetical loan, independent of the property under evaluation.
func fnPayment(_ *scope, args []Value) (Value, error) {
	if len(args) != 3 {
		return Value{}, fmt.Errorf("payment takes (principal, rate, termYears), got %d arguments", len(args))
	}
	for i, a := range args {
		if a.Kind != KindNum {
			return Value{}, fmt.Errorf("payment: argument %d must be numeric", i+1)
		}
	}
	term := int(args[2].Num)
	if term < 1 {
		return Value{}, fmt.Errorf("payment expects termYears >= 1, got %d", term)
	}
	return num(finance.MonthlyPayment(args[0].Num, args[1].Num, term)), nil
}

// contains(haystack, needle) is a case-insensitive substring test,
// usually aimed at the name field.
func fnContains(_ *scope, args []Value) (Value, error) {
	if len(args) != 2 || args[0].Kind != KindStr || args[1].Kind != KindStr {
		return Value{}, fmt.Errorf("contains takes two string arguments (haystack, needle)")
	}
	hay := strings.ToLower(args[0].Str)
	needle := strings.ToLower(args[1].Str)
	return truth(strings.Contains(hay, needle)), nil
}
