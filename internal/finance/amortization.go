package finance

import "math"

// MonthlyPayment returns the fixed monthly payment of an annuity loan:
// principal borrowed at annualRatePercent over termYears. A non-positive
// principal means no loan and yields 0.
//
// Contract: termYears >= 1. Callers validate the term before invoking;
// the function does not guard against a non-positive term.
func MonthlyPayment(principal, annualRatePercent float64, termYears int) float64 {
	if principal <= 0 {
		return 0
	}
	n := float64(termYears * 12)
	r := annualRatePercent / 100 / 12
	if r == 0 {
		return principal / n
	}
	growth := math.Pow(1+r, n)
	return principal * r * growth / (growth - 1)
}

// RemainingBalance returns the principal still owed after elapsedYears of
// the amortization schedule defined by principal/rate/term. It agrees with
// iteratively simulating elapsedYears*12 payments of MonthlyPayment to
// floating-point tolerance, is non-increasing in elapsedYears, and clamps
// to 0 once the loan is retired.
func RemainingBalance(principal, annualRatePercent float64, termYears, elapsedYears int) float64 {
	if principal <= 0 {
		return 0
	}
	n := float64(termYears * 12)
	p := float64(elapsedYears * 12)
	if p >= n {
		return 0
	}
	r := annualRatePercent / 100 / 12
	var balance float64
	if r == 0 {
		balance = principal - principal/n*p
	} else {
		growth := math.Pow(1+r, n)
		balance = principal * (growth - math.Pow(1+r, p)) / (growth - 1)
	}
	if balance < 0 {
		return 0
	}
	return balance
}

// TotalInterest returns the interest paid over the full life of the loan.
func TotalInterest(principal, annualRatePercent float64, termYears int) float64 {
	if principal <= 0 {
		return 0
	}
	n := float64(termYears * 12)
	return MonthlyPayment(principal, annualRatePercent, termYears)*n - principal
}

// AnnualDebtService returns one year of loan payments.
func AnnualDebtService(principal, annualRatePercent float64, termYears int) float64 {
	return MonthlyPayment(principal, annualRatePercent, termYears) * 12
}
