package projection

import (
	"math"

	"github.com/seenimoa/propfolio/internal/finance"
	"github.com/seenimoa/propfolio/pkg/models"
)

// Recompute returns a copy of p with every derived field recalculated
// under the given assumptions. Raw fields are never touched, except that
// a zero postRenovationValue is normalized to the purchase price.
// Recomputing an already-recomputed property is a no-op, and the input
// record is left unmodified, so recomputes can run on any property in
// any order whenever the assumptions change.
//
// There is no validation here: callers sanitize input, and NaN or
// infinite fields flow through the arithmetic unmodified.
func Recompute(p models.Property, a models.GlobalAssumptions) models.Property {
	if p.PostRenovationValue == 0 {
		p.PostRenovationValue = p.Price
	}
	p.DownPaymentAmount = p.Price * p.DownPaymentPercent / 100
	transferTax := p.Price * a.TransferTaxRate / 100
	legalFee := p.Price * a.LegalFeeRate / 100
	p.TotalInitialInvestment = p.DownPaymentAmount + p.RenovationCost + transferTax + legalFee
	p.LoanPrincipal = p.Price - p.DownPaymentAmount
	p.MonthlyPaymentAmount = finance.MonthlyPayment(p.LoanPrincipal, p.AnnualInterestRate, p.LoanTermYears)
	p.MonthlyCashflow = p.Rent - p.MonthlyPaymentAmount - p.MonthlyRecurringCosts
	return p
}

// ProjectAt returns the state of p after targetYear whole years. It reads
// the derived fields, so p must have been through Recompute under the
// same assumptions.
//
// The property value compounds at the inflation rate from year 0. Rent
// and recurring costs escalate one year behind it: the year-1 cashflow
// uses the un-inflated baseline, year 2 carries one year of growth, and
// so on. The loan payment never inflates.
func ProjectAt(p models.Property, a models.GlobalAssumptions, targetYear int) models.Projection {
	proj := models.Projection{Year: targetYear}
	if p.TotalInitialInvestment <= 0 {
		return proj
	}

	growth := 1 + a.InflationRate/100
	proj.ProjectedValue = p.PostRenovationValue * math.Pow(growth, float64(targetYear))

	for i := 1; i <= targetYear; i++ {
		factor := math.Pow(growth, float64(i-1))
		annual := (p.Rent*factor - p.MonthlyPaymentAmount - p.MonthlyRecurringCosts*factor) * 12
		proj.CumulativeCashflow += annual
	}

	proj.RemainingLoan = finance.RemainingBalance(p.LoanPrincipal, p.AnnualInterestRate, p.LoanTermYears, targetYear)
	proj.Equity = proj.ProjectedValue - proj.RemainingLoan
	proj.Profit = proj.Equity + proj.CumulativeCashflow - p.TotalInitialInvestment
	proj.ROIPercent = proj.Profit / p.TotalInitialInvestment * 100
	return proj
}

// Series projects p at every whole year from 0 through horizonYears,
// inclusive. Chart builders and the scenario engine consume this.
func Series(p models.Property, a models.GlobalAssumptions, horizonYears int) []models.Projection {
	if horizonYears < 0 {
		return nil
	}
	out := make([]models.Projection, 0, horizonYears+1)
	for year := 0; year <= horizonYears; year++ {
		out = append(out, ProjectAt(p, a, year))
	}
	return out
}
