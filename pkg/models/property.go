package models

// GlobalAssumptions are the portfolio-wide rates every property is
// evaluated under. They are threaded explicitly into recompute and
// projection calls; nothing in the engine reads them from ambient state.
type GlobalAssumptions struct {
	TransferTaxRate float64 `json:"transferTaxRate"` // % of purchase price
	LegalFeeRate    float64 `json:"legalFeeRate"`    // % of purchase price
	InflationRate   float64 `json:"inflationRate"`   // % per year, applied to value, rent and costs
	BenchmarkRate   float64 `json:"benchmarkRate"`   // % per year, chart overlay only
}

// DefaultAssumptions returns the assumptions a fresh portfolio starts with.
func DefaultAssumptions() GlobalAssumptions {
	return GlobalAssumptions{
		TransferTaxRate: 4.0,
		LegalFeeRate:    0.5,
		InflationRate:   3.5,
		BenchmarkRate:   4.0,
	}
}

// Property is one candidate rental purchase. Raw fields are
// user-entered and authoritative; derived fields are overwritten by
// projection.Recompute whenever the property or the assumptions change
// and must never be edited directly.
type Property struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Price                 float64 `json:"price"`                 // purchase price
	Rent                  float64 `json:"rent"`                  // per month
	RenovationCost        float64 `json:"renovationCost"`
	PostRenovationValue   float64 `json:"postRenovationValue"`   // zero means "assume price"
	MonthlyRecurringCosts float64 `json:"monthlyRecurringCosts"` // management fee, reserves, per month
	DownPaymentPercent    float64 `json:"downPaymentPercent"`    // 0..100
	AnnualInterestRate    float64 `json:"annualInterestRate"`    // % per year, fixed
	LoanTermYears         int     `json:"loanTermYears"`

	// Derived by Recompute.
	DownPaymentAmount      float64 `json:"downPaymentAmount"`
	TotalInitialInvestment float64 `json:"totalInitialInvestment"` // down payment + renovation + transfer tax + legal fee
	LoanPrincipal          float64 `json:"loanPrincipal"`
	MonthlyPaymentAmount   float64 `json:"monthlyPaymentAmount"`
	MonthlyCashflow        float64 `json:"monthlyCashflow"` // rent - payment - recurring costs
}

// Projection is the state of one property at a whole-year horizon.
// Every call to projection.ProjectAt returns a fresh value.
type Projection struct {
	Year               int     `json:"year"`
	ProjectedValue     float64 `json:"projectedValue"`
	RemainingLoan      float64 `json:"remainingLoan"`
	Equity             float64 `json:"equity"`             // projected value - remaining loan
	CumulativeCashflow float64 `json:"cumulativeCashflow"` // years 1..Year summed
	Profit             float64 `json:"profit"`             // equity + cumulative cashflow - initial investment
	ROIPercent         float64 `json:"roiPercent"`
}
