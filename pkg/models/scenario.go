package models

// Scenario is a named variation of the global assumptions used for
// side-by-side comparison. Nil override fields inherit the base value.
type Scenario struct {
	Name            string   `json:"name"`
	InflationRate   *float64 `json:"inflationRate,omitempty"`
	TransferTaxRate *float64 `json:"transferTaxRate,omitempty"`
	LegalFeeRate    *float64 `json:"legalFeeRate,omitempty"`
	InterestRate    *float64 `json:"interestRate,omitempty"`   // overrides the property's loan rate
	RentDelta       *float64 `json:"rentDelta,omitempty"`      // % shift on monthly rent
	PriceDelta      *float64 `json:"priceDelta,omitempty"`     // % shift on purchase price
}

// ScenarioMetrics summarizes one projected curve.
type ScenarioMetrics struct {
	FinalROIPercent    float64 `json:"finalRoiPercent"`
	FinalEquity        float64 `json:"finalEquity"`
	FinalProfit        float64 `json:"finalProfit"`
	EquityCAGRPercent  float64 `json:"equityCagrPercent"`
	CashOnCashPercent  float64 `json:"cashOnCashPercent"` // year-1 cashflow over initial investment
	BreakEvenYear      int     `json:"breakEvenYear"`     // first year profit >= 0, -1 if never
	CashflowVolatility float64 `json:"cashflowVolatility"`
}

// ScenarioResult is one scenario's full projection curve plus summary
// metrics, as produced by the scenario engine.
type ScenarioResult struct {
	Scenario    Scenario        `json:"scenario"`
	Projections []Projection    `json:"projections"` // years 0..horizon
	Metrics     ScenarioMetrics `json:"metrics"`
}
