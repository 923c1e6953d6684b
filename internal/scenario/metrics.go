package scenario

import (
	"math"

	"github.com/seenimoa/propfolio/pkg/models"
)

// ComputeMetrics summarizes one projection curve. The curve is years
// 0..horizon as produced by projection.Series.
func ComputeMetrics(curve []models.Projection, investment float64) models.ScenarioMetrics {
	if len(curve) == 0 {
		return models.ScenarioMetrics{BreakEvenYear: -1}
	}

	last := curve[len(curve)-1]
	m := models.ScenarioMetrics{
		FinalROIPercent:   last.ROIPercent,
		FinalEquity:       last.Equity,
		FinalProfit:       last.Profit,
		BreakEvenYear:     breakEvenYear(curve),
		EquityCAGRPercent: equityCAGR(curve[0].Equity, last.Equity, last.Year),
	}

	// Cash-on-cash is first-year cashflow against cash invested.
	if len(curve) > 1 && investment > 0 {
		m.CashOnCashPercent = curve[1].CumulativeCashflow / investment * 100
	}

	m.CashflowVolatility = sampleStddev(annualCashflows(curve))
	return m
}

// breakEvenYear is the first year profit turns non-negative, or -1
// when it never does within the horizon.
func breakEvenYear(curve []models.Projection) int {
	for _, pt := range curve {
		if pt.Profit >= 0 {
			return pt.Year
		}
	}
	return -1
}

// equityCAGR annualizes equity growth between the curve's endpoints.
// Zero when either endpoint is non-positive: a fully leveraged year
// zero has no meaningful growth rate.
func equityCAGR(first, last float64, years int) float64 {
	if first <= 0 || last <= 0 || years <= 0 {
		return 0
	}
	return (math.Pow(last/first, 1/float64(years)) - 1) * 100
}

// annualCashflows recovers per-year cashflow from the cumulative curve.
func annualCashflows(curve []models.Projection) []float64 {
	if len(curve) < 2 {
		return nil
	}
	flows := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		flows = append(flows, curve[i].CumulativeCashflow-curve[i-1].CumulativeCashflow)
	}
	return flows
}

// sampleStddev is the sample standard deviation, computed with
// Welford's running method.
func sampleStddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var mean, m2 float64
	for i, x := range xs {
		d := x - mean
		mean += d / float64(i+1)
		m2 += d * (x - mean)
	}
	return math.Sqrt(m2 / float64(len(xs)-1))
}
