// Package scenario compares how one property performs under named
// variations of the assumptions: rate shifts, rent shocks, price
// haircuts. Every variant is projected over the same horizon so the
// curves line up for side-by-side display.
package scenario

import (
	"fmt"
	"sync"

	"github.com/seenimoa/propfolio/internal/projection"
	"github.com/seenimoa/propfolio/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Engine Configuration
// ════════════════════════════════════════════════════════════════════

// Config holds the parameters of a comparison run.
type Config struct {
	HorizonYears int    // projection horizon (default: 30)
	BaselineName string // name given to the unmodified run (default: "baseline")
}

// DefaultConfig returns the defaults used by the CLI and the API.
func DefaultConfig() Config {
	return Config{
		HorizonYears: 30,
		BaselineName: "baseline",
	}
}

// ════════════════════════════════════════════════════════════════════
// Engine — Scenario Comparison
// ════════════════════════════════════════════════════════════════════

// Engine projects a property under a set of scenarios.
type Engine struct {
	cfg Config
	mu  sync.Mutex
}

// NewEngine creates a comparison engine with the given config.
func NewEngine(cfg Config) *Engine {
	if cfg.HorizonYears <= 0 {
		cfg.HorizonYears = DefaultConfig().HorizonYears
	}
	if cfg.BaselineName == "" {
		cfg.BaselineName = DefaultConfig().BaselineName
	}
	return &Engine{cfg: cfg}
}

// Run projects p under every scenario plus the baseline and returns one
// result per curve, baseline first. An empty scenario list runs the
// baseline alone.
func (e *Engine) Run(p models.Property, base models.GlobalAssumptions, scenarios []models.Scenario) ([]models.ScenarioResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p.LoanTermYears < 1 {
		return nil, fmt.Errorf("loan term must be at least 1 year, got %d", p.LoanTermYears)
	}

	runs := make([]models.Scenario, 0, len(scenarios)+1)
	runs = append(runs, models.Scenario{Name: e.cfg.BaselineName})
	runs = append(runs, scenarios...)

	results := make([]models.ScenarioResult, 0, len(runs))
	for _, s := range runs {
		adjusted, assumptions := applyScenario(p, base, s)
		adjusted = projection.Recompute(adjusted, assumptions)

		result := models.ScenarioResult{
			Scenario:    s,
			Projections: projection.Series(adjusted, assumptions, e.cfg.HorizonYears),
		}
		result.Metrics = ComputeMetrics(result.Projections, adjusted.TotalInitialInvestment)
		results = append(results, result)
	}
	return results, nil
}

// applyScenario overlays the scenario's overrides on copies of the
// property and assumptions. A price shift drags a defaulted renovation
// value along with it; an explicitly different one stays fixed.
func applyScenario(p models.Property, a models.GlobalAssumptions, s models.Scenario) (models.Property, models.GlobalAssumptions) {
	if s.InflationRate != nil {
		a.InflationRate = *s.InflationRate
	}
	if s.TransferTaxRate != nil {
		a.TransferTaxRate = *s.TransferTaxRate
	}
	if s.LegalFeeRate != nil {
		a.LegalFeeRate = *s.LegalFeeRate
	}
	if s.InterestRate != nil {
		p.AnnualInterestRate = *s.InterestRate
	}
	if s.RentDelta != nil {
		p.Rent *= 1 + *s.RentDelta/100
	}
	if s.PriceDelta != nil {
		if p.PostRenovationValue == p.Price {
			p.PostRenovationValue = 0 // re-default against the shifted price
		}
		p.Price *= 1 + *s.PriceDelta/100
	}
	return p, a
}
