package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/seenimoa/propfolio/internal/projection"
	"github.com/seenimoa/propfolio/internal/scenario"
	"github.com/seenimoa/propfolio/pkg/models"
	"github.com/seenimoa/propfolio/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator — Orchestrates chart + template rendering
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatPDF  ReportFormat = "pdf"
	FormatText ReportFormat = "text"
)

// ReportSection identifies a section to include/exclude.
type ReportSection string

const (
	SectionSummary    ReportSection = "summary"
	SectionFinancing  ReportSection = "financing"
	SectionMetrics    ReportSection = "metrics"
	SectionCharts     ReportSection = "charts"
	SectionProjection ReportSection = "projection"
	SectionMarket     ReportSection = "market"
)

// AllSections returns all report sections in display order.
func AllSections() []ReportSection {
	return []ReportSection{
		SectionSummary,
		SectionFinancing,
		SectionMetrics,
		SectionCharts,
		SectionProjection,
		SectionMarket,
	}
}

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Format       ReportFormat    // output format (default: HTML)
	Sections     []ReportSection // sections to include (default: all)
	Title        string          // custom report title (optional)
	Author       string          // author name (optional, default: "Propfolio")
	HorizonYears int             // projection horizon (default: 30)
	ChartCfg     ChartConfig     // chart rendering config
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Format:       FormatHTML,
		Sections:     AllSections(),
		Author:       "Propfolio",
		HorizonYears: 30,
		ChartCfg:     DefaultChartConfig(),
	}
}

// hasSection returns true if the section is included in the config.
func (rc ReportConfig) hasSection(s ReportSection) bool {
	for _, sec := range rc.Sections {
		if sec == s {
			return true
		}
	}
	return false
}

// ════════════════════════════════════════════════════════════════════
// Report Input & Data
// ════════════════════════════════════════════════════════════════════

// Input bundles everything a property report can draw on. Pulse and
// Rates are optional market context; nil/empty simply hides the section.
type Input struct {
	Property    models.Property
	Assumptions models.GlobalAssumptions
	Pulse       *models.MarketPulse
	Rates       []models.RateQuote
}

// ReportData is the flattened model passed to templates.
type ReportData struct {
	// Header
	Title        string
	PropertyName string
	Author       string
	GeneratedAt  string // JST formatted

	// Purchase summary
	Price           string
	Rent            string
	RenovationCost  string
	PostRenoValue   string
	RecurringCosts  string
	GrossYield      string
	NetYield        string
	TotalInvestment string

	// Financing
	DownPaymentPct  string
	DownPayment     string
	TransferTax     string
	LegalFee        string
	LoanPrincipal   string
	InterestRate    string
	LoanTerm        string
	MonthlyPayment  string
	MonthlyCashflow string
	CashflowClass   string // positive | negative

	// Key metrics over the horizon
	Horizon        int
	FinalROI       string
	FinalEquity    string
	FinalProfit    string
	BreakEven      string
	CashOnCash     string
	EquityCAGR     string
	FinalWealth    string
	FinalBenchmark string
	VerdictLabel   string
	VerdictClass   string // positive | negative

	// Projection table
	ProjectionRows []ProjectionRow

	// Charts (embedded SVG strings)
	WealthChart   template.HTML
	CashflowChart template.HTML

	// Market context
	PulseMood    string
	PulseClass   string
	PulseScore   string
	HeadlineRows []HeadlineRow
	RateRows     []RateRow

	// Section visibility flags
	ShowSummary    bool
	ShowFinancing  bool
	ShowMetrics    bool
	ShowCharts     bool
	ShowProjection bool
	ShowMarket     bool
}

// ProjectionRow is one year of the projection table, formatted.
type ProjectionRow struct {
	Year        int
	Value       string
	Loan        string
	Equity      string
	CumCashflow string
	Profit      string
	ROI         string
	ProfitClass string // positive | negative
}

// HeadlineRow is a flattened news article for template rendering.
type HeadlineRow struct {
	Title  string
	Source string
	Date   string
	Tone   string // CSS class: hot, cold, neutral
	Score  string
}

// RateRow is a flattened mortgage quote for template rendering.
type RateRow struct {
	Lender  string
	Product string
	Rate    string
	Term    string
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

// GenerateHTML renders an HTML report for one property.
func GenerateHTML(in Input, cfg ReportConfig) (string, error) {
	data, err := buildReportData(in, cfg)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// GenerateText renders a plain-text report (terminal / CLI friendly).
func GenerateText(in Input, cfg ReportConfig) (string, error) {
	data, err := buildReportData(in, cfg)
	if err != nil {
		return "", err
	}
	return renderTextReport(data), nil
}

// ════════════════════════════════════════════════════════════════════
// Internal — Build template data
// ════════════════════════════════════════════════════════════════════

func buildReportData(in Input, cfg ReportConfig) (ReportData, error) {
	if in.Property.LoanTermYears < 1 {
		return ReportData{}, fmt.Errorf("loan term must be at least 1 year, got %d", in.Property.LoanTermYears)
	}

	horizon := cfg.HorizonYears
	if horizon <= 0 {
		horizon = DefaultReportConfig().HorizonYears
	}
	if cfg.Author == "" {
		cfg.Author = DefaultReportConfig().Author
	}

	p := projection.Recompute(in.Property, in.Assumptions)
	curve := projection.Series(p, in.Assumptions, horizon)
	metrics := scenario.ComputeMetrics(curve, p.TotalInitialInvestment)

	data := ReportData{
		Title:        cfg.Title,
		PropertyName: p.Name,
		Author:       cfg.Author,
		GeneratedAt:  ReportTimestamp(),

		Price:           utils.FormatMoney(p.Price),
		Rent:            utils.FormatMoney(p.Rent),
		RenovationCost:  utils.FormatMoney(p.RenovationCost),
		PostRenoValue:   utils.FormatMoney(effectiveValue(p)),
		RecurringCosts:  utils.FormatMoney(p.MonthlyRecurringCosts),
		GrossYield:      fmt.Sprintf("%.2f%%", grossYield(p)),
		NetYield:        fmt.Sprintf("%.2f%%", netYield(p)),
		TotalInvestment: utils.FormatMoney(p.TotalInitialInvestment),

		DownPaymentPct:  fmt.Sprintf("%.1f%%", p.DownPaymentPercent),
		DownPayment:     utils.FormatMoney(p.DownPaymentAmount),
		TransferTax:     utils.FormatMoney(p.Price * in.Assumptions.TransferTaxRate / 100),
		LegalFee:        utils.FormatMoney(p.Price * in.Assumptions.LegalFeeRate / 100),
		LoanPrincipal:   utils.FormatMoney(p.LoanPrincipal),
		InterestRate:    fmt.Sprintf("%.2f%%", p.AnnualInterestRate),
		LoanTerm:        fmt.Sprintf("%d years", p.LoanTermYears),
		MonthlyPayment:  utils.FormatMoney(p.MonthlyPaymentAmount),
		MonthlyCashflow: utils.FormatMoney(p.MonthlyCashflow),
		CashflowClass:   signClass(p.MonthlyCashflow),

		Horizon:     horizon,
		FinalROI:    utils.FormatPct(metrics.FinalROIPercent),
		FinalEquity: utils.FormatMoney(metrics.FinalEquity),
		FinalProfit: utils.FormatMoney(metrics.FinalProfit),
		BreakEven:   breakEvenLabel(metrics.BreakEvenYear),
		CashOnCash:  utils.FormatPct(metrics.CashOnCashPercent),
		EquityCAGR:  utils.FormatPct(metrics.EquityCAGRPercent),

		ShowSummary:    cfg.hasSection(SectionSummary),
		ShowFinancing:  cfg.hasSection(SectionFinancing),
		ShowMetrics:    cfg.hasSection(SectionMetrics),
		ShowCharts:     cfg.hasSection(SectionCharts),
		ShowProjection: cfg.hasSection(SectionProjection),
		ShowMarket:     cfg.hasSection(SectionMarket) && (in.Pulse != nil || len(in.Rates) > 0),
	}

	if data.Title == "" {
		data.Title = fmt.Sprintf("%s — Investment Report", p.Name)
	}

	// Wealth verdict against the benchmark
	last := curve[len(curve)-1]
	finalWealth := last.Equity + last.CumulativeCashflow
	finalBench := p.TotalInitialInvestment * pow1p(in.Assumptions.BenchmarkRate/100, horizon)
	data.FinalWealth = utils.FormatMoney(finalWealth)
	data.FinalBenchmark = utils.FormatMoney(finalBench)
	diff := finalWealth - finalBench
	if diff >= 0 {
		data.VerdictLabel = fmt.Sprintf("Ahead of benchmark by %s", utils.FormatMoney(diff))
		data.VerdictClass = "positive"
	} else {
		data.VerdictLabel = fmt.Sprintf("Behind benchmark by %s", utils.FormatMoney(-diff))
		data.VerdictClass = "negative"
	}

	// Projection table
	data.ProjectionRows = make([]ProjectionRow, len(curve))
	for i, pt := range curve {
		data.ProjectionRows[i] = ProjectionRow{
			Year:        pt.Year,
			Value:       utils.FormatMoney(pt.ProjectedValue),
			Loan:        utils.FormatMoney(pt.RemainingLoan),
			Equity:      utils.FormatMoney(pt.Equity),
			CumCashflow: utils.FormatMoney(pt.CumulativeCashflow),
			Profit:      utils.FormatMoney(pt.Profit),
			ROI:         utils.FormatPct(pt.ROIPercent),
			ProfitClass: signClass(pt.Profit),
		}
	}

	// Charts
	if data.ShowCharts {
		base := cfg.ChartCfg
		if base.Width == 0 {
			base = DefaultChartConfig()
		}

		chartCfg := base
		chartCfg.Title = fmt.Sprintf("%s — Wealth vs Benchmark", p.Name)
		data.WealthChart = template.HTML(WealthCurveChart(curve, p.TotalInitialInvestment, in.Assumptions.BenchmarkRate, chartCfg))

		chartCfg = base
		chartCfg.Title = fmt.Sprintf("%s — Annual Cashflow", p.Name)
		data.CashflowChart = template.HTML(CashflowBarChart(curve, chartCfg))
	}

	// Market context
	if in.Pulse != nil {
		data.PulseMood = strings.ToUpper(in.Pulse.Mood)
		data.PulseClass = in.Pulse.Mood
		data.PulseScore = fmt.Sprintf("%+.2f", in.Pulse.Score)
		for _, a := range in.Pulse.TopArticles {
			data.HeadlineRows = append(data.HeadlineRows, HeadlineRow{
				Title:  a.Title,
				Source: a.Source,
				Date:   a.PublishedAt.In(utils.JST).Format("02 Jan"),
				Tone:   toneClass(a.Sentiment),
				Score:  fmt.Sprintf("%+.2f", a.Sentiment),
			})
		}
	}
	for _, q := range in.Rates {
		term := "any"
		if q.TermYears > 0 {
			term = fmt.Sprintf("%d yrs", q.TermYears)
		}
		data.RateRows = append(data.RateRows, RateRow{
			Lender:  q.Lender,
			Product: q.Product,
			Rate:    fmt.Sprintf("%.2f%%", q.AnnualRate),
			Term:    term,
		})
	}

	return data, nil
}

func grossYield(p models.Property) float64 {
	if p.Price <= 0 {
		return 0
	}
	return p.Rent * 12 / p.Price * 100
}

func netYield(p models.Property) float64 {
	if p.Price <= 0 {
		return 0
	}
	return (p.Rent - p.MonthlyRecurringCosts) * 12 / p.Price * 100
}

func effectiveValue(p models.Property) float64 {
	if p.PostRenovationValue > 0 {
		return p.PostRenovationValue
	}
	return p.Price
}

func signClass(v float64) string {
	if v < 0 {
		return "negative"
	}
	return "positive"
}

func toneClass(sentiment float64) string {
	switch {
	case sentiment > 0.2:
		return "hot"
	case sentiment < -0.2:
		return "cold"
	default:
		return "neutral"
	}
}

func breakEvenLabel(year int) string {
	if year < 0 {
		return "never"
	}
	return fmt.Sprintf("Year %d", year)
}

func pow1p(rate float64, years int) float64 {
	v := 1.0
	for i := 0; i < years; i++ {
		v *= 1 + rate
	}
	return v
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d ReportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Generated: %s | Author: %s\n", d.GeneratedAt, d.Author))
	sb.WriteString(line + "\n")

	if d.ShowSummary {
		sb.WriteString("\n  ■ PURCHASE\n")
		sb.WriteString(fmt.Sprintf("  Price: %s | Rent: %s/mo | Recurring costs: %s/mo\n",
			d.Price, d.Rent, d.RecurringCosts))
		sb.WriteString(fmt.Sprintf("  Renovation: %s | Value after works: %s\n",
			d.RenovationCost, d.PostRenoValue))
		sb.WriteString(fmt.Sprintf("  Gross yield: %s | Net yield: %s\n", d.GrossYield, d.NetYield))
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowFinancing {
		sb.WriteString("\n  ■ FINANCING\n")
		sb.WriteString(fmt.Sprintf("  Down payment: %s (%s)\n", d.DownPaymentPct, d.DownPayment))
		sb.WriteString(fmt.Sprintf("  Loan: %s at %s for %s\n", d.LoanPrincipal, d.InterestRate, d.LoanTerm))
		sb.WriteString(fmt.Sprintf("  Monthly payment: %s | Monthly cashflow: %s\n",
			d.MonthlyPayment, d.MonthlyCashflow))
		sb.WriteString(fmt.Sprintf("  Initial investment: %s (transfer tax %s, legal %s)\n",
			d.TotalInvestment, d.TransferTax, d.LegalFee))
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowMetrics {
		sb.WriteString(fmt.Sprintf("\n  ★ %d-YEAR OUTLOOK\n", d.Horizon))
		sb.WriteString(fmt.Sprintf("  %s\n", d.VerdictLabel))
		sb.WriteString(fmt.Sprintf("  Wealth: %s vs benchmark %s\n", d.FinalWealth, d.FinalBenchmark))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "ROI", d.FinalROI))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Equity", d.FinalEquity))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Profit", d.FinalProfit))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Break-even", d.BreakEven))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Cash-on-cash (Y1)", d.CashOnCash))
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Equity CAGR", d.EquityCAGR))
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowProjection && len(d.ProjectionRows) > 0 {
		sb.WriteString("\n  ■ PROJECTION (milestone years)\n")
		sb.WriteString(fmt.Sprintf("  %4s %14s %14s %14s %14s %9s\n",
			"Year", "Value", "Loan", "Equity", "Profit", "ROI"))
		for _, row := range d.ProjectionRows {
			if !milestoneYear(row.Year, d.Horizon) {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %4d %14s %14s %14s %14s %9s\n",
				row.Year, row.Value, row.Loan, row.Equity, row.Profit, row.ROI))
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowMarket {
		sb.WriteString("\n  ■ MARKET CONTEXT\n")
		if d.PulseMood != "" {
			sb.WriteString(fmt.Sprintf("  Mood: %s (%s)\n", d.PulseMood, d.PulseScore))
		}
		for _, h := range d.HeadlineRows {
			sb.WriteString(fmt.Sprintf("    [%s] %s — %s (%s)\n", h.Score, h.Title, h.Source, h.Date))
		}
		if len(d.RateRows) > 0 {
			sb.WriteString("  Current mortgage rates:\n")
			for _, r := range d.RateRows {
				sb.WriteString(fmt.Sprintf("    %-20s %-18s %8s  %s\n", r.Lender, r.Product, r.Rate, r.Term))
			}
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Projections are estimates under fixed assumptions.\n")
	sb.WriteString("  Not financial advice. Verify terms with your lender.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}

// milestoneYear thins the text table: year 0, year 1, then every fifth
// year plus the horizon itself.
func milestoneYear(year, horizon int) bool {
	return year <= 1 || year%5 == 0 || year == horizon
}

// ════════════════════════════════════════════════════════════════════
// Utility: Timestamp
// ════════════════════════════════════════════════════════════════════

// ReportTimestamp returns current JST time formatted for report headers.
func ReportTimestamp() string {
	return utils.NowJST().Format("02 Jan 2006, 03:04 PM JST")
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
