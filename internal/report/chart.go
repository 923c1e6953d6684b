// Package report renders property reports for Propfolio. It generates
// SVG projection charts plus HTML and plain-text reports with yen
// formatting, entirely in Go with no rendering dependencies.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/seenimoa/propfolio/pkg/models"
	"github.com/seenimoa/propfolio/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator — Pure Go, Zero Dependencies
// ════════════════════════════════════════════════════════════════════

// Chart palette, matched to the HTML report styles.
const (
	colorWealth    = "#0f766e" // property wealth curve
	colorBenchmark = "#b45309" // benchmark overlay
	colorGain      = "#15803d" // positive cashflow bars
	colorLoss      = "#b91c1c" // negative cashflow bars
	colorZero      = "#999"    // zero line
)

// seriesPalette colors auto-assigned series in declaration order.
var seriesPalette = []string{"#0f766e", "#b45309", "#4338ca", "#be185d", "#0369a1", "#92400e"}

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 42)
	MarginRight  int    // right margin (default: 30)
	MarginBottom int    // bottom margin (default: 48)
	MarginLeft   int    // left margin (default: 76)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e6e9e8")
	TextColor    string // axis label color (default: "#36413f")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title

	// YFormat formats Y-axis labels. Nil means "%.1f".
	YFormat func(float64) string
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    42,
		MarginRight:  30,
		MarginBottom: 48,
		MarginLeft:   76,
		BgColor:      "#ffffff",
		GridColor:    "#e6e9e8",
		TextColor:    "#36413f",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

func (c ChartConfig) yFormat() func(float64) string {
	if c.YFormat != nil {
		return c.YFormat
	}
	return func(v float64) string { return fmt.Sprintf("%.1f", v) }
}

// plotScale maps data coordinates onto the plot area.
type plotScale struct {
	x0, y0, w, h int
	min, max     float64 // padded value range
	n            int     // points along X
}

// x positions point i with the first and last points on the plot edges.
func (s plotScale) x(i int) float64 {
	if s.n <= 1 {
		return float64(s.x0)
	}
	return float64(s.x0) + float64(i)*float64(s.w)/float64(s.n-1)
}

// xSlot centers point i inside its 1/n-wide slot, for bar layouts.
func (s plotScale) xSlot(i int) float64 {
	return float64(s.x0) + (float64(i)+0.5)*float64(s.w)/float64(s.n)
}

func (s plotScale) y(v float64) float64 {
	return float64(s.y0+s.h) - (v-s.min)/(s.max-s.min)*float64(s.h)
}

// padRange widens [lo, hi] by 5% per side so data never touches the
// frame. A degenerate range is widened to 1 before padding.
func padRange(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span < 0.001 {
		span = 1
	}
	return lo - span*0.05, hi + span*0.05
}

// chartFrame opens the SVG and draws the background, the centered
// title, and the horizontal grid with Y-axis labels.
func chartFrame(sb *strings.Builder, cfg ChartConfig, sc plotScale) {
	yfmt := cfg.yFormat()
	fmt.Fprintf(sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
	fmt.Fprintf(sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor)
	fmt.Fprintf(sb, `<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title))

	const gridLines = 5
	for i := 0; i <= gridLines; i++ {
		val := sc.min + (sc.max-sc.min)*float64(i)/gridLines
		y := sc.y(val)
		fmt.Fprintf(sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			sc.x0, y, sc.x0+sc.w, y, cfg.GridColor)
		fmt.Fprintf(sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			sc.x0-5, y+4, cfg.FontSize, cfg.TextColor, escapeXML(yfmt(val)))
	}
}

// ════════════════════════════════════════════════════════════════════
// Wealth Curve
// ════════════════════════════════════════════════════════════════════

// WealthCurveChart plots total wealth (equity plus cumulative cashflow)
// against what the same initial investment would have earned compounding
// at the benchmark rate. The curve must be years 0..N as produced by
// the projection series.
func WealthCurveChart(curve []models.Projection, investment, benchmarkRate float64, cfg ChartConfig) string {
	if len(curve) == 0 {
		return emptySVG(cfg, "No projection data")
	}
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = "Wealth Projection"
	}
	cfg.YFormat = utils.FormatMoneyCompact

	wealth := make([]float64, len(curve))
	bench := make([]float64, len(curve))
	labels := make([]string, len(curve))
	for i, pt := range curve {
		wealth[i] = pt.Equity + pt.CumulativeCashflow
		bench[i] = investment * math.Pow(1+benchmarkRate/100, float64(pt.Year))
		labels[i] = strconv.Itoa(pt.Year)
	}

	return LineChart([]LineChartSeries{
		{Name: "Property wealth", Values: wealth, Color: colorWealth},
		{Name: fmt.Sprintf("Benchmark %.1f%%", benchmarkRate), Values: bench, Color: colorBenchmark, Dash: "5,4"},
	}, labels, cfg)
}

// ════════════════════════════════════════════════════════════════════
// Line Chart
// ════════════════════════════════════════════════════════════════════

// LineChartSeries represents a named data series for line charts.
type LineChartSeries struct {
	Name   string
	Values []float64
	Color  string // hex color (optional, auto-assigned if empty)
	Dash   string // stroke-dasharray (optional, solid if empty)
}

// LineChart generates an SVG line chart with one or more series.
// Labels are optional X-axis labels corresponding to data points.
// NaN values leave gaps in the affected series.
func LineChart(series []LineChartSeries, labels []string, cfg ChartConfig) string {
	if len(series) == 0 {
		return emptySVG(cfg, "No data")
	}
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = "Line Chart"
	}

	n := 0
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, s := range series {
		if len(s.Values) > n {
			n = len(s.Values)
		}
		for _, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if n < 2 {
		return emptySVG(cfg, "Not enough data points")
	}
	lo, hi = padRange(lo, hi)

	px, py, pw, ph := cfg.plotArea()
	sc := plotScale{x0: px, y0: py, w: pw, h: ph, min: lo, max: hi, n: n}

	var sb strings.Builder
	chartFrame(&sb, cfg, sc)

	for si, s := range series {
		color := s.Color
		if color == "" {
			color = seriesPalette[si%len(seriesPalette)]
		}
		dash := ""
		if s.Dash != "" {
			dash = fmt.Sprintf(` stroke-dasharray="%s"`, s.Dash)
		}

		var path strings.Builder
		points := 0
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			cmd := "L"
			if points == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&path, "%s%.1f,%.1f ", cmd, sc.x(i), sc.y(v))
			points++
		}
		if points > 1 {
			fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="%s" stroke-width="2"%s/>`,
				strings.TrimSpace(path.String()), color, dash)
		}

		// Legend swatches stack top-left inside the plot.
		ly := py + 10 + si*16
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"%s/>`,
			px+10, ly, px+30, ly, color, dash)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			px+35, ly+4, cfg.TextColor, escapeXML(s.Name))
	}

	if len(labels) > 0 {
		step := n / 6
		if step < 1 {
			step = 1
		}
		for i := 0; i < len(labels) && i < n; i += step {
			fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
				sc.x(i), py+ph+18, cfg.FontSize-1, cfg.TextColor, escapeXML(labels[i]))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Annual Cashflow Bars
// ════════════════════════════════════════════════════════════════════

// CashflowBarChart draws one bar per projection year showing that
// year's net cashflow, recovered from the cumulative curve. Positive
// years are green, negative red, with a zero line between them.
func CashflowBarChart(curve []models.Projection, cfg ChartConfig) string {
	if len(curve) < 2 {
		return emptySVG(cfg, "No cashflow data")
	}
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = "Annual Cashflow"
	}
	cfg.YFormat = utils.FormatMoneyCompact

	years := make([]int, 0, len(curve)-1)
	flows := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		years = append(years, curve[i].Year)
		flows = append(flows, curve[i].CumulativeCashflow-curve[i-1].CumulativeCashflow)
	}

	// The range always includes zero so the baseline stays in frame.
	lo, hi := 0.0, 0.0
	for _, v := range flows {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	lo, hi = padRange(lo, hi)

	px, py, pw, ph := cfg.plotArea()
	n := len(flows)
	sc := plotScale{x0: px, y0: py, w: pw, h: ph, min: lo, max: hi, n: n}
	zeroY := sc.y(0)

	barW := float64(pw) / float64(n) * 0.7
	if barW > 24 {
		barW = 24
	}

	var sb strings.Builder
	chartFrame(&sb, cfg, sc)

	fmt.Fprintf(&sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-width="1"/>`,
		px, zeroY, px+pw, zeroY, colorZero)

	for i, v := range flows {
		color := colorGain
		top := sc.y(v)
		h := zeroY - top
		if v < 0 {
			color = colorLoss
			top = zeroY
			h = sc.y(v) - zeroY
		}
		if h < 1 {
			h = 1
		}
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="1"/>`,
			sc.xSlot(i)-barW/2, top, barW, h, color)
	}

	step := n / 6
	if step < 1 {
		step = 1
	}
	for i := 0; i < n; i += step {
		fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%d</text>`,
			sc.xSlot(i), py+ph+18, cfg.FontSize-1, cfg.TextColor, years[i])
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f4f6f5"/><text x="%d" y="%d" text-anchor="middle" fill="#8a948f" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
