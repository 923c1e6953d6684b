// Package rates collects current mortgage rate quotes from lender
// listing pages so projections and scenario refinancing can be checked
// against the market. Sources are scraped politely through the shared
// limiter and merged by the Collector.
package rates

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/propfolio/internal/infra"
	"github.com/seenimoa/propfolio/pkg/models"
)

// Source produces rate quotes from one lender or listing site.
type Source interface {
	// Name returns the human-readable name of this rate source.
	Name() string

	// Fetch returns the quotes currently advertised by this source.
	Fetch(ctx context.Context) ([]models.RateQuote, error)
}

// SourceConfig describes how to scrape one lender listing page. The
// selectors address the page's rate table; rows without a parsable
// rate are skipped.
type SourceConfig struct {
	Name            string `mapstructure:"name" json:"name"`
	URL             string `mapstructure:"url" json:"url"`
	RowSelector     string `mapstructure:"rowSelector" json:"rowSelector"`
	ProductSelector string `mapstructure:"productSelector" json:"productSelector"`
	RateSelector    string `mapstructure:"rateSelector" json:"rateSelector"`
	TermSelector    string `mapstructure:"termSelector" json:"termSelector"`
}

// DefaultSourceConfigs returns the built-in listing pages. Deployments
// normally override these in the config file with the lenders they
// care about.
func DefaultSourceConfigs() []SourceConfig {
	return []SourceConfig{
		{
			Name:            "Flat 35",
			URL:             "https://www.flat35.com/kinri/index.php",
			RowSelector:     "table.kinri-table tbody tr",
			ProductSelector: "td:nth-child(1)",
			RateSelector:    "td:nth-child(2)",
			TermSelector:    "td:nth-child(3)",
		},
	}
}

// ScrapedSource scrapes a lender listing page with CSS selectors.
type ScrapedSource struct {
	cfg     SourceConfig
	limiter *infra.RateLimiter
}

// NewScrapedSource creates a source for one listing page. All scraped
// sources should share one limiter per host; passing nil creates a
// conservative private one.
func NewScrapedSource(cfg SourceConfig, limiter *infra.RateLimiter) *ScrapedSource {
	if limiter == nil {
		limiter = infra.NewRateLimiter(1, time.Second)
	}
	return &ScrapedSource{cfg: cfg, limiter: limiter}
}

// Name returns the configured source name.
func (s *ScrapedSource) Name() string { return s.cfg.Name }

// Fetch downloads and parses the listing page.
func (s *ScrapedSource) Fetch(ctx context.Context) ([]models.RateQuote, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	page, err := infra.Fetch(ctx, s.cfg.URL, map[string]string{
		"Accept": "text/html",
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.cfg.Name, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse %s listing HTML: %w", s.cfg.Name, err)
	}

	fetchedAt := time.Now()
	var quotes []models.RateQuote

	doc.Find(s.cfg.RowSelector).Each(func(_ int, row *goquery.Selection) {
		product := strings.TrimSpace(row.Find(s.cfg.ProductSelector).Text())
		rate := parseRatePercent(row.Find(s.cfg.RateSelector).Text())
		// Mortgage rates live in single digits; anything outside
		// (0, 50] is a parse artifact, not a quote.
		if rate <= 0 || rate > 50 {
			return
		}

		term := 0
		if s.cfg.TermSelector != "" {
			term = parseTermYears(row.Find(s.cfg.TermSelector).Text())
		}

		quotes = append(quotes, models.RateQuote{
			Lender:     s.cfg.Name,
			Product:    product,
			AnnualRate: rate,
			TermYears:  term,
			FetchedAt:  fetchedAt,
		})
	})

	return quotes, nil
}

// StaticSource serves a fixed quote list. Used for demo portfolios and
// as a fallback when no listing pages are configured.
type StaticSource struct {
	name   string
	quotes []models.RateQuote
}

// NewStaticSource creates a source that always returns the given quotes.
func NewStaticSource(name string, quotes []models.RateQuote) *StaticSource {
	return &StaticSource{name: name, quotes: quotes}
}

// Name returns the source name.
func (s *StaticSource) Name() string { return s.name }

// Fetch returns a copy of the fixed quotes, stamped with the current time.
func (s *StaticSource) Fetch(_ context.Context) ([]models.RateQuote, error) {
	out := make([]models.RateQuote, len(s.quotes))
	copy(out, s.quotes)
	now := time.Now()
	for i := range out {
		out[i].FetchedAt = now
	}
	return out, nil
}

// parseRatePercent parses a rate cell like "1.86%", "1.86 %", "年1.86％"
// into a percent value. Returns 0 when nothing parsable is found.
func parseRatePercent(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, "％", "")
	s = strings.ReplaceAll(s, "年", "")
	s = strings.TrimSpace(s)

	// Range cells like "1.86~2.10" quote the floor.
	for _, sep := range []string{"~", "〜", "-"} {
		if idx := strings.Index(s, sep); idx > 0 {
			s = s[:idx]
			break
		}
	}

	val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return val
}

// parseTermYears extracts a loan term in years from cells like
// "21年~35年", "20 years", "15". Returns 0 when unspecified.
func parseTermYears(s string) int {
	s = strings.TrimSpace(s)
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	years, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0
	}
	return years
}
