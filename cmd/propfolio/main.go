// Propfolio — Real-Estate Investment Projection Engine
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seenimoa/propfolio/api"
	"github.com/seenimoa/propfolio/internal/cache"
	"github.com/seenimoa/propfolio/internal/config"
	"github.com/seenimoa/propfolio/internal/infra"
	"github.com/seenimoa/propfolio/internal/logging"
	"github.com/seenimoa/propfolio/internal/news"
	"github.com/seenimoa/propfolio/internal/portfolio"
	"github.com/seenimoa/propfolio/internal/projection"
	"github.com/seenimoa/propfolio/internal/propql"
	"github.com/seenimoa/propfolio/internal/rates"
	"github.com/seenimoa/propfolio/internal/report"
	"github.com/seenimoa/propfolio/internal/scenario"
	"github.com/seenimoa/propfolio/pkg/models"
	"github.com/seenimoa/propfolio/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	// A .env file feeds the PROPFOLIO_* overrides before config loads.
	godotenv.Load() //nolint:errcheck

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "propfolio",
	Short: "Propfolio — rental property investment projections",
	Long: `Propfolio models candidate rental purchases: financing, yearly
equity and cashflow projections, scenario stress tests, screening,
market-rate and news intake, and shareable portfolio snapshots.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if portfolioFile, _ := cmd.Flags().GetString("portfolio"); portfolioFile != "" {
			cfg.Portfolio.Path = portfolioFile
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("portfolio", "", "portfolio file path (default: ~/.propfolio/portfolio.json)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(pulseCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(demoCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Propfolio %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  Propfolio — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:      %s (%s)\n", version, commit)
		fmt.Printf("  Time (JST):   %s\n", utils.FormatDateTimeJST(utils.NowJST()))
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    Storage:      %s\n", cfg.Storage.Backend)
		fmt.Printf("    Portfolio:    %s\n", cfg.Portfolio.Path)
		fmt.Printf("    Cache:        %s\n", cfg.Cache.Backend)
		fmt.Printf("    Horizon:      %d years\n", cfg.Portfolio.HorizonYears)
		fmt.Printf("    API Server:   %s:%d\n", cfg.API.Host, cfg.API.Port)

		if store, err := portfolio.NewFileStore(cfg.Portfolio.Path); err == nil {
			if props, err := store.ListProperties(cmd.Context()); err == nil {
				fmt.Printf("    Properties:   %d\n", len(props))
			}
		}
		fmt.Println()

		// Credentials status
		fmt.Println("  Credentials:")
		for _, s := range config.CheckSecrets(cfg) {
			status := "❌ not set"
			if s.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", s.Source, s.Masked)
			}
			fmt.Printf("    %-18s %s\n", s.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		api.Version = version
		srv, err := api.NewServer(cfg, logger)
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Propfolio API server on %s (store: %s)\n", addr, cfg.Storage.Backend)
		fmt.Printf("   Dashboard: http://localhost:%d/\n", cfg.API.Port)
		return srv.ListenAndServe(addr)
	},
}

// --- Project Command ---

var projectCmd = &cobra.Command{
	Use:   "project [id]",
	Short: "Project a property (or summarize the whole portfolio)",
	Long: `Without arguments, print every stored property with its financing
figures. With a property id or name, print the year-by-year projection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := portfolio.NewFileStore(cfg.Portfolio.Path)
		if err != nil {
			return err
		}
		a, err := store.Assumptions(cmd.Context())
		if err != nil {
			return err
		}

		if len(args) == 0 {
			props, err := store.ListProperties(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("📊 Portfolio — %d properties (inflation %.1f%%, tax %.1f%%, legal %.1f%%)\n\n",
				len(props), a.InflationRate, a.TransferTaxRate, a.LegalFeeRate)
			printPropertyTable(props)
			return nil
		}

		p, err := findProperty(cmd.Context(), store, args[0])
		if err != nil {
			return err
		}
		horizon := horizonFlag(cmd)

		fmt.Printf("📈 %s — %d-year projection\n", p.Name, horizon)
		fmt.Printf("   Investment %s, loan %s at %.2f%% over %d years, payment %s/month\n\n",
			utils.FormatMoney(p.TotalInitialInvestment), utils.FormatMoneyCompact(p.LoanPrincipal),
			p.AnnualInterestRate, p.LoanTermYears, utils.FormatMoney(p.MonthlyPaymentAmount))
		printProjectionTable(p, a, horizon)
		return nil
	},
}

func init() {
	projectCmd.Flags().Int("horizon", 0, "projection horizon in years (default: configured)")
}

// --- Compare Command ---

var compareCmd = &cobra.Command{
	Use:   "compare [id]",
	Short: "Stress-test a property under standard scenarios",
	Long: `Project a property under the baseline assumptions and a standard
stress battery: +2pp on the loan rate, -10% rent, -10% purchase price,
and zero inflation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := portfolio.NewFileStore(cfg.Portfolio.Path)
		if err != nil {
			return err
		}
		p, err := findProperty(cmd.Context(), store, args[0])
		if err != nil {
			return err
		}
		a, err := store.Assumptions(cmd.Context())
		if err != nil {
			return err
		}

		horizon := horizonFlag(cmd)
		eng := scenario.NewEngine(scenario.Config{HorizonYears: horizon})
		results, err := eng.Run(p, a, stressScenarios(p))
		if err != nil {
			return err
		}

		fmt.Printf("🎯 %s — %d-year stress test\n\n", p.Name, horizon)
		fmt.Printf("  %-14s %12s %14s %12s %12s\n", "SCENARIO", "FINAL ROI", "FINAL EQUITY", "BREAK-EVEN", "CASH-ON-CASH")
		for _, r := range results {
			breakEven := "never"
			if r.Metrics.BreakEvenYear >= 0 {
				breakEven = fmt.Sprintf("year %d", r.Metrics.BreakEvenYear)
			}
			fmt.Printf("  %-14s %12s %14s %12s %12s\n",
				r.Scenario.Name,
				utils.FormatPct(r.Metrics.FinalROIPercent),
				utils.FormatMoneyCompact(r.Metrics.FinalEquity),
				breakEven,
				utils.FormatPct(r.Metrics.CashOnCashPercent))
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().Int("horizon", 0, "projection horizon in years (default: configured)")
}

// stressScenarios builds the standard battery against the property's
// own financing terms.
func stressScenarios(p models.Property) []models.Scenario {
	f := func(v float64) *float64 { return &v }
	return []models.Scenario{
		{Name: "rate+2pp", InterestRate: f(p.AnnualInterestRate + 2)},
		{Name: "rent-10%", RentDelta: f(-10)},
		{Name: "price-10%", PriceDelta: f(-10)},
		{Name: "no-inflation", InflationRate: f(0)},
	}
}

// --- Screen Command ---

var screenCmd = &cobra.Command{
	Use:   "screen [expression]",
	Short: "Filter the portfolio with a screening expression",
	Long: `Filter stored properties with a screening expression.

Examples:
  propfolio screen 'cashflow > 0'
  propfolio screen 'yield > 5 and price < 60m'
  propfolio screen 'roi(10) > 50 and not contains(name, "leasehold")'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := portfolio.NewFileStore(cfg.Portfolio.Path)
		if err != nil {
			return err
		}
		props, err := store.ListProperties(cmd.Context())
		if err != nil {
			return err
		}
		a, err := store.Assumptions(cmd.Context())
		if err != nil {
			return err
		}

		matched, err := propql.Screen(props, a, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("🔍 %d of %d properties match %q\n\n", len(matched), len(props), args[0])
		printPropertyTable(matched)
		return nil
	},
}

// --- Rates Command ---

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Fetch current mortgage rate quotes",
	RunE: func(cmd *cobra.Command, args []string) error {
		collector, _ := buildMarket()
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		quotes, err := collector.Quotes(ctx)
		if err != nil {
			return fmt.Errorf("rate fetch failed: %w", err)
		}

		fmt.Printf("🏦 Mortgage rates — %d quotes\n\n", len(quotes))
		fmt.Printf("  %-24s %-22s %8s %6s\n", "LENDER", "PRODUCT", "RATE", "TERM")
		for _, q := range quotes {
			term := "any"
			if q.TermYears > 0 {
				term = fmt.Sprintf("%dy", q.TermYears)
			}
			fmt.Printf("  %-24s %-22s %7.3f%% %6s\n", q.Lender, q.Product, q.AnnualRate, term)
		}

		if term, _ := cmd.Flags().GetInt("term"); term > 0 {
			best, err := collector.Best(ctx, term)
			if err != nil {
				return err
			}
			fmt.Printf("\n  Best for a %d-year loan: %s %s at %.3f%%\n",
				term, best.Lender, best.Product, best.AnnualRate)
		}
		return nil
	},
}

func init() {
	ratesCmd.Flags().Int("term", 0, "also show the best quote for this loan term")
}

// --- Pulse Command ---

var pulseCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Summarize housing-market news into a market mood",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, newsSvc := buildMarket()
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		pulse, err := newsSvc.Pulse(ctx)
		if err != nil {
			return fmt.Errorf("pulse fetch failed: %w", err)
		}

		fmt.Printf("%s Market pulse: %s (score %+.2f, %d articles)\n",
			moodEmoji(pulse.Mood), pulse.Mood, pulse.Score, pulse.ArticleCnt)
		for _, a := range pulse.TopArticles {
			fmt.Printf("  %+.1f  %s — %s\n", a.Sentiment, a.Source, a.Title)
		}
		return nil
	},
}

func moodEmoji(mood string) string {
	switch mood {
	case models.MoodHot:
		return "🔥"
	case models.MoodWarm:
		return "🌤"
	case models.MoodCooling:
		return "🌧"
	case models.MoodCold:
		return "❄️"
	default:
		return "➖"
	}
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report [id]",
	Short: "Generate a property report",
	Long: `Print a text report for a property. With --html or --pdf, write
a self-contained report file (charts inlined) into the current
directory instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := portfolio.NewFileStore(cfg.Portfolio.Path)
		if err != nil {
			return err
		}
		p, err := findProperty(cmd.Context(), store, args[0])
		if err != nil {
			return err
		}
		a, err := store.Assumptions(cmd.Context())
		if err != nil {
			return err
		}

		in := report.Input{Property: p, Assumptions: a}

		// Market context is optional; dead feeds just thin the report out.
		collector, newsSvc := buildMarket()
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		if pulse, err := newsSvc.Pulse(ctx); err == nil && pulse.ArticleCnt > 0 {
			in.Pulse = &pulse
		}
		if quotes, err := collector.Quotes(ctx); err == nil {
			in.Rates = quotes
		}

		rcfg := report.DefaultReportConfig()
		rcfg.HorizonYears = horizonFlag(cmd)

		name := strings.ReplaceAll(strings.ToLower(utils.SanitizeShareName(p.Name)), " ", "-")

		if pdf, _ := cmd.Flags().GetBool("pdf"); pdf {
			out, err := report.GenerateHTML(in, rcfg)
			if err != nil {
				return err
			}
			pcfg := report.DefaultPDFConfig()
			pcfg.OutputPath = name + "-report.pdf"
			if err := report.GeneratePDF(out, pcfg); err != nil {
				return err
			}
			if report.IsPDFSupported() {
				fmt.Printf("📄 Report written to %s\n", pcfg.OutputPath)
			} else {
				fmt.Printf("📄 No PDF engine on PATH, wrote %s-report.html instead\n", name)
			}
			return nil
		}

		if html, _ := cmd.Flags().GetBool("html"); html {
			out, err := report.GenerateHTML(in, rcfg)
			if err != nil {
				return err
			}
			path := name + "-report.html"
			if err := os.WriteFile(path, []byte(out), 0644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("📄 Report written to %s\n", path)
			return nil
		}

		out, err := report.GenerateText(in, rcfg)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	reportCmd.Flags().Bool("html", false, "write a self-contained HTML report")
	reportCmd.Flags().Bool("pdf", false, "write a PDF report (needs wkhtmltopdf or chromium)")
	reportCmd.Flags().Int("horizon", 0, "projection horizon in years (default: configured)")
}

// --- Export / Import Commands ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the portfolio document as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := portfolio.NewFileStore(cfg.Portfolio.Path)
		if err != nil {
			return err
		}
		doc, err := store.Document(cmd.Context())
		if err != nil {
			return err
		}
		data, err := portfolio.MarshalDocument(doc)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Printf("💾 Exported %d properties to %s\n", len(doc.Properties), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a portfolio document, replacing the current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := portfolio.UnmarshalDocument(data)
		if err != nil {
			return err
		}

		store, err := portfolio.NewFileStore(cfg.Portfolio.Path)
		if err != nil {
			return err
		}
		if err := store.ReplaceAll(cmd.Context(), doc); err != nil {
			return err
		}
		fmt.Printf("📥 Imported %d properties into %s\n", len(doc.Properties), cfg.Portfolio.Path)
		return nil
	},
}

// --- Share Command ---

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Encode the portfolio as a share code (or decode one)",
	Long: `Without flags, print a compact share code for the whole portfolio.
With --decode, decode a share code and print the properties it carries,
recomputed under the current assumptions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := portfolio.NewFileStore(cfg.Portfolio.Path)
		if err != nil {
			return err
		}

		if code, _ := cmd.Flags().GetString("decode"); code != "" {
			props, err := portfolio.DecodeShareCode(code)
			if err != nil {
				return err
			}
			a, err := store.Assumptions(cmd.Context())
			if err != nil {
				return err
			}
			for i := range props {
				props[i] = projection.Recompute(props[i], a)
			}
			fmt.Printf("🔗 Share code carries %d properties\n\n", len(props))
			printPropertyTable(props)
			return nil
		}

		props, err := store.ListProperties(cmd.Context())
		if err != nil {
			return err
		}
		if len(props) == 0 {
			return fmt.Errorf("portfolio is empty")
		}
		fmt.Printf("🔗 Share code for %d properties:\n\n%s\n", len(props), portfolio.EncodeShareCode(props))
		return nil
	},
}

func init() {
	shareCmd.Flags().String("decode", "", "decode a share code instead of encoding")
}

// --- Demo Command ---

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Seed the portfolio with sample properties",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := portfolio.NewFileStore(cfg.Portfolio.Path)
		if err != nil {
			return err
		}

		existing, err := store.ListProperties(cmd.Context())
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		if len(existing) > 0 && !force {
			return fmt.Errorf("portfolio already has %d properties (use --force to replace)", len(existing))
		}

		doc := models.PortfolioDocument{
			SchemaVersion: models.CurrentSchemaVersion,
			Assumptions:   models.DefaultAssumptions(),
			Properties:    demoProperties(),
		}
		if err := store.ReplaceAll(cmd.Context(), doc); err != nil {
			return err
		}

		props, err := store.ListProperties(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("🏠 Seeded %d sample properties into %s\n\n", len(props), cfg.Portfolio.Path)
		printPropertyTable(props)
		return nil
	},
}

func init() {
	demoCmd.Flags().Bool("force", false, "replace an existing portfolio")
}

// demoProperties returns three contrasting purchases: a renovation
// play, a family condo, and a cheap cash-cow studio.
func demoProperties() []models.Property {
	return []models.Property{
		{
			Name:                  "Koenji 1K renovation",
			Price:                 28_000_000,
			Rent:                  128_000,
			RenovationCost:        1_500_000,
			PostRenovationValue:   33_000_000,
			MonthlyRecurringCosts: 12_000,
			DownPaymentPercent:    15,
			AnnualInterestRate:    1.2,
			LoanTermYears:         35,
		},
		{
			Name:                  "Kiba family 2LDK",
			Price:                 52_000_000,
			Rent:                  185_000,
			MonthlyRecurringCosts: 18_000,
			DownPaymentPercent:    20,
			AnnualInterestRate:    1.45,
			LoanTermYears:         30,
		},
		{
			Name:                  "Omiya studio cash cow",
			Price:                 9_800_000,
			Rent:                  82_000,
			MonthlyRecurringCosts: 9_000,
			DownPaymentPercent:    60,
			AnnualInterestRate:    2.0,
			LoanTermYears:         15,
		},
	}
}

// --- Shared helpers ---

// findProperty resolves an id, an exact name, or a unique name prefix.
func findProperty(ctx context.Context, store portfolio.Store, key string) (models.Property, error) {
	if p, err := store.GetProperty(ctx, key); err == nil {
		return p, nil
	}

	props, err := store.ListProperties(ctx)
	if err != nil {
		return models.Property{}, err
	}

	lower := strings.ToLower(key)
	var matches []models.Property
	for _, p := range props {
		name := strings.ToLower(p.Name)
		if name == lower {
			return p, nil
		}
		if strings.HasPrefix(name, lower) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.Property{}, fmt.Errorf("no property matches %q", key)
	default:
		names := make([]string, len(matches))
		for i, p := range matches {
			names[i] = p.Name
		}
		return models.Property{}, fmt.Errorf("%q is ambiguous: %s", key, strings.Join(names, ", "))
	}
}

// horizonFlag reads --horizon, falling back to the configured default.
func horizonFlag(cmd *cobra.Command) int {
	if horizon, _ := cmd.Flags().GetInt("horizon"); horizon > 0 {
		return horizon
	}
	if cfg.Portfolio.HorizonYears > 0 {
		return cfg.Portfolio.HorizonYears
	}
	return 30
}

// buildMarket wires the rate collector and news service the same way
// the API server does. CLI runs are one-shot, so the cache is always
// in-memory here.
func buildMarket() (*rates.Collector, *news.Service) {
	c := cache.NewMemoryCache(15 * time.Minute)
	limiter := infra.NewRateLimiter(2, time.Second)

	rateCfgs := cfg.Rates.Sources
	if len(rateCfgs) == 0 {
		rateCfgs = rates.DefaultSourceConfigs()
	}
	rateSources := make([]rates.Source, 0, len(rateCfgs))
	for _, sc := range rateCfgs {
		rateSources = append(rateSources, rates.NewScrapedSource(sc, limiter))
	}
	collector := rates.NewCollector(rateSources, c, time.Duration(cfg.Rates.CacheTTL)*time.Second)

	newsCfgs := cfg.News.Sources
	if len(newsCfgs) == 0 {
		newsCfgs = news.DefaultSourceConfigs()
	}
	newsSources := make([]news.Source, 0, len(newsCfgs))
	for _, sc := range newsCfgs {
		newsSources = append(newsSources, news.NewRSSSource(sc, limiter))
	}
	newsSvc := news.NewService(newsSources, c, time.Duration(cfg.News.CacheTTL)*time.Second, nil)

	return collector, newsSvc
}

func printPropertyTable(props []models.Property) {
	if len(props) == 0 {
		fmt.Println("  (no properties)")
		return
	}
	fmt.Printf("  %-26s %10s %10s %12s %12s %8s\n",
		"PROPERTY", "PRICE", "INVESTED", "PAYMENT/M", "CASHFLOW/M", "YIELD")
	for _, p := range props {
		grossYield := 0.0
		if p.Price > 0 {
			grossYield = p.Rent * 12 / p.Price * 100
		}
		fmt.Printf("  %-26s %10s %10s %12s %12s %7.2f%%\n",
			truncate(p.Name, 26),
			utils.FormatMoneyCompact(p.Price),
			utils.FormatMoneyCompact(p.TotalInitialInvestment),
			utils.FormatMoney(p.MonthlyPaymentAmount),
			utils.FormatMoney(p.MonthlyCashflow),
			grossYield)
	}
}

// printProjectionTable prints milestone years: 0, 1, then every fifth
// year plus the horizon itself.
func printProjectionTable(p models.Property, a models.GlobalAssumptions, horizon int) {
	fmt.Printf("  %4s %12s %12s %12s %14s %12s %10s\n",
		"YEAR", "VALUE", "LOAN", "EQUITY", "CUM CASHFLOW", "PROFIT", "ROI")
	for _, row := range projection.Series(p, a, horizon) {
		if !(row.Year <= 1 || row.Year%5 == 0 || row.Year == horizon) {
			continue
		}
		fmt.Printf("  %4d %12s %12s %12s %14s %12s %10s\n",
			row.Year,
			utils.FormatMoneyCompact(row.ProjectedValue),
			utils.FormatMoneyCompact(row.RemainingLoan),
			utils.FormatMoneyCompact(row.Equity),
			utils.FormatMoneyCompact(row.CumulativeCashflow),
			utils.FormatMoneyCompact(row.Profit),
			utils.FormatPct(row.ROIPercent))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
