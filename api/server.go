// Package api provides the HTTP REST API server for Propfolio.
//
// It exposes endpoints for portfolio management, projections, scenario
// comparison, screening, share codes, market rates, news pulse, SVG
// charts, and WebSocket event streaming.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/seenimoa/propfolio/internal/cache"
	"github.com/seenimoa/propfolio/internal/config"
	"github.com/seenimoa/propfolio/internal/infra"
	"github.com/seenimoa/propfolio/internal/news"
	"github.com/seenimoa/propfolio/internal/portfolio"
	"github.com/seenimoa/propfolio/internal/projection"
	"github.com/seenimoa/propfolio/internal/propql"
	"github.com/seenimoa/propfolio/internal/rates"
	"github.com/seenimoa/propfolio/internal/report"
	"github.com/seenimoa/propfolio/internal/scenario"
	"github.com/seenimoa/propfolio/pkg/models"
	"github.com/seenimoa/propfolio/pkg/utils"
	"github.com/seenimoa/propfolio/web"
)

// Version is reported by /health. The CLI stamps it at startup.
var Version = "dev"

// maxHorizonYears caps horizon query parameters; a projection past a
// century is noise.
const maxHorizonYears = 100

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	cfgMu     sync.Mutex // serialises config updates and file writes
	store     portfolio.Store
	cache     cache.Cache
	collector *rates.Collector
	newsSvc   *news.Service
	logger    *zap.Logger
	wsHub     *WSHub
	serveUI   bool // when true, serve the embedded dashboard at /
}

// NewServer creates a configured API server with all routes and
// middleware. A nil logger disables structured logging.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage setup failed: %w", err)
	}

	c, err := newCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("cache setup failed: %w", err)
	}

	// One limiter across all scrapers keeps a cold-cache refresh polite.
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
	newsSvc := news.NewService(newsSources, c, time.Duration(cfg.News.CacheTTL)*time.Second, logger.Named("news"))

	srv := &Server{
		cfg:       cfg,
		store:     store,
		cache:     c,
		collector: collector,
		newsSvc:   newsSvc,
		logger:    logger.Named("api"),
		wsHub:     NewWSHub(),
		serveUI:   true, // serve embedded dashboard by default
	}

	srv.router = srv.buildRouter()
	return srv, nil
}

// newStore selects the portfolio backend from config.
func newStore(cfg *config.Config) (portfolio.Store, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		if cfg.Storage.PostgresDSN == "" {
			return nil, fmt.Errorf("storage backend is postgres but no DSN is configured")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		store := portfolio.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, nil
	case "memory":
		return portfolio.NewMemoryStore(), nil
	default: // "file"
		return portfolio.NewFileStore(cfg.Portfolio.Path)
	}
}

// newCache selects the cache backend from config.
func newCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.Cache.Backend == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return cache.DialRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword,
			cfg.Cache.RedisDB, "propfolio", 15*time.Minute)
	}
	return cache.NewMemoryCache(15 * time.Minute), nil
}

// SetServeUI controls whether the embedded dashboard is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Store returns the portfolio store backing the server.
func (s *Server) Store() portfolio.Store {
	return s.store
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or
// SIGTERM, then drains in-flight requests before returning.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // cold-cache report rendering hits live feeds
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	s.wsHub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// The API carries no credentials, so CORS only needs to admit the
	// configured dashboard origins.
	origins := s.cfg.API.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Assumptions
		r.Get("/assumptions", s.handleGetAssumptions)
		r.Put("/assumptions", s.handleUpdateAssumptions)

		// Properties
		r.Get("/properties", s.handleListProperties)
		r.Post("/properties", s.handleCreateProperty)
		r.Get("/properties/{id}", s.handleGetProperty)
		r.Put("/properties/{id}", s.handleUpdateProperty)
		r.Delete("/properties/{id}", s.handleDeleteProperty)
		r.Get("/properties/{id}/projection", s.handleProjection)
		r.Get("/properties/{id}/series", s.handleSeries)
		r.Get("/properties/{id}/report", s.handleReport)

		// Scenario comparison
		r.Post("/compare", s.handleCompare)

		// Screening
		r.Post("/screen", s.handleScreen)

		// Portfolio documents
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)

		// Sharing
		r.Get("/share", s.handleShareEncode)
		r.Post("/share/decode", s.handleShareDecode)
		r.Post("/share/link", s.handleCreateShareLink)
		r.Get("/share/link/{id}", s.handleResolveShareLink)

		// Market context
		r.Get("/rates", s.handleRates)
		r.Get("/news", s.handleNews)
		r.Get("/pulse", s.handlePulse)

		// Charts
		r.Get("/charts/properties/{id}/wealth.svg", s.handleWealthChart)
		r.Get("/charts/properties/{id}/cashflow.svg", s.handleCashflowChart)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)
		r.Get("/config/secrets", s.handleGetConfigSecrets)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	// Serve embedded dashboard (SPA with fallback to index.html)
	if s.serveUI {
		s.mountSPA(r, web.DistFS())
	}

	return r
}

// requestLogger logs every request through the server's zap logger,
// carrying the chi request id so API logs line up with error responses.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// mountSPA serves the embedded dashboard. Real assets are served from
// the embedded filesystem; every other path gets index.html so
// client-side routes survive a deep link or reload.
func (s *Server) mountSPA(r chi.Router, distFS fs.FS) {
	index, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		s.logger.Warn("dashboard assets missing, UI disabled", zap.Error(err))
		return
	}
	assets := http.FileServerFS(distFS)

	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		name := strings.TrimPrefix(req.URL.Path, "/")
		if name != "" && name != "index.html" {
			if _, err := fs.Stat(distFS, name); err == nil {
				assets.ServeHTTP(w, req)
				return
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.WriteHeader(http.StatusOK)
		w.Write(index) //nolint:errcheck
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CompareRequest is the body for POST /api/v1/compare.
type CompareRequest struct {
	PropertyID string            `json:"propertyId"`
	Horizon    int               `json:"horizon,omitempty"` // years, default from config
	Scenarios  []models.Scenario `json:"scenarios,omitempty"`
}

// ScreenRequest is the body for POST /api/v1/screen.
type ScreenRequest struct {
	Expression string `json:"expression"`
}

// ShareDecodeRequest is the body for POST /api/v1/share/decode.
type ShareDecodeRequest struct {
	Code string `json:"code"`
}

// ShareLinkRequest is the body for POST /api/v1/share/link. An empty
// body (or empty code) shares the whole portfolio.
type ShareLinkRequest struct {
	Code string `json:"code,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"version":  Version,
			"store":    s.cfg.Storage.Backend,
			"time_jst": utils.FormatDateTimeJST(utils.NowJST()),
		},
	})
}

// ── Assumptions ──

func (s *Server) handleGetAssumptions(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.Assumptions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: a})
}

func (s *Server) handleUpdateAssumptions(w http.ResponseWriter, r *http.Request) {
	var a models.GlobalAssumptions
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SetAssumptions(r.Context(), a); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{Type: "assumptions_updated", Data: a})

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: a})
}

// ── Properties ──

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.store.ListProperties(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: props})
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var p models.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if p.LoanTermYears < 1 {
		writeError(w, http.StatusBadRequest, "loanTermYears must be at least 1")
		return
	}

	saved, err := s.store.SaveProperty(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "property_saved",
		Data: map[string]interface{}{"id": saved.ID, "name": saved.Name},
	})

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: saved})
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.store.GetProperty(r.Context(), id)
	if errors.Is(err, portfolio.ErrNotFound) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: p})
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetProperty(r.Context(), id); errors.Is(err, portfolio.ErrNotFound) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var p models.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = id // the path id wins over any id in the body
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if p.LoanTermYears < 1 {
		writeError(w, http.StatusBadRequest, "loanTermYears must be at least 1")
		return
	}

	saved, err := s.store.SaveProperty(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "property_saved",
		Data: map[string]interface{}{"id": saved.ID, "name": saved.Name},
	})

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: saved})
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.DeleteProperty(r.Context(), id)
	if errors.Is(err, portfolio.ErrNotFound) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "property_deleted",
		Data: map[string]interface{}{"id": id},
	})

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]string{"deleted": id}})
}

// ── Projections ──

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	p, a, ok := s.loadProperty(w, r)
	if !ok {
		return
	}

	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		writeError(w, http.StatusBadRequest, "year query parameter is required")
		return
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	if year < 0 || year > maxHorizonYears {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("year must be between 0 and %d", maxHorizonYears))
		return
	}

	proj := projection.ProjectAt(p, a, year)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: proj})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	p, a, ok := s.loadProperty(w, r)
	if !ok {
		return
	}

	horizon, err := s.horizonParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	curve := projection.Series(p, a, horizon)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"propertyId":  p.ID,
			"horizon":     horizon,
			"projections": curve,
		},
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	p, a, ok := s.loadProperty(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	if format != "html" && format != "text" {
		writeError(w, http.StatusBadRequest, "format must be html or text")
		return
	}

	horizon, err := s.horizonParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := report.Input{Property: p, Assumptions: a}

	// Market context is optional; a cold cache or dead feeds just thin
	// out the report.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	if pulse, err := s.newsSvc.Pulse(ctx); err == nil && pulse.ArticleCnt > 0 {
		in.Pulse = &pulse
	}
	if quotes, err := s.collector.Quotes(ctx); err == nil {
		in.Rates = quotes
	}

	cfg := report.DefaultReportConfig()
	cfg.HorizonYears = horizon

	if format == "text" {
		out, err := report.GenerateText(in, cfg)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(out)) //nolint:errcheck
		return
	}

	out, err := report.GenerateHTML(in, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(out)) //nolint:errcheck
}

// ── Scenario comparison ──

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PropertyID == "" {
		writeError(w, http.StatusBadRequest, "propertyId is required")
		return
	}
	if req.Horizon < 0 || req.Horizon > maxHorizonYears {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("horizon must be between 0 and %d", maxHorizonYears))
		return
	}

	p, err := s.store.GetProperty(r.Context(), req.PropertyID)
	if errors.Is(err, portfolio.ErrNotFound) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a, err := s.store.Assumptions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	horizon := req.Horizon
	if horizon == 0 {
		horizon = s.cfg.Portfolio.HorizonYears
	}
	eng := scenario.NewEngine(scenario.Config{HorizonYears: horizon})
	results, err := eng.Run(p, a, req.Scenarios)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"propertyId": p.ID,
			"horizon":    horizon,
			"results":    results,
		},
	})
}

// ── Screening ──

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Expression == "" {
		writeError(w, http.StatusBadRequest, "expression is required")
		return
	}

	props, err := s.store.ListProperties(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a, err := s.store.Assumptions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	matched, err := propql.Screen(props, a, req.Expression)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"expression": req.Expression,
			"count":      len(matched),
			"properties": matched,
		},
	})
}

// ── Portfolio documents ──

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Document(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	data, err := portfolio.MarshalDocument(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Raw document, not the envelope: the response is the file.
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var doc models.PortfolioDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid portfolio document")
		return
	}

	if err := s.store.ReplaceAll(r.Context(), doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "portfolio_imported",
		Data: map[string]interface{}{"count": len(doc.Properties)},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"imported":      len(doc.Properties),
			"schemaVersion": models.CurrentSchemaVersion,
		},
	})
}

// ── Sharing ──

func (s *Server) handleShareEncode(w http.ResponseWriter, r *http.Request) {
	props, err := s.store.ListProperties(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(props) == 0 {
		writeError(w, http.StatusBadRequest, "portfolio is empty")
		return
	}

	code := portfolio.EncodeShareCode(props)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"code":  code,
			"count": len(props),
		},
	})
}

func (s *Server) handleShareDecode(w http.ResponseWriter, r *http.Request) {
	var req ShareDecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	props, err := portfolio.DecodeShareCode(req.Code)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid share code")
		return
	}

	// Decoded records are raw; recompute under the current assumptions
	// so the response carries usable derived fields.
	a, err := s.store.Assumptions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for i := range props {
		props[i] = projection.Recompute(props[i], a)
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"count":      len(props),
			"properties": props,
		},
	})
}

func (s *Server) handleCreateShareLink(w http.ResponseWriter, r *http.Request) {
	var req ShareLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	code := req.Code
	if code == "" {
		props, err := s.store.ListProperties(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(props) == 0 {
			writeError(w, http.StatusBadRequest, "portfolio is empty")
			return
		}
		code = portfolio.EncodeShareCode(props)
	} else if _, err := portfolio.DecodeShareCode(code); err != nil {
		writeError(w, http.StatusBadRequest, "invalid share code")
		return
	}

	id := uuid.NewString()[:8]
	ttl := time.Duration(s.cfg.Sharing.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	if err := s.cache.Set(r.Context(), shareLinkKey(id), []byte(code), ttl); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"id":        id,
			"url":       strings.TrimRight(s.cfg.Sharing.BaseURL, "/") + "/api/v1/share/link/" + id,
			"code":      code,
			"expiresAt": utils.NowJST().Add(ttl),
		},
	})
}

func (s *Server) handleResolveShareLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := s.cache.Get(r.Context(), shareLinkKey(id))
	if errors.Is(err, cache.ErrMiss) {
		writeError(w, http.StatusNotFound, "share link not found or expired")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	code := string(data)
	props, err := portfolio.DecodeShareCode(code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stored share code is corrupt")
		return
	}
	a, err := s.store.Assumptions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for i := range props {
		props[i] = projection.Recompute(props[i], a)
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"code":       code,
			"count":      len(props),
			"properties": props,
		},
	})
}

// ── Market context ──

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	quotes, err := s.collector.Quotes(ctx)
	if err != nil {
		// Rate intake is optional; degrade to an empty list.
		s.logger.Warn("rate fetch failed", zap.Error(err))
		quotes = []models.RateQuote{}
	}

	data := map[string]interface{}{
		"quotes": quotes,
		"count":  len(quotes),
	}

	if termStr := r.URL.Query().Get("term"); termStr != "" {
		term, err := strconv.Atoi(termStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "term must be an integer")
			return
		}
		if best, err := s.collector.Best(ctx, term); err == nil {
			data["best"] = best
		}
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limStr := r.URL.Query().Get("limit"); limStr != "" {
		v, err := strconv.Atoi(limStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	articles, err := s.newsSvc.Headlines(ctx, limit)
	if err != nil {
		s.logger.Warn("news fetch failed", zap.Error(err))
		articles = []models.NewsArticle{}
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"articles": articles,
			"count":    len(articles),
		},
	})
}

func (s *Server) handlePulse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	pulse, err := s.newsSvc.Pulse(ctx)
	if err != nil {
		// All feeds down still yields a neutral pulse.
		s.logger.Warn("pulse fetch failed", zap.Error(err))
		pulse = news.BuildPulse(nil, utils.NowJST())
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: pulse})
}

// ── Charts ──

func (s *Server) handleWealthChart(w http.ResponseWriter, r *http.Request) {
	p, a, ok := s.loadProperty(w, r)
	if !ok {
		return
	}
	horizon, err := s.horizonParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	curve := projection.Series(p, a, horizon)
	chartCfg := report.DefaultChartConfig()
	chartCfg.Title = fmt.Sprintf("%s — Wealth vs Benchmark", p.Name)
	svg := report.WealthCurveChart(curve, p.TotalInitialInvestment, a.BenchmarkRate, chartCfg)

	writeSVG(w, svg)
}

func (s *Server) handleCashflowChart(w http.ResponseWriter, r *http.Request) {
	p, a, ok := s.loadProperty(w, r)
	if !ok {
		return
	}
	horizon, err := s.horizonParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	curve := projection.Series(p, a, horizon)
	chartCfg := report.DefaultChartConfig()
	chartCfg.Title = fmt.Sprintf("%s — Annual Cashflow", p.Name)
	svg := report.CashflowBarChart(curve, chartCfg)

	writeSVG(w, svg)
}

// ============================================================
// Helpers
// ============================================================

// loadProperty resolves the {id} path parameter and the current
// assumptions, writing the error response itself on failure.
func (s *Server) loadProperty(w http.ResponseWriter, r *http.Request) (models.Property, models.GlobalAssumptions, bool) {
	id := chi.URLParam(r, "id")
	p, err := s.store.GetProperty(r.Context(), id)
	if errors.Is(err, portfolio.ErrNotFound) {
		writeError(w, http.StatusNotFound, "property not found")
		return models.Property{}, models.GlobalAssumptions{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return models.Property{}, models.GlobalAssumptions{}, false
	}

	a, err := s.store.Assumptions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return models.Property{}, models.GlobalAssumptions{}, false
	}
	return p, a, true
}

// horizonParam reads the horizon query parameter, defaulting to the
// configured projection horizon.
func (s *Server) horizonParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("horizon")
	if raw == "" {
		if s.cfg.Portfolio.HorizonYears > 0 {
			return s.cfg.Portfolio.HorizonYears, nil
		}
		return 30, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("horizon must be an integer")
	}
	if v < 0 || v > maxHorizonYears {
		return 0, fmt.Errorf("horizon must be between 0 and %d", maxHorizonYears)
	}
	return v, nil
}

func shareLinkKey(id string) string {
	return "share:link:" + id
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

func writeSVG(w http.ResponseWriter, svg string) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(svg)) //nolint:errcheck
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub fans portfolio events out to connected dashboard sockets. All
// membership changes flow through the Run loop; the mutex only guards
// reads from other goroutines.
type WSHub struct {
	mu      sync.RWMutex
	clients map[*WSClient]struct{}

	events chan WSMessage
	join   chan *WSClient
	leave  chan *WSClient
	quit   chan struct{}
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients: make(map[*WSClient]struct{}),
		events:  make(chan WSMessage, 256),
		join:    make(chan *WSClient),
		leave:   make(chan *WSClient),
		quit:    make(chan struct{}),
	}
}

// Run starts the hub event loop. It returns after Stop.
func (h *WSHub) Run() {
	for {
		select {
		case c := <-h.join:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
		case c := <-h.leave:
			h.drop(c)
		case msg := <-h.events:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Receiver stalled; cut it loose.
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *WSHub) drop(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Stop disconnects every client and ends the Run loop.
func (h *WSHub) Stop() {
	close(h.quit)
}

// Broadcast queues a message for every connected client. It never
// blocks; when the event queue is full the message is dropped.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.events <- msg:
	default:
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.join <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.leave <- client
}
