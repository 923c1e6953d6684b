package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/propfolio/internal/cache"
	"github.com/seenimoa/propfolio/internal/config"
	"github.com/seenimoa/propfolio/internal/news"
	"github.com/seenimoa/propfolio/internal/portfolio"
	"github.com/seenimoa/propfolio/internal/rates"
	"github.com/seenimoa/propfolio/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func testServer(t *testing.T) *Server {
	t.Helper()
	// Build a server over in-memory backends — no scrapers, no
	// Postgres, static market data. Requests go through the router so
	// chi URL params resolve.
	cfg := &config.Config{}
	cfg.Storage.Backend = "memory"
	cfg.Portfolio.HorizonYears = 30
	cfg.Sharing.TTLHours = 1
	cfg.Sharing.BaseURL = "http://localhost:8080"

	c := cache.NewMemoryCache(time.Minute)
	srv := &Server{
		cfg:   cfg,
		store: portfolio.NewMemoryStore(),
		cache: c,
		collector: rates.NewCollector([]rates.Source{
			rates.NewStaticSource("test bank", []models.RateQuote{
				{Lender: "Test Bank", Product: "Fixed 20y", AnnualRate: 1.5, TermYears: 20},
				{Lender: "Test Bank", Product: "Fixed 35y", AnnualRate: 1.95, TermYears: 35},
			}),
		}, c, time.Minute),
		newsSvc: news.NewService([]news.Source{
			news.NewStaticSource("test feed", []models.NewsArticle{
				{
					Title:       "Housing demand surges in central Tokyo",
					URL:         "https://example.com/1",
					Source:      "test feed",
					PublishedAt: time.Now(),
				},
			}),
		}, c, time.Minute, zap.NewNop()),
		logger: zap.NewNop(),
		wsHub:  NewWSHub(),
	}
	srv.router = srv.buildRouter()
	go srv.wsHub.Run()

	return srv
}

// seedProperty stores the reference purchase directly: 50M yen at 20%
// down, 6.5% over 20 years, renting for 200k/month.
func seedProperty(t *testing.T, srv *Server, name string) models.Property {
	t.Helper()
	p, err := srv.store.SaveProperty(context.Background(), models.Property{
		Name:               name,
		Price:              50_000_000,
		Rent:               200_000,
		DownPaymentPercent: 20,
		AnnualInterestRate: 6.5,
		LoanTermYears:      20,
	})
	if err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return p
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	srv.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func dataMap(t *testing.T, resp APIResponse) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data should be a map, got %T", resp.Data)
	}
	return data
}

// ════════════════════════════════════════════════════════════════════
// Health handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "GET", "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("expected success=true")
	}

	data := dataMap(t, resp)
	if data["status"] != "ok" {
		t.Errorf("status: got %q", data["status"])
	}
	if data["store"] != "memory" {
		t.Errorf("store: got %q, want %q", data["store"], "memory")
	}
	if _, ok := data["version"]; !ok {
		t.Error("missing version")
	}
	if _, ok := data["time_jst"]; !ok {
		t.Error("missing time_jst")
	}
}

// ════════════════════════════════════════════════════════════════════
// Assumptions handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleGetAssumptions_Defaults(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "GET", "/api/v1/assumptions", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["transferTaxRate"] != 4.0 {
		t.Errorf("transferTaxRate: got %v, want 4", data["transferTaxRate"])
	}
	if data["legalFeeRate"] != 0.5 {
		t.Errorf("legalFeeRate: got %v, want 0.5", data["legalFeeRate"])
	}
	if data["inflationRate"] != 3.5 {
		t.Errorf("inflationRate: got %v, want 3.5", data["inflationRate"])
	}
	if data["benchmarkRate"] != 4.0 {
		t.Errorf("benchmarkRate: got %v, want 4", data["benchmarkRate"])
	}
}

func TestHandleUpdateAssumptions_RecomputesPortfolio(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "recompute me")

	body := `{"transferTaxRate":5,"legalFeeRate":1,"inflationRate":2,"benchmarkRate":3}`
	rec := doRequest(srv, "PUT", "/api/v1/assumptions", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["transferTaxRate"] != 5.0 {
		t.Errorf("transferTaxRate: got %v, want 5", data["transferTaxRate"])
	}

	// The stored property must be recomputed under the new rates:
	// 10M down + 2.5M transfer tax + 500k legal fee.
	rec = doRequest(srv, "GET", "/api/v1/properties/"+p.ID, "")
	got := dataMap(t, decodeResponse(t, rec))
	if got["totalInitialInvestment"] != 13_000_000.0 {
		t.Errorf("totalInitialInvestment: got %v, want 13000000", got["totalInitialInvestment"])
	}
}

func TestHandleUpdateAssumptions_InvalidJSON(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "PUT", "/api/v1/assumptions", "{bad")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if resp := decodeResponse(t, rec); resp.Success {
		t.Error("expected success=false for invalid JSON")
	}
}

// ════════════════════════════════════════════════════════════════════
// Property handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleCreateProperty(t *testing.T) {
	srv := testServer(t)
	body := `{"name":"Shibuya 1K","price":50000000,"rent":200000,"downPaymentPercent":20,"annualInterestRate":6.5,"loanTermYears":20}`
	rec := doRequest(srv, "POST", "/api/v1/properties", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusCreated)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["id"] == "" {
		t.Error("expected a minted id")
	}
	if data["loanPrincipal"] != 40_000_000.0 {
		t.Errorf("loanPrincipal: got %v, want 40000000", data["loanPrincipal"])
	}
	if data["totalInitialInvestment"] != 12_250_000.0 {
		t.Errorf("totalInitialInvestment: got %v, want 12250000", data["totalInitialInvestment"])
	}
	if data["postRenovationValue"] != 50_000_000.0 {
		t.Errorf("postRenovationValue: got %v, want price default", data["postRenovationValue"])
	}

	payment, _ := data["monthlyPaymentAmount"].(float64)
	if math.Abs(payment-298_000)/298_000 > 0.005 {
		t.Errorf("monthlyPaymentAmount: got %.2f, want within 0.5%% of 298000", payment)
	}
	if cf, _ := data["monthlyCashflow"].(float64); cf >= 0 {
		t.Errorf("monthlyCashflow: got %.2f, want negative at this rent", cf)
	}
}

func TestHandleCreateProperty_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		errFrag string
	}{
		{"invalid json", "{bad", "invalid request body"},
		{"missing name", `{"price":1000000,"loanTermYears":20}`, "name is required"},
		{"zero loan term", `{"name":"x","price":1000000,"loanTermYears":0}`, "loanTermYears"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t)
			rec := doRequest(srv, "POST", "/api/v1/properties", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			resp := decodeResponse(t, rec)
			if resp.Success {
				t.Error("expected success=false")
			}
			if !strings.Contains(resp.Error, tt.errFrag) {
				t.Errorf("error should mention %q: %q", tt.errFrag, resp.Error)
			}
		})
	}
}

func TestHandleGetProperty(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "lookup target")

	rec := doRequest(srv, "GET", "/api/v1/properties/"+p.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["name"] != "lookup target" {
		t.Errorf("name: got %q", data["name"])
	}
}

func TestHandleGetProperty_NotFound(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "GET", "/api/v1/properties/nope", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	resp := decodeResponse(t, rec)
	if !strings.Contains(resp.Error, "property not found") {
		t.Errorf("error: got %q", resp.Error)
	}
}

func TestHandleUpdateProperty(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "before")

	// The id in the body is deliberately wrong; the path id must win.
	body := `{"id":"spoofed","name":"after","price":50000000,"rent":250000,"downPaymentPercent":20,"annualInterestRate":6.5,"loanTermYears":20}`
	rec := doRequest(srv, "PUT", "/api/v1/properties/"+p.ID, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["id"] != p.ID {
		t.Errorf("id: got %q, want %q", data["id"], p.ID)
	}
	if data["name"] != "after" {
		t.Errorf("name: got %q, want %q", data["name"], "after")
	}
	if data["rent"] != 250_000.0 {
		t.Errorf("rent: got %v, want 250000", data["rent"])
	}

	// Cashflow reflects the new rent, so it must be 50k/month better.
	newCF, _ := data["monthlyCashflow"].(float64)
	if math.Abs(newCF-p.MonthlyCashflow-50_000) > 0.01 {
		t.Errorf("monthlyCashflow: got %.2f, want %.2f", newCF, p.MonthlyCashflow+50_000)
	}
}

func TestHandleUpdateProperty_NotFound(t *testing.T) {
	srv := testServer(t)
	body := `{"name":"ghost","price":1000000,"loanTermYears":20}`
	rec := doRequest(srv, "PUT", "/api/v1/properties/nope", body)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleDeleteProperty(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "short-lived")

	rec := doRequest(srv, "DELETE", "/api/v1/properties/"+p.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	data := dataMap(t, decodeResponse(t, rec))
	if data["deleted"] != p.ID {
		t.Errorf("deleted: got %q, want %q", data["deleted"], p.ID)
	}

	rec = doRequest(srv, "GET", "/api/v1/properties/"+p.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleDeleteProperty_NotFound(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "DELETE", "/api/v1/properties/nope", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleListProperties_InsertionOrder(t *testing.T) {
	srv := testServer(t)
	seedProperty(t, srv, "first")
	seedProperty(t, srv, "second")

	rec := doRequest(srv, "GET", "/api/v1/properties", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	resp := decodeResponse(t, rec)
	arr, ok := resp.Data.([]interface{})
	if !ok {
		t.Fatalf("data should be an array, got %T", resp.Data)
	}
	if len(arr) != 2 {
		t.Fatalf("properties: got %d, want 2", len(arr))
	}
	if name := arr[0].(map[string]interface{})["name"]; name != "first" {
		t.Errorf("order: got %q first, want %q", name, "first")
	}
}

// ════════════════════════════════════════════════════════════════════
// Projection and series handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleProjection_YearZero(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "year zero")

	rec := doRequest(srv, "GET", "/api/v1/properties/"+p.ID+"/projection?year=0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["projectedValue"] != 50_000_000.0 {
		t.Errorf("projectedValue: got %v, want 50000000", data["projectedValue"])
	}
	if data["remainingLoan"] != 40_000_000.0 {
		t.Errorf("remainingLoan: got %v, want 40000000", data["remainingLoan"])
	}
	if data["equity"] != 10_000_000.0 {
		t.Errorf("equity: got %v, want 10000000", data["equity"])
	}
	if data["cumulativeCashflow"] != 0.0 {
		t.Errorf("cumulativeCashflow: got %v, want 0", data["cumulativeCashflow"])
	}
}

func TestHandleProjection_MissingYear(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "no year")

	rec := doRequest(srv, "GET", "/api/v1/properties/"+p.ID+"/projection", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := decodeResponse(t, rec)
	if !strings.Contains(resp.Error, "year query parameter is required") {
		t.Errorf("error: got %q", resp.Error)
	}
}

func TestHandleProjection_InvalidYear(t *testing.T) {
	tests := []struct {
		name    string
		year    string
		errFrag string
	}{
		{"not a number", "abc", "must be an integer"},
		{"negative", "-1", "must be between"},
		{"past the cap", "101", "must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t)
			p := seedProperty(t, srv, "bad year")

			rec := doRequest(srv, "GET", "/api/v1/properties/"+p.ID+"/projection?year="+tt.year, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, tt.errFrag) {
				t.Errorf("error should mention %q: %q", tt.errFrag, resp.Error)
			}
		})
	}
}

func TestHandleSeries_DefaultHorizon(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "series")

	rec := doRequest(srv, "GET", "/api/v1/properties/"+p.ID+"/series", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["horizon"] != 30.0 {
		t.Errorf("horizon: got %v, want 30", data["horizon"])
	}
	curve, ok := data["projections"].([]interface{})
	if !ok {
		t.Fatalf("projections should be an array, got %T", data["projections"])
	}
	// Years 0 through 30 inclusive.
	if len(curve) != 31 {
		t.Errorf("projections: got %d points, want 31", len(curve))
	}
}

func TestHandleSeries_CustomHorizon(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "short series")

	rec := doRequest(srv, "GET", "/api/v1/properties/"+p.ID+"/series?horizon=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	curve := data["projections"].([]interface{})
	if len(curve) != 11 {
		t.Errorf("projections: got %d points, want 11", len(curve))
	}
}

func TestHandleSeries_InvalidHorizon(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "bad horizon")

	rec := doRequest(srv, "GET", "/api/v1/properties/"+p.ID+"/series?horizon=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// ════════════════════════════════════════════════════════════════════
// Report handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleReport_HTML(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "Nakameguro 1LDK")

	rec := doRequest(srv, "GET", "/api/v1/properties/"+p.ID+"/report", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q", ct)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "<!DOCTYPE html") {
		t.Error("expected an HTML document")
	}
	if !strings.Contains(body, "Nakameguro 1LDK") {
		t.Error("report should carry the property name")
	}
}

func TestHandleReport_Text(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "Nakameguro 1LDK")

	rec := doRequest(srv, "GET", "/api/v1/properties/"+p.ID+"/report?format=text", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type: got %q", ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "■ PURCHASE") {
		t.Error("text report should carry the purchase section")
	}
	if !strings.Contains(body, "Nakameguro 1LDK") {
		t.Error("report should carry the property name")
	}
}

func TestHandleReport_InvalidFormat(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "no pdf")

	rec := doRequest(srv, "GET", "/api/v1/properties/"+p.ID+"/report?format=pdf", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, "format must be html or text") {
		t.Errorf("error: got %q", resp.Error)
	}
}

// ════════════════════════════════════════════════════════════════════
// Compare handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleCompare(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "stress me")

	body := `{"propertyId":"` + p.ID + `","horizon":10,"scenarios":[{"name":"rate-hike","interestRate":8}]}`
	rec := doRequest(srv, "POST", "/api/v1/compare", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["horizon"] != 10.0 {
		t.Errorf("horizon: got %v, want 10", data["horizon"])
	}

	results, ok := data["results"].([]interface{})
	if !ok {
		t.Fatalf("results should be an array, got %T", data["results"])
	}
	if len(results) != 2 {
		t.Fatalf("results: got %d, want baseline + 1 scenario", len(results))
	}

	scenarioName := func(i int) interface{} {
		return results[i].(map[string]interface{})["scenario"].(map[string]interface{})["name"]
	}
	if scenarioName(0) != "baseline" {
		t.Errorf("first result: got %q, want baseline", scenarioName(0))
	}
	if scenarioName(1) != "rate-hike" {
		t.Errorf("second result: got %q, want rate-hike", scenarioName(1))
	}

	// A dearer loan must project a worse final ROI than the baseline.
	finalROI := func(i int) float64 {
		m := results[i].(map[string]interface{})["metrics"].(map[string]interface{})
		v, _ := m["finalRoiPercent"].(float64)
		return v
	}
	if finalROI(1) >= finalROI(0) {
		t.Errorf("rate-hike ROI %.2f should trail baseline ROI %.2f", finalROI(1), finalROI(0))
	}
}

func TestHandleCompare_DefaultHorizon(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "default horizon")

	body := `{"propertyId":"` + p.ID + `"}`
	rec := doRequest(srv, "POST", "/api/v1/compare", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["horizon"] != 30.0 {
		t.Errorf("horizon: got %v, want the configured 30", data["horizon"])
	}
}

func TestHandleCompare_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		errFrag string
	}{
		{"invalid json", "{bad", "invalid request body"},
		{"missing property id", `{"horizon":10}`, "propertyId is required"},
		{"horizon past the cap", `{"propertyId":"x","horizon":200}`, "horizon must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t)
			rec := doRequest(srv, "POST", "/api/v1/compare", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, tt.errFrag) {
				t.Errorf("error should mention %q: %q", tt.errFrag, resp.Error)
			}
		})
	}
}

func TestHandleCompare_UnknownProperty(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "POST", "/api/v1/compare", `{"propertyId":"nope"}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// ════════════════════════════════════════════════════════════════════
// Screen handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleScreen(t *testing.T) {
	srv := testServer(t)
	seedProperty(t, srv, "bleeder") // rent 200k against a 298k payment

	// A cheap half-cash studio that actually carries itself.
	_, err := srv.store.SaveProperty(context.Background(), models.Property{
		Name:               "Kawasaki studio",
		Price:              10_000_000,
		Rent:               90_000,
		DownPaymentPercent: 50,
		AnnualInterestRate: 1.5,
		LoanTermYears:      35,
	})
	if err != nil {
		t.Fatalf("seed property: %v", err)
	}

	rec := doRequest(srv, "POST", "/api/v1/screen", `{"expression":"cashflow > 0"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["count"] != 1.0 {
		t.Fatalf("count: got %v, want 1", data["count"])
	}
	matched := data["properties"].([]interface{})
	if name := matched[0].(map[string]interface{})["name"]; name != "Kawasaki studio" {
		t.Errorf("matched: got %q, want %q", name, "Kawasaki studio")
	}
}

func TestHandleScreen_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		errFrag string
	}{
		{"invalid json", "{bad", "invalid request body"},
		{"empty expression", `{"expression":""}`, "expression is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t)
			rec := doRequest(srv, "POST", "/api/v1/screen", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, tt.errFrag) {
				t.Errorf("error should mention %q: %q", tt.errFrag, resp.Error)
			}
		})
	}
}

func TestHandleScreen_BadExpression(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "POST", "/api/v1/screen", `{"expression":"price >"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if resp := decodeResponse(t, rec); resp.Error == "" {
		t.Error("expected a parse error message")
	}
}

func TestHandleScreen_NonBooleanExpression(t *testing.T) {
	srv := testServer(t)
	seedProperty(t, srv, "numeric")

	rec := doRequest(srv, "POST", "/api/v1/screen", `{"expression":"price + 1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, "condition") {
		t.Errorf("error should mention condition: %q", resp.Error)
	}
}

// ════════════════════════════════════════════════════════════════════
// Export / import handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleExport(t *testing.T) {
	srv := testServer(t)
	seedProperty(t, srv, "exported one")
	seedProperty(t, srv, "exported two")

	rec := doRequest(srv, "GET", "/api/v1/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "portfolio.json") {
		t.Errorf("Content-Disposition: got %q", cd)
	}

	// The body is the document itself, not the API envelope.
	var doc models.PortfolioDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}
	if doc.SchemaVersion != models.CurrentSchemaVersion {
		t.Errorf("schemaVersion: got %d, want %d", doc.SchemaVersion, models.CurrentSchemaVersion)
	}
	if len(doc.Properties) != 2 {
		t.Errorf("properties: got %d, want 2", len(doc.Properties))
	}
}

func TestHandleImport_RoundTrip(t *testing.T) {
	src := testServer(t)
	seedProperty(t, src, "travels well")
	seedProperty(t, src, "also travels")
	exported := doRequest(src, "GET", "/api/v1/export", "").Body.String()

	dst := testServer(t)
	rec := doRequest(dst, "POST", "/api/v1/import", exported)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["imported"] != 2.0 {
		t.Errorf("imported: got %v, want 2", data["imported"])
	}

	rec = doRequest(dst, "GET", "/api/v1/properties", "")
	arr := decodeResponse(t, rec).Data.([]interface{})
	if len(arr) != 2 {
		t.Errorf("properties after import: got %d, want 2", len(arr))
	}
}

func TestHandleImport_InvalidJSON(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "POST", "/api/v1/import", "not json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, "invalid portfolio document") {
		t.Errorf("error: got %q", resp.Error)
	}
}

// ════════════════════════════════════════════════════════════════════
// Share handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleShareEncodeDecode_RoundTrip(t *testing.T) {
	srv := testServer(t)
	seedProperty(t, srv, "shared flat")

	rec := doRequest(srv, "GET", "/api/v1/share", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	data := dataMap(t, decodeResponse(t, rec))
	code, _ := data["code"].(string)
	if code == "" {
		t.Fatal("expected a share code")
	}
	if data["count"] != 1.0 {
		t.Errorf("count: got %v, want 1", data["count"])
	}

	rec = doRequest(srv, "POST", "/api/v1/share/decode", `{"code":"`+code+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("decode status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	decoded := dataMap(t, decodeResponse(t, rec))
	props := decoded["properties"].([]interface{})
	if len(props) != 1 {
		t.Fatalf("decoded properties: got %d, want 1", len(props))
	}

	// Decoded records must come back recomputed, not raw.
	got := props[0].(map[string]interface{})
	if got["name"] != "shared flat" {
		t.Errorf("name: got %q", got["name"])
	}
	if got["loanPrincipal"] != 40_000_000.0 {
		t.Errorf("loanPrincipal: got %v, want 40000000", got["loanPrincipal"])
	}
}

func TestHandleShareEncode_EmptyPortfolio(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "GET", "/api/v1/share", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, "portfolio is empty") {
		t.Errorf("error: got %q", resp.Error)
	}
}

func TestHandleShareDecode_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		errFrag string
	}{
		{"invalid json", "{bad", "invalid request body"},
		{"missing code", `{}`, "code is required"},
		{"garbage code", `{"code":"?!"}`, "invalid share code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t)
			rec := doRequest(srv, "POST", "/api/v1/share/decode", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, tt.errFrag) {
				t.Errorf("error should mention %q: %q", tt.errFrag, resp.Error)
			}
		})
	}
}

func TestHandleShareLink_RoundTrip(t *testing.T) {
	srv := testServer(t)
	seedProperty(t, srv, "linked flat")

	// Empty body shares the whole portfolio.
	rec := doRequest(srv, "POST", "/api/v1/share/link", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	id, _ := data["id"].(string)
	if len(id) != 8 {
		t.Fatalf("id: got %q, want an 8-char link id", id)
	}
	wantURL := "http://localhost:8080/api/v1/share/link/" + id
	if data["url"] != wantURL {
		t.Errorf("url: got %q, want %q", data["url"], wantURL)
	}
	if data["code"] == "" {
		t.Error("expected the underlying share code")
	}

	rec = doRequest(srv, "GET", "/api/v1/share/link/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status: got %d, want %d", rec.Code, http.StatusOK)
	}
	resolved := dataMap(t, decodeResponse(t, rec))
	if resolved["count"] != 1.0 {
		t.Errorf("count: got %v, want 1", resolved["count"])
	}
}

func TestHandleShareLink_ExplicitCode(t *testing.T) {
	src := testServer(t)
	seedProperty(t, src, "minted elsewhere")
	code := dataMap(t, decodeResponse(t, doRequest(src, "GET", "/api/v1/share", "")))["code"].(string)

	// A different server with an empty portfolio can still mint a link
	// for a code handed to it.
	dst := testServer(t)
	rec := doRequest(dst, "POST", "/api/v1/share/link", `{"code":"`+code+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	id := dataMap(t, decodeResponse(t, rec))["id"].(string)
	rec = doRequest(dst, "GET", "/api/v1/share/link/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHandleShareLink_InvalidCode(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "POST", "/api/v1/share/link", `{"code":"?!"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleResolveShareLink_Unknown(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "GET", "/api/v1/share/link/deadbeef", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, "not found or expired") {
		t.Errorf("error: got %q", resp.Error)
	}
}

// ════════════════════════════════════════════════════════════════════
// Market context handler tests (static sources — no network)
// ════════════════════════════════════════════════════════════════════

func TestHandleRates(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "GET", "/api/v1/rates", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["count"] != 2.0 {
		t.Fatalf("count: got %v, want 2", data["count"])
	}
	quotes := data["quotes"].([]interface{})
	first := quotes[0].(map[string]interface{})
	if first["lender"] != "Test Bank" {
		t.Errorf("lender: got %q", first["lender"])
	}
	// Cheapest first within a lender.
	if first["annualRate"] != 1.5 {
		t.Errorf("annualRate: got %v, want 1.5", first["annualRate"])
	}
}

func TestHandleRates_BestForTerm(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		wantRate float64
	}{
		{"both products cover 20y", "20", 1.5},
		{"only the 35y product covers 30y", "30", 1.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t)
			rec := doRequest(srv, "GET", "/api/v1/rates?term="+tt.term, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
			}

			data := dataMap(t, decodeResponse(t, rec))
			best, ok := data["best"].(map[string]interface{})
			if !ok {
				t.Fatalf("best should be a quote, got %T", data["best"])
			}
			if best["annualRate"] != tt.wantRate {
				t.Errorf("best rate: got %v, want %v", best["annualRate"], tt.wantRate)
			}
		})
	}
}

func TestHandleRates_InvalidTerm(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "GET", "/api/v1/rates?term=abc", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, "term must be an integer") {
		t.Errorf("error: got %q", resp.Error)
	}
}

func TestHandleNews(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "GET", "/api/v1/news", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["count"] != 1.0 {
		t.Fatalf("count: got %v, want 1", data["count"])
	}
	articles := data["articles"].([]interface{})
	article := articles[0].(map[string]interface{})
	if article["source"] != "test feed" {
		t.Errorf("source: got %q", article["source"])
	}
	// "surges" and "demand" are hot words, so the scorer must stamp a
	// positive sentiment.
	if sentiment, _ := article["sentiment"].(float64); sentiment <= 0 {
		t.Errorf("sentiment: got %v, want positive", article["sentiment"])
	}
}

func TestHandleNews_InvalidLimit(t *testing.T) {
	for _, limit := range []string{"abc", "0", "-3"} {
		rec := doRequest(testServer(t), "GET", "/api/v1/news?limit="+limit, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: got %d, want %d", limit, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestHandlePulse(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "GET", "/api/v1/pulse", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["articleCount"] != 1.0 {
		t.Errorf("articleCount: got %v, want 1", data["articleCount"])
	}
	if mood, _ := data["mood"].(string); mood == "" {
		t.Error("expected a mood label")
	}
	if _, ok := data["generatedAt"]; !ok {
		t.Error("missing generatedAt")
	}
}

// ════════════════════════════════════════════════════════════════════
// Chart handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleWealthChart(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "charted")

	rec := doRequest(srv, "GET", "/api/v1/charts/properties/"+p.ID+"/wealth.svg", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type: got %q", ct)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "<svg") {
		t.Error("expected an SVG document")
	}
	if !strings.Contains(body, "charted") {
		t.Error("chart title should carry the property name")
	}
}

func TestHandleCashflowChart(t *testing.T) {
	srv := testServer(t)
	p := seedProperty(t, srv, "bars")

	rec := doRequest(srv, "GET", "/api/v1/charts/properties/"+p.ID+"/cashflow.svg?horizon=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.HasPrefix(rec.Body.String(), "<svg") {
		t.Error("expected an SVG document")
	}
}

func TestHandleChart_UnknownProperty(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "GET", "/api/v1/charts/properties/nope/wealth.svg", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// ════════════════════════════════════════════════════════════════════
// Config handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleGetConfig_HidesSecrets(t *testing.T) {
	srv := testServer(t)
	srv.cfg.Storage.PostgresDSN = "postgres://user:hunter2@db:5432/propfolio"
	srv.cfg.Cache.RedisPassword = "hunter2"

	rec := doRequest(srv, "GET", "/api/v1/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	data := dataMap(t, decodeResponse(t, rec))
	if _, ok := data["config"]; !ok {
		t.Error("missing config")
	}
	if _, ok := data["config_file"]; !ok {
		t.Error("missing config_file")
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Error("secrets must not appear in the config response")
	}
}

func TestHandleUpdateConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := testServer(t)

	body := `{"portfolio":{"horizon_years":25},"logging":{"level":"debug"}}`
	rec := doRequest(srv, "PUT", "/api/v1/config", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	if srv.cfg.Portfolio.HorizonYears != 25 {
		t.Errorf("HorizonYears: got %d, want 25", srv.cfg.Portfolio.HorizonYears)
	}
	if srv.cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want debug", srv.cfg.Logging.Level)
	}
	// Untouched sections keep their values.
	if srv.cfg.Sharing.BaseURL != "http://localhost:8080" {
		t.Errorf("Sharing.BaseURL clobbered: %q", srv.cfg.Sharing.BaseURL)
	}

	saved := filepath.Join(os.Getenv("HOME"), ".propfolio", "config.yaml")
	if _, err := os.Stat(saved); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}

func TestHandleUpdateConfig_InvalidJSON(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := testServer(t)

	rec := doRequest(srv, "PUT", "/api/v1/config", "{bad")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleGetConfigSecrets(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(srv, "GET", "/api/v1/config/secrets", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	resp := decodeResponse(t, rec)
	arr, ok := resp.Data.([]interface{})
	if !ok {
		t.Fatalf("data should be an array, got %T", resp.Data)
	}
	if len(arr) != 2 {
		t.Errorf("secret statuses: got %d, want 2", len(arr))
	}
}

func TestMergeConfig(t *testing.T) {
	dst := &config.Config{}
	dst.Portfolio.Path = "/keep/this.json"
	dst.Portfolio.HorizonYears = 30
	dst.API.Port = 8080

	src := &config.Config{}
	src.Portfolio.HorizonYears = 25
	src.Logging.Level = "debug"

	mergeConfig(dst, src)

	if dst.Portfolio.HorizonYears != 25 {
		t.Errorf("HorizonYears: got %d, want 25", dst.Portfolio.HorizonYears)
	}
	if dst.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want debug", dst.Logging.Level)
	}
	// Zero-value fields in src must not clobber dst.
	if dst.Portfolio.Path != "/keep/this.json" {
		t.Errorf("Path clobbered: %q", dst.Portfolio.Path)
	}
	if dst.API.Port != 8080 {
		t.Errorf("Port clobbered: %d", dst.API.Port)
	}
}

// ════════════════════════════════════════════════════════════════════
// WebSocket hub tests
// ════════════════════════════════════════════════════════════════════

func TestAllowWSOrigin(t *testing.T) {
	srv := testServer(t)
	srv.cfg.API.CORSOrigins = []string{"http://localhost:3000"}

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"no origin header", "", true},
		{"same origin", "http://api.example.com", true},
		{"configured dashboard", "http://localhost:3000", true},
		{"unknown origin", "http://evil.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/ws", nil)
			req.Host = "api.example.com"
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := srv.allowWSOrigin(req); got != tt.want {
				t.Errorf("allowWSOrigin(%q): got %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestAllowWSOrigin_Wildcard(t *testing.T) {
	srv := testServer(t)
	srv.cfg.API.CORSOrigins = []string{"*"}

	req := httptest.NewRequest("GET", "/api/v1/ws", nil)
	req.Header.Set("Origin", "http://anywhere.example.com")
	if !srv.allowWSOrigin(req) {
		t.Error("wildcard config should admit any origin")
	}
}

func waitForClients(t *testing.T, hub *WSHub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount: got %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWSHubRegisterAndBroadcast(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	client := &WSClient{hub: hub, send: make(chan WSMessage, 4)}
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.Broadcast(WSMessage{Type: "property_saved", Data: map[string]string{"id": "abc"}})

	select {
	case msg := <-client.send:
		if msg.Type != "property_saved" {
			t.Errorf("type: got %q, want property_saved", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
	}

	hub.Unregister(client)
	waitForClients(t, hub, 0)
}

func TestWSHubStop_ClosesClients(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	client := &WSClient{hub: hub, send: make(chan WSMessage, 4)}
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.Stop()

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("send channel should be closed after Stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the send channel to close")
	}
	waitForClients(t, hub, 0)
}

func TestMutationsBroadcastToClients(t *testing.T) {
	srv := testServer(t)
	client := &WSClient{hub: srv.wsHub, send: make(chan WSMessage, 4)}
	srv.wsHub.Register(client)
	waitForClients(t, srv.wsHub, 1)

	body := `{"name":"broadcast me","price":50000000,"rent":200000,"downPaymentPercent":20,"annualInterestRate":6.5,"loanTermYears":20}`
	rec := doRequest(srv, "POST", "/api/v1/properties", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusCreated)
	}

	select {
	case msg := <-client.send:
		if msg.Type != "property_saved" {
			t.Errorf("type: got %q, want property_saved", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the property_saved event")
	}
}

func TestWSMessageJSON(t *testing.T) {
	data, err := json.Marshal(WSMessage{Type: "ping"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if bytes.Contains(data, []byte("data")) {
		t.Errorf("empty data should be omitted: %s", data)
	}

	var msg WSMessage
	if err := json.Unmarshal([]byte(`{"type":"pong","data":{"k":"v"}}`), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "pong" {
		t.Errorf("type: got %q, want pong", msg.Type)
	}
}

// ════════════════════════════════════════════════════════════════════
// writeJSON / writeError / writeSVG tests
// ════════════════════════════════════════════════════════════════════

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, APIResponse{
		Success: true,
		Data:    "hello",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}

	resp := decodeResponse(t, rec)
	if !resp.Success || resp.Data != "hello" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}

	resp := decodeResponse(t, rec)
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != "not found" {
		t.Errorf("error: got %q, want %q", resp.Error, "not found")
	}
}

func TestWriteSVG(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSVG(rec, "<svg></svg>")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type: got %q", ct)
	}
	if rec.Body.String() != "<svg></svg>" {
		t.Errorf("body: got %q", rec.Body.String())
	}
}
