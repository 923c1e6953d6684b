package portfolio

import (
	"strings"
	"testing"

	"github.com/seenimoa/propfolio/pkg/models"
)

func TestMigrateRejectsNewerSchema(t *testing.T) {
	doc := models.PortfolioDocument{SchemaVersion: models.CurrentSchemaVersion + 1}
	if _, err := Migrate(doc); err == nil {
		t.Fatal("Migrate should reject documents written by a newer release")
	}
}

func TestMigrateLegacyFillsRenovationValue(t *testing.T) {
	doc := models.PortfolioDocument{
		Properties: []models.Property{
			{Name: "bare", Price: 42_000_000, Rent: 150_000, DownPaymentPercent: 15, AnnualInterestRate: 1.8, LoanTermYears: 30},
			{Name: "renovated", Price: 42_000_000, PostRenovationValue: 55_000_000, Rent: 150_000, DownPaymentPercent: 15, AnnualInterestRate: 1.8, LoanTermYears: 30},
		},
	}

	out, err := Migrate(doc)
	if err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	if out.SchemaVersion != models.CurrentSchemaVersion {
		t.Errorf("SchemaVersion: got %d, want %d", out.SchemaVersion, models.CurrentSchemaVersion)
	}
	if got := out.Properties[0].PostRenovationValue; got != 42_000_000 {
		t.Errorf("bare PostRenovationValue: got %.0f, want the purchase price", got)
	}
	if got := out.Properties[1].PostRenovationValue; got != 55_000_000 {
		t.Errorf("explicit PostRenovationValue: got %.0f, want 55000000 untouched", got)
	}
	for i, p := range out.Properties {
		if p.ID == "" {
			t.Errorf("property %d: missing id after migration", i)
		}
		if p.MonthlyPaymentAmount <= 0 {
			t.Errorf("property %d: derived fields not recomputed", i)
		}
	}
}

func TestMigrateMintsDistinctIDs(t *testing.T) {
	doc := models.PortfolioDocument{
		SchemaVersion: 1,
		Properties: []models.Property{
			{Name: "a", Price: 10_000_000, LoanTermYears: 10},
			{Name: "b", Price: 10_000_000, LoanTermYears: 10},
			{ID: "keep-me", Name: "c", Price: 10_000_000, LoanTermYears: 10},
		},
	}
	out, err := Migrate(doc)
	if err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	if out.Properties[0].ID == out.Properties[1].ID {
		t.Error("minted ids should be distinct")
	}
	if out.Properties[2].ID != "keep-me" {
		t.Errorf("existing id: got %q, want keep-me", out.Properties[2].ID)
	}
}

func TestMigrateBenchmarkRateDefault(t *testing.T) {
	old := models.PortfolioDocument{
		SchemaVersion: 1,
		Assumptions:   models.GlobalAssumptions{TransferTaxRate: 4, LegalFeeRate: 0.5, InflationRate: 3},
	}
	out, err := Migrate(old)
	if err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	if out.Assumptions.BenchmarkRate != models.DefaultAssumptions().BenchmarkRate {
		t.Errorf("pre-benchmark document: got %.2f, want default", out.Assumptions.BenchmarkRate)
	}

	current := models.PortfolioDocument{
		SchemaVersion: models.CurrentSchemaVersion,
		Assumptions:   models.GlobalAssumptions{TransferTaxRate: 4, LegalFeeRate: 0.5, InflationRate: 3},
	}
	out, err = Migrate(current)
	if err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	if out.Assumptions.BenchmarkRate != 0 {
		t.Errorf("current document: got %.2f, want explicit zero kept", out.Assumptions.BenchmarkRate)
	}
}

func TestUnmarshalDocumentRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalDocument([]byte(`{"properties": "not an array"}`)); err == nil {
		t.Fatal("UnmarshalDocument should reject malformed JSON")
	}
	if _, err := UnmarshalDocument([]byte("{{")); err == nil || !strings.Contains(err.Error(), "parse portfolio document") {
		t.Errorf("unexpected error for truncated input: %v", err)
	}
}
