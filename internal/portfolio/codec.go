package portfolio

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/seenimoa/propfolio/internal/projection"
	"github.com/seenimoa/propfolio/pkg/models"
)

// Migrate normalizes an incoming document to the current schema
// version: legacy defaults are filled, missing ids are minted, and
// every property is recomputed under the document's assumptions. This
// is the single place compatibility logic lives; once a record passes
// through here it is fully populated.
func Migrate(doc models.PortfolioDocument) (models.PortfolioDocument, error) {
	if doc.SchemaVersion > models.CurrentSchemaVersion {
		return doc, fmt.Errorf("unsupported schema version %d (newest known is %d)",
			doc.SchemaVersion, models.CurrentSchemaVersion)
	}

	// Version 0 wrote no renovation value or recurring costs.
	if doc.SchemaVersion == 0 {
		for i := range doc.Properties {
			if doc.Properties[i].PostRenovationValue == 0 {
				doc.Properties[i].PostRenovationValue = doc.Properties[i].Price
			}
			// A missing monthlyRecurringCosts decodes as 0, which is
			// already the documented default.
		}
	}

	// Assumptions gained the benchmark rate in version 2.
	if doc.SchemaVersion < 2 && doc.Assumptions.BenchmarkRate == 0 {
		doc.Assumptions.BenchmarkRate = models.DefaultAssumptions().BenchmarkRate
	}

	for i := range doc.Properties {
		if doc.Properties[i].ID == "" {
			doc.Properties[i].ID = uuid.NewString()
		}
		doc.Properties[i] = projection.Recompute(doc.Properties[i], doc.Assumptions)
	}
	doc.SchemaVersion = models.CurrentSchemaVersion
	return doc, nil
}

// MarshalDocument renders doc as indented JSON, stamped with the
// current schema version. Files and the export endpoint both use it.
func MarshalDocument(doc models.PortfolioDocument) ([]byte, error) {
	doc.SchemaVersion = models.CurrentSchemaVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal portfolio document: %w", err)
	}
	return data, nil
}

// UnmarshalDocument parses and migrates a document in one step.
func UnmarshalDocument(data []byte) (models.PortfolioDocument, error) {
	var doc models.PortfolioDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse portfolio document: %w", err)
	}
	return Migrate(doc)
}
