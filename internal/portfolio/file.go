package portfolio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/seenimoa/propfolio/pkg/models"
)

// LoadDocumentFile reads and migrates a portfolio document from disk.
// A missing file is not an error: it yields an empty portfolio under
// default assumptions, so first runs start clean.
func LoadDocumentFile(path string) (models.PortfolioDocument, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return models.PortfolioDocument{
			SchemaVersion: models.CurrentSchemaVersion,
			Assumptions:   models.DefaultAssumptions(),
		}, nil
	}
	if err != nil {
		return models.PortfolioDocument{}, fmt.Errorf("read portfolio file: %w", err)
	}
	doc, err := UnmarshalDocument(data)
	if err != nil {
		return doc, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, nil
}

// SaveDocumentFile writes the document as indented JSON, creating
// parent directories as needed.
func SaveDocumentFile(path string, doc models.PortfolioDocument) error {
	data, err := MarshalDocument(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create portfolio dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write portfolio file: %w", err)
	}
	return nil
}
