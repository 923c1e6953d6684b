package portfolio

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/seenimoa/propfolio/internal/projection"
	"github.com/seenimoa/propfolio/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// In-Memory Store
// ════════════════════════════════════════════════════════════════════

// MemoryStore keeps the portfolio in process memory. It is the default
// store: the CLI seeds it from the portfolio document file and flushes
// it back on exit, and tests use it bare.
type MemoryStore struct {
	mu          sync.RWMutex
	assumptions models.GlobalAssumptions
	properties  map[string]models.Property
	order       []string // insertion order, for stable listings and exports
}

// NewMemoryStore creates an empty store under the default assumptions.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assumptions: models.DefaultAssumptions(),
		properties:  make(map[string]models.Property),
	}
}

// ListProperties returns every property in insertion order.
func (ms *MemoryStore) ListProperties(_ context.Context) ([]models.Property, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]models.Property, 0, len(ms.order))
	for _, id := range ms.order {
		out = append(out, ms.properties[id])
	}
	return out, nil
}

// GetProperty returns one property by id.
func (ms *MemoryStore) GetProperty(_ context.Context, id string) (models.Property, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	p, ok := ms.properties[id]
	if !ok {
		return models.Property{}, ErrNotFound
	}
	return p, nil
}

// SaveProperty upserts p, minting an id when absent, and returns the
// recomputed record as stored.
func (ms *MemoryStore) SaveProperty(_ context.Context, p models.Property) (models.Property, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p = projection.Recompute(p, ms.assumptions)
	if _, exists := ms.properties[p.ID]; !exists {
		ms.order = append(ms.order, p.ID)
	}
	ms.properties[p.ID] = p
	return p, nil
}

// DeleteProperty removes one property by id.
func (ms *MemoryStore) DeleteProperty(_ context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.properties[id]; !ok {
		return ErrNotFound
	}
	delete(ms.properties, id)
	for i, existing := range ms.order {
		if existing == id {
			ms.order = append(ms.order[:i], ms.order[i+1:]...)
			break
		}
	}
	return nil
}

// Assumptions returns the current global assumptions.
func (ms *MemoryStore) Assumptions(_ context.Context) (models.GlobalAssumptions, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.assumptions, nil
}

// SetAssumptions replaces the assumptions and recomputes every property
// under them.
func (ms *MemoryStore) SetAssumptions(_ context.Context, a models.GlobalAssumptions) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.assumptions = a
	for id, p := range ms.properties {
		ms.properties[id] = projection.Recompute(p, a)
	}
	return nil
}

// Document snapshots the portfolio at the current schema version.
func (ms *MemoryStore) Document(_ context.Context) (models.PortfolioDocument, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	doc := models.PortfolioDocument{
		SchemaVersion: models.CurrentSchemaVersion,
		Assumptions:   ms.assumptions,
		Properties:    make([]models.Property, 0, len(ms.order)),
	}
	for _, id := range ms.order {
		doc.Properties = append(doc.Properties, ms.properties[id])
	}
	return doc, nil
}

// ReplaceAll swaps the whole portfolio for the migrated document.
func (ms *MemoryStore) ReplaceAll(_ context.Context, doc models.PortfolioDocument) error {
	migrated, err := Migrate(doc)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.assumptions = migrated.Assumptions
	ms.properties = make(map[string]models.Property, len(migrated.Properties))
	ms.order = ms.order[:0]
	for _, p := range migrated.Properties {
		if _, dup := ms.properties[p.ID]; !dup {
			ms.order = append(ms.order, p.ID)
		}
		ms.properties[p.ID] = p
	}
	return nil
}
