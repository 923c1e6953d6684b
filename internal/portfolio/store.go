// Package portfolio owns portfolio state and its boundary formats: the
// store implementations, the versioned JSON document, and the compact
// share-code encoding. Core math stays in internal/finance and
// internal/projection; everything that can fail lives here.
package portfolio

import (
	"context"
	"errors"

	"github.com/seenimoa/propfolio/pkg/models"
)

// ErrNotFound is returned when a property id is not in the store.
var ErrNotFound = errors.New("property not found")

// Store is the persistence boundary for portfolio state.
//
// Implementations keep derived fields current: SaveProperty recomputes
// the record under the stored assumptions before persisting it,
// SetAssumptions recomputes every stored property, and ReplaceAll runs
// the incoming document through Migrate. Callers never see a stale
// derived field.
type Store interface {
	ListProperties(ctx context.Context) ([]models.Property, error)
	GetProperty(ctx context.Context, id string) (models.Property, error)
	// SaveProperty upserts p, minting an id when absent, and returns
	// the recomputed record as stored.
	SaveProperty(ctx context.Context, p models.Property) (models.Property, error)
	DeleteProperty(ctx context.Context, id string) error

	Assumptions(ctx context.Context) (models.GlobalAssumptions, error)
	SetAssumptions(ctx context.Context, a models.GlobalAssumptions) error

	// Document snapshots the whole portfolio at the current schema version.
	Document(ctx context.Context) (models.PortfolioDocument, error)
	// ReplaceAll swaps portfolio state for the migrated document, atomically.
	ReplaceAll(ctx context.Context, doc models.PortfolioDocument) error
}
