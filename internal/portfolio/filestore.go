package portfolio

import (
	"context"
	"sync"

	"github.com/seenimoa/propfolio/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// File-Backed Store
// ════════════════════════════════════════════════════════════════════

// FileStore keeps the portfolio in memory and writes the full document
// back to disk after every mutation. The server uses it as the default
// backend; a crash loses at most the in-flight call.
type FileStore struct {
	mu   sync.Mutex // serializes flushes
	path string
	mem  *MemoryStore
}

// NewFileStore loads the document at path and returns a store that
// writes back on mutation. A missing file starts an empty portfolio.
func NewFileStore(path string) (*FileStore, error) {
	doc, err := LoadDocumentFile(path)
	if err != nil {
		return nil, err
	}
	mem := NewMemoryStore()
	if err := mem.ReplaceAll(context.Background(), doc); err != nil {
		return nil, err
	}
	return &FileStore{path: path, mem: mem}, nil
}

// Path returns the backing file path.
func (fs *FileStore) Path() string { return fs.path }

// ListProperties returns every property in insertion order.
func (fs *FileStore) ListProperties(ctx context.Context) ([]models.Property, error) {
	return fs.mem.ListProperties(ctx)
}

// GetProperty returns one property by id.
func (fs *FileStore) GetProperty(ctx context.Context, id string) (models.Property, error) {
	return fs.mem.GetProperty(ctx, id)
}

// SaveProperty upserts p and flushes the document.
func (fs *FileStore) SaveProperty(ctx context.Context, p models.Property) (models.Property, error) {
	saved, err := fs.mem.SaveProperty(ctx, p)
	if err != nil {
		return models.Property{}, err
	}
	if err := fs.flush(ctx); err != nil {
		return models.Property{}, err
	}
	return saved, nil
}

// DeleteProperty removes one property by id and flushes the document.
func (fs *FileStore) DeleteProperty(ctx context.Context, id string) error {
	if err := fs.mem.DeleteProperty(ctx, id); err != nil {
		return err
	}
	return fs.flush(ctx)
}

// Assumptions returns the current global assumptions.
func (fs *FileStore) Assumptions(ctx context.Context) (models.GlobalAssumptions, error) {
	return fs.mem.Assumptions(ctx)
}

// SetAssumptions replaces the assumptions, recomputes every property
// and flushes the document.
func (fs *FileStore) SetAssumptions(ctx context.Context, a models.GlobalAssumptions) error {
	if err := fs.mem.SetAssumptions(ctx, a); err != nil {
		return err
	}
	return fs.flush(ctx)
}

// Document snapshots the portfolio at the current schema version.
func (fs *FileStore) Document(ctx context.Context) (models.PortfolioDocument, error) {
	return fs.mem.Document(ctx)
}

// ReplaceAll swaps the whole portfolio for the migrated document and
// flushes it.
func (fs *FileStore) ReplaceAll(ctx context.Context, doc models.PortfolioDocument) error {
	if err := fs.mem.ReplaceAll(ctx, doc); err != nil {
		return err
	}
	return fs.flush(ctx)
}

func (fs *FileStore) flush(ctx context.Context) error {
	doc, err := fs.mem.Document(ctx)
	if err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return SaveDocumentFile(fs.path, doc)
}
