package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seenimoa/propfolio/internal/projection"
	"github.com/seenimoa/propfolio/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Postgres Store
// ════════════════════════════════════════════════════════════════════

// PostgresStore persists the portfolio in Postgres: one JSONB document
// row per property plus a single assumptions row. The document column
// carries the same shape the export format uses, so schema migrations
// ride on the portfolio codec instead of table DDL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store on an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	ddl := `
		CREATE TABLE IF NOT EXISTS properties (
			id         TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			pos        BIGSERIAL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS assumptions (
			id         INT PRIMARY KEY CHECK (id = 1),
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create portfolio schema: %w", err)
	}
	return nil
}

// ListProperties returns every property in insertion order.
func (s *PostgresStore) ListProperties(ctx context.Context) ([]models.Property, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	rows, err := s.pool.Query(ctx, `SELECT doc FROM properties ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	var out []models.Property
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan property row: %w", err)
		}
		var p models.Property
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("decode property row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProperty returns one property by id.
func (s *PostgresStore) GetProperty(ctx context.Context, id string) (models.Property, error) {
	var p models.Property
	if s.pool == nil {
		return p, fmt.Errorf("database pool not configured")
	}

	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM properties WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("query property %s: %w", id, err)
	}
	if err := json.Unmarshal(doc, &p); err != nil {
		return p, fmt.Errorf("decode property %s: %w", id, err)
	}
	return p, nil
}

// SaveProperty upserts p, minting an id when absent, and returns the
// recomputed record as stored.
func (s *PostgresStore) SaveProperty(ctx context.Context, p models.Property) (models.Property, error) {
	if s.pool == nil {
		return p, fmt.Errorf("database pool not configured")
	}

	a, err := s.Assumptions(ctx)
	if err != nil {
		return p, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p = projection.Recompute(p, a)

	doc, err := json.Marshal(p)
	if err != nil {
		return p, fmt.Errorf("encode property: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO properties (id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, p.ID, doc)
	if err != nil {
		return p, fmt.Errorf("save property %s: %w", p.ID, err)
	}
	return p, nil
}

// DeleteProperty removes one property by id.
func (s *PostgresStore) DeleteProperty(ctx context.Context, id string) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete property %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Assumptions returns the stored assumptions, or the defaults when the
// row has never been written.
func (s *PostgresStore) Assumptions(ctx context.Context) (models.GlobalAssumptions, error) {
	var a models.GlobalAssumptions
	if s.pool == nil {
		return a, fmt.Errorf("database pool not configured")
	}

	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM assumptions WHERE id = 1`).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultAssumptions(), nil
	}
	if err != nil {
		return a, fmt.Errorf("query assumptions: %w", err)
	}
	if err := json.Unmarshal(doc, &a); err != nil {
		return a, fmt.Errorf("decode assumptions: %w", err)
	}
	return a, nil
}

// SetAssumptions replaces the assumptions and recomputes every stored
// property under them, in one transaction.
func (s *PostgresStore) SetAssumptions(ctx context.Context, a models.GlobalAssumptions) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin assumptions update: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertAssumptions(ctx, tx, a); err != nil {
		return err
	}

	rows, err := tx.Query(ctx, `SELECT id, doc FROM properties`)
	if err != nil {
		return fmt.Errorf("query properties for recompute: %w", err)
	}
	type row struct {
		id  string
		doc []byte
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.doc); err != nil {
			rows.Close()
			return fmt.Errorf("scan property row: %w", err)
		}
		all = append(all, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read properties for recompute: %w", err)
	}

	for _, r := range all {
		var p models.Property
		if err := json.Unmarshal(r.doc, &p); err != nil {
			return fmt.Errorf("decode property %s: %w", r.id, err)
		}
		p = projection.Recompute(p, a)
		doc, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode property %s: %w", r.id, err)
		}
		if _, err := tx.Exec(ctx, `UPDATE properties SET doc = $2, updated_at = now() WHERE id = $1`, r.id, doc); err != nil {
			return fmt.Errorf("recompute property %s: %w", r.id, err)
		}
	}

	return tx.Commit(ctx)
}

// Document snapshots the portfolio at the current schema version.
func (s *PostgresStore) Document(ctx context.Context) (models.PortfolioDocument, error) {
	var doc models.PortfolioDocument
	a, err := s.Assumptions(ctx)
	if err != nil {
		return doc, err
	}
	props, err := s.ListProperties(ctx)
	if err != nil {
		return doc, err
	}
	doc.SchemaVersion = models.CurrentSchemaVersion
	doc.Assumptions = a
	doc.Properties = props
	return doc, nil
}

// ReplaceAll swaps the whole portfolio for the migrated document.
func (s *PostgresStore) ReplaceAll(ctx context.Context, doc models.PortfolioDocument) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	migrated, err := Migrate(doc)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin portfolio replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertAssumptions(ctx, tx, migrated.Assumptions); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM properties`); err != nil {
		return fmt.Errorf("clear properties: %w", err)
	}
	for _, p := range migrated.Properties {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode property %s: %w", p.ID, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO properties (id, doc) VALUES ($1, $2)`, p.ID, data); err != nil {
			return fmt.Errorf("insert property %s: %w", p.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func upsertAssumptions(ctx context.Context, tx pgx.Tx, a models.GlobalAssumptions) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode assumptions: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO assumptions (id, doc) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, doc)
	if err != nil {
		return fmt.Errorf("save assumptions: %w", err)
	}
	return nil
}
