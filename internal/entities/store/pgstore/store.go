// Package pgstore keeps one Postgres row per entity, with the fields as a
// jsonb document and ids assigned by the database.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/entities/store"
)

const Schema = `
CREATE TABLE IF NOT EXISTS portfolio_entities (
	id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	kind       text   NOT NULL,
	doc        jsonb  NOT NULL,
	created_at bigint NOT NULL
);
CREATE INDEX IF NOT EXISTS portfolio_entities_kind_created_idx
	ON portfolio_entities (kind, created_at DESC);
`

// EnsureSchema creates the entities table when it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

type Option func(*Store)

// WithClock overrides the time source used for createdAt.
func WithClock(now store.Clock) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	db   *sql.DB
	kind domain.Kind
	now  store.Clock
}

func New(db *sql.DB, kind domain.Kind, opts ...Option) *Store {
	s := &Store{db: db, kind: kind, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func NewFactory(db *sql.DB, opts ...Option) store.Factory {
	return func(kind domain.Kind) store.Store {
		return New(db, kind, opts...)
	}
}

func (s *Store) List(ctx context.Context) ([]domain.Entity, error) {
	const q = `
SELECT id, doc, created_at
FROM portfolio_entities
WHERE kind = $1
ORDER BY created_at DESC;
`
	rows, err := s.db.QueryContext(ctx, q, string(s.kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Entity, 0, 16)
	for rows.Next() {
		var (
			e   domain.Entity
			doc []byte
		)
		if err := rows.Scan(&e.ID, &doc, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		if err := json.Unmarshal(doc, &e.Fields); err != nil {
			continue
		}
		e.Kind = s.kind
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}
	return out, nil
}

func (s *Store) Add(ctx context.Context, f domain.Fields) (domain.Entity, error) {
	f.Kind = s.kind
	doc, err := json.Marshal(f)
	if err != nil {
		return domain.Entity{}, fmt.Errorf("failed to marshal entity: %w", err)
	}

	// created_at stays strictly above every existing row of the kind
	const q = `
INSERT INTO portfolio_entities (kind, doc, created_at)
SELECT $1::text, $2::jsonb, GREATEST($3::bigint, COALESCE(MAX(created_at) + 1, $3::bigint))
FROM portfolio_entities
WHERE kind = $1
RETURNING id, created_at;
`
	e := domain.Entity{Fields: f}
	row := s.db.QueryRowContext(ctx, q, string(s.kind), string(doc), s.now().UnixMilli())
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return domain.Entity{}, fmt.Errorf("failed to insert entity: %w", err)
	}
	return e, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}

	const q = `
DELETE FROM portfolio_entities
WHERE kind = $1 AND id::text = $2;
`
	result, err := s.db.ExecContext(ctx, q, string(s.kind), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete entity: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
