package store

import (
	"context"
	"sort"
	"time"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
)

// Store persists the entities of one kind. Implementations are
// interchangeable; callers must rely on this contract only.
type Store interface {
	// List returns every entity of the kind, newest first.
	List(ctx context.Context) ([]domain.Entity, error)
	// Add assigns id and createdAt, persists the entity as the newest item
	// and returns it.
	Add(ctx context.Context, f domain.Fields) (domain.Entity, error)
	// Delete removes the entity with the given id and reports whether
	// anything was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// Factory builds the Store for a kind.
type Factory func(kind domain.Kind) Store

// Clock returns the current time. Stores take one so tests can pin it.
type Clock func() time.Time

// SortNewestFirst orders items by createdAt descending, keeping the relative
// order of equal timestamps.
func SortNewestFirst(items []domain.Entity) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
}
