// Package kvstore keeps every entity of a kind as one JSON array under a
// single key. Each mutation reads the whole array, changes it and writes it
// back; concurrent writers in different processes race and the last write
// wins.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/entities/store"
	"github.com/portfolio-site/portfolio-backend/internal/storage/kv"
)

// ErrCorrupt is returned by List when the stored value is not a JSON array
// of entities.
var ErrCorrupt = errors.New("kvstore: stored value is corrupt")

type Option func(*Store)

// WithClock overrides the time source used for createdAt.
func WithClock(now store.Clock) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

type Store struct {
	db    kv.KV
	kind  domain.Kind
	key   string
	now   store.Clock
	newID func() string

	// serialises read-modify-write within this process
	mu sync.Mutex
}

func New(db kv.KV, kind domain.Kind, opts ...Option) *Store {
	s := &Store{
		db:    db,
		kind:  kind,
		key:   kind.StorageKey(),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewFactory returns a Factory that hands out one Store per kind, so every
// caller shares the same per-key lock.
func NewFactory(db kv.KV, opts ...Option) store.Factory {
	var mu sync.Mutex
	stores := make(map[domain.Kind]*Store)

	return func(kind domain.Kind) store.Store {
		mu.Lock()
		defer mu.Unlock()
		if s, ok := stores[kind]; ok {
			return s
		}
		s := New(db, kind, opts...)
		stores[kind] = s
		return s
	}
}

// Key is the kv key holding this kind's array.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) List(ctx context.Context) ([]domain.Entity, error) {
	items, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	store.SortNewestFirst(items)
	return items, nil
}

func (s *Store) Add(ctx context.Context, f domain.Fields) (domain.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read(ctx)
	if errors.Is(err, ErrCorrupt) {
		// a corrupt array is replaced, same as reading it as empty
		items = nil
	} else if err != nil {
		return domain.Entity{}, err
	}

	createdAt := s.now().UnixMilli()
	for _, it := range items {
		if it.CreatedAt >= createdAt {
			createdAt = it.CreatedAt + 1
		}
	}

	f.Kind = s.kind
	e := domain.Entity{
		ID:        s.newID(),
		Fields:    f,
		CreatedAt: createdAt,
	}

	items = append([]domain.Entity{e}, items...)
	if err := s.write(ctx, items); err != nil {
		return domain.Entity{}, err
	}
	return e, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read(ctx)
	if errors.Is(err, ErrCorrupt) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	kept := make([]domain.Entity, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}

	if err := s.write(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) read(ctx context.Context) ([]domain.Entity, error) {
	b, err := s.db.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return []domain.Entity{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []domain.Entity
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.key, err)
	}
	if items == nil {
		items = []domain.Entity{}
	}
	for i := range items {
		if items[i].Kind == "" {
			items[i].Kind = s.kind
		}
	}
	return items, nil
}

func (s *Store) write(ctx context.Context, items []domain.Entity) error {
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.key, err)
	}
	return s.db.Set(ctx, s.key, b)
}
