package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/entities/store"
	"github.com/portfolio-site/portfolio-backend/internal/events"
	"github.com/portfolio-site/portfolio-backend/internal/logger"
)

// Catalog is the entity adapter for one kind. Reads fail soft: a broken or
// unreachable store yields an empty gallery instead of an error.
type Catalog struct {
	kind  domain.Kind
	store store.Store
	pub   events.Publisher
	log   *zap.Logger
	now   func() time.Time
}

func NewCatalog(kind domain.Kind, st store.Store, pub events.Publisher, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		kind:  kind,
		store: st,
		pub:   pub,
		log:   log,
		now:   time.Now,
	}
}

func (c *Catalog) Kind() domain.Kind {
	return c.kind
}

// List returns every entity of the kind, newest first.
func (c *Catalog) List(ctx context.Context) []domain.Entity {
	items, err := c.store.List(ctx)
	if err != nil {
		logger.NewLogger(ctx, c.log).LogError("list_"+c.kind.Collection(), err)
		return []domain.Entity{}
	}
	if items == nil {
		items = []domain.Entity{}
	}
	store.SortNewestFirst(items)
	return items
}

// Search filters List by a case-insensitive substring of title or
// description. Callers decide what an empty query means.
func (c *Catalog) Search(ctx context.Context, q string) []domain.Entity {
	all := c.List(ctx)
	out := make([]domain.Entity, 0, len(all))
	for _, e := range all {
		if e.Matches(q) {
			out = append(out, e)
		}
	}
	return out
}

// Add validates and stores a new entity. Validation failures wrap
// domain.ErrValidation, storage failures wrap domain.ErrPersist.
func (c *Catalog) Add(ctx context.Context, f domain.Fields) (*domain.Entity, error) {
	f = f.Normalize()
	if f.Kind == "" {
		f.Kind = c.kind
	}
	if f.Kind != c.kind {
		return nil, fmt.Errorf("%w: kind must be %s", domain.ErrValidation, c.kind)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	e, err := c.store.Add(ctx, f)
	if err != nil {
		logger.NewLogger(ctx, c.log).LogError("add_"+c.kind.Collection(), err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}

	c.notify(ctx, events.OpAdded, e.ID)
	return &e, nil
}

// Delete reports whether an entity was removed. Unknown ids and store
// failures both report false; a repeated delete of the same id is false.
func (c *Catalog) Delete(ctx context.Context, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}

	removed, err := c.store.Delete(ctx, id)
	if err != nil {
		logger.NewLogger(ctx, c.log).LogError("delete_"+c.kind.Collection(), err)
		return false
	}
	if removed {
		c.notify(ctx, events.OpDeleted, id)
	}
	return removed
}

func (c *Catalog) notify(ctx context.Context, op events.Op, id string) {
	if c.pub == nil {
		return
	}
	err := c.pub.Publish(ctx, events.Change{
		Kind: c.kind,
		Op:   op,
		ID:   id,
		At:   c.now().UnixMilli(),
	})
	if err != nil {
		logger.NewLogger(ctx, c.log).LogWarnf("notify_"+c.kind.Collection(), "publish %s %s: %v", op, id, err)
	}
}

// Catalogs holds one Catalog per kind.
type Catalogs map[domain.Kind]*Catalog

// NewCatalogs builds a Catalog for every kind from one store factory.
func NewCatalogs(factory store.Factory, pub events.Publisher, log *zap.Logger) Catalogs {
	cs := make(Catalogs, len(domain.Kinds))
	for _, k := range domain.Kinds {
		cs[k] = NewCatalog(k, factory(k), pub, log)
	}
	return cs
}

func (cs Catalogs) Get(kind domain.Kind) (*Catalog, bool) {
	c, ok := cs[kind]
	return c, ok
}
