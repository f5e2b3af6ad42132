// Package mirror copies every collection into the local key-value store so
// the gallery can be restored or served without the primary backend.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/entities/store"
	"github.com/portfolio-site/portfolio-backend/internal/storage/kv"
)

const snapshotPrefix = "snapshot_"

// ErrNotEmpty is returned by Restore when the collection already has items.
var ErrNotEmpty = errors.New("collection is not empty")

// Snapshot is the stored form of one mirrored collection.
type Snapshot struct {
	Collection string          `json:"collection"`
	TakenAt    time.Time       `json:"takenAt"`
	Items      []domain.Entity `json:"items"`
}

// SnapshotKey is the kv key holding the snapshot of kind.
func SnapshotKey(kind domain.Kind) string {
	return snapshotPrefix + kind.Collection()
}

type Mirror struct {
	stores store.Factory
	dst    kv.KV
	now    func() time.Time
	log    *zap.Logger
}

func New(stores store.Factory, dst kv.KV, log *zap.Logger) *Mirror {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mirror{stores: stores, dst: dst, now: time.Now, log: log}
}

// Run snapshots every kind. A failing kind leaves its previous snapshot in
// place and does not stop the others.
func (m *Mirror) Run(ctx context.Context) error {
	var firstErr error
	for _, kind := range domain.Kinds {
		n, err := m.runKind(ctx, kind)
		if err != nil {
			m.log.Error("mirror failed", zap.String("collection", kind.Collection()), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		m.log.Info("mirror completed", zap.String("collection", kind.Collection()), zap.Int("items", n))
	}
	return firstErr
}

func (m *Mirror) runKind(ctx context.Context, kind domain.Kind) (int, error) {
	items, err := m.stores(kind).List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", kind.Collection(), err)
	}
	if items == nil {
		items = []domain.Entity{}
	}

	data, err := json.Marshal(Snapshot{Collection: kind.Collection(), TakenAt: m.now().UTC(), Items: items})
	if err != nil {
		return 0, fmt.Errorf("marshal %s snapshot: %w", kind.Collection(), err)
	}
	if err := m.dst.Set(ctx, SnapshotKey(kind), data); err != nil {
		return 0, fmt.Errorf("write %s snapshot: %w", kind.Collection(), err)
	}
	return len(items), nil
}

// Load reads the last snapshot of kind.
func (m *Mirror) Load(ctx context.Context, kind domain.Kind) (*Snapshot, error) {
	data, err := m.dst.Get(ctx, SnapshotKey(kind))
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", kind.Collection(), err)
	}
	return &s, nil
}

// Restore adds the items of the last snapshot of kind back into an empty
// collection, oldest first so the newest-first order survives. Restored
// items get new ids and createdAt values from the backend.
func (m *Mirror) Restore(ctx context.Context, kind domain.Kind) (int, error) {
	snap, err := m.Load(ctx, kind)
	if err != nil {
		return 0, err
	}

	st := m.stores(kind)
	current, err := st.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", kind.Collection(), err)
	}
	if len(current) > 0 {
		return 0, fmt.Errorf("restore %s: %w (%d items)", kind.Collection(), ErrNotEmpty, len(current))
	}

	items := append([]domain.Entity(nil), snap.Items...)
	store.SortNewestFirst(items)

	n := 0
	for i := len(items) - 1; i >= 0; i-- {
		f := items[i].Fields
		f.Kind = kind
		if _, err := st.Add(ctx, f); err != nil {
			return n, fmt.Errorf("restore %s %q: %w", kind.Collection(), f.Title, err)
		}
		n++
	}
	m.log.Info("mirror restored", zap.String("collection", kind.Collection()), zap.Int("items", n))
	return n, nil
}
