// Package events carries entity change notifications to every open view so
// they can refresh after a mutation.
package events

import (
	"context"
	"sync"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
)

type Op string

const (
	OpAdded   Op = "added"
	OpDeleted Op = "deleted"
	// OpExternal marks a change made outside this process, e.g. another
	// instance rewriting the data file.
	OpExternal Op = "external"
)

// Change describes one mutation of a kind's collection.
type Change struct {
	Kind domain.Kind `json:"kind"`
	Op   Op          `json:"op"`
	ID   string      `json:"id,omitempty"`
	At   int64       `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

type Subscriber interface {
	// Subscribe registers fn for every future change. fn runs on the
	// publisher's goroutine and must not block. The returned func cancels
	// the subscription.
	Subscribe(fn func(Change)) (cancel func())
}

type Bus interface {
	Publisher
	Subscriber
}

// LocalBus fans changes out to subscribers in this process.
type LocalBus struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Change)
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[int]func(Change))}
}

func (b *LocalBus) Publish(_ context.Context, c Change) error {
	b.mu.RLock()
	fns := make([]func(Change), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
	return nil
}

func (b *LocalBus) Subscribe(fn func(Change)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (b *LocalBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
