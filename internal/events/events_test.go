package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
)

func TestLocalBus_FanOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewLocalBus()
	var (
		mu   sync.Mutex
		gotA []Change
		gotB []Change
	)
	cancelA := bus.Subscribe(func(c Change) { mu.Lock(); gotA = append(gotA, c); mu.Unlock() })
	cancelB := bus.Subscribe(func(c Change) { mu.Lock(); gotB = append(gotB, c); mu.Unlock() })
	assert.Equal(t, 2, bus.Subscribers())

	added := Change{Kind: domain.KindProject, Op: OpAdded, ID: "p1", At: 1}
	require.NoError(t, bus.Publish(context.Background(), added))

	cancelA()
	cancelA()
	assert.Equal(t, 1, bus.Subscribers())

	deleted := Change{Kind: domain.KindProject, Op: OpDeleted, ID: "p1", At: 2}
	require.NoError(t, bus.Publish(context.Background(), deleted))

	assert.Equal(t, []Change{added}, gotA)
	assert.Equal(t, []Change{added, deleted}, gotB)

	cancelB()
	assert.Zero(t, bus.Subscribers())
}

func TestLocalBus_SubscriberMayCancelDuringDelivery(t *testing.T) {
	bus := NewLocalBus()

	var cancel func()
	calls := 0
	cancel = bus.Subscribe(func(Change) {
		calls++
		cancel()
	})

	require.NoError(t, bus.Publish(context.Background(), Change{Op: OpAdded}))
	require.NoError(t, bus.Publish(context.Background(), Change{Op: OpAdded}))
	assert.Equal(t, 1, calls)
}
