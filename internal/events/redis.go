package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "portfolio:events" // Pub/Sub channel shared by every instance

type envelope struct {
	Origin string `json:"origin"`
	Change Change `json:"change"`
}

// RedisBus delivers changes to local subscribers immediately and relays them
// to other instances over redis Pub/Sub.
type RedisBus struct {
	client  *redis.Client
	channel string
	origin  string
	local   *LocalBus

	readyOnce sync.Once
	ready     chan struct{}
}

func NewRedisBus(client *redis.Client, channel string) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBus{
		client:  client,
		channel: channel,
		origin:  uuid.New().String(),
		local:   NewLocalBus(),
		ready:   make(chan struct{}),
	}
}

func (b *RedisBus) Publish(ctx context.Context, c Change) error {
	_ = b.local.Publish(ctx, c)

	data, err := json.Marshal(envelope{Origin: b.origin, Change: c})
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(fn func(Change)) func() {
	return b.local.Subscribe(fn)
}

// Ready is closed once Run has an active redis subscription.
func (b *RedisBus) Ready() <-chan struct{} {
	return b.ready
}

// Run relays changes published by other instances until ctx is done.
func (b *RedisBus) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.readyOnce.Do(func() { close(b.ready) })

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			_ = b.local.Publish(ctx, env.Change)
		}
	}
}
