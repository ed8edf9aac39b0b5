// Package pubsub relays committed changes between portal instances so that
// live queries on every instance see writes made by any of them.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

const changeChannel = "cx:livequery:changes"

// ChangeEvent is the wire form of a livequery.Change.
type ChangeEvent struct {
	Change     livequery.Change `json:"change"`
	Timestamp  int64            `json:"timestamp"`
	InstanceID string           `json:"instance_id"` // Source instance ID to avoid self-delivery
}

// RedisChangeBus implements livequery.Notifier. Every change is delivered to
// the local notifier immediately and published to Redis for the other
// instances.
type RedisChangeBus struct {
	client     *redis.Client
	local      livequery.Notifier
	logger     logger.Interface
	instanceID string
}

// NewRedisChangeBus creates a bus that feeds local and relays through client.
func NewRedisChangeBus(client *redis.Client, local livequery.Notifier, log logger.Interface) *RedisChangeBus {
	return &RedisChangeBus{
		client:     client,
		local:      local,
		logger:     log,
		instanceID: uuid.NewString(),
	}
}

// InstanceID identifies this process on the channel.
func (b *RedisChangeBus) InstanceID() string {
	return b.instanceID
}

// Notify delivers locally, then publishes. A failed publish only costs remote
// freshness, so it is logged rather than returned.
func (b *RedisChangeBus) Notify(ctx context.Context, change livequery.Change) {
	b.local.Notify(ctx, change)

	if err := b.Publish(ctx, change); err != nil {
		b.logger.Warnw("failed to relay change",
			"collection", change.Collection,
			"document_id", change.DocumentID,
			"error", err,
		)
	}
}

// Publish sends change to the other instances.
func (b *RedisChangeBus) Publish(ctx context.Context, change livequery.Change) error {
	data, err := json.Marshal(ChangeEvent{
		Change:     change,
		Timestamp:  biztime.NowUTC().UnixMilli(),
		InstanceID: b.instanceID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	if err := b.client.Publish(ctx, changeChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	b.logger.Debugw("change published to Redis",
		"collection", change.Collection,
		"kind", change.Kind,
	)
	return nil
}

// Run feeds changes published by other instances into the local notifier
// until ctx ends, reconnecting with exponential backoff.
func (b *RedisChangeBus) Run(ctx context.Context) error {
	return b.RunWithReady(ctx, nil)
}

// RunWithReady is Run with a channel closed once the first subscription is
// confirmed.
func (b *RedisChangeBus) RunWithReady(ctx context.Context, ready chan<- struct{}) error {
	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		err := b.subscribe(ctx, ready)
		ready = nil
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b.logger.Warnw("change subscription disconnected, reconnecting",
			"channel", changeChannel,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

func (b *RedisChangeBus) subscribe(ctx context.Context, ready chan<- struct{}) error {
	sub := b.client.Subscribe(ctx, changeChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel %s: %w", changeChannel, err)
	}
	if ready != nil {
		close(ready)
	}

	b.logger.Infow("subscribed to change channel", "channel", changeChannel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("change subscriber stopped", "reason", ctx.Err())
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(ctx, msg.Payload)
		}
	}
}

func (b *RedisChangeBus) handle(ctx context.Context, payload string) {
	var event ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		b.logger.Warnw("failed to unmarshal change event",
			"payload", payload,
			"error", err,
		)
		return
	}

	// Skip events from own instance, they were delivered locally already.
	if event.InstanceID == b.instanceID {
		return
	}
	b.local.Notify(ctx, event.Change)
}
