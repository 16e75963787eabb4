package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const feedChannel = "maqraa:availability:inserts"

type bridgeEnvelope struct {
	Origin string      `json:"origin"`
	Event  InsertEvent `json:"event"`
}

// RedisBridge mirrors a local insert feed over a Redis pub/sub channel so
// that several service instances share one availability view. Local events
// are published to the channel; remote events are injected into the local
// feed. Each bridge tags events with its instance id to suppress echo.
type RedisBridge struct {
	rdb    *redis.Client
	feed   *Feed
	origin string
	logger *zerolog.Logger
	cancel func()
	pubsub *redis.PubSub

	mu       sync.Mutex
	injected map[string]struct{}
}

// NewRedisBridge wires feed to the shared channel and starts the consumer.
// Close the returned bridge on shutdown.
func NewRedisBridge(ctx context.Context, rdb *redis.Client, feed *Feed, logger *zerolog.Logger) *RedisBridge {
	b := &RedisBridge{
		rdb:      rdb,
		feed:     feed,
		origin:   uuid.NewString(),
		logger:   logger,
		injected: make(map[string]struct{}),
	}

	b.cancel = feed.Subscribe(func(ev InsertEvent) {
		// Events this bridge just injected from Redis must not bounce
		// back onto the channel.
		if b.wasInjected(ev) {
			return
		}
		b.publish(ctx, ev)
	})

	b.pubsub = rdb.Subscribe(ctx, feedChannel)
	go b.consume(ctx)
	return b
}

func (b *RedisBridge) publish(ctx context.Context, ev InsertEvent) {
	data, err := json.Marshal(bridgeEnvelope{Origin: b.origin, Event: ev})
	if err != nil {
		b.logger.Error().Err(err).Msg("marshal feed event")
		return
	}
	if err := b.rdb.Publish(ctx, feedChannel, data).Err(); err != nil {
		// Best effort: peers recover via their next full load.
		b.logger.Error().Err(err).Msg("publish feed event to redis")
	}
}

func (b *RedisBridge) consume(ctx context.Context) {
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env bridgeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Error().Err(err).Msg("decode feed event from redis")
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			b.markInjected(env.Event)
			b.feed.Publish(env.Event)
		}
	}
}

func eventKey(ev InsertEvent) string {
	switch ev.Kind {
	case KindSeat:
		if ev.Seat != nil {
			return "seat:" + ev.Seat.TimeSlotID
		}
	case KindDay:
		if ev.Day != nil {
			return fmt.Sprintf("day:%s:%d", ev.Day.TimeSlotID, ev.Day.Weekday)
		}
	}
	return ""
}

func (b *RedisBridge) markInjected(ev InsertEvent) {
	key := eventKey(ev)
	if key == "" {
		return
	}
	b.mu.Lock()
	b.injected[key] = struct{}{}
	b.mu.Unlock()
}

func (b *RedisBridge) wasInjected(ev InsertEvent) bool {
	key := eventKey(ev)
	if key == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.injected[key]; ok {
		delete(b.injected, key)
		return true
	}
	return false
}

// Close detaches the bridge from the local feed and the Redis channel.
func (b *RedisBridge) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	return b.pubsub.Close()
}
