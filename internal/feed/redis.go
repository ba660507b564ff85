package feed

import (
	"context"
	"fmt"
	"strings"

	"taskboard/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ChannelPrefix namespaces feed topics on a shared Redis instance: taskboard:{topic}
const ChannelPrefix = "taskboard:"

var _ store.Feed = (*RedisFeed)(nil)

// RedisFeed publishes changes over Redis Pub/Sub, one channel per topic.
type RedisFeed struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRedisFeed(client *redis.Client, log zerolog.Logger) *RedisFeed {
	return &RedisFeed{client: client, log: log.With().Str("component", "redis_feed").Logger()}
}

func (f *RedisFeed) Publish(ctx context.Context, change store.Change) error {
	data, err := encode(change)
	if err != nil {
		return err
	}
	if err := f.client.Publish(ctx, ChannelPrefix+change.Topic, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", change.Topic, err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, topics ...string) (<-chan store.Change, error) {
	channels := make([]string, len(topics))
	for i, topic := range topics {
		channels[i] = ChannelPrefix + topic
	}

	ps := f.client.Subscribe(ctx, channels...)
	// Wait for the subscription confirmation so no publish after return is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %v: %w", topics, err)
	}

	out := make(chan store.Change, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		messages := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					f.log.Warn().Strs("topics", topics).Msg("Redis subscription closed")
					return
				}
				change, err := decode(msg.Payload)
				if err != nil {
					f.log.Error().Err(err).Str("channel", msg.Channel).Msg("Dropping malformed change")
					continue
				}
				if change.Topic == "" {
					change.Topic = strings.TrimPrefix(msg.Channel, ChannelPrefix)
				}
				offer(out, change)
			}
		}
	}()
	return out, nil
}
