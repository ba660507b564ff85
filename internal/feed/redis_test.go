package feed_test

import (
	"context"
	"testing"
	"time"

	"taskboard/internal/feed"
	"taskboard/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func receive(t *testing.T, ch <-chan store.Change) store.Change {
	t.Helper()
	select {
	case change, ok := <-ch:
		require.True(t, ok, "channel closed")
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
		return store.Change{}
	}
}

func TestRedisFeed_PublishSubscribe(t *testing.T) {
	client, _ := setupTestRedis(t)
	f := feed.NewRedisFeed(client, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	projectID := uuid.New()
	ch, err := f.Subscribe(ctx, store.TasksTopic(projectID))
	require.NoError(t, err)

	t.Run("ignores other topics", func(t *testing.T) {
		require.NoError(t, f.Publish(ctx, store.Change{Topic: store.TasksTopic(uuid.New()), Kind: store.ChangeCreated}))
		require.NoError(t, f.Publish(ctx, store.Change{Topic: store.TasksTopic(projectID), Kind: store.ChangeDeleted, ID: projectID}))

		change := receive(t, ch)
		assert.Equal(t, store.TasksTopic(projectID), change.Topic)
		assert.Equal(t, store.ChangeDeleted, change.Kind)
		assert.Equal(t, projectID, change.ID)
	})

	t.Run("skips malformed payloads", func(t *testing.T) {
		require.NoError(t, client.Publish(ctx, feed.ChannelPrefix+store.TasksTopic(projectID), "not json").Err())
		require.NoError(t, f.Publish(ctx, store.Change{Topic: store.TasksTopic(projectID), Kind: store.ChangeUpdated}))

		change := receive(t, ch)
		assert.Equal(t, store.ChangeUpdated, change.Kind)
	})
}

func TestRedisFeed_CancelClosesChannel(t *testing.T) {
	client, _ := setupTestRedis(t)
	f := feed.NewRedisFeed(client, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := f.Subscribe(ctx, store.TopicProjects)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestRedisFeed_SubscribeFailsWhenServerIsDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	f := feed.NewRedisFeed(client, zerolog.Nop())
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = f.Subscribe(ctx, store.TopicProjects)
	assert.Error(t, err)
}
