package gamehub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/pixellar/internal/testutil"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) *LifecycleEvent {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for lifecycle event")
		return nil
	}
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	sub, err := Subscribe(ctx, rdb, "test-instance", "hub-1")
	require.NoError(t, err)
	defer sub.Close()

	notifier := NewNotifier(rdb, "test-instance")

	require.NoError(t, notifier.StartGame(ctx, "hub-1", "match-7"))
	started := receive(t, sub)
	assert.Equal(t, KindStartGame, started.Kind)
	assert.Equal(t, "match-7", started.GameID)
	assert.Equal(t, canvas.Identity("hub-1"), started.Hub)
	assert.NotEmpty(t, started.ID)
	assert.NotZero(t, started.SentAtMs)

	require.NoError(t, notifier.EndGame(ctx, "hub-1", "match-7"))
	assert.Equal(t, KindEndGame, receive(t, sub).Kind)
}

func TestNotifier_OtherHubsDoNotHear(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	sub, err := Subscribe(ctx, rdb, "test-instance", "hub-2")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, NewNotifier(rdb, "test-instance").StartGame(ctx, "hub-1", "g"))

	select {
	case event := <-sub.Events():
		t.Fatalf("unexpected event %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

// The store resolves the hub reference and the notifier delivers it.
func TestNotifier_WithStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	opts := &redis.Options{Addr: mr.Addr()}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	store, err := canvas.NewStore(opts, "test-instance", testutil.AllowAll{}, NewNotifier(rdb, "test-instance"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Initialize(ctx, "GHUB"))

	sub, err := Subscribe(ctx, rdb, "test-instance", "GHUB")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, store.StartGame(ctx, "round-1"))
	event := receive(t, sub)
	assert.Equal(t, KindStartGame, event.Kind)
	assert.Equal(t, "round-1", event.GameID)
}
