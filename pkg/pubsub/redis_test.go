package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPubSubRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ps, err := NewRedisPubSub(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ps.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := ps.Subscribe(ctx, ChannelBoards)
	require.NoError(t, err)

	ev, err := NewEvent(EventBoardChanged, "instance-a", BoardPayload{SessionID: "s1", ChatID: 42})
	require.NoError(t, err)
	require.NoError(t, ps.Publish(ctx, ChannelBoards, ev))

	select {
	case got := <-events:
		assert.Equal(t, EventBoardChanged, got.Type)
		assert.Equal(t, "instance-a", got.Origin)

		var p BoardPayload
		require.NoError(t, got.UnmarshalPayload(&p))
		assert.Equal(t, BoardPayload{SessionID: "s1", ChatID: 42}, p)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	require.NoError(t, ps.Unsubscribe(ctx, ChannelBoards))
	require.NoError(t, ps.Ping(ctx))
}
