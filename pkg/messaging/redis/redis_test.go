package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/agenda-api/pkg/circuitbreaker"
)

func newTestBroker(t *testing.T) (*RedisBroker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cb := circuitbreaker.New(circuitbreaker.Settings{Name: "test"})
	return NewRedisBroker(client, cb, zerolog.Nop()).(*RedisBroker), mr
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Config{URL: "redis://" + mr.Addr() + "/0", PoolSize: 5})
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	_, err = NewClient(context.Background(), Config{URL: "not a url"})
	assert.Error(t, err)
}

func TestRedisBroker_PublishSubscribe(t *testing.T) {
	b, _ := newTestBroker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := b.Subscribe(ctx, "agenda.events")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "agenda.events", map[string]interface{}{"type": "availability_changed", "doctor_id": 4}))

	select {
	case raw := <-msgs:
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "availability_changed", got["type"])
		assert.EqualValues(t, 4, got["doctor_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-msgs
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisBroker_PublishFailsWhenRedisDown(t *testing.T) {
	b, mr := newTestBroker(t)
	mr.Close()

	err := b.Publish(context.Background(), "agenda.events", map[string]string{"type": "x"})
	assert.Error(t, err)
}
