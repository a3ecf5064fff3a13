package relay

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeliversToAllSubscribers(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var mu sync.Mutex
	var got []string
	record := func(name string) func([]byte) {
		return func(payload []byte) {
			mu.Lock()
			got = append(got, name+":"+string(payload))
			mu.Unlock()
		}
	}

	sub1, err := m.Subscribe(ctx, record("a"))
	require.NoError(t, err)
	defer sub1.Close()

	sub2, err := m.Subscribe(ctx, record("b"))
	require.NoError(t, err)
	defer sub2.Close()

	require.NoError(t, m.Publish(ctx, []byte("hello")))

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a:hello", "b:hello"}, got)
}

func TestMemoryCloseStopsDelivery(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var mu sync.Mutex
	count := 0
	sub, err := m.Subscribe(ctx, func([]byte) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)

	require.NoError(t, m.Publish(ctx, []byte("one")))
	require.NoError(t, sub.Close())
	require.NoError(t, m.Publish(ctx, []byte("two")))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestMemoryPublishWithCancelledContext(t *testing.T) {
	m := NewMemory()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, m.Publish(ctx, []byte("late")))
}

func TestNoopRelay(t *testing.T) {
	var r Relay = Noop{}
	ctx := context.Background()

	sub, err := r.Subscribe(ctx, func([]byte) { t.Fatal("noop relay must never deliver") })
	require.NoError(t, err)

	assert.NoError(t, r.Publish(ctx, []byte("void")))
	assert.NoError(t, sub.Close())
}
