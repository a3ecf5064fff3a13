package relay

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// Memory is an in-process Relay used by tests and local development. Every
// subscriber receives every published payload, publisher included, which
// matches the delivery semantics of a real broker channel.
type Memory struct {
	mu   sync.RWMutex
	subs map[uint64]func([]byte)
	seq  atomic.Uint64
}

// NewMemory creates an empty in-process relay.
func NewMemory() *Memory {
	return &Memory{subs: make(map[uint64]func([]byte))}
}

// Publish implements Relay.
func (m *Memory) Publish(ctx context.Context, payload []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.mu.RLock()
	handlers := make([]func([]byte), 0, len(m.subs))
	for _, h := range m.subs {
		handlers = append(handlers, h)
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}

	return nil
}

// Subscribe implements Relay.
func (m *Memory) Subscribe(ctx context.Context, handler func([]byte)) (io.Closer, error) {
	if handler == nil {
		return noopCloser{}, nil
	}

	id := m.seq.Add(1)

	m.mu.Lock()
	m.subs[id] = handler
	m.mu.Unlock()

	sub := &memorySubscription{bus: m, id: id}
	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()

	return sub, nil
}

type memorySubscription struct {
	bus *Memory
	id  uint64
}

func (s *memorySubscription) Close() error {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	return nil
}
