/*
Package relay provides the cross-process broadcast capability for the realtime hub.

A single hub process only reaches the websocket connections it physically holds.
When several hub processes run behind a load balancer, each publishes its outbound
broadcasts to a shared channel through a Relay; sibling processes receive the
payload and fan it out to their own local connections. The hub depends only on
the Relay interface, so single-process deployments run with Noop and tests run
with Memory.
*/
package relay

import (
	"context"
	"io"
)

// Relay publishes opaque broadcast payloads to a shared channel and delivers
// payloads published by sibling processes.
type Relay interface {
	// Publish sends the payload to every subscriber of the shared channel,
	// including the publishing process itself.
	Publish(ctx context.Context, payload []byte) error

	// Subscribe registers a handler for payloads on the shared channel and
	// returns a closer that cancels the subscription. The handler must not
	// re-publish, or sibling processes would loop the message forever.
	Subscribe(ctx context.Context, handler func(payload []byte)) (io.Closer, error)
}

// Noop is the single-process Relay: publishes go nowhere and no payloads arrive.
type Noop struct{}

// Publish implements Relay.
func (Noop) Publish(ctx context.Context, payload []byte) error { return nil }

// Subscribe implements Relay.
func (Noop) Subscribe(ctx context.Context, handler func([]byte)) (io.Closer, error) {
	return noopCloser{}, nil
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }
