/*
Package hub contains the core logic of the realtime websocket hub.

This file defines the Connection struct, representing one authenticated
websocket connection. A connection is an explicit state machine
(connecting → open → closing → closed) so that tearing it down twice is a
provable no-op, and it runs the usual pair of pump goroutines for reads
and queued writes.
*/
package hub

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"venturehub/internal/pkg/errs"
)

const (
	// writeWait is the deadline for a single write to the peer.
	writeWait = 10 * time.Second

	// maxMessageSize is the maximum allowed size (in bytes) of an inbound frame.
	maxMessageSize = 8192
)

// Connection lifecycle states.
const (
	stateConnecting int32 = iota
	stateOpen
	stateClosing
	stateClosed
)

// Identity is the verified claim set of a connection's owner, produced by the
// external auth collaborator before the handshake completes.
type Identity struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Connection represents one live websocket connection and its owner.
// It is owned exclusively by the hub; registries only hold references.
type Connection struct {
	id       string
	identity Identity

	ws  *websocket.Conn
	hub *Hub

	// send queues marshaled outbound frames for the write pump.
	send chan []byte

	// done is closed exactly once when the connection reaches the closed state.
	done chan struct{}

	state atomic.Int32

	// alive is set by any inbound traffic and cleared by each heartbeat sweep.
	alive atomic.Bool

	// mu guards activeRoom, the room of the most recent JOIN_ROOM. Room-scoped
	// messages without an explicit roomId fall back to it.
	mu         sync.Mutex
	activeRoom string

	logger zerolog.Logger
}

func newConnection(h *Hub, ws *websocket.Conn, id string, identity Identity, logger zerolog.Logger) *Connection {
	c := &Connection{
		id:       id,
		identity: identity,
		ws:       ws,
		hub:      h,
		send:     make(chan []byte, h.sendQueueSize),
		done:     make(chan struct{}),
		logger:   logger,
	}
	c.alive.Store(true)
	return c
}

// ID returns the unique connection identifier.
func (c *Connection) ID() string { return c.id }

// Identity returns the verified claims of the connection's owner.
func (c *Connection) Identity() Identity { return c.identity }

// ActiveRoom returns the room set by the most recent JOIN_ROOM, or "".
func (c *Connection) ActiveRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeRoom
}

func (c *Connection) setActiveRoom(roomID string) {
	c.mu.Lock()
	c.activeRoom = roomID
	c.mu.Unlock()
}

// clearActiveRoom resets the active room only when it still matches roomID.
func (c *Connection) clearActiveRoom(roomID string) {
	c.mu.Lock()
	if c.activeRoom == roomID {
		c.activeRoom = ""
	}
	c.mu.Unlock()
}

func (c *Connection) markAlive() {
	c.alive.Store(true)
}

// beginClose moves the connection into the closing state. It returns false when
// the connection is already closing or closed, which makes every disconnect
// path (transport error, clean close, heartbeat timeout) idempotent.
func (c *Connection) beginClose() bool {
	return c.state.CompareAndSwap(stateOpen, stateClosing) ||
		c.state.CompareAndSwap(stateConnecting, stateClosing)
}

// finishClose completes the closing → closed transition, releasing the write
// pump and the underlying socket.
func (c *Connection) finishClose() {
	if !c.state.CompareAndSwap(stateClosing, stateClosed) {
		return
	}
	close(c.done)
	if err := c.ws.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}
}

// enqueue marshals an envelope onto the send queue. Frames for a closing
// connection or a full queue are dropped; a client that cannot keep up is
// eventually evicted by the heartbeat sweep, not blocked on.
func (c *Connection) enqueue(env Envelope) {
	if c.state.Load() != stateOpen {
		return
	}

	payload, err := json.Marshal(env)
	if err != nil {
		c.logger.Error().Err(err).Str("msg_type", string(env.Type)).Msg("Error marshaling outbound frame")
		return
	}

	select {
	case c.send <- payload:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Connection send queue full, dropping frame")
	}
}

// sendError unicasts an ERROR frame to this connection. The connection stays open.
func (c *Connection) sendError(customErr *errs.CustomError) {
	c.enqueue(NewErrorEnvelope(customErr))
}

// ping writes a websocket ping control frame. WriteControl is safe to call
// concurrently with the write pump.
func (c *Connection) ping() {
	if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
	}
}

// readPump reads frames from the peer and hands them to the hub's router.
// It returns when the transport fails or closes; the caller runs the
// disconnect cleanup.
func (c *Connection) readPump() {
	c.ws.SetReadLimit(maxMessageSize)

	readWait := 4 * c.hub.heartbeatInterval
	if err := c.ws.SetReadDeadline(time.Now().Add(readWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.ws.SetPongHandler(func(string) error {
		c.markAlive()
		return c.ws.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			return
		}

		c.hub.dispatch(c, payload)
	}
}

// writePump drains the send queue onto the websocket and terminates once the
// connection reaches the closed state.
func (c *Connection) writePump() {
	for {
		select {
		case payload := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing frame")
				return
			}

		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
