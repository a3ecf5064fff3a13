package hub

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"venturehub/internal/pkg/logx"
	"venturehub/internal/pkg/randx"
	"venturehub/internal/relay"
)

const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultSendQueueSize     = 256
)

// Options configures a Hub.
type Options struct {
	// HeartbeatInterval is the period of the liveness sweep. Connections that
	// show no inbound traffic for a full interval are pinged; those still
	// silent at the next sweep are disconnected.
	HeartbeatInterval time.Duration

	// SendQueueSize is the per-connection outbound queue capacity.
	SendQueueSize int

	// NodeID identifies this process on the relay channel, used to suppress
	// re-delivery of this process's own broadcasts.
	NodeID string

	// Relay carries broadcasts between sibling processes. Nil means relay.Noop.
	Relay relay.Relay

	// OnConnect and OnDisconnect, when set, observe the connection lifecycle.
	// OnConnect runs after registration, OnDisconnect after full cleanup.
	OnConnect    func(c *Connection)
	OnDisconnect func(c *Connection)
}

// Hub owns every live websocket connection of this process. It registers and
// tears down connections, sweeps them for liveness, routes inbound frames, and
// fans outbound events out locally and across sibling processes.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection

	sessions *SessionRegistry
	rooms    *RoomRegistry

	relay  relay.Relay
	nodeID string

	heartbeatInterval time.Duration
	sendQueueSize     int

	onConnect    func(c *Connection)
	onDisconnect func(c *Connection)

	startedAt time.Time
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	subCloser io.Closer

	logger zerolog.Logger
}

// Stats is a point-in-time summary of the hub's registries.
type Stats struct {
	Connections   int     `json:"connections"`
	Users         int     `json:"users"`
	Rooms         int     `json:"rooms"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// relayEnvelope is the wire shape of a cross-process broadcast.
type relayEnvelope struct {
	NodeID string `json:"nodeId"`

	// Scope selects the delivery target on the receiving process.
	Scope string `json:"scope"` // "room", "user" or "all"

	RoomID string `json:"roomId,omitempty"`
	UserID string `json:"userId,omitempty"`

	// Except lists connection ids to skip. Connection ids are process-local,
	// so on sibling processes the list simply matches nothing.
	Except []string `json:"except,omitempty"`

	Message Envelope `json:"message"`
}

const (
	relayScopeRoom = "room"
	relayScopeUser = "user"
	relayScopeAll  = "all"
)

// New creates a Hub. Zero option fields fall back to defaults.
func New(opts Options) *Hub {
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = defaultHeartbeatInterval
	}
	if opts.SendQueueSize <= 0 {
		opts.SendQueueSize = defaultSendQueueSize
	}
	if opts.NodeID == "" {
		opts.NodeID = randx.ConnectionID()
	}
	if opts.Relay == nil {
		opts.Relay = relay.Noop{}
	}

	return &Hub{
		conns:             make(map[string]*Connection),
		sessions:          NewSessionRegistry(),
		rooms:             NewRoomRegistry(),
		relay:             opts.Relay,
		nodeID:            opts.NodeID,
		onConnect:         opts.OnConnect,
		onDisconnect:      opts.OnDisconnect,
		heartbeatInterval: opts.HeartbeatInterval,
		sendQueueSize:     opts.SendQueueSize,
		startedAt:         time.Now(),
		stop:              make(chan struct{}),
		logger:            logx.Logger().With().Str("component", "hub").Str("node_id", opts.NodeID).Logger(),
	}
}

// Start subscribes to the relay channel and launches the heartbeat sweep.
func (h *Hub) Start(ctx context.Context) error {
	closer, err := h.relay.Subscribe(ctx, h.handleRelayPayload)
	if err != nil {
		return err
	}
	h.subCloser = closer

	h.wg.Add(1)
	go h.heartbeatLoop()

	h.logger.Info().Dur("heartbeat_interval", h.heartbeatInterval).Msg("Hub started")
	return nil
}

// Stop closes the relay subscription, disconnects every connection, and waits
// for background work to finish or ctx to expire.
func (h *Hub) Stop(ctx context.Context) error {
	h.stopOnce.Do(func() { close(h.stop) })

	if h.subCloser != nil {
		if err := h.subCloser.Close(); err != nil {
			h.logger.Warn().Err(err).Msg("Error closing relay subscription")
		}
	}

	for _, c := range h.snapshotConns() {
		h.disconnect(c, "server shutdown")
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info().Msg("Hub stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleConnection adopts an already-upgraded, already-authenticated websocket
// connection. It blocks until the connection terminates and runs the full
// disconnect cleanup before returning.
func (h *Hub) HandleConnection(ws *websocket.Conn, identity Identity) {
	connID := randx.ConnectionID()
	logger := h.logger.With().Str("conn_id", connID).Str("user_id", identity.UserID).Logger()
	c := newConnection(h, ws, connID, identity, logger)

	h.mu.Lock()
	h.conns[connID] = c
	h.mu.Unlock()
	h.sessions.Add(c)
	c.state.Store(stateOpen)

	logger.Info().Msg("Connection established")
	if h.onConnect != nil {
		h.onConnect(c)
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		c.writePump()
	}()

	c.enqueue(NewEnvelope(TypeConnectionEstablished, connectionEstablishedData{UserID: identity.UserID}))

	c.readPump()
	h.disconnect(c, "transport closed")
}

// disconnect tears a connection down exactly once: deregisters it everywhere,
// closes the socket, and announces USER_LEFT for each room it occupied. The
// departure frames are built after removal, so the leaver never receives them
// and room members see a consistent post-removal view.
func (h *Hub) disconnect(c *Connection, reason string) {
	if !c.beginClose() {
		return
	}

	h.mu.Lock()
	delete(h.conns, c.ID())
	h.mu.Unlock()

	h.sessions.Remove(c)
	left := h.rooms.RemoveAll(c)

	c.finishClose()

	identity := c.Identity()
	for _, roomID := range left {
		h.BroadcastToRoom(roomID, NewEnvelope(TypeUserLeft, userEventData{
			UserID:   identity.UserID,
			UserName: identity.Name,
			RoomID:   roomID,
		}))
	}

	if h.onDisconnect != nil {
		h.onDisconnect(c)
	}

	c.logger.Info().Str("reason", reason).Int("rooms_left", len(left)).Msg("Connection closed")
}

func (h *Hub) snapshotConns() []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		out = append(out, c)
	}
	return out
}

// heartbeatLoop sweeps all connections every interval. A connection whose
// alive flag was not refreshed since the previous sweep is considered dead.
func (h *Hub) heartbeatLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range h.snapshotConns() {
				if !c.alive.Swap(false) {
					h.disconnect(c, "heartbeat timeout")
					continue
				}
				c.ping()
			}

		case <-h.stop:
			return
		}
	}
}

// SendToUser delivers the envelope to every local connection of the user and
// relays it to sibling processes. It returns the local delivery count.
func (h *Hub) SendToUser(userID string, env Envelope) int {
	n := h.deliverToUser(userID, env)
	h.publishRelay(relayEnvelope{Scope: relayScopeUser, UserID: userID, Message: env})
	return n
}

// BroadcastToRoom delivers the envelope to the room's local members, skipping
// the listed connection ids, and relays it to sibling processes.
func (h *Hub) BroadcastToRoom(roomID string, env Envelope, except ...string) {
	h.deliverToRoom(roomID, env, except...)
	h.publishRelay(relayEnvelope{Scope: relayScopeRoom, RoomID: roomID, Except: except, Message: env})
}

// BroadcastToAll delivers the envelope to every connection, here and on
// sibling processes.
func (h *Hub) BroadcastToAll(env Envelope) {
	h.deliverToAll(env)
	h.publishRelay(relayEnvelope{Scope: relayScopeAll, Message: env})
}

// NotifyUser pushes a SYSTEM_NOTIFICATION to all of the user's connections and
// returns how many local connections received it.
func (h *Hub) NotifyUser(userID, title, message string, data json.RawMessage) int {
	return h.SendToUser(userID, NewEnvelope(TypeSystemNotification, systemNotificationData{
		Title:   title,
		Message: message,
		Data:    data,
	}))
}

// BroadcastUpdate pushes a REALTIME_UPDATE to every connected client.
func (h *Hub) BroadcastUpdate(updateType string, data json.RawMessage) {
	h.BroadcastToAll(NewEnvelope(TypeRealtimeUpdate, realtimeUpdateData{
		UpdateType: updateType,
		Data:       data,
	}))
}

// Stats returns current registry sizes and process uptime.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	connections := len(h.conns)
	h.mu.RUnlock()

	return Stats{
		Connections:   connections,
		Users:         h.sessions.UserCount(),
		Rooms:         h.rooms.RoomCount(),
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
	}
}

// Local-only delivery, shared by direct sends and relay receipts.

func (h *Hub) deliverToUser(userID string, env Envelope) int {
	conns := h.sessions.Connections(userID)
	for _, c := range conns {
		c.enqueue(env)
	}
	return len(conns)
}

func (h *Hub) deliverToRoom(roomID string, env Envelope, except ...string) {
	for _, c := range h.rooms.Members(roomID) {
		if containsID(except, c.ID()) {
			continue
		}
		c.enqueue(env)
	}
}

func (h *Hub) deliverToAll(env Envelope) {
	for _, c := range h.snapshotConns() {
		c.enqueue(env)
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// publishRelay ships a broadcast to sibling processes. Relay failures are
// logged and swallowed; local delivery already happened.
func (h *Hub) publishRelay(env relayEnvelope) {
	env.NodeID = h.nodeID

	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error marshaling relay envelope")
		return
	}

	if err := h.relay.Publish(context.Background(), payload); err != nil {
		h.logger.Error().Err(err).Str("scope", env.Scope).Msg("Error publishing to relay")
	}
}

// handleRelayPayload fans a sibling process's broadcast out to local
// connections only. Payloads stamped with this process's own node id were
// already delivered locally and are skipped to prevent echo loops.
func (h *Hub) handleRelayPayload(payload []byte) {
	var env relayEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		h.logger.Warn().Err(err).Msg("Dropping malformed relay payload")
		return
	}

	if env.NodeID == h.nodeID {
		return
	}

	switch env.Scope {
	case relayScopeRoom:
		h.deliverToRoom(env.RoomID, env.Message, env.Except...)
	case relayScopeUser:
		h.deliverToUser(env.UserID, env.Message)
	case relayScopeAll:
		h.deliverToAll(env.Message)
	default:
		h.logger.Warn().Str("scope", env.Scope).Msg("Dropping relay payload with unknown scope")
	}
}
