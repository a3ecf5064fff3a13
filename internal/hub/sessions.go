package hub

import "sync"

// SessionRegistry tracks which connections belong to which user. A user with
// several tabs or devices has several connections under the same user id, and
// user-targeted sends reach all of them.
type SessionRegistry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*Connection
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{byUser: make(map[string]map[string]*Connection)}
}

// Add registers the connection under its owner's user id.
func (r *SessionRegistry) Add(c *Connection) {
	userID := c.Identity().UserID

	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.byUser[userID]
	if !ok {
		conns = make(map[string]*Connection)
		r.byUser[userID] = conns
	}
	conns[c.ID()] = c
}

// Remove unregisters the connection. The user's entry is pruned once its last
// connection is gone, so user enumeration never reports ghost users.
func (r *SessionRegistry) Remove(c *Connection) {
	userID := c.Identity().UserID

	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.byUser[userID]
	if !ok {
		return
	}
	delete(conns, c.ID())
	if len(conns) == 0 {
		delete(r.byUser, userID)
	}
}

// Connections returns a snapshot of the user's live connections.
func (r *SessionRegistry) Connections(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byUser[userID]
	if len(conns) == 0 {
		return nil
	}

	out := make([]*Connection, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

// UserCount returns the number of distinct users with at least one connection.
func (r *SessionRegistry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
