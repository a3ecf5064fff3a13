package hub

import "sync"

// RoomRegistry tracks room membership in both directions: room id to member
// connections, and connection id to joined rooms. The reverse index makes
// disconnect cleanup proportional to the connection's own rooms rather than
// to every room in the process.
type RoomRegistry struct {
	mu        sync.RWMutex
	rooms     map[string]map[string]*Connection
	connRooms map[string]map[string]struct{}
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:     make(map[string]map[string]*Connection),
		connRooms: make(map[string]map[string]struct{}),
	}
}

// Join adds the connection to the room, creating the room on first member.
// Joining a room twice is a no-op.
func (r *RoomRegistry) Join(roomID string, c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]*Connection)
		r.rooms[roomID] = members
	}
	members[c.ID()] = c

	joined, ok := r.connRooms[c.ID()]
	if !ok {
		joined = make(map[string]struct{})
		r.connRooms[c.ID()] = joined
	}
	joined[roomID] = struct{}{}
}

// Leave removes the connection from the room and reports whether it was a
// member. Empty rooms are deleted so the room count stays truthful.
func (r *RoomRegistry) Leave(roomID string, c *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	if _, member := members[c.ID()]; !member {
		return false
	}

	delete(members, c.ID())
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}

	if joined, ok := r.connRooms[c.ID()]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(r.connRooms, c.ID())
		}
	}

	return true
}

// RemoveAll removes the connection from every room it joined and returns the
// ids of those rooms, so the caller can announce the departures.
func (r *RoomRegistry) RemoveAll(c *Connection) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined, ok := r.connRooms[c.ID()]
	if !ok {
		return nil
	}

	left := make([]string, 0, len(joined))
	for roomID := range joined {
		left = append(left, roomID)
		if members, ok := r.rooms[roomID]; ok {
			delete(members, c.ID())
			if len(members) == 0 {
				delete(r.rooms, roomID)
			}
		}
	}
	delete(r.connRooms, c.ID())

	return left
}

// Members returns a snapshot of the room's member connections.
func (r *RoomRegistry) Members(roomID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	if len(members) == 0 {
		return nil
	}

	out := make([]*Connection, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

// Contains reports whether the connection is a member of the room.
func (r *RoomRegistry) Contains(roomID string, c *Connection) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	_, member := members[c.ID()]
	return member
}

// RoomCount returns the number of rooms with at least one member.
func (r *RoomRegistry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
