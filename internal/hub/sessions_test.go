package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConn(id, userID string) *Connection {
	return &Connection{id: id, identity: Identity{UserID: userID}}
}

func TestSessionRegistryMultipleConnectionsPerUser(t *testing.T) {
	r := NewSessionRegistry()

	c1 := testConn("conn-1", "alice")
	c2 := testConn("conn-2", "alice")
	r.Add(c1)
	r.Add(c2)

	require.Equal(t, 1, r.UserCount())

	conns := r.Connections("alice")
	require.Len(t, conns, 2)

	ids := []string{conns[0].ID(), conns[1].ID()}
	assert.ElementsMatch(t, []string{"conn-1", "conn-2"}, ids)
}

func TestSessionRegistryPrunesEmptyUsers(t *testing.T) {
	r := NewSessionRegistry()

	c1 := testConn("conn-1", "alice")
	c2 := testConn("conn-2", "alice")
	r.Add(c1)
	r.Add(c2)

	r.Remove(c1)
	require.Equal(t, 1, r.UserCount())
	require.Len(t, r.Connections("alice"), 1)

	r.Remove(c2)
	assert.Equal(t, 0, r.UserCount())
	assert.Nil(t, r.Connections("alice"))
}

func TestSessionRegistryRemoveUnknownIsNoop(t *testing.T) {
	r := NewSessionRegistry()

	r.Remove(testConn("ghost", "nobody"))
	assert.Equal(t, 0, r.UserCount())
}

func TestSessionRegistryDistinctUsers(t *testing.T) {
	r := NewSessionRegistry()

	r.Add(testConn("conn-1", "alice"))
	r.Add(testConn("conn-2", "bob"))

	assert.Equal(t, 2, r.UserCount())
	assert.Len(t, r.Connections("alice"), 1)
	assert.Len(t, r.Connections("bob"), 1)
	assert.Nil(t, r.Connections("carol"))
}
