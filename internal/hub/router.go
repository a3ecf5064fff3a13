package hub

import (
	"encoding/json"

	"venturehub/internal/pkg/errs"
	"venturehub/internal/pkg/randx"
)

// dispatch routes one inbound frame from the read pump. Any inbound frame,
// well-formed or not, counts as liveness. Protocol errors are answered with an
// ERROR frame on the offending connection; the connection itself stays open.
func (h *Hub) dispatch(c *Connection, payload []byte) {
	c.markAlive()

	var probe struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		c.logger.Debug().Err(err).Msg("Malformed inbound frame")
		c.sendError(errs.NewError(errs.ErrInvalidMessageFormat))
		return
	}
	if probe.Type == "" {
		c.sendError(errs.NewError(errs.ErrInvalidMessageFormat))
		return
	}

	switch probe.Type {
	case TypeJoinRoom:
		h.handleJoinRoom(c, payload)
	case TypeLeaveRoom:
		h.handleLeaveRoom(c, payload)
	case TypeSendMessage:
		h.handleSendMessage(c, payload)
	case TypeTypingStart:
		h.handleTyping(c, payload, TypeUserTyping)
	case TypeTypingStop:
		h.handleTyping(c, payload, TypeUserStoppedTyping)
	case TypeCollaborativeEdit:
		h.handleCollaborativeEdit(c, payload)
	case TypeVentureUpdate:
		h.handleDomainUpdate(c, payload, ventureRoomPrefix)
	case TypeTeamUpdate:
		h.handleDomainUpdate(c, payload, teamRoomPrefix)
	case TypeProjectUpdate:
		h.handleDomainUpdate(c, payload, projectRoomPrefix)
	case TypeNotificationRead:
		h.handleNotificationRead(c, payload)
	case TypePing:
		c.enqueue(NewEnvelope(TypePong, nil))
	default:
		c.logger.Debug().Str("msg_type", string(probe.Type)).Msg("Unknown inbound message type")
		c.sendError(errs.NewError(errs.ErrUnknownMessageType))
	}
}

// resolveRoom picks the explicit room id if present, otherwise the
// connection's active room set by its last JOIN_ROOM.
func (c *Connection) resolveRoom(explicit string) (string, *errs.CustomError) {
	if explicit != "" {
		return explicit, nil
	}
	if active := c.ActiveRoom(); active != "" {
		return active, nil
	}
	return "", errs.NewError(errs.ErrRoomRequired)
}

func decodePayload(c *Connection, payload []byte, dst any) bool {
	if err := json.Unmarshal(payload, dst); err != nil {
		c.logger.Debug().Err(err).Msg("Invalid inbound payload")
		c.sendError(errs.NewError(errs.ErrInvalidMessagePayload, "could not decode fields"))
		return false
	}
	return true
}

func (h *Hub) handleJoinRoom(c *Connection, payload []byte) {
	var msg joinRoomPayload
	if !decodePayload(c, payload, &msg) {
		return
	}
	if msg.RoomID == "" {
		c.sendError(errs.NewError(errs.ErrInvalidMessagePayload, "roomId is required"))
		return
	}

	h.rooms.Join(msg.RoomID, c)
	c.setActiveRoom(msg.RoomID)

	identity := c.Identity()
	h.BroadcastToRoom(msg.RoomID, NewEnvelope(TypeUserJoined, userEventData{
		UserID:   identity.UserID,
		UserName: identity.Name,
		RoomID:   msg.RoomID,
	}), c.ID())

	c.logger.Debug().Str("room_id", msg.RoomID).Msg("Joined room")
}

func (h *Hub) handleLeaveRoom(c *Connection, payload []byte) {
	var msg leaveRoomPayload
	if !decodePayload(c, payload, &msg) {
		return
	}

	roomID, customErr := c.resolveRoom(msg.RoomID)
	if customErr != nil {
		c.sendError(customErr)
		return
	}

	// Leaving a room the connection never joined is a silent no-op.
	if !h.rooms.Leave(roomID, c) {
		return
	}
	c.clearActiveRoom(roomID)

	identity := c.Identity()
	h.BroadcastToRoom(roomID, NewEnvelope(TypeUserLeft, userEventData{
		UserID:   identity.UserID,
		UserName: identity.Name,
		RoomID:   roomID,
	}))

	c.logger.Debug().Str("room_id", roomID).Msg("Left room")
}

func (h *Hub) handleSendMessage(c *Connection, payload []byte) {
	var msg sendMessagePayload
	if !decodePayload(c, payload, &msg) {
		return
	}

	roomID, customErr := c.resolveRoom(msg.RoomID)
	if customErr != nil {
		c.sendError(customErr)
		return
	}
	if msg.Content == "" {
		c.sendError(errs.NewError(errs.ErrInvalidMessagePayload, "content is required"))
		return
	}

	identity := c.Identity()
	// The sender receives its own message back, echo doubles as the delivery ack.
	h.BroadcastToRoom(roomID, NewEnvelope(TypeChatMessage, chatMessageData{
		ID:       randx.MessageID(),
		RoomID:   roomID,
		UserID:   identity.UserID,
		UserName: identity.Name,
		Content:  msg.Content,
	}))
}

func (h *Hub) handleTyping(c *Connection, payload []byte, outType MessageType) {
	var msg typingPayload
	if !decodePayload(c, payload, &msg) {
		return
	}

	roomID, customErr := c.resolveRoom(msg.RoomID)
	if customErr != nil {
		c.sendError(customErr)
		return
	}

	identity := c.Identity()
	h.BroadcastToRoom(roomID, NewEnvelope(outType, userEventData{
		UserID:   identity.UserID,
		UserName: identity.Name,
		RoomID:   roomID,
	}), c.ID())
}

func (h *Hub) handleCollaborativeEdit(c *Connection, payload []byte) {
	var msg collaborativeEditPayload
	if !decodePayload(c, payload, &msg) {
		return
	}
	if msg.DocumentID == "" || msg.Operation == "" {
		c.sendError(errs.NewError(errs.ErrInvalidMessagePayload, "documentId and operation are required"))
		return
	}

	roomID := documentRoomPrefix + msg.DocumentID
	h.BroadcastToRoom(roomID, NewEnvelope(TypeCollaborativeEdit, collaborativeEditData{
		DocumentID: msg.DocumentID,
		UserID:     c.Identity().UserID,
		Operation:  msg.Operation,
		Content:    msg.Content,
		Position:   msg.Position,
	}), c.ID())
}

// handleDomainUpdate covers venture, team, and project updates, which differ
// only in their id field and room prefix. The update goes to everyone in the
// entity's room, sender included, so all of the sender's views refresh too.
func (h *Hub) handleDomainUpdate(c *Connection, payload []byte, roomPrefix string) {
	var msg domainUpdatePayload
	if !decodePayload(c, payload, &msg) {
		return
	}

	var entityID string
	switch roomPrefix {
	case ventureRoomPrefix:
		entityID = msg.VentureID
	case teamRoomPrefix:
		entityID = msg.TeamID
	case projectRoomPrefix:
		entityID = msg.ProjectID
	}
	if entityID == "" {
		c.sendError(errs.NewError(errs.ErrInvalidMessagePayload, "entity id is required"))
		return
	}
	if msg.UpdateType == "" {
		c.sendError(errs.NewError(errs.ErrInvalidMessagePayload, "updateType is required"))
		return
	}

	roomID := roomPrefix + entityID
	h.BroadcastToRoom(roomID, NewEnvelope(msg.Type, domainUpdateData{
		EntityID:   entityID,
		RoomID:     roomID,
		UserID:     c.Identity().UserID,
		UpdateType: msg.UpdateType,
		Data:       msg.Data,
	}))
}

func (h *Hub) handleNotificationRead(c *Connection, payload []byte) {
	var msg notificationReadPayload
	if !decodePayload(c, payload, &msg) {
		return
	}
	if msg.NotificationID == "" {
		c.sendError(errs.NewError(errs.ErrInvalidMessagePayload, "notificationId is required"))
		return
	}

	c.enqueue(NewEnvelope(TypeNotificationReadConfirmed, notificationReadConfirmedData{
		NotificationID: msg.NotificationID,
	}))
}
