/*
Package hub contains the core logic of the realtime websocket hub: connection
lifecycle, per-user and per-room membership registries, and the message router
that relays chat, collaboration, and notification events between clients.

This file defines the wire-level message catalogue. Every frame is a JSON text
message carrying a "type" field; outbound frames use the Envelope shape.
*/
package hub

import (
	"encoding/json"
	"time"

	"venturehub/internal/pkg/errs"
)

// MessageType identifies the kind of a websocket frame.
type MessageType string

// Inbound message types accepted by the router.
const (
	TypeJoinRoom          MessageType = "JOIN_ROOM"
	TypeLeaveRoom         MessageType = "LEAVE_ROOM"
	TypeSendMessage       MessageType = "SEND_MESSAGE"
	TypeTypingStart       MessageType = "TYPING_START"
	TypeTypingStop        MessageType = "TYPING_STOP"
	TypeCollaborativeEdit MessageType = "COLLABORATIVE_EDIT"
	TypeVentureUpdate     MessageType = "VENTURE_UPDATE"
	TypeTeamUpdate        MessageType = "TEAM_UPDATE"
	TypeProjectUpdate     MessageType = "PROJECT_UPDATE"
	TypeNotificationRead  MessageType = "NOTIFICATION_READ"
	TypePing              MessageType = "PING"
)

// Outbound message types.
const (
	TypeConnectionEstablished     MessageType = "CONNECTION_ESTABLISHED"
	TypeUserJoined                MessageType = "USER_JOINED"
	TypeUserLeft                  MessageType = "USER_LEFT"
	TypeChatMessage               MessageType = "CHAT_MESSAGE"
	TypeUserTyping                MessageType = "USER_TYPING"
	TypeUserStoppedTyping         MessageType = "USER_STOPPED_TYPING"
	TypeNotificationReadConfirmed MessageType = "NOTIFICATION_READ_CONFIRMED"
	TypePong                      MessageType = "PONG"
	TypeSystemNotification        MessageType = "SYSTEM_NOTIFICATION"
	TypeRealtimeUpdate            MessageType = "REALTIME_UPDATE"
	TypeError                     MessageType = "ERROR"
)

// Room name conventions for collaboration and domain-update channels.
const (
	documentRoomPrefix = "document_"
	ventureRoomPrefix  = "venture_"
	teamRoomPrefix     = "team_"
	projectRoomPrefix  = "project_"
)

// Envelope is the wire shape of every outbound frame.
type Envelope struct {
	Type      MessageType `json:"type"`
	Data      any         `json:"data,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`

	// Message and Code are set on ERROR frames only.
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// NewEnvelope builds an outbound envelope stamped with the current server time.
func NewEnvelope(msgType MessageType, data any) Envelope {
	return Envelope{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewErrorEnvelope builds an ERROR frame from a CustomError.
func NewErrorEnvelope(customErr *errs.CustomError) Envelope {
	return Envelope{
		Type:      TypeError,
		Message:   customErr.Message,
		Code:      customErr.Code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Inbound payloads. Each frame is first inspected for its type, then decoded
// a second time into the matching variant, so unknown fields in one type can
// never bleed into another.

type joinRoomPayload struct {
	Type   MessageType `json:"type"`
	RoomID string      `json:"roomId"`
}

type leaveRoomPayload struct {
	Type   MessageType `json:"type"`
	RoomID string      `json:"roomId"`
}

type sendMessagePayload struct {
	Type    MessageType `json:"type"`
	RoomID  string      `json:"roomId,omitempty"`
	Content string      `json:"content"`
}

type typingPayload struct {
	Type   MessageType `json:"type"`
	RoomID string      `json:"roomId,omitempty"`
}

type collaborativeEditPayload struct {
	Type       MessageType     `json:"type"`
	DocumentID string          `json:"documentId"`
	Operation  string          `json:"operation"`
	Content    json.RawMessage `json:"content,omitempty"`
	Position   int             `json:"position"`
}

type domainUpdatePayload struct {
	Type       MessageType     `json:"type"`
	VentureID  string          `json:"ventureId,omitempty"`
	TeamID     string          `json:"teamId,omitempty"`
	ProjectID  string          `json:"projectId,omitempty"`
	UpdateType string          `json:"updateType"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type notificationReadPayload struct {
	Type           MessageType `json:"type"`
	NotificationID string      `json:"notificationId"`
}

// Outbound payloads.

type connectionEstablishedData struct {
	UserID string `json:"userId"`
}

type userEventData struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
	RoomID   string `json:"roomId"`
}

type chatMessageData struct {
	ID       string `json:"id"`
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
	Content  string `json:"content"`
}

type collaborativeEditData struct {
	DocumentID string          `json:"documentId"`
	UserID     string          `json:"userId"`
	Operation  string          `json:"operation"`
	Content    json.RawMessage `json:"content,omitempty"`
	Position   int             `json:"position"`
}

type domainUpdateData struct {
	EntityID   string          `json:"entityId"`
	RoomID     string          `json:"roomId"`
	UserID     string          `json:"userId"`
	UpdateType string          `json:"updateType"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type notificationReadConfirmedData struct {
	NotificationID string `json:"notificationId"`
}

type systemNotificationData struct {
	Title   string          `json:"title,omitempty"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type realtimeUpdateData struct {
	UpdateType string          `json:"updateType"`
	Data       json.RawMessage `json:"data,omitempty"`
}
