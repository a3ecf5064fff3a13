/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific protocol or system errors both internally
within the hub and in messages sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Websocket Protocol Errors
const (
	// ErrInvalidMessageFormat indicates a frame that is not valid JSON or lacks a type field.
	ErrInvalidMessageFormat = 2001

	// ErrUnknownMessageType indicates a parseable frame whose type is not in the catalogue.
	ErrUnknownMessageType = 2002

	// ErrRoomRequired indicates a room-scoped message sent with no room id and no active room.
	ErrRoomRequired = 2003

	// ErrInvalidMessagePayload indicates a recognized type whose payload fails validation.
	ErrInvalidMessagePayload = 2004
)

// 3xxx: Authentication Errors
const (
	// ErrUnauthorized indicates a missing, malformed, or invalid bearer credential.
	ErrUnauthorized = 3001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
