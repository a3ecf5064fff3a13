/*
Package randx provides generation of unique identifiers used on the wire.
*/
package randx

import "github.com/google/uuid"

// MessageID generates a UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// ConnectionID generates a UUID v4 string identifying a single websocket connection.
func ConnectionID() string {
	return uuid.New().String()
}
