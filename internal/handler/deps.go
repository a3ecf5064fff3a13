/*
Package handler wires the HTTP surface of the realtime hub: the websocket
entry point, the health probe, and the service API used by trusted backend
services to push notifications and broadcasts.
*/
package handler

import (
	"venturehub/internal/configs"
	"venturehub/internal/hub"
	"venturehub/internal/pkg/auth/jwt"
)

// TokenVerifier validates a client-presented token and returns the identity it
// proves. Verification happens before the websocket upgrade.
type TokenVerifier interface {
	Verify(token string) (hub.Identity, error)
}

// AppDeps carries the shared dependencies injected into every HTTP handler.
type AppDeps struct {
	Hub      *hub.Hub
	Config   *configs.AppConfig
	Verifier TokenVerifier
}

// JWTVerifier verifies HMAC-signed JWTs issued by the platform's auth service.
type JWTVerifier struct {
	secret string
}

// NewJWTVerifier creates a verifier checking signatures against secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify implements TokenVerifier.
func (v *JWTVerifier) Verify(token string) (hub.Identity, error) {
	claims, err := jwt.ParseToken(token, v.secret)
	if err != nil {
		return hub.Identity{}, err
	}

	return hub.Identity{
		UserID: claims.UserID,
		Role:   claims.Role,
		Name:   claims.Name,
	}, nil
}
