package jwt

import "github.com/golang-jwt/jwt"

// Claims defines the structure of the JSON Web Token claims accepted by the hub.
// It includes the standard claims required by the JWT specification and the
// custom claims that identify a platform user on the realtime surface.
type Claims struct {
	// StandardClaims embeds the standard JWT fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer), required for token validity checks.
	jwt.StandardClaims

	// UserID is the platform-wide identifier of the token holder.
	UserID string `json:"userId"`

	// Role is the holder's platform role (e.g. "member", "admin", "service").
	Role string `json:"role,omitempty"`

	// Name is the holder's display name, echoed into presence events.
	Name string `json:"name,omitempty"`
}
