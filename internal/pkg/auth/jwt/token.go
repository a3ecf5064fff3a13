package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// DefaultExpiration is the lifetime applied by GenerateToken when callers
	// have no policy of their own (primarily tooling and tests).
	DefaultExpiration = 24 * time.Hour

	// TokenIssuer identifies the issuer of tokens minted by GenerateToken.
	TokenIssuer = "VentureHub"
)

// GenerateToken creates and signs a new JWT string carrying the provided claims.
func GenerateToken(claims *Claims, secretKey string, duration time.Duration) (string, error) {
	if duration <= 0 {
		duration = DefaultExpiration
	}

	now := time.Now()
	claims.StandardClaims = jwt.StandardClaims{
		ExpiresAt: now.Add(duration).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secretKey))
}

// ParseToken parses and validates a JWT string using the provided secretKey,
// returning the embedded claims. Tokens signed with anything but HMAC are rejected.
func ParseToken(tokenString string, secretKey string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	if claims.UserID == "" {
		return nil, errors.New("token carries no user id")
	}

	return claims, nil
}
