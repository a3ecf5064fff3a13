package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseRoundTrip(t *testing.T) {
	token, err := GenerateToken(&Claims{UserID: "u1", Role: "founder", Name: "Alice"}, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "founder", claims.Role)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, TokenIssuer, claims.Issuer)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(&Claims{UserID: "u1"}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "a-different-secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	claims := &Claims{UserID: "u1"}
	claims.StandardClaims = gojwt.StandardClaims{
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	assert.Error(t, err)
}

func TestParseTokenRejectsMissingUserID(t *testing.T) {
	token, err := GenerateToken(&Claims{Name: "Nobody"}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestGenerateTokenAppliesDefaultExpiration(t *testing.T) {
	token, err := GenerateToken(&Claims{UserID: "u1"}, testSecret, 0)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)

	remaining := time.Until(time.Unix(claims.ExpiresAt, 0))
	assert.Greater(t, remaining, 23*time.Hour)
}
