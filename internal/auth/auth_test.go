package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword("correct horse battery staple", hash))
	assert.False(t, CheckPassword("wrong password", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := HashPassword("password123")
	require.NoError(t, err)
	second, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSessionJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-session-secret")

	token, err := GenerateJWT(7, "alice@example.com")
	require.NoError(t, err)

	parsed, err := VerifyJWT(token)
	require.NoError(t, err)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, "alice@example.com", claims["email"])
}

func TestSessionJWTRejectsWrongSecret(t *testing.T) {
	SetJWTSecret("test-session-secret")
	token, err := GenerateJWT(7, "alice@example.com")
	require.NoError(t, err)

	SetJWTSecret("a-different-secret")
	_, err = VerifyJWT(token)
	assert.Error(t, err)
}

func TestSessionJWTRejectsGarbage(t *testing.T) {
	SetJWTSecret("test-session-secret")

	_, err := VerifyJWT("not.a.token")
	assert.Error(t, err)
}
