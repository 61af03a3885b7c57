package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager(t *testing.T) JWTManagerInterface {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	manager, err := NewJWTManager()
	require.NoError(t, err)
	return manager
}

func TestNewJWTManager_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := NewJWTManager()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	manager := newTestJWTManager(t)

	token, err := manager.GenerateAccessJWT("user-1", "john@example.com", "John", time.Minute)
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.Equal(t, "John", claims.Name)
}

func TestAccessToken_Expired(t *testing.T) {
	manager := newTestJWTManager(t)

	token, err := manager.GenerateAccessJWT("user-1", "john@example.com", "John", -time.Minute)
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredJWTToken)
}

func TestAccessToken_Garbage(t *testing.T) {
	manager := newTestJWTManager(t)

	_, err := manager.ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}

func TestRefreshToken_BoundToHashToken(t *testing.T) {
	manager := newTestJWTManager(t)

	token, err := manager.GenerateRefreshJWT("user-1", "hash-a", time.Hour)
	require.NoError(t, err)

	assert.NoError(t, manager.ValidateRefreshToken(token, "hash-a"))

	// rotating the hash token must invalidate the refresh token
	assert.ErrorIs(t, manager.ValidateRefreshToken(token, "hash-b"), ErrInvalidJWTRefreshToken)
}

func TestRefreshToken_ExtractUserID(t *testing.T) {
	manager := newTestJWTManager(t)

	token, err := manager.GenerateRefreshJWT("user-7", "hash-a", time.Hour)
	require.NoError(t, err)

	userID, err := manager.ExtractUserIDFromRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", userID)
}

func TestSessionManager_Lifecycle(t *testing.T) {
	sm := NewSessionManager()

	token, err := sm.GenerateSessionToken("user-1", time.Minute)
	require.NoError(t, err)

	userID, err := sm.VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	sm.DeleteSessionToken(token)
	_, err = sm.VerifySessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestSessionManager_Expired(t *testing.T) {
	sm := NewSessionManager()

	token, err := sm.GenerateSessionToken("user-1", -time.Second)
	require.NoError(t, err)

	_, err = sm.VerifySessionToken(token)
	assert.ErrorIs(t, err, ErrExpiredSessionToken)
}

func TestSessionManager_CleanupExpired(t *testing.T) {
	sm := NewSessionManager()

	expired, err := sm.GenerateSessionToken("user-1", -time.Second)
	require.NoError(t, err)
	live, err := sm.GenerateSessionToken("user-2", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 1, sm.CleanupExpired())

	_, err = sm.VerifySessionToken(expired)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
	userID, err := sm.VerifySessionToken(live)
	require.NoError(t, err)
	assert.Equal(t, "user-2", userID)
}
