package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := JWTManager{Secret: []byte("secret"), Issuer: "authflow", SessionTTL: time.Hour}

	token, ttl, err := manager.IssueSessionToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)

	claims, err := manager.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "authflow", claims.Issuer)
}

func TestJWTManager_DefaultTTL(t *testing.T) {
	manager := JWTManager{Secret: []byte("secret")}

	_, ttl, err := manager.IssueSessionToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, ttl)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	issuer := JWTManager{Secret: []byte("secret"), SessionTTL: time.Hour}
	verifier := JWTManager{Secret: []byte("other"), SessionTTL: time.Hour}

	token, _, err := issuer.IssueSessionToken("user-1")
	require.NoError(t, err)

	_, err = verifier.ParseSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	manager := JWTManager{Secret: []byte("secret"), SessionTTL: -time.Minute}

	token, _, err := manager.IssueSessionToken("user-1")
	require.NoError(t, err)

	_, err = manager.ParseSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	manager := JWTManager{Secret: []byte("secret")}
	_, err := manager.ParseSessionToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
