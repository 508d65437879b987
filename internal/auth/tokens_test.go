package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	userID := uuid.New()

	signed, err := tokens.SignAccess(userID, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := tokens.VerifyAccess(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestInvitationTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	projectID := uuid.New()

	signed, err := tokens.SignInvitation("invitee@example.com", projectID)
	require.NoError(t, err)

	claims, err := tokens.VerifyInvitation(signed)
	require.NoError(t, err)
	assert.Equal(t, "invitee@example.com", claims.Email)
	assert.Equal(t, projectID, claims.ProjectID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := NewTokens("secret-a", time.Hour).SignAccess(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = NewTokens("secret-b", time.Hour).VerifyAccess(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tokens := NewTokens("test-secret", time.Minute)
	signed, err := tokens.SignAccess(uuid.New(), "user@example.com")
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tokens.VerifyAccess(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	_, err := tokens.VerifyAccess("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.VerifyInvitation("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenShapesNotInterchangeable(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	invitation, err := tokens.SignInvitation("invitee@example.com", uuid.New())
	require.NoError(t, err)

	// An invitation token carries no user id, so access verification fails.
	_, err = tokens.VerifyAccess(invitation)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokensDefaultTTL(t *testing.T) {
	tokens := NewTokens("test-secret", 0)
	assert.Equal(t, DefaultTTL, tokens.ttl)
}
