package auth

import (
	"testing"
	"time"

	"calculations-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("test-secret", 30*time.Minute)
	user := &models.User{ID: 1, Username: "alice"}

	token, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)
	user := &models.User{ID: 1, Username: "alice"}

	token, err := svc.Issue(user)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongKey(t *testing.T) {
	issuer := NewService("test-secret", 30*time.Minute)
	verifier := NewService("other-secret", 30*time.Minute)

	token, err := issuer.Issue(&models.User{Username: "alice"})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := NewService("test-secret", 30*time.Minute)

	for _, token := range []string{"", "garbage", "invalid.token.here"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("TestPass123")
	require.NoError(t, err)
	assert.NotEqual(t, "TestPass123", hash)

	assert.True(t, CheckPassword(hash, "TestPass123"))
	assert.False(t, CheckPassword(hash, "WrongPass123"))
}
