package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankincense-labs/cx-management/internal/application/identity"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

func TestSessionTokenService_IssueAndVerify(t *testing.T) {
	svc := NewSessionTokenService("test-secret", 60)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	signedIn := now.Add(-2 * time.Hour)
	token, exp, err := svc.Issue(&identity.AuthSession{
		PrincipalID: "uid-1",
		Email:       "jane@example.com",
		Method:      vo.AuthMethodPassword,
		DisplayName: "Jane",
		IssuedAt:    signedIn,
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.PrincipalID)

	session := claims.Session()
	assert.Equal(t, "jane@example.com", session.Email)
	assert.Equal(t, vo.AuthMethodPassword, session.Method)
	assert.True(t, session.IssuedAt.Equal(signedIn))
}

func TestSessionTokenService_Expired(t *testing.T) {
	svc := NewSessionTokenService("test-secret", 1)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	token, _, err := svc.Issue(&identity.AuthSession{PrincipalID: "uid-1"})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = svc.Verify(token)
	assert.True(t, errors.IsAuthErrorType(err, errors.ErrorTypeTokenExpired))
}

func TestSessionTokenService_RejectsForeignSignature(t *testing.T) {
	issuer := NewSessionTokenService("other-secret", 60)
	token, _, err := issuer.Issue(&identity.AuthSession{PrincipalID: "uid-1"})
	require.NoError(t, err)

	_, err = NewSessionTokenService("test-secret", 60).Verify(token)
	assert.True(t, errors.IsAuthErrorType(err, errors.ErrorTypeTokenInvalid))

	_, err = NewSessionTokenService("test-secret", 60).Verify("not-a-token")
	assert.True(t, errors.IsAuthErrorType(err, errors.ErrorTypeTokenInvalid))
}

func TestSessionTokenService_ShouldRefresh(t *testing.T) {
	svc := NewSessionTokenService("test-secret", 60)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	token, _, err := svc.Issue(&identity.AuthSession{PrincipalID: "uid-1"})
	require.NoError(t, err)
	claims, err := svc.Verify(token)
	require.NoError(t, err)

	assert.False(t, svc.ShouldRefresh(claims))
	now = now.Add(50 * time.Minute)
	assert.True(t, svc.ShouldRefresh(claims))
}

func TestBcryptPasswordHasher(t *testing.T) {
	h := NewBcryptPasswordHasher(4)

	hash, err := h.Hash("Secret#123")
	require.NoError(t, err)
	assert.NoError(t, h.Verify("Secret#123", hash))
	assert.Error(t, h.Verify("secret#123", hash))
	assert.Error(t, h.Verify("Secret#123", "not-a-hash"))
}
