package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/frankincense-labs/cx-management/internal/application/identity"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/testutil"
)

type fakeGoogle struct {
	server   *httptest.Server
	subject  atomic.Value
	verifier atomic.Value
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	f := &fakeGoogle{}
	f.subject.Store("google-sub-1")

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		f.verifier.Store(r.PostForm.Get("code_verifier"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             f.subject.Load(),
			"email":          "Jane@Gmail.com",
			"verified_email": true,
			"name":           "Jane Doe",
		})
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func newTestAuthenticator(t *testing.T, timeout time.Duration) (*GooglePopupAuthenticator, *memoryCredentialRepository, *fakeGoogle) {
	t.Helper()
	f := newFakeGoogle(t)
	client := NewGoogleOAuthClient(GoogleOAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost/callback",
	})
	client.config.Endpoint = oauth2.Endpoint{
		AuthURL:   f.server.URL + "/auth",
		TokenURL:  f.server.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	client.userInfoURL = f.server.URL + "/userinfo"

	repo := newMemoryCredentialRepository()
	return NewGooglePopupAuthenticator(client, repo, timeout, testutil.NewMockLogger()), repo, f
}

// approvingOpener completes the flow as soon as the popup opens.
func approvingOpener(t *testing.T, a *GooglePopupAuthenticator, errParam string) identity.PopupOpener {
	return identity.PopupOpenerFunc(func(_ context.Context, authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, "S256", q.Get("code_challenge_method"))
		assert.NotEmpty(t, q.Get("code_challenge"))
		code := "code-1"
		if errParam != "" {
			code = ""
		}
		return a.Complete(q.Get("state"), code, errParam)
	})
}

func TestGooglePopupAuthenticator_SignInCreatesCredential(t *testing.T) {
	a, repo, f := newTestAuthenticator(t, time.Second)

	session, err := a.SignIn(context.Background(), approvingOpener(t, a, ""))
	require.NoError(t, err)
	assert.Equal(t, vo.AuthMethodGoogle, session.Method)
	assert.Equal(t, "jane@gmail.com", session.Email)
	assert.Equal(t, "Jane Doe", session.DisplayName)
	assert.NotEmpty(t, f.verifier.Load())
	assert.Equal(t, 1, repo.len())
	assert.Zero(t, a.Pending())

	again, err := a.SignIn(context.Background(), approvingOpener(t, a, ""))
	require.NoError(t, err)
	assert.Equal(t, session.PrincipalID, again.PrincipalID)
	assert.Equal(t, 1, repo.len())
}

func TestGooglePopupAuthenticator_UserCancels(t *testing.T) {
	a, repo, _ := newTestAuthenticator(t, time.Second)

	_, err := a.SignIn(context.Background(), approvingOpener(t, a, "access_denied"))
	assert.True(t, errors.IsAuthErrorType(err, errors.ErrorTypePopupCancelled))
	assert.Zero(t, repo.len())
}

func TestGooglePopupAuthenticator_PopupBlocked(t *testing.T) {
	a, _, _ := newTestAuthenticator(t, time.Second)

	_, err := a.SignIn(context.Background(), identity.PopupOpenerFunc(func(context.Context, string) error {
		return assert.AnError
	}))
	assert.True(t, errors.IsAuthErrorType(err, errors.ErrorTypePopupBlocked))
	assert.Zero(t, a.Pending())
}

func TestGooglePopupAuthenticator_TimesOut(t *testing.T) {
	a, _, _ := newTestAuthenticator(t, 20*time.Millisecond)

	_, err := a.SignIn(context.Background(), identity.PopupOpenerFunc(func(context.Context, string) error {
		return nil
	}))
	assert.True(t, errors.IsAuthErrorType(err, errors.ErrorTypePopupCancelled))
}

func TestGooglePopupAuthenticator_UnknownState(t *testing.T) {
	a, _, _ := newTestAuthenticator(t, time.Second)

	err := a.Complete("forged", "code", "")
	assert.True(t, errors.IsAuthErrorType(err, errors.ErrorTypeOAuthError))
}

func TestGooglePopupAuthenticator_Reauthenticate(t *testing.T) {
	a, _, f := newTestAuthenticator(t, time.Second)
	ctx := context.Background()

	session, err := a.SignIn(ctx, approvingOpener(t, a, ""))
	require.NoError(t, err)
	assert.NoError(t, a.Reauthenticate(ctx, session, approvingOpener(t, a, "")))

	f.subject.Store("google-sub-2")
	err = a.Reauthenticate(ctx, session, approvingOpener(t, a, ""))
	assert.True(t, errors.IsAuthErrorType(err, errors.ErrorTypeReauthRequired))
}

func TestGooglePopupAuthenticator_NotConfigured(t *testing.T) {
	a := NewGooglePopupAuthenticator(NewGoogleOAuthClient(GoogleOAuthConfig{}), newMemoryCredentialRepository(), time.Second, testutil.NewMockLogger())

	_, err := a.SignIn(context.Background(), identity.PopupOpenerFunc(func(context.Context, string) error {
		t.Fatal("popup must not open")
		return nil
	}))
	assert.True(t, errors.IsAuthErrorType(err, errors.ErrorTypeOAuthError))
}

func TestTokenResolver(t *testing.T) {
	tokens := NewSessionTokenService("test-secret", 60)
	repo := newMemoryCredentialRepository()
	svc := NewPasswordCredentialService(repo, NewBcryptPasswordHasher(4), nil, 0, testutil.NewMockLogger())
	ctx := context.Background()

	email, _ := vo.NewEmail("jane@example.com")
	password, _ := vo.NewPassword("Secret#123")
	session, err := svc.CreateAccount(ctx, email, password)
	require.NoError(t, err)

	token, _, err := tokens.Issue(session)
	require.NoError(t, err)

	restored, err := NewTokenResolver(tokens, repo, token).Resolve(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, session.PrincipalID, restored.PrincipalID)

	none, err := NewTokenResolver(tokens, repo, "").Resolve(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.Delete(ctx, session.PrincipalID))
	gone, err := NewTokenResolver(tokens, repo, token).Resolve(ctx)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
