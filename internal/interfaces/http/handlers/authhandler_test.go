package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankincense-labs/cx-management/internal/application/identity"
	"github.com/frankincense-labs/cx-management/internal/application/identity/dto"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/testutil"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

// =====================================================================
// Mocks
// =====================================================================

type mockSessionStore struct {
	mu       sync.Mutex
	state    identity.State
	session  *identity.AuthSession
	err      error
	signUpIn identity.SignUpInput
	password string

	// federated is called from SignInFederated and DeleteAccount for
	// federated sessions.
	federated func(ctx context.Context, opener identity.PopupOpener) error
}

func (m *mockSessionStore) Current() identity.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *mockSessionStore) Session() *identity.AuthSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *mockSessionStore) SignUp(ctx context.Context, in identity.SignUpInput) (identity.State, error) {
	m.signUpIn = in
	return m.state, m.err
}

func (m *mockSessionStore) SignIn(ctx context.Context, email, password string) (identity.State, error) {
	m.password = password
	return m.state, m.err
}

func (m *mockSessionStore) SignInFederated(ctx context.Context, opener identity.PopupOpener) (identity.State, error) {
	if m.federated != nil {
		return m.state, m.federated(ctx, opener)
	}
	return m.state, m.err
}

func (m *mockSessionStore) SignOut(ctx context.Context) identity.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.state = identity.State{Phase: identity.PhaseSignedOut, Version: m.state.Version + 1}
	return m.state
}

func (m *mockSessionStore) DeleteAccount(ctx context.Context, password string, opener identity.PopupOpener) (identity.State, error) {
	m.password = password
	if opener != nil && m.federated != nil {
		return m.state, m.federated(ctx, opener)
	}
	return m.state, m.err
}

type mockTokenSyncer struct {
	calls int
}

func (m *mockTokenSyncer) SyncToken(c *gin.Context, store middleware.SessionSource) {
	m.calls++
}

type mockCompleter struct {
	err   error
	state string
	code  string
}

func (m *mockCompleter) Complete(state, code, errParam string) error {
	m.state = state
	m.code = code
	return m.err
}

func signedInState(role uservo.Role, confirmed bool) identity.State {
	r := identity.Unconfirmed()
	if confirmed {
		r = identity.Confirmed(role)
	}
	return identity.State{
		Phase:   identity.PhaseSignedIn,
		Version: 2,
		Principal: &identity.Principal{
			ID:     "p-1",
			Email:  "cust@example.com",
			Method: uservo.AuthMethodPassword,
			Role:   r,
		},
	}
}

func newTestAuthHandler(completer CallbackCompleter) (*AuthHandler, *mockTokenSyncer) {
	tokens := &mockTokenSyncer{}
	h := NewAuthHandler(tokens, completer, time.Minute, []string{"https://portal.example.com"}, testutil.NewMockLogger())
	return h, tokens
}

func parseSession(t *testing.T, w *httptest.ResponseRecorder) (*testutil.APIResponse, *dto.SessionDTO) {
	t.Helper()
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var session dto.SessionDTO
	if resp.Success {
		require.NoError(t, json.Unmarshal(resp.Data, &session))
	}
	return &resp, &session
}

// =====================================================================
// Tests
// =====================================================================

func TestAuthHandler_SignUp(t *testing.T) {
	store := &mockSessionStore{state: signedInState(uservo.RoleCustomer, true)}
	h, tokens := newTestAuthHandler(&mockCompleter{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/signup", SignUpRequest{
		Email:       "cust@example.com",
		Password:    "secret1",
		DisplayName: "Cust",
	})
	testutil.SetStore(c, store)

	h.SignUp(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp, session := parseSession(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "signed_in", session.Phase)
	assert.Equal(t, "customer", session.Principal.Role)
	assert.Equal(t, "/customer/dashboard", session.Dashboard)
	assert.Equal(t, "Cust", store.signUpIn.DisplayName)
	assert.Equal(t, 1, tokens.calls)
}

func TestAuthHandler_SignUp_ValidationFailsBeforeStore(t *testing.T) {
	store := &mockSessionStore{}
	h, tokens := newTestAuthHandler(&mockCompleter{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/signup", SignUpRequest{Email: "not-an-email", Password: "123"})
	testutil.SetStore(c, store)

	h.SignUp(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp, _ := parseSession(t, w)
	assert.Equal(t, "validation_error", resp.Error.Type)
	assert.Empty(t, store.signUpIn.Email)
	assert.Zero(t, tokens.calls)
}

func TestAuthHandler_SignIn_MapsAuthErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid credentials", errors.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{"rate limited", errors.NewRateLimitedError(), http.StatusTooManyRequests},
		{"unexpected", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockSessionStore{err: tt.err}
			h, tokens := newTestAuthHandler(&mockCompleter{})

			c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/signin", SignInRequest{Email: "a@x.com", Password: "pw"})
			testutil.SetStore(c, store)

			h.SignIn(c)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Zero(t, tokens.calls)
		})
	}
}

func TestAuthHandler_SignIn_Success(t *testing.T) {
	store := &mockSessionStore{state: signedInState(uservo.RoleCustomer, false)}
	h, tokens := newTestAuthHandler(&mockCompleter{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/signin", SignInRequest{Email: "a@x.com", Password: "pw123456"})
	testutil.SetStore(c, store)

	h.SignIn(c)

	assert.Equal(t, http.StatusOK, w.Code)
	_, session := parseSession(t, w)
	assert.False(t, session.Principal.RoleConfirmed)
	assert.Empty(t, session.Dashboard)
	assert.Equal(t, "pw123456", store.password)
	assert.Equal(t, 1, tokens.calls)
}

func TestAuthHandler_SignOut(t *testing.T) {
	store := &mockSessionStore{state: signedInState(uservo.RoleAdmin, true), session: &identity.AuthSession{PrincipalID: "p-1"}}
	h, tokens := newTestAuthHandler(&mockCompleter{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/signout", nil)
	testutil.SetStore(c, store)

	h.SignOut(c)

	assert.Equal(t, http.StatusOK, w.Code)
	_, session := parseSession(t, w)
	assert.Equal(t, "signed_out", session.Phase)
	assert.Nil(t, session.Principal)
	assert.Equal(t, 1, tokens.calls)
}

func TestAuthHandler_MissingStore(t *testing.T) {
	h, _ := newTestAuthHandler(&mockCompleter{})
	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/signout", nil)

	h.SignOut(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_DeleteAccount_Password(t *testing.T) {
	store := &mockSessionStore{
		state:   identity.State{Phase: identity.PhaseSignedOut, Version: 5},
		session: &identity.AuthSession{PrincipalID: "p-1", Method: uservo.AuthMethodPassword},
	}
	h, tokens := newTestAuthHandler(&mockCompleter{})

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/auth/account", DeleteAccountRequest{Password: "secret1"})
	testutil.SetStore(c, store)

	h.DeleteAccount(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "secret1", store.password)
	assert.Equal(t, 1, tokens.calls)
}

func TestAuthHandler_DeleteAccount_WrongPassword(t *testing.T) {
	store := &mockSessionStore{
		session: &identity.AuthSession{PrincipalID: "p-1", Method: uservo.AuthMethodPassword},
		err:     errors.NewWrongPasswordError(),
	}
	h, _ := newTestAuthHandler(&mockCompleter{})

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/auth/account", DeleteAccountRequest{Password: "nope"})
	testutil.SetStore(c, store)

	h.DeleteAccount(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_DeleteAccount_NotSignedIn(t *testing.T) {
	h, _ := newTestAuthHandler(&mockCompleter{})
	c, w := testutil.NewTestContext(http.MethodDelete, "/api/auth/account", DeleteAccountRequest{})
	testutil.SetStore(c, &mockSessionStore{})

	h.DeleteAccount(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_DeleteAccount_FederatedStartsPopup(t *testing.T) {
	store := &mockSessionStore{
		session: &identity.AuthSession{PrincipalID: "p-1", Method: uservo.AuthMethodGoogle},
		federated: func(ctx context.Context, opener identity.PopupOpener) error {
			return opener.Open(ctx, "https://accounts.example.com/reauth")
		},
	}
	h, _ := newTestAuthHandler(&mockCompleter{})

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/auth/account", nil)
	testutil.SetStore(c, store)

	h.DeleteAccount(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "https://accounts.example.com/reauth")
}

func TestAuthHandler_StartGoogle_ReturnsConsentURL(t *testing.T) {
	release := make(chan struct{})
	store := &mockSessionStore{
		federated: func(ctx context.Context, opener identity.PopupOpener) error {
			if err := opener.Open(ctx, "https://accounts.example.com/o/oauth2/auth?state=abc"); err != nil {
				return err
			}
			<-release
			return nil
		},
	}
	h, _ := newTestAuthHandler(&mockCompleter{})
	defer close(release)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/federated/google", nil)
	testutil.SetStore(c, store)

	h.StartGoogle(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var start FederatedStartResponse
	require.NoError(t, json.Unmarshal(resp.Data, &start))
	assert.Equal(t, "https://accounts.example.com/o/oauth2/auth?state=abc", start.AuthURL)
}

func TestAuthHandler_StartGoogle_ConcurrentPopup(t *testing.T) {
	store := &mockSessionStore{err: errors.NewConcurrentPopupError()}
	h, _ := newTestAuthHandler(&mockCompleter{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/federated/google", nil)
	testutil.SetStore(c, store)

	h.StartGoogle(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_GoogleCallback(t *testing.T) {
	completer := &mockCompleter{}
	h, _ := newTestAuthHandler(completer)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/federated/google/callback?state=abc&code=xyz", nil)

	h.GoogleCallback(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", completer.state)
	assert.Equal(t, "xyz", completer.code)
	body := w.Body.String()
	assert.Contains(t, body, "Sign-in complete")
	assert.Contains(t, body, "portal.example.com")
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
}

func TestAuthHandler_GoogleCallback_UnknownState(t *testing.T) {
	h, _ := newTestAuthHandler(&mockCompleter{err: errors.NewOAuthError("google", "callback", "unknown or expired state")})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/federated/google/callback?state=zzz&code=xyz", nil)

	h.GoogleCallback(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Sign-in failed")
	assert.Contains(t, w.Body.String(), "This sign-in window has expired")
}

func TestAuthHandler_GoogleCallback_MissingState(t *testing.T) {
	completer := &mockCompleter{}
	h, _ := newTestAuthHandler(completer)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/federated/google/callback?code=xyz", nil)

	h.GoogleCallback(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, completer.code)
}
