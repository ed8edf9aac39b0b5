package identity

import (
	"context"
	"sync"
	"time"

	"github.com/frankincense-labs/cx-management/internal/domain/user"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/testutil"
)

type mockCredentialService struct {
	CreateAccountFunc  func(ctx context.Context, email *vo.Email, password *vo.Password) (*AuthSession, error)
	SignInFunc         func(ctx context.Context, email, password string) (*AuthSession, error)
	ReauthenticateFunc func(ctx context.Context, session *AuthSession, password string) error
	DeleteAccountFunc  func(ctx context.Context, principalID string) error
	SignOutFunc        func(ctx context.Context, session *AuthSession) error

	mu    sync.Mutex
	calls []string
}

func (m *mockCredentialService) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

func (m *mockCredentialService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockCredentialService) CreateAccount(ctx context.Context, email *vo.Email, password *vo.Password) (*AuthSession, error) {
	m.record("CreateAccount")
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, email, password)
	}
	return &AuthSession{PrincipalID: "new-principal", Email: email.String(), Method: vo.AuthMethodPassword, IssuedAt: time.Now()}, nil
}

func (m *mockCredentialService) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	m.record("SignIn")
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return nil, errors.NewInvalidCredentialsError()
}

func (m *mockCredentialService) Reauthenticate(ctx context.Context, session *AuthSession, password string) error {
	m.record("Reauthenticate")
	if m.ReauthenticateFunc != nil {
		return m.ReauthenticateFunc(ctx, session, password)
	}
	return nil
}

func (m *mockCredentialService) DeleteAccount(ctx context.Context, principalID string) error {
	m.record("DeleteAccount")
	if m.DeleteAccountFunc != nil {
		return m.DeleteAccountFunc(ctx, principalID)
	}
	return nil
}

func (m *mockCredentialService) SignOut(ctx context.Context, session *AuthSession) error {
	m.record("SignOut")
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, session)
	}
	return nil
}

type mockFederatedAuthenticator struct {
	SignInFunc         func(ctx context.Context, opener PopupOpener) (*AuthSession, error)
	ReauthenticateFunc func(ctx context.Context, session *AuthSession, opener PopupOpener) error
}

func (m *mockFederatedAuthenticator) SignIn(ctx context.Context, opener PopupOpener) (*AuthSession, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, opener)
	}
	return nil, errors.NewPopupCancelledError()
}

func (m *mockFederatedAuthenticator) Reauthenticate(ctx context.Context, session *AuthSession, opener PopupOpener) error {
	if m.ReauthenticateFunc != nil {
		return m.ReauthenticateFunc(ctx, session, opener)
	}
	return nil
}

// memoryProfiles is an in-memory ProfileRepository. BeforeGet, when set, runs
// before every read and can block it.
type memoryProfiles struct {
	mu        sync.Mutex
	profiles  map[string]*user.Profile
	BeforeGet func(principalID string)
	GetErr    error
}

func newMemoryProfiles(profiles ...*user.Profile) *memoryProfiles {
	m := &memoryProfiles{profiles: make(map[string]*user.Profile)}
	for _, p := range profiles {
		m.profiles[p.ID()] = p
	}
	return m
}

func (m *memoryProfiles) Create(_ context.Context, p *user.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID()]; ok {
		return errors.NewConflictError("profile already exists")
	}
	m.profiles[p.ID()] = p
	return nil
}

func (m *memoryProfiles) GetByID(_ context.Context, id string) (*user.Profile, error) {
	if m.BeforeGet != nil {
		m.BeforeGet(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, errors.NewNotFoundError("profile not found")
	}
	return p, nil
}

func (m *memoryProfiles) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[id]; !ok {
		return errors.NewNotFoundError("profile not found")
	}
	delete(m.profiles, id)
	return nil
}

func (m *memoryProfiles) get(id string) (*user.Profile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	return p, ok
}

func mustProfile(id, email string, role vo.Role) *user.Profile {
	p, err := user.NewProfile(id, email, role, "")
	if err != nil {
		panic(err)
	}
	return p
}

func newTestStore(creds *mockCredentialService, fed *mockFederatedAuthenticator, profiles *memoryProfiles) *Store {
	if creds == nil {
		creds = &mockCredentialService{}
	}
	if fed == nil {
		fed = &mockFederatedAuthenticator{}
	}
	return NewStore(Dependencies{
		Credentials: creds,
		Federated:   fed,
		Profiles:    profiles,
		AdminCode:   "ADMIN2026",
		Logger:      testutil.NewMockLogger(),
	})
}

type recordingTransactor struct {
	calls  int
	result error
}

func (r *recordingTransactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	r.result = fn(ctx)
	return r.result
}

func sessionFor(id, email string, method vo.AuthMethod) *AuthSession {
	return &AuthSession{PrincipalID: id, Email: email, Method: method, IssuedAt: time.Now()}
}

func resolverFor(session *AuthSession) SessionResolver {
	return SessionResolverFunc(func(context.Context) (*AuthSession, error) { return session, nil })
}

var noPopup = PopupOpenerFunc(func(context.Context, string) error { return nil })
