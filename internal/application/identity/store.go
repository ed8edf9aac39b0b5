package identity

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frankincense-labs/cx-management/internal/domain/user"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/goroutine"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// Dependencies are the collaborators a Store needs.
type Dependencies struct {
	Credentials CredentialService
	Federated   FederatedAuthenticator
	Profiles    user.ProfileRepository
	// Transactions groups the profile and credential removal of an account
	// deletion. Without it the two deletes run independently.
	Transactions Transactor
	// AdminCode promotes a sign-up to admin when it matches exactly.
	AdminCode string
	Logger    logger.Interface
}

// SignUpInput carries the fields of the registration form.
type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
	RoleCode    string
}

// Store is the identity state machine of one session. All methods are safe
// for concurrent use. Listeners are called outside the store's lock but must
// not call back into the store synchronously.
type Store struct {
	mu         sync.Mutex
	state      State
	session    *AuthSession
	generation uint64

	listenersMu  sync.Mutex
	listeners    map[uint64]*listenerEntry
	nextListener uint64

	notifyMu      sync.Mutex
	lastDelivered uint64

	popupInFlight atomic.Bool

	credentials CredentialService
	federated   FederatedAuthenticator
	profiles    user.ProfileRepository
	tx          Transactor
	adminCode   string

	ctx    context.Context
	cancel context.CancelFunc
	group  *goroutine.Group
	logger logger.Interface
}

// NewStore creates a store in the unknown phase.
func NewStore(deps Dependencies) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		state:       State{Phase: PhaseUnknown},
		listeners:   make(map[uint64]*listenerEntry),
		credentials: deps.Credentials,
		federated:   deps.Federated,
		profiles:    deps.Profiles,
		tx:          deps.Transactions,
		adminCode:   deps.AdminCode,
		ctx:         ctx,
		cancel:      cancel,
		group:       goroutine.NewGroup(deps.Logger),
		logger:      deps.Logger,
	}
}

// Current returns the latest state snapshot.
func (s *Store) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Session returns a copy of the active session, or nil when signed out.
func (s *Store) Session() *AuthSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// listenerEntry remembers the last version handed to one listener. last is
// guarded by notifyMu.
type listenerEntry struct {
	fn   Listener
	last uint64
}

// Subscribe registers listener and immediately hands it the current state.
// The listener never sees a version older than one it already received.
func (s *Store) Subscribe(listener Listener) (unsubscribe func()) {
	s.notifyMu.Lock()
	current := s.Current()
	entry := &listenerEntry{fn: listener, last: current.Version}

	s.listenersMu.Lock()
	s.nextListener++
	id := s.nextListener
	s.listeners[id] = entry
	s.listenersMu.Unlock()

	listener(current)
	s.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// Bootstrap resolves a persisted session. It only acts while the store is
// still in the unknown phase. The role read runs in the background.
func (s *Store) Bootstrap(ctx context.Context, resolver SessionResolver) State {
	if s.Current().Phase != PhaseUnknown {
		return s.Current()
	}

	session, err := resolver.Resolve(ctx)
	if err != nil {
		s.logger.Debugw("no usable session to restore", "error", err)
		session = nil
	}

	s.mu.Lock()
	if s.state.Phase != PhaseUnknown {
		s.mu.Unlock()
		return s.Current()
	}
	if session == nil {
		state := s.apply(PhaseSignedOut, nil, nil)
		s.mu.Unlock()
		s.deliver(state)
		return state
	}
	state, gen := s.beginLocked(session, Unconfirmed())
	s.mu.Unlock()

	s.deliver(state)
	s.refreshRole(gen, session)
	return state
}

// SignUp registers a password principal and signs it in with a confirmed role.
func (s *Store) SignUp(ctx context.Context, in SignUpInput) (State, error) {
	email, err := vo.NewEmail(in.Email)
	if err != nil {
		return s.Current(), errors.NewInvalidEmailError(err.Error())
	}
	password, err := vo.NewPassword(in.Password)
	if err != nil {
		return s.Current(), errors.NewValidationError("weak password", err.Error())
	}

	role := vo.RoleCustomer
	if s.adminCode != "" && strings.TrimSpace(in.RoleCode) == s.adminCode {
		role = vo.RoleAdmin
	}

	session, err := s.credentials.CreateAccount(ctx, email, password)
	if err != nil {
		return s.Current(), err
	}

	profile, err := user.NewProfile(session.PrincipalID, email.String(), role, in.DisplayName)
	if err != nil {
		s.rollbackAccount(ctx, session.PrincipalID)
		return s.Current(), errors.NewValidationError(err.Error())
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		s.logger.Errorw("failed to persist profile for new account", "principal_id", session.PrincipalID, "error", err)
		s.rollbackAccount(ctx, session.PrincipalID)
		return s.Current(), err
	}

	session.DisplayName = profile.DisplayName()

	s.mu.Lock()
	state, _ := s.beginLocked(session, Confirmed(role))
	s.mu.Unlock()
	s.deliver(state)

	s.logger.Infow("account created", "principal_id", session.PrincipalID, "role", role)
	return state, nil
}

// SignIn authenticates with email and password. The returned state carries
// a provisional role; the confirmed role follows as a later transition.
func (s *Store) SignIn(ctx context.Context, email, password string) (State, error) {
	session, err := s.credentials.SignIn(ctx, email, password)
	if err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	state, gen := s.beginLocked(session, Unconfirmed())
	s.mu.Unlock()

	s.deliver(state)
	s.refreshRole(gen, session)
	return state, nil
}

// SignInFederated runs the provider popup flow. Only one popup flow may be
// outstanding per store.
func (s *Store) SignInFederated(ctx context.Context, opener PopupOpener) (State, error) {
	if !s.popupInFlight.CompareAndSwap(false, true) {
		return s.Current(), errors.NewConcurrentPopupError()
	}
	defer s.popupInFlight.Store(false)

	session, err := s.federated.SignIn(ctx, opener)
	if err != nil {
		return s.Current(), err
	}

	profile, err := s.ensureProfile(ctx, session, 0)
	if err != nil {
		// Signed in at the provider either way; the background read will
		// retry provisioning.
		s.logger.Warnw("failed to ensure profile after federated sign-in",
			"principal_id", session.PrincipalID,
			"error", err,
		)
		s.mu.Lock()
		state, gen := s.beginLocked(session, Unconfirmed())
		s.mu.Unlock()
		s.deliver(state)
		s.refreshRole(gen, session)
		return state, nil
	}

	session.DisplayName = profile.DisplayName()
	s.mu.Lock()
	state, _ := s.beginLocked(session, Confirmed(profile.Role()))
	s.mu.Unlock()
	s.deliver(state)
	return state, nil
}

// SignOut ends the session. Revocation failures are logged, never returned.
func (s *Store) SignOut(ctx context.Context) State {
	s.mu.Lock()
	session := s.session
	state := s.endLocked()
	s.mu.Unlock()
	s.deliver(state)

	if session != nil {
		if err := s.credentials.SignOut(ctx, session); err != nil {
			s.logger.Warnw("failed to revoke session", "principal_id", session.PrincipalID, "error", err)
		}
	}
	return state
}

// DeleteAccount re-proves the principal's identity, then removes the profile
// record and the credential and signs out. Password principals must supply
// their password; federated principals complete the popup flow again.
func (s *Store) DeleteAccount(ctx context.Context, password string, opener PopupOpener) (State, error) {
	session := s.Session()
	if session == nil {
		return s.Current(), errors.NewNotSignedInError()
	}

	if session.Method.IsFederated() {
		if !s.popupInFlight.CompareAndSwap(false, true) {
			return s.Current(), errors.NewConcurrentPopupError()
		}
		err := s.federated.Reauthenticate(ctx, session, opener)
		s.popupInFlight.Store(false)
		if err != nil {
			return s.Current(), err
		}
	} else {
		if password == "" {
			return s.Current(), errors.NewPasswordRequiredError()
		}
		if err := s.credentials.Reauthenticate(ctx, session, password); err != nil {
			return s.Current(), err
		}
	}

	if err := s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.profiles.Delete(ctx, session.PrincipalID); err != nil && !errors.IsNotFoundError(err) {
			s.logger.Errorw("failed to delete profile", "principal_id", session.PrincipalID, "error", err)
			return err
		}
		if err := s.credentials.DeleteAccount(ctx, session.PrincipalID); err != nil {
			s.logger.Errorw("failed to delete credential", "principal_id", session.PrincipalID, "error", err)
			return err
		}
		return nil
	}); err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	var state State
	if s.session != nil && s.session.PrincipalID == session.PrincipalID {
		state = s.endLocked()
	} else {
		state = s.state
	}
	s.mu.Unlock()
	s.deliver(state)

	s.logger.Infow("account deleted", "principal_id", session.PrincipalID)
	return state, nil
}

// AwaitRole returns the confirmed role of the signed-in principal, reading
// the profile synchronously when the background read has not finished.
func (s *Store) AwaitRole(ctx context.Context) (vo.Role, error) {
	s.mu.Lock()
	state := s.state
	session := s.session
	gen := s.generation
	s.mu.Unlock()

	if !state.SignedIn() || session == nil {
		return "", errors.NewNotSignedInError()
	}
	if role, ok := state.ConfirmedRole(); ok {
		return role, nil
	}

	profile, err := s.ensureProfile(ctx, session, gen)
	if err != nil {
		return "", err
	}
	s.confirm(gen, profile)
	return profile.Role(), nil
}

// Close stops background work and drops all listeners.
func (s *Store) Close() {
	s.cancel()
	s.group.Wait()

	s.listenersMu.Lock()
	s.listeners = make(map[uint64]*listenerEntry)
	s.listenersMu.Unlock()
}

// Done is closed once the store has been closed.
func (s *Store) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Watched reports whether any listener is still subscribed.
func (s *Store) Watched() bool {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	return len(s.listeners) > 0
}

func (s *Store) refreshRole(gen uint64, session *AuthSession) {
	s.group.Go("identity.refresh_role", func() {
		profile, err := s.ensureProfile(s.ctx, session, gen)
		if err != nil {
			if s.ctx.Err() == nil {
				s.logger.Warnw("failed to read profile, role stays provisional",
					"principal_id", session.PrincipalID,
					"error", err,
				)
			}
			return
		}
		s.confirm(gen, profile)
	})
}

// ensureProfile reads the principal's profile, provisioning a customer
// profile when none exists. A non-zero gen skips provisioning once that
// session is no longer the active one.
func (s *Store) ensureProfile(ctx context.Context, session *AuthSession, gen uint64) (*user.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, session.PrincipalID)
	if err == nil {
		return profile, nil
	}
	if !errors.IsNotFoundError(err) {
		return nil, err
	}
	if gen != 0 && !s.isCurrent(gen) {
		return nil, errors.NewNotSignedInError()
	}

	profile, err = user.NewProfile(session.PrincipalID, session.Email, vo.RoleCustomer, session.DisplayName)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.IsConflictError(err) {
			return s.profiles.GetByID(ctx, session.PrincipalID)
		}
		return nil, err
	}
	s.logger.Infow("provisioned default profile", "principal_id", session.PrincipalID)
	return profile, nil
}

// confirm applies a profile read if the session it was started for is still
// the active one.
func (s *Store) confirm(gen uint64, profile *user.Profile) {
	s.mu.Lock()
	if gen != s.generation || !s.state.SignedIn() || s.state.Principal.ID != profile.ID() {
		s.mu.Unlock()
		s.logger.Debugw("discarding stale profile read", "principal_id", profile.ID())
		return
	}
	if s.state.Principal.Role.IsConfirmed() && s.state.Principal.Role.Role() == profile.Role() {
		s.mu.Unlock()
		return
	}
	p := *s.state.Principal
	p.Role = Confirmed(profile.Role())
	p.DisplayName = profile.DisplayName()
	state := s.apply(PhaseSignedIn, &p, s.session)
	s.mu.Unlock()

	s.deliver(state)
}

func (s *Store) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

func (s *Store) beginLocked(session *AuthSession, role RoleResolution) (State, uint64) {
	s.generation++
	p := &Principal{
		ID:          session.PrincipalID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
		Method:      session.Method,
		Role:        role,
		SignedInAt:  signedInAt(session),
	}
	return s.apply(PhaseSignedIn, p, session), s.generation
}

func (s *Store) endLocked() State {
	s.generation++
	return s.apply(PhaseSignedOut, nil, nil)
}

func (s *Store) apply(phase Phase, p *Principal, session *AuthSession) State {
	s.session = session
	s.state = State{Phase: phase, Principal: p, Version: s.state.Version + 1}
	return s.state
}

// deliver hands state to every listener unless a newer state has already
// been delivered.
func (s *Store) deliver(state State) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if state.Version <= s.lastDelivered {
		return
	}
	s.lastDelivered = state.Version

	s.listenersMu.Lock()
	listeners := make([]*listenerEntry, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		if state.Version <= l.last {
			continue
		}
		l.last = state.Version
		l.fn(state)
	}
}

func (s *Store) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTransaction(ctx, fn)
}

func (s *Store) rollbackAccount(ctx context.Context, principalID string) {
	if err := s.credentials.DeleteAccount(ctx, principalID); err != nil {
		s.logger.Errorw("failed to roll back credential", "principal_id", principalID, "error", err)
	}
}

func signedInAt(session *AuthSession) time.Time {
	if session.IssuedAt.IsZero() {
		return biztime.NowUTC()
	}
	return session.IssuedAt
}
