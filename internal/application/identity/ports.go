package identity

import (
	"context"

	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
)

// CredentialService authenticates password principals.
type CredentialService interface {
	// CreateAccount fails with a duplicate-account error when the email is taken.
	CreateAccount(ctx context.Context, email *vo.Email, password *vo.Password) (*AuthSession, error)
	// SignIn fails with invalid-credentials for both an unknown email and a
	// wrong password, and with rate-limited after repeated failures.
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	// Reauthenticate proves the password again for a sensitive operation.
	Reauthenticate(ctx context.Context, session *AuthSession, password string) error
	DeleteAccount(ctx context.Context, principalID string) error
	SignOut(ctx context.Context, session *AuthSession) error
}

// PopupOpener shows the provider's consent page to the user. Open returns a
// popup-blocked error when the page cannot be shown.
type PopupOpener interface {
	Open(ctx context.Context, authURL string) error
}

// PopupOpenerFunc adapts a function to PopupOpener.
type PopupOpenerFunc func(ctx context.Context, authURL string) error

func (f PopupOpenerFunc) Open(ctx context.Context, authURL string) error {
	return f(ctx, authURL)
}

// FederatedAuthenticator runs the popup sign-in flow against an identity
// provider. Both methods block until the popup completes, is cancelled, or
// ctx ends.
type FederatedAuthenticator interface {
	SignIn(ctx context.Context, opener PopupOpener) (*AuthSession, error)
	Reauthenticate(ctx context.Context, session *AuthSession, opener PopupOpener) error
}

// SessionResolver restores a previously established session, returning nil
// when there is none.
type SessionResolver interface {
	Resolve(ctx context.Context) (*AuthSession, error)
}

// SessionResolverFunc adapts a function to SessionResolver.
type SessionResolverFunc func(ctx context.Context) (*AuthSession, error)

func (f SessionResolverFunc) Resolve(ctx context.Context) (*AuthSession, error) {
	return f(ctx)
}

// Transactor runs fn so that the writes it makes through ctx commit or roll
// back together.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Listener observes state transitions.
type Listener func(State)
