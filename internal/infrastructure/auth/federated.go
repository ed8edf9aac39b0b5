package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/frankincense-labs/cx-management/internal/application/identity"
	"github.com/frankincense-labs/cx-management/internal/domain/user"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/id"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

const providerGoogle = "google"

type callbackResult struct {
	code     string
	errParam string
}

type pendingFlow struct {
	pkce   pkce
	result chan callbackResult
}

// GooglePopupAuthenticator implements identity.FederatedAuthenticator. A
// flow hands the consent URL to the opener and then waits until the browser
// returns to the callback, which reports back through Complete.
type GooglePopupAuthenticator struct {
	client      *GoogleOAuthClient
	credentials user.CredentialRepository
	timeout     time.Duration
	now         func() time.Time
	logger      logger.Interface

	mu      sync.Mutex
	pending map[string]*pendingFlow
}

func NewGooglePopupAuthenticator(
	client *GoogleOAuthClient,
	credentials user.CredentialRepository,
	timeout time.Duration,
	log logger.Interface,
) *GooglePopupAuthenticator {
	return &GooglePopupAuthenticator{
		client:      client,
		credentials: credentials,
		timeout:     timeout,
		now:         biztime.NowUTC,
		logger:      log,
		pending:     make(map[string]*pendingFlow),
	}
}

// SignIn completes the popup flow and returns the session of the matching
// federated credential, creating the credential on first use.
func (a *GooglePopupAuthenticator) SignIn(ctx context.Context, opener identity.PopupOpener) (*identity.AuthSession, error) {
	info, err := a.runPopup(ctx, opener)
	if err != nil {
		return nil, err
	}

	credential, err := a.credentials.GetByProviderSubject(ctx, info.Subject)
	switch {
	case err == nil:
		credential.RecordSignIn(a.now())
		if err := a.credentials.Update(ctx, credential); err != nil {
			a.logger.Warnw("failed to record federated sign-in", "principal_id", credential.PrincipalID(), "error", err)
		}
	case errors.IsNotFoundError(err):
		credential, err = a.createCredential(ctx, info)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	a.logger.Infow("federated sign-in succeeded",
		"provider", providerGoogle,
		"principal_id", credential.PrincipalID(),
	)
	return &identity.AuthSession{
		PrincipalID: credential.PrincipalID(),
		Email:       credential.Email(),
		Method:      vo.AuthMethodGoogle,
		DisplayName: info.Name,
		IssuedAt:    a.now(),
	}, nil
}

// Reauthenticate requires the popup to come back with the same account.
func (a *GooglePopupAuthenticator) Reauthenticate(ctx context.Context, session *identity.AuthSession, opener identity.PopupOpener) error {
	if session == nil {
		return errors.NewNotSignedInError()
	}
	info, err := a.runPopup(ctx, opener)
	if err != nil {
		return err
	}

	credential, err := a.credentials.GetByProviderSubject(ctx, info.Subject)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return errors.NewReauthRequiredError()
		}
		return err
	}
	if credential.PrincipalID() != session.PrincipalID {
		return errors.NewOAuthError(providerGoogle, "reauthenticate", "signed in with a different account")
	}
	return nil
}

// Complete delivers the callback parameters to the flow waiting on state.
func (a *GooglePopupAuthenticator) Complete(state, code, errParam string) error {
	a.mu.Lock()
	flow, ok := a.pending[state]
	a.mu.Unlock()
	if !ok {
		return errors.NewOAuthError(providerGoogle, "callback", "unknown or expired state")
	}

	select {
	case flow.result <- callbackResult{code: code, errParam: errParam}:
	default:
		// A result is already queued; the first callback wins.
	}
	return nil
}

// Pending returns the number of outstanding popup flows.
func (a *GooglePopupAuthenticator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

func (a *GooglePopupAuthenticator) runPopup(ctx context.Context, opener identity.PopupOpener) (*OAuthUserInfo, error) {
	if !a.client.Configured() {
		return nil, errors.NewOAuthError(providerGoogle, "config", "provider is not configured")
	}

	state, err := randomState()
	if err != nil {
		return nil, errors.NewOAuthError(providerGoogle, "state", err.Error())
	}
	p, err := newPKCE()
	if err != nil {
		return nil, errors.NewOAuthError(providerGoogle, "pkce", err.Error())
	}

	flow := &pendingFlow{pkce: p, result: make(chan callbackResult, 1)}
	a.mu.Lock()
	a.pending[state] = flow
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.pending, state)
		a.mu.Unlock()
	}()

	if err := opener.Open(ctx, a.client.AuthURL(state, p)); err != nil {
		if errors.IsAuthError(err) {
			return nil, err
		}
		return nil, errors.NewPopupBlockedError()
	}

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, errors.NewPopupCancelledError()
	case <-timer.C:
		a.logger.Infow("popup flow timed out", "provider", providerGoogle)
		return nil, errors.NewPopupCancelledError()
	case res = <-flow.result:
	}

	if res.errParam != "" || res.code == "" {
		if res.errParam == "" || res.errParam == "access_denied" {
			return nil, errors.NewPopupCancelledError()
		}
		return nil, errors.NewOAuthError(providerGoogle, "authorize", res.errParam)
	}

	accessToken, err := a.client.ExchangeCode(ctx, res.code, flow.pkce)
	if err != nil {
		a.logger.Warnw("failed to exchange authorization code", "provider", providerGoogle, "error", err)
		return nil, errors.NewOAuthError(providerGoogle, "exchange")
	}
	info, err := a.client.GetUserInfo(ctx, accessToken)
	if err != nil {
		a.logger.Warnw("failed to fetch user info", "provider", providerGoogle, "error", err)
		return nil, errors.NewOAuthError(providerGoogle, "userinfo")
	}
	return info, nil
}

func (a *GooglePopupAuthenticator) createCredential(ctx context.Context, info *OAuthUserInfo) (*user.Credential, error) {
	principalID, err := id.Generate(principalIDLength)
	if err != nil {
		return nil, errors.NewInternalError("failed to create account", err.Error())
	}
	credential, err := user.NewFederatedCredential(principalID, strings.ToLower(info.Email), vo.AuthMethodGoogle, info.Subject)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := a.credentials.Create(ctx, credential); err != nil {
		return nil, err
	}
	a.logger.Infow("federated credential created", "provider", providerGoogle, "principal_id", principalID)
	return credential, nil
}
