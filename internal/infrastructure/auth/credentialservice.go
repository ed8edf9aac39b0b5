package auth

import (
	"context"
	"strings"
	"time"

	"github.com/frankincense-labs/cx-management/internal/application/identity"
	"github.com/frankincense-labs/cx-management/internal/domain/user"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/ratelimit"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/id"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// principalIDLength matches the length of the identifiers existing profile
// records are keyed by.
const principalIDLength = 28

// PasswordCredentialService implements identity.CredentialService on top of
// bcrypt-hashed credentials.
type PasswordCredentialService struct {
	credentials  user.CredentialRepository
	hasher       PasswordHasher
	limiter      ratelimit.FailureLimiter
	reauthMaxAge time.Duration
	now          func() time.Time
	logger       logger.Interface
}

func NewPasswordCredentialService(
	credentials user.CredentialRepository,
	hasher PasswordHasher,
	limiter ratelimit.FailureLimiter,
	reauthMaxAge time.Duration,
	log logger.Interface,
) *PasswordCredentialService {
	return &PasswordCredentialService{
		credentials:  credentials,
		hasher:       hasher,
		limiter:      limiter,
		reauthMaxAge: reauthMaxAge,
		now:          biztime.NowUTC,
		logger:       log,
	}
}

func (s *PasswordCredentialService) CreateAccount(ctx context.Context, email *vo.Email, password *vo.Password) (*identity.AuthSession, error) {
	if _, err := s.credentials.GetByEmail(ctx, email.String()); err == nil {
		return nil, errors.NewDuplicateAccountError()
	} else if !errors.IsNotFoundError(err) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password.String())
	if err != nil {
		s.logger.Errorw("failed to hash password", "error", err)
		return nil, errors.NewInternalError("failed to create account")
	}

	principalID, err := id.Generate(principalIDLength)
	if err != nil {
		return nil, errors.NewInternalError("failed to create account", err.Error())
	}

	credential, err := user.NewPasswordCredential(principalID, email.String(), hash)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.credentials.Create(ctx, credential); err != nil {
		if errors.IsConflictError(err) {
			return nil, errors.NewDuplicateAccountError()
		}
		return nil, err
	}

	s.logger.Infow("password credential created", "principal_id", principalID)
	return s.sessionFor(credential), nil
}

// SignIn gives unknown emails and wrong passwords the same answer and counts
// both against the email's failure budget.
func (s *PasswordCredentialService) SignIn(ctx context.Context, email, password string) (*identity.AuthSession, error) {
	key := normalizeEmail(email)
	if err := s.checkLimit(ctx, key); err != nil {
		return nil, err
	}

	credential, err := s.credentials.GetByEmail(ctx, key)
	if err != nil {
		if errors.IsNotFoundError(err) {
			s.recordFailure(ctx, key)
			return nil, errors.NewInvalidCredentialsError()
		}
		return nil, err
	}

	if err := s.hasher.Verify(password, credential.PasswordHash()); err != nil {
		s.recordFailure(ctx, key)
		return nil, errors.NewInvalidCredentialsError()
	}

	if err := s.limiter.Reset(ctx, key); err != nil {
		s.logger.Warnw("failed to reset sign-in failures", "error", err)
	}

	credential.RecordSignIn(s.now())
	if err := s.credentials.Update(ctx, credential); err != nil {
		s.logger.Warnw("failed to record sign-in", "principal_id", credential.PrincipalID(), "error", err)
	}

	s.logger.Infow("password sign-in succeeded", "principal_id", credential.PrincipalID())
	return s.sessionFor(credential), nil
}

// Reauthenticate demands a fresh sign-in when the session is older than the
// configured maximum age or its credential no longer exists.
func (s *PasswordCredentialService) Reauthenticate(ctx context.Context, session *identity.AuthSession, password string) error {
	if session == nil {
		return errors.NewNotSignedInError()
	}
	if s.reauthMaxAge > 0 && s.now().Sub(session.IssuedAt) > s.reauthMaxAge {
		return errors.NewReauthRequiredError()
	}

	credential, err := s.credentials.GetByPrincipalID(ctx, session.PrincipalID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return errors.NewReauthRequiredError()
		}
		return err
	}

	key := normalizeEmail(credential.Email())
	if err := s.checkLimit(ctx, key); err != nil {
		return err
	}
	if err := s.hasher.Verify(password, credential.PasswordHash()); err != nil {
		s.recordFailure(ctx, key)
		return errors.NewWrongPasswordError()
	}
	return nil
}

func (s *PasswordCredentialService) DeleteAccount(ctx context.Context, principalID string) error {
	if err := s.credentials.Delete(ctx, principalID); err != nil && !errors.IsNotFoundError(err) {
		return err
	}
	s.logger.Infow("credential deleted", "principal_id", principalID)
	return nil
}

// SignOut has nothing to revoke: session tokens are dropped with the cookie.
func (s *PasswordCredentialService) SignOut(_ context.Context, session *identity.AuthSession) error {
	if session != nil {
		s.logger.Debugw("signed out", "principal_id", session.PrincipalID)
	}
	return nil
}

func (s *PasswordCredentialService) checkLimit(ctx context.Context, key string) error {
	blocked, retryAfter, err := s.limiter.Blocked(ctx, key)
	if err != nil {
		// Fail open when the limiter is unavailable.
		s.logger.Warnw("failed to check sign-in limit", "error", err)
		return nil
	}
	if blocked {
		s.logger.Warnw("sign-in rate limited", "retry_after", retryAfter)
		return errors.NewRateLimitedError()
	}
	return nil
}

func (s *PasswordCredentialService) recordFailure(ctx context.Context, key string) {
	if err := s.limiter.RecordFailure(ctx, key); err != nil {
		s.logger.Warnw("failed to record sign-in failure", "error", err)
	}
}

func (s *PasswordCredentialService) sessionFor(c *user.Credential) *identity.AuthSession {
	return &identity.AuthSession{
		PrincipalID: c.PrincipalID(),
		Email:       c.Email(),
		Method:      c.Method(),
		IssuedAt:    s.now(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
