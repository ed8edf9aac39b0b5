package user

import (
	"fmt"
	"time"

	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
)

// Credential authenticates a principal. Password credentials carry a bcrypt
// hash; federated credentials carry the provider's subject identifier.
type Credential struct {
	principalID     string
	email           string
	method          vo.AuthMethod
	passwordHash    string
	providerSubject string
	createdAt       time.Time
	lastSignInAt    time.Time
}

func NewPasswordCredential(principalID, email, passwordHash string) (*Credential, error) {
	if principalID == "" {
		return nil, fmt.Errorf("principal ID is required")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}
	now := biztime.NowUTC()
	return &Credential{
		principalID:  principalID,
		email:        email,
		method:       vo.AuthMethodPassword,
		passwordHash: passwordHash,
		createdAt:    now,
		lastSignInAt: now,
	}, nil
}

func NewFederatedCredential(principalID, email string, method vo.AuthMethod, subject string) (*Credential, error) {
	if principalID == "" {
		return nil, fmt.Errorf("principal ID is required")
	}
	if !method.IsFederated() {
		return nil, fmt.Errorf("auth method %s is not federated", method)
	}
	if subject == "" {
		return nil, fmt.Errorf("provider subject is required")
	}
	now := biztime.NowUTC()
	return &Credential{
		principalID:     principalID,
		email:           email,
		method:          method,
		providerSubject: subject,
		createdAt:       now,
		lastSignInAt:    now,
	}, nil
}

// ReconstructCredential rebuilds a credential from persistence.
func ReconstructCredential(
	principalID, email string,
	method vo.AuthMethod,
	passwordHash, providerSubject string,
	createdAt, lastSignInAt time.Time,
) (*Credential, error) {
	if principalID == "" {
		return nil, fmt.Errorf("principal ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("invalid auth method: %s", method)
	}
	return &Credential{
		principalID:     principalID,
		email:           email,
		method:          method,
		passwordHash:    passwordHash,
		providerSubject: providerSubject,
		createdAt:       createdAt,
		lastSignInAt:    lastSignInAt,
	}, nil
}

func (c *Credential) PrincipalID() string { return c.principalID }
func (c *Credential) Email() string { return c.email }
func (c *Credential) Method() vo.AuthMethod { return c.method }
func (c *Credential) PasswordHash() string { return c.passwordHash }
func (c *Credential) ProviderSubject() string { return c.providerSubject }
func (c *Credential) CreatedAt() time.Time { return c.createdAt }
func (c *Credential) LastSignInAt() time.Time { return c.lastSignInAt }
func (c *Credential) HasPassword() bool { return c.passwordHash != "" }

// RecordSignIn stamps a successful sign-in.
func (c *Credential) RecordSignIn(at time.Time) {
	c.lastSignInAt = at
}
