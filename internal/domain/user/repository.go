package user

import "context"

// ProfileRepository persists profile records. GetByID returns a not-found
// AppError when no profile exists for the principal.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, principalID string) (*Profile, error)
	Delete(ctx context.Context, principalID string) error
}

// CredentialRepository persists credentials. Create returns a conflict
// AppError when the email or provider subject is already registered.
type CredentialRepository interface {
	Create(ctx context.Context, credential *Credential) error
	Update(ctx context.Context, credential *Credential) error
	GetByPrincipalID(ctx context.Context, principalID string) (*Credential, error)
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	GetByProviderSubject(ctx context.Context, subject string) (*Credential, error)
	Delete(ctx context.Context, principalID string) error
}
