package auth

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/identity"
	"github.com/frankincense-labs/cx-management/internal/domain/user"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

// NewTokenResolver restores the session carried by a signed token. An
// empty, invalid or expired token, or one whose credential has been
// deleted, resolves to no session.
func NewTokenResolver(tokens *SessionTokenService, credentials user.CredentialRepository, token string) identity.SessionResolver {
	return identity.SessionResolverFunc(func(ctx context.Context) (*identity.AuthSession, error) {
		if token == "" {
			return nil, nil
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			return nil, nil
		}
		if _, err := credentials.GetByPrincipalID(ctx, claims.PrincipalID); err != nil {
			if errors.IsNotFoundError(err) {
				return nil, nil
			}
			return nil, err
		}
		return claims.Session(), nil
	})
}
