package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/application/identity"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
	"github.com/frankincense-labs/cx-management/internal/shared/constants"
)

// SessionStore is the part of identity.Store the HTTP layer drives.
type SessionStore interface {
	Current() identity.State
	Session() *identity.AuthSession
	SignUp(ctx context.Context, in identity.SignUpInput) (identity.State, error)
	SignIn(ctx context.Context, email, password string) (identity.State, error)
	SignInFederated(ctx context.Context, opener identity.PopupOpener) (identity.State, error)
	SignOut(ctx context.Context) identity.State
	DeleteAccount(ctx context.Context, password string, opener identity.PopupOpener) (identity.State, error)
}

// TokenSyncer writes the session token cookie for the store's session.
type TokenSyncer interface {
	SyncToken(c *gin.Context, store middleware.SessionSource)
}

// CallbackCompleter hands provider callback parameters to a waiting popup
// flow.
type CallbackCompleter interface {
	Complete(state, code, errParam string) error
}

func sessionStoreFrom(c *gin.Context) (SessionStore, bool) {
	v, ok := c.Get(constants.ContextKeyStore)
	if !ok {
		return nil, false
	}
	store, ok := v.(SessionStore)
	return store, ok
}
