package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/application/identity"
	"github.com/frankincense-labs/cx-management/internal/domain/user"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/auth"
	"github.com/frankincense-labs/cx-management/internal/shared/constants"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

const bootstrapTimeout = 5 * time.Second

// SessionConfig names the cookies that carry a browser session.
type SessionConfig struct {
	// SessionCookie holds the opaque id of the session's identity store.
	SessionCookie string
	// TokenCookie holds the signed token that restores a sign-in after the
	// store has been dropped.
	TokenCookie string
	Cookie      utils.CookieOptions
}

// SessionMiddleware attaches the identity store of the calling browser to
// every request and keeps the session token cookie in step with it.
type SessionMiddleware struct {
	registry    *identity.Registry
	tokens      *auth.SessionTokenService
	credentials user.CredentialRepository
	config      SessionConfig
	logger      logger.Interface
}

func NewSessionMiddleware(
	registry *identity.Registry,
	tokens *auth.SessionTokenService,
	credentials user.CredentialRepository,
	config SessionConfig,
	logger logger.Interface,
) *SessionMiddleware {
	return &SessionMiddleware{
		registry:    registry,
		tokens:      tokens,
		credentials: credentials,
		config:      config,
		logger:      logger,
	}
}

// LoadSession finds or creates the caller's store. A new store is
// bootstrapped from the token cookie before the handler runs.
func (m *SessionMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieID, _ := c.Cookie(m.config.SessionCookie)
		sessionID, store, created := m.registry.GetOrCreate(cookieID)

		if created {
			token, _ := c.Cookie(m.config.TokenCookie)
			ctx, cancel := context.WithTimeout(c.Request.Context(), bootstrapTimeout)
			state := store.Bootstrap(ctx, auth.NewTokenResolver(m.tokens, m.credentials, token))
			cancel()

			utils.SetHTTPOnlyCookie(c, m.config.Cookie, m.config.SessionCookie, sessionID, 0)
			utils.SetCSRFCookie(c, m.config.Cookie)

			m.logger.Debugw("session created",
				"session_id", sessionID,
				"phase", state.Phase.String(),
			)
		}

		c.Set(constants.ContextKeySessionID, sessionID)
		c.Set(constants.ContextKeyStore, store)

		// Sign-ins that completed out of band, such as a popup flow, are
		// persisted on the next request.
		m.SyncToken(c, store)

		c.Next()
	}
}

// SessionSource exposes the active session of an identity store.
type SessionSource interface {
	Session() *identity.AuthSession
}

// SyncToken issues, refreshes or clears the token cookie so it matches the
// store's session. Handlers that change the session call it before writing
// their response.
func (m *SessionMiddleware) SyncToken(c *gin.Context, store SessionSource) {
	session := store.Session()
	token, _ := c.Cookie(m.config.TokenCookie)

	if session == nil {
		if token != "" {
			utils.ClearCookie(c, m.config.Cookie, m.config.TokenCookie)
		}
		return
	}

	if token != "" {
		claims, err := m.tokens.Verify(token)
		if err == nil && claims.PrincipalID == session.PrincipalID && !m.tokens.ShouldRefresh(claims) {
			return
		}
	}

	issued, exp, err := m.tokens.Issue(session)
	if err != nil {
		m.logger.Errorw("failed to issue session token", "principal_id", session.PrincipalID, "error", err)
		return
	}
	utils.SetHTTPOnlyCookie(c, m.config.Cookie, m.config.TokenCookie, issued, int(time.Until(exp).Seconds()))
}

// StoreFrom returns the identity store attached by LoadSession.
func StoreFrom(c *gin.Context) (*identity.Store, bool) {
	v, ok := c.Get(constants.ContextKeyStore)
	if !ok {
		return nil, false
	}
	store, ok := v.(*identity.Store)
	return store, ok
}
