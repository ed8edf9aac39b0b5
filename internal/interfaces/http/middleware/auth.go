package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/shared/constants"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

type AuthMiddleware struct {
	logger logger.Interface
}

func NewAuthMiddleware(logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{logger: logger}
}

// RequireAuth rejects requests whose session is not signed in and exposes
// the principal to handlers.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := StoreFrom(c)
		if !ok {
			m.logger.Errorw("identity store missing from request context", "path", c.Request.URL.Path)
			utils.ErrorResponseWithError(c, errors.NewInternalError("session unavailable"))
			c.Abort()
			return
		}

		state := store.Current()
		if !state.SignedIn() {
			utils.ErrorResponseWithError(c, errors.NewNotSignedInError())
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, state.Principal.ID)
		c.Set(constants.ContextKeyUserEmail, state.Principal.Email)

		c.Next()
	}
}

// UserID returns the principal id set by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(constants.ContextKeyUserID)
}

// UserEmail returns the principal email set by RequireAuth.
func UserEmail(c *gin.Context) string {
	return c.GetString(constants.ContextKeyUserEmail)
}
