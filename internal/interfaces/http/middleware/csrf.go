package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

// csrfExactPaths lists paths exempt from CSRF validation. Sign-in and
// sign-up run before the browser has read its CSRF cookie.
var csrfExactPaths = map[string]struct{}{
	"/api/auth/signin": {},
	"/api/auth/signup": {},
}

// CSRF returns a middleware that validates CSRF tokens using the Double Submit Cookie pattern.
// For mutating requests (POST, PUT, DELETE, PATCH), it compares the csrf_token cookie value
// against the X-CSRF-Token header value. Safe methods (GET, HEAD, OPTIONS) are always skipped.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip safe HTTP methods
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		// Skip exempt paths
		if _, ok := csrfExactPaths[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		// Read CSRF token from cookie
		cookieToken, err := c.Cookie(utils.CSRFTokenCookie)
		if err != nil || cookieToken == "" {
			utils.ErrorResponse(c, http.StatusForbidden, "missing CSRF token")
			c.Abort()
			return
		}

		// Read CSRF token from header
		headerToken := c.GetHeader(utils.CSRFTokenHeader)
		if headerToken == "" {
			utils.ErrorResponse(c, http.StatusForbidden, "missing CSRF token header")
			c.Abort()
			return
		}

		// Constant-time comparison to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) != 1 {
			utils.ErrorResponse(c, http.StatusForbidden, "invalid CSRF token")
			c.Abort()
			return
		}

		c.Next()
	}
}

// isSafeMethod returns true for HTTP methods that do not mutate state.
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
