package utils

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CSRFTokenCookie = "csrf_token"
	CSRFTokenHeader = "X-CSRF-Token"
	csrfTokenBytes  = 32
)

// CookieOptions are the attributes shared by every cookie the portal sets.
type CookieOptions struct {
	Path     string
	Domain   string
	Secure   bool
	SameSite string
}

// SetHTTPOnlyCookie sets a cookie that scripts cannot read. A maxAge of zero
// makes it a browser-session cookie.
func SetHTTPOnlyCookie(c *gin.Context, opts CookieOptions, name, value string, maxAge int) {
	c.SetSameSite(parseSameSite(opts.SameSite))
	c.SetCookie(name, value, maxAge, cookiePath(opts), opts.Domain, opts.Secure, true)
}

// ClearCookie expires the named cookie.
func ClearCookie(c *gin.Context, opts CookieOptions, name string) {
	c.SetSameSite(parseSameSite(opts.SameSite))
	c.SetCookie(name, "", -1, cookiePath(opts), opts.Domain, opts.Secure, true)
}

// SetCSRFCookie generates a random CSRF token and sets it as a non-HttpOnly cookie.
// The token is readable by frontend JavaScript for the Double Submit Cookie pattern.
func SetCSRFCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(parseSameSite(opts.SameSite))
	c.SetCookie(CSRFTokenCookie, generateCSRFToken(), 0, cookiePath(opts), opts.Domain, opts.Secure, false)
}

func generateCSRFToken() string {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic("csrf: failed to generate random token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

func cookiePath(opts CookieOptions) string {
	if opts.Path == "" {
		return "/"
	}
	return opts.Path
}

func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
