package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Authentication-specific error types
const (
	ErrorTypeInvalidCredentials ErrorType = "invalid_credentials"
	ErrorTypeDuplicateAccount   ErrorType = "duplicate_account"
	ErrorTypeInvalidEmail       ErrorType = "invalid_email"
	ErrorTypeRateLimited        ErrorType = "rate_limited"
	ErrorTypePopupBlocked       ErrorType = "popup_blocked"
	ErrorTypePopupCancelled     ErrorType = "popup_cancelled"
	ErrorTypeConcurrentPopup    ErrorType = "concurrent_popup"
	ErrorTypePasswordRequired   ErrorType = "password_required"
	ErrorTypeWrongPassword      ErrorType = "wrong_password"
	ErrorTypeReauthRequired     ErrorType = "reauth_required"
	ErrorTypeNotSignedIn        ErrorType = "not_signed_in"
	ErrorTypeTokenExpired       ErrorType = "token_expired"
	ErrorTypeTokenInvalid       ErrorType = "token_invalid"
	ErrorTypeOAuthError         ErrorType = "oauth_error"
)

// AuthError represents authentication-specific errors with enhanced security context
type AuthError struct {
	*AppError
	// ShouldLog determines if this error should be logged
	ShouldLog bool
	// SecurityEvent indicates if this should be tracked as a security event
	SecurityEvent bool
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return e.AppError.Error()
}

// Unwrap allows errors.Is and errors.As to work correctly
func (e *AuthError) Unwrap() error {
	return e.AppError
}

func newAuthError(t ErrorType, code int, message, details string, shouldLog, securityEvent bool) *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    t,
			Message: message,
			Code:    code,
			Details: details,
		},
		ShouldLog:     shouldLog,
		SecurityEvent: securityEvent,
	}
}

// NewInvalidCredentialsError creates an error for invalid login credentials.
// Unknown accounts and wrong passwords produce the same error.
func NewInvalidCredentialsError() *AuthError {
	return newAuthError(ErrorTypeInvalidCredentials, http.StatusUnauthorized,
		"Invalid email or password", "", false, true)
}

// NewDuplicateAccountError is returned when the email is already registered
func NewDuplicateAccountError() *AuthError {
	return newAuthError(ErrorTypeDuplicateAccount, http.StatusConflict,
		"An account with this email already exists", "", false, false)
}

// NewInvalidEmailError is returned for malformed email addresses
func NewInvalidEmailError(details ...string) *AuthError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return newAuthError(ErrorTypeInvalidEmail, http.StatusBadRequest,
		"Invalid email address", detail, false, false)
}

// NewRateLimitedError is returned after too many recent failed sign-ins
func NewRateLimitedError() *AuthError {
	return newAuthError(ErrorTypeRateLimited, http.StatusTooManyRequests,
		"Too many failed sign-in attempts", "Please wait a few minutes and try again", true, true)
}

// NewPopupBlockedError is returned when the federated popup could not be opened
func NewPopupBlockedError() *AuthError {
	return newAuthError(ErrorTypePopupBlocked, http.StatusBadRequest,
		"Sign-in popup was blocked", "Please allow popups for this site and try again", false, false)
}

// NewPopupCancelledError is returned when the user closed or denied the popup
func NewPopupCancelledError() *AuthError {
	return newAuthError(ErrorTypePopupCancelled, http.StatusBadRequest,
		"Sign-in popup was closed", "Please try again", false, false)
}

// NewConcurrentPopupError is returned while another popup flow is outstanding
func NewConcurrentPopupError() *AuthError {
	return newAuthError(ErrorTypeConcurrentPopup, http.StatusConflict,
		"Another sign-in attempt is already in progress", "Please wait", false, false)
}

// NewPasswordRequiredError is returned when a password principal omits its
// password on a sensitive operation
func NewPasswordRequiredError() *AuthError {
	return newAuthError(ErrorTypePasswordRequired, http.StatusBadRequest,
		"Password required for account deletion", "", false, false)
}

// NewWrongPasswordError is returned when re-authentication fails
func NewWrongPasswordError() *AuthError {
	return newAuthError(ErrorTypeWrongPassword, http.StatusUnauthorized,
		"Incorrect password", "", false, true)
}

// NewReauthRequiredError is returned when the session is too stale for a
// password or popup re-check and a fresh sign-in is needed
func NewReauthRequiredError() *AuthError {
	return newAuthError(ErrorTypeReauthRequired, http.StatusUnauthorized,
		"Recent sign-in required", "Please sign out, sign in again and retry", false, false)
}

// NewNotSignedInError is returned by operations that need a principal
func NewNotSignedInError() *AuthError {
	return newAuthError(ErrorTypeNotSignedIn, http.StatusUnauthorized,
		"No user signed in", "", false, false)
}

// NewTokenExpiredError creates an error for expired tokens
func NewTokenExpiredError(tokenType string) *AuthError {
	return newAuthError(ErrorTypeTokenExpired, http.StatusUnauthorized,
		fmt.Sprintf("%s has expired", tokenType), "Please login again", false, false)
}

// NewTokenInvalidError creates an error for invalid tokens
func NewTokenInvalidError(tokenType string) *AuthError {
	return newAuthError(ErrorTypeTokenInvalid, http.StatusUnauthorized,
		fmt.Sprintf("Invalid %s", tokenType), "Token is invalid or has been revoked", true, true)
}

// NewOAuthError creates an error for OAuth-related failures
func NewOAuthError(provider string, stage string, details ...string) *AuthError {
	detail := fmt.Sprintf("OAuth authentication failed at %s stage", stage)
	if len(details) > 0 {
		detail = details[0]
	}
	return newAuthError(ErrorTypeOAuthError, http.StatusBadGateway,
		fmt.Sprintf("OAuth authentication failed with %s", provider), detail, true, false)
}

// IsAuthError checks if the error is an AuthError (supports wrapped errors via errors.As)
func IsAuthError(err error) bool {
	var authErr *AuthError
	return stderrors.As(err, &authErr)
}

// GetAuthError extracts AuthError from error chain (supports wrapped errors via errors.As)
func GetAuthError(err error) *AuthError {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return authErr
	}
	return nil
}

// IsAuthErrorType reports whether err is an AuthError of the given type.
func IsAuthErrorType(err error, t ErrorType) bool {
	authErr := GetAuthError(err)
	return authErr != nil && authErr.Type == t
}

// ShouldLogAuthError returns true if the authentication error should be logged
func ShouldLogAuthError(err error) bool {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.ShouldLog
	}
	return true
}

// IsSecurityEvent returns true if the error should be tracked as a security event
func IsSecurityEvent(err error) bool {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.SecurityEvent
	}
	return false
}
