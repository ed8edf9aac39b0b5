package constants

// OAuthErrorCode is what the popup completion page reports to the opener.
type OAuthErrorCode string

const (
	// Provider errors passed back on the callback
	OAuthErrorAccessDenied OAuthErrorCode = "access_denied"
	OAuthErrorServerError  OAuthErrorCode = "server_error"

	// Internal errors
	OAuthErrorMissingState OAuthErrorCode = "missing_state"
	OAuthErrorInvalidState OAuthErrorCode = "invalid_state"
)

var oauthErrorMessages = map[OAuthErrorCode]string{
	OAuthErrorAccessDenied: "You closed the Google sign-in. You can try again from the portal.",
	OAuthErrorServerError:  "Google encountered an error. Please try again later.",
	OAuthErrorMissingState: "Security validation failed. Please try signing in again.",
	OAuthErrorInvalidState: "This sign-in window has expired. Please start again from the portal.",
}

// GetOAuthErrorMessage returns a user-friendly error message
func GetOAuthErrorMessage(code OAuthErrorCode) string {
	if msg, ok := oauthErrorMessages[code]; ok {
		return msg
	}
	return "An unexpected error occurred during authentication. Please try again."
}
