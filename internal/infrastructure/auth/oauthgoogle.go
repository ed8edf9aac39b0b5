package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// httpClientTimeout is the timeout for HTTP requests to OAuth providers
	httpClientTimeout = 30 * time.Second

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleOAuthClient runs the authorization-code flow with PKCE against Google.
type GoogleOAuthClient struct {
	config      *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// OAuthUserInfo is the provider's view of the signed-in account.
type OAuthUserInfo struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func NewGoogleOAuthClient(cfg GoogleOAuthConfig) *GoogleOAuthClient {
	return &GoogleOAuthClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		httpClient:  &http.Client{Timeout: httpClientTimeout},
	}
}

// Configured reports whether client credentials are present.
func (c *GoogleOAuthClient) Configured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// AuthURL builds the consent page URL for state, challenging with p.
func (c *GoogleOAuthClient) AuthURL(state string, p pkce) string {
	return c.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", p.challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// ExchangeCode trades the authorization code for an access token.
func (c *GoogleOAuthClient) ExchangeCode(ctx context.Context, code string, p pkce) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.config.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", p.verifier))
	if err != nil {
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}
	return token.AccessToken, nil
}

func (c *GoogleOAuthClient) GetUserInfo(ctx context.Context, accessToken string) (*OAuthUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get user info: status %d, body: %s", resp.StatusCode, string(body))
	}

	var gInfo googleUserInfo
	if err := json.Unmarshal(body, &gInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}
	if gInfo.ID == "" {
		return nil, fmt.Errorf("user info has no subject")
	}

	return &OAuthUserInfo{
		Subject:       gInfo.ID,
		Email:         gInfo.Email,
		Name:          gInfo.Name,
		EmailVerified: gInfo.VerifiedEmail,
	}, nil
}
