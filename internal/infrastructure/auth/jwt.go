package auth

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frankincense-labs/cx-management/internal/application/identity"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

const sessionTokenType = "session"

// Claims identify a principal. They deliberately carry no role: the role is
// always read from the profile record.
type Claims struct {
	PrincipalID string        `json:"pid"`
	Email       string        `json:"email"`
	Method      vo.AuthMethod `json:"method"`
	DisplayName string        `json:"name,omitempty"`
	// AuthTime is when the principal last proved its credentials, in unix
	// seconds. Refreshing a token keeps it.
	AuthTime int64 `json:"auth_time"`
	jwt.RegisteredClaims
}

// Session converts the claims back into the credential layer's session.
func (c *Claims) Session() *identity.AuthSession {
	return &identity.AuthSession{
		PrincipalID: c.PrincipalID,
		Email:       c.Email,
		Method:      c.Method,
		DisplayName: c.DisplayName,
		IssuedAt:    time.Unix(c.AuthTime, 0).UTC(),
	}
}

// SessionTokenService signs the cookie that lets a browser restore its
// session after the in-memory store has been evicted.
type SessionTokenService struct {
	secret     []byte
	expMinutes int
	now        func() time.Time
}

func NewSessionTokenService(secret string, expMinutes int) *SessionTokenService {
	return &SessionTokenService{
		secret:     []byte(secret),
		expMinutes: expMinutes,
		now:        biztime.NowUTC,
	}
}

// Issue signs a token for session and returns it with its expiry.
func (s *SessionTokenService) Issue(session *identity.AuthSession) (string, time.Time, error) {
	now := s.now()
	authTime := session.IssuedAt
	if authTime.IsZero() {
		authTime = now
	}
	exp := now.Add(time.Duration(s.expMinutes) * time.Minute)

	claims := &Claims{
		PrincipalID: session.PrincipalID,
		Email:       session.Email,
		Method:      session.Method,
		DisplayName: session.DisplayName,
		AuthTime:    authTime.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.PrincipalID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, exp, nil
}

// Verify parses and validates a token. Expired tokens yield a token-expired
// AuthError, every other failure a token-invalid one.
func (s *SessionTokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewTokenExpiredError(sessionTokenType)
		}
		return nil, errors.NewTokenInvalidError(sessionTokenType)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.PrincipalID == "" {
		return nil, errors.NewTokenInvalidError(sessionTokenType)
	}
	return claims, nil
}

// ShouldRefresh reports whether the token expires within a quarter of its
// lifetime.
func (s *SessionTokenService) ShouldRefresh(claims *Claims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return false
	}
	threshold := time.Duration(s.expMinutes) * time.Minute / 4
	return s.now().Add(threshold).After(claims.ExpiresAt.Time)
}

// ExpMinutes returns the token lifetime in minutes
func (s *SessionTokenService) ExpMinutes() int {
	return s.expMinutes
}
