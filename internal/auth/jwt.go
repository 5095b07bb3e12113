// Package auth is the authentication gate: it issues and verifies bearer
// tokens, hashes passwords, and guards protected routes.
//
// TOKEN FLOW:
//  1. POST /api/auth/login verifies the password and calls TokenService.Issue
//  2. The client keeps the token and sends it on every protected call as
//     "Authorization: Bearer <token>"
//  3. RequireAuth validates the signature and expiry and puts the decoded
//     Profile into the request context
//
// Verification needs only the secret, never the database. The flip side is
// that a token carries the profile as it was at login time; changing the
// password does not revoke tokens that are already out there. They simply
// run until exp.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTokenTTL is how long an issued token stays valid.
	DefaultTokenTTL = time.Hour

	issuer = "sageexcel"
)

// ErrTokenExpired is returned by Validate for a well-formed token past its exp.
var ErrTokenExpired = errors.New("auth: token expired")

// Profile is the non-secret user identity embedded in every token.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Role is the authorization role derived from the profile.
func (p Profile) Role() string {
	if p.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. A non-positive ttl selects
// DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. The user ID travels in "sub"; the remaining
// profile fields are private claims.
type claims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Issue signs a token for the given profile using the service's TTL.
func (s *TokenService) Issue(p Profile) (string, error) {
	return s.IssueWithDuration(p, s.ttl)
}

// IssueWithDuration signs a token with a custom lifetime. Tests use a
// negative duration to mint already-expired tokens.
func (s *TokenService) IssueWithDuration(p Profile, d time.Duration) (string, error) {
	if p.ID == "" {
		return "", errors.New("auth: profile has no id")
	}
	now := time.Now()

	c := claims{
		Name:    p.Name,
		Email:   p.Email,
		IsAdmin: p.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token and returns the profile it carries.
//
// The signing method is pinned to HS256, so a token claiming "none" or an
// RSA algorithm is rejected before the signature is even looked at.
func (s *TokenService) Validate(tokenStr string) (*Profile, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &Profile{
		ID:      c.Subject,
		Name:    c.Name,
		Email:   c.Email,
		IsAdmin: c.IsAdmin,
	}, nil
}
