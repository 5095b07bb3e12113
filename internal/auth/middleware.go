package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/sakif/sageexcel/internal/apperror"
)

// contextKey is unexported so no other package can read or overwrite the
// values this package stores in a request context.
type contextKey string

const profileKey contextKey = "profile"

// RequireAuth rejects any request without a valid bearer token.
//
//	Authorization header absent or empty  → 401 missing_token
//	token malformed, tampered, or expired → 401 invalid_token
//
// On success the decoded Profile is stored in the request context and the
// chain continues. A rejected request never reaches the handler, so it has
// no side effects.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing_token", apperror.MissingToken())
				return
			}

			profile, err := tokens.Validate(raw)
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, ErrTokenExpired) {
					msg = "Token expired"
				}
				writeAuthError(w, http.StatusUnauthorized, "invalid_token", apperror.InvalidToken(msg))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
		})
	}
}

// WithProfile returns a copy of ctx carrying p. Exported for handler tests
// that bypass the middleware.
func WithProfile(ctx context.Context, p *Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

// ProfileFromContext returns the authenticated profile, or (nil, false) if
// the request did not pass through RequireAuth.
func ProfileFromContext(ctx context.Context) (*Profile, bool) {
	p, ok := ctx.Value(profileKey).(*Profile)
	return p, ok && p != nil && p.ID != ""
}

// UserIDFromContext is a shortcut for the common case of needing only the ID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	p, ok := ProfileFromContext(ctx)
	if !ok {
		return "", false
	}
	return p.ID, true
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// writeAuthError sends the AppError's message; any other error is hidden
// behind a generic one.
func writeAuthError(w http.ResponseWriter, status int, code string, err error) {
	message := "An internal error occurred"
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
