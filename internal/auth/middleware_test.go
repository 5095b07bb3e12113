package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// echoProfile is a terminal handler that writes the profile ID it sees.
var echoProfile = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	p, ok := ProfileFromContext(r.Context())
	if !ok {
		http.Error(w, "no profile", http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(p.ID))
})

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	valid, _ := ts.Issue(testProfile())
	expired, _ := ts.IssueWithDuration(testProfile(), -time.Minute)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid bearer", "Bearer " + valid, http.StatusOK, "user-123"},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, "user-123"},
		{"no header", "", http.StatusUnauthorized, "missing_token"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "missing_token"},
		{"scheme only", "Bearer", http.StatusUnauthorized, "missing_token"},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, "invalid_token"},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, "Token expired"},
	}

	h := RequireAuth(ts)(echoProfile)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/getFiles", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestUserIDFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id, ok := UserIDFromContext(req.Context()); ok || id != "" {
		t.Errorf("UserIDFromContext() = (%q, %v), want (\"\", false)", id, ok)
	}
}

// =========================================================================
// AUTHORIZER TESTS
// =========================================================================

func TestAuthorizer_AdminOnlyByDefault(t *testing.T) {
	az, err := NewAuthorizer(AuthorizerConfig{}, quietLogger())
	if err != nil {
		t.Fatalf("NewAuthorizer() error = %v", err)
	}

	admin := &Profile{ID: "a", IsAdmin: true}
	user := &Profile{ID: "u"}

	if ok, _ := az.Allowed(admin, ObjectUsers, ActionList); !ok {
		t.Error("admin should be allowed to list users")
	}
	if ok, _ := az.Allowed(user, ObjectUsers, ActionList); ok {
		t.Error("plain user should not be allowed to list users")
	}
}

func TestAuthorizer_OpenUserList(t *testing.T) {
	az, err := NewAuthorizer(AuthorizerConfig{OpenUserList: true}, quietLogger())
	if err != nil {
		t.Fatalf("NewAuthorizer() error = %v", err)
	}

	if ok, _ := az.Allowed(&Profile{ID: "u"}, ObjectUsers, ActionList); !ok {
		t.Error("with OpenUserList, any user should be allowed to list users")
	}
}

func TestAuthorizer_RequireMiddleware(t *testing.T) {
	az, _ := NewAuthorizer(AuthorizerConfig{}, quietLogger())
	h := az.Require(ObjectUsers, ActionList)(echoProfile)

	tests := []struct {
		name       string
		profile    *Profile
		wantStatus int
		wantBody   string
	}{
		{"admin", &Profile{ID: "a", IsAdmin: true}, http.StatusOK, "a"},
		{"user", &Profile{ID: "u"}, http.StatusForbidden, `"message":"Admin access required"`},
		{"anonymous", nil, http.StatusUnauthorized, "Access denied. No token provided."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/getAllUsers", nil)
			if tt.profile != nil {
				req = req.WithContext(WithProfile(req.Context(), tt.profile))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}
