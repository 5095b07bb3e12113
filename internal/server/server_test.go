package server

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/sageexcel/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           5000,
			CORSOrigins:    []string{"http://localhost:5173"},
			MaxUploadBytes: 1 << 20,
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   5 * time.Second,
		},
		Database: config.DatabaseConfig{Path: ":memory:"},
		Auth: config.AuthConfig{
			JWTSecret:   "server-test-secret-0123456789",
			TokenTTL:    time.Hour,
			AdminEmails: []string{"admin@example.com"},
		},
		Storage: config.StorageConfig{Backend: config.StorageSQLite},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s, err := New(testConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// client is a tiny JSON API client that remembers its bearer token.
type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path, contentType string, body io.Reader) (int, map[string]any) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	var out map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out
}

func (c *client) json(method, path, body string) (int, map[string]any) {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return c.do(method, path, "application/json", r)
}

func (c *client) upload(filename, content string) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, _ = fw.Write([]byte(content))
	require.NoError(c.t, mw.Close())
	return c.do(http.MethodPost, "/api/auth/upload", mw.FormDataContentType(), &buf)
}

func (c *client) signUp(name, email string) {
	c.t.Helper()
	status, _ := c.json(http.MethodPost, "/api/auth/register",
		`{"name":"`+name+`","email":"`+email+`","password":"Passw0rd!"}`)
	require.Equal(c.t, http.StatusCreated, status)

	status, body := c.json(http.MethodPost, "/api/auth/login",
		`{"email":"`+email+`","password":"Passw0rd!"}`)
	require.Equal(c.t, http.StatusCreated, status)
	c.token = body["token"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "sageexcel_http_requests_total")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}

	status, body := c.json(http.MethodGet, "/api/auth/getData", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Access denied. No token provided.", body["message"])

	c.token = "not-a-jwt"
	status, body = c.json(http.MethodGet, "/api/auth/getFiles", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid_token", body["error"])
}

// TestDashboardLifecycle walks the main user journey: sign up, upload a
// spreadsheet, save a chart of it, then delete the chart.
func TestDashboardLifecycle(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}
	c.signUp("Ann", "ann@example.com")

	status, body := c.upload("sales.csv", "region,amount\nA,10\nB,5\nA,15\n")
	require.Equal(t, http.StatusOK, status)
	fileID := body["fileId"].(string)

	status, body = c.json(http.MethodGet, "/api/auth/getData", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["files"], 1)
	assert.Len(t, body["analyses"], 0)

	status, body = c.json(http.MethodPost, "/api/auth/saveAnalysis",
		`{"chartTitle":"Sales","chartType":"bar","selectedFields":["region","amount"],"fileId":"`+fileID+`"}`)
	require.Equal(t, http.StatusCreated, status)
	analysisID := body["analysis"].(map[string]any)["_id"].(string)

	status, body = c.json(http.MethodGet, "/api/auth/getData", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["files"], 1)
	require.Len(t, body["analyses"], 1)
	assert.Equal(t, "Sales", body["analyses"].([]any)[0].(map[string]any)["chartTitle"])

	status, body = c.json(http.MethodGet, "/api/auth/getUser", "")
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, []any{fileID}, user["uploadedFiles"])
	assert.Equal(t, []any{analysisID}, user["savedAnalyses"])

	status, _ = c.json(http.MethodGet, "/api/auth/analysis/"+analysisID+"/chart", "")
	assert.Equal(t, http.StatusOK, status)

	status, body = c.json(http.MethodDelete, "/api/auth/analysis/"+analysisID, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Analysis deleted successfully", body["message"])

	status, body = c.json(http.MethodGet, "/api/auth/getData", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["files"], 1)
	assert.Len(t, body["analyses"], 0)

	status, body = c.json(http.MethodDelete, "/api/auth/delete/"+fileID, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "File deleted successfully", body["message"])

	status, body = c.json(http.MethodGet, "/api/auth/getFiles", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["files"], 0)
}

func TestGetAllUsers_AdminOnly(t *testing.T) {
	ts := newTestServer(t)

	user := &client{t: t, base: ts.URL}
	user.signUp("Ann", "ann@example.com")
	status, body := user.json(http.MethodGet, "/api/auth/getAllUsers", "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["error"])

	admin := &client{t: t, base: ts.URL}
	admin.signUp("Boss", "admin@example.com")
	status, body = admin.json(http.MethodGet, "/api/auth/getAllUsers", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["users"], 2)
}

func TestSummaryDisabledWithoutKey(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}
	c.signUp("Ann", "ann@example.com")

	status, body := c.json(http.MethodPost, "/api/auth/summary", `{"data":[{"a":"1"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", body["error"])
}
