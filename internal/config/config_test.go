package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123"

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"http://localhost:5173"}) {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 1h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.OpenUserList {
		t.Error("Auth.OpenUserList should be false by default")
	}
	if cfg.Storage.Backend != StorageSQLite {
		t.Errorf("Storage.Backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.AI.APIKey != "" {
		t.Error("AI.APIKey should be empty by default")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "8081")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("OPEN_USER_LIST", "true")
	t.Setenv("ADMIN_EMAILS", "boss@a.test,ops@a.test")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Errorf("Server.Port = %d, want 8081", cfg.Server.Port)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 2h", cfg.Auth.TokenTTL)
	}
	if !cfg.Auth.OpenUserList {
		t.Error("Auth.OpenUserList = false, want true")
	}
	if !reflect.DeepEqual(cfg.Auth.AdminEmails, []string{"boss@a.test", "ops@a.test"}) {
		t.Errorf("Auth.AdminEmails = %v", cfg.Auth.AdminEmails)
	}
	if cfg.Database.Path != "data/sageexcel.db" {
		t.Errorf("Database.Path = %q, default should survive", cfg.Database.Path)
	}
	if lvl, _ := cfg.Logging.SlogLevel(); lvl != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", lvl)
	}
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
database:
  path: /tmp/from-file.db
auth:
  jwt_secret: from-file-secret-123
ai:
  model: file-model
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000 from file", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/from-file.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Auth.JWTSecret != testSecret {
		t.Errorf("Auth.JWTSecret = %q, env should win over file", cfg.Auth.JWTSecret)
	}
	if cfg.AI.Model != "file-model" {
		t.Errorf("AI.Model = %q", cfg.AI.Model)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("Load() error = %v, want jwt_secret complaint", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := defaultConfig()
		c.Auth.JWTSecret = testSecret
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "jwt_secret"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "s3" }, "storage.backend"},
		{"minio without credentials", func(c *Config) { c.Storage.Backend = StorageMinio }, "storage.minio"},
		{"minio complete", func(c *Config) {
			c.Storage.Backend = StorageMinio
			c.Storage.Minio.Endpoint = "localhost:9000"
			c.Storage.Minio.AccessKey = "ak"
			c.Storage.Minio.SecretKey = "sk"
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	if got := envTransformFunc("MINIO_ACCESS_KEY"); got != "storage.minio.access_key" {
		t.Errorf("envTransformFunc(MINIO_ACCESS_KEY) = %q", got)
	}
	if got := envTransformFunc("HOME"); got != "" {
		t.Errorf("envTransformFunc(HOME) = %q, want empty", got)
	}
}
