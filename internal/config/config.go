// Package config loads server configuration in three layers: built-in
// defaults, an optional YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the variable that points at a YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

const (
	StorageSQLite = "sqlite"
	StorageMinio  = "minio"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Storage  StorageConfig  `koanf:"storage"`
	AI       AIConfig       `koanf:"ai"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Port           int           `koanf:"port"`
	CORSOrigins    []string      `koanf:"cors_origins"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	// RateLimitRequests is the per-IP budget per minute across the API.
	RateLimitRequests int `koanf:"rate_limit_requests"`
	// AuthRateLimitRequests is the stricter per-IP budget for register and login.
	AuthRateLimitRequests int `koanf:"auth_rate_limit_requests"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	// OpenUserList lets every signed-in user call getAllUsers.
	OpenUserList bool `koanf:"open_user_list"`
	// AdminEmails are registered with the admin role.
	AdminEmails []string `koanf:"admin_emails"`
}

type StorageConfig struct {
	Backend string      `koanf:"backend"`
	Minio   MinioConfig `koanf:"minio"`
}

type MinioConfig struct {
	Endpoint  string `koanf:"endpoint"`
	Region    string `koanf:"region"`
	Bucket    string `koanf:"bucket"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	UseSSL    bool   `koanf:"use_ssl"`
	Prefix    string `koanf:"prefix"`
}

// AIConfig configures the summary provider. An empty APIKey disables it.
type AIConfig struct {
	APIKey    string        `koanf:"api_key"`
	BaseURL   string        `koanf:"base_url"`
	Model     string        `koanf:"model"`
	MaxTokens int           `koanf:"max_tokens"`
	Timeout   time.Duration `koanf:"timeout"`
	MaxRows   int           `koanf:"max_rows"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                  5000,
			CORSOrigins:           []string{"http://localhost:5173"},
			MaxUploadBytes:        10 << 20,
			ReadTimeout:           15 * time.Second,
			WriteTimeout:          60 * time.Second,
			RateLimitRequests:     300,
			AuthRateLimitRequests: 20,
		},
		Database: DatabaseConfig{
			Path: "data/sageexcel.db",
		},
		Auth: AuthConfig{
			TokenTTL: time.Hour,
		},
		Storage: StorageConfig{
			Backend: StorageSQLite,
			Minio: MinioConfig{
				Region: "us-east-1",
				Bucket: "sageexcel-uploads",
			},
		},
		AI: AIConfig{
			BaseURL:   "https://generativelanguage.googleapis.com/v1beta/openai/",
			Model:     "gemini-2.0-flash",
			MaxTokens: 1024,
			Timeout:   30 * time.Second,
			MaxRows:   500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the Config. Environment variables win over the file, which
// wins over defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps the short environment names to koanf paths.
var envMappings = map[string]string{
	"port":                     "server.port",
	"cors_origins":             "server.cors_origins",
	"max_upload_bytes":         "server.max_upload_bytes",
	"rate_limit_requests":      "server.rate_limit_requests",
	"auth_rate_limit_requests": "server.auth_rate_limit_requests",
	"db_path":                  "database.path",
	"jwt_secret":               "auth.jwt_secret",
	"token_ttl":                "auth.token_ttl",
	"open_user_list":           "auth.open_user_list",
	"admin_emails":             "auth.admin_emails",
	"storage_backend":          "storage.backend",
	"minio_endpoint":           "storage.minio.endpoint",
	"minio_region":             "storage.minio.region",
	"minio_bucket":             "storage.minio.bucket",
	"minio_access_key":         "storage.minio.access_key",
	"minio_secret_key":         "storage.minio.secret_key",
	"minio_use_ssl":            "storage.minio.use_ssl",
	"minio_prefix":             "storage.minio.prefix",
	"ai_api_key":               "ai.api_key",
	"ai_base_url":              "ai.base_url",
	"ai_model":                 "ai.model",
	"ai_max_tokens":            "ai.max_tokens",
	"ai_timeout":               "ai.timeout",
	"ai_max_rows":              "ai.max_rows",
	"log_level":                "logging.level",
	"log_format":               "logging.format",
}

// envTransformFunc returns "" for variables that are not ours, which makes
// koanf skip them.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

var sliceConfigPaths = []string{
	"server.cors_origins",
	"auth.admin_emails",
}

// processSliceFields splits comma-separated env values for slice settings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := []string{}
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("setting %s: %w", path, err)
		}
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Server.RateLimitRequests <= 0 || c.Server.AuthRateLimitRequests <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("auth.jwt_secret (JWT_SECRET) must be at least 16 characters"))
	}

	switch c.Storage.Backend {
	case StorageSQLite:
	case StorageMinio:
		m := c.Storage.Minio
		if m.Endpoint == "" || m.Bucket == "" || m.AccessKey == "" || m.SecretKey == "" {
			errs = append(errs, errors.New("storage.minio needs endpoint, bucket, access_key and secret_key"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q must be %q or %q", c.Storage.Backend, StorageSQLite, StorageMinio))
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if f := c.Logging.Format; f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("logging.format %q must be text or json", f))
	}

	return errors.Join(errs...)
}

// SlogLevel parses Level as a slog level name.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("logging.level %q: %w", l.Level, err)
	}
	return lvl, nil
}

// NewLogger builds the process logger from the logging section.
func (l LoggingConfig) NewLogger() *slog.Logger {
	lvl, err := l.SlogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
