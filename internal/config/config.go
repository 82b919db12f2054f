// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Upload  UploadConfig
	Edit    EditConfig
	Session SessionConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// StorageConfig holds object-storage credentials and the table address.
// Credentials come from the environment (or a mounted secret file loaded
// via godotenv), never from source.
type StorageConfig struct {
	// AccessKeyID is the AWS-style access key (required)
	AccessKeyID string `env:"AWS_ACCESS_KEY_ID" required:"true"`

	// SecretAccessKey is the AWS-style secret key (required)
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" required:"true"`

	// Region is the storage region (required)
	Region string `env:"AWS_REGION" required:"true"`

	// Endpoint overrides the storage endpoint for S3-compatible backends
	Endpoint string `env:"S3_ENDPOINT"`

	// Bucket is the bucket holding the table (required)
	Bucket string `env:"BUCKET_NAME" required:"true"`

	// Key is the object key of the primary table (required)
	Key string `env:"PARQUET_KEY" required:"true"`

	// BackupPrefix is the key prefix for pre-overwrite backups (default: backups/)
	BackupPrefix string `env:"BACKUP_PREFIX" default:"backups/"`
}

// UploadConfig holds file upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`
}

// EditConfig holds edit workflow settings.
type EditConfig struct {
	// DeleteConfirmCode is the code required to commit a row deletion (default: 125)
	DeleteConfirmCode string `env:"DELETE_CONFIRM_CODE" default:"125"`

	// DefaultLocalPath is the default path for local saves; when empty it is
	// derived from the object key as <base>_edited.<ext>
	DefaultLocalPath string `env:"DEFAULT_LOCAL_PATH"`
}

// SessionConfig holds edit session lifecycle settings.
type SessionConfig struct {
	// TTL is how long an idle session is kept alive (default: 1h)
	TTL time.Duration `env:"SESSION_TTL" default:"1h"`

	// CleanupInterval is how often expired sessions are reaped (default: 5m)
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" default:"5m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LocalPath returns the configured default local save path, falling back to
// <base>_edited.<ext> derived from the object key.
func (c *Config) LocalPath() string {
	if c.Edit.DefaultLocalPath != "" {
		return c.Edit.DefaultLocalPath
	}
	base := path.Base(c.Storage.Key)
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext) + "_edited" + ext
}
