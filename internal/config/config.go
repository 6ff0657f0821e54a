// Package config loads runtime settings from the environment, after an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	AdminPassword     string `env:"ADMIN_PASSWORD"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	// SessionSecret keys the digests under which session tokens are stored.
	SessionSecret          string        `env:"SESSION_SECRET"`
	SessionTTL             time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"0"`

	LoginMaxFailures  int           `env:"LOGIN_MAX_FAILURES" envDefault:"5"`
	LoginWindow       time.Duration `env:"LOGIN_WINDOW" envDefault:"15m"`
	LoginLimiterCap   int           `env:"LOGIN_LIMITER_CAPACITY" envDefault:"10000"`
	BusinessTimezone  string        `env:"BUSINESS_TIMEZONE" envDefault:"America/New_York"`
	CORSAllowedOrigin []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	SiteURL         string `env:"SITE_URL"`
	SiteTitle       string `env:"SITE_TITLE" envDefault:"Things to be Happy About"`
	SiteDescription string `env:"SITE_DESCRIPTION" envDefault:"A daily journal of things to be happy about - capturing life's joyful moments, one day at a time."`

	UploadSecret   string        `env:"UPLOAD_SECRET"`
	UploadTokenTTL time.Duration `env:"UPLOAD_TOKEN_TTL" envDefault:"10m"`

	// BlobBackend is "s3" or "memory".
	BlobBackend     string `env:"BLOB_BACKEND" envDefault:"s3"`
	S3Bucket        string `env:"S3_BUCKET" envDefault:"happythings"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	ImageModel   string `env:"IMAGE_MODEL" envDefault:"gpt-image-1"`
	ImageSize    string `env:"IMAGE_SIZE" envDefault:"1024x1024"`
	ImageQuality string `env:"IMAGE_QUALITY" envDefault:"high"`
	APIBaseURL   string `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
}

// Load reads .env if present and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// ValidateServer checks what the HTTP server cannot start without.
func (c *Config) ValidateServer() error {
	var errs []error
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required"))
	}
	if len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.BlobBackend != "s3" && c.BlobBackend != "memory" {
		errs = append(errs, fmt.Errorf("BLOB_BACKEND must be s3 or memory, got %q", c.BlobBackend))
	}
	return errors.Join(errs...)
}

// ValidateCollage checks what the collage command needs.
func (c *Config) ValidateCollage() error {
	var errs []error
	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.UploadSecret == "" {
		errs = append(errs, errors.New("UPLOAD_SECRET is required"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	return errors.Join(errs...)
}
