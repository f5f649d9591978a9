package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for configuration when --config is not given.
const DefaultPath = "pixellar.yml"

// InstanceNamePattern mirrors DNS label rules: lowercase alphanumeric, hyphens inside.
var InstanceNamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// PixellarConfig represents the top-level pixellar.yml configuration.
// Every field can be overridden from the environment (PIXELLAR_* variables).
type PixellarConfig struct {
	Version  string        `yaml:"version"`
	Instance string        `yaml:"instance" env:"PIXELLAR_INSTANCE"`
	Redis    RedisConfig   `yaml:"redis"`
	HTTP     HTTPConfig    `yaml:"http"`
	Auth     AuthConfig    `yaml:"auth"`
	Indexer  IndexerConfig `yaml:"indexer"`
	Log      LogConfig     `yaml:"log"`
}

// RedisConfig locates the durable key-value store.
type RedisConfig struct {
	URL string `yaml:"url" env:"PIXELLAR_REDIS_URL"`
}

// HTTPConfig controls the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"PIXELLAR_HTTP_ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PIXELLAR_HTTP_SHUTDOWN_TIMEOUT"`
	// AdminToken, when set, must accompany initialize and game lifecycle requests.
	AdminToken string `yaml:"admin_token,omitempty" env:"PIXELLAR_ADMIN_TOKEN"`
}

// AuthConfig holds painter token settings.
type AuthConfig struct {
	Secret   string        `yaml:"secret" env:"PIXELLAR_AUTH_SECRET"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"PIXELLAR_AUTH_TOKEN_TTL"`
}

// IndexerConfig holds the read-model database location.
type IndexerConfig struct {
	DBPath string `yaml:"db_path" env:"PIXELLAR_INDEX_DB"`
}

// LogConfig selects logrus level and formatter.
type LogConfig struct {
	Level  string `yaml:"level" env:"PIXELLAR_LOG_LEVEL"`
	Format string `yaml:"format" env:"PIXELLAR_LOG_FORMAT"` // "text" or "json"
}

// Default returns the configuration used when no file exists.
func Default() *PixellarConfig {
	return &PixellarConfig{
		Version:  "1.0",
		Instance: "default",
		Redis:    RedisConfig{URL: "redis://localhost:6379/0"},
		HTTP:     HTTPConfig{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		Auth:     AuthConfig{TokenTTL: 24 * time.Hour},
		Indexer:  IndexerConfig{DBPath: "pixellar-index.db"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Validate performs strict validation on the configuration
func (c *PixellarConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Instance == "" {
		return fmt.Errorf("instance name is required")
	}
	if !InstanceNamePattern.MatchString(c.Instance) || len(c.Instance) > 63 {
		return fmt.Errorf("invalid instance name '%s': must be lowercase alphanumeric with hyphens (not at start/end), max 63 characters", c.Instance)
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("redis.url is required")
	}

	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("http.shutdown_timeout must be positive, got %s", c.HTTP.ShutdownTimeout)
	}

	// The secret is only needed by commands that mint or verify tokens; see RequireSecret
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format: %s (must be 'text' or 'json')", c.Log.Format)
	}

	return nil
}

// RequireSecret returns an error unless a token secret is configured.
func (c *PixellarConfig) RequireSecret() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required (set it in %s or PIXELLAR_AUTH_SECRET)", DefaultPath)
	}
	return nil
}

// Load reads pixellar.yml from path over the defaults, applies environment
// overrides and validates the result. A missing file is not an error when
// allowMissing is set; the defaults and environment are used instead.
func Load(path string, allowMissing bool) (*PixellarConfig, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case allowMissing && errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}
