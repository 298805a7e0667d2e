// Package config loads the client configuration from defaults, an optional YAML
// file and STOREFRONT_* environment variables, in that order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STOREFRONT_"

// Fallback store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the full client configuration.
type Config struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	API      APIConfig      `yaml:"api" envPrefix:"API_"`
	HTTP     HTTPConfig     `yaml:"http" envPrefix:"HTTP_"`
	Fallback FallbackConfig `yaml:"fallback" envPrefix:"FALLBACK_"`
	Engine   EngineConfig   `yaml:"engine" envPrefix:"ENGINE_"`
	Contact  ContactConfig  `yaml:"contact" envPrefix:"CONTACT_"`
}

// APIConfig points the client at the storefront backend.
type APIConfig struct {
	BaseURL  string        `yaml:"base_url" env:"URL"`
	Token    string        `yaml:"token" env:"TOKEN"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// FallbackConfig selects where rejected submissions are kept.
type FallbackConfig struct {
	Backend       string        `yaml:"backend" env:"BACKEND"`
	SQLitePath    string        `yaml:"sqlite_path" env:"SQLITE_PATH"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
	RedisPrefix   string        `yaml:"redis_prefix" env:"REDIS_PREFIX"`
	TTL           time.Duration `yaml:"ttl" env:"TTL"`

	// EncryptionKey is a base64 AES-256 key sealing stored payloads. Empty disables it.
	EncryptionKey string   `yaml:"encryption_key" env:"ENCRYPTION_KEY"`
	PreviousKeys  []string `yaml:"previous_keys" env:"PREVIOUS_KEYS"`
	RedactReasons bool     `yaml:"redact_reasons" env:"REDACT_REASONS"`
}

// EngineConfig tunes the modal engine.
type EngineConfig struct {
	LatePolicy        string `yaml:"late_policy" env:"LATE_POLICY"`
	KeepOpenOnInvalid bool   `yaml:"keep_open_on_invalid" env:"KEEP_OPEN_ON_INVALID"`
	MaxNotices        int    `yaml:"max_notices" env:"MAX_NOTICES"`
}

// ContactConfig is the support contact shown by the contact action.
type ContactConfig struct {
	Phone    string `yaml:"phone" env:"PHONE"`
	Telegram string `yaml:"telegram" env:"TELEGRAM"`
	Email    string `yaml:"email" env:"EMAIL"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: string(logging.FormatText),
		API: APIConfig{
			BaseURL:  "http://localhost:8080",
			Timeout:  30 * time.Second,
			CacheTTL: 30 * time.Second,
		},
		HTTP: HTTPConfig{Addr: ":8088"},
		Fallback: FallbackConfig{
			Backend:       BackendSQLite,
			SQLitePath:    "storefront.db",
			RedisAddr:     "localhost:6379",
			RedisPrefix:   "storefront:fallback:",
			RedactReasons: true,
		},
		Engine: EngineConfig{
			LatePolicy: "drop",
			MaxNotices: 20,
		},
	}
}

// Load builds the configuration. path may be empty; a missing file is an error
// only when path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch logging.Format(strings.ToLower(c.LogFormat)) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, errors.New("api base url is required"))
	}
	switch c.Fallback.Backend {
	case BackendMemory:
	case BackendSQLite:
		if strings.TrimSpace(c.Fallback.SQLitePath) == "" {
			errs = append(errs, errors.New("fallback sqlite path is required"))
		}
	case BackendRedis:
		if strings.TrimSpace(c.Fallback.RedisAddr) == "" {
			errs = append(errs, errors.New("fallback redis address is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown fallback backend %q", c.Fallback.Backend))
	}
	for _, k := range append([]string{c.Fallback.EncryptionKey}, c.Fallback.PreviousKeys...) {
		if k == "" {
			continue
		}
		if _, err := base64.StdEncoding.DecodeString(k); err != nil {
			errs = append(errs, fmt.Errorf("fallback encryption key is not base64: %w", err))
		}
	}
	if c.Fallback.EncryptionKey == "" && len(c.Fallback.PreviousKeys) > 0 {
		errs = append(errs, errors.New("previous fallback keys need an active encryption key"))
	}
	switch c.Engine.LatePolicy {
	case "drop", "apply":
	default:
		errs = append(errs, fmt.Errorf("unknown late policy %q (want drop or apply)", c.Engine.LatePolicy))
	}
	if c.Engine.MaxNotices < 0 {
		errs = append(errs, errors.New("max notices must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
