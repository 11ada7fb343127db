// Package config resolves client settings from defaults, an optional YAML
// file, a .env file and COMPASS_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds all client configuration.
type Config struct {
	API     APIConfig   `yaml:"api"`
	OAuth   OAuthConfig `yaml:"oauth"`
	Store   StoreConfig `yaml:"store"`
	Log     LogConfig   `yaml:"log"`
	Verbose bool        `yaml:"verbose"`
}

// APIConfig configures the backend HTTP client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // per request, e.g. "15s"
}

// OAuthConfig configures the loopback listener that receives the Google
// sign-in redirect.
type OAuthConfig struct {
	CallbackAddr string `yaml:"callback_addr"`
	Wait         string `yaml:"wait"`
}

// StoreConfig selects where the session is persisted.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "sqlite", "redis" or "memory"
	Path    string `yaml:"path"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
}

// LogConfig configures the log file. The TUI owns stdout, so logs never go
// there.
type LogConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8081",
			Timeout: "15s",
		},
		OAuth: OAuthConfig{
			CallbackAddr: "127.0.0.1:5173",
			Wait:         "3m",
		},
		Store: StoreConfig{
			Backend:     StoreSQLite,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "compass:",
		},
	}
}

// Load builds the effective configuration. A missing file at path is not an
// error; an unreadable or malformed one is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides cfg from COMPASS_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("COMPASS_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("COMPASS_API_TIMEOUT"); v != "" {
		cfg.API.Timeout = v
	}
	if v := os.Getenv("COMPASS_OAUTH_ADDR"); v != "" {
		cfg.OAuth.CallbackAddr = v
	}
	if v := os.Getenv("COMPASS_OAUTH_WAIT"); v != "" {
		cfg.OAuth.Wait = v
	}
	if v := os.Getenv("COMPASS_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("COMPASS_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("COMPASS_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("COMPASS_REDIS_PASSWORD"); v != "" {
		cfg.Store.RedisPassword = v
	}
	if v := os.Getenv("COMPASS_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Store.RedisDB = n
		}
	}
	if v := os.Getenv("COMPASS_LOG"); v != "" {
		cfg.Log.Path = v
	}
	if v := os.Getenv("COMPASS_VERBOSE"); v != "" {
		cfg.Verbose, _ = strconv.ParseBool(v)
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base url %q must be an absolute http(s) URL", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base url %q must use http or https", c.API.BaseURL)
	}
	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("api timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.OAuth.Wait); err != nil {
		return fmt.Errorf("oauth wait: %w", err)
	}
	if c.OAuth.CallbackAddr == "" {
		return errors.New("oauth callback address is required")
	}
	switch c.Store.Backend {
	case StoreSQLite, StoreMemory:
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("redis address is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
	}
	return nil
}

// RequestTimeout returns the parsed API timeout or the fallback.
func (c Config) RequestTimeout() time.Duration {
	return Duration(c.API.Timeout, 15*time.Second)
}

// OAuthWait returns how long to wait for the sign-in redirect.
func (c Config) OAuthWait() time.Duration {
	return Duration(c.OAuth.Wait, 3*time.Minute)
}

// Duration parses a duration string or returns the fallback if empty or
// malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/compass/config.yaml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "compass", "config.yaml")
}

// DefaultLogPath returns $XDG_STATE_HOME/compass/compass.log, falling back
// to ~/.local/state.
func DefaultLogPath() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "compass", "compass.log"), nil
}
