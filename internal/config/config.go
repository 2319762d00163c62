// Package config loads the portal configuration from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Session storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	// Server
	Addr        string `env:"PORTAL_ADDR" envDefault:":3000"`
	Environment string `env:"PORTAL_ENV" envDefault:"development"` // development, production

	// Backend REST API
	APIURL     string        `env:"PORTAL_API_URL,required"`
	APITimeout time.Duration `env:"PORTAL_API_TIMEOUT" envDefault:"15s"`

	// Logging
	LogLevel  string `env:"PORTAL_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"PORTAL_LOG_FORMAT" envDefault:"text"` // text, json

	// Persisted sessions
	SessionBackend string `env:"PORTAL_SESSION_BACKEND" envDefault:"sqlite"`
	SQLitePath     string `env:"PORTAL_SQLITE_PATH" envDefault:"portal.db"`
	RedisAddr      string `env:"PORTAL_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"PORTAL_REDIS_PASSWORD"`
	RedisDB        int    `env:"PORTAL_REDIS_DB" envDefault:"0"`

	// Cookies
	CookieSecret string `env:"PORTAL_COOKIE_SECRET"` // 64 hex chars, random per process when empty
	CookieSecure bool   `env:"PORTAL_COOKIE_SECURE" envDefault:"false"`

	// Login throttling, attempts per minute per client address
	LoginRate  float64 `env:"PORTAL_LOGIN_RATE" envDefault:"10"`
	LoginBurst int     `env:"PORTAL_LOGIN_BURST" envDefault:"5"`

	// Set only behind a proxy that overwrites X-Forwarded-For
	TrustedProxy bool `env:"PORTAL_TRUSTED_PROXY" envDefault:"false"`

	// Runtime
	TabTTL      time.Duration `env:"PORTAL_TAB_TTL" envDefault:"30m"`
	DatastarURL string        `env:"PORTAL_DATASTAR_URL"`
	PicoTheme   string        `env:"PORTAL_PICO_THEME" envDefault:"jade"`
}

// Load reads an optional .env file and parses the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom parses configuration from the given variables only.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("PORTAL_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	switch c.SessionBackend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("PORTAL_SESSION_BACKEND must be %q or %q, got %q", BackendSQLite, BackendRedis, c.SessionBackend)
	}
	if c.CookieSecret != "" {
		if _, err := c.CookieKey(); err != nil {
			return err
		}
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return errors.New("PORTAL_LOGIN_RATE and PORTAL_LOGIN_BURST must be positive")
	}
	return nil
}

// IsDevelopment reports whether the portal runs in development mode.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// CookieKey decodes the cookie sealing secret. It returns nil when none is
// configured.
func (c Config) CookieKey() (*[32]byte, error) {
	if c.CookieSecret == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(c.CookieSecret)
	if err != nil || len(raw) != 32 {
		return nil, errors.New("PORTAL_COOKIE_SECRET must be 64 hex characters")
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}
