package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string `env:"APP_ENV" envDefault:"development"`
	Port              string `env:"PORT" envDefault:"8080"`
	SupabaseURL       string `env:"SUPABASE_URL"`
	SupabaseAnonKey   string `env:"SUPABASE_ANON_KEY"`
	SupabaseJWTSecret string `env:"SUPABASE_JWT_SECRET"`
	SupabaseJWKSURL   string `env:"SUPABASE_JWKS_URL"`
	DatabaseURL       string `env:"DATABASE_URL"`
	DBMaxConns        int    `env:"DB_MAX_CONNS" envDefault:"4"`
	SessionDBPath     string `env:"SESSION_DB_PATH" envDefault:"storized.db"`
	SessionTTLHours   int    `env:"SESSION_TTL_HOURS" envDefault:"168"`
	SessionSweepMins  int    `env:"SESSION_SWEEP_MINUTES" envDefault:"10"`
	GeoIPDBPath       string `env:"GEOIP_DB_PATH"`
	DefaultLocale     string `env:"DEFAULT_LOCALE" envDefault:"fi"`
	CookieSecure      bool   `env:"COOKIE_SECURE" envDefault:"false"`
	ReadTimeoutSecs   int    `env:"HTTP_READ_TIMEOUT_SECONDS" envDefault:"15"`
	WriteTimeoutSecs  int    `env:"HTTP_WRITE_TIMEOUT_SECONDS" envDefault:"30"`
	IdleTimeoutSecs   int    `env:"HTTP_IDLE_TIMEOUT_SECONDS" envDefault:"60"`
	BackendTimeoutSec int    `env:"BACKEND_TIMEOUT_SECONDS" envDefault:"15"`
	RateLimitPerMin   int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	LogLevel          string `env:"LOG_LEVEL"`

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	BackendTimeout   time.Duration
	SessionTTL       time.Duration
	SweepInterval    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.SupabaseURL = strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/")
	cfg.SupabaseAnonKey = strings.TrimSpace(cfg.SupabaseAnonKey)
	cfg.DefaultLocale = strings.ToLower(strings.TrimSpace(cfg.DefaultLocale))

	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if cfg.SessionTTLHours <= 0 {
		return nil, fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}

	cfg.HTTPReadTimeout = seconds(cfg.ReadTimeoutSecs, 15)
	cfg.HTTPWriteTimeout = seconds(cfg.WriteTimeoutSecs, 30)
	cfg.HTTPIdleTimeout = seconds(cfg.IdleTimeoutSecs, 60)
	cfg.BackendTimeout = seconds(cfg.BackendTimeoutSec, 15)
	cfg.SessionTTL = time.Duration(cfg.SessionTTLHours) * time.Hour
	cfg.SweepInterval = time.Duration(cfg.SessionSweepMins) * time.Minute
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Minute
	}

	return cfg, nil
}

// UseDirectDatabase reports whether table access should bypass PostgREST.
func (c *Config) UseDirectDatabase() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

func seconds(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}
