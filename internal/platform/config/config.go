package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration read from the environment.
type Server struct {
	Addr            string        `env:"GFE_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"GFE_LOG_LEVEL" envDefault:"info"`
	Environment     string        `env:"GFE_ENV" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"GFE_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	TrustedProxies  []string      `env:"GFE_TRUSTED_PROXIES" envSeparator:","`

	Backend  Backend
	OAuth    OAuth
	Session  Session
	Redis    RedisConfig
	Estimate Estimate
}

// Backend configures the GFE backend API client.
type Backend struct {
	BaseURL       string        `env:"GFE_BACKEND_BASE_URL" envDefault:"https://gfe-backend-837326026335.us-central1.run.app"`
	Timeout       time.Duration `env:"GFE_BACKEND_TIMEOUT" envDefault:"10s"`
	Retries       int           `env:"GFE_BACKEND_RETRIES" envDefault:"3"`
	ClientVersion string        `env:"GFE_CLIENT_VERSION" envDefault:"1.0.0"`
}

// OAuth configures the external identity provider endpoints.
type OAuth struct {
	AuthorizeURL    string        `env:"GFE_OAUTH_AUTHORIZE_URL" envDefault:"https://www.wix.com/oauth/authorize"`
	TokenURL        string        `env:"GFE_OAUTH_TOKEN_URL" envDefault:"https://www.wix.com/oauth/access_token"`
	Scope           string        `env:"GFE_OAUTH_SCOPE" envDefault:"offline_access"`
	ExchangeTimeout time.Duration `env:"GFE_OAUTH_EXCHANGE_TIMEOUT" envDefault:"10s"`
}

// Session configures the browsing-context cookie and persisted key lifetime.
type Session struct {
	CookieName   string        `env:"GFE_SESSION_COOKIE" envDefault:"gfe_session"`
	CookieSecure bool          `env:"GFE_COOKIE_SECURE" envDefault:"true"`
	TTL          time.Duration `env:"GFE_SESSION_TTL" envDefault:"720h"`
}

// RedisConfig configures the optional Redis session backend. An empty URL
// selects the in-memory store.
type RedisConfig struct {
	URL          string        `env:"GFE_REDIS_URL"`
	PoolSize     int           `env:"GFE_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"GFE_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"GFE_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"GFE_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"GFE_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Estimate configures the estimation circuit breaker.
type Estimate struct {
	FailureThreshold int           `env:"GFE_ESTIMATE_FAILURE_THRESHOLD" envDefault:"5"`
	Cooldown         time.Duration `env:"GFE_ESTIMATE_COOLDOWN" envDefault:"30s"`
}

// Load parses the environment into a Server config.
func Load() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Backend.Retries < 1 {
		return Server{}, fmt.Errorf("GFE_BACKEND_RETRIES must be at least 1, got %d", cfg.Backend.Retries)
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (s Server) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
