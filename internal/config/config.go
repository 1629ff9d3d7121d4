package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every variable; the bare name is accepted as a fallback.
const EnvPrefix = "VITRINE"

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`

	BackendBaseURL string        `envconfig:"BACKEND_BASE_URL" required:"true"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`

	// DBDSN and RedisURL are optional; in-memory fallbacks are used when empty.
	DBDSN    string `envconfig:"DB_DSN"`
	RedisURL string `envconfig:"REDIS_URL"`

	CatalogCacheTTL      time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"60s"`
	SessionTTL           time.Duration `envconfig:"SESSION_TTL" default:"2h"`
	SessionSweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
	SessionCookie        string        `envconfig:"SESSION_COOKIE" default:"vitrine_session"`
	AuthCookie           string        `envconfig:"AUTH_COOKIE" default:"vitrine_auth"`
	CookieSecure         bool          `envconfig:"COOKIE_SECURE" default:"true"`
	CORSOrigins          []string      `envconfig:"CORS_ORIGINS"`

	OrderPollInterval        time.Duration `envconfig:"ORDER_POLL_INTERVAL" default:"30s"`
	ThreadsPollInterval      time.Duration `envconfig:"THREADS_POLL_INTERVAL" default:"20s"`
	ConversationPollInterval time.Duration `envconfig:"CONVERSATION_POLL_INTERVAL" default:"15s"`
}

// Load builds Config from the environment, applying defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BackendBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid BACKEND_BASE_URL %q", c.BackendBaseURL)
	}
	c.BackendBaseURL = strings.TrimRight(c.BackendBaseURL, "/")
	for name, d := range map[string]time.Duration{
		"ORDER_POLL_INTERVAL":        c.OrderPollInterval,
		"THREADS_POLL_INTERVAL":      c.ThreadsPollInterval,
		"CONVERSATION_POLL_INTERVAL": c.ConversationPollInterval,
		"SESSION_TTL":                c.SessionTTL,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.SessionCookie == "" || c.AuthCookie == "" {
		return errors.New("cookie names must not be empty")
	}
	return nil
}

// Database is the subset of Config the migration tool needs.
type Database struct {
	DBDSN    string `envconfig:"DB_DSN" required:"true"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadDatabase reads only the database settings.
func LoadDatabase() (*Database, error) {
	var cfg Database
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
