package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VITRINE_BACKEND_BASE_URL", "https://api.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.BackendBaseURL != "https://api.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.BackendBaseURL)
	}
	if cfg.OrderPollInterval != 30*time.Second || cfg.ThreadsPollInterval != 20*time.Second || cfg.ConversationPollInterval != 15*time.Second {
		t.Fatalf("unexpected poll intervals: %+v", cfg)
	}
	if cfg.DBDSN != "" || cfg.RedisURL != "" {
		t.Fatalf("optional stores should default empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VITRINE_BACKEND_BASE_URL", "http://backend:9000")
	t.Setenv("VITRINE_SESSION_TTL", "45m")
	t.Setenv("VITRINE_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("VITRINE_COOKIE_SECURE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if cfg.CookieSecure {
		t.Fatalf("expected insecure cookies")
	}
}

func TestLoadRejectsBadBackendURL(t *testing.T) {
	t.Setenv("VITRINE_BACKEND_BASE_URL", "not a url")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid backend url")
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("VITRINE_BACKEND_BASE_URL", "http://backend")
	t.Setenv("VITRINE_ORDER_POLL_INTERVAL", "0s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero poll interval")
	}
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("VITRINE_DB_DSN", "postgres://localhost/vitrine")

	cfg, err := LoadDatabase()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDSN != "postgres://localhost/vitrine" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
