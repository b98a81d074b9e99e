package config_test

import (
	"testing"
	"time"

	"github.com/aitimaad/verify-admin-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.AdminEmail != "admin@aitimaad.pk" {
		t.Errorf("unexpected default admin email: %s", cfg.AdminEmail)
	}
	if cfg.SessionTTL != 8*time.Hour {
		t.Errorf("expected default session TTL 8h, got %s", cfg.SessionTTL)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("expected default cache TTL 5m, got %s", cfg.CacheTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("MAX_CONCURRENCY", "4")

	cfg := config.Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.SupabaseURL != "https://example.supabase.co" {
		t.Errorf("unexpected supabase url: %s", cfg.SupabaseURL)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected session TTL 30m, got %s", cfg.SessionTTL)
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("expected max concurrency 4, got %d", cfg.MaxConcurrency)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := config.Load()

	if cfg.Port != 8080 {
		t.Errorf("expected fallback port 8080, got %d", cfg.Port)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("expected fallback timeout 10s, got %s", cfg.HTTPTimeout)
	}
}
