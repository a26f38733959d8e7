package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestProcess_Defaults(t *testing.T) {
	cfg, err := process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Store.Retries != 3 || cfg.Store.Backoff != time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Store.Endpoint != DefaultStoreEndpoint {
		t.Errorf("expected default endpoint, got %q", cfg.Store.Endpoint)
	}
	if cfg.Chat.PollInterval != 3*time.Second || cfg.Session.TTL != 720*time.Hour {
		t.Errorf("unexpected durations: %v %v", cfg.Chat.PollInterval, cfg.Session.TTL)
	}
	if cfg.Bootstrap.Email != "admin@empresa.com" || cfg.Audit.Workers != 4 {
		t.Errorf("unexpected bootstrap/audit: %+v %+v", cfg.Bootstrap, cfg.Audit)
	}
	if cfg.IsProduction() {
		t.Error("development must not be production")
	}
}

func TestProcess_Overrides(t *testing.T) {
	cfg, err := process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s",
		"ENV":            "Production",
		"STORE_ENDPOINT": "http://localhost:9999/exec",
		"STORE_RETRIES":  "5",
		"CORS_ORIGINS":   "http://a.test,http://b.test",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Endpoint != "http://localhost:9999/exec" || cfg.Store.Retries != 5 {
		t.Errorf("overrides not applied: %+v", cfg.Store)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
}

func TestProcess_RequiresSecret(t *testing.T) {
	if _, err := process(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}
