package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port == "" {
		t.Fatal("expected default port")
	}
	if cfg.Address() != ":"+cfg.Port {
		t.Fatalf("address = %q, want :%s", cfg.Address(), cfg.Port)
	}
	if cfg.LowStockCron == "" {
		t.Fatal("expected default low-stock cron spec")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ALLOW_REGISTRATION", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Fatalf("port = %q, want 9999", cfg.Port)
	}
	if !cfg.AllowRegistration {
		t.Fatal("expected registration to be allowed")
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("redis db = %d, want 3", cfg.RedisDB)
	}
}
