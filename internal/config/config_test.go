package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Bind != "0.0.0.0:8000" {
		t.Errorf("Bind = %q, expected default bind", cfg.Bind)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("Backend = %q, expected sqlite", cfg.Backend)
	}
	if cfg.LockTimeout != 5*time.Second {
		t.Errorf("LockTimeout = %v, expected 5s", cfg.LockTimeout)
	}
	if cfg.CacheSize != 256 {
		t.Errorf("CacheSize = %d, expected 256", cfg.CacheSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BIND", "127.0.0.1:9000")
	t.Setenv("LOCK_TIMEOUT", "250ms")
	t.Setenv("BALANCE_CACHE_SIZE", "32")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Bind != "127.0.0.1:9000" {
		t.Errorf("Bind = %q", cfg.Bind)
	}
	if cfg.LockTimeout != 250*time.Millisecond {
		t.Errorf("LockTimeout = %v", cfg.LockTimeout)
	}
	if cfg.CacheSize != 32 {
		t.Errorf("CacheSize = %d", cfg.CacheSize)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown backend", "DATA_BACKEND", "mysql"},
		{"postgres without url", "DATA_BACKEND", "postgres"},
		{"bad duration", "LOCK_TIMEOUT", "soon"},
		{"bad cache size", "BALANCE_CACHE_SIZE", "many"},
		{"negative timeout", "LOCK_TIMEOUT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}
