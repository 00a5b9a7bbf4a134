package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ORBIT_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Data.Dir == "" {
		t.Fatalf("empty data dir")
	}
	if cfg.Sync.Port != 8080 {
		t.Fatalf("port=%d, want 8080", cfg.Sync.Port)
	}
	if cfg.Sync.PinTTL != 10*time.Minute {
		t.Fatalf("pinTTL=%v, want 10m", cfg.Sync.PinTTL)
	}
	if cfg.Sync.ServerTTL != 15*time.Minute {
		t.Fatalf("serverTTL=%v, want 15m", cfg.Sync.ServerTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ORBIT_CONFIG", "")
	t.Setenv("ORBIT_SYNC_PORT", "9090")
	t.Setenv("ORBIT_SYNC_PIN_TTL", "5m")
	t.Setenv("ORBIT_DATA_DIR", "/tmp/orbit-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sync.Port != 9090 {
		t.Fatalf("port=%d, want 9090", cfg.Sync.Port)
	}
	if cfg.Sync.PinTTL != 5*time.Minute {
		t.Fatalf("pinTTL=%v, want 5m", cfg.Sync.PinTTL)
	}
	if cfg.Data.Dir != "/tmp/orbit-test" {
		t.Fatalf("dir=%q", cfg.Data.Dir)
	}
}

func TestLoad_RejectsBadPort(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ORBIT_CONFIG", "")
	t.Setenv("ORBIT_SYNC_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Fatalf("port 70000 accepted")
	}
}
