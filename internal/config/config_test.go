package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("server:\n  port: \"9090\"\ngame:\n  fast_answer_ms: 2500\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Game.FastAnswerMs != 2500 {
		t.Fatalf("expected fast answer 2500, got %d", cfg.Game.FastAnswerMs)
	}
	if cfg.Game.BasePoints != 10 || cfg.Game.StreakMultiplier != 2 {
		t.Fatalf("expected untouched defaults, got %+v", cfg.Game)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := []byte("[postgres]\nurl = \"postgres://x\"\n\n[badges]\nnight_end_hour = 6\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Postgres.URL != "postgres://x" {
		t.Fatalf("unexpected postgres url %q", cfg.Postgres.URL)
	}
	if cfg.Badges.NightEndHour != 6 || cfg.Badges.LightningCount != 5 {
		t.Fatalf("unexpected badge config %+v", cfg.Badges)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("expected env secret, got %q", cfg.Auth.JWTSecret)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("bogus", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}
