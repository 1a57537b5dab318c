package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rushteam/swipekit/core"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swipekit.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := core.DefaultConfig()
	if cfg.Quality != def.Quality || cfg.Session != def.Session || cfg.Preference != def.Preference {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
	if len(cfg.Context.Rules) != len(def.Context.Rules) {
		t.Errorf("rules = %d, want %d", len(cfg.Context.Rules), len(def.Context.Rules))
	}
	if cfg.Storage.Backend != "memory" || cfg.Storage.Redis.Addr != def.Storage.Redis.Addr {
		t.Errorf("storage = %+v", cfg.Storage)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, `
session:
  idle_timeout: 10m
  break_threshold: 6
diversity:
  max_per_category: 3
  price_buckets: [10, 20]
context:
  rules:
    - name: rainy
      expr: '"rain" in tags'
      multiplier: 1.3
storage:
  backend: sqlite
  sqlite_path: /tmp/swipe.db
`)
	t.Setenv("SWIPEKIT_SEED", "7")
	t.Setenv("SWIPEKIT_SESSION_BREAK_THRESHOLD", "8")
	t.Setenv("SWIPEKIT_STORAGE_REDIS_ADDR", "redis:6380")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Session.IdleTimeout != 10*time.Minute {
		t.Errorf("idle_timeout = %v", cfg.Session.IdleTimeout)
	}
	if cfg.Session.BreakThreshold != 8 {
		t.Errorf("env must win over file: break_threshold = %d", cfg.Session.BreakThreshold)
	}
	if cfg.Session.CategoryShiftThreshold != core.DefaultCategoryShiftThreshold {
		t.Errorf("unset key lost its default: %d", cfg.Session.CategoryShiftThreshold)
	}
	if cfg.Diversity.MaxPerCategory != 3 || len(cfg.Diversity.PriceBuckets) != 2 {
		t.Errorf("diversity = %+v", cfg.Diversity)
	}
	if len(cfg.Context.Rules) != 1 || cfg.Context.Rules[0].Name != "rainy" {
		t.Errorf("rules = %+v", cfg.Context.Rules)
	}
	if cfg.Seed != 7 || cfg.Storage.Backend != "sqlite" || cfg.Storage.Redis.Addr != "redis:6380" {
		t.Errorf("cfg = seed %d storage %+v", cfg.Seed, cfg.Storage)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", "storage:\n  backend: mongo\n"},
		{"break below shift", "session:\n  category_shift_threshold: 4\n  break_threshold: 2\n"},
		{"epsilon above one", "exploration:\n  epsilon_max: 1.5\n"},
		{"bad rule", "context:\n  rules:\n    - name: broken\n      expr: 'hour >'\n      multiplier: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.body)); err == nil {
				t.Error("Load() error = nil, want validation error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"SWIPEKIT_SEED":                    "seed",
		"SWIPEKIT_HISTORY_WINDOW":          "history_window",
		"SWIPEKIT_SESSION_IDLE_TIMEOUT":    "session.idle_timeout",
		"SWIPEKIT_STORAGE_BACKEND":         "storage.backend",
		"SWIPEKIT_STORAGE_REDIS_POOL_SIZE": "storage.redis.pool_size",
		"SWIPEKIT_SELECTION_BLOCKED_ITEMS": "selection.blocked_items",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%s) = %s, want %s", in, got, want)
		}
	}
}
