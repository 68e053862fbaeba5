package config

import (
	"os"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestResolveDefaults(t *testing.T) {
	os.Unsetenv("DUPEDOG_SCAN_HIDDEN")
	os.Unsetenv("DUPEDOG_WORKERS")

	r := NewResolver()
	cfg := r.Resolve([]string{"/data"}, Overrides{})

	if cfg.Filters.ScanHidden {
		t.Error("expected ScanHidden default false")
	}
	if !cfg.Filters.ScanImages {
		t.Error("expected ScanImages default true")
	}
	if cfg.Workers < 1 {
		t.Errorf("expected Workers >= 1, got %d", cfg.Workers)
	}
	if cfg.CachePath == "" {
		t.Error("expected a non-empty default cache path")
	}
	if len(cfg.Roots) != 1 || cfg.Roots[0] != "/data" {
		t.Errorf("got roots %v", cfg.Roots)
	}
}

func TestResolveEnvOverride(t *testing.T) {
	t.Setenv("DUPEDOG_SCAN_HIDDEN", "true")

	r := NewResolver()
	cfg := r.Resolve(nil, Overrides{})

	if !cfg.Filters.ScanHidden {
		t.Error("expected env var to override default")
	}
}

func TestResolveCLIOverridesEnv(t *testing.T) {
	t.Setenv("DUPEDOG_SCAN_HIDDEN", "true")

	r := NewResolver()
	cfg := r.Resolve(nil, Overrides{ScanHidden: boolPtr(false)})

	if cfg.Filters.ScanHidden {
		t.Error("expected CLI override to win over env var")
	}
}

func TestResolveWorkersOverride(t *testing.T) {
	r := NewResolver()
	workers := 3
	cfg := r.Resolve(nil, Overrides{Workers: &workers})

	if cfg.Workers != 3 {
		t.Errorf("got Workers=%d, want 3", cfg.Workers)
	}
}

func TestResolveMinFileSizeOverride(t *testing.T) {
	r := NewResolver()
	min := uint64(4096)
	cfg := r.Resolve(nil, Overrides{MinFileSize: &min})

	if cfg.Filters.MinFileSize != 4096 {
		t.Errorf("got MinFileSize=%d, want 4096", cfg.Filters.MinFileSize)
	}
}
