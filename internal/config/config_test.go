package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("expected 10s http timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.AggregateTimeout != 20*time.Second {
		t.Fatalf("expected 20s aggregate timeout, got %s", cfg.AggregateTimeout)
	}
	if cfg.DefaultLimit != 10 || cfg.MaxLimit != 25 {
		t.Fatalf("unexpected limits %d/%d", cfg.DefaultLimit, cfg.MaxLimit)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Fatalf("unexpected user agent %q", cfg.UserAgent)
	}
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_MS", "2500")
	t.Setenv("STORAGE_TYPE", "bbolt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPTimeout != 2500*time.Millisecond {
		t.Fatalf("expected env override, got %s", cfg.HTTPTimeout)
	}
	if cfg.StorageType != "bbolt" {
		t.Fatalf("expected bbolt storage, got %q", cfg.StorageType)
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	t.Setenv("AGGREGATE_TIMEOUT_MS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero aggregate timeout")
	}
}

func TestLoadRejectsDefaultAboveMax(t *testing.T) {
	t.Setenv("DEFAULT_LIMIT", "30")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when default_limit exceeds max_limit")
	}
}

func TestLoadWithFlagsOverridesDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("providers-file", "", "")
	fs.String("unrelated", "", "")
	if err := fs.Parse([]string{"--providers-file=./catalog.yaml", "--unrelated=x"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadWithFlags(fs)
	if err != nil {
		t.Fatalf("LoadWithFlags: %v", err)
	}
	if cfg.ProvidersFile != "./catalog.yaml" {
		t.Fatalf("expected flag value, got %q", cfg.ProvidersFile)
	}
}
