package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.BlockStrategy != "spin" {
		t.Fatalf("default block strategy")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("default http addr")
	}
	epoch, err := cfg.EpochTime()
	if err != nil {
		t.Fatalf("default epoch: %v", err)
	}
	if !epoch.Equal(DefaultEpoch) {
		t.Fatalf("default epoch value: %v", epoch)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "beryl.json")
	data := []byte(`{"epoch":"2015-01-01T00:00:00Z","blockStrategy":"sleep","httpAddr":":9090","maxProducers":128}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BlockStrategy != "sleep" {
		t.Fatalf("expected sleep")
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090")
	}
	if cfg.MaxProducers != 128 {
		t.Fatalf("expected 128")
	}
	epoch, err := cfg.EpochTime()
	if err != nil {
		t.Fatalf("epoch: %v", err)
	}
	if epoch.Year() != 2015 {
		t.Fatalf("epoch year: %d", epoch.Year())
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("BERYL_BLOCK_STRATEGY", "sleep")
	os.Setenv("BERYL_HTTP_ADDR", ":7070")
	os.Setenv("BERYL_MAX_PRODUCERS", "64")
	t.Cleanup(func() {
		os.Unsetenv("BERYL_BLOCK_STRATEGY")
		os.Unsetenv("BERYL_HTTP_ADDR")
		os.Unsetenv("BERYL_MAX_PRODUCERS")
	})
	FromEnv(&cfg)
	if cfg.BlockStrategy != "sleep" {
		t.Fatalf("env override strategy")
	}
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("env override addr")
	}
	if cfg.MaxProducers != 64 {
		t.Fatalf("env override max producers")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.BlockStrategy = "yield"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}

	cfg = Default()
	cfg.Epoch = time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for future epoch")
	}

	cfg = Default()
	cfg.MaxProducers = 1<<14 + 1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for maxProducers overflow")
	}
}
