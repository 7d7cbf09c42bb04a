package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/max-niederman/beryl/internal/config"
	"github.com/max-niederman/beryl/pkg/crystal"
)

func TestOpenAndHealth(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if rt.Epoch().IsZero() {
		t.Fatalf("epoch not parsed")
	}
	if rt.BlockStrategy() != crystal.BlockSpin {
		t.Fatalf("default strategy should be spin")
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.BlockStrategy = "yield"
	if _, err := Open(Options{DataDir: t.TempDir(), Config: cfg}); err == nil {
		t.Fatalf("expected error for invalid config")
	}
}

func TestSleepStrategyConfigured(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.BlockStrategy = "sleep"
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	if rt.BlockStrategy() != crystal.BlockSleep {
		t.Fatalf("strategy should be sleep")
	}
}
