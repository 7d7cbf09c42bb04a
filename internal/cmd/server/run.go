package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	cfgpkg "github.com/max-niederman/beryl/internal/config"
	"github.com/max-niederman/beryl/internal/runtime"
	httpserver "github.com/max-niederman/beryl/internal/server/http"
	logpkg "github.com/max-niederman/beryl/pkg/log"
)

// Options for running the server.
type Options struct {
	DataDir  string
	HTTPAddr string
	Config   cfgpkg.Config
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server
// fails.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so callers that
	// don't pass a signal-aware context still shut down cleanly.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.DataDir == "" {
		opts.DataDir = opts.Config.DataDir
	}
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.HTTPAddr == "" {
		opts.HTTPAddr = opts.Config.HTTPAddr
	}

	logger, err := logpkg.ApplyConfig(&logpkg.Config{
		Level:  opts.Config.LogLevel,
		Format: opts.Config.LogFormat,
	})
	if err != nil {
		return err
	}

	rt, err := runtime.Open(runtime.Options{
		DataDir: filepath.Join(opts.DataDir, "store"),
		Config:  opts.Config,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info("beryl server starting",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("epoch", opts.Config.Epoch),
		logpkg.Str("block", opts.Config.BlockStrategy))

	srv := httpserver.New(rt, logger)
	defer srv.Close()
	return srv.ListenAndServe(sctx, opts.HTTPAddr)
}
