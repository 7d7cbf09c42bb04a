package runtime

import (
	"context"
	"time"

	cfgpkg "github.com/max-niederman/beryl/internal/config"
	"github.com/max-niederman/beryl/internal/registry"
	pebblestore "github.com/max-niederman/beryl/internal/storage/pebble"
	"github.com/max-niederman/beryl/pkg/crystal"
)

// Options for building the Runtime.
type Options struct {
	DataDir string
	NoSync  bool
	Config  cfgpkg.Config
}

// Runtime wires storage, config, and the producer registry for a single-node
// instance.
type Runtime struct {
	db     *pebblestore.DB
	reg    *registry.Registry
	config cfgpkg.Config
	epoch  time.Time
	block  crystal.BlockStrategy
}

// Open validates the configuration, initializes storage, and returns a
// Runtime.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	epoch, err := opts.Config.EpochTime()
	if err != nil {
		return nil, err
	}
	block := crystal.BlockSpin
	if opts.Config.BlockStrategy == "sleep" {
		block = crystal.BlockSleep
	}

	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, NoSync: opts.NoSync})
	if err != nil {
		return nil, err
	}
	return &Runtime{
		db:     db,
		reg:    registry.New(db, opts.Config.MaxProducers),
		config: opts.Config,
		epoch:  epoch,
		block:  block,
	}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.CheckHealth()
}

// Registry returns the producer registry.
func (r *Runtime) Registry() *registry.Registry { return r.reg }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Epoch returns the parsed Crystal epoch.
func (r *Runtime) Epoch() time.Time { return r.epoch }

// BlockStrategy returns the configured generator blocking strategy.
func (r *Runtime) BlockStrategy() crystal.BlockStrategy { return r.block }

// DB exposes the underlying store (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }
