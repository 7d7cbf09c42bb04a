package crystal

import (
	"sync"
	"time"
)

// BlockStrategy selects how Generate waits out an exhausted millisecond.
type BlockStrategy int

const (
	// BlockSpin resamples the clock in a tight loop. Lowest wake-up latency,
	// burns a core for the remainder of the millisecond.
	BlockSpin BlockStrategy = iota
	// BlockSleep yields the processor for ~100ns between clock samples. The
	// effective latency depends on the sleep granularity the host provides.
	BlockSleep
)

// unprimed sits outside the 8-bit sequence space: the first same-millisecond
// advance wraps it to zero, and it can never match MaxSequence, so a fresh
// Generator's first TryGenerate cannot spuriously report exhaustion.
const unprimed uint16 = 1<<16 - 1

// Generator mints Crystals for a single producer id. Every generation call
// runs under one mutex, so a Generator is safe for concurrent use. The
// blocking variants hold the mutex while waiting out the exhausted
// millisecond; concurrent callers queue behind them.
//
// Restarting a process resets the sequence state; uniqueness across restarts
// relies on the timestamp field having advanced.
type Generator struct {
	mu sync.Mutex

	id    uint16
	epoch time.Time

	now   func() uint64
	sleep func(time.Duration)
	block BlockStrategy

	sequence      uint16
	lastTimestamp uint64
}

// Option configures a Generator.
type Option func(*Generator)

// WithNow replaces the clock. The function must return milliseconds elapsed
// since the Generator's epoch and should be monotonic; backward samples are
// pinned to the last seen millisecond.
func WithNow(now func() uint64) Option {
	return func(g *Generator) { g.now = now }
}

// WithSleep replaces the short-sleep primitive used by BlockSleep.
func WithSleep(sleep func(time.Duration)) Option {
	return func(g *Generator) { g.sleep = sleep }
}

// WithBlockStrategy sets the strategy Generate delegates to. The choice is
// pure policy with no effect on correctness; benchmark on the target host if
// generator throughput matters.
func WithBlockStrategy(s BlockStrategy) Option {
	return func(g *Generator) { g.block = s }
}

// NewGenerator constructs a Generator for the given producer id and epoch.
// Ids above MaxProducer are rejected with a *PartOutOfBoundsError. The epoch
// must not be in the future when the default clock is used.
func NewGenerator(id uint16, epoch time.Time, opts ...Option) (*Generator, error) {
	if id > MaxProducer {
		return nil, &PartOutOfBoundsError{Part: PartProducer, Value: uint64(id), Max: MaxProducer}
	}
	g := &Generator{
		id:       id,
		epoch:    epoch,
		now:      func() uint64 { return uint64(time.Since(epoch).Milliseconds()) },
		sleep:    time.Sleep,
		sequence: unprimed,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.lastTimestamp = g.now()
	return g, nil
}

// ID returns the producer id this Generator mints under.
func (g *Generator) ID() uint16 { return g.id }

// Epoch returns the reference point timestamps are measured from.
func (g *Generator) Epoch() time.Time { return g.epoch }

// Generate returns the next Crystal using the configured blocking strategy.
// This is the recommended default path.
func (g *Generator) Generate() Crystal {
	if g.block == BlockSleep {
		return g.GenerateBlockSleep()
	}
	return g.GenerateBlockSpin()
}

// TryGenerate returns the next Crystal, or ErrSequenceExhausted when the
// sequence space for the current millisecond is already spent. This is the
// only non-blocking path that cannot emit a duplicate; retry and backoff are
// the caller's policy.
func (g *Generator) TryGenerate() (Crystal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sequence == MaxSequence && g.sample() == g.lastTimestamp {
		return 0, ErrSequenceExhausted
	}
	return g.next(), nil
}

// GenerateBlockSpin busy-waits while the sequence space is saturated and the
// millisecond has not advanced, then mints. Succeeds once the clock moves.
func (g *Generator) GenerateBlockSpin() Crystal {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.sequence == MaxSequence && g.sample() == g.lastTimestamp {
	}
	return g.next()
}

// GenerateBlockSleep is GenerateBlockSpin with a ~100ns sleep between clock
// samples, trading wake-up latency for CPU.
func (g *Generator) GenerateBlockSleep() Crystal {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.sequence == MaxSequence && g.sample() == g.lastTimestamp {
		g.sleep(100 * time.Nanosecond)
	}
	return g.next()
}

// GenerateUnchecked mints without an exhaustion check: a saturated sequence
// wraps silently back to zero within the same millisecond. Never fails, never
// blocks. Only use this when the producer is known to stay under 256
// Crystals per millisecond, otherwise duplicates are possible.
func (g *Generator) GenerateUnchecked() Crystal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next()
}

// sample reads the clock pinned to lastTimestamp: a backward jump is treated
// as the millisecond standing still, so lastTimestamp never regresses and the
// sequence keeps advancing in the pinned millisecond.
func (g *Generator) sample() uint64 {
	if now := g.now(); now > g.lastTimestamp {
		return now
	}
	return g.lastTimestamp
}

// next advances the sequence state and encodes. Caller holds mu.
func (g *Generator) next() Crystal {
	now := g.sample()
	if now == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & MaxSequence
	} else {
		g.sequence = 0
		g.lastTimestamp = now
	}
	return NewUnchecked(g.id, g.sequence, g.lastTimestamp)
}
