package minter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/max-niederman/beryl/internal/registry"
	"github.com/max-niederman/beryl/internal/runtime"
	"github.com/max-niederman/beryl/pkg/crystal"
	"github.com/max-niederman/beryl/pkg/log"
)

// MaxBatch caps one mint request. 4096 crystals is 16 full milliseconds of a
// producer's sequence space; anything larger should be paged by the caller.
const MaxBatch = 4096

// ErrBatchSize is returned for non-positive or oversized mint counts.
var ErrBatchSize = fmt.Errorf("minter: count must be between 1 and %d", MaxBatch)

// Service mints Crystals on behalf of producers. One generator exists per
// producer id; generators are created on first use and live for the process.
type Service struct {
	mu     sync.Mutex
	rt     *runtime.Runtime
	gens   map[uint16]*crystal.Generator
	logger log.Logger
}

// New builds a minting service on the runtime.
func New(rt *runtime.Runtime, logger log.Logger) *Service {
	return &Service{
		rt:     rt,
		gens:   make(map[uint16]*crystal.Generator),
		logger: logger.WithComponent("minter"),
	}
}

// Mint returns count Crystals for the producer id, blocking through exhausted
// milliseconds with the runtime's configured strategy.
func (s *Service) Mint(producer uint16, count int) ([]crystal.Crystal, error) {
	if count <= 0 || count > MaxBatch {
		return nil, ErrBatchSize
	}
	g, err := s.generator(producer)
	if err != nil {
		return nil, err
	}
	out := make([]crystal.Crystal, count)
	for i := range out {
		out[i] = g.Generate()
	}
	s.logger.Debug("minted batch",
		log.Uint64("producer", uint64(producer)),
		log.Int("count", count))
	return out, nil
}

// TryMint is the non-blocking single-Crystal path; it surfaces
// crystal.ErrSequenceExhausted instead of waiting.
func (s *Service) TryMint(producer uint16) (crystal.Crystal, error) {
	g, err := s.generator(producer)
	if err != nil {
		return 0, err
	}
	return g.TryGenerate()
}

// Allocate assigns (or returns) the producer id for a registered name.
func (s *Service) Allocate(name string) (registry.Record, error) {
	rec, err := s.rt.Registry().Allocate(name)
	if err != nil {
		return registry.Record{}, err
	}
	s.logger.Info("producer allocated",
		log.Str("name", rec.Name),
		log.Uint64("producer", uint64(rec.ProducerID)))
	return rec, nil
}

// MintFor mints for a registered producer name, allocating it on first use.
func (s *Service) MintFor(name string, count int) ([]crystal.Crystal, error) {
	rec, err := s.Allocate(name)
	if err != nil {
		return nil, err
	}
	return s.Mint(rec.ProducerID, count)
}

func (s *Service) generator(producer uint16) (*crystal.Generator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.gens[producer]; ok {
		return g, nil
	}
	g, err := crystal.NewGenerator(producer, s.rt.Epoch(),
		crystal.WithBlockStrategy(s.rt.BlockStrategy()))
	if err != nil {
		var oob *crystal.PartOutOfBoundsError
		if errors.As(err, &oob) {
			return nil, fmt.Errorf("minter: %w", err)
		}
		return nil, err
	}
	s.gens[producer] = g
	return g, nil
}
