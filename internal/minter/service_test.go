package minter

import (
	"testing"

	"github.com/stretchr/testify/require"

	cfgpkg "github.com/max-niederman/beryl/internal/config"
	"github.com/max-niederman/beryl/internal/runtime"
	"github.com/max-niederman/beryl/pkg/crystal"
	"github.com/max-niederman/beryl/pkg/log"
)

func newService(t *testing.T) *Service {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Config: cfgpkg.Default()})
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	logger := log.NewLogger(log.WithLevel(log.ErrorLevel))
	return New(rt, logger)
}

func TestMintBatchUnique(t *testing.T) {
	s := newService(t)

	crystals, err := s.Mint(3, 600)
	require.NoError(t, err)
	require.Len(t, crystals, 600)

	seen := make(map[crystal.Crystal]struct{}, len(crystals))
	for _, c := range crystals {
		require.Equal(t, uint16(3), c.Producer())
		_, dup := seen[c]
		require.False(t, dup, "duplicate crystal %v", c)
		seen[c] = struct{}{}
	}
}

func TestMintBatchBounds(t *testing.T) {
	s := newService(t)

	_, err := s.Mint(0, 0)
	require.ErrorIs(t, err, ErrBatchSize)
	_, err = s.Mint(0, MaxBatch+1)
	require.ErrorIs(t, err, ErrBatchSize)
}

func TestMintRejectsOversizedProducer(t *testing.T) {
	s := newService(t)

	_, err := s.Mint(crystal.MaxProducer+1, 1)
	require.Error(t, err)
}

func TestTryMint(t *testing.T) {
	s := newService(t)

	c, err := s.TryMint(5)
	require.NoError(t, err)
	require.Equal(t, uint16(5), c.Producer())
	require.Equal(t, uint16(0), c.Sequence())
}

func TestMintForAllocates(t *testing.T) {
	s := newService(t)

	a, err := s.MintFor("api", 2)
	require.NoError(t, err)
	require.Len(t, a, 2)

	b, err := s.MintFor("worker", 1)
	require.NoError(t, err)

	require.NotEqual(t, a[0].Producer(), b[0].Producer())

	// Same name keeps its id.
	c, err := s.MintFor("api", 1)
	require.NoError(t, err)
	require.Equal(t, a[0].Producer(), c[0].Producer())
}
