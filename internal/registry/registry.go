package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	pebblestore "github.com/max-niederman/beryl/internal/storage/pebble"
	"github.com/max-niederman/beryl/pkg/crystal"
)

var (
	// ErrSpaceFull means every allowed producer id is taken.
	ErrSpaceFull = errors.New("registry: no free producer ids")
	// ErrNotFound means no producer is registered under the name.
	ErrNotFound = errors.New("registry: producer not found")
)

var producerPrefix = []byte("producer/")

// Record is one persisted producer assignment.
type Record struct {
	Name        string `json:"name"`
	ProducerID  uint16 `json:"producerId"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

// Registry allocates producer ids backed by the pebble store.
type Registry struct {
	mu  sync.Mutex
	db  *pebblestore.DB
	max int
}

// New creates a Registry. maxProducers caps allocations; zero means the full
// 14-bit space.
func New(db *pebblestore.DB, maxProducers int) *Registry {
	if maxProducers <= 0 || maxProducers > crystal.MaxProducer+1 {
		maxProducers = crystal.MaxProducer + 1
	}
	return &Registry{db: db, max: maxProducers}
}

func producerKey(name string) []byte {
	k := make([]byte, 0, len(producerPrefix)+len(name))
	k = append(k, producerPrefix...)
	k = append(k, name...)
	return k
}

// Allocate returns the Record for name, assigning the lowest free producer id
// on first use. Idempotent: repeated calls with the same name return the same
// id. Fails with ErrSpaceFull once every allowed id is assigned.
func (r *Registry) Allocate(name string) (Record, error) {
	if name == "" {
		return Record{}, errors.New("registry: producer name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := producerKey(name)
	if b, err := r.db.Get(key); err == nil {
		var rec Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return Record{}, fmt.Errorf("registry: corrupt record for %q: %w", name, err)
		}
		return rec, nil
	} else if !errors.Is(err, pebblestore.ErrNotFound) {
		return Record{}, err
	}

	used := make(map[uint16]bool, r.max)
	if err := r.scanLocked(func(rec Record) error {
		used[rec.ProducerID] = true
		return nil
	}); err != nil {
		return Record{}, err
	}
	if len(used) >= r.max {
		return Record{}, ErrSpaceFull
	}

	id := uint16(0)
	for used[id] {
		id++
	}

	rec := Record{Name: name, ProducerID: id, CreatedAtMs: time.Now().UnixMilli()}
	b, err := json.Marshal(rec)
	if err != nil {
		return Record{}, err
	}
	if err := r.db.Set(key, b); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Lookup returns the Record for name without allocating.
func (r *Registry) Lookup(name string) (Record, error) {
	b, err := r.db.Get(producerKey(name))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, fmt.Errorf("registry: corrupt record for %q: %w", name, err)
	}
	return rec, nil
}

// List returns all records ordered by producer id.
func (r *Registry) List() ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Record
	if err := r.scanLocked(func(rec Record) error {
		out = append(out, rec)
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProducerID < out[j].ProducerID })
	return out, nil
}

// Release removes name's assignment, returning its id to the free pool.
func (r *Registry) Release(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := producerKey(name)
	if _, err := r.db.Get(key); errors.Is(err, pebblestore.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return r.db.Delete(key)
}

func (r *Registry) scanLocked(fn func(Record) error) error {
	return r.db.Scan(producerPrefix, func(_, value []byte) error {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("registry: corrupt record: %w", err)
		}
		return fn(rec)
	})
}
