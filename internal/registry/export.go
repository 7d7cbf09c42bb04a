package registry

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Export writes every record as a gzip-compressed JSON array, for backup or
// migration to another deployment.
func (r *Registry) Export(w io.Writer) error {
	records, err := r.List()
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(w)
	enc := json.NewEncoder(zw)
	if err := enc.Encode(records); err != nil {
		zw.Close()
		return fmt.Errorf("registry: encode export: %w", err)
	}
	return zw.Close()
}

// Import loads records produced by Export. Records are written by name;
// an incoming id already held by a different name is rejected, leaving
// earlier imported records in place. Returns the number of records written.
func (r *Registry) Import(src io.Reader) (int, error) {
	zr, err := gzip.NewReader(src)
	if err != nil {
		return 0, fmt.Errorf("registry: open import: %w", err)
	}
	defer zr.Close()

	var records []Record
	if err := json.NewDecoder(zr).Decode(&records); err != nil {
		return 0, fmt.Errorf("registry: decode import: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	owner := make(map[uint16]string)
	if err := r.scanLocked(func(rec Record) error {
		owner[rec.ProducerID] = rec.Name
		return nil
	}); err != nil {
		return 0, err
	}

	n := 0
	for _, rec := range records {
		if name, taken := owner[rec.ProducerID]; taken && name != rec.Name {
			return n, fmt.Errorf("registry: id %d already assigned to %q", rec.ProducerID, name)
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return n, err
		}
		if err := r.db.Set(producerKey(rec.Name), b); err != nil {
			return n, err
		}
		owner[rec.ProducerID] = rec.Name
		n++
	}
	return n, nil
}
