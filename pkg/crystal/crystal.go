package crystal

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Bit widths of the three Crystal fields. They sum to 64.
const (
	ProducerBits  = 14
	SequenceBits  = 8
	TimestampBits = 42

	producerShift = SequenceBits + TimestampBits
	sequenceShift = TimestampBits

	// MaxProducer is the largest valid producer id (2^14 - 1).
	MaxProducer = 1<<ProducerBits - 1
	// MaxSequence is the largest valid sequence number (2^8 - 1).
	MaxSequence = 1<<SequenceBits - 1
	// MaxTimestamp is the largest valid timestamp in milliseconds (2^42 - 1),
	// roughly 139 years past the epoch.
	MaxTimestamp = uint64(1)<<TimestampBits - 1

	sequenceMask = uint64(MaxSequence)
)

// Part identifies one of the three fields packed into a Crystal.
type Part uint8

const (
	PartProducer Part = iota
	PartSequence
	PartTimestamp
)

func (p Part) String() string {
	switch p {
	case PartProducer:
		return "producer id"
	case PartSequence:
		return "sequence"
	case PartTimestamp:
		return "timestamp"
	default:
		return "unknown part"
	}
}

// PartOutOfBoundsError reports a field value that does not fit its bit width.
type PartOutOfBoundsError struct {
	Part  Part
	Value uint64
	Max   uint64
}

func (e *PartOutOfBoundsError) Error() string {
	return fmt.Sprintf("crystal: %s %d out of bounds (max %d)", e.Part, e.Value, e.Max)
}

// ErrSequenceExhausted is returned by Generator.TryGenerate when no safe
// sequence number remains in the current millisecond.
var ErrSequenceExhausted = errors.New("crystal: sequence space exhausted for current millisecond")

// Crystal is an opaque 64-bit identifier. The zero value is the Crystal with
// all fields zero.
type Crystal uint64

// New packs the three fields into a Crystal, validating each against its bit
// width. The first out-of-range field yields a *PartOutOfBoundsError naming it.
func New(producer, sequence uint16, timestamp uint64) (Crystal, error) {
	if producer > MaxProducer {
		return 0, &PartOutOfBoundsError{Part: PartProducer, Value: uint64(producer), Max: MaxProducer}
	}
	if sequence > MaxSequence {
		return 0, &PartOutOfBoundsError{Part: PartSequence, Value: uint64(sequence), Max: MaxSequence}
	}
	if timestamp > MaxTimestamp {
		return 0, &PartOutOfBoundsError{Part: PartTimestamp, Value: timestamp, Max: MaxTimestamp}
	}
	return NewUnchecked(producer, sequence, timestamp), nil
}

// NewUnchecked packs the three fields without validation. Out-of-range inputs
// corrupt neighboring fields; callers must have enforced the bounds already.
// The Generator is the intended caller.
func NewUnchecked(producer, sequence uint16, timestamp uint64) Crystal {
	return Crystal(uint64(producer)<<producerShift | uint64(sequence)<<sequenceShift | timestamp)
}

// Producer extracts the 14-bit producer id.
func (c Crystal) Producer() uint16 { return uint16(uint64(c) >> producerShift) }

// Sequence extracts the 8-bit sequence number.
func (c Crystal) Sequence() uint16 { return uint16(uint64(c) >> sequenceShift & sequenceMask) }

// Timestamp extracts the 42-bit millisecond timestamp.
func (c Crystal) Timestamp() uint64 { return uint64(c) & MaxTimestamp }

// Uint64 returns the raw bit pattern.
func (c Crystal) Uint64() uint64 { return uint64(c) }

// Int64 reinterprets the bit pattern as a signed 64-bit integer
// (two's complement, not a numeric cast). The all-ones Crystal maps to -1.
// Intended for storage formats without native unsigned 64-bit support.
func (c Crystal) Int64() int64 { return int64(uint64(c)) }

// FromUint64 reinterprets a raw bit pattern as a Crystal.
func FromUint64(v uint64) Crystal { return Crystal(v) }

// FromInt64 reinterprets a signed bit pattern as a Crystal. Inverse of Int64.
func FromInt64(v int64) Crystal { return Crystal(uint64(v)) }

// Parts is the decomposed form of a Crystal.
type Parts struct {
	Producer  uint16 `json:"producer"`
	Sequence  uint16 `json:"sequence"`
	Timestamp uint64 `json:"timestamp"`
}

// Parts decomposes the Crystal into its fields.
func (c Crystal) Parts() Parts {
	return Parts{Producer: c.Producer(), Sequence: c.Sequence(), Timestamp: c.Timestamp()}
}

// Time resolves the timestamp field against the epoch it was measured from.
func (c Crystal) Time(epoch time.Time) time.Time {
	return epoch.Add(time.Duration(c.Timestamp()) * time.Millisecond)
}

// String returns the fixed-width lowercase hex form of the bit pattern.
func (c Crystal) String() string { return fmt.Sprintf("%016x", uint64(c)) }

// ParseString parses the hex form produced by String.
func ParseString(s string) (Crystal, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("crystal: parse %q: %w", s, err)
	}
	return Crystal(v), nil
}
