// Package crystal implements Beryl's compact, sortable 64-bit identifiers
// and the per-producer generator that mints them.
//
// # Format
//
// A Crystal packs three unsigned fields into 64 bits, most significant first:
//
//	14 bits  producer id   (bits 63-50)
//	 8 bits  sequence      (bits 49-42)
//	42 bits  timestamp     (bits 41-0), milliseconds since an application epoch
//
// The fields tile the word exactly, so a Crystal round-trips losslessly
// through uint64 and, by two's-complement bit reinterpretation, through int64
// for storage systems without unsigned 64-bit support.
//
// # Uniqueness
//
// A Generator owns one producer id and never emits the same
// (producer, sequence, timestamp) triple twice, provided no more than 256
// Crystals are requested within one millisecond through the unchecked path.
// When the sequence space for the current millisecond is spent, callers
// choose the policy: TryGenerate fails fast, GenerateBlockSpin and
// GenerateBlockSleep wait for the next millisecond, and GenerateUnchecked
// wraps silently at the caller's own risk.
//
// Usage
//
//	g, err := crystal.NewGenerator(42, epoch)
//	if err != nil { ... }
//	c := g.Generate()
//	c.Producer()  // 42
//	c.Int64()     // signed form for storage
package crystal
