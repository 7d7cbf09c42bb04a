// Package registry persistently assigns 14-bit producer ids to named
// producers, so service instances in one deployment get distinct ids without
// manual coordination. Allocation is idempotent per name and survives
// restarts; what a producer does with its id (the generator's sequence and
// timestamp state) is never stored.
package registry
