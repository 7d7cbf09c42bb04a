// Package minter is the service facade over per-producer Crystal generators.
// It lazily builds one generator per producer id, all sharing the runtime's
// epoch and blocking strategy, and serves batch minting for the HTTP API and
// CLI.
package minter
