// Package runtime wires storage, config, and the producer registry for a
// single Beryl node. Services and servers are built on top of a Runtime.
package runtime
