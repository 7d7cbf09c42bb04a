// Package pebblestore wraps a Pebble database with the small key/value
// surface the Beryl runtime needs: open with a durability policy, point
// reads/writes, prefix iteration, close. The producer registry is the only
// consumer; generator sequence state is deliberately never persisted here.
package pebblestore
