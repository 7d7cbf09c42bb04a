// Package httpserver exposes the Beryl minting API over HTTP.
//
// Endpoints:
//
//	GET  /v1/healthz
//	POST /v1/producers/allocate   {"name": "api"}
//	GET  /v1/producers
//	POST /v1/crystals/mint        {"producer": 3, "count": 10} or {"name": "api", "count": 10}
//	GET  /v1/crystals/inspect?id=<signed decimal or 16-digit hex>
//
// Crystals are returned in both signed decimal and hex forms so clients
// without unsigned 64-bit integers can store them directly.
package httpserver
