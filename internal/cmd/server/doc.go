// Package serverrun boots the Beryl runtime and HTTP server and blocks until
// shutdown. It exists so the CLI entrypoint stays thin and the run loop is
// testable.
package serverrun
