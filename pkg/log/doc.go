// Package log provides Beryl's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. It is backed by Go's standard
// library slog text/JSON handlers, so output interoperates with the slog
// ecosystem while the codebase programs against one consistent facade.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormat(log.FormatText),
//	)
//	l = l.With(log.Component("server"))
//	l.Info("server started", log.Str("addr", ":8080"))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config with string
// level and format values, as loaded from files or environment variables.
//
// # Interop
//
// To integrate with libraries expecting *log.Logger, use ToStdLogger.
package log
