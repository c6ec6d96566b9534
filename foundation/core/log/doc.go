// Package log provides structured logging for mdispatch.
//
// Package: log
// Title: Structured Logging
// Description: Leveled, structured logging with persistent context fields and
//              pluggable output formats (JSON, text, console). Loggers are
//              immutable values: the With* methods return configured copies,
//              so a component can derive a named child logger once and share
//              it across goroutines.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2025-03-02 v0.2.0: Dropped async pipeline and timers, sorted field output
//
// Usage:
//
//	logger := log.New().WithName("dispatch").WithLevel(log.LevelDebug)
//	logger.Debug("implementation registered", log.Fields{
//		"function": "greet",
//		"keys":     "Dog",
//	})
//
// Audit entries are written regardless of the configured level.
package log
