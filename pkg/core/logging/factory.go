// ============================================================================
// mdispatch - Predicate Dispatch Engine
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers from configuration
// Author:      Mike Stoffels
// Created:     2025-02-24
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	mdwlog "github.com/msto63/mdispatch/foundation/core/log"
	"github.com/msto63/mdispatch/pkg/core/config"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: json, text, console or auto (default: auto)
	Format string

	// Output defaults to stderr
	Output io.Writer

	// Additional outputs
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      config.FormatAuto,
	}
}

// FromConfig derives the logger configuration from the application config.
func FromConfig(cfg *config.Config) LoggerConfig {
	lc := DefaultLoggerConfig(cfg.General.Name)
	lc.Level = cfg.General.LogLevel
	lc.Format = cfg.General.LogFormat
	return lc
}

// NewLogger creates a new Foundation logger
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	level, err := mdwlog.ParseLevel(cfg.Level)
	if err != nil {
		level = mdwlog.DefaultLevel()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	format := resolveFormat(cfg.Format, output)

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:  level,
		Format: format,
		Output: output,
		Name:   cfg.ServiceName,
	})
}

// NewSimpleLogger creates a logger with default settings
func NewSimpleLogger(serviceName string) *mdwlog.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// resolveFormat maps auto to console on a terminal and to JSON elsewhere.
// Unknown names fall back to JSON.
func resolveFormat(name string, output io.Writer) mdwlog.Format {
	if name == "" || name == config.FormatAuto {
		if isTerminal(output) {
			return mdwlog.FormatConsole
		}
		return mdwlog.FormatJSON
	}
	format, err := mdwlog.ParseFormat(name)
	if err != nil {
		return mdwlog.FormatJSON
	}
	return format
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
