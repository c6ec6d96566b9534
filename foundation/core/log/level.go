// File: level.go
// Title: Log Level Definitions
// Description: Defines log levels for filtering and controlling log output.
//              Level metadata lives in a single table indexed by level.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02

package log

import (
	"strings"
)

// Level represents the importance level of a log message
type Level int

const (
	// LevelTrace is the most verbose level; the dispatch engine uses it for
	// cache activity on the resolution path
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	// LevelAudit entries bypass the minimum level
	LevelAudit
)

type levelMeta struct {
	name    string
	short   string
	color   string
	aliases []string
}

var levels = [...]levelMeta{
	LevelTrace: {"trace", "TRC", "\033[37m", []string{"trc"}},
	LevelDebug: {"debug", "DBG", "\033[36m", []string{"dbg"}},
	LevelInfo:  {"info", "INF", "\033[32m", []string{"inf", "information"}},
	LevelWarn:  {"warn", "WRN", "\033[33m", []string{"wrn", "warning"}},
	LevelError: {"error", "ERR", "\033[31m", []string{"err"}},
	LevelFatal: {"fatal", "FTL", "\033[35m", []string{"ftl"}},
	LevelAudit: {"audit", "AUD", "\033[34m", []string{"aud"}},
}

func (l Level) meta() (levelMeta, bool) {
	if l < LevelTrace || int(l) >= len(levels) {
		return levelMeta{}, false
	}
	return levels[l], true
}

// String returns the lower-case level name
func (l Level) String() string {
	if m, ok := l.meta(); ok {
		return m.name
	}
	return "unknown"
}

// ShortString returns the three-letter tag used by the text formatter
func (l Level) ShortString() string {
	if m, ok := l.meta(); ok {
		return m.short
	}
	return "???"
}

// Color returns the ANSI color prefix used by the console formatter
func (l Level) Color() string {
	if m, ok := l.meta(); ok {
		return m.color
	}
	return "\033[0m"
}

// ShouldLog reports whether an entry at l passes the minimum level
func (l Level) ShouldLog(minLevel Level) bool {
	return l == LevelAudit || l >= minLevel
}

// ParseLevel accepts a level name or one of its aliases, case-insensitively
func ParseLevel(level string) (Level, error) {
	s := strings.ToLower(strings.TrimSpace(level))
	for i, m := range levels {
		if s == m.name {
			return Level(i), nil
		}
		for _, alias := range m.aliases {
			if s == alias {
				return Level(i), nil
			}
		}
	}
	return LevelInfo, &ParseError{Input: level, Type: "level"}
}

// ParseError represents an error parsing a log configuration value
type ParseError struct {
	Input string
	Type  string
}

func (e *ParseError) Error() string {
	return "invalid " + e.Type + ": " + e.Input
}

// DefaultLevel returns the default log level
func DefaultLevel() Level {
	return LevelInfo
}
