// File: logger_test.go
// Title: Logger Tests
// Description: Tests for level filtering, context fields, formatters and
//              severity-aware error logging.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewWithConfig(Config{Level: level, Format: format, Output: buf}), buf
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		minLevel Level
		log      func(*Logger)
		wantLine bool
	}{
		{"debug below info", LevelInfo, func(l *Logger) { l.Debug("x") }, false},
		{"info at info", LevelInfo, func(l *Logger) { l.Info("x") }, true},
		{"warn above info", LevelInfo, func(l *Logger) { l.Warn("x") }, true},
		{"trace below debug", LevelDebug, func(l *Logger) { l.Trace("x") }, false},
		{"audit ignores level", LevelFatal, func(l *Logger) { l.Audit("x") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(tt.minLevel, FormatText)
			tt.log(logger)
			if got := buf.Len() > 0; got != tt.wantLine {
				t.Errorf("wrote line = %v, want %v (%q)", got, tt.wantLine, buf.String())
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)
	logger = logger.WithName("dispatch").WithField("function", "greet")

	logger.Debug("implementation registered", Fields{"keys": "Dog"})

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}

	want := map[string]interface{}{
		"level":    "debug",
		"message":  "implementation registered",
		"logger":   "dispatch",
		"function": "greet",
		"keys":     "Dog",
	}
	for k, v := range want {
		if decoded[k] != v {
			t.Errorf("%s = %v, want %v", k, decoded[k], v)
		}
	}
}

func TestTextOutputSortsFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)
	logger.Info("resolved", Fields{"b": 2, "a": 1})

	line := buf.String()
	if !strings.Contains(line, "[INF]") {
		t.Errorf("missing level in %q", line)
	}
	if !strings.Contains(line, "[a=1 b=2]") {
		t.Errorf("fields not sorted in %q", line)
	}
}

func TestConsoleOutputColors(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatConsole)
	logger.Warn("careful")

	line := buf.String()
	if !strings.HasPrefix(line, LevelWarn.Color()) {
		t.Errorf("console line not colored: %q", line)
	}
	if !strings.HasSuffix(line, "\033[0m\n") {
		t.Errorf("console line not reset: %q", line)
	}
}

func TestWithMethodsDoNotMutateParent(t *testing.T) {
	parent, buf := newBufferLogger(LevelInfo, FormatText)
	child := parent.WithField("child", true).WithLevel(LevelDebug)

	parent.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("parent level changed: %q", buf.String())
	}

	parent.Info("plain")
	if strings.Contains(buf.String(), "child") {
		t.Errorf("parent gained child field: %q", buf.String())
	}

	buf.Reset()
	child.Debug("visible")
	if !strings.Contains(buf.String(), "child=true") {
		t.Errorf("child field missing: %q", buf.String())
	}
}

func TestLogErrorUsesSeverity(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{"low severity logs info", mdwerror.New("miss").WithCode(mdwerror.CodeNoImplementation), "info"},
		{"medium severity logs warn", mdwerror.New("bad").WithCode(mdwerror.CodeExtractionFailed), "warn"},
		{"high severity logs error", mdwerror.New("cycle").WithCode(mdwerror.CodeInvalidHierarchy), "error"},
		{"plain error logs error", errors.New("plain"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelTrace, FormatJSON)
			logger.LogError(tt.err)

			var decoded map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}
			if decoded["level"] != tt.level {
				t.Errorf("level = %v, want %v", decoded["level"], tt.level)
			}
		})
	}
}

func TestConcurrentWritesDoNotInterleave(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)
	named := logger.WithName("a")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); logger.Info("root") }()
		go func() { defer wg.Done(); named.Info("named") }()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Fatalf("got %d lines, want 100", len(lines))
	}
	for _, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Fatalf("interleaved line: %q", line)
		}
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if lvl, err := ParseLevel(" Warning "); err != nil || lvl != LevelWarn {
		t.Errorf("ParseLevel(warning) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) should fail")
	}
	if f, err := ParseFormat("console"); err != nil || f != FormatConsole {
		t.Errorf("ParseFormat(console) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.IsLevelEnabled(LevelError) {
		t.Error("Discard logger should not enable error level")
	}
	logger.Error("dropped")
}
