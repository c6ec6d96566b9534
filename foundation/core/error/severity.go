// File: severity.go
// Title: Error Severity Levels
// Description: Severity classification for errors, derived from the error
//              code unless set explicitly.
// Author: msto63
// Version: v0.1.0
// Created: 2025-01-24
// Modified: 2025-01-24

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates a condition the caller is expected to handle,
	// such as a dispatch miss the application answers with a default
	SeverityLow Severity = iota

	// SeverityMedium indicates misuse of an API, e.g. a missing argument
	SeverityMedium

	// SeverityHigh indicates broken setup such as an inconsistent class hierarchy
	SeverityHigh

	// SeverityCritical indicates an internal invariant violation
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// GetSeverityFromCode returns the default severity for an error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeNoImplementation, CodeNotFound:
		return SeverityLow
	case CodeInvalidHierarchy, CodeConfigError, CodeInvalidConfig, CodeMissingConfig:
		return SeverityHigh
	case CodeInternal:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
