// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used to classify failures in the
//              dispatch engine and its supporting packages.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2025-03-02 v0.2.0: Replaced platform codes with dispatch codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Dispatch
	CodeNoImplementation Code = "NO_IMPLEMENTATION"
	CodeNotRegistered    Code = "NOT_REGISTERED"
	CodeExtractionFailed Code = "EXTRACTION_FAILED"
	CodeInvalidHierarchy Code = "INVALID_HIERARCHY"
	CodeSealed           Code = "SEALED"
	CodeInvocation       Code = "INVOCATION_FAILED"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// Category returns the coarse category a code belongs to
func (c Code) Category() string {
	switch c {
	case CodeNoImplementation, CodeNotRegistered, CodeExtractionFailed,
		CodeInvalidHierarchy, CodeSealed, CodeInvocation:
		return "dispatch"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return "config"
	case CodeUnknown:
		return "unknown"
	default:
		return "generic"
	}
}
