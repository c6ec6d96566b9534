// ============================================================================
// mdispatch - Predicate Dispatch Engine
// ============================================================================
//
// Package:     version
// Description: Central version management for the library and its tools
// Author:      Mike Stoffels
// Created:     2025-02-14
// License:     MIT
// ============================================================================

package version

// Version constants for mdispatch components
const (
	// Module version
	Module = "0.3.0"

	// Component versions
	Dispatch = "0.3.0"
	Manifest = "0.2.0"
	CLI      = "0.2.0"
)

// Commit is set at build time with -ldflags "-X .../version.Commit=<sha>".
var Commit = "dev"

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "dispatch":
		return Dispatch
	case "manifest":
		return Manifest
	case "cli", "mdispatch":
		return CLI
	default:
		return Module
	}
}
