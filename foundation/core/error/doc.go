// Package error provides the structured error type used across mdispatch.
//
// Package: error
// Title: mdispatch Error Handling
// Description: Structured errors with codes, severity, operation context and
//              arbitrary details. Errors compare by code under errors.Is, so
//              packages can export sentinel values built from this type and
//              callers can still attach context per occurrence.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2025-03-02 v0.2.0: Dispatch codes, code-based errors.Is, trimmed metadata
//
// Usage:
//
//	import mdwerror "github.com/msto63/mdispatch/foundation/core/error"
//
//	err := mdwerror.New("no implementation found").
//		WithCode(mdwerror.CodeNoImplementation).
//		WithOperation("dispatch.Call").
//		WithDetail("function", "greet")
//
//	if errors.Is(err, dispatch.ErrNoImplementation) {
//		// apply a default
//	}
package error
