// ============================================================================
// mdispatch - Predicate Dispatch Engine
// ============================================================================
//
// Package:     invoke
// Description: Calling plain Go functions as dispatch implementations
// Author:      Mike Stoffels
// Created:     2025-02-20
// License:     MIT
// ============================================================================

// Package invoke adapts ordinary Go functions to dispatch.Implementation.
//
// Inspect reports which parameters a function accepts. Mapply binds a call's
// arguments to those parameters: positional arguments fill parameters in
// order, keyword arguments fill the remaining named parameters, and keywords
// the function does not declare are dropped. A first parameter of type
// *dispatch.Lookup receives the active lookup.
//
//	impl := invoke.MustFunc(func(l *dispatch.Lookup, name string, loud bool) string {
//		if loud {
//			return strings.ToUpper(name)
//		}
//		return name
//	}, "name", "loud")
package invoke
