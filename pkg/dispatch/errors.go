package dispatch

import (
	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
)

// Sentinel errors. They match any error carrying the same code under
// errors.Is, so callers can test for a condition while each occurrence
// still carries its own details. Builder methods on a sentinel return a
// copy.
var (
	// ErrNoImplementation is returned by Call when no registration matches
	// and no fallback is configured.
	ErrNoImplementation = mdwerror.Sentinel(mdwerror.CodeNoImplementation, "no implementation found")

	// ErrNotRegistered is returned by Unregister for an unknown key tuple.
	ErrNotRegistered = mdwerror.Sentinel(mdwerror.CodeNotRegistered, "not registered")

	// ErrExtraction is returned when a predicate cannot compute its key.
	ErrExtraction = mdwerror.Sentinel(mdwerror.CodeExtractionFailed, "predicate extraction failed")

	// ErrInvalidHierarchy is returned for classes without a consistent
	// resolution order.
	ErrInvalidHierarchy = mdwerror.Sentinel(mdwerror.CodeInvalidHierarchy, "invalid class hierarchy")

	// ErrSealed is returned when mutating a sealed registry or function.
	ErrSealed = mdwerror.Sentinel(mdwerror.CodeSealed, "registry is sealed")

	// ErrUnknownFunction is returned for calls to undeclared generic functions.
	ErrUnknownFunction = mdwerror.Sentinel(mdwerror.CodeNotFound, "unknown generic function")
)

// ExtractionError reports that predicate could not compute a key.
func ExtractionError(predicate, reason string) *mdwerror.Error {
	return mdwerror.Newf("predicate %s: %s", predicate, reason).
		WithCode(mdwerror.CodeExtractionFailed).
		WithOperation("dispatch.Extract").
		WithDetail("predicate", predicate)
}

func noImplementation(fn string, keys []any) *mdwerror.Error {
	return mdwerror.Newf("no implementation of %s for %s", fn, FormatKeys(keys)).
		WithCode(mdwerror.CodeNoImplementation).
		WithOperation("dispatch.Call").
		WithDetail("function", fn).
		WithDetail("keys", FormatKeys(keys))
}

func notRegistered(fn string, keys []any) *mdwerror.Error {
	return mdwerror.Newf("%s has no registration for %s", fn, FormatKeys(keys)).
		WithCode(mdwerror.CodeNotRegistered).
		WithOperation("dispatch.Unregister").
		WithDetail("function", fn).
		WithDetail("keys", FormatKeys(keys))
}

func sealedError(op, fn string) *mdwerror.Error {
	return mdwerror.Newf("cannot modify %s: registry is sealed", fn).
		WithCode(mdwerror.CodeSealed).
		WithOperation(op).
		WithDetail("function", fn)
}

func unknownFunction(name string) *mdwerror.Error {
	return mdwerror.Newf("unknown generic function %s", name).
		WithCode(mdwerror.CodeNotFound).
		WithOperation("dispatch.Lookup").
		WithDetail("function", name)
}
