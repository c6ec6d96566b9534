// ============================================================================
// mdispatch - Predicate Dispatch Engine
// ============================================================================
//
// Package:     dispatch
// Description: Generic functions dispatched on predicates over their arguments
// Author:      Mike Stoffels
// Created:     2025-02-14
// License:     MIT
// ============================================================================

/*
Package dispatch implements generic functions: named operations with several
implementations, one of which is selected per call by matching predicates
against the call's arguments.

A generic function declares an ordered list of predicates. Each predicate
extracts a key from the arguments:

  - ClassPredicate extracts the *Class of an argument. Registered classes
    match when they appear in the argument class's method resolution order;
    nearer ancestors are more specific.
  - ValuePredicate extracts the argument itself and matches by equality.
  - AnyPredicate extracts nothing useful and matches every registration.
  - CustomPredicate takes caller-supplied extraction and matching functions.

Implementations are registered under one key per predicate. The Any key
matches every concrete key with the lowest specificity. For a call, every
registration whose keys all match is a candidate; candidates are ordered by
their specificity vectors compared slot by slot from the left, then by
explicit priority, then by registration order (later first). The first
candidate wins.

Resolutions are memoised per generic function, keyed by the exact concrete
key tuple. Every registration change clears the memo table under the same
write lock that guards the change, so a resolver never observes a class map
together with a stale cache.

Usage:

	animal := dispatch.MustClass("Animal")
	dog := dispatch.MustClass("Dog", animal)

	reg := dispatch.NewRegistry()
	greet := reg.MustDeclare("greet", dispatch.ClassArg(0))
	greet.MustRegister(dispatch.Keys(animal), dispatch.Const("generic"))
	greet.MustRegister(dispatch.Keys(dog), dispatch.Const("woof"))

	out, err := reg.Call("greet", dispatch.NewArgs(dispatch.NewInstance(dog, nil)))
	// out == "woof"

Classes are the engine's own hierarchy. Values that do not implement Classed
are classified by their Go type; such type classes have Object as their only
base unless declared otherwise with DeclareType.
*/
package dispatch
