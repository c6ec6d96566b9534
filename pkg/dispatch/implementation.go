package dispatch

// Implementation is the code selected by dispatch. It receives the active
// Lookup so it can make nested generic calls in the same context.
type Implementation interface {
	Invoke(l *Lookup, args Args) (any, error)
}

// Func adapts a function that does not need the active lookup.
type Func func(args Args) (any, error)

// Invoke implements Implementation.
func (f Func) Invoke(_ *Lookup, args Args) (any, error) { return f(args) }

// LookupFunc adapts a function that receives the active lookup.
type LookupFunc func(l *Lookup, args Args) (any, error)

// Invoke implements Implementation.
func (f LookupFunc) Invoke(l *Lookup, args Args) (any, error) { return f(l, args) }

type constImpl struct{ v any }

func (c constImpl) Invoke(*Lookup, Args) (any, error) { return c.v, nil }

// Const returns an implementation that always returns v.
func Const(v any) Implementation {
	return constImpl{v: v}
}
