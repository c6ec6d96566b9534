package dispatch

// Lookup resolves generic functions of one registry by name. It is handed to
// implementations so they can make nested calls in the same context.
// Nested calls are not depth limited.
type Lookup struct {
	registry *Registry
}

// Registry returns the registry the lookup resolves against. It is nil for
// the lookup passed to a function that belongs to no registry.
func (l *Lookup) Registry() *Registry { return l.registry }

func (l *Lookup) function(name string) (*GenericFunction, error) {
	if l.registry == nil {
		return nil, unknownFunction(name)
	}
	return l.registry.Function(name)
}

// Resolve selects the implementation of the named function for args.
func (l *Lookup) Resolve(name string, args Args) (*Registration, bool, error) {
	gf, err := l.function(name)
	if err != nil {
		return nil, false, err
	}
	return gf.Resolve(args)
}

// All returns every registration of the named function matching args,
// best first.
func (l *Lookup) All(name string, args Args) ([]Candidate, error) {
	gf, err := l.function(name)
	if err != nil {
		return nil, err
	}
	return gf.Candidates(args)
}

// Call resolves and invokes the named function.
func (l *Lookup) Call(name string, args Args) (any, error) {
	gf, err := l.function(name)
	if err != nil {
		return nil, err
	}
	return gf.call(l, args)
}

// Invoke calls gf with this lookup as the active context. gf does not have
// to belong to the lookup's registry.
func (l *Lookup) Invoke(gf *GenericFunction, args Args) (any, error) {
	return gf.call(l, args)
}
