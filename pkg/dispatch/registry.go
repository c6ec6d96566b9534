package dispatch

import (
	"sync"

	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
	"github.com/msto63/mdispatch/foundation/core/log"
	"github.com/msto63/mdispatch/foundation/utils/mapx"
	"github.com/msto63/mdispatch/pkg/core/cache"
)

// Registry is a named collection of generic functions.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]*GenericFunction
	sealed    bool

	cacheConfig cache.Config
	logger      *log.Logger
	lookup      *Lookup
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger handed to declared functions.
func WithRegistryLogger(l *log.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistryCache sets the cache configuration of declared functions.
func WithRegistryCache(cfg cache.Config) RegistryOption {
	return func(r *Registry) { r.cacheConfig = cfg }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		functions:   make(map[string]*GenericFunction),
		cacheConfig: cache.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.GetDefault().WithName("dispatch")
	}
	r.lookup = &Lookup{registry: r}
	return r
}

// Declare creates a generic function named name. Options given here are
// applied after the registry's own.
func (r *Registry) Declare(name string, preds []Predicate, opts ...Option) (*GenericFunction, error) {
	base := []Option{WithLogger(r.logger), WithCacheConfig(r.cacheConfig)}
	gf, err := New(name, preds, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	gf.registry = r

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return nil, sealedError("dispatch.Declare", name)
	}
	if _, exists := r.functions[name]; exists {
		return nil, mdwerror.New("generic function "+name+" is already declared").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("dispatch.Declare").
			WithDetail("function", name)
	}
	r.functions[name] = gf
	r.logger.Debug("declared generic function", log.Fields{
		"function": name,
		"arity":    len(preds),
	})
	return gf, nil
}

// MustDeclare declares a function dispatching on preds and panics on error.
func (r *Registry) MustDeclare(name string, preds ...Predicate) *GenericFunction {
	gf, err := r.Declare(name, preds)
	if err != nil {
		panic(err)
	}
	return gf
}

// Function returns the named function or an error with code NOT_FOUND.
func (r *Registry) Function(name string) (*GenericFunction, error) {
	r.mu.RLock()
	gf, ok := r.functions[name]
	r.mu.RUnlock()
	if !ok {
		return nil, unknownFunction(name)
	}
	return gf, nil
}

// Register adds an implementation to the named function.
func (r *Registry) Register(name string, keys []any, impl Implementation, opts ...RegisterOption) (*Registration, error) {
	gf, err := r.Function(name)
	if err != nil {
		return nil, err
	}
	return gf.Register(keys, impl, opts...)
}

// Unregister removes a registration from the named function.
func (r *Registry) Unregister(name string, keys []any) error {
	gf, err := r.Function(name)
	if err != nil {
		return err
	}
	return gf.Unregister(keys)
}

// Call resolves and invokes the named function.
func (r *Registry) Call(name string, args Args) (any, error) {
	return r.lookup.Call(name, args)
}

// Lookup returns the registry's resolution handle.
func (r *Registry) Lookup() *Lookup { return r.lookup }

// Seal freezes the registry: declaring functions and changing any
// registration fails with ErrSealed from now on. Sealing twice is a no-op.
func (r *Registry) Seal() {
	r.mu.Lock()
	if r.sealed {
		r.mu.Unlock()
		return
	}
	r.sealed = true
	for _, gf := range r.functions {
		gf.Seal()
	}
	n := len(r.functions)
	r.mu.Unlock()

	r.logger.Info("registry sealed", log.Field("functions", n))
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Names returns the declared function names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return mapx.SortedKeys(r.functions)
}
