package dispatch

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
	"github.com/msto63/mdispatch/foundation/core/log"
	"github.com/msto63/mdispatch/pkg/core/cache"
)

// GenericFunction is a named operation whose implementation is selected per
// call by its predicates.
//
// Resolution takes the read lock; Register and Unregister take the write
// lock and clear the resolution cache before releasing it.
type GenericFunction struct {
	name  string
	preds []Predicate

	mu       sync.RWMutex
	classes  *ClassMap
	memo     *cache.Cache[[]Candidate]
	interned *interner
	sealed   bool

	fallback Implementation
	registry *Registry
	logger   *log.Logger
}

// Option configures a GenericFunction.
type Option func(*GenericFunction)

// WithLogger sets the logger used for registration events.
func WithLogger(l *log.Logger) Option {
	return func(gf *GenericFunction) {
		if l != nil {
			gf.logger = l
		}
	}
}

// WithCacheConfig configures the resolution cache.
func WithCacheConfig(cfg cache.Config) Option {
	return func(gf *GenericFunction) {
		gf.memo = cache.New[[]Candidate](cfg)
	}
}

// WithFallback sets the implementation Call uses when nothing matches.
// Resolve still reports not found.
func WithFallback(impl Implementation) Option {
	return func(gf *GenericFunction) {
		gf.fallback = impl
	}
}

// RegisterOption configures a single registration.
type RegisterOption func(*Registration)

// WithPriority breaks ties between registrations of equal specificity.
// Higher wins.
func WithPriority(p int) RegisterOption {
	return func(r *Registration) { r.Priority = p }
}

// WithDoc attaches a description shown by introspection tools.
func WithDoc(doc string) RegisterOption {
	return func(r *Registration) { r.Doc = doc }
}

// New creates a generic function dispatching on preds, in order.
func New(name string, preds []Predicate, opts ...Option) (*GenericFunction, error) {
	if name == "" {
		return nil, mdwerror.New("generic function name is empty").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("dispatch.New")
	}
	for i, p := range preds {
		if p == nil {
			return nil, mdwerror.New(fmt.Sprintf("%s: predicate %d is nil", name, i)).
				WithCode(mdwerror.CodeInvalidInput).
				WithOperation("dispatch.New").
				WithDetail("function", name)
		}
	}

	gf := &GenericFunction{
		name:     name,
		preds:    append([]Predicate(nil), preds...),
		interned: newInterner(),
	}
	for _, opt := range opts {
		opt(gf)
	}
	if gf.memo == nil {
		gf.memo = cache.New[[]Candidate](cache.DefaultConfig())
	}
	if gf.logger == nil {
		gf.logger = log.GetDefault().WithName("dispatch")
	}
	gf.logger = gf.logger.WithField("function", name)
	gf.classes = newClassMap(gf.preds)
	return gf, nil
}

// MustNew is like New but panics on error.
func MustNew(name string, preds []Predicate, opts ...Option) *GenericFunction {
	gf, err := New(name, preds, opts...)
	if err != nil {
		panic(err)
	}
	return gf
}

// Name returns the function's name.
func (gf *GenericFunction) Name() string { return gf.name }

// Arity returns the number of predicates, which is the length of every key
// tuple.
func (gf *GenericFunction) Arity() int { return len(gf.preds) }

// Predicates returns the function's predicates in slot order.
func (gf *GenericFunction) Predicates() []Predicate {
	return append([]Predicate(nil), gf.preds...)
}

// Register binds impl to keys, one key per predicate. Registering the same
// tuple again replaces the earlier registration.
func (gf *GenericFunction) Register(keys []any, impl Implementation, opts ...RegisterOption) (*Registration, error) {
	if impl == nil {
		return nil, mdwerror.New(fmt.Sprintf("%s: implementation is nil", gf.name)).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("dispatch.Register").
			WithDetail("function", gf.name)
	}
	norm, err := gf.normalize(keys, "dispatch.Register")
	if err != nil {
		return nil, err
	}

	reg := &Registration{ID: uuid.New(), Keys: norm, Impl: impl}
	for _, opt := range opts {
		opt(reg)
	}

	gf.mu.Lock()
	if gf.sealed {
		gf.mu.Unlock()
		return nil, sealedError("dispatch.Register", gf.name)
	}
	replaced := gf.classes.insert(reg)
	dropped := gf.invalidateLocked()
	out := reg.clone()
	gf.mu.Unlock()

	fields := log.Fields{
		"keys":     FormatKeys(norm),
		"priority": reg.Priority,
		"id":       reg.ID.String(),
	}
	if replaced != nil {
		fields["replaced"] = replaced.ID.String()
		gf.logger.Info("registration overridden", fields)
	} else {
		gf.logger.Debug("registered implementation", fields)
	}
	gf.logger.Trace("resolution cache cleared", log.Field("entries", dropped))
	return out, nil
}

// MustRegister is like Register but panics on error.
func (gf *GenericFunction) MustRegister(keys []any, impl Implementation, opts ...RegisterOption) *Registration {
	reg, err := gf.Register(keys, impl, opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Unregister removes the registration for exactly keys. It fails with
// ErrNotRegistered when there is none.
func (gf *GenericFunction) Unregister(keys []any) error {
	norm, err := gf.normalize(keys, "dispatch.Unregister")
	if err != nil {
		return err
	}

	gf.mu.Lock()
	if gf.sealed {
		gf.mu.Unlock()
		return sealedError("dispatch.Unregister", gf.name)
	}
	removed, ok := gf.classes.remove(norm)
	if !ok {
		gf.mu.Unlock()
		return notRegistered(gf.name, norm)
	}
	dropped := gf.invalidateLocked()
	gf.mu.Unlock()

	gf.logger.Debug("unregistered implementation", log.Fields{
		"keys": FormatKeys(norm),
		"id":   removed.ID.String(),
	})
	gf.logger.Trace("resolution cache cleared", log.Field("entries", dropped))
	return nil
}

// Exact returns the registration stored under exactly keys, without any
// hierarchy or wildcard matching.
func (gf *GenericFunction) Exact(keys []any) (*Registration, bool) {
	norm, err := gf.normalize(keys, "dispatch.Exact")
	if err != nil {
		return nil, false
	}
	gf.mu.RLock()
	defer gf.mu.RUnlock()
	reg, ok := gf.classes.exact(norm)
	return reg.clone(), ok
}

// Descendant answers the inverse question of Resolve: it returns the
// registration stored at or below keys in the class hierarchy, the one
// closest to keys. A registration for Dog answers a query for Animal. Any in
// keys accepts every registered key of its slot.
func (gf *GenericFunction) Descendant(keys []any) (*Registration, bool) {
	norm, err := gf.normalize(keys, "dispatch.Descendant")
	if err != nil {
		return nil, false
	}
	gf.mu.RLock()
	defer gf.mu.RUnlock()
	reg, ok := gf.classes.descendant(norm)
	return reg.clone(), ok
}

// Keys extracts the concrete key tuple for args.
func (gf *GenericFunction) Keys(args Args) ([]any, error) {
	keys := make([]any, len(gf.preds))
	for i, p := range gf.preds {
		k, err := p.Extract(args)
		if err != nil {
			return nil, mdwerror.Wrap(err, fmt.Sprintf("%s: %v", gf.name, err)).
				WithOperation("dispatch.Extract").
				WithDetail("function", gf.name)
		}
		if !isComparable(k) {
			return nil, ExtractionError(p.Name(), fmt.Sprintf("key of type %T is not comparable", k)).
				WithDetail("function", gf.name)
		}
		keys[i] = k
	}
	return keys, nil
}

// Resolve selects the implementation for args. found is false when no
// registration matches; that is not an error.
func (gf *GenericFunction) Resolve(args Args) (reg *Registration, found bool, err error) {
	keys, err := gf.Keys(args)
	if err != nil {
		return nil, false, err
	}
	reg, found = gf.ResolveKeys(keys)
	return reg, found, nil
}

// ResolveKeys selects the implementation for an already extracted key tuple.
func (gf *GenericFunction) ResolveKeys(keys []any) (*Registration, bool) {
	reg, ok := gf.resolveKeys(keys)
	return reg.clone(), ok
}

// resolveKeys returns the live registration; it must not leave the package.
func (gf *GenericFunction) resolveKeys(keys []any) (*Registration, bool) {
	cands := gf.lookup(keys)
	if len(cands) == 0 {
		return nil, false
	}
	return cands[0].Registration, true
}

// Candidates returns every registration matching args, best first.
func (gf *GenericFunction) Candidates(args Args) ([]Candidate, error) {
	keys, err := gf.Keys(args)
	if err != nil {
		return nil, err
	}
	cands := gf.lookup(keys)
	out := make([]Candidate, len(cands))
	for i, c := range cands {
		out[i] = c.clone()
	}
	return out, nil
}

// lookup returns the ordered candidates for keys, from the cache when the
// identical tuple was resolved before. An empty result is cached too.
// Tuples holding a key unequal to itself (NaN) have no exact identity and
// are always resolved from the class map.
func (gf *GenericFunction) lookup(keys []any) []Candidate {
	gf.mu.RLock()
	defer gf.mu.RUnlock()

	compute := func() ([]Candidate, error) {
		cands := gf.classes.candidates(keys)
		if cands == nil {
			cands = []Candidate{}
		}
		return cands, nil
	}

	fp, ok := gf.interned.fingerprint(keys)
	if !ok {
		cands, _ := compute()
		return cands
	}
	cands, _ := gf.memo.GetOrSet(fp, compute)
	return cands
}

// Call resolves args and invokes the selected implementation. When nothing
// matches it invokes the fallback, if any, and otherwise fails with
// ErrNoImplementation. Whatever the implementation returns, nil included,
// is returned as is.
func (gf *GenericFunction) Call(args Args) (any, error) {
	return gf.call(gf.newLookup(), args)
}

func (gf *GenericFunction) call(l *Lookup, args Args) (any, error) {
	keys, err := gf.Keys(args)
	if err != nil {
		return nil, err
	}
	reg, found := gf.resolveKeys(keys)
	if !found {
		if gf.fallback != nil {
			return gf.fallback.Invoke(l, args)
		}
		return nil, noImplementation(gf.name, keys)
	}
	return reg.Impl.Invoke(l, args)
}

func (gf *GenericFunction) newLookup() *Lookup {
	if gf.registry != nil {
		return gf.registry.Lookup()
	}
	return &Lookup{}
}

// Registrations returns a snapshot of all registrations in registration
// order.
func (gf *GenericFunction) Registrations() []*Registration {
	gf.mu.RLock()
	defer gf.mu.RUnlock()
	regs := gf.classes.registrations()
	for i, r := range regs {
		regs[i] = r.clone()
	}
	return regs
}

// Seal makes every later Register and Unregister fail with ErrSealed.
func (gf *GenericFunction) Seal() {
	gf.mu.Lock()
	gf.sealed = true
	gf.mu.Unlock()
}

// Sealed reports whether the function has been sealed.
func (gf *GenericFunction) Sealed() bool {
	gf.mu.RLock()
	defer gf.mu.RUnlock()
	return gf.sealed
}

// Stats describes a generic function and its resolution cache.
type Stats struct {
	Name          string
	Arity         int
	Registrations int
	Sealed        bool
	Cache         cache.Stats
	InternedKeys  int
}

// Stats returns a snapshot of the function's counters.
func (gf *GenericFunction) Stats() Stats {
	gf.mu.RLock()
	defer gf.mu.RUnlock()
	return Stats{
		Name:          gf.name,
		Arity:         len(gf.preds),
		Registrations: gf.classes.Len(),
		Sealed:        gf.sealed,
		Cache:         gf.memo.Stats(),
		InternedKeys:  gf.interned.size(),
	}
}

// invalidateLocked drops every cached resolution. Fingerprints are only
// valid for one cache generation, so the interner is reset with it.
// Callers hold the write lock.
func (gf *GenericFunction) invalidateLocked() int {
	n := gf.memo.Clear()
	gf.interned.reset()
	return n
}

func (gf *GenericFunction) normalize(keys []any, op string) ([]any, error) {
	if len(keys) != len(gf.preds) {
		return nil, mdwerror.New(fmt.Sprintf("%s takes %d keys, got %d", gf.name, len(gf.preds), len(keys))).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation(op).
			WithDetail("function", gf.name)
	}
	out := make([]any, len(keys))
	for i, k := range keys {
		if IsAny(k) {
			out[i] = Any
			continue
		}
		if n, ok := gf.preds[i].(KeyNormalizer); ok {
			nk, err := n.NormalizeKey(k)
			if err != nil {
				return nil, err
			}
			k = nk
		}
		if !isComparable(k) {
			return nil, invalidKey(gf.preds[i], k, "key is not comparable")
		}
		out[i] = k
	}
	return out, nil
}
