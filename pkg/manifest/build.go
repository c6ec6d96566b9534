// File: build.go
// Title: Manifest Builder
// Description: Turns a Manifest into classes and a populated registry, and
//              parses command line arguments against the built classes.
// Author: msto63
// Version: v0.1.0
// Created: 2025-02-22
// Modified: 2025-02-22
//
// Change History:
// - 2025-02-22 v0.1.0: Initial implementation

package manifest

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
	"github.com/msto63/mdispatch/foundation/core/log"
	"github.com/msto63/mdispatch/foundation/utils/mapx"
	"github.com/msto63/mdispatch/pkg/dispatch"
)

const (
	anyKey      = "any"
	classPrefix = "class:"
)

// builtinClasses can be named in keys and arguments without declaring them.
// Numbers are normalised to int64 and float64, so those are the types named.
var builtinClasses = map[string]*dispatch.Class{
	"object": dispatch.Object,
	"nil":    dispatch.NilClass,
	"int":    dispatch.TypeClass(reflect.TypeOf(int64(0))),
	"float":  dispatch.TypeClass(reflect.TypeOf(float64(0))),
	"string": dispatch.TypeClass(reflect.TypeOf("")),
	"bool":   dispatch.TypeClass(reflect.TypeOf(false)),
}

// Built is the result of building a manifest.
type Built struct {
	Registry *dispatch.Registry
	classes  map[string]*dispatch.Class
}

// Class returns a declared or builtin class by name.
func (b *Built) Class(name string) (*dispatch.Class, bool) {
	if c, ok := b.classes[name]; ok {
		return c, true
	}
	c, ok := builtinClasses[name]
	return c, ok
}

// ClassNames returns the declared class names, ancestors before their
// subclasses.
func (b *Built) ClassNames() []string {
	names := mapx.SortedKeys(b.classes)
	sort.SliceStable(names, func(i, j int) bool {
		di, dj := len(b.classes[names[i]].MRO()), len(b.classes[names[j]].MRO())
		if di != dj {
			return di < dj
		}
		return names[i] < names[j]
	})
	return names
}

// Build declares every class, function and registration of m in a new
// registry. logger may be nil.
func (m *Manifest) Build(logger *log.Logger, opts ...dispatch.RegistryOption) (*Built, error) {
	if logger == nil {
		logger = log.GetDefault()
	}
	logger = logger.WithName("manifest")

	b := &Built{classes: make(map[string]*dispatch.Class)}
	if err := b.defineClasses(m.Classes); err != nil {
		return nil, err
	}

	b.Registry = dispatch.NewRegistry(append([]dispatch.RegistryOption{dispatch.WithRegistryLogger(logger)}, opts...)...)

	for i, fs := range m.Functions {
		if err := b.declare(fs); err != nil {
			return nil, contextError(err, "manifest.Build", fmt.Sprintf("function %d (%s)", i, fs.Name))
		}
	}
	for i, rs := range m.Registrations {
		if err := b.register(rs); err != nil {
			return nil, contextError(err, "manifest.Build", fmt.Sprintf("registration %d (%s)", i, rs.Function))
		}
	}

	logger.Info("manifest built", log.Fields{
		"classes":       len(m.Classes),
		"functions":     len(m.Functions),
		"registrations": len(m.Registrations),
	})
	return b, nil
}

func (b *Built) defineClasses(specs []ClassSpec) error {
	byName := make(map[string]ClassSpec, len(specs))
	for _, cs := range specs {
		if _, dup := byName[cs.Name]; dup {
			return invalid(fmt.Sprintf("class %s declared twice", cs.Name))
		}
		if _, builtin := builtinClasses[cs.Name]; builtin {
			return invalid(fmt.Sprintf("class %s shadows a builtin class", cs.Name))
		}
		byName[cs.Name] = cs
	}

	visiting := make(map[string]bool)
	var define func(name string) (*dispatch.Class, error)
	define = func(name string) (*dispatch.Class, error) {
		if c, ok := b.Class(name); ok {
			return c, nil
		}
		cs, ok := byName[name]
		if !ok {
			return nil, invalid(fmt.Sprintf("unknown class %s", name))
		}
		if visiting[name] {
			return nil, invalid(fmt.Sprintf("class %s inherits from itself", name)).
				WithCode(mdwerror.CodeInvalidHierarchy)
		}
		visiting[name] = true
		defer delete(visiting, name)

		bases := make([]*dispatch.Class, 0, len(cs.Bases))
		for _, bn := range cs.Bases {
			base, err := define(bn)
			if err != nil {
				return nil, err
			}
			bases = append(bases, base)
		}
		c, err := dispatch.NewClass(name, bases...)
		if err != nil {
			return nil, err
		}
		b.classes[name] = c
		return c, nil
	}

	for _, cs := range specs {
		if _, err := define(cs.Name); err != nil {
			return contextError(err, "manifest.Build", "class "+cs.Name)
		}
	}
	return nil
}

func (b *Built) declare(fs FunctionSpec) error {
	preds := make([]dispatch.Predicate, 0, len(fs.Predicates))
	for i, ps := range fs.Predicates {
		p, err := predicate(ps)
		if err != nil {
			return contextError(err, "manifest.Build", fmt.Sprintf("predicate %d", i))
		}
		preds = append(preds, p)
	}

	var opts []dispatch.Option
	if fs.Fallback != nil {
		opts = append(opts, dispatch.WithFallback(dispatch.Const(Normalize(fs.Fallback))))
	}
	_, err := b.Registry.Declare(fs.Name, preds, opts...)
	return err
}

func predicate(ps PredicateSpec) (dispatch.Predicate, error) {
	kind := strings.ToLower(ps.Kind)
	if kind != anyKey && (ps.Arg == nil) == (ps.Keyword == "") {
		return nil, invalid("exactly one of arg and keyword is required")
	}
	def := Normalize(ps.Default)

	switch kind {
	case "class":
		var p *dispatch.ClassPredicate
		if ps.Arg != nil {
			p = dispatch.ClassArg(*ps.Arg)
		} else {
			p = dispatch.ClassKeyword(ps.Keyword)
		}
		if ps.Default != nil {
			p = p.WithDefault(def)
		}
		return p, nil
	case "value":
		var p *dispatch.ValuePredicate
		if ps.Arg != nil {
			p = dispatch.ValueArg(*ps.Arg)
		} else {
			p = dispatch.ValueKeyword(ps.Keyword)
		}
		if ps.Default != nil {
			p = p.WithDefault(def)
		}
		return p, nil
	case anyKey:
		name := ps.Keyword
		if ps.Arg != nil {
			name = fmt.Sprintf("arg%d", *ps.Arg)
		}
		return dispatch.AnySlot(name), nil
	default:
		return nil, invalid(fmt.Sprintf("unknown predicate kind %q", ps.Kind))
	}
}

func (b *Built) register(rs RegistrationSpec) error {
	keys := make([]any, len(rs.Keys))
	for i, raw := range rs.Keys {
		k, err := b.key(raw)
		if err != nil {
			return err
		}
		keys[i] = k
	}

	opts := []dispatch.RegisterOption{dispatch.WithPriority(rs.Priority)}
	if rs.Doc != "" {
		opts = append(opts, dispatch.WithDoc(rs.Doc))
	}
	_, err := b.Registry.Register(rs.Function, keys, dispatch.Const(Normalize(rs.Result)), opts...)
	return err
}

// key parses one registration key.
func (b *Built) key(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return Normalize(raw), nil
	}
	switch {
	case s == anyKey:
		return dispatch.Any, nil
	case strings.HasPrefix(s, classPrefix):
		name := strings.TrimPrefix(s, classPrefix)
		c, ok := b.Class(name)
		if !ok {
			return nil, invalid(fmt.Sprintf("unknown class %s", name))
		}
		return c, nil
	default:
		return s, nil
	}
}

// ParseArg parses a command line argument. "class:<Name>" yields an
// instance of that class; anything else is decoded as a YAML scalar.
func (b *Built) ParseArg(s string) (any, error) {
	if strings.HasPrefix(s, classPrefix) {
		name := strings.TrimPrefix(s, classPrefix)
		c, ok := b.Class(name)
		if !ok {
			return nil, invalid(fmt.Sprintf("unknown class %s", name)).
				WithOperation("manifest.ParseArg")
		}
		return dispatch.NewInstance(c, nil), nil
	}

	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s, nil
	}
	switch v.(type) {
	case map[string]any, []any:
		return s, nil
	}
	return Normalize(v), nil
}

// Normalize converts decoded numbers to int64 and float64 so values from
// YAML, TOML and the command line compare equal. Unsigned values above
// math.MaxInt64 stay uint64.
func Normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return Normalize(uint64(n))
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return n
		}
		return int64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

func invalid(reason string) *mdwerror.Error {
	return mdwerror.New(reason).
		WithCode(mdwerror.CodeInvalidInput).
		WithOperation("manifest.Build")
}

func contextError(err error, op, where string) *mdwerror.Error {
	return mdwerror.Wrap(err, fmt.Sprintf("%s: %v", where, err)).WithOperation(op)
}
