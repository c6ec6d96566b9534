package dispatch

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
)

// Class is a node in a dispatch class hierarchy. Its method resolution order
// is the C3 linearisation of its bases, so diamonds resolve the same way as
// in languages with multiple inheritance. Classes are immutable.
type Class struct {
	name  string
	bases []*Class
	mro   []*Class
	typ   reflect.Type
}

// Classed is implemented by values that report their own dispatch class.
type Classed interface {
	DispatchClass() *Class
}

var (
	// Object is the root of every hierarchy.
	Object = newRootClass("object")

	// NilClass classifies the untyped nil.
	NilClass = MustClass("nil")
)

func newRootClass(name string) *Class {
	c := &Class{name: name}
	c.mro = []*Class{c}
	return c
}

// NewClass creates a class with the given bases, in declaration order.
// Without bases the class derives from Object.
func NewClass(name string, bases ...*Class) (*Class, error) {
	return newClass(name, nil, bases)
}

// MustClass is like NewClass but panics on error. Useful from package vars.
func MustClass(name string, bases ...*Class) *Class {
	c, err := NewClass(name, bases...)
	if err != nil {
		panic(err)
	}
	return c
}

func newClass(name string, typ reflect.Type, bases []*Class) (*Class, error) {
	if strings.TrimSpace(name) == "" {
		return nil, mdwerror.New("class name must not be empty").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("dispatch.NewClass")
	}
	if len(bases) == 0 {
		bases = []*Class{Object}
	}

	seen := make(map[*Class]bool, len(bases))
	for i, b := range bases {
		if b == nil {
			return nil, hierarchyError(name, fmt.Sprintf("base %d is nil", i))
		}
		if seen[b] {
			return nil, hierarchyError(name, fmt.Sprintf("duplicate base %s", b.name))
		}
		seen[b] = true
	}

	c := &Class{
		name:  name,
		bases: append([]*Class(nil), bases...),
		typ:   typ,
	}

	seqs := make([][]*Class, 0, len(bases)+1)
	for _, b := range bases {
		seqs = append(seqs, b.mro)
	}
	seqs = append(seqs, c.bases)

	merged, err := c3Merge(seqs)
	if err != nil {
		return nil, hierarchyError(name, err.Error())
	}
	c.mro = append([]*Class{c}, merged...)
	return c, nil
}

func hierarchyError(name, reason string) *mdwerror.Error {
	return mdwerror.New(fmt.Sprintf("cannot create class %s: %s", name, reason)).
		WithCode(mdwerror.CodeInvalidHierarchy).
		WithOperation("dispatch.NewClass").
		WithDetail("class", name)
}

// c3Merge repeatedly takes the first head that does not appear in the tail
// of any sequence.
func c3Merge(seqs [][]*Class) ([]*Class, error) {
	var result []*Class
	for {
		pending := seqs[:0:0]
		for _, s := range seqs {
			if len(s) > 0 {
				pending = append(pending, s)
			}
		}
		if len(pending) == 0 {
			return result, nil
		}

		var next *Class
		for _, s := range pending {
			if !inTail(s[0], pending) {
				next = s[0]
				break
			}
		}
		if next == nil {
			heads := make([]string, 0, len(pending))
			for _, s := range pending {
				heads = append(heads, s[0].name)
			}
			return nil, fmt.Errorf("inconsistent method resolution order among %s", strings.Join(heads, ", "))
		}

		result = append(result, next)
		for i, s := range pending {
			if s[0] == next {
				pending[i] = s[1:]
			}
		}
		seqs = pending
	}
}

func inTail(c *Class, seqs [][]*Class) bool {
	for _, s := range seqs {
		for _, t := range s[1:] {
			if t == c {
				return true
			}
		}
	}
	return false
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

func (c *Class) String() string { return c.name }

// Type returns the Go type a type class was derived from, or nil.
func (c *Class) Type() reflect.Type { return c.typ }

// Bases returns the direct bases in declaration order.
func (c *Class) Bases() []*Class {
	return append([]*Class(nil), c.bases...)
}

// MRO returns the method resolution order, starting with c and ending with
// Object.
func (c *Class) MRO() []*Class {
	return append([]*Class(nil), c.mro...)
}

// Distance returns the position of ancestor in c's resolution order, or -1
// when ancestor is not an ancestor of c. A class has distance 0 to itself.
func (c *Class) Distance(ancestor *Class) int {
	for i, a := range c.mro {
		if a == ancestor {
			return i
		}
	}
	return -1
}

// IsSubclass reports whether other appears in c's resolution order.
func (c *Class) IsSubclass(other *Class) bool {
	return c.Distance(other) >= 0
}

// Instance pairs a value with an explicit class. It is the simplest way to
// dispatch on declared classes without defining a Go type per class.
type Instance struct {
	class *Class
	Value any
}

// NewInstance returns an Instance of class c carrying v.
func NewInstance(c *Class, v any) Instance {
	return Instance{class: c, Value: v}
}

// DispatchClass implements Classed.
func (i Instance) DispatchClass() *Class { return i.class }

func (i Instance) String() string {
	if i.Value == nil {
		return "<" + i.class.String() + ">"
	}
	return fmt.Sprintf("<%s %v>", i.class, i.Value)
}

// typeClasses maps Go types to their dispatch classes. Entries are created
// on first use or by DeclareType and never change afterwards.
var typeClasses = struct {
	sync.RWMutex
	m map[reflect.Type]*Class
}{m: make(map[reflect.Type]*Class)}

// TypeClass returns the class of Go type t. Undeclared types get a class
// whose only base is Object. A nil type yields NilClass.
func TypeClass(t reflect.Type) *Class {
	if t == nil {
		return NilClass
	}

	typeClasses.RLock()
	c, ok := typeClasses.m[t]
	typeClasses.RUnlock()
	if ok {
		return c
	}

	typeClasses.Lock()
	defer typeClasses.Unlock()
	if c, ok := typeClasses.m[t]; ok {
		return c
	}
	c, _ = newClass(t.String(), t, nil)
	typeClasses.m[t] = c
	return c
}

// DeclareType gives Go type t a class with the given bases, so values of t
// dispatch through that hierarchy. It fails when t already has a class,
// whether declared or created implicitly by an earlier lookup.
func DeclareType(t reflect.Type, bases ...*Class) (*Class, error) {
	if t == nil {
		return nil, mdwerror.New("cannot declare a class for the nil type").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("dispatch.DeclareType")
	}

	typeClasses.Lock()
	defer typeClasses.Unlock()

	if existing, ok := typeClasses.m[t]; ok {
		return existing, hierarchyError(t.String(), "type already has a class").
			WithOperation("dispatch.DeclareType")
	}
	c, err := newClass(t.String(), t, bases)
	if err != nil {
		return nil, err
	}
	typeClasses.m[t] = c
	return c, nil
}

// ClassOf returns the dispatch class of v. Classed values report their own
// class; every other value is classified by its Go type.
func ClassOf(v any) *Class {
	if v == nil {
		return NilClass
	}
	if cv, ok := v.(Classed); ok {
		if c := cv.DispatchClass(); c != nil {
			return c
		}
	}
	return TypeClass(reflect.TypeOf(v))
}
