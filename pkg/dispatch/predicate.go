package dispatch

import (
	"fmt"
	"reflect"
	"strconv"

	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
)

// Specificity levels. Higher is more specific.
const (
	// SpecificityAny is the specificity of the Any key.
	SpecificityAny = 0
	// SpecificityExact is the specificity of an equality match.
	SpecificityExact = 1 << 30
)

// ClassSpecificity returns the specificity of a class match at the given
// ancestor distance. It is below SpecificityExact and above SpecificityAny
// for any realistic hierarchy depth.
func ClassSpecificity(distance int) int {
	return SpecificityExact - 1 - distance
}

// Match is the outcome of comparing a registered key with a concrete key.
type Match struct {
	OK          bool
	Specificity int
}

// NoMatch is the zero Match.
var NoMatch = Match{}

// Predicate extracts one key from a call's arguments and ranks registered
// keys against it. Match is never called with the Any key as registered.
type Predicate interface {
	Name() string
	Extract(args Args) (any, error)
	Match(registered, concrete any) Match
}

// KeyNormalizer is implemented by predicates that validate, and possibly
// convert, keys at registration time.
type KeyNormalizer interface {
	NormalizeKey(registered any) (any, error)
}

// Ancestry is implemented by predicates that can list, most specific first,
// every registered key that could match a concrete key. The class map then
// looks those keys up directly instead of ranking each registered key.
type Ancestry interface {
	Ancestors(concrete any) []any
}

// rank compares a registered key with a concrete key under p.
func rank(p Predicate, registered, concrete any) Match {
	if IsAny(registered) {
		return Match{OK: true, Specificity: SpecificityAny}
	}
	return p.Match(registered, concrete)
}

// slot locates an argument by position or keyword.
type slot struct {
	index      int
	keyword    string
	def        any
	hasDefault bool
}

func (s slot) String() string {
	if s.keyword != "" {
		return s.keyword
	}
	return "arg" + strconv.Itoa(s.index)
}

func (s slot) value(args Args) (any, bool) {
	var (
		v  any
		ok bool
	)
	if s.keyword != "" {
		v, ok = args.Keyword(s.keyword)
	} else {
		v, ok = args.Arg(s.index)
	}
	if !ok && s.hasDefault {
		return s.def, true
	}
	return v, ok
}

func (s slot) missing(pred string) *mdwerror.Error {
	return ExtractionError(pred, fmt.Sprintf("argument %s is missing", s)).
		WithDetail("slot", s.String())
}

// ClassPredicate dispatches on the class of one argument.
type ClassPredicate struct {
	slot slot
}

// ClassArg dispatches on the class of positional argument i.
func ClassArg(i int) *ClassPredicate {
	return &ClassPredicate{slot: slot{index: i}}
}

// ClassKeyword dispatches on the class of keyword argument name.
func ClassKeyword(name string) *ClassPredicate {
	return &ClassPredicate{slot: slot{keyword: name}}
}

// WithDefault returns a copy that classifies v when the argument is absent.
func (p *ClassPredicate) WithDefault(v any) *ClassPredicate {
	cp := *p
	cp.slot.def, cp.slot.hasDefault = v, true
	return &cp
}

// Name implements Predicate.
func (p *ClassPredicate) Name() string { return "class(" + p.slot.String() + ")" }

// Extract implements Predicate.
func (p *ClassPredicate) Extract(args Args) (any, error) {
	v, ok := p.slot.value(args)
	if !ok {
		return nil, p.slot.missing(p.Name())
	}
	return ClassOf(v), nil
}

// Match implements Predicate.
func (p *ClassPredicate) Match(registered, concrete any) Match {
	r, ok := registered.(*Class)
	if !ok {
		return NoMatch
	}
	c, ok := concrete.(*Class)
	if !ok {
		return NoMatch
	}
	d := c.Distance(r)
	if d < 0 {
		return NoMatch
	}
	return Match{OK: true, Specificity: ClassSpecificity(d)}
}

// Ancestors implements Ancestry by walking the resolution order.
func (p *ClassPredicate) Ancestors(concrete any) []any {
	c, ok := concrete.(*Class)
	if !ok {
		return nil
	}
	out := make([]any, len(c.mro))
	for i, a := range c.mro {
		out[i] = a
	}
	return out
}

// NormalizeKey accepts *Class and reflect.Type keys.
func (p *ClassPredicate) NormalizeKey(registered any) (any, error) {
	switch k := registered.(type) {
	case *Class:
		if k == nil {
			return nil, invalidKey(p, registered, "nil class")
		}
		return k, nil
	case reflect.Type:
		return TypeClass(k), nil
	default:
		return nil, invalidKey(p, registered, "expected *Class or reflect.Type")
	}
}

// ValuePredicate dispatches on the value of one argument, by equality.
type ValuePredicate struct {
	slot slot
}

// ValueArg dispatches on the value of positional argument i.
func ValueArg(i int) *ValuePredicate {
	return &ValuePredicate{slot: slot{index: i}}
}

// ValueKeyword dispatches on the value of keyword argument name.
func ValueKeyword(name string) *ValuePredicate {
	return &ValuePredicate{slot: slot{keyword: name}}
}

// WithDefault returns a copy that uses v when the argument is absent.
func (p *ValuePredicate) WithDefault(v any) *ValuePredicate {
	cp := *p
	cp.slot.def, cp.slot.hasDefault = v, true
	return &cp
}

// Name implements Predicate.
func (p *ValuePredicate) Name() string { return "value(" + p.slot.String() + ")" }

// Extract implements Predicate.
func (p *ValuePredicate) Extract(args Args) (any, error) {
	v, ok := p.slot.value(args)
	if !ok {
		return nil, p.slot.missing(p.Name())
	}
	if !isComparable(v) {
		return nil, ExtractionError(p.Name(), fmt.Sprintf("value of type %T is not comparable", v)).
			WithDetail("slot", p.slot.String())
	}
	return v, nil
}

// Match implements Predicate.
func (p *ValuePredicate) Match(registered, concrete any) Match {
	if registered == concrete {
		return Match{OK: true, Specificity: SpecificityExact}
	}
	return NoMatch
}

// Ancestors implements Ancestry: only the value itself can match.
func (p *ValuePredicate) Ancestors(concrete any) []any {
	return []any{concrete}
}

// NormalizeKey rejects keys that cannot be compared.
func (p *ValuePredicate) NormalizeKey(registered any) (any, error) {
	if !isComparable(registered) {
		return nil, invalidKey(p, registered, "value is not comparable")
	}
	return registered, nil
}

// AnyPredicate occupies a slot without discriminating: every registered key
// matches with SpecificityAny.
type AnyPredicate struct {
	name string
}

// AnySlot returns an AnyPredicate with the given name.
func AnySlot(name string) *AnyPredicate {
	return &AnyPredicate{name: name}
}

// Name implements Predicate.
func (p *AnyPredicate) Name() string { return "any(" + p.name + ")" }

// Extract implements Predicate.
func (p *AnyPredicate) Extract(Args) (any, error) { return Any, nil }

// Match implements Predicate.
func (p *AnyPredicate) Match(registered, concrete any) Match {
	return Match{OK: true, Specificity: SpecificityAny}
}

// CustomPredicate is a predicate built from functions.
type CustomPredicate struct {
	name      string
	extract   func(Args) (any, error)
	match     func(registered, concrete any) Match
	normalize func(any) (any, error)
}

// Custom returns a predicate with caller-supplied extraction and matching.
// A nil match function matches by equality with SpecificityExact.
func Custom(name string, extract func(Args) (any, error), match func(registered, concrete any) Match) *CustomPredicate {
	return &CustomPredicate{name: name, extract: extract, match: match}
}

// WithNormalizer returns a copy that validates registered keys with fn.
func (p *CustomPredicate) WithNormalizer(fn func(any) (any, error)) *CustomPredicate {
	cp := *p
	cp.normalize = fn
	return &cp
}

// Name implements Predicate.
func (p *CustomPredicate) Name() string { return p.name }

// Extract implements Predicate. Errors that are not already extraction
// errors are wrapped as such.
func (p *CustomPredicate) Extract(args Args) (any, error) {
	if p.extract == nil {
		return nil, ExtractionError(p.name, "predicate has no extraction function")
	}
	k, err := p.extract(args)
	if err != nil {
		if mdwerror.HasCode(err, mdwerror.CodeExtractionFailed) {
			return nil, err
		}
		return nil, ExtractionError(p.name, "extraction failed").WithCause(err)
	}
	return k, nil
}

// Match implements Predicate.
func (p *CustomPredicate) Match(registered, concrete any) Match {
	if p.match != nil {
		return p.match(registered, concrete)
	}
	if registered == concrete {
		return Match{OK: true, Specificity: SpecificityExact}
	}
	return NoMatch
}

// NormalizeKey implements KeyNormalizer.
func (p *CustomPredicate) NormalizeKey(registered any) (any, error) {
	if p.normalize != nil {
		return p.normalize(registered)
	}
	return registered, nil
}

func invalidKey(p Predicate, key any, reason string) *mdwerror.Error {
	return mdwerror.New(fmt.Sprintf("invalid key %s for predicate %s: %s", FormatKey(key), p.Name(), reason)).
		WithCode(mdwerror.CodeInvalidInput).
		WithOperation("dispatch.Register").
		WithDetail("predicate", p.Name())
}
