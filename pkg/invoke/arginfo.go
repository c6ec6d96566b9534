package invoke

import (
	"fmt"
	"reflect"

	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
	"github.com/msto63/mdispatch/pkg/dispatch"
)

var (
	lookupType = reflect.TypeOf((*dispatch.Lookup)(nil))
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// ArgInfo describes the parameters of a function.
type ArgInfo struct {
	// Positional holds one name per fixed parameter, excluding the lookup
	// and variadic parameters. Unnamed parameters are called argN.
	Positional []string

	// Keywords lists the parameters that can be bound by keyword. It is
	// empty unless names were given to Inspect.
	Keywords []string

	// Lookup is set when the first parameter receives the active lookup.
	Lookup bool

	// Variadic is set when extra positional arguments are accepted.
	Variadic bool

	// Returns is the number of non-error results, 0 or 1.
	Returns int

	// ReturnsError is set when the last result is an error.
	ReturnsError bool

	params   []reflect.Type
	variadic reflect.Type
}

// Accepts reports whether keyword name binds to a parameter.
func (a ArgInfo) Accepts(name string) bool {
	for _, k := range a.Keywords {
		if k == name {
			return true
		}
	}
	return false
}

// Inspect reports the parameters of fn. names, when given, name the fixed
// parameters in order so they can be bound by keyword.
//
// fn may return nothing, a value, an error, or a value and an error.
func Inspect(fn any, names ...string) (ArgInfo, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return ArgInfo{}, inspectError(fmt.Sprintf("expected a function, got %T", fn))
	}
	t := v.Type()

	var info ArgInfo
	first := 0
	if t.NumIn() > 0 && t.In(0) == lookupType {
		info.Lookup = true
		first = 1
	}
	last := t.NumIn()
	if t.IsVariadic() {
		info.Variadic = true
		info.variadic = t.In(last - 1).Elem()
		last--
	}
	for i := first; i < last; i++ {
		info.params = append(info.params, t.In(i))
	}

	switch {
	case len(names) == 0:
		for i := range info.params {
			info.Positional = append(info.Positional, fmt.Sprintf("arg%d", i))
		}
	case len(names) != len(info.params):
		return ArgInfo{}, inspectError(fmt.Sprintf("%d names given for %d parameters", len(names), len(info.params)))
	default:
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			if n == "" || seen[n] {
				return ArgInfo{}, inspectError(fmt.Sprintf("invalid or duplicate parameter name %q", n))
			}
			seen[n] = true
		}
		info.Positional = append([]string(nil), names...)
		info.Keywords = append([]string(nil), names...)
	}

	switch out := t.NumOut(); {
	case out == 0:
	case out == 1 && t.Out(0) == errorType:
		info.ReturnsError = true
	case out == 1:
		info.Returns = 1
	case out == 2 && t.Out(1) == errorType:
		info.Returns = 1
		info.ReturnsError = true
	default:
		return ArgInfo{}, inspectError(fmt.Sprintf("unsupported results in %s", t))
	}
	return info, nil
}

func inspectError(reason string) *mdwerror.Error {
	return mdwerror.New("cannot inspect function: " + reason).
		WithCode(mdwerror.CodeInvalidInput).
		WithOperation("invoke.Inspect")
}
