package invoke

import (
	"fmt"
	"math"
	"reflect"

	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
	"github.com/msto63/mdispatch/pkg/dispatch"
)

// Mapply calls fn with args bound according to info. Keywords that info does
// not accept are ignored. l is passed when info.Lookup is set.
//
// Errors returned by fn are passed through unchanged; binding failures carry
// code INVOCATION_FAILED.
func Mapply(fn any, info ArgInfo, l *dispatch.Lookup, args dispatch.Args) (any, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, bindError(fmt.Sprintf("expected a function, got %T", fn))
	}

	in := make([]reflect.Value, 0, len(info.params)+len(args.Positional)+1)
	if info.Lookup {
		in = append(in, reflect.ValueOf(l))
	}

	for i, typ := range info.params {
		raw, ok := args.Arg(i)
		if !ok {
			raw, ok = args.Keyword(info.Positional[i])
			if !ok || !info.Accepts(info.Positional[i]) {
				return nil, bindError(fmt.Sprintf("missing argument %s", info.Positional[i]))
			}
		}
		arg, err := convert(raw, typ)
		if err != nil {
			return nil, bindError(fmt.Sprintf("argument %s: %v", info.Positional[i], err))
		}
		in = append(in, arg)
	}

	if extra := args.Positional[min(len(info.params), len(args.Positional)):]; len(extra) > 0 {
		if !info.Variadic {
			return nil, bindError(fmt.Sprintf("%d extra positional arguments", len(extra)))
		}
		for i, raw := range extra {
			arg, err := convert(raw, info.variadic)
			if err != nil {
				return nil, bindError(fmt.Sprintf("variadic argument %d: %v", i, err))
			}
			in = append(in, arg)
		}
	}

	out := v.Call(in)

	var (
		result any
		err    error
	)
	if info.Returns == 1 {
		result = out[0].Interface()
	}
	if info.ReturnsError {
		if e := out[len(out)-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
	}
	return result, err
}

// convert makes raw usable as a value of type t. Assignable values pass
// through; numbers convert between numeric types; nil becomes the zero
// value of nillable types.
func convert(raw any, t reflect.Type) (reflect.Value, error) {
	if raw == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a valid %s", t)
	}

	v := reflect.ValueOf(raw)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumber(v.Kind()) && isNumber(t.Kind()) {
		return convertNumber(v, t)
	}
	if v.Kind() == reflect.String && t.Kind() == reflect.String {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", raw, t)
}

// convertNumber converts between numeric kinds only when the value survives
// unchanged: no dropped fraction, no wrap-around.
func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	overflow := fmt.Errorf("%v overflows %s", v.Interface(), t)

	switch {
	case v.CanInt():
		n := v.Int()
		switch {
		case out.CanInt() && out.OverflowInt(n):
			return reflect.Value{}, overflow
		case out.CanUint() && (n < 0 || out.OverflowUint(uint64(n))):
			return reflect.Value{}, overflow
		}
	case v.CanUint():
		n := v.Uint()
		switch {
		case out.CanInt() && (n > math.MaxInt64 || out.OverflowInt(int64(n))):
			return reflect.Value{}, overflow
		case out.CanUint() && out.OverflowUint(n):
			return reflect.Value{}, overflow
		}
	case v.CanFloat():
		f := v.Float()
		if out.CanFloat() {
			if out.OverflowFloat(f) {
				return reflect.Value{}, overflow
			}
			break
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return reflect.Value{}, fmt.Errorf("%v is not a whole number for %s", f, t)
		}
		switch {
		case out.CanInt() && (f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f))):
			return reflect.Value{}, overflow
		case out.CanUint() && (f < 0 || f >= math.MaxUint64 || out.OverflowUint(uint64(f))):
			return reflect.Value{}, overflow
		}
	}
	return v.Convert(t), nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func bindError(reason string) *mdwerror.Error {
	return mdwerror.New("cannot bind arguments: " + reason).
		WithCode(mdwerror.CodeInvocation).
		WithOperation("invoke.Mapply")
}

type funcImpl struct {
	fn   any
	info ArgInfo
}

func (f funcImpl) Invoke(l *dispatch.Lookup, args dispatch.Args) (any, error) {
	return Mapply(f.fn, f.info, l, args)
}

// Func adapts fn to dispatch.Implementation. See Inspect for names.
func Func(fn any, names ...string) (dispatch.Implementation, error) {
	info, err := Inspect(fn, names...)
	if err != nil {
		return nil, err
	}
	return funcImpl{fn: fn, info: info}, nil
}

// MustFunc is like Func but panics on error.
func MustFunc(fn any, names ...string) dispatch.Implementation {
	impl, err := Func(fn, names...)
	if err != nil {
		panic(err)
	}
	return impl
}
