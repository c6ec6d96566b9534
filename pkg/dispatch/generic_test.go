package dispatch

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"

	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
	"github.com/msto63/mdispatch/foundation/core/log"
)

type zoo struct {
	animal, dog, cat, puppy, rock *Class
}

func newZoo() zoo {
	animal := MustClass("Animal")
	dog := MustClass("Dog", animal)
	return zoo{
		animal: animal,
		dog:    dog,
		cat:    MustClass("Cat", animal),
		puppy:  MustClass("Puppy", dog),
		rock:   MustClass("Rock"),
	}
}

func newTestRegistry() *Registry {
	return NewRegistry(WithRegistryLogger(log.Discard()))
}

func newTestFunction(t *testing.T, preds ...Predicate) *GenericFunction {
	t.Helper()
	gf, err := New("test", preds, WithLogger(log.Discard()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return gf
}

func mustCall(t *testing.T, gf *GenericFunction, args Args) any {
	t.Helper()
	out, err := gf.Call(args)
	if err != nil {
		t.Fatalf("Call%s error = %v", args, err)
	}
	return out
}

func TestGreet(t *testing.T) {
	z := newZoo()
	reg := newTestRegistry()
	greet := reg.MustDeclare("greet", ClassArg(0))
	greet.MustRegister(Keys(z.animal), Const("generic"))
	greet.MustRegister(Keys(z.dog), Const("woof"))

	tests := []struct {
		name  string
		class *Class
		want  any
	}{
		{"exact class", z.dog, "woof"},
		{"sibling falls back to ancestor", z.cat, "generic"},
		{"subclass of registered class", z.puppy, "woof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := reg.Call("greet", NewArgs(NewInstance(tt.class, nil)))
			if err != nil {
				t.Fatalf("Call() error = %v", err)
			}
			if out != tt.want {
				t.Errorf("Call() = %v, want %v", out, tt.want)
			}
		})
	}

	t.Run("unrelated class", func(t *testing.T) {
		_, err := reg.Call("greet", NewArgs(NewInstance(z.rock, nil)))
		if !errors.Is(err, ErrNoImplementation) {
			t.Fatalf("Call() error = %v, want ErrNoImplementation", err)
		}
		if !mdwerror.HasCode(err, mdwerror.CodeNoImplementation) {
			t.Errorf("error code = %v", mdwerror.GetCode(err))
		}
	})
}

func TestValueAgainstAny(t *testing.T) {
	gf := newTestFunction(t, ValueKeyword("mode"))
	gf.MustRegister(Keys("fast"), Const("fast path"))
	gf.MustRegister(Keys(Any), Const("default"))

	tests := []struct {
		mode string
		want string
	}{
		{"fast", "fast path"},
		{"slow", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			if got := mustCall(t, gf, NewArgs().With("mode", tt.mode)); got != tt.want {
				t.Errorf("Call(mode=%s) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestAnyNeverShadowsClass(t *testing.T) {
	z := newZoo()

	for _, order := range []string{"any first", "class first"} {
		t.Run(order, func(t *testing.T) {
			gf := newTestFunction(t, ClassArg(0))
			if order == "any first" {
				gf.MustRegister(Keys(Any), Const("any"))
				gf.MustRegister(Keys(z.dog), Const("dog"))
			} else {
				gf.MustRegister(Keys(z.dog), Const("dog"))
				gf.MustRegister(Keys(Any), Const("any"))
			}

			if got := mustCall(t, gf, NewArgs(NewInstance(z.dog, nil))); got != "dog" {
				t.Errorf("Dog resolved to %v", got)
			}
			if got := mustCall(t, gf, NewArgs(NewInstance(z.rock, nil))); got != "any" {
				t.Errorf("Rock resolved to %v", got)
			}
		})
	}
}

func TestDeepAndDiamondAncestors(t *testing.T) {
	root := MustClass("L0")
	leaf := root
	for i := 1; i <= 12; i++ {
		leaf = MustClass(fmt.Sprintf("L%d", i), leaf)
	}

	deep := newTestFunction(t, ClassArg(0))
	deep.MustRegister(Keys(root), Const("root"))
	if got := mustCall(t, deep, NewArgs(NewInstance(leaf, nil))); got != "root" {
		t.Errorf("deep chain resolved to %v", got)
	}

	a := MustClass("A")
	b := MustClass("B", a)
	c := MustClass("C", a)
	d := MustClass("D", b, c)

	gf := newTestFunction(t, ClassArg(0))
	gf.MustRegister(Keys(a), Const("a"))
	if got := mustCall(t, gf, NewArgs(NewInstance(d, nil))); got != "a" {
		t.Errorf("D with only A registered = %v", got)
	}

	gf.MustRegister(Keys(c), Const("c"))
	gf.MustRegister(Keys(b), Const("b"))
	if got := mustCall(t, gf, NewArgs(NewInstance(d, nil))); got != "b" {
		t.Errorf("D = %v, want b (B precedes C in the MRO)", got)
	}

	cands, err := gf.Candidates(NewArgs(NewInstance(d, nil)))
	if err != nil {
		t.Fatalf("Candidates() error = %v", err)
	}
	var got []string
	for _, cand := range cands {
		out, _ := cand.Registration.Impl.Invoke(nil, Args{})
		got = append(got, out.(string))
	}
	if want := []string{"b", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("candidate order = %v, want %v", got, want)
	}
}

func TestRegistrationInvalidatesCache(t *testing.T) {
	z := newZoo()
	gf := newTestFunction(t, ClassArg(0))
	gf.MustRegister(Keys(z.animal), Const("generic"))

	args := NewArgs(NewInstance(z.dog, nil))
	for i := 0; i < 3; i++ {
		if got := mustCall(t, gf, args); got != "generic" {
			t.Fatalf("Call() = %v", got)
		}
	}
	stats := gf.Stats()
	if stats.Cache.Size != 1 || stats.Cache.Hits != 2 {
		t.Errorf("cache stats = %+v", stats.Cache)
	}

	gf.MustRegister(Keys(z.dog), Const("woof"))
	if gf.Stats().Cache.Size != 0 {
		t.Error("cache not cleared by Register")
	}
	if got := mustCall(t, gf, args); got != "woof" {
		t.Errorf("Call() after Register = %v, want woof", got)
	}

	if err := gf.Unregister(Keys(z.dog)); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if got := mustCall(t, gf, args); got != "generic" {
		t.Errorf("Call() after Unregister = %v, want generic", got)
	}
}

func TestNotFoundIsCached(t *testing.T) {
	z := newZoo()
	gf := newTestFunction(t, ClassArg(0))
	gf.MustRegister(Keys(z.dog), Const("woof"))

	args := NewArgs(NewInstance(z.rock, nil))
	for i := 0; i < 2; i++ {
		if _, found, err := gf.Resolve(args); err != nil || found {
			t.Fatalf("Resolve() = %v, %v", found, err)
		}
	}
	if hits := gf.Stats().Cache.Hits; hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}

	gf.MustRegister(Keys(z.rock), Const("rock"))
	if got := mustCall(t, gf, args); got != "rock" {
		t.Errorf("stale not-found survived Register: %v", got)
	}
}

func TestNilResultIsAnAnswer(t *testing.T) {
	z := newZoo()
	gf := newTestFunction(t, ClassArg(0))
	gf.MustRegister(Keys(z.animal), Const("generic"))

	calls := 0
	gf.MustRegister(Keys(z.dog), Func(func(Args) (any, error) {
		calls++
		return nil, nil
	}))

	out, err := gf.Call(NewArgs(NewInstance(z.dog, nil)))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if out != nil {
		t.Errorf("Call() = %v, want nil", out)
	}
	if calls != 1 {
		t.Errorf("implementation called %d times", calls)
	}
}

func TestFallback(t *testing.T) {
	z := newZoo()
	gf, err := New("describe", []Predicate{ClassArg(0)},
		WithLogger(log.Discard()),
		WithFallback(Func(func(args Args) (any, error) {
			return fmt.Sprintf("unknown %v", args.Positional[0]), nil
		})))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	gf.MustRegister(Keys(z.dog), Const("dog"))

	if _, found, _ := gf.Resolve(NewArgs(NewInstance(z.cat, nil))); found {
		t.Error("Resolve() should not report the fallback as found")
	}
	if got := mustCall(t, gf, NewArgs(NewInstance(z.cat, nil))); got != "unknown <Cat>" {
		t.Errorf("Call() = %v", got)
	}
}

func TestExtractionErrors(t *testing.T) {
	failing := Custom("tag", func(Args) (any, error) {
		return nil, errors.New("no tag")
	}, nil)

	tests := []struct {
		name string
		pred Predicate
		args Args
	}{
		{"missing positional", ClassArg(1), NewArgs("x")},
		{"missing keyword", ValueKeyword("mode"), NewArgs()},
		{"uncomparable value", ValueArg(0), NewArgs([]int{1})},
		{"custom failure", failing, NewArgs()},
		{"custom uncomparable key", Custom("slice", func(Args) (any, error) { return []string{}, nil }, nil), NewArgs()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gf := newTestFunction(t, tt.pred)
			gf.MustRegister(Keys(Any), Const("any"))

			_, err := gf.Call(tt.args)
			if !errors.Is(err, ErrExtraction) {
				t.Fatalf("Call() error = %v, want ErrExtraction", err)
			}
			var merr *mdwerror.Error
			if !errors.As(err, &merr) {
				t.Fatalf("error is %T", err)
			}
			if fn, _ := merr.Detail("function"); fn != "test" {
				t.Errorf("function detail = %v", fn)
			}
		})
	}
}

func TestKeywordDefault(t *testing.T) {
	gf := newTestFunction(t, ValueKeyword("mode").WithDefault("normal"))
	gf.MustRegister(Keys("normal"), Const("normal"))
	gf.MustRegister(Keys("fast"), Const("fast"))

	if got := mustCall(t, gf, NewArgs()); got != "normal" {
		t.Errorf("default = %v", got)
	}
	if got := mustCall(t, gf, NewArgs().With("mode", "fast")); got != "fast" {
		t.Errorf("explicit = %v", got)
	}
}

func TestUnregister(t *testing.T) {
	z := newZoo()
	gf := newTestFunction(t, ClassArg(0))
	gf.MustRegister(Keys(z.dog), Const("woof"))

	if err := gf.Unregister(Keys(z.dog)); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if _, err := gf.Call(NewArgs(NewInstance(z.dog, nil))); !errors.Is(err, ErrNoImplementation) {
		t.Errorf("Call() after Unregister error = %v", err)
	}

	err := gf.Unregister(Keys(z.dog))
	if !errors.Is(err, ErrNotRegistered) {
		t.Errorf("second Unregister() error = %v, want ErrNotRegistered", err)
	}
	if gf.classes.root.children != nil && len(gf.classes.root.children) != 0 {
		t.Error("empty trie nodes were not pruned")
	}
}

func TestOverride(t *testing.T) {
	z := newZoo()
	gf := newTestFunction(t, ClassArg(0))
	first := gf.MustRegister(Keys(z.dog), Const("first"))
	second := gf.MustRegister(Keys(z.dog), Const("second"))

	if first.ID == second.ID {
		t.Error("registrations share an ID")
	}
	if got := mustCall(t, gf, NewArgs(NewInstance(z.dog, nil))); got != "second" {
		t.Errorf("Call() = %v, want second", got)
	}
	if n := len(gf.Registrations()); n != 1 {
		t.Errorf("Registrations() has %d entries, want 1", n)
	}
}

func TestTieBreak(t *testing.T) {
	// Every key matches with the same specificity.
	flat := func() Predicate {
		return Custom("flat", func(a Args) (any, error) {
			v, _ := a.Arg(0)
			return v, nil
		}, func(registered, concrete any) Match {
			return Match{OK: true, Specificity: 1}
		})
	}

	t.Run("later registration wins", func(t *testing.T) {
		gf := newTestFunction(t, flat())
		gf.MustRegister(Keys("x"), Const("x"))
		gf.MustRegister(Keys("y"), Const("y"))
		if got := mustCall(t, gf, NewArgs("z")); got != "y" {
			t.Errorf("Call() = %v, want y", got)
		}
	})

	t.Run("priority beats order", func(t *testing.T) {
		gf := newTestFunction(t, flat())
		gf.MustRegister(Keys("x"), Const("x"), WithPriority(1))
		gf.MustRegister(Keys("y"), Const("y"))
		if got := mustCall(t, gf, NewArgs("z")); got != "x" {
			t.Errorf("Call() = %v, want x", got)
		}
	})

	t.Run("specificity beats priority", func(t *testing.T) {
		z := newZoo()
		gf := newTestFunction(t, ClassArg(0))
		gf.MustRegister(Keys(z.animal), Const("animal"), WithPriority(100))
		gf.MustRegister(Keys(z.dog), Const("dog"))
		if got := mustCall(t, gf, NewArgs(NewInstance(z.dog, nil))); got != "dog" {
			t.Errorf("Call() = %v, want dog", got)
		}
	})
}

func TestFirstSlotDominates(t *testing.T) {
	z := newZoo()
	gf := newTestFunction(t, ClassArg(0), ClassArg(1))
	gf.MustRegister(Keys(z.animal, z.dog), Const("animal-dog"))
	gf.MustRegister(Keys(z.dog, z.animal), Const("dog-animal"))
	gf.MustRegister(Keys(Any, Any), Const("any"))

	dog := NewInstance(z.dog, nil)
	if got := mustCall(t, gf, NewArgs(dog, dog)); got != "dog-animal" {
		t.Errorf("Call(dog, dog) = %v", got)
	}
	if got := mustCall(t, gf, NewArgs(NewInstance(z.cat, nil), dog)); got != "animal-dog" {
		t.Errorf("Call(cat, dog) = %v", got)
	}
	if got := mustCall(t, gf, NewArgs(NewInstance(z.rock, nil), dog)); got != "any" {
		t.Errorf("Call(rock, dog) = %v", got)
	}

	mixed := newTestFunction(t, ClassArg(0), ValueKeyword("mode"))
	mixed.MustRegister(Keys(z.dog, Any), Const("dog"))
	mixed.MustRegister(Keys(z.animal, "fast"), Const("fast animal"))
	if got := mustCall(t, mixed, NewArgs(dog).With("mode", "fast")); got != "dog" {
		t.Errorf("class slot should dominate the value slot, got %v", got)
	}
}

func TestKeyValidation(t *testing.T) {
	z := newZoo()
	gf := newTestFunction(t, ClassArg(0), ValueArg(1))

	tests := []struct {
		name string
		keys []any
	}{
		{"too few keys", Keys(z.dog)},
		{"too many keys", Keys(z.dog, 1, 2)},
		{"class slot given a string", Keys("Dog", 1)},
		{"class slot given nil class", Keys((*Class)(nil), 1)},
		{"uncomparable value", Keys(z.dog, []int{1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gf.Register(tt.keys, Const("x"))
			if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
				t.Errorf("Register() error = %v, want INVALID_INPUT", err)
			}
		})
	}

	if _, err := gf.Register(Keys(z.dog, 1), nil); err == nil {
		t.Error("nil implementation accepted")
	}
}

func TestGoTypeKeys(t *testing.T) {
	gf := newTestFunction(t, ClassArg(0))
	gf.MustRegister(Keys(reflect.TypeOf("")), Const("string"))
	gf.MustRegister(Keys(Object), Const("object"))

	if got := mustCall(t, gf, NewArgs("hello")); got != "string" {
		t.Errorf("Call(string) = %v", got)
	}
	if got := mustCall(t, gf, NewArgs(3.5)); got != "object" {
		t.Errorf("Call(float) = %v", got)
	}
	if got := mustCall(t, gf, NewArgs(nil)); got != "object" {
		t.Errorf("Call(nil) = %v", got)
	}
}

func TestCapabilityPredicate(t *testing.T) {
	capability := Custom("capability", func(a Args) (any, error) {
		v, ok := a.Arg(0)
		if !ok {
			return nil, ExtractionError("capability", "argument 0 is missing")
		}
		if _, ok := v.(fmt.Stringer); ok {
			return "stringer", nil
		}
		return "plain", nil
	}, nil)

	gf := newTestFunction(t, capability)
	gf.MustRegister(Keys("stringer"), Func(func(a Args) (any, error) {
		return a.Positional[0].(fmt.Stringer).String(), nil
	}))
	gf.MustRegister(Keys(Any), Const("opaque"))

	z := newZoo()
	if got := mustCall(t, gf, NewArgs(NewInstance(z.dog, nil))); got != "<Dog>" {
		t.Errorf("stringer = %v", got)
	}
	if got := mustCall(t, gf, NewArgs(12)); got != "opaque" {
		t.Errorf("plain = %v", got)
	}
}

func TestExact(t *testing.T) {
	z := newZoo()
	gf := newTestFunction(t, ClassArg(0))
	gf.MustRegister(Keys(z.animal), Const("generic"))

	if _, ok := gf.Exact(Keys(z.animal)); !ok {
		t.Error("Exact(Animal) not found")
	}
	if _, ok := gf.Exact(Keys(z.dog)); ok {
		t.Error("Exact(Dog) should not match through the hierarchy")
	}
	if _, ok := gf.Exact(Keys("bad")); ok {
		t.Error("Exact with an invalid key reported a match")
	}
}

func TestDescendant(t *testing.T) {
	z := newZoo()
	gf := newTestFunction(t, ClassArg(0))
	gf.MustRegister(Keys(z.dog), Const("dog"))
	gf.MustRegister(Keys(z.puppy), Const("puppy"))

	implOf := func(keys []any) any {
		reg, ok := gf.Descendant(keys)
		if !ok {
			return nil
		}
		out, _ := reg.Impl.Invoke(nil, Args{})
		return out
	}

	tests := []struct {
		name  string
		query *Class
		want  any
	}{
		{"exact", z.dog, "dog"},
		{"closest below", z.animal, "dog"},
		{"from the root", Object, "dog"},
		{"leaf", z.puppy, "puppy"},
		{"unrelated", z.cat, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := implOf(Keys(tt.query)); got != tt.want {
				t.Errorf("Descendant(%s) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}

	gf.MustRegister(Keys(z.cat), Const("cat"))
	if got := implOf(Keys(z.animal)); got != "cat" {
		t.Errorf("equally close siblings: got %v, want the later cat", got)
	}
	gf.MustRegister(Keys(z.animal), Const("animal"))
	if got := implOf(Keys(z.animal)); got != "animal" {
		t.Errorf("Descendant(Animal) = %v, want animal", got)
	}
	if got := implOf(Keys(Any)); got == nil {
		t.Error("Descendant(Any) found nothing")
	}
}

func TestNaNKeys(t *testing.T) {
	gf := newTestFunction(t, ValueArg(0))
	gf.MustRegister(Keys(math.NaN()), Const("nan"))
	gf.MustRegister(Keys(Any), Const("any"))

	for i := 0; i < 3; i++ {
		if got := mustCall(t, gf, NewArgs(math.NaN())); got != "any" {
			t.Fatalf("Call(NaN) = %v, want any", got)
		}
	}
	if n := gf.Stats().InternedKeys; n != 0 {
		t.Errorf("NaN keys were interned: %d", n)
	}
}

func TestSelfUnequalKeysAreNotCached(t *testing.T) {
	type point struct{ X, Y float64 }

	byType := Custom("type",
		func(a Args) (any, error) {
			v, _ := a.Arg(0)
			return v, nil
		},
		func(registered, concrete any) Match {
			name, _ := registered.(string)
			return Match{OK: reflect.TypeOf(concrete).String() == name, Specificity: SpecificityExact}
		},
	)
	gf := newTestFunction(t, byType)
	gf.MustRegister(Keys("float32"), Const("f32"))
	gf.MustRegister(Keys("float64"), Const("f64"))
	gf.MustRegister(Keys("dispatch.point"), Const("point"))

	tests := []struct {
		name string
		arg  any
		want string
	}{
		{"float32 NaN", float32(math.NaN()), "f32"},
		{"float64 NaN", math.NaN(), "f64"},
		{"struct holding NaN", point{X: math.NaN()}, "point"},
		{"float32 NaN again", float32(math.NaN()), "f32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustCall(t, gf, NewArgs(tt.arg)); got != tt.want {
				t.Errorf("Call(%v) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}

	stats := gf.Stats()
	if stats.Cache.Size != 0 {
		t.Errorf("cache holds %d entries for NaN tuples", stats.Cache.Size)
	}
	if stats.InternedKeys != 0 {
		t.Errorf("NaN keys were interned: %d", stats.InternedKeys)
	}
}

func TestReturnedRegistrationsAreCopies(t *testing.T) {
	gf := newTestFunction(t, ValueArg(0))
	registered := gf.MustRegister(Keys("a"), Const("original"))
	registered.Impl = Const("changed")

	reg, found, err := gf.Resolve(NewArgs("a"))
	if err != nil || !found {
		t.Fatalf("Resolve() = %v, %v, %v", reg, found, err)
	}
	reg.Impl = Const("hijacked")
	reg.Priority = 99
	reg.Keys[0] = "b"

	if exact, ok := gf.Exact(Keys("a")); ok {
		exact.Impl = Const("hijacked")
	}
	for _, r := range gf.Registrations() {
		r.Impl = Const("hijacked")
	}
	cands, err := gf.Candidates(NewArgs("a"))
	if err != nil {
		t.Fatalf("Candidates() error = %v", err)
	}
	cands[0].Registration.Impl = Const("hijacked")
	cands[0].Specificity[0] = 0

	if got := mustCall(t, gf, NewArgs("a")); got != "original" {
		t.Errorf("Call() = %v, want original", got)
	}
	cands, _ = gf.Candidates(NewArgs("a"))
	if cands[0].Specificity[0] != SpecificityExact || cands[0].Registration.Priority != 0 {
		t.Errorf("cached candidate changed: %+v", cands[0])
	}
	if _, ok := gf.Exact(Keys("b")); ok {
		t.Error("key change leaked into the class map")
	}
}

func TestConcurrentResolve(t *testing.T) {
	z := newZoo()
	gf := newTestFunction(t, ClassArg(0))
	gf.MustRegister(Keys(z.animal), Const("generic"))
	gf.MustRegister(Keys(z.dog), Const("woof"))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				out, err := gf.Call(NewArgs(NewInstance(z.puppy, nil)))
				if err == nil && out != "woof" {
					err = fmt.Errorf("got %v", out)
				}
				if err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			gf.MustRegister(Keys(z.cat), Const("meow"))
			if err := gf.Unregister(Keys(z.cat)); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
		}
	}()

	wg.Wait()
	for _, err := range errs {
		t.Error(err)
	}
}

func TestNestedCall(t *testing.T) {
	z := newZoo()
	reg := newTestRegistry()

	greet := reg.MustDeclare("greet", ClassArg(0))
	greet.MustRegister(Keys(z.dog), Const("woof"))

	describe := reg.MustDeclare("describe", ClassArg(0))
	describe.MustRegister(Keys(z.animal), LookupFunc(func(l *Lookup, args Args) (any, error) {
		sound, err := l.Call("greet", args)
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("%v says %v", args.Positional[0], sound), nil
	}))

	out, err := reg.Call("describe", NewArgs(NewInstance(z.dog, nil)))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if out != "<Dog> says woof" {
		t.Errorf("Call() = %v", out)
	}

	_, err = reg.Call("describe", NewArgs(NewInstance(z.cat, nil)))
	if !errors.Is(err, ErrNoImplementation) {
		t.Errorf("nested miss error = %v", err)
	}
}
