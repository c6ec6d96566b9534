package dispatch

import "testing"

func TestClassMapPrunesEmptyNodes(t *testing.T) {
	a, b := MustClass("A"), MustClass("B")
	m := newClassMap([]Predicate{ClassArg(0), ValueArg(1)})

	m.insert(&Registration{Keys: Keys(a, 1), Impl: Const(1)})
	m.insert(&Registration{Keys: Keys(a, 2), Impl: Const(2)})
	m.insert(&Registration{Keys: Keys(b, 1), Impl: Const(3)})

	if _, ok := m.remove(Keys(a, 3)); ok {
		t.Error("removed a tuple that was never inserted")
	}
	if _, ok := m.remove(Keys(a, 1)); !ok {
		t.Fatal("remove(A, 1) failed")
	}
	if len(m.root.children[a].children) != 1 {
		t.Error("sibling leaf lost")
	}
	if _, ok := m.remove(Keys(a, 2)); !ok {
		t.Fatal("remove(A, 2) failed")
	}
	if _, ok := m.root.children[a]; ok {
		t.Error("empty branch for A was not pruned")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestClassMapRegistrationOrder(t *testing.T) {
	m := newClassMap([]Predicate{ValueArg(0)})
	for _, k := range []string{"c", "a", "b"} {
		m.insert(&Registration{Keys: Keys(k), Impl: Const(k)})
	}
	m.insert(&Registration{Keys: Keys("c"), Impl: Const("c2")})

	regs := m.registrations()
	var got []any
	for _, r := range regs {
		got = append(got, r.Keys[0])
	}
	want := []any{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("registrations() order = %v, want %v", got, want)
		}
	}
	if regs[2].Seq != 4 {
		t.Errorf("override Seq = %d, want 4", regs[2].Seq)
	}
}
