package dispatch

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

type anyKey struct{}

func (anyKey) String() string { return "ANY" }

// Any is the wildcard key. Registered in a slot it matches every concrete
// key, with lower specificity than any other match.
var Any any = anyKey{}

// IsAny reports whether k is the wildcard key.
func IsAny(k any) bool {
	_, ok := k.(anyKey)
	return ok
}

// Keys is a convenience for building a key tuple.
func Keys(keys ...any) []any {
	return keys
}

// isComparable reports whether k can be used as a map key without panicking.
func isComparable(k any) bool {
	if k == nil {
		return true
	}
	return reflect.ValueOf(k).Comparable()
}

// FormatKey renders a key for logs and diagnostics.
func FormatKey(k any) string {
	switch v := k.(type) {
	case *Class:
		return v.Name()
	case anyKey:
		return v.String()
	case string:
		return fmt.Sprintf("%q", v)
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatKeys renders a key tuple for logs and diagnostics.
func FormatKeys(keys []any) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = FormatKey(k)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// interner assigns small stable ids to concrete keys so a key tuple can be
// fingerprinted exactly. Ids are only meaningful until reset.
type interner struct {
	mu   sync.RWMutex
	ids  map[any]uint64
	next uint64
}

func newInterner() *interner {
	return &interner{ids: make(map[any]uint64), next: 1}
}

// id returns the id of k. ok is false for keys unequal to themselves (NaN,
// or a struct or array holding one): they have no stable identity and are
// never interned.
func (in *interner) id(k any) (id uint64, ok bool) {
	if k != k {
		return 0, false
	}

	in.mu.RLock()
	id, ok = in.ids[k]
	in.mu.RUnlock()
	if ok {
		return id, true
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.ids[k]; ok {
		return id, true
	}
	id = in.next
	in.next++
	in.ids[k] = id
	return id, true
}

// fingerprint encodes keys as a string unique to the exact tuple. ok is
// false when the tuple cannot be fingerprinted and must not be cached.
func (in *interner) fingerprint(keys []any) (string, bool) {
	buf := make([]byte, 0, len(keys)*2)
	for _, k := range keys {
		id, ok := in.id(k)
		if !ok {
			return "", false
		}
		buf = binary.AppendUvarint(buf, id)
	}
	return string(buf), true
}

func (in *interner) reset() {
	in.mu.Lock()
	in.ids = make(map[any]uint64)
	in.next = 1
	in.mu.Unlock()
}

func (in *interner) size() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.ids)
}
