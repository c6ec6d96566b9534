package dispatch

import (
	"fmt"
	"strings"

	"github.com/msto63/mdispatch/foundation/utils/mapx"
)

// Args are the runtime arguments of one generic call: positional values and
// keyword values.
type Args struct {
	Positional []any
	Keywords   map[string]any
}

// NewArgs returns Args holding the given positional values.
func NewArgs(positional ...any) Args {
	return Args{Positional: positional}
}

// With returns a copy of a with the keyword name set to value.
func (a Args) With(name string, value any) Args {
	kw := mapx.Clone(a.Keywords, 1)
	kw[name] = value
	return Args{Positional: a.Positional, Keywords: kw}
}

// Arg returns the positional argument at index i.
func (a Args) Arg(i int) (any, bool) {
	if i < 0 || i >= len(a.Positional) {
		return nil, false
	}
	return a.Positional[i], true
}

// Keyword returns the keyword argument name.
func (a Args) Keyword(name string) (any, bool) {
	v, ok := a.Keywords[name]
	return v, ok
}

// Len returns the number of positional arguments.
func (a Args) Len() int {
	return len(a.Positional)
}

// KeywordNames returns the keyword names in sorted order.
func (a Args) KeywordNames() []string {
	return mapx.SortedKeys(a.Keywords)
}

func (a Args) String() string {
	parts := make([]string, 0, len(a.Positional)+len(a.Keywords))
	for _, v := range a.Positional {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	for _, k := range a.KeywordNames() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, a.Keywords[k]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
