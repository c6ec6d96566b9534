package dispatch

import (
	"sort"

	"github.com/google/uuid"
)

// Registration binds a key tuple to an implementation. Registrations handed
// out by GenericFunction are copies; changing one does not affect dispatch.
type Registration struct {
	ID       uuid.UUID
	Keys     []any
	Impl     Implementation
	Priority int
	Doc      string

	// Seq orders registrations of one generic function; later is larger.
	Seq uint64
}

func (r *Registration) String() string {
	return FormatKeys(r.Keys)
}

func (r *Registration) clone() *Registration {
	if r == nil {
		return nil
	}
	c := *r
	c.Keys = append([]any(nil), r.Keys...)
	return &c
}

// Candidate is a registration matching a concrete key tuple, together with
// the per-slot specificities of the match.
type Candidate struct {
	Registration *Registration
	Specificity  []int
}

func (c Candidate) clone() Candidate {
	return Candidate{
		Registration: c.Registration.clone(),
		Specificity:  append([]int(nil), c.Specificity...),
	}
}

// node is one level of the class map trie. Nodes at depth arity hold the
// registration; inner nodes only hold children.
type node struct {
	children map[any]*node
	reg      *Registration
}

func (n *node) empty() bool {
	return n.reg == nil && len(n.children) == 0
}

// ClassMap stores the registrations of one generic function, keyed slot by
// slot. It is not safe for concurrent use; GenericFunction guards it.
type ClassMap struct {
	preds []Predicate
	root  *node
	size  int
	seq   uint64
}

func newClassMap(preds []Predicate) *ClassMap {
	return &ClassMap{preds: preds, root: &node{}}
}

// Len returns the number of registrations.
func (m *ClassMap) Len() int { return m.size }

// insert stores reg under its keys and returns the registration it
// replaced, if any.
func (m *ClassMap) insert(reg *Registration) *Registration {
	n := m.root
	for _, k := range reg.Keys {
		if n.children == nil {
			n.children = make(map[any]*node)
		}
		child, ok := n.children[k]
		if !ok {
			child = &node{}
			n.children[k] = child
		}
		n = child
	}

	m.seq++
	reg.Seq = m.seq

	replaced := n.reg
	n.reg = reg
	if replaced == nil {
		m.size++
	}
	return replaced
}

// remove deletes the registration under keys and prunes empty nodes.
func (m *ClassMap) remove(keys []any) (*Registration, bool) {
	path := make([]*node, 0, len(keys)+1)
	n := m.root
	path = append(path, n)
	for _, k := range keys {
		child, ok := n.children[k]
		if !ok {
			return nil, false
		}
		n = child
		path = append(path, n)
	}
	if n.reg == nil {
		return nil, false
	}

	removed := n.reg
	n.reg = nil
	m.size--

	for i := len(keys) - 1; i >= 0; i-- {
		if !path[i+1].empty() {
			break
		}
		delete(path[i].children, keys[i])
	}
	return removed, true
}

// exact returns the registration stored under exactly keys.
func (m *ClassMap) exact(keys []any) (*Registration, bool) {
	n := m.root
	for _, k := range keys {
		child, ok := n.children[k]
		if !ok {
			return nil, false
		}
		n = child
	}
	return n.reg, n.reg != nil
}

// candidates returns every registration matching concrete, best first.
// Only trie branches whose key matches the concrete key of their slot are
// visited.
func (m *ClassMap) candidates(concrete []any) []Candidate {
	var out []Candidate
	vec := make([]int, len(m.preds))
	m.collect(m.root, 0, concrete, vec, &out)
	sortCandidates(out)
	return out
}

func (m *ClassMap) collect(n *node, depth int, concrete []any, vec []int, out *[]Candidate) {
	if depth == len(m.preds) {
		if n.reg != nil {
			*out = append(*out, Candidate{
				Registration: n.reg,
				Specificity:  append([]int(nil), vec...),
			})
		}
		return
	}
	if len(n.children) == 0 {
		return
	}

	p := m.preds[depth]
	k := concrete[depth]

	visit := func(key any, child *node) {
		match := rank(p, key, k)
		if !match.OK {
			return
		}
		vec[depth] = match.Specificity
		m.collect(child, depth+1, concrete, vec, out)
	}

	if anc, ok := p.(Ancestry); ok && !IsAny(k) {
		for _, key := range anc.Ancestors(k) {
			if IsAny(key) {
				continue
			}
			if child, ok := n.children[key]; ok {
				visit(key, child)
			}
		}
		if child, ok := n.children[Any]; ok {
			visit(Any, child)
		}
		return
	}

	for key, child := range n.children {
		visit(key, child)
	}
}

// sortCandidates orders by specificity vector (left slot dominates), then
// priority, then registration order, later first.
func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		a, b := c[i], c[j]
		for s := range a.Specificity {
			if a.Specificity[s] != b.Specificity[s] {
				return a.Specificity[s] > b.Specificity[s]
			}
		}
		if a.Registration.Priority != b.Registration.Priority {
			return a.Registration.Priority > b.Registration.Priority
		}
		return a.Registration.Seq > b.Registration.Seq
	})
}

// registrations returns every registration in registration order.
func (m *ClassMap) registrations() []*Registration {
	out := make([]*Registration, 0, m.size)
	var walk func(n *node)
	walk = func(n *node) {
		if n.reg != nil {
			out = append(out, n.reg)
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(m.root)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// descendant returns the registration whose keys lie at or below query in
// every slot and are closest to it, the first slot dominating. Later
// registrations win ties.
func (m *ClassMap) descendant(query []any) (*Registration, bool) {
	var (
		best     *Registration
		bestDist []int
	)
	dist := make([]int, len(query))
	for _, reg := range m.registrations() {
		if !below(reg.Keys, query, dist) {
			continue
		}
		if best == nil || compareDistance(dist, bestDist) <= 0 {
			best = reg
			bestDist = append(bestDist[:0], dist...)
		}
	}
	return best, best != nil
}

// below reports whether every registered key is the query key or one of its
// subclasses, storing the per-slot distances in dist.
func below(registered, query []any, dist []int) bool {
	for i, q := range query {
		r := registered[i]
		switch {
		case IsAny(q):
			dist[i] = 0
		case IsAny(r):
			return false
		default:
			rc, rok := r.(*Class)
			qc, qok := q.(*Class)
			if rok && qok {
				d := rc.Distance(qc)
				if d < 0 {
					return false
				}
				dist[i] = d
				continue
			}
			if r != q {
				return false
			}
			dist[i] = 0
		}
	}
	return true
}

func compareDistance(a, b []int) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
