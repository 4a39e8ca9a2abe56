package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

type RouteProp struct {
	Key   string
	Value []byte
}

// Route is a forwarding entry for a prefix
type Route struct {
	// NextHop is the account packets are sent to, empty for routes that terminate at this node
	NextHop AccountId
	// Path is the sequence of accounts/nodes the route was learned through, used for loop detection
	Path  []string
	Auth  []byte
	Props []RouteProp
}

func (r Route) IsLocal() bool {
	return r.NextHop == ""
}

// Traverses reports whether the route passes through id, either as the next hop or anywhere on its path
func (r Route) Traverses(id string) bool {
	return string(r.NextHop) == id || slices.Contains(r.Path, id)
}

func (r Route) Equal(o Route) bool {
	return r.NextHop == o.NextHop &&
		slices.Equal(r.Path, o.Path) &&
		slices.Equal(r.Auth, o.Auth) &&
		slices.EqualFunc(r.Props, o.Props, func(a, b RouteProp) bool {
			return a.Key == b.Key && slices.Equal(a.Value, b.Value)
		})
}

func (r Route) String() string {
	nh := string(r.NextHop)
	if nh == "" {
		nh = "(local)"
	}
	return fmt.Sprintf("(nh: %s, path: [%s])", nh, strings.Join(r.Path, " "))
}

type tableSnapshot struct {
	routes     map[string]Route
	generation uint64
}

// RoutingTable maps address prefixes to routes. Mutations must only happen on the dispatch goroutine, reads are
// lock-free and may happen from any goroutine; a reader always observes a complete table.
type RoutingTable struct {
	mu   sync.Mutex
	snap atomic.Pointer[tableSnapshot]
}

func NewRoutingTable() *RoutingTable {
	t := &RoutingTable{}
	t.snap.Store(&tableSnapshot{routes: make(map[string]Route)})
	return t
}

func (t *RoutingTable) load() *tableSnapshot {
	return t.snap.Load()
}

// Update applies fun to a copy of the table and publishes the result atomically
func (t *RoutingTable) Update(fun func(routes map[string]Route)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	old := t.load()
	next := &tableSnapshot{
		routes:     maps.Clone(old.routes),
		generation: old.generation + 1,
	}
	fun(next.routes)
	t.snap.Store(next)
}

func (t *RoutingTable) Insert(prefix string, route Route) {
	t.Update(func(routes map[string]Route) {
		routes[prefix] = route
	})
}

// Delete removes prefix, returning false if it was not present
func (t *RoutingTable) Delete(prefix string) bool {
	if _, ok := t.Get(prefix); !ok {
		return false
	}
	t.Update(func(routes map[string]Route) {
		delete(routes, prefix)
	})
	return true
}

func (t *RoutingTable) Get(prefix string) (Route, bool) {
	r, ok := t.load().routes[prefix]
	return r, ok
}

// Resolve returns the route with the longest prefix covering dest
func (t *RoutingTable) Resolve(dest string) (string, Route, bool) {
	return t.ResolveFunc(dest, func(string, Route) bool { return true })
}

// ResolveFunc walks the prefixes covering dest from longest to shortest, returning the first route accepted by fun
func (t *RoutingTable) ResolveFunc(dest string, accept func(prefix string, route Route) bool) (string, Route, bool) {
	routes := t.load().routes
	for prefix := range PrefixesOf(dest) {
		if route, ok := routes[prefix]; ok && accept(prefix, route) {
			return prefix, route, true
		}
	}
	return "", Route{}, false
}

// Prefixes returns all prefixes in the table, sorted
func (t *RoutingTable) Prefixes() []string {
	return slices.Sorted(maps.Keys(t.load().routes))
}

func (t *RoutingTable) Len() int {
	return len(t.load().routes)
}

// Generation increments every time the table is modified
func (t *RoutingTable) Generation() uint64 {
	return t.load().generation
}

func (t *RoutingTable) String() string {
	routes := t.load().routes
	rt := make([]string, 0, len(routes))
	for prefix, route := range routes {
		p := prefix
		if p == "" {
			p = "(default)"
		}
		rt = append(rt, fmt.Sprintf("%s via %s", p, route))
	}
	slices.Sort(rt)
	return strings.Join(rt, "\n")
}
