package vgrouter

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/atomic"
)

// RouteTable is an ordered collection of route definitions and their compiled
// matchers.  Register replaces the table wholesale; lookups and matches work
// on an immutable snapshot and never block.
type RouteTable struct {
	snap atomic.Pointer[tableSnapshot]
}

// routeNode is one route in the arena.  Nesting is expressed with the parent
// index rather than pointers.
type routeNode struct {
	def    RouteDefinition
	index  int
	parent int // -1 for top level routes
	depth  int
	mpath  mpath
}

type tableSnapshot struct {
	nodes []routeNode
	names map[string]int
}

// RouteInfo describes a registered route with its full path pattern.
type RouteInfo struct {
	Name   string
	Path   string
	Depth  int
	View   any
	Params []string
}

// NewRouteTable returns a table with defs registered.
func NewRouteTable(defs ...RouteDefinition) (*RouteTable, error) {
	t := &RouteTable{}
	if err := t.Register(defs...); err != nil {
		return nil, err
	}
	return t, nil
}

// MustNewRouteTable is like NewRouteTable but panics upon error.
func MustNewRouteTable(defs ...RouteDefinition) *RouteTable {
	t, err := NewRouteTable(defs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Register replaces the whole table with defs.  On error the previous table
// stays in place.
func (t *RouteTable) Register(defs ...RouteDefinition) error {
	snap, err := compileTable(cloneDefs(defs))
	if err != nil {
		return err
	}
	t.snap.Store(snap)
	return nil
}

// MustRegister is like Register but panics upon error.
func (t *RouteTable) MustRegister(defs ...RouteDefinition) {
	if err := t.Register(defs...); err != nil {
		panic(err)
	}
}

func (t *RouteTable) snapshot() *tableSnapshot {
	if s := t.snap.Load(); s != nil {
		return s
	}
	return &tableSnapshot{}
}

func compileTable(defs []RouteDefinition) (*tableSnapshot, error) {

	s := &tableSnapshot{names: make(map[string]int)}

	var add func(defs []RouteDefinition, parent int, prefix string, depth int) error
	add = func(defs []RouteDefinition, parent int, prefix string, depth int) error {
		for _, d := range defs {

			full := joinPath(prefix, d.Path)
			mp, err := parseMpath(full)
			if err != nil {
				return err
			}

			idx := len(s.nodes)
			if d.Name != "" {
				if _, dup := s.names[d.Name]; dup {
					return fmt.Errorf("%w: %q", ErrDuplicateRouteName, d.Name)
				}
				s.names[d.Name] = idx
			}

			s.nodes = append(s.nodes, routeNode{
				def:    d,
				index:  idx,
				parent: parent,
				depth:  depth,
				mpath:  mp,
			})

			if err := add(d.Children, idx, mp.String(), depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := add(defs, -1, "", 0); err != nil {
		return nil, err
	}

	return s, nil
}

// joinPath concatenates a child pattern onto its parent's with a single "/".
func joinPath(prefix, p string) string {
	switch {
	case strings.HasPrefix(p, "/"), prefix == "":
		return p
	case p == "":
		return prefix
	}
	return strings.TrimSuffix(prefix, "/") + "/" + p
}

// Lookup returns the route registered under name.
func (t *RouteTable) Lookup(name string) (RouteDefinition, error) {
	s := t.snapshot()
	idx, ok := s.names[name]
	if !ok {
		return RouteDefinition{}, &NavigationError{Name: name, Err: ErrUnknownRouteName}
	}
	return cloneDefs([]RouteDefinition{s.nodes[idx].def})[0], nil
}

// URL builds the Location of a named route from its params plus the given
// query and hash.  It is the reverse of Match.
func (t *RouteTable) URL(name string, params Params, query url.Values, hash string) (Location, error) {
	s := t.snapshot()
	idx, ok := s.names[name]
	if !ok {
		return Location{}, &NavigationError{Name: name, Err: ErrUnknownRouteName}
	}
	p, err := s.nodes[idx].mpath.merge(params)
	if err != nil {
		return Location{}, &NavigationError{Name: name, Err: err}
	}
	return Location{Path: p, Query: query, Hash: hash}, nil
}

// Routes lists every registered route, parents before children, in
// registration order.
func (t *RouteTable) Routes() []RouteInfo {
	s := t.snapshot()
	ret := make([]RouteInfo, 0, len(s.nodes))
	for _, n := range s.nodes {
		ret = append(ret, RouteInfo{
			Name:   n.def.Name,
			Path:   n.mpath.String(),
			Depth:  n.depth,
			View:   n.def.View,
			Params: n.mpath.paramNames(),
		})
	}
	return ret
}

// Match finds the most specific route for loc.  Literal segments beat
// parameters, parameters beat optional parameters and wildcards; remaining ties
// go to the more deeply nested route, then to the earlier registered one.
// The query and hash of loc are carried over untouched.
func (t *RouteTable) Match(loc Location) (ResolvedRoute, error) {

	s := t.snapshot()
	segs := splitPath(loc.Path)

	best := -1
	var bestParams Params

	for i := range s.nodes {
		n := &s.nodes[i]
		params, ok := n.mpath.match(segs)
		if !ok {
			continue
		}
		if best < 0 || n.beats(&s.nodes[best]) {
			best = i
			bestParams = params
		}
	}

	if best < 0 {
		return ResolvedRoute{}, &NavigationError{Location: loc.String(), Err: ErrNoMatch}
	}

	return s.resolved(best, bestParams, loc), nil
}

func (n *routeNode) beats(o *routeNode) bool {
	if c := compareScore(n.mpath.score, o.mpath.score); c != 0 {
		return c > 0
	}
	if n.depth != o.depth {
		return n.depth > o.depth
	}
	return n.index < o.index
}

func (s *tableSnapshot) resolved(idx int, params Params, loc Location) ResolvedRoute {

	n := &s.nodes[idx]
	chain := make([]int, n.depth+1)
	for i := idx; i >= 0; i = s.nodes[i].parent {
		chain[s.nodes[i].depth] = i
	}

	matched := make([]RouteDefinition, len(chain))
	for i, ci := range chain {
		matched[i] = s.nodes[ci].def
	}
	matched = cloneDefs(matched)

	if params == nil {
		params = Params{}
	}

	return ResolvedRoute{
		Matched:  matched,
		Params:   params,
		Location: loc.clone(),
		Name:     n.def.Name,
		Pattern:  n.mpath.String(),
		snap:     s,
		chain:    chain,
	}
}
