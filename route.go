package vgrouter

// RouteDefinition describes one entry of the route table.
//
// Path may contain literal segments, parameters (":id"), optional parameters
// (":id?") and a trailing wildcard ("*rest").  Children are nested routes whose
// Path is relative to this one; an empty child Path is the parent's default view
// and a child Path starting with "/" is absolute.
type RouteDefinition struct {
	Path     string
	Name     string // optional, unique across the table
	View     any    // opaque view identifier, never interpreted by the router
	Children []RouteDefinition
	Meta     map[string]any

	// BeforeEnter guards run when navigating into this route from outside it.
	BeforeEnter []Guard
	// BeforeLeave guards run when navigating out of this route.
	BeforeLeave []Guard

	// Redirect, if set, sends any navigation that resolves to this route on to
	// another path.  Parameters of the matched route can be referenced (":id").
	Redirect string
}

// cloneDefs deep-copies the route tree so the table never shares mutable state
// with the caller.
func cloneDefs(defs []RouteDefinition) []RouteDefinition {
	if defs == nil {
		return nil
	}
	ret := make([]RouteDefinition, len(defs))
	for i, d := range defs {
		if d.Meta != nil {
			m := make(map[string]any, len(d.Meta))
			for k, v := range d.Meta {
				m[k] = v
			}
			d.Meta = m
		}
		d.BeforeEnter = append([]Guard(nil), d.BeforeEnter...)
		d.BeforeLeave = append([]Guard(nil), d.BeforeLeave...)
		d.Children = cloneDefs(d.Children)
		ret[i] = d
	}
	return ret
}

// ResolvedRoute is the result of matching a Location against the route table.
// The zero value is the "initial" route used before the first navigation.
type ResolvedRoute struct {
	Matched  []RouteDefinition // outermost to innermost
	Params   Params
	Location Location
	Name     string // name of the innermost matched route, if any
	Pattern  string // full path pattern of the innermost matched route

	snap  *tableSnapshot
	chain []int // arena indexes parallel to Matched
}

// Initial reports whether r is the unresolved route from before the first navigation.
func (r ResolvedRoute) Initial() bool {
	return len(r.Matched) == 0
}

// Leaf returns the innermost matched route definition.
func (r ResolvedRoute) Leaf() (RouteDefinition, bool) {
	if len(r.Matched) == 0 {
		return RouteDefinition{}, false
	}
	return r.Matched[len(r.Matched)-1], true
}

// View returns the view identifier of the innermost matched route.
func (r ResolvedRoute) View() any {
	d, _ := r.Leaf()
	return d.View
}

// MetaValue looks up key in the Meta of the matched routes, innermost first.
func (r ResolvedRoute) MetaValue(key string) (any, bool) {
	for i := len(r.Matched) - 1; i >= 0; i-- {
		if v, ok := r.Matched[i].Meta[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// clone returns a deep copy of r.  Callers outside the router only ever see
// copies, so nothing they change reaches the current route or the table.
func (r ResolvedRoute) clone() ResolvedRoute {
	r.Matched = cloneDefs(r.Matched)
	if r.Params != nil {
		r.Params = r.Params.clone()
	}
	r.Location = r.Location.clone()
	return r
}

// sharedDepth returns how many outer routes r and o have in common.
func (r ResolvedRoute) sharedDepth(o ResolvedRoute) int {
	if r.snap == nil || r.snap != o.snap {
		return 0
	}
	n := 0
	for n < len(r.chain) && n < len(o.chain) && r.chain[n] == o.chain[n] {
		n++
	}
	return n
}
