package vgrouter

import "net/url"

// Target is where a navigation should go: either a Location or a named route
// with params.  Use ToPath, ToLocation or ToNamed to build one.
type Target struct {
	// Name selects a named route; when empty Location is used as is.
	Name   string
	Params Params

	// Location is the destination for path targets.  For named targets only its
	// Query and Hash are used.
	Location Location

	raw string
	err error
}

// ToPath returns a Target for a path with optional query and hash, e.g. "/items/42?sort=asc".
// A malformed path is reported when the target is navigated to.
func ToPath(p string) Target {
	l, err := ParseLocation(p)
	return Target{Location: l, raw: p, err: err}
}

// ToLocation returns a Target for loc.
func ToLocation(loc Location) Target {
	return Target{Location: loc}
}

// ToNamed returns a Target for the route registered under name.
func ToNamed(name string, params Params) Target {
	return Target{Name: name, Params: params}
}

// WithQuery returns a copy of t with its query replaced.
func (t Target) WithQuery(q url.Values) Target {
	t.Location.Query = q
	return t
}

// WithHash returns a copy of t with its hash replaced.
func (t Target) WithHash(h string) Target {
	t.Location.Hash = h
	return t
}

// IsNamed reports whether t refers to a named route.
func (t Target) IsNamed() bool { return t.Name != "" }

func (t Target) String() string {
	if t.Name != "" {
		return "name:" + t.Name
	}
	if t.err != nil {
		return t.raw
	}
	return t.Location.String()
}

// locate turns t into a concrete Location using the table for named routes.
func (t Target) locate(table *RouteTable) (Location, error) {
	if t.err != nil {
		return Location{}, &NavigationError{Location: t.raw, Err: t.err}
	}
	if t.Name != "" {
		return table.URL(t.Name, t.Params, t.Location.Query, t.Location.Hash)
	}
	return t.Location, nil
}
