package vgrouter

import (
	"fmt"
	"net/url"
	"strings"
)

// Location is a navigable application location: a path, optional query
// values and an optional hash (without the leading "#").
// Path is kept in its escaped form; route parameters are decoded during matching.
type Location struct {
	Path  string
	Query url.Values
	Hash  string
}

// ParseLocation parses the path-and-onward part of a URL, e.g. "/items/42?sort=asc#top".
// A full URL is accepted and anything before the path (scheme, host) is ignored.
func ParseLocation(s string) (Location, error) {

	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q: %v", ErrInvalidLocation, s, err)
	}

	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q: %v", ErrInvalidLocation, s, err)
	}
	if len(q) == 0 {
		q = nil
	}

	p := u.EscapedPath()
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return Location{Path: p, Query: q, Hash: u.Fragment}, nil
}

// MustParseLocation is like ParseLocation but panics upon error.
func MustParseLocation(s string) Location {
	l, err := ParseLocation(s)
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the path, query and hash as a single string suitable for
// pushState or for ParseLocation.
func (l Location) String() string {
	var b strings.Builder
	b.Grow(len(l.Path) + 16)

	p := l.Path
	if p == "" {
		p = "/"
	}
	b.WriteString(p)

	if q := l.Query.Encode(); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	if l.Hash != "" {
		b.WriteByte('#')
		b.WriteString(l.Hash)
	}
	return b.String()
}

// Equal reports whether l and o have the same path, query and hash.
// Query key order is not significant.
func (l Location) Equal(o Location) bool {
	lp, op := l.Path, o.Path
	if lp == "" {
		lp = "/"
	}
	if op == "" {
		op = "/"
	}
	return lp == op && l.Hash == o.Hash && l.Query.Encode() == o.Query.Encode()
}

// clone returns a copy of l whose Query may be modified without affecting l.
func (l Location) clone() Location {
	if l.Query != nil {
		q := make(url.Values, len(l.Query))
		for k, v := range l.Query {
			q[k] = append([]string(nil), v...)
		}
		l.Query = q
	}
	return l
}
