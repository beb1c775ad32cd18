package vgrouter

import (
	"context"
	"net/url"
)

// QueryUpdater replaces the query of the current location, keeping its path.
type QueryUpdater interface {
	UpdateQuery(ctx context.Context, query url.Values) error
}

// QueryUpdaterRef can be embedded in a component to have a QueryUpdater injected.
type QueryUpdaterRef struct {
	QueryUpdater // embed QueryUpdater
}

// QueryUpdaterSet implements QueryUpdaterSetter.
func (h *QueryUpdaterRef) QueryUpdaterSet(o QueryUpdater) {
	h.QueryUpdater = o
}

// QueryUpdaterSetter is implemented by things that accept a QueryUpdater.
type QueryUpdaterSetter interface {
	QueryUpdaterSet(QueryUpdater)
}

// Inject hands r to v if v accepts a Navigator and/or a QueryUpdater.
// It reports whether anything was injected.
func (r *Router) Inject(v any) bool {
	ok := false
	if s, is := v.(NavigatorSetter); is {
		s.NavigatorSet(r)
		ok = true
	}
	if s, is := v.(QueryUpdaterSetter); is {
		s.QueryUpdaterSet(r)
		ok = true
	}
	return ok
}
