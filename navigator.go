package vgrouter

import (
	"context"
	"time"
)

// NavigatorOpt is a marker interface to ensure that options to Navigator are passed intentionally.
type NavigatorOpt interface {
	IsNavigatorOpt()
}

type intNavigatorOpt int

// IsNavigatorOpt implements NavigatorOpt.
func (i intNavigatorOpt) IsNavigatorOpt() {}

var (
	// NavReplace will cause this navigation to replace the
	// current history entry rather than pushing to the stack.
	NavReplace NavigatorOpt = intNavigatorOpt(1)

	// NavSkipRender will cause this navigation to commit without notifying
	// subscribers.  It can be used when a component has already accounted for
	// the render in some other way and just wants to inform the router of the
	// current logical path and query.
	NavSkipRender NavigatorOpt = intNavigatorOpt(2)
)

type navTimeout time.Duration

// IsNavigatorOpt implements NavigatorOpt.
func (navTimeout) IsNavigatorOpt() {}

// NavTimeout aborts the navigation with reason AbortTimeout if its guards have
// not finished after d.
func NavTimeout(d time.Duration) NavigatorOpt { return navTimeout(d) }

type navOpts []NavigatorOpt

func (no navOpts) has(o NavigatorOpt) bool {
	for _, o2 := range no {
		if o == o2 {
			return true
		}
	}
	return false
}

func (no navOpts) timeout(def time.Duration) time.Duration {
	for _, o := range no {
		if t, ok := o.(navTimeout); ok {
			return time.Duration(t)
		}
	}
	return def
}

// Navigator is what components need to move around the application.
type Navigator interface {
	Navigate(ctx context.Context, t Target, opts ...NavigatorOpt) (ResolvedRoute, error)
	Back()
	Forward()
}

// NavigatorRef can be embedded in a component to have a Navigator injected.
type NavigatorRef struct {
	Navigator // embed Navigator
}

// NavigatorSet implements NavigatorSetter.
func (h *NavigatorRef) NavigatorSet(o Navigator) {
	h.Navigator = o
}

// NavigatorSetter is implemented by things that accept a Navigator.
type NavigatorSetter interface {
	NavigatorSet(Navigator)
}
