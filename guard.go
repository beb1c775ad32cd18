package vgrouter

import "context"

// Guard is evaluated during navigation and decides whether the navigation
// proceeds, is redirected elsewhere or is aborted.
//
// Evaluate may block (e.g. waiting on a permission check).  ctx is cancelled
// when the navigation is superseded or times out; the result of a cancelled
// evaluation is discarded.  A returned error (or a panic) aborts the
// navigation with a *GuardError.
type Guard interface {
	Evaluate(ctx context.Context, to, from ResolvedRoute) (GuardResult, error)
}

// GuardFunc implements Guard as a function.
type GuardFunc func(ctx context.Context, to, from ResolvedRoute) (GuardResult, error)

// Evaluate implements the Guard interface.
func (f GuardFunc) Evaluate(ctx context.Context, to, from ResolvedRoute) (GuardResult, error) {
	return f(ctx, to, from)
}

type resultKind int

const (
	resultProceed resultKind = iota
	resultRedirect
	resultAbort
)

// GuardResult is the outcome of a guard.  The zero value is Proceed.
type GuardResult struct {
	kind   resultKind
	target Target
	reason string
}

// Proceed lets the navigation continue to the next guard.
func Proceed() GuardResult { return GuardResult{} }

// RedirectTo restarts the navigation with a new target.
func RedirectTo(t Target) GuardResult { return GuardResult{kind: resultRedirect, target: t} }

// Abort stops the navigation; the caller receives an *AbortError with reason.
func Abort(reason string) GuardResult { return GuardResult{kind: resultAbort, reason: reason} }

func (r GuardResult) IsProceed() bool  { return r.kind == resultProceed }
func (r GuardResult) IsRedirect() bool { return r.kind == resultRedirect }
func (r GuardResult) IsAbort() bool    { return r.kind == resultAbort }

// Target returns the redirect target of a RedirectTo result.
func (r GuardResult) Target() Target { return r.target }

// Reason returns the reason of an Abort result.
func (r GuardResult) Reason() string { return r.reason }

func (r GuardResult) String() string {
	switch r.kind {
	case resultRedirect:
		return "redirect(" + r.target.String() + ")"
	case resultAbort:
		return "abort(" + r.reason + ")"
	}
	return "proceed"
}
