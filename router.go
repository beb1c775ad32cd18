package vgrouter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

const tracerName = "github.com/vugu/vgrouter/v2"

// NavState is the state of a navigation attempt.
type NavState int32

const (
	StateIdle NavState = iota
	StateResolving
	StateGuarding
	StateCommitting // terminal, the navigation succeeded
	StateAborted    // terminal
	StateFailed     // terminal
)

func (s NavState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateGuarding:
		return "guarding"
	case StateCommitting:
		return "committing"
	case StateAborted:
		return "aborted"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("NavState(%d)", int32(s))
}

// Trigger tells what started a navigation.
type Trigger int

const (
	TriggerPush    Trigger = iota // Navigate
	TriggerReplace                // Replace or NavReplace
	TriggerPop                    // back/forward in history
)

func (t Trigger) String() string {
	switch t {
	case TriggerPush:
		return "push"
	case TriggerReplace:
		return "replace"
	case TriggerPop:
		return "pop"
	}
	return fmt.Sprintf("Trigger(%d)", int(t))
}

// Navigation records one navigation attempt.  It is passed to AfterEach hooks
// and error observers once the attempt is over.
type Navigation struct {
	ID        uuid.UUID
	Trigger   Trigger
	Target    Target
	From      ResolvedRoute
	To        ResolvedRoute // set only if the navigation committed
	State     NavState
	Redirects int
	Started   time.Time
	Duration  time.Duration
	Err       error
}

type notification struct {
	to, from ResolvedRoute
}

// Router is the navigation controller.  It resolves targets against its
// RouteTable, runs guards, and commits the result to its History and to the
// current route, which it alone owns.
//
// At most one navigation is in flight: starting a navigation aborts the
// pending one with reason AbortSuperseded, and only the most recently started
// navigation can commit.
type Router struct {
	table   *RouteTable
	history History
	opts    Options
	logger  *slog.Logger
	tracer  trace.Tracer

	seq     atomic.Uint64
	state   atomic.Int32
	current atomic.Pointer[ResolvedRoute]

	mu        sync.Mutex // serializes starting and committing navigations
	cancel    context.CancelCauseFunc
	closed    bool
	popOffset int // history moves by pops since the last commit

	notifyMu  sync.Mutex // guards pending and notifying
	pending   []notification
	notifying bool

	guards      hookList[Guard]
	subscribers hookList[func(to, from ResolvedRoute)]
	afterHooks  hookList[func(*Navigation)]
	errHooks    hookList[func(error, *Navigation)]

	unlisten func()
}

// New returns a Router over table and history.  A nil table is empty and a nil
// history is an in-memory one starting at "/".  The current route stays
// initial until the first navigation; call Pull to sync with history.
func New(table *RouteTable, history History, opts ...Option) *Router {

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}

	if table == nil {
		table = &RouteTable{}
	}
	if history == nil {
		history = NewMemoryHistory(Location{Path: "/"})
	}

	r := &Router{
		table:   table,
		history: history,
		opts:    o,
		logger:  o.Logger,
		tracer:  o.TracerProvider.Tracer(tracerName),
	}
	r.current.Store(&ResolvedRoute{})
	r.unlisten = history.Listen(r.handlePop)

	return r
}

// Table returns the route table.
func (r *Router) Table() *RouteTable { return r.table }

// History returns the history adapter.
func (r *Router) History() History { return r.history }

// Current returns the most recently committed route.
func (r *Router) Current() ResolvedRoute { return r.current.Load().clone() }

// State returns the state of the most recently started navigation.
func (r *Router) State() NavState { return NavState(r.state.Load()) }

// Navigate goes to t, pushing a new history entry (unless NavReplace is given).
func (r *Router) Navigate(ctx context.Context, t Target, opts ...NavigatorOpt) (ResolvedRoute, error) {
	trig := TriggerPush
	if navOpts(opts).has(NavReplace) {
		trig = TriggerReplace
	}
	return r.run(ctx, t, trig, 0, opts)
}

// Replace goes to t, replacing the current history entry.
func (r *Router) Replace(ctx context.Context, t Target, opts ...NavigatorOpt) (ResolvedRoute, error) {
	return r.run(ctx, t, TriggerReplace, 0, opts)
}

// NavigateTo is Navigate for a path string such as "/items/42?sort=asc".
func (r *Router) NavigateTo(ctx context.Context, path string, opts ...NavigatorOpt) (ResolvedRoute, error) {
	return r.Navigate(ctx, ToPath(path), opts...)
}

// MustNavigate is like Navigate but panics upon error.
func (r *Router) MustNavigate(ctx context.Context, t Target, opts ...NavigatorOpt) ResolvedRoute {
	rr, err := r.Navigate(ctx, t, opts...)
	if err != nil {
		panic(err)
	}
	return rr
}

// Back moves one entry back in history.  The resulting navigation runs like
// any other; if it is aborted the history is moved forward again.
func (r *Router) Back() { r.history.Go(-1, true) }

// Forward moves one entry forward in history.
func (r *Router) Forward() { r.history.Go(1, true) }

// Go moves delta entries through history.
func (r *Router) Go(delta int) { r.history.Go(delta, true) }

// Pull will read the current history location and navigate to it, replacing
// the entry.  This is generally called once at application startup.
func (r *Router) Pull(ctx context.Context) (ResolvedRoute, error) {
	return r.Replace(ctx, ToLocation(r.history.Location()))
}

// UpdateQuery implements QueryUpdater by replacing the current location with
// the same path and hash and a new query.
func (r *Router) UpdateQuery(ctx context.Context, query url.Values) error {
	cur := r.Current()
	loc := cur.Location
	if cur.Initial() {
		loc = r.history.Location()
	}
	loc = loc.clone()
	loc.Query = query
	_, err := r.Replace(ctx, ToLocation(loc))
	return err
}

// Resolve resolves t against the route table, following static route
// redirects, without running guards or touching history.
func (r *Router) Resolve(t Target) (ResolvedRoute, error) {
	return r.resolve(t, &Navigation{})
}

// BeforeEach registers a global guard.  Global guards run in registration
// order before any route guard.
func (r *Router) BeforeEach(g Guard) (remove func()) { return r.guards.add(g) }

// AfterEach registers fn to be called at the end of every navigation attempt,
// committed or not.
func (r *Router) AfterEach(fn func(nav *Navigation)) (remove func()) { return r.afterHooks.add(fn) }

// Subscribe registers fn to be called after every commit, in commit order.
// fn may start a navigation itself; subscribers hear of that commit once the
// current round of calls has returned.
func (r *Router) Subscribe(fn func(to, from ResolvedRoute)) (unsubscribe func()) {
	return r.subscribers.add(fn)
}

// OnError registers fn to be called for every failed or aborted navigation.
func (r *Router) OnError(fn func(err error, nav *Navigation)) (remove func()) {
	return r.errHooks.add(fn)
}

// Close stops listening to history and aborts any pending navigation.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if r.cancel != nil {
		r.cancel(&AbortError{Reason: AbortClosed})
	}
	if r.unlisten != nil {
		r.unlisten()
	}
}

func (r *Router) handlePop(ev PopEvent) {
	_, _ = r.run(context.Background(), ToLocation(ev.Location), TriggerPop, ev.Delta, nil)
}

func (r *Router) run(ctx context.Context, t Target, trig Trigger, delta int, opts navOpts) (ResolvedRoute, error) {

	nav := &Navigation{
		ID:      uuid.New(),
		Trigger: trig,
		Target:  t,
		From:    r.Current(),
		Started: time.Now(),
	}

	ctx, span := r.tracer.Start(ctx, "vgrouter.navigate", trace.WithAttributes(
		attribute.String("vgrouter.navigation.id", nav.ID.String()),
		attribute.String("vgrouter.navigation.trigger", trig.String()),
		attribute.String("vgrouter.navigation.target", t.String()),
	))
	defer span.End()

	ctx, seq, release, err := r.begin(ctx, opts.timeout(r.opts.Timeout), delta)
	if err != nil {
		r.finish(ctx, 0, nav, ResolvedRoute{}, err)
		return ResolvedRoute{}, err
	}
	defer release()

	// read after begin: no older navigation can commit from here on
	nav.From = r.Current()

	to, err := r.attempt(ctx, seq, nav)
	if err == nil {
		err = r.commit(ctx, seq, nav, to, opts.has(NavSkipRender))
	}

	r.finish(ctx, seq, nav, to, err)

	if err != nil {
		return ResolvedRoute{}, err
	}
	return to.clone(), nil
}

// begin supersedes any pending navigation and returns the context and
// sequence number of a new one.  delta is how far history already moved for
// a pop.
func (r *Router) begin(parent context.Context, timeout time.Duration, delta int) (context.Context, uint64, func(), error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return parent, 0, nil, &AbortError{Reason: AbortClosed}
	}

	if r.cancel != nil {
		r.cancel(&AbortError{Reason: AbortSuperseded})
	}

	r.popOffset += delta

	seq := r.seq.Inc()
	ctx, cancel := context.WithCancelCause(parent)
	r.cancel = cancel

	stop := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, stop = context.WithTimeoutCause(ctx, timeout, &AbortError{Reason: AbortTimeout})
	}

	release := func() {
		stop()
		cancel(nil)
		r.mu.Lock()
		if r.seq.Load() == seq {
			r.cancel = nil
		}
		r.mu.Unlock()
	}

	return ctx, seq, release, nil
}

// check reports an abort if the navigation was cancelled or superseded.
func (r *Router) check(ctx context.Context, seq uint64) error {
	if ctx.Err() != nil {
		return abortCause(ctx)
	}
	if r.seq.Load() != seq {
		return &AbortError{Reason: AbortSuperseded}
	}
	return nil
}

func abortCause(ctx context.Context) error {
	cause := context.Cause(ctx)
	var ae *AbortError
	if errors.As(cause, &ae) {
		return ae
	}
	if errors.Is(cause, context.DeadlineExceeded) {
		return &AbortError{Reason: AbortTimeout}
	}
	return &AbortError{Reason: AbortCancelled}
}

func (r *Router) transition(ctx context.Context, seq uint64, nav *Navigation, s NavState) {
	nav.State = s
	if seq != 0 && r.seq.Load() == seq {
		r.state.Store(int32(s))
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "navigation state", navAttr(nav), slog.String("state", s.String()))
}

func (r *Router) attempt(ctx context.Context, seq uint64, nav *Navigation) (ResolvedRoute, error) {

	target := nav.Target

	for {

		r.transition(ctx, seq, nav, StateResolving)

		to, err := r.resolve(target, nav)
		if err != nil {
			return ResolvedRoute{}, err
		}
		if err := r.check(ctx, seq); err != nil {
			return ResolvedRoute{}, err
		}

		r.transition(ctx, seq, nav, StateGuarding)

		res, err := r.runGuards(ctx, seq, to, nav.From)
		if err != nil {
			return ResolvedRoute{}, err
		}

		switch {
		case res.IsRedirect():
			if err := r.countRedirect(nav, to.Location); err != nil {
				return ResolvedRoute{}, err
			}
			r.logger.LogAttrs(ctx, slog.LevelDebug, "navigation redirected", navAttr(nav),
				slog.String("from", to.Location.String()), slog.String("to", res.Target().String()))
			target = res.Target()
			continue
		case res.IsAbort():
			return ResolvedRoute{}, &AbortError{Reason: res.Reason()}
		}

		return to, nil
	}
}

func (r *Router) countRedirect(nav *Navigation, at Location) error {
	nav.Redirects++
	if nav.Redirects > r.opts.MaxRedirects {
		return &NavigationError{Location: at.String(), Err: ErrTooManyRedirects}
	}
	return nil
}

// resolve turns t into a ResolvedRoute, following Redirect fields of matched routes.
func (r *Router) resolve(t Target, nav *Navigation) (ResolvedRoute, error) {
	for {
		loc, err := t.locate(r.table)
		if err != nil {
			return ResolvedRoute{}, err
		}

		to, err := r.table.Match(loc)
		if err != nil {
			return ResolvedRoute{}, err
		}

		leaf, _ := to.Leaf()
		if leaf.Redirect == "" {
			return to, nil
		}

		next, err := staticRedirect(leaf.Redirect, to)
		if err != nil {
			return ResolvedRoute{}, &NavigationError{Location: loc.String(), Err: err}
		}
		if err := r.countRedirect(nav, loc); err != nil {
			return ResolvedRoute{}, err
		}
		t = ToLocation(next)
	}
}

// staticRedirect builds the location a route's Redirect points to, filling in
// params of the matched route and keeping its query and hash unless the
// redirect sets its own.
func staticRedirect(redirect string, from ResolvedRoute) (Location, error) {
	loc, err := ParseLocation(redirect)
	if err != nil {
		return Location{}, err
	}
	mp, err := parseMpath(loc.Path)
	if err != nil {
		return Location{}, err
	}
	if loc.Path, err = mp.merge(from.Params); err != nil {
		return Location{}, err
	}
	if loc.Query == nil {
		loc.Query = from.Location.Query
	}
	if loc.Hash == "" {
		loc.Hash = from.Location.Hash
	}
	return loc, nil
}

// guardChain returns global guards, then BeforeLeave guards of the routes
// being left (innermost first), then BeforeEnter guards of the routes being
// entered (outermost first).
func (r *Router) guardChain(to, from ResolvedRoute) []Guard {

	chain := r.guards.list()
	shared := to.sharedDepth(from)

	for i := len(from.Matched) - 1; i >= shared; i-- {
		chain = append(chain, from.Matched[i].BeforeLeave...)
	}
	for i := shared; i < len(to.Matched); i++ {
		chain = append(chain, to.Matched[i].BeforeEnter...)
	}

	return chain
}

func (r *Router) runGuards(ctx context.Context, seq uint64, to, from ResolvedRoute) (GuardResult, error) {
	for _, g := range r.guardChain(to, from) {
		res, err := r.evaluate(ctx, g, to, from)
		if err != nil {
			return GuardResult{}, err
		}
		if err := r.check(ctx, seq); err != nil {
			return GuardResult{}, err
		}
		if !res.IsProceed() {
			return res, nil
		}
	}
	return Proceed(), nil
}

// evaluate runs g on its own goroutine so that a guard which ignores ctx
// cannot hold up a superseding navigation.
func (r *Router) evaluate(ctx context.Context, g Guard, to, from ResolvedRoute) (GuardResult, error) {

	type outcome struct {
		res GuardResult
		err error
	}

	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- outcome{err: fmt.Errorf("panic: %v", p)}
			}
		}()
		res, err := g.Evaluate(ctx, to, from)
		ch <- outcome{res: res, err: err}
	}()

	select {
	case o := <-ch:
		if ctx.Err() != nil {
			return GuardResult{}, abortCause(ctx)
		}
		if o.err != nil {
			var ge *GuardError
			if errors.As(o.err, &ge) {
				return GuardResult{}, ge
			}
			return GuardResult{}, &GuardError{Cause: o.err}
		}
		return o.res, nil
	case <-ctx.Done():
		return GuardResult{}, abortCause(ctx)
	}
}

func (r *Router) commit(ctx context.Context, seq uint64, nav *Navigation, to ResolvedRoute, skipNotify bool) error {

	r.mu.Lock()

	if err := r.check(ctx, seq); err != nil {
		r.mu.Unlock()
		return err
	}

	r.transition(ctx, seq, nav, StateCommitting)

	var err error
	switch {
	case nav.Trigger == TriggerPop && nav.Redirects == 0:
		// history is already there
	case nav.Trigger == TriggerPush && nav.Redirects == 0:
		err = r.history.Push(to.Location.clone())
	default:
		err = r.history.Replace(to.Location.clone())
	}
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("update history: %w", err)
	}
	r.popOffset = 0

	stored := to.clone()
	from := r.current.Swap(&stored)

	if !skipNotify {
		r.notifyMu.Lock()
		r.pending = append(r.pending, notification{to: stored, from: *from})
		r.notifyMu.Unlock()
	}
	r.mu.Unlock()

	r.notify()

	return nil
}

// notify delivers pending commits to subscribers.  Only one goroutine
// delivers at a time; commits made meanwhile, including by a subscriber, are
// queued behind the current one.
func (r *Router) notify() {

	r.notifyMu.Lock()
	if r.notifying {
		r.notifyMu.Unlock()
		return
	}
	r.notifying = true
	r.notifyMu.Unlock()

	done := false
	defer func() {
		if !done { // a subscriber panicked
			r.notifyMu.Lock()
			r.notifying = false
			r.notifyMu.Unlock()
		}
	}()

	for {
		r.notifyMu.Lock()
		if len(r.pending) == 0 {
			r.notifying = false
			r.notifyMu.Unlock()
			done = true
			return
		}
		n := r.pending[0]
		r.pending = r.pending[1:]
		r.notifyMu.Unlock()

		for _, fn := range r.subscribers.list() {
			fn(n.to.clone(), n.from.clone())
		}
	}
}

// rollback returns history to the entry of the current route after the most
// recent navigation failed with back/forward moves still outstanding.
func (r *Router) rollback(seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq == 0 || r.seq.Load() != seq || r.popOffset == 0 {
		return
	}
	r.history.Go(-r.popOffset, false)
	r.popOffset = 0
}

func (r *Router) finish(ctx context.Context, seq uint64, nav *Navigation, to ResolvedRoute, err error) {

	nav.Duration = time.Since(nav.Started)
	nav.Err = err
	span := trace.SpanFromContext(ctx)

	if err == nil {
		nav.To = to
		span.SetAttributes(
			attribute.String("vgrouter.route.pattern", to.Pattern),
			attribute.String("vgrouter.route.name", to.Name),
		)
		span.SetStatus(codes.Ok, "")
		r.logger.LogAttrs(ctx, slog.LevelInfo, "navigation committed",
			navAttr(nav), routeAttr("from", nav.From), routeAttr("to", to), durationAttr(nav.Duration))
	} else {
		final := StateFailed
		if errors.Is(err, ErrAborted) {
			final = StateAborted
		}
		r.transition(ctx, seq, nav, final)

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		level := slog.LevelWarn
		if IsSuperseded(err) {
			level = slog.LevelDebug
		}
		r.logger.LogAttrs(ctx, level, "navigation failed", navAttr(nav), errAttr(err), durationAttr(nav.Duration))

		// the browser already moved; put it back where the committed route is
		if !IsSuperseded(err) {
			r.rollback(seq)
		}

		for _, fn := range r.errHooks.list() {
			fn(err, nav)
		}
	}

	for _, fn := range r.afterHooks.list() {
		fn(nav)
	}
}
