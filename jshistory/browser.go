// Package jshistory implements vgrouter.History on top of the browser's
// window.history, with a fallback to the in-memory history outside a browser.
package jshistory

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/vugu/vugu/js"

	"github.com/vugu/vgrouter/v2"
)

// posKey is the history.state property holding the entry position, so that a
// popstate can be turned into a delta.
const posKey = "vgrouterPos"

var errNotBrowser = errors.New("not in browser (js) environment")

// Option configures a Browser.
type Option func(*Browser)

// UseFragment sets the fragment flag which if set means the fragment part of the URL (after the "#")
// is used as the path and query string.  This can be useful for compatibility in applications which are
// served statically and do not have the ability to handle URL routing on the server side.
func UseFragment(v bool) Option {
	return func(b *Browser) {
		b.useFragment = v
	}
}

// Base sets a path prefix the application is served under, e.g. "/app".
// It is stripped from locations read from the browser and added to
// locations written to it.  Ignored in fragment mode.
func Base(base string) Option {
	return func(b *Browser) {
		b.base = strings.TrimSuffix(base, "/")
	}
}

// EventEnv is the part of vugu's EventEnv the browser history uses to
// re-render after a popstate.
type EventEnv interface {
	Lock()
	UnlockRender()
}

// WithEventEnv makes popstate navigations run while holding env's lock, with a
// render requested once the listeners return.
func WithEventEnv(env EventEnv) Option {
	return func(b *Browser) {
		b.eventEnv = env
	}
}

// Browser is a vgrouter.History backed by window.history.
type Browser struct {
	useFragment bool
	base        string
	eventEnv    EventEnv

	mu        sync.Mutex
	pos       int
	skip      int // pop events to swallow after silent Go calls
	listeners []listener
	nextID    int

	popStateFunc js.Func
}

type listener struct {
	id int
	fn func(vgrouter.PopEvent)
}

// Available reports whether a browser window is present.
func Available() bool {
	g := js.Global()
	return g.Truthy() && g.Get("window").Truthy()
}

// New returns a Browser history when running in a browser and otherwise an
// in-memory history starting at initial.
func New(initial vgrouter.Location, opts ...Option) vgrouter.History {
	if Available() {
		b, err := NewBrowser(opts...)
		if err == nil {
			return b
		}
	}
	return vgrouter.NewMemoryHistory(initial)
}

// NewBrowser returns a history bound to window.history and starts listening
// for popstate.  Only works in wasm environment otherwise returns an error.
func NewBrowser(opts ...Option) (*Browser, error) {

	if !Available() {
		return nil, errNotBrowser
	}

	b := &Browser{}
	for _, o := range opts {
		o(b)
	}

	// pick up the position after a reload, or stamp the first entry
	st := history().Get("state")
	if st.Truthy() && !st.Get(posKey).IsUndefined() {
		b.pos = st.Get(posKey).Int()
	} else {
		history().Call("replaceState", b.state(0), "", b.href(b.Location()))
	}

	if err := b.addPopStateListener(b.onPopState); err != nil {
		return nil, err
	}

	return b, nil
}

func history() js.Value {
	return js.Global().Get("window").Get("history")
}

func (b *Browser) state(pos int) js.Value {
	return js.ValueOf(map[string]interface{}{posKey: pos})
}

// Location implements vgrouter.History by reading the browser URL.
func (b *Browser) Location() vgrouter.Location {
	loc, err := b.readBrowserURL()
	if err != nil {
		return vgrouter.Location{Path: "/"}
	}
	return loc
}

// Push implements vgrouter.History using window.history.pushState().
func (b *Browser) Push(loc vgrouter.Location) error {
	b.mu.Lock()
	b.pos++
	pos := b.pos
	b.mu.Unlock()
	history().Call("pushState", b.state(pos), "", b.href(loc))
	return nil
}

// Replace implements vgrouter.History using window.history.replaceState().
func (b *Browser) Replace(loc vgrouter.Location) error {
	b.mu.Lock()
	pos := b.pos
	b.mu.Unlock()
	history().Call("replaceState", b.state(pos), "", b.href(loc))
	return nil
}

// Go implements vgrouter.History using window.history.go().
func (b *Browser) Go(delta int, notify bool) {
	if delta == 0 {
		return
	}
	if !notify {
		b.mu.Lock()
		b.skip++
		b.mu.Unlock()
	}
	history().Call("go", delta)
}

// Listen implements vgrouter.History.
func (b *Browser) Listen(fn func(vgrouter.PopEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listener{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.listeners {
			if l.id == id {
				b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close stops listening for popstate.
func (b *Browser) Close() error {
	return b.removePopStateListener()
}

func (b *Browser) onPopState(this js.Value, args []js.Value) interface{} {

	newPos := 0
	if len(args) > 0 {
		if st := args[0].Get("state"); st.Truthy() && !st.Get(posKey).IsUndefined() {
			newPos = st.Get(posKey).Int()
		}
	}

	b.mu.Lock()
	delta := newPos - b.pos
	b.pos = newPos
	if b.skip > 0 {
		b.skip--
		b.mu.Unlock()
		return nil
	}
	ls := append([]listener(nil), b.listeners...)
	b.mu.Unlock()

	ev := vgrouter.PopEvent{Location: b.Location(), Delta: delta}

	// guards may wait on other js events, so never block the event loop
	go func() {
		if b.eventEnv != nil {
			b.eventEnv.Lock()
			defer b.eventEnv.UnlockRender()
		}
		for _, l := range ls {
			l.fn(ev)
		}
	}()

	return nil
}

// href returns the URL to hand to pushState/replaceState for loc.
func (b *Browser) href(loc vgrouter.Location) string {
	if b.useFragment {
		return "#" + loc.String()
	}
	return b.base + loc.String()
}

// stripBase removes the configured base from a browser path.
func (b *Browser) stripBase(p string) string {
	if b.base == "" || !strings.HasPrefix(p, b.base) {
		return p
	}
	rest := p[len(b.base):]
	if rest == "" {
		return "/"
	}
	if !strings.HasPrefix(rest, "/") {
		return p // "/application" does not live under base "/app"
	}
	return rest
}

func (b *Browser) readBrowserURL() (vgrouter.Location, error) {

	g := js.Global()
	if !g.Truthy() {
		return vgrouter.Location{}, errNotBrowser
	}

	var locstr string
	if b.useFragment {
		locstr = strings.TrimPrefix(g.Get("window").Get("location").Get("hash").String(), "#")
	} else {
		locstr = g.Get("window").Get("location").Call("toString").String()
	}

	return b.parse(locstr)
}

func (b *Browser) parse(locstr string) (vgrouter.Location, error) {

	u, err := url.Parse(locstr)
	if err != nil {
		return vgrouter.Location{}, err
	}

	loc, err := vgrouter.ParseLocation(u.RequestURI())
	if err != nil {
		return vgrouter.Location{}, err
	}
	loc.Hash = u.Fragment
	if !b.useFragment {
		loc.Path = b.stripBase(loc.Path)
	}

	return loc, nil
}

func (b *Browser) removePopStateListener() error {

	g := js.Global()
	if !g.Truthy() {
		return errNotBrowser
	}

	if b.popStateFunc.IsUndefined() {
		return errors.New("popstate listener not set")
	}

	g.Get("window").Call("removeEventListener", "popstate", b.popStateFunc)

	b.popStateFunc.Release()
	b.popStateFunc = js.Func{}

	return nil
}

func (b *Browser) addPopStateListener(f func(this js.Value, args []js.Value) interface{}) error {

	g := js.Global()
	if !g.Truthy() {
		return errNotBrowser
	}

	if !b.popStateFunc.IsUndefined() {
		return errors.New("popstate listener already set")
	}

	jf := js.FuncOf(f)

	g.Get("window").Call("addEventListener", "popstate", jf)

	b.popStateFunc = jf

	return nil
}

var _ vgrouter.History = (*Browser)(nil)
