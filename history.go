package vgrouter

import "sync"

// History abstracts over the host's session history.  It only stores and
// moves between locations; it never matches routes or runs guards.
type History interface {
	// Location returns the location of the current entry.
	Location() Location
	// Push adds a new entry after the current one, dropping any forward entries.
	Push(loc Location) error
	// Replace overwrites the current entry.
	Replace(loc Location) error
	// Go moves delta entries back (negative) or forward (positive).  Listeners
	// receive a PopEvent only if notify is true.  Moving out of range is a no-op.
	Go(delta int, notify bool)
	// Listen registers fn for PopEvents and returns a function removing it.
	Listen(fn func(PopEvent)) (unlisten func())
}

// PopEvent is emitted when the user moves through history (back/forward).
// Delta is the number of entries moved, negative for back.
type PopEvent struct {
	Location Location
	Delta    int
}

// MemoryHistory is a History kept entirely in memory, for non-browser hosts
// and tests.  Listeners are called synchronously from Go.
type MemoryHistory struct {
	mu        sync.Mutex
	entries   []Location
	pos       int
	listeners listenerList
}

// NewMemoryHistory returns a history with a single entry for initial.
func NewMemoryHistory(initial Location) *MemoryHistory {
	if initial.Path == "" {
		initial.Path = "/"
	}
	return &MemoryHistory{entries: []Location{initial.clone()}}
}

// Location implements History.
func (h *MemoryHistory) Location() Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.pos].clone()
}

// Push implements History.
func (h *MemoryHistory) Push(loc Location) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.pos+1], loc.clone())
	h.pos++
	return nil
}

// Replace implements History.
func (h *MemoryHistory) Replace(loc Location) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.pos] = loc.clone()
	return nil
}

// Go implements History.
func (h *MemoryHistory) Go(delta int, notify bool) {
	h.mu.Lock()
	np := h.pos + delta
	if delta == 0 || np < 0 || np >= len(h.entries) {
		h.mu.Unlock()
		return
	}
	h.pos = np
	loc := h.entries[np].clone()
	h.mu.Unlock()

	if notify {
		h.listeners.dispatch(PopEvent{Location: loc, Delta: delta})
	}
}

// Back is shorthand for Go(-1, true).
func (h *MemoryHistory) Back() { h.Go(-1, true) }

// Forward is shorthand for Go(1, true).
func (h *MemoryHistory) Forward() { h.Go(1, true) }

// Listen implements History.
func (h *MemoryHistory) Listen(fn func(PopEvent)) func() {
	return h.listeners.add(fn)
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Index returns the position of the current entry.
func (h *MemoryHistory) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos
}

// Entries returns a copy of all entries, oldest first.
func (h *MemoryHistory) Entries() []Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	ret := make([]Location, len(h.entries))
	for i, l := range h.entries {
		ret[i] = l.clone()
	}
	return ret
}

// listenerList is a set of PopEvent listeners kept in registration order.
type listenerList struct {
	hooks hookList[func(PopEvent)]
}

func (l *listenerList) add(fn func(PopEvent)) func() { return l.hooks.add(fn) }

func (l *listenerList) dispatch(ev PopEvent) {
	for _, fn := range l.hooks.list() {
		fn(ev)
	}
}
