package vgrouter

import "sync"

// hookList is an ordered, concurrency-safe list of callbacks where each
// registration can be removed again.
type hookList[T any] struct {
	mu      sync.RWMutex
	next    int
	entries []hookEntry[T]
}

type hookEntry[T any] struct {
	id int
	fn T
}

func (h *hookList[T]) add(fn T) (remove func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	h.entries = append(h.entries, hookEntry[T]{id: id, fn: fn})
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, e := range h.entries {
			if e.id == id {
				h.entries = append(h.entries[:i:i], h.entries[i+1:]...)
				return
			}
		}
	}
}

func (h *hookList[T]) list() []T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ret := make([]T, len(h.entries))
	for i, e := range h.entries {
		ret[i] = e.fn
	}
	return ret
}
