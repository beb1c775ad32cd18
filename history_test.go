package vgrouter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryHistory(t *testing.T) {

	h := NewMemoryHistory(Location{})
	assert.Equal(t, "/", h.Location().Path)

	var events []PopEvent
	unlisten := h.Listen(func(ev PopEvent) { events = append(events, ev) })

	assert.NoError(t, h.Push(MustParseLocation("/a")))
	assert.NoError(t, h.Push(MustParseLocation("/b")))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Index())

	h.Back()
	assert.Equal(t, "/a", h.Location().Path)
	h.Go(-1, false)
	assert.Equal(t, "/", h.Location().Path)
	h.Go(-1, true) // out of range
	assert.Equal(t, 0, h.Index())
	h.Go(2, true)
	assert.Equal(t, "/b", h.Location().Path)
	h.Forward() // out of range

	assert.Equal(t, []PopEvent{
		{Location: MustParseLocation("/a"), Delta: -1},
		{Location: MustParseLocation("/b"), Delta: 2},
	}, events)

	// push drops forward entries
	h.Go(-2, false)
	assert.NoError(t, h.Push(MustParseLocation("/c")))
	assert.Equal(t, []Location{MustParseLocation("/"), MustParseLocation("/c")}, h.Entries())

	assert.NoError(t, h.Replace(MustParseLocation("/d")))
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "/d", h.Location().Path)

	unlisten()
	h.Back()
	assert.Len(t, events, 2)
}

func TestHookList(t *testing.T) {

	var hl hookList[int]
	r1 := hl.add(1)
	hl.add(2)
	r3 := hl.add(3)
	assert.Equal(t, []int{1, 2, 3}, hl.list())

	r1()
	assert.Equal(t, []int{2, 3}, hl.list())
	r1() // second call is a no-op
	r3()
	assert.Equal(t, []int{2}, hl.list())
}
