// Package event carries the notifications the editor publishes to its
// host: feature lifecycle, selection changes and mode changes.
package event

import geojson "github.com/paulmach/go.geojson"

type Type string

const (
	Create     Type = "create"
	Update     Type = "update"
	Delete     Type = "delete"
	Select     Type = "select"
	Deselect   Type = "deselect"
	ModeChange Type = "modechange"
)

// Event is one notification. Features holds the current geometry of every
// affected feature when it is still known.
type Event struct {
	Type     Type
	IDs      []string
	Features []*geojson.Feature
	// Mode is set for ModeChange.
	Mode string
}

type Handler func(Event)

type entry struct {
	id int
	fn Handler
}

// Emitter fans events out to registered handlers in registration order.
// The zero value is ready to use.
type Emitter struct {
	next     int
	handlers map[Type][]entry
}

// On registers fn for t. The returned func removes it and may be called
// any number of times.
func (e *Emitter) On(t Type, fn Handler) (off func()) {
	if e.handlers == nil {
		e.handlers = map[Type][]entry{}
	}
	e.next++
	id := e.next
	e.handlers[t] = append(e.handlers[t], entry{id: id, fn: fn})
	return func() {
		hs := e.handlers[t]
		for i, h := range hs {
			if h.id == id {
				e.handlers[t] = append(hs[:i:i], hs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers ev to a snapshot of the handlers registered for its type.
func (e *Emitter) Emit(ev Event) {
	hs := append([]entry(nil), e.handlers[ev.Type]...)
	for _, h := range hs {
		h.fn(ev)
	}
}

// Len reports how many handlers are registered for t.
func (e *Emitter) Len(t Type) int { return len(e.handlers[t]) }
