// Package surfacetest provides an in-memory surface.Map for tests. Its
// projection is the identity: screen x is longitude and screen y latitude.
package surfacetest

import (
	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/hittest"
	"geodraw/internal/surface"
)

type Map struct {
	// Calls counts SetData invocations per batch.
	Calls map[surface.Batch]int
	Data  map[surface.Batch]*geojson.FeatureCollection
	// QueryErr, when set, is returned by every spatial query.
	QueryErr error

	detached bool
	index    *hittest.Index
	next     int
	subs     map[int]func(surface.Event)
	order    []int
}

func New() *Map {
	return &Map{
		Calls: map[surface.Batch]int{},
		Data:  map[surface.Batch]*geojson.FeatureCollection{},
		index: hittest.New(),
		subs:  map[int]func(surface.Event){},
	}
}

func (m *Map) Project(ll surface.LngLat) surface.ScreenPoint {
	return surface.ScreenPoint{X: ll.Lng, Y: ll.Lat}
}

func (m *Map) Unproject(p surface.ScreenPoint) surface.LngLat {
	return surface.LngLat{Lng: p.X, Lat: p.Y}
}

func (m *Map) QueryFeaturesAt(p surface.ScreenPoint, opts surface.QueryOptions) ([]surface.Hit, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return m.index.At(m, p, opts), nil
}

func (m *Map) QueryFeaturesIn(a, b surface.ScreenPoint, opts surface.QueryOptions) ([]surface.Hit, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return m.index.In(m, a, b, opts), nil
}

func (m *Map) SetData(b surface.Batch, fc *geojson.FeatureCollection) {
	m.Calls[b]++
	m.Data[b] = fc
	m.index.Set(b, fc)
}

func (m *Map) HasSource() bool { return !m.detached }

// Detach simulates the surface being torn down.
func (m *Map) Detach() { m.detached = true }

// ResetCalls zeroes the SetData counters.
func (m *Map) ResetCalls() { m.Calls = map[surface.Batch]int{} }

func (m *Map) Subscribe(fn func(surface.Event)) func() {
	m.next++
	id := m.next
	m.subs[id] = fn
	m.order = append(m.order, id)
	return func() { delete(m.subs, id) }
}

// Subscribers returns the number of live subscriptions.
func (m *Map) Subscribers() int { return len(m.subs) }

// Fire delivers ev to every subscriber. LngLat is derived from Point.
func (m *Map) Fire(ev surface.Event) {
	if ev.Pointer() {
		ev.LngLat = m.Unproject(ev.Point)
	}
	for _, id := range m.order {
		if fn, ok := m.subs[id]; ok {
			fn(ev)
		}
	}
}

func (m *Map) pointer(t surface.EventType, x, y float64, shift bool) {
	m.Fire(surface.Event{Type: t, Point: surface.ScreenPoint{X: x, Y: y}, Shift: shift})
}

func (m *Map) Down(x, y float64) { m.pointer(surface.MouseDown, x, y, false) }
func (m *Map) Move(x, y float64) { m.pointer(surface.MouseMove, x, y, false) }
func (m *Map) Up(x, y float64)   { m.pointer(surface.MouseUp, x, y, false) }

// Click presses and releases at the same position.
func (m *Map) Click(x, y float64) {
	m.Down(x, y)
	m.Up(x, y)
}

func (m *Map) ShiftClick(x, y float64) {
	m.pointer(surface.MouseDown, x, y, true)
	m.pointer(surface.MouseUp, x, y, true)
}

// DragTo presses at (x0,y0), moves to (x1,y1) and releases there.
func (m *Map) DragTo(x0, y0, x1, y1 float64, shift bool) {
	m.pointer(surface.MouseDown, x0, y0, shift)
	m.pointer(surface.MouseMove, x1, y1, shift)
	m.pointer(surface.MouseUp, x1, y1, shift)
}

// Key sends a key press as keydown followed by keyup.
func (m *Map) Key(k string) {
	m.Fire(surface.Event{Type: surface.KeyDown, Key: k})
	m.Fire(surface.Event{Type: surface.KeyUp, Key: k})
}
