package mode

import (
	"errors"
	"reflect"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/event"
	"geodraw/internal/geom"
	"geodraw/internal/store"
	"geodraw/internal/surface"
	"geodraw/internal/surface/surfacetest"
)

type harness struct {
	t      *testing.T
	m      *surfacetest.Map
	st     *store.Store
	mc     *Machine
	events []event.Event
}

func newHarness(t *testing.T, settings Settings) *harness {
	t.Helper()
	h := &harness{t: t, m: surfacetest.New()}
	em := &event.Emitter{}
	for _, typ := range []event.Type{event.Create, event.Update, event.Delete, event.Select, event.Deselect} {
		em.On(typ, func(ev event.Event) { h.events = append(h.events, ev) })
	}
	h.st = store.New(h.m, em)
	h.mc = NewMachine(h.st, h.m, em, settings, nil)
	if err := h.mc.ChangeMode(Select, Options{}); err != nil {
		t.Fatal(err)
	}
	return h
}

func (h *harness) change(name string, opts Options) {
	h.t.Helper()
	if err := h.mc.ChangeMode(name, opts); err != nil {
		h.t.Fatalf("ChangeMode(%s): %v", name, err)
	}
}

func (h *harness) send(typ surface.EventType, x, y float64, shift bool) {
	h.t.Helper()
	ev := surface.Event{
		Type:   typ,
		Point:  surface.ScreenPoint{X: x, Y: y},
		LngLat: surface.LngLat{Lng: x, Lat: y},
		Shift:  shift,
	}
	if typ == surface.MouseDown || typ == surface.Click {
		hits, err := h.m.QueryFeaturesAt(ev.Point, surface.QueryOptions{Radius: 0.5})
		if err != nil {
			h.t.Fatal(err)
		}
		ev.Hits = hits
	}
	if err := h.mc.Dispatch(ev); err != nil {
		h.t.Fatalf("Dispatch(%s): %v", typ, err)
	}
}

func (h *harness) click(x, y float64) {
	h.send(surface.MouseDown, x, y, false)
	h.send(surface.MouseUp, x, y, false)
	h.send(surface.Click, x, y, false)
}

func (h *harness) shiftClick(x, y float64) {
	h.send(surface.MouseDown, x, y, true)
	h.send(surface.MouseUp, x, y, true)
	h.send(surface.Click, x, y, true)
}

func (h *harness) drag(x0, y0, x1, y1 float64, shift bool) {
	h.send(surface.MouseDown, x0, y0, shift)
	h.send(surface.Drag, x1, y1, shift)
	h.send(surface.MouseUp, x1, y1, shift)
}

func (h *harness) key(k string) {
	h.t.Helper()
	if err := h.mc.Dispatch(surface.Event{Type: surface.KeyUp, Key: k}); err != nil {
		h.t.Fatal(err)
	}
}

func (h *harness) trash() {
	h.t.Helper()
	if err := h.mc.Trash(); err != nil {
		h.t.Fatal(err)
	}
}

func (h *harness) add(s string) geom.Feature {
	h.t.Helper()
	fs, err := geom.ParseGeoJSON([]byte(s))
	if err != nil {
		h.t.Fatal(err)
	}
	h.st.Add(fs[0])
	return fs[0]
}

func (h *harness) only() geom.Feature {
	h.t.Helper()
	all := h.st.All()
	if len(all) != 1 || len(h.st.IDs()) != 1 {
		h.t.Fatalf("store holds %d committed of %d features, want exactly 1", len(all), len(h.st.IDs()))
	}
	return all[0]
}

func (h *harness) wantMode(name string) {
	h.t.Helper()
	if got := h.mc.Current(); got != name {
		h.t.Fatalf("Current() = %s, want %s", got, name)
	}
}

func (h *harness) types() []event.Type {
	var out []event.Type
	for _, ev := range h.events {
		out = append(out, ev.Type)
	}
	return out
}

func coords(t *testing.T, f geom.Feature) any {
	t.Helper()
	g := f.ToGeometry()
	switch g.Type {
	case geojson.GeometryPoint:
		return g.Point
	case geojson.GeometryLineString:
		return g.LineString
	case geojson.GeometryPolygon:
		return g.Polygon
	}
	t.Fatalf("unexpected geometry %s", g.Type)
	return nil
}

type stubMode struct {
	moves   *int
	onStart func(ctx *Context)
}

func (p *stubMode) Start(ctx *Context) {
	ctx.On(surface.MouseMove, True, func(surface.Event) error {
		*p.moves++
		return nil
	})
	if p.onStart != nil {
		p.onStart(ctx)
	}
}
func (p *stubMode) Stop(*Context) {}
func (p *stubMode) Render(f geom.Feature, gf *geojson.Feature, rc store.RenderContext, emit func(*geojson.Feature)) {
	emit(gf)
}
func (p *stubMode) Trash(*Context) error { return nil }

func withStub(t *testing.T, p *stubMode) {
	Modes["stub"] = func(Options) Mode { return p }
	t.Cleanup(func() { delete(Modes, "stub") })
}

func TestChangeModeUnknown(t *testing.T) {
	h := newHarness(t, Settings{})
	if err := h.mc.ChangeMode("lasso", Options{}); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("ChangeMode(lasso) = %v, want ErrUnknownMode", err)
	}
	h.wantMode(Select)
}

func TestNoOrphanBindings(t *testing.T) {
	h := newHarness(t, Settings{})
	moves := 0
	withStub(t, &stubMode{moves: &moves})
	h.change("stub", Options{})
	h.send(surface.MouseMove, 1, 1, false)
	if moves != 1 {
		t.Fatalf("moves = %d, want 1", moves)
	}
	old := h.mc.ctx
	h.change(Select, Options{})
	h.send(surface.MouseMove, 2, 2, false)
	if moves != 1 {
		t.Errorf("binding of a stopped mode fired: moves = %d", moves)
	}
	if old.Active() || len(old.bindings) != 0 {
		t.Error("stopped context still holds bindings")
	}
	off := old.On(surface.MouseMove, True, func(surface.Event) error { return nil })
	off()
	if n := len(old.bindings); n != 0 {
		t.Errorf("dead context accepted a binding: %d", n)
	}
}

func TestChangeModeDuringStartIsQueued(t *testing.T) {
	h := newHarness(t, Settings{})
	moves := 0
	var modes []string
	h.mc.events.On(event.ModeChange, func(ev event.Event) { modes = append(modes, ev.Mode) })
	withStub(t, &stubMode{moves: &moves, onStart: func(ctx *Context) {
		ctx.ChangeMode(DrawLine, Options{})
		ctx.ChangeMode(DrawPoint, Options{})
	}})
	h.change("stub", Options{})
	h.wantMode(DrawPoint)
	if !reflect.DeepEqual(modes, []string{"stub", DrawPoint}) {
		t.Errorf("mode changes = %v", modes)
	}
	if len(h.st.IDs()) != 1 {
		t.Errorf("store holds %d features, want the draw-point placeholder only", len(h.st.IDs()))
	}
}

func TestOffIsIdempotent(t *testing.T) {
	h := newHarness(t, Settings{})
	before := h.mc.Bindings()
	off := h.mc.ctx.On(surface.MouseMove, True, func(surface.Event) error { return nil })
	if h.mc.Bindings() != before+1 {
		t.Fatalf("Bindings() = %d, want %d", h.mc.Bindings(), before+1)
	}
	off()
	off()
	if h.mc.Bindings() != before {
		t.Errorf("Bindings() = %d, want %d", h.mc.Bindings(), before)
	}
}

func TestDispatchPropagatesHandlerError(t *testing.T) {
	h := newHarness(t, Settings{})
	boom := errors.New("boom")
	h.mc.ctx.On(surface.MouseMove, True, func(surface.Event) error { return boom })
	if err := h.mc.Dispatch(surface.Event{Type: surface.MouseMove}); !errors.Is(err, boom) {
		t.Errorf("Dispatch = %v, want boom", err)
	}
}
