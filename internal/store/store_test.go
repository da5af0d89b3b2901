package store

import (
	"errors"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/event"
	"geodraw/internal/geom"
	"geodraw/internal/surface"
	"geodraw/internal/surface/surfacetest"
)

func point(lng, lat float64) geom.Feature {
	f, _ := geom.New(geom.KindPoint)
	f.UpdateCoordinate(nil, lng, lat)
	f.SetPermanent(true)
	return f
}

type recorder struct {
	events []event.Event
}

func (r *recorder) listen(e *event.Emitter, ts ...event.Type) {
	for _, t := range ts {
		e.On(t, func(ev event.Event) { r.events = append(r.events, ev) })
	}
}

func (r *recorder) types() []event.Type {
	out := make([]event.Type, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func TestDeleteAllRendersOncePerBatch(t *testing.T) {
	for _, name := range []string{"immediate", "deferred"} {
		t.Run(name, func(t *testing.T) {
			m := surfacetest.New()
			d := &Deferred{}
			var sched Scheduler = Immediate{}
			if name == "deferred" {
				sched = d
			}
			s := New(m, nil, WithScheduler(sched))
			s.Batch(func() {
				for i := 0; i < 5; i++ {
					s.Add(point(float64(i), 0))
				}
				s.Select(s.IDs()[0])
			})
			d.Flush()
			m.ResetCalls()

			s.DeleteAll()
			d.Flush()
			for _, b := range surface.Batches {
				if m.Calls[b] > 1 {
					t.Errorf("SetData(%s) called %d times", b, m.Calls[b])
				}
			}
			if m.Calls[surface.Unselected] != 1 || m.Calls[surface.Selected] != 1 {
				t.Errorf("Calls = %v, want one pass over both batches", m.Calls)
			}
			if n := len(m.Data[surface.Unselected].Features); n != 0 {
				t.Errorf("unselected batch has %d features after DeleteAll", n)
			}
		})
	}
}

func TestDeferredCoalesces(t *testing.T) {
	m := surfacetest.New()
	d := &Deferred{}
	s := New(m, nil, WithScheduler(d))
	a := point(1, 1)
	s.Add(a)
	s.Add(point(2, 2))
	s.Select(a.ID())
	s.Changed(a.ID())
	if m.Calls[surface.Unselected] != 0 {
		t.Fatal("rendered before flush")
	}
	if !d.Pending() {
		t.Fatal("nothing scheduled")
	}
	d.Flush()
	if s.Renders != 1 {
		t.Errorf("Renders = %d, want 1", s.Renders)
	}
	if n := len(m.Data[surface.Selected].Features); n != 1 {
		t.Errorf("selected batch = %d features, want 1", n)
	}
	if n := len(m.Data[surface.Unselected].Features); n != 1 {
		t.Errorf("unselected batch = %d features, want 1", n)
	}
}

func TestDeleteSelectedFiresDeselect(t *testing.T) {
	m := surfacetest.New()
	var e event.Emitter
	var r recorder
	r.listen(&e, event.Select, event.Deselect, event.Delete)
	s := New(m, &e)
	a, b := point(1, 1), point(2, 2)
	s.Add(a)
	s.Add(b)
	s.Select(a.ID())
	var hooked []string
	s.SetDeleteHook(func(ids []string) { hooked = append(hooked, ids...) })

	s.Delete(a.ID(), b.ID())

	want := []event.Type{event.Select, event.Deselect, event.Delete}
	got := r.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if ids := r.events[2].IDs; len(ids) != 2 {
		t.Errorf("delete ids = %v", ids)
	}
	if len(hooked) != 2 {
		t.Errorf("delete hook got %v", hooked)
	}
	if len(s.SelectedIDs()) != 0 || len(s.IDs()) != 0 {
		t.Error("store not empty after delete")
	}
}

func TestUnknownIDsAreNoops(t *testing.T) {
	m := surfacetest.New()
	var e event.Emitter
	var r recorder
	r.listen(&e, event.Select, event.Deselect, event.Delete, event.Create, event.Update)
	s := New(m, &e)
	s.Delete("nope")
	if s.Select("nope") || s.Deselect("nope") {
		t.Error("selection of unknown id reported success")
	}
	s.Commit("nope")
	s.Changed("nope")
	s.NotifyUpdate("nope")
	if s.Get("nope") != nil || s.IsSelected("nope") {
		t.Error("unknown id resolved")
	}
	if len(r.events) != 0 {
		t.Errorf("events = %v, want none", r.types())
	}
}

func TestInProgressFeatures(t *testing.T) {
	m := surfacetest.New()
	var e event.Emitter
	var r recorder
	r.listen(&e, event.Create, event.Delete)
	s := New(m, &e)
	f, _ := geom.New(geom.KindLineString)
	s.Add(f)
	f.UpdateCoordinate(geom.Path{0}, 0, 0)
	s.Changed(f.ID())
	if n := len(m.Data[surface.Drawing].Features); n != 1 {
		t.Errorf("drawing batch = %d, want 1", n)
	}
	if len(s.All()) != 0 {
		t.Error("All() includes an in-progress feature")
	}
	s.Delete(f.ID())
	if len(r.events) != 0 {
		t.Errorf("deleting an uncommitted feature fired %v", r.types())
	}

	g, _ := geom.New(geom.KindPoint)
	g.UpdateCoordinate(nil, 1, 1)
	s.Add(g)
	s.Commit(g.ID())
	s.Commit(g.ID())
	if got := r.types(); len(got) != 1 || got[0] != event.Create {
		t.Errorf("events = %v, want one create", got)
	}
	if len(s.All()) != 1 {
		t.Errorf("All() = %d features, want 1", len(s.All()))
	}
}

func TestAddReplacesExisting(t *testing.T) {
	s := New(surfacetest.New(), nil)
	a := point(1, 1)
	s.Add(a)
	s.Add(point(2, 2))
	s.Select(a.ID())
	fs, err := geom.ParseGeoJSON([]byte(`{"type":"Feature","id":"` + a.ID() + `","properties":{},"geometry":{"type":"Point","coordinates":[9,9]}}`))
	if err != nil {
		t.Fatal(err)
	}
	s.Add(fs[0])
	if ids := s.IDs(); len(ids) != 2 || ids[0] != a.ID() {
		t.Errorf("IDs() = %v", ids)
	}
	if c, _ := s.Get(a.ID()).Coordinate(nil); c != [2]float64{9, 9} {
		t.Errorf("Coordinate = %v, want [9 9]", c)
	}
	if !s.IsSelected(a.ID()) {
		t.Error("replacement lost selection")
	}
}

func TestDetachedSurfaceSkipsRender(t *testing.T) {
	m := surfacetest.New()
	s := New(m, nil)
	m.Detach()
	s.Add(point(1, 1))
	s.Render()
	if len(m.Calls) != 0 {
		t.Errorf("SetData called on detached surface: %v", m.Calls)
	}
}

func TestSelectFeaturesIntersecting(t *testing.T) {
	m := surfacetest.New()
	s := New(m, nil)
	a, b, c := point(1, 1), point(3, 3), point(50, 50)
	s.Add(a)
	s.Add(b)
	s.Add(c)
	s.Select(b.ID())

	ids, err := s.SelectFeaturesIntersecting(surface.ScreenPoint{X: 0, Y: 0}, surface.ScreenPoint{X: 5, Y: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != a.ID() {
		t.Errorf("newly selected = %v, want [%s]", ids, a.ID())
	}
	if got := s.SelectedIDs(); len(got) != 2 {
		t.Errorf("SelectedIDs() = %v", got)
	}

	m.QueryErr = errors.New("surface gone")
	s.ClearSelected()
	if _, err := s.SelectFeaturesIntersecting(surface.ScreenPoint{}, surface.ScreenPoint{X: 5, Y: 5}); err == nil {
		t.Error("expected query error")
	}
	if len(s.SelectedIDs()) != 0 {
		t.Error("failed query changed selection")
	}
}

func TestRenderFilter(t *testing.T) {
	m := surfacetest.New()
	s := New(m, nil)
	a, b := point(1, 1), point(2, 2)
	s.Add(a)
	s.Add(b)
	s.SetRenderFilter(func(f geom.Feature, gf *geojson.Feature, rc RenderContext, emit func(*geojson.Feature)) {
		if f.ID() == b.ID() {
			return
		}
		emit(gf)
		emit(gf)
	})
	if n := len(m.Data[surface.Unselected].Features); n != 2 {
		t.Errorf("unselected batch = %d features, want 2", n)
	}
}

func TestSelectOnly(t *testing.T) {
	m := surfacetest.New()
	em := &event.Emitter{}
	var r recorder
	r.listen(em, event.Select, event.Deselect)
	st := New(m, em)
	a, b, c := point(0, 0), point(1, 1), point(2, 2)
	st.Add(a)
	st.Add(b)
	st.Add(c)
	st.Select(a.ID())
	st.Select(b.ID())
	r.events = nil

	st.SelectOnly(b.ID(), c.ID(), "missing")
	got := r.types()
	want := []event.Type{event.Deselect, event.Select}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if r.events[0].IDs[0] != a.ID() || r.events[1].IDs[0] != c.ID() {
		t.Errorf("events touched %v and %v, want %s and %s", r.events[0].IDs, r.events[1].IDs, a.ID(), c.ID())
	}
	if ids := st.SelectedIDs(); len(ids) != 2 {
		t.Errorf("SelectedIDs() = %v, want two", ids)
	}
}
