package draw

import (
	"errors"
	"reflect"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/config"
	"geodraw/internal/event"
	"geodraw/internal/geom"
	"geodraw/internal/mode"
	"geodraw/internal/surface"
	"geodraw/internal/surface/surfacetest"
)

func newDraw(t *testing.T, opts ...Option) (*Draw, *surfacetest.Map) {
	t.Helper()
	m := surfacetest.New()
	d, err := New(m, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return d, m
}

func lineFeature(id string, coords ...[]float64) *geojson.Feature {
	gf := geojson.NewLineStringFeature(coords)
	gf.ID = id
	return gf
}

func pointFeature(id string, x, y float64) *geojson.Feature {
	gf := geojson.NewPointFeature([]float64{x, y})
	gf.ID = id
	return gf
}

func mustAdd(t *testing.T, d *Draw, gfs ...*geojson.Feature) []string {
	t.Helper()
	ids, err := d.Add(gfs...)
	if err != nil {
		t.Fatal(err)
	}
	return ids
}

func only(t *testing.T, d *Draw) *geojson.Feature {
	t.Helper()
	fc := d.GetAll()
	if len(fc.Features) != 1 {
		t.Fatalf("GetAll() holds %d features, want 1", len(fc.Features))
	}
	return fc.Features[0]
}

func TestDrawPointScenario(t *testing.T) {
	d, m := newDraw(t)
	var created []string
	d.On(event.Create, func(ev event.Event) { created = append(created, ev.IDs...) })

	if err := d.ChangeMode(mode.DrawPoint, mode.Options{}); err != nil {
		t.Fatal(err)
	}
	m.Click(10, 20)
	gf := only(t, d)
	if got := gf.Geometry.Point; !reflect.DeepEqual(got, []float64{10, 20}) {
		t.Errorf("point = %v, want [10 20]", got)
	}
	if d.Mode() != mode.Select {
		t.Errorf("Mode() = %q, want select", d.Mode())
	}
	m.Click(10, 20)
	only(t, d)
	if len(created) != 1 {
		t.Errorf("create events = %v, want one", created)
	}
}

func TestDrawLineScenario(t *testing.T) {
	d, m := newDraw(t)
	if err := d.ChangeMode(mode.DrawLine, mode.Options{}); err != nil {
		t.Fatal(err)
	}
	m.Click(0, 0)
	m.Click(1, 1)
	m.Key(surface.KeyEnter)
	gf := only(t, d)
	want := [][]float64{{0, 0}, {1, 1}}
	if !reflect.DeepEqual(gf.Geometry.LineString, want) {
		t.Errorf("line = %v, want %v", gf.Geometry.LineString, want)
	}
}

func TestDrawPolygonScenario(t *testing.T) {
	d, m := newDraw(t)
	if err := d.ChangeMode(mode.DrawPolygon, mode.Options{}); err != nil {
		t.Fatal(err)
	}
	m.Click(30, 20)
	m.Click(50, 40)
	m.Click(70, 30)
	m.Key(surface.KeyEnter)
	gf := only(t, d)
	want := [][][]float64{{{30, 20}, {50, 40}, {70, 30}, {30, 20}}}
	if !reflect.DeepEqual(gf.Geometry.Polygon, want) {
		t.Errorf("polygon = %v, want %v", gf.Geometry.Polygon, want)
	}
}

func TestMidpointDragScenario(t *testing.T) {
	d, m := newDraw(t)
	mustAdd(t, d, lineFeature("l1", []float64{0, 0}, []float64{10, 0}))

	m.Click(2, 0)
	if d.Mode() != mode.DirectSelect {
		t.Fatalf("Mode() = %q, want direct-select", d.Mode())
	}
	m.DragTo(5, 0, 5, 5, false)
	want := [][]float64{{0, 0}, {5, 5}, {10, 0}}
	if got := d.Get("l1").Geometry.LineString; !reflect.DeepEqual(got, want) {
		t.Errorf("line = %v, want %v", got, want)
	}
}

func TestEscapeCancelsDrawPoint(t *testing.T) {
	d, m := newDraw(t)
	if err := d.ChangeMode(mode.DrawPoint, mode.Options{}); err != nil {
		t.Fatal(err)
	}
	m.Key(surface.KeyEscape)
	if n := len(d.GetAll().Features); n != 0 {
		t.Errorf("GetAll() holds %d features, want 0", n)
	}
	if d.Mode() != mode.Select {
		t.Errorf("Mode() = %q, want select", d.Mode())
	}
}

func TestDeleteAllRendersOncePerBatch(t *testing.T) {
	d, m := newDraw(t)
	ids := mustAdd(t, d,
		pointFeature("a", 1, 1),
		pointFeature("b", 5, 5),
		lineFeature("c", []float64{0, 0}, []float64{3, 3}),
	)
	if err := d.ChangeMode(mode.Select, mode.Options{FeatureIDs: ids[:1]}); err != nil {
		t.Fatal(err)
	}
	m.ResetCalls()
	d.DeleteAll()
	for _, b := range surface.Batches {
		if n := m.Calls[b]; n > 1 {
			t.Errorf("SetData(%s) called %d times, want at most 1", b, n)
		}
	}
	if m.Calls[surface.Unselected] != 1 || m.Calls[surface.Selected] != 1 {
		t.Errorf("calls = %v, want both feature batches rendered", m.Calls)
	}
	if n := len(m.Data[surface.Unselected].Features); n != 0 {
		t.Errorf("unselected batch holds %d features after DeleteAll", n)
	}
}

func TestClickBuffer(t *testing.T) {
	d, m := newDraw(t)
	mustAdd(t, d, lineFeature("l1", []float64{0, 0}, []float64{10, 0}))
	if err := d.ChangeMode(mode.DirectSelect, mode.Options{FeatureIDs: []string{"l1"}}); err != nil {
		t.Fatal(err)
	}

	// a jitter inside the buffer is a click, not a drag
	m.Down(10, 0)
	m.Move(11, 0)
	m.Up(11, 0)
	want := [][]float64{{0, 0}, {10, 0}}
	if got := d.Get("l1").Geometry.LineString; !reflect.DeepEqual(got, want) {
		t.Errorf("after jitter line = %v, want %v", got, want)
	}

	m.DragTo(10, 0, 14, 3, false)
	want = [][]float64{{0, 0}, {14, 3}}
	if got := d.Get("l1").Geometry.LineString; !reflect.DeepEqual(got, want) {
		t.Errorf("after drag line = %v, want %v", got, want)
	}
}

func TestTapUsesTouchBuffer(t *testing.T) {
	d, m := newDraw(t)
	if err := d.ChangeMode(mode.DrawPoint, mode.Options{}); err != nil {
		t.Fatal(err)
	}
	m.Fire(surface.Event{Type: surface.TouchStart, Point: surface.ScreenPoint{X: 10, Y: 20}})
	m.Fire(surface.Event{Type: surface.TouchMove, Point: surface.ScreenPoint{X: 15, Y: 20}})
	m.Fire(surface.Event{Type: surface.TouchEnd, Point: surface.ScreenPoint{X: 15, Y: 20}})
	gf := only(t, d)
	if got := gf.Geometry.Point; !reflect.DeepEqual(got, []float64{15, 20}) {
		t.Errorf("point = %v, want [15 20]", got)
	}
}

func TestKeybindings(t *testing.T) {
	tests := []struct {
		name     string
		opts     func(*config.Options)
		wantLeft int
	}{
		{"enabled", func(*config.Options) {}, 0},
		{"disabled", func(o *config.Options) { o.Keybindings = false }, 1},
		{"trash control off", func(o *config.Options) { o.Controls.Trash = false }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := config.Default()
			tt.opts(&o)
			d, m := newDraw(t, WithOptions(o))
			ids := mustAdd(t, d, pointFeature("p", 1, 1))
			if err := d.ChangeMode(mode.Select, mode.Options{FeatureIDs: ids}); err != nil {
				t.Fatal(err)
			}
			m.Key(surface.KeyBackspace)
			if n := len(d.GetAll().Features); n != tt.wantLeft {
				t.Errorf("GetAll() holds %d features, want %d", n, tt.wantLeft)
			}
		})
	}
}

func TestCollaboratorFailure(t *testing.T) {
	var errs []error
	d, m := newDraw(t, WithErrorHandler(func(err error) { errs = append(errs, err) }))
	mustAdd(t, d, pointFeature("p", 1, 1))
	boom := errors.New("query failed")
	m.QueryErr = boom

	m.Click(1, 1)
	if len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Errorf("errors = %v, want one query failure", errs)
	}
	err := d.Handle(surface.Event{Type: surface.Click, Point: surface.ScreenPoint{X: 1, Y: 1}})
	if !errors.Is(err, boom) {
		t.Errorf("Handle() = %v, want query failure", err)
	}
	if d.Mode() != mode.Select || len(d.GetAll().Features) != 1 {
		t.Errorf("state changed after failure: mode %q, %d features", d.Mode(), len(d.GetAll().Features))
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	d, m := newDraw(t)
	if m.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", m.Subscribers())
	}
	d.Close()
	d.Close()
	if m.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after Close, want 0", m.Subscribers())
	}
	m.ResetCalls()
	mustAdd(t, d, pointFeature("p", 1, 1))
	if len(m.Calls) != 0 {
		t.Errorf("SetData called after Close: %v", m.Calls)
	}
}

func TestAddReplaceAndSet(t *testing.T) {
	d, _ := newDraw(t)
	mustAdd(t, d, pointFeature("a", 1, 1), pointFeature("b", 2, 2))
	mustAdd(t, d, pointFeature("a", 9, 9))
	fc := d.GetAll()
	if len(fc.Features) != 2 || fc.Features[0].ID != "a" {
		t.Fatalf("GetAll() = %d features, first %v", len(fc.Features), fc.Features[0].ID)
	}
	if got := fc.Features[0].Geometry.Point; !reflect.DeepEqual(got, []float64{9, 9}) {
		t.Errorf("replaced point = %v, want [9 9]", got)
	}

	var deleted []string
	d.On(event.Delete, func(ev event.Event) { deleted = append(deleted, ev.IDs...) })
	next := geojson.NewFeatureCollection()
	next.AddFeature(pointFeature("b", 3, 3))
	next.AddFeature(pointFeature("c", 4, 4))
	ids, err := d.Set(next)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"b", "c"}) {
		t.Errorf("Set() ids = %v", ids)
	}
	if !reflect.DeepEqual(deleted, []string{"a"}) {
		t.Errorf("deleted = %v, want [a]", deleted)
	}
	if d.Get("a") != nil || d.Get("c") == nil {
		t.Error("Set did not replace the store contents")
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	d, _ := newDraw(t)
	_, err := d.Add(pointFeature("ok", 1, 1), lineFeature("bad", []float64{0, 0}))
	if !errors.Is(err, ErrInvalidFeature) {
		t.Errorf("Add() = %v, want ErrInvalidFeature", err)
	}
	if n := len(d.GetAll().Features); n != 0 {
		t.Errorf("GetAll() holds %d features, want 0", n)
	}
	if _, err := d.Add(&geojson.Feature{}); err == nil {
		t.Error("expected error for feature without geometry")
	}
}

func TestImportSkipsInvalid(t *testing.T) {
	d, m := newDraw(t)
	var fs []geom.Feature
	for _, w := range []string{"LINESTRING (1 1)", "POINT (2 3)"} {
		f, err := geom.ParseWKT(w)
		if err != nil {
			t.Fatalf("ParseWKT(%q): %v", w, err)
		}
		fs = append(fs, f...)
	}
	ids := d.Import(fs...)
	if len(ids) != 1 {
		t.Fatalf("Import() = %v, want one id", ids)
	}
	gf := only(t, d)
	if gf.Geometry.Type != geojson.GeometryPoint {
		t.Errorf("stored %s, want Point", gf.Geometry.Type)
	}
	if n := len(m.Data[surface.Unselected].Features); n != 1 {
		t.Errorf("rendered %d features, want 1", n)
	}
}

func TestNewRejectsUnknownDefaultMode(t *testing.T) {
	o := config.Default()
	o.DefaultMode = "lasso"
	if _, err := New(surfacetest.New(), WithOptions(o)); !errors.Is(err, mode.ErrUnknownMode) {
		t.Errorf("New() = %v, want ErrUnknownMode", err)
	}

	o.DefaultMode = mode.DrawLine
	d, _ := newDraw(t, WithOptions(o))
	if d.Mode() != mode.DrawLine {
		t.Errorf("Mode() = %q, want draw-line", d.Mode())
	}
}

func TestTrashAndDelete(t *testing.T) {
	d, _ := newDraw(t)
	ids := mustAdd(t, d, pointFeature("a", 1, 1), pointFeature("b", 2, 2))
	if err := d.ChangeMode(mode.Select, mode.Options{FeatureIDs: ids[1:]}); err != nil {
		t.Fatal(err)
	}
	if got := d.SelectedIDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("SelectedIDs() = %v, want [b]", got)
	}
	if err := d.Trash(); err != nil {
		t.Fatal(err)
	}
	d.Delete("missing")
	if got := d.GetAll(); len(got.Features) != 1 || got.Features[0].ID != "a" {
		t.Errorf("GetAll() after trash = %d features", len(got.Features))
	}
	d.Delete("a")
	if n := len(d.GetAll().Features); n != 0 {
		t.Errorf("GetAll() holds %d features, want 0", n)
	}
}
