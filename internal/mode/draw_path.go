package mode

import (
	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/geom"
	"geodraw/internal/handle"
	"geodraw/internal/store"
	"geodraw/internal/surface"
)

// drawPath builds a line or the outer ring of a polygon one click at a
// time. The coordinate at cursor follows the pointer and is not yet
// committed.
type drawPath struct {
	kind   geom.Kind
	f      geom.Feature
	cursor int
}

func newDrawLine(Options) Mode    { return &drawPath{kind: geom.KindLineString} }
func newDrawPolygon(Options) Mode { return &drawPath{kind: geom.KindPolygon} }

// at builds the path of vertex i.
func (d *drawPath) at(i int) geom.Path {
	if d.kind == geom.KindPolygon {
		return geom.Path{0, i}
	}
	return geom.Path{i}
}

// minVertices is the committed vertex count below which trash cancels.
func (d *drawPath) minVertices() int {
	if d.kind == geom.KindPolygon {
		return 3
	}
	return 2
}

func (d *drawPath) Start(ctx *Context) {
	ctx.Store.ClearSelected()
	d.f, _ = geom.New(d.kind)
	ctx.Store.Add(d.f)

	follow := func(ev surface.Event) error {
		d.f.UpdateCoordinate(d.at(d.cursor), ev.LngLat.Lng, ev.LngLat.Lat)
		ctx.Store.Changed(d.f.ID())
		return nil
	}
	// a held button turns moves into drags; the preview follows both
	ctx.On(surface.MouseMove, True, follow)
	ctx.On(surface.Drag, True, follow)
	ctx.On(surface.Click, True, func(ev surface.Event) error {
		if d.cursor > 0 && (d.isAt(ev, 0) || d.isAt(ev, d.cursor-1)) {
			d.finish(ctx)
			return nil
		}
		d.f.UpdateCoordinate(d.at(d.cursor), ev.LngLat.Lng, ev.LngLat.Lat)
		d.cursor++
		ctx.Store.Changed(d.f.ID())
		return nil
	})
	ctx.On(surface.KeyUp, IsEscapeKey, func(surface.Event) error {
		d.cancel(ctx)
		return nil
	})
	ctx.On(surface.KeyUp, IsEnterKey, func(surface.Event) error {
		d.finish(ctx)
		return nil
	})
}

// isAt reports whether the event lands exactly on vertex i.
func (d *drawPath) isAt(ev surface.Event, i int) bool {
	c, ok := d.f.Coordinate(d.at(i))
	return ok && c == [2]float64{ev.LngLat.Lng, ev.LngLat.Lat}
}

// finish drops the trailing live coordinate and commits the shape, or
// discards it when too few vertices were placed.
func (d *drawPath) finish(ctx *Context) {
	d.f.RemoveCoordinate(d.at(d.cursor))
	if !d.f.IsValid() {
		ctx.Log.WithField("kind", d.kind).Debug("discarding invalid drawing")
		d.cancel(ctx)
		return
	}
	ctx.Store.Commit(d.f.ID())
	ctx.ChangeMode(Select, Options{FeatureIDs: []string{d.f.ID()}})
}

func (d *drawPath) cancel(ctx *Context) {
	ctx.Store.Delete(d.f.ID())
	ctx.ChangeMode(Select, Options{})
}

func (d *drawPath) Stop(ctx *Context) {
	if d.f.Permanent() || !ctx.Store.Has(d.f.ID()) {
		return
	}
	d.f.RemoveCoordinate(d.at(d.cursor))
	if !d.f.IsValid() {
		ctx.Store.Delete(d.f.ID())
		return
	}
	// a shape interrupted by a mode change keeps what was placed
	ctx.Store.Commit(d.f.ID())
}

func (d *drawPath) Render(f geom.Feature, gf *geojson.Feature, rc store.RenderContext, emit func(*geojson.Feature)) {
	if f.ID() != d.f.ID() {
		emit(annotate(gf, false))
		return
	}
	switch d.kind {
	case geom.KindLineString:
		if !f.IsValid() {
			return
		}
	case geom.KindPolygon:
		if len(gf.Geometry.Polygon) == 0 {
			return
		}
		ring := gf.Geometry.Polygon[0]
		switch {
		case len(ring) < 3:
			return
		case len(ring) == 3:
			// two placed coordinates plus closure: preview as a segment
			gf.Geometry = geojson.NewLineStringGeometry(ring[:2])
		}
	}
	emit(annotate(gf, true))
	if d.cursor > 0 {
		first, _ := f.Coordinate(d.at(0))
		emit(handle.Handle{Parent: f.ID(), Path: d.at(0), Role: handle.Vertex, Coord: first}.Feature())
	}
}

// Trash pops the last placed vertex, or cancels once the shape is down to
// its minimum.
func (d *drawPath) Trash(ctx *Context) error {
	if d.cursor <= d.minVertices() {
		d.cancel(ctx)
		return nil
	}
	d.f.RemoveCoordinate(d.at(d.cursor - 1))
	d.cursor--
	ctx.Store.Changed(d.f.ID())
	return nil
}
