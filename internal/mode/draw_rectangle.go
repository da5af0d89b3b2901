package mode

import (
	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/geom"
	"geodraw/internal/store"
	"geodraw/internal/surface"
)

// drawRectangle drags out a rectangle that is axis-aligned on screen.
type drawRectangle struct {
	f     geom.Feature
	start *surface.ScreenPoint
}

func newDrawRectangle(Options) Mode { return &drawRectangle{} }

func (d *drawRectangle) Start(ctx *Context) {
	ctx.Store.ClearSelected()
	d.f, _ = geom.New(geom.KindPolygon)
	ctx.Store.Add(d.f)

	ctx.On(surface.MouseDown, True, func(ev surface.Event) error {
		p := ev.Point
		d.start = &p
		d.corners(ctx, p, p)
		return nil
	})
	ctx.On(surface.Drag, True, func(ev surface.Event) error {
		if d.start == nil {
			return nil
		}
		d.corners(ctx, *d.start, ev.Point)
		return nil
	})
	ctx.On(surface.MouseUp, True, func(ev surface.Event) error {
		if d.start == nil {
			return nil
		}
		start := *d.start
		d.start = nil
		if start.X == ev.Point.X || start.Y == ev.Point.Y {
			d.clear(ctx)
			return nil
		}
		d.corners(ctx, start, ev.Point)
		ctx.Store.Commit(d.f.ID())
		ctx.ChangeMode(Select, Options{FeatureIDs: []string{d.f.ID()}})
		return nil
	})
	ctx.On(surface.KeyUp, IsEscapeKey, func(surface.Event) error {
		d.cancel(ctx)
		return nil
	})
}

// corners writes the four corners of the screen box a-b, each unprojected
// on its own.
func (d *drawRectangle) corners(ctx *Context, a, b surface.ScreenPoint) {
	pts := []surface.ScreenPoint{a, {X: a.X, Y: b.Y}, b, {X: b.X, Y: a.Y}}
	for i, p := range pts {
		ll := ctx.Map.Unproject(p)
		d.f.UpdateCoordinate(geom.Path{0, i}, ll.Lng, ll.Lat)
	}
	ctx.Store.Changed(d.f.ID())
}

// clear empties the ring after a press that did not span an area.
func (d *drawRectangle) clear(ctx *Context) {
	for i := len(d.f.Paths()) - 1; i >= 0; i-- {
		d.f.RemoveCoordinate(geom.Path{0, i})
	}
	ctx.Store.Changed(d.f.ID())
}

func (d *drawRectangle) cancel(ctx *Context) {
	ctx.Store.Delete(d.f.ID())
	ctx.ChangeMode(Select, Options{})
}

func (d *drawRectangle) Stop(ctx *Context) {
	if !d.f.Permanent() {
		ctx.Store.Delete(d.f.ID())
	}
}

func (d *drawRectangle) Render(f geom.Feature, gf *geojson.Feature, rc store.RenderContext, emit func(*geojson.Feature)) {
	if f.ID() != d.f.ID() {
		emit(annotate(gf, false))
		return
	}
	if f.IsValid() {
		emit(annotate(gf, true))
	}
}

func (d *drawRectangle) Trash(ctx *Context) error {
	d.cancel(ctx)
	return nil
}
