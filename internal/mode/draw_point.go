package mode

import (
	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/geom"
	"geodraw/internal/store"
	"geodraw/internal/surface"
)

type drawPoint struct {
	point geom.Feature
}

func newDrawPoint(Options) Mode { return &drawPoint{} }

func (d *drawPoint) Start(ctx *Context) {
	ctx.Store.ClearSelected()
	d.point, _ = geom.New(geom.KindPoint)
	ctx.Store.Add(d.point)

	ctx.On(surface.Click, True, func(ev surface.Event) error {
		d.point.UpdateCoordinate(nil, ev.LngLat.Lng, ev.LngLat.Lat)
		ctx.Store.Commit(d.point.ID())
		ctx.ChangeMode(Select, Options{FeatureIDs: []string{d.point.ID()}})
		return nil
	})
	ctx.On(surface.KeyUp, func(ev surface.Event) bool {
		return IsEscapeKey(ev) || IsEnterKey(ev)
	}, func(surface.Event) error {
		d.cancel(ctx)
		return nil
	})
}

func (d *drawPoint) cancel(ctx *Context) {
	ctx.Store.Delete(d.point.ID())
	ctx.ChangeMode(Select, Options{})
}

func (d *drawPoint) Stop(ctx *Context) {
	if !d.point.Permanent() {
		ctx.Store.Delete(d.point.ID())
	}
}

func (d *drawPoint) Render(f geom.Feature, gf *geojson.Feature, rc store.RenderContext, emit func(*geojson.Feature)) {
	if !hasCoordinates(gf) {
		return
	}
	emit(annotate(gf, f.ID() == d.point.ID()))
}

func (d *drawPoint) Trash(ctx *Context) error {
	d.cancel(ctx)
	return nil
}
