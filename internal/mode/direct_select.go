package mode

import (
	"sort"

	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/geom"
	"geodraw/internal/handle"
	"geodraw/internal/store"
	"geodraw/internal/surface"
)

// directSelect edits the coordinates of one committed feature.
type directSelect struct {
	id    string
	paths []geom.Path

	// drag state, live between pointer-down and pointer-up
	offDrag, offUp func()
	vertex         geom.Path
	from           surface.ScreenPoint
	snap           []coordAt
	moved          bool
}

func newDirectSelect(opts Options) Mode {
	d := &directSelect{}
	if len(opts.FeatureIDs) > 0 {
		d.id = opts.FeatureIDs[0]
	}
	for _, p := range opts.Paths {
		d.paths = append(d.paths, p.Clone())
	}
	return d
}

func (d *directSelect) feature(ctx *Context) geom.Feature {
	f := ctx.Store.Get(d.id)
	if f == nil || !f.Permanent() {
		return nil
	}
	return f
}

func (d *directSelect) Start(ctx *Context) {
	if d.feature(ctx) == nil {
		ctx.ChangeMode(Select, Options{})
		return
	}
	ctx.Store.SelectOnly(d.id)

	ctx.On(surface.MouseDown, NoTarget, func(ev surface.Event) error {
		if !ev.Shift {
			ctx.ChangeMode(Select, Options{})
		}
		return nil
	})
	ctx.On(surface.MouseDown, func(ev surface.Event) bool {
		h, ok := ev.Top()
		return ok && h.Owner() != d.id
	}, func(ev surface.Event) error {
		h, _ := ev.Top()
		ctx.ChangeMode(DirectSelect, Options{FeatureIDs: []string{h.Owner()}})
		return nil
	})
	ctx.On(surface.MouseDown, IsTarget(d.id), func(ev surface.Event) error {
		f := d.feature(ctx)
		if f == nil {
			return nil
		}
		h, _ := ev.Top()
		switch h.Meta {
		case surface.MetaVertex:
			d.pickVertex(h.Path, ev.Shift)
			ctx.Store.Changed(d.id)
			d.startDrag(ctx, ev, h.Path)
		case surface.MetaMidpoint:
			c, ok := midpointCoord(f, h.Path)
			if !ok {
				return nil
			}
			f.AddCoordinate(h.Path, c[0], c[1])
			ctx.Store.Changed(d.id)
			d.paths = []geom.Path{h.Path.Clone()}
			d.startDrag(ctx, ev, h.Path)
		default:
			d.snap = snapshot(f)
			d.startDrag(ctx, ev, nil)
		}
		return nil
	})
	ctx.On(surface.KeyUp, func(ev surface.Event) bool {
		return IsEscapeKey(ev) || IsEnterKey(ev)
	}, func(surface.Event) error {
		ctx.ChangeMode(Select, Options{FeatureIDs: []string{d.id}})
		return nil
	})
}

// midpointCoord locates the new vertex for a midpoint grab. The handle
// records the insertion path; its position is recomputed from the feature.
func midpointCoord(f geom.Feature, p geom.Path) ([2]float64, bool) {
	for _, h := range handle.Midpoints(f) {
		if h.Path.Equal(p) {
			return h.Coord, true
		}
	}
	return [2]float64{}, false
}

func (d *directSelect) pickVertex(p geom.Path, shift bool) {
	if !shift {
		d.paths = []geom.Path{p.Clone()}
		return
	}
	for _, q := range d.paths {
		if q.Equal(p) {
			return
		}
	}
	d.paths = append(d.paths, p.Clone())
}

func (d *directSelect) startDrag(ctx *Context, ev surface.Event, vertex geom.Path) {
	d.stopDrag()
	d.vertex = vertex.Clone()
	d.from = ev.Point
	d.moved = false
	d.offDrag = ctx.On(surface.Drag, True, func(ev surface.Event) error {
		f := d.feature(ctx)
		if f == nil {
			return nil
		}
		if d.vertex != nil {
			f.UpdateCoordinate(d.vertex, ev.LngLat.Lng, ev.LngLat.Lat)
		} else {
			dx, dy := delta(d.from, ev.Point)
			translate(ctx.Map, f, d.snap, dx, dy)
		}
		d.moved = true
		ctx.Store.Changed(d.id)
		return nil
	})
	d.offUp = ctx.On(surface.MouseUp, True, func(surface.Event) error {
		moved := d.moved
		d.stopDrag()
		if moved {
			ctx.Store.NotifyUpdate(d.id)
		}
		return nil
	})
}

// stopDrag drops the drag bindings; it is a no-op when no drag is live.
func (d *directSelect) stopDrag() {
	if d.offDrag != nil {
		d.offDrag()
	}
	if d.offUp != nil {
		d.offUp()
	}
	d.offDrag, d.offUp = nil, nil
	d.vertex, d.snap, d.moved = nil, nil, false
}

func (d *directSelect) Stop(ctx *Context) { d.stopDrag() }

func (d *directSelect) Render(f geom.Feature, gf *geojson.Feature, rc store.RenderContext, emit func(*geojson.Feature)) {
	if f.ID() != d.id {
		emit(annotate(gf, false))
		return
	}
	emit(annotate(gf, true))
	for _, h := range handle.Synthesize(f, handle.Options{Selected: d.paths, Midpoints: true}) {
		emit(h.Feature())
	}
}

// Trash removes the selected vertices, or the whole feature when none are
// selected. A feature left invalid is deleted.
func (d *directSelect) Trash(ctx *Context) error {
	f := d.feature(ctx)
	if f == nil {
		ctx.ChangeMode(Select, Options{})
		return nil
	}
	if len(d.paths) == 0 {
		ctx.Store.Delete(d.id)
		return nil
	}
	paths := d.paths
	d.paths = nil
	// remove from the back so earlier paths stay addressable
	sort.Slice(paths, func(i, j int) bool { return less(paths[j], paths[i]) })
	for _, p := range paths {
		f.RemoveCoordinate(p)
	}
	if !f.IsValid() {
		ctx.Store.Delete(d.id)
		return nil
	}
	ctx.Store.Changed(d.id)
	ctx.Store.NotifyUpdate(d.id)
	return nil
}

func (d *directSelect) FeatureDeleted(ctx *Context, ids []string) {
	if contains(ids, d.id) {
		d.stopDrag()
		ctx.ChangeMode(Select, Options{})
	}
}

func less(a, b geom.Path) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
