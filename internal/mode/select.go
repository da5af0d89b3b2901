package mode

import (
	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/geom"
	"geodraw/internal/handle"
	"geodraw/internal/store"
	"geodraw/internal/surface"
)

// selectMode is the idle mode: pick features, move them, delete them.
type selectMode struct {
	initial []string

	dragFrom *surface.ScreenPoint
	dragSnap map[string][]coordAt
	dragged  bool

	boxFrom *surface.ScreenPoint
}

func newSelect(opts Options) Mode { return &selectMode{initial: opts.FeatureIDs} }

func (s *selectMode) Start(ctx *Context) {
	ctx.Store.SelectOnly(s.initial...)

	ctx.On(surface.MouseDown, func(ev surface.Event) bool {
		return ev.Shift && ctx.Settings.BoxSelect && len(ev.Hits) == 0
	}, func(ev surface.Event) error {
		p := ev.Point
		s.boxFrom = &p
		return nil
	})
	ctx.On(surface.MouseDown, func(ev surface.Event) bool {
		h, ok := ev.Top()
		return ok && ctx.Store.IsSelected(h.Owner())
	}, func(ev surface.Event) error {
		p := ev.Point
		s.dragFrom = &p
		s.dragged = false
		s.dragSnap = map[string][]coordAt{}
		for _, id := range ctx.Store.SelectedIDs() {
			s.dragSnap[id] = snapshot(ctx.Store.Get(id))
		}
		return nil
	})
	ctx.On(surface.Drag, True, func(ev surface.Event) error {
		if s.dragFrom == nil {
			return nil
		}
		dx, dy := delta(*s.dragFrom, ev.Point)
		for id, snap := range s.dragSnap {
			f := ctx.Store.Get(id)
			if f == nil {
				continue
			}
			translate(ctx.Map, f, snap, dx, dy)
			ctx.Store.Changed(id)
		}
		s.dragged = true
		return nil
	})
	ctx.On(surface.MouseUp, True, func(ev surface.Event) error {
		defer s.reset()
		if s.boxFrom != nil {
			if *s.boxFrom == ev.Point {
				return nil
			}
			_, err := ctx.Store.SelectFeaturesIntersecting(*s.boxFrom, ev.Point)
			return err
		}
		if s.dragged {
			var ids []string
			for id := range s.dragSnap {
				ids = append(ids, id)
			}
			ctx.Store.NotifyUpdate(order(ctx.Store, ids)...)
		}
		return nil
	})
	ctx.On(surface.Click, NoTarget, func(ev surface.Event) error {
		if !ev.Shift {
			ctx.Store.ClearSelected()
		}
		return nil
	})
	ctx.On(surface.Click, func(ev surface.Event) bool {
		return ev.Shift && len(ev.Hits) > 0
	}, func(ev surface.Event) error {
		h, _ := ev.Top()
		id := h.Owner()
		if ctx.Store.IsSelected(id) {
			ctx.Store.Deselect(id)
		} else {
			ctx.Store.Select(id)
		}
		return nil
	})
	ctx.On(surface.Click, func(ev surface.Event) bool {
		return !ev.Shift && len(ev.Hits) > 0
	}, func(ev surface.Event) error {
		h, _ := ev.Top()
		if f := ctx.Store.Get(h.Owner()); f == nil || !f.Permanent() {
			return nil
		}
		ctx.ChangeMode(DirectSelect, Options{FeatureIDs: []string{h.Owner()}})
		return nil
	})
}

func (s *selectMode) reset() {
	s.dragFrom, s.dragSnap, s.dragged = nil, nil, false
	s.boxFrom = nil
}

func (s *selectMode) Stop(ctx *Context) { s.reset() }

// Render shows selected features with their vertices so they can be grabbed.
func (s *selectMode) Render(f geom.Feature, gf *geojson.Feature, rc store.RenderContext, emit func(*geojson.Feature)) {
	emit(annotate(gf, rc.Selected))
	if !rc.Selected || f.Kind() == geom.KindPoint {
		return
	}
	for _, h := range handle.Synthesize(f, handle.Options{}) {
		emit(h.Feature())
	}
}

// Trash deletes the selection.
func (s *selectMode) Trash(ctx *Context) error {
	ctx.Store.Delete(ctx.Store.SelectedIDs()...)
	return nil
}

// order returns ids in store order.
func order(st *store.Store, ids []string) []string {
	var out []string
	for _, id := range st.IDs() {
		if contains(ids, id) {
			out = append(out, id)
		}
	}
	return out
}
