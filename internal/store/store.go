// Package store owns the features being edited and their selection state,
// and turns them into render batches for the surface.
package store

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/sirupsen/logrus"

	"geodraw/internal/event"
	"geodraw/internal/geom"
	"geodraw/internal/handle"
	"geodraw/internal/surface"
)

// Surface is the part of the host map the store talks to.
type Surface interface {
	surface.Sink
	surface.Querier
}

// RenderContext describes a stored feature to the render filter.
type RenderContext struct {
	Selected  bool
	Permanent bool
}

// RenderFilter decides what a stored feature looks like on screen. It may
// call emit any number of times, including zero to hide the feature.
type RenderFilter func(f geom.Feature, gf *geojson.Feature, rc RenderContext, emit func(*geojson.Feature))

type Store struct {
	surface Surface
	events  *event.Emitter
	sched   Scheduler
	log     logrus.FieldLogger

	ids      []string
	features map[string]geom.Feature
	selected map[string]bool

	dirty     map[surface.Batch]bool
	scheduled bool
	batching  int

	filter   RenderFilter
	onDelete func(ids []string)

	// Renders counts completed render passes.
	Renders int
}

type Option func(*Store)

func WithScheduler(s Scheduler) Option { return func(st *Store) { st.sched = s } }

func WithLogger(l logrus.FieldLogger) Option { return func(st *Store) { st.log = l } }

func New(s Surface, events *event.Emitter, opts ...Option) *Store {
	st := &Store{
		surface:  s,
		events:   events,
		sched:    Immediate{},
		log:      logrus.StandardLogger(),
		features: map[string]geom.Feature{},
		selected: map[string]bool{},
		dirty:    map[surface.Batch]bool{},
	}
	if st.events == nil {
		st.events = &event.Emitter{}
	}
	for _, o := range opts {
		o(st)
	}
	return st
}

// SetRenderFilter installs the hook used by the active mode.
func (s *Store) SetRenderFilter(fn RenderFilter) {
	s.filter = fn
	s.invalidate(surface.Batches...)
}

// SetDeleteHook registers fn to run after features are removed, whether
// or not they were committed.
func (s *Store) SetDeleteHook(fn func(ids []string)) { s.onDelete = fn }

// Batch runs fn with rendering held back until it returns.
func (s *Store) Batch(fn func()) {
	s.batching++
	defer func() {
		s.batching--
		s.schedule()
	}()
	fn()
}

func (s *Store) batchOf(id string) surface.Batch {
	f := s.features[id]
	switch {
	case f == nil || !f.Permanent():
		return surface.Drawing
	case s.selected[id]:
		return surface.Selected
	}
	return surface.Unselected
}

func (s *Store) touch(id string) {
	if _, ok := s.features[id]; ok {
		s.dirty[s.batchOf(id)] = true
	}
}

func (s *Store) invalidate(bs ...surface.Batch) {
	for _, b := range bs {
		s.dirty[b] = true
	}
	s.schedule()
}

func (s *Store) schedule() {
	if s.batching > 0 || s.scheduled || len(s.dirty) == 0 {
		return
	}
	s.scheduled = true
	s.sched.Schedule(s.flush)
}

func (s *Store) flush() {
	s.scheduled = false
	s.render()
}

// Add stores f. A feature with an id already present replaces the stored
// instance and keeps its position and selection.
func (s *Store) Add(f geom.Feature) {
	id := f.ID()
	if _, ok := s.features[id]; ok {
		s.touch(id)
	} else {
		s.ids = append(s.ids, id)
	}
	s.features[id] = f
	s.touch(id)
	s.schedule()
}

// Get returns the stored feature or nil.
func (s *Store) Get(id string) geom.Feature { return s.features[id] }

// Has reports whether id is stored.
func (s *Store) Has(id string) bool {
	_, ok := s.features[id]
	return ok
}

// IDs returns every stored id in insertion order.
func (s *Store) IDs() []string { return append([]string(nil), s.ids...) }

// All returns the committed features in insertion order.
func (s *Store) All() []geom.Feature {
	out := make([]geom.Feature, 0, len(s.ids))
	for _, id := range s.ids {
		if f := s.features[id]; f.Permanent() {
			out = append(out, f)
		}
	}
	return out
}

// Delete removes ids. Unknown ids are ignored. Committed features fire a
// delete event, preceded by deselect when they were selected.
func (s *Store) Delete(ids ...string) {
	var gone, deselected, deleted []string
	var deselFs, delFs []*geojson.Feature
	for _, id := range ids {
		f, ok := s.features[id]
		if !ok {
			continue
		}
		s.touch(id)
		if f.Permanent() {
			gf := geom.ToFeature(f)
			if s.selected[id] {
				deselected = append(deselected, id)
				deselFs = append(deselFs, gf)
			}
			deleted = append(deleted, id)
			delFs = append(delFs, gf)
		}
		delete(s.features, id)
		delete(s.selected, id)
		s.removeID(id)
		gone = append(gone, id)
	}
	if len(gone) == 0 {
		return
	}
	if len(deselected) > 0 {
		s.events.Emit(event.Event{Type: event.Deselect, IDs: deselected, Features: deselFs})
	}
	if len(deleted) > 0 {
		s.events.Emit(event.Event{Type: event.Delete, IDs: deleted, Features: delFs})
	}
	if s.onDelete != nil {
		s.onDelete(gone)
	}
	s.schedule()
}

func (s *Store) removeID(id string) {
	for i, x := range s.ids {
		if x == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// DeleteAll removes every feature with a single render pass.
func (s *Store) DeleteAll() {
	s.Batch(func() { s.Delete(s.IDs()...) })
}

// Select marks id selected. It returns false for unknown or already
// selected ids.
func (s *Store) Select(id string) bool {
	f, ok := s.features[id]
	if !ok || s.selected[id] {
		return false
	}
	s.touch(id)
	s.selected[id] = true
	s.touch(id)
	if f.Permanent() {
		s.events.Emit(event.Event{Type: event.Select, IDs: []string{id}, Features: []*geojson.Feature{geom.ToFeature(f)}})
	}
	s.schedule()
	return true
}

// Deselect clears the selection flag of id.
func (s *Store) Deselect(id string) bool {
	f, ok := s.features[id]
	if !ok || !s.selected[id] {
		return false
	}
	s.touch(id)
	delete(s.selected, id)
	s.touch(id)
	if f.Permanent() {
		s.events.Emit(event.Event{Type: event.Deselect, IDs: []string{id}, Features: []*geojson.Feature{geom.ToFeature(f)}})
	}
	s.schedule()
	return true
}

func (s *Store) IsSelected(id string) bool { return s.selected[id] }

// SelectedIDs returns the selected ids in insertion order.
func (s *Store) SelectedIDs() []string {
	var out []string
	for _, id := range s.ids {
		if s.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

// ClearSelected deselects everything.
func (s *Store) ClearSelected() {
	s.Batch(func() {
		for _, id := range s.SelectedIDs() {
			s.Deselect(id)
		}
	})
}

// SelectOnly makes the committed features among ids the whole selection.
// Ids that stay selected fire no events.
func (s *Store) SelectOnly(ids ...string) {
	keep := map[string]bool{}
	for _, id := range ids {
		if f := s.features[id]; f != nil && f.Permanent() {
			keep[id] = true
		}
	}
	s.Batch(func() {
		for _, id := range s.SelectedIDs() {
			if !keep[id] {
				s.Deselect(id)
			}
		}
		for _, id := range ids {
			if keep[id] {
				s.Select(id)
			}
		}
	})
}

// SelectFeaturesIntersecting selects every committed feature the surface
// reports inside the screen box a-b and returns the newly selected ids.
// A query failure is returned untouched and nothing is selected.
func (s *Store) SelectFeaturesIntersecting(a, b surface.ScreenPoint) ([]string, error) {
	hits, err := s.surface.QueryFeaturesIn(a, b, surface.QueryOptions{
		Layers: []surface.Batch{surface.Unselected, surface.Selected},
	})
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	s.Batch(func() {
		for _, h := range hits {
			id := h.Owner()
			if seen[id] {
				continue
			}
			seen[id] = true
			if f := s.features[id]; f == nil || !f.Permanent() {
				continue
			}
			if s.Select(id) {
				out = append(out, id)
			}
		}
	})
	return out, nil
}

// Commit marks an in-progress feature permanent and fires create.
func (s *Store) Commit(id string) {
	f, ok := s.features[id]
	if !ok || f.Permanent() {
		return
	}
	s.touch(id)
	f.SetPermanent(true)
	s.touch(id)
	s.events.Emit(event.Event{Type: event.Create, IDs: []string{id}, Features: []*geojson.Feature{geom.ToFeature(f)}})
	s.schedule()
}

// Changed records that the geometry of id was mutated in place.
func (s *Store) Changed(id string) {
	s.touch(id)
	s.schedule()
}

// NotifyUpdate fires update for the committed features among ids.
func (s *Store) NotifyUpdate(ids ...string) {
	var out []string
	var fs []*geojson.Feature
	for _, id := range ids {
		if f, ok := s.features[id]; ok && f.Permanent() {
			out = append(out, id)
			fs = append(fs, geom.ToFeature(f))
		}
	}
	if len(out) > 0 {
		s.events.Emit(event.Event{Type: event.Update, IDs: out, Features: fs})
	}
}

// Render schedules a pass over every batch.
func (s *Store) Render() { s.invalidate(surface.Batches...) }

// RenderSelected schedules a pass over the selected batch only.
func (s *Store) RenderSelected() { s.invalidate(surface.Selected) }

func (s *Store) render() {
	if len(s.dirty) == 0 {
		return
	}
	if s.surface == nil || !s.surface.HasSource() {
		s.log.WithField("batches", len(s.dirty)).Debug("render skipped: surface detached")
		s.dirty = map[surface.Batch]bool{}
		return
	}
	dirty := s.dirty
	s.dirty = map[surface.Batch]bool{}
	out := map[surface.Batch]*geojson.FeatureCollection{}
	for _, b := range surface.Batches {
		if dirty[b] {
			out[b] = geojson.NewFeatureCollection()
		}
	}
	for _, id := range s.ids {
		f := s.features[id]
		fc := out[s.batchOf(id)]
		if fc == nil {
			continue
		}
		gf := geom.ToFeature(f)
		gf.SetProperty("id", id)
		rc := RenderContext{Selected: s.selected[id], Permanent: f.Permanent()}
		emit := func(x *geojson.Feature) { fc.AddFeature(x) }
		if s.filter != nil {
			s.filter(f, gf, rc, emit)
			continue
		}
		gf.SetProperty(handle.PropMeta, surface.MetaFeature)
		gf.SetProperty(handle.PropActive, handle.Bool(rc.Selected))
		emit(gf)
	}
	for _, b := range surface.Batches {
		if fc, ok := out[b]; ok {
			s.surface.SetData(b, fc)
		}
	}
	s.Renders++
}
