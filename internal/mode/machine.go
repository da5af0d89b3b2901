// Package mode implements the editing modes and the machine that switches
// between them. Exactly one mode is active; its event bindings are dropped
// before the next mode starts.
package mode

import (
	"errors"
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/sirupsen/logrus"

	"geodraw/internal/event"
	"geodraw/internal/geom"
	"geodraw/internal/store"
	"geodraw/internal/surface"
)

const (
	Select        = "select"
	DirectSelect  = "direct-select"
	DrawPoint     = "draw-point"
	DrawLine      = "draw-line"
	DrawPolygon   = "draw-polygon"
	DrawRectangle = "draw-rectangle"
)

var ErrUnknownMode = errors.New("mode: unknown mode")

// Options are handed to a mode when it is entered.
type Options struct {
	// FeatureIDs are selected on entry to select. The first one is the
	// edit target of direct-select.
	FeatureIDs []string
	// Paths are coordinates pre-selected by direct-select.
	Paths []geom.Path
}

// Mode is one behavior bundle.
type Mode interface {
	// Start registers bindings and sets up local state.
	Start(ctx *Context)
	// Stop settles in-progress work. Bindings are dropped after it returns.
	Stop(ctx *Context)
	// Render decides what a stored feature looks like while the mode is active.
	Render(f geom.Feature, gf *geojson.Feature, rc store.RenderContext, emit func(*geojson.Feature))
	// Trash removes the mode's notion of "the last thing".
	Trash(ctx *Context) error
}

// deleteWatcher is implemented by modes that hold on to a stored feature.
type deleteWatcher interface {
	FeatureDeleted(ctx *Context, ids []string)
}

type Factory func(opts Options) Mode

// Modes maps every mode name to its constructor.
var Modes = map[string]Factory{
	Select:        newSelect,
	DirectSelect:  newDirectSelect,
	DrawPoint:     newDrawPoint,
	DrawLine:      newDrawLine,
	DrawPolygon:   newDrawPolygon,
	DrawRectangle: newDrawRectangle,
}

// Valid reports whether name is a known mode.
func Valid(name string) bool {
	_, ok := Modes[name]
	return ok
}

type Settings struct {
	// BoxSelect enables shift-drag box selection in select mode.
	BoxSelect bool
}

type pendingChange struct {
	name string
	opts Options
}

type Machine struct {
	store    *store.Store
	proj     surface.Projector
	events   *event.Emitter
	log      logrus.FieldLogger
	settings Settings

	name    string
	current Mode
	ctx     *Context

	changing bool
	queued   *pendingChange
}

func NewMachine(st *store.Store, proj surface.Projector, events *event.Emitter, settings Settings, log logrus.FieldLogger) *Machine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if events == nil {
		events = &event.Emitter{}
	}
	m := &Machine{store: st, proj: proj, events: events, log: log, settings: settings}
	st.SetDeleteHook(m.featuresDeleted)
	return m
}

// Current returns the name of the active mode, empty before the first
// ChangeMode.
func (m *Machine) Current() string { return m.name }

// ChangeMode stops the active mode and starts name. A change requested while
// another change runs is applied once that one completes; the last request
// wins.
func (m *Machine) ChangeMode(name string, opts Options) error {
	factory, ok := Modes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	if m.changing {
		m.queued = &pendingChange{name: name, opts: opts}
		return nil
	}
	m.changing = true
	from := m.name
	m.store.Batch(func() {
		if m.current != nil {
			m.current.Stop(m.ctx)
			m.ctx.close()
		}
		next := factory(opts)
		m.ctx = &Context{Store: m.store, Map: m.proj, Log: m.log, Settings: m.settings, m: m}
		m.name, m.current = name, next
		m.store.SetRenderFilter(next.Render)
		next.Start(m.ctx)
	})
	m.changing = false
	m.log.WithFields(logrus.Fields{"from": from, "to": name}).Debug("mode changed")
	m.events.Emit(event.Event{Type: event.ModeChange, Mode: name})
	if q := m.queued; q != nil {
		m.queued = nil
		return m.ChangeMode(q.name, q.opts)
	}
	return nil
}

// Dispatch hands ev to the active mode. The most recently registered
// binding whose selector accepts ev handles it; at most one runs.
func (m *Machine) Dispatch(ev surface.Event) error {
	if m.ctx == nil {
		return nil
	}
	ctx := m.ctx
	bs := ctx.bindings
	for i := len(bs) - 1; i >= 0; i-- {
		b := bs[i]
		if b.off || b.t != ev.Type || !b.sel(ev) {
			continue
		}
		var err error
		m.store.Batch(func() { err = b.fn(ev) })
		return err
	}
	return nil
}

// Trash runs the active mode's trash behavior.
func (m *Machine) Trash() error {
	if m.current == nil {
		return nil
	}
	var err error
	m.store.Batch(func() { err = m.current.Trash(m.ctx) })
	return err
}

// Bindings returns how many live bindings the active mode holds.
func (m *Machine) Bindings() int {
	if m.ctx == nil {
		return 0
	}
	n := 0
	for _, b := range m.ctx.bindings {
		if !b.off {
			n++
		}
	}
	return n
}

func (m *Machine) featuresDeleted(ids []string) {
	if m.ctx == nil || m.ctx.dead || m.changing {
		return
	}
	if w, ok := m.current.(deleteWatcher); ok {
		w.FeatureDeleted(m.ctx, ids)
	}
}
