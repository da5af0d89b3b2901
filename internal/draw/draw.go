// Package draw is the public face of the editor. A Draw subscribes to a host
// surface, turns its raw input into the events modes bind to, and offers
// programmatic control over the stored features.
package draw

import (
	"errors"
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/sirupsen/logrus"

	"geodraw/internal/config"
	"geodraw/internal/event"
	"geodraw/internal/geom"
	"geodraw/internal/mode"
	"geodraw/internal/store"
	"geodraw/internal/surface"
)

var ErrInvalidFeature = errors.New("draw: invalid feature")

// host wraps the surface so that Close can cut off rendering without the
// host tearing itself down.
type host struct {
	surface.Map
	closed bool
}

func (h *host) HasSource() bool { return !h.closed && h.Map.HasSource() }

type Draw struct {
	host    *host
	opts    config.Options
	log     logrus.FieldLogger
	events  *event.Emitter
	sched   *store.Deferred
	store   *store.Store
	machine *mode.Machine
	onError func(error)

	unsubscribe func()
	depth       int
	press       *press
}

type Option func(*Draw)

func WithLogger(l logrus.FieldLogger) Option { return func(d *Draw) { d.log = l } }

func WithOptions(o config.Options) Option { return func(d *Draw) { d.opts = o } }

// WithErrorHandler receives failures raised while handling subscribed input.
// The default logs them.
func WithErrorHandler(fn func(error)) Option { return func(d *Draw) { d.onError = fn } }

// New attaches an editor to m and enters the configured default mode.
func New(m surface.Map, opts ...Option) (*Draw, error) {
	d := &Draw{
		host:   &host{Map: m},
		opts:   config.Default(),
		log:    logrus.StandardLogger(),
		events: &event.Emitter{},
		sched:  &store.Deferred{},
	}
	for _, o := range opts {
		o(d)
	}
	valid, err := d.opts.Validate()
	if err != nil {
		return nil, err
	}
	d.opts = valid
	if d.onError == nil {
		d.onError = func(err error) { d.log.WithError(err).Error("input handling failed") }
	}
	d.store = store.New(d.host, d.events, store.WithScheduler(d.sched), store.WithLogger(d.log))
	d.machine = mode.NewMachine(d.store, d.host, d.events, d.opts.Settings(), d.log)
	if err := d.ChangeMode(d.opts.DefaultMode, mode.Options{}); err != nil {
		return nil, err
	}
	d.unsubscribe = m.Subscribe(func(ev surface.Event) {
		if err := d.Handle(ev); err != nil {
			d.onError(err)
		}
	})
	return d, nil
}

// turn runs fn and flushes pending renders once the outermost call returns.
func (d *Draw) turn(fn func() error) error {
	d.depth++
	err := fn()
	d.depth--
	if d.depth == 0 {
		d.sched.Flush()
	}
	return err
}

// Flush runs any render pass still pending.
func (d *Draw) Flush() {
	if d.depth == 0 {
		d.sched.Flush()
	}
}

// Close detaches from the host. Later mutations no longer reach the sink.
func (d *Draw) Close() {
	if d.host.closed {
		return
	}
	d.host.closed = true
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
	d.press = nil
}

func (d *Draw) Options() config.Options { return d.opts }

// Mode returns the active mode name.
func (d *Draw) Mode() string { return d.machine.Current() }

func (d *Draw) ChangeMode(name string, opts mode.Options) error {
	return d.turn(func() error { return d.machine.ChangeMode(name, opts) })
}

// On subscribes fn to notifications of type t.
func (d *Draw) On(t event.Type, fn func(event.Event)) (off func()) {
	return d.events.On(t, fn)
}

// GetAll returns a snapshot of the committed features.
func (d *Draw) GetAll() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range d.store.All() {
		fc.AddFeature(geom.ToFeature(f))
	}
	return fc
}

// Get returns the committed feature id, or nil.
func (d *Draw) Get(id string) *geojson.Feature {
	f := d.store.Get(id)
	if f == nil || !f.Permanent() {
		return nil
	}
	return geom.ToFeature(f)
}

// Add stores gfs and returns their ids. A feature whose id is already stored
// replaces it. Nothing is stored when any feature is rejected.
func (d *Draw) Add(gfs ...*geojson.Feature) ([]string, error) {
	fs := make([]geom.Feature, 0, len(gfs))
	for i, gf := range gfs {
		f, err := geom.FromFeature(gf)
		if err != nil {
			return nil, fmt.Errorf("draw: feature %d: %w", i, err)
		}
		if !f.IsValid() {
			return nil, fmt.Errorf("%w: feature %d (%s)", ErrInvalidFeature, i, f.Kind())
		}
		fs = append(fs, f)
	}
	return d.Import(fs...), nil
}

// AddCollection adds every feature of fc.
func (d *Draw) AddCollection(fc *geojson.FeatureCollection) ([]string, error) {
	if fc == nil {
		return nil, nil
	}
	return d.Add(fc.Features...)
}

// Import stores already built features as committed. Invalid features are
// skipped; the returned ids cover only what was stored.
func (d *Draw) Import(fs ...geom.Feature) []string {
	ids := make([]string, 0, len(fs))
	_ = d.turn(func() error {
		d.store.Batch(func() {
			for _, f := range fs {
				if f == nil {
					continue
				}
				if !f.IsValid() {
					d.log.WithFields(logrus.Fields{"id": f.ID(), "kind": f.Kind()}).Warn("skipping invalid feature")
					continue
				}
				f.SetPermanent(true)
				d.store.Add(f)
				ids = append(ids, f.ID())
			}
		})
		return nil
	})
	return ids
}

// Set replaces the store contents with fc. Stored ids absent from fc are
// deleted.
func (d *Draw) Set(fc *geojson.FeatureCollection) ([]string, error) {
	var gfs []*geojson.Feature
	if fc != nil {
		gfs = fc.Features
	}
	fs := make([]geom.Feature, 0, len(gfs))
	keep := map[string]bool{}
	for i, gf := range gfs {
		f, err := geom.FromFeature(gf)
		if err != nil {
			return nil, fmt.Errorf("draw: feature %d: %w", i, err)
		}
		if !f.IsValid() {
			return nil, fmt.Errorf("%w: feature %d (%s)", ErrInvalidFeature, i, f.Kind())
		}
		keep[f.ID()] = true
		fs = append(fs, f)
	}
	var ids []string
	err := d.turn(func() error {
		var stale []string
		for _, id := range d.store.IDs() {
			if !keep[id] {
				stale = append(stale, id)
			}
		}
		d.store.Batch(func() {
			d.store.Delete(stale...)
			ids = d.Import(fs...)
		})
		return nil
	})
	return ids, err
}

// Delete removes ids. Unknown ids are ignored.
func (d *Draw) Delete(ids ...string) {
	_ = d.turn(func() error {
		d.store.Batch(func() { d.store.Delete(ids...) })
		return nil
	})
}

// DeleteAll removes every feature in a single render pass.
func (d *Draw) DeleteAll() {
	_ = d.turn(func() error {
		d.store.DeleteAll()
		return nil
	})
}

// Trash runs the active mode's remove behavior.
func (d *Draw) Trash() error {
	return d.turn(d.machine.Trash)
}

// SelectedIDs returns the selected feature ids in store order.
func (d *Draw) SelectedIDs() []string { return d.store.SelectedIDs() }
