// Package surface defines what the editor needs from the map it draws on:
// projection, spatial queries, a render sink and an input stream.
package surface

import (
	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/geom"
)

type ScreenPoint struct{ X, Y float64 }

type LngLat struct{ Lng, Lat float64 }

// Batch names one of the independent collections handed to the sink.
type Batch string

const (
	Unselected Batch = "unselected"
	Selected   Batch = "selected"
	Drawing    Batch = "drawing"
)

// Batches lists every batch in render order.
var Batches = []Batch{Unselected, Selected, Drawing}

// Meta values carried by rendered features.
const (
	MetaFeature  = "feature"
	MetaVertex   = "vertex"
	MetaMidpoint = "midpoint"
)

type Projector interface {
	Project(LngLat) ScreenPoint
	Unproject(ScreenPoint) LngLat
}

// Hit is one entry returned by a spatial query. Stored features report their
// own ID; handles report the owning feature in Parent plus the handle path.
type Hit struct {
	FeatureID string
	Meta      string
	Parent    string
	Path      geom.Path
	Kind      geom.Kind
}

// Owner returns the id of the stored feature the hit belongs to.
func (h Hit) Owner() string {
	if h.Parent != "" {
		return h.Parent
	}
	return h.FeatureID
}

type QueryOptions struct {
	// Radius in screen units around the query point.
	Radius float64
	// Layers restricts the batches searched; empty means all.
	Layers []Batch
}

// Clamped returns o with a negative radius raised to zero.
func (o QueryOptions) Clamped() QueryOptions {
	if o.Radius < 0 {
		o.Radius = 0
	}
	return o
}

// Searches reports whether b is included by o.Layers.
func (o QueryOptions) Searches(b Batch) bool {
	if len(o.Layers) == 0 {
		return true
	}
	for _, l := range o.Layers {
		if l == b {
			return true
		}
	}
	return false
}

// Querier answers "what is rendered here". Results may repeat a feature.
type Querier interface {
	QueryFeaturesAt(p ScreenPoint, opts QueryOptions) ([]Hit, error)
	QueryFeaturesIn(a, b ScreenPoint, opts QueryOptions) ([]Hit, error)
}

type Sink interface {
	SetData(b Batch, fc *geojson.FeatureCollection)
	// HasSource is false once the surface has been torn down.
	HasSource() bool
}

type Subscriber interface {
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Map is the full host surface.
type Map interface {
	Projector
	Querier
	Sink
	Subscriber
}
