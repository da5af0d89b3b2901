// Package handle synthesizes the vertex and midpoint points used to edit a
// feature directly. Handles are plain values rebuilt from the feature on
// every render; they are never stored.
package handle

import (
	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/geom"
)

type Role string

const (
	Vertex   Role = "vertex"
	Midpoint Role = "midpoint"
)

// Property keys carried by rendered handles and annotated features.
const (
	PropMeta   = "meta"
	PropParent = "parent"
	PropPath   = "coord_path"
	PropActive = "active"
)

// Handle is one editing affordance. For a midpoint, Path is the index at
// which AddCoordinate inserts the new vertex.
type Handle struct {
	Parent string
	Path   geom.Path
	Role   Role
	Coord  [2]float64
	Active bool
}

type Options struct {
	// Selected marks vertex handles as active.
	Selected []geom.Path
	// Midpoints enables midpoint synthesis.
	Midpoints bool
}

// Synthesize returns the vertex handles of f in path order followed by its
// midpoints when requested.
func Synthesize(f geom.Feature, opts Options) []Handle {
	if f == nil {
		return nil
	}
	var out []Handle
	for _, p := range f.Paths() {
		c, ok := f.Coordinate(p)
		if !ok {
			continue
		}
		out = append(out, Handle{
			Parent: f.ID(),
			Path:   p,
			Role:   Vertex,
			Coord:  c,
			Active: contains(opts.Selected, p),
		})
	}
	if opts.Midpoints {
		out = append(out, Midpoints(f)...)
	}
	return out
}

// Midpoints returns one handle per segment of every line and ring of f.
// Ring midpoints include the closing segment.
func Midpoints(f geom.Feature) []Handle {
	var closed bool
	switch f.Kind() {
	case geom.KindLineString, geom.KindMultiLineString:
	case geom.KindPolygon, geom.KindMultiPolygon:
		closed = true
	default:
		return nil
	}
	var out []Handle
	for _, seq := range sequences(f.Paths()) {
		n := len(seq)
		if n < 2 {
			continue
		}
		segs := n - 1
		if closed && n >= 3 {
			segs = n
		}
		for i := 0; i < segs; i++ {
			a, _ := f.Coordinate(seq[i])
			b, _ := f.Coordinate(seq[(i+1)%n])
			p := seq[i].Clone()
			p[len(p)-1] = i + 1
			out = append(out, Handle{
				Parent: f.ID(),
				Path:   p,
				Role:   Midpoint,
				Coord:  [2]float64{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2},
			})
		}
	}
	return out
}

// sequences groups consecutive paths that share every index but the last.
func sequences(paths []geom.Path) [][]geom.Path {
	var out [][]geom.Path
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		if k := len(out); k > 0 && sameParent(out[k-1][0], p) {
			out[k-1] = append(out[k-1], p)
			continue
		}
		out = append(out, []geom.Path{p})
	}
	return out
}

func sameParent(a, b geom.Path) bool {
	return len(a) == len(b) && a[:len(a)-1].Equal(b[:len(b)-1])
}

func contains(ps []geom.Path, p geom.Path) bool {
	for _, q := range ps {
		if q.Equal(p) {
			return true
		}
	}
	return false
}

// Feature renders h as a GeoJSON point tagged with its role, parent and path.
func (h Handle) Feature() *geojson.Feature {
	gf := geojson.NewPointFeature([]float64{h.Coord[0], h.Coord[1]})
	gf.SetProperty(PropMeta, string(h.Role))
	gf.SetProperty(PropParent, h.Parent)
	gf.SetProperty(PropPath, h.Path.String())
	gf.SetProperty(PropActive, Bool(h.Active))
	return gf
}

// Bool renders the string form used by the active property.
func Bool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// FromFeature recovers a handle from its rendered form.
func FromFeature(gf *geojson.Feature) (Handle, bool) {
	if gf == nil || gf.Geometry == nil || len(gf.Geometry.Point) < 2 {
		return Handle{}, false
	}
	role, _ := gf.Properties[PropMeta].(string)
	if role != string(Vertex) && role != string(Midpoint) {
		return Handle{}, false
	}
	parent, _ := gf.Properties[PropParent].(string)
	ps, _ := gf.Properties[PropPath].(string)
	path, err := geom.ParsePath(ps)
	if err != nil {
		return Handle{}, false
	}
	active, _ := gf.Properties[PropActive].(string)
	return Handle{
		Parent: parent,
		Path:   path,
		Role:   Role(role),
		Coord:  [2]float64{gf.Geometry.Point[0], gf.Geometry.Point[1]},
		Active: active == "true",
	}, true
}
