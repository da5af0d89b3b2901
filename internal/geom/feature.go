package geom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	geojson "github.com/paulmach/go.geojson"
)

// Kind tags the geometry variant of a Feature.
type Kind string

const (
	KindPoint           Kind = "Point"
	KindLineString      Kind = "LineString"
	KindPolygon         Kind = "Polygon"
	KindMultiPoint      Kind = "MultiPoint"
	KindMultiLineString Kind = "MultiLineString"
	KindMultiPolygon    Kind = "MultiPolygon"
)

var ErrUnsupported = errors.New("geom: unsupported geometry type")

// Path addresses one coordinate inside a feature: [i] for a line,
// [ring, i] for a polygon, and a leading part index for multi geometries.
type Path []int

// String renders the dotted form used in handle properties ("0.3").
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// Equal reports whether two paths address the same coordinate.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share storage with p.
func (p Path) Clone() Path {
	return append(Path(nil), p...)
}

// ParsePath parses the dotted form. The empty string is the empty path.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, nil
	}
	fields := strings.Split(s, ".")
	p := make(Path, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("geom: bad path %q: %w", s, err)
		}
		p = append(p, v)
	}
	return p, nil
}

// Feature is the closed set of editable geometries. Coordinates are
// addressed by Path; out of range operations are ignored.
type Feature interface {
	ID() string
	Kind() Kind

	Property(key string) (any, bool)
	SetProperty(key string, value any)
	Properties() map[string]any

	// Permanent is false while the feature is still being drawn.
	Permanent() bool
	SetPermanent(bool)

	Coordinate(p Path) ([2]float64, bool)
	UpdateCoordinate(p Path, lng, lat float64)
	AddCoordinate(p Path, lng, lat float64)
	RemoveCoordinate(p Path)
	// Paths lists every addressable coordinate in order.
	Paths() []Path

	IsValid() bool
	ToGeometry() *geojson.Geometry

	sealed()
}

// NewID returns a process-unique feature identifier.
func NewID() string { return uuid.NewString() }

type base struct {
	id        string
	props     map[string]any
	permanent bool
}

func newBase(id string) base {
	if id == "" {
		id = NewID()
	}
	return base{id: id, props: map[string]any{}}
}

func (b *base) ID() string { return b.id }

func (b *base) Property(key string) (any, bool) {
	v, ok := b.props[key]
	return v, ok
}

func (b *base) SetProperty(key string, value any) {
	if b.props == nil {
		b.props = map[string]any{}
	}
	b.props[key] = value
}

func (b *base) Properties() map[string]any {
	out := make(map[string]any, len(b.props))
	for k, v := range b.props {
		out[k] = v
	}
	return out
}

func (b *base) Permanent() bool     { return b.permanent }
func (b *base) SetPermanent(v bool) { b.permanent = v }
func (b *base) sealed()             {}

// New returns an empty, not yet permanent feature of the given kind.
func New(kind Kind) (Feature, error) {
	return newWithID(kind, "")
}

func newWithID(kind Kind, id string) (Feature, error) {
	switch kind {
	case KindPoint:
		return &Point{base: newBase(id)}, nil
	case KindLineString:
		return &LineString{base: newBase(id)}, nil
	case KindPolygon:
		return &Polygon{base: newBase(id), rings: [][][2]float64{{}}}, nil
	case KindMultiPoint, KindMultiLineString, KindMultiPolygon:
		return &Multi{base: newBase(id), kind: kind}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
}

// ToFeature exports f with its id and a copy of its properties.
func ToFeature(f Feature) *geojson.Feature {
	gf := geojson.NewFeature(f.ToGeometry())
	gf.ID = f.ID()
	gf.Properties = f.Properties()
	return gf
}

// distinct counts coordinates that differ from every earlier one.
func distinct(cs [][2]float64) int {
	n := 0
	for i, c := range cs {
		seen := false
		for _, d := range cs[:i] {
			if c == d {
				seen = true
				break
			}
		}
		if !seen {
			n++
		}
	}
	return n
}

func insertAt(cs [][2]float64, i int, c [2]float64) [][2]float64 {
	cs = append(cs, [2]float64{})
	copy(cs[i+1:], cs[i:])
	cs[i] = c
	return cs
}

func removeAt(cs [][2]float64, i int) [][2]float64 {
	return append(cs[:i], cs[i+1:]...)
}

func toPositions(cs [][2]float64) [][]float64 {
	out := make([][]float64, len(cs))
	for i, c := range cs {
		out[i] = []float64{c[0], c[1]}
	}
	return out
}

func fromPositions(ps [][]float64) [][2]float64 {
	out := make([][2]float64, 0, len(ps))
	for _, p := range ps {
		if len(p) < 2 {
			continue
		}
		out = append(out, [2]float64{p[0], p[1]})
	}
	return out
}
