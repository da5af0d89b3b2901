// Package hittest answers "which rendered features are under this pixel" for
// hosts that keep their own render state instead of a GPU map.
package hittest

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	geojson "github.com/paulmach/go.geojson"

	dgeom "geodraw/internal/geom"
	"geodraw/internal/handle"
	"geodraw/internal/surface"
)

// ranks order hits so that handles win over the features they decorate.
const (
	rankVertex = iota
	rankMidpoint
	rankPoint
	rankLine
	rankPolygon
)

// item carries its extent as the embedded geom.Geom so the tree can index it.
type item struct {
	geom.Geom
	batch int
	seq   int
	rank  int
	hit   surface.Hit
	g     *geojson.Geometry
}

// Index holds the last collection sent for every batch, indexed in
// geographic space.
type Index struct {
	batches map[surface.Batch][]*item
	tree    *rtree.Rtree
}

func New() *Index {
	return &Index{batches: map[surface.Batch][]*item{}, tree: rtree.NewTree(25, 50)}
}

// Set replaces the contents of batch b.
func (ix *Index) Set(b surface.Batch, fc *geojson.FeatureCollection) {
	var items []*item
	if fc != nil {
		for i, gf := range fc.Features {
			if it := newItem(b, i, gf); it != nil {
				items = append(items, it)
			}
		}
	}
	ix.batches[b] = items
	ix.tree = rtree.NewTree(25, 50)
	for _, batch := range surface.Batches {
		for _, it := range ix.batches[batch] {
			ix.tree.Insert(it)
		}
	}
}

// Len returns the number of indexed features across all batches.
func (ix *Index) Len() int {
	n := 0
	for _, items := range ix.batches {
		n += len(items)
	}
	return n
}

func batchOrder(b surface.Batch) int {
	for i, x := range surface.Batches {
		if x == b {
			return i
		}
	}
	return len(surface.Batches)
}

func newItem(b surface.Batch, seq int, gf *geojson.Feature) *item {
	if gf == nil || gf.Geometry == nil {
		return nil
	}
	bounds := geom.NewBounds()
	n := 0
	for _, c := range positions(gf.Geometry) {
		bounds.Extend(geom.NewBoundsPoint(geom.Point{X: c[0], Y: c[1]}))
		n++
	}
	if n == 0 {
		return nil
	}
	it := &item{Geom: bounds, batch: batchOrder(b), seq: seq, g: gf.Geometry}
	if h, ok := handle.FromFeature(gf); ok {
		it.hit = surface.Hit{Meta: string(h.Role), Parent: h.Parent, Path: h.Path, Kind: dgeom.KindPoint}
		it.rank = rankVertex
		if h.Role == handle.Midpoint {
			it.rank = rankMidpoint
		}
		return it
	}
	id, _ := gf.ID.(string)
	if id == "" {
		id, _ = gf.Properties["id"].(string)
	}
	meta, _ := gf.Properties[handle.PropMeta].(string)
	if meta == "" {
		meta = surface.MetaFeature
	}
	it.hit = surface.Hit{FeatureID: id, Meta: meta, Kind: dgeom.Kind(gf.Geometry.Type)}
	switch gf.Geometry.Type {
	case geojson.GeometryPoint, geojson.GeometryMultiPoint:
		it.rank = rankPoint
	case geojson.GeometryLineString, geojson.GeometryMultiLineString:
		it.rank = rankLine
	default:
		it.rank = rankPolygon
	}
	return it
}

// At returns every feature rendered within opts.Radius of p, best match first.
func (ix *Index) At(proj surface.Projector, p surface.ScreenPoint, opts surface.QueryOptions) []surface.Hit {
	opts = opts.Clamped()
	r := opts.Radius
	a := surface.ScreenPoint{X: p.X - r, Y: p.Y - r}
	b := surface.ScreenPoint{X: p.X + r, Y: p.Y + r}
	var found []*item
	for _, g := range ix.tree.SearchIntersect(geoBounds(proj, a, b)) {
		it := g.(*item)
		if !opts.Searches(surface.Batches[it.batch]) {
			continue
		}
		if touches(proj, it.g, p, r) {
			found = append(found, it)
		}
	}
	return ranked(found)
}

// In returns every feature whose screen extent overlaps the box a-b.
func (ix *Index) In(proj surface.Projector, a, b surface.ScreenPoint, opts surface.QueryOptions) []surface.Hit {
	box := screenBox(a, b)
	var found []*item
	for _, g := range ix.tree.SearchIntersect(geoBounds(proj, a, b)) {
		it := g.(*item)
		if !opts.Searches(surface.Batches[it.batch]) {
			continue
		}
		ext := geom.NewBounds()
		for _, c := range positions(it.g) {
			s := proj.Project(surface.LngLat{Lng: c[0], Lat: c[1]})
			ext.Extend(geom.NewBoundsPoint(geom.Point{X: s.X, Y: s.Y}))
		}
		if ext.Overlaps(box) {
			found = append(found, it)
		}
	}
	return ranked(found)
}

func ranked(items []*item) []surface.Hit {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.batch != b.batch {
			return a.batch > b.batch
		}
		return a.seq < b.seq
	})
	out := make([]surface.Hit, len(items))
	for i, it := range items {
		out[i] = it.hit
	}
	return out
}

func screenBox(a, b surface.ScreenPoint) *geom.Bounds {
	bb := geom.NewBoundsPoint(geom.Point{X: a.X, Y: a.Y})
	bb.Extend(geom.NewBoundsPoint(geom.Point{X: b.X, Y: b.Y}))
	return bb
}

// geoBounds unprojects every corner of a screen box; the projection may flip
// either axis.
func geoBounds(proj surface.Projector, a, b surface.ScreenPoint) *geom.Bounds {
	bb := geom.NewBounds()
	for _, s := range []surface.ScreenPoint{a, b, {X: a.X, Y: b.Y}, {X: b.X, Y: a.Y}} {
		ll := proj.Unproject(s)
		bb.Extend(geom.NewBoundsPoint(geom.Point{X: ll.Lng, Y: ll.Lat}))
	}
	return bb
}

func positions(g *geojson.Geometry) [][]float64 {
	var out [][]float64
	switch g.Type {
	case geojson.GeometryPoint:
		if len(g.Point) >= 2 {
			out = append(out, g.Point)
		}
	case geojson.GeometryMultiPoint:
		out = append(out, g.MultiPoint...)
	case geojson.GeometryLineString:
		out = append(out, g.LineString...)
	case geojson.GeometryMultiLineString:
		for _, l := range g.MultiLineString {
			out = append(out, l...)
		}
	case geojson.GeometryPolygon:
		for _, r := range g.Polygon {
			out = append(out, r...)
		}
	case geojson.GeometryMultiPolygon:
		for _, p := range g.MultiPolygon {
			for _, r := range p {
				out = append(out, r...)
			}
		}
	}
	return out
}

func touches(proj surface.Projector, g *geojson.Geometry, p surface.ScreenPoint, r float64) bool {
	pt := geom.Point{X: p.X, Y: p.Y}
	screen := func(cs [][]float64) []geom.Point {
		out := make([]geom.Point, 0, len(cs))
		for _, c := range cs {
			if len(c) < 2 {
				continue
			}
			s := proj.Project(surface.LngLat{Lng: c[0], Lat: c[1]})
			out = append(out, geom.Point{X: s.X, Y: s.Y})
		}
		return out
	}
	near := func(cs [][]float64) bool {
		pts := screen(cs)
		if len(pts) == 1 {
			return dist(pt, pts[0]) <= r
		}
		for i := 0; i+1 < len(pts); i++ {
			if segDist(pt, pts[i], pts[i+1]) <= r {
				return true
			}
		}
		return false
	}
	inside := func(rings [][][]float64) bool {
		poly := make(geom.Polygon, 0, len(rings))
		for _, ring := range rings {
			poly = append(poly, screen(ring))
		}
		if pt.Within(poly) != geom.Outside {
			return true
		}
		for _, ring := range rings {
			if near(ring) {
				return true
			}
		}
		return false
	}
	switch g.Type {
	case geojson.GeometryPoint:
		return near([][]float64{g.Point})
	case geojson.GeometryMultiPoint:
		for _, c := range g.MultiPoint {
			if near([][]float64{c}) {
				return true
			}
		}
	case geojson.GeometryLineString:
		return near(g.LineString)
	case geojson.GeometryMultiLineString:
		for _, l := range g.MultiLineString {
			if near(l) {
				return true
			}
		}
	case geojson.GeometryPolygon:
		return inside(g.Polygon)
	case geojson.GeometryMultiPolygon:
		for _, poly := range g.MultiPolygon {
			if inside(poly) {
				return true
			}
		}
	}
	return false
}

func dist(a, b geom.Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

// segDist is the distance from p to the segment a-b.
func segDist(p, a, b geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return dist(p, geom.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}
