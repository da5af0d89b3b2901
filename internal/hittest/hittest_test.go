package hittest

import (
	"testing"

	geojson "github.com/paulmach/go.geojson"

	dgeom "geodraw/internal/geom"
	"geodraw/internal/handle"
	"geodraw/internal/surface"
)

type identity struct{}

func (identity) Project(ll surface.LngLat) surface.ScreenPoint {
	return surface.ScreenPoint{X: ll.Lng, Y: ll.Lat}
}

func (identity) Unproject(p surface.ScreenPoint) surface.LngLat {
	return surface.LngLat{Lng: p.X, Lat: p.Y}
}

func feature(id string, g *geojson.Geometry) *geojson.Feature {
	gf := geojson.NewFeature(g)
	gf.ID = id
	gf.SetProperty(handle.PropMeta, surface.MetaFeature)
	return gf
}

func collection(fs ...*geojson.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range fs {
		fc.AddFeature(f)
	}
	return fc
}

func TestAtRanksHandlesFirst(t *testing.T) {
	ix := New()
	poly := feature("poly", geojson.NewPolygonGeometry([][][]float64{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}))
	line := feature("line", geojson.NewLineStringGeometry([][]float64{{0, 0}, {10, 10}}))
	ix.Set(surface.Unselected, collection(poly))
	ix.Set(surface.Selected, collection(line,
		handle.Handle{Parent: "line", Path: dgeom.Path{0}, Role: handle.Vertex, Coord: [2]float64{0, 0}}.Feature(),
		handle.Handle{Parent: "line", Path: dgeom.Path{1}, Role: handle.Midpoint, Coord: [2]float64{5, 5}}.Feature(),
	))
	if n := ix.Len(); n != 4 {
		t.Fatalf("Len() = %d, want 4", n)
	}

	hits := ix.At(identity{}, surface.ScreenPoint{X: 5, Y: 5}, surface.QueryOptions{Radius: 1})
	if len(hits) != 3 {
		t.Fatalf("At(5,5) = %+v, want midpoint, line, polygon", hits)
	}
	if hits[0].Meta != surface.MetaMidpoint || hits[0].Parent != "line" || !hits[0].Path.Equal(dgeom.Path{1}) {
		t.Errorf("hits[0] = %+v", hits[0])
	}
	if hits[1].FeatureID != "line" || hits[2].FeatureID != "poly" {
		t.Errorf("hits = %+v", hits)
	}
	if hits[0].Owner() != "line" || hits[2].Owner() != "poly" {
		t.Error("Owner() mismatch")
	}
}

func TestAtRadiusAndLayers(t *testing.T) {
	ix := New()
	ix.Set(surface.Unselected, collection(feature("p", geojson.NewPointGeometry([]float64{3, 3}))))

	if hits := ix.At(identity{}, surface.ScreenPoint{X: 5, Y: 3}, surface.QueryOptions{Radius: 1}); len(hits) != 0 {
		t.Errorf("At outside radius = %+v", hits)
	}
	if hits := ix.At(identity{}, surface.ScreenPoint{X: 5, Y: 3}, surface.QueryOptions{Radius: 2}); len(hits) != 1 {
		t.Errorf("At inside radius = %+v", hits)
	}
	// negative radius is treated as zero
	if hits := ix.At(identity{}, surface.ScreenPoint{X: 3, Y: 3}, surface.QueryOptions{Radius: -4}); len(hits) != 1 {
		t.Errorf("At with negative radius = %+v", hits)
	}
	opts := surface.QueryOptions{Radius: 2, Layers: []surface.Batch{surface.Selected}}
	if hits := ix.At(identity{}, surface.ScreenPoint{X: 3, Y: 3}, opts); len(hits) != 0 {
		t.Errorf("At with layer filter = %+v", hits)
	}

	ix.Set(surface.Unselected, nil)
	if hits := ix.At(identity{}, surface.ScreenPoint{X: 3, Y: 3}, surface.QueryOptions{Radius: 2}); len(hits) != 0 {
		t.Errorf("At after clearing = %+v", hits)
	}
}

func TestPolygonHole(t *testing.T) {
	ix := New()
	g := geojson.NewPolygonGeometry([][][]float64{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	})
	ix.Set(surface.Unselected, collection(feature("donut", g)))
	if hits := ix.At(identity{}, surface.ScreenPoint{X: 2, Y: 2}, surface.QueryOptions{}); len(hits) != 1 {
		t.Errorf("At(2,2) = %+v, want the polygon", hits)
	}
	if hits := ix.At(identity{}, surface.ScreenPoint{X: 5, Y: 5}, surface.QueryOptions{}); len(hits) != 0 {
		t.Errorf("At(5,5) = %+v, want nothing inside the hole", hits)
	}
}

func TestIn(t *testing.T) {
	ix := New()
	ix.Set(surface.Unselected, collection(
		feature("a", geojson.NewPointGeometry([]float64{1, 1})),
		feature("b", geojson.NewLineStringGeometry([][]float64{{5, 5}, {8, 8}})),
		feature("c", geojson.NewPointGeometry([]float64{20, 20})),
	))
	hits := ix.In(identity{}, surface.ScreenPoint{X: 6, Y: 6}, surface.ScreenPoint{X: 0, Y: 0}, surface.QueryOptions{})
	if len(hits) != 2 {
		t.Fatalf("In = %+v, want a and b", hits)
	}
	if hits[0].FeatureID != "a" || hits[1].FeatureID != "b" {
		t.Errorf("In order = %+v", hits)
	}
}
