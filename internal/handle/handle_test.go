package handle

import (
	"testing"

	"geodraw/internal/geom"
)

func mustParse(t *testing.T, s string) geom.Feature {
	t.Helper()
	fs, err := geom.ParseGeoJSON([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return fs[0]
}

func TestSynthesizeLineString(t *testing.T) {
	f := mustParse(t, `{"type":"LineString","coordinates":[[0,0],[10,0],[10,10]]}`)
	hs := Synthesize(f, Options{Midpoints: true, Selected: []geom.Path{{1}}})
	if len(hs) != 5 {
		t.Fatalf("len = %d, want 5", len(hs))
	}
	var verts, mids int
	for _, h := range hs {
		if h.Parent != f.ID() {
			t.Errorf("Parent = %q, want %q", h.Parent, f.ID())
		}
		switch h.Role {
		case Vertex:
			verts++
			if h.Active != h.Path.Equal(geom.Path{1}) {
				t.Errorf("vertex %v Active = %v", h.Path, h.Active)
			}
		case Midpoint:
			mids++
		}
	}
	if verts != 3 || mids != 2 {
		t.Errorf("verts=%d mids=%d, want 3 and 2", verts, mids)
	}
	m := hs[3]
	if !m.Path.Equal(geom.Path{1}) || m.Coord != [2]float64{5, 0} {
		t.Errorf("first midpoint = %+v", m)
	}
}

func TestMidpointsPolygonRings(t *testing.T) {
	f := mustParse(t, `{"type":"Polygon","coordinates":[
		[[0,0],[4,0],[4,4],[0,4],[0,0]],
		[[1,1],[2,1],[2,2],[1,1]]]}`)
	ms := Midpoints(f)
	// outer: 4 segments including the closing one, hole: 3
	if len(ms) != 7 {
		t.Fatalf("len = %d, want 7", len(ms))
	}
	closing := ms[3]
	if !closing.Path.Equal(geom.Path{0, 4}) || closing.Coord != [2]float64{0, 2} {
		t.Errorf("closing midpoint = %+v", closing)
	}
	if ms[4].Path[0] != 1 {
		t.Errorf("hole midpoint path = %v, want ring 1", ms[4].Path)
	}
}

func TestMidpointsPointAndMulti(t *testing.T) {
	p := mustParse(t, `{"type":"Point","coordinates":[1,1]}`)
	if ms := Midpoints(p); len(ms) != 0 {
		t.Errorf("point midpoints = %v, want none", ms)
	}
	if hs := Synthesize(p, Options{Midpoints: true}); len(hs) != 1 {
		t.Errorf("point handles = %d, want 1", len(hs))
	}
	mp := mustParse(t, `{"type":"MultiPoint","coordinates":[[1,1],[2,2]]}`)
	if ms := Midpoints(mp); len(ms) != 0 {
		t.Errorf("multipoint midpoints = %v, want none", ms)
	}
	ml := mustParse(t, `{"type":"MultiLineString","coordinates":[[[0,0],[2,2]],[[5,5],[7,7]]]}`)
	ms := Midpoints(ml)
	if len(ms) != 2 {
		t.Fatalf("len = %d, want 2", len(ms))
	}
	if !ms[1].Path.Equal(geom.Path{1, 1}) || ms[1].Coord != [2]float64{6, 6} {
		t.Errorf("second part midpoint = %+v", ms[1])
	}
}

func TestMidpointInsertsAtPath(t *testing.T) {
	f := mustParse(t, `{"type":"LineString","coordinates":[[0,0],[10,10]]}`)
	m := Midpoints(f)[0]
	f.AddCoordinate(m.Path, m.Coord[0], m.Coord[1])
	if c, _ := f.Coordinate(geom.Path{1}); c != [2]float64{5, 5} {
		t.Errorf("Coordinate(1) = %v, want [5 5]", c)
	}
}

func TestFeatureRoundTrip(t *testing.T) {
	h := Handle{Parent: "abc", Path: geom.Path{0, 3}, Role: Midpoint, Coord: [2]float64{1, 2}, Active: true}
	back, ok := FromFeature(h.Feature())
	if !ok {
		t.Fatal("FromFeature failed")
	}
	if back.Parent != h.Parent || !back.Path.Equal(h.Path) || back.Role != h.Role || back.Coord != h.Coord || !back.Active {
		t.Errorf("FromFeature = %+v, want %+v", back, h)
	}
	plain := h.Feature()
	plain.SetProperty(PropMeta, "feature")
	if _, ok := FromFeature(plain); ok {
		t.Error("FromFeature accepted a non-handle feature")
	}
}
