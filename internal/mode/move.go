package mode

import (
	"geodraw/internal/geom"
	"geodraw/internal/surface"
)

type coordAt struct {
	path geom.Path
	c    [2]float64
}

// snapshot records every coordinate of f so a drag can be applied from the
// drag origin instead of accumulating per-event error.
func snapshot(f geom.Feature) []coordAt {
	var out []coordAt
	for _, p := range f.Paths() {
		if c, ok := f.Coordinate(p); ok {
			out = append(out, coordAt{path: p, c: c})
		}
	}
	return out
}

// translate moves every recorded coordinate by the screen delta (dx, dy).
// Coordinates go through the projection one by one so the shape keeps its
// on-screen form.
func translate(proj surface.Projector, f geom.Feature, snap []coordAt, dx, dy float64) {
	for _, ca := range snap {
		s := proj.Project(surface.LngLat{Lng: ca.c[0], Lat: ca.c[1]})
		ll := proj.Unproject(surface.ScreenPoint{X: s.X + dx, Y: s.Y + dy})
		f.UpdateCoordinate(ca.path, ll.Lng, ll.Lat)
	}
}

func delta(from, to surface.ScreenPoint) (float64, float64) {
	return to.X - from.X, to.Y - from.Y
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
