package geom

import geojson "github.com/paulmach/go.geojson"

// LineString is an ordered coordinate sequence addressed by [i].
type LineString struct {
	base
	coords [][2]float64
}

func (l *LineString) Kind() Kind { return KindLineString }

// Len returns the number of coordinates.
func (l *LineString) Len() int { return len(l.coords) }

func (l *LineString) Coordinate(p Path) ([2]float64, bool) {
	if len(p) != 1 || p[0] < 0 || p[0] >= len(l.coords) {
		return [2]float64{}, false
	}
	return l.coords[p[0]], true
}

func (l *LineString) UpdateCoordinate(p Path, lng, lat float64) {
	if len(p) != 1 {
		return
	}
	l.coords = updateSeq(l.coords, p[0], lng, lat)
}

func (l *LineString) AddCoordinate(p Path, lng, lat float64) {
	if len(p) != 1 || p[0] < 0 || p[0] > len(l.coords) {
		return
	}
	l.coords = insertAt(l.coords, p[0], [2]float64{lng, lat})
}

func (l *LineString) RemoveCoordinate(p Path) {
	if len(p) != 1 || p[0] < 0 || p[0] >= len(l.coords) {
		return
	}
	l.coords = removeAt(l.coords, p[0])
}

func (l *LineString) Paths() []Path {
	out := make([]Path, len(l.coords))
	for i := range l.coords {
		out[i] = Path{i}
	}
	return out
}

// IsValid needs at least two distinct coordinates.
func (l *LineString) IsValid() bool { return distinct(l.coords) >= 2 }

func (l *LineString) ToGeometry() *geojson.Geometry {
	return geojson.NewLineStringGeometry(toPositions(l.coords))
}

// updateSeq sets cs[i], appending when i == len(cs).
func updateSeq(cs [][2]float64, i int, lng, lat float64) [][2]float64 {
	switch {
	case i < 0 || i > len(cs):
		return cs
	case i == len(cs):
		return append(cs, [2]float64{lng, lat})
	}
	cs[i] = [2]float64{lng, lat}
	return cs
}
