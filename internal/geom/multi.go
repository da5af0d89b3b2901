package geom

import geojson "github.com/paulmach/go.geojson"

// Multi groups parts of one single kind. Paths carry the part index first.
type Multi struct {
	base
	kind  Kind
	parts []Feature
}

func (m *Multi) Kind() Kind { return m.kind }

// Parts returns the number of parts.
func (m *Multi) Parts() int { return len(m.parts) }

// Part returns part i, or nil when out of range.
func (m *Multi) Part(i int) Feature {
	if i < 0 || i >= len(m.parts) {
		return nil
	}
	return m.parts[i]
}

func (m *Multi) partKind() Kind {
	switch m.kind {
	case KindMultiPoint:
		return KindPoint
	case KindMultiLineString:
		return KindLineString
	}
	return KindPolygon
}

// part resolves the leading index of p. An index one past the last part
// is only resolved when create is set.
func (m *Multi) part(p Path, create bool) (Feature, Path, bool) {
	if len(p) == 0 || p[0] < 0 || p[0] > len(m.parts) {
		return nil, nil, false
	}
	if p[0] == len(m.parts) {
		if !create {
			return nil, nil, false
		}
		f, _ := newWithID(m.partKind(), "-")
		m.parts = append(m.parts, f)
	}
	return m.parts[p[0]], p[1:], true
}

// grow applies fn to the part addressed by p, dropping a part it created
// when fn left it without coordinates.
func (m *Multi) grow(p Path, fn func(f Feature, rest Path)) {
	n := len(m.parts)
	f, rest, ok := m.part(p, true)
	if !ok {
		return
	}
	fn(f, rest)
	if len(m.parts) > n && len(f.Paths()) == 0 {
		m.parts = m.parts[:n]
	}
}

func (m *Multi) Coordinate(p Path) ([2]float64, bool) {
	f, rest, ok := m.part(p, false)
	if !ok {
		return [2]float64{}, false
	}
	return f.Coordinate(rest)
}

func (m *Multi) UpdateCoordinate(p Path, lng, lat float64) {
	m.grow(p, func(f Feature, rest Path) { f.UpdateCoordinate(rest, lng, lat) })
}

func (m *Multi) AddCoordinate(p Path, lng, lat float64) {
	m.grow(p, func(f Feature, rest Path) { f.AddCoordinate(rest, lng, lat) })
}

func (m *Multi) RemoveCoordinate(p Path) {
	f, rest, ok := m.part(p, false)
	if !ok {
		return
	}
	f.RemoveCoordinate(rest)
	if len(f.Paths()) == 0 {
		m.parts = append(m.parts[:p[0]], m.parts[p[0]+1:]...)
	}
}

func (m *Multi) Paths() []Path {
	var out []Path
	for i, f := range m.parts {
		for _, sub := range f.Paths() {
			out = append(out, append(Path{i}, sub...))
		}
	}
	return out
}

func (m *Multi) IsValid() bool {
	if len(m.parts) == 0 {
		return false
	}
	for _, f := range m.parts {
		if !f.IsValid() {
			return false
		}
	}
	return true
}

func (m *Multi) ToGeometry() *geojson.Geometry {
	switch m.kind {
	case KindMultiPoint:
		pts := make([][]float64, 0, len(m.parts))
		for _, f := range m.parts {
			if c, ok := f.Coordinate(nil); ok {
				pts = append(pts, []float64{c[0], c[1]})
			}
		}
		return geojson.NewMultiPointGeometry(pts...)
	case KindMultiLineString:
		lines := make([][][]float64, 0, len(m.parts))
		for _, f := range m.parts {
			lines = append(lines, toPositions(f.(*LineString).coords))
		}
		return geojson.NewMultiLineStringGeometry(lines...)
	}
	polys := make([][][][]float64, 0, len(m.parts))
	for _, f := range m.parts {
		polys = append(polys, closeRings(f.(*Polygon).rings))
	}
	return geojson.NewMultiPolygonGeometry(polys...)
}
