package geom

import geojson "github.com/paulmach/go.geojson"

// Polygon stores its rings open; the closing coordinate is added on export
// and stripped on import. The first ring is the outer boundary.
type Polygon struct {
	base
	rings [][][2]float64
}

func (p *Polygon) Kind() Kind { return KindPolygon }

// Rings returns the number of rings.
func (p *Polygon) Rings() int { return len(p.rings) }

// RingLen returns the number of stored (open) coordinates in ring r.
func (p *Polygon) RingLen(r int) int {
	if r < 0 || r >= len(p.rings) {
		return 0
	}
	return len(p.rings[r])
}

func (p *Polygon) Coordinate(path Path) ([2]float64, bool) {
	if len(path) != 2 || path[0] < 0 || path[0] >= len(p.rings) {
		return [2]float64{}, false
	}
	ring := p.rings[path[0]]
	if path[1] < 0 || path[1] >= len(ring) {
		return [2]float64{}, false
	}
	return ring[path[1]], true
}

// ring returns the ring index for path, opening a new ring when the path
// points one past the last ring at vertex 0.
func (p *Polygon) ring(path Path) (int, bool) {
	if len(path) != 2 || path[0] < 0 || path[0] > len(p.rings) {
		return 0, false
	}
	if path[0] == len(p.rings) {
		if path[1] != 0 {
			return 0, false
		}
		p.rings = append(p.rings, nil)
	}
	return path[0], true
}

func (p *Polygon) UpdateCoordinate(path Path, lng, lat float64) {
	r, ok := p.ring(path)
	if !ok {
		return
	}
	p.rings[r] = updateSeq(p.rings[r], path[1], lng, lat)
}

func (p *Polygon) AddCoordinate(path Path, lng, lat float64) {
	r, ok := p.ring(path)
	if !ok || path[1] < 0 || path[1] > len(p.rings[r]) {
		return
	}
	p.rings[r] = insertAt(p.rings[r], path[1], [2]float64{lng, lat})
}

func (p *Polygon) RemoveCoordinate(path Path) {
	if len(path) != 2 || path[0] < 0 || path[0] >= len(p.rings) {
		return
	}
	r, i := path[0], path[1]
	if i < 0 || i >= len(p.rings[r]) {
		return
	}
	p.rings[r] = removeAt(p.rings[r], i)
	// an emptied hole disappears; the outer ring stays even when empty
	if r > 0 && len(p.rings[r]) == 0 {
		p.rings = append(p.rings[:r], p.rings[r+1:]...)
	}
}

func (p *Polygon) Paths() []Path {
	var out []Path
	for r, ring := range p.rings {
		for i := range ring {
			out = append(out, Path{r, i})
		}
	}
	return out
}

// IsValid needs every ring to carry at least three coordinates, which is
// four once closed.
func (p *Polygon) IsValid() bool {
	if len(p.rings) == 0 {
		return false
	}
	for _, ring := range p.rings {
		if len(ring) < 3 {
			return false
		}
	}
	return true
}

func (p *Polygon) ToGeometry() *geojson.Geometry {
	return geojson.NewPolygonGeometry(closeRings(p.rings))
}

func closeRings(rings [][][2]float64) [][][]float64 {
	out := make([][][]float64, len(rings))
	for i, ring := range rings {
		pos := toPositions(ring)
		if len(ring) > 0 {
			pos = append(pos, []float64{ring[0][0], ring[0][1]})
		}
		out[i] = pos
	}
	return out
}

func openRings(rings [][][]float64) [][][2]float64 {
	out := make([][][2]float64, 0, len(rings))
	for _, ring := range rings {
		cs := fromPositions(ring)
		if len(cs) > 1 && cs[0] == cs[len(cs)-1] {
			cs = cs[:len(cs)-1]
		}
		out = append(out, cs)
	}
	if len(out) == 0 {
		out = append(out, nil)
	}
	return out
}
