package geom

import geojson "github.com/paulmach/go.geojson"

// Point holds at most one coordinate, addressed by the empty path or [0].
type Point struct {
	base
	coord [2]float64
	set   bool
}

func (p *Point) Kind() Kind { return KindPoint }

func pointIndex(path Path) bool {
	return len(path) == 0 || (len(path) == 1 && path[0] == 0)
}

func (p *Point) Coordinate(path Path) ([2]float64, bool) {
	if !p.set || !pointIndex(path) {
		return [2]float64{}, false
	}
	return p.coord, true
}

func (p *Point) UpdateCoordinate(path Path, lng, lat float64) {
	if !pointIndex(path) {
		return
	}
	p.coord = [2]float64{lng, lat}
	p.set = true
}

func (p *Point) AddCoordinate(path Path, lng, lat float64) {
	if p.set {
		return
	}
	p.UpdateCoordinate(path, lng, lat)
}

func (p *Point) RemoveCoordinate(path Path) {
	if !pointIndex(path) {
		return
	}
	p.coord = [2]float64{}
	p.set = false
}

func (p *Point) Paths() []Path {
	if !p.set {
		return nil
	}
	return []Path{{0}}
}

func (p *Point) IsValid() bool { return p.set }

func (p *Point) ToGeometry() *geojson.Geometry {
	if !p.set {
		return geojson.NewPointGeometry([]float64{})
	}
	return geojson.NewPointGeometry([]float64{p.coord[0], p.coord[1]})
}
