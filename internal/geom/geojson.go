package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	geojson "github.com/paulmach/go.geojson"
)

// FromGeometry builds a permanent feature with a fresh id from g.
func FromGeometry(g *geojson.Geometry) (Feature, error) {
	return fromGeometry(g, "")
}

// FromFeature builds a permanent feature from gf, keeping a string id and
// the property bag when present.
func FromFeature(gf *geojson.Feature) (Feature, error) {
	if gf == nil || gf.Geometry == nil {
		return nil, errors.New("geom: feature has no geometry")
	}
	id, _ := gf.ID.(string)
	f, err := fromGeometry(gf.Geometry, id)
	if err != nil {
		return nil, err
	}
	for k, v := range gf.Properties {
		f.SetProperty(k, v)
	}
	return f, nil
}

func fromGeometry(g *geojson.Geometry, id string) (Feature, error) {
	if g == nil {
		return nil, errors.New("geom: nil geometry")
	}
	var f Feature
	switch g.Type {
	case geojson.GeometryPoint:
		p := &Point{base: newBase(id)}
		if len(g.Point) >= 2 {
			p.coord = [2]float64{g.Point[0], g.Point[1]}
			p.set = true
		}
		f = p
	case geojson.GeometryLineString:
		f = &LineString{base: newBase(id), coords: fromPositions(g.LineString)}
	case geojson.GeometryPolygon:
		f = &Polygon{base: newBase(id), rings: openRings(g.Polygon)}
	case geojson.GeometryMultiPoint:
		m := &Multi{base: newBase(id), kind: KindMultiPoint}
		for _, c := range fromPositions(g.MultiPoint) {
			m.parts = append(m.parts, &Point{base: newBase("-"), coord: c, set: true})
		}
		f = m
	case geojson.GeometryMultiLineString:
		m := &Multi{base: newBase(id), kind: KindMultiLineString}
		for _, ls := range g.MultiLineString {
			m.parts = append(m.parts, &LineString{base: newBase("-"), coords: fromPositions(ls)})
		}
		f = m
	case geojson.GeometryMultiPolygon:
		m := &Multi{base: newBase(id), kind: KindMultiPolygon}
		for _, poly := range g.MultiPolygon {
			m.parts = append(m.parts, &Polygon{base: newBase("-"), rings: openRings(poly)})
		}
		f = m
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, g.Type)
	}
	f.SetPermanent(true)
	return f, nil
}

// ParseGeoJSON accepts a FeatureCollection, a Feature or a bare geometry.
// Geometry collections are flattened; unsupported members are skipped.
func ParseGeoJSON(data []byte) ([]Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var gfs []*geojson.Feature
	switch head.Type {
	case "":
		return nil, errors.New("invalid geojson: missing type")
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		gfs = fc.Features
	case "Feature":
		gf, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		gfs = []*geojson.Feature{gf}
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		gfs = []*geojson.Feature{geojson.NewFeature(g)}
	}
	var out []Feature
	for _, gf := range gfs {
		if gf.Geometry == nil {
			continue
		}
		if gf.Geometry.Type == geojson.GeometryCollection {
			for _, g := range gf.Geometry.Geometries {
				if f, err := FromGeometry(g); err == nil {
					out = append(out, f)
				}
			}
			continue
		}
		f, err := FromFeature(gf)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New("no geometries found")
	}
	return out, nil
}

// LoadGeo reads a GeoJSON file.
func LoadGeo(path string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseGeoJSON(data)
}
