package geom

import (
	"errors"
	"strconv"
	"strings"
)

// ParseWKT parses a subset of WKT into permanent features.
// Supported: POINT, MULTIPOINT, LINESTRING, POLYGON (with holes).
func ParseWKT(wkt string) ([]Feature, error) {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return nil, errors.New("empty wkt")
	}
	up := strings.ToUpper(s)
	parseTuples := func(block string) [][]float64 {
		var out [][]float64
		block = strings.Trim(strings.TrimSpace(block), "()")
		for _, tup := range strings.Split(block, ",") {
			parts := strings.Fields(strings.Trim(strings.TrimSpace(tup), "()"))
			if len(parts) < 2 {
				continue
			}
			x, e1 := strconv.ParseFloat(parts[0], 64)
			y, e2 := strconv.ParseFloat(parts[1], 64)
			if e1 != nil || e2 != nil {
				continue
			}
			out = append(out, []float64{x, y})
		}
		return out
	}
	body := func(open, close string) (string, bool) {
		i := strings.Index(s, open)
		j := strings.LastIndex(s, close)
		if i < 0 || j <= i {
			return "", false
		}
		return s[i+len(open) : j], true
	}
	var f Feature
	switch {
	// MULTIPOINT must be checked before POINT
	case strings.HasPrefix(up, "MULTIPOINT"):
		b, ok := body("(", ")")
		if !ok {
			return nil, errors.New("wkt multipoint: invalid")
		}
		m := &Multi{base: newBase(""), kind: KindMultiPoint}
		for _, c := range fromPositions(parseTuples(b)) {
			m.parts = append(m.parts, &Point{base: newBase("-"), coord: c, set: true})
		}
		f = m
	case strings.HasPrefix(up, "POINT"):
		b, ok := body("(", ")")
		if !ok {
			return nil, errors.New("wkt point: invalid")
		}
		pts := fromPositions(parseTuples(b))
		if len(pts) == 0 {
			return nil, errors.New("wkt: no coordinates parsed")
		}
		f = &Point{base: newBase(""), coord: pts[0], set: true}
	case strings.HasPrefix(up, "LINESTRING"):
		b, ok := body("(", ")")
		if !ok {
			return nil, errors.New("wkt linestring: invalid")
		}
		f = &LineString{base: newBase(""), coords: fromPositions(parseTuples(b))}
	case strings.HasPrefix(up, "POLYGON"):
		b, ok := body("((", "))")
		if !ok {
			return nil, errors.New("wkt polygon: invalid")
		}
		// normalize spaces around ring separators
		norm := strings.ReplaceAll(b, "), (", "),(")
		norm = strings.ReplaceAll(norm, ") , (", "),(")
		var rings [][][]float64
		for _, rp := range strings.Split(norm, "),(") {
			rings = append(rings, parseTuples(rp))
		}
		f = &Polygon{base: newBase(""), rings: openRings(rings)}
	default:
		return nil, errors.New("unsupported wkt type")
	}
	if len(f.Paths()) == 0 {
		return nil, errors.New("wkt: no coordinates parsed")
	}
	f.SetPermanent(true)
	return []Feature{f}, nil
}
