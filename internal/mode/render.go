package mode

import (
	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/handle"
	"geodraw/internal/surface"
)

// annotate tags gf as a plain feature, active or not.
func annotate(gf *geojson.Feature, active bool) *geojson.Feature {
	gf.SetProperty(handle.PropMeta, surface.MetaFeature)
	gf.SetProperty(handle.PropActive, handle.Bool(active))
	return gf
}

// hasCoordinates reports whether gf has anything to draw.
func hasCoordinates(gf *geojson.Feature) bool {
	g := gf.Geometry
	if g == nil {
		return false
	}
	switch g.Type {
	case geojson.GeometryPoint:
		return len(g.Point) >= 2
	case geojson.GeometryLineString:
		return len(g.LineString) > 0
	case geojson.GeometryPolygon:
		return len(g.Polygon) > 0 && len(g.Polygon[0]) > 0
	case geojson.GeometryMultiPoint:
		return len(g.MultiPoint) > 0
	case geojson.GeometryMultiLineString:
		return len(g.MultiLineString) > 0
	case geojson.GeometryMultiPolygon:
		return len(g.MultiPolygon) > 0
	}
	return false
}
