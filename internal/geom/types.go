package geom

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// World covers the whole lon/lat range.
var World = BBox{MinX: -180, MinY: -90, MaxX: 180, MaxY: 90}

// Valid reports whether the box has a positive area.
func (b BBox) Valid() bool { return b.MaxX > b.MinX && b.MaxY > b.MinY }

// BBoxOf returns the extent of every coordinate in fs.
func BBoxOf(fs []Feature) (BBox, bool) {
	var bb BBox
	n := 0
	for _, f := range fs {
		for _, p := range f.Paths() {
			c, ok := f.Coordinate(p)
			if !ok {
				continue
			}
			if n == 0 {
				bb = BBox{MinX: c[0], MinY: c[1], MaxX: c[0], MaxY: c[1]}
			} else {
				bb.MinX = min(bb.MinX, c[0])
				bb.MinY = min(bb.MinY, c[1])
				bb.MaxX = max(bb.MaxX, c[0])
				bb.MaxY = max(bb.MaxY, c[1])
			}
			n++
		}
	}
	return bb, n > 0
}

// Load reads any supported file by extension.
func Load(path string) ([]Feature, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".geojson", ".json":
		return LoadGeo(path)
	case ".csv":
		return LoadCSV(path)
	case ".kml":
		return LoadKML(path)
	case ".wkt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseWKT(string(data))
	}
	return nil, fmt.Errorf("unsupported file: %s", ext)
}
