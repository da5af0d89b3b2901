package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	table "github.com/charmbracelet/bubbles/table"
	geojson "github.com/paulmach/go.geojson"
)

// refreshAttrs rebuilds the table from the committed features.
func (m *Model) refreshAttrs() {
	cols, rows := buildAttrs(m.d.GetAll())
	// an empty table panics on render, so fall back to the map
	if len(rows) == 0 {
		m.showAttrs = false
		m.status = "no features to list"
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	maxColW := 24
	for _, c := range cols {
		tcols = append(tcols, table.Column{Title: c, Width: min(len(c)+2, maxColW)})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := make([]string, 0, len(tcols))
		row = append(row, fmt.Sprintf("%d", i+1))
		row = append(row, r...)
		trows = append(trows, table.Row(row))
	}
	// clear rows first so the column count never disagrees mid-update
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

// buildAttrs lists id, geometry type and the union of property keys.
func buildAttrs(fc *geojson.FeatureCollection) ([]string, [][]string) {
	var keys []string
	seen := map[string]bool{}
	for _, gf := range fc.Features {
		for k := range gf.Properties {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	cols := append([]string{"id", "type", "vertices"}, keys...)
	rows := make([][]string, 0, len(fc.Features))
	for _, gf := range fc.Features {
		id, _ := gf.ID.(string)
		vals := []string{shortID(id), string(gf.Geometry.Type), fmt.Sprintf("%d", vertexCount(gf.Geometry))}
		for _, k := range keys {
			vals = append(vals, cellValue(gf.Properties[k]))
		}
		rows = append(rows, vals)
	}
	return cols, rows
}

func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%v", t)
	}
	bs, _ := json.Marshal(v)
	return string(bs)
}

func vertexCount(g *geojson.Geometry) int {
	switch g.Type {
	case geojson.GeometryPoint:
		return 1
	case geojson.GeometryMultiPoint:
		return len(g.MultiPoint)
	case geojson.GeometryLineString:
		return len(g.LineString)
	case geojson.GeometryMultiLineString:
		n := 0
		for _, l := range g.MultiLineString {
			n += len(l)
		}
		return n
	case geojson.GeometryPolygon:
		return ringVertices(g.Polygon)
	case geojson.GeometryMultiPolygon:
		n := 0
		for _, p := range g.MultiPolygon {
			n += ringVertices(p)
		}
		return n
	}
	return 0
}

// ringVertices does not count the closing coordinate of each ring.
func ringVertices(rings [][][]float64) int {
	n := 0
	for _, r := range rings {
		n += max(0, len(r)-1)
	}
	return n
}

// inspect summarizes the selection, or the whole drawing when nothing is
// selected.
func (m Model) inspect() string {
	fc := m.d.GetAll()
	b := m.cv.bbox
	meta := []string{
		fmt.Sprintf("mode: %s", m.d.Mode()),
		fmt.Sprintf("features: %d", len(fc.Features)),
		fmt.Sprintf("view: [%.5f, %.5f, %.5f, %.5f]", b.MinX, b.MinY, b.MaxX, b.MaxY),
	}
	if m.selPath != "" {
		meta = append(meta, "file: "+m.selPath)
	}
	ids := m.d.SelectedIDs()
	if len(ids) == 0 {
		meta = append(meta, "selected: none")
	}
	for _, id := range ids {
		gf := m.d.Get(id)
		if gf == nil {
			continue
		}
		meta = append(meta, fmt.Sprintf("%s  %s  %d vertices", shortID(id), gf.Geometry.Type, vertexCount(gf.Geometry)))
	}
	if m.hovering {
		meta = append(meta, fmt.Sprintf("cursor: lon=%.6f lat=%.6f", m.hoverLon, m.hoverLat))
	}
	return strings.Join(meta, "\n")
}
