package tui

import (
	"strings"

	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/handle"
	"geodraw/internal/surface"
)

// handleMark is a vertex or midpoint to overlay on the braille layers.
type handleMark struct {
	cx, cy int
	role   handle.Role
	active bool
}

// renderAsciiMap composes the batches last sent by the editor. Unselected
// features use the base color; selected and in-progress ones the accent.
func (m Model) renderAsciiMap(w, h int) string {
	base := newBrailleBuf(w, h)
	hi := newBrailleBuf(w, h)
	var marks []handleMark

	for _, b := range surface.Batches {
		fc := m.cv.data[b]
		if fc == nil {
			continue
		}
		buf := hi
		if b == surface.Unselected {
			buf = base
		}
		for _, gf := range fc.Features {
			if hd, ok := handle.FromFeature(gf); ok {
				cx, cy := m.cv.cell(hd.Coord[0], hd.Coord[1])
				marks = append(marks, handleMark{cx: cx, cy: cy, role: hd.Role, active: hd.Active})
				continue
			}
			m.drawGeometry(buf, gf.Geometry)
		}
	}

	grid := make([][]string, h)
	for y := range grid {
		row := make([]string, w)
		for x := range row {
			switch {
			case hi.mask(x, y) != 0:
				row[x] = selectedStyle.Render(string(glyph(hi.mask(x, y) | base.mask(x, y))))
			case base.mask(x, y) != 0:
				row[x] = string(glyph(base.mask(x, y)))
			default:
				row[x] = " "
			}
		}
		grid[y] = row
	}

	put := func(cx, cy int, s string) {
		if cy >= 0 && cy < h && cx >= 0 && cx < w {
			grid[cy][cx] = s
		}
	}
	// midpoints first so a vertex sharing their cell wins
	for _, mk := range marks {
		if mk.role == handle.Midpoint {
			put(mk.cx, mk.cy, handleStyle.Render("·"))
		}
	}
	for _, mk := range marks {
		switch {
		case mk.role != handle.Vertex:
		case mk.active:
			put(mk.cx, mk.cy, activeStyle.Render("●"))
		default:
			put(mk.cx, mk.cy, handleStyle.Render("•"))
		}
	}
	// hover highlight: an orange circle on the handle or point under the pointer
	if m.hovering && m.hoverMark {
		put(m.hoverCellX, m.hoverCellY, hoverStyle.Render("◯"))
	}

	lines := make([]string, h)
	for y, row := range grid {
		lines[y] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) drawGeometry(buf *brailleBuf, g *geojson.Geometry) {
	if g == nil {
		return
	}
	path := func(cs [][]float64) [][2]int {
		out := make([][2]int, 0, len(cs))
		for _, c := range cs {
			if len(c) < 2 {
				continue
			}
			mx, my := m.cv.micro(c[0], c[1])
			out = append(out, [2]int{mx, my})
		}
		return out
	}
	polygon := func(rings [][][]float64) {
		var rs [][][2]int
		for _, r := range rings {
			if p := path(r); len(p) >= 3 {
				rs = append(rs, p)
			}
		}
		if m.showFill {
			buf.fillRings(rs)
		}
		for _, r := range rs {
			buf.drawPath(r, true)
		}
	}
	switch g.Type {
	case geojson.GeometryPoint:
		if m.showPoints && len(g.Point) >= 2 {
			buf.dot(m.cv.micro(g.Point[0], g.Point[1]))
		}
	case geojson.GeometryMultiPoint:
		if m.showPoints {
			for _, p := range path(g.MultiPoint) {
				buf.dot(p[0], p[1])
			}
		}
	case geojson.GeometryLineString:
		if m.showLines {
			buf.drawPath(path(g.LineString), false)
		}
	case geojson.GeometryMultiLineString:
		if m.showLines {
			for _, ls := range g.MultiLineString {
				buf.drawPath(path(ls), false)
			}
		}
	case geojson.GeometryPolygon:
		if m.showPolys {
			polygon(g.Polygon)
		}
	case geojson.GeometryMultiPolygon:
		if m.showPolys {
			for _, p := range g.MultiPolygon {
				polygon(p)
			}
		}
	}
}
