package tui

import "sort"

type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, m: m}
}

// dots maps a micro position inside a cell to its braille bit.
var dots = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= dots[mx%2][my%4]
}

// dot marks a 2x2 block so single points stay visible.
func (b *brailleBuf) dot(mx, my int) {
	b.setPixel(mx, my)
	b.setPixel(mx+1, my)
	b.setPixel(mx, my+1)
	b.setPixel(mx+1, my+1)
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawPath strokes consecutive micro points, closing the path when asked.
func (b *brailleBuf) drawPath(pts [][2]int, closed bool) {
	for i := 0; i+1 < len(pts); i++ {
		b.drawLineMicro(pts[i][0], pts[i][1], pts[i+1][0], pts[i+1][1])
	}
	if closed && len(pts) > 2 {
		last := pts[len(pts)-1]
		b.drawLineMicro(last[0], last[1], pts[0][0], pts[0][1])
	}
}

// fillRings fills with the even-odd rule across every ring, so holes stay
// empty.
func (b *brailleBuf) fillRings(rings [][][2]int) {
	hMic := b.h * 4
	for yMic := 0; yMic < hMic; yMic++ {
		var xs []int
		for _, ring := range rings {
			for i := range ring {
				a, c := ring[i], ring[(i+1)%len(ring)]
				if a[1] == c[1] {
					continue
				}
				y0, y1 := a[1], c[1]
				if (yMic >= y0 && yMic < y1) || (yMic >= y1 && yMic < y0) {
					t := float64(yMic-y0) / float64(y1-y0)
					xs = append(xs, int(float64(a[0])+t*float64(c[0]-a[0])))
				}
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for xMic := max(0, xs[i]); xMic <= xs[i+1]; xMic++ {
				b.setPixel(xMic, yMic)
			}
		}
	}
}

func (b *brailleBuf) mask(cx, cy int) uint8 {
	if cy < 0 || cy >= b.h || cx < 0 || cx >= b.w {
		return 0
	}
	return b.m[cy][cx]
}

func glyph(mask uint8) rune {
	if mask == 0 {
		return ' '
	}
	return rune(0x2800 + int(mask))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
