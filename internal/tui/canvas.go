package tui

import (
	"math"

	geojson "github.com/paulmach/go.geojson"

	"geodraw/internal/geom"
	"geodraw/internal/hittest"
	"geodraw/internal/surface"
)

// canvas is the terminal map the editor draws on. Screen units are
// character cells; a cell's center sits on integer coordinates.
type canvas struct {
	bbox    geom.BBox
	zoom    float64
	offsetX int
	offsetY int
	w, h    int

	index *hittest.Index
	data  map[surface.Batch]*geojson.FeatureCollection

	subs  map[int]func(surface.Event)
	order []int
	next  int
}

func newCanvas() *canvas {
	return &canvas{
		bbox:  geom.World,
		zoom:  1.0,
		w:     80,
		h:     24,
		index: hittest.New(),
		data:  map[surface.Batch]*geojson.FeatureCollection{},
		subs:  map[int]func(surface.Event){},
	}
}

func (c *canvas) resize(w, h int) {
	c.w, c.h = max(8, w), max(4, h)
}

// fit frames fs, padding the extent so edge vertices stay clickable.
func (c *canvas) fit(fs []geom.Feature) bool {
	bb, ok := geom.BBoxOf(fs)
	if !ok {
		return false
	}
	padX := (bb.MaxX - bb.MinX) * 0.05
	padY := (bb.MaxY - bb.MinY) * 0.05
	if padX == 0 {
		padX = 0.5
	}
	if padY == 0 {
		padY = 0.5
	}
	c.bbox = geom.BBox{MinX: bb.MinX - padX, MinY: bb.MinY - padY, MaxX: bb.MaxX + padX, MaxY: bb.MaxY + padY}
	c.zoom = 1.0
	c.offsetX, c.offsetY = 0, 0
	return true
}

func (c *canvas) Project(ll surface.LngLat) surface.ScreenPoint {
	b := c.bbox
	nx := (ll.Lng - b.MinX) / (b.MaxX - b.MinX)
	ny := (ll.Lat - b.MinY) / (b.MaxY - b.MinY)
	// zoom around the center (0.5, 0.5)
	zx := 0.5 + (nx-0.5)*c.zoom
	zy := 0.5 + (ny-0.5)*c.zoom
	return surface.ScreenPoint{
		X: zx*float64(c.w-1) + float64(c.offsetX),
		Y: (1.0-zy)*float64(c.h-1) + float64(c.offsetY),
	}
}

func (c *canvas) Unproject(p surface.ScreenPoint) surface.LngLat {
	b := c.bbox
	zx := (p.X - float64(c.offsetX)) / float64(c.w-1)
	zy := 1.0 - (p.Y-float64(c.offsetY))/float64(c.h-1)
	nx := 0.5 + (zx-0.5)/c.zoom
	ny := 0.5 + (zy-0.5)/c.zoom
	return surface.LngLat{
		Lng: b.MinX + nx*(b.MaxX-b.MinX),
		Lat: b.MinY + ny*(b.MaxY-b.MinY),
	}
}

// micro maps lon/lat into the 2x4 braille grid of every cell.
func (c *canvas) micro(lon, lat float64) (int, int) {
	s := c.Project(surface.LngLat{Lng: lon, Lat: lat})
	return int(math.Floor((s.X + 0.5) * 2)), int(math.Floor((s.Y + 0.5) * 4))
}

// cell returns the character cell holding lon/lat.
func (c *canvas) cell(lon, lat float64) (int, int) {
	s := c.Project(surface.LngLat{Lng: lon, Lat: lat})
	return int(math.Floor(s.X + 0.5)), int(math.Floor(s.Y + 0.5))
}

func (c *canvas) QueryFeaturesAt(p surface.ScreenPoint, opts surface.QueryOptions) ([]surface.Hit, error) {
	return c.index.At(c, p, opts), nil
}

func (c *canvas) QueryFeaturesIn(a, b surface.ScreenPoint, opts surface.QueryOptions) ([]surface.Hit, error) {
	return c.index.In(c, a, b, opts), nil
}

func (c *canvas) SetData(b surface.Batch, fc *geojson.FeatureCollection) {
	c.data[b] = fc
	c.index.Set(b, fc)
}

func (c *canvas) HasSource() bool { return true }

func (c *canvas) Subscribe(fn func(surface.Event)) func() {
	c.next++
	id := c.next
	c.subs[id] = fn
	c.order = append(c.order, id)
	return func() { delete(c.subs, id) }
}

// fire delivers ev to the editor, filling in the geographic position.
func (c *canvas) fire(ev surface.Event) {
	if ev.Pointer() {
		ev.LngLat = c.Unproject(ev.Point)
	}
	for _, id := range c.order {
		if fn, ok := c.subs[id]; ok {
			fn(ev)
		}
	}
}

func (c *canvas) key(k string) {
	c.fire(surface.Event{Type: surface.KeyDown, Key: k})
	c.fire(surface.Event{Type: surface.KeyUp, Key: k})
}
