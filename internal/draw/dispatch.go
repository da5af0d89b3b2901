package draw

import (
	"math"

	"geodraw/internal/surface"
)

// press tracks one pointer from down to up.
type press struct {
	at       surface.ScreenPoint
	touch    bool
	dragging bool
}

func dist(a, b surface.ScreenPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func (d *Draw) buffer(touch bool) float64 {
	if touch {
		return d.opts.TouchBuffer
	}
	return d.opts.ClickBuffer
}

func (d *Draw) withHits(ev *surface.Event) error {
	r := d.opts.QueryRadius
	if ev.Touch {
		r = d.opts.TouchBuffer
	}
	hits, err := d.host.QueryFeaturesAt(ev.Point, surface.QueryOptions{Radius: r})
	if err != nil {
		return err
	}
	ev.Hits = hits
	return nil
}

// Handle feeds one raw host event through the active mode. Hosts that do
// not use Subscribe may call it directly; the returned error is a
// collaborator failure for this interaction only.
func (d *Draw) Handle(ev surface.Event) error {
	if d.host.closed {
		return nil
	}
	return d.turn(func() error { return d.dispatch(ev) })
}

func (d *Draw) dispatch(ev surface.Event) error {
	switch ev.Type {
	case surface.MouseDown, surface.TouchStart:
		ev.Touch = ev.Type == surface.TouchStart
		ev.Type = surface.MouseDown
		d.press = &press{at: ev.Point, touch: ev.Touch}
		if err := d.withHits(&ev); err != nil {
			d.press = nil
			return err
		}
		return d.machine.Dispatch(ev)

	case surface.MouseMove, surface.TouchMove:
		p := d.press
		if p == nil {
			if ev.Type == surface.TouchMove {
				return nil
			}
			return d.machine.Dispatch(ev)
		}
		if !p.dragging && dist(p.at, ev.Point) <= d.buffer(p.touch) {
			return nil
		}
		p.dragging = true
		ev.Type, ev.Touch = surface.Drag, p.touch
		return d.machine.Dispatch(ev)

	case surface.MouseUp, surface.TouchEnd:
		p := d.press
		d.press = nil
		ev.Type = surface.MouseUp
		if p != nil {
			ev.Touch = p.touch
		}
		if err := d.machine.Dispatch(ev); err != nil {
			return err
		}
		if p == nil || p.dragging || dist(p.at, ev.Point) > d.buffer(p.touch) {
			return nil
		}
		ev.Type = surface.Click
		if err := d.withHits(&ev); err != nil {
			return err
		}
		return d.machine.Dispatch(ev)

	case surface.Click:
		if err := d.withHits(&ev); err != nil {
			return err
		}
		return d.machine.Dispatch(ev)

	case surface.KeyDown:
		if !d.opts.Keybindings {
			return nil
		}
		if ev.Key == surface.KeyBackspace || ev.Key == surface.KeyDelete {
			if !d.opts.Controls.Trash {
				return nil
			}
			return d.machine.Trash()
		}
		return d.machine.Dispatch(ev)

	case surface.KeyUp:
		if !d.opts.Keybindings {
			return nil
		}
		return d.machine.Dispatch(ev)
	}
	return d.machine.Dispatch(ev)
}
