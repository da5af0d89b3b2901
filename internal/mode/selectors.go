package mode

import "geodraw/internal/surface"

// Selector filters the events a binding receives.
type Selector func(ev surface.Event) bool

func True(surface.Event) bool { return true }

func IsEscapeKey(ev surface.Event) bool { return ev.Key == surface.KeyEscape }

func IsEnterKey(ev surface.Event) bool { return ev.Key == surface.KeyEnter }

func IsShiftDown(ev surface.Event) bool { return ev.Shift }

// NoTarget accepts pointer events that hit nothing.
func NoTarget(ev surface.Event) bool { return len(ev.Hits) == 0 }

// IsOfMetaType accepts events whose top hit has the given meta.
func IsOfMetaType(meta string) Selector {
	return func(ev surface.Event) bool {
		h, ok := ev.Top()
		return ok && h.Meta == meta
	}
}

var (
	IsFeature  = IsOfMetaType(surface.MetaFeature)
	IsVertex   = IsOfMetaType(surface.MetaVertex)
	IsMidpoint = IsOfMetaType(surface.MetaMidpoint)
)

// IsTarget accepts events whose top hit belongs to the stored feature id.
func IsTarget(id string) Selector {
	return func(ev surface.Event) bool {
		h, ok := ev.Top()
		return ok && h.Owner() == id
	}
}
