package surface

// EventType enumerates raw host input plus the events synthesized from it.
type EventType string

const (
	MouseDown  EventType = "mousedown"
	MouseMove  EventType = "mousemove"
	MouseUp    EventType = "mouseup"
	MouseOut   EventType = "mouseout"
	TouchStart EventType = "touchstart"
	TouchMove  EventType = "touchmove"
	TouchEnd   EventType = "touchend"
	KeyDown    EventType = "keydown"
	KeyUp      EventType = "keyup"

	// synthesized by the dispatcher
	Click EventType = "click"
	Drag  EventType = "drag"
)

// Key names used by the editor.
const (
	KeyEscape    = "Escape"
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
)

type Event struct {
	Type   EventType
	Point  ScreenPoint
	LngLat LngLat
	Key    string
	Shift  bool
	// Touch is set for taps synthesized from touch input.
	Touch bool
	// Hits is filled by the dispatcher for pointer-down and click.
	Hits []Hit
}

// Pointer reports whether e carries a screen position.
func (e Event) Pointer() bool {
	switch e.Type {
	case KeyDown, KeyUp:
		return false
	}
	return true
}

// Top returns the first hit, the one the surface ranked highest.
func (e Event) Top() (Hit, bool) {
	if len(e.Hits) == 0 {
		return Hit{}, false
	}
	return e.Hits[0], true
}
