package selection

import "github.com/soocke/vidcrop-go/domain/geometry"

// State enumerates the controller states.
type State int

const (
	StateIdle State = iota
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Listener receives the controller's outputs. All calls happen synchronously
// on the goroutine that delivered the triggering input.
type Listener interface {
	// ProvisionalRectChanged reports the raw viewport corners of an
	// in-progress drag for live overlay drawing.
	ProvisionalRectChanged(start, end geometry.Point)
	// SelectionFinalized reports a completed, non-empty selection in source
	// coordinates.
	SelectionFinalized(r geometry.Rect)
	// SelectionCleared reports that there is no selection and any overlay
	// should be removed.
	SelectionCleared()
}

// ListenerFuncs adapts optional callbacks to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Provisional func(start, end geometry.Point)
	Finalized   func(r geometry.Rect)
	Cleared     func()
}

func (l ListenerFuncs) ProvisionalRectChanged(start, end geometry.Point) {
	if l.Provisional != nil {
		l.Provisional(start, end)
	}
}

func (l ListenerFuncs) SelectionFinalized(r geometry.Rect) {
	if l.Finalized != nil {
		l.Finalized(r)
	}
}

func (l ListenerFuncs) SelectionCleared() {
	if l.Cleared != nil {
		l.Cleared()
	}
}

// StateListener is called on each state change.
type StateListener func(prev, next State)

// Inputs is the host-facing input surface of the controller.
type Inputs interface {
	ViewportResized(d geometry.Dimensions)
	SourceFrameChanged(d geometry.Dimensions)
	PointerDown(p geometry.Point)
	PointerMove(p geometry.Point)
	PointerUp(p geometry.Point)
	Reset()
}

// dragState lives for one press-to-release gesture, in viewport space only.
type dragState struct {
	start  geometry.Point
	end    geometry.Point
	active bool
}
