package selection

import (
	"log/slog"
	"math"

	"github.com/soocke/vidcrop-go/domain/geometry"
)

// Controller turns pointer gestures in viewport space into a crop rectangle
// in source space. It is not safe for concurrent use; drive it from the
// goroutine that owns the viewport.
type Controller struct {
	logger    *slog.Logger
	listener  Listener
	listeners []StateListener

	state     State
	frame     geometry.Dimensions
	viewport  geometry.Dimensions
	transform geometry.Transform
	mapped    bool // transform is valid for frame and viewport

	drag      dragState
	selection geometry.Rect
}

// NewController returns an idle controller with no frame or viewport.
func NewController(listener Listener, logger *slog.Logger) *Controller {
	if listener == nil {
		listener = ListenerFuncs{}
	}
	return &Controller{listener: listener, logger: logger}
}

// AddListener registers a state change listener.
func (c *Controller) AddListener(l StateListener) {
	if l != nil {
		c.listeners = append(c.listeners, l)
	}
}

func (c *Controller) State() State { return c.state }

// Selection returns the stored selection, if any.
func (c *Controller) Selection() (geometry.Rect, bool) {
	if c.selection.Empty() {
		return geometry.Rect{}, false
	}
	return c.selection, true
}

// Transform returns the current display transform. ok is false until both a
// frame size and a viewport size are known.
func (c *Controller) Transform() (t geometry.Transform, ok bool) {
	return c.transform, c.mapped
}

// ViewportResized recomputes the transform. The stored selection is kept
// because it is in source space. An in-progress drag is re-projected into the
// new viewport, or dropped when the new viewport cannot show the frame.
func (c *Controller) ViewportResized(d geometry.Dimensions) {
	if d == c.viewport {
		return
	}
	prev, wasMapped := c.transform, c.mapped
	c.viewport = d
	c.remap()
	if c.state != StateDragging {
		return
	}
	if !wasMapped || !c.mapped {
		c.drag = dragState{}
		c.transition(StateIdle)
		return
	}
	c.drag.start = reproject(prev, c.transform, c.drag.start)
	c.drag.end = reproject(prev, c.transform, c.drag.end)
	c.listener.ProvisionalRectChanged(c.drag.start, c.drag.end)
}

// reproject moves a viewport point from one transform to another through
// source space.
func reproject(from, to geometry.Transform, p geometry.Point) geometry.Point {
	sx, sy := from.ToSource(p)
	vx, vy := to.ToViewportXY(sx, sy)
	return to.ClampToDisplay(geometry.Pt(int(math.Round(vx)), int(math.Round(vy))))
}

// SourceFrameChanged drops any drag and selection made against the previous
// frame size and reports the cleared state. Repeating the current size is a
// no-op so seeking within one video keeps the selection.
func (c *Controller) SourceFrameChanged(d geometry.Dimensions) {
	if d == c.frame {
		return
	}
	c.frame = d
	c.remap()
	c.drag = dragState{}
	c.selection = geometry.Rect{}
	c.transition(StateIdle)
	c.listener.SelectionCleared()
}

// PointerDown starts a drag when p lies on the displayed image. Presses in
// the letterbox margin are ignored.
func (c *Controller) PointerDown(p geometry.Point) {
	if !c.mapped || !c.transform.Contains(p) {
		if c.logger != nil {
			c.logger.Debug("selection press ignored", "x", p.X, "y", p.Y, "mapped", c.mapped)
		}
		return
	}
	c.drag = dragState{start: p, end: p, active: true}
	c.transition(StateDragging)
}

// PointerMove updates the provisional rectangle while dragging.
func (c *Controller) PointerMove(p geometry.Point) {
	if c.state != StateDragging {
		return
	}
	c.drag.end = c.transform.ClampToDisplay(p)
	c.listener.ProvisionalRectChanged(c.drag.start, c.drag.end)
}

// PointerUp finalizes the drag into a source-space selection. Degenerate
// gestures clear the selection instead of storing an empty rectangle.
func (c *Controller) PointerUp(p geometry.Point) {
	if c.state != StateDragging {
		return
	}
	c.drag.end = c.transform.ClampToDisplay(p)
	start, end := c.drag.start, c.drag.end
	c.drag = dragState{}
	c.transition(StateIdle)

	r, ok := Finalize(c.transform, start, end)
	if !ok {
		c.selection = geometry.Rect{}
		c.listener.SelectionCleared()
		return
	}
	c.selection = r
	if c.logger != nil {
		c.logger.Debug("selection finalized", "rect", r.String())
	}
	c.listener.SelectionFinalized(r)
}

// Reset clears the selection and any drag. The listener is always told so
// the host removes stale overlays.
func (c *Controller) Reset() {
	c.drag = dragState{}
	c.selection = geometry.Rect{}
	c.transition(StateIdle)
	c.listener.SelectionCleared()
}

// Finalize converts two viewport corners, given in any order, into a source
// rectangle clamped to the frame. ok is false when the result has no area.
func Finalize(t geometry.Transform, a, b geometry.Point) (r geometry.Rect, ok bool) {
	if t.IsZero() {
		return geometry.Rect{}, false
	}
	v := geometry.RectFromPoints(a, b)
	sx1, sy1 := t.ToSource(geometry.Pt(v.X, v.Y))
	sx2, sy2 := t.ToSource(v.Max())

	x, y := int(math.Round(sx1)), int(math.Round(sy1))
	w, h := int(math.Round(sx2))-x, int(math.Round(sy2))-y

	fw, fh := t.Frame.Width, t.Frame.Height
	if fw > 0 {
		x = max(0, min(x, fw-1))
		w = min(w, fw-x)
	}
	if fh > 0 {
		y = max(0, min(y, fh-1))
		h = min(h, fh-y)
	}
	if w <= 0 || h <= 0 {
		return geometry.Rect{}, false
	}
	return geometry.Rect{X: x, Y: y, Width: w, Height: h}, true
}

func (c *Controller) remap() {
	t, err := geometry.Compute(c.frame, c.viewport)
	if err != nil {
		c.transform, c.mapped = geometry.Transform{}, false
		return
	}
	c.transform, c.mapped = t, true
}

func (c *Controller) transition(next State) {
	prev := c.state
	if prev == next {
		return
	}
	c.state = next
	if c.logger != nil {
		c.logger.Debug("selection state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range c.listeners {
		l(prev, next)
	}
}

var _ Inputs = (*Controller)(nil)
