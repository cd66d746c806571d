package selection

import (
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/vidcrop-go/domain/geometry"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// recorder captures listener calls in order.
type recorder struct {
	provisional [][2]geometry.Point
	finalized   []geometry.Rect
	cleared     int
	events      []string
}

func (r *recorder) ProvisionalRectChanged(start, end geometry.Point) {
	r.provisional = append(r.provisional, [2]geometry.Point{start, end})
	r.events = append(r.events, "provisional")
}

func (r *recorder) SelectionFinalized(rect geometry.Rect) {
	r.finalized = append(r.finalized, rect)
	r.events = append(r.events, "finalized")
}

func (r *recorder) SelectionCleared() {
	r.cleared++
	r.events = append(r.events, "cleared")
}

func newTestController(frame, viewport geometry.Dimensions) (*Controller, *recorder) {
	rec := &recorder{}
	c := NewController(rec, discardLogger)
	c.ViewportResized(viewport)
	c.SourceFrameChanged(frame)
	*rec = recorder{} // drop the initial cleared from loading the frame
	return c, rec
}

func drag(c *Controller, from, to geometry.Point) {
	c.PointerDown(from)
	c.PointerMove(to)
	c.PointerUp(to)
}

func TestController_DragFinalizesSourceRect(t *testing.T) {
	c, rec := newTestController(geometry.Dim(1920, 1080), geometry.Dim(800, 450))
	drag(c, geometry.Pt(100, 100), geometry.Pt(500, 300))

	want := geometry.Rect{X: 240, Y: 240, Width: 960, Height: 480}
	require.Equal(t, []geometry.Rect{want}, rec.finalized)
	got, ok := c.Selection()
	assert.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, [][2]geometry.Point{{geometry.Pt(100, 100), geometry.Pt(500, 300)}}, rec.provisional)
}

func TestController_DragDirectionDoesNotMatter(t *testing.T) {
	corners := [][2]geometry.Point{
		{geometry.Pt(100, 100), geometry.Pt(500, 300)},
		{geometry.Pt(500, 300), geometry.Pt(100, 100)},
		{geometry.Pt(500, 100), geometry.Pt(100, 300)},
		{geometry.Pt(100, 300), geometry.Pt(500, 100)},
	}
	var first geometry.Rect
	for i, pair := range corners {
		c, rec := newTestController(geometry.Dim(1920, 1080), geometry.Dim(800, 450))
		drag(c, pair[0], pair[1])
		require.Lenf(t, rec.finalized, 1, "case %d: events %v", i, rec.events)
		if i == 0 {
			first = rec.finalized[0]
			continue
		}
		assert.Equalf(t, first, rec.finalized[0], "case %d", i)
	}
}

func TestController_ZeroAreaDragClears(t *testing.T) {
	c, rec := newTestController(geometry.Dim(1920, 1080), geometry.Dim(800, 450))
	c.PointerDown(geometry.Pt(200, 200))
	c.PointerUp(geometry.Pt(200, 200))
	assert.Empty(t, rec.finalized)
	assert.Equal(t, 1, rec.cleared)
	_, ok := c.Selection()
	assert.False(t, ok, "degenerate drag must not store a selection")

	// A horizontal line has no height either.
	drag(c, geometry.Pt(100, 200), geometry.Pt(400, 200))
	assert.Empty(t, rec.finalized)
	assert.Equal(t, 2, rec.cleared)
}

func TestController_PressInLetterboxIgnored(t *testing.T) {
	c, rec := newTestController(geometry.Dim(1920, 1080), geometry.Dim(800, 800))
	c.PointerDown(geometry.Pt(400, 50))
	require.Equal(t, StateIdle, c.State(), "press in letterbox must not start a drag")
	c.PointerMove(geometry.Pt(500, 400))
	c.PointerUp(geometry.Pt(500, 400))
	assert.Empty(t, rec.events)
}

func TestController_MoveClampsToImage(t *testing.T) {
	c, rec := newTestController(geometry.Dim(1920, 1080), geometry.Dim(800, 800))
	c.PointerDown(geometry.Pt(400, 400))
	c.PointerMove(geometry.Pt(900, 790))
	require.Len(t, rec.provisional, 1)
	assert.Equal(t, geometry.Pt(800, 625), rec.provisional[0][1], "end clamped to image corner")

	c.PointerUp(geometry.Pt(-100, -100))
	require.Len(t, rec.finalized, 1)
	r := rec.finalized[0]
	assert.Equal(t, 0, r.X)
	assert.Equal(t, 0, r.Y)
	assert.True(t, r.Within(geometry.Dim(1920, 1080)), "rect %v", r)
}

func TestController_FrameChangeDuringDragClears(t *testing.T) {
	c, rec := newTestController(geometry.Dim(1920, 1080), geometry.Dim(800, 450))
	c.PointerDown(geometry.Pt(100, 100))
	c.PointerMove(geometry.Pt(300, 300))
	c.SourceFrameChanged(geometry.Dim(1280, 720))
	require.Equal(t, StateIdle, c.State())
	c.PointerUp(geometry.Pt(300, 300))
	assert.Empty(t, rec.finalized, "frame change must not finalize")
	assert.Equal(t, 1, rec.cleared)
}

func TestController_SameFrameSizeKeepsSelection(t *testing.T) {
	c, rec := newTestController(geometry.Dim(1920, 1080), geometry.Dim(800, 450))
	drag(c, geometry.Pt(100, 100), geometry.Pt(500, 300))
	c.SourceFrameChanged(geometry.Dim(1920, 1080))
	_, ok := c.Selection()
	assert.True(t, ok)
	assert.Zero(t, rec.cleared)
}

func TestController_ResetClears(t *testing.T) {
	c, rec := newTestController(geometry.Dim(1920, 1080), geometry.Dim(800, 450))
	drag(c, geometry.Pt(100, 100), geometry.Pt(500, 300))
	c.Reset()
	_, ok := c.Selection()
	assert.False(t, ok, "reset must clear selection")
	assert.Equal(t, 1, rec.cleared)

	c.PointerDown(geometry.Pt(100, 100))
	c.Reset()
	require.Equal(t, StateIdle, c.State(), "reset must abandon the drag")
	c.PointerUp(geometry.Pt(400, 400))
	assert.Len(t, rec.finalized, 1, "release after reset must not finalize")
}

func TestController_ResizeKeepsSourceSelection(t *testing.T) {
	c, _ := newTestController(geometry.Dim(1920, 1080), geometry.Dim(800, 450))
	drag(c, geometry.Pt(100, 100), geometry.Pt(500, 300))
	before, _ := c.Selection()
	c.ViewportResized(geometry.Dim(1600, 900))
	after, ok := c.Selection()
	require.True(t, ok)
	assert.Equal(t, before, after)
	tr, ok := c.Transform()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 200, Y: 200, Width: 800, Height: 400}, tr.ToViewport(after))
}

func TestController_ResizeDuringDragReprojectsStart(t *testing.T) {
	c, rec := newTestController(geometry.Dim(1920, 1080), geometry.Dim(800, 450))
	c.PointerDown(geometry.Pt(100, 100))
	c.PointerMove(geometry.Pt(300, 200))

	c.ViewportResized(geometry.Dim(1600, 900))
	require.Equal(t, StateDragging, c.State())
	require.Len(t, rec.provisional, 2)
	assert.Equal(t, [2]geometry.Point{geometry.Pt(200, 200), geometry.Pt(600, 400)}, rec.provisional[1])

	// The release is in the new viewport; the start must be too.
	c.PointerUp(geometry.Pt(1000, 600))
	require.Len(t, rec.finalized, 1)
	assert.Equal(t, geometry.Rect{X: 240, Y: 240, Width: 960, Height: 480}, rec.finalized[0])
}

func TestController_ResizeToUnusableViewportDropsDrag(t *testing.T) {
	c, rec := newTestController(geometry.Dim(1920, 1080), geometry.Dim(800, 450))
	drag(c, geometry.Pt(100, 100), geometry.Pt(500, 300))
	stored, _ := c.Selection()

	c.PointerDown(geometry.Pt(50, 50))
	c.ViewportResized(geometry.Dim(0, 0))
	require.Equal(t, StateIdle, c.State())

	c.ViewportResized(geometry.Dim(800, 450))
	c.PointerUp(geometry.Pt(700, 400))
	assert.Len(t, rec.finalized, 1, "dropped drag must not finalize")
	got, ok := c.Selection()
	assert.True(t, ok)
	assert.Equal(t, stored, got)
}

func TestController_IgnoresPointerWithoutTransform(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec, nil)
	c.PointerDown(geometry.Pt(10, 10))
	c.PointerMove(geometry.Pt(20, 20))
	c.PointerUp(geometry.Pt(20, 20))
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, rec.events)
}

func TestController_StateListener(t *testing.T) {
	c, _ := newTestController(geometry.Dim(640, 480), geometry.Dim(640, 480))
	var seen []string
	c.AddListener(func(prev, next State) { seen = append(seen, prev.String()+">"+next.String()) })
	drag(c, geometry.Pt(10, 10), geometry.Pt(100, 100))
	assert.Equal(t, []string{"idle>dragging", "dragging>idle"}, seen)
}

func TestFinalize_AlwaysWithinFrame(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		frame := geometry.Dim(16+rng.Intn(3840), 16+rng.Intn(2160))
		viewport := geometry.Dim(50+rng.Intn(1200), 50+rng.Intn(900))
		tr, err := geometry.Compute(frame, viewport)
		require.NoError(t, err)
		a := geometry.Pt(rng.Intn(viewport.Width+200)-100, rng.Intn(viewport.Height+200)-100)
		b := geometry.Pt(rng.Intn(viewport.Width+200)-100, rng.Intn(viewport.Height+200)-100)
		r, ok := Finalize(tr, a, b)
		if !ok {
			require.Truef(t, r.Empty(), "not ok but non-empty rect %v", r)
			continue
		}
		require.Truef(t, !r.Empty() && r.Within(frame), "rect %v escapes frame %s (corners %v %v)", r, frame, a, b)
		r2, _ := Finalize(tr, b, a)
		require.Equal(t, r, r2, "finalize order dependent")
	}
}
