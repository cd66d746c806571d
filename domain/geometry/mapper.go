package geometry

import (
	"fmt"
	"math"
)

// minLaidOutSide is the smallest viewport side treated as laid out. Tk reports
// 1x1 for widgets that have not been mapped yet.
const minLaidOutSide = 10

// Transform maps source-frame pixels into a letterboxed viewport. ScaleX and
// ScaleY are equal up to the truncation of the displayed size; both are kept
// so each axis absorbs its own rounding.
type Transform struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX int
	OffsetY int

	Frame    Dimensions // source frame the transform was computed for
	Viewport Dimensions // viewport the transform was computed for
	Display  Dimensions // size of the scaled image inside the viewport
}

// Compute fits frame into viewport without distortion and centers it. The
// image is fitted to the viewport width when it is relatively wider than the
// viewport, otherwise to its height.
func Compute(frame, viewport Dimensions) (Transform, error) {
	if !frame.Valid() || !viewport.Valid() {
		return Transform{}, fmt.Errorf("%w: frame %s, viewport %s", ErrInvalidDimensions, frame, viewport)
	}
	var newW, newH int
	// frame.W/frame.H > viewport.W/viewport.H, compared without division.
	if int64(frame.Width)*int64(viewport.Height) > int64(viewport.Width)*int64(frame.Height) {
		newW = viewport.Width
		newH = int(int64(newW) * int64(frame.Height) / int64(frame.Width))
	} else {
		newH = viewport.Height
		newW = int(int64(newH) * int64(frame.Width) / int64(frame.Height))
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return Transform{
		ScaleX:   float64(newW) / float64(frame.Width),
		ScaleY:   float64(newH) / float64(frame.Height),
		OffsetX:  (viewport.Width - newW) / 2,
		OffsetY:  (viewport.Height - newH) / 2,
		Frame:    frame,
		Viewport: viewport,
		Display:  Dimensions{Width: newW, Height: newH},
	}, nil
}

// FallbackViewport returns reported unless the host has not laid the
// viewport out yet, in which case fallback is used instead.
func FallbackViewport(reported, fallback Dimensions) Dimensions {
	if reported.Width < minLaidOutSide || reported.Height < minLaidOutSide {
		return fallback
	}
	return reported
}

// IsZero reports whether t is the zero Transform (never computed).
func (t Transform) IsZero() bool { return t.ScaleX == 0 || t.ScaleY == 0 }

// DisplayBounds is the viewport-space rectangle covered by the image.
func (t Transform) DisplayBounds() Rect {
	return Rect{X: t.OffsetX, Y: t.OffsetY, Width: t.Display.Width, Height: t.Display.Height}
}

// Contains reports whether viewport point p falls on the displayed image.
// Edges are inclusive so a press on the last pixel row still counts.
func (t Transform) Contains(p Point) bool {
	b := t.DisplayBounds()
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// ClampToDisplay moves p onto the displayed image, leaving points already on
// it unchanged.
func (t Transform) ClampToDisplay(p Point) Point {
	b := t.DisplayBounds()
	return Point{
		X: clampInt(p.X, b.X, b.X+b.Width),
		Y: clampInt(p.Y, b.Y, b.Y+b.Height),
	}
}

// ToSource maps a viewport point to source coordinates, clamped to
// [0, frame.Width] x [0, frame.Height].
func (t Transform) ToSource(p Point) (x, y float64) {
	return t.ToSourceXY(float64(p.X), float64(p.Y))
}

// ToSourceXY is ToSource for fractional viewport coordinates.
func (t Transform) ToSourceXY(vx, vy float64) (x, y float64) {
	if t.IsZero() {
		return 0, 0
	}
	x = (vx - float64(t.OffsetX)) / t.ScaleX
	y = (vy - float64(t.OffsetY)) / t.ScaleY
	return clampFloat(x, 0, float64(t.Frame.Width)), clampFloat(y, 0, float64(t.Frame.Height))
}

// ToViewportXY maps a source coordinate into the viewport without rounding
// or clamping.
func (t Transform) ToViewportXY(sx, sy float64) (x, y float64) {
	return sx*t.ScaleX + float64(t.OffsetX), sy*t.ScaleY + float64(t.OffsetY)
}

// ToViewport maps a source rectangle to the viewport rectangle used to draw
// its overlay. The result is clamped to the viewport so it is always
// drawable.
func (t Transform) ToViewport(r Rect) Rect {
	if t.IsZero() {
		return Rect{}
	}
	x1 := int(float64(r.X)*t.ScaleX) + t.OffsetX
	y1 := int(float64(r.Y)*t.ScaleY) + t.OffsetY
	x2 := x1 + int(float64(r.Width)*t.ScaleX)
	y2 := y1 + int(float64(r.Height)*t.ScaleY)
	x1 = clampInt(x1, 0, t.Viewport.Width)
	y1 = clampInt(y1, 0, t.Viewport.Height)
	x2 = clampInt(x2, 0, t.Viewport.Width)
	y2 = clampInt(y2, 0, t.Viewport.Height)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func (t Transform) String() string {
	return fmt.Sprintf("Scale X: %.4f, Y: %.4f | Offset X: %d, Y: %d", t.ScaleX, t.ScaleY, t.OffsetX, t.OffsetY)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
