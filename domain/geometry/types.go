package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidDimensions is returned by Compute when a frame or viewport has a
// non-positive side. The host must not call Compute before it knows both.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// Dimensions describes the pixel size of a source frame or a viewport.
type Dimensions struct {
	Width  int
	Height int
}

// Dim is shorthand for Dimensions{Width: w, Height: h}.
func Dim(w, h int) Dimensions { return Dimensions{Width: w, Height: h} }

// Valid reports whether both sides are positive.
func (d Dimensions) Valid() bool { return d.Width > 0 && d.Height > 0 }

func (d Dimensions) String() string { return fmt.Sprintf("%dx%d", d.Width, d.Height) }

// Point is an integer coordinate. Pointer events arrive in viewport space;
// the same type is used for source space where noted.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
// In source space it is the crop selection; a zero width or height means no
// selection.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Within reports whether r lies entirely inside a frame of size d.
func (r Rect) Within(d Dimensions) bool {
	return r.X >= 0 && r.Y >= 0 && r.Width >= 0 && r.Height >= 0 &&
		r.X+r.Width <= d.Width && r.Y+r.Height <= d.Height
}

// Max returns the bottom-right corner (exclusive).
func (r Rect) Max() Point { return Point{X: r.X + r.Width, Y: r.Y + r.Height} }

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// RectFromPoints builds a rectangle spanning two corners given in any order.
func RectFromPoints(a, b Point) Rect {
	x1, x2 := a.X, b.X
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	y1, y2 := a.Y, b.Y
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
