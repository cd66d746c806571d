package images

import (
	"errors"
	"image"
	"image/draw"

	"github.com/soocke/vidcrop-go/domain/geometry"
)

// Crop returns the part of frame covered by r, clamped to the frame bounds
// and at least 1x1. The result is always an *image.RGBA with origin (0,0).
func Crop(frame image.Image, r geometry.Rect) (*image.RGBA, error) {
	if frame == nil {
		return nil, errors.New("nil frame")
	}
	b := frame.Bounds()
	x0 := min(max(r.X, 0), max(b.Dx()-1, 0))
	y0 := min(max(r.Y, 0), max(b.Dy()-1, 0))
	w := min(max(r.Width, 1), b.Dx()-x0)
	h := min(max(r.Height, 1), b.Dy()-y0)
	if w < 1 || h < 1 {
		return nil, errors.New("empty frame")
	}
	roi := image.Rect(b.Min.X+x0, b.Min.Y+y0, b.Min.X+x0+w, b.Min.Y+y0+h)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), frame, roi.Min, draw.Src)
	return out, nil
}
