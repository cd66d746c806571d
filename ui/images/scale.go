package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/soocke/vidcrop-go/domain/geometry"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	_ = enc.Encode(&buf, img)
	return buf.Bytes()
}

// Letterbox renders frame into a viewport-sized canvas according to t: the
// scaled frame at the transform offset, bars filled with bg. The canvas comes
// from the frame pool; callers may hand it back with RecycleFrame.
func Letterbox(frame image.Image, t geometry.Transform, bg color.Color) *image.RGBA {
	canvas := acquireFrame(image.Rect(0, 0, t.Viewport.Width, t.Viewport.Height))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
	if frame == nil || t.IsZero() {
		return canvas
	}
	db := t.DisplayBounds()
	target := image.Rect(db.X, db.Y, db.X+db.Width, db.Y+db.Height)
	xdraw.ApproxBiLinear.Scale(canvas, target, frame, frame.Bounds(), xdraw.Src, nil)
	return canvas
}

// DrawRect strokes the outline of r onto dst with the given line thickness.
// Parts of r outside dst are skipped.
func DrawRect(dst *image.RGBA, r geometry.Rect, c color.Color, thickness int) {
	if dst == nil || r.Empty() {
		return
	}
	if thickness < 1 {
		thickness = 1
	}
	outer := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	t := min(thickness, min(r.Width, r.Height))
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+t),
		image.Rect(outer.Min.X, outer.Max.Y-t, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+t, outer.Max.Y),
		image.Rect(outer.Max.X-t, outer.Min.Y, outer.Max.X, outer.Max.Y),
	}
	for _, e := range edges {
		e = e.Intersect(dst.Bounds())
		if e.Empty() {
			continue
		}
		xdraw.Draw(dst, e, src, image.Point{}, xdraw.Src)
	}
}

// Outline returns a copy of base with r stroked on top. base is left
// untouched so it can be reused for the next overlay.
func Outline(base *image.RGBA, r geometry.Rect, c color.Color, thickness int) *image.RGBA {
	if base == nil {
		return nil
	}
	out := &image.RGBA{Pix: make([]byte, len(base.Pix)), Stride: base.Stride, Rect: base.Rect}
	copy(out.Pix, base.Pix)
	DrawRect(out, r, c, thickness)
	return out
}
