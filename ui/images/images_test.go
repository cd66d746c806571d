package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/soocke/vidcrop-go/domain/geometry"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{255, 0, 0, 255}
)

func TestLetterbox_PlacesFrameAtOffset(t *testing.T) {
	tr, err := geometry.Compute(geometry.Dim(1920, 1080), geometry.Dim(800, 800))
	if err != nil {
		t.Fatal(err)
	}
	canvas := Letterbox(solid(192, 108, white), tr, black)
	if canvas.Bounds() != image.Rect(0, 0, 800, 800) {
		t.Fatalf("canvas bounds %v", canvas.Bounds())
	}
	if got := canvas.RGBAAt(400, 100); got != black {
		t.Fatalf("expected bar color above image, got %v", got)
	}
	if got := canvas.RGBAAt(400, 400); got != white {
		t.Fatalf("expected frame pixels in display area, got %v", got)
	}
	if got := canvas.RGBAAt(400, 700); got != black {
		t.Fatalf("expected bar color below image, got %v", got)
	}
	RecycleFrame(canvas)
	again := Letterbox(nil, tr, black)
	if again.Bounds() != image.Rect(0, 0, 800, 800) || again.RGBAAt(400, 400) != black {
		t.Fatalf("recycled canvas not cleared")
	}
}

func TestDrawRect_Outline(t *testing.T) {
	dst := solid(50, 50, black)
	DrawRect(dst, geometry.Rect{X: 10, Y: 10, Width: 20, Height: 10}, red, 2)
	if dst.RGBAAt(10, 10) != red || dst.RGBAAt(29, 19) != red || dst.RGBAAt(11, 15) != red {
		t.Fatalf("expected outline pixels")
	}
	if dst.RGBAAt(20, 15) != black {
		t.Fatalf("interior must stay untouched")
	}
	if dst.RGBAAt(30, 10) != black {
		t.Fatalf("outline leaked past rect")
	}
	// partially outside is clipped, not panicking
	DrawRect(dst, geometry.Rect{X: 40, Y: 40, Width: 30, Height: 30}, red, 1)
}

func TestOutline_LeavesBaseUntouched(t *testing.T) {
	base := solid(20, 20, black)
	out := Outline(base, geometry.Rect{X: 2, Y: 2, Width: 10, Height: 10}, red, 1)
	if out.RGBAAt(2, 2) != red || base.RGBAAt(2, 2) != black {
		t.Fatalf("outline must draw on a copy")
	}
	if Outline(nil, geometry.Rect{}, red, 1) != nil {
		t.Fatalf("nil base yields nil")
	}
}

func TestCrop_ClampsToFrame(t *testing.T) {
	frame := solid(100, 60, white)
	out, err := Crop(frame, geometry.Rect{X: 90, Y: 50, Width: 40, Height: 40})
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Fatalf("expected clamped 10x10, got %v", out.Bounds())
	}
	out, _ = Crop(frame, geometry.Rect{X: 0, Y: 0, Width: 0, Height: 0})
	if out.Bounds().Dx() != 1 || out.Bounds().Dy() != 1 {
		t.Fatalf("expected minimum 1x1, got %v", out.Bounds())
	}
	if _, err := Crop(nil, geometry.Rect{}); err == nil {
		t.Fatalf("expected error for nil frame")
	}
}

func TestEncodePNG_Decodes(t *testing.T) {
	data := EncodePNG(solid(3, 2, red))
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 3 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image must encode to nil")
	}
}
