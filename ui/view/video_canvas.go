package view

import (
	"image"
	"image/color"
	"strconv"

	xdraw "golang.org/x/image/draw"

	"github.com/soocke/vidcrop-go/domain/geometry"
	"github.com/soocke/vidcrop-go/ui/images"
	"github.com/soocke/vidcrop-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// canvasInset is subtracted from the size Tk reports for the canvas label so
// the rendered image never asks the label to grow.
const canvasInset = 4

// VideoCanvas shows the letterboxed video frame with the crop overlay drawn
// on top, and reports pointer and resize events in viewport coordinates.
type VideoCanvas interface {
	ShowFrame(img image.Image, t geometry.Transform)
	ShowOverlay(r geometry.Rect)
	ClearOverlay()
	Reset()
}

// CanvasHandlers receive canvas input. Nil handlers are skipped.
type CanvasHandlers struct {
	PointerDown func(p geometry.Point)
	PointerMove func(p geometry.Point)
	PointerUp   func(p geometry.Point)
	Resize      func(d geometry.Dimensions)
}

type videoCanvas struct {
	label      *LabelWidget
	photo      *Img // last Tk photo; deleted before each replacement
	base       *image.RGBA
	overlay    geometry.Rect
	hasOverlay bool
	barColor   color.Color
	selColor   color.Color
}

// NewVideoCanvas creates the canvas label, grids it at row and binds input.
func NewVideoCanvas(row, columnspan int, fallback geometry.Dimensions, h CanvasHandlers) VideoCanvas {
	pal := theme.CurrentPalette()
	v := &videoCanvas{barColor: theme.ParseColor(pal.Letterbox), selColor: theme.ParseColor(pal.Selection)}
	blank := image.NewRGBA(image.Rect(0, 0, fallback.Width, fallback.Height))
	xdraw.Draw(blank, blank.Bounds(), image.NewUniform(v.barColor), image.Point{}, xdraw.Src)
	v.photo = NewPhoto(Data(images.EncodePNG(blank)))
	v.label = Label(Image(v.photo), Borderwidth(0), Relief("flat"))
	Grid(v.label, Row(row), Column(0), Columnspan(columnspan), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))

	at := func(e *Event) geometry.Point {
		return geometry.Pt(e.X-canvasInset/2, e.Y-canvasInset/2)
	}
	if h.PointerDown != nil {
		Bind(v.label, "<ButtonPress-1>", Command(func(e *Event) { h.PointerDown(at(e)) }))
	}
	if h.PointerMove != nil {
		Bind(v.label, "<B1-Motion>", Command(func(e *Event) { h.PointerMove(at(e)) }))
	}
	if h.PointerUp != nil {
		Bind(v.label, "<ButtonRelease-1>", Command(func(e *Event) { h.PointerUp(at(e)) }))
	}
	if h.Resize != nil {
		Bind(v.label, "<Configure>", Command(func(e *Event) {
			w, _ := strconv.Atoi(e.Width)
			ht, _ := strconv.Atoi(e.Height)
			h.Resize(geometry.Dim(w-canvasInset, ht-canvasInset))
		}))
	}
	return v
}

func (v *videoCanvas) ShowFrame(img image.Image, t geometry.Transform) {
	if v.label == nil || img == nil || t.IsZero() {
		return
	}
	if v.base != nil {
		images.RecycleFrame(v.base)
	}
	v.base = images.Letterbox(img, t, v.barColor)
	v.present()
}

func (v *videoCanvas) ShowOverlay(r geometry.Rect) {
	v.overlay, v.hasOverlay = r, !r.Empty()
	v.present()
}

func (v *videoCanvas) ClearOverlay() {
	if !v.hasOverlay {
		return
	}
	v.overlay, v.hasOverlay = geometry.Rect{}, false
	v.present()
}

func (v *videoCanvas) Reset() {
	if v.base != nil {
		images.RecycleFrame(v.base)
		v.base = nil
	}
	v.overlay, v.hasOverlay = geometry.Rect{}, false
}

func (v *videoCanvas) present() {
	if v.label == nil || v.base == nil {
		return
	}
	out := v.base
	if v.hasOverlay {
		out = images.Outline(v.base, v.overlay, v.selColor, 2)
	}
	pngBytes := images.EncodePNG(out)
	// Replace previous photo to avoid retaining obsolete pixel buffers.
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.photo))
}
