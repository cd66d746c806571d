package view

import (
	"image"
	"log/slog"

	"github.com/soocke/vidcrop-go/config"
	"github.com/soocke/vidcrop-go/domain/geometry"
	"github.com/soocke/vidcrop-go/domain/trim"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers bundles every callback the root view forwards to presenters.
type Handlers struct {
	Controls ControlHandlers
	Canvas   CanvasHandlers
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews and satisfies the presenter view contracts by
// delegating to them.
type RootView struct {
	cfg    *config.Config
	logger *slog.Logger

	// Subviews
	Controls ControlPanel
	Canvas   VideoCanvas
	Status   StatusBar
}

func NewRootView(cfg *config.Config, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, logger: logger}
}

// Build constructs the layout: controls on top, the video canvas filling
// the middle, the status bar at the bottom.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	rv.Controls = NewControlPanel(h.Controls)
	canvasRow := rv.Controls.Build(0)

	fallback := geometry.Dim(800, 450)
	if rv.cfg != nil {
		fallback = geometry.Dim(rv.cfg.ViewportWidth, rv.cfg.ViewportHeight)
	}
	rv.Canvas = NewVideoCanvas(canvasRow, 1, fallback, h.Canvas)
	GridRowConfigure(App, canvasRow, Weight(1))
	GridColumnConfigure(App, 0, Weight(1))

	statusFrame := Frame()
	Grid(statusFrame, Row(canvasRow+1), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	rv.Status = NewStatusBar(statusFrame, 0, 0)

	c := h.Controls
	bindKey := func(seq string, fn func()) {
		if fn != nil {
			Bind(App, seq, Command(fn))
		}
	}
	bindKey("<Left>", c.Prev)
	bindKey("<Right>", c.Next)
	bindKey("<space>", c.TogglePlay)
	bindKey("<Escape>", c.BackToPreview)
	if rv.logger != nil {
		rv.logger.Debug("root view built", "canvas_row", canvasRow, "fallback", fallback.String())
	}
}

// --- SelectionView ---

func (rv *RootView) ShowOverlay(r geometry.Rect) {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.ShowOverlay(r)
	}
}

func (rv *RootView) ClearOverlay() {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.ClearOverlay()
	}
}

func (rv *RootView) SetCropInfo(pos, size string) {
	if rv != nil && rv.Controls != nil {
		rv.Controls.SetCropInfo(pos, size)
	}
}

// SetStatus updates the status line.
func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetStatus(text)
	}
}

// --- PlaybackView ---

func (rv *RootView) ShowFrame(img image.Image, t geometry.Transform) {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.ShowFrame(img, t)
	}
}

func (rv *RootView) SetPlaying(playing bool) {
	if rv != nil && rv.Controls != nil {
		rv.Controls.SetPlaying(playing)
	}
}

func (rv *RootView) SetTrim(r trim.Range, enabled bool) {
	if rv != nil && rv.Controls != nil {
		rv.Controls.SetTrim(r, enabled)
	}
}

func (rv *RootView) SetTimeInfo(text string) {
	if rv != nil && rv.Controls != nil {
		rv.Controls.SetTimeInfo(text)
	}
}

func (rv *RootView) SetScaleInfo(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetScaleInfo(text)
	}
}

func (rv *RootView) SetCropPreview(active bool) {
	if rv == nil {
		return
	}
	if rv.Controls != nil {
		rv.Controls.SetCropPreview(active)
	}
	if rv.Status != nil {
		rv.Status.SetMode(active)
	}
}

func (rv *RootView) SetVideoPath(path string) {
	if rv == nil {
		return
	}
	if rv.Controls != nil {
		rv.Controls.SetVideoPath(path)
	}
	App.WmTitle("Video Crop Tool - " + path)
}

// SetOutputPath pre-fills the export destination.
func (rv *RootView) SetOutputPath(path string) {
	if rv != nil && rv.Controls != nil {
		rv.Controls.SetOutputPath(path)
	}
}

// --- ExportView ---

// SetControlsEnabled toggles control panel editability.
func (rv *RootView) SetControlsEnabled(enabled bool) {
	if rv != nil && rv.Controls != nil {
		rv.Controls.SetEditable(enabled)
	}
}
