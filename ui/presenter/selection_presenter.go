package presenter

import (
	"fmt"
	"log/slog"

	"github.com/soocke/vidcrop-go/domain/geometry"
	"github.com/soocke/vidcrop-go/domain/selection"
	"github.com/soocke/vidcrop-go/ui/model"
)

// TransformSource exposes the active display transform, if any.
type TransformSource interface {
	Transform() (geometry.Transform, bool)
}

// SelectionView draws the crop overlay and shows crop details. Overlay
// rectangles are in viewport coordinates.
type SelectionView interface {
	ShowOverlay(r geometry.Rect)
	ClearOverlay()
	SetCropInfo(pos, size string)
	SetStatus(text string)
}

// SelectionPresenter receives selection events from the controller, keeps
// the selection model current and mirrors it on the view.
type SelectionPresenter struct {
	model     *model.SelectionModel
	transform TransformSource
	view      SelectionView
	logger    *slog.Logger
}

func NewSelectionPresenter(m *model.SelectionModel, transform TransformSource, view SelectionView, logger *slog.Logger) *SelectionPresenter {
	return &SelectionPresenter{model: m, transform: transform, view: view, logger: logger}
}

// SetTransformSource attaches the controller once it exists; the controller
// itself needs the presenter as listener.
func (p *SelectionPresenter) SetTransformSource(ts TransformSource) {
	if p != nil {
		p.transform = ts
	}
}

// ProvisionalRectChanged draws the in-progress drag.
func (p *SelectionPresenter) ProvisionalRectChanged(start, end geometry.Point) {
	if p == nil || p.view == nil {
		return
	}
	p.view.ShowOverlay(geometry.RectFromPoints(start, end))
}

// SelectionFinalized stores r and redraws it from source coordinates.
func (p *SelectionPresenter) SelectionFinalized(r geometry.Rect) {
	if p == nil || p.view == nil {
		return
	}
	p.model.Set(r)
	p.Redraw()
	p.view.SetCropInfo(fmt.Sprintf("X: %d, Y: %d", r.X, r.Y), fmt.Sprintf("W: %d, H: %d", r.Width, r.Height))
	p.view.SetStatus(fmt.Sprintf("Selected crop area: %dx%d", r.Width, r.Height))
	if p.logger != nil {
		p.logger.Debug("selection finalized", "rect", r.String())
	}
}

// SelectionCleared removes the overlay and the stored selection.
func (p *SelectionPresenter) SelectionCleared() {
	if p == nil || p.view == nil {
		return
	}
	p.model.Clear()
	p.view.ClearOverlay()
	p.view.SetCropInfo("X: 0, Y: 0", "W: 0, H: 0")
	p.view.SetStatus("Crop selection reset")
}

// Redraw re-projects the stored selection through the current transform.
// Called after finalization and whenever the viewport changes.
func (p *SelectionPresenter) Redraw() {
	if p == nil || p.view == nil {
		return
	}
	r, ok := p.model.Rect()
	if !ok || p.transform == nil {
		p.view.ClearOverlay()
		return
	}
	t, ok := p.transform.Transform()
	if !ok {
		p.view.ClearOverlay()
		return
	}
	p.view.ShowOverlay(t.ToViewport(r))
}

var _ selection.Listener = (*SelectionPresenter)(nil)
