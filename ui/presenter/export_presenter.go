package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/soocke/vidcrop-go/domain/geometry"
	"github.com/soocke/vidcrop-go/domain/video"
	"github.com/soocke/vidcrop-go/ui/model"
)

// Exporter narrows what the presenter needs from the export service.
type Exporter interface {
	Start(ctx context.Context, job video.Job) (string, error)
	Cancel()
	Events() <-chan video.ExportEvent
}

// ExportView updates UI elements affected by an export.
type ExportView interface {
	SetControlsEnabled(enabled bool)
	SetStatus(text string)
}

// ExportPresenter turns the current selection and trim range into export
// jobs and reflects their progress on the view.
type ExportPresenter struct {
	ctx       context.Context
	model     *model.ExportModel
	playback  *model.PlaybackModel
	selection *model.SelectionModel
	svc       Exporter
	view      ExportView
	ext       string
	logger    *slog.Logger
}

func NewExportPresenter(ctx context.Context, m *model.ExportModel, playback *model.PlaybackModel, selection *model.SelectionModel,
	svc Exporter, view ExportView, ext string, logger *slog.Logger) *ExportPresenter {
	return &ExportPresenter{ctx: ctx, model: m, playback: playback, selection: selection, svc: svc, view: view, ext: ext, logger: logger}
}

func (p *ExportPresenter) ready() bool {
	return p != nil && p.model != nil && p.playback != nil && p.selection != nil && p.svc != nil && p.view != nil
}

// Job assembles an export job for output from the current models.
func (p *ExportPresenter) Job(output string) video.Job {
	info := p.playback.Info()
	crop, hasCrop := p.selection.Rect()
	return video.Job{
		Input:   info.Path,
		Output:  output,
		Info:    info,
		Crop:    crop,
		HasCrop: hasCrop,
		Trim:    p.playback.Trim(),
		HasTrim: p.playback.HasTrim(),
	}
}

// SuggestedOutput returns the default output path next to the input video.
func (p *ExportPresenter) SuggestedOutput() string {
	if !p.ready() || !p.playback.Loaded() {
		return ""
	}
	info := p.playback.Info()
	crop, ok := p.selection.Rect()
	if !ok {
		crop = geometry.Rect{}
	}
	name := video.OutputFilename(info.Path, crop, p.playback.TrimEnabled(), p.playback.Trim(), p.ext)
	return filepath.Join(filepath.Dir(info.Path), name)
}

// Export starts exporting to output, or the suggested path when empty.
// Idempotent while an export runs.
func (p *ExportPresenter) Export(output string) {
	if !p.ready() || !p.playback.Loaded() || p.model.Running() {
		return
	}
	if output == "" {
		output = p.SuggestedOutput()
	}
	job := p.Job(output)
	id, err := p.svc.Start(p.ctx, job)
	if err != nil {
		switch {
		case errors.Is(err, video.ErrNothingToExport):
			p.view.SetStatus("Select a crop area or enable trimming first")
		default:
			p.view.SetStatus(fmt.Sprintf("Processing failed! %v", err))
		}
		if p.logger != nil {
			p.logger.Warn("export rejected", "error", err)
		}
		return
	}
	p.model.Begin(id)
	p.view.SetControlsEnabled(false)
	p.view.SetStatus("Processing video, please wait...")
}

// Cancel aborts a running export.
func (p *ExportPresenter) Cancel() {
	if !p.ready() || !p.model.Running() {
		return
	}
	p.svc.Cancel()
}

// Tick drains pending export events without blocking.
func (p *ExportPresenter) Tick() {
	if !p.ready() {
		return
	}
	for {
		select {
		case ev := <-p.svc.Events():
			p.handle(ev)
		default:
			return
		}
	}
}

func (p *ExportPresenter) handle(ev video.ExportEvent) {
	switch ev.Kind {
	case video.EventProgress:
		p.view.SetStatus(fmt.Sprintf("%s progress: %d/%d frames (%.1f%%)", ev.Operation, ev.Processed, ev.Total, ev.Percent()))
	case video.EventWarning:
		p.view.SetStatus("Warning: " + ev.Message)
	case video.EventCompleted:
		if p.logger != nil {
			p.logger.Info("export finished", "job", p.model.JobID(), "output", ev.Output, "frames", ev.Processed)
		}
		p.model.End()
		p.view.SetControlsEnabled(true)
		p.view.SetStatus(fmt.Sprintf("%s complete! Saved as: %s", ev.Operation, filepath.Base(ev.Output)))
	case video.EventFailed:
		if p.logger != nil {
			p.logger.Warn("export failed", "job", p.model.JobID(), "error", ev.Message)
		}
		p.model.End()
		p.view.SetControlsEnabled(true)
		p.view.SetStatus(fmt.Sprintf("Processing failed! %s", ev.Message))
	}
}
