package presenter

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/soocke/vidcrop-go/domain/geometry"
	"github.com/soocke/vidcrop-go/domain/trim"
	"github.com/soocke/vidcrop-go/domain/video"
	"github.com/soocke/vidcrop-go/ui/images"
	"github.com/soocke/vidcrop-go/ui/model"
)

// FrameSource decodes frames of one opened video in the background.
type FrameSource interface {
	Info() video.Info
	Request(index int)
	LatestFrame() video.FrameSnapshot
}

// VideoOpener opens a video file for preview.
type VideoOpener interface {
	Open(ctx context.Context, path string) (FrameSource, error)
}

// SelectionInputs is the part of the selection controller playback drives.
type SelectionInputs interface {
	TransformSource
	ViewportResized(d geometry.Dimensions)
	SourceFrameChanged(d geometry.Dimensions)
	Reset()
}

// PlaybackView renders frames and playback controls.
type PlaybackView interface {
	ShowFrame(img image.Image, t geometry.Transform)
	ClearOverlay()
	SetPlaying(playing bool)
	SetTrim(r trim.Range, enabled bool)
	SetTimeInfo(text string)
	SetScaleInfo(text string)
	SetCropPreview(active bool)
	SetVideoPath(path string)
	SetStatus(text string)
}

// PlaybackPresenter owns frame navigation, play/pause, trim editing and the
// cropped preview.
type PlaybackPresenter struct {
	ctx       context.Context
	model     *model.PlaybackModel
	selection *model.SelectionModel
	opener    VideoOpener
	sel       SelectionInputs
	overlay   *SelectionPresenter
	view      PlaybackView
	logger    *slog.Logger

	source    FrameSource
	frame     image.Image
	requested int
	lastSeq   uint64
	playing   bool

	viewport geometry.Dimensions
	fallback geometry.Dimensions
}

func NewPlaybackPresenter(ctx context.Context, m *model.PlaybackModel, selModel *model.SelectionModel, opener VideoOpener,
	sel SelectionInputs, overlay *SelectionPresenter, view PlaybackView, fallback geometry.Dimensions, logger *slog.Logger) *PlaybackPresenter {
	return &PlaybackPresenter{ctx: ctx, model: m, selection: selModel, opener: opener, sel: sel, overlay: overlay,
		view: view, fallback: fallback, viewport: fallback, requested: -1, logger: logger}
}

func (p *PlaybackPresenter) ready() bool {
	return p != nil && p.model != nil && p.view != nil && p.sel != nil
}

// Open loads path, resets playback state and requests the first frame.
func (p *PlaybackPresenter) Open(path string) error {
	if !p.ready() || p.opener == nil {
		return nil
	}
	src, err := p.opener.Open(p.ctx, path)
	if err != nil {
		p.view.SetStatus(fmt.Sprintf("Cannot open video: %v", err))
		return err
	}
	info := src.Info()
	p.source = src
	p.frame = nil
	p.requested = -1
	p.lastSeq = src.LatestFrame().Sequence
	p.model.Load(info)
	p.sel.ViewportResized(p.viewport)
	p.sel.SourceFrameChanged(info.Dimensions())
	p.sel.Reset()
	p.view.SetVideoPath(path)
	p.setPlaying(false)
	p.view.SetCropPreview(false)
	p.syncTrim()
	p.view.SetStatus(fmt.Sprintf("Loaded %s (%s)", filepath.Base(path), info))
	p.request()
	return nil
}

// Loaded reports whether a video is open.
func (p *PlaybackPresenter) Loaded() bool { return p.ready() && p.source != nil && p.model.Loaded() }

// Prev shows the previous frame.
func (p *PlaybackPresenter) Prev() { p.step(-1) }

// Next shows the next frame.
func (p *PlaybackPresenter) Next() { p.step(1) }

func (p *PlaybackPresenter) step(delta int) {
	if !p.Loaded() || p.model.PreviewCrop() {
		return
	}
	p.model.Step(delta)
	p.request()
}

// SeekTo shows frame, clamped to the video.
func (p *PlaybackPresenter) SeekTo(frame int) {
	if !p.Loaded() || p.model.PreviewCrop() {
		return
	}
	p.model.Seek(frame)
	p.request()
}

// TogglePlay starts or pauses playback.
func (p *PlaybackPresenter) TogglePlay(now time.Time) {
	if !p.Loaded() || p.model.PreviewCrop() {
		return
	}
	p.model.SetPlaying(!p.model.Playing(), now)
	p.setPlaying(p.model.Playing())
	p.request()
}

// ToggleTrim switches the trim range on or off.
func (p *PlaybackPresenter) ToggleTrim() {
	if !p.Loaded() {
		return
	}
	p.model.SetTrimEnabled(!p.model.TrimEnabled())
	p.syncTrim()
	p.request()
}

// MarkStart sets the trim start to the current frame.
func (p *PlaybackPresenter) MarkStart() { p.SetTrimStart(p.model.Current()) }

// MarkEnd sets the trim end to the current frame.
func (p *PlaybackPresenter) MarkEnd() { p.SetTrimEnd(p.model.Current()) }

// SetTrimStart moves the trim start to frame and shows it.
func (p *PlaybackPresenter) SetTrimStart(frame int) {
	if !p.Loaded() {
		return
	}
	p.model.SetTrimStart(frame)
	p.syncTrim()
	p.request()
}

// SetTrimEnd moves the trim end to frame and shows it.
func (p *PlaybackPresenter) SetTrimEnd(frame int) {
	if !p.Loaded() {
		return
	}
	p.model.SetTrimEnd(frame)
	p.syncTrim()
	p.request()
}

func (p *PlaybackPresenter) syncTrim() {
	info := p.model.Info()
	p.view.SetTrim(p.model.Trim(), p.model.TrimEnabled())
	p.view.SetTimeInfo(trim.Describe(p.model.Trim(), p.model.TrimEnabled(), info.FPS, info.TotalFrames))
}

// ResetSelection clears the crop selection.
func (p *PlaybackPresenter) ResetSelection() {
	if !p.ready() {
		return
	}
	p.sel.Reset()
}

// PreviewCrop shows the selected area of the current frame.
func (p *PlaybackPresenter) PreviewCrop() {
	if !p.Loaded() {
		return
	}
	r, ok := p.selection.Rect()
	if !ok {
		p.view.SetStatus("Select a crop area first")
		return
	}
	p.model.SetPreviewCrop(true)
	p.setPlaying(false)
	p.view.SetCropPreview(true)
	p.render()
	p.view.SetStatus(fmt.Sprintf("Crop preview: %dx%d | press Back to return", r.Width, r.Height))
}

// BackToPreview leaves the cropped preview.
func (p *PlaybackPresenter) BackToPreview() {
	if !p.Loaded() || !p.model.PreviewCrop() {
		return
	}
	p.model.SetPreviewCrop(false)
	p.view.SetCropPreview(false)
	p.render()
	p.view.SetStatus("Back to video preview")
}

// ViewportResized records the new canvas size, remaps the selection and
// redraws the current frame. Sizes Tk reports before layout fall back to
// the configured viewport.
func (p *PlaybackPresenter) ViewportResized(d geometry.Dimensions) {
	if !p.ready() {
		return
	}
	d = geometry.FallbackViewport(d, p.fallback)
	if d == p.viewport {
		return
	}
	p.viewport = d
	p.sel.ViewportResized(d)
	p.render()
}

// Tick advances playback and shows any newly decoded frame.
func (p *PlaybackPresenter) Tick(now time.Time) {
	if !p.Loaded() {
		return
	}
	if p.model.OnTick(now) {
		p.request()
	}
	if p.model.Playing() != p.playing {
		p.setPlaying(p.model.Playing())
	}
	snap := p.source.LatestFrame()
	if snap.Sequence == p.lastSeq {
		return
	}
	p.lastSeq = snap.Sequence
	if snap.Err != nil {
		p.view.SetStatus(fmt.Sprintf("Preview error: %v", snap.Err))
		return
	}
	if snap.Image == nil {
		return
	}
	b := snap.Image.Bounds()
	p.sel.SourceFrameChanged(geometry.Dim(b.Dx(), b.Dy()))
	p.frame = snap.Image
	p.render()
	if !p.model.PreviewCrop() {
		info := p.model.Info()
		p.view.SetStatus(fmt.Sprintf("Frame %d/%d (time %s)", snap.Index+1, info.TotalFrames,
			trim.FormatTime(trim.FrameTime(snap.Index, info.FPS))))
	}
}

func (p *PlaybackPresenter) setPlaying(playing bool) {
	p.playing = playing
	p.view.SetPlaying(playing)
}

func (p *PlaybackPresenter) request() {
	if p.source == nil {
		return
	}
	cur := p.model.Current()
	if cur == p.requested {
		return
	}
	p.requested = cur
	p.source.Request(cur)
}

func (p *PlaybackPresenter) render() {
	if p.frame == nil {
		return
	}
	if p.model.PreviewCrop() {
		r, ok := p.selection.Rect()
		if !ok {
			return
		}
		cropped, err := images.Crop(p.frame, r)
		if err != nil {
			p.view.SetStatus(fmt.Sprintf("Preview error: %v", err))
			return
		}
		t, err := geometry.Compute(geometry.Dim(r.Width, r.Height), p.viewport)
		if err != nil {
			return
		}
		p.view.ClearOverlay()
		p.view.ShowFrame(cropped, t)
		p.view.SetScaleInfo(t.String())
		return
	}
	t, ok := p.sel.Transform()
	if !ok {
		return
	}
	p.view.ShowFrame(p.frame, t)
	p.view.SetScaleInfo(t.String())
	p.overlay.Redraw()
}
