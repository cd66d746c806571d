package presenter

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/soocke/vidcrop-go/domain/geometry"
	"github.com/soocke/vidcrop-go/domain/selection"
	"github.com/soocke/vidcrop-go/domain/trim"
	"github.com/soocke/vidcrop-go/domain/video"
	"github.com/soocke/vidcrop-go/ui/model"
)

// mockView records every view call made by the presenters.
type mockView struct {
	overlay      geometry.Rect
	overlayShown bool
	pos, size    string
	status       []string
	frames       int
	lastFrame    image.Image
	lastT        geometry.Transform
	playing      bool
	trim         trim.Range
	trimOn       bool
	timeInfo     string
	scaleInfo    string
	cropPreview  bool
	path         string
	controlsOn   bool
	controlCalls int
}

func (v *mockView) ShowOverlay(r geometry.Rect)     { v.overlay, v.overlayShown = r, true }
func (v *mockView) ClearOverlay()                   { v.overlay, v.overlayShown = geometry.Rect{}, false }
func (v *mockView) SetCropInfo(pos, size string)    { v.pos, v.size = pos, size }
func (v *mockView) SetStatus(text string)           { v.status = append(v.status, text) }
func (v *mockView) SetPlaying(b bool)               { v.playing = b }
func (v *mockView) SetTrim(r trim.Range, on bool)   { v.trim, v.trimOn = r, on }
func (v *mockView) SetTimeInfo(s string)            { v.timeInfo = s }
func (v *mockView) SetScaleInfo(s string)           { v.scaleInfo = s }
func (v *mockView) SetCropPreview(b bool)           { v.cropPreview = b }
func (v *mockView) SetVideoPath(p string)           { v.path = p }
func (v *mockView) SetControlsEnabled(enabled bool) { v.controlsOn = enabled; v.controlCalls++ }
func (v *mockView) ShowFrame(img image.Image, t geometry.Transform) {
	v.frames++
	v.lastFrame, v.lastT = img, t
}

func (v *mockView) lastStatus() string {
	if len(v.status) == 0 {
		return ""
	}
	return v.status[len(v.status)-1]
}

// fakeSource decodes instantly: Request publishes a blank frame snapshot.
type fakeSource struct {
	info     video.Info
	snap     video.FrameSnapshot
	requests []int
}

func (s *fakeSource) Info() video.Info { return s.info }
func (s *fakeSource) Request(i int) {
	s.requests = append(s.requests, i)
	s.snap = video.FrameSnapshot{
		Image:    image.NewRGBA(image.Rect(0, 0, s.info.Width, s.info.Height)),
		Index:    i,
		Sequence: s.snap.Sequence + 1,
	}
}
func (s *fakeSource) LatestFrame() video.FrameSnapshot { return s.snap }

type fakeOpener struct {
	src *fakeSource
	err error
}

func (o *fakeOpener) Open(ctx context.Context, path string) (FrameSource, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.src.info.Path = path
	return o.src, nil
}

type harness struct {
	view      *mockView
	src       *fakeSource
	ctrl      *selection.Controller
	selModel  *model.SelectionModel
	playModel *model.PlaybackModel
	playback  *PlaybackPresenter
	sel       *SelectionPresenter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{view: &mockView{}, selModel: model.NewSelectionModel(), playModel: model.NewPlaybackModel()}
	h.src = &fakeSource{info: video.Info{Width: 1920, Height: 1080, FPS: 30, TotalFrames: 300}}
	h.sel = NewSelectionPresenter(h.selModel, nil, h.view, nil)
	h.ctrl = selection.NewController(h.sel, nil)
	h.sel.SetTransformSource(h.ctrl)
	h.playback = NewPlaybackPresenter(context.Background(), h.playModel, h.selModel, &fakeOpener{src: h.src},
		h.ctrl, h.sel, h.view, geometry.Dim(800, 450), nil)
	if err := h.playback.Open("/videos/clip.mov"); err != nil {
		t.Fatalf("open: %v", err)
	}
	h.playback.Tick(time.Unix(0, 0))
	return h
}

func (h *harness) drag(from, to geometry.Point) {
	h.ctrl.PointerDown(from)
	h.ctrl.PointerMove(to)
	h.ctrl.PointerUp(to)
}

func TestPlaybackPresenter_OpenShowsFirstFrame(t *testing.T) {
	h := newHarness(t)
	if h.view.frames != 1 || h.view.lastT.Display != geometry.Dim(800, 450) {
		t.Fatalf("expected first frame letterboxed to 800x450, frames=%d t=%v", h.view.frames, h.view.lastT)
	}
	if h.view.path != "/videos/clip.mov" {
		t.Fatalf("unexpected path %q", h.view.path)
	}
	if h.view.lastStatus() != "Frame 1/300 (time 00:00.000)" {
		t.Fatalf("unexpected status %q", h.view.lastStatus())
	}
	if h.view.scaleInfo != "Scale X: 0.4167, Y: 0.4167 | Offset X: 0, Y: 0" {
		t.Fatalf("unexpected scale info %q", h.view.scaleInfo)
	}
	if h.view.timeInfo != "Duration: 00:10.000" {
		t.Fatalf("unexpected time info %q", h.view.timeInfo)
	}
}

func TestPlaybackPresenter_OpenError(t *testing.T) {
	view := &mockView{}
	ctrl := selection.NewController(nil, nil)
	p := NewPlaybackPresenter(context.Background(), model.NewPlaybackModel(), model.NewSelectionModel(),
		&fakeOpener{err: video.ErrOpenVideo}, ctrl, nil, view, geometry.Dim(800, 450), nil)
	if err := p.Open("missing.mp4"); !errors.Is(err, video.ErrOpenVideo) {
		t.Fatalf("expected open error, got %v", err)
	}
	if p.Loaded() || !strings.HasPrefix(view.lastStatus(), "Cannot open video") {
		t.Fatalf("unexpected state loaded=%v status=%q", p.Loaded(), view.lastStatus())
	}
}

func TestSelectionPresenter_DragUpdatesModelAndOverlay(t *testing.T) {
	h := newHarness(t)
	h.drag(geometry.Pt(100, 100), geometry.Pt(500, 300))

	r, ok := h.selModel.Rect()
	if !ok || r != (geometry.Rect{X: 240, Y: 240, Width: 960, Height: 480}) {
		t.Fatalf("unexpected selection %v ok=%v", r, ok)
	}
	if !h.view.overlayShown || h.view.overlay != (geometry.Rect{X: 100, Y: 100, Width: 400, Height: 200}) {
		t.Fatalf("unexpected overlay %v", h.view.overlay)
	}
	if h.view.pos != "X: 240, Y: 240" || h.view.size != "W: 960, H: 480" {
		t.Fatalf("unexpected crop info %q %q", h.view.pos, h.view.size)
	}
	if h.view.lastStatus() != "Selected crop area: 960x480" {
		t.Fatalf("unexpected status %q", h.view.lastStatus())
	}

	h.playback.ResetSelection()
	if _, ok := h.selModel.Rect(); ok || h.view.overlayShown {
		t.Fatalf("reset must clear model and overlay")
	}
}

func TestPlaybackPresenter_ResizeReprojectsOverlay(t *testing.T) {
	h := newHarness(t)
	h.drag(geometry.Pt(100, 100), geometry.Pt(500, 300))
	h.playback.ViewportResized(geometry.Dim(1600, 900))
	if h.view.overlay != (geometry.Rect{X: 200, Y: 200, Width: 800, Height: 400}) {
		t.Fatalf("overlay not reprojected: %v", h.view.overlay)
	}
	if _, ok := h.selModel.Rect(); !ok {
		t.Fatalf("resize must keep the selection")
	}
	// a bogus pre-layout size falls back to the configured viewport
	h.playback.ViewportResized(geometry.Dim(1, 1))
	if h.view.lastT.Viewport != geometry.Dim(800, 450) {
		t.Fatalf("expected fallback viewport, got %v", h.view.lastT.Viewport)
	}
}

func TestPlaybackPresenter_NavigationAndTrim(t *testing.T) {
	h := newHarness(t)
	h.playback.Next()
	h.playback.Next()
	h.playback.Tick(time.Unix(0, 0))
	if h.playModel.Current() != 2 || h.view.lastStatus() != "Frame 3/300 (time 00:00.067)" {
		t.Fatalf("unexpected frame %d status %q", h.playModel.Current(), h.view.lastStatus())
	}
	h.playback.Prev()
	h.playback.MarkStart()
	h.playback.SeekTo(90)
	h.playback.MarkEnd()
	h.playback.ToggleTrim()
	if !h.view.trimOn || h.view.trim != (trim.Range{Start: 1, End: 90}) {
		t.Fatalf("unexpected trim %v on=%v", h.view.trim, h.view.trimOn)
	}
	if h.view.timeInfo != "Trim: 00:00.033 - 00:03.000 (duration 00:02.967, 90 frames)" {
		t.Fatalf("unexpected time info %q", h.view.timeInfo)
	}
}

func TestPlaybackPresenter_PlayRequestsFrames(t *testing.T) {
	h := newHarness(t)
	base := time.Now()
	h.playback.TogglePlay(base)
	if !h.view.playing {
		t.Fatalf("expected playing")
	}
	h.playback.Tick(base.Add(100 * time.Millisecond))
	if h.playModel.Current() != 3 {
		t.Fatalf("expected frame 3 after 100ms at 30fps, got %d", h.playModel.Current())
	}
	h.playback.TogglePlay(base.Add(110 * time.Millisecond))
	if h.view.playing {
		t.Fatalf("expected paused")
	}
	last := h.src.requests[len(h.src.requests)-1]
	if last != 3 {
		t.Fatalf("expected frame 3 requested, got %v", h.src.requests)
	}
}

func TestPlaybackPresenter_CropPreview(t *testing.T) {
	h := newHarness(t)
	h.playback.PreviewCrop()
	if h.view.cropPreview || h.view.lastStatus() != "Select a crop area first" {
		t.Fatalf("preview without selection must be refused, status %q", h.view.lastStatus())
	}
	h.drag(geometry.Pt(100, 100), geometry.Pt(500, 300))
	h.playback.PreviewCrop()
	if !h.view.cropPreview || h.view.lastFrame.Bounds().Dx() != 960 || h.view.overlayShown {
		t.Fatalf("expected cropped 960px frame without overlay, got %v", h.view.lastFrame.Bounds())
	}
	if h.view.lastStatus() != "Crop preview: 960x480 | press Back to return" {
		t.Fatalf("unexpected status %q", h.view.lastStatus())
	}
	h.playback.Next()
	if h.playModel.Current() != 0 {
		t.Fatalf("navigation disabled during crop preview")
	}
	h.playback.BackToPreview()
	if h.view.cropPreview || h.view.lastFrame.Bounds().Dx() != 1920 || !h.view.overlayShown {
		t.Fatalf("expected full frame with overlay after back")
	}
}

type fakeExporter struct {
	jobs   []video.Job
	err    error
	events chan video.ExportEvent
	cancel int
}

func (f *fakeExporter) Start(ctx context.Context, job video.Job) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if err := job.Validate(); err != nil {
		return "", err
	}
	f.jobs = append(f.jobs, job)
	return "job-1", nil
}
func (f *fakeExporter) Cancel()                           { f.cancel++ }
func (f *fakeExporter) Events() <-chan video.ExportEvent { return f.events }

func TestExportPresenter_Lifecycle(t *testing.T) {
	h := newHarness(t)
	svc := &fakeExporter{events: make(chan video.ExportEvent, 8)}
	em := &model.ExportModel{}
	p := NewExportPresenter(context.Background(), em, h.playModel, h.selModel, svc, h.view, ".mp4", nil)

	p.Export("")
	if len(svc.jobs) != 0 || h.view.lastStatus() != "Select a crop area or enable trimming first" {
		t.Fatalf("export without crop or trim must be refused, status %q", h.view.lastStatus())
	}

	h.drag(geometry.Pt(100, 100), geometry.Pt(500, 300))
	if got := p.SuggestedOutput(); got != "/videos/clip_crop_960x480.mp4" {
		t.Fatalf("unexpected suggested output %q", got)
	}
	p.Export("")
	if len(svc.jobs) != 1 || !em.Running() || h.view.controlsOn || h.view.controlCalls != 1 {
		t.Fatalf("expected running export with controls disabled")
	}
	job := svc.jobs[0]
	if !job.HasCrop || job.HasTrim || job.Output != "/videos/clip_crop_960x480.mp4" {
		t.Fatalf("unexpected job %+v", job)
	}
	p.Export("")
	if len(svc.jobs) != 1 {
		t.Fatalf("export must be idempotent while running")
	}

	svc.events <- video.ExportEvent{Kind: video.EventProgress, Operation: "crop", Processed: 10, Total: 300}
	p.Tick()
	if h.view.lastStatus() != "crop progress: 10/300 frames (3.3%)" {
		t.Fatalf("unexpected progress status %q", h.view.lastStatus())
	}
	p.Cancel()
	if svc.cancel != 1 {
		t.Fatalf("expected cancel forwarded")
	}
	svc.events <- video.ExportEvent{Kind: video.EventCompleted, Operation: "crop", Output: job.Output}
	p.Tick()
	if em.Running() || !h.view.controlsOn {
		t.Fatalf("completion must re-enable controls")
	}
	if h.view.lastStatus() != "crop complete! Saved as: clip_crop_960x480.mp4" {
		t.Fatalf("unexpected completion status %q", h.view.lastStatus())
	}
}

func TestExportPresenter_FailureReenablesControls(t *testing.T) {
	h := newHarness(t)
	svc := &fakeExporter{events: make(chan video.ExportEvent, 8)}
	em := &model.ExportModel{}
	p := NewExportPresenter(context.Background(), em, h.playModel, h.selModel, svc, h.view, ".mp4", nil)
	h.playback.ToggleTrim()
	h.playback.SetTrimEnd(29)
	p.Export("/tmp/out.mp4")
	if len(svc.jobs) != 1 || !svc.jobs[0].HasTrim || svc.jobs[0].Trim != (trim.Range{Start: 0, End: 29}) {
		t.Fatalf("expected trim job, got %+v", svc.jobs)
	}
	svc.events <- video.ExportEvent{Kind: video.EventWarning, Message: "wrote 20 of 30 frames"}
	svc.events <- video.ExportEvent{Kind: video.EventFailed, Message: "disk full"}
	p.Tick()
	if em.Running() || !h.view.controlsOn || h.view.lastStatus() != "Processing failed! disk full" {
		t.Fatalf("unexpected state after failure, status %q", h.view.lastStatus())
	}

	svc.err = errors.New("boom")
	p.Export("/tmp/out.mp4")
	if h.view.lastStatus() != "Processing failed! boom" || em.Running() {
		t.Fatalf("start error must be reported, status %q", h.view.lastStatus())
	}
}

func TestLoop_TickIsNilSafe(t *testing.T) {
	var l *Loop
	l.Tick()
	scheduled := 0
	(&Loop{Schedule: func() { scheduled++ }}).Tick()
	if scheduled != 1 {
		t.Fatalf("expected schedule call")
	}
}
