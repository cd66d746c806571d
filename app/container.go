package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/soocke/vidcrop-go/config"
	"github.com/soocke/vidcrop-go/domain/geometry"
	"github.com/soocke/vidcrop-go/domain/selection"
	"github.com/soocke/vidcrop-go/domain/video"
	"github.com/soocke/vidcrop-go/ui/model"
	"github.com/soocke/vidcrop-go/ui/presenter"
	"github.com/soocke/vidcrop-go/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config *config.Config
	Logger *slog.Logger

	Playback  *model.PlaybackModel
	Selection *model.SelectionModel
	Export    *model.ExportModel

	Opener     *videoOpener
	ExportSvc  video.ExportService
	Controller *selection.Controller
	RootView   *view.RootView

	// Presenters
	SelectionPresenter *presenter.SelectionPresenter
	PlaybackPresenter  *presenter.PlaybackPresenter
	ExportPresenter    *presenter.ExportPresenter
	Loop               *presenter.Loop
}

// BuildContainer constructs all components. Nothing touches Tk or ffmpeg
// until the view is built and a video is opened.
func BuildContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) *AppContainer {
	c := &AppContainer{Config: cfg, Logger: logger}
	c.Playback = model.NewPlaybackModel()
	c.Selection = model.NewSelectionModel()
	c.Export = &model.ExportModel{}

	c.Opener = newVideoOpener(cfg, video.ExecRunner, logger)
	c.ExportSvc = video.NewExportService(video.EncodeOptions{
		FFmpegPath:       cfg.FFmpegPath,
		VideoCodec:       cfg.VideoCodec,
		CRF:              cfg.CRF,
		Preset:           cfg.Preset,
		ProgressInterval: cfg.ProgressInterval,
	}, video.ExecRunner, logger)

	// View
	c.RootView = view.NewRootView(cfg, logger)

	// Selection presenter and controller reference each other.
	c.SelectionPresenter = presenter.NewSelectionPresenter(c.Selection, nil, c.RootView, logger)
	c.Controller = selection.NewController(c.SelectionPresenter, logger)
	c.SelectionPresenter.SetTransformSource(c.Controller)
	if logger != nil {
		c.Controller.AddListener(func(prev, next selection.State) {
			logger.Debug("selection state", "from", prev.String(), "to", next.String())
		})
	}

	fallback := geometry.Dim(cfg.ViewportWidth, cfg.ViewportHeight)
	c.PlaybackPresenter = presenter.NewPlaybackPresenter(ctx, c.Playback, c.Selection, c.Opener,
		c.Controller, c.SelectionPresenter, c.RootView, fallback, logger)
	c.ExportPresenter = presenter.NewExportPresenter(ctx, c.Export, c.Playback, c.Selection,
		c.ExportSvc, c.RootView, cfg.OutputExt, logger)
	// Loop scheduling is installed by the app once Tk is running.
	c.Loop = presenter.NewLoop(c.PlaybackPresenter, c.ExportPresenter, nil)
	return c
}

// videoOpener probes a file and starts a frame loader for it. Opening a new
// video cancels the decodes of the previous one.
type videoOpener struct {
	prober     *video.Prober
	ffmpegPath string
	run        video.Runner
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	loader *video.FrameLoader
}

func newVideoOpener(cfg *config.Config, run video.Runner, logger *slog.Logger) *videoOpener {
	return &videoOpener{
		prober:     video.NewProber(cfg.FFprobePath, logger),
		ffmpegPath: cfg.FFmpegPath,
		run:        run,
		logger:     logger,
	}
}

func (o *videoOpener) Open(ctx context.Context, path string) (presenter.FrameSource, error) {
	info, err := o.prober.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	loaderCtx, cancel := context.WithCancel(ctx)
	reader := video.NewFrameReader(info, o.ffmpegPath, o.run, o.logger)
	loader := video.NewFrameLoader(loaderCtx, reader, o.logger)

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.cancel, o.loader = cancel, loader
	o.mu.Unlock()
	if o.logger != nil {
		o.logger.Info("video opened", "path", path, "info", info.String())
	}
	return loader, nil
}

// Loader returns the frame loader of the current video, if any.
func (o *videoOpener) Loader() *video.FrameLoader {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loader
}

// Close stops decoding for the current video.
func (o *videoOpener) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}
