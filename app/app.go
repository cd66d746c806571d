package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/vidcrop-go/config"
	"github.com/soocke/vidcrop-go/debug"
	"github.com/soocke/vidcrop-go/domain/geometry"
	"github.com/soocke/vidcrop-go/ui/theme"
	"github.com/soocke/vidcrop-go/ui/view"
)

const (
	tick          = 30 * time.Millisecond
	debugInterval = 30 * time.Second
)

// Application owns the Tk main window and the update loop.
type Application struct {
	title   string
	config  *config.Config
	cfgPath string
	logger  *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	c       *AppContainer
	afterID string
}

func NewApp(title string, cfg *config.Config, cfgPath string, logger *slog.Logger) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Application{title: title, config: cfg, cfgPath: cfgPath, logger: logger, ctx: ctx, cancel: cancel}
	a.c = BuildContainer(ctx, cfg, logger)

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", cfg.WindowWidth, cfg.WindowHeight))
	return a
}

// Start builds the UI, opens videoPath when given and blocks in the Tk
// event loop until the window is closed.
func (a *Application) Start(videoPath string) {
	theme.SetDark(a.config.DarkMode)
	c := a.c
	pb := c.PlaybackPresenter
	c.RootView.Build(view.Handlers{
		Controls: view.ControlHandlers{
			Open:          a.open,
			Prev:          pb.Prev,
			Next:          pb.Next,
			TogglePlay:    func() { pb.TogglePlay(time.Now()) },
			Seek:          pb.SeekTo,
			MarkStart:     pb.MarkStart,
			MarkEnd:       pb.MarkEnd,
			ToggleTrim:    pb.ToggleTrim,
			ApplyTrim:     a.applyTrim,
			PreviewCrop:   pb.PreviewCrop,
			BackToPreview: pb.BackToPreview,
			Reset:         pb.ResetSelection,
			Export:        c.ExportPresenter.Export,
			CancelExport:  c.ExportPresenter.Cancel,
			Exit:          a.exitHandler,
		},
		Canvas: view.CanvasHandlers{
			PointerDown: func(p geometry.Point) {
				if !c.Playback.PreviewCrop() {
					c.Controller.PointerDown(p)
				}
			},
			PointerMove: c.Controller.PointerMove,
			PointerUp:   c.Controller.PointerUp,
			Resize:      pb.ViewportResized,
		},
	})

	if a.config.Debug {
		debug.StartMemLogger(a.ctx, debugInterval, a.logger)
		debug.StartGoroutineLogger(a.ctx, debugInterval, a.logger)
	}
	if videoPath != "" {
		a.open(videoPath)
	}

	c.Loop.Schedule = a.scheduleUpdate
	a.scheduleUpdate()
	App.Wait()
}

func (a *Application) open(path string) {
	if path == "" {
		a.c.RootView.SetStatus("Enter a video path first")
		return
	}
	if err := a.c.PlaybackPresenter.Open(path); err != nil {
		if a.logger != nil {
			a.logger.Error("open video failed", "path", path, "error", err)
		}
		return
	}
	a.config.LastVideo = path
	a.c.RootView.SetOutputPath("")
}

// applyTrim sets both trim bounds from the entry fields. The order avoids
// one bound being pushed by the stale value of the other.
func (a *Application) applyTrim(start, end int) {
	pb := a.c.PlaybackPresenter
	if start >= a.c.Playback.Trim().End {
		pb.SetTrimEnd(end)
		pb.SetTrimStart(start)
		return
	}
	pb.SetTrimStart(start)
	pb.SetTrimEnd(end)
}

func (a *Application) update() {
	func() {
		defer func() {
			if r := recover(); r != nil && a.logger != nil {
				a.logger.Error("update panic", "panic", r)
			}
		}()
		a.c.Loop.Tick()
	}()
}

func (a *Application) exitHandler() {
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	a.c.Loop.Schedule = nil
	a.c.ExportPresenter.Cancel()
	a.c.Opener.Close()
	a.cancel()
	if a.logger != nil {
		st := a.c.ExportSvc.Stats()
		attrs := []any{"exports", st.Completed, "failed", st.Failed, "frames", st.Frames}
		if l := a.c.Opener.Loader(); l != nil {
			attrs = append(attrs, "avg_decode", l.AvgDecode().String())
		}
		a.logger.Info("shutting down", attrs...)
	}
	if a.cfgPath != "" {
		if err := a.config.Save(a.cfgPath); err != nil && a.logger != nil {
			a.logger.Error("config save failed", "error", err)
		}
	}
	Destroy(App)
}

func (a *Application) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.update() })
}
