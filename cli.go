package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/soocke/vidcrop-go/app"
	"github.com/soocke/vidcrop-go/config"
	"github.com/soocke/vidcrop-go/domain/geometry"
	"github.com/soocke/vidcrop-go/domain/trim"
	"github.com/soocke/vidcrop-go/domain/video"
)

type globalOptions struct {
	configPath string
	logLevel   string
	logFile    string
}

// load reads the config file and applies flag overrides. Log records go to
// out so subcommand output on stdout stays machine readable.
func (o *globalOptions) load(out io.Writer) (*config.Config, *slog.Logger) {
	cfg, err := config.Load(o.configPath)
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
	_ = cfg.Validate()
	logger := NewLogger(out, ParseLevel(cfg.LogLevel), cfg.LogFile)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", o.configPath, "error", err)
	}
	return cfg, logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "vidcrop [video]",
		Short:         "Crop and trim videos with a live preview",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := opts.load(cmd.OutOrStdout())
			path := cfg.LastVideo
			if len(args) > 0 {
				path = args[0]
			}
			if path != "" {
				if _, err := os.Stat(path); err != nil {
					logger.Warn("video not found, starting empty", "path", path)
					path = ""
				}
			}
			app.NewApp("Video Crop Tool", cfg, opts.configPath, logger).Start(path)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath(), "path to the JSON config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "also write logs to this rotated file")
	root.AddCommand(newProbeCmd(opts), newExportCmd(opts))
	return root
}

func newProbeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <video>",
		Short: "Print resolution, frame rate and frame count of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := opts.load(cmd.ErrOrStderr())
			info, err := video.NewProber(cfg.FFprobePath, logger).Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", filepath.Base(info.Path), info, trim.FormatTime(info.Duration()))
			return nil
		},
	}
}

type exportFlags struct {
	crop   string
	start  int
	end    int
	output string
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	f := &exportFlags{start: -1, end: -1}
	cmd := &cobra.Command{
		Use:   "export <video>",
		Short: "Crop and/or trim a video without the GUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := opts.load(cmd.ErrOrStderr())
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			info, err := video.NewProber(cfg.FFprobePath, logger).Probe(ctx, args[0])
			if err != nil {
				return err
			}
			job, err := f.job(info, cfg.OutputExt)
			if err != nil {
				return err
			}
			svc := video.NewExportService(video.EncodeOptions{
				FFmpegPath:       cfg.FFmpegPath,
				VideoCodec:       cfg.VideoCodec,
				CRF:              cfg.CRF,
				Preset:           cfg.Preset,
				ProgressInterval: cfg.ProgressInterval,
			}, video.ExecRunner, logger)
			return runExport(ctx, svc, job, cmd)
		},
	}
	cmd.Flags().StringVar(&f.crop, "crop", "", "crop rectangle in source pixels as x,y,w,h")
	cmd.Flags().IntVar(&f.start, "start", -1, "first frame to keep (enables trimming)")
	cmd.Flags().IntVar(&f.end, "end", -1, "last frame to keep (enables trimming)")
	cmd.Flags().StringVarP(&f.output, "out", "o", "", "output file (default derived from the input name)")
	return cmd
}

// job turns the flags into an export job for info.
func (f *exportFlags) job(info video.Info, ext string) (video.Job, error) {
	job := video.Job{Input: info.Path, Info: info}
	if f.crop != "" {
		r, err := parseCrop(f.crop)
		if err != nil {
			return job, err
		}
		job.Crop, job.HasCrop = r, true
	}
	if f.start >= 0 || f.end >= 0 {
		r := trim.Full(info.TotalFrames)
		if f.end >= 0 {
			r = r.SetEnd(f.end, info.TotalFrames)
		}
		if f.start >= 0 {
			r = r.SetStart(f.start, info.TotalFrames)
		}
		job.Trim, job.HasTrim = r, true
	}
	job.Output = f.output
	if job.Output == "" {
		job.Output = filepath.Join(filepath.Dir(info.Path),
			video.OutputFilename(info.Path, job.Crop, job.HasTrim, job.Trim, ext))
	}
	return job, job.Validate()
}

// parseCrop parses "x,y,w,h".
func parseCrop(s string) (geometry.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("crop %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("crop %q: %w", s, err)
		}
		v[i] = n
	}
	r := geometry.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if r.X < 0 || r.Y < 0 || r.Empty() {
		return geometry.Rect{}, fmt.Errorf("crop %q: %w", s, video.ErrCropOutOfBounds)
	}
	return r, nil
}

// runExport starts job and renders its progress until it finishes.
func runExport(ctx context.Context, svc video.ExportService, job video.Job, cmd *cobra.Command) error {
	id, err := svc.Start(ctx, job)
	if err != nil {
		return err
	}
	bar := progressbar.Default(int64(job.ExpectedFrames()), job.Operation())
	for {
		select {
		case ev := <-svc.Events():
			if ev.JobID != id {
				continue
			}
			switch ev.Kind {
			case video.EventProgress:
				_ = bar.Set(ev.Processed)
			case video.EventWarning:
				fmt.Fprintln(cmd.ErrOrStderr(), "\nwarning:", ev.Message)
			case video.EventCompleted:
				_ = bar.Finish()
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s complete! Saved as: %s\n", ev.Operation, ev.Output)
				return nil
			case video.EventFailed:
				if ev.Err != nil {
					return ev.Err
				}
				return errors.New(ev.Message)
			}
		case <-ctx.Done():
			svc.Cancel()
			// The failed event still follows; keep draining for it.
			ctx = context.Background()
		}
	}
}
