package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const exportEventBuffer = 64

// EventKind classifies export events.
type EventKind int

const (
	EventProgress EventKind = iota
	EventCompleted
	EventFailed
	EventWarning
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// ExportEvent reports export progress or outcome to the UI or CLI.
type ExportEvent struct {
	Kind      EventKind
	JobID     string
	Operation string
	Processed int
	Total     int
	Output    string
	Message   string
	Err       error
}

// Percent returns progress in [0,100], 0 when the total is unknown.
func (e ExportEvent) Percent() float64 {
	if e.Total <= 0 {
		return 0
	}
	p := float64(e.Processed) / float64(e.Total) * 100
	if p > 100 {
		p = 100
	}
	return p
}

// ExportStats summarises exporter behaviour for instrumentation.
type ExportStats struct {
	Started      uint64
	Completed    uint64
	Failed       uint64
	Frames       uint64
	LastDuration time.Duration
	LastOutput   string
}

// ExportService runs one export at a time in the background and publishes
// ExportEvents. Use NewExportService to construct an instance.
type ExportService interface {
	Start(ctx context.Context, job Job) (string, error)
	Cancel()
	Running() bool
	Events() <-chan ExportEvent
	Stats() ExportStats
}

type exportService struct {
	opts   EncodeOptions
	run    Runner
	logger *slog.Logger
	events chan ExportEvent

	running   atomic.Bool
	started   atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	frames    atomic.Uint64
	lastNanos atomic.Int64
	lastOut   atomic.Pointer[string]

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewExportService constructs an exporter. A nil runner uses ExecRunner.
func NewExportService(opts EncodeOptions, run Runner, logger *slog.Logger) ExportService {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = 10
	}
	if run == nil {
		run = ExecRunner
	}
	return &exportService{opts: opts, run: run, logger: logger, events: make(chan ExportEvent, exportEventBuffer)}
}

func (s *exportService) Events() <-chan ExportEvent { return s.events }

func (s *exportService) Running() bool { return s.running.Load() }

func (s *exportService) Stats() ExportStats {
	st := ExportStats{
		Started:      s.started.Load(),
		Completed:    s.completed.Load(),
		Failed:       s.failed.Load(),
		Frames:       s.frames.Load(),
		LastDuration: time.Duration(s.lastNanos.Load()),
	}
	if p := s.lastOut.Load(); p != nil {
		st.LastOutput = *p
	}
	return st
}

// Start validates job and begins exporting it. The job ID, assigned when
// empty, is returned.
func (s *exportService) Start(ctx context.Context, job Job) (string, error) {
	if err := job.Validate(); err != nil {
		return "", err
	}
	if !s.running.CompareAndSwap(false, true) {
		return "", ErrExportRunning
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	s.started.Add(1)
	go s.export(runCtx, cancel, job)
	return job.ID, nil
}

// Cancel aborts the running export, if any.
func (s *exportService) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *exportService) export(ctx context.Context, cancel context.CancelFunc, job Job) {
	defer s.running.Store(false)
	defer cancel()

	start := time.Now()
	total := job.ExpectedFrames()
	op := job.Operation()
	defer func() {
		if r := recover(); r != nil {
			s.fail(job, op, 0, total, time.Since(start), fmt.Errorf("%w: panic: %v", ErrCreateOutput, r))
		}
	}()
	args := BuildExportArgs(job, s.opts)
	if s.logger != nil {
		s.logger.Info("export started", "job", job.ID, "operation", op, "input", job.Input,
			"output", job.Output, "frames", total)
		s.logger.Debug("ffmpeg args", "job", job.ID, "args", strings.Join(args, " "))
	}

	pr, pw := io.Pipe()
	var stderr bytes.Buffer
	last := 0
	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		_ = ScanProgress(pr, s.opts.ProgressInterval, func(p Progress) {
			if p.Done && p.Frame == last {
				return
			}
			last = p.Frame
			s.publish(ExportEvent{Kind: EventProgress, JobID: job.ID, Operation: op,
				Processed: p.Frame, Total: total, Output: job.Output})
		})
		_, _ = io.Copy(io.Discard, pr)
	}()
	err := s.runEncoder(ctx, args, pw, &stderr)
	_ = pw.Close()
	<-scanDone

	elapsed := time.Since(start)
	s.lastNanos.Store(int64(elapsed))
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		} else if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %v: %s", ErrCreateOutput, err, msg)
		} else if !errors.Is(err, ErrCreateOutput) {
			err = fmt.Errorf("%w: %v", ErrCreateOutput, err)
		}
		s.fail(job, op, last, total, elapsed, err)
		return
	}

	s.frames.Add(uint64(last))
	if total > 0 && last > 0 && last < total {
		s.publish(ExportEvent{Kind: EventWarning, JobID: job.ID, Operation: op, Processed: last, Total: total,
			Output: job.Output, Message: fmt.Sprintf("wrote %d of %d frames", last, total)})
	}
	out := job.Output
	s.lastOut.Store(&out)
	s.completed.Add(1)
	if s.logger != nil {
		s.logger.Info("export completed", "job", job.ID, "output", job.Output, "frames", last, "elapsed", elapsed)
	}
	s.finish(ExportEvent{Kind: EventCompleted, JobID: job.ID, Operation: op, Processed: last,
		Total: total, Output: job.Output})
}

// runEncoder calls the runner, turning a panic into an export error so the
// progress pipe is still closed and the failure path runs.
func (s *exportService) runEncoder(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: encoder panic: %v", ErrCreateOutput, r)
		}
	}()
	return s.run(ctx, s.opts.FFmpegPath, args, stdout, stderr)
}

// fail removes the partial output, counts the failure and reports it.
func (s *exportService) fail(job Job, op string, processed, total int, elapsed time.Duration, err error) {
	if rmErr := os.Remove(job.Output); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && s.logger != nil {
		s.logger.Warn("remove partial output", "path", job.Output, "error", rmErr)
	}
	s.failed.Add(1)
	if s.logger != nil {
		s.logger.Error("export failed", "job", job.ID, "error", err, "elapsed", elapsed)
	}
	s.finish(ExportEvent{Kind: EventFailed, JobID: job.ID, Operation: op, Processed: processed,
		Total: total, Output: job.Output, Err: err, Message: err.Error()})
}

// finish marks the service idle, then delivers the terminal event.
func (s *exportService) finish(ev ExportEvent) {
	s.running.Store(false)
	s.publish(ev)
}

// publish drops progress events when the buffer is full; terminal events
// always block until delivered.
func (s *exportService) publish(ev ExportEvent) {
	if ev.Kind == EventProgress {
		select {
		case s.events <- ev:
		default:
		}
		return
	}
	s.events <- ev
}
