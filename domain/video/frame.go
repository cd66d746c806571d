package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Runner executes an external command, streaming its stdout and stderr.
type Runner func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// FrameArgs builds the ffmpeg arguments that write frame index as a single
// PNG to stdout.
func FrameArgs(path string, index int, fps float64) []string {
	seek := 0.0
	if fps > 0 {
		seek = float64(index) / fps
	}
	return ffmpeg.Input(path, ffmpeg.KwArgs{"ss": strconv.FormatFloat(seek, 'f', 6, 64)}).
		Output("pipe:", ffmpeg.KwArgs{"frames:v": 1, "format": "image2pipe", "vcodec": "png"}).
		GlobalArgs("-loglevel", "error", "-nostdin").
		GetArgs()
}

// FrameReader decodes individual frames of one video.
type FrameReader struct {
	info       Info
	ffmpegPath string
	run        Runner
	logger     *slog.Logger
}

// NewFrameReader returns a reader for the probed video. A nil runner uses
// ExecRunner.
func NewFrameReader(info Info, ffmpegPath string, run Runner, logger *slog.Logger) *FrameReader {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if run == nil {
		run = ExecRunner
	}
	return &FrameReader{info: info, ffmpegPath: ffmpegPath, run: run, logger: logger}
}

// Info returns the metadata of the video being read.
func (r *FrameReader) Info() Info { return r.info }

// ReadFrame decodes the frame at index.
func (r *FrameReader) ReadFrame(ctx context.Context, index int) (image.Image, error) {
	if index < 0 || (r.info.TotalFrames > 0 && index >= r.info.TotalFrames) {
		return nil, fmt.Errorf("%w: %d of %d", ErrFrameOutOfRange, index, r.info.TotalFrames)
	}
	var stdout, stderr bytes.Buffer
	args := FrameArgs(r.info.Path, index, r.info.FPS)
	if err := r.run(ctx, r.ffmpegPath, args, &stdout, &stderr); err != nil {
		return nil, fmt.Errorf("decode frame %d: %w: %s", index, err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: frame %d produced no data", ErrFrameOutOfRange, index)
	}
	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode frame %d png: %w", index, err)
	}
	return img, nil
}

// FrameSnapshot carries the latest decoded frame and metadata.
type FrameSnapshot struct {
	Image     image.Image
	Index     int
	DecodedAt time.Time
	Sequence  uint64
	Err       error
}

// FrameLoader decodes requested frames on a background goroutine and keeps
// only the most recent result. Requests made while a decode is in flight
// collapse into the newest one.
type FrameLoader struct {
	reader  *FrameReader
	logger  *slog.Logger
	latest  atomic.Pointer[FrameSnapshot]
	seq     atomic.Uint64
	decodes atomic.Uint64
	nanos   atomic.Uint64

	mu      sync.Mutex
	pending int
	hasWork bool
	busy    bool
	ctx     context.Context
}

// NewFrameLoader wraps reader. ctx bounds every decode the loader starts.
func NewFrameLoader(ctx context.Context, reader *FrameReader, logger *slog.Logger) *FrameLoader {
	return &FrameLoader{reader: reader, logger: logger, ctx: ctx}
}

// Info returns the metadata of the underlying video.
func (l *FrameLoader) Info() Info { return l.reader.Info() }

// Request schedules a decode of index.
func (l *FrameLoader) Request(index int) {
	l.mu.Lock()
	l.pending = index
	l.hasWork = true
	if l.busy {
		l.mu.Unlock()
		return
	}
	l.busy = true
	l.mu.Unlock()
	go l.work()
}

// LatestFrame returns the most recently decoded frame.
func (l *FrameLoader) LatestFrame() FrameSnapshot {
	snap := l.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

// Busy reports whether a decode is in flight or queued.
func (l *FrameLoader) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busy
}

// AvgDecode returns the mean time spent per decoded frame.
func (l *FrameLoader) AvgDecode() time.Duration {
	n := l.decodes.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(l.nanos.Load() / n)
}

func (l *FrameLoader) work() {
	defer func() {
		if r := recover(); r != nil {
			l.mu.Lock()
			l.busy = false
			l.mu.Unlock()
			if l.logger != nil {
				l.logger.Error("frame loader panic", "error", r)
			}
		}
	}()
	for {
		l.mu.Lock()
		if !l.hasWork {
			l.busy = false
			l.mu.Unlock()
			return
		}
		index := l.pending
		l.hasWork = false
		l.mu.Unlock()

		start := time.Now()
		img, err := l.decode(index)
		l.nanos.Add(uint64(time.Since(start).Nanoseconds()))
		l.decodes.Add(1)
		if err != nil && l.logger != nil {
			l.logger.Error("read frame", "index", index, "error", err)
		}
		seq := l.seq.Add(1)
		l.latest.Store(&FrameSnapshot{Image: img, Index: index, DecodedAt: time.Now(), Sequence: seq, Err: err})
	}
}

// decode reads one frame, reporting a panic in the decoder as an error so
// the loader keeps serving requests.
func (l *FrameLoader) decode(index int) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("decode frame %d: panic: %v", index, r)
		}
	}()
	return l.reader.ReadFrame(l.ctx, index)
}
