package video

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/soocke/vidcrop-go/domain/geometry"
	"github.com/soocke/vidcrop-go/domain/trim"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Job describes one export: an optional spatial crop and an optional frame
// range of the input video.
type Job struct {
	ID      string
	Input   string
	Output  string
	Info    Info
	Crop    geometry.Rect
	HasCrop bool
	Trim    trim.Range
	HasTrim bool
}

// Validate checks that the job does something and fits the source frame.
func (j Job) Validate() error {
	if !j.HasCrop && !j.HasTrim {
		return ErrNothingToExport
	}
	if j.Input == "" || j.Output == "" {
		return fmt.Errorf("%w: missing input or output path", ErrCreateOutput)
	}
	if filepath.Clean(j.Input) == filepath.Clean(j.Output) {
		return fmt.Errorf("%w: output would overwrite input", ErrCreateOutput)
	}
	if j.HasCrop {
		if j.Crop.Empty() || !j.Crop.Within(j.Info.Dimensions()) {
			return fmt.Errorf("%w: %s in %s", ErrCropOutOfBounds, j.Crop, j.Info.Dimensions())
		}
	}
	if j.HasTrim {
		if !j.Trim.Valid() || (j.Info.TotalFrames > 0 && j.Trim.End >= j.Info.TotalFrames) {
			return fmt.Errorf("%w: trim %s of %d frames", ErrNothingToExport, j.Trim, j.Info.TotalFrames)
		}
	}
	return nil
}

// ExpectedFrames is the number of frames the export should write.
func (j Job) ExpectedFrames() int {
	if j.HasTrim {
		return j.Trim.Frames()
	}
	return j.Info.TotalFrames
}

// Operation names what the job does: "crop", "trim" or "crop+trim".
func (j Job) Operation() string {
	switch {
	case j.HasCrop && j.HasTrim:
		return "crop+trim"
	case j.HasTrim:
		return "trim"
	default:
		return "crop"
	}
}

// EncodeOptions are the encoder settings applied to every export.
type EncodeOptions struct {
	FFmpegPath       string
	VideoCodec       string
	CRF              int
	Preset           string
	ProgressInterval int
}

// DefaultEncodeOptions mirrors the config defaults.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{FFmpegPath: "ffmpeg", VideoCodec: "libx264", CRF: 18, Preset: "medium", ProgressInterval: 10}
}

// BuildExportArgs returns the ffmpeg arguments for job. Audio is dropped.
// Trimming keeps frames Start..End inclusive and restarts timestamps at 0.
// Crop sizes are rounded down to even because yuv420p halves chroma on both
// axes; the origin is kept so the crop stays inside the frame.
func BuildExportArgs(job Job, opts EncodeOptions) []string {
	stream := ffmpeg.Input(job.Input)
	if job.HasTrim {
		stream = stream.
			Filter("trim", ffmpeg.Args{}, ffmpeg.KwArgs{"start_frame": job.Trim.Start, "end_frame": job.Trim.End + 1}).
			Filter("setpts", ffmpeg.Args{"PTS-STARTPTS"})
	}
	if job.HasCrop {
		c := job.Crop
		stream = stream.Filter("crop", ffmpeg.Args{
			strconv.Itoa(evenDown(c.Width)), strconv.Itoa(evenDown(c.Height)), strconv.Itoa(c.X), strconv.Itoa(c.Y),
		})
	}
	out := ffmpeg.KwArgs{"an": "", "c:v": opts.VideoCodec, "pix_fmt": "yuv420p"}
	if opts.VideoCodec == "libx264" || opts.VideoCodec == "libx265" {
		out["crf"] = opts.CRF
		out["preset"] = opts.Preset
	}
	return stream.Output(job.Output, out).
		GlobalArgs("-progress", "pipe:1", "-nostats", "-loglevel", "error", "-nostdin").
		OverWriteOutput().
		GetArgs()
}

func evenDown(n int) int {
	if n < 2 || n%2 == 0 {
		return n
	}
	return n - 1
}

// Progress is one update from ffmpeg's -progress stream.
type Progress struct {
	Frame int
	Done  bool
}

// ScanProgress reads ffmpeg -progress key=value lines from r and calls fn
// whenever the frame counter crosses a multiple of interval, and once more
// when ffmpeg reports the end of the stream.
func ScanProgress(r io.Reader, interval int, fn func(Progress)) error {
	if interval <= 0 {
		interval = 1
	}
	sc := bufio.NewScanner(r)
	frame, reported := 0, -1
	for sc.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "frame":
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				continue
			}
			frame = n
			if bucket := frame / interval; bucket > 0 && bucket != reported {
				reported = bucket
				fn(Progress{Frame: frame})
			}
		case "progress":
			if strings.TrimSpace(val) == "end" {
				fn(Progress{Frame: frame, Done: true})
			}
		}
	}
	return sc.Err()
}

// OutputFilename returns the suggested export file name for videoPath:
// <base>[_crop_WxH][_trim_S-E]<ext>. ext defaults to ".mp4".
func OutputFilename(videoPath string, crop geometry.Rect, trimEnabled bool, r trim.Range, ext string) string {
	if ext == "" {
		ext = ".mp4"
	}
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	var sb strings.Builder
	sb.WriteString(base)
	if crop.Width > 0 && crop.Height > 0 {
		fmt.Fprintf(&sb, "_crop_%dx%d", crop.Width, crop.Height)
	}
	if trimEnabled {
		fmt.Fprintf(&sb, "_trim_%d-%d", r.Start, r.End)
	}
	sb.WriteString(ext)
	return sb.String()
}
