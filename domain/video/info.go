package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/soocke/vidcrop-go/domain/geometry"
)

// Info describes the video stream of an opened file.
type Info struct {
	Path        string
	Width       int
	Height      int
	FPS         float64
	TotalFrames int
}

// Dimensions returns the frame size.
func (i Info) Dimensions() geometry.Dimensions { return geometry.Dim(i.Width, i.Height) }

// Duration returns the length in seconds, 0 when fps is unknown.
func (i Info) Duration() float64 {
	if i.FPS <= 0 {
		return 0
	}
	return float64(i.TotalFrames) / i.FPS
}

func (i Info) String() string {
	return fmt.Sprintf("%dx%d @ %.3f fps, %d frames", i.Width, i.Height, i.FPS, i.TotalFrames)
}

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ParseProbe extracts Info from ffprobe's JSON output (-show_streams
// -show_format -of json). The first video stream wins.
func ParseProbe(data string) (Info, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return Info{}, fmt.Errorf("%w: decode probe: %v", ErrOpenVideo, err)
	}
	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 {
			return Info{}, fmt.Errorf("%w: stream reports %dx%d", ErrNoVideoStream, s.Width, s.Height)
		}
		info := Info{Width: s.Width, Height: s.Height}
		info.FPS = parseRate(s.RFrameRate)
		if info.FPS <= 0 {
			info.FPS = parseRate(s.AvgFrameRate)
		}
		if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
			info.TotalFrames = n
		} else {
			dur := parseFloat(s.Duration)
			if dur <= 0 {
				dur = parseFloat(out.Format.Duration)
			}
			if dur > 0 && info.FPS > 0 {
				info.TotalFrames = int(math.Round(dur * info.FPS))
			}
		}
		return info, nil
	}
	return Info{}, ErrNoVideoStream
}

// parseRate reads ffprobe rationals such as "30000/1001" or plain "25".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return parseFloat(s)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Prober reads stream metadata through ffprobe.
type Prober struct {
	ffprobePath string
	run         Runner
	logger      *slog.Logger
}

// NewProber returns a Prober using the given ffprobe binary. An empty path
// resolves "ffprobe" through PATH.
func NewProber(ffprobePath string, logger *slog.Logger) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobePath: ffprobePath, run: ExecRunner, logger: logger}
}

// Probe opens path and returns its video Info. Cancelling ctx kills ffprobe.
func (p *Prober) Probe(ctx context.Context, path string) (Info, error) {
	raw, err := p.output(ctx, path)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("probe failed", "path", path, "error", err)
		}
		return Info{}, fmt.Errorf("%w: %s: %w", ErrOpenVideo, path, err)
	}
	info, err := ParseProbe(raw)
	if err != nil {
		return Info{}, err
	}
	info.Path = path
	if p.logger != nil {
		p.logger.Info("video opened", "path", path, "width", info.Width, "height", info.Height,
			"fps", info.FPS, "frames", info.TotalFrames)
	}
	return info, nil
}

// ProbeArgs returns the ffprobe arguments used to read path.
func ProbeArgs(path string) []string {
	return []string{"-show_format", "-show_streams", "-of", "json", path}
}

func (p *Prober) output(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var stdout, stderr bytes.Buffer
	if err := p.run(ctx, p.ffprobePath, ProbeArgs(path), &stdout, &stderr); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return stdout.String(), nil
}
