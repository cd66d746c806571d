// Package trim holds the frame-range rules for cutting a time span out of a
// video. Frames are zero-based and both ends of a Range are inclusive.
package trim

import (
	"fmt"
	"math"
	"time"
)

// Limits returns the largest selectable start and end frame for a video with
// total frames. Videos with no frames report (0, 1) so sliders stay usable.
func Limits(total int) (maxStart, maxEnd int) {
	if total <= 0 {
		return 0, 1
	}
	return total - 1, total - 1
}

// Range is an inclusive frame span.
type Range struct {
	Start int
	End   int
}

// Full returns the range covering every frame of a video.
func Full(total int) Range {
	_, maxEnd := Limits(total)
	if total <= 0 {
		maxEnd = 0
	}
	return Range{Start: 0, End: maxEnd}
}

// Valid reports whether the range spans more than one frame.
func (r Range) Valid() bool { return r.Start >= 0 && r.Start < r.End }

// Frames is the number of frames in the range.
func (r Range) Frames() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// SetStart moves the start frame. A start at or past the end is pulled back
// to one frame before it.
func (r Range) SetStart(v, total int) Range {
	maxStart, _ := Limits(total)
	v = clamp(v, 0, maxStart)
	if v >= r.End {
		v = max(0, r.End-1)
	}
	r.Start = v
	return r
}

// SetEnd moves the end frame. An end at or before the start is pushed to one
// frame after it, bounded by the last frame.
func (r Range) SetEnd(v, total int) Range {
	_, maxEnd := Limits(total)
	v = clamp(v, 0, maxEnd)
	if v <= r.Start {
		v = min(r.Start+1, total-1)
	}
	r.End = v
	return r
}

// Normalize repairs a range whose end does not lie after its start, as
// happens when trimming is switched on with stale values.
func (r Range) Normalize(total int) Range {
	if r.End <= r.Start {
		r.End = min(r.Start+1, total-1)
	}
	return r
}

// ClampPreview keeps a preview frame inside the range.
func (r Range) ClampPreview(frame int) int {
	return clamp(frame, r.Start, r.End)
}

func (r Range) String() string { return fmt.Sprintf("%d-%d", r.Start, r.End) }

// FormatTime renders seconds as MM:SS.mmm. Minutes are not wrapped into
// hours.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	minutes := ms / 60000
	rest := ms % 60000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, rest/1000, rest%1000)
}

// FrameTime converts a frame index to seconds. Zero or unknown fps yields 0.
func FrameTime(frame int, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frame) / fps
}

// Describe renders the time-info line shown under the trim controls.
func Describe(r Range, enabled bool, fps float64, total int) string {
	if !enabled {
		return "Duration: " + FormatTime(FrameTime(total, fps))
	}
	start := FrameTime(r.Start, fps)
	end := FrameTime(r.End, fps)
	return fmt.Sprintf("Trim: %s - %s (duration %s, %d frames)",
		FormatTime(start), FormatTime(end), FormatTime(end-start), r.Frames())
}

// PlaybackInterval returns the delay between frames during playback, at
// most about 60 frames per second.
func PlaybackInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 33 * time.Millisecond
	}
	return time.Duration(max(16, int(math.Round(1000.0/fps)))) * time.Millisecond
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
