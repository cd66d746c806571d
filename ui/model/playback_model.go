package model

import (
	"time"

	"github.com/soocke/vidcrop-go/domain/trim"
	"github.com/soocke/vidcrop-go/domain/video"
)

// PlaybackModel tracks the open video, the frame being shown, play state and
// the trim range. It is decoupled from the UI; presenters drive it with
// OnTick and read it back. The zero value has no video loaded.
type PlaybackModel struct {
	info        video.Info
	loaded      bool
	current     int
	playing     bool
	lastAdvance time.Time
	trimEnabled bool
	trim        trim.Range
	previewCrop bool
}

// NewPlaybackModel returns a pointer to a ready-to-use PlaybackModel.
func NewPlaybackModel() *PlaybackModel { return &PlaybackModel{} }

// Load resets the model for a newly opened video.
func (m *PlaybackModel) Load(info video.Info) {
	if m == nil {
		return
	}
	*m = PlaybackModel{info: info, loaded: true, trim: trim.Full(info.TotalFrames)}
}

func (m *PlaybackModel) Loaded() bool     { return m != nil && m.loaded }
func (m *PlaybackModel) Info() video.Info { return m.info }
func (m *PlaybackModel) Current() int     { return m.current }
func (m *PlaybackModel) Playing() bool    { return m != nil && m.playing }

// Seek moves to frame, clamped to the video and, when trimming, to the range.
func (m *PlaybackModel) Seek(frame int) {
	if !m.Loaded() {
		return
	}
	frame = max(0, min(frame, m.info.TotalFrames-1))
	if m.trimEnabled {
		frame = m.trim.ClampPreview(frame)
	}
	m.current = frame
}

// Step moves delta frames from the current one.
func (m *PlaybackModel) Step(delta int) { m.Seek(m.current + delta) }

// SetPlaying starts or stops playback at now. Starting at the last frame
// rewinds to the first playable one.
func (m *PlaybackModel) SetPlaying(play bool, now time.Time) {
	if !m.Loaded() {
		return
	}
	if play && m.current >= m.lastPlayable() {
		m.current = m.firstPlayable()
	}
	m.playing = play
	m.lastAdvance = now
}

// OnTick advances playback by the frames due since the last advance and
// reports whether the current frame changed. Playback stops at the end of the
// video or of the trim range.
func (m *PlaybackModel) OnTick(now time.Time) bool {
	if !m.Playing() {
		return false
	}
	interval := trim.PlaybackInterval(m.info.FPS)
	elapsed := now.Sub(m.lastAdvance)
	if elapsed < interval {
		return false
	}
	steps := int(elapsed / interval)
	m.lastAdvance = m.lastAdvance.Add(time.Duration(steps) * interval)
	next := m.current + steps
	if last := m.lastPlayable(); next >= last {
		next = last
		m.playing = false
	}
	changed := next != m.current
	m.current = next
	return changed
}

func (m *PlaybackModel) firstPlayable() int {
	if m.trimEnabled {
		return m.trim.Start
	}
	return 0
}

func (m *PlaybackModel) lastPlayable() int {
	if m.trimEnabled {
		return m.trim.End
	}
	return max(0, m.info.TotalFrames-1)
}

// TrimEnabled reports whether the trim range applies.
func (m *PlaybackModel) TrimEnabled() bool { return m != nil && m.trimEnabled }

// Trim returns the current trim range.
func (m *PlaybackModel) Trim() trim.Range { return m.trim }

// SetTrimEnabled switches trimming; enabling repairs a stale range and pulls
// the current frame inside it.
func (m *PlaybackModel) SetTrimEnabled(on bool) {
	if !m.Loaded() {
		return
	}
	m.trimEnabled = on
	if on {
		m.trim = m.trim.Normalize(m.info.TotalFrames)
		m.current = m.trim.ClampPreview(m.current)
	}
}

// SetTrimStart moves the range start and shows that frame.
func (m *PlaybackModel) SetTrimStart(frame int) {
	if !m.Loaded() {
		return
	}
	m.trim = m.trim.SetStart(frame, m.info.TotalFrames)
	m.current = m.trim.Start
}

// SetTrimEnd moves the range end and shows that frame.
func (m *PlaybackModel) SetTrimEnd(frame int) {
	if !m.Loaded() {
		return
	}
	m.trim = m.trim.SetEnd(frame, m.info.TotalFrames)
	m.current = m.trim.End
}

// HasTrim reports whether an export should cut the range.
func (m *PlaybackModel) HasTrim() bool { return m.TrimEnabled() && m.trim.Valid() }

// PreviewCrop reports whether the cropped preview is shown.
func (m *PlaybackModel) PreviewCrop() bool { return m != nil && m.previewCrop }

// SetPreviewCrop enters or leaves cropped preview. Entering stops playback.
func (m *PlaybackModel) SetPreviewCrop(on bool) {
	if m == nil {
		return
	}
	m.previewCrop = on
	if on {
		m.playing = false
	}
}
