package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback. The
// zero value is usable (methods are nil-safe).
type Loop struct {
	Playback *PlaybackPresenter
	Export   *ExportPresenter
	Schedule func()
}

func NewLoop(playback *PlaybackPresenter, export *ExportPresenter, schedule func()) *Loop {
	return &Loop{Playback: playback, Export: export, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Playback != nil {
		l.Playback.Tick(now)
	}
	if l.Export != nil {
		l.Export.Tick()
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
