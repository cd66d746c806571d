package model

import (
	"sync/atomic"
)

// ExportModel tracks whether an export is in flight and the job it belongs
// to. The zero value is idle and usable. Concurrency-safe via atomics because
// UI callbacks and presenter ticks may race.
type ExportModel struct {
	running atomic.Bool
	jobID   atomic.Pointer[string]
}

// Running reports whether an export is currently in progress.
func (m *ExportModel) Running() bool {
	if m == nil {
		return false
	}
	return m.running.Load()
}

// Begin marks job id as running.
func (m *ExportModel) Begin(id string) {
	if m == nil {
		return
	}
	m.jobID.Store(&id)
	m.running.Store(true)
}

// End marks the export as finished.
func (m *ExportModel) End() {
	if m == nil {
		return
	}
	m.running.Store(false)
}

// JobID returns the id of the current or last job.
func (m *ExportModel) JobID() string {
	if m == nil {
		return ""
	}
	if p := m.jobID.Load(); p != nil {
		return *p
	}
	return ""
}
