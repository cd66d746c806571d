package model

import (
	"github.com/soocke/vidcrop-go/domain/geometry"
)

// SelectionModel holds the finalized crop rectangle in source-frame pixels.
// Zero value means no selection and is usable. No synchronization needed:
// updates occur on the UI thread.
type SelectionModel struct {
	rect geometry.Rect
}

func NewSelectionModel() *SelectionModel { return &SelectionModel{} }

// Set stores r. An empty rect clears the selection.
func (m *SelectionModel) Set(r geometry.Rect) {
	if m == nil {
		return
	}
	if r.Empty() {
		m.rect = geometry.Rect{}
		return
	}
	m.rect = r
}

// Clear drops the selection.
func (m *SelectionModel) Clear() {
	if m == nil {
		return
	}
	m.rect = geometry.Rect{}
}

// Rect returns the current selection and whether one exists.
func (m *SelectionModel) Rect() (geometry.Rect, bool) {
	if m == nil || m.rect.Empty() {
		return geometry.Rect{}, false
	}
	return m.rect, true
}
