package view

import (
	"github.com/soocke/vidcrop-go/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// StatusBar shows the status line, the preview mode and the current
// scaling between source frame and canvas.
type StatusBar interface {
	SetStatus(text string)
	SetScaleInfo(text string)
	SetMode(cropPreview bool)
}

type statusBar struct {
	statusLbl *LabelWidget
	scaleLbl  *TLabelWidget
	modeLbl   *TLabelWidget
}

// NewStatusBar creates the status widgets inside parent.
// The mode label is placed at (row, startCol), the status at startCol+1 and
// the scale info at startCol+2.
func NewStatusBar(parent *FrameWidget, row, startCol int) StatusBar {
	s := &statusBar{
		modeLbl:   TLabel(Txt("Video preview"), Style(theme.StyleStateLabel)),
		statusLbl: Label(Txt("Open a video to begin"), Anchor("w"), Borderwidth(1), Relief("sunken"),
			Foreground(theme.CurrentPalette().Text)),
		scaleLbl:  TLabel(Txt("Scale X: 0.0000, Y: 0.0000"), Style(theme.StyleAccentLabel)),
	}
	Grid(s.modeLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	Grid(s.statusLbl, In(parent), Row(row), Column(startCol+1), Sticky("we"), Padx("0.2m"))
	Grid(s.scaleLbl, In(parent), Row(row), Column(startCol+2), Sticky("e"), Padx("0.2m"))
	GridColumnConfigure(parent.Window, startCol+1, Weight(1))
	return s
}

func (s *statusBar) SetStatus(text string) {
	if s == nil || s.statusLbl == nil {
		return
	}
	s.statusLbl.Configure(Txt(text))
}

func (s *statusBar) SetScaleInfo(text string) {
	if s == nil || s.scaleLbl == nil {
		return
	}
	s.scaleLbl.Configure(Txt(text))
}

func (s *statusBar) SetMode(cropPreview bool) {
	if s == nil || s.modeLbl == nil {
		return
	}
	if cropPreview {
		s.modeLbl.Configure(Txt("Crop preview"))
		return
	}
	s.modeLbl.Configure(Txt("Video preview"))
}
