package view

import (
	"strconv"
	"strings"

	"github.com/soocke/vidcrop-go/domain/trim"
	"github.com/soocke/vidcrop-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ControlHandlers are invoked on user actions in the control panel. Nil
// handlers leave the corresponding button inert.
type ControlHandlers struct {
	Open          func(path string)
	Prev          func()
	Next          func()
	TogglePlay    func()
	Seek          func(frame int)
	MarkStart     func()
	MarkEnd       func()
	ToggleTrim    func()
	ApplyTrim     func(start, end int)
	PreviewCrop   func()
	BackToPreview func()
	Reset         func()
	Export        func(output string)
	CancelExport  func()
	Exit          func()
}

// ControlPanel encapsulates the file, playback, trim and export widgets.
type ControlPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	SetPlaying(playing bool)
	SetTrim(r trim.Range, enabled bool)
	SetTimeInfo(text string)
	SetCropInfo(pos, size string)
	SetCropPreview(active bool)
	SetVideoPath(path string)
	SetOutputPath(path string)
}

type controlPanel struct {
	h ControlHandlers

	pathEntry   *TextWidget
	outputEntry *TextWidget
	frameEntry  *TextWidget
	startEntry  *TextWidget
	endEntry    *TextWidget

	playBtn   *ButtonWidget
	trimBtn   *ButtonWidget
	backBtn   *ButtonWidget
	exportBtn *TButtonWidget
	cancelBtn *TButtonWidget

	timeLbl    *LabelWidget
	cropPosLbl *LabelWidget
	cropSizLbl *LabelWidget

	// disabled while an export runs
	editable []*Window
}

// NewControlPanel creates the panel; widgets are made by Build.
func NewControlPanel(h ControlHandlers) ControlPanel {
	return &controlPanel{h: h}
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}

func (v *controlPanel) Build(startRow int) (row int) {
	row = startRow

	// File row: video path, open button, output path.
	fileFrame := Frame()
	Grid(fileFrame, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	Grid(Label(Txt("Video"), Anchor("w")), In(fileFrame), Row(0), Column(0), Sticky("w"), Padx("0.2m"))
	v.pathEntry = Text(Height(1), Width(60))
	Grid(v.pathEntry, In(fileFrame), Row(0), Column(1), Sticky("we"), Padx("0.2m"))
	openBtn := Button(Txt("Open"), Command(func() {
		if v.h.Open != nil {
			v.h.Open(strings.TrimSpace(v.text(v.pathEntry)))
		}
	}))
	Grid(openBtn, In(fileFrame), Row(0), Column(2), Sticky("we"), Padx("0.2m"))
	Grid(Label(Txt("Output"), Anchor("w")), In(fileFrame), Row(1), Column(0), Sticky("w"), Padx("0.2m"))
	v.outputEntry = Text(Height(1), Width(60))
	Grid(v.outputEntry, In(fileFrame), Row(1), Column(1), Sticky("we"), Padx("0.2m"))
	exitBtn := Button(Txt("Exit"), Command(call(v.h.Exit)))
	Grid(exitBtn, In(fileFrame), Row(1), Column(2), Sticky("we"), Padx("0.2m"))
	GridColumnConfigure(fileFrame.Window, 1, Weight(1))
	row++

	// Playback row.
	playFrame := Frame()
	Grid(playFrame, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	prevBtn := Button(Txt("<< Prev"), Command(call(v.h.Prev)))
	v.playBtn = Button(Txt("Play"), Width(6), Command(call(v.h.TogglePlay)))
	nextBtn := Button(Txt("Next >>"), Command(call(v.h.Next)))
	v.frameEntry = Text(Height(1), Width(8))
	goBtn := Button(Txt("Go to frame"), Command(func() {
		if n, ok := parseIntField(v.text(v.frameEntry)); ok && v.h.Seek != nil {
			v.h.Seek(n)
		}
	}))
	v.timeLbl = Label(Txt("Duration: 00:00.000"), Anchor("w"), Foreground(theme.CurrentPalette().TextMuted))
	for i, w := range []*Window{prevBtn.Window, v.playBtn.Window, nextBtn.Window, v.frameEntry.Window, goBtn.Window} {
		Grid(w, In(playFrame), Row(0), Column(i), Sticky("w"), Padx("0.2m"))
	}
	Grid(v.timeLbl, In(playFrame), Row(0), Column(5), Sticky("we"), Padx("0.6m"))
	GridColumnConfigure(playFrame.Window, 5, Weight(1))
	row++

	// Trim row.
	trimFrame := Frame()
	Grid(trimFrame, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	v.trimBtn = Button(Txt("Trim: off"), Width(9), Command(call(v.h.ToggleTrim)))
	markStart := Button(Txt("Set start"), Command(call(v.h.MarkStart)))
	markEnd := Button(Txt("Set end"), Command(call(v.h.MarkEnd)))
	v.startEntry = Text(Height(1), Width(8))
	v.endEntry = Text(Height(1), Width(8))
	applyBtn := Button(Txt("Apply range"), Command(func() {
		s, okS := parseIntField(v.text(v.startEntry))
		e, okE := parseIntField(v.text(v.endEntry))
		if okS && okE && v.h.ApplyTrim != nil {
			v.h.ApplyTrim(s, e)
		}
	}))
	Grid(v.trimBtn, In(trimFrame), Row(0), Column(0), Sticky("w"), Padx("0.2m"))
	Grid(markStart, In(trimFrame), Row(0), Column(1), Sticky("w"), Padx("0.2m"))
	Grid(markEnd, In(trimFrame), Row(0), Column(2), Sticky("w"), Padx("0.2m"))
	Grid(Label(Txt("Start")), In(trimFrame), Row(0), Column(3), Sticky("e"), Padx("0.2m"))
	Grid(v.startEntry, In(trimFrame), Row(0), Column(4), Sticky("w"), Padx("0.2m"))
	Grid(Label(Txt("End")), In(trimFrame), Row(0), Column(5), Sticky("e"), Padx("0.2m"))
	Grid(v.endEntry, In(trimFrame), Row(0), Column(6), Sticky("w"), Padx("0.2m"))
	Grid(applyBtn, In(trimFrame), Row(0), Column(7), Sticky("w"), Padx("0.2m"))
	row++

	// Crop and export row.
	cropFrame := Frame()
	Grid(cropFrame, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	v.cropPosLbl = Label(Txt("X: 0, Y: 0"), Width(16), Anchor("w"))
	v.cropSizLbl = Label(Txt("W: 0, H: 0"), Width(16), Anchor("w"))
	previewBtn := Button(Txt("Preview crop"), Command(call(v.h.PreviewCrop)))
	v.backBtn = Button(Txt("Back"), Command(call(v.h.BackToPreview)))
	v.backBtn.Configure(State("disabled"))
	resetBtn := Button(Txt("Reset selection"), Command(call(v.h.Reset)))
	v.exportBtn = TButton(Txt("Export"), Style(theme.StylePrimaryButton), Command(func() {
		if v.h.Export != nil {
			v.h.Export(strings.TrimSpace(v.text(v.outputEntry)))
		}
	}))
	v.cancelBtn = TButton(Txt("Cancel"), Style(theme.StyleDangerButton), Command(call(v.h.CancelExport)))
	v.cancelBtn.Configure(State("disabled"))
	Grid(v.cropPosLbl, In(cropFrame), Row(0), Column(0), Sticky("w"), Padx("0.2m"))
	Grid(v.cropSizLbl, In(cropFrame), Row(0), Column(1), Sticky("w"), Padx("0.2m"))
	Grid(previewBtn, In(cropFrame), Row(0), Column(2), Sticky("w"), Padx("0.2m"))
	Grid(v.backBtn, In(cropFrame), Row(0), Column(3), Sticky("w"), Padx("0.2m"))
	Grid(resetBtn, In(cropFrame), Row(0), Column(4), Sticky("w"), Padx("0.2m"))
	Grid(v.exportBtn, In(cropFrame), Row(0), Column(5), Sticky("e"), Padx("0.2m"))
	Grid(v.cancelBtn, In(cropFrame), Row(0), Column(6), Sticky("e"), Padx("0.2m"))
	GridColumnConfigure(cropFrame.Window, 4, Weight(1))
	row++

	v.editable = []*Window{
		openBtn.Window, prevBtn.Window, v.playBtn.Window, nextBtn.Window, goBtn.Window,
		v.trimBtn.Window, markStart.Window, markEnd.Window, applyBtn.Window,
		previewBtn.Window, resetBtn.Window, v.exportBtn.Window,
		v.pathEntry.Window, v.outputEntry.Window, v.frameEntry.Window,
		v.startEntry.Window, v.endEntry.Window,
	}
	return row
}

// SetEditable disables every input while an export runs; Cancel is the
// inverse.
func (v *controlPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.editable {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.cancelBtn != nil {
		if enabled {
			v.cancelBtn.Configure(State("disabled"))
		} else {
			v.cancelBtn.Configure(State("normal"))
		}
	}
}

func (v *controlPanel) SetPlaying(playing bool) {
	if v.playBtn == nil {
		return
	}
	if playing {
		v.playBtn.Configure(Txt("Pause"))
		return
	}
	v.playBtn.Configure(Txt("Play"))
}

func (v *controlPanel) SetTrim(r trim.Range, enabled bool) {
	if v.trimBtn == nil {
		return
	}
	if enabled {
		v.trimBtn.Configure(Txt("Trim: on"))
	} else {
		v.trimBtn.Configure(Txt("Trim: off"))
	}
	setText(v.startEntry, strconv.Itoa(r.Start))
	setText(v.endEntry, strconv.Itoa(r.End))
}

func (v *controlPanel) SetTimeInfo(text string) {
	if v.timeLbl != nil {
		v.timeLbl.Configure(Txt(text))
	}
}

func (v *controlPanel) SetCropInfo(pos, size string) {
	if v.cropPosLbl == nil || v.cropSizLbl == nil {
		return
	}
	v.cropPosLbl.Configure(Txt(pos))
	v.cropSizLbl.Configure(Txt(size))
}

func (v *controlPanel) SetCropPreview(active bool) {
	if v.backBtn == nil {
		return
	}
	if active {
		v.backBtn.Configure(State("normal"))
	} else {
		v.backBtn.Configure(State("disabled"))
	}
}

func (v *controlPanel) SetVideoPath(path string) { setText(v.pathEntry, path) }

func (v *controlPanel) SetOutputPath(path string) { setText(v.outputEntry, path) }

func (v *controlPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	parts := w.Get("1.0", END)
	return strings.Join(parts, "")
}

func setText(w *TextWidget, s string) {
	if w == nil {
		return
	}
	w.Delete("1.0", END)
	w.Insert("1.0", s)
}

// parsing helpers (unexported)
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
