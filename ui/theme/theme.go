package theme

// Centralized theming for the cropping UI. Provides palette constants, the
// colors used for letterbox bars and the crop outline, and SetDark to
// activate a base theme and configure semantic widget styles.

import (
	"fmt"
	"image/color"
	"strings"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Light palette. CurrentPalette resolves the dark variant.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorSurface   = "#ffffff" // panels, cards
	ColorPrimary   = "#2563eb" // buttons, accents
	ColorDanger    = "#dc2626"
	ColorAccent    = "#10b981"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
	ColorLetterbox = "#000000" // bars around the scaled frame
	ColorSelection = "#ff0000" // crop outline
)

// PaletteSnapshot holds the resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
	Letterbox string
	Selection string
}

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
		return PaletteSnapshot{
			AppBg:     "#0f172a",
			Surface:   "#1e293b",
			Primary:   "#3b82f6",
			Danger:    "#ef4444",
			Accent:    "#10b981",
			Text:      "#f1f5f9",
			TextMuted: "#94a3b8",
			Letterbox: "#020617",
			Selection: "#f87171",
		}
	}
	return PaletteSnapshot{
		AppBg:     ColorBg,
		Surface:   ColorSurface,
		Primary:   ColorPrimary,
		Danger:    ColorDanger,
		Accent:    ColorAccent,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
		Letterbox: ColorLetterbox,
		Selection: ColorSelection,
	}
}

// ParseColor converts "#rrggbb" into an opaque color. Malformed input yields
// black.
func ParseColor(hex string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleAccentLabel   = "accent.TLabel"
	StyleStateLabel    = "state.TLabel"
)

// internal flag for current mode
var darkMode bool

// SetDark selects light or dark mode and applies the styles.
func SetDark(dark bool) {
	darkMode = dark
	applyStyles(darkMode)
}

// applyStyles configures the semantic styles from the palette of the
// requested mode.
func applyStyles(dark bool) {
	_ = ActivateTheme("azure light") // baseline metrics
	pal := CurrentPalette()
	App.Configure(Background(pal.AppBg))

	// Export button
	StyleConfigure(StylePrimaryButton,
		Background(pal.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	// Cancel button
	StyleConfigure(StyleDangerButton,
		Background(pal.Danger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	// Scale info
	StyleConfigure(StyleAccentLabel,
		Foreground(pal.Primary),
		Background(pal.Surface),
		Padding("2p 1p"),
	)
	// Preview mode badge
	badgeText := "white"
	if dark {
		badgeText = "#f0fdf4"
	}
	StyleConfigure(StyleStateLabel,
		Foreground(badgeText),
		Background(pal.Accent),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
}
