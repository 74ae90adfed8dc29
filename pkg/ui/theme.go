package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals use the
// terminal's own background instead of a down-converted approximation
// that may clash with palettes like Solarized.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Bases, conventional chromatogram palette
	BaseA lipgloss.AdaptiveColor // green
	BaseC lipgloss.AdaptiveColor // blue
	BaseG lipgloss.AdaptiveColor // black/white
	BaseT lipgloss.AdaptiveColor // red

	// Overlays
	Variant       lipgloss.AdaptiveColor
	Feature       lipgloss.AdaptiveColor
	CoverageHigh  lipgloss.AdaptiveColor
	CoverageLow   lipgloss.AdaptiveColor
	ViewportFrame lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed row styles, created once instead of per-frame
	MutedText     lipgloss.Style
	SecondaryText lipgloss.Style
	PrimaryBold   lipgloss.Style
	ErrorText     lipgloss.Style
	GapText       lipgloss.Style
	VariantMark   lipgloss.Style
	TrackLabel    lipgloss.Style
}

// DefaultTheme returns the standard adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		BaseA: lipgloss.AdaptiveColor{Light: "#1E7E34", Dark: "#50FA7B"},
		BaseC: lipgloss.AdaptiveColor{Light: "#1F5FD0", Dark: "#6699FF"},
		BaseG: lipgloss.AdaptiveColor{Light: "#222222", Dark: "#F8F8F2"},
		BaseT: lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},

		Variant:       lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Feature:       lipgloss.AdaptiveColor{Light: "#008080", Dark: "#00CED1"},
		CoverageHigh:  lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		CoverageLow:   lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		ViewportFrame: lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.ErrorText = r.NewStyle().Foreground(t.BaseT).Bold(true)
	t.GapText = r.NewStyle().Foreground(t.Muted)
	t.VariantMark = r.NewStyle().Foreground(t.Variant).Bold(true)
	t.TrackLabel = r.NewStyle().Foreground(t.Secondary).Width(trackLabelWidth)

	return t
}

// BaseStyle returns the style for a called base letter.
func (t Theme) BaseStyle(base byte) lipgloss.Style {
	var c lipgloss.AdaptiveColor
	switch base {
	case 'A', 'a':
		c = t.BaseA
	case 'C', 'c':
		c = t.BaseC
	case 'G', 'g':
		c = t.BaseG
	case 'T', 't':
		c = t.BaseT
	default:
		return t.GapText
	}
	return t.Renderer.NewStyle().Foreground(c)
}

// TestTheme returns a theme suitable for use in tests (stdout renderer).
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
