package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/peakscope/peakscope/pkg/minimap"
	"github.com/peakscope/peakscope/pkg/model"
)

// coverageGlyphs maps a coverage fraction onto a bar glyph, lowest first.
var coverageGlyphs = []rune{' ', '▁', '▂', '▄', '▆', '█'}

// renderMinimap draws the whole-reference strip: a coverage bar per column
// with variant and feature overlays, and the viewport window framed by a
// background color.
func renderMinimap(theme Theme, cols []minimap.Column) string {
	if len(cols) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range cols {
		glyph, style := minimapGlyph(theme, c)
		if c.InViewport {
			style = style.Background(theme.Highlight)
		}
		b.WriteString(style.Render(string(glyph)))
	}
	return b.String()
}

func minimapGlyph(theme Theme, c minimap.Column) (rune, lipgloss.Style) {
	switch {
	case c.Variant:
		return '!', theme.VariantMark
	case c.Feature:
		switch c.FeatureStrand {
		case model.StrandForward:
			return '>', theme.Renderer.NewStyle().Foreground(theme.Feature)
		case model.StrandReverse:
			return '<', theme.Renderer.NewStyle().Foreground(theme.Feature)
		}
		return '=', theme.Renderer.NewStyle().Foreground(theme.Feature)
	}
	i := int(c.Coverage * float64(len(coverageGlyphs)-1))
	if i < 0 {
		i = 0
	}
	if i >= len(coverageGlyphs) {
		i = len(coverageGlyphs) - 1
	}
	style := theme.Renderer.NewStyle().Foreground(theme.CoverageLow)
	if c.Coverage >= 0.5 {
		style = theme.Renderer.NewStyle().Foreground(theme.CoverageHigh)
	}
	return coverageGlyphs[i], style
}
