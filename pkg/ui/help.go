package ui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `# peakscope

Pan, zoom and inspect chromatogram reads aligned to one reference.

## Navigation

| Key | Action |
|-----|--------|
| ` + "`←` / `h`" + ` | pan left |
| ` + "`→` / `l`" + ` | pan right |
| ` + "`shift+←/→`" + ` | pan a full window |
| ` + "`+` / `=`" + ` | zoom in (narrower window) |
| ` + "`-`" + ` | zoom out (wider window) |
| ` + "`g`" + ` | go to position |
| ` + "`home` / `end`" + ` | jump to start / end |
| wheel | zoom at pointer |

## Selection

Drag across any track to select a range; every track mirrors it.

| Key | Action |
|-----|--------|
| ` + "`c`" + ` | copy selected consensus sequence |
| ` + "`esc`" + ` | clear selection |

## Session

| Key | Action |
|-----|--------|
| ` + "`s`" + ` | save a snapshot of the current window |
| ` + "`r`" + ` | reload the job from disk |
| ` + "`?`" + ` | toggle this help |
| ` + "`q`" + ` | quit |
`

// renderHelp renders the help overlay. Glamour failures fall back to the
// raw markdown; the help text must never take the viewer down.
func renderHelp(theme Theme, width int) string {
	wrap := width - 4
	if wrap < 40 {
		wrap = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Render(out)
}
