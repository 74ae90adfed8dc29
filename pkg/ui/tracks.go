package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/peakscope/peakscope/pkg/align"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/layout"
	"github.com/peakscope/peakscope/pkg/model"
	"github.com/peakscope/peakscope/pkg/viewstate"
)

// trackLabelWidth is the fixed gutter every row reserves for its label, so
// the base columns line up across all tracks.
const trackLabelWidth = 14

// trackRow is one rendered line plus the built cells behind it, kept for
// click hit-testing.
type trackRow struct {
	label string
	row   layout.Row
	read  *align.Index // nil for the reference row
}

// buildTrackRows expands the visible window into one row per track: the
// reference on top, then per read a consensus row and, where the read calls
// heterozygous alleles in the window, its allele rows.
func buildTrackRows(indexes []*align.Index, depths *align.DepthMap, window coord.RefRange, highlight *viewstate.Highlight) []trackRow {
	builder := layout.NewBuilder(depths)

	rows := []trackRow{{
		label: "reference",
		row:   builder.BuildReferenceRow(referenceBaseFn(indexes), window, highlight),
	}}

	for _, idx := range indexes {
		read := idx.Read()
		label := read.Name
		if read.Reverse {
			label += " ←"
		}
		rows = append(rows, trackRow{
			label: label,
			read:  idx,
			row: builder.BuildRow(idx, window, layout.RowOptions{
				Kind:      layout.RowConsensus,
				Highlight: highlight,
				Variants:  read.Variants,
			}),
		})
		for _, kind := range []layout.RowKind{layout.RowAlt1, layout.RowAlt2} {
			if !hasAlleleBases(idx, window, kind.Channel()) {
				continue
			}
			rows = append(rows, trackRow{
				label: "  " + kind.String(),
				read:  idx,
				row: builder.BuildRow(idx, window, layout.RowOptions{
					Kind:      kind,
					Highlight: highlight,
					Variants:  read.Variants,
				}),
			})
		}
	}
	return rows
}

// referenceBaseFn derives the displayed reference base for a position. The
// job carries no reference sequence of its own, so the row shows the called
// consensus of the first covering read, corrected at variant positions by
// the variant's recorded reference allele.
func referenceBaseFn(indexes []*align.Index) func(coord.RefPos) byte {
	refAt := make(map[coord.RefPos]byte)
	for _, idx := range indexes {
		for _, v := range idx.Read().Variants {
			if len(v.Ref) == 1 {
				refAt[v.RefPos] = v.Ref[0]
			}
		}
	}
	return func(pos coord.RefPos) byte {
		if b, ok := refAt[pos]; ok {
			return b
		}
		for _, idx := range indexes {
			if entry, ok := idx.Entry(pos); ok {
				if b := entry.BaseAt(model.ChannelConsensus, 0); b != model.GapFiller {
					return b
				}
			}
		}
		return 0
	}
}

func hasAlleleBases(idx *align.Index, window coord.RefRange, channel model.AlleleChannel) bool {
	window = window.Normalize()
	for pos := window.Start; pos <= window.End; pos++ {
		entry, ok := idx.Entry(pos)
		if !ok {
			continue
		}
		for _, b := range entry.Bases(channel) {
			if b != model.GapFiller {
				return true
			}
		}
	}
	return false
}

// renderTrackRow styles one built row into a terminal line, clipped to
// width base columns.
func renderTrackRow(theme Theme, tr trackRow, width int) string {
	var b strings.Builder
	b.WriteString(theme.TrackLabel.Render(padRight(truncate(tr.label, trackLabelWidth-1), trackLabelWidth)))

	cells := tr.row.Cells
	if width > 0 && len(cells) > width {
		cells = cells[:width]
	}
	for _, c := range cells {
		b.WriteString(renderCell(theme, c))
	}
	return b.String()
}

func renderCell(theme Theme, c layout.Cell) string {
	s := string(rune(c.Base))
	var style lipgloss.Style
	switch {
	case c.Gap:
		style = theme.GapText
	case c.Variant:
		style = theme.VariantMark
	default:
		style = theme.BaseStyle(c.Base)
	}
	if c.Selected {
		style = style.Background(theme.Highlight)
	}
	return style.Render(s)
}

// renderRuler draws the reference-position tick line above the tracks,
// matching the depth-expanded column layout of the rows below it.
func renderRuler(theme Theme, depths *align.DepthMap, window coord.RefRange, width int) string {
	window = window.Normalize()
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", trackLabelWidth))

	cols := 0
	for pos := window.Start; pos <= window.End && (width <= 0 || cols < width); pos++ {
		depth := depths.At(pos)
		cell := strings.Repeat(" ", depth)
		if pos%10 == 0 {
			tick := fmt.Sprintf("%d", pos)
			if len(tick) <= depth {
				cell = tick + strings.Repeat(" ", depth-len(tick))
			} else {
				cell = "|" + strings.Repeat(" ", depth-1)
			}
		}
		if width > 0 && cols+depth > width {
			cell = cell[:width-cols]
		}
		cols += len(cell)
		b.WriteString(theme.MutedText.Render(cell))
	}
	return b.String()
}

// hitTestRow maps a terminal x coordinate on a rendered row back to the
// underlying cell, accounting for the label gutter.
func hitTestRow(tr trackRow, x int) (layout.Cell, bool) {
	return tr.row.CellAtOffset(x - trackLabelWidth)
}
