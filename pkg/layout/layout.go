// Package layout expands reference positions into depth-aligned sub-cells.
//
// Every visible reference position occupies DepthMap depth sub-cells in every
// track's row, whether or not that particular track has bases for them. All
// sub-cells of one position map back to the same shared view index, so
// selection, highlighting and scroll-centering stay at reference-position
// granularity no matter how deep a row expands.
package layout

import (
	"github.com/peakscope/peakscope/pkg/align"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
	"github.com/peakscope/peakscope/pkg/viewstate"
)

// RowKind identifies which called sequence a row displays.
type RowKind int

const (
	RowReference RowKind = iota
	RowConsensus
	RowAlt1
	RowAlt2
)

// String returns a short display label for the row kind.
func (k RowKind) String() string {
	switch k {
	case RowReference:
		return "ref"
	case RowAlt1:
		return "alt1"
	case RowAlt2:
		return "alt2"
	default:
		return "cons"
	}
}

// Channel maps the row kind to the allele channel it draws from.
func (k RowKind) Channel() model.AlleleChannel {
	switch k {
	case RowAlt1:
		return model.ChannelAlt1
	case RowAlt2:
		return model.ChannelAlt2
	default:
		return model.ChannelConsensus
	}
}

// Cell is one rendered sub-cell of a row.
type Cell struct {
	RefPos   coord.RefPos
	View     coord.ViewIndex // shared axis position; identical for all sub-cells of a RefPos
	SubIndex int
	Base     byte
	Gap      bool // true when Base is the gap filler
	Selected bool
	Variant  bool // a variant marker sits at this position
}

// Row is the fully expanded cell sequence for one track row over a window.
type Row struct {
	Kind  RowKind
	Cells []Cell
}

// Builder expands viewport windows into rows against the shared depth map.
type Builder struct {
	depths *align.DepthMap
}

// NewBuilder returns a Builder over the given depth map. A nil map behaves
// as depth 1 everywhere.
func NewBuilder(depths *align.DepthMap) *Builder {
	if depths == nil {
		depths = align.BuildDepthMap(nil)
	}
	return &Builder{depths: depths}
}

// RowOptions selects what the builder marks up beyond the bases themselves.
type RowOptions struct {
	Kind      RowKind
	Highlight *viewstate.Highlight
	Variants  []model.VariantMarker
}

// BuildRow expands the window for one track. idx may be nil (an inert row:
// every sub-cell gap-fills). Positions the track does not cover gap-fill too;
// positions covered but shallower than the shared depth pad with gap filler.
func (b *Builder) BuildRow(idx *align.Index, window coord.RefRange, opts RowOptions) Row {
	window = window.Normalize()
	variantAt := make(map[coord.RefPos]bool, len(opts.Variants))
	for _, v := range opts.Variants {
		variantAt[v.RefPos] = true
	}

	row := Row{Kind: opts.Kind}
	channel := opts.Kind.Channel()
	for pos := window.Start; pos <= window.End; pos++ {
		depth := b.depths.At(pos)
		view := pos.View()
		selected := opts.Highlight != nil &&
			view >= opts.Highlight.Start && view <= opts.Highlight.End

		var entry model.AlignmentEntry
		covered := false
		if idx != nil {
			entry, covered = idx.Entry(pos)
		}

		for sub := 0; sub < depth; sub++ {
			base := byte(model.GapFiller)
			if covered {
				base = entry.BaseAt(channel, sub)
			}
			row.Cells = append(row.Cells, Cell{
				RefPos:   pos,
				View:     view,
				SubIndex: sub,
				Base:     base,
				Gap:      base == model.GapFiller,
				Selected: selected,
				Variant:  variantAt[pos],
			})
		}
	}
	return row
}

// BuildReferenceRow expands the window for the reference sequence itself.
// refBase returns the reference base at a position, or 0 when unknown.
func (b *Builder) BuildReferenceRow(refBase func(coord.RefPos) byte, window coord.RefRange, highlight *viewstate.Highlight) Row {
	window = window.Normalize()
	row := Row{Kind: RowReference}
	for pos := window.Start; pos <= window.End; pos++ {
		depth := b.depths.At(pos)
		view := pos.View()
		selected := highlight != nil && view >= highlight.Start && view <= highlight.End
		for sub := 0; sub < depth; sub++ {
			base := byte(model.GapFiller)
			// The reference has exactly one base per position; expansion
			// slots beyond the first are insertion room for other tracks.
			if sub == 0 && refBase != nil {
				if rb := refBase(pos); rb != 0 {
					base = rb
				}
			}
			row.Cells = append(row.Cells, Cell{
				RefPos:   pos,
				View:     view,
				SubIndex: sub,
				Base:     base,
				Gap:      base == model.GapFiller,
				Selected: selected,
			})
		}
	}
	return row
}

// CellAtOffset maps a horizontal cell offset within a built row back to its
// reference position, for hit-testing clicks on expanded rows.
func (r Row) CellAtOffset(offset int) (Cell, bool) {
	if offset < 0 || offset >= len(r.Cells) {
		return Cell{}, false
	}
	return r.Cells[offset], true
}

// Width returns the number of sub-cells the row occupies.
func (r Row) Width() int {
	return len(r.Cells)
}
