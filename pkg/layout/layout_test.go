package layout

import (
	"testing"

	"github.com/peakscope/peakscope/pkg/align"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
	"github.com/peakscope/peakscope/pkg/viewstate"
)

func indexFor(entries map[coord.RefPos]model.AlignmentEntry) *align.Index {
	return align.NewIndex(&model.ReadResult{
		Name:           "r",
		Trace:          &model.Trace{ChannelA: []int{1}, PeakLocations: []coord.ScanIndex{0}},
		ConsensusAlign: entries,
	})
}

// Track A has an insertion at 50 (depth 2),
// track B does not. Track B must still emit two sub-cells there, padded with
// the gap filler.
func TestShallowTrackPadsToSharedDepth(t *testing.T) {
	trackA := indexFor(map[coord.RefPos]model.AlignmentEntry{
		50: {Consensus: []byte("A"), Alt1: []byte("AT")},
	})
	trackB := indexFor(map[coord.RefPos]model.AlignmentEntry{
		50: {Consensus: []byte("A")},
	})
	b := NewBuilder(align.BuildDepthMap([]*align.Index{trackA, trackB}))

	row := b.BuildRow(trackB, coord.RefRange{Start: 50, End: 50}, RowOptions{Kind: RowConsensus})
	if row.Width() != 2 {
		t.Fatalf("track B width = %d, want 2", row.Width())
	}
	if row.Cells[0].Base != 'A' || row.Cells[1].Base != model.GapFiller {
		t.Errorf("track B cells = [%c, %c], want [A, -]", row.Cells[0].Base, row.Cells[1].Base)
	}
}

func TestSubCellsShareViewIndex(t *testing.T) {
	idx := indexFor(map[coord.RefPos]model.AlignmentEntry{
		10: {Consensus: []byte("AC"), Alt1: []byte("ACG")},
	})
	b := NewBuilder(align.BuildDepthMap([]*align.Index{idx}))
	row := b.BuildRow(idx, coord.RefRange{Start: 10, End: 10}, RowOptions{Kind: RowAlt1})

	if row.Width() != 3 {
		t.Fatalf("width = %d, want 3", row.Width())
	}
	for _, c := range row.Cells {
		if c.View != coord.RefPos(10).View() {
			t.Errorf("sub-cell %d has view index %d, want %d", c.SubIndex, c.View, coord.RefPos(10).View())
		}
	}
}

func TestAbsentEntryGapFillsEverySlot(t *testing.T) {
	deep := indexFor(map[coord.RefPos]model.AlignmentEntry{
		20: {Consensus: []byte("ATT")},
	})
	bare := indexFor(nil)
	b := NewBuilder(align.BuildDepthMap([]*align.Index{deep}))

	row := b.BuildRow(bare, coord.RefRange{Start: 20, End: 20}, RowOptions{Kind: RowConsensus})
	if row.Width() != 3 {
		t.Fatalf("width = %d, want 3", row.Width())
	}
	for _, c := range row.Cells {
		if !c.Gap {
			t.Errorf("sub-cell %d should gap-fill, got %c", c.SubIndex, c.Base)
		}
	}
}

func TestNilIndexRendersInertRow(t *testing.T) {
	b := NewBuilder(nil)
	row := b.BuildRow(nil, coord.RefRange{Start: 1, End: 3}, RowOptions{Kind: RowConsensus})
	if row.Width() != 3 {
		t.Fatalf("width = %d, want 3", row.Width())
	}
	for _, c := range row.Cells {
		if !c.Gap {
			t.Errorf("inert row emitted base %c", c.Base)
		}
	}
}

func TestHighlightMarksWholePosition(t *testing.T) {
	idx := indexFor(map[coord.RefPos]model.AlignmentEntry{
		5: {Consensus: []byte("A"), Alt1: []byte("AT")},
		6: {Consensus: []byte("C")},
	})
	b := NewBuilder(align.BuildDepthMap([]*align.Index{idx}))
	h := &viewstate.Highlight{Start: coord.RefPos(5).View(), End: coord.RefPos(5).View()}
	row := b.BuildRow(idx, coord.RefRange{Start: 5, End: 6}, RowOptions{Kind: RowConsensus, Highlight: h})

	// Both sub-cells of position 5 are selected; position 6 is not.
	if !row.Cells[0].Selected || !row.Cells[1].Selected {
		t.Error("expanded sub-cells of a highlighted position must all select")
	}
	if row.Cells[2].Selected {
		t.Error("position outside the highlight selected")
	}
}

func TestReferenceRowReservesInsertionRoom(t *testing.T) {
	idx := indexFor(map[coord.RefPos]model.AlignmentEntry{
		30: {Consensus: []byte("A"), Alt1: []byte("ATG")},
	})
	b := NewBuilder(align.BuildDepthMap([]*align.Index{idx}))
	refBase := func(p coord.RefPos) byte {
		if p == 30 {
			return 'G'
		}
		return 0
	}
	row := b.BuildReferenceRow(refBase, coord.RefRange{Start: 30, End: 30}, nil)
	if row.Width() != 3 {
		t.Fatalf("reference width = %d, want 3", row.Width())
	}
	if row.Cells[0].Base != 'G' {
		t.Errorf("reference base = %c, want G", row.Cells[0].Base)
	}
	if !row.Cells[1].Gap || !row.Cells[2].Gap {
		t.Error("reference insertion slots must gap-fill")
	}
}

func TestCellAtOffset(t *testing.T) {
	idx := indexFor(map[coord.RefPos]model.AlignmentEntry{
		1: {Consensus: []byte("A")},
		2: {Consensus: []byte("CT")},
	})
	b := NewBuilder(align.BuildDepthMap([]*align.Index{idx}))
	row := b.BuildRow(idx, coord.RefRange{Start: 1, End: 2}, RowOptions{Kind: RowConsensus})

	c, ok := row.CellAtOffset(2)
	if !ok || c.RefPos != 2 || c.SubIndex != 1 {
		t.Errorf("offset 2 resolved to pos %d sub %d", c.RefPos, c.SubIndex)
	}
	if _, ok := row.CellAtOffset(99); ok {
		t.Error("out-of-range offset resolved")
	}
	if _, ok := row.CellAtOffset(-1); ok {
		t.Error("negative offset resolved")
	}
}
