package align

import (
	"testing"

	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
)

func readWith(entries map[coord.RefPos]model.AlignmentEntry) *model.ReadResult {
	return &model.ReadResult{
		Name:           "test",
		Trace:          &model.Trace{ChannelA: []int{1}, PeakLocations: []coord.ScanIndex{0}},
		ConsensusAlign: entries,
	}
}

func TestDepthMapTakesMaxAcrossTracks(t *testing.T) {
	trackA := NewIndex(readWith(map[coord.RefPos]model.AlignmentEntry{
		50: {Consensus: []byte("A"), Alt1: []byte("AT")},
	}))
	trackB := NewIndex(readWith(map[coord.RefPos]model.AlignmentEntry{
		50: {Consensus: []byte("A")},
	}))

	dm := BuildDepthMap([]*Index{trackA, trackB})
	if got := dm.At(50); got != 2 {
		t.Errorf("depth at 50 = %d, want 2", got)
	}
	// The depth is a property of the position, not of the track asked.
	if trackA.DepthAt(50) != 2 && dm.At(50) != 2 {
		t.Error("shared depth must not depend on which track is queried")
	}
}

func TestDepthMapDefaultsToOne(t *testing.T) {
	dm := BuildDepthMap(nil)
	if got := dm.At(123); got != 1 {
		t.Errorf("uncovered position depth = %d, want 1", got)
	}
	if dm.Expanded(123) {
		t.Error("uncovered position reported as expanded")
	}
}

func TestDepthMapSubCells(t *testing.T) {
	idx := NewIndex(readWith(map[coord.RefPos]model.AlignmentEntry{
		10: {Consensus: []byte("A")},
		11: {Consensus: []byte("A"), Alt1: []byte("ATG")},
		12: {Consensus: []byte("C")},
	}))
	dm := BuildDepthMap([]*Index{idx})
	// 1 + 3 + 1
	if got := dm.SubCells(coord.RefRange{Start: 10, End: 12}); got != 5 {
		t.Errorf("sub-cells over [10,12] = %d, want 5", got)
	}
	// Direction must not matter.
	if got := dm.SubCells(coord.RefRange{Start: 12, End: 10}); got != 5 {
		t.Errorf("sub-cells over inverted range = %d, want 5", got)
	}
}

func TestIndexBounds(t *testing.T) {
	idx := NewIndex(readWith(map[coord.RefPos]model.AlignmentEntry{
		30: {Consensus: []byte("G")},
		90: {Consensus: []byte("T")},
		42: {Consensus: []byte("A")},
	}))
	r, ok := idx.Bounds()
	if !ok {
		t.Fatal("expected coverage")
	}
	if r.Start != 30 || r.End != 90 {
		t.Errorf("bounds = [%d, %d], want [30, 90]", r.Start, r.End)
	}
	if idx.Covered() != 3 {
		t.Errorf("covered = %d, want 3", idx.Covered())
	}

	empty := NewIndex(readWith(nil))
	if _, ok := empty.Bounds(); ok {
		t.Error("empty index reported coverage")
	}
}

func TestBaseIndexAt(t *testing.T) {
	idx := NewIndex(readWith(map[coord.RefPos]model.AlignmentEntry{
		7: {Consensus: []byte("A"), ScanIdx1: []coord.BaseIndex{41}},
		8: {Consensus: []byte("C")},
	}))
	if b, ok := idx.BaseIndexAt(7); !ok || b != 41 {
		t.Errorf("base index at 7 = %d, %v; want 41, true", b, ok)
	}
	if _, ok := idx.BaseIndexAt(8); ok {
		t.Error("entry without scan slots must report no base index")
	}
	if _, ok := idx.BaseIndexAt(99); ok {
		t.Error("uncovered position must report no base index")
	}
}
