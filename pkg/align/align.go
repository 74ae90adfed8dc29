// Package align provides read-only indexes over loaded alignment data: a
// per-read AlignmentIndex and the job-wide DepthMap that reconciles row
// layout across tracks.
//
// Both are built once when a job's results load and never mutated afterwards.
package align

import (
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/metrics"
	"github.com/peakscope/peakscope/pkg/model"
)

// Index is a read-only view over one read's refPos -> AlignmentEntry map.
type Index struct {
	read    *model.ReadResult
	minPos  coord.RefPos
	maxPos  coord.RefPos
	covered int
}

// NewIndex builds the index for one read. Safe on a read with no alignment;
// lookups then simply report no coverage.
func NewIndex(read *model.ReadResult) *Index {
	idx := &Index{read: read}
	for pos := range read.ConsensusAlign {
		if idx.covered == 0 || pos < idx.minPos {
			idx.minPos = pos
		}
		if pos > idx.maxPos {
			idx.maxPos = pos
		}
		idx.covered++
	}
	return idx
}

// Read returns the underlying read.
func (i *Index) Read() *model.ReadResult {
	return i.read
}

// Entry returns the alignment entry at pos and whether the read covers it.
func (i *Index) Entry(pos coord.RefPos) (model.AlignmentEntry, bool) {
	return i.read.Entry(pos)
}

// DepthAt returns the read's local allele depth at pos. Uncovered positions
// have depth 1: they still occupy one sub-cell in the shared layout.
func (i *Index) DepthAt(pos coord.RefPos) int {
	e, ok := i.read.Entry(pos)
	if !ok {
		return 1
	}
	return e.Depth()
}

// Bounds returns the covered reference interval and whether the read covers
// anything at all.
func (i *Index) Bounds() (coord.RefRange, bool) {
	if i.covered == 0 {
		return coord.RefRange{}, false
	}
	return coord.RefRange{Start: i.minPos, End: i.maxPos}, true
}

// Covered returns the number of reference positions the read aligns to.
func (i *Index) Covered() int {
	return i.covered
}

// BaseIndexAt resolves pos to an index into the read's own base sequence via
// the entry's first scan slot. Reports false when the read has nothing there.
func (i *Index) BaseIndexAt(pos coord.RefPos) (coord.BaseIndex, bool) {
	e, ok := i.read.Entry(pos)
	if !ok || len(e.ScanIdx1) == 0 {
		return 0, false
	}
	return e.ScanIdx1[0], true
}

// DepthMap records, for every covered reference position, the maximum allele
// depth across all loaded tracks. It is what lets one track's insertion
// reserve horizontal space in every other track's row.
type DepthMap struct {
	depths map[coord.RefPos]int
}

// BuildDepthMap derives the shared depth map from all loaded indexes.
func BuildDepthMap(indexes []*Index) *DepthMap {
	defer metrics.Timer(metrics.DepthMapBuild)()

	m := &DepthMap{depths: make(map[coord.RefPos]int)}
	for _, idx := range indexes {
		for pos, entry := range idx.read.ConsensusAlign {
			if d := entry.Depth(); d > m.depths[pos] {
				m.depths[pos] = d
			}
		}
	}
	return m
}

// At returns the shared depth at pos; positions no track covers report 1.
func (m *DepthMap) At(pos coord.RefPos) int {
	if d, ok := m.depths[pos]; ok && d > 1 {
		return d
	}
	return 1
}

// Expanded reports whether pos occupies more than one sub-cell.
func (m *DepthMap) Expanded(pos coord.RefPos) bool {
	return m.At(pos) > 1
}

// SubCells returns the total sub-cell count over an inclusive range, the
// width the range occupies in every track's row.
func (m *DepthMap) SubCells(r coord.RefRange) int {
	n := r.Normalize()
	total := 0
	for pos := n.Start; pos <= n.End; pos++ {
		total += m.At(pos)
	}
	return total
}
