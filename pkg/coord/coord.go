// Package coord defines the three coordinate spaces the viewer reconciles
// and the named conversions between them.
//
// A position can live in reference space (1-based, keys into alignment
// entries), view space (the 0-based shared pan/zoom axis), or scan space
// (0-based sample index into one read's raw amplitude arrays). The types are
// distinct on purpose: most historical bugs in this class of viewer come from
// passing a scan index where a reference position was expected. Convert
// explicitly or not at all.
package coord

// RefPos is a 1-based position in the reference/alignment space.
type RefPos int

// ViewIndex is a 0-based position along the shared pan/zoom axis shared by
// every rendered track. For non-expanded positions it equals RefPos-1.
type ViewIndex int

// ScanIndex is a 0-based sample index into a single read's raw four-channel
// amplitude arrays. Scan indexes are never comparable across reads.
type ScanIndex int

// BaseIndex is a 0-based index into one read's own called base sequence.
// PeakLocations maps BaseIndex to ScanIndex for that read.
type BaseIndex int

// View converts a reference position to its shared view index.
func (p RefPos) View() ViewIndex {
	return ViewIndex(p - 1)
}

// Ref converts a view index back to the reference position it represents.
func (v ViewIndex) Ref() RefPos {
	return RefPos(v + 1)
}

// Valid reports whether the position is inside the 1-based reference space.
func (p RefPos) Valid() bool {
	return p >= 1
}

// Clamp bounds the view index to [0, max].
func (v ViewIndex) Clamp(max ViewIndex) ViewIndex {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// ClampScan bounds a scan index to a valid index of a sample slice of the
// given length. A non-positive length yields 0.
func ClampScan(s ScanIndex, n int) ScanIndex {
	if n <= 0 || s < 0 {
		return 0
	}
	if int(s) >= n {
		return ScanIndex(n - 1)
	}
	return s
}

// ClampBase bounds a base index to a valid index of a base sequence of the
// given length. A non-positive length yields 0.
func ClampBase(b BaseIndex, n int) BaseIndex {
	if n <= 0 || b < 0 {
		return 0
	}
	if int(b) >= n {
		return BaseIndex(n - 1)
	}
	return b
}

// RefRange is an inclusive range [Start, End] in reference space.
type RefRange struct {
	Start RefPos
	End   RefPos
}

// Normalize returns the range with Start <= End.
func (r RefRange) Normalize() RefRange {
	if r.End < r.Start {
		return RefRange{Start: r.End, End: r.Start}
	}
	return r
}

// Span returns the number of reference positions covered by the range.
func (r RefRange) Span() int {
	n := r.Normalize()
	return int(n.End-n.Start) + 1
}

// Contains reports whether p lies inside the (normalized) range.
func (r RefRange) Contains(p RefPos) bool {
	n := r.Normalize()
	return p >= n.Start && p <= n.End
}
