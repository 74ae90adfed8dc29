// Package model defines the immutable data a loaded analysis job provides to
// the viewer: raw chromatogram traces, the consensus alignment map, called
// variants, and genomic features.
//
// Everything in this package is treated as read-only once a job has loaded.
// Reloading a job replaces the whole object graph, it never patches in place.
package model

import (
	"fmt"

	"github.com/peakscope/peakscope/pkg/coord"
)

// GapFiller is the character rendered for a sub-cell with no base, and the
// character stripped when copying a selected sequence.
const GapFiller = '-'

// Trace holds the raw four-channel chromatogram signal for one read.
//
// PeakLocations is parallel to the read's own called base sequence: entry i is
// the scan index of the signal peak for base i. It is monotonic non-decreasing.
type Trace struct {
	ChannelA []int `json:"peakA"`
	ChannelC []int `json:"peakC"`
	ChannelG []int `json:"peakG"`
	ChannelT []int `json:"peakT"`

	PeakLocations []coord.ScanIndex `json:"basecallPos"`
	Qualities     []int             `json:"basecallQual,omitempty"`
	PrimarySeq    string            `json:"primarySeq,omitempty"`
	SecondarySeq  string            `json:"secondarySeq,omitempty"`
}

// ScanCount returns the number of samples per channel (the longest channel
// wins; channels are normally equal length).
func (t *Trace) ScanCount() int {
	n := len(t.ChannelA)
	for _, c := range [][]int{t.ChannelC, t.ChannelG, t.ChannelT} {
		if len(c) > n {
			n = len(c)
		}
	}
	return n
}

// MaxAmplitude returns the largest sample value across all four channels.
// Returns 1 for an empty trace so callers can divide by it unconditionally.
func (t *Trace) MaxAmplitude() int {
	max := 1
	for _, c := range [][]int{t.ChannelA, t.ChannelC, t.ChannelG, t.ChannelT} {
		for _, v := range c {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// PeakAt returns the scan index of base i, clamped into the valid range.
// An empty trace yields scan 0.
func (t *Trace) PeakAt(i coord.BaseIndex) coord.ScanIndex {
	if len(t.PeakLocations) == 0 {
		return 0
	}
	return t.PeakLocations[coord.ClampBase(i, len(t.PeakLocations))]
}

// Empty reports whether the trace carries no signal at all.
func (t *Trace) Empty() bool {
	return t == nil || t.ScanCount() == 0 || len(t.PeakLocations) == 0
}

// AlignmentEntry describes what one read shows at a single reference
// position. The five slices are parallel per allele channel: the local depth
// of the entry is the length of the Consensus slice (insertions relative to
// the reference make it longer than one).
type AlignmentEntry struct {
	Consensus []byte            `json:"consensus"`
	Alt1      []byte            `json:"alt1,omitempty"`
	Alt2      []byte            `json:"alt2,omitempty"`
	ScanIdx1  []coord.BaseIndex `json:"scanIdx1,omitempty"`
	ScanIdx2  []coord.BaseIndex `json:"scanIdx2,omitempty"`
}

// Depth returns the number of allele slots this entry occupies locally.
// An empty entry still occupies one slot.
func (e AlignmentEntry) Depth() int {
	d := len(e.Consensus)
	if len(e.Alt1) > d {
		d = len(e.Alt1)
	}
	if len(e.Alt2) > d {
		d = len(e.Alt2)
	}
	if d < 1 {
		d = 1
	}
	return d
}

// AlleleChannel selects which called sequence a sub-cell or a copy operation
// reads from.
type AlleleChannel int

const (
	ChannelConsensus AlleleChannel = iota
	ChannelAlt1
	ChannelAlt2
)

// String returns a human-readable label for the allele channel.
func (c AlleleChannel) String() string {
	switch c {
	case ChannelAlt1:
		return "allele 1"
	case ChannelAlt2:
		return "allele 2"
	default:
		return "consensus"
	}
}

// Bases returns the entry's base slice for the given channel.
func (e AlignmentEntry) Bases(c AlleleChannel) []byte {
	switch c {
	case ChannelAlt1:
		return e.Alt1
	case ChannelAlt2:
		return e.Alt2
	default:
		return e.Consensus
	}
}

// BaseAt returns the base drawn in sub-cell sub of the given channel, or
// GapFiller when the channel is shorter than the requested slot.
func (e AlignmentEntry) BaseAt(c AlleleChannel, sub int) byte {
	bases := e.Bases(c)
	if sub < 0 || sub >= len(bases) {
		return GapFiller
	}
	return bases[sub]
}

// ReadResult bundles everything one sequenced read contributes to a job:
// its raw trace, its alignment against the reference, and its called variants.
type ReadResult struct {
	Name           string                          `json:"name"`
	Trace          *Trace                          `json:"trace"`
	ConsensusAlign map[coord.RefPos]AlignmentEntry `json:"consensusAlign"`
	Variants       []VariantMarker                 `json:"variants,omitempty"`
	Reverse        bool                            `json:"reverse,omitempty"`
}

// Validate checks the structural invariants a read must satisfy before the
// viewer will accept it. A failing read is skipped, never fatal.
func (r *ReadResult) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("read has no name")
	}
	if r.Trace == nil {
		return fmt.Errorf("read %s has no trace", r.Name)
	}
	prev := coord.ScanIndex(-1)
	for i, p := range r.Trace.PeakLocations {
		if p < prev {
			return fmt.Errorf("read %s: peak locations not monotonic at base %d", r.Name, i)
		}
		prev = p
	}
	for pos := range r.ConsensusAlign {
		if !pos.Valid() {
			return fmt.Errorf("read %s: alignment entry at non-positive position %d", r.Name, pos)
		}
	}
	return nil
}

// Entry returns the alignment entry at pos and whether one exists.
func (r *ReadResult) Entry(pos coord.RefPos) (AlignmentEntry, bool) {
	e, ok := r.ConsensusAlign[pos]
	return e, ok
}

// Job is one loaded analysis result set: a reference plus all its reads and
// annotation features.
type Job struct {
	Reference string        `json:"reference"`
	Length    int           `json:"length"`
	Reads     []*ReadResult `json:"reads"`
	Features  []Feature     `json:"features,omitempty"`
}

// MaxRefPos returns the highest reference position any part of the job
// touches, falling back to the declared reference length.
func (j *Job) MaxRefPos() coord.RefPos {
	max := coord.RefPos(j.Length)
	for _, r := range j.Reads {
		for pos := range r.ConsensusAlign {
			if pos > max {
				max = pos
			}
		}
	}
	for _, f := range j.Features {
		if f.End > max {
			max = f.End
		}
	}
	return max
}
