package testutil

import (
	"testing"

	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
)

// AssertReadCount verifies the expected number of reads in a job.
func AssertReadCount(t *testing.T, job *model.Job, expected int) {
	t.Helper()
	if len(job.Reads) != expected {
		t.Errorf("expected %d reads, got %d", expected, len(job.Reads))
	}
}

// AssertAllValid verifies all reads pass validation.
func AssertAllValid(t *testing.T, job *model.Job) {
	t.Helper()
	for i, read := range job.Reads {
		if err := read.Validate(); err != nil {
			t.Errorf("read %d (%s) invalid: %v", i, read.Name, err)
		}
	}
}

// AssertMonotonicPeaks verifies the trace's peak locations never decrease.
func AssertMonotonicPeaks(t *testing.T, tr *model.Trace) {
	t.Helper()
	prev := coord.ScanIndex(-1)
	for i, p := range tr.PeakLocations {
		if p < prev {
			t.Errorf("peak %d at scan %d precedes peak %d at scan %d", i, p, i-1, prev)
		}
		prev = p
	}
}

// AssertCovers verifies the read has an alignment entry at every position in
// the range.
func AssertCovers(t *testing.T, read *model.ReadResult, r coord.RefRange) {
	t.Helper()
	r = r.Normalize()
	for pos := r.Start; pos <= r.End; pos++ {
		if _, ok := read.ConsensusAlign[pos]; !ok {
			t.Errorf("read %s does not cover position %d", read.Name, pos)
		}
	}
}

// AssertBaseAt verifies the consensus base the read shows at a position.
func AssertBaseAt(t *testing.T, read *model.ReadResult, pos coord.RefPos, want byte) {
	t.Helper()
	entry, ok := read.ConsensusAlign[pos]
	if !ok {
		t.Errorf("read %s has no entry at position %d", read.Name, pos)
		return
	}
	got := entry.BaseAt(model.ChannelConsensus, 0)
	if got != want {
		t.Errorf("read %s at position %d: got base %c, want %c", read.Name, pos, got, want)
	}
}
