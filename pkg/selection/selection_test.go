package selection

import (
	"testing"

	"github.com/peakscope/peakscope/pkg/align"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
	"github.com/peakscope/peakscope/pkg/viewstate"
)

func trackIndex() *align.Index {
	return align.NewIndex(&model.ReadResult{
		Name:  "r",
		Trace: &model.Trace{ChannelA: []int{1}, PeakLocations: []coord.ScanIndex{0}},
		ConsensusAlign: map[coord.RefPos]model.AlignmentEntry{
			10: {Consensus: []byte("A"), Alt1: []byte("AT")},
			11: {Consensus: []byte("C-"), Alt1: []byte("CG")},
			12: {Consensus: []byte("G")},
		},
	})
}

func TestDragPublishesNormalizedRange(t *testing.T) {
	state := viewstate.New()
	state.SetMaxPosition(100)
	c := NewController(state)

	c.Press(30)
	c.Drag(12) // right-to-left drag
	h := state.Highlight()
	if h == nil || h.Start != 12 || h.End != 30 {
		t.Fatalf("highlight = %+v, want [12, 30]", h)
	}
	if !c.Release(12) {
		t.Error("release with a selection should surface the copy affordance")
	}
}

func TestIgnoreNextClickIsOneShot(t *testing.T) {
	state := viewstate.New()
	c := NewController(state)
	c.Press(5)
	c.Release(8)

	if !c.ConsumeClick() {
		t.Error("first click after release must be swallowed")
	}
	if c.ConsumeClick() {
		t.Error("second click must pass through")
	}
}

func TestFinishKeepsRangeAndArmsClickSuppression(t *testing.T) {
	state := viewstate.New()
	state.SetMaxPosition(100)
	c := NewController(state)

	c.Press(5)
	c.Drag(8)
	if !c.Finish() {
		t.Error("finish with a selection should surface the copy affordance")
	}
	h := state.Highlight()
	if h == nil || h.Start != 5 || h.End != 8 {
		t.Fatalf("highlight = %+v, want [5, 8]", h)
	}
	if c.Dragging() {
		t.Error("finish should end the drag")
	}
	if !c.ConsumeClick() {
		t.Error("first click after finish must be swallowed")
	}
	if c.Finish() {
		t.Error("finish without a drag in flight reported a selection")
	}
}

func TestDragWithoutPressIsInert(t *testing.T) {
	state := viewstate.New()
	c := NewController(state)
	c.Drag(40)
	if state.Highlight() != nil {
		t.Error("drag without press published a highlight")
	}
	if c.Release(40) {
		t.Error("release without press reported a selection")
	}
}

func TestCopySequenceStripsGapsAndDirection(t *testing.T) {
	idx := trackIndex()

	// Positions 10..12: consensus "A" + "C-" + "G" -> "ACG".
	forward := &viewstate.Highlight{Start: coord.RefPos(10).View(), End: coord.RefPos(12).View()}
	reverse := &viewstate.Highlight{Start: coord.RefPos(12).View(), End: coord.RefPos(10).View()}

	got := CopySequence(idx, forward, model.ChannelConsensus)
	if got != "ACG" {
		t.Errorf("forward copy = %q, want ACG", got)
	}
	if rev := CopySequence(idx, reverse, model.ChannelConsensus); rev != got {
		t.Errorf("reverse copy = %q differs from forward %q", rev, got)
	}
	for _, ch := range got {
		if ch == rune(model.GapFiller) {
			t.Error("copy output contains gap filler")
		}
	}
}

func TestCopySequenceAltChannelAllDepthSlots(t *testing.T) {
	idx := trackIndex()
	h := &viewstate.Highlight{Start: coord.RefPos(10).View(), End: coord.RefPos(11).View()}
	// alt1: "AT" + "CG" -> all depth slots concatenated.
	if got := CopySequence(idx, h, model.ChannelAlt1); got != "ATCG" {
		t.Errorf("alt1 copy = %q, want ATCG", got)
	}
}

func TestCopySequenceSkipsUncovered(t *testing.T) {
	idx := trackIndex()
	h := &viewstate.Highlight{Start: coord.RefPos(10).View(), End: coord.RefPos(50).View()}
	if got := CopySequence(idx, h, model.ChannelConsensus); got != "ACG" {
		t.Errorf("copy over partial coverage = %q, want ACG", got)
	}
	if got := CopySequence(nil, h, model.ChannelConsensus); got != "" {
		t.Errorf("nil index copy = %q, want empty", got)
	}
	if got := CopySequence(idx, nil, model.ChannelConsensus); got != "" {
		t.Errorf("nil highlight copy = %q, want empty", got)
	}
}
