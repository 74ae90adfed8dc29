// Package selection implements drag selection over the shared view-index
// axis and extraction of the selected sequence.
//
// A drag publishes its running [min, max] range to the shared highlight as it
// goes, so every track mirrors the selection live. The controller never
// renders anything itself.
package selection

import (
	"strings"

	"github.com/peakscope/peakscope/pkg/align"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
	"github.com/peakscope/peakscope/pkg/viewstate"
)

// Controller tracks one in-flight drag selection.
type Controller struct {
	state *viewstate.State

	dragging bool
	anchor   coord.ViewIndex

	// ignoreNextClick suppresses the document-level click that follows a
	// drag release, which would otherwise instantly dismiss the copy
	// affordance the release just surfaced.
	ignoreNextClick bool
}

// NewController returns a controller publishing into the given shared state.
func NewController(state *viewstate.State) *Controller {
	return &Controller{state: state}
}

// Press starts a drag at the given view index.
func (c *Controller) Press(at coord.ViewIndex) {
	if at < 0 {
		at = 0
	}
	c.dragging = true
	c.anchor = at
	c.state.SetHighlight(at, at)
}

// Drag extends the selection to the given view index. The published range is
// always [min(anchor, at), max(anchor, at)] regardless of drag direction.
func (c *Controller) Drag(at coord.ViewIndex) {
	if !c.dragging {
		return
	}
	if at < 0 {
		at = 0
	}
	lo, hi := c.anchor, at
	if hi < lo {
		lo, hi = hi, lo
	}
	c.state.SetHighlight(lo, hi)
}

// Release finalizes the drag and arms the one-shot click suppression.
// Reports whether a selection exists for the caller to surface a copy
// affordance.
func (c *Controller) Release(at coord.ViewIndex) bool {
	if !c.dragging {
		return false
	}
	c.Drag(at)
	c.dragging = false
	c.ignoreNextClick = true
	return c.state.Highlight() != nil
}

// Finish finalizes the drag without moving the published range, for
// releases that land outside any selectable cell. Arms the same one-shot
// click suppression as Release.
func (c *Controller) Finish() bool {
	if !c.dragging {
		return false
	}
	c.dragging = false
	c.ignoreNextClick = true
	return c.state.Highlight() != nil
}

// Dragging reports whether a drag is in flight.
func (c *Controller) Dragging() bool {
	return c.dragging
}

// ConsumeClick reports whether the caller should ignore this click. The flag
// is one-shot: the first click after a release is swallowed, later clicks
// pass through (and typically dismiss the selection).
func (c *Controller) ConsumeClick() bool {
	if c.ignoreNextClick {
		c.ignoreNextClick = false
		return true
	}
	return false
}

// Clear drops the drag state and the shared highlight.
func (c *Controller) Clear() {
	c.dragging = false
	c.ignoreNextClick = false
	c.state.ClearHighlight()
}

// CopySequence extracts the selected bases of one track for the current
// highlight: reference positions in ascending order, every depth slot of the
// chosen allele channel, gap fillers stripped. Returns "" when nothing is
// highlighted or the track covers none of it.
func CopySequence(idx *align.Index, h *viewstate.Highlight, channel model.AlleleChannel) string {
	if idx == nil || h == nil {
		return ""
	}
	lo, hi := h.Start, h.End
	if hi < lo {
		lo, hi = hi, lo
	}
	var b strings.Builder
	for v := lo; v <= hi; v++ {
		entry, ok := idx.Entry(v.Ref())
		if !ok {
			continue
		}
		for _, base := range entry.Bases(channel) {
			if base == model.GapFiller {
				continue
			}
			b.WriteByte(base)
		}
	}
	return b.String()
}
