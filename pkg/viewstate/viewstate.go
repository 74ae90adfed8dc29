// Package viewstate owns the shared pan/zoom viewport and the shared
// highlight that keep every rendered track in sync.
//
// The state is a plain observable object: mutations are total, idempotent and
// silently clamping, and each effective change notifies subscribers
// synchronously. All access happens on the interaction goroutine; there is no
// locking because there is nothing concurrent to lock against.
package viewstate

import "github.com/peakscope/peakscope/pkg/coord"

// Unbounded is the MaxPosition value before a job has declared a reference
// length. With an unbounded viewport only the lower clamp applies.
const Unbounded = 0

// Viewport is the shared window onto the reference axis. Position is a view
// index (0-based); Zoom is the window width in reference bases.
//
// Invariant: Position >= 0, Zoom >= 1, and when MaxPosition > 0,
// Position+Zoom <= MaxPosition.
type Viewport struct {
	Zoom        int
	Position    coord.ViewIndex
	MaxPosition int
}

// Highlight is an inclusive selected range in view-index space.
type Highlight struct {
	Start coord.ViewIndex
	End   coord.ViewIndex
}

// EventKind says what part of the state an event describes.
type EventKind int

const (
	EventViewport EventKind = iota
	EventHighlight
)

// Event is delivered synchronously to subscribers after an effective change.
type Event struct {
	Kind      EventKind
	Viewport  Viewport
	Highlight *Highlight // nil when the highlight was cleared or untouched
}

// State is the observable viewport + highlight pair.
type State struct {
	vp        Viewport
	highlight *Highlight
	subs      []func(Event)
}

// New returns a State with zoom 1 at the origin and no bound.
func New() *State {
	return &State{vp: Viewport{Zoom: 1}}
}

// Subscribe registers fn for change events. Subscribers are invoked in
// registration order, on the mutating goroutine, after the state has settled.
func (s *State) Subscribe(fn func(Event)) {
	if fn != nil {
		s.subs = append(s.subs, fn)
	}
}

// Viewport returns a copy of the current viewport.
func (s *State) Viewport() Viewport {
	return s.vp
}

// Highlight returns the current highlight, or nil when none is set.
func (s *State) Highlight() *Highlight {
	if s.highlight == nil {
		return nil
	}
	h := *s.highlight
	return &h
}

// SetMaxPosition declares the reference length. Non-positive values are
// ignored. The position re-clamps against the new bound.
func (s *State) SetMaxPosition(max int) {
	if max <= 0 {
		return
	}
	if s.vp.MaxPosition == max {
		return
	}
	s.vp.MaxPosition = max
	s.vp.Position = s.clampPosition(s.vp.Position)
	s.notifyViewport()
}

// SetZoom sets the window width, floored at 1. Widening the window can push
// its end past the bound, so the position re-clamps.
func (s *State) SetZoom(zoom int) {
	if zoom < 1 {
		zoom = 1
	}
	pos := s.clampPositionWithZoom(s.vp.Position, zoom)
	if zoom == s.vp.Zoom && pos == s.vp.Position {
		return
	}
	s.vp.Zoom = zoom
	s.vp.Position = pos
	s.notifyViewport()
}

// SetPosition moves the window start, clamped to [0, maxPosition-zoom].
func (s *State) SetPosition(pos coord.ViewIndex) {
	clamped := s.clampPosition(pos)
	if clamped == s.vp.Position {
		return
	}
	s.vp.Position = clamped
	s.notifyViewport()
}

// SetRange shows [start, end): zoom becomes end-start (floored at 1) and the
// window starts at start, re-clamped.
func (s *State) SetRange(start, end coord.ViewIndex) {
	zoom := int(end - start)
	if zoom < 1 {
		zoom = 1
	}
	pos := s.clampPositionWithZoom(start, zoom)
	if zoom == s.vp.Zoom && pos == s.vp.Position {
		return
	}
	s.vp.Zoom = zoom
	s.vp.Position = pos
	s.notifyViewport()
}

// MoveBy pans by delta view indexes.
func (s *State) MoveBy(delta int) {
	s.SetPosition(s.vp.Position + coord.ViewIndex(delta))
}

// ScrollToBoundary jumps to the start or the end of the reference.
func (s *State) ScrollToBoundary(toEnd bool) {
	if toEnd {
		s.SetPosition(coord.ViewIndex(s.vp.MaxPosition))
		return
	}
	s.SetPosition(0)
}

// SetHighlight replaces the highlight with the inclusive range [start, end].
// A reversed range is normalized, never rejected.
func (s *State) SetHighlight(start, end coord.ViewIndex) {
	if end < start {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	if s.highlight != nil && s.highlight.Start == start && s.highlight.End == end {
		return
	}
	s.highlight = &Highlight{Start: start, End: end}
	s.notifyHighlight()
}

// ClearHighlight removes the highlight.
func (s *State) ClearHighlight() {
	if s.highlight == nil {
		return
	}
	s.highlight = nil
	s.notifyHighlight()
}

// clampPosition bounds pos for the current zoom.
func (s *State) clampPosition(pos coord.ViewIndex) coord.ViewIndex {
	return s.clampPositionWithZoom(pos, s.vp.Zoom)
}

func (s *State) clampPositionWithZoom(pos coord.ViewIndex, zoom int) coord.ViewIndex {
	if pos < 0 {
		return 0
	}
	if s.vp.MaxPosition <= 0 {
		return pos
	}
	maxStart := coord.ViewIndex(s.vp.MaxPosition - zoom)
	if maxStart < 0 {
		maxStart = 0
	}
	if pos > maxStart {
		return maxStart
	}
	return pos
}

func (s *State) notifyViewport() {
	s.notify(Event{Kind: EventViewport, Viewport: s.vp, Highlight: s.Highlight()})
}

func (s *State) notifyHighlight() {
	s.notify(Event{Kind: EventHighlight, Viewport: s.vp, Highlight: s.Highlight()})
}

func (s *State) notify(ev Event) {
	for _, fn := range s.subs {
		fn(ev)
	}
}

// VisibleRange returns the inclusive reference range the viewport shows.
func (s *State) VisibleRange() coord.RefRange {
	start := s.vp.Position.Ref()
	end := coord.RefPos(int(start) + s.vp.Zoom - 1)
	if s.vp.MaxPosition > 0 && end > coord.RefPos(s.vp.MaxPosition) {
		end = coord.RefPos(s.vp.MaxPosition)
	}
	if end < start {
		end = start
	}
	return coord.RefRange{Start: start, End: end}
}

// CenterOn scrolls so that pos sits in the middle of the window.
func (s *State) CenterOn(pos coord.RefPos) {
	s.SetPosition(pos.View() - coord.ViewIndex(s.vp.Zoom/2))
}
