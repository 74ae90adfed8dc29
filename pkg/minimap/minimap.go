// Package minimap maps the whole reference linearly onto a fixed pixel strip
// with three overlays: a coverage histogram, feature annotations, and the
// current viewport rectangle. Clicks invert the mapping to recenter the
// shared viewport.
package minimap

import (
	"github.com/peakscope/peakscope/pkg/align"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/metrics"
	"github.com/peakscope/peakscope/pkg/model"
	"github.com/peakscope/peakscope/pkg/viewstate"
)

// Column is one pixel column of the strip.
type Column struct {
	// Coverage is the fraction of loaded tracks covering this column's
	// sampled position, in [0, 1].
	Coverage float64
	// Feature is true when an annotation interval overlaps the column.
	Feature bool
	// FeatureStrand carries the first overlapping feature's strand.
	FeatureStrand model.Strand
	// InViewport is true when the column falls inside the viewport rectangle.
	InViewport bool
	// Variant is true when any track calls a variant at the sampled position.
	Variant bool
}

// Map renders reference space onto a strip of Width columns.
type Map struct {
	maxPosition int
	width       int
}

// New returns a map for the given reference length and strip width.
// Degenerate inputs yield an empty but safe map.
func New(maxPosition, width int) *Map {
	if maxPosition < 0 {
		maxPosition = 0
	}
	if width < 0 {
		width = 0
	}
	return &Map{maxPosition: maxPosition, width: width}
}

// Width returns the strip width in columns.
func (m *Map) Width() int {
	return m.width
}

// PixelX maps a reference position onto a strip column, clamped.
func (m *Map) PixelX(pos coord.RefPos) int {
	if m.maxPosition <= 0 || m.width <= 0 {
		return 0
	}
	x := int(float64(pos) / float64(m.maxPosition) * float64(m.width))
	if x < 0 {
		x = 0
	}
	if x >= m.width {
		x = m.width - 1
	}
	return x
}

// Stride returns the sampling stride used for the coverage histogram: at
// most one sampled position per column, never below 1.
func (m *Map) Stride() int {
	if m.width <= 0 {
		return 1
	}
	stride := m.maxPosition / m.width
	if stride < 1 {
		stride = 1
	}
	return stride
}

// ClickToPosition inverts the mapping for a click at column x: the viewport
// recenters on the clicked position, clamped so the window stays in bounds.
func (m *Map) ClickToPosition(x int, zoom int) coord.ViewIndex {
	if m.width <= 0 || m.maxPosition <= 0 {
		return 0
	}
	r := float64(x) / float64(m.width)
	pos := int(r*float64(m.maxPosition)) - zoom/2
	maxStart := m.maxPosition - zoom
	if maxStart < 0 {
		maxStart = 0
	}
	if pos < 0 {
		pos = 0
	}
	if pos > maxStart {
		pos = maxStart
	}
	return coord.ViewIndex(pos)
}

// BuildOptions carries the data the strip overlays are computed from.
type BuildOptions struct {
	Indexes  []*align.Index
	Features []model.Feature
	Viewport viewstate.Viewport
}

// Build computes all strip columns. Cost is bounded by sampling one
// reference position per column, regardless of reference length.
func (m *Map) Build(opts BuildOptions) []Column {
	defer metrics.Timer(metrics.MinimapBuild)()

	if m.width <= 0 {
		return nil
	}
	cols := make([]Column, m.width)
	if m.maxPosition <= 0 {
		return cols
	}

	variantAt := make(map[coord.RefPos]bool)
	for _, idx := range opts.Indexes {
		for _, v := range idx.Read().Variants {
			variantAt[v.RefPos] = true
		}
	}

	vpStart := opts.Viewport.Position.Ref()
	vpEnd := coord.RefPos(int(vpStart) + opts.Viewport.Zoom - 1)

	stride := m.Stride()
	for x := 0; x < m.width; x++ {
		// One sampled position per column, stride apart.
		pos := coord.RefPos(1 + x*stride)
		if pos > coord.RefPos(m.maxPosition) {
			pos = coord.RefPos(m.maxPosition)
		}

		covered := 0
		for _, idx := range opts.Indexes {
			if _, ok := idx.Entry(pos); ok {
				covered++
			}
		}
		if len(opts.Indexes) > 0 {
			cols[x].Coverage = float64(covered) / float64(len(opts.Indexes))
		}

		for _, f := range opts.Features {
			if f.Range().Contains(pos) {
				cols[x].Feature = true
				cols[x].FeatureStrand = f.Strand
				break
			}
		}

		cols[x].InViewport = pos >= vpStart && pos <= vpEnd
		cols[x].Variant = variantAt[pos]
	}
	return cols
}
