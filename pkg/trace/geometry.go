// Package trace renders one read's chromatogram onto its own raster or
// vector surface.
//
// Every surface owns private pixel geometry. The shared viewport talks in
// reference positions only; the surface resolves those through its read's own
// alignment into scan space before any pixel math happens. Two reads asked to
// show the same reference window will generally land on different scan
// ranges, because indels shift their scan offsets apart.
package trace

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/peakscope/peakscope/pkg/align"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
)

// Surface geometry defaults.
const (
	DefaultWidth       = 1200
	DefaultHeight      = 260
	DefaultVertZoom    = 1.0
	minZoomFactor      = 0.02 // pixels per scan unit
	maxZoomFactor      = 40.0
	amplitudeQuantile  = 0.995
)

// Surface is the per-read rendering surface. It is private to its read:
// nothing mutates it except through its own operations.
type Surface struct {
	read  *model.ReadResult
	index *align.Index

	widthPx  int
	heightPx int

	// zoomFactor is pixels per scan unit, local to this surface. It is not
	// derived from the shared viewport zoom, which counts reference bases.
	zoomFactor float64
	// scrollScan is the scan index rendered at pixel x=0.
	scrollScan float64

	verticalZoom float64
	reverse      bool

	// globalMax is the normalization amplitude, shared across surfaces of a
	// job so sibling reads render at comparable scale.
	globalMax float64
}

// NewSurface builds a surface for one read. globalMax <= 0 falls back to the
// read's own robust maximum amplitude.
func NewSurface(read *model.ReadResult, idx *align.Index, globalMax float64) *Surface {
	s := &Surface{
		read:         read,
		index:        idx,
		widthPx:      DefaultWidth,
		heightPx:     DefaultHeight,
		zoomFactor:   1,
		verticalZoom: DefaultVertZoom,
		globalMax:    globalMax,
	}
	if read != nil {
		s.reverse = read.Reverse
	}
	if s.globalMax <= 0 {
		s.globalMax = RobustMaxAmplitude(read)
	}
	return s
}

// RobustMaxAmplitude returns a high quantile of the read's amplitude
// distribution rather than the raw maximum, so one dye blob does not flatten
// the whole rendering. Returns 1 when the read has no usable signal.
func RobustMaxAmplitude(read *model.ReadResult) float64 {
	if read == nil || read.Trace == nil {
		return 1
	}
	tr := read.Trace
	samples := make([]float64, 0, len(tr.ChannelA)+len(tr.ChannelC)+len(tr.ChannelG)+len(tr.ChannelT))
	for _, ch := range [][]int{tr.ChannelA, tr.ChannelC, tr.ChannelG, tr.ChannelT} {
		for _, v := range ch {
			samples = append(samples, float64(v))
		}
	}
	if len(samples) == 0 {
		return 1
	}
	sort.Float64s(samples)
	q := stat.Quantile(amplitudeQuantile, stat.Empirical, samples, nil)
	if q < 1 {
		return 1
	}
	return q
}

// Resize sets the surface pixel dimensions. Scroll is not touched here: the
// platform clamps offsets against stale dimensions if both change in one
// turn, so callers re-apply the scroll on the turn after a resize.
func (s *Surface) Resize(width, height int) {
	if width > 0 {
		s.widthPx = width
	}
	if height > 0 {
		s.heightPx = height
	}
}

// Size returns the surface pixel dimensions.
func (s *Surface) Size() (int, int) {
	return s.widthPx, s.heightPx
}

// Read returns the surface's read.
func (s *Surface) Read() *model.ReadResult {
	return s.read
}

// Inert reports whether the surface has nothing renderable. Inert surfaces
// still draw their frame so a partial job never blanks the whole view.
func (s *Surface) Inert() bool {
	return s.read == nil || s.read.Trace.Empty()
}

// Reverse reports whether reverse-complement presentation is active.
func (s *Surface) Reverse() bool {
	return s.reverse
}

// SetReverse toggles reverse-complement presentation. Sample order is
// untouched; only the channel identity swaps (A<->T, C<->G).
func (s *Surface) SetReverse(rev bool) {
	s.reverse = rev
}

// VerticalZoom returns the amplitude scale factor.
func (s *Surface) VerticalZoom() float64 {
	return s.verticalZoom
}

// SetVerticalZoom sets the amplitude scale factor, floored at a minimum
// that keeps curves visible.
func (s *Surface) SetVerticalZoom(z float64) {
	if z < 0.1 {
		z = 0.1
	}
	s.verticalZoom = z
}

// ZoomFactor returns the surface's pixels-per-scan factor.
func (s *Surface) ZoomFactor() float64 {
	return s.zoomFactor
}

// ResolveRef maps a reference position into this read's scan space through
// the full chain: refPos -> entry.ScanIdx1[0] -> peakLocations -> scan index.
// Reports false when the read does not cover the position.
func (s *Surface) ResolveRef(pos coord.RefPos) (coord.ScanIndex, bool) {
	if s.Inert() || s.index == nil {
		return 0, false
	}
	base, ok := s.index.BaseIndexAt(pos)
	if !ok {
		return 0, false
	}
	return s.read.Trace.PeakAt(base), true
}

// resolveOrNearest resolves pos, walking outward to the nearest covered
// position when pos itself has no entry. Used for window fitting, where a
// partially covering read should still show the overlapping signal.
func (s *Surface) resolveOrNearest(pos coord.RefPos, lo, hi coord.RefPos) (coord.ScanIndex, bool) {
	if scan, ok := s.ResolveRef(pos); ok {
		return scan, true
	}
	for d := coord.RefPos(1); ; d++ {
		left, right := pos-d, pos+d
		if left < lo && right > hi {
			return 0, false
		}
		if left >= lo {
			if scan, ok := s.ResolveRef(left); ok {
				return scan, true
			}
		}
		if right <= hi {
			if scan, ok := s.ResolveRef(right); ok {
				return scan, true
			}
		}
	}
}

// FitWindow computes the local zoom factor and scroll so the reference-space
// window [start, end] fills the surface width. A read covering none of the
// window leaves the geometry untouched.
func (s *Surface) FitWindow(window coord.RefRange) bool {
	if s.Inert() {
		return false
	}
	window = window.Normalize()
	startScan, ok1 := s.resolveOrNearest(window.Start, window.Start, window.End)
	endScan, ok2 := s.resolveOrNearest(window.End, window.Start, window.End)
	if !ok1 || !ok2 {
		return false
	}
	if endScan < startScan {
		startScan, endScan = endScan, startScan
	}
	span := float64(endScan-startScan) + 1
	// Half a peak of margin on each side keeps boundary peaks whole.
	margin := span * 0.02
	span += 2 * margin

	s.zoomFactor = clampZoom(float64(s.widthPx) / span)
	s.scrollScan = float64(startScan) - margin
	if s.scrollScan < 0 {
		s.scrollScan = 0
	}
	return true
}

// CenterOn scrolls so the given reference position's peak sits at the
// horizontal center, keeping the current zoom factor.
func (s *Surface) CenterOn(pos coord.RefPos) bool {
	scan, ok := s.ResolveRef(pos)
	if !ok {
		return false
	}
	s.scrollScan = float64(scan) - float64(s.widthPx)/(2*s.zoomFactor)
	s.clampScroll()
	return true
}

// ZoomBy multiplies the local zoom factor, anchoring the scan under the
// given pixel so the signal under the cursor stays put.
func (s *Surface) ZoomBy(factor float64, anchorPx float64) {
	if factor <= 0 || s.Inert() {
		return
	}
	anchorScan := s.ScanAtPixel(anchorPx)
	s.zoomFactor = clampZoom(s.zoomFactor * factor)
	s.scrollScan = float64(anchorScan) - anchorPx/s.zoomFactor
	s.clampScroll()
}

// PanBy scrolls by a pixel delta.
func (s *Surface) PanBy(deltaPx float64) {
	if s.Inert() {
		return
	}
	s.scrollScan += deltaPx / s.zoomFactor
	s.clampScroll()
}

// PixelX maps a scan index into surface pixels under the current geometry.
func (s *Surface) PixelX(scan coord.ScanIndex) float64 {
	return (float64(scan) - s.scrollScan) * s.zoomFactor
}

// ScanAtPixel inverts PixelX, clamped into the read's scan range.
func (s *Surface) ScanAtPixel(x float64) coord.ScanIndex {
	scan := coord.ScanIndex(math.Round(s.scrollScan + x/s.zoomFactor))
	n := 0
	if !s.Inert() {
		n = s.read.Trace.ScanCount()
	}
	return coord.ClampScan(scan, n)
}

// BaseAtPixel resolves a clicked pixel to the nearest called base of the
// read's own sequence, for click-to-inspect.
func (s *Surface) BaseAtPixel(x float64) (coord.BaseIndex, coord.ScanIndex, bool) {
	if s.Inert() {
		return 0, 0, false
	}
	scan := s.ScanAtPixel(x)
	peaks := s.read.Trace.PeakLocations
	// First peak at or right of the scan; the closer of it and its left
	// neighbor wins.
	i := sort.Search(len(peaks), func(i int) bool { return peaks[i] >= scan })
	best := coord.BaseIndex(i)
	if i >= len(peaks) {
		best = coord.BaseIndex(len(peaks) - 1)
	} else if i > 0 && scan-peaks[i-1] < peaks[i]-scan {
		best = coord.BaseIndex(i - 1)
	}
	return best, s.read.Trace.PeakAt(best), true
}

// VisibleScanRange returns the inclusive scan interval the surface shows.
func (s *Surface) VisibleScanRange() (coord.ScanIndex, coord.ScanIndex) {
	lo := coord.ScanIndex(math.Floor(s.scrollScan))
	hi := coord.ScanIndex(math.Ceil(s.scrollScan + float64(s.widthPx)/s.zoomFactor))
	n := 0
	if !s.Inert() {
		n = s.read.Trace.ScanCount()
	}
	return coord.ClampScan(lo, n), coord.ClampScan(hi, n)
}

// SampleY maps one raw amplitude sample to a surface y coordinate: scaled
// against the global maximum, stretched by the vertical zoom, and flipped so
// zero sits on the baseline at the bottom.
func (s *Surface) SampleY(value int) float64 {
	frac := float64(value) / s.globalMax * s.verticalZoom
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return float64(s.heightPx) * (1 - frac)
}

func (s *Surface) clampScroll() {
	if s.scrollScan < 0 {
		s.scrollScan = 0
	}
	if s.Inert() {
		return
	}
	maxScroll := float64(s.read.Trace.ScanCount()) - float64(s.widthPx)/s.zoomFactor
	if maxScroll < 0 {
		maxScroll = 0
	}
	if s.scrollScan > maxScroll {
		s.scrollScan = maxScroll
	}
}

func clampZoom(z float64) float64 {
	if z < minZoomFactor {
		return minZoomFactor
	}
	if z > maxZoomFactor {
		return maxZoomFactor
	}
	return z
}
