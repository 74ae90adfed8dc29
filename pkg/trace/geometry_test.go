package trace

import (
	"math"
	"testing"

	"github.com/peakscope/peakscope/pkg/align"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
)

// testRead builds a read with an evenly spaced peak every 10 scans and an
// alignment entry per reference position starting at refStart.
func testRead(bases int, refStart coord.RefPos) *model.ReadResult {
	tr := &model.Trace{}
	for i := 0; i < bases; i++ {
		tr.PeakLocations = append(tr.PeakLocations, coord.ScanIndex(i*10+5))
	}
	n := bases * 10
	for i := 0; i < n; i++ {
		tr.ChannelA = append(tr.ChannelA, i%100)
		tr.ChannelC = append(tr.ChannelC, (i+25)%100)
		tr.ChannelG = append(tr.ChannelG, (i+50)%100)
		tr.ChannelT = append(tr.ChannelT, (i+75)%100)
	}
	alignMap := make(map[coord.RefPos]model.AlignmentEntry, bases)
	for i := 0; i < bases; i++ {
		alignMap[refStart+coord.RefPos(i)] = model.AlignmentEntry{
			Consensus: []byte("A"),
			ScanIdx1:  []coord.BaseIndex{coord.BaseIndex(i)},
		}
	}
	return &model.ReadResult{
		Name:           "read",
		Trace:          tr,
		ConsensusAlign: alignMap,
	}
}

func surfaceFor(read *model.ReadResult) *Surface {
	return NewSurface(read, align.NewIndex(read), 0)
}

func TestResolveRefChain(t *testing.T) {
	s := surfaceFor(testRead(50, 100))
	// refPos 100 -> base 0 -> scan 5; refPos 110 -> base 10 -> scan 105.
	scan, ok := s.ResolveRef(100)
	if !ok || scan != 5 {
		t.Errorf("resolve 100 = %d, %v; want 5, true", scan, ok)
	}
	scan, ok = s.ResolveRef(110)
	if !ok || scan != 105 {
		t.Errorf("resolve 110 = %d, %v; want 105, true", scan, ok)
	}
	if _, ok := s.ResolveRef(999); ok {
		t.Error("uncovered position resolved")
	}
}

func TestFitWindowFillsWidth(t *testing.T) {
	s := surfaceFor(testRead(50, 100))
	s.Resize(500, 200)
	if !s.FitWindow(coord.RefRange{Start: 100, End: 119}) {
		t.Fatal("fit window failed on covered range")
	}
	// Window spans scans 5..195; both endpoints must land on the surface.
	x0 := s.PixelX(5)
	x1 := s.PixelX(195)
	if x0 < 0 || x0 > 500 || x1 < 0 || x1 > 500 {
		t.Errorf("endpoints off surface: x0=%.1f x1=%.1f", x0, x1)
	}
	if x1 <= x0 {
		t.Errorf("window collapsed: x0=%.1f x1=%.1f", x0, x1)
	}
}

func TestIndependentGeometryPerSurface(t *testing.T) {
	// Two reads covering the same reference window at different scan
	// offsets must compute different zoom factors.
	a := surfaceFor(testRead(50, 100))
	dense := testRead(50, 100)
	// Compress read B's peaks to half spacing.
	for i := range dense.Trace.PeakLocations {
		dense.Trace.PeakLocations[i] /= 2
	}
	b := surfaceFor(dense)

	a.Resize(400, 200)
	b.Resize(400, 200)
	window := coord.RefRange{Start: 100, End: 139}
	if !a.FitWindow(window) || !b.FitWindow(window) {
		t.Fatal("fit window failed")
	}
	if math.Abs(a.ZoomFactor()-b.ZoomFactor()) < 1e-9 {
		t.Error("surfaces with diverging scan spans should not share a zoom factor")
	}
}

func TestZoomByAnchorsPixel(t *testing.T) {
	s := surfaceFor(testRead(100, 1))
	s.Resize(800, 200)
	s.FitWindow(coord.RefRange{Start: 1, End: 100})

	anchor := 400.0
	before := s.ScanAtPixel(anchor)
	s.ZoomBy(2, anchor)
	after := s.ScanAtPixel(anchor)
	if d := int(before) - int(after); d < -1 || d > 1 {
		t.Errorf("anchor scan drifted: before=%d after=%d", before, after)
	}
}

func TestPanClamps(t *testing.T) {
	s := surfaceFor(testRead(20, 1))
	s.Resize(400, 200)
	s.FitWindow(coord.RefRange{Start: 1, End: 20})
	s.PanBy(-1e9)
	lo, _ := s.VisibleScanRange()
	if lo != 0 {
		t.Errorf("pan past start: visible lo = %d", lo)
	}
	s.PanBy(1e9)
	_, hi := s.VisibleScanRange()
	if int(hi) > s.read.Trace.ScanCount() {
		t.Errorf("pan past end: visible hi = %d of %d", hi, s.read.Trace.ScanCount())
	}
}

func TestBaseAtPixelFindsNearestPeak(t *testing.T) {
	s := surfaceFor(testRead(10, 1))
	s.Resize(1000, 200)
	s.FitWindow(coord.RefRange{Start: 1, End: 10})

	// The pixel over base 3's peak (scan 35) must resolve to base 3.
	x := s.PixelX(35)
	base, scan, ok := s.BaseAtPixel(x)
	if !ok || base != 3 || scan != 35 {
		t.Errorf("base at peak pixel = %d (scan %d), want base 3 scan 35", base, scan)
	}
}

func TestSampleYBaselineAndClamp(t *testing.T) {
	s := surfaceFor(testRead(10, 1))
	s.Resize(400, 200)
	if got := s.SampleY(0); got != 200 {
		t.Errorf("zero amplitude y = %.1f, want 200 (baseline)", got)
	}
	if got := s.SampleY(1 << 30); got != 0 {
		t.Errorf("oversized amplitude y = %.1f, want 0 (clamped to top)", got)
	}
}

func TestVerticalZoomScales(t *testing.T) {
	s := surfaceFor(testRead(10, 1))
	s.Resize(400, 200)
	y1 := s.SampleY(40)
	s.SetVerticalZoom(2)
	y2 := s.SampleY(40)
	if y2 >= y1 {
		t.Errorf("doubling vertical zoom should raise the sample: y1=%.1f y2=%.1f", y1, y2)
	}
}

func TestInertSurfaceIsTotal(t *testing.T) {
	s := NewSurface(&model.ReadResult{Name: "empty", Trace: &model.Trace{}}, nil, 0)
	if !s.Inert() {
		t.Fatal("empty trace should be inert")
	}
	// Every operation must degrade silently, never panic.
	s.PanBy(100)
	s.ZoomBy(2, 10)
	if s.FitWindow(coord.RefRange{Start: 1, End: 10}) {
		t.Error("inert surface claimed to fit a window")
	}
	if s.CenterOn(5) {
		t.Error("inert surface claimed to center")
	}
	if _, _, ok := s.BaseAtPixel(50); ok {
		t.Error("inert surface resolved a base")
	}
}

func TestRobustMaxAmplitudeResistsSpikes(t *testing.T) {
	read := testRead(100, 1)
	read.Trace.ChannelA[0] = 1_000_000 // one dye blob
	max := RobustMaxAmplitude(read)
	if max >= 1_000_000 {
		t.Errorf("robust max %f tracked the spike", max)
	}
	if max < 50 {
		t.Errorf("robust max %f fell below the signal body", max)
	}
}
