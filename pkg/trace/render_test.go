package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
)

func TestRenderSVGContainsChannels(t *testing.T) {
	s := surfaceFor(testRead(40, 1))
	s.Resize(600, 200)
	s.FitWindow(coord.RefRange{Start: 1, End: 40})

	var buf bytes.Buffer
	if err := s.RenderSVG(&buf, RenderOptions{Labels: true}); err != nil {
		t.Fatalf("render svg: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatal("output is not an svg document")
	}
	// One polyline per channel.
	if got := strings.Count(out, "<polyline"); got != 4 {
		t.Errorf("polyline count = %d, want 4", got)
	}
	for _, hex := range []string{"#2ea043", "#2f6feb", "#222222", "#d63a3a"} {
		if !strings.Contains(out, hex) {
			t.Errorf("missing channel color %s", hex)
		}
	}
}

func TestRenderSVGInertSurface(t *testing.T) {
	s := NewSurface(&model.ReadResult{Name: "empty", Trace: &model.Trace{}}, nil, 0)
	var buf bytes.Buffer
	if err := s.RenderSVG(&buf, RenderOptions{}); err != nil {
		t.Fatalf("render svg: %v", err)
	}
	if !strings.Contains(buf.String(), "no trace data") {
		t.Error("inert surface should render its placeholder, not fail")
	}
}

func TestRenderSVGVariantMarker(t *testing.T) {
	read := testRead(40, 1)
	s := surfaceFor(read)
	s.Resize(600, 200)
	s.FitWindow(coord.RefRange{Start: 1, End: 40})

	opts := RenderOptions{
		Variants: []model.VariantMarker{
			{RefPos: 10, Ref: "A", Alt: "G", Genotype: "het", SignalScanPos: 95},
		},
	}
	var buf bytes.Buffer
	if err := s.RenderSVG(&buf, opts); err != nil {
		t.Fatalf("render svg: %v", err)
	}
	if !strings.Contains(buf.String(), "10A&gt;G") {
		t.Error("variant label missing from svg output")
	}
}

func TestReverseModeSwapsChannelIdentity(t *testing.T) {
	read := testRead(10, 1)
	s := surfaceFor(read)

	forwardA, colA := s.displayChannel('A')
	s.SetReverse(true)
	reverseA, colARev := s.displayChannel('A')

	// Reverse presentation shows T's samples under A's slot...
	if &forwardA[0] == &reverseA[0] {
		t.Error("reverse mode should swap sample source for A")
	}
	if len(reverseA) != len(read.Trace.ChannelT) || reverseA[0] != read.Trace.ChannelT[0] {
		t.Error("A slot should carry channel T samples in reverse mode")
	}
	// ...but the color follows the displayed label, not the source.
	if colA != colARev {
		t.Error("display color must not change with reverse mode")
	}
}

func TestFocusBandResolvesPerRead(t *testing.T) {
	s := surfaceFor(testRead(50, 100))
	s.Resize(500, 200)
	s.FitWindow(coord.RefRange{Start: 100, End: 149})

	x0, x1, ok := s.focusBand(coord.RefRange{Start: 110, End: 120})
	if !ok {
		t.Fatal("focus band failed on covered range")
	}
	if x1 <= x0 {
		t.Errorf("band collapsed: [%.1f, %.1f]", x0, x1)
	}
	if _, _, ok := s.focusBand(coord.RefRange{Start: 900, End: 910}); ok {
		t.Error("focus band resolved an uncovered range")
	}
}
