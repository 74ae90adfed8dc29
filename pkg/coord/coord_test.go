package coord

import "testing"

func TestRefViewRoundTrip(t *testing.T) {
	for _, p := range []RefPos{1, 2, 50, 1000} {
		if got := p.View().Ref(); got != p {
			t.Errorf("round trip of %d: got %d", p, got)
		}
	}
	if RefPos(1).View() != 0 {
		t.Errorf("refPos 1 should map to view index 0, got %d", RefPos(1).View())
	}
}

func TestClampScan(t *testing.T) {
	tests := []struct {
		s    ScanIndex
		n    int
		want ScanIndex
	}{
		{-5, 10, 0},
		{0, 10, 0},
		{9, 10, 9},
		{10, 10, 9},
		{100, 10, 9},
		{3, 0, 0},
	}
	for _, tt := range tests {
		if got := ClampScan(tt.s, tt.n); got != tt.want {
			t.Errorf("ClampScan(%d, %d) = %d, want %d", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestRefRangeNormalize(t *testing.T) {
	r := RefRange{Start: 15, End: 5}.Normalize()
	if r.Start != 5 || r.End != 15 {
		t.Errorf("normalize inverted range: got [%d, %d]", r.Start, r.End)
	}
	if r.Span() != 11 {
		t.Errorf("span: got %d, want 11", r.Span())
	}
	if !r.Contains(5) || !r.Contains(15) || r.Contains(16) {
		t.Error("inclusive bounds broken")
	}
}

func TestViewIndexClamp(t *testing.T) {
	if got := ViewIndex(-3).Clamp(10); got != 0 {
		t.Errorf("negative clamp: got %d", got)
	}
	if got := ViewIndex(20).Clamp(10); got != 10 {
		t.Errorf("upper clamp: got %d", got)
	}
}
