package trace

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/metrics"
	"github.com/peakscope/peakscope/pkg/model"
)

// Channel display colors (conventional chromatogram palette).
var (
	colorA        = color.RGBA{0x2e, 0xa0, 0x43, 0xff} // green
	colorC        = color.RGBA{0x2f, 0x6f, 0xeb, 0xff} // blue
	colorG        = color.RGBA{0x22, 0x22, 0x22, 0xff} // black
	colorT        = color.RGBA{0xd6, 0x3a, 0x3a, 0xff} // red
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorBaseline = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	colorPeakTick = color.RGBA{0xbb, 0xbb, 0xbb, 0xff}
	colorVariant  = color.RGBA{0xe0, 0x7b, 0x00, 0xff}
	colorFocus    = color.RGBA{0x6b, 0x47, 0xd9, 0x30}
	colorLabel    = color.RGBA{0x44, 0x44, 0x44, 0xff}
)

// channelOrder fixes the draw order so overlapping curves layer identically
// in PNG and SVG output.
var channelOrder = []byte{'A', 'C', 'G', 'T'}

// displayChannel returns the samples and color to draw for a channel label,
// honoring reverse-complement presentation: the samples for A are shown with
// T's identity and vice versa (likewise C and G), without reordering.
func (s *Surface) displayChannel(label byte) ([]int, color.RGBA) {
	tr := s.read.Trace
	effective := label
	if s.reverse {
		switch label {
		case 'A':
			effective = 'T'
		case 'T':
			effective = 'A'
		case 'C':
			effective = 'G'
		case 'G':
			effective = 'C'
		}
	}
	var samples []int
	switch effective {
	case 'A':
		samples = tr.ChannelA
	case 'C':
		samples = tr.ChannelC
	case 'G':
		samples = tr.ChannelG
	default:
		samples = tr.ChannelT
	}
	var col color.RGBA
	switch label {
	case 'A':
		col = colorA
	case 'C':
		col = colorC
	case 'G':
		col = colorG
	default:
		col = colorT
	}
	return samples, col
}

// RenderOptions selects overlays beyond the raw curves.
type RenderOptions struct {
	Variants []model.VariantMarker
	// Focus draws a translucent band over the scan range the shared
	// highlight resolves to on this read. Nil means no band.
	Focus *coord.RefRange
	// Labels draws the called base letters along the peak row.
	Labels bool
}

// SavePNG renders the surface to a PNG file.
func (s *Surface) SavePNG(path string, opts RenderOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	dc := gg.NewContext(s.widthPx, s.heightPx)
	s.renderGG(dc, opts)
	return dc.SavePNG(path)
}

// RenderGG draws the surface onto an existing gg context, for callers that
// compose several surfaces into one image.
func (s *Surface) RenderGG(dc *gg.Context, opts RenderOptions) {
	defer metrics.Timer(metrics.SurfaceRender)()
	s.renderGG(dc, opts)
}

func (s *Surface) renderGG(dc *gg.Context, opts RenderOptions) {
	dc.SetColor(colorBackdrop)
	dc.DrawRectangle(0, 0, float64(s.widthPx), float64(s.heightPx))
	dc.Fill()

	baseY := float64(s.heightPx) - 1
	dc.SetColor(colorBaseline)
	dc.SetLineWidth(1)
	dc.DrawLine(0, baseY, float64(s.widthPx), baseY)
	dc.Stroke()

	if s.Inert() {
		dc.SetFontFace(basicfont.Face7x13)
		dc.SetColor(colorLabel)
		dc.DrawStringAnchored("no trace data", float64(s.widthPx)/2, float64(s.heightPx)/2, 0.5, 0.5)
		return
	}

	if opts.Focus != nil {
		if x0, x1, ok := s.focusBand(*opts.Focus); ok {
			dc.SetColor(colorFocus)
			dc.DrawRectangle(x0, 0, x1-x0, float64(s.heightPx))
			dc.Fill()
		}
	}

	lo, hi := s.VisibleScanRange()
	for _, label := range channelOrder {
		samples, col := s.displayChannel(label)
		if len(samples) == 0 {
			continue
		}
		dc.SetColor(col)
		dc.SetLineWidth(1.4)
		started := false
		for scan := lo; scan <= hi && int(scan) < len(samples); scan++ {
			x := s.PixelX(scan)
			y := s.SampleY(samples[scan])
			if !started {
				dc.MoveTo(x, y)
				started = true
				continue
			}
			dc.LineTo(x, y)
		}
		dc.Stroke()
	}

	if opts.Labels {
		dc.SetFontFace(basicfont.Face7x13)
		seq := s.read.Trace.PrimarySeq
		for i, peak := range s.read.Trace.PeakLocations {
			if peak < lo || peak > hi {
				continue
			}
			x := s.PixelX(peak)
			dc.SetColor(colorPeakTick)
			dc.DrawLine(x, baseY-4, x, baseY)
			dc.Stroke()
			if i < len(seq) {
				_, col := s.displayChannel(seq[i])
				dc.SetColor(col)
				dc.DrawStringAnchored(string(seq[i]), x, baseY-12, 0.5, 0.5)
			}
		}
	}

	for _, v := range opts.Variants {
		if v.SignalScanPos < lo || v.SignalScanPos > hi {
			continue
		}
		x := s.PixelX(v.SignalScanPos)
		dc.SetColor(colorVariant)
		dc.SetLineWidth(1)
		dc.DrawLine(x, 0, x, baseY)
		dc.Stroke()
		dc.SetFontFace(basicfont.Face7x13)
		dc.DrawStringAnchored(v.String(), x+3, 10, 0, 0.5)
	}
}

// SaveSVG renders the surface to an SVG file.
func (s *Surface) SaveSVG(path string, opts RenderOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.RenderSVG(file, opts)
}

// RenderSVG writes the surface as a standalone SVG document.
func (s *Surface) RenderSVG(w io.Writer, opts RenderOptions) error {
	canvas := svg.New(w)
	canvas.Start(s.widthPx, s.heightPx)
	s.renderSVGBody(canvas, opts)
	canvas.End()
	return nil
}

// RenderSVGBody draws the surface into an already-open SVG canvas, for
// callers that compose several surfaces into one document.
func (s *Surface) RenderSVGBody(canvas *svg.SVG, opts RenderOptions) {
	s.renderSVGBody(canvas, opts)
}

func (s *Surface) renderSVGBody(canvas *svg.SVG, opts RenderOptions) {
	canvas.Rect(0, 0, s.widthPx, s.heightPx, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	baseY := s.heightPx - 1
	canvas.Line(0, baseY, s.widthPx, baseY, fmt.Sprintf("stroke:%s;stroke-width:1", css(colorBaseline)))

	if s.Inert() {
		canvas.Text(s.widthPx/2, s.heightPx/2, "no trace data",
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;text-anchor:middle", css(colorLabel)))
		return
	}

	if opts.Focus != nil {
		if x0, x1, ok := s.focusBand(*opts.Focus); ok {
			canvas.Rect(int(x0), 0, int(x1-x0), s.heightPx,
				"fill:#6b47d9;fill-opacity:0.18")
		}
	}

	lo, hi := s.VisibleScanRange()
	for _, label := range channelOrder {
		samples, col := s.displayChannel(label)
		if len(samples) == 0 {
			continue
		}
		var xs, ys []int
		for scan := lo; scan <= hi && int(scan) < len(samples); scan++ {
			xs = append(xs, int(s.PixelX(scan)))
			ys = append(ys, int(s.SampleY(samples[scan])))
		}
		if len(xs) < 2 {
			continue
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.4", css(col)))
	}

	if opts.Labels {
		seq := s.read.Trace.PrimarySeq
		for i, peak := range s.read.Trace.PeakLocations {
			if peak < lo || peak > hi || i >= len(seq) {
				continue
			}
			x := int(s.PixelX(peak))
			_, col := s.displayChannel(seq[i])
			canvas.Text(x, baseY-8, string(seq[i]),
				fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(col)))
		}
	}

	for _, v := range opts.Variants {
		if v.SignalScanPos < lo || v.SignalScanPos > hi {
			continue
		}
		x := int(s.PixelX(v.SignalScanPos))
		canvas.Line(x, 0, x, baseY, fmt.Sprintf("stroke:%s;stroke-width:1", css(colorVariant)))
		canvas.Text(x+3, 10, v.String(),
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorVariant)))
	}
}

// focusBand resolves a reference range through this read's own chain into a
// pixel interval. Each surface resolves independently; the same shared
// highlight lands on different pixels per read.
func (s *Surface) focusBand(r coord.RefRange) (float64, float64, bool) {
	r = r.Normalize()
	startScan, ok1 := s.resolveOrNearest(r.Start, r.Start, r.End)
	endScan, ok2 := s.resolveOrNearest(r.End, r.Start, r.End)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	if endScan < startScan {
		startScan, endScan = endScan, startScan
	}
	x0 := s.PixelX(startScan)
	x1 := s.PixelX(endScan)
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if x1 < 0 || x0 > float64(s.widthPx) {
		return 0, 0, false
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > float64(s.widthPx) {
		x1 = float64(s.widthPx)
	}
	return x0, x1, true
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// FormatFromPath infers "png" or "svg" from a file extension, defaulting to
// svg for unknown extensions.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	default:
		return "svg"
	}
}
