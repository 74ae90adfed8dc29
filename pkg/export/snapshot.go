// Package export renders job snapshots to static files.
//
// A snapshot stacks one chromatogram surface per read over a shared reference
// window, with a header block naming the job and window so the file stands on
// its own outside the viewer.
package export

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

	"github.com/peakscope/peakscope/pkg/align"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/metrics"
	"github.com/peakscope/peakscope/pkg/model"
	"github.com/peakscope/peakscope/pkg/trace"
)

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title  string // Optional title rendered in the header block

	Job    *model.Job
	Window coord.RefRange // Reference window every surface is fitted to
	Reads  []string       // Read names to include; empty means all

	SurfaceWidth  int // Per-surface pixel width (default 1200)
	SurfaceHeight int // Per-surface pixel height (default 200)
	ShowLabels    bool
	ShowVariants  bool
	Highlight     *coord.RefRange
}

const (
	defaultSurfaceW = 1200
	defaultSurfaceH = 200
	headerHeight    = 56
	labelGutter     = 18
	snapPadding     = 12
)

var (
	snapBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	snapHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	snapText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	snapSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
)

// SaveSnapshot renders the selected reads into a single image file.
func SaveSnapshot(opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotExport)()

	if opts.Job == nil || len(opts.Job.Reads) == 0 {
		return fmt.Errorf("no reads to export")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		format = trace.FormatFromPath(opts.Path)
		if filepath.Ext(opts.Path) == "" {
			opts.Path += "." + format
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	lay, err := buildSnapshot(opts)
	if err != nil {
		return err
	}

	switch format {
	case "png":
		return renderPNG(opts.Path, lay)
	default:
		file, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		defer file.Close()
		return renderSVG(file, lay)
	}
}

type snapshotRow struct {
	name    string
	surface *trace.Surface
	opts    trace.RenderOptions
	y       int
}

type snapshotLayout struct {
	rows   []snapshotRow
	width  int
	height int
	title  string
	window coord.RefRange
	ref    string
}

func buildSnapshot(opts SnapshotOptions) (*snapshotLayout, error) {
	width := opts.SurfaceWidth
	if width < 1 {
		width = defaultSurfaceW
	}
	height := opts.SurfaceHeight
	if height < 1 {
		height = defaultSurfaceH
	}

	window := opts.Window.Normalize()
	if window.Start < 1 {
		window = coord.RefRange{Start: 1, End: coord.RefPos(opts.Job.MaxRefPos())}.Normalize()
	}

	include := func(name string) bool {
		if len(opts.Reads) == 0 {
			return true
		}
		for _, want := range opts.Reads {
			if strings.EqualFold(want, name) {
				return true
			}
		}
		return false
	}

	lay := &snapshotLayout{
		width:  width + 2*snapPadding,
		title:  opts.Title,
		window: window,
		ref:    opts.Job.Reference,
	}
	if lay.title == "" {
		lay.title = opts.Job.Reference
	}

	y := headerHeight + snapPadding
	for _, read := range opts.Job.Reads {
		if !include(read.Name) {
			continue
		}

		idx := align.NewIndex(read)
		surface := trace.NewSurface(read, idx, trace.RobustMaxAmplitude(read))
		surface.Resize(width, height)
		surface.SetReverse(read.Reverse)
		surface.FitWindow(window)

		ropts := trace.RenderOptions{Labels: opts.ShowLabels}
		if opts.ShowVariants {
			ropts.Variants = read.Variants
		}
		if opts.Highlight != nil {
			h := opts.Highlight.Normalize()
			ropts.Focus = &h
		}

		lay.rows = append(lay.rows, snapshotRow{
			name:    read.Name,
			surface: surface,
			opts:    ropts,
			y:       y + labelGutter,
		})
		y += labelGutter + height + snapPadding
	}
	if len(lay.rows) == 0 {
		return nil, fmt.Errorf("no reads matched the export selection")
	}

	lay.height = y
	return lay, nil
}

func renderPNG(path string, lay *snapshotLayout) error {
	dc := gg.NewContext(lay.width, lay.height)
	dc.SetColor(snapBackdrop)
	dc.Clear()

	dc.SetColor(snapHeaderBG)
	dc.DrawRoundedRectangle(8, 8, float64(lay.width)-16, headerHeight-12, 8)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(snapText)
	dc.DrawStringAnchored(lay.title, 20, 24, 0, 0.5)
	dc.SetColor(snapSubtle)
	dc.DrawStringAnchored(headerCaption(lay), 20, 42, 0, 0.5)

	for _, row := range lay.rows {
		dc.SetColor(snapText)
		dc.DrawStringAnchored(rowCaption(row), float64(snapPadding), float64(row.y-6), 0, 0.5)

		// Each surface draws into its own context, then blits at the row
		// offset: Surface pixel math assumes origin (0,0).
		w, h := row.surface.Size()
		sub := gg.NewContext(w, h)
		row.surface.RenderGG(sub, row.opts)
		dc.DrawImage(sub.Image(), snapPadding, row.y)
	}

	return dc.SavePNG(path)
}

func renderSVG(w io.Writer, lay *snapshotLayout) error {
	canvas := svg.New(w)
	canvas.Start(lay.width, lay.height)
	canvas.Rect(0, 0, lay.width, lay.height, fmt.Sprintf("fill:%s", css(snapBackdrop)))
	canvas.Roundrect(8, 8, lay.width-16, headerHeight-12, 8, 8, fmt.Sprintf("fill:%s", css(snapHeaderBG)))

	canvas.Text(20, 28, lay.title,
		fmt.Sprintf("fill:%s;font-size:15px;font-family:monospace;font-weight:bold", css(snapText)))
	canvas.Text(20, 44, headerCaption(lay),
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(snapSubtle)))

	for _, row := range lay.rows {
		canvas.Text(snapPadding, row.y-6, rowCaption(row),
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(snapText)))

		canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", snapPadding, row.y))
		row.surface.RenderSVGBody(canvas, row.opts)
		canvas.Gend()
	}

	canvas.End()
	return nil
}

func headerCaption(lay *snapshotLayout) string {
	return fmt.Sprintf("reference %s  positions %d-%d  reads %d",
		lay.ref, lay.window.Start, lay.window.End, len(lay.rows))
}

func rowCaption(row snapshotRow) string {
	if row.surface.Reverse() {
		return row.name + " (reverse)"
	}
	return row.name
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
