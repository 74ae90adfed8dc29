package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/peakscope/peakscope/pkg/align"
	"github.com/peakscope/peakscope/pkg/config"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/debug"
	"github.com/peakscope/peakscope/pkg/export"
	"github.com/peakscope/peakscope/pkg/metrics"
	"github.com/peakscope/peakscope/pkg/minimap"
	"github.com/peakscope/peakscope/pkg/model"
	"github.com/peakscope/peakscope/pkg/selection"
	"github.com/peakscope/peakscope/pkg/viewstate"
	"github.com/peakscope/peakscope/pkg/watcher"
)

// Zoom bounds in reference bases per window.
const (
	minZoom = 10
	maxZoom = 100000
)

// Vertical layout of the main view:
// header, ruler, track rows, minimap, status line.
const (
	headerLine = 0
	rulerLine  = 1
	tracksLine = 2
)

// focus represents which UI element has keyboard focus
type focus int

const (
	focusTracks focus = iota
	focusGoto
	focusHelp
)

// Model is the bubbletea model for the whole viewer.
type Model struct {
	theme Theme
	cfg   config.Config

	jobPath string
	job     *model.Job
	indexes []*align.Index
	depths  *align.DepthMap

	state *viewstate.State
	sel   *selection.Controller
	mini  *minimap.Map

	watch *watcher.Watcher

	focus     focus
	gotoInput textinput.Model

	width  int
	height int
	ready  bool

	statusMsg     string
	statusIsError bool
	statusID      int

	wheelSteps  int
	wheelQueued bool

	loadWarnings []string
}

// NewModel assembles the viewer around an already-loaded job. watch may be
// nil when auto-reload is disabled.
func NewModel(job *model.Job, jobPath string, cfg config.Config, watch *watcher.Watcher) Model {
	m := Model{
		theme:     DefaultTheme(lipgloss.DefaultRenderer()),
		cfg:       cfg,
		jobPath:   jobPath,
		state:     viewstate.New(),
		watch:     watch,
		gotoInput: textinput.New(),
	}
	m.sel = selection.NewController(m.state)
	m.gotoInput.Placeholder = "position"
	m.gotoInput.CharLimit = 9
	m.gotoInput.Width = 12

	m.state.SetZoom(cfg.UI.DefaultZoom)
	m.installJob(job)
	return m
}

// installJob swaps in a job and rebuilds everything derived from it. The
// viewport position survives a reload so a background refresh never yanks
// the user away from what they were looking at.
func (m *Model) installJob(job *model.Job) {
	m.job = job
	m.indexes = m.indexes[:0]
	for _, r := range job.Reads {
		m.indexes = append(m.indexes, align.NewIndex(r))
	}
	m.depths = align.BuildDepthMap(m.indexes)
	m.state.SetMaxPosition(int(job.MaxRefPos()))
	m.rebuildMinimap()
}

func (m *Model) rebuildMinimap() {
	w := m.width - trackLabelWidth
	if w < 1 {
		w = 80
	}
	var max int
	if m.job != nil {
		max = int(m.job.MaxRefPos())
	}
	m.mini = minimap.New(max, w)
}

func (m Model) Init() tea.Cmd {
	if m.watch != nil {
		return watchSourceCmd(m.watch)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Geometry first, position on the next turn: SetPosition clamps
		// against the minimap/row bounds, which are stale until this
		// update returns.
		pos := m.state.Viewport().Position
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.rebuildMinimap()
		cmds = append(cmds, func() tea.Msg { return restoreViewMsg{pos: pos} })

	case restoreViewMsg:
		m.state.SetPosition(msg.pos)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case jobLoadedMsg:
		m.installJob(msg.job)
		m.loadWarnings = msg.warnings
		verb := "Loaded"
		if msg.reload {
			verb = "Reloaded"
		}
		status := fmt.Sprintf("%s %d reads", verb, len(msg.job.Reads))
		if len(msg.warnings) > 0 {
			status += fmt.Sprintf(" (%d warnings)", len(msg.warnings))
		}
		cmds = append(cmds, m.setStatus(status, false))

	case jobLoadErrMsg:
		cmds = append(cmds, m.setStatus(fmt.Sprintf("Reload error: %v", msg.err), true))

	case sourceChangedMsg:
		debug.Log("source changed, reloading %s", m.jobPath)
		cmds = append(cmds, loadJobCmd(m.jobPath, true))
		if m.watch != nil {
			cmds = append(cmds, watchSourceCmd(m.watch))
		}

	case watchErrMsg:
		cmds = append(cmds, m.setStatus(fmt.Sprintf("Watch error: %v", msg.err), true))

	case statusExpiredMsg:
		if msg.id == m.statusID {
			m.statusMsg = ""
			m.statusIsError = false
		}

	case copiedMsg:
		if msg.err != nil {
			cmds = append(cmds, m.setStatus(fmt.Sprintf("Copy failed: %v", msg.err), true))
		} else {
			cmds = append(cmds, m.setStatus(fmt.Sprintf("Copied %d bases", msg.chars), false))
		}

	case snapshotSavedMsg:
		if msg.err != nil {
			cmds = append(cmds, m.setStatus(fmt.Sprintf("Export failed: %v", msg.err), true))
		} else {
			cmds = append(cmds, m.setStatus(fmt.Sprintf("Saved %s", msg.path), false))
		}

	case wheelFlushMsg:
		m.applyWheelZoom()
	}

	return m, tea.Batch(cmds...)
}

// setStatus records a transient status line and returns the expiry command.
// Errors stick until replaced; only informational messages expire.
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusMsg = msg
	m.statusIsError = isErr
	m.statusID++
	if isErr {
		return nil
	}
	return expireStatusCmd(m.statusID)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusGoto:
		return m.handleGotoKey(msg)
	case focusHelp:
		m.focus = focusTracks
		return m, nil
	}

	vp := m.state.Viewport()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.focus = focusHelp

	case "left", "h":
		m.state.MoveBy(-panStep(vp.Zoom))
	case "right", "l":
		m.state.MoveBy(panStep(vp.Zoom))
	case "shift+left", "H":
		m.state.MoveBy(-vp.Zoom)
	case "shift+right", "L":
		m.state.MoveBy(vp.Zoom)
	case "home":
		m.state.ScrollToBoundary(false)
	case "end":
		m.state.ScrollToBoundary(true)

	case "+", "=":
		m.state.SetZoom(zoomIn(vp.Zoom))
	case "-", "_":
		m.state.SetZoom(zoomOut(vp.Zoom))

	case "g":
		m.focus = focusGoto
		m.gotoInput.SetValue("")
		m.gotoInput.Focus()

	case "esc":
		m.sel.Clear()

	case "c":
		text := m.copySelection()
		if text == "" {
			cmd := m.setStatus("Nothing selected", false)
			return m, cmd
		}
		return m, copyToClipboardCmd(text)

	case "r":
		return m, loadJobCmd(m.jobPath, true)

	case "s":
		return m, m.exportSnapshot()
	}
	return m, nil
}

func (m Model) handleGotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusTracks
		m.gotoInput.Blur()
		return m, nil
	case "enter":
		m.focus = focusTracks
		m.gotoInput.Blur()
		raw := strings.TrimSpace(m.gotoInput.Value())
		pos, err := strconv.Atoi(raw)
		if err != nil || pos < 1 {
			cmd := m.setStatus(fmt.Sprintf("Bad position %q", raw), true)
			return m, cmd
		}
		m.state.CenterOn(coord.RefPos(pos))
		cmd := m.setStatus(fmt.Sprintf("Jumped to %d", pos), false)
		return m, cmd
	}
	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	// Wheel events coalesce: deltas accumulate and apply on the next flush
	// tick, so a fast scroll burst costs one row rebuild, not dozens.
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.queueWheel(1)
	case tea.MouseButtonWheelDown:
		return m.queueWheel(-1)
	}
	rows := m.visibleRows()
	rowAt := msg.Y - tracksLine
	view, onTrack := m.viewAt(rows, rowAt, msg.X)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if m.sel.ConsumeClick() {
			return m, nil
		}
		// The minimap strip sits one blank line below the tracks; a click
		// there recenters the viewport instead of starting a selection.
		if rowAt == len(rows)+1 {
			m.state.SetPosition(m.mini.ClickToPosition(msg.X-trackLabelWidth, m.state.Viewport().Zoom))
			return m, nil
		}
		if !onTrack {
			m.sel.Clear()
			return m, nil
		}
		m.sel.Press(view)
	case tea.MouseActionMotion:
		if onTrack {
			m.sel.Drag(view)
		}
	case tea.MouseActionRelease:
		// A release off the track rows keeps the last dragged range
		// instead of yanking it to the hit-test zero value.
		if m.sel.Dragging() {
			if onTrack {
				m.sel.Release(view)
			} else {
				m.sel.Finish()
			}
		}
	}
	return m, nil
}

// viewAt hit-tests a terminal coordinate against the built track rows.
func (m Model) viewAt(rows []trackRow, rowAt, x int) (coord.ViewIndex, bool) {
	if rowAt < 0 || rowAt >= len(rows) {
		return 0, false
	}
	cell, ok := hitTestRow(rows[rowAt], x)
	if !ok {
		return 0, false
	}
	return cell.View, true
}

func (m Model) visibleRows() []trackRow {
	return buildTrackRows(m.indexes, m.depths, m.state.VisibleRange(), m.state.Highlight())
}

// copySelection extracts the consensus bases of the first read covering any
// part of the highlight.
func (m Model) copySelection() string {
	h := m.state.Highlight()
	if h == nil {
		return ""
	}
	for _, idx := range m.indexes {
		if s := selection.CopySequence(idx, h, model.ChannelConsensus); s != "" {
			return s
		}
	}
	return ""
}

func (m Model) exportSnapshot() tea.Cmd {
	if m.job == nil {
		return nil
	}
	format := m.cfg.Export.Format
	if format == "" {
		format = "svg"
	}
	path := defaultSnapshotPath(m.cfg.Export.Dir, m.job.Reference, format)
	var hl *coord.RefRange
	if h := m.state.Highlight(); h != nil {
		r := coord.RefRange{Start: h.Start.Ref(), End: h.End.Ref()}
		hl = &r
	}
	return saveSnapshotCmd(export.SnapshotOptions{
		Path:          path,
		Format:        format,
		Job:           m.job,
		Window:        m.state.VisibleRange(),
		SurfaceWidth:  m.cfg.Trace.SurfaceWidth,
		SurfaceHeight: m.cfg.Trace.SurfaceHeight,
		ShowLabels:    true,
		ShowVariants:  true,
		Highlight:     hl,
	})
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if !m.ready {
		return "Loading..."
	}
	if m.focus == focusHelp {
		return renderHelp(m.theme, m.width)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(renderRuler(m.theme, m.depths, m.state.VisibleRange(), m.trackWidth()))
	b.WriteString("\n")

	for _, tr := range m.visibleRows() {
		b.WriteString(renderTrackRow(m.theme, tr, m.trackWidth()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", trackLabelWidth))
	b.WriteString(renderMinimap(m.theme, m.mini.Build(minimap.BuildOptions{
		Indexes:  m.indexes,
		Features: m.featureList(),
		Viewport: m.state.Viewport(),
	})))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) featureList() []model.Feature {
	if m.job == nil {
		return nil
	}
	return m.job.Features
}

func (m Model) trackWidth() int {
	w := m.width - trackLabelWidth
	if w < 1 {
		return 1
	}
	return w
}

func (m Model) renderHeader() string {
	if m.job == nil {
		return m.theme.Header.Render("peakscope")
	}
	win := m.state.VisibleRange()
	title := fmt.Sprintf("peakscope  %s  %d reads  %s  zoom %d",
		m.job.Reference, len(m.job.Reads),
		formatSpan(int(win.Start), int(win.End)),
		m.state.Viewport().Zoom)
	return m.theme.Header.Render(truncate(title, m.width-2))
}

func (m Model) renderStatus() string {
	if m.focus == focusGoto {
		return m.theme.SecondaryText.Render("go to position: ") + m.gotoInput.View()
	}
	if m.statusMsg != "" {
		if m.statusIsError {
			return m.theme.ErrorText.Render(truncate(m.statusMsg, m.width))
		}
		return m.theme.SecondaryText.Render(truncate(m.statusMsg, m.width))
	}
	hint := "←/→ pan  +/- zoom  g goto  drag select  c copy  s snapshot  r reload  ? help  q quit"
	if h := m.state.Highlight(); h != nil {
		hint = fmt.Sprintf("selected %s  c copy  esc clear",
			formatSpan(int(h.Start.Ref()), int(h.End.Ref())))
	}
	return m.theme.MutedText.Render(truncate(hint, m.width))
}

// queueWheel records a wheel step and arms a single flush tick. Further
// steps before the tick only bump the counter.
func (m Model) queueWheel(step int) (tea.Model, tea.Cmd) {
	m.wheelSteps += step
	if m.wheelQueued {
		return m, nil
	}
	m.wheelQueued = true
	return m, wheelFlushCmd()
}

// applyWheelZoom folds the accumulated wheel steps into one zoom change.
func (m *Model) applyWheelZoom() {
	steps := m.wheelSteps
	m.wheelSteps = 0
	m.wheelQueued = false
	zoom := m.state.Viewport().Zoom
	for ; steps > 0; steps-- {
		zoom = zoomIn(zoom)
	}
	for ; steps < 0; steps++ {
		zoom = zoomOut(zoom)
	}
	m.state.SetZoom(zoom)
}

// panStep scales arrow-key panning with the zoom so a keypress moves a
// constant fraction of the window.
func panStep(zoom int) int {
	step := zoom / 10
	if step < 1 {
		step = 1
	}
	return step
}

func zoomIn(zoom int) int {
	z := zoom * 2 / 3
	if z < minZoom {
		z = minZoom
	}
	return z
}

func zoomOut(zoom int) int {
	z := zoom * 3 / 2
	if z <= zoom {
		z = zoom + 1
	}
	if z > maxZoom {
		z = maxZoom
	}
	return z
}
