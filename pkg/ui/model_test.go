package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/peakscope/peakscope/pkg/config"
	"github.com/peakscope/peakscope/pkg/testutil"
)

func testModel(t *testing.T, refLen int) Model {
	t.Helper()
	job := testutil.SyntheticJob("pUC19", testutil.RepeatBases(refLen))
	m := NewModel(job, "/tmp/job.json", config.DefaultConfig(), nil)
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return mm.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	mm, _ := m.Update(msg)
	return mm.(Model)
}

func TestModel_ViewShowsJob(t *testing.T) {
	m := testModel(t, 40)
	out := m.View()
	if !strings.Contains(out, "pUC19") {
		t.Error("view missing reference name")
	}
	if !strings.Contains(out, "reference") {
		t.Error("view missing reference track label")
	}
	if !strings.Contains(out, "fwd_1") {
		t.Error("view missing read label")
	}
}

func TestModel_NotReadyBeforeResize(t *testing.T) {
	job := testutil.SyntheticJob("pUC19", testutil.RepeatBases(40))
	m := NewModel(job, "/tmp/job.json", config.DefaultConfig(), nil)
	if got := m.View(); got != "Loading..." {
		t.Errorf("pre-resize view = %q", got)
	}
}

func TestModel_PanKeys(t *testing.T) {
	m := testModel(t, 400)
	if pos := m.state.Viewport().Position; pos != 0 {
		t.Fatalf("initial position = %d", pos)
	}

	m = update(t, m, keyMsg("right"))
	if pos := m.state.Viewport().Position; pos != 10 {
		t.Errorf("after right: position = %d, want 10", pos)
	}

	m = update(t, m, keyMsg("left"))
	if pos := m.state.Viewport().Position; pos != 0 {
		t.Errorf("after left: position = %d, want 0", pos)
	}

	m = update(t, m, keyMsg("end"))
	if pos := int(m.state.Viewport().Position); pos != 400-m.state.Viewport().Zoom {
		t.Errorf("after end: position = %d", pos)
	}

	m = update(t, m, keyMsg("home"))
	if pos := m.state.Viewport().Position; pos != 0 {
		t.Errorf("after home: position = %d, want 0", pos)
	}
}

func TestModel_ZoomKeys(t *testing.T) {
	m := testModel(t, 400)
	before := m.state.Viewport().Zoom

	m = update(t, m, keyMsg("+"))
	if z := m.state.Viewport().Zoom; z >= before {
		t.Errorf("zoom in did not narrow the window: %d -> %d", before, z)
	}

	m = update(t, m, keyMsg("-"))
	m = update(t, m, keyMsg("-"))
	if z := m.state.Viewport().Zoom; z <= before {
		t.Errorf("zoom out did not widen the window past %d: %d", before, z)
	}
}

func TestModel_WheelZoomCoalesces(t *testing.T) {
	m := testModel(t, 400)
	before := m.state.Viewport().Zoom

	// A burst of wheel events must not touch the zoom until the flush tick.
	m = update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	m = update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if z := m.state.Viewport().Zoom; z != before {
		t.Fatalf("zoom changed before flush: %d -> %d", before, z)
	}
	if m.wheelSteps != 2 || !m.wheelQueued {
		t.Fatalf("wheelSteps=%d queued=%v, want 2 steps queued", m.wheelSteps, m.wheelQueued)
	}

	m = update(t, m, wheelFlushMsg{})
	want := zoomIn(zoomIn(before))
	if z := m.state.Viewport().Zoom; z != want {
		t.Errorf("flushed zoom = %d, want %d", z, want)
	}
	if m.wheelSteps != 0 || m.wheelQueued {
		t.Errorf("flush should reset accumulator: steps=%d queued=%v", m.wheelSteps, m.wheelQueued)
	}
}

func TestModel_WheelZoomOppositeStepsCancel(t *testing.T) {
	m := testModel(t, 400)
	before := m.state.Viewport().Zoom

	m = update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	m = update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m = update(t, m, wheelFlushMsg{})
	if z := m.state.Viewport().Zoom; z != before {
		t.Errorf("cancelling steps should leave zoom at %d, got %d", before, z)
	}
}

func TestModel_ResizeRestoresPositionNextTurn(t *testing.T) {
	m := testModel(t, 400)
	m.state.SetPosition(120)

	mm, cmd := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = mm.(Model)
	if cmd == nil {
		t.Fatal("resize should schedule a position restore")
	}
	restore, ok := cmd().(restoreViewMsg)
	if !ok {
		t.Fatalf("resize cmd produced %T, want restoreViewMsg", cmd())
	}
	m = update(t, m, restore)
	if pos := m.state.Viewport().Position; pos != 120 {
		t.Errorf("position after resize round trip = %d, want 120", pos)
	}
}

func TestModel_GotoPosition(t *testing.T) {
	m := testModel(t, 400)

	m = update(t, m, keyMsg("g"))
	if m.focus != focusGoto {
		t.Fatal("g should focus the goto input")
	}
	m = update(t, m, keyMsg("2"))
	m = update(t, m, keyMsg("5"))
	m = update(t, m, keyMsg("0"))
	m = update(t, m, keyMsg("enter"))

	if m.focus != focusTracks {
		t.Error("enter should return focus to the tracks")
	}
	want := 250 - 1 - m.state.Viewport().Zoom/2
	if pos := int(m.state.Viewport().Position); pos != want {
		t.Errorf("position after goto 250 = %d, want %d", pos, want)
	}
}

func TestModel_GotoRejectsGarbage(t *testing.T) {
	m := testModel(t, 400)
	m = update(t, m, keyMsg("g"))
	m = update(t, m, keyMsg("x"))
	m = update(t, m, keyMsg("enter"))
	if !m.statusIsError {
		t.Error("non-numeric goto input should set an error status")
	}
	if pos := m.state.Viewport().Position; pos != 0 {
		t.Errorf("position should not move on bad input, got %d", pos)
	}
}

func TestModel_GotoEscCancels(t *testing.T) {
	m := testModel(t, 400)
	m = update(t, m, keyMsg("g"))
	m = update(t, m, keyMsg("esc"))
	if m.focus != focusTracks {
		t.Error("esc should cancel the goto input")
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := testModel(t, 40)
	m = update(t, m, keyMsg("?"))
	if m.focus != focusHelp {
		t.Fatal("? should open help")
	}
	if out := m.View(); !strings.Contains(out, "peakscope") {
		t.Error("help view missing title")
	}
	m = update(t, m, keyMsg("x"))
	if m.focus != focusTracks {
		t.Error("any key should close help")
	}
}

func TestModel_CopySelection(t *testing.T) {
	m := testModel(t, 40)
	m.state.SetHighlight(0, 3) // positions 1-4
	if got := m.copySelection(); got != "ACGT" {
		t.Errorf("copySelection = %q, want ACGT", got)
	}
	m.sel.Clear()
	if got := m.copySelection(); got != "" {
		t.Errorf("copySelection with no highlight = %q, want empty", got)
	}
}

func TestModel_DragSelection(t *testing.T) {
	m := testModel(t, 40)

	m = update(t, m, tea.MouseMsg{
		Button: tea.MouseButtonLeft, Action: tea.MouseActionPress,
		X: trackLabelWidth, Y: tracksLine,
	})
	m = update(t, m, tea.MouseMsg{
		Action: tea.MouseActionMotion,
		X:      trackLabelWidth + 5, Y: tracksLine,
	})
	m = update(t, m, tea.MouseMsg{
		Action: tea.MouseActionRelease,
		X:      trackLabelWidth + 5, Y: tracksLine,
	})

	h := m.state.Highlight()
	if h == nil {
		t.Fatal("drag did not publish a highlight")
	}
	if h.Start != 0 || h.End != 5 {
		t.Errorf("highlight = [%d, %d], want [0, 5]", h.Start, h.End)
	}
}

func TestModel_ReleaseOffTracksKeepsDraggedRange(t *testing.T) {
	m := testModel(t, 40)

	m = update(t, m, tea.MouseMsg{
		Button: tea.MouseButtonLeft, Action: tea.MouseActionPress,
		X: trackLabelWidth + 5, Y: tracksLine,
	})
	m = update(t, m, tea.MouseMsg{
		Action: tea.MouseActionMotion,
		X:      trackLabelWidth + 8, Y: tracksLine,
	})
	// Pointer ends up well below the track rows; the release must finalize
	// the drag where it last was, not move it to the hit-test zero value.
	m = update(t, m, tea.MouseMsg{
		Action: tea.MouseActionRelease,
		X:      trackLabelWidth + 8, Y: 25,
	})

	h := m.state.Highlight()
	if h == nil {
		t.Fatal("drag did not publish a highlight")
	}
	if h.Start != 5 || h.End != 8 {
		t.Errorf("highlight = [%d, %d], want [5, 8]", h.Start, h.End)
	}
	if m.sel.Dragging() {
		t.Error("release should end the drag")
	}
}

func TestModel_ReloadKeepsPosition(t *testing.T) {
	m := testModel(t, 400)
	m.state.SetPosition(120)

	job := testutil.SyntheticJob("pUC19", testutil.RepeatBases(400))
	m = update(t, m, jobLoadedMsg{job: job, reload: true})

	if pos := m.state.Viewport().Position; pos != 120 {
		t.Errorf("reload moved the viewport to %d, want 120", pos)
	}
	if !strings.Contains(m.statusMsg, "Reloaded 2 reads") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestModel_StaleStatusExpiryIgnored(t *testing.T) {
	m := testModel(t, 40)
	job := testutil.SyntheticJob("pUC19", testutil.RepeatBases(40))
	m = update(t, m, jobLoadedMsg{job: job})
	if m.statusMsg == "" {
		t.Fatal("load should set a status")
	}

	m = update(t, m, statusExpiredMsg{id: m.statusID - 1})
	if m.statusMsg == "" {
		t.Error("stale expiry cleared a newer status")
	}
	m = update(t, m, statusExpiredMsg{id: m.statusID})
	if m.statusMsg != "" {
		t.Error("matching expiry should clear the status")
	}
}

func TestModel_LoadErrorKeepsJob(t *testing.T) {
	m := testModel(t, 40)
	m = update(t, m, jobLoadErrMsg{err: errFake})
	if m.job == nil {
		t.Error("load error must not drop the current job")
	}
	if !m.statusIsError {
		t.Error("load error should set an error status")
	}
}

func TestZoomSteps(t *testing.T) {
	if z := zoomIn(100); z != 66 {
		t.Errorf("zoomIn(100) = %d", z)
	}
	if z := zoomIn(minZoom); z != minZoom {
		t.Errorf("zoomIn at floor = %d", z)
	}
	if z := zoomOut(100); z != 150 {
		t.Errorf("zoomOut(100) = %d", z)
	}
	if z := zoomOut(1); z != 2 {
		t.Errorf("zoomOut(1) = %d", z)
	}
	if z := zoomOut(maxZoom); z != maxZoom {
		t.Errorf("zoomOut at ceiling = %d", z)
	}
}

func TestPanStep(t *testing.T) {
	if s := panStep(100); s != 10 {
		t.Errorf("panStep(100) = %d", s)
	}
	if s := panStep(5); s != 1 {
		t.Errorf("panStep(5) = %d", s)
	}
}

var errFake = errFakeType{}

type errFakeType struct{}

func (errFakeType) Error() string { return "fake failure" }
