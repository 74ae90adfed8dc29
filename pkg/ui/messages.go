package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/peakscope/peakscope/internal/datasource"
	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/export"
	"github.com/peakscope/peakscope/pkg/loader"
	"github.com/peakscope/peakscope/pkg/model"
	"github.com/peakscope/peakscope/pkg/watcher"
)

// jobLoadedMsg carries a freshly loaded (or reloaded) job.
type jobLoadedMsg struct {
	job      *model.Job
	path     string
	warnings []string
	reload   bool
}

// jobLoadErrMsg reports a failed load. The previous job, if any, stays on
// screen.
type jobLoadErrMsg struct {
	err error
}

// sourceChangedMsg fires when the watcher sees the job source change on disk.
type sourceChangedMsg struct{}

// watchErrMsg reports a watcher failure; the viewer keeps running without
// auto-reload.
type watchErrMsg struct {
	err error
}

// statusExpiredMsg clears a transient status line. The id guards against a
// stale timer wiping a newer message.
type statusExpiredMsg struct {
	id int
}

// copiedMsg reports the outcome of a clipboard copy.
type copiedMsg struct {
	chars int
	err   error
}

// snapshotSavedMsg reports the outcome of an in-session export.
type snapshotSavedMsg struct {
	path string
	err  error
}

// wheelFlushMsg applies wheel-zoom steps accumulated since the last frame.
// Wheel events arrive in bursts far faster than rows are worth rebuilding,
// so deltas coalesce and apply once per tick.
type wheelFlushMsg struct{}

// restoreViewMsg re-applies the viewport position on the turn after a
// resize, once the minimap and row geometry reflect the new dimensions.
type restoreViewMsg struct {
	pos coord.ViewIndex
}

const (
	statusDuration = 4 * time.Second
	wheelFlushTick = 16 * time.Millisecond
)

func wheelFlushCmd() tea.Cmd {
	return tea.Tick(wheelFlushTick, func(time.Time) tea.Msg {
		return wheelFlushMsg{}
	})
}

// LoadJobFromPath loads a job from path, picking the reader by what the
// path points at: a .db file opens the SQLite reader, a .json file the JSON
// loader, and a directory is scanned for both (SQLite preferred).
func LoadJobFromPath(path string, warn func(string)) (*model.Job, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		r, err := datasource.NewSQLiteReader(datasource.Source{
			Type: datasource.SourceTypeSQLite,
			Path: path,
		})
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return r.LoadJob(warn)
	case ".json":
		return loader.LoadJobWithOptions(path, loader.ParseOptions{WarningHandler: warn})
	}

	src, err := datasource.Select(path)
	if err != nil {
		return nil, err
	}
	if src.Type == datasource.SourceTypeSQLite {
		r, err := datasource.NewSQLiteReader(src)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return r.LoadJob(warn)
	}
	return loader.LoadJobWithOptions(src.Path, loader.ParseOptions{WarningHandler: warn})
}

// loadJobCmd loads the job off the Update loop.
func loadJobCmd(path string, reload bool) tea.Cmd {
	return func() tea.Msg {
		var warnings []string
		job, err := LoadJobFromPath(path, func(msg string) {
			warnings = append(warnings, msg)
		})
		if err != nil {
			return jobLoadErrMsg{err: err}
		}
		return jobLoadedMsg{job: job, path: path, warnings: warnings, reload: reload}
	}
}

// watchSourceCmd blocks until the watcher reports a change. Re-issued after
// every sourceChangedMsg so the subscription stays alive.
func watchSourceCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-w.Changed()
		if !ok {
			return nil
		}
		return sourceChangedMsg{}
	}
}

func expireStatusCmd(id int) tea.Cmd {
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return statusExpiredMsg{id: id}
	})
}

func copyToClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return copiedMsg{err: err}
		}
		return copiedMsg{chars: len(text)}
	}
}

// saveSnapshotCmd exports the current window without leaving the viewer.
func saveSnapshotCmd(opts export.SnapshotOptions) tea.Cmd {
	return func() tea.Msg {
		if err := export.SaveSnapshot(opts); err != nil {
			return snapshotSavedMsg{err: err}
		}
		return snapshotSavedMsg{path: opts.Path}
	}
}

// defaultSnapshotPath names an export file that will not collide across
// repeated exports in one session.
func defaultSnapshotPath(dir, reference, format string) string {
	name := fmt.Sprintf("%s-%s.%s", sanitizeName(reference), time.Now().Format("20060102-150405"), format)
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func sanitizeName(s string) string {
	if s == "" {
		return "snapshot"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
