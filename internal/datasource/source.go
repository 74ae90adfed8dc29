// Package datasource detects and opens analysis result sources. A pipeline
// run leaves either a JSON job file or a SQLite results database next to it;
// the viewer takes whichever is present, preferring the database when both
// exist and it is the fresher one.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SourceType identifies the kind of result source.
type SourceType string

const (
	// SourceTypeSQLite is a results database (results.db).
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSON is a JSON job file (job.json).
	SourceTypeJSON SourceType = "json"
)

// Priority values for source types (higher wins on equal timestamps).
const (
	PrioritySQLite = 100
	PriorityJSON   = 50
)

// Source is one discovered result source.
type Source struct {
	Type     SourceType
	Path     string
	Priority int
	ModTime  time.Time
	Size     int64
}

// String returns a human-readable description of the source.
func (s Source) String() string {
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339))
}

// sqliteNames and jsonNames are the filenames a pipeline run may leave.
var (
	sqliteNames = []string{"results.db", "job.db"}
	jsonNames   = []string{"job.json", "results.json", "traces.json"}
)

// Discover lists all result sources in dir, newest first; type priority
// breaks timestamp ties.
func Discover(dir string) ([]Source, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	var sources []Source
	add := func(name string, typ SourceType, priority int) {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || info.Size() == 0 {
			return
		}
		sources = append(sources, Source{
			Type:     typ,
			Path:     path,
			Priority: priority,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
	}
	for _, name := range sqliteNames {
		add(name, SourceTypeSQLite, PrioritySQLite)
	}
	for _, name := range jsonNames {
		add(name, SourceTypeJSON, PriorityJSON)
	}

	sort.Slice(sources, func(i, j int) bool {
		if !sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].ModTime.After(sources[j].ModTime)
		}
		return sources[i].Priority > sources[j].Priority
	})
	return sources, nil
}

// Select returns the best source in dir, or an error when none exists.
func Select(dir string) (Source, error) {
	sources, err := Discover(dir)
	if err != nil {
		return Source{}, err
	}
	if len(sources) == 0 {
		return Source{}, fmt.Errorf("no result source found in %s", dir)
	}
	return sources[0], nil
}
