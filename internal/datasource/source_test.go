package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover_FindsBothKinds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "job.json"), "{}")
	writeFile(t, filepath.Join(dir, "results.db"), "not really sqlite")

	sources, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
}

func TestDiscover_SkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "job.json"), "")

	sources, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 0 {
		t.Errorf("empty files should be skipped, got %d sources", len(sources))
	}
}

func TestSelect_PrefersSQLiteOnTie(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "job.json")
	dbPath := filepath.Join(dir, "results.db")
	writeFile(t, jsonPath, "{}")
	writeFile(t, dbPath, "db")

	// Pin identical mtimes so only the priority decides.
	now := time.Now()
	if err := os.Chtimes(jsonPath, now, now); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(dbPath, now, now); err != nil {
		t.Fatal(err)
	}

	src, err := Select(dir)
	if err != nil {
		t.Fatal(err)
	}
	if src.Type != SourceTypeSQLite {
		t.Errorf("tie should go to sqlite, got %s", src.Type)
	}
}

func TestSelect_FresherJSONWins(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "job.json")
	dbPath := filepath.Join(dir, "results.db")
	writeFile(t, dbPath, "db")
	writeFile(t, jsonPath, "{}")

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(dbPath, old, old); err != nil {
		t.Fatal(err)
	}

	src, err := Select(dir)
	if err != nil {
		t.Fatal(err)
	}
	if src.Type != SourceTypeJSON {
		t.Errorf("fresher json should win, got %s", src.Type)
	}
}

func TestSelect_EmptyDir(t *testing.T) {
	if _, err := Select(t.TempDir()); err == nil {
		t.Error("expected an error for a directory with no sources")
	}
}
