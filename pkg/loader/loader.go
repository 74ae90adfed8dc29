// Package loader reads analysis job results into the viewer's immutable data
// model.
//
// A job file is the JSON the alignment/variant-calling backend emits: one
// reference plus an array of per-read results (trace arrays, consensus
// alignment map, variants). The loader validates each read independently;
// a malformed read is skipped with a warning so partial data never blocks
// the rest of the job.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/peakscope/peakscope/pkg/metrics"
	"github.com/peakscope/peakscope/pkg/model"
)

// JobDirEnvVar overrides where LoadJob looks for job files.
const JobDirEnvVar = "PSCOPE_JOB_DIR"

// PreferredJobNames is the priority order for locating a job file in a
// results directory.
var PreferredJobNames = []string{"job.json", "results.json", "traces.json"}

// DefaultMaxJobBytes bounds how large a job file may be (256MB). Raw
// chromatogram arrays are big but not unbounded.
const DefaultMaxJobBytes = 256 << 20

// ParseOptions configures job parsing.
type ParseOptions struct {
	// WarningHandler receives non-fatal messages (skipped reads, odd
	// fields). If nil, warnings go to os.Stderr.
	WarningHandler func(string)

	// MaxBytes caps the accepted file size. 0 means DefaultMaxJobBytes.
	MaxBytes int64
}

func (o ParseOptions) warn() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// FindJobPath locates the job file in a results directory.
func FindJobPath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read results directory: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		// Skip backups and partial writes.
		if strings.Contains(e.Name(), ".backup") || strings.Contains(e.Name(), ".tmp") {
			continue
		}
		candidates = append(candidates, e.Name())
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no job file found in %s", dir)
	}

	for _, preferred := range PreferredJobNames {
		for _, name := range candidates {
			if name == preferred {
				return filepath.Join(dir, name), nil
			}
		}
	}
	sort.Strings(candidates)
	return filepath.Join(dir, candidates[0]), nil
}

// LoadJob reads a job from path. When path is a directory, the job file is
// located inside it; PSCOPE_JOB_DIR overrides an empty path.
func LoadJob(path string) (*model.Job, error) {
	return LoadJobWithOptions(path, ParseOptions{})
}

// LoadJobWithOptions reads a job with custom options.
func LoadJobWithOptions(path string, opts ParseOptions) (*model.Job, error) {
	defer metrics.Timer(metrics.JobLoad)()

	if path == "" {
		path = os.Getenv(JobDirEnvVar)
	}
	if path == "" {
		return nil, fmt.Errorf("no job path given and %s is unset", JobDirEnvVar)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat job path: %w", err)
	}
	if info.IsDir() {
		path, err = FindJobPath(path)
		if err != nil {
			return nil, err
		}
		info, err = os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat job file: %w", err)
		}
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxJobBytes
	}
	if info.Size() > maxBytes {
		return nil, fmt.Errorf("job file %s exceeds %d bytes", path, maxBytes)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open job file: %w", err)
	}
	defer file.Close()

	return ParseJob(file, opts)
}

// rawJob defers read decoding so each read can fail independently.
type rawJob struct {
	Reference string            `json:"reference"`
	Length    int               `json:"length"`
	Reads     []json.RawMessage `json:"reads"`
	Features  []model.Feature   `json:"features"`
}

// ParseJob decodes and validates a job from a reader.
func ParseJob(r io.Reader, opts ParseOptions) (*model.Job, error) {
	defer metrics.Timer(metrics.JSONParsing)()

	warn := opts.warn()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}
	data = stripBOM(data)

	var raw rawJob
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse job: %w", err)
	}

	job := &model.Job{
		Reference: raw.Reference,
		Length:    raw.Length,
		Features:  raw.Features,
	}

	// Reads decode independently and concurrently; one bad read costs a
	// warning, never the job. Each goroutine writes only its own slot, and
	// warnings are emitted in read order after Wait so the handler never
	// sees concurrent calls.
	decoded := make([]*model.ReadResult, len(raw.Reads))
	warnings := make([]string, len(raw.Reads))
	var g errgroup.Group
	for i, msg := range raw.Reads {
		g.Go(func() error {
			var read model.ReadResult
			if err := json.Unmarshal(msg, &read); err != nil {
				warnings[i] = fmt.Sprintf("skipping read %d: malformed JSON: %v", i, err)
				return nil
			}
			if err := read.Validate(); err != nil {
				warnings[i] = fmt.Sprintf("skipping read %d: %v", i, err)
				return nil
			}
			decoded[i] = &read
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, w := range warnings {
		if w != "" {
			warn(w)
		}
	}
	for _, read := range decoded {
		if read != nil {
			job.Reads = append(job.Reads, read)
		}
	}

	if job.Length <= 0 {
		if max := job.MaxRefPos(); max > 0 {
			job.Length = int(max)
			warn(fmt.Sprintf("job declares no reference length; inferred %d", job.Length))
		}
	}
	return job, nil
}

// stripBOM removes a UTF-8 byte order mark if present.
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
