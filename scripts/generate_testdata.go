//go:build ignore

// generate_testdata.go creates standard job fixtures for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   testdata/benchmark/small.json   (200 bp reference, 2 reads)
//   testdata/benchmark/medium.json  (2000 bp reference, 8 reads)
//   testdata/benchmark/large.json   (10000 bp reference, 24 reads)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
	"github.com/peakscope/peakscope/pkg/testutil"
)

type datasetSpec struct {
	name   string
	refLen int
	reads  int
}

var datasets = []datasetSpec{
	{"small", 200, 2},
	{"medium", 2000, 8},
	{"large", 10000, 24},
}

func main() {
	outputDir := "testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d bp, %d reads)...\n", ds.name, ds.refLen, ds.reads)

		job := buildJob(ds)
		data, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal %s: %v\n", ds.name, err)
			os.Exit(1)
		}

		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes)\n", outputPath, len(data))
	}

	fmt.Println("\nDone! Job fixtures created in", outputDir)
}

// buildJob tiles overlapping reads across the reference, alternating strand,
// with a sprinkling of het variants so depth expansion has something to do.
func buildJob(ds datasetSpec) *model.Job {
	refSeq := testutil.RepeatBases(ds.refLen)
	job := &model.Job{
		Reference: fmt.Sprintf("bench_%s", ds.name),
		Length:    ds.refLen,
	}

	span := ds.refLen
	if ds.reads > 1 {
		// Overlap neighbouring reads by half a span.
		span = 2 * ds.refLen / (ds.reads + 1)
	}
	for i := 0; i < ds.reads; i++ {
		start := i * span / 2
		if start+span > ds.refLen {
			start = ds.refLen - span
		}

		cfg := testutil.DefaultGeneratorConfig()
		cfg.Seed = int64(ds.refLen + i)
		read := testutil.SyntheticRead(testutil.ReadName(i), refSeq[start:start+span], coord.RefPos(start+1), cfg)
		read.Reverse = i%2 == 1

		// One het variant per read, a third of the way in.
		vpos := coord.RefPos(start + span/3 + 1)
		ref := string(refSeq[int(vpos)-1])
		read = testutil.WithVariant(read, vpos, ref, flipBase(ref))

		job.Reads = append(job.Reads, read)
	}

	if len(job.Reads) > 0 {
		job.Features = []model.Feature{
			{Type: "CDS", Name: "bench_cds", Start: 1, End: coord.RefPos(ds.refLen / 2), Strand: model.StrandForward},
		}
	}
	return job
}

func flipBase(ref string) string {
	switch ref {
	case "A":
		return "G"
	case "C":
		return "T"
	case "G":
		return "A"
	default:
		return "C"
	}
}
