package export

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/peakscope/peakscope/pkg/align"
	"github.com/peakscope/peakscope/pkg/model"
)

// GenerateMarkdown creates a markdown report of the job: per-read coverage
// and the full variant list, position-sorted.
func GenerateMarkdown(job *model.Job, title string) (string, error) {
	if job == nil {
		return "", fmt.Errorf("no job loaded")
	}
	if strings.TrimSpace(title) == "" {
		title = job.Reference
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", time.Now().Format(time.RFC1123)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Reference | %s |\n", job.Reference))
	sb.WriteString(fmt.Sprintf("| Length | %d |\n", job.Length))
	sb.WriteString(fmt.Sprintf("| Reads | %d |\n", len(job.Reads)))
	sb.WriteString(fmt.Sprintf("| Variants | %d |\n\n", countVariants(job)))

	sb.WriteString("## Reads\n\n")
	sb.WriteString("| Read | Strand | Covered positions | Span | Variants |\n")
	sb.WriteString("|------|--------|-------------------|------|----------|\n")
	for _, read := range job.Reads {
		idx := align.NewIndex(read)
		span := "-"
		if bounds, ok := idx.Bounds(); ok {
			span = fmt.Sprintf("%d-%d", bounds.Start, bounds.End)
		}
		strand := "+"
		if read.Reverse {
			strand = "-"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %d |\n",
			read.Name, strand, idx.Covered(), span, len(read.Variants)))
	}
	sb.WriteString("\n")

	variants := collectVariants(job)
	if len(variants) > 0 {
		sb.WriteString("## Variants\n\n")
		sb.WriteString("| Position | Change | Type | Genotype | Quality | Read |\n")
		sb.WriteString("|----------|--------|------|----------|---------|------|\n")
		for _, v := range variants {
			sb.WriteString(fmt.Sprintf("| %d | %s>%s | %s | %s | %d | %s |\n",
				v.marker.RefPos, v.marker.Ref, v.marker.Alt,
				orDash(v.marker.Type), orDash(v.marker.Genotype),
				v.marker.Quality, v.readName))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// SaveMarkdown writes the report to a file.
func SaveMarkdown(job *model.Job, title, path string) error {
	report, err := GenerateMarkdown(job, title)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(report), 0o644)
}

type readVariant struct {
	readName string
	marker   model.VariantMarker
}

func collectVariants(job *model.Job) []readVariant {
	var out []readVariant
	for _, read := range job.Reads {
		for _, v := range read.Variants {
			out = append(out, readVariant{readName: read.Name, marker: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].marker.RefPos != out[j].marker.RefPos {
			return out[i].marker.RefPos < out[j].marker.RefPos
		}
		return out[i].readName < out[j].readName
	})
	return out
}

func countVariants(job *model.Job) int {
	n := 0
	for _, read := range job.Reads {
		n += len(read.Variants)
	}
	return n
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
