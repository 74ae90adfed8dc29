package model

import (
	"fmt"

	"github.com/peakscope/peakscope/pkg/coord"
)

// VariantMarker is a called variant used purely for overlay annotation.
// The core fields are fixed; anything an external annotator contributes lives
// in Annotations, keyed by source, so foreign fields never leak into the
// rendering code.
type VariantMarker struct {
	RefPos   coord.RefPos `json:"pos"`
	Ref      string       `json:"ref"`
	Alt      string       `json:"alt"`
	Type     string       `json:"type,omitempty"`
	Genotype string       `json:"genotype,omitempty"`
	Quality  int          `json:"qual,omitempty"`
	Filter   string       `json:"filter,omitempty"`

	// BasePos indexes the read's own base sequence; SignalScanPos is the
	// corresponding position in scan space.
	BasePos       coord.BaseIndex `json:"basepos,omitempty"`
	SignalScanPos coord.ScanIndex `json:"signalpos,omitempty"`

	Annotations map[string]string `json:"annotations,omitempty"`
}

// String formats the variant in a compact ref>alt notation.
func (v VariantMarker) String() string {
	label := fmt.Sprintf("%d%s>%s", v.RefPos, v.Ref, v.Alt)
	if v.Genotype != "" {
		label += " (" + v.Genotype + ")"
	}
	return label
}

// Annotation returns the annotation for the given source, if present.
func (v VariantMarker) Annotation(source string) (string, bool) {
	val, ok := v.Annotations[source]
	return val, ok
}

// Strand marks the orientation of a genomic feature.
type Strand int

const (
	StrandNone Strand = iota
	StrandForward
	StrandReverse
)

// String returns "+", "-" or ".".
func (s Strand) String() string {
	switch s {
	case StrandForward:
		return "+"
	case StrandReverse:
		return "-"
	default:
		return "."
	}
}

// Feature is one genomic annotation interval on the reference, rendered in
// the minimap's feature track.
type Feature struct {
	Type   string       `json:"type"`
	Name   string       `json:"name,omitempty"`
	Start  coord.RefPos `json:"start"`
	End    coord.RefPos `json:"end"`
	Strand Strand       `json:"strand,omitempty"`
}

// Range returns the feature's reference interval, normalized.
func (f Feature) Range() coord.RefRange {
	return coord.RefRange{Start: f.Start, End: f.End}.Normalize()
}
