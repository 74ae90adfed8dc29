// Package testutil provides synthetic chromatogram fixtures for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/peakscope/peakscope/pkg/coord"
	"github.com/peakscope/peakscope/pkg/model"
)

// GeneratorConfig controls synthetic trace generation.
type GeneratorConfig struct {
	// ScansPerBase is the scan spacing between consecutive peaks.
	ScansPerBase int
	// PeakWidth is the gaussian sigma of each peak, in scans.
	PeakWidth float64
	// PeakHeight is the nominal peak amplitude.
	PeakHeight int
	// NoiseAmplitude adds deterministic pseudo-random baseline noise.
	NoiseAmplitude int
	// Seed feeds the noise generator; fixtures with the same seed are
	// byte-identical.
	Seed int64
}

// DefaultGeneratorConfig returns settings resembling a clean capillary run.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		ScansPerBase:   12,
		PeakWidth:      3.0,
		PeakHeight:     800,
		NoiseAmplitude: 20,
		Seed:           1,
	}
}

// SyntheticTrace builds a four-channel trace whose signal has one gaussian
// peak per base of seq, centered at evenly spaced scan positions.
func SyntheticTrace(seq string, cfg GeneratorConfig) *model.Trace {
	if cfg.ScansPerBase <= 0 {
		cfg = DefaultGeneratorConfig()
	}

	n := len(seq)*cfg.ScansPerBase + cfg.ScansPerBase
	tr := &model.Trace{
		ChannelA:   make([]int, n),
		ChannelC:   make([]int, n),
		ChannelG:   make([]int, n),
		ChannelT:   make([]int, n),
		PrimarySeq: strings.ToUpper(seq),
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.NoiseAmplitude > 0 {
		for _, ch := range [][]int{tr.ChannelA, tr.ChannelC, tr.ChannelG, tr.ChannelT} {
			for i := range ch {
				ch[i] = rng.Intn(cfg.NoiseAmplitude)
			}
		}
	}

	for i, base := range strings.ToUpper(seq) {
		center := i*cfg.ScansPerBase + cfg.ScansPerBase/2
		tr.PeakLocations = append(tr.PeakLocations, coord.ScanIndex(center))
		tr.Qualities = append(tr.Qualities, 40)

		ch := channelFor(byte(base), tr)
		if ch == nil {
			continue // N or gap: noise only
		}
		addGaussianPeak(ch, center, cfg.PeakWidth, cfg.PeakHeight)
	}

	return tr
}

// addGaussianPeak adds a normal-density bump scaled so the apex reaches
// height.
func addGaussianPeak(ch []int, center int, sigma float64, height int) {
	peak := distuv.Normal{Mu: float64(center), Sigma: sigma}
	apex := peak.Prob(float64(center))

	// Beyond 4 sigma the contribution is negligible.
	lo := center - int(4*sigma)
	hi := center + int(4*sigma)
	if lo < 0 {
		lo = 0
	}
	if hi >= len(ch) {
		hi = len(ch) - 1
	}
	for x := lo; x <= hi; x++ {
		ch[x] += int(peak.Prob(float64(x)) / apex * float64(height))
	}
}

func channelFor(base byte, tr *model.Trace) []int {
	switch base {
	case 'A':
		return tr.ChannelA
	case 'C':
		return tr.ChannelC
	case 'G':
		return tr.ChannelG
	case 'T':
		return tr.ChannelT
	default:
		return nil
	}
}

// SyntheticRead builds a validated read whose bases align one-to-one against
// the reference starting at startPos.
func SyntheticRead(name, seq string, startPos coord.RefPos, cfg GeneratorConfig) *model.ReadResult {
	read := &model.ReadResult{
		Name:           name,
		Trace:          SyntheticTrace(seq, cfg),
		ConsensusAlign: make(map[coord.RefPos]model.AlignmentEntry),
	}
	for i := range seq {
		read.ConsensusAlign[startPos+coord.RefPos(i)] = model.AlignmentEntry{
			Consensus: []byte{seq[i]},
			ScanIdx1:  []coord.BaseIndex{coord.BaseIndex(i)},
		}
	}
	return read
}

// SyntheticJob builds a small two-read job over the given reference sequence.
// The second read covers the back half and is marked reverse.
func SyntheticJob(reference string, refSeq string) *model.Job {
	cfg := DefaultGeneratorConfig()
	half := len(refSeq) / 2

	fwd := SyntheticRead("fwd_1", refSeq, 1, cfg)

	cfg.Seed = 2
	rev := SyntheticRead("rev_1", refSeq[half:], coord.RefPos(half+1), cfg)
	rev.Reverse = true

	return &model.Job{
		Reference: reference,
		Length:    len(refSeq),
		Reads:     []*model.ReadResult{fwd, rev},
	}
}

// WithVariant attaches a heterozygous variant to the read at refPos, patching
// the alignment entry so the position shows both alleles.
func WithVariant(read *model.ReadResult, refPos coord.RefPos, ref, alt string) *model.ReadResult {
	read.Variants = append(read.Variants, model.VariantMarker{
		RefPos:   refPos,
		Ref:      ref,
		Alt:      alt,
		Type:     "SNV",
		Genotype: "het",
	})
	if entry, ok := read.ConsensusAlign[refPos]; ok && len(alt) == 1 {
		entry.Alt1 = []byte(alt)
		read.ConsensusAlign[refPos] = entry
	}
	return read
}

// RepeatBases returns a deterministic base string of length n cycling ACGT.
func RepeatBases(n int) string {
	const cycle = "ACGT"
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(cycle[i%4])
	}
	return b.String()
}

// ReadName formats a deterministic fixture read name.
func ReadName(i int) string {
	return fmt.Sprintf("read_%03d", i)
}
