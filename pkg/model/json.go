package model

import (
	json "github.com/goccy/go-json"

	"github.com/peakscope/peakscope/pkg/coord"
)

// alignmentEntryWire is the backend's shape for one alignment entry: called
// bases travel as plain strings ("AT"), not as byte arrays.
type alignmentEntryWire struct {
	Consensus string            `json:"consensus"`
	Alt1      string            `json:"alt1,omitempty"`
	Alt2      string            `json:"alt2,omitempty"`
	ScanIdx1  []coord.BaseIndex `json:"scanIdx1,omitempty"`
	ScanIdx2  []coord.BaseIndex `json:"scanIdx2,omitempty"`
}

// UnmarshalJSON decodes the backend's string-based base sequences.
func (e *AlignmentEntry) UnmarshalJSON(data []byte) error {
	var wire alignmentEntryWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = AlignmentEntry{
		Consensus: []byte(wire.Consensus),
		Alt1:      []byte(wire.Alt1),
		Alt2:      []byte(wire.Alt2),
		ScanIdx1:  wire.ScanIdx1,
		ScanIdx2:  wire.ScanIdx2,
	}
	if len(e.Consensus) == 0 {
		e.Consensus = nil
	}
	if len(e.Alt1) == 0 {
		e.Alt1 = nil
	}
	if len(e.Alt2) == 0 {
		e.Alt2 = nil
	}
	return nil
}

// MarshalJSON emits the backend's string-based shape.
func (e AlignmentEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(alignmentEntryWire{
		Consensus: string(e.Consensus),
		Alt1:      string(e.Alt1),
		Alt2:      string(e.Alt2),
		ScanIdx1:  e.ScanIdx1,
		ScanIdx2:  e.ScanIdx2,
	})
}
