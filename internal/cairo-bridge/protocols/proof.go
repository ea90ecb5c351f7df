package protocols

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/adapter"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

// MemoryOpening reveals one memory row and its authentication path.
type MemoryOpening struct {
	Index int                 `json:"index"`
	Entry adapter.MemoryEntry `json:"entry"`
	Path  []core.ProofNode    `json:"path"`
}

// TraceOpening reveals one trace row, its authentication path and the
// memory row holding the instruction at its pc.
type TraceOpening struct {
	Index       int                `json:"index"`
	Entry       adapter.TraceEntry `json:"entry"`
	Path        []core.ProofNode   `json:"path"`
	Instruction MemoryOpening      `json:"instruction"`
}

// Proof contains the commitments and openings that let a verifier check a
// Claim without the full witness.
type Proof struct {
	Claim      Claim  `json:"claim"`
	MemoryRoot []byte `json:"memory_root"`
	TraceRoot  []byte `json:"trace_root"`

	// Queries are the trace rows drawn from the transcript, in draw order.
	Queries []TraceOpening `json:"queries"`

	// PublicMemory opens every public cell of the claim, in claim order.
	PublicMemory []MemoryOpening `json:"public_memory"`

	// Seal is the transcript state after the last query was drawn.
	Seal []byte `json:"seal"`
}

// Encode serializes the proof as JSON.
func (p *Proof) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "encode proof")
	}
	return data, nil
}

// DecodeProof parses a proof written by Encode.
func DecodeProof(data []byte) (*Proof, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var p Proof
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Wrap(err, "decode proof")
	}
	return &p, nil
}
