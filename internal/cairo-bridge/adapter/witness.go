package adapter

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/artifact"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

// MemoryEntry is one defined memory cell in limb form.
type MemoryEntry struct {
	Address uint64     `json:"address"`
	Value   core.Limbs `json:"value"`
}

// TraceEntry is the register state of one step.
type TraceEntry = artifact.TraceEntry

// SegmentAddresses is the half-open address range [BeginAddr, StopPtr) of a
// named segment.
type SegmentAddresses struct {
	BeginAddr uint64 `json:"begin_addr"`
	StopPtr   uint64 `json:"stop_ptr"`
}

// Witness is the prover input: the memory image, the register trace, the
// segment map and the addresses of public memory.
type Witness struct {
	Memory                []MemoryEntry               `json:"memory"`
	Trace                 []TraceEntry                `json:"trace"`
	MemorySegments        map[string]SegmentAddresses `json:"memory_segments"`
	PublicMemoryAddresses []uint32                    `json:"public_memory_addresses"`
}

// Lookup returns the memory entry at addr.
func (w *Witness) Lookup(addr uint64) (MemoryEntry, int, bool) {
	i := sort.Search(len(w.Memory), func(i int) bool { return w.Memory[i].Address >= addr })
	if i < len(w.Memory) && w.Memory[i].Address == addr {
		return w.Memory[i], i, true
	}
	return MemoryEntry{}, -1, false
}

// Validate checks the ordering and range invariants of the witness.
func (w *Witness) Validate() error {
	for i := 1; i < len(w.Memory); i++ {
		if w.Memory[i].Address <= w.Memory[i-1].Address {
			return errors.Errorf("memory addresses not strictly increasing at entry %d", i)
		}
	}
	for i := range w.Memory {
		if _, err := core.FromLimbs(w.Memory[i].Value); err != nil {
			return errors.Wrapf(err, "memory entry %d", i)
		}
	}
	for name, seg := range w.MemorySegments {
		if seg.StopPtr < seg.BeginAddr {
			return errors.Wrapf(ErrMalformedSegment, "%s: stop %d < begin %d", name, seg.StopPtr, seg.BeginAddr)
		}
	}
	return nil
}

// Encode writes w as JSON.
func (w *Witness) Encode(out io.Writer) error {
	return errors.Wrap(json.NewEncoder(out).Encode(w), "encode witness")
}

// DecodeWitness reads a JSON witness written by Encode and validates it.
func DecodeWitness(r io.Reader) (*Witness, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var w Witness
	if err := dec.Decode(&w); err != nil {
		return nil, errors.Wrap(err, "decode witness")
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}
