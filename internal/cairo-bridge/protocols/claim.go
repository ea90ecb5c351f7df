// Package protocols is a reference proof system over the adapter witness. It
// commits to the memory and trace rows, draws Fiat-Shamir queries over the
// trace and opens each queried step together with the instruction it
// executed. Public memory is always opened.
package protocols

import (
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/adapter"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

// CurrentVersion is the version of the witness proof format.
// It changes whenever the leaf layout or the transcript changes.
const CurrentVersion uint32 = 1

// ErrInvalidClaim is returned for claims that cannot describe a witness.
var ErrInvalidClaim = errors.New("invalid claim")

// PublicCell is a public memory cell and its value.
type PublicCell struct {
	Address uint32     `json:"address"`
	Value   core.Limbs `json:"value"`
}

// Claim contains the public information about a run. A corresponding Proof
// is needed to verify it.
type Claim struct {
	Version        uint32                              `json:"version"`
	TraceLength    int                                 `json:"trace_length"`
	MemorySize     int                                 `json:"memory_size"`
	Initial        adapter.TraceEntry                  `json:"initial"`
	Final          adapter.TraceEntry                  `json:"final"`
	MemorySegments map[string]adapter.SegmentAddresses `json:"memory_segments"`
	PublicMemory   []PublicCell                        `json:"public_memory"`
}

// NewClaim extracts the claim of w. Every public address must be defined in
// the witness memory.
func NewClaim(w *adapter.Witness) (*Claim, error) {
	if len(w.Trace) == 0 {
		return nil, errors.Wrap(ErrInvalidClaim, "empty trace")
	}
	c := &Claim{
		Version:        CurrentVersion,
		TraceLength:    len(w.Trace),
		MemorySize:     len(w.Memory),
		Initial:        w.Trace[0],
		Final:          w.Trace[len(w.Trace)-1],
		MemorySegments: make(map[string]adapter.SegmentAddresses, len(w.MemorySegments)),
		PublicMemory:   make([]PublicCell, 0, len(w.PublicMemoryAddresses)),
	}
	for name, seg := range w.MemorySegments {
		c.MemorySegments[name] = seg
	}
	for _, addr := range w.PublicMemoryAddresses {
		entry, _, ok := w.Lookup(uint64(addr))
		if !ok {
			return nil, errors.Wrapf(ErrInvalidClaim, "public address %d is not defined", addr)
		}
		c.PublicMemory = append(c.PublicMemory, PublicCell{Address: addr, Value: entry.Value})
	}
	return c, c.Validate()
}

// Validate checks if the claim is well-formed
func (c *Claim) Validate() error {
	if c.Version != CurrentVersion {
		return errors.Wrapf(ErrInvalidClaim, "version %d, expected %d", c.Version, CurrentVersion)
	}
	if c.TraceLength <= 0 {
		return errors.Wrap(ErrInvalidClaim, "empty trace")
	}
	if c.MemorySize <= 0 {
		return errors.Wrap(ErrInvalidClaim, "empty memory")
	}
	for name, seg := range c.MemorySegments {
		if seg.StopPtr < seg.BeginAddr {
			return errors.Wrapf(ErrInvalidClaim, "segment %s ends before it begins", name)
		}
	}
	return nil
}

// Hash computes the Fiat-Shamir digest of the claim.
func (c *Claim) Hash() []byte {
	elements := []field.Element{
		field.New(uint64(c.Version)),
		field.New(uint64(c.TraceLength)),
		field.New(uint64(c.MemorySize)),
	}
	elements = append(elements, traceElements(c.Initial)...)
	elements = append(elements, traceElements(c.Final)...)

	names := make([]string, 0, len(c.MemorySegments))
	for name := range c.MemorySegments {
		names = append(names, name)
	}
	sort.Strings(names)
	elements = append(elements, field.New(uint64(len(names))))
	for _, name := range names {
		seg := c.MemorySegments[name]
		elements = append(elements, bytesElements([]byte(name))...)
		elements = append(elements, u64Elements(seg.BeginAddr)...)
		elements = append(elements, u64Elements(seg.StopPtr)...)
	}

	elements = append(elements, field.New(uint64(len(c.PublicMemory))))
	for _, cell := range c.PublicMemory {
		elements = append(elements, field.New(uint64(cell.Address)))
		elements = append(elements, limbElements(cell.Value)...)
	}
	return digestBytes(hash.HashVarlen(elements))
}

// u64Elements splits v into two 32-bit halves so each stays below the
// Goldilocks modulus.
func u64Elements(v uint64) []field.Element {
	return []field.Element{field.New(v & 0xffffffff), field.New(v >> 32)}
}

func limbElements(l core.Limbs) []field.Element {
	out := make([]field.Element, len(l))
	for i, limb := range l {
		out[i] = field.New(uint64(limb))
	}
	return out
}

func traceElements(e adapter.TraceEntry) []field.Element {
	out := u64Elements(e.AP)
	out = append(out, u64Elements(e.FP)...)
	return append(out, u64Elements(e.PC)...)
}

// bytesElements packs b four bytes per element, prefixed by its length.
func bytesElements(b []byte) []field.Element {
	out := []field.Element{field.New(uint64(len(b)))}
	var word [4]byte
	for i := 0; i < len(b); i += 4 {
		clear(word[:])
		copy(word[:], b[i:])
		out = append(out, field.New(uint64(binary.LittleEndian.Uint32(word[:]))))
	}
	return out
}

func digestBytes(d hash.Digest) []byte {
	out := make([]byte, len(d)*8)
	for i, elem := range d {
		binary.LittleEndian.PutUint64(out[i*8:], elem.Value())
	}
	return out
}

func memoryLeaf(e adapter.MemoryEntry) []byte {
	elements := append(u64Elements(e.Address), limbElements(e.Value)...)
	return digestBytes(hash.HashVarlen(elements))
}

func traceLeaf(e adapter.TraceEntry) []byte {
	return digestBytes(hash.HashVarlen(traceElements(e)))
}
