package artifact

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

// ErrUnknownSegment is returned when memory refers to a segment the
// metadata does not declare.
var ErrUnknownSegment = errors.New("unknown segment")

// FirstSegmentBase is the address the first segment is relocated to.
const FirstSegmentBase = 1

// SegmentBases returns the relocated base address of every segment.
// Segments are laid out back to back in index order starting at
// FirstSegmentBase. Indices must be contiguous from zero.
func (p *Pie) SegmentBases() ([]uint64, error) {
	segs := p.Metadata.Segments()
	sort.Slice(segs, func(i, j int) bool { return segs[i].Index < segs[j].Index })

	bases := make([]uint64, 0, len(segs))
	next := uint64(FirstSegmentBase)
	for i, s := range segs {
		if s.Index != uint64(i) {
			return nil, errors.Wrapf(ErrUnknownSegment, "segment indices are not contiguous at %d (found %d)", i, s.Index)
		}
		bases = append(bases, next)
		next += s.Size
		if next < s.Size {
			return nil, errors.Wrapf(ErrMalformedMemory, "segment %d size overflows", s.Index)
		}
	}
	return bases, nil
}

// Relocate resolves the segment-relative memory into absolute addresses.
// Pointer values become the felt of their relocated address.
func (p *Pie) Relocate() (*Memory, error) {
	bases, err := p.SegmentBases()
	if err != nil {
		return nil, err
	}
	sizes := make([]uint64, len(bases))
	for _, s := range p.Metadata.Segments() {
		sizes[s.Index] = s.Size
	}

	resolve := func(r Relocatable) (uint64, error) {
		if r.Segment >= uint64(len(bases)) {
			return 0, errors.Wrapf(ErrUnknownSegment, "%s", r)
		}
		return bases[r.Segment] + r.Offset, nil
	}

	mem := NewMemory()
	for _, cell := range p.Memory {
		if cell.Address.Segment < uint64(len(sizes)) && cell.Address.Offset >= sizes[cell.Address.Segment] {
			return nil, errors.Wrapf(ErrMalformedMemory, "address %s is past the end of its segment (size %d)",
				cell.Address, sizes[cell.Address.Segment])
		}
		addr, err := resolve(cell.Address)
		if err != nil {
			return nil, err
		}
		value := cell.Value.Felt
		if cell.Value.IsRelocatable {
			ptr, err := resolve(cell.Value.Pointer)
			if err != nil {
				return nil, err
			}
			value = core.NewFelt(ptr)
		}
		if mem.Has(addr) {
			return nil, errors.Wrapf(ErrMalformedMemory, "address %s defined twice", cell.Address)
		}
		mem.Set(addr, value)
	}
	return mem, nil
}
