package artifact

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

// ErrMalformedMemory is returned for memory images that do not follow the
// record layout.
var ErrMalformedMemory = errors.New("malformed memory image")

const (
	// MemoryRecordSize is the size of one memory.bin record: an 8-byte
	// address followed by a 32-byte value.
	MemoryRecordSize = 8 + core.FeltBytes

	addressBit     = uint64(1) << 63
	offsetBits     = 47
	offsetMask     = uint64(1)<<offsetBits - 1
	maxSegment     = uint64(1)<<(63-offsetBits) - 1
	relocatableBit = 0x80
)

// Relocatable is an address inside a segment, before relocation.
type Relocatable struct {
	Segment uint64
	Offset  uint64
}

func (r Relocatable) String() string {
	return fmt.Sprintf("%d:%d", r.Segment, r.Offset)
}

// MaybeRelocatable is a memory value: a felt or a pointer into a segment.
type MaybeRelocatable struct {
	Felt          core.Felt
	Pointer       Relocatable
	IsRelocatable bool
}

// FeltValue wraps a felt.
func FeltValue(f core.Felt) MaybeRelocatable {
	return MaybeRelocatable{Felt: f}
}

// PointerValue wraps a pointer.
func PointerValue(segment, offset uint64) MaybeRelocatable {
	return MaybeRelocatable{Pointer: Relocatable{Segment: segment, Offset: offset}, IsRelocatable: true}
}

// PieMemoryCell is one record of a PIE memory image.
type PieMemoryCell struct {
	Address Relocatable
	Value   MaybeRelocatable
}

// PieMemory is the segment-relative memory image stored in a PIE.
type PieMemory []PieMemoryCell

// DecodePieMemory parses memory.bin. Any malformed record fails the whole
// image.
func DecodePieMemory(b []byte) (PieMemory, error) {
	if len(b)%MemoryRecordSize != 0 {
		return nil, errors.Wrapf(ErrMalformedMemory, "length %d is not a multiple of %d", len(b), MemoryRecordSize)
	}
	mem := make(PieMemory, 0, len(b)/MemoryRecordSize)
	for off := 0; off < len(b); off += MemoryRecordSize {
		rec := b[off : off+MemoryRecordSize]
		addr := binary.LittleEndian.Uint64(rec[:8])
		if addr&addressBit == 0 {
			return nil, errors.Wrapf(ErrMalformedMemory, "record %d: address 0x%x lacks the address bit", off/MemoryRecordSize, addr)
		}
		cell := PieMemoryCell{Address: splitRelocatable(addr &^ addressBit)}

		value := rec[8:]
		if value[core.FeltBytes-1]&relocatableBit != 0 {
			if !relocatablePadding(value) {
				return nil, errors.Wrapf(ErrMalformedMemory, "record %d: relocatable value has stray bytes", off/MemoryRecordSize)
			}
			cell.Value = MaybeRelocatable{
				Pointer:       splitRelocatable(binary.LittleEndian.Uint64(value[:8])),
				IsRelocatable: true,
			}
		} else {
			f, err := core.FeltFromLE(value)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedMemory, "record %d: %v", off/MemoryRecordSize, err)
			}
			cell.Value = FeltValue(f)
		}
		mem = append(mem, cell)
	}
	return mem, nil
}

// EncodePieMemory serializes m in the memory.bin layout.
func EncodePieMemory(m PieMemory) ([]byte, error) {
	out := make([]byte, 0, len(m)*MemoryRecordSize)
	var rec [MemoryRecordSize]byte
	for i, cell := range m {
		addr, err := joinRelocatable(cell.Address)
		if err != nil {
			return nil, errors.Wrapf(err, "cell %d address", i)
		}
		binary.LittleEndian.PutUint64(rec[:8], addr|addressBit)

		value := rec[8:]
		if cell.Value.IsRelocatable {
			ptr, err := joinRelocatable(cell.Value.Pointer)
			if err != nil {
				return nil, errors.Wrapf(err, "cell %d value", i)
			}
			clear(value)
			binary.LittleEndian.PutUint64(value[:8], ptr)
			value[core.FeltBytes-1] |= relocatableBit
		} else {
			le := core.FeltToLE(&cell.Value.Felt)
			copy(value, le[:])
		}
		out = append(out, rec[:]...)
	}
	return out, nil
}

// relocatablePadding reports whether only the pointer word and the marker bit
// are set in a relocatable value.
func relocatablePadding(value []byte) bool {
	if value[core.FeltBytes-1] != relocatableBit {
		return false
	}
	for _, b := range value[8 : core.FeltBytes-1] {
		if b != 0 {
			return false
		}
	}
	return true
}

func splitRelocatable(v uint64) Relocatable {
	return Relocatable{Segment: (v &^ addressBit) >> offsetBits, Offset: v & offsetMask}
}

func joinRelocatable(r Relocatable) (uint64, error) {
	if r.Segment > maxSegment || r.Offset > offsetMask {
		return 0, errors.Wrapf(ErrMalformedMemory, "relocatable %s out of range", r)
	}
	return r.Segment<<offsetBits | r.Offset, nil
}
