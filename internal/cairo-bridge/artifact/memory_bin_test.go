package artifact

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

func TestPieMemoryLayout(t *testing.T) {
	mem := PieMemory{
		{Address: Relocatable{Segment: 2, Offset: 5}, Value: felt(0x0102)},
		{Address: Relocatable{Segment: 0, Offset: 1}, Value: PointerValue(3, 4)},
	}
	data, err := EncodePieMemory(mem)
	require.NoError(t, err)
	require.Len(t, data, 2*MemoryRecordSize)

	addr := binary.LittleEndian.Uint64(data[:8])
	require.Equal(t, uint64(1)<<63|2<<47|5, addr)
	require.Equal(t, byte(0x02), data[8])
	require.Equal(t, byte(0x01), data[9])
	require.Zero(t, data[39]&0x80)

	rec := data[MemoryRecordSize:]
	require.Equal(t, uint64(3)<<47|4, binary.LittleEndian.Uint64(rec[8:16]))
	require.Equal(t, byte(0x80), rec[39])

	back, err := DecodePieMemory(data)
	require.NoError(t, err)
	require.Equal(t, mem, back)
}

func TestDecodePieMemoryRejects(t *testing.T) {
	good, err := EncodePieMemory(PieMemory{{Address: Relocatable{0, 0}, Value: felt(1)}})
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		_, err := DecodePieMemory(good[:MemoryRecordSize-1])
		require.ErrorIs(t, err, ErrMalformedMemory)
	})

	t.Run("missing address bit", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[7] &^= 0x80
		_, err := DecodePieMemory(bad)
		require.ErrorIs(t, err, ErrMalformedMemory)
	})

	t.Run("felt not reduced", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		p := core.Modulus()
		le := make([]byte, core.FeltBytes)
		for i, b := range p.Bytes() {
			le[len(p.Bytes())-1-i] = b
		}
		copy(bad[8:], le)
		_, err := DecodePieMemory(bad)
		require.ErrorIs(t, err, ErrMalformedMemory)
	})

	pointer, err := EncodePieMemory(PieMemory{{Address: Relocatable{0, 0}, Value: PointerValue(1, 2)}})
	require.NoError(t, err)

	t.Run("relocatable with stray bytes", func(t *testing.T) {
		for _, i := range []int{8 + 8, 8 + 20, 8 + 30} {
			bad := append([]byte(nil), pointer...)
			bad[i] = 0x01
			_, err := DecodePieMemory(bad)
			require.ErrorIs(t, err, ErrMalformedMemory, "byte %d", i)
		}
	})

	t.Run("relocatable with extra high bits", func(t *testing.T) {
		bad := append([]byte(nil), pointer...)
		bad[MemoryRecordSize-1] |= 0x01
		_, err := DecodePieMemory(bad)
		require.ErrorIs(t, err, ErrMalformedMemory)
	})

	empty, err := DecodePieMemory(nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestEncodePieMemoryRange(t *testing.T) {
	_, err := EncodePieMemory(PieMemory{{Address: Relocatable{Segment: 1 << 16}, Value: felt(1)}})
	require.ErrorIs(t, err, ErrMalformedMemory)

	_, err = EncodePieMemory(PieMemory{{Address: Relocatable{Offset: 1 << 47}, Value: felt(1)}})
	require.ErrorIs(t, err, ErrMalformedMemory)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	m.Set(7, core.NewFelt(70))
	m.Set(2, core.NewFelt(20))
	m.Set(4, core.NewFelt(0))

	require.Equal(t, 3, m.Len())
	v, ok := m.Get(4)
	require.True(t, ok)
	require.True(t, v.IsZero())
	_, ok = m.Get(3)
	require.False(t, ok)

	var addrs []uint64
	m.Ascend(func(addr uint64, _ core.Felt) bool {
		addrs = append(addrs, addr)
		return addr < 4
	})
	require.Equal(t, []uint64{2, 4}, addrs)

	m.Set(2, core.NewFelt(21))
	require.Equal(t, 3, m.Len())
	cells := m.Cells()
	require.Equal(t, uint64(2), cells[0].Address)
	want := core.NewFelt(21)
	require.True(t, cells[0].Value.Equal(&want))

	top, ok := m.MaxAddress()
	require.True(t, ok)
	require.Equal(t, uint64(7), top)
	_, ok = NewMemory().MaxAddress()
	require.False(t, ok)
}
