package artifact

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
)

func felt(v uint64) MaybeRelocatable {
	return FeltValue(core.NewFelt(v))
}

func samplePie() *Pie {
	return &Pie{
		Version: Version{CairoPie: "1.1"},
		Metadata: Metadata{
			Program: StrippedProgram{
				Data:     []hints.BigIntAsHex{hints.NewBigInt(5), hints.NewBigInt(7)},
				Builtins: []string{"output"},
				Prime:    "0x" + core.Modulus().Text(16),
			},
			ProgramSegment:   SegmentInfo{Index: 0, Size: 3},
			ExecutionSegment: SegmentInfo{Index: 1, Size: 2},
			RetFpSegment:     SegmentInfo{Index: 2},
			RetPcSegment:     SegmentInfo{Index: 3},
			BuiltinSegments:  map[string]SegmentInfo{"output": {Index: 4, Size: 1}},
		},
		Memory: PieMemory{
			{Address: Relocatable{0, 0}, Value: felt(5)},
			{Address: Relocatable{0, 1}, Value: felt(7)},
			{Address: Relocatable{0, 2}, Value: PointerValue(1, 0)},
			{Address: Relocatable{1, 0}, Value: PointerValue(4, 0)},
			{Address: Relocatable{1, 1}, Value: felt(9)},
			{Address: Relocatable{4, 0}, Value: felt(42)},
		},
		ExecutionResources: ExecutionResources{
			NSteps:                 2,
			BuiltinInstanceCounter: map[string]uint64{"output_builtin": 1},
		},
		AdditionalData: AdditionalData{"output_builtin": json.RawMessage(`{"pages":{},"attributes":{}}`)},
	}
}

func writeSample(t *testing.T, p *Pie, zstdMembers ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WritePie(&buf, p, zstdMembers...))
	return buf.Bytes()
}

// rezip copies an archive, dropping or replacing members.
func rezip(t *testing.T, data []byte, drop string, replace map[string][]byte) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if f.Name == drop {
			continue
		}
		w, err := zw.Create(f.Name)
		require.NoError(t, err)
		if body, ok := replace[f.Name]; ok {
			_, err = w.Write(body)
			require.NoError(t, err)
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		var body bytes.Buffer
		_, err = body.ReadFrom(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		_, err = w.Write(body.Bytes())
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readBytes(data []byte) (*Pie, error) {
	return ReadPie(bytes.NewReader(data), int64(len(data)))
}

func TestReadPie(t *testing.T) {
	want := samplePie()
	pie, err := readBytes(writeSample(t, want))
	require.NoError(t, err)

	require.Equal(t, "1.1", pie.Version.CairoPie)
	require.Equal(t, want.Memory, pie.Memory)
	require.Equal(t, want.Metadata.BuiltinSegments, pie.Metadata.BuiltinSegments)
	require.Equal(t, uint64(2), pie.ExecutionResources.NSteps)
	require.JSONEq(t, `{"pages":{},"attributes":{}}`, string(pie.AdditionalData["output_builtin"]))
	require.Len(t, pie.Metadata.Program.Data, 2)
}

func TestReadPieZstdMembers(t *testing.T) {
	data := writeSample(t, samplePie(), MemberMemory, MemberMetadata)
	pie, err := readBytes(data)
	require.NoError(t, err)
	require.Len(t, pie.Memory, 6)
}

func TestReadPieMissingVersion(t *testing.T) {
	data := rezip(t, writeSample(t, samplePie()), MemberVersion, nil)
	pie, err := readBytes(data)
	require.NoError(t, err)
	require.Equal(t, LegacyVersion, pie.Version.CairoPie)
}

func TestReadPieMissingMembers(t *testing.T) {
	for _, member := range []string{MemberMetadata, MemberMemory, MemberExecutionResources, MemberAdditionalData} {
		t.Run(member, func(t *testing.T) {
			data := rezip(t, writeSample(t, samplePie()), member, nil)
			_, err := readBytes(data)
			var missing *MissingMemberError
			require.ErrorAs(t, err, &missing)
			require.Equal(t, member, missing.Member)
			require.Contains(t, err.Error(), member)
		})
	}
}

func TestReadPieMalformed(t *testing.T) {
	base := writeSample(t, samplePie())

	t.Run("truncated memory", func(t *testing.T) {
		mem, err := EncodePieMemory(samplePie().Memory)
		require.NoError(t, err)
		data := rezip(t, base, "", map[string][]byte{MemberMemory: mem[:len(mem)-3]})
		_, err = readBytes(data)
		require.ErrorIs(t, err, ErrMalformedMemory)
	})

	t.Run("bad metadata json", func(t *testing.T) {
		data := rezip(t, base, "", map[string][]byte{MemberMetadata: []byte(`{"program":`)})
		_, err := readBytes(data)
		require.ErrorIs(t, err, ErrMalformedArchive)
		require.Contains(t, err.Error(), MemberMetadata)
	})

	t.Run("wrong prime", func(t *testing.T) {
		md := samplePie().Metadata
		md.Program.Prime = "0x11"
		raw, err := json.Marshal(md)
		require.NoError(t, err)
		data := rezip(t, base, "", map[string][]byte{MemberMetadata: raw})
		_, err = readBytes(data)
		require.ErrorIs(t, err, ErrMalformedArchive)
	})

	t.Run("not a zip", func(t *testing.T) {
		_, err := readBytes([]byte("not a zip"))
		require.ErrorIs(t, err, ErrMalformedArchive)
	})
}

func TestRelocate(t *testing.T) {
	pie := samplePie()
	bases, err := pie.SegmentBases()
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 4, 6, 6, 6}, bases)

	mem, err := pie.Relocate()
	require.NoError(t, err)
	want := map[uint64]uint64{1: 5, 2: 7, 3: 4, 4: 6, 5: 9, 6: 42}
	require.Equal(t, len(want), mem.Len())
	for addr, v := range want {
		got, ok := mem.Get(addr)
		require.True(t, ok, addr)
		exp := core.NewFelt(v)
		require.True(t, got.Equal(&exp), addr)
	}

	t.Run("address in missing segment", func(t *testing.T) {
		bad := samplePie()
		bad.Memory = append(bad.Memory, PieMemoryCell{Address: Relocatable{7, 0}, Value: felt(1)})
		_, err := bad.Relocate()
		require.ErrorIs(t, err, ErrUnknownSegment)
	})

	t.Run("address defined twice", func(t *testing.T) {
		bad := samplePie()
		bad.Memory = append(bad.Memory, PieMemoryCell{Address: Relocatable{1, 1}, Value: felt(9)})
		_, err := bad.Relocate()
		require.ErrorIs(t, err, ErrMalformedMemory)
	})

	t.Run("pointer into missing segment", func(t *testing.T) {
		bad := samplePie()
		bad.Memory[3].Value = PointerValue(7, 0)
		_, err := bad.Relocate()
		require.ErrorIs(t, err, ErrUnknownSegment)
	})

	t.Run("gap in indices", func(t *testing.T) {
		bad := samplePie()
		bad.Metadata.ExtraSegments = []SegmentInfo{{Index: 9, Size: 1}}
		_, err := bad.Relocate()
		require.ErrorIs(t, err, ErrUnknownSegment)
	})

	t.Run("offset past segment end", func(t *testing.T) {
		bad := samplePie()
		bad.Memory[5].Address = Relocatable{4, 1}
		_, err := bad.Relocate()
		require.ErrorIs(t, err, ErrMalformedMemory)
	})
}
