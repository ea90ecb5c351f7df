package artifact

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

func sampleExecution() *Execution {
	mem := NewMemory()
	mem.Set(1, core.NewFelt(5))
	mem.Set(3, core.NewFelt(7))
	return &Execution{
		Memory: mem,
		Trace:  []TraceEntry{{AP: 10, FP: 10, PC: 1}, {AP: 11, FP: 10, PC: 3}},
		PublicInput: PublicInput{
			Layout:         "all_cairo",
			NSteps:         2,
			MemorySegments: map[string]SegmentRange{"program": {BeginAddr: 1, StopPtr: 4}},
			PublicMemory:   []PublicMemoryEntry{{Address: 1, Value: core.NewFelt(5)}},
		},
	}
}

func TestRelocatedTrace(t *testing.T) {
	trace := sampleExecution().Trace
	var buf bytes.Buffer
	require.NoError(t, WriteRelocatedTrace(&buf, trace))
	require.Equal(t, 2*TraceRecordSize, buf.Len())
	require.Equal(t, byte(10), buf.Bytes()[0])
	require.Equal(t, byte(3), buf.Bytes()[TraceRecordSize+16])

	back, err := ReadRelocatedTrace(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, trace, back)

	_, err = ReadRelocatedTrace(bytes.NewReader(buf.Bytes()[:30]))
	require.ErrorIs(t, err, ErrMalformedTrace)
	require.NotErrorIs(t, err, ErrMalformedMemory)
	require.Contains(t, err.Error(), "trace length 30")
}

func TestRelocatedMemory(t *testing.T) {
	mem := sampleExecution().Memory
	var buf bytes.Buffer
	require.NoError(t, WriteRelocatedMemory(&buf, mem))
	require.Equal(t, 2*MemoryRecordSize, buf.Len())

	back, err := ReadRelocatedMemory(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, mem.Cells(), back.Cells())

	dup := append(append([]byte(nil), buf.Bytes()[:MemoryRecordSize]...), buf.Bytes()[:MemoryRecordSize]...)
	_, err = ReadRelocatedMemory(bytes.NewReader(dup))
	require.ErrorIs(t, err, ErrMalformedMemory)

	_, err = ReadRelocatedMemory(bytes.NewReader(buf.Bytes()[:MemoryRecordSize+1]))
	require.ErrorIs(t, err, ErrMalformedMemory)
}

func TestReadPublicInput(t *testing.T) {
	doc := `{
		"layout": "all_cairo",
		"rc_min": 32763,
		"rc_max": 32769,
		"n_steps": 128,
		"memory_segments": {
			"program": {"begin_addr": 1, "stop_ptr": 5},
			"execution": {"begin_addr": 5, "stop_ptr": 12}
		},
		"public_memory": [
			{"address": 1, "value": "0x480680017fff8000", "page": 0},
			{"address": 2, "value": "0x1", "page": 0}
		],
		"dynamic_params": null
	}`
	pi, err := ReadPublicInput(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "all_cairo", pi.Layout)
	require.Equal(t, SegmentRange{BeginAddr: 5, StopPtr: 12}, pi.MemorySegments["execution"])
	require.Len(t, pi.PublicMemory, 2)
	require.Equal(t, "0x480680017fff8000", core.FeltHex(&pi.PublicMemory[0].Value))

	_, err = ReadPublicInput(strings.NewReader(`{"public_memory":[{"address":1,"value":"zz","page":0}]}`))
	require.ErrorIs(t, err, ErrMalformedArchive)
}

func TestLoadExecution(t *testing.T) {
	dir := t.TempDir()
	exec := sampleExecution()
	require.NoError(t, exec.Save(dir))

	back, err := LoadExecution(dir)
	require.NoError(t, err)
	require.Equal(t, exec.Trace, back.Trace)
	require.Equal(t, exec.Memory.Cells(), back.Memory.Cells())
	require.Equal(t, exec.PublicInput.MemorySegments, back.PublicInput.MemorySegments)
	require.Len(t, back.PublicInput.PublicMemory, 1)

	t.Run("missing trace", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(dir, TraceFile)))
		back, err := LoadExecution(dir)
		require.NoError(t, err)
		require.Nil(t, back.Trace)
	})

	t.Run("save without trace drops the old one", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, sampleExecution().Save(dir))
		require.FileExists(t, filepath.Join(dir, TraceFile))

		untraced := sampleExecution()
		untraced.Trace = nil
		require.NoError(t, untraced.Save(dir))
		require.NoFileExists(t, filepath.Join(dir, TraceFile))

		back, err := LoadExecution(dir)
		require.NoError(t, err)
		require.Nil(t, back.Trace)
	})

	t.Run("missing memory", func(t *testing.T) {
		_, err := LoadExecution(t.TempDir())
		require.Error(t, err)
	})
}
