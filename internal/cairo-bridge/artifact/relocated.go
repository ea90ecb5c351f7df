package artifact

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

// Files a relocated run leaves in its output directory.
const (
	TraceFile       = "trace.bin"
	MemoryFile      = "memory.bin"
	PublicInputFile = "air_public_input.json"
)

// TraceRecordSize is the size of one trace.bin record: ap, fp, pc as u64.
const TraceRecordSize = 24

// ErrMalformedTrace is returned for trace images that do not follow the
// record layout.
var ErrMalformedTrace = errors.New("malformed trace image")

// TraceEntry is the register state of one executed step.
type TraceEntry struct {
	AP uint64 `json:"ap"`
	FP uint64 `json:"fp"`
	PC uint64 `json:"pc"`
}

// SegmentRange is the relocated extent of a named segment: [BeginAddr, StopPtr).
type SegmentRange struct {
	BeginAddr uint64 `json:"begin_addr"`
	StopPtr   uint64 `json:"stop_ptr"`
}

// PublicMemoryEntry is a memory cell exposed to the verifier.
type PublicMemoryEntry struct {
	Address uint64
	Value   core.Felt
	Page    uint64
}

type publicMemoryJSON struct {
	Address uint64 `json:"address"`
	Value   string `json:"value"`
	Page    uint64 `json:"page"`
}

// MarshalJSON encodes the value as hex.
func (e PublicMemoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicMemoryJSON{Address: e.Address, Value: core.FeltHex(&e.Value), Page: e.Page})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *PublicMemoryEntry) UnmarshalJSON(data []byte) error {
	var raw publicMemoryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := core.FeltFromHex(raw.Value)
	if err != nil {
		return err
	}
	*e = PublicMemoryEntry{Address: raw.Address, Value: v, Page: raw.Page}
	return nil
}

// PublicInput is the public part of a run.
type PublicInput struct {
	Layout         string                  `json:"layout"`
	RcMin          uint64                  `json:"rc_min"`
	RcMax          uint64                  `json:"rc_max"`
	NSteps         uint64                  `json:"n_steps"`
	MemorySegments map[string]SegmentRange `json:"memory_segments"`
	PublicMemory   []PublicMemoryEntry     `json:"public_memory"`
	DynamicParams  json.RawMessage         `json:"dynamic_params,omitempty"`
}

// Execution is a finished, relocated run. A nil Trace means the run was not
// relocated.
type Execution struct {
	Memory      *Memory
	Trace       []TraceEntry
	PublicInput PublicInput
}

// ReadRelocatedTrace parses trace.bin.
func ReadRelocatedTrace(r io.Reader) ([]TraceEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read trace")
	}
	if len(data)%TraceRecordSize != 0 {
		return nil, errors.Wrapf(ErrMalformedTrace, "trace length %d is not a multiple of %d", len(data), TraceRecordSize)
	}
	trace := make([]TraceEntry, 0, len(data)/TraceRecordSize)
	for off := 0; off < len(data); off += TraceRecordSize {
		trace = append(trace, TraceEntry{
			AP: binary.LittleEndian.Uint64(data[off:]),
			FP: binary.LittleEndian.Uint64(data[off+8:]),
			PC: binary.LittleEndian.Uint64(data[off+16:]),
		})
	}
	return trace, nil
}

// WriteRelocatedTrace writes trace in the trace.bin layout.
func WriteRelocatedTrace(w io.Writer, trace []TraceEntry) error {
	bw := bufio.NewWriter(w)
	var rec [TraceRecordSize]byte
	for _, e := range trace {
		binary.LittleEndian.PutUint64(rec[0:], e.AP)
		binary.LittleEndian.PutUint64(rec[8:], e.FP)
		binary.LittleEndian.PutUint64(rec[16:], e.PC)
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadRelocatedMemory parses a relocated memory.bin: u64 address followed by
// a canonical little-endian felt. An address defined twice is an error.
func ReadRelocatedMemory(r io.Reader) (*Memory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read memory")
	}
	if len(data)%MemoryRecordSize != 0 {
		return nil, errors.Wrapf(ErrMalformedMemory, "length %d is not a multiple of %d", len(data), MemoryRecordSize)
	}
	mem := NewMemory()
	for off := 0; off < len(data); off += MemoryRecordSize {
		addr := binary.LittleEndian.Uint64(data[off:])
		v, err := core.FeltFromLE(data[off+8 : off+MemoryRecordSize])
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedMemory, "address %d: %v", addr, err)
		}
		if mem.Has(addr) {
			return nil, errors.Wrapf(ErrMalformedMemory, "address %d defined twice", addr)
		}
		mem.Set(addr, v)
	}
	return mem, nil
}

// WriteRelocatedMemory writes m in the relocated memory.bin layout.
func WriteRelocatedMemory(w io.Writer, m *Memory) error {
	bw := bufio.NewWriter(w)
	var rec [MemoryRecordSize]byte
	var err error
	m.Ascend(func(addr uint64, v core.Felt) bool {
		binary.LittleEndian.PutUint64(rec[:8], addr)
		le := core.FeltToLE(&v)
		copy(rec[8:], le[:])
		_, err = bw.Write(rec[:])
		return err == nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// ReadPublicInput parses air_public_input.json.
func ReadPublicInput(r io.Reader) (*PublicInput, error) {
	var pi PublicInput
	if err := json.NewDecoder(r).Decode(&pi); err != nil {
		return nil, errors.Wrapf(ErrMalformedArchive, "%s: %v", PublicInputFile, err)
	}
	return &pi, nil
}

// LoadExecution reads a relocated run from dir. A missing trace.bin yields an
// Execution with a nil Trace.
func LoadExecution(dir string, opts ...Option) (*Execution, error) {
	o := buildOptions(opts)
	exec := &Execution{}

	f, err := os.Open(filepath.Join(dir, MemoryFile))
	if err != nil {
		return nil, errors.Wrap(err, "open memory")
	}
	exec.Memory, err = ReadRelocatedMemory(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	f, err = os.Open(filepath.Join(dir, PublicInputFile))
	if err != nil {
		return nil, errors.Wrap(err, "open public input")
	}
	pi, err := ReadPublicInput(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	exec.PublicInput = *pi

	f, err = os.Open(filepath.Join(dir, TraceFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
		o.logger.Debug("no relocated trace", zap.String("dir", dir))
	case err != nil:
		return nil, errors.Wrap(err, "open trace")
	default:
		exec.Trace, err = ReadRelocatedTrace(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}

	o.logger.Debug("loaded execution",
		zap.String("dir", dir),
		zap.Int("memory_cells", exec.Memory.Len()),
		zap.Int("trace_steps", len(exec.Trace)),
		zap.Int("public_memory", len(exec.PublicInput.PublicMemory)),
	)
	return exec, nil
}

// Save writes the execution to dir in the layout LoadExecution reads. Each
// file is replaced atomically. A nil Trace removes any trace.bin left in dir,
// so the directory never pairs a trace with another run's memory.
func (e *Execution) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	write := func(name string, fn func(io.Writer) error) error {
		f, err := renameio.NewPendingFile(filepath.Join(dir, name))
		if err != nil {
			return errors.Wrapf(err, "create %s", name)
		}
		defer f.Cleanup()
		if err := fn(f); err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
		return errors.Wrapf(f.CloseAtomicallyReplace(), "replace %s", name)
	}

	if err := write(MemoryFile, func(w io.Writer) error { return WriteRelocatedMemory(w, e.Memory) }); err != nil {
		return err
	}
	if err := write(PublicInputFile, func(w io.Writer) error { return json.NewEncoder(w).Encode(e.PublicInput) }); err != nil {
		return err
	}
	if e.Trace == nil {
		if err := os.Remove(filepath.Join(dir, TraceFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrap(err, "remove stale trace")
		}
		return nil
	}
	return write(TraceFile, func(w io.Writer) error { return WriteRelocatedTrace(w, e.Trace) })
}
