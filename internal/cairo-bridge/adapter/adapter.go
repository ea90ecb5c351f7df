// Package adapter converts a finished, relocated execution into the witness
// the prover consumes.
package adapter

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/artifact"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

var (
	// ErrTraceNotRelocated is returned for executions without a relocated trace.
	ErrTraceNotRelocated = errors.New("trace not relocated")

	// ErrMalformedSegment is returned for a segment whose stop precedes its begin.
	ErrMalformedSegment = errors.New("malformed memory segment")

	// ErrAddressOverflow is returned for a public memory address that does not
	// fit the witness address width.
	ErrAddressOverflow = errors.New("public memory address overflow")
)

// Option configures Adapt.
type Option func(*config)

type config struct {
	logger           *zap.Logger
	maxPublicAddress uint64
}

// WithLogger sets the logger for the adapter summary.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxPublicAddress lowers the highest public memory address accepted.
// Values above 2^32-1 are ignored.
func WithMaxPublicAddress(limit uint64) Option {
	return func(c *config) {
		if limit < c.maxPublicAddress {
			c.maxPublicAddress = limit
		}
	}
}

// Adapt builds the witness for exec. The memory image becomes one entry per
// defined address in increasing order, the trace is copied as is, segments
// become begin/stop ranges and public memory is reduced to its addresses.
// exec is not modified.
func Adapt(exec *artifact.Execution, opts ...Option) (*Witness, error) {
	cfg := &config{logger: zap.NewNop(), maxPublicAddress: math.MaxUint32}
	for _, opt := range opts {
		opt(cfg)
	}

	if exec == nil || exec.Trace == nil {
		return nil, ErrTraceNotRelocated
	}

	w := &Witness{}
	if exec.Memory != nil {
		w.Memory = make([]MemoryEntry, 0, exec.Memory.Len())
		exec.Memory.Ascend(func(addr uint64, v core.Felt) bool {
			w.Memory = append(w.Memory, MemoryEntry{Address: addr, Value: core.ToLimbs(&v)})
			return true
		})
	}

	w.Trace = make([]TraceEntry, len(exec.Trace))
	copy(w.Trace, exec.Trace)

	w.MemorySegments = make(map[string]SegmentAddresses, len(exec.PublicInput.MemorySegments))
	for name, seg := range exec.PublicInput.MemorySegments {
		if seg.StopPtr < seg.BeginAddr {
			return nil, errors.Wrapf(ErrMalformedSegment, "%s: stop %d < begin %d", name, seg.StopPtr, seg.BeginAddr)
		}
		w.MemorySegments[name] = SegmentAddresses{BeginAddr: seg.BeginAddr, StopPtr: seg.StopPtr}
	}

	w.PublicMemoryAddresses = make([]uint32, 0, len(exec.PublicInput.PublicMemory))
	for i, entry := range exec.PublicInput.PublicMemory {
		if entry.Address > cfg.maxPublicAddress {
			return nil, errors.Wrapf(ErrAddressOverflow, "public memory entry %d: address %d exceeds %d", i, entry.Address, cfg.maxPublicAddress)
		}
		w.PublicMemoryAddresses = append(w.PublicMemoryAddresses, uint32(entry.Address))
	}

	cfg.logger.Debug("adapted execution",
		zap.Int("memory_entries", len(w.Memory)),
		zap.Int("trace_steps", len(w.Trace)),
		zap.Int("segments", len(w.MemorySegments)),
		zap.Int("public_addresses", len(w.PublicMemoryAddresses)),
	)
	return w, nil
}
