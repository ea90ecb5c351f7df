package program

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
)

// ErrEntryPointNotFound is returned when an executable has no entrypoint of
// the requested kind.
var ErrEntryPointNotFound = errors.New("entrypoint not found")

// EntryPointKind selects the calling convention of an entrypoint.
type EntryPointKind uint8

const (
	// Bootloader entrypoints are functions ending with ret that take the
	// builtins as parameters.
	Bootloader EntryPointKind = iota
	// Standalone entrypoints start with ap += len(builtins), expect the
	// builtin bases injected there, and end with an infinite loop.
	Standalone
)

func (k EntryPointKind) String() string {
	switch k {
	case Bootloader:
		return "Bootloader"
	case Standalone:
		return "Standalone"
	default:
		return fmt.Sprintf("EntryPointKind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EntryPointKind) MarshalText() ([]byte, error) {
	if k != Bootloader && k != Standalone {
		return nil, errors.Errorf("invalid entrypoint kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EntryPointKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Bootloader":
		*k = Bootloader
	case "Standalone":
		*k = Standalone
	default:
		return errors.Errorf("unknown entrypoint kind %q", string(text))
	}
	return nil
}

// Builtin names a builtin a function uses.
type Builtin string

const (
	BuiltinOutput       Builtin = "output"
	BuiltinPedersen     Builtin = "pedersen"
	BuiltinRangeCheck   Builtin = "range_check"
	BuiltinECDSA        Builtin = "ecdsa"
	BuiltinBitwise      Builtin = "bitwise"
	BuiltinECOp         Builtin = "ec_op"
	BuiltinKeccak       Builtin = "keccak"
	BuiltinPoseidon     Builtin = "poseidon"
	BuiltinRangeCheck96 Builtin = "range_check96"
	BuiltinAddMod       Builtin = "add_mod"
	BuiltinMulMod       Builtin = "mul_mod"
	BuiltinSegmentArena Builtin = "segment_arena"
	BuiltinGas          Builtin = "gas_builtin"
	BuiltinSystem       Builtin = "system"
)

var knownBuiltins = map[Builtin]bool{
	BuiltinOutput:       true,
	BuiltinPedersen:     true,
	BuiltinRangeCheck:   true,
	BuiltinECDSA:        true,
	BuiltinBitwise:      true,
	BuiltinECOp:         true,
	BuiltinKeccak:       true,
	BuiltinPoseidon:     true,
	BuiltinRangeCheck96: true,
	BuiltinAddMod:       true,
	BuiltinMulMod:       true,
	BuiltinSegmentArena: true,
	BuiltinGas:          true,
	BuiltinSystem:       true,
}

// Valid reports whether b is a known builtin.
func (b Builtin) Valid() bool {
	return knownBuiltins[b]
}

// ExecutableEntryPoint is one way to start the program.
type ExecutableEntryPoint struct {
	Builtins []Builtin      `json:"builtins"`
	Offset   int            `json:"offset"`
	Kind     EntryPointKind `json:"kind"`
}

// Convention describes what an executor must do around an entrypoint.
type Convention struct {
	// BuiltinsInjected means the builtin bases are written at [ap + i]
	// before the first instruction.
	BuiltinsInjected bool
	// EndsWithReturn means the run finishes on the entrypoint's ret.
	EndsWithReturn bool
	// EndsWithLoop means the run finishes on the jmp rel 0 loop.
	EndsWithLoop bool
}

// Convention returns the calling convention of the entrypoint.
func (ep *ExecutableEntryPoint) Convention() Convention {
	if ep.Kind == Standalone {
		return Convention{BuiltinsInjected: true, EndsWithLoop: true}
	}
	return Convention{EndsWithReturn: true}
}

// BuiltinCells returns the cells a standalone entrypoint expects its builtin
// bases in. Bootloader entrypoints receive builtins as parameters and return nil.
func (ep *ExecutableEntryPoint) BuiltinCells() []hints.CellRef {
	if ep.Kind != Standalone {
		return nil
	}
	cells := make([]hints.CellRef, len(ep.Builtins))
	for i := range ep.Builtins {
		cells[i] = hints.APCell(int16(i))
	}
	return cells
}

// Executable is a program together with its entrypoints.
type Executable struct {
	Program     AssembledCairoProgram  `json:"program"`
	EntryPoints []ExecutableEntryPoint `json:"entrypoints"`
}

// EntryPoint returns the first entrypoint of the given kind.
func (e *Executable) EntryPoint(kind EntryPointKind) (*ExecutableEntryPoint, error) {
	for i := range e.EntryPoints {
		if e.EntryPoints[i].Kind == kind {
			return &e.EntryPoints[i], nil
		}
	}
	return nil, errors.Wrapf(ErrEntryPointNotFound, "kind %s", kind)
}

// Validate checks the program and that entrypoints start on instruction
// boundaries with known builtins.
func (e *Executable) Validate() error {
	if err := Validate(&e.Program); err != nil {
		return err
	}
	boundaries := e.Program.Boundaries()
	onBoundary := make(map[int]bool, len(boundaries))
	for _, off := range boundaries {
		onBoundary[off] = true
	}
	for i, ep := range e.EntryPoints {
		if !onBoundary[ep.Offset] {
			return errors.Wrapf(ErrInvalidProgram, "entrypoint %d offset %d is not an instruction boundary", i, ep.Offset)
		}
		for _, b := range ep.Builtins {
			if !b.Valid() {
				return errors.Wrapf(ErrInvalidProgram, "entrypoint %d: unknown builtin %q", i, b)
			}
		}
	}
	return nil
}

// ParseExecutable decodes an executable JSON document and validates it.
func ParseExecutable(data []byte) (*Executable, error) {
	var e Executable
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		return nil, errors.Wrap(err, "decode executable")
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// IsTerminalLoop reports whether pc points at jmp rel 0, the loop a
// standalone run ends in successfully.
func IsTerminalLoop(p *AssembledCairoProgram, pc int) bool {
	word, ok := p.Word(pc)
	if !ok || word.Cmp(JumpRelZero.Encode()) != 0 {
		return false
	}
	imm, ok := p.Word(pc + 1)
	return ok && imm.Sign() == 0
}

// IsTerminalLoopWords is IsTerminalLoop over raw memory words.
func IsTerminalLoopWords(word, imm *big.Int) bool {
	return word != nil && imm != nil && word.Cmp(JumpRelZero.Encode()) == 0 && imm.Sign() == 0
}
