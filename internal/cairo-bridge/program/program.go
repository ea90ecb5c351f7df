package program

import (
	"bytes"
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
)

// ErrInvalidProgram is returned when a program violates its structural invariants.
var ErrInvalidProgram = errors.New("invalid program")

// HintsAt lists the hints that run before the instruction at Offset.
type HintsAt struct {
	Offset int
	Hints  []hints.Hint
}

// MarshalJSON encodes the pair as [offset, [hint, ...]].
func (h HintsAt) MarshalJSON() ([]byte, error) {
	wrapped := make([]hints.HintJSON, len(h.Hints))
	for i, hint := range h.Hints {
		wrapped[i] = hints.HintJSON{Hint: hint}
	}
	return json.Marshal([]interface{}{h.Offset, wrapped})
}

// UnmarshalJSON decodes [offset, [hint, ...]].
func (h *HintsAt) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return errors.Wrap(err, "hints entry")
	}
	if len(pair) != 2 {
		return errors.Errorf("hints entry must be [offset, hints], got %d elements", len(pair))
	}
	var offset int
	if err := json.Unmarshal(pair[0], &offset); err != nil {
		return errors.Wrap(err, "hints offset")
	}
	var wrapped []hints.HintJSON
	if err := json.Unmarshal(pair[1], &wrapped); err != nil {
		return errors.Wrapf(err, "hints at offset %d", offset)
	}
	h.Offset = offset
	h.Hints = make([]hints.Hint, len(wrapped))
	for i, w := range wrapped {
		h.Hints[i] = w.Hint
	}
	return nil
}

// AssembledCairoProgram is bytecode plus the hints attached to instruction
// offsets. Hint offsets are strictly increasing, inside the bytecode and on
// instruction boundaries.
type AssembledCairoProgram struct {
	Bytecode []hints.BigIntAsHex `json:"bytecode"`
	Hints    []HintsAt           `json:"hints"`
}

// Word returns the bytecode word at offset as a big integer.
func (p *AssembledCairoProgram) Word(offset int) (*big.Int, bool) {
	if offset < 0 || offset >= len(p.Bytecode) {
		return nil, false
	}
	return p.Bytecode[offset].Int(), true
}

// Boundaries returns the offset of every instruction in the code section.
//
// The code section is decoded linearly from offset 0 and ends at the first
// word that is not an instruction or whose immediate is missing. The words
// after it are data, such as the constants the compiler places after the
// code, and carry no boundaries.
func (p *AssembledCairoProgram) Boundaries() []int {
	offsets, _ := p.sweep()
	return offsets
}

// CodeLen returns the length of the code section in words.
func (p *AssembledCairoProgram) CodeLen() int {
	_, n := p.sweep()
	return n
}

func (p *AssembledCairoProgram) sweep() ([]int, int) {
	var offsets []int
	pc := 0
	for pc < len(p.Bytecode) {
		inst, err := DecodeInstruction(p.Bytecode[pc].Int())
		if err != nil || pc+inst.Size() > len(p.Bytecode) {
			break
		}
		offsets = append(offsets, pc)
		pc += inst.Size()
	}
	return offsets, pc
}

// Validate checks the program invariants. Non-empty bytecode must start with
// an instruction; hints may only sit on code section boundaries.
func Validate(p *AssembledCairoProgram) error {
	if p == nil {
		return errors.Wrap(ErrInvalidProgram, "nil program")
	}
	boundaries := p.Boundaries()
	if len(p.Bytecode) > 0 && len(boundaries) == 0 {
		return errors.Wrap(ErrInvalidProgram, "bytecode does not start with an instruction")
	}
	onBoundary := make(map[int]bool, len(boundaries))
	for _, off := range boundaries {
		onBoundary[off] = true
	}

	prev := -1
	for _, at := range p.Hints {
		switch {
		case at.Offset <= prev:
			return errors.Wrapf(ErrInvalidProgram, "hint offset %d not after %d", at.Offset, prev)
		case at.Offset >= len(p.Bytecode):
			return errors.Wrapf(ErrInvalidProgram, "hint offset %d past bytecode length %d", at.Offset, len(p.Bytecode))
		case !onBoundary[at.Offset]:
			return errors.Wrapf(ErrInvalidProgram, "hint offset %d is not an instruction boundary", at.Offset)
		}
		for _, h := range at.Hints {
			if h == nil {
				return errors.Wrapf(ErrInvalidProgram, "nil hint at offset %d", at.Offset)
			}
		}
		prev = at.Offset
	}
	return nil
}

// HintsAtOffset returns the hints attached to offset.
func (p *AssembledCairoProgram) HintsAtOffset(offset int) []hints.Hint {
	for _, at := range p.Hints {
		if at.Offset == offset {
			return at.Hints
		}
	}
	return nil
}

// HintRegistry builds the lookup an executor uses to dispatch hints by
// their debug string.
func (p *AssembledCairoProgram) HintRegistry() (*hints.Registry, error) {
	reg := hints.NewRegistry()
	for _, at := range p.Hints {
		if err := reg.Add(at.Offset, at.Hints...); err != nil {
			return nil, errors.Wrap(ErrInvalidProgram, err.Error())
		}
	}
	return reg, nil
}

// MarshalJSON encodes the program in the compiler's executable format.
func (p AssembledCairoProgram) MarshalJSON() ([]byte, error) {
	type plain AssembledCairoProgram
	out := plain(p)
	if out.Bytecode == nil {
		out.Bytecode = []hints.BigIntAsHex{}
	}
	if out.Hints == nil {
		out.Hints = []HintsAt{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the program and validates it.
func (p *AssembledCairoProgram) UnmarshalJSON(data []byte) error {
	type plain AssembledCairoProgram
	var raw plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return errors.Wrap(err, "decode program")
	}
	prog := AssembledCairoProgram(raw)
	if err := Validate(&prog); err != nil {
		return err
	}
	*p = prog
	return nil
}

// Builder assembles a program instruction by instruction.
type Builder struct {
	bytecode   []hints.BigIntAsHex
	boundaries map[int]bool
	hints      []HintsAt
	data       bool
	err        error
}

// NewBuilder creates a new program builder
func NewBuilder() *Builder {
	return &Builder{boundaries: make(map[int]bool)}
}

// AddInstruction appends an instruction word and its immediate, if any, and
// returns the instruction's offset. A word count that does not match the
// decoded size is reported by Build.
func (b *Builder) AddInstruction(words ...*big.Int) int {
	offset := len(b.bytecode)
	if b.err == nil {
		switch inst, err := decodeFirst(words); {
		case b.data:
			b.err = errors.Wrapf(ErrInvalidProgram, "instruction at %d follows data", offset)
		case err != nil:
			b.err = errors.Wrapf(ErrInvalidProgram, "instruction at %d: %v", offset, err)
		case inst.Size() != len(words):
			b.err = errors.Wrapf(ErrInvalidProgram, "instruction at %d takes %d words, got %d", offset, inst.Size(), len(words))
		}
	}
	b.boundaries[offset] = true
	for _, w := range words {
		b.bytecode = append(b.bytecode, hints.BigIntFrom(w))
	}
	return offset
}

// Add appends a decoded instruction. imm is required when op1 is an immediate.
func (b *Builder) Add(inst Instruction, imm ...int64) int {
	words := []*big.Int{inst.Encode()}
	for _, v := range imm {
		words = append(words, big.NewInt(v))
	}
	return b.AddInstruction(words...)
}

// AddData appends data words after the code and returns the offset of the
// first one. No instruction may be added afterwards.
func (b *Builder) AddData(words ...*big.Int) int {
	offset := len(b.bytecode)
	b.data = true
	for _, w := range words {
		b.bytecode = append(b.bytecode, hints.BigIntFrom(w))
	}
	return offset
}

func decodeFirst(words []*big.Int) (Instruction, error) {
	if len(words) == 0 {
		return Instruction{}, errors.New("no words")
	}
	return DecodeInstruction(words[0])
}

// AddHints attaches hints to the instruction at offset. Offsets must be added
// in strictly increasing order.
func (b *Builder) AddHints(offset int, hs ...hints.Hint) error {
	if n := len(b.hints); n > 0 && offset <= b.hints[n-1].Offset {
		return errors.Wrapf(ErrInvalidProgram, "hint offset %d not after %d", offset, b.hints[n-1].Offset)
	}
	if offset < 0 || offset >= len(b.bytecode) {
		return errors.Wrapf(ErrInvalidProgram, "hint offset %d outside bytecode of length %d", offset, len(b.bytecode))
	}
	if !b.boundaries[offset] {
		return errors.Wrapf(ErrInvalidProgram, "hint offset %d is not an instruction boundary", offset)
	}
	b.hints = append(b.hints, HintsAt{Offset: offset, Hints: append([]hints.Hint(nil), hs...)})
	return nil
}

// Len returns the number of bytecode words added so far.
func (b *Builder) Len() int {
	return len(b.bytecode)
}

// Build returns the validated program.
func (b *Builder) Build() (*AssembledCairoProgram, error) {
	if b.err != nil {
		return nil, b.err
	}
	p := &AssembledCairoProgram{
		Bytecode: append([]hints.BigIntAsHex(nil), b.bytecode...),
		Hints:    append([]HintsAt(nil), b.hints...),
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}
