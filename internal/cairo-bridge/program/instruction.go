// Package program models assembled Cairo programs: bytecode, the hints
// attached to instruction offsets, executables and their entrypoints.
package program

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
)

// Instruction word layout: three biased 16-bit offsets followed by 15 flag bits.
const (
	offsetBias = 1 << 15
	flagsShift = 48

	flagDstReg   = 0
	flagOp0Reg   = 1
	flagOp1Src   = 2
	flagResLogic = 5
	flagPcUpdate = 7
	flagApUpdate = 10
	flagOpcode   = 12
)

// ErrInvalidInstruction is returned for words that are not valid Cairo instructions.
var ErrInvalidInstruction = errors.New("invalid instruction")

// Op1Src selects where op1 is read from.
type Op1Src uint8

const (
	Op1FromOp0 Op1Src = iota
	Op1Imm
	Op1FP
	Op1AP
)

// ResLogic selects how res is computed.
type ResLogic uint8

const (
	ResOp1 ResLogic = iota
	ResAdd
	ResMul
)

// PcUpdate selects how pc advances.
type PcUpdate uint8

const (
	PcRegular PcUpdate = iota
	PcJumpAbs
	PcJumpRel
	PcJnz
)

// ApUpdate selects how ap advances.
type ApUpdate uint8

const (
	ApRegular ApUpdate = iota
	ApAdd
	ApAdd1
	ApAdd2
)

// Opcode is the instruction's main operation.
type Opcode uint8

const (
	OpNop Opcode = iota
	OpCall
	OpRet
	OpAssertEq
)

func (o Opcode) String() string {
	switch o {
	case OpNop:
		return "nop"
	case OpCall:
		return "call"
	case OpRet:
		return "ret"
	case OpAssertEq:
		return "assert_eq"
	default:
		return fmt.Sprintf("opcode(%d)", uint8(o))
	}
}

// Instruction is a decoded Cairo instruction word.
type Instruction struct {
	OffDst int16
	OffOp0 int16
	OffOp1 int16

	DstRegister hints.Register
	Op0Register hints.Register
	Op1Src      Op1Src
	ResLogic    ResLogic
	PcUpdate    PcUpdate
	ApUpdate    ApUpdate
	Opcode      Opcode
}

// Size returns the number of words the instruction occupies: 2 when op1 is
// an immediate stored in the following word.
func (i Instruction) Size() int {
	if i.Op1Src == Op1Imm {
		return 2
	}
	return 1
}

// DecodeInstruction decodes a 63-bit Cairo instruction word.
func DecodeInstruction(word *big.Int) (Instruction, error) {
	if word == nil || word.Sign() < 0 || word.BitLen() > 63 {
		return Instruction{}, errors.Wrapf(ErrInvalidInstruction, "word %v does not fit in 63 bits", word)
	}
	w := word.Uint64()
	flags := w >> flagsShift

	inst := Instruction{
		OffDst:      int16(int32(w&0xffff) - offsetBias),
		OffOp0:      int16(int32(w>>16&0xffff) - offsetBias),
		OffOp1:      int16(int32(w>>32&0xffff) - offsetBias),
		DstRegister: hints.Register(flags >> flagDstReg & 1),
		Op0Register: hints.Register(flags >> flagOp0Reg & 1),
	}

	switch flags >> flagOp1Src & 0b111 {
	case 0:
		inst.Op1Src = Op1FromOp0
	case 1:
		inst.Op1Src = Op1Imm
	case 2:
		inst.Op1Src = Op1FP
	case 4:
		inst.Op1Src = Op1AP
	default:
		return Instruction{}, errors.Wrapf(ErrInvalidInstruction, "word %#x: op1 source", w)
	}

	switch flags >> flagPcUpdate & 0b111 {
	case 0:
		inst.PcUpdate = PcRegular
	case 1:
		inst.PcUpdate = PcJumpAbs
	case 2:
		inst.PcUpdate = PcJumpRel
	case 4:
		inst.PcUpdate = PcJnz
	default:
		return Instruction{}, errors.Wrapf(ErrInvalidInstruction, "word %#x: pc update", w)
	}

	switch flags >> flagResLogic & 0b11 {
	case 0:
		inst.ResLogic = ResOp1
	case 1:
		inst.ResLogic = ResAdd
	case 2:
		inst.ResLogic = ResMul
	default:
		return Instruction{}, errors.Wrapf(ErrInvalidInstruction, "word %#x: res logic", w)
	}

	switch flags >> flagOpcode & 0b111 {
	case 0:
		inst.Opcode = OpNop
	case 1:
		inst.Opcode = OpCall
	case 2:
		inst.Opcode = OpRet
	case 4:
		inst.Opcode = OpAssertEq
	default:
		return Instruction{}, errors.Wrapf(ErrInvalidInstruction, "word %#x: opcode", w)
	}

	switch flags >> flagApUpdate & 0b11 {
	case 0:
		inst.ApUpdate = ApRegular
		if inst.Opcode == OpCall {
			inst.ApUpdate = ApAdd2
		}
	case 1:
		inst.ApUpdate = ApAdd
	case 2:
		inst.ApUpdate = ApAdd1
	default:
		return Instruction{}, errors.Wrapf(ErrInvalidInstruction, "word %#x: ap update", w)
	}

	if inst.Op1Src == Op1Imm && inst.OffOp1 != 1 {
		return Instruction{}, errors.Wrapf(ErrInvalidInstruction, "word %#x: immediate op1 needs offset 1", w)
	}
	if inst.Opcode == OpCall && inst.ApUpdate != ApAdd2 {
		return Instruction{}, errors.Wrapf(ErrInvalidInstruction, "word %#x: call updates ap by 2", w)
	}

	return inst, nil
}

// Encode returns the instruction word.
func (i Instruction) Encode() *big.Int {
	var flags uint64
	flags |= uint64(i.DstRegister&1) << flagDstReg
	flags |= uint64(i.Op0Register&1) << flagOp0Reg
	switch i.Op1Src {
	case Op1Imm:
		flags |= 1 << flagOp1Src
	case Op1FP:
		flags |= 2 << flagOp1Src
	case Op1AP:
		flags |= 4 << flagOp1Src
	}
	flags |= uint64(i.ResLogic&0b11) << flagResLogic
	switch i.PcUpdate {
	case PcJumpAbs:
		flags |= 1 << flagPcUpdate
	case PcJumpRel:
		flags |= 2 << flagPcUpdate
	case PcJnz:
		flags |= 4 << flagPcUpdate
	}
	switch i.ApUpdate {
	case ApAdd:
		flags |= 1 << flagApUpdate
	case ApAdd1:
		flags |= 2 << flagApUpdate
	}
	switch i.Opcode {
	case OpCall:
		flags |= 1 << flagOpcode
	case OpRet:
		flags |= 2 << flagOpcode
	case OpAssertEq:
		flags |= 4 << flagOpcode
	}

	w := uint64(uint16(int32(i.OffDst) + offsetBias))
	w |= uint64(uint16(int32(i.OffOp0)+offsetBias)) << 16
	w |= uint64(uint16(int32(i.OffOp1)+offsetBias)) << 32
	w |= flags << flagsShift
	return new(big.Int).SetUint64(w)
}

// JumpRelZero is `jmp rel 0`, the loop a standalone run ends in. It is
// followed by an immediate 0.
var JumpRelZero = Instruction{
	OffDst:      -1,
	OffOp0:      -1,
	OffOp1:      1,
	DstRegister: hints.FP,
	Op0Register: hints.FP,
	Op1Src:      Op1Imm,
	PcUpdate:    PcJumpRel,
}
