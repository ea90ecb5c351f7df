package hints

import (
	"fmt"

	"github.com/pkg/errors"
)

// Register names a VM register a cell is addressed from.
type Register uint8

const (
	AP Register = 0
	FP Register = 1
)

func (r Register) String() string {
	switch r {
	case AP:
		return "AP"
	case FP:
		return "FP"
	default:
		return fmt.Sprintf("Register(%d)", uint8(r))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Register) MarshalText() ([]byte, error) {
	if r != AP && r != FP {
		return nil, errors.Errorf("invalid register %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Register) UnmarshalText(text []byte) error {
	reg, err := parseRegister(string(text))
	if err != nil {
		return err
	}
	*r = reg
	return nil
}

func parseRegister(s string) (Register, error) {
	switch s {
	case "AP":
		return AP, nil
	case "FP":
		return FP, nil
	default:
		return 0, errors.Errorf("unknown register %q", s)
	}
}

// CellRef addresses the memory cell at register + offset.
type CellRef struct {
	Register Register `json:"register"`
	Offset   int16    `json:"offset"`
}

// APCell returns [ap + offset].
func APCell(offset int16) CellRef { return CellRef{Register: AP, Offset: offset} }

// FPCell returns [fp + offset].
func FPCell(offset int16) CellRef { return CellRef{Register: FP, Offset: offset} }

// Operation is the arithmetic operator of a BinOp operand.
type Operation uint8

const (
	Add Operation = 0
	Mul Operation = 1
)

func (o Operation) String() string {
	switch o {
	case Add:
		return "Add"
	case Mul:
		return "Mul"
	default:
		return fmt.Sprintf("Operation(%d)", uint8(o))
	}
}

func parseOperation(s string) (Operation, error) {
	switch s {
	case "Add":
		return Add, nil
	case "Mul":
		return Mul, nil
	default:
		return 0, errors.Errorf("unknown operation %q", s)
	}
}

// ResOperand is a value computed from registers, memory and immediates.
// Implemented by *Deref, *DoubleDeref, *Immediate and *BinOp.
type ResOperand interface {
	resOperandTag() uint8
}

// DerefOrImmediate is the right-hand side of a BinOp: *Deref or *Immediate.
type DerefOrImmediate interface {
	ResOperand
	derefOrImmediateTag() uint8
}

// ResOperand tags.
const (
	ResDeref       uint8 = 0
	ResDoubleDeref uint8 = 1
	ResImmediate   uint8 = 2
	ResBinOp       uint8 = 3
)

// DerefOrImmediate tags.
const (
	OperandDeref     uint8 = 0
	OperandImmediate uint8 = 1
)

// Deref reads [cell].
type Deref struct {
	Cell CellRef
}

// DoubleDeref reads [[cell] + offset].
type DoubleDeref struct {
	Cell   CellRef
	Offset int16
}

// Immediate is a constant.
type Immediate struct {
	Value BigIntAsHex
}

// BinOp computes [a] op b.
type BinOp struct {
	Operand BinOpOperand
}

// BinOpOperand is the payload of a BinOp.
type BinOpOperand struct {
	Op Operation
	A  CellRef
	B  DerefOrImmediate
}

func (*Deref) resOperandTag() uint8       { return ResDeref }
func (*DoubleDeref) resOperandTag() uint8 { return ResDoubleDeref }
func (*Immediate) resOperandTag() uint8   { return ResImmediate }
func (*BinOp) resOperandTag() uint8       { return ResBinOp }

func (*Deref) derefOrImmediateTag() uint8     { return OperandDeref }
func (*Immediate) derefOrImmediateTag() uint8 { return OperandImmediate }

// isNilOperand reports whether op is nil or a nil pointer to an operand
// variant. Codecs and evaluation reject both.
func isNilOperand(op ResOperand) bool {
	switch o := op.(type) {
	case nil:
		return true
	case *Deref:
		return o == nil
	case *DoubleDeref:
		return o == nil
	case *Immediate:
		return o == nil
	case *BinOp:
		return o == nil
	}
	return false
}

// NewDeref returns Deref(cell).
func NewDeref(c CellRef) *Deref { return &Deref{Cell: c} }

// NewDoubleDeref returns DoubleDeref(cell, offset).
func NewDoubleDeref(c CellRef, offset int16) *DoubleDeref {
	return &DoubleDeref{Cell: c, Offset: offset}
}

// NewImmediate returns Immediate(v).
func NewImmediate(v BigIntAsHex) *Immediate { return &Immediate{Value: v} }

// NewBinOp returns BinOp([a] op b).
func NewBinOp(op Operation, a CellRef, b DerefOrImmediate) *BinOp {
	return &BinOp{Operand: BinOpOperand{Op: op, A: a, B: b}}
}
