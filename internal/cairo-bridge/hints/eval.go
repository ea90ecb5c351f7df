package hints

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

var (
	// ErrUndefinedCell is returned when an operand reads a cell that was never written.
	ErrUndefinedCell = errors.New("undefined memory cell")

	// ErrAddressRange is returned when an operand address leaves [0, 2^64).
	ErrAddressRange = errors.New("address out of range")
)

// Registers holds the register values an operand is evaluated against.
type Registers struct {
	AP uint64
	FP uint64
}

// MemoryReader is read access to relocated VM memory.
type MemoryReader interface {
	Get(addr uint64) (core.Felt, bool)
}

// CellAddress resolves c to an absolute address.
func CellAddress(c CellRef, regs Registers) (uint64, error) {
	var base uint64
	switch c.Register {
	case AP:
		base = regs.AP
	case FP:
		base = regs.FP
	default:
		return 0, errors.Errorf("invalid register %d", uint8(c.Register))
	}
	return offsetAddress(base, c.Offset)
}

func offsetAddress(base uint64, off int16) (uint64, error) {
	if off < 0 {
		d := uint64(-int64(off))
		if d > base {
			return 0, errors.Wrapf(ErrAddressRange, "%d%+d", base, off)
		}
		return base - d, nil
	}
	addr := base + uint64(off)
	if addr < base {
		return 0, errors.Wrapf(ErrAddressRange, "%d%+d", base, off)
	}
	return addr, nil
}

func readCell(c CellRef, regs Registers, mem MemoryReader) (core.Felt, error) {
	addr, err := CellAddress(c, regs)
	if err != nil {
		return core.Felt{}, err
	}
	v, ok := mem.Get(addr)
	if !ok {
		return core.Felt{}, errors.Wrapf(ErrUndefinedCell, "address %d", addr)
	}
	return v, nil
}

// EvalResOperand computes the value of op. Immediates are reduced modulo P,
// so negative immediates wrap; BinOp adds or multiplies in the field.
func EvalResOperand(op ResOperand, regs Registers, mem MemoryReader) (core.Felt, error) {
	if isNilOperand(op) {
		return core.Felt{}, errors.Errorf("nil operand %T", op)
	}
	switch o := op.(type) {
	case *Deref:
		return readCell(o.Cell, regs, mem)
	case *DoubleDeref:
		ptr, err := readCell(o.Cell, regs, mem)
		if err != nil {
			return core.Felt{}, err
		}
		base := core.FeltToBig(&ptr)
		if !base.IsUint64() {
			return core.Felt{}, errors.Wrapf(ErrAddressRange, "pointer %s", base)
		}
		addr, err := offsetAddress(base.Uint64(), o.Offset)
		if err != nil {
			return core.Felt{}, err
		}
		v, ok := mem.Get(addr)
		if !ok {
			return core.Felt{}, errors.Wrapf(ErrUndefinedCell, "address %d", addr)
		}
		return v, nil
	case *Immediate:
		return core.FeltFromBig(o.Value.Int()), nil
	case *BinOp:
		a, err := readCell(o.Operand.A, regs, mem)
		if err != nil {
			return core.Felt{}, err
		}
		b, err := EvalResOperand(o.Operand.B, regs, mem)
		if err != nil {
			return core.Felt{}, err
		}
		var res core.Felt
		switch o.Operand.Op {
		case Add:
			res.Add(&a, &b)
		case Mul:
			res.Mul(&a, &b)
		default:
			return core.Felt{}, errors.Errorf("invalid operation %d", uint8(o.Operand.Op))
		}
		return res, nil
	default:
		return core.Felt{}, errors.Errorf("unsupported operand %T", op)
	}
}

// EvalBigInt is EvalResOperand returning the canonical integer in [0, P).
func EvalBigInt(op ResOperand, regs Registers, mem MemoryReader) (*big.Int, error) {
	v, err := EvalResOperand(op, regs, mem)
	if err != nil {
		return nil, err
	}
	return core.FeltToBig(&v), nil
}
