package hints

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

type mapMemory map[uint64]core.Felt

func (m mapMemory) Get(addr uint64) (core.Felt, bool) {
	v, ok := m[addr]
	return v, ok
}

func TestEvalResOperand(t *testing.T) {
	mem := mapMemory{
		10: core.NewFelt(7),
		11: core.NewFelt(20),
		20: core.NewFelt(100),
		22: core.NewFelt(300),
	}
	regs := Registers{AP: 11, FP: 12}

	tests := []struct {
		name string
		op   ResOperand
		want *big.Int
	}{
		{"deref ap", NewDeref(APCell(0)), big.NewInt(20)},
		{"deref fp negative", NewDeref(FPCell(-2)), big.NewInt(7)},
		{"double deref", NewDoubleDeref(APCell(0), 2), big.NewInt(300)},
		{"immediate", NewImmediate(NewBigInt(42)), big.NewInt(42)},
		{"negative immediate wraps", NewImmediate(NewBigInt(-1)), new(big.Int).Sub(core.Modulus(), big.NewInt(1))},
		{"add deref", NewBinOp(Add, APCell(-1), NewDeref(APCell(0))), big.NewInt(27)},
		{"mul immediate", NewBinOp(Mul, FPCell(-2), NewImmediate(NewBigInt(6))), big.NewInt(42)},
		{"add wraps", NewBinOp(Add, APCell(-1), NewImmediate(NewBigInt(-8))), new(big.Int).Sub(core.Modulus(), big.NewInt(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvalBigInt(tt.op, regs, mem)
			require.NoError(t, err)
			require.Equal(t, 0, tt.want.Cmp(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestEvalResOperandErrors(t *testing.T) {
	mem := mapMemory{5: core.NewFelt(1000)}

	_, err := EvalResOperand(NewDeref(APCell(1)), Registers{AP: 5}, mem)
	require.ErrorIs(t, err, ErrUndefinedCell)

	_, err = EvalResOperand(NewDeref(APCell(-6)), Registers{AP: 5}, mem)
	require.ErrorIs(t, err, ErrAddressRange)

	_, err = EvalResOperand(NewDoubleDeref(APCell(0), 1), Registers{AP: 5}, mem)
	require.ErrorIs(t, err, ErrUndefinedCell)

	_, err = CellAddress(CellRef{Register: 3}, Registers{})
	require.Error(t, err)

	_, err = EvalResOperand(nil, Registers{}, mem)
	require.Error(t, err)

	require.NotPanics(t, func() {
		_, err = EvalResOperand((*Deref)(nil), Registers{}, mem)
	})
	require.Error(t, err)

	addr, err := CellAddress(FPCell(32767), Registers{FP: ^uint64(0) - 40000})
	require.NoError(t, err)
	require.Equal(t, ^uint64(0)-40000+32767, addr)

	_, err = CellAddress(FPCell(1), Registers{FP: ^uint64(0)})
	require.ErrorIs(t, err, ErrAddressRange)
}
