package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/artifact"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/program"
)

func TestFibonacciRun(t *testing.T) {
	const n = 5
	exe, exec := FibonacciExecution(n)

	progLen := uint64(len(exe.Program.Bytecode))
	require.Equal(t, uint64(n+6), progLen)
	execBase := ProgramBase + progLen

	require.Len(t, exec.Trace, n+3)
	require.Equal(t, artifact.TraceEntry{AP: execBase, FP: execBase, PC: 1}, exec.Trace[0])
	last := exec.Trace[len(exec.Trace)-1]
	require.Equal(t, artifact.TraceEntry{AP: execBase + n + 2, FP: execBase, PC: ProgramBase + 4 + n}, last)

	for k := 1; k <= n+2; k++ {
		got, ok := exec.Memory.Get(execBase + uint64(k-1))
		require.True(t, ok)
		want := FibonacciValue(k)
		require.True(t, got.Equal(&want), "F(%d)", k)
	}
	thirteen := core.NewFelt(13)
	f7 := FibonacciValue(7)
	require.True(t, f7.Equal(&thirteen))

	require.Equal(t, artifact.SegmentRange{BeginAddr: execBase, StopPtr: execBase + n + 2}, exec.PublicInput.MemorySegments["execution"])
	require.Len(t, exec.PublicInput.PublicMemory, int(progLen))
}

func TestFibonacciPie(t *testing.T) {
	pie := FibonacciPie(4)
	exec, err := new(Executor).ExecutePie(context.Background(), pie)
	require.NoError(t, err)
	require.Len(t, exec.Trace, 7)

	pie.Memory[len(pie.Memory)-1].Value = artifact.FeltValue(core.NewFelt(1))
	_, err = new(Executor).ExecutePie(context.Background(), pie)
	require.ErrorIs(t, err, ErrAssertion)
}

// comparisonProgram writes 7, then asserts that the cell the attached hints
// fill holds want.
func comparisonProgram(t *testing.T, want int64, hs ...hints.Hint) *program.AssembledCairoProgram {
	t.Helper()
	b := program.NewBuilder()
	b.Add(AssertImm, 7)
	check := b.Add(AssertImm, want)
	b.Add(program.JumpRelZero, 0)
	require.NoError(t, b.AddHints(check, hs...))
	p, err := b.Build()
	require.NoError(t, err)
	return p
}

func TestRunHints(t *testing.T) {
	seven := hints.NewDeref(hints.APCell(-1))
	imm := func(v int64) hints.ResOperand { return hints.NewImmediate(hints.NewBigInt(v)) }

	tests := []struct {
		name string
		hint hints.Hint
		want int64
	}{
		{"less than holds", &hints.TestLessThan{Lhs: seven, Rhs: imm(10), Dst: hints.APCell(0)}, 1},
		{"less than fails", &hints.TestLessThan{Lhs: seven, Rhs: imm(7), Dst: hints.APCell(0)}, 0},
		{"less or equal holds", &hints.TestLessThanOrEqual{Lhs: seven, Rhs: imm(7), Dst: hints.APCell(0)}, 1},
		{"less or equal fails", &hints.TestLessThanOrEqual{Lhs: imm(8), Rhs: seven, Dst: hints.APCell(0)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, err := Run(context.Background(), comparisonProgram(t, tt.want, tt.hint), 0, 10)
			require.NoError(t, err)
			execBase := exec.PublicInput.MemorySegments["execution"].BeginAddr
			got, ok := exec.Memory.Get(execBase + 1)
			require.True(t, ok)
			want := core.NewFelt(uint64(tt.want))
			require.True(t, got.Equal(&want))

			_, err = Run(context.Background(), comparisonProgram(t, 1-tt.want, tt.hint), 0, 10)
			require.ErrorIs(t, err, ErrAssertion)
		})
	}

	t.Run("external and debug hints are skipped", func(t *testing.T) {
		undefined := hints.NewDeref(hints.APCell(50))
		p := comparisonProgram(t, 1,
			&hints.AddMarker{Start: undefined, End: undefined},
			&hints.DebugPrint{Start: undefined, End: undefined},
			&hints.TestLessThan{Lhs: seven, Rhs: imm(9), Dst: hints.APCell(0)},
		)
		_, err := Run(context.Background(), p, 0, 10)
		require.NoError(t, err)
	})

	t.Run("unsupported hint", func(t *testing.T) {
		p := comparisonProgram(t, 1, &hints.WideMul128{
			Lhs: seven, Rhs: seven, High: hints.APCell(0), Low: hints.APCell(1),
		})
		_, err := Run(context.Background(), p, 0, 10)
		require.ErrorIs(t, err, ErrUnsupported)
		require.Contains(t, err.Error(), "WideMul128")
	})

	t.Run("undefined operand", func(t *testing.T) {
		p := comparisonProgram(t, 1, &hints.TestLessThan{Lhs: hints.NewDeref(hints.APCell(3)), Rhs: seven, Dst: hints.APCell(0)})
		_, err := Run(context.Background(), p, 0, 10)
		require.ErrorIs(t, err, hints.ErrUndefinedCell)
	})
}

func TestRunRejects(t *testing.T) {
	t.Run("step limit", func(t *testing.T) {
		exe := Fibonacci(10)
		_, err := (&Executor{MaxSteps: 3}).Execute(context.Background(), exe, &exe.EntryPoints[0], nil)
		require.ErrorIs(t, err, ErrStepLimit)
	})

	t.Run("bootloader entrypoint", func(t *testing.T) {
		exe := Fibonacci(1)
		ep := program.ExecutableEntryPoint{Kind: program.Bootloader}
		_, err := new(Executor).Execute(context.Background(), exe, &ep, nil)
		require.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("failed assertion", func(t *testing.T) {
		b := program.NewBuilder()
		b.Add(AssertImm, 1)
		b.Add(program.Instruction{
			OffDst: -1, OffOp0: -1, OffOp1: 1, Op0Register: AssertImm.Op0Register,
			Op1Src: program.Op1Imm, Opcode: program.OpAssertEq,
		}, 2)
		b.Add(program.JumpRelZero, 0)
		p, err := b.Build()
		require.NoError(t, err)
		_, err = Run(context.Background(), p, 0, 10)
		require.ErrorIs(t, err, ErrAssertion)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Run(ctx, &Fibonacci(1).Program, 0, 10)
		require.ErrorIs(t, err, context.Canceled)
	})
}
