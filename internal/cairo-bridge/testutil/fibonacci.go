package testutil

import (
	"context"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/artifact"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/program"
)

var (
	// AssertImm is [ap + 0] = imm; ap++.
	AssertImm = program.Instruction{
		OffOp0: -1, OffOp1: 1, Op0Register: hints.FP,
		Op1Src: program.Op1Imm, ApUpdate: program.ApAdd1, Opcode: program.OpAssertEq,
	}
	// AssertAdd is [ap + 0] = [ap - 1] + [ap - 2]; ap++.
	AssertAdd = program.Instruction{
		OffOp0: -1, OffOp1: -2, Op0Register: hints.AP,
		Op1Src: program.Op1AP, ResLogic: program.ResAdd, ApUpdate: program.ApAdd1, Opcode: program.OpAssertEq,
	}
)

// Fibonacci returns a standalone executable that writes 1, 1 and then n
// further Fibonacci numbers to the execution segment before looping.
func Fibonacci(n int) *program.Executable {
	b := program.NewBuilder()
	b.Add(AssertImm, 1)
	b.Add(AssertImm, 1)
	for i := 0; i < n; i++ {
		b.Add(AssertAdd)
	}
	b.Add(program.JumpRelZero, 0)
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return &program.Executable{
		Program:     *p,
		EntryPoints: []program.ExecutableEntryPoint{{Offset: 0, Kind: program.Standalone}},
	}
}

// FibonacciExecution runs Fibonacci(n).
func FibonacciExecution(n int) (*program.Executable, *artifact.Execution) {
	exe := Fibonacci(n)
	exec, err := new(Executor).Execute(context.Background(), exe, &exe.EntryPoints[0], nil)
	if err != nil {
		panic(err)
	}
	return exe, exec
}

// FibonacciPie returns the PIE of Fibonacci(n): the program and execution
// segments in segment-relative form.
func FibonacciPie(n int) *artifact.Pie {
	exe, exec := FibonacciExecution(n)
	progLen := uint64(len(exe.Program.Bytecode))
	execRange := exec.PublicInput.MemorySegments["execution"]
	execLen := execRange.StopPtr - execRange.BeginAddr

	var mem artifact.PieMemory
	exec.Memory.Ascend(func(addr uint64, v core.Felt) bool {
		cell := artifact.PieMemoryCell{Value: artifact.FeltValue(v)}
		if addr < execRange.BeginAddr {
			cell.Address = artifact.Relocatable{Segment: 0, Offset: addr - ProgramBase}
		} else {
			cell.Address = artifact.Relocatable{Segment: 1, Offset: addr - execRange.BeginAddr}
		}
		mem = append(mem, cell)
		return true
	})

	return &artifact.Pie{
		Version: artifact.Version{CairoPie: "1.1"},
		Metadata: artifact.Metadata{
			Program: artifact.StrippedProgram{
				Data:  exe.Program.Bytecode,
				Prime: "0x" + core.Modulus().Text(16),
			},
			ProgramSegment:   artifact.SegmentInfo{Index: 0, Size: progLen},
			ExecutionSegment: artifact.SegmentInfo{Index: 1, Size: execLen},
			RetFpSegment:     artifact.SegmentInfo{Index: 2},
			RetPcSegment:     artifact.SegmentInfo{Index: 3},
			BuiltinSegments:  map[string]artifact.SegmentInfo{},
		},
		Memory: mem,
		ExecutionResources: artifact.ExecutionResources{
			NSteps:                 uint64(len(exec.Trace)),
			BuiltinInstanceCounter: map[string]uint64{},
		},
		AdditionalData: artifact.AdditionalData{},
	}
}

// FibonacciValue returns the k-th Fibonacci number with F(1) = F(2) = 1.
func FibonacciValue(k int) core.Felt {
	a, b := core.NewFelt(0), core.NewFelt(1)
	for i := 1; i < k; i++ {
		a.Add(&a, &b)
		a, b = b, a
	}
	return b
}
