// Package testutil runs small straight-line Cairo programs so the bridge can
// be exercised end to end without an external executor. Only assert_eq
// instructions with regular pc updates and the terminal jmp rel 0 loop are
// supported. Comparison hints run before the instruction they are attached
// to; debug and external hints are skipped.
package testutil

import (
	"context"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/artifact"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/program"
)

// ProgramBase is the address the program segment is loaded at.
const ProgramBase = artifact.FirstSegmentBase

// DefaultMaxSteps bounds a run when Executor.MaxSteps is zero.
const DefaultMaxSteps = 1 << 16

var (
	// ErrUnsupported is returned for instructions outside the supported subset.
	ErrUnsupported = errors.New("unsupported instruction")
	// ErrStepLimit is returned when a run does not reach its terminal loop.
	ErrStepLimit = errors.New("step limit reached")
	// ErrAssertion is returned when an assert_eq fails.
	ErrAssertion = errors.New("assertion failed")
)

// Executor runs standalone entrypoints of straight-line programs.
type Executor struct {
	MaxSteps int
}

// Execute runs ep and returns the relocated execution.
func (e *Executor) Execute(ctx context.Context, exe *program.Executable, ep *program.ExecutableEntryPoint, args []program.FuncArg) (*artifact.Execution, error) {
	if ep.Kind != program.Standalone {
		return nil, errors.Wrapf(ErrUnsupported, "%s entrypoint", ep.Kind)
	}
	if len(ep.Builtins) != 0 || len(args) != 0 {
		return nil, errors.Wrap(ErrUnsupported, "builtins and arguments")
	}
	maxSteps := e.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return Run(ctx, &exe.Program, ep.Offset, maxSteps)
}

// ExecutePie re-runs the program stored in pie from its main offset and checks
// that the run reproduces the archived memory.
func (e *Executor) ExecutePie(ctx context.Context, pie *artifact.Pie) (*artifact.Execution, error) {
	exe := &program.Executable{
		Program: program.AssembledCairoProgram{Bytecode: pie.Metadata.Program.Data},
		EntryPoints: []program.ExecutableEntryPoint{
			{Offset: int(pie.Metadata.Program.Main), Kind: program.Standalone},
		},
	}
	exec, err := e.Execute(ctx, exe, &exe.EntryPoints[0], nil)
	if err != nil {
		return nil, err
	}
	archived, err := pie.Relocate()
	if err != nil {
		return nil, err
	}
	var mismatch error
	archived.Ascend(func(addr uint64, want core.Felt) bool {
		got, ok := exec.Memory.Get(addr)
		if !ok || !got.Equal(&want) {
			mismatch = errors.Wrapf(ErrAssertion, "address %d does not match the archived memory", addr)
			return false
		}
		return true
	})
	if mismatch != nil {
		return nil, mismatch
	}
	return exec, nil
}

type machine struct {
	mem   *artifact.Memory
	regs  hints.Registers
	pc    uint64
	trace []artifact.TraceEntry
}

// Run loads p at ProgramBase and executes from offset until the terminal
// jmp rel 0 loop. The execution segment starts right after the program with
// ap = fp at its base. The final loop state is the last trace entry.
func Run(ctx context.Context, p *program.AssembledCairoProgram, offset, maxSteps int) (*artifact.Execution, error) {
	mem := artifact.NewMemory()
	public := make([]artifact.PublicMemoryEntry, 0, len(p.Bytecode))
	for i, w := range p.Bytecode {
		v := core.FeltFromBig(w.Int())
		mem.Set(ProgramBase+uint64(i), v)
		public = append(public, artifact.PublicMemoryEntry{Address: ProgramBase + uint64(i), Value: v})
	}
	reg, err := p.HintRegistry()
	if err != nil {
		return nil, err
	}
	execBase := uint64(ProgramBase + len(p.Bytecode))
	m := &machine{
		mem:  mem,
		regs: hints.Registers{AP: execBase, FP: execBase},
		pc:   ProgramBase + uint64(offset),
	}

	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if step >= maxSteps {
			return nil, errors.Wrapf(ErrStepLimit, "%d steps", maxSteps)
		}
		m.trace = append(m.trace, artifact.TraceEntry{AP: m.regs.AP, FP: m.regs.FP, PC: m.pc})
		if err := m.runHints(reg.At(int(m.pc - ProgramBase))); err != nil {
			return nil, errors.WithMessagef(err, "pc %d", m.pc)
		}
		done, err := m.step()
		if err != nil {
			return nil, errors.WithMessagef(err, "pc %d", m.pc)
		}
		if done {
			break
		}
	}

	stop := execBase
	if top, ok := mem.MaxAddress(); ok && top >= execBase {
		stop = top + 1
	}
	return &artifact.Execution{
		Memory: mem,
		Trace:  m.trace,
		PublicInput: artifact.PublicInput{
			Layout: "plain",
			NSteps: uint64(len(m.trace)),
			MemorySegments: map[string]artifact.SegmentRange{
				"program":   {BeginAddr: ProgramBase, StopPtr: execBase},
				"execution": {BeginAddr: execBase, StopPtr: stop},
			},
			PublicMemory: public,
		},
	}, nil
}

func (m *machine) word(addr uint64) (*big.Int, bool) {
	v, ok := m.mem.Get(addr)
	if !ok {
		return nil, false
	}
	return core.FeltToBig(&v), true
}

func (m *machine) step() (bool, error) {
	word, ok := m.word(m.pc)
	if !ok {
		return false, errors.Wrap(hints.ErrUndefinedCell, "instruction")
	}
	inst, err := program.DecodeInstruction(word)
	if err != nil {
		return false, err
	}
	var imm *big.Int
	if inst.Size() == 2 {
		if imm, ok = m.word(m.pc + 1); !ok {
			return false, errors.Wrap(hints.ErrUndefinedCell, "immediate")
		}
	}
	if program.IsTerminalLoopWords(word, imm) {
		return true, nil
	}
	if inst.Opcode != program.OpAssertEq || inst.PcUpdate != program.PcRegular {
		return false, errors.Wrapf(ErrUnsupported, "%s with pc update %d", inst.Opcode, inst.PcUpdate)
	}

	op0, op0ok, err := m.read(hints.CellRef{Register: inst.Op0Register, Offset: inst.OffOp0})
	if err != nil {
		return false, err
	}

	var op1Addr uint64
	switch inst.Op1Src {
	case program.Op1Imm:
		op1Addr = m.pc + 1
	case program.Op1AP, program.Op1FP:
		reg := hints.AP
		if inst.Op1Src == program.Op1FP {
			reg = hints.FP
		}
		if op1Addr, err = hints.CellAddress(hints.CellRef{Register: reg, Offset: inst.OffOp1}, m.regs); err != nil {
			return false, err
		}
	default:
		if !op0ok {
			return false, errors.Wrap(hints.ErrUndefinedCell, "op0")
		}
		base := core.FeltToBig(&op0)
		if !base.IsUint64() {
			return false, errors.Wrap(hints.ErrAddressRange, "op0 pointer")
		}
		if op1Addr, err = hints.CellAddress(hints.CellRef{Offset: inst.OffOp1}, hints.Registers{AP: base.Uint64()}); err != nil {
			return false, err
		}
	}
	op1, ok := m.mem.Get(op1Addr)
	if !ok {
		return false, errors.Wrapf(hints.ErrUndefinedCell, "op1 at %d", op1Addr)
	}

	res := op1
	switch inst.ResLogic {
	case program.ResAdd, program.ResMul:
		if !op0ok {
			return false, errors.Wrap(hints.ErrUndefinedCell, "op0")
		}
		if inst.ResLogic == program.ResAdd {
			res.Add(&op0, &op1)
		} else {
			res.Mul(&op0, &op1)
		}
	}

	dstAddr, err := hints.CellAddress(hints.CellRef{Register: inst.DstRegister, Offset: inst.OffDst}, m.regs)
	if err != nil {
		return false, err
	}
	if dst, ok := m.mem.Get(dstAddr); ok {
		if !dst.Equal(&res) {
			return false, errors.Wrapf(ErrAssertion, "[%d] = %s, expected %s", dstAddr, core.FeltHex(&dst), core.FeltHex(&res))
		}
	} else {
		m.mem.Set(dstAddr, res)
	}

	switch inst.ApUpdate {
	case program.ApAdd1:
		m.regs.AP++
	case program.ApAdd2:
		m.regs.AP += 2
	case program.ApAdd:
		delta := core.FeltToBig(&res)
		if !delta.IsUint64() {
			return false, errors.Wrap(ErrUnsupported, "negative ap update")
		}
		m.regs.AP += delta.Uint64()
	}
	m.pc += uint64(inst.Size())
	return false, nil
}

func (m *machine) runHints(hs []hints.Hint) error {
	for _, h := range hs {
		if !hints.ProofBearing(h) || hints.PurposeOf(h) == hints.PurposeDebug {
			continue
		}
		var err error
		switch h := h.(type) {
		case *hints.TestLessThan:
			err = m.compare(h.Lhs, h.Rhs, h.Dst, func(c int) bool { return c < 0 })
		case *hints.TestLessThanOrEqual:
			err = m.compare(h.Lhs, h.Rhs, h.Dst, func(c int) bool { return c <= 0 })
		default:
			err = errors.Wrapf(ErrUnsupported, "%s hint %s", hints.PurposeOf(h), hints.Name(h))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// compare writes 1 to dst when holds(cmp(lhs, rhs)), else 0.
func (m *machine) compare(lhs, rhs hints.ResOperand, dst hints.CellRef, holds func(int) bool) error {
	a, err := hints.EvalBigInt(lhs, m.regs, m.mem)
	if err != nil {
		return errors.WithMessage(err, "lhs")
	}
	b, err := hints.EvalBigInt(rhs, m.regs, m.mem)
	if err != nil {
		return errors.WithMessage(err, "rhs")
	}
	var res core.Felt
	if holds(a.Cmp(b)) {
		res.SetOne()
	}
	addr, err := hints.CellAddress(dst, m.regs)
	if err != nil {
		return err
	}
	if old, ok := m.mem.Get(addr); ok && !old.Equal(&res) {
		return errors.Wrapf(ErrAssertion, "hint overwrites [%d]", addr)
	}
	m.mem.Set(addr, res)
	return nil
}

func (m *machine) read(c hints.CellRef) (core.Felt, bool, error) {
	addr, err := hints.CellAddress(c, m.regs)
	if err != nil {
		return core.Felt{}, false, err
	}
	v, ok := m.mem.Get(addr)
	return v, ok, nil
}
