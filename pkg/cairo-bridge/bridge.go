package cairobridge

import (
	"bytes"
	"context"

	"go.uber.org/zap"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/adapter"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/artifact"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/program"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/protocols"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/utils"
)

// Executor runs an entrypoint of an executable and returns the relocated
// execution. The bridge passes ctx through untouched.
type Executor interface {
	Execute(ctx context.Context, exe *Executable, ep *ExecutableEntryPoint, args []FuncArg) (*Execution, error)
}

// PieExecutor re-runs the program stored in a PIE.
type PieExecutor interface {
	ExecutePie(ctx context.Context, pie *Pie) (*Execution, error)
}

// Bridge turns executions into witnesses, and witnesses into proofs.
type Bridge struct {
	config   *Config
	logger   *zap.Logger
	prover   *protocols.Prover
	verifier *protocols.Verifier
}

// New creates a bridge. A nil config uses DefaultConfig; a nil logger builds
// one at the configured level.
func New(config *Config, logger *zap.Logger) (*Bridge, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, newError(ErrInvalidConfig, "validate config", err)
	}
	if logger == nil {
		l, err := utils.NewLogger(config.LogLevel)
		if err != nil {
			return nil, newError(ErrInvalidConfig, "build logger", err)
		}
		logger = l
	}

	prover, err := protocols.NewProver(config, logger)
	if err != nil {
		return nil, newError(ErrInvalidConfig, "create prover", err)
	}
	verifier, err := protocols.NewVerifier(config, logger)
	if err != nil {
		return nil, newError(ErrInvalidConfig, "create verifier", err)
	}
	return &Bridge{
		config:   config.Clone(),
		logger:   logger,
		prover:   prover,
		verifier: verifier,
	}, nil
}

// Config returns a copy of the bridge configuration.
func (b *Bridge) Config() *Config {
	return b.config.Clone()
}

// TraceGen adapts a finished execution into a witness.
func (b *Bridge) TraceGen(exec *Execution) (*Witness, error) {
	w, err := adapter.Adapt(exec,
		adapter.WithLogger(b.logger),
		adapter.WithMaxPublicAddress(b.config.MaxPublicAddress),
	)
	if err != nil {
		return nil, wrap("trace generation", err)
	}
	return w, nil
}

// TraceGenFromDir loads the relocated run in dir and adapts it.
func (b *Bridge) TraceGenFromDir(dir string) (*Witness, error) {
	exec, err := artifact.LoadExecution(dir, artifact.WithLogger(b.logger))
	if err != nil {
		return nil, wrap("load execution", err)
	}
	return b.TraceGen(exec)
}

// TraceGenFromPie re-runs pie with executor and adapts the result.
func (b *Bridge) TraceGenFromPie(ctx context.Context, pie *Pie, executor PieExecutor) (*Witness, error) {
	if pie == nil || executor == nil {
		return nil, newError(ErrInvalidInput, "pie and executor are required", nil)
	}
	exec, err := executor.ExecutePie(ctx, pie)
	if err != nil {
		return nil, newError(ErrExecution, "execute pie", err)
	}
	return b.TraceGen(exec)
}

// Run resolves the entrypoint of the given kind and hands it to executor.
func (b *Bridge) Run(ctx context.Context, exe *Executable, kind EntryPointKind, args []FuncArg, executor Executor) (*Execution, error) {
	if exe == nil || executor == nil {
		return nil, newError(ErrInvalidInput, "executable and executor are required", nil)
	}
	ep, err := exe.EntryPoint(kind)
	if err != nil {
		return nil, wrap("resolve entrypoint", err)
	}
	exec, err := executor.Execute(ctx, exe, ep, args)
	if err != nil {
		return nil, newError(ErrExecution, "execute", err)
	}
	b.logger.Debug("executed entrypoint",
		zap.Stringer("kind", kind),
		zap.Int("offset", ep.Offset),
		zap.Int("steps", len(exec.Trace)),
	)
	return exec, nil
}

// ExecuteTraceGen parses args, runs the executable and adapts the execution.
func (b *Bridge) ExecuteTraceGen(ctx context.Context, exe *Executable, kind EntryPointKind, args string, executor Executor) (*Witness, error) {
	parsed, err := program.ParseArgs(args)
	if err != nil {
		return nil, wrap("parse arguments", err)
	}
	exec, err := b.Run(ctx, exe, kind, parsed, executor)
	if err != nil {
		return nil, err
	}
	return b.TraceGen(exec)
}

// Prove generates a proof for w.
func (b *Bridge) Prove(w *Witness) (*Proof, error) {
	p, err := b.prover.Prove(w)
	if err != nil {
		code := classify(err)
		if code == ErrUnknown {
			code = ErrProof
		}
		return nil, newError(code, "prove", err)
	}
	return p, nil
}

// Verify reports whether p is a valid proof.
func (b *Bridge) Verify(p *Proof) bool {
	return b.verifier.Verify(p)
}

// VerifyWitness reports whether p is a valid proof produced from w.
func (b *Bridge) VerifyWitness(w *Witness, p *Proof) bool {
	return b.verifier.VerifyWitness(w, p)
}

// ParseExecutable decodes and validates an executable JSON document.
func ParseExecutable(data []byte) (*Executable, error) {
	exe, err := program.ParseExecutable(data)
	if err != nil {
		return nil, wrap("parse executable", err)
	}
	return exe, nil
}

// ReadPie decodes a PIE archive held in memory.
func ReadPie(data []byte) (*Pie, error) {
	pie, err := artifact.ReadPie(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, wrap("read pie", err)
	}
	return pie, nil
}

// OpenPie reads a PIE archive from disk.
func OpenPie(path string) (*Pie, error) {
	pie, err := artifact.OpenPie(path)
	if err != nil {
		return nil, wrap("open pie", err)
	}
	return pie, nil
}

// TraceGenFromDir adapts the relocated run in dir with the default configuration.
func TraceGenFromDir(dir string) (*Witness, error) {
	b, err := New(nil, zap.NewNop())
	if err != nil {
		return nil, err
	}
	return b.TraceGenFromDir(dir)
}

// Prove generates a proof for w with cfg.
func Prove(w *Witness, cfg *Config) (*Proof, error) {
	b, err := New(cfg, zap.NewNop())
	if err != nil {
		return nil, err
	}
	return b.Prove(w)
}

// Verify reports whether p verifies under cfg. An invalid cfg never verifies.
func Verify(p *Proof, cfg *Config) bool {
	b, err := New(cfg, zap.NewNop())
	if err != nil {
		return false
	}
	return b.Verify(p)
}
