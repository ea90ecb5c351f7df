package cairobridge

import (
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/adapter"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/artifact"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/program"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/protocols"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/utils"
)

// Config configures the bridge
type Config = utils.Config

// Hint is a decoded hint
type Hint = hints.Hint

// Program is an assembled Cairo program with its hints
type Program = program.AssembledCairoProgram

// Executable is a program together with its entrypoints
type Executable = program.Executable

// ExecutableEntryPoint is one way to start an executable
type ExecutableEntryPoint = program.ExecutableEntryPoint

// EntryPointKind selects an entrypoint calling convention
type EntryPointKind = program.EntryPointKind

// FuncArg is an entrypoint argument
type FuncArg = program.FuncArg

// Entrypoint kinds.
const (
	Bootloader = program.Bootloader
	Standalone = program.Standalone
)

// Pie is a position independent execution archive
type Pie = artifact.Pie

// Execution is a finished, relocated run
type Execution = artifact.Execution

// Witness is the prover input
type Witness = adapter.Witness

// MemoryEntry is one witness memory cell
type MemoryEntry = adapter.MemoryEntry

// TraceEntry is one witness trace step
type TraceEntry = adapter.TraceEntry

// SegmentAddresses is a witness segment range
type SegmentAddresses = adapter.SegmentAddresses

// Proof is a witness proof
type Proof = protocols.Proof

// Claim is the public part of a proof
type Claim = protocols.Claim

// DefaultConfig returns the default bridge configuration
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// LoadConfig reads a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	cfg, err := utils.LoadConfig(path)
	if err != nil {
		return nil, newError(ErrInvalidConfig, "load config", err)
	}
	return cfg, nil
}
