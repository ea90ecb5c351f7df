package protocols

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/adapter"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/utils"
)

// Prover commits to a witness and answers the transcript queries.
type Prover struct {
	config *utils.Config
	logger *zap.Logger
}

// NewProver creates a prover. A nil config uses utils.DefaultConfig.
func NewProver(config *utils.Config, logger *zap.Logger) (*Prover, error) {
	if config == nil {
		config = utils.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid prover config")
	}
	return &Prover{config: config.Clone(), logger: utils.LoggerOrNop(logger)}, nil
}

// commitment is the pair of trees a proof is built over.
type commitment struct {
	memory *core.MerkleTree
	trace  *core.MerkleTree
}

func commit(w *adapter.Witness) (*commitment, error) {
	if len(w.Memory) == 0 || len(w.Trace) == 0 {
		return nil, errors.Wrap(ErrInvalidClaim, "witness has no memory or no trace")
	}
	memLeaves := make([][]byte, len(w.Memory))
	for i, e := range w.Memory {
		memLeaves[i] = memoryLeaf(e)
	}
	traceLeaves := make([][]byte, len(w.Trace))
	for i, e := range w.Trace {
		traceLeaves[i] = traceLeaf(e)
	}

	memTree, err := core.NewMerkleTree(memLeaves)
	if err != nil {
		return nil, errors.Wrap(err, "commit memory")
	}
	traceTree, err := core.NewMerkleTree(traceLeaves)
	if err != nil {
		return nil, errors.Wrap(err, "commit trace")
	}
	return &commitment{memory: memTree, trace: traceTree}, nil
}

// newTranscript seeds a channel with the claim and both roots.
func newTranscript(hashFunc string, claim *Claim, memoryRoot, traceRoot []byte) *utils.Channel {
	channel := utils.NewChannel(hashFunc)
	channel.Send(claim.Hash())
	channel.Send(memoryRoot)
	channel.Send(traceRoot)
	return channel
}

// Prove generates a proof for w.
//
// 1. Extract the claim
// 2. Commit to memory rows and trace rows
// 3. Seed the Fiat-Shamir channel with the claim and the roots
// 4. Open the queried trace rows and their instructions
// 5. Open every public memory cell
func (p *Prover) Prove(w *adapter.Witness) (*Proof, error) {
	if w == nil {
		return nil, errors.New("witness cannot be nil")
	}
	if err := w.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid witness")
	}

	claim, err := NewClaim(w)
	if err != nil {
		return nil, err
	}
	com, err := commit(w)
	if err != nil {
		return nil, err
	}

	proof := &Proof{
		Claim:      *claim,
		MemoryRoot: com.memory.Root(),
		TraceRoot:  com.trace.Root(),
	}
	channel := newTranscript(p.config.HashFunction, claim, proof.MemoryRoot, proof.TraceRoot)

	for q := 0; q < p.config.Queries; q++ {
		idx := channel.ReceiveIndex(len(w.Trace))
		entry := w.Trace[idx]
		path, err := com.trace.Proof(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "open trace row %d", idx)
		}
		instr, err := openMemory(w, com.memory, entry.PC)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", idx)
		}
		proof.Queries = append(proof.Queries, TraceOpening{Index: idx, Entry: entry, Path: path, Instruction: *instr})
	}

	for _, cell := range claim.PublicMemory {
		opening, err := openMemory(w, com.memory, uint64(cell.Address))
		if err != nil {
			return nil, errors.Wrap(err, "public memory")
		}
		proof.PublicMemory = append(proof.PublicMemory, *opening)
	}
	proof.Seal = channel.State()

	p.logger.Debug("proved witness",
		zap.Int("memory_rows", len(w.Memory)),
		zap.Int("trace_rows", len(w.Trace)),
		zap.Int("queries", len(proof.Queries)),
		zap.Int("public_cells", len(proof.PublicMemory)),
	)
	return proof, nil
}

func openMemory(w *adapter.Witness, tree *core.MerkleTree, addr uint64) (*MemoryOpening, error) {
	entry, idx, ok := w.Lookup(addr)
	if !ok {
		return nil, errors.Errorf("address %d is not defined", addr)
	}
	path, err := tree.Proof(idx)
	if err != nil {
		return nil, err
	}
	return &MemoryOpening{Index: idx, Entry: entry, Path: path}, nil
}
