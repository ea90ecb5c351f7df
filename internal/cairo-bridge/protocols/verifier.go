package protocols

import (
	"bytes"
	"reflect"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/adapter"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/utils"
)

// ErrVerificationFailed is returned by Check for proofs that do not verify.
var ErrVerificationFailed = errors.New("verification failed")

// Verifier checks proofs produced by Prover with the same configuration.
type Verifier struct {
	config *utils.Config
	logger *zap.Logger
}

// NewVerifier creates a verifier. A nil config uses utils.DefaultConfig.
func NewVerifier(config *utils.Config, logger *zap.Logger) (*Verifier, error) {
	if config == nil {
		config = utils.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid verifier config")
	}
	return &Verifier{config: config.Clone(), logger: utils.LoggerOrNop(logger)}, nil
}

// Verify reports whether p is a valid proof of its claim.
func (v *Verifier) Verify(p *Proof) bool {
	if err := v.Check(p); err != nil {
		v.logger.Debug("proof rejected", zap.Error(err))
		return false
	}
	return true
}

// VerifyWitness reports whether p is a valid proof and was produced from w.
func (v *Verifier) VerifyWitness(w *adapter.Witness, p *Proof) bool {
	if err := v.checkWitness(w, p); err != nil {
		v.logger.Debug("proof does not match witness", zap.Error(err))
		return false
	}
	return v.Verify(p)
}

func (v *Verifier) checkWitness(w *adapter.Witness, p *Proof) error {
	if w == nil || p == nil {
		return errors.New("nil witness or proof")
	}
	claim, err := NewClaim(w)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(*claim, p.Claim) {
		return errors.New("claim differs from the witness")
	}
	com, err := commit(w)
	if err != nil {
		return err
	}
	if !bytes.Equal(com.memory.Root(), p.MemoryRoot) || !bytes.Equal(com.trace.Root(), p.TraceRoot) {
		return errors.New("commitments differ from the witness")
	}
	return nil
}

// Check verifies p and returns the first failure.
func (v *Verifier) Check(p *Proof) error {
	if p == nil {
		return errors.Wrap(ErrVerificationFailed, "nil proof")
	}
	claim := &p.Claim
	if err := claim.Validate(); err != nil {
		return errors.Wrap(ErrVerificationFailed, err.Error())
	}
	if len(p.Queries) != v.config.Queries {
		return errors.Wrapf(ErrVerificationFailed, "%d queries, expected %d", len(p.Queries), v.config.Queries)
	}

	channel := newTranscript(v.config.HashFunction, claim, p.MemoryRoot, p.TraceRoot)
	for q, opening := range p.Queries {
		idx := channel.ReceiveIndex(claim.TraceLength)
		if opening.Index != idx {
			return errors.Wrapf(ErrVerificationFailed, "query %d opens row %d, transcript drew %d", q, opening.Index, idx)
		}
		if !core.VerifyProof(p.TraceRoot, traceLeaf(opening.Entry), opening.Path, idx, claim.TraceLength) {
			return errors.Wrapf(ErrVerificationFailed, "query %d: trace path", q)
		}
		if idx == 0 && opening.Entry != claim.Initial {
			return errors.Wrapf(ErrVerificationFailed, "query %d: initial state", q)
		}
		if idx == claim.TraceLength-1 && opening.Entry != claim.Final {
			return errors.Wrapf(ErrVerificationFailed, "query %d: final state", q)
		}
		if opening.Instruction.Entry.Address != opening.Entry.PC {
			return errors.Wrapf(ErrVerificationFailed, "query %d: instruction at %d opened for pc %d",
				q, opening.Instruction.Entry.Address, opening.Entry.PC)
		}
		if err := v.checkMemory(p, &opening.Instruction); err != nil {
			return errors.Wrapf(err, "query %d instruction", q)
		}
	}

	if len(p.PublicMemory) != len(claim.PublicMemory) {
		return errors.Wrapf(ErrVerificationFailed, "%d public openings for %d public cells", len(p.PublicMemory), len(claim.PublicMemory))
	}
	for i, cell := range claim.PublicMemory {
		opening := &p.PublicMemory[i]
		if opening.Entry.Address != uint64(cell.Address) || opening.Entry.Value != cell.Value {
			return errors.Wrapf(ErrVerificationFailed, "public cell %d does not match its opening", cell.Address)
		}
		if err := v.checkMemory(p, opening); err != nil {
			return errors.Wrapf(err, "public cell %d", cell.Address)
		}
	}

	if !bytes.Equal(channel.State(), p.Seal) {
		return errors.Wrap(ErrVerificationFailed, "transcript seal mismatch")
	}
	return nil
}

func (v *Verifier) checkMemory(p *Proof, opening *MemoryOpening) error {
	if _, err := core.FromLimbs(opening.Entry.Value); err != nil {
		return errors.Wrap(ErrVerificationFailed, err.Error())
	}
	if !core.VerifyProof(p.MemoryRoot, memoryLeaf(opening.Entry), opening.Path, opening.Index, p.Claim.MemorySize) {
		return errors.Wrap(ErrVerificationFailed, "memory path")
	}
	return nil
}
