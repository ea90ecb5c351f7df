package cairobridge

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/adapter"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/artifact"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/program"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/protocols"
)

// ErrorCode classifies bridge errors
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrStructural represents malformed IR, programs or executables
	ErrStructural

	// ErrArchive represents a missing or malformed execution artifact
	ErrArchive

	// ErrExecution represents a failure reported by the executor
	ErrExecution

	// ErrAdapter represents an execution that cannot become a witness
	ErrAdapter

	// ErrProof represents a proof generation or verification failure
	ErrProof

	// ErrInvalidInput represents invalid caller input
	ErrInvalidInput

	// ErrInvalidConfig represents an invalid configuration
	ErrInvalidConfig
)

func (c ErrorCode) String() string {
	switch c {
	case ErrStructural:
		return "structural"
	case ErrArchive:
		return "archive"
	case ErrExecution:
		return "execution"
	case ErrAdapter:
		return "adapter"
	case ErrProof:
		return "proof"
	case ErrInvalidInput:
		return "invalid input"
	case ErrInvalidConfig:
		return "invalid config"
	default:
		return "unknown"
	}
}

// Error is the error type returned by the bridge
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cairo-bridge %s error: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("cairo-bridge %s error: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// wrap attaches a code derived from the cause. Errors that already carry a
// code pass through.
func wrap(message string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return newError(classify(err), message, err)
}

func classify(err error) ErrorCode {
	var missing *artifact.MissingMemberError
	switch {
	case errors.As(err, &missing),
		errors.Is(err, artifact.ErrMalformedArchive),
		errors.Is(err, artifact.ErrMalformedMemory),
		errors.Is(err, artifact.ErrMalformedTrace),
		errors.Is(err, artifact.ErrUnknownSegment),
		errors.Is(err, os.ErrNotExist):
		return ErrArchive
	case errors.Is(err, adapter.ErrTraceNotRelocated),
		errors.Is(err, adapter.ErrMalformedSegment),
		errors.Is(err, adapter.ErrAddressOverflow):
		return ErrAdapter
	case errors.Is(err, hints.ErrMalformedBinary),
		errors.Is(err, hints.ErrMalformedText),
		errors.Is(err, hints.ErrMalformedRepr),
		errors.Is(err, program.ErrInvalidProgram),
		errors.Is(err, program.ErrInvalidInstruction),
		errors.Is(err, program.ErrEntryPointNotFound):
		return ErrStructural
	case errors.Is(err, program.ErrInvalidArgs):
		return ErrInvalidInput
	case errors.Is(err, protocols.ErrInvalidClaim),
		errors.Is(err, protocols.ErrVerificationFailed):
		return ErrProof
	default:
		return ErrUnknown
	}
}
