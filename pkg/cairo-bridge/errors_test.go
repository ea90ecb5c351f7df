package cairobridge

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/adapter"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/artifact"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/program"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/protocols"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{&artifact.MissingMemberError{Member: artifact.MemberMetadata}, ErrArchive},
		{errors.Wrap(artifact.ErrMalformedMemory, "record 3"), ErrArchive},
		{errors.Wrap(artifact.ErrMalformedTrace, "trace length 30"), ErrArchive},
		{adapter.ErrTraceNotRelocated, ErrAdapter},
		{errors.Wrap(adapter.ErrAddressOverflow, "entry 0"), ErrAdapter},
		{errors.Wrap(hints.ErrMalformedBinary, "tag"), ErrStructural},
		{program.ErrEntryPointNotFound, ErrStructural},
		{program.ErrInvalidArgs, ErrInvalidInput},
		{protocols.ErrVerificationFailed, ErrProof},
		{errors.New("something else"), ErrUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestError(t *testing.T) {
	cause := &artifact.MissingMemberError{Member: artifact.MemberMetadata}
	err := wrap("read pie", cause)

	require.Equal(t, ErrArchive, CodeOf(err))
	require.ErrorIs(t, err, &Error{Code: ErrArchive})
	require.NotErrorIs(t, err, &Error{Code: ErrAdapter})
	require.Contains(t, err.Error(), "metadata.json")
	require.Contains(t, err.Error(), "archive")

	var missing *artifact.MissingMemberError
	require.ErrorAs(t, err, &missing)

	outer := fmt.Errorf("cli: %w", err)
	require.Equal(t, ErrArchive, CodeOf(outer))
	require.Same(t, err, wrap("again", err))
	require.NoError(t, wrap("nothing", nil))
	require.Equal(t, ErrUnknown, CodeOf(errors.New("plain")))

	require.Equal(t, "cairo-bridge proof error: bad", newError(ErrProof, "bad", nil).Error())
}
