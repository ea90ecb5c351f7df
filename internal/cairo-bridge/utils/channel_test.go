package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewChannel tests creating a new channel
func TestNewChannel(t *testing.T) {
	tests := []struct {
		name         string
		hashFunc     string
		expectedHash string
	}{
		{"default (empty string)", "", HashSHA3},
		{"sha256", HashSHA256, HashSHA256},
		{"sha3", HashSHA3, HashSHA3},
		{"blake2s", HashBlake2s, HashBlake2s},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := NewChannel(tt.hashFunc)
			require.NotNil(t, ch)
			require.Equal(t, tt.expectedHash, ch.hashFunc)
			require.NotEmpty(t, ch.state)
		})
	}
}

// TestChannelSend tests sending data to the channel
func TestChannelSend(t *testing.T) {
	ch := NewChannel(HashSHA256)
	initial := ch.State()

	ch.Send([]byte("test data"))
	require.NotEqual(t, initial, ch.State())
	require.Len(t, ch.Proof(), 1)
	require.Contains(t, ch.String(), "send:")
}

// TestChannelDeterminism checks two channels fed the same data agree
func TestChannelDeterminism(t *testing.T) {
	for _, h := range []string{HashSHA3, HashSHA256, HashBlake2s} {
		t.Run(h, func(t *testing.T) {
			a, b := NewChannel(h), NewChannel(h)
			a.Send([]byte{1, 2, 3})
			b.Send([]byte{1, 2, 3})
			for i := 0; i < 8; i++ {
				require.Equal(t, a.ReceiveIndex(100), b.ReceiveIndex(100))
			}
			require.Equal(t, a.State(), b.State())
		})
	}

	a, b := NewChannel(HashSHA3), NewChannel(HashBlake2s)
	a.Send([]byte("x"))
	b.Send([]byte("x"))
	require.NotEqual(t, a.State(), b.State())
}

// TestReceiveRandomInt tests range handling
func TestReceiveRandomInt(t *testing.T) {
	ch := NewChannel(HashSHA3)
	ch.Send([]byte("seed"))

	for i := 0; i < 32; i++ {
		v := ch.ReceiveRandomInt(big.NewInt(5), big.NewInt(9))
		require.True(t, v.Cmp(big.NewInt(5)) >= 0 && v.Cmp(big.NewInt(9)) <= 0)
	}

	require.Nil(t, ch.ReceiveRandomInt(big.NewInt(2), big.NewInt(1)))
	require.Equal(t, -1, ch.ReceiveIndex(0))
	require.Equal(t, 0, ch.ReceiveIndex(1))
}
