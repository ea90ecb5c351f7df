package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// Channel represents a Fiat-Shamir transcript channel
type Channel struct {
	state    []byte
	proof    []string
	hashFunc string
}

// NewChannel creates a new Fiat-Shamir channel
func NewChannel(hashFunc string) *Channel {
	if hashFunc == "" {
		hashFunc = HashSHA3
	}
	return &Channel{
		state:    []byte{0},
		proof:    make([]string, 0, 64),
		hashFunc: hashFunc,
	}
}

// Send appends data to the channel state
func (c *Channel) Send(data []byte) {
	c.proof = append(c.proof, fmt.Sprintf("send:%s", hex.EncodeToString(data)))
	buf := make([]byte, 0, len(c.state)+len(data))
	buf = append(buf, c.state...)
	buf = append(buf, data...)
	c.state = c.hash(buf)
}

// ReceiveRandomInt generates a random integer in the range [min, max].
// Returns nil if min > max.
func (c *Channel) ReceiveRandomInt(min, max *big.Int) *big.Int {
	if min.Cmp(max) > 0 {
		return nil
	}

	stateAsInt := new(big.Int).SetBytes(c.state)

	rangeSize := new(big.Int).Sub(max, min)
	rangeSize.Add(rangeSize, big.NewInt(1))

	random := new(big.Int).Mod(stateAsInt, rangeSize)
	random.Add(random, min)

	c.proof = append(c.proof, fmt.Sprintf("receiveRandInt:%s", random.String()))
	c.state = c.hash(c.state)

	return random
}

// ReceiveIndex draws an index in [0, n). It returns -1 when n <= 0.
func (c *Channel) ReceiveIndex(n int) int {
	if n <= 0 {
		return -1
	}
	return int(c.ReceiveRandomInt(big.NewInt(0), big.NewInt(int64(n-1))).Int64())
}

// State returns the current channel state
func (c *Channel) State() []byte {
	return append([]byte(nil), c.state...)
}

// Proof returns the proof transcript
func (c *Channel) Proof() []string {
	return append([]string(nil), c.proof...)
}

func (c *Channel) hash(data []byte) []byte {
	switch c.hashFunc {
	case HashSHA256:
		h := sha256.Sum256(data)
		return h[:]
	case HashBlake2s:
		h := blake2s.Sum256(data)
		return h[:]
	default:
		h := sha3.Sum256(data)
		return h[:]
	}
}

// String returns a string representation of the channel proof
func (c *Channel) String() string {
	return strings.Join(c.proof, " ")
}
