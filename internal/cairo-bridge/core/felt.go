// Package core provides the Cairo field, the fixed-width limb encoding used by
// the witness, and the Merkle commitment shared by the prover and verifier.
package core

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/holiman/uint256"
)

// Felt is an element of the Cairo field P = 2^251 + 17*2^192 + 1.
type Felt = fp.Element

const (
	// FeltBytes is the size of a serialized field element.
	FeltBytes = 32

	// LimbCount is the number of 32-bit limbs in a witness value.
	LimbCount = 8
)

// Limbs is the fixed-width witness representation of a field element:
// the little-endian byte image reinterpreted as eight u32 words.
type Limbs [LimbCount]uint32

// Modulus returns the field modulus P.
func Modulus() *big.Int {
	return fp.Modulus()
}

// NewFelt creates a field element from a uint64
func NewFelt(v uint64) Felt {
	var f Felt
	f.SetUint64(v)
	return f
}

// FeltFromBig reduces v modulo P. Negative values wrap around.
func FeltFromBig(v *big.Int) Felt {
	var f Felt
	f.SetBigInt(v)
	return f
}

// FeltToBig returns the canonical representative in [0, P).
func FeltToBig(f *Felt) *big.Int {
	return f.BigInt(new(big.Int))
}

// FeltFromLE decodes a canonical little-endian field element.
// Values >= P are rejected rather than reduced.
func FeltFromLE(b []byte) (Felt, error) {
	if len(b) != FeltBytes {
		return Felt{}, fmt.Errorf("felt must be %d bytes, got %d", FeltBytes, len(b))
	}
	var be [FeltBytes]byte
	for i := range b {
		be[FeltBytes-1-i] = b[i]
	}
	v := new(big.Int).SetBytes(be[:])
	if v.Cmp(fp.Modulus()) >= 0 {
		return Felt{}, fmt.Errorf("felt 0x%s is not reduced modulo P", v.Text(16))
	}
	return FeltFromBig(v), nil
}

// FeltToLE returns the little-endian byte image of f.
func FeltToLE(f *Felt) [FeltBytes]byte {
	be := f.Bytes()
	var le [FeltBytes]byte
	for i := range be {
		le[FeltBytes-1-i] = be[i]
	}
	return le
}

// FeltFromHex parses "0x..." (optionally signed) and reduces modulo P.
func FeltFromHex(s string) (Felt, error) {
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	digits = strings.TrimPrefix(strings.TrimPrefix(digits, "0x"), "0X")
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok || digits == "" {
		return Felt{}, fmt.Errorf("invalid hex felt %q", s)
	}
	if neg {
		v.Neg(v)
	}
	return FeltFromBig(v), nil
}

// FeltHex renders f as lowercase "0x..." hex.
func FeltHex(f *Felt) string {
	return "0x" + FeltToBig(f).Text(16)
}

// ToLimbs re-encodes f into the witness limb layout.
func ToLimbs(f *Felt) Limbs {
	u, _ := uint256.FromBig(FeltToBig(f))
	var l Limbs
	for i := 0; i < 4; i++ {
		l[2*i] = uint32(u[i])
		l[2*i+1] = uint32(u[i] >> 32)
	}
	return l
}

// FromLimbs reverses ToLimbs. It fails if the limbs encode a value >= P.
func FromLimbs(l Limbs) (Felt, error) {
	var u uint256.Int
	for i := 0; i < 4; i++ {
		u[i] = uint64(l[2*i]) | uint64(l[2*i+1])<<32
	}
	v := u.ToBig()
	if v.Cmp(fp.Modulus()) >= 0 {
		return Felt{}, fmt.Errorf("limbs encode 0x%s which is not reduced modulo P", v.Text(16))
	}
	return FeltFromBig(v), nil
}
