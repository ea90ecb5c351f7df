package hints

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// BigIntAsHex is an arbitrary-precision signed integer whose text form is
// hexadecimal. A nil Value is zero.
type BigIntAsHex struct {
	Value *big.Int
}

// NewBigInt creates a BigIntAsHex from an int64
func NewBigInt(v int64) BigIntAsHex {
	return BigIntAsHex{Value: big.NewInt(v)}
}

// BigIntFrom copies v into a BigIntAsHex
func BigIntFrom(v *big.Int) BigIntAsHex {
	if v == nil {
		return BigIntAsHex{Value: new(big.Int)}
	}
	return BigIntAsHex{Value: new(big.Int).Set(v)}
}

// ParseBigInt parses "0x1f", "-0x1f" or a decimal literal.
func ParseBigInt(s string) (BigIntAsHex, error) {
	text := s
	neg := strings.HasPrefix(text, "-")
	if neg {
		text = text[1:]
	}
	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		text = text[2:]
		base = 16
	}
	if text == "" || strings.HasPrefix(text, "-") || strings.HasPrefix(text, "+") {
		return BigIntAsHex{}, errors.Errorf("invalid big integer %q", s)
	}
	v, ok := new(big.Int).SetString(text, base)
	if !ok {
		return BigIntAsHex{}, errors.Errorf("invalid big integer %q", s)
	}
	if neg {
		v.Neg(v)
	}
	return BigIntAsHex{Value: v}, nil
}

// Int returns a copy of the value.
func (b BigIntAsHex) Int() *big.Int {
	if b.Value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.Value)
}

// Sign returns -1, 0 or +1.
func (b BigIntAsHex) Sign() int {
	if b.Value == nil {
		return 0
	}
	return b.Value.Sign()
}

// Equal reports whether both hold the same integer.
func (b BigIntAsHex) Equal(o BigIntAsHex) bool {
	return b.Int().Cmp(o.Int()) == 0
}

// String renders the canonical hex text: "0x1f", "-0x1f", "0x0".
func (b BigIntAsHex) String() string {
	v := b.Int()
	if v.Sign() < 0 {
		return "-0x" + new(big.Int).Neg(v).Text(16)
	}
	return "0x" + v.Text(16)
}

// Decimal renders the value in base 10.
func (b BigIntAsHex) Decimal() string {
	return b.Int().String()
}

// MarshalJSON encodes the value as a hex string.
func (b BigIntAsHex) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON accepts a hex or decimal string, or a JSON number.
func (b *BigIntAsHex) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.Errorf("big integer must be a string or number, got %s", string(data))
		}
		s = n.String()
	}
	v, err := ParseBigInt(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}
