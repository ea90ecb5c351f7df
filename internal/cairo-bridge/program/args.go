package program

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

// ErrInvalidArgs is returned for unparsable run arguments.
var ErrInvalidArgs = errors.New("invalid run arguments")

// FuncArg is a single felt or an array of felts passed to an entrypoint.
type FuncArg struct {
	Value   core.Felt
	Array   []core.Felt
	IsArray bool
}

// Single returns a felt argument.
func Single(v core.Felt) FuncArg {
	return FuncArg{Value: v}
}

// ArrayArg returns an array argument.
func ArrayArg(vs ...core.Felt) FuncArg {
	return FuncArg{Array: append([]core.Felt{}, vs...), IsArray: true}
}

// Size returns the number of cells the argument occupies: arrays are passed
// as a start and end pointer.
func (a FuncArg) Size() int {
	if a.IsArray {
		return 2
	}
	return 1
}

// ParseArgs parses whitespace separated decimal felts, with bracketed groups
// as arrays: "1 2 [3 4 5] 6".
func ParseArgs(s string) ([]FuncArg, error) {
	var tokens []string
	for _, field := range strings.Fields(s) {
		if rest, ok := strings.CutPrefix(field, "["); ok {
			tokens = append(tokens, "[")
			field = rest
		}
		if rest, ok := strings.CutSuffix(field, "]"); ok {
			if rest != "" {
				tokens = append(tokens, rest)
			}
			tokens = append(tokens, "]")
		} else if field != "" {
			tokens = append(tokens, field)
		}
	}

	var args []FuncArg
	for i := 0; i < len(tokens); i++ {
		if tokens[i] != "[" {
			v, err := parseDecimalFelt(tokens[i])
			if err != nil {
				return nil, err
			}
			args = append(args, Single(v))
			continue
		}
		arr := FuncArg{Array: []core.Felt{}, IsArray: true}
		closed := false
		for i++; i < len(tokens); i++ {
			if tokens[i] == "]" {
				closed = true
				break
			}
			v, err := parseDecimalFelt(tokens[i])
			if err != nil {
				return nil, err
			}
			arr.Array = append(arr.Array, v)
		}
		if !closed {
			return nil, errors.Wrap(ErrInvalidArgs, "unterminated array")
		}
		args = append(args, arr)
	}
	return args, nil
}

func parseDecimalFelt(s string) (core.Felt, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return core.Felt{}, errors.Wrapf(ErrInvalidArgs, "%q is not a valid felt", s)
	}
	return core.FeltFromBig(v), nil
}
