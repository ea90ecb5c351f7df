package hints

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func bigFromString(t testing.TB, s string) BigIntAsHex {
	t.Helper()
	v, err := ParseBigInt(s)
	require.NoError(t, err)
	return v
}

// sampleOperands covers every ResOperand shape, including signed and
// oversized immediates.
func sampleOperands(t testing.TB) []ResOperand {
	huge := new(big.Int).Lsh(big.NewInt(1), 300)
	huge.Add(huge, big.NewInt(12345))
	return []ResOperand{
		NewDeref(APCell(-1)),
		NewDoubleDeref(FPCell(-3), 4),
		NewImmediate(NewBigInt(0)),
		NewImmediate(NewBigInt(-31)),
		NewImmediate(BigIntFrom(huge)),
		NewBinOp(Add, APCell(2), NewDeref(FPCell(-5))),
		NewBinOp(Mul, FPCell(0), NewImmediate(bigFromString(t, "-0x800000000000011000000000000000000000000000000000000000000000001"))),
	}
}

type filler struct {
	i   int
	ops []ResOperand
}

func (f *filler) cell(_ string, c *CellRef) {
	f.i++
	*c = CellRef{Register: Register(f.i % 2), Offset: int16(f.i*977 - 3000)}
}

func (f *filler) res(_ string, r *ResOperand) {
	f.i++
	*r = f.ops[f.i%len(f.ops)]
}

func (f *filler) bigint(_ string, b *BigIntAsHex) {
	f.i++
	*b = BigIntFrom(new(big.Int).Exp(big.NewInt(-7), big.NewInt(int64(f.i*11)), nil))
}

// sampleHints returns one populated instance of every variant. Operands are
// rotated per variant so each variant sees several shapes across seeds.
func sampleHints(t testing.TB, seed int) []Hint {
	ops := sampleOperands(t)
	var out []Hint
	for i, name := range Variants() {
		h, ok := New(name)
		require.True(t, ok, name)
		h.walk(&filler{i: seed + i, ops: ops})
		out = append(out, h)
	}
	return out
}

func TestVariantTable(t *testing.T) {
	require.Len(t, Variants(), 30+7+2+4)

	counts := map[Family]int{}
	for _, name := range Variants() {
		h, ok := New(name)
		require.True(t, ok)
		require.Equal(t, name, Name(h))
		counts[h.Family()]++
	}
	require.Equal(t, map[Family]int{
		FamilyCore:       30,
		FamilyDeprecated: 7,
		FamilyStarknet:   2,
		FamilyExternal:   4,
	}, counts)

	_, ok := New("NoSuchHint")
	require.False(t, ok)
}

func TestFixedDiscriminants(t *testing.T) {
	tests := []struct {
		hint Hint
		tag  uint8
	}{
		{&AllocSegment{}, 0},
		{&WideMul128{}, 3},
		{&AssertLeIsSecondArcExcluded{}, 22},
		{&AllocConstantSize{}, 26},
		{&U256InvModN{}, 27},
		{&TestLessThanOrEqualAddress{}, 28},
		{&EvalCircuit{}, 29},
		{&AssertCurrentAccessIndicesIsEmpty{}, 0},
		{&Felt252DictWrite{}, 6},
		{&SystemCall{}, 0},
		{&Cheatcode{}, 1},
		{&AddRelocationRule{}, 0},
		{&AddTrace{}, 3},
	}
	for _, tt := range tests {
		t.Run(Name(tt.hint), func(t *testing.T) {
			require.Equal(t, tt.tag, tt.hint.Tag())
		})
	}
}

func TestFieldNames(t *testing.T) {
	require.Equal(t, []string{"dst"}, Fields(&AllocSegment{}))
	require.Equal(t, []string{
		"value_low", "value_high", "sqrt0", "sqrt1",
		"remainder_low", "remainder_high", "sqrt_mul_2_minus_remainder_ge_u128",
	}, Fields(&Uint256SquareRoot{}))
	require.Equal(t, []string{
		"b0", "b1", "n0", "n1", "g0_or_no_inv", "g1_option",
		"s_or_r0", "s_or_r1", "t_or_k0", "t_or_k1",
	}, Fields(&U256InvModN{}))
	require.Empty(t, Fields(&AssertAllKeysUsed{}))
}

func TestRoundTripEveryVariant(t *testing.T) {
	codecs := []struct {
		name   string
		encode func(Hint) ([]byte, error)
		decode func([]byte) (Hint, error)
	}{
		{"binary", EncodeHint, DecodeHint},
		{"text", MarshalHint, UnmarshalHint},
		{
			"repr",
			func(h Hint) ([]byte, error) { return []byte(Repr(h)), nil },
			func(b []byte) (Hint, error) { return ParseRepr(string(b)) },
		},
	}

	for _, codec := range codecs {
		t.Run(codec.name, func(t *testing.T) {
			for seed := 0; seed < 7; seed++ {
				for _, want := range sampleHints(t, seed) {
					data, err := codec.encode(want)
					require.NoError(t, err, Name(want))

					got, err := codec.decode(data)
					require.NoError(t, err, "%s: %s", Name(want), data)
					if diff := cmp.Diff(want, got); diff != "" {
						t.Fatalf("%s round trip mismatch (-want +got):\n%s", Name(want), diff)
					}
				}
			}
		})
	}
}

func TestCodecsAgree(t *testing.T) {
	for _, h := range sampleHints(t, 3) {
		bin, err := EncodeHint(h)
		require.NoError(t, err)
		fromBin, err := DecodeHint(bin)
		require.NoError(t, err)

		text, err := MarshalHint(fromBin)
		require.NoError(t, err)
		fromText, err := UnmarshalHint(text)
		require.NoError(t, err)

		require.Equal(t, Repr(h), Repr(fromText))
	}
}

func TestHintJSONWrapper(t *testing.T) {
	for _, h := range sampleHints(t, 1) {
		b, err := HintJSON{Hint: h}.MarshalJSON()
		require.NoError(t, err)

		var back HintJSON
		require.NoError(t, back.UnmarshalJSON(b))
		require.Empty(t, cmp.Diff(h, back.Hint))
	}
}
