package hints

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMarshalHintText(t *testing.T) {
	tests := []struct {
		name string
		hint Hint
		want string
	}{
		{
			name: "alloc segment",
			hint: &AllocSegment{Dst: APCell(0)},
			want: `{"AllocSegment":{"dst":{"register":"AP","offset":0}}}`,
		},
		{
			name: "unit variant",
			hint: &AssertCurrentAccessIndicesIsEmpty{},
			want: `"AssertCurrentAccessIndicesIsEmpty"`,
		},
		{
			name: "double deref and immediate",
			hint: &TestLessThan{
				Lhs: NewDoubleDeref(FPCell(-4), 2),
				Rhs: NewImmediate(NewBigInt(-31)),
				Dst: APCell(1),
			},
			want: `{"TestLessThan":{"lhs":{"DoubleDeref":[{"register":"FP","offset":-4},2]},` +
				`"rhs":{"Immediate":"-0x1f"},"dst":{"register":"AP","offset":1}}}`,
		},
		{
			name: "binop",
			hint: &AddTrace{Flag: NewBinOp(Add, APCell(3), NewImmediate(NewBigInt(0)))},
			want: `{"AddTrace":{"flag":{"BinOp":{"op":"Add","a":{"register":"AP","offset":3},"b":{"Immediate":"0x0"}}}}}`,
		},
		{
			name: "cheatcode selector",
			hint: &Cheatcode{
				Selector:    NewBigInt(255),
				InputStart:  NewDeref(FPCell(-2)),
				InputEnd:    NewDeref(FPCell(-1)),
				OutputStart: APCell(0),
				OutputEnd:   APCell(1),
			},
			want: `{"Cheatcode":{"selector":"0xff","input_start":{"Deref":{"register":"FP","offset":-2}},` +
				`"input_end":{"Deref":{"register":"FP","offset":-1}},"output_start":{"register":"AP","offset":0},` +
				`"output_end":{"register":"AP","offset":1}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalHint(tt.hint)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(got))

			back, err := UnmarshalHint([]byte(tt.want))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.hint, back); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshalHintAcceptsNumbers(t *testing.T) {
	h, err := UnmarshalHint([]byte(`{"AddTrace":{"flag":{"Immediate":42}}}`))
	require.NoError(t, err)
	require.True(t, h.(*AddTrace).Flag.(*Immediate).Value.Equal(NewBigInt(42)))

	h, err = UnmarshalHint([]byte(`{"AddTrace":{"flag":{"Immediate":"-17"}}}`))
	require.NoError(t, err)
	require.True(t, h.(*AddTrace).Flag.(*Immediate).Value.Equal(NewBigInt(-17)))
}

func TestUnmarshalHintRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"unknown variant", `{"Teleport":{}}`},
		{"unknown unit", `"Teleport"`},
		{"unit with fields", `{"AssertAllKeysUsed":{}}`},
		{"fielded variant as string", `"AllocSegment"`},
		{"two keys", `{"AllocSegment":{},"AddTrace":{}}`},
		{"missing field", `{"AllocSegment":{}}`},
		{"unknown field", `{"AllocSegment":{"dst":{"register":"AP","offset":0},"extra":1}}`},
		{"bad register", `{"AllocSegment":{"dst":{"register":"SP","offset":0}}}`},
		{"offset overflow", `{"AllocSegment":{"dst":{"register":"AP","offset":40000}}}`},
		{"missing offset", `{"AllocSegment":{"dst":{"register":"AP"}}}`},
		{"bad operand", `{"AddTrace":{"flag":{"Triple":1}}}`},
		{"double deref arity", `{"AddTrace":{"flag":{"DoubleDeref":[{"register":"AP","offset":0}]}}}`},
		{"binop rhs", `{"AddTrace":{"flag":{"BinOp":{"op":"Add","a":{"register":"AP","offset":0},"b":{"BinOp":{}}}}}}`},
		{"binop op", `{"AddTrace":{"flag":{"BinOp":{"op":"Sub","a":{"register":"AP","offset":0},"b":{"Immediate":"0x1"}}}}}`},
		{"bad immediate", `{"AddTrace":{"flag":{"Immediate":"0xzz"}}}`},
		{"null fields", `{"AllocSegment":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalHint([]byte(tt.data))
			require.ErrorIs(t, err, ErrMalformedText)
		})
	}
}

func TestBigIntText(t *testing.T) {
	tests := []struct {
		in   BigIntAsHex
		want string
	}{
		{NewBigInt(0), "0x0"},
		{BigIntAsHex{}, "0x0"},
		{NewBigInt(31), "0x1f"},
		{NewBigInt(-31), "-0x1f"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.in.String())
		back, err := ParseBigInt(tt.want)
		require.NoError(t, err)
		require.True(t, back.Equal(tt.in))
	}

	for _, bad := range []string{"", "-", "0x", "-0x-1", "+5", "0x1g"} {
		_, err := ParseBigInt(bad)
		require.Error(t, err, bad)
	}
}
