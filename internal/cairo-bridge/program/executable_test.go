package program

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
)

func sampleExecutable(t *testing.T) *Executable {
	t.Helper()
	p, err := sampleBuilder().Build()
	require.NoError(t, err)
	return &Executable{
		Program: *p,
		EntryPoints: []ExecutableEntryPoint{
			{Builtins: []Builtin{BuiltinOutput}, Offset: 0, Kind: Standalone},
			{Builtins: []Builtin{BuiltinOutput, BuiltinRangeCheck}, Offset: 2, Kind: Bootloader},
		},
	}
}

func TestEntryPoint(t *testing.T) {
	exe := sampleExecutable(t)

	ep, err := exe.EntryPoint(Bootloader)
	require.NoError(t, err)
	require.Same(t, &exe.EntryPoints[1], ep)

	ep, err = exe.EntryPoint(Standalone)
	require.NoError(t, err)
	require.Equal(t, 0, ep.Offset)

	t.Run("first match wins", func(t *testing.T) {
		exe.EntryPoints = append(exe.EntryPoints, ExecutableEntryPoint{Offset: 3, Kind: Bootloader})
		ep, err := exe.EntryPoint(Bootloader)
		require.NoError(t, err)
		require.Equal(t, 2, ep.Offset)
	})

	t.Run("absent kind", func(t *testing.T) {
		only := &Executable{Program: exe.Program, EntryPoints: []ExecutableEntryPoint{{Kind: Bootloader}}}
		_, err := only.EntryPoint(Standalone)
		require.ErrorIs(t, err, ErrEntryPointNotFound)
		require.Contains(t, err.Error(), "entrypoint not found")
	})
}

func TestConvention(t *testing.T) {
	exe := sampleExecutable(t)

	standalone := exe.EntryPoints[0].Convention()
	require.Equal(t, Convention{BuiltinsInjected: true, EndsWithLoop: true}, standalone)
	require.Equal(t, []hints.CellRef{hints.APCell(0)}, exe.EntryPoints[0].BuiltinCells())

	bootloader := exe.EntryPoints[1].Convention()
	require.Equal(t, Convention{EndsWithReturn: true}, bootloader)
	require.Nil(t, exe.EntryPoints[1].BuiltinCells())
}

func TestIsTerminalLoop(t *testing.T) {
	exe := sampleExecutable(t)
	require.True(t, IsTerminalLoop(&exe.Program, 4))
	require.False(t, IsTerminalLoop(&exe.Program, 0))
	require.False(t, IsTerminalLoop(&exe.Program, 5))
	require.False(t, IsTerminalLoop(&exe.Program, -1))

	nonZero := NewBuilder()
	nonZero.Add(JumpRelZero, 2)
	p, err := nonZero.Build()
	require.NoError(t, err)
	require.False(t, IsTerminalLoop(p, 0))
}

func TestExecutableJSON(t *testing.T) {
	exe := sampleExecutable(t)
	data, err := json.Marshal(exe)
	require.NoError(t, err)
	require.Contains(t, string(data), `"kind":"Standalone"`)
	require.Contains(t, string(data), `"builtins":["output","range_check"]`)

	back, err := ParseExecutable(data)
	require.NoError(t, err)
	require.Equal(t, exe.EntryPoints, back.EntryPoints)
	require.Equal(t, len(exe.Program.Bytecode), len(back.Program.Bytecode))

	withData, err := ParseExecutable([]byte(`{"program":{"bytecode":["0x10780017fff7fff","0x0","-0x1","0x10000000000000000"],"hints":[]},"entrypoints":[{"builtins":[],"offset":0,"kind":"Standalone"}]}`))
	require.NoError(t, err)
	require.Equal(t, 2, withData.Program.CodeLen())

	tests := []struct {
		name string
		data string
	}{
		{"unknown kind", `{"program":{"bytecode":[],"hints":[]},"entrypoints":[{"builtins":[],"offset":0,"kind":"Kernel"}]}`},
		{"unknown builtin", `{"program":{"bytecode":["0x10780017fff7fff","0x0"],"hints":[]},"entrypoints":[{"builtins":["gpu"],"offset":0,"kind":"Bootloader"}]}`},
		{"offset on immediate", `{"program":{"bytecode":["0x10780017fff7fff","0x0"],"hints":[]},"entrypoints":[{"builtins":[],"offset":1,"kind":"Bootloader"}]}`},
		{"unknown field", `{"program":{"bytecode":[],"hints":[]},"entrypoints":[],"debug":{}}`},
		{"entrypoint in data", `{"program":{"bytecode":["0x10780017fff7fff","0x0","-0x1"],"hints":[]},"entrypoints":[{"builtins":[],"offset":2,"kind":"Standalone"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExecutable([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestBuiltinValid(t *testing.T) {
	require.True(t, BuiltinPoseidon.Valid())
	require.True(t, BuiltinGas.Valid())
	require.False(t, Builtin("gpu").Valid())
}
