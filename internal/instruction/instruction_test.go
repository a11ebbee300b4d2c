package instruction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	table, err := Default(Config{})
	require.NoError(t, err)

	i32const, ok := table.Get(0x41)
	require.True(t, ok)
	require.Equal(t, "i32.const", i32const.Name)
	require.Equal(t, []Prim{I32}, i32const.Constants)

	end, ok := table.Get(0x0B)
	require.True(t, ok)
	require.Equal(t, "end", end.Name)

	_, ok = table.Get(0xFF)
	require.False(t, ok)
}

func TestEdgeCase(t *testing.T) {
	require.Equal(t, BrTable, EdgeCase(OpcodeBrTable))
	require.Equal(t, BeginBlock, EdgeCase(OpcodeBlock))
	require.Equal(t, BeginBlock, EdgeCase(OpcodeLoop))
	require.Equal(t, BeginBlock, EdgeCase(OpcodeIf))
	require.Equal(t, EndBlock, EdgeCase(OpcodeEnd))
	require.Equal(t, CallIndirect, EdgeCase(OpcodeCallIndirect))
	require.Equal(t, None, EdgeCase(0x01))
}

func TestTakesAlign(t *testing.T) {
	table, err := Default(Config{})
	require.NoError(t, err)

	load, ok := table.Get(0x28)
	require.True(t, ok)
	require.True(t, load.TakesAlign)

	store, ok := table.Get(0x36)
	require.True(t, ok)
	require.True(t, store.TakesAlign)

	nop, ok := table.Get(0x01)
	require.True(t, ok)
	require.False(t, nop.TakesAlign)
}

func TestConfigSelectsSubsetOfSections(t *testing.T) {
	spec, err := LoadEmbeddedSpec()
	require.NoError(t, err)

	table, err := New(spec, Config{Core: []string{"CONTROL_OPCODE"}})
	require.NoError(t, err)

	_, ok := table.Get(0x00) // unreachable, in CONTROL_OPCODE
	require.True(t, ok)

	_, ok = table.Get(0x41) // i32.const, in SIMPLE_EXTENDED_CONST_OPCODE, excluded here
	require.False(t, ok)
}

func TestLookupByName(t *testing.T) {
	table, err := Default(Config{})
	require.NoError(t, err)

	info, ok := table.Lookup("call_indirect")
	require.True(t, ok)
	require.EqualValues(t, OpcodeCallIndirect, info.Opcode)

	_, ok = table.Lookup("does.not.exist")
	require.False(t, ok)
}
