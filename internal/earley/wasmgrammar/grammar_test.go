package wasmgrammar

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawnlord/wyrmgo/internal/instruction"
)

func mustTable(t *testing.T) *instruction.Table {
	t.Helper()
	tbl, err := instruction.Default(instruction.Config{})
	require.NoError(t, err)
	return tbl
}

func TestParse_acceptsSimpleFunctionBody(t *testing.T) {
	tbl := mustTable(t)
	// i32.const 5; i32.const 7; i32.add; end
	body := []byte{0x41, 5, 0x41, 7, 0x6A, 0x0B}
	_, ok := Parse(body, tbl)
	require.True(t, ok)
}

func TestParse_acceptsSingleNop(t *testing.T) {
	tbl := mustTable(t)
	_, ok := Parse([]byte{0x01}, tbl)
	require.True(t, ok)
}

func TestParse_rejectsUnknownOpcode(t *testing.T) {
	tbl := mustTable(t)
	_, ok := Parse([]byte{0xFF}, tbl)
	require.False(t, ok)
}

func TestParse_acceptsMemoryLoadWithAlignment(t *testing.T) {
	tbl := mustTable(t)
	// i32.load align=2 offset=0
	_, ok := Parse([]byte{0x28, 2, 0}, tbl)
	require.True(t, ok)
}
