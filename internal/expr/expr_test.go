package expr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawnlord/wyrmgo/internal/instruction"
	"github.com/pawnlord/wyrmgo/internal/reader"
)

func mustTable(t *testing.T) *instruction.Table {
	t.Helper()
	tbl, err := instruction.Default(instruction.Config{})
	require.NoError(t, err)
	return tbl
}

func TestBuild_flatSequence(t *testing.T) {
	tbl := mustTable(t)
	// i32.const 5; i32.const 7; i32.add; end
	r := reader.New([]byte{0x41, 5, 0x41, 7, 0x6A, 0x0B})
	e, err := Build(r, tbl)
	require.NoError(t, err)
	require.Len(t, e.Segments, 4)
	require.Equal(t, KindInstr, e.Segments[0].Kind)
	require.Equal(t, int64(5), e.Segments[0].Instr[1].Int)
	require.Equal(t, "i32.add", e.Segments[2].Instr[0].Operation.Name)
	require.Equal(t, KindOperation, e.Segments[3].Kind)
	require.Equal(t, "end", e.Segments[3].Operation.Name)
}

func TestBuild_nestedBlock(t *testing.T) {
	tbl := mustTable(t)
	// block (blocktype 0x40-equivalent void, Generic immediate is a plain byte here)
	// nop; end  <- body
	// end       <- function body terminator
	r := reader.New([]byte{
		0x02, 0x00, // block <void>
		0x01,       // nop
		0x0B,       // end (closes block)
		0x0B,       // end (closes function body)
	})
	e, err := Build(r, tbl)
	require.NoError(t, err)
	require.Len(t, e.Segments, 2)
	require.Equal(t, KindControlFlow, e.Segments[0].Kind)
	require.Equal(t, "block", e.Segments[0].Operation.Name)
	require.Equal(t, "end", e.Segments[0].End.Name)
	require.Len(t, e.Segments[0].Body.Segments, 2)
	require.Equal(t, KindOperation, e.Segments[0].Body.Segments[1].Kind)
	require.Equal(t, "end", e.Segments[0].Body.Segments[1].Operation.Name)
	require.Equal(t, KindOperation, e.Segments[1].Kind)
	require.Equal(t, "end", e.Segments[1].Operation.Name)
}

func TestBuild_brTable(t *testing.T) {
	tbl := mustTable(t)
	// br_table with 2 targets [1, 2] default 3; end
	r := reader.New([]byte{0x0E, 2, 1, 2, 3, 0x0B})
	e, err := Build(r, tbl)
	require.NoError(t, err)
	require.Len(t, e.Segments, 2)
	bt := e.Segments[0].Instr[1].BrTable
	require.Equal(t, []int64{1, 2}, bt.BreakDepths)
	require.Equal(t, int64(3), bt.Default)
}

func TestBuild_callIndirect(t *testing.T) {
	tbl := mustTable(t)
	r := reader.New([]byte{0x11, 2, 0, 0x0B})
	e, err := Build(r, tbl)
	require.NoError(t, err)
	require.Equal(t, int64(2), e.Segments[0].Instr[1].Int)
	require.Equal(t, int64(0), e.Segments[0].Instr[2].Int)
}

func TestBuild_unclosedBlockErrors(t *testing.T) {
	tbl := mustTable(t)
	r := reader.New([]byte{0x02, 0x00, 0x01})
	_, err := Build(r, tbl)
	require.Error(t, err)
}

func TestBuild_memoryOpConsumesAlignAndOffsetSeparately(t *testing.T) {
	tbl := mustTable(t)
	// i32.load align=2 offset=128 (128 needs 2 LEB128 bytes); i32.const 1; end
	r := reader.New([]byte{0x28, 2, 0x80, 0x01, 0x41, 1, 0x0B})
	e, err := Build(r, tbl)
	require.NoError(t, err)
	require.Len(t, e.Segments, 3)
	require.Equal(t, "i32.load", e.Segments[0].Instr[0].Operation.Name)
	require.Equal(t, int64(1), e.Segments[1].Instr[1].Int)
}
