package module

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

func header() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
}

func TestDecode_invalidMagic(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3, 4, 5, 6, 7, 8}, mustTable(t))
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, ErrInvalidMagic, de.Kind)
}

func TestDecode_emptyModule(t *testing.T) {
	m, err := Decode(header(), mustTable(t))
	require.NoError(t, err)
	require.Empty(t, m.Types)
	require.Nil(t, m.Start)
}

func TestDecode_typeSection(t *testing.T) {
	data := append(header(),
		0x01,                   // section id: type
		7,                      // section size
		1,                      // one type
		0x60,                   // func tag
		2, byte(ValueTypeI32), byte(ValueTypeI64), // params
		1, byte(ValueTypeI32), // results
	)
	m, err := Decode(data, mustTable(t))
	require.NoError(t, err)
	require.Len(t, m.Types, 1)
	require.Equal(t, []ValueType{ValueTypeI32, ValueTypeI64}, m.Types[0].Params)
	require.Equal(t, []ValueType{ValueTypeI32}, m.Types[0].Results)
}

func TestDecode_startSection(t *testing.T) {
	data := append(header(),
		0x08, // start section
		1,    // size
		3,    // function index 3
	)
	m, err := Decode(data, mustTable(t))
	require.NoError(t, err)
	require.NotNil(t, m.Start)
	require.EqualValues(t, 3, *m.Start)
}

func TestDecode_customSectionSkipped(t *testing.T) {
	data := append(header(),
		0x00, // custom section
		6,    // size
		4, 'j', 'u', 'n', 'k', // name "junk" (len 4)
		0,
	)
	m, err := Decode(data, mustTable(t))
	require.NoError(t, err)
	require.Nil(t, m.NameSection)
}

func TestDecode_globalSection(t *testing.T) {
	data := append(header(),
		0x06, // global section
		6,    // size
		1,    // one global
		byte(ValueTypeI32), 0, // const i32, immutable
		0x41, 7, // i32.const 7
		0x0B, // end
	)
	m, err := Decode(data, mustTable(t))
	require.NoError(t, err)
	require.Len(t, m.Globals, 1)
	require.False(t, m.Globals[0].Type.Mutable)
	require.Len(t, m.Globals[0].Init.Segments, 2)
}

func TestDecode_elementSegment_legacy(t *testing.T) {
	data := append(header(),
		0x09, // elem section
		9,    // size
		1,    // one segment
		0,    // prefix 0 (legacy active)
		0x41, 1, 0x0B, // offset: i32.const 1; end
		3, 7, 8, 9, // init vector: 3 function indices
	)
	m, err := Decode(data, mustTable(t))
	require.NoError(t, err)
	require.Len(t, m.Elements, 1)
	seg := m.Elements[0]
	require.Equal(t, ElementModeActive, seg.Mode)
	require.Equal(t, ValueTypeFuncref, seg.Type)
	require.Len(t, seg.Init, 3)
	require.Equal(t, uint32(7), seg.Init[0].Segments[0].Instr[1].Index)
}

func TestDecode_elementSegment_passive(t *testing.T) {
	data := append(header(),
		0x09,
		6,
		1,
		1,          // prefix 1 (passive)
		0,          // elemkind funcref
		2, 11, 12, // init vector
	)
	m, err := Decode(data, mustTable(t))
	require.NoError(t, err)
	seg := m.Elements[0]
	require.Equal(t, ElementModePassive, seg.Mode)
	require.Len(t, seg.Init, 2)
}

func TestDecode_elementSegment_declarativeConstExprVector(t *testing.T) {
	data := append(header(),
		0x09,
		7,
		1,
		7,                       // prefix 7 (declarative, const-expr vector)
		byte(ValueTypeFuncref),  // explicit reftype
		1,                       // one const expr
		0xD0, byte(ValueTypeFuncref), 0x0B, // ref.null funcref; end
	)
	m, err := Decode(data, mustTable(t))
	require.NoError(t, err)
	seg := m.Elements[0]
	require.Equal(t, ElementModeDeclarative, seg.Mode)
	require.Equal(t, ValueTypeFuncref, seg.Type)
	require.Len(t, seg.Init, 1)
}

func TestDecode_elementSegment_invalidPrefix(t *testing.T) {
	data := append(header(),
		0x09,
		2,
		1,
		8, // invalid prefix (only 0-7 defined)
	)
	_, err := Decode(data, mustTable(t))
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, ErrInvalidElementKind, de.Kind)
}

func TestDecode_codeSection(t *testing.T) {
	data := append(header(),
		0x0A, // code section
		6,    // size
		1,    // one function
		4,    // body size
		0,    // no local groups
		0x41, 5, // i32.const 5
		0x0B, // end
	)
	m, err := Decode(data, mustTable(t))
	require.NoError(t, err)
	require.Len(t, m.Code, 1)
	require.Empty(t, m.Code[0].Locals)
	require.Len(t, m.Code[0].Body.Segments, 2)
	require.Equal(t, []byte{0x41, 5, 0x0B}, m.Code[0].Raw)
}
