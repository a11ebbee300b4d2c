package wat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawnlord/wyrmgo/internal/expr"
	"github.com/pawnlord/wyrmgo/internal/instruction"
	"github.com/pawnlord/wyrmgo/internal/module"
)

func mustTable(t *testing.T) *instruction.Table {
	t.Helper()
	tbl, err := instruction.Default(instruction.Config{})
	require.NoError(t, err)
	return tbl
}

func TestEmit_emptyModule(t *testing.T) {
	m := &module.Module{}
	out := Emit(m)
	require.True(t, strings.HasPrefix(out, "(module\n"))
	require.True(t, strings.HasSuffix(out, ")"))
}

func TestEmit_exportAndFunction(t *testing.T) {
	_ = mustTable(t)

	m := &module.Module{
		Types: []module.FunctionType{{Results: []module.ValueType{module.ValueTypeI32}}},
		Funcs: []module.Function{{TypeIndex: 0}},
		Code:  []module.Code{{Body: &expr.Expression{}}},
		Exports: []module.Export{
			{Name: "main", Kind: module.ImportKindFunc, Index: 0},
		},
	}
	out := Emit(m)
	require.Contains(t, out, `(export "main" (func $func0))`)
}
