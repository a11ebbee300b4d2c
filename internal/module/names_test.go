package module

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawnlord/wyrmgo/internal/reader"
)

func buildNameSectionBytes(moduleName string, fnNames NameMap, localNames IndirectNameMap) []byte {
	var out []byte
	if moduleName != "" {
		payload := append([]byte{byte(len(moduleName))}, []byte(moduleName)...)
		out = append(out, subsectionIDModuleName, byte(len(payload)))
		out = append(out, payload...)
	}
	if len(fnNames) > 0 {
		var payload []byte
		payload = append(payload, byte(len(fnNames)))
		for _, a := range fnNames {
			payload = append(payload, byte(a.Index), byte(len(a.Name)))
			payload = append(payload, []byte(a.Name)...)
		}
		out = append(out, subsectionIDFunctionNames, byte(len(payload)))
		out = append(out, payload...)
	}
	return out
}

func TestDecodeNameSection_moduleAndFunctionNames(t *testing.T) {
	data := buildNameSectionBytes("simple", NameMap{
		{Index: 0, Name: "wasi.hello"},
	}, nil)

	d := &decoder{}
	r := reader.New(data)
	ns, err := d.decodeNameSection(r)
	require.NoError(t, err)
	require.Equal(t, "simple", ns.ModuleName)
	require.Equal(t, NameMap{{Index: 0, Name: "wasi.hello"}}, ns.FunctionNames)
}

func TestDecodeNameSection_unknownSubsectionSkipped(t *testing.T) {
	data := []byte{4, 2, 0xAA, 0xBB} // unknown subsection id 4, size 2, two junk bytes
	d := &decoder{}
	r := reader.New(data)
	ns, err := d.decodeNameSection(r)
	require.NoError(t, err)
	require.Empty(t, ns.ModuleName)
}
