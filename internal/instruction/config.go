package instruction

import (
	"embed"
	"encoding/json"
	"fmt"
)

// Config mirrors the instr_parser.json shape from the original tool: which
// opcode sections to include, and an extensions flag. New reads only Core;
// Extensions is parsed and kept but changes nothing about the table built.
// An empty Config selects DefaultCoreSections.
type Config struct {
	Extensions bool     `json:"extensions"`
	Core       []string `json:"core"`
}

// RawInstr is one JSON instruction entry: {name, opcode, signature: [in, out, constants]}.
type RawInstr struct {
	Name      string     `json:"name"`
	Opcode    int64      `json:"opcode"`
	Signature [][]string `json:"signature"`
}

// Spec is the full instr_table.json document: a map of section name to a
// map of mnemonic to RawInstr.
type Spec struct {
	Sections map[string]map[string]RawInstr
}

// UnmarshalJSON accepts the table's top-level shape directly (section name
// -> mnemonic -> RawInstr), without an extra "sections" wrapper key, to
// match the original JSON file layout.
func (s *Spec) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &s.Sections)
}

//go:embed data/instr_table.json
var embeddedSpecFS embed.FS

// LoadEmbeddedSpec parses the instruction table shipped inside the binary.
func LoadEmbeddedSpec() (*Spec, error) {
	data, err := embeddedSpecFS.ReadFile("data/instr_table.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded instruction table: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec parses an instr_table.json document from raw bytes, the path
// taken when a caller supplies their own table (then passed to New).
func ParseSpec(data []byte) (*Spec, error) {
	spec := &Spec{}
	if err := json.Unmarshal(data, spec); err != nil {
		return nil, fmt.Errorf("parse instruction table: %w", err)
	}
	return spec, nil
}

// LoadConfig parses an instr_parser.json-shaped Config document.
func LoadConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse instruction parser config: %w", err)
	}
	return cfg, nil
}
