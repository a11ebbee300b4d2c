// Package instruction holds the static, 256-entry opcode descriptor table
// the expression builder and module decoder both read from: one Info
// per possible opcode byte, describing its name, operand/result shape, and
// trailing-immediate constants.
package instruction

import (
	"fmt"

	"github.com/pawnlord/wyrmgo/internal/log"
)

// Prim is the primitive operand/result kind an instruction consumes or
// produces. It deliberately does not distinguish signedness; that lives in
// the opcode name (i32.lt_s vs i32.lt_u), not the type lattice.
type Prim int

const (
	Void Prim = iota
	I32
	I64
	F32
	F64
	Local
	Global
	Generic
	Func
)

func (p Prim) String() string {
	switch p {
	case Void:
		return "Void"
	case I32:
		return "I32"
	case I64:
		return "I64"
	case F32:
		return "F32"
	case F64:
		return "F64"
	case Local:
		return "Local"
	case Global:
		return "Global"
	case Generic:
		return "Generic"
	case Func:
		return "Func"
	default:
		return fmt.Sprintf("Prim(%d)", int(p))
	}
}

// Info describes one opcode: its mnemonic, the stack shape it expects and
// leaves behind, and the trailing immediates it reads (Constants), in the
// order they appear in the instruction stream.
type Info struct {
	Opcode      byte
	Name        string
	InTypes     []Prim
	OutTypes    []Prim
	Constants   []Prim
	TakesAlign  bool
}

// IsDefined reports whether this opcode byte has a known descriptor. Unused
// table slots carry a zero Info with an empty Name.
func (i Info) IsDefined() bool { return i.Name != "" }

// SpecialCase classifies the handful of opcodes the expression builder must
// treat structurally rather than as a flat operation: they change how many
// trailing bytes/sub-expressions follow, or how the builder's scope stack
// moves.
type SpecialCase int

const (
	None SpecialCase = iota
	BrTable
	BeginBlock
	EndBlock
	CallIndirect
)

// Opcode bytes for the handful of instructions the expression builder must
// single out structurally.
const (
	OpcodeBlock       = 0x02
	OpcodeLoop        = 0x03
	OpcodeIf          = 0x04
	OpcodeElse        = 0x05
	OpcodeEnd         = 0x0B
	OpcodeBr          = 0x0C
	OpcodeBrIf        = 0x0D
	OpcodeBrTable     = 0x0E
	OpcodeCall        = 0x10
	OpcodeCallIndirect = 0x11
	OpcodeRefFunc     = 0xD2
	OpcodeMemorySize  = 0x3F
	OpcodeMemoryGrow  = 0x40
)

// EdgeCase classifies opcode per the control-flow/special-immediate cases
// the expression builder branches on.
func EdgeCase(opcode byte) SpecialCase {
	switch opcode {
	case OpcodeBrTable:
		return BrTable
	case OpcodeBlock, OpcodeLoop, OpcodeIf:
		return BeginBlock
	case OpcodeEnd:
		return EndBlock
	case OpcodeCallIndirect:
		return CallIndirect
	default:
		return None
	}
}

// Table is a dense, 256-entry opcode descriptor catalogue. Index i holds the
// descriptor for opcode byte i; undefined opcodes hold a zero Info.
type Table struct {
	entries [256]Info
}

// Get returns the descriptor for opcode, and whether one was registered.
func (t *Table) Get(opcode byte) (Info, bool) {
	e := t.entries[opcode]
	return e, e.IsDefined()
}

// Lookup is a convenience used by the module decoder and tests: find a
// descriptor by mnemonic. Linear; the table is at most 256 entries.
func (t *Table) Lookup(name string) (Info, bool) {
	for _, e := range t.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Info{}, false
}

// All returns every defined descriptor, in opcode order. Used by the
// Earley grammar builder to generate one INSTR alternative per opcode.
func (t *Table) All() []Info {
	out := make([]Info, 0, len(t.entries))
	for _, e := range t.entries {
		if e.IsDefined() {
			out = append(out, e)
		}
	}
	return out
}

// Set installs info at info.Opcode, overwriting any existing entry. Used by
// table construction (New/Default).
func (t *Table) Set(info Info) {
	t.entries[info.Opcode] = info
}

// Default builds a Table from the embedded core opcode set shipped with
// this module, honoring cfg's Core section selection.
func Default(cfg Config) (*Table, error) {
	spec, err := LoadEmbeddedSpec()
	if err != nil {
		return nil, err
	}
	return New(spec, cfg)
}

// New builds a Table from an explicit Spec and Config: sections named in
// cfg.Core are loaded in order, falling back to DefaultCoreSections when
// none are named.
func New(spec *Spec, cfg Config) (*Table, error) {
	sections := cfg.Core
	if len(sections) == 0 {
		sections = DefaultCoreSections()
	}

	t := &Table{}
	seen := map[int64]bool{}
	for _, secName := range sections {
		sec, ok := spec.Sections[secName]
		if !ok {
			continue
		}
		for mnemonic, raw := range sec {
			if len(raw.Signature) != 3 {
				return nil, fmt.Errorf("instruction %q: signature must have 3 elements (in, out, constants), got %d", mnemonic, len(raw.Signature))
			}
			in, err := parseTypes(raw.Signature[0])
			if err != nil {
				return nil, fmt.Errorf("instruction %q: in_types: %w", mnemonic, err)
			}
			out, err := parseTypes(raw.Signature[1])
			if err != nil {
				return nil, fmt.Errorf("instruction %q: out_types: %w", mnemonic, err)
			}
			consts, err := parseTypes(raw.Signature[2])
			if err != nil {
				return nil, fmt.Errorf("instruction %q: constants: %w", mnemonic, err)
			}
			info := Info{
				Opcode:     byte(raw.Opcode),
				Name:       raw.Name,
				InTypes:    in,
				OutTypes:   out,
				Constants:  consts,
				TakesAlign: takesAlign(byte(raw.Opcode)),
			}
			t.Set(info)
			seen[raw.Opcode] = true
		}
	}
	if len(t.All()) == 0 {
		log.L().Warn("instruction table loaded with zero instructions; every opcode lookup will fail")
	}
	return t, nil
}

// takesAlign reports whether opcode is a memory load/store that carries an
// alignment hint (a LEB128 u32) ahead of its offset immediate; every other opcode
// never has one, regardless of what its Constants say.
func takesAlign(opcode byte) bool {
	return (opcode >= 0x28 && opcode <= 0x35) || (opcode >= 0x36 && opcode <= 0x3E)
}

func parseTypes(names []string) ([]Prim, error) {
	out := make([]Prim, 0, len(names))
	for _, n := range names {
		p, err := parsePrim(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parsePrim(name string) (Prim, error) {
	switch name {
	case "Void":
		return Void, nil
	case "I32":
		return I32, nil
	case "I64":
		return I64, nil
	case "F32":
		return F32, nil
	case "F64":
		return F64, nil
	case "Local":
		return Local, nil
	case "Global":
		return Global, nil
	case "Generic":
		return Generic, nil
	case "Func":
		return Func, nil
	default:
		return 0, fmt.Errorf("unknown primitive type %q", name)
	}
}

// DefaultCoreSections lists every section the embedded instruction table
// ships, in the order Default loads them when Config.Core is empty.
func DefaultCoreSections() []string {
	return []string{
		"CONTROL_OPCODE",
		"MISC_OPCODE",
		"LOAD_MEM_OPCODE",
		"STORE_MEM_OPCODE",
		"MISC_MEM_OPCODE",
		"SIMPLE_EXTENDED_CONST_OPCODE",
		"SIMPLE_NON_CONST_OPCODE",
		"ASMJS_COMPAT_OPCODE",
	}
}
