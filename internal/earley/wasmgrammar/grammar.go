// Package wasmgrammar wires the generic Earley recognizer in internal/earley
// to a concrete grammar whose terminals are raw input bytes and whose
// nonterminals describe Wasm's instruction/immediate shape: an opcode byte
// followed by zero or more LEB128/fixed-width immediates, grouped the way
// the instruction table already classifies them.
package wasmgrammar

import (
	"fmt"

	"github.com/pawnlord/wyrmgo/internal/earley"
	"github.com/pawnlord/wyrmgo/internal/instruction"
)

// Sym is this grammar's symbol type: either a named nonterminal or a
// literal byte value the scanner must match against the input.
type Sym struct {
	isTerm bool
	name   string
	b      byte
}

func (s Sym) String() string {
	if s.isTerm {
		return fmt.Sprintf("0x%02x", s.b)
	}
	return s.name
}

func nonterm(name string) Sym { return Sym{name: name} }
func byteTerm(b byte) Sym     { return Sym{isTerm: true, b: b} }

// ByteSymbols converts a raw byte slice into the terminal alphabet Parse
// expects, one symbol per byte.
func ByteSymbols(data []byte) []Sym {
	out := make([]Sym, len(data))
	for i, b := range data {
		out[i] = byteTerm(b)
	}
	return out
}

const (
	nStart      = "START"
	nStmts      = "STMTS"
	nStmt       = "STMT"
	nInstr      = "INSTR"
	nTermVoid   = "TERM_VOID"
	nTermI32    = "TERM_I32"
	nTermI64    = "TERM_I64"
	nTermF32    = "TERM_F32"
	nTermF64    = "TERM_F64"
	nTermLocal  = "TERM_LOCAL"
	nTermGlobal = "TERM_GLOBAL"
	nTermGeneric = "TERM_GENERIC"
	nTermFunc   = "TERM_FUNC"
	nQWord      = "QWORD"
	nDWord      = "DWORD"
	nByte       = "BYTE"
	nLeb128     = "LEB128"
	nLowByte    = "LOW_BYTE"
	nHighByte   = "HIGH_BYTE"
)

func primSym(p instruction.Prim) Sym {
	switch p {
	case instruction.Void:
		return nonterm(nTermVoid)
	case instruction.I32:
		return nonterm(nTermI32)
	case instruction.I64:
		return nonterm(nTermI64)
	case instruction.F32:
		return nonterm(nTermF32)
	case instruction.F64:
		return nonterm(nTermF64)
	case instruction.Local:
		return nonterm(nTermLocal)
	case instruction.Global:
		return nonterm(nTermGlobal)
	case instruction.Func:
		return nonterm(nTermFunc)
	default: // Generic
		return nonterm(nTermGeneric)
	}
}

// Build constructs the grammar over table: one INSTR alternative per
// defined opcode, its shape (a two-LEB128 memarg for TakesAlign opcodes,
// then each Constant) read off the same descriptor the expression builder
// (component C) uses. br_table and call_indirect are no exception: their
// alternatives follow their table Constants (one Generic immediate each),
// not the label vector and default, or the type and table indices, that
// the expression builder reads for them.
func Build(table *instruction.Table) *earley.Grammar[Sym] {
	var rules []earley.Rule[Sym]

	rules = append(rules,
		earley.Rule[Sym]{LHS: nonterm(nStart), Alternatives: [][]Sym{{nonterm(nStmts)}}},
		earley.Rule[Sym]{LHS: nonterm(nStmts), Alternatives: [][]Sym{
			{nonterm(nStmt)},
			{nonterm(nStmts), nonterm(nStmt)},
		}},
		earley.Rule[Sym]{LHS: nonterm(nStmt), Alternatives: [][]Sym{{nonterm(nInstr)}}},
	)

	instrAlts := make([][]Sym, 0, 256)
	for _, info := range table.All() {
		seq := []Sym{byteTerm(info.Opcode)}
		if info.TakesAlign {
			// memarg: align hint, then byte offset, each a LEB128 u32.
			seq = append(seq, nonterm(nLeb128), nonterm(nLeb128))
		}
		for _, c := range info.Constants {
			seq = append(seq, primSym(c))
		}
		instrAlts = append(instrAlts, seq)
	}
	rules = append(rules, earley.Rule[Sym]{LHS: nonterm(nInstr), Alternatives: instrAlts})

	rules = append(rules,
		earley.Rule[Sym]{LHS: nonterm(nTermVoid), Alternatives: [][]Sym{{nonterm(nByte)}}},
		earley.Rule[Sym]{LHS: nonterm(nTermI32), Alternatives: [][]Sym{{nonterm(nLeb128)}}},
		earley.Rule[Sym]{LHS: nonterm(nTermI64), Alternatives: [][]Sym{{nonterm(nLeb128)}}},
		earley.Rule[Sym]{LHS: nonterm(nTermF32), Alternatives: [][]Sym{{nonterm(nDWord)}}},
		earley.Rule[Sym]{LHS: nonterm(nTermF64), Alternatives: [][]Sym{{nonterm(nQWord)}}},
		earley.Rule[Sym]{LHS: nonterm(nTermLocal), Alternatives: [][]Sym{{nonterm(nLeb128)}}},
		earley.Rule[Sym]{LHS: nonterm(nTermGlobal), Alternatives: [][]Sym{{nonterm(nLeb128)}}},
		earley.Rule[Sym]{LHS: nonterm(nTermGeneric), Alternatives: [][]Sym{{nonterm(nLeb128)}}},
		earley.Rule[Sym]{LHS: nonterm(nTermFunc), Alternatives: [][]Sym{{nonterm(nLeb128)}}},
		earley.Rule[Sym]{LHS: nonterm(nQWord), Alternatives: [][]Sym{{
			nonterm(nByte), nonterm(nByte), nonterm(nByte), nonterm(nByte),
			nonterm(nByte), nonterm(nByte), nonterm(nByte), nonterm(nByte),
		}}},
		earley.Rule[Sym]{LHS: nonterm(nDWord), Alternatives: [][]Sym{{
			nonterm(nByte), nonterm(nByte), nonterm(nByte), nonterm(nByte),
		}}},
		earley.Rule[Sym]{LHS: nonterm(nLeb128), Alternatives: [][]Sym{
			{nonterm(nHighByte), nonterm(nLeb128)},
			{nonterm(nLowByte)},
		}},
	)

	byteAlts := make([][]Sym, 0, 256)
	lowAlts := make([][]Sym, 0, 128)
	highAlts := make([][]Sym, 0, 128)
	for b := 0; b < 256; b++ {
		byteAlts = append(byteAlts, []Sym{byteTerm(byte(b))})
		if b&0x80 == 0 {
			lowAlts = append(lowAlts, []Sym{byteTerm(byte(b))})
		} else {
			highAlts = append(highAlts, []Sym{byteTerm(byte(b))})
		}
	}
	rules = append(rules,
		earley.Rule[Sym]{LHS: nonterm(nByte), Alternatives: byteAlts},
		earley.Rule[Sym]{LHS: nonterm(nLowByte), Alternatives: lowAlts},
		earley.Rule[Sym]{LHS: nonterm(nHighByte), Alternatives: highAlts},
	)

	return earley.New(nonterm(nStart), rules)
}

// Parse recognizes data (a flat opcode/immediate byte stream, e.g. a
// function body's raw bytes) against Build(table)'s grammar.
func Parse(data []byte, table *instruction.Table) (*earley.Result[Sym], bool) {
	return earley.Parse(Build(table), ByteSymbols(data))
}
