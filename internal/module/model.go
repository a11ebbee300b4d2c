// Package module decodes a Wasm binary into an in-memory Module model:
// component D of the decompiler pipeline, driving the byte reader,
// instruction table, and expression builder to recover every section Wasm
// core 2.0 defines.
package module

import "github.com/pawnlord/wyrmgo/internal/expr"

// ValueType is a Wasm value type byte (i32/i64/f32/f64/funcref/externref/v128).
type ValueType byte

const (
	ValueTypeI32       ValueType = 0x7F
	ValueTypeI64       ValueType = 0x7E
	ValueTypeF32       ValueType = 0x7D
	ValueTypeF64       ValueType = 0x7C
	ValueTypeV128      ValueType = 0x7B
	ValueTypeFuncref   ValueType = 0x70
	ValueTypeExternref ValueType = 0x6F
)

// FunctionType is a Wasm function signature: zero or more parameter types,
// zero or more result types (multi-value, decoded without any feature-flag
// gating).
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// Index is a Wasm index-space reference (into functions, types, tables,
// memories, globals, or locals).
type Index uint32

// Limits is a resizable-entity limit pair (table or memory).
type Limits struct {
	Min uint32
	Max *uint32
}

type ImportKind int

const (
	ImportKindFunc ImportKind = iota
	ImportKindTable
	ImportKindMemory
	ImportKindGlobal
)

// Import is one entry of the import section. DescFunc/DescTable/DescMemory/
// DescGlobal hold the descriptor matching Kind; a closed variant like
// Segment in internal/expr rather than an interface hierarchy.
type Import struct {
	Module string
	Name   string
	Kind   ImportKind

	DescFunc   Index
	DescTable  TableType
	DescMemory Limits
	DescGlobal GlobalType
}

type TableType struct {
	RefType ValueType
	Limits  Limits
}

type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// Global is a module-defined (non-imported) global.
type Global struct {
	Type GlobalType
	Init *expr.Expression
}

type ExportKind = ImportKind

// Export is one entry of the export section.
type Export struct {
	Name  string
	Kind  ExportKind
	Index Index
}

// ElementMode is the closed set of element-segment modes Wasm 2.0 defines.
type ElementMode int

const (
	ElementModeActive ElementMode = iota
	ElementModePassive
	ElementModeDeclarative
)

// ElementSegment models a table element segment, normalized across all
// eight binary-format flavors (0-7) into one shape: Init always ends up as
// a decoded expr.Expression per entry (ref.func/ref.null/global.get),
// regardless of whether the source bytes were a bare function-index vector
// (flavors 0-3) or a const-expr vector (flavors 4-7).
type ElementSegment struct {
	Type       ValueType // ValueTypeFuncref or ValueTypeExternref
	Mode       ElementMode
	TableIndex Index // meaningful only when Mode == ElementModeActive
	OffsetExpr *expr.Expression // meaningful only when Mode == ElementModeActive
	Init       []*expr.Expression
}

// Function is one entry of the function section: an index into the type
// section. The parallel entry in the code section carries its locals/body.
type Function struct {
	TypeIndex Index
}

// Code is one function body, decoded from the code section.
type Code struct {
	Locals []ValueType
	Body   *expr.Expression
	// Raw holds the undecoded body bytes (after the locals vector), so a
	// WAT emitter or Earley pass can replay the original opcode stream
	// instead of re-serializing the decoded tree.
	Raw []byte
}

// DataMode mirrors ElementMode for data segments: active (copies into a
// memory at decode-known offset) or passive (left for bulk-memory
// instructions to copy at runtime; this system never runs that copy).
type DataMode int

const (
	DataModeActive DataMode = iota
	DataModePassive
)

// Data is one entry of the data section.
type Data struct {
	Mode       DataMode
	MemoryIndex Index
	OffsetExpr *expr.Expression // meaningful only when Mode == DataModeActive
	Init       []byte
}

// NameMap is an index -> name association, the shape the custom "name"
// section uses for both function names and export-local names-within-a-function.
type NameMap []NameAssoc

type NameAssoc struct {
	Index Index
	Name  string
}

// IndirectNameMap associates a function index with its own NameMap of local
// names.
type IndirectNameMap []IndirectNameAssoc

type IndirectNameAssoc struct {
	Index   Index
	NameMap NameMap
}

// NameSection is the decoded custom "name" section.
type NameSection struct {
	ModuleName    string
	FunctionNames NameMap
	LocalNames    IndirectNameMap
}

// Module is the fully decoded structure of one Wasm binary.
type Module struct {
	Types    []FunctionType
	Imports  []Import
	Funcs    []Function
	Tables   []TableType
	Memories []Limits
	Globals  []Global
	Exports  []Export
	Start    *Index
	Elements []ElementSegment
	Code     []Code
	Data     []Data
	DataCount *uint32

	NameSection *NameSection
}
