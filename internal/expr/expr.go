// Package expr turns a flat Wasm opcode stream into a nested ControlFlow
// expression tree, where block/loop/if bodies are subexpressions rather
// than a jump target to resolve later. This is the shape a decompiler
// wants to walk; it is not the shape a bytecode interpreter wants to
// dispatch, which is why this does not reuse any flat-IR layout.
package expr

import (
	"fmt"

	"github.com/pawnlord/wyrmgo/internal/instruction"
	"github.com/pawnlord/wyrmgo/internal/reader"
)

// Kind tags which concrete shape a Segment holds. Segments are a closed
// variant: switch over Kind, never over a free-form string tag.
type Kind int

const (
	KindOperation Kind = iota
	KindControlFlow
	KindInt
	KindFloat32
	KindFloat64
	KindLocal
	KindGlobal
	KindFunc
	KindBrTable
	KindInstr
)

// BrTable is the decoded immediate of a br_table instruction: the depth to
// branch to for each matched label value, plus the depth used when no case
// matches.
type BrTable struct {
	BreakDepths []int64
	Default     int64
}

// Segment is one node of an expression tree. Exactly one of the typed
// fields below is meaningful, selected by Kind: a closed variant rather
// than an interface hierarchy for ten cases that never grow behavior.
type Segment struct {
	Kind Kind

	Operation instruction.Info // KindOperation, KindControlFlow (open descriptor)
	End       instruction.Info // KindControlFlow (close descriptor, e.g. "end")
	Body      *Expression      // KindControlFlow

	Int     int64   // KindInt
	Float32 float32 // KindFloat32
	Float64 float64 // KindFloat64
	Index   uint32  // KindLocal, KindGlobal, KindFunc

	BrTable BrTable // KindBrTable

	Instr []Segment // KindInstr: one opcode plus its trailing immediates, flattened
}

// Expression is an ordered sequence of top-level segments: a function body,
// or a control-flow block's body.
type Expression struct {
	Segments []Segment
}

// frame is one level of the builder's explicit nesting stack: the opener
// instruction and the Expression being built for its body. Mirrors
// file_reader.rs's read_expr scope/last_scope/expr_box bookkeeping with an
// explicit stack instead of two loose variables, since Go has no implicit
// move semantics to lean on there.
type frame struct {
	opener   instruction.Info
	segments []Segment
}

// Build consumes r until a matching top-level "end" (or the stream runs
// out), producing the nested Expression. The frame stack tracks nested
// block/loop/if scopes the way file_reader.rs's `level` counter does: an
// "end" seen with the stack empty terminates this call without being
// wrapped in a ControlFlow node, since it closes the expression itself (a
// function body, not a nested block).
func Build(r *reader.Reader, table *instruction.Table) (*Expression, error) {
	var stack []frame
	cur := frame{}

	for r.Len() > 0 {
		opcodeByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read opcode: %w", err)
		}

		info, ok := table.Get(opcodeByte)
		if !ok {
			return nil, fmt.Errorf("unsupported opcode %#x", opcodeByte)
		}

		special := instruction.EdgeCase(opcodeByte)

		switch special {
		case instruction.BrTable:
			seg, err := readBrTable(r, info)
			if err != nil {
				return nil, err
			}
			cur.segments = append(cur.segments, seg)
			continue

		case instruction.CallIndirect:
			seg, err := readCallIndirect(r, info)
			if err != nil {
				return nil, err
			}
			cur.segments = append(cur.segments, seg)
			continue
		}

		instrLayout := []Segment{{Kind: KindOperation, Operation: info}}

		if info.TakesAlign {
			// memarg: align hint then byte offset, each its own LEB128 u32;
			// neither is kept on the tree since a decompiler cares about the
			// address expression on the stack, not the access's alignment hint.
			if _, err := r.ReadULEB32(); err != nil {
				return nil, fmt.Errorf("read alignment immediate for %s: %w", info.Name, err)
			}
			if _, err := r.ReadULEB32(); err != nil {
				return nil, fmt.Errorf("read offset immediate for %s: %w", info.Name, err)
			}
		}

		for _, constant := range info.Constants {
			seg, err := readConstant(r, constant)
			if err != nil {
				return nil, fmt.Errorf("read immediate for %s: %w", info.Name, err)
			}
			if seg != nil {
				instrLayout = append(instrLayout, *seg)
			}
		}

		switch special {
		case instruction.BeginBlock:
			stack = append(stack, cur)
			cur = frame{opener: info}
			continue

		case instruction.EndBlock:
			cur.segments = append(cur.segments, Segment{Kind: KindOperation, Operation: info})
			if len(stack) == 0 {
				// Closes the expression itself (function body, init expr):
				// not wrapped in a ControlFlow node.
				return &Expression{Segments: cur.segments}, nil
			}
			body := &Expression{Segments: cur.segments}
			parent := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent.segments = append(parent.segments, Segment{
				Kind:      KindControlFlow,
				Operation: cur.opener,
				End:       info,
				Body:      body,
			})
			cur = parent
			continue
		}

		cur.segments = append(cur.segments, Segment{Kind: KindInstr, Instr: instrLayout})
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("unexpected end of expression: %d unclosed block(s)", len(stack))
	}
	return &Expression{Segments: cur.segments}, nil
}

func readBrTable(r *reader.Reader, info instruction.Info) (Segment, error) {
	n, err := r.ReadULEB32()
	if err != nil {
		return Segment{}, fmt.Errorf("read br_table label count: %w", err)
	}
	depths := make([]int64, 0, n)
	for i := uint32(0); i < n; i++ {
		d, err := r.ReadULEB32()
		if err != nil {
			return Segment{}, fmt.Errorf("read br_table label %d: %w", i, err)
		}
		depths = append(depths, int64(d))
	}
	def, err := r.ReadULEB32()
	if err != nil {
		return Segment{}, fmt.Errorf("read br_table default label: %w", err)
	}
	return Segment{
		Kind: KindInstr,
		Instr: []Segment{
			{Kind: KindOperation, Operation: info},
			{Kind: KindBrTable, BrTable: BrTable{BreakDepths: depths, Default: int64(def)}},
		},
	}, nil
}

func readCallIndirect(r *reader.Reader, info instruction.Info) (Segment, error) {
	typeIdx, err := r.ReadSLEB32()
	if err != nil {
		return Segment{}, fmt.Errorf("read call_indirect type index: %w", err)
	}
	tableIdx, err := r.ReadSLEB32()
	if err != nil {
		return Segment{}, fmt.Errorf("read call_indirect table index: %w", err)
	}
	return Segment{
		Kind: KindInstr,
		Instr: []Segment{
			{Kind: KindOperation, Operation: info},
			{Kind: KindInt, Int: int64(typeIdx)},
			{Kind: KindInt, Int: int64(tableIdx)},
		},
	}, nil
}

// readConstant reads one trailing immediate value per its declared
// primitive shape. A nil Segment with a nil error means "void immediate
// consumed, nothing to keep" (e.g. a reserved memory.size/memory.grow byte).
func readConstant(r *reader.Reader, p instruction.Prim) (*Segment, error) {
	switch p {
	case instruction.F32:
		b, err := r.ReadFixed(4)
		if err != nil {
			return nil, err
		}
		return &Segment{Kind: KindFloat32, Float32: decodeF32(b)}, nil
	case instruction.F64:
		b, err := r.ReadFixed(8)
		if err != nil {
			return nil, err
		}
		return &Segment{Kind: KindFloat64, Float64: decodeF64(b)}, nil
	case instruction.Local:
		n, err := r.ReadULEB32()
		if err != nil {
			return nil, err
		}
		return &Segment{Kind: KindLocal, Index: n}, nil
	case instruction.Global:
		n, err := r.ReadULEB32()
		if err != nil {
			return nil, err
		}
		return &Segment{Kind: KindGlobal, Index: n}, nil
	case instruction.Func:
		n, err := r.ReadULEB32()
		if err != nil {
			return nil, err
		}
		return &Segment{Kind: KindFunc, Index: n}, nil
	case instruction.Void:
		if _, err := r.ReadByte(); err != nil {
			return nil, err
		}
		return nil, nil
	default:
		// I32, I64, Generic (e.g. br's label depth, block's type immediate):
		// a plain signed number.
		n, err := r.ReadSLEB64()
		if err != nil {
			return nil, err
		}
		return &Segment{Kind: KindInt, Int: n}, nil
	}
}
