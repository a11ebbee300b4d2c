// Package wat renders a decoded module.Module as WebAssembly text format.
// This sits outside the decompiler core's own subject matter, but is
// implemented anyway for completeness: everything this module decodes, it
// can also show back to a human.
//
// It does not parse WAT back into a binary module; reassembly is out of
// scope.
package wat

import (
	"fmt"
	"strings"

	"github.com/pawnlord/wyrmgo/internal/expr"
	"github.com/pawnlord/wyrmgo/internal/module"
)

func typeToStr(vt module.ValueType) string {
	switch vt {
	case module.ValueTypeI32:
		return "i32"
	case module.ValueTypeI64:
		return "i64"
	case module.ValueTypeF32:
		return "f32"
	case module.ValueTypeF64:
		return "f64"
	case module.ValueTypeV128:
		return "v128"
	case module.ValueTypeFuncref:
		return "funcref"
	case module.ValueTypeExternref:
		return "externref"
	default:
		return "unknown"
	}
}

func indent(s string, depth int) string {
	pad := strings.Repeat("  ", depth)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n") + "\n"
}

func sigToWat(sig module.FunctionType) string {
	var b strings.Builder
	for i, p := range sig.Params {
		fmt.Fprintf(&b, "(param $var%d %s)", i, typeToStr(p))
		if i != len(sig.Params)-1 {
			b.WriteByte(' ')
		}
	}
	if len(sig.Results) > 0 {
		if len(sig.Params) > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("(result ")
		for i, r := range sig.Results {
			b.WriteString(typeToStr(r))
			if i != len(sig.Results)-1 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte(')')
	}
	return b.String()
}

func importKindName(k module.ImportKind) string {
	switch k {
	case module.ImportKindFunc:
		return "func"
	case module.ImportKindTable:
		return "table"
	case module.ImportKindMemory:
		return "memory"
	case module.ImportKindGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Emit renders m as a single "(module ...)" s-expression.
func Emit(m *module.Module) string {
	var b strings.Builder
	b.WriteString("(module\n")

	for i, imp := range m.Imports {
		kind := importKindName(imp.Kind)
		b.WriteString(indent(fmt.Sprintf("(%s $%s%d (import %q %q))", kind, kind, i, imp.Module, imp.Name), 1))
	}

	for i, t := range m.Tables {
		max := "0"
		if t.Limits.Max != nil {
			max = fmt.Sprintf("%d", *t.Limits.Max)
		}
		b.WriteString(indent(fmt.Sprintf("(table $table%d %d %s %s)", i, t.Limits.Min, max, typeToStr(t.RefType)), 1))
	}

	for i, mem := range m.Memories {
		max := ""
		if mem.Max != nil {
			max = fmt.Sprintf(" %d", *mem.Max)
		}
		b.WriteString(indent(fmt.Sprintf("(memory $memory%d %d%s)", i, mem.Min, max), 1))
	}

	for i, g := range m.Globals {
		mut := typeToStr(g.Type.ValType)
		if g.Type.Mutable {
			mut = fmt.Sprintf("(mut %s)", mut)
		}
		b.WriteString(indent(fmt.Sprintf("(global $global%d %s %s)", i, mut, emitExpression(g.Init)), 1))
	}

	for _, e := range m.Exports {
		kind := importKindName(e.Kind)
		b.WriteString(indent(fmt.Sprintf("(export %q (%s $%s%d))", e.Name, kind, kind, e.Index), 1))
	}

	if m.Start != nil {
		b.WriteString(indent(fmt.Sprintf("(start $func%d)", *m.Start), 1))
	}

	for i, el := range m.Elements {
		reftype := typeToStr(el.Type)
		inits := make([]string, 0, len(el.Init))
		for _, ie := range el.Init {
			inits = append(inits, emitExpression(ie))
		}
		initStr := strings.Join(inits, " ")
		switch el.Mode {
		case module.ElementModeActive:
			b.WriteString(indent(fmt.Sprintf("(elem $elem%d (table $table%d) %s %s %s)", i, el.TableIndex, emitExpression(el.OffsetExpr), reftype, initStr), 1))
		case module.ElementModePassive:
			b.WriteString(indent(fmt.Sprintf("(elem $elem%d %s %s)", i, reftype, initStr), 1))
		case module.ElementModeDeclarative:
			b.WriteString(indent(fmt.Sprintf("(elem $elem%d declare %s %s)", i, reftype, initStr), 1))
		}
	}

	for i, code := range m.Code {
		var sig module.FunctionType
		if i < len(m.Funcs) && int(m.Funcs[i].TypeIndex) < len(m.Types) {
			sig = m.Types[m.Funcs[i].TypeIndex]
		}
		b.WriteString(indent(fmt.Sprintf("(func $func%d %s", i, sigToWat(sig)), 1))
		locals := make([]string, 0, len(code.Locals))
		for j, l := range code.Locals {
			locals = append(locals, fmt.Sprintf("(local $var%d %s)", j+len(sig.Params), typeToStr(l)))
		}
		if len(locals) > 0 {
			b.WriteString(indent(strings.Join(locals, " "), 2))
		}
		b.WriteString(indent(emitBlockBody(code.Body), 2))
		b.WriteString(indent(")", 1))
	}

	for i, d := range m.Data {
		switch d.Mode {
		case module.DataModeActive:
			b.WriteString(indent(fmt.Sprintf("(data $data%d %s %q)", i, emitExpression(d.OffsetExpr), string(d.Init)), 1))
		case module.DataModePassive:
			b.WriteString(indent(fmt.Sprintf("(data $data%d %q)", i, string(d.Init)), 1))
		}
	}

	b.WriteString(")")
	return b.String()
}

// trimTerminator drops the trailing Operation(end) Build leaves on every
// expression and block body it closes; WAT renders a body's extent with
// nesting and parens (and a block's close through its ControlFlow End), so
// that terminator has no textual counterpart here.
func trimTerminator(segs []expr.Segment) []expr.Segment {
	if n := len(segs); n > 0 && segs[n-1].Kind == expr.KindOperation && segs[n-1].Operation.Name == "end" {
		return segs[:n-1]
	}
	return segs
}

func emitExpression(e *expr.Expression) string {
	if e == nil {
		return ""
	}
	segs := trimTerminator(e.Segments)
	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		parts = append(parts, emitSegment(seg, 0))
	}
	return strings.Join(parts, " ")
}

func emitBlockBody(e *expr.Expression) string {
	if e == nil {
		return ""
	}
	segs := trimTerminator(e.Segments)
	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		parts = append(parts, emitSegment(seg, 0))
	}
	return strings.Join(parts, "\n")
}

func emitSegment(seg expr.Segment, label int) string {
	switch seg.Kind {
	case expr.KindOperation:
		return seg.Operation.Name
	case expr.KindInt:
		return fmt.Sprintf("%d", seg.Int)
	case expr.KindFloat32:
		return fmt.Sprintf("%g", seg.Float32)
	case expr.KindFloat64:
		return fmt.Sprintf("%g", seg.Float64)
	case expr.KindLocal:
		return fmt.Sprintf("$var%d", seg.Index)
	case expr.KindGlobal:
		return fmt.Sprintf("$global%d", seg.Index)
	case expr.KindFunc:
		return fmt.Sprintf("$func%d", seg.Index)
	case expr.KindBrTable:
		depths := make([]string, 0, len(seg.BrTable.BreakDepths))
		for _, d := range seg.BrTable.BreakDepths {
			depths = append(depths, fmt.Sprintf("%d", d))
		}
		return strings.Join(depths, " ") + fmt.Sprintf(" %d", seg.BrTable.Default)
	case expr.KindControlFlow:
		body := trimTerminator(seg.Body.Segments)
		inner := make([]string, 0, len(body))
		for _, s := range body {
			inner = append(inner, emitSegment(s, label+1))
		}
		return fmt.Sprintf("%s $label%d\n%s\n%s $label%d", seg.Operation.Name, label,
			indent(strings.Join(inner, "\n"), 1), seg.End.Name, label)
	case expr.KindInstr:
		parts := make([]string, 0, len(seg.Instr))
		for _, s := range seg.Instr {
			parts = append(parts, emitSegment(s, label))
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}
