package module

import (
	"fmt"

	"github.com/pawnlord/wyrmgo/internal/expr"
	"github.com/pawnlord/wyrmgo/internal/reader"
)

// decodeElementSection reads the "elem" section, dispatching each segment
// through decodeElementSegment. Flavors 0-7 are all binary-format variants
// of the same logical content (what table, what offset if active, what
// references to install); decodeElementSegment normalizes all of them into
// the one ElementSegment shape so nothing downstream needs to know which
// prefix byte the source used.
func (d *decoder) decodeElementSection(r *reader.Reader) ([]ElementSegment, error) {
	return reader.ReadVector(r, d.decodeElementSegment)
}

func (d *decoder) decodeElementSegment(r *reader.Reader) (ElementSegment, error) {
	prefix, err := r.ReadULEB32()
	if err != nil {
		return ElementSegment{}, fmt.Errorf("read element segment prefix: %w", err)
	}

	switch prefix {
	case 0: // legacy active, table 0, function-index vector
		offset, err := expr.Build(r, d.table)
		if err != nil {
			return ElementSegment{}, fmt.Errorf("read offset expr: %w", err)
		}
		init, err := d.decodeFuncIndexVector(r)
		if err != nil {
			return ElementSegment{}, err
		}
		return ElementSegment{Type: ValueTypeFuncref, Mode: ElementModeActive, OffsetExpr: offset, Init: init}, nil

	case 1: // passive, function-index vector
		if err := d.consumeElemKindFuncref(r); err != nil {
			return ElementSegment{}, err
		}
		init, err := d.decodeFuncIndexVector(r)
		if err != nil {
			return ElementSegment{}, err
		}
		return ElementSegment{Type: ValueTypeFuncref, Mode: ElementModePassive, Init: init}, nil

	case 2: // active, explicit table index, function-index vector
		tableIdx, err := r.ReadULEB32()
		if err != nil {
			return ElementSegment{}, err
		}
		offset, err := expr.Build(r, d.table)
		if err != nil {
			return ElementSegment{}, fmt.Errorf("read offset expr: %w", err)
		}
		if err := d.consumeElemKindFuncref(r); err != nil {
			return ElementSegment{}, err
		}
		init, err := d.decodeFuncIndexVector(r)
		if err != nil {
			return ElementSegment{}, err
		}
		return ElementSegment{
			Type: ValueTypeFuncref, Mode: ElementModeActive,
			TableIndex: Index(tableIdx), OffsetExpr: offset, Init: init,
		}, nil

	case 3: // declarative, function-index vector
		if err := d.consumeElemKindFuncref(r); err != nil {
			return ElementSegment{}, err
		}
		init, err := d.decodeFuncIndexVector(r)
		if err != nil {
			return ElementSegment{}, err
		}
		return ElementSegment{Type: ValueTypeFuncref, Mode: ElementModeDeclarative, Init: init}, nil

	case 4: // active, table 0, const-expr vector
		offset, err := expr.Build(r, d.table)
		if err != nil {
			return ElementSegment{}, fmt.Errorf("read offset expr: %w", err)
		}
		init, err := d.decodeConstExprVector(r)
		if err != nil {
			return ElementSegment{}, err
		}
		return ElementSegment{Type: ValueTypeFuncref, Mode: ElementModeActive, OffsetExpr: offset, Init: init}, nil

	case 5: // passive, const-expr vector, explicit reftype
		reftype, err := readElementRefType(r)
		if err != nil {
			return ElementSegment{}, err
		}
		init, err := d.decodeConstExprVector(r)
		if err != nil {
			return ElementSegment{}, err
		}
		return ElementSegment{Type: reftype, Mode: ElementModePassive, Init: init}, nil

	case 6: // active, explicit table index, const-expr vector, explicit reftype
		tableIdx, err := r.ReadULEB32()
		if err != nil {
			return ElementSegment{}, err
		}
		offset, err := expr.Build(r, d.table)
		if err != nil {
			return ElementSegment{}, fmt.Errorf("read offset expr: %w", err)
		}
		reftype, err := readElementRefType(r)
		if err != nil {
			return ElementSegment{}, err
		}
		init, err := d.decodeConstExprVector(r)
		if err != nil {
			return ElementSegment{}, err
		}
		return ElementSegment{
			Type: reftype, Mode: ElementModeActive,
			TableIndex: Index(tableIdx), OffsetExpr: offset, Init: init,
		}, nil

	case 7: // declarative, const-expr vector, explicit reftype
		reftype, err := readElementRefType(r)
		if err != nil {
			return ElementSegment{}, err
		}
		init, err := d.decodeConstExprVector(r)
		if err != nil {
			return ElementSegment{}, err
		}
		return ElementSegment{Type: reftype, Mode: ElementModeDeclarative, Init: init}, nil

	default:
		return ElementSegment{}, newDecodeError(ErrInvalidElementKind, "elem", r.Pos(),
			fmt.Errorf("invalid element segment prefix: %d", prefix))
	}
}

// consumeElemKindFuncref reads the "elemkind" byte flavors 1-3 carry, which
// must always be zero (funcref, the only elemkind Wasm 2.0 defines).
func (d *decoder) consumeElemKindFuncref(r *reader.Reader) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	if b != 0 {
		return newDecodeError(ErrInvalidElementKind, "elem", r.Pos(), fmt.Errorf("elemkind must be 0 (funcref), got %d", b))
	}
	return nil
}

func readElementRefType(r *reader.Reader) (ValueType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch ValueType(b) {
	case ValueTypeFuncref, ValueTypeExternref:
		return ValueType(b), nil
	default:
		return 0, newDecodeError(ErrInvalidReftype, "elem", r.Pos(),
			fmt.Errorf("ref type must be funcref or externref for element, got %#x", b))
	}
}

// decodeFuncIndexVector reads the legacy/elemkind flavors' bare function
// index vector and synthesizes one normalized "ref.func idx; end" const
// expression per entry, so Init always holds decoded expressions regardless
// of source flavor.
func (d *decoder) decodeFuncIndexVector(r *reader.Reader) ([]*expr.Expression, error) {
	indexes, err := reader.ReadVector(r, func(r *reader.Reader) (uint32, error) { return r.ReadULEB32() })
	if err != nil {
		return nil, err
	}
	refFunc, ok := d.table.Lookup("ref.func")
	if !ok {
		return nil, fmt.Errorf("instruction table has no ref.func entry")
	}
	end, ok := d.table.Lookup("end")
	if !ok {
		return nil, fmt.Errorf("instruction table has no end entry")
	}
	out := make([]*expr.Expression, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, &expr.Expression{Segments: []expr.Segment{
			{Kind: expr.KindInstr, Instr: []expr.Segment{
				{Kind: expr.KindOperation, Operation: refFunc},
				{Kind: expr.KindFunc, Index: idx},
			}},
			{Kind: expr.KindOperation, Operation: end},
		}})
	}
	return out, nil
}

// decodeConstExprVector reads flavors 4-7's const-expr vector: each entry
// is itself a one-instruction constant expression (ref.null, ref.func, or
// global.get), terminated by its own "end".
func (d *decoder) decodeConstExprVector(r *reader.Reader) ([]*expr.Expression, error) {
	return reader.ReadVector(r, func(r *reader.Reader) (*expr.Expression, error) {
		return expr.Build(r, d.table)
	})
}
