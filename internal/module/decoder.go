package module

import (
	"fmt"

	"github.com/pawnlord/wyrmgo/internal/expr"
	"github.com/pawnlord/wyrmgo/internal/instruction"
	"github.com/pawnlord/wyrmgo/internal/log"
	"github.com/pawnlord/wyrmgo/internal/reader"
)

const magic uint32 = 0x6d736100 // "\0asm"

// section ids, in the canonical order the Wasm core binary format requires.
const (
	sectionCustom     = 0
	sectionType       = 1
	sectionImport     = 2
	sectionFunction   = 3
	sectionTable      = 4
	sectionMemory     = 5
	sectionGlobal     = 6
	sectionExport     = 7
	sectionStart      = 8
	sectionElement    = 9
	sectionCode       = 10
	sectionData       = 11
	sectionDataCount  = 12
)

const customSectionNameName = "name"

// Decode parses a complete Wasm binary module. table supplies the opcode
// descriptors the embedded expression builder (component C) uses for every
// init expression and function body it encounters.
func Decode(data []byte, table *instruction.Table) (*Module, error) {
	r := reader.New(data)

	magicBytes, err := r.ReadFixed(4)
	if err != nil {
		return nil, newDecodeError(ErrUnexpectedEOF, "header", r.Pos(), err)
	}
	gotMagic := uint32(magicBytes[0]) | uint32(magicBytes[1])<<8 | uint32(magicBytes[2])<<16 | uint32(magicBytes[3])<<24
	if gotMagic != magic {
		return nil, newDecodeError(ErrInvalidMagic, "header", 0, fmt.Errorf("got %#x", gotMagic))
	}
	if _, err := r.ReadFixed(4); err != nil { // version, unvalidated: this system tracks core 1/2 binaries alike
		return nil, newDecodeError(ErrUnexpectedEOF, "header", r.Pos(), err)
	}

	m := &Module{}
	d := &decoder{table: table}

	seenCustomNames := map[string]bool{}

	for r.Len() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, newDecodeError(ErrUnexpectedEOF, "section-id", r.Pos(), err)
		}
		size, err := r.ReadULEB32()
		if err != nil {
			return nil, newDecodeError(ErrUnexpectedEOF, fmt.Sprintf("section[%d]", id), r.Pos(), err)
		}
		body, err := r.Sub(int(size))
		if err != nil {
			return nil, newDecodeError(ErrUnexpectedEOF, fmt.Sprintf("section[%d]", id), r.Pos(), err)
		}

		switch id {
		case sectionCustom:
			name, err := body.ReadName()
			if err != nil {
				return nil, newDecodeError(ErrMalformedSection, "custom", body.Pos(), err)
			}
			if name == customSectionNameName {
				if seenCustomNames[name] {
					return nil, newDecodeError(ErrMalformedSection, "custom", body.Pos(),
						fmt.Errorf("redundant custom section name"))
				}
				seenCustomNames[name] = true
				ns, err := d.decodeNameSection(body)
				if err != nil {
					return nil, err
				}
				m.NameSection = ns
			} else {
				log.L().Debug("skipping custom section", log.Str("name", name))
			}
		case sectionType:
			m.Types, err = d.decodeTypeSection(body)
		case sectionImport:
			m.Imports, err = d.decodeImportSection(body)
		case sectionFunction:
			m.Funcs, err = d.decodeFunctionSection(body)
		case sectionTable:
			m.Tables, err = d.decodeTableSection(body)
		case sectionMemory:
			m.Memories, err = d.decodeMemorySection(body)
		case sectionGlobal:
			m.Globals, err = d.decodeGlobalSection(body)
		case sectionExport:
			m.Exports, err = d.decodeExportSection(body)
		case sectionStart:
			var idx Index
			idx, err = d.decodeStartSection(body)
			m.Start = &idx
		case sectionElement:
			m.Elements, err = d.decodeElementSection(body)
		case sectionCode:
			m.Code, err = d.decodeCodeSection(body)
		case sectionData:
			m.Data, err = d.decodeDataSection(body)
		case sectionDataCount:
			var n uint32
			n, err = body.ReadULEB32()
			m.DataCount = &n
		default:
			log.L().Warn("unrecognized section id, stopping decode", log.Int("id", int(id)))
			return m, nil
		}
		if err != nil {
			return nil, fmt.Errorf("section id %d: %w", id, err)
		}
	}

	return m, nil
}

// decoder bundles the instruction table every expr.Build call needs, so
// section decode methods don't each take it as a parameter.
type decoder struct {
	table *instruction.Table
}

func (d *decoder) decodeTypeSection(r *reader.Reader) ([]FunctionType, error) {
	return reader.ReadVector(r, func(r *reader.Reader) (FunctionType, error) {
		tag, err := r.ReadByte()
		if err != nil {
			return FunctionType{}, err
		}
		if tag != 0x60 {
			return FunctionType{}, fmt.Errorf("function type tag must be 0x60, got %#x", tag)
		}
		params, err := reader.ReadVector(r, readValueType)
		if err != nil {
			return FunctionType{}, fmt.Errorf("read parameter types: %w", err)
		}
		results, err := reader.ReadVector(r, readValueType)
		if err != nil {
			return FunctionType{}, fmt.Errorf("read result types: %w", err)
		}
		return FunctionType{Params: params, Results: results}, nil
	})
}

func readValueType(r *reader.Reader) (ValueType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch ValueType(b) {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64, ValueTypeV128, ValueTypeFuncref, ValueTypeExternref:
		return ValueType(b), nil
	default:
		return 0, fmt.Errorf("invalid value type: %d", b)
	}
}

func readLimits(r *reader.Reader) (Limits, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	min, err := r.ReadULEB32()
	if err != nil {
		return Limits{}, err
	}
	l := Limits{Min: min}
	if flag == 1 {
		max, err := r.ReadULEB32()
		if err != nil {
			return Limits{}, err
		}
		l.Max = &max
	}
	return l, nil
}

func (d *decoder) decodeImportSection(r *reader.Reader) ([]Import, error) {
	return reader.ReadVector(r, func(r *reader.Reader) (Import, error) {
		mod, err := r.ReadName()
		if err != nil {
			return Import{}, fmt.Errorf("read module name: %w", err)
		}
		name, err := r.ReadName()
		if err != nil {
			return Import{}, fmt.Errorf("read field name: %w", err)
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return Import{}, fmt.Errorf("read import kind: %w", err)
		}
		imp := Import{Module: mod, Name: name, Kind: ImportKind(kindByte)}
		switch imp.Kind {
		case ImportKindFunc:
			idx, err := r.ReadULEB32()
			if err != nil {
				return Import{}, err
			}
			imp.DescFunc = Index(idx)
		case ImportKindTable:
			reftype, err := readValueType(r)
			if err != nil {
				return Import{}, err
			}
			limits, err := readLimits(r)
			if err != nil {
				return Import{}, err
			}
			imp.DescTable = TableType{RefType: reftype, Limits: limits}
		case ImportKindMemory:
			limits, err := readLimits(r)
			if err != nil {
				return Import{}, err
			}
			imp.DescMemory = limits
		case ImportKindGlobal:
			valtype, err := readValueType(r)
			if err != nil {
				return Import{}, err
			}
			mutByte, err := r.ReadByte()
			if err != nil {
				return Import{}, err
			}
			imp.DescGlobal = GlobalType{ValType: valtype, Mutable: mutByte == 1}
		default:
			return Import{}, fmt.Errorf("invalid import kind: %d", kindByte)
		}
		return imp, nil
	})
}

func (d *decoder) decodeFunctionSection(r *reader.Reader) ([]Function, error) {
	return reader.ReadVector(r, func(r *reader.Reader) (Function, error) {
		idx, err := r.ReadULEB32()
		return Function{TypeIndex: Index(idx)}, err
	})
}

func (d *decoder) decodeTableSection(r *reader.Reader) ([]TableType, error) {
	return reader.ReadVector(r, func(r *reader.Reader) (TableType, error) {
		reftype, err := readValueType(r)
		if err != nil {
			return TableType{}, err
		}
		limits, err := readLimits(r)
		return TableType{RefType: reftype, Limits: limits}, err
	})
}

func (d *decoder) decodeMemorySection(r *reader.Reader) ([]Limits, error) {
	return reader.ReadVector(r, readLimits)
}

func (d *decoder) decodeGlobalSection(r *reader.Reader) ([]Global, error) {
	return reader.ReadVector(r, func(r *reader.Reader) (Global, error) {
		valtype, err := readValueType(r)
		if err != nil {
			return Global{}, err
		}
		mutByte, err := r.ReadByte()
		if err != nil {
			return Global{}, err
		}
		init, err := expr.Build(r, d.table)
		if err != nil {
			return Global{}, newDecodeError(ErrMalformedGlobalInit, "global", r.Pos(), err)
		}
		return Global{Type: GlobalType{ValType: valtype, Mutable: mutByte == 1}, Init: init}, nil
	})
}

func (d *decoder) decodeExportSection(r *reader.Reader) ([]Export, error) {
	return reader.ReadVector(r, func(r *reader.Reader) (Export, error) {
		name, err := r.ReadName()
		if err != nil {
			return Export{}, err
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return Export{}, err
		}
		idx, err := r.ReadULEB32()
		if err != nil {
			return Export{}, err
		}
		return Export{Name: name, Kind: ExportKind(kindByte), Index: Index(idx)}, nil
	})
}

func (d *decoder) decodeStartSection(r *reader.Reader) (Index, error) {
	idx, err := r.ReadULEB32()
	return Index(idx), err
}

func (d *decoder) decodeCodeSection(r *reader.Reader) ([]Code, error) {
	return reader.ReadVector(r, func(r *reader.Reader) (Code, error) {
		size, err := r.ReadULEB32()
		if err != nil {
			return Code{}, err
		}
		body, err := r.Sub(int(size))
		if err != nil {
			return Code{}, err
		}
		locals, err := decodeLocals(body)
		if err != nil {
			return Code{}, fmt.Errorf("decode locals: %w", err)
		}
		start := body.BeginCapture()
		bodyExpr, err := expr.Build(body, d.table)
		if err != nil {
			return Code{}, fmt.Errorf("decode function body: %w", err)
		}
		raw := body.EndCapture(start)
		return Code{Locals: locals, Body: bodyExpr, Raw: raw}, nil
	})
}

// decodeLocals reads the run-length-encoded locals vector: a count of
// (run-length, type) groups, expanded to one ValueType per local.
func decodeLocals(r *reader.Reader) ([]ValueType, error) {
	groups, err := r.ReadULEB32()
	if err != nil {
		return nil, err
	}
	var out []ValueType
	for i := uint32(0); i < groups; i++ {
		n, err := r.ReadULEB32()
		if err != nil {
			return nil, fmt.Errorf("read local group %d count: %w", i, err)
		}
		vt, err := readValueType(r)
		if err != nil {
			return nil, fmt.Errorf("read local group %d type: %w", i, err)
		}
		for j := uint32(0); j < n; j++ {
			out = append(out, vt)
		}
	}
	return out, nil
}

func (d *decoder) decodeDataSection(r *reader.Reader) ([]Data, error) {
	return reader.ReadVector(r, func(r *reader.Reader) (Data, error) {
		flag, err := r.ReadULEB32()
		if err != nil {
			return Data{}, err
		}
		switch flag {
		case 0:
			offset, err := expr.Build(r, d.table)
			if err != nil {
				return Data{}, err
			}
			init, err := reader.ReadVector(r, func(r *reader.Reader) (byte, error) { return r.ReadByte() })
			if err != nil {
				return Data{}, err
			}
			return Data{Mode: DataModeActive, OffsetExpr: offset, Init: init}, nil
		case 1:
			init, err := reader.ReadVector(r, func(r *reader.Reader) (byte, error) { return r.ReadByte() })
			if err != nil {
				return Data{}, err
			}
			return Data{Mode: DataModePassive, Init: init}, nil
		case 2:
			memIdx, err := r.ReadULEB32()
			if err != nil {
				return Data{}, err
			}
			offset, err := expr.Build(r, d.table)
			if err != nil {
				return Data{}, err
			}
			init, err := reader.ReadVector(r, func(r *reader.Reader) (byte, error) { return r.ReadByte() })
			if err != nil {
				return Data{}, err
			}
			return Data{Mode: DataModeActive, MemoryIndex: Index(memIdx), OffsetExpr: offset, Init: init}, nil
		default:
			return Data{}, fmt.Errorf("invalid data segment flag: %d", flag)
		}
	})
}
