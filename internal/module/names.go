package module

import (
	"fmt"

	"github.com/pawnlord/wyrmgo/internal/reader"
)

const (
	subsectionIDModuleName    = 0
	subsectionIDFunctionNames = 1
	subsectionIDLocalNames    = 2
)

// decodeNameSection reads the custom "name" section's subsections: module
// name (0), function names (1), and per-function local names (2). Unknown
// subsection ids are skipped over using their declared size.
func (d *decoder) decodeNameSection(r *reader.Reader) (*NameSection, error) {
	ns := &NameSection{}
	idx := 0
	for r.Len() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("failed to read subsection[%d] id: %w", idx, err)
		}
		size, err := r.ReadULEB32()
		if err != nil {
			return nil, fmt.Errorf("failed to read the size of subsection[%d]: %w", id, err)
		}
		sub, err := r.Sub(int(size))
		if err != nil {
			return nil, fmt.Errorf("failed to skip subsection[%d]: %w", id, err)
		}

		switch id {
		case subsectionIDModuleName:
			name, err := sub.ReadName()
			if err != nil {
				return nil, fmt.Errorf("failed to read module name: %w", err)
			}
			ns.ModuleName = name
		case subsectionIDFunctionNames:
			ns.FunctionNames, err = decodeNameMap(sub, id)
			if err != nil {
				return nil, err
			}
		case subsectionIDLocalNames:
			ns.LocalNames, err = decodeIndirectNameMap(sub, id)
			if err != nil {
				return nil, err
			}
		default:
			// Unknown subsection: already consumed via Sub, nothing more to do.
		}
		idx++
	}
	return ns, nil
}

func decodeNameMap(r *reader.Reader, subsectionID byte) (NameMap, error) {
	count, err := r.ReadULEB32()
	if err != nil {
		return nil, fmt.Errorf("failed to read the function count of subsection[%d]: %w", subsectionID, err)
	}
	out := make(NameMap, 0, count)
	for i := uint32(0); i < count; i++ {
		fnIdx, err := r.ReadULEB32()
		if err != nil {
			return nil, fmt.Errorf("failed to read a function index in subsection[%d]: %w", subsectionID, err)
		}
		name, err := r.ReadName()
		if err != nil {
			return nil, fmt.Errorf("failed to read function[%d] name: %w", fnIdx, err)
		}
		out = append(out, NameAssoc{Index: Index(fnIdx), Name: name})
	}
	return out, nil
}

func decodeIndirectNameMap(r *reader.Reader, subsectionID byte) (IndirectNameMap, error) {
	count, err := r.ReadULEB32()
	if err != nil {
		return nil, fmt.Errorf("failed to read the function count of subsection[%d]: %w", subsectionID, err)
	}
	out := make(IndirectNameMap, 0, count)
	for i := uint32(0); i < count; i++ {
		fnIdx, err := r.ReadULEB32()
		if err != nil {
			return nil, fmt.Errorf("failed to read a function index in subsection[%d]: %w", subsectionID, err)
		}
		localCount, err := r.ReadULEB32()
		if err != nil {
			return nil, fmt.Errorf("failed to read the local count for function[%d]: %w", fnIdx, err)
		}
		locals := make(NameMap, 0, localCount)
		for j := uint32(0); j < localCount; j++ {
			localIdx, err := r.ReadULEB32()
			if err != nil {
				return nil, fmt.Errorf("failed to read a local index of function[%d]: %w", fnIdx, err)
			}
			name, err := r.ReadName()
			if err != nil {
				return nil, fmt.Errorf("failed to read function[%d] local[%d] name: %w", fnIdx, localIdx, err)
			}
			locals = append(locals, NameAssoc{Index: Index(localIdx), Name: name})
		}
		out = append(out, IndirectNameAssoc{Index: Index(fnIdx), NameMap: locals})
	}
	return out, nil
}
