package binary

import "github.com/gowasm/wasmcheck/wasm"

func decodeImportSection(m *wasm.Module, r *reader) error {
	count, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.ImportSection = make([]*wasm.Import, 0, count)
	for i := uint32(0); i < count; i++ {
		imp, err := decodeImport(r)
		if err != nil {
			return err
		}
		m.ImportSection = append(m.ImportSection, imp)
	}
	return nil
}

func decodeImport(r *reader) (*wasm.Import, error) {
	mod, err := r.readName()
	if err != nil {
		return nil, err
	}
	name, err := r.readName()
	if err != nil {
		return nil, err
	}
	desc, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	imp := &wasm.Import{Module: mod, Name: name}
	switch desc {
	case wasm.ExternTypeFunc:
		imp.Type = wasm.ExternTypeFunc
		ti, err := r.readVarU32()
		if err != nil {
			return nil, err
		}
		imp.DescFunc = ti
	case wasm.ExternTypeTable:
		imp.Type = wasm.ExternTypeTable
		tt, err := decodeTableType(r)
		if err != nil {
			return nil, err
		}
		imp.DescTable = tt
	case wasm.ExternTypeMemory:
		imp.Type = wasm.ExternTypeMemory
		mt, err := decodeMemoryType(r)
		if err != nil {
			return nil, err
		}
		imp.DescMemory = mt
	case wasm.ExternTypeGlobal:
		imp.Type = wasm.ExternTypeGlobal
		gt, err := decodeGlobalType(r)
		if err != nil {
			return nil, err
		}
		imp.DescGlobal = &gt
	default:
		return nil, errBadDesc
	}
	return imp, nil
}

func decodeExportSection(m *wasm.Module, r *reader) error {
	count, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.ExportSection = make([]*wasm.Export, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.readName()
		if err != nil {
			return err
		}
		desc, err := r.ReadByte()
		if err != nil {
			return err
		}
		if desc > wasm.ExternTypeGlobal {
			return errBadDesc
		}
		idx, err := r.readVarU32()
		if err != nil {
			return err
		}
		m.ExportSection = append(m.ExportSection, &wasm.Export{Name: name, Type: desc, Index: idx})
	}
	return nil
}

func decodeGlobalSection(m *wasm.Module, r *reader) error {
	count, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.GlobalSection = make([]*wasm.Global, 0, count)
	for i := uint32(0); i < count; i++ {
		gt, err := decodeGlobalType(r)
		if err != nil {
			return err
		}
		init, err := r.readExpression()
		if err != nil {
			return err
		}
		m.GlobalSection = append(m.GlobalSection, &wasm.Global{Type: gt, Init: init})
	}
	return nil
}
