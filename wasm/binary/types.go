package binary

import (
	"fmt"

	"github.com/gowasm/wasmcheck/wasm"
)

const functionTypeTag = 0x60

func decodeTypeSection(m *wasm.Module, r *reader) error {
	count, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.TypeSection = make([]*wasm.FunctionType, 0, count)
	for i := uint32(0); i < count; i++ {
		ft, err := decodeFunctionType(r)
		if err != nil {
			return err
		}
		m.TypeSection = append(m.TypeSection, ft)
	}
	return nil
}

func decodeFunctionType(r *reader) (*wasm.FunctionType, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag != functionTypeTag {
		return nil, fmt.Errorf("wasm: expected function type tag 0x60, got %#x", tag)
	}
	params, err := decodeValueTypeVec(r)
	if err != nil {
		return nil, err
	}
	results, err := decodeValueTypeVec(r)
	if err != nil {
		return nil, err
	}
	return &wasm.FunctionType{Params: params, Results: results}, nil
}

func decodeValueTypeVec(r *reader) ([]wasm.ValueType, error) {
	n, err := r.readVarU32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	vs := make([]wasm.ValueType, n)
	for i := range vs {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		vs[i] = b
	}
	return vs, nil
}

func decodeLimits(r *reader) (wasm.Limits, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return wasm.Limits{}, err
	}
	min, err := r.readVarU32()
	if err != nil {
		return wasm.Limits{}, err
	}
	switch flag {
	case 0x00:
		return wasm.Limits{Min: min}, nil
	case 0x01:
		max, err := r.readVarU32()
		if err != nil {
			return wasm.Limits{}, err
		}
		return wasm.Limits{Min: min, Max: &max}, nil
	default:
		return wasm.Limits{}, fmt.Errorf("wasm: invalid limits flag %#x", flag)
	}
}

func decodeTableType(r *reader) (*wasm.TableType, error) {
	elem, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if !wasm.IsReferenceType(elem) {
		return nil, fmt.Errorf("wasm: table element type %#x is not a reference type", elem)
	}
	limits, err := decodeLimits(r)
	if err != nil {
		return nil, err
	}
	return &wasm.TableType{ElemType: elem, Limits: limits}, nil
}

func decodeTableSection(m *wasm.Module, r *reader) error {
	count, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.TableSection = make([]*wasm.TableType, 0, count)
	for i := uint32(0); i < count; i++ {
		t, err := decodeTableType(r)
		if err != nil {
			return err
		}
		m.TableSection = append(m.TableSection, t)
	}
	return nil
}

func decodeMemoryType(r *reader) (*wasm.MemoryType, error) {
	limits, err := decodeLimits(r)
	if err != nil {
		return nil, err
	}
	return &wasm.MemoryType{Limits: limits}, nil
}

func decodeMemorySection(m *wasm.Module, r *reader) error {
	count, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.MemorySection = make([]*wasm.MemoryType, 0, count)
	for i := uint32(0); i < count; i++ {
		mt, err := decodeMemoryType(r)
		if err != nil {
			return err
		}
		m.MemorySection = append(m.MemorySection, mt)
	}
	return nil
}

func decodeGlobalType(r *reader) (wasm.GlobalType, error) {
	vt, err := r.ReadByte()
	if err != nil {
		return wasm.GlobalType{}, err
	}
	mutByte, err := r.ReadByte()
	if err != nil {
		return wasm.GlobalType{}, err
	}
	if mutByte > 1 {
		return wasm.GlobalType{}, fmt.Errorf("wasm: invalid global mutability byte %#x", mutByte)
	}
	return wasm.GlobalType{ValType: vt, Mutability: wasm.Mutability(mutByte == 1)}, nil
}

func decodeFunctionSection(m *wasm.Module, r *reader) error {
	count, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.FunctionSection = make([]wasm.Index, 0, count)
	for i := uint32(0); i < count; i++ {
		idx, err := r.readVarU32()
		if err != nil {
			return err
		}
		m.FunctionSection = append(m.FunctionSection, idx)
	}
	return nil
}

func decodeStartSection(m *wasm.Module, r *reader) error {
	idx, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.StartSection = &idx
	return nil
}

func decodeDataCountSection(m *wasm.Module, r *reader) error {
	count, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.DataCountSection = &count
	return nil
}

func decodeCustomSection(m *wasm.Module, r *reader) error {
	name, err := r.readName()
	if err != nil {
		return err
	}
	payload, err := r.readN(r.remaining())
	if err != nil {
		return err
	}
	m.CustomSections = append(m.CustomSections, &wasm.CustomSection{Name: name, Payload: payload})
	return nil
}
