package binary

import (
	"fmt"

	"github.com/gowasm/wasmcheck/wasm"
)

// decodeElementSection decodes the element section's vector of segments.
// Each segment is prefixed by a flag word whose low two bits select the
// segment's kind (active on table 0, passive, active on an explicit table,
// declarative) and whose third bit selects how items are encoded (a vector
// of function indices, or a vector of reference-typed expressions). See
// https://webassembly.github.io/spec/core/binary/modules.html#element-section
// for the full flag table this mirrors.
func decodeElementSection(m *wasm.Module, r *reader) error {
	count, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.ElementSection = make([]*wasm.Element, 0, count)
	for i := uint32(0); i < count; i++ {
		el, err := decodeElement(r)
		if err != nil {
			return err
		}
		m.ElementSection = append(m.ElementSection, el)
	}
	return nil
}

func decodeElement(r *reader) (*wasm.Element, error) {
	flag, err := r.readVarU32()
	if err != nil {
		return nil, err
	}
	if flag > 7 {
		return nil, fmt.Errorf("wasm: invalid element segment flag %d", flag)
	}
	low2 := flag & 0x3
	exprItems := flag&0x4 != 0

	el := &wasm.Element{}
	switch low2 {
	case 0:
		el.Kind = wasm.ElementActive
	case 1:
		el.Kind = wasm.ElementPassive
	case 2:
		el.Kind = wasm.ElementActive
		ti, err := r.readVarU32()
		if err != nil {
			return nil, err
		}
		el.TableIndex = &ti
	case 3:
		el.Kind = wasm.ElementDeclarative
	}

	if el.Kind == wasm.ElementActive {
		offset, err := r.readExpression()
		if err != nil {
			return nil, err
		}
		el.Offset = offset
	}

	if !exprItems {
		el.RefType = wasm.ValueTypeFuncref
		if low2 != 0 {
			kindByte, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			if kindByte != 0 {
				return nil, fmt.Errorf("wasm: invalid element kind byte %#x", kindByte)
			}
		}
		n, err := r.readVarU32()
		if err != nil {
			return nil, err
		}
		el.FuncIndices = make([]wasm.Index, n)
		for i := range el.FuncIndices {
			idx, err := r.readVarU32()
			if err != nil {
				return nil, err
			}
			el.FuncIndices[i] = idx
		}
		return el, nil
	}

	if low2 != 0 {
		rt, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		el.RefType = rt
	} else {
		el.RefType = wasm.ValueTypeFuncref
	}
	n, err := r.readVarU32()
	if err != nil {
		return nil, err
	}
	el.Exprs = make([]wasm.RawExpression, n)
	for i := range el.Exprs {
		expr, err := r.readExpression()
		if err != nil {
			return nil, err
		}
		el.Exprs[i] = expr
	}
	return el, nil
}

func decodeDataSection(m *wasm.Module, r *reader) error {
	count, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.DataSection = make([]*wasm.DataSegment, 0, count)
	for i := uint32(0); i < count; i++ {
		d, err := decodeData(r)
		if err != nil {
			return err
		}
		m.DataSection = append(m.DataSection, d)
	}
	return nil
}

func decodeData(r *reader) (*wasm.DataSegment, error) {
	flag, err := r.readVarU32()
	if err != nil {
		return nil, err
	}
	d := &wasm.DataSegment{}
	switch flag {
	case 0:
		d.Mode = wasm.DataActive
		offset, err := r.readExpression()
		if err != nil {
			return nil, err
		}
		d.Offset = offset
	case 1:
		d.Mode = wasm.DataPassive
	case 2:
		d.Mode = wasm.DataActive
		mi, err := r.readVarU32()
		if err != nil {
			return nil, err
		}
		d.MemoryIndex = &mi
		offset, err := r.readExpression()
		if err != nil {
			return nil, err
		}
		d.Offset = offset
	default:
		return nil, fmt.Errorf("wasm: invalid data segment flag %d", flag)
	}
	n, err := r.readVarU32()
	if err != nil {
		return nil, err
	}
	b, err := r.readN(int(n))
	if err != nil {
		return nil, err
	}
	d.Bytes = b
	return d, nil
}
