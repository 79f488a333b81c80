package binary

import "github.com/gowasm/wasmcheck/wasm"

// decodeCodeSection decodes the code section: a vector of function bodies,
// each prefixed by its own byte length so a malformed body can be detected
// (trailing or missing bytes) independent of the expression scanner.
func decodeCodeSection(m *wasm.Module, r *reader) error {
	count, err := r.readVarU32()
	if err != nil {
		return err
	}
	m.CodeSection = make([]*wasm.FunctionBody, 0, count)
	for i := uint32(0); i < count; i++ {
		size, err := r.readVarU32()
		if err != nil {
			return err
		}
		body, err := r.readN(int(size))
		if err != nil {
			return err
		}
		fb, err := decodeFunctionBody(body)
		if err != nil {
			return err
		}
		m.CodeSection = append(m.CodeSection, fb)
	}
	return nil
}

func decodeFunctionBody(body []byte) (*wasm.FunctionBody, error) {
	br := newReader(body)
	n, err := br.readVarU32()
	if err != nil {
		return nil, err
	}
	locals := make([]wasm.Locals, 0, n)
	for i := uint32(0); i < n; i++ {
		count, err := br.readVarU32()
		if err != nil {
			return nil, err
		}
		typ, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		locals = append(locals, wasm.Locals{Count: count, Type: typ})
	}
	expr, err := br.readExpression()
	if err != nil {
		return nil, err
	}
	if br.remaining() != 0 {
		return nil, wasm.ErrSectionOverread
	}
	return &wasm.FunctionBody{Locals: locals, Body: expr}, nil
}
