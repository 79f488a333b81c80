package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/wasmcheck/wasm"
)

func TestDecodeModule_CodeSection(t *testing.T) {
	// one function, no locals, body: local.get 0, local.get 1, i32.add, end
	body := []byte{0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b}
	codePayload := append([]byte{0x01, byte(len(body))}, body...)
	data := append(header(), section(wasm.SectionIDFunction, []byte{0x01, 0x00})...)
	data = append(data, section(wasm.SectionIDCode, codePayload)...)

	m, err := DecodeModule(data)
	require.NoError(t, err)
	require.Len(t, m.CodeSection, 1)
	require.Empty(t, m.CodeSection[0].Locals)
	require.Equal(t, []byte{0x20, 0x00, 0x20, 0x01, 0x6a}, m.CodeSection[0].Body.Bytes)
}

func TestDecodeModule_CodeSectionWithLocals(t *testing.T) {
	// 2 locals groups: 3 x i32, 1 x i64; body is just `end`
	body := []byte{0x02, 0x03, 0x7f, 0x01, 0x7e, 0x0b}
	codePayload := append([]byte{0x01, byte(len(body))}, body...)
	data := append(header(), section(wasm.SectionIDFunction, []byte{0x01, 0x00})...)
	data = append(data, section(wasm.SectionIDCode, codePayload)...)

	m, err := DecodeModule(data)
	require.NoError(t, err)
	require.Equal(t, []wasm.Locals{
		{Count: 3, Type: wasm.ValueTypeI32},
		{Count: 1, Type: wasm.ValueTypeI64},
	}, m.CodeSection[0].Locals)
}

func TestDecodeFunctionBody_OverreadRejected(t *testing.T) {
	// body_len says 8 bytes but the locals+expression only consume 7
	body := []byte{0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b, 0xFF}
	_, err := decodeFunctionBody(body)
	require.Error(t, err)
}
