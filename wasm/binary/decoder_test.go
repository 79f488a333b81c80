package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/wasmcheck/leb128"
	"github.com/gowasm/wasmcheck/wasm"
)

func header() []byte {
	return []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
}

func section(id wasm.SectionID, payload []byte) []byte {
	out := append([]byte{id}, leb128.EncodeUint32(uint32(len(payload)))...)
	return append(out, payload...)
}

func TestDecodeModule_Empty(t *testing.T) {
	m, err := DecodeModule(header())
	require.NoError(t, err)
	require.Equal(t, &wasm.Module{}, m)
}

func TestDecodeModule_BadMagic(t *testing.T) {
	_, err := DecodeModule([]byte{0x00, 'a', 's', 'd', 0x01, 0x00, 0x00, 0x00})
	require.ErrorIs(t, err, wasm.ErrMagicMismatch)
}

func TestDecodeModule_BadVersion(t *testing.T) {
	_, err := DecodeModule([]byte{0x00, 'a', 's', 'm', 0x02, 0x00, 0x00, 0x00})
	require.ErrorIs(t, err, wasm.ErrVersionMismatch)
}

func TestDecodeModule_TypeSection(t *testing.T) {
	payload := []byte{
		0x02,                   // 2 types
		0x60, 0x00, 0x00,       // () -> ()
		0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // (i32, i32) -> i32
	}
	data := append(header(), section(wasm.SectionIDType, payload)...)

	m, err := DecodeModule(data)
	require.NoError(t, err)
	require.Len(t, m.TypeSection, 2)
	require.Equal(t, &wasm.FunctionType{}, m.TypeSection[0])
	require.Equal(t, &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	}, m.TypeSection[1])
}

func TestDecodeModule_ImportAndExport(t *testing.T) {
	typePayload := []byte{0x01, 0x60, 0x00, 0x00}
	importPayload := []byte{
		0x01,                   // 1 import
		0x03, 'e', 'n', 'v',    // module "env"
		0x02, 'f', 'n',         // name "fn"
		0x00, 0x00, // func import, type index 0
	}
	exportPayload := []byte{
		0x01,
		0x02, 'f', 'n',
		0x00, 0x00, // func export, index 0
	}
	data := append(header(), section(wasm.SectionIDType, typePayload)...)
	data = append(data, section(wasm.SectionIDImport, importPayload)...)
	data = append(data, section(wasm.SectionIDExport, exportPayload)...)

	m, err := DecodeModule(data)
	require.NoError(t, err)
	require.Equal(t, []*wasm.Import{{Module: "env", Name: "fn", Type: wasm.ExternTypeFunc, DescFunc: 0}}, m.ImportSection)
	require.Equal(t, []*wasm.Export{{Name: "fn", Type: wasm.ExternTypeFunc, Index: 0}}, m.ExportSection)
}

func TestDecodeModule_StartSection(t *testing.T) {
	data := append(header(), section(wasm.SectionIDStart, []byte{0x02})...)
	m, err := DecodeModule(data)
	require.NoError(t, err)
	require.NotNil(t, m.StartSection)
	require.Equal(t, wasm.Index(2), *m.StartSection)
}

func TestDecodeModule_SectionsOutOfOrder(t *testing.T) {
	data := append(header(), section(wasm.SectionIDImport, []byte{0x00})...)
	data = append(data, section(wasm.SectionIDType, []byte{0x00})...)
	_, err := DecodeModule(data)
	require.ErrorIs(t, err, wasm.ErrSectionOutOfOrder)
}

func TestDecodeModule_DuplicateSectionRejected(t *testing.T) {
	data := append(header(), section(wasm.SectionIDType, []byte{0x00})...)
	data = append(data, section(wasm.SectionIDType, []byte{0x00})...)
	_, err := DecodeModule(data)
	require.ErrorIs(t, err, wasm.ErrSectionOutOfOrder)
}

func TestDecodeModule_CustomSectionsAnywhere(t *testing.T) {
	data := append(header(), section(wasm.SectionIDCustom, append([]byte{0x04, 'n', 'a', 'm', 'e'}, 0xAB))...)
	data = append(data, section(wasm.SectionIDType, []byte{0x00})...)
	data = append(data, section(wasm.SectionIDCustom, append([]byte{0x01, 'x'}, 0xCD))...)

	m, err := DecodeModule(data)
	require.NoError(t, err)
	require.Len(t, m.CustomSections, 2)
	require.Equal(t, "name", m.CustomSections[0].Name)
	require.Equal(t, []byte{0xAB}, m.CustomSections[0].Payload)
	require.Equal(t, "x", m.CustomSections[1].Name)
}

func TestDecodeModule_TrailingSectionBytesRejected(t *testing.T) {
	// one nullary function type is 3 bytes (0x60, 0x00, 0x00); declaring the
	// section one byte longer than its sub-parser consumes must fail.
	payload := []byte{0x01, 0x60, 0x00, 0x00, 0xFF}
	data := append(header(), section(wasm.SectionIDType, payload)...)
	_, err := DecodeModule(data)
	require.ErrorIs(t, err, wasm.ErrSectionOverread)
}

func TestDecodeModule_TruncatedSectionRejected(t *testing.T) {
	data := append(header(), byte(wasm.SectionIDType), 0x05, 0x01, 0x60)
	_, err := DecodeModule(data)
	require.ErrorIs(t, err, wasm.ErrSectionTruncated)
}

func TestDecodeModule_NonUTF8NameRejected(t *testing.T) {
	importPayload := []byte{
		0x01,
		0x01, 0xFF, // invalid UTF-8 module name
		0x01, 'x',
		0x00, 0x00,
	}
	data := append(header(), section(wasm.SectionIDImport, importPayload)...)
	_, err := DecodeModule(data)
	require.ErrorIs(t, err, wasm.ErrInvalidUTF8)
}
