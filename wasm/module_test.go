package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModule_SectionIDName(t *testing.T) {
	require.Equal(t, "type", SectionIDName(SectionIDType))
	require.Equal(t, "datacount", SectionIDName(SectionIDDataCount))
	require.Equal(t, "unknown", SectionIDName(99))
}

func TestModule_FunctionCounts(t *testing.T) {
	m := &Module{
		ImportSection: []*Import{
			{Type: ExternTypeFunc, DescFunc: 0},
			{Type: ExternTypeTable, DescTable: &TableType{}},
			{Type: ExternTypeFunc, DescFunc: 1},
		},
		FunctionSection: []Index{2},
	}
	require.Equal(t, 2, m.ImportFuncCount())
	require.Equal(t, 1, m.ImportTableCount())
	require.Equal(t, 3, m.FunctionCount())

	ti, ok := m.FunctionTypeIndex(0)
	require.True(t, ok)
	require.Equal(t, Index(0), ti)

	ti, ok = m.FunctionTypeIndex(2)
	require.True(t, ok)
	require.Equal(t, Index(2), ti)

	_, ok = m.FunctionTypeIndex(3)
	require.False(t, ok)
}

func TestFunctionType_String(t *testing.T) {
	ft := &FunctionType{Params: []ValueType{ValueTypeI32, ValueTypeI32}, Results: []ValueType{ValueTypeI32}}
	require.Equal(t, "i32i32_i32", ft.String())
	require.Equal(t, "null_null", (&FunctionType{}).String())
}

func TestLimits_Valid(t *testing.T) {
	max := uint32(10)
	require.True(t, (&Limits{Min: 1, Max: &max}).Valid(20))
	require.False(t, (&Limits{Min: 12, Max: &max}).Valid(20))
	require.True(t, (&Limits{Min: 5}).Valid(10))
	require.False(t, (&Limits{Min: 15}).Valid(10))
}
