package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func simpleCtx() *Context {
	return BuildContext(&Module{})
}

func TestChecker_PopValUnknownInUnreachableCode(t *testing.T) {
	c := NewChecker(simpleCtx(), nil)
	c.pushCtrl(nil, []ValueType{ValueTypeI32})
	c.setUnreachable()
	v, err := c.popVal()
	require.Nil(t, err)
	require.True(t, v.Unknown)
}

func TestChecker_PopValUnderflow(t *testing.T) {
	c := NewChecker(simpleCtx(), nil)
	c.pushCtrl(nil, nil)
	_, err := c.popVal()
	require.NotNil(t, err)
	require.Equal(t, ValueStackUnderflow, err.Kind)
}

func TestChecker_PopExpectAcceptsUnknown(t *testing.T) {
	c := NewChecker(simpleCtx(), nil)
	c.pushCtrl(nil, nil)
	c.setUnreachable()
	require.Nil(t, c.popExpect(ValueTypeI64))
}

func TestChecker_I32AddHappyPath(t *testing.T) {
	c := NewChecker(simpleCtx(), []ValueType{ValueTypeI32, ValueTypeI32})
	ft := &FunctionType{Results: []ValueType{ValueTypeI32}}
	expr := RawExpression{Bytes: []byte{OpcodeLocalGet, 0, OpcodeLocalGet, 1, OpcodeI32Add}}
	require.Nil(t, c.CheckExpression(ft, expr, "test"))
}

func TestChecker_LocalSetTypeMismatch(t *testing.T) {
	c := NewChecker(simpleCtx(), []ValueType{ValueTypeI32})
	ft := &FunctionType{}
	expr := RawExpression{Bytes: []byte{OpcodeI64Const, 0x00, OpcodeLocalSet, 0x00}}
	verr := c.CheckExpression(ft, expr, "test")
	require.NotNil(t, verr)
	require.Equal(t, PopValueTypeMismatch, verr.Err.Kind)
	require.Equal(t, ValueType(ValueTypeI32), verr.Err.Expected)
	require.Equal(t, ValueType(ValueTypeI64), verr.Err.Actual)
}

func TestChecker_RefFuncNotDeclared(t *testing.T) {
	m := &Module{
		TypeSection:     []*FunctionType{{}},
		FunctionSection: []Index{0},
	}
	ctx := BuildContext(m)
	c := NewChecker(ctx, nil)
	ft := &FunctionType{Results: []ValueType{ValueTypeFuncref}}
	expr := RawExpression{Bytes: []byte{OpcodeRefFunc, 0x00}}
	verr := c.CheckExpression(ft, expr, "test")
	require.NotNil(t, verr)
	require.Equal(t, NotIncludedInRefs, verr.Err.Kind)
}

func TestChecker_NoLocalAtIndex(t *testing.T) {
	c := NewChecker(simpleCtx(), []ValueType{ValueTypeI32})
	ft := &FunctionType{Results: []ValueType{ValueTypeI32}}
	expr := RawExpression{Bytes: []byte{OpcodeLocalGet, 0x05}}
	verr := c.CheckExpression(ft, expr, "test")
	require.NotNil(t, verr)
	require.Equal(t, NoLocalAtIndex, verr.Err.Kind)
	require.Equal(t, Index(5), verr.Err.Index)
}

func TestChecker_ErrorIncludesProgressAndSnapshots(t *testing.T) {
	c := NewChecker(simpleCtx(), []ValueType{ValueTypeI32})
	ft := &FunctionType{Results: []ValueType{ValueTypeI32}}
	expr := RawExpression{Bytes: []byte{OpcodeLocalGet, 0x00, OpcodeLocalGet, 0x05}}
	verr := c.CheckExpression(ft, expr, "at code section #0")
	require.NotNil(t, verr)
	require.Equal(t, "at code section #0", verr.Desc)
	require.NotEmpty(t, verr.Progress)
	require.NotEmpty(t, verr.ValueStack)
}
