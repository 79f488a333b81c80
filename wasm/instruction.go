package wasm

import (
	"bytes"
	"fmt"

	"github.com/gowasm/wasmcheck/leb128"
)

// unknownType is a sentinel that never collides with a real ValueType byte;
// all defined value types are in 0x6f..0x7f.
const unknownType ValueType = 0x00

// StackValue is one slot of the value stack: either a concrete ValueType,
// or Unknown, the polymorphic slot that arises only within unreachable
// code and matches any expectation.
type StackValue struct {
	Type    ValueType
	Unknown bool
}

func concreteValue(t ValueType) StackValue { return StackValue{Type: t} }

var unknownValue = StackValue{Unknown: true, Type: unknownType}

// String renders a StackValue for diagnostics.
func (v StackValue) String() string {
	if v.Unknown {
		return "unknown"
	}
	return ValueTypeName(v.Type)
}

// ControlFrame is one entry of the control stack: the frame's declared
// input and output arity, the value-stack height at the point it was
// pushed, and whether unreachable code has been entered within it.
type ControlFrame struct {
	StartTypes  []ValueType
	EndTypes    []ValueType
	Height      int
	Unreachable bool
}

// Checker is the abstract interpreter that typechecks a single function
// body or constant expression: a dual value/control stack walked opcode by
// opcode against a Context.
type Checker struct {
	ctx    *Context
	locals []ValueType

	valueStack   []StackValue
	controlStack []ControlFrame
	progress     []byte
}

// NewChecker creates a Checker over ctx (which must already be primed via
// Context.Prime when checking a constant expression) with the given flat
// local index space.
func NewChecker(ctx *Context, locals []ValueType) *Checker {
	return &Checker{ctx: ctx, locals: locals}
}

func (c *Checker) pushVal(v StackValue) { c.valueStack = append(c.valueStack, v) }

func (c *Checker) topFrame() *ControlFrame {
	return &c.controlStack[len(c.controlStack)-1]
}

// popVal implements pop_val: at the frame's recorded height, unreachable
// code yields Unknown for free, reachable code underflows.
func (c *Checker) popVal() (StackValue, *VInstError) {
	f := c.topFrame()
	if len(c.valueStack) == f.Height {
		if f.Unreachable {
			return unknownValue, nil
		}
		return StackValue{}, &VInstError{Kind: ValueStackUnderflow}
	}
	v := c.valueStack[len(c.valueStack)-1]
	c.valueStack = c.valueStack[:len(c.valueStack)-1]
	return v, nil
}

// popExpect implements pop_expect: Unknown on either side always matches.
func (c *Checker) popExpect(expected ValueType) *VInstError {
	v, err := c.popVal()
	if err != nil {
		return err
	}
	if v.Unknown {
		return nil
	}
	if v.Type != expected {
		return &VInstError{Kind: PopValueTypeMismatch, Expected: expected, Actual: v.Type}
	}
	return nil
}

// popVals pops the given types in reverse declaration order, as required
// when unwinding a control frame's result arity.
func (c *Checker) popVals(ts []ValueType) *VInstError {
	for i := len(ts) - 1; i >= 0; i-- {
		if err := c.popExpect(ts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) pushCtrl(startTypes, endTypes []ValueType) {
	for _, t := range startTypes {
		c.pushVal(concreteValue(t))
	}
	c.controlStack = append(c.controlStack, ControlFrame{
		StartTypes: startTypes,
		EndTypes:   endTypes,
		Height:     len(c.valueStack),
	})
}

// popCtrl implements pop_ctrl: pop the frame's declared results, then pop
// the frame itself, then require the value stack to have unwound exactly
// to the frame's recorded entry height.
func (c *Checker) popCtrl() *VInstError {
	f := c.topFrame()
	ends := f.EndTypes
	height := f.Height
	if err := c.popVals(ends); err != nil {
		return err
	}
	c.controlStack = c.controlStack[:len(c.controlStack)-1]
	if len(c.valueStack) != height {
		return &VInstError{Kind: ValueStackUnderflow}
	}
	return nil
}

func (c *Checker) setUnreachable() {
	f := c.topFrame()
	f.Unreachable = true
	c.valueStack = c.valueStack[:f.Height]
}

// snapshot copies the current stacks for embedding in a returned error.
func (c *Checker) snapshot() ([]StackValue, []ControlFrame) {
	vs := make([]StackValue, len(c.valueStack))
	copy(vs, c.valueStack)
	cs := make([]ControlFrame, len(c.controlStack))
	copy(cs, c.controlStack)
	return vs, cs
}

func (c *Checker) fail(desc string, err *VInstError) *InstructionValidationError {
	vs, cs := c.snapshot()
	progress := make([]byte, len(c.progress))
	copy(progress, c.progress)
	return &InstructionValidationError{
		Desc:         desc,
		Err:          err,
		Progress:     progress,
		ValueStack:   vs,
		ControlStack: cs,
	}
}

// CheckExpression typechecks expr under funcType's result arity (expr never
// takes explicit parameters; any inputs come from locals, e.g. for a
// function body whose params have already been prepended to locals).
// The context's constant flag selects whether the constant-expression
// opcode subset and global.get restriction are enforced; callers pass a context already
// primed via Context.Prime for every use described in §4.4 of the
// constant-expression rules.
func (c *Checker) CheckExpression(funcType *FunctionType, expr RawExpression, desc string) *InstructionValidationError {
	c.pushCtrl(nil, funcType.Results)

	r := bytes.NewReader(expr.Bytes)
	for r.Len() > 0 {
		before := len(expr.Bytes) - r.Len()
		op, err := r.ReadByte()
		if err != nil {
			return c.fail(desc, &VInstError{Kind: OpcodeParseFailed, Reason: err.Error()})
		}
		c.progress = expr.Bytes[:before+1]

		if c.ctx.constant && !IsConstOpcode(op) {
			return c.fail(desc, &VInstError{Kind: OpcodeShouldBeConstant, Opcode: op})
		}

		if verr := c.step(op, r); verr != nil {
			return c.fail(desc, verr)
		}
	}

	if verr := c.popCtrl(); verr != nil {
		return c.fail(desc, verr)
	}
	return nil
}

// step executes the typing rule for a single opcode, having already
// consumed the opcode byte itself from r.
func (c *Checker) step(op Opcode, r *bytes.Reader) *VInstError {
	switch op {
	case OpcodeLocalGet, OpcodeLocalSet, OpcodeLocalTee:
		idx, cerr := readIndex(r)
		if cerr != nil {
			return cerr
		}
		if int(idx) >= len(c.locals) {
			return &VInstError{Kind: NoLocalAtIndex, Index: idx}
		}
		t := c.locals[idx]
		switch op {
		case OpcodeLocalGet:
			c.pushVal(concreteValue(t))
		case OpcodeLocalSet:
			return c.popExpect(t)
		case OpcodeLocalTee:
			if verr := c.popExpect(t); verr != nil {
				return verr
			}
			c.pushVal(concreteValue(t))
		}
		return nil

	case OpcodeGlobalGet, OpcodeGlobalSet:
		idx, cerr := readIndex(r)
		if cerr != nil {
			return cerr
		}
		gt := c.ctx.Global(idx)
		if gt == nil {
			return &VInstError{Kind: NoGlobalAtIndex, Index: idx}
		}
		if op == OpcodeGlobalGet {
			if c.ctx.constant && gt.Mutability == Var {
				return &VInstError{Kind: GlobalGetShouldBeConstant, Index: idx}
			}
			c.pushVal(concreteValue(gt.ValType))
			return nil
		}
		return c.popExpect(gt.ValType)

	case OpcodeI32Const:
		if _, _, err := leb128.DecodeInt32(r); err != nil {
			return &VInstError{Kind: OpcodeParseFailed, Reason: err.Error()}
		}
		c.pushVal(concreteValue(ValueTypeI32))
		return nil

	case OpcodeI64Const:
		if _, _, err := leb128.DecodeInt64(r); err != nil {
			return &VInstError{Kind: OpcodeParseFailed, Reason: err.Error()}
		}
		c.pushVal(concreteValue(ValueTypeI64))
		return nil

	case OpcodeF32Const:
		var buf [4]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return &VInstError{Kind: OpcodeParseFailed, Reason: err.Error()}
		}
		c.pushVal(concreteValue(ValueTypeF32))
		return nil

	case OpcodeF64Const:
		var buf [8]byte
		if _, err := readFull(r, buf[:]); err != nil {
			return &VInstError{Kind: OpcodeParseFailed, Reason: err.Error()}
		}
		c.pushVal(concreteValue(ValueTypeF64))
		return nil

	case OpcodeI32Add:
		if verr := c.popExpect(ValueTypeI32); verr != nil {
			return verr
		}
		if verr := c.popExpect(ValueTypeI32); verr != nil {
			return verr
		}
		c.pushVal(concreteValue(ValueTypeI32))
		return nil

	case OpcodeRefNull:
		t, err := r.ReadByte()
		if err != nil {
			return &VInstError{Kind: OpcodeParseFailed, Reason: err.Error()}
		}
		if !IsReferenceType(t) {
			return &VInstError{Kind: OpcodeParseFailed, Reason: fmt.Sprintf("ref.null operand %#x is not a reference type", t)}
		}
		c.pushVal(concreteValue(t))
		return nil

	case OpcodeRefIsNull:
		v, verr := c.popVal()
		if verr != nil {
			return verr
		}
		if !v.Unknown && !IsReferenceType(v.Type) {
			return &VInstError{Kind: StackValueShouldBeRefType, Value: v}
		}
		c.pushVal(concreteValue(ValueTypeI32))
		return nil

	case OpcodeRefFunc:
		idx, cerr := readIndex(r)
		if cerr != nil {
			return cerr
		}
		if !c.ctx.DeclaredFuncs[idx] {
			return &VInstError{Kind: NotIncludedInRefs, Index: idx}
		}
		if c.ctx.FuncType(idx) == nil {
			return &VInstError{Kind: NoFunctionAtIndex, Index: idx}
		}
		c.pushVal(concreteValue(ValueTypeFuncref))
		return nil

	default:
		return &VInstError{Kind: OpcodeParseFailed, Reason: fmt.Sprintf("unsupported opcode %#x", op)}
	}
}

func readIndex(r *bytes.Reader) (Index, *VInstError) {
	v, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return 0, &VInstError{Kind: OpcodeParseFailed, Reason: err.Error()}
	}
	return v, nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		b, err := r.ReadByte()
		if err != nil {
			return n, err
		}
		buf[n] = b
		n++
	}
	return n, nil
}
