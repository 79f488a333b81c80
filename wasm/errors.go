package wasm

import (
	"errors"
	"fmt"
)

// Sentinel errors a caller can match with errors.Is against the concrete
// error returned by decoding, without type-asserting the richer struct
// beneath.
var (
	ErrMagicMismatch     = errors.New("wasm: not a WebAssembly binary (bad magic)")
	ErrVersionMismatch   = errors.New("wasm: unsupported binary version")
	ErrSectionTruncated  = errors.New("wasm: section payload truncated")
	ErrSectionOverread   = errors.New("wasm: section payload not fully consumed")
	ErrTrailingBytes     = errors.New("wasm: trailing bytes after last section")
	ErrInvalidUTF8       = errors.New("wasm: name is not valid UTF-8")
	ErrUnknownSectionID  = errors.New("wasm: unknown section id")
	ErrSectionOutOfOrder = errors.New("wasm: sections out of order")
)

// ParseError is returned by binary.DecodeModule when the input is not a structurally
// well-formed WebAssembly binary. Offset is the byte position at which the
// problem was detected, for diagnostics.
type ParseError struct {
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wasm: parse error at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IndexOutOfBoundsError reports that a cross-section reference did not
// resolve: referring names the section and item making the reference,
// referred names the index space being dereferenced, and the last two
// fields are the offending index and the size of the index space it was
// checked against.
type IndexOutOfBoundsError struct {
	Referring      string
	ReferringIndex int
	Referred       string
	ReferredIndex  Index
	ReferredCount  int
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("wasm: %s #%d refers to %s index %d, but there are only %d",
		e.Referring, e.ReferringIndex, e.Referred, e.ReferredIndex, e.ReferredCount)
}

// CodeSectionLengthMismatchError reports that the function and code
// sections disagree on the number of internally declared functions.
type CodeSectionLengthMismatchError struct {
	FuncsDeclared int
	CodeBodies    int
}

func (e *CodeSectionLengthMismatchError) Error() string {
	return fmt.Sprintf("wasm: function section declares %d functions but code section has %d bodies",
		e.FuncsDeclared, e.CodeBodies)
}

// SizeKind distinguishes whether a SizeError refers to a table or a memory,
// since the two share a shape.
type SizeKind int

const (
	SizeKindTable SizeKind = iota
	SizeKindMemory
)

func (k SizeKind) String() string {
	if k == SizeKindTable {
		return "table"
	}
	return "memory"
}

// SizeError reports that a table's or memory's limits violate min <= max,
// or exceed the kind's absolute cap.
type SizeError struct {
	Kind    SizeKind
	Index   int
	Limits  Limits
	Maximum uint32
}

func (e *SizeError) Error() string {
	max := "none"
	if e.Limits.Max != nil {
		max = fmt.Sprintf("%d", *e.Limits.Max)
	}
	return fmt.Sprintf("wasm: %s #%d has invalid limits (min=%d, max=%s, cap=%d)",
		e.Kind, e.Index, e.Limits.Min, max, e.Maximum)
}

// StartFuncInvalidError reports that the module's start function does not
// have the required nullary, no-result signature.
type StartFuncInvalidError struct {
	FuncType *FunctionType
}

func (e *StartFuncInvalidError) Error() string {
	return fmt.Sprintf("wasm: start function must have type null_null, has type %s", e.FuncType)
}

// VInstErrorKind enumerates the ways an individual instruction can fail
// typechecking.
type VInstErrorKind int

const (
	ControlStackUnderflow VInstErrorKind = iota
	ValueStackUnderflow
	PopValueTypeMismatch
	OpcodeParseFailed
	NoLocalAtIndex
	NoGlobalAtIndex
	NoFunctionAtIndex
	NotIncludedInRefs
	OpcodeShouldBeConstant
	GlobalGetShouldBeConstant
	StackValueShouldBeRefType
)

// VInstError is the specific typing-rule violation an instruction
// committed. Expected and Actual are populated only for
// PopValueTypeMismatch; Index for the NoXAtIndex/NotIncludedInRefs/
// GlobalGetShouldBeConstant kinds; Opcode for OpcodeShouldBeConstant;
// Reason for OpcodeParseFailed; Value for StackValueShouldBeRefType.
type VInstError struct {
	Kind     VInstErrorKind
	Expected ValueType
	Actual   ValueType
	Index    Index
	Opcode   Opcode
	Reason   string
	Value    StackValue
}

func (e *VInstError) Error() string {
	switch e.Kind {
	case ControlStackUnderflow:
		return "control stack underflow"
	case ValueStackUnderflow:
		return "value stack underflow"
	case PopValueTypeMismatch:
		return fmt.Sprintf("type mismatch: expected %s, got %s", ValueTypeName(e.Expected), ValueTypeName(e.Actual))
	case OpcodeParseFailed:
		return fmt.Sprintf("failed to parse opcode: %s", e.Reason)
	case NoLocalAtIndex:
		return fmt.Sprintf("no local at index %d", e.Index)
	case NoGlobalAtIndex:
		return fmt.Sprintf("no global at index %d", e.Index)
	case NoFunctionAtIndex:
		return fmt.Sprintf("no function at index %d", e.Index)
	case NotIncludedInRefs:
		return fmt.Sprintf("function %d is not declared (not exported, element, or ref.func'd elsewhere)", e.Index)
	case OpcodeShouldBeConstant:
		return fmt.Sprintf("opcode %s is not allowed in a constant expression", OpcodeName(e.Opcode))
	case GlobalGetShouldBeConstant:
		return fmt.Sprintf("global.get %d refers to a mutable global, which is not constant here", e.Index)
	case StackValueShouldBeRefType:
		return fmt.Sprintf("expected a reference type on the stack, got %s", e.Value)
	default:
		return "invalid instruction"
	}
}

// InstructionValidationError is the enriched error the instruction
// typechecker returns: the underlying violation plus enough diagnostic
// state (the opcode stream consumed so far, and snapshots of both stacks
// at the point of failure) to reconstruct what the checker was looking at.
type InstructionValidationError struct {
	Desc         string
	Err          *VInstError
	Progress     []byte
	ValueStack   []StackValue
	ControlStack []ControlFrame
}

func (e *InstructionValidationError) Error() string {
	if e.Desc != "" {
		return fmt.Sprintf("wasm: %s: %v", e.Desc, e.Err)
	}
	return fmt.Sprintf("wasm: %v", e.Err)
}

func (e *InstructionValidationError) Unwrap() error { return e.Err }

// ValidationError is the umbrella type Validate returns; exactly one of its
// fields is non-nil, identifying which of the ValidationError variants
// occurred.
type ValidationError struct {
	IndexOutOfBounds     *IndexOutOfBoundsError
	CodeSectionLength    *CodeSectionLengthMismatchError
	Size                 *SizeError
	StartFuncInvalid     *StartFuncInvalidError
	InstructionViolation *InstructionValidationError
}

func (e *ValidationError) Error() string {
	switch {
	case e.IndexOutOfBounds != nil:
		return e.IndexOutOfBounds.Error()
	case e.CodeSectionLength != nil:
		return e.CodeSectionLength.Error()
	case e.Size != nil:
		return e.Size.Error()
	case e.StartFuncInvalid != nil:
		return e.StartFuncInvalid.Error()
	case e.InstructionViolation != nil:
		return e.InstructionViolation.Error()
	default:
		return "wasm: validation error"
	}
}

func (e *ValidationError) Unwrap() error {
	switch {
	case e.IndexOutOfBounds != nil:
		return e.IndexOutOfBounds
	case e.CodeSectionLength != nil:
		return e.CodeSectionLength
	case e.Size != nil:
		return e.Size
	case e.StartFuncInvalid != nil:
		return e.StartFuncInvalid
	case e.InstructionViolation != nil:
		return e.InstructionViolation
	default:
		return nil
	}
}
