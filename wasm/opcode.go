package wasm

// Opcode is a single WebAssembly instruction byte. Only the subset needed to
// decode and typecheck the instruction set described in this package is
// recognized; any other byte fails with OpcodeParseFailed.
type Opcode = byte

const (
	OpcodeEnd       Opcode = 0x0b
	OpcodeLocalGet  Opcode = 0x20
	OpcodeLocalSet  Opcode = 0x21
	OpcodeLocalTee  Opcode = 0x22
	OpcodeGlobalGet Opcode = 0x23
	OpcodeGlobalSet Opcode = 0x24
	OpcodeI32Const  Opcode = 0x41
	OpcodeI64Const  Opcode = 0x42
	OpcodeF32Const  Opcode = 0x43
	OpcodeF64Const  Opcode = 0x44
	OpcodeI32Add    Opcode = 0x6a
	OpcodeRefNull   Opcode = 0xd0
	OpcodeRefIsNull Opcode = 0xd1
	OpcodeRefFunc   Opcode = 0xd2
)

// OpcodeCategory groups opcodes by the shape of their typing rule.
type OpcodeCategory int

const (
	// CategoryVariable opcodes read or write a local or global slot.
	CategoryVariable OpcodeCategory = iota
	// CategoryNumericConst opcodes push a literal numeric value.
	CategoryNumericConst
	// CategoryNumeric opcodes pop and push numeric operands.
	CategoryNumeric
	// CategoryReference opcodes produce or inspect reference values.
	CategoryReference
)

// categoryOf classifies op, or returns (0, false) if op is unrecognized.
func categoryOf(op Opcode) (OpcodeCategory, bool) {
	switch op {
	case OpcodeLocalGet, OpcodeLocalSet, OpcodeLocalTee, OpcodeGlobalGet, OpcodeGlobalSet:
		return CategoryVariable, true
	case OpcodeI32Const, OpcodeI64Const, OpcodeF32Const, OpcodeF64Const:
		return CategoryNumericConst, true
	case OpcodeI32Add:
		return CategoryNumeric, true
	case OpcodeRefNull, OpcodeRefIsNull, OpcodeRefFunc:
		return CategoryReference, true
	default:
		return 0, false
	}
}

// IsConstOpcode reports whether op may appear in a constant expression: a
// global initializer, an active element/data offset, or an element
// expression. This is exactly the NumericConst category plus GlobalGet,
// RefNull and RefFunc.
func IsConstOpcode(op Opcode) bool {
	switch op {
	case OpcodeI32Const, OpcodeI64Const, OpcodeF32Const, OpcodeF64Const,
		OpcodeGlobalGet, OpcodeRefNull, OpcodeRefFunc:
		return true
	default:
		return false
	}
}

// OpcodeName returns a short mnemonic for op, used in diagnostics.
func OpcodeName(op Opcode) string {
	switch op {
	case OpcodeEnd:
		return "end"
	case OpcodeLocalGet:
		return "local.get"
	case OpcodeLocalSet:
		return "local.set"
	case OpcodeLocalTee:
		return "local.tee"
	case OpcodeGlobalGet:
		return "global.get"
	case OpcodeGlobalSet:
		return "global.set"
	case OpcodeI32Const:
		return "i32.const"
	case OpcodeI64Const:
		return "i64.const"
	case OpcodeF32Const:
		return "f32.const"
	case OpcodeF64Const:
		return "f64.const"
	case OpcodeI32Add:
		return "i32.add"
	case OpcodeRefNull:
		return "ref.null"
	case OpcodeRefIsNull:
		return "ref.is_null"
	case OpcodeRefFunc:
		return "ref.func"
	default:
		return "unknown"
	}
}
