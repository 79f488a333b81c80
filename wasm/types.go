package wasm

import "strings"

// FunctionType is a function signature: an ordered sequence of parameter
// types followed by an ordered sequence of result types. Its binary
// encoding is prefixed by 0x60.
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// String renders a FunctionType as "<params>_<results>", concatenating each
// side's value type names, or "null" for an empty side. This matches the
// key wazero uses to deduplicate identical signatures.
func (t *FunctionType) String() string {
	ps := "null"
	if len(t.Params) > 0 {
		var b strings.Builder
		for _, p := range t.Params {
			b.WriteString(ValueTypeName(p))
		}
		ps = b.String()
	}
	rs := "null"
	if len(t.Results) > 0 {
		var b strings.Builder
		for _, r := range t.Results {
			b.WriteString(ValueTypeName(r))
		}
		rs = b.String()
	}
	return ps + "_" + rs
}

// EqualsSignature reports whether t's parameters and results are exactly
// params and results, element by element.
func (t *FunctionType) EqualsSignature(params, results []ValueType) bool {
	if len(t.Params) != len(params) || len(t.Results) != len(results) {
		return false
	}
	for i, p := range params {
		if t.Params[i] != p {
			return false
		}
	}
	for i, r := range results {
		if t.Results[i] != r {
			return false
		}
	}
	return true
}

// Limits bounds the size of a table or memory: a minimum, and an optional
// maximum. Encoded with a leading flag byte: 0x00 for min-only, 0x01 for
// min-and-max.
type Limits struct {
	Min uint32
	Max *uint32
}

// The caps a Limits' Min and Max (when present) must not exceed.
// MaxTableSize is 2^32-1, the largest value a u32 can hold.
// MaxMemoryPages is 2^16, the MVP limit of 4GiB addressable memory at 64KiB
// pages.
const (
	MaxTableSize   uint32 = 0xffffffff
	MaxMemoryPages uint32 = 0x10000
)

// Valid reports whether the limits satisfy min <= max <= cap (when a
// maximum is present) or min <= cap (otherwise).
func (l *Limits) Valid(cap uint32) bool {
	if l.Max != nil {
		return l.Min <= *l.Max && *l.Max <= cap
	}
	return l.Min <= cap
}

// TableType describes a table: the reference type of its elements, and its
// size limits (counted in elements).
type TableType struct {
	ElemType RefType
	Limits   Limits
}

// MemoryType describes a linear memory: its size limits, counted in 64KiB
// pages.
type MemoryType struct {
	Limits Limits
}

// Mutability distinguishes an immutable global (whose initializer is its
// value forever) from a mutable one.
type Mutability bool

const (
	Const Mutability = false
	Var   Mutability = true
)

// GlobalType describes a global variable's value type and mutability.
type GlobalType struct {
	ValType    ValueType
	Mutability Mutability
}
