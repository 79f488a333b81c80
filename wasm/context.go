package wasm

// Context is the flattened, cross-section view of a Module that the
// validator checks instructions against: function signatures, the flat
// function, table, memory and global index spaces, and the set of function
// indices that may legally be taken as a reference value. It is built in a
// single pass over the module's sections so that later checks (a ref.func's
// target, a global.get's type) are simple slice lookups rather than repeated
// section scans.
type Context struct {
	module *Module

	// Types is the type section verbatim; function signatures are looked up
	// into it by index.
	Types []*FunctionType

	// FuncTypes maps a function index, in the flat function index space, to
	// its type index.
	FuncTypes []Index

	Tables   []*TableType
	Memories []*MemoryType
	Globals  []*GlobalType

	// ImportedGlobalCount is the number of entries at the front of Globals
	// that were imported, as opposed to internally declared. Constant
	// expressions may only reference these.
	ImportedGlobalCount int

	// ImportedFuncCount is the number of entries at the front of FuncTypes
	// that were imported, as opposed to internally declared.
	ImportedFuncCount int

	// DeclaredFuncs is the set of function indices that appear somewhere a
	// reference to that function is permitted to be taken: an export, an
	// element segment item, or a ref.func instruction in a global
	// initializer or an element segment expression. ref.func in code may
	// only name a function in this set.
	DeclaredFuncs map[Index]bool

	// constant, when true, restricts the opcodes accepted by the
	// instruction validator to the constant-expression subset and hides
	// internally declared globals from global.get. Set via Prime.
	constant bool
}

// BuildContext computes the Context for a module. It does not itself
// validate anything; out-of-range indices recorded along the way (an
// import's table/memory type, say) are left for the section validators to
// reject with a precise error.
func BuildContext(m *Module) *Context {
	c := &Context{module: m, Types: m.TypeSection}

	for _, imp := range m.ImportSection {
		switch imp.Type {
		case ExternTypeFunc:
			c.FuncTypes = append(c.FuncTypes, imp.DescFunc)
			c.ImportedFuncCount++
		case ExternTypeTable:
			c.Tables = append(c.Tables, imp.DescTable)
		case ExternTypeMemory:
			c.Memories = append(c.Memories, imp.DescMemory)
		case ExternTypeGlobal:
			c.Globals = append(c.Globals, imp.DescGlobal)
			c.ImportedGlobalCount++
		}
	}
	c.FuncTypes = append(c.FuncTypes, m.FunctionSection...)
	c.Tables = append(c.Tables, m.TableSection...)
	c.Memories = append(c.Memories, m.MemorySection...)
	for _, g := range m.GlobalSection {
		gt := g.Type
		c.Globals = append(c.Globals, &gt)
	}

	c.DeclaredFuncs = map[Index]bool{}
	for _, exp := range m.ExportSection {
		if exp.Type == ExternTypeFunc {
			c.DeclaredFuncs[exp.Index] = true
		}
	}
	if m.StartSection != nil {
		// The start function need not be declared to be called; it is
		// invoked directly rather than referenced as a value, so it is
		// deliberately not added here.
		_ = *m.StartSection
	}
	for _, el := range m.ElementSection {
		for _, fn := range el.FuncIndices {
			c.DeclaredFuncs[fn] = true
		}
		for _, expr := range el.Exprs {
			collectFuncRefs(expr, c.DeclaredFuncs)
		}
	}
	for _, g := range m.GlobalSection {
		collectFuncRefs(g.Init, c.DeclaredFuncs)
	}

	return c
}

// collectFuncRefs scans a constant expression for ref.func operands and
// marks the named function as declared.
func collectFuncRefs(expr RawExpression, into map[Index]bool) {
	b := expr.Bytes
	for i := 0; i < len(b); {
		op := b[i]
		i++
		if op != OpcodeRefFunc {
			continue
		}
		fn, n, ok := readVarU32(b[i:])
		if !ok {
			return
		}
		into[fn] = true
		i += n
	}
}

// readVarU32 decodes an unsigned LEB128 value from the front of b without
// consulting the leb128 package's io.ByteReader-oriented API, since the
// caller already holds the whole borrowed slice in memory. It returns
// (value, bytes consumed, ok); ok is false on a malformed or truncated
// encoding, in which case the caller should stop scanning rather than
// fail the scan outright (a malformed expression is reported later, when
// the validator typechecks it).
func readVarU32(b []byte) (uint32, int, bool) {
	var result uint64
	var shift uint
	for i := 0; i < len(b) && i < 5; i++ {
		byt := b[i]
		result |= uint64(byt&0x7f) << shift
		if byt&0x80 == 0 {
			return uint32(result), i + 1, true
		}
		shift += 7
	}
	return 0, 0, false
}

// Prime returns a copy of c restricted to the constant-expression subset of
// instructions, with internally declared globals removed from Globals so
// that global.get only resolves to an imported global. This mirrors the
// binary format's rule that a global initializer, or an active element or
// data segment's offset, may only read globals whose value is already
// fixed before the module's own globals are initialized.
func (c *Context) Prime() *Context {
	p := &Context{
		module:              c.module,
		Types:               c.Types,
		FuncTypes:           c.FuncTypes,
		Tables:              c.Tables,
		Memories:            c.Memories,
		Globals:             c.Globals[:c.ImportedGlobalCount],
		ImportedGlobalCount: c.ImportedGlobalCount,
		ImportedFuncCount:   c.ImportedFuncCount,
		DeclaredFuncs:       c.DeclaredFuncs,
		constant:            true,
	}
	return p
}

// FuncType returns the signature of the function at the given index in the
// flat function index space, or nil if the index is out of range.
func (c *Context) FuncType(fn Index) *FunctionType {
	if int(fn) >= len(c.FuncTypes) {
		return nil
	}
	ti := c.FuncTypes[fn]
	if int(ti) >= len(c.Types) {
		return nil
	}
	return c.Types[ti]
}

// Global returns the type of the global at the given index, or nil if the
// index is out of range (or, when c is primed, refers to an internally
// declared global).
func (c *Context) Global(idx Index) *GlobalType {
	if int(idx) >= len(c.Globals) {
		return nil
	}
	return c.Globals[idx]
}

// Table returns the table type at the given index, or nil if out of range.
func (c *Context) Table(idx Index) *TableType {
	if int(idx) >= len(c.Tables) {
		return nil
	}
	return c.Tables[idx]
}

// Memory returns the memory type at the given index, or nil if out of
// range.
func (c *Context) Memory(idx Index) *MemoryType {
	if int(idx) >= len(c.Memories) {
		return nil
	}
	return c.Memories[idx]
}
