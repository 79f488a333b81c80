package wasm

import "fmt"

// SectionID identifies one of the thirteen WebAssembly section kinds.
type SectionID = byte

const (
	SectionIDCustom    SectionID = 0
	SectionIDType      SectionID = 1
	SectionIDImport    SectionID = 2
	SectionIDFunction  SectionID = 3
	SectionIDTable     SectionID = 4
	SectionIDMemory    SectionID = 5
	SectionIDGlobal    SectionID = 6
	SectionIDExport    SectionID = 7
	SectionIDStart     SectionID = 8
	SectionIDElement   SectionID = 9
	SectionIDCode      SectionID = 10
	SectionIDData      SectionID = 11
	SectionIDDataCount SectionID = 12
)

// SectionIDName returns the lower-case name used in diagnostics for a
// section ID, or "unknown" if id isn't one of the 13 defined kinds.
func SectionIDName(id SectionID) string {
	switch id {
	case SectionIDCustom:
		return "custom"
	case SectionIDType:
		return "type"
	case SectionIDImport:
		return "import"
	case SectionIDFunction:
		return "function"
	case SectionIDTable:
		return "table"
	case SectionIDMemory:
		return "memory"
	case SectionIDGlobal:
		return "global"
	case SectionIDExport:
		return "export"
	case SectionIDStart:
		return "start"
	case SectionIDElement:
		return "element"
	case SectionIDCode:
		return "code"
	case SectionIDData:
		return "data"
	case SectionIDDataCount:
		return "datacount"
	default:
		return "unknown"
	}
}

// RawExpression is the byte span of a constant expression or function body,
// borrowed from the input buffer with the terminating 0x0b (end) opcode
// already stripped.
type RawExpression struct {
	Bytes []byte
}

// Import is a single entry of the import section: a two-level name and the
// kind of item it introduces, which is appended to the corresponding index
// space ahead of any internally declared items of that kind.
type Import struct {
	Module, Name string
	Type         ExternType

	// Exactly one of the following is meaningful, selected by Type.
	DescFunc   Index
	DescTable  *TableType
	DescMemory *MemoryType
	DescGlobal *GlobalType
}

// Export is a single entry of the export section.
type Export struct {
	Name  string
	Type  ExternType
	Index Index
}

// Global is a declared (non-imported) global: its type and its constant
// initializer expression.
type Global struct {
	Type GlobalType
	Init RawExpression
}

// ElementKind distinguishes how an element segment is installed into a
// table, or whether it is installed at all.
type ElementKind int

const (
	ElementActive ElementKind = iota
	ElementPassive
	ElementDeclarative
)

// Element is a single entry of the element section. For ElementActive, both
// TableIndex (defaulting to 0 when nil) and Offset are meaningful. Items are
// provided as exactly one of FuncIndices or Exprs, mirroring the two binary
// encodings permitted by the flag word (see Element decoding, spec §4.2);
// RefType is the declared reference type of the segment either way.
type Element struct {
	Kind       ElementKind
	TableIndex *Index
	Offset     RawExpression

	RefType     RefType
	FuncIndices []Index
	Exprs       []RawExpression
}

// DataMode distinguishes an active data segment, which is copied into a
// memory at instantiation, from a passive one.
type DataMode int

const (
	DataActive DataMode = iota
	DataPassive
)

// DataSegment is a single entry of the data section. For DataActive, both
// MemoryIndex (defaulting to 0 when nil) and Offset are meaningful. Bytes is
// borrowed from the input buffer.
type DataSegment struct {
	Mode        DataMode
	MemoryIndex *Index
	Offset      RawExpression
	Bytes       []byte
}

// Locals is one run-length-encoded group of a function body's local
// declarations; it expands to Count consecutive slots of Type.
type Locals struct {
	Count uint32
	Type  ValueType
}

// FunctionBody is a single entry of the code section.
type FunctionBody struct {
	Locals []Locals
	Body   RawExpression
}

// Module is the fully decoded, structurally-parsed form of a WebAssembly
// binary module. Sections are stored in per-kind, encounter-ordered slices;
// a nil or empty slice/pointer means the section was absent from the
// binary. RawExpression and DataSegment.Bytes fields are borrowed views
// into the buffer the Module was decoded from, and remain valid only as
// long as that buffer does.
type Module struct {
	TypeSection      []*FunctionType
	ImportSection    []*Import
	FunctionSection  []Index // one type index per internally declared function
	TableSection     []*TableType
	MemorySection    []*MemoryType
	GlobalSection    []*Global
	ExportSection    []*Export
	StartSection     *Index
	ElementSection   []*Element
	CodeSection      []*FunctionBody
	DataSection      []*DataSegment
	DataCountSection *uint32

	// CustomSections preserves custom sections in encounter order; they are
	// opaque to validation.
	CustomSections []*CustomSection
}

// CustomSection is a named, opaque payload. Unlike every other section kind,
// any number of custom sections may appear, interleaved anywhere in the
// module.
type CustomSection struct {
	Name    string
	Payload []byte
}

// ImportFuncCount returns the number of imported functions.
func (m *Module) ImportFuncCount() int { return m.importCount(ExternTypeFunc) }

// ImportTableCount returns the number of imported tables.
func (m *Module) ImportTableCount() int { return m.importCount(ExternTypeTable) }

// ImportMemoryCount returns the number of imported memories.
func (m *Module) ImportMemoryCount() int { return m.importCount(ExternTypeMemory) }

// ImportGlobalCount returns the number of imported globals.
func (m *Module) ImportGlobalCount() int { return m.importCount(ExternTypeGlobal) }

func (m *Module) importCount(t ExternType) int {
	n := 0
	for _, i := range m.ImportSection {
		if i.Type == t {
			n++
		}
	}
	return n
}

// FunctionTypeIndex returns the type index of the function at the given
// position in the flat function index space (imports first, then
// internally declared functions), and whether that index is in range.
func (m *Module) FunctionTypeIndex(fn Index) (Index, bool) {
	importFuncs := m.ImportFuncCount()
	if int(fn) < importFuncs {
		i := 0
		for _, imp := range m.ImportSection {
			if imp.Type != ExternTypeFunc {
				continue
			}
			if Index(i) == fn {
				return imp.DescFunc, true
			}
			i++
		}
	}
	idx := int(fn) - importFuncs
	if idx < 0 || idx >= len(m.FunctionSection) {
		return 0, false
	}
	return m.FunctionSection[idx], true
}

// FunctionCount returns the total size of the function index space,
// imports plus internally declared functions.
func (m *Module) FunctionCount() int {
	return m.ImportFuncCount() + len(m.FunctionSection)
}

// TableCount returns the total size of the table index space.
func (m *Module) TableCount() int {
	return m.ImportTableCount() + len(m.TableSection)
}

// MemoryCount returns the total size of the memory index space.
func (m *Module) MemoryCount() int {
	return m.ImportMemoryCount() + len(m.MemorySection)
}

// GlobalCount returns the total size of the global index space.
func (m *Module) GlobalCount() int {
	return m.ImportGlobalCount() + len(m.GlobalSection)
}

// GlobalTypeAt returns the type of the global at the given position in the
// flat global index space (imports first), and whether that index is in
// range.
func (m *Module) GlobalTypeAt(idx Index) (*GlobalType, bool) {
	i := Index(0)
	for _, imp := range m.ImportSection {
		if imp.Type != ExternTypeGlobal {
			continue
		}
		if i == idx {
			return imp.DescGlobal, true
		}
		i++
	}
	internal := idx - i
	if int(internal) >= len(m.GlobalSection) {
		return nil, false
	}
	return &m.GlobalSection[internal].Type, true
}

// String renders a FunctionBody for debugging.
func (f *FunctionBody) String() string {
	return fmt.Sprintf("body(%d locals, %d bytes)", len(f.Locals), len(f.Body.Bytes))
}
