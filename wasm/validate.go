package wasm

import "fmt"

// Validate runs the full validator over an already-parsed Module, checking
// section-internal invariants, cross-section index resolution, and every
// function body, global initializer, and active element/data offset as a
// constant or general expression against the stack-machine typechecker.
// It never mutates module.
func Validate(module *Module) error {
	ctx := BuildContext(module)

	if err := validateTypeIndices(module, ctx); err != nil {
		return err
	}
	if err := validateTablesAndMemories(module); err != nil {
		return err
	}
	if err := validateGlobals(module, ctx); err != nil {
		return err
	}
	if err := validateExports(module, ctx); err != nil {
		return err
	}
	if err := validateStart(module, ctx); err != nil {
		return err
	}
	if err := validateElements(module, ctx); err != nil {
		return err
	}
	if err := validateData(module, ctx); err != nil {
		return err
	}
	if err := validateCode(module, ctx); err != nil {
		return err
	}
	return nil
}

// validateTypeIndices checks that every type index referenced by an
// import's function description or the function section resolves into
// the type section.
func validateTypeIndices(m *Module, ctx *Context) error {
	for i, imp := range m.ImportSection {
		if imp.Type != ExternTypeFunc {
			continue
		}
		if int(imp.DescFunc) >= len(ctx.Types) {
			return &ValidationError{IndexOutOfBounds: &IndexOutOfBoundsError{
				Referring: "import", ReferringIndex: i,
				Referred: "type", ReferredIndex: imp.DescFunc, ReferredCount: len(ctx.Types),
			}}
		}
	}
	for i, ti := range m.FunctionSection {
		if int(ti) >= len(ctx.Types) {
			return &ValidationError{IndexOutOfBounds: &IndexOutOfBoundsError{
				Referring: "function", ReferringIndex: i,
				Referred: "type", ReferredIndex: ti, ReferredCount: len(ctx.Types),
			}}
		}
	}
	return nil
}

func validateTablesAndMemories(m *Module) error {
	for i, imp := range m.ImportSection {
		if imp.Type == ExternTypeTable {
			if err := checkLimits(SizeKindTable, i, imp.DescTable.Limits, MaxTableSize); err != nil {
				return err
			}
		}
		if imp.Type == ExternTypeMemory {
			if err := checkLimits(SizeKindMemory, i, imp.DescMemory.Limits, MaxMemoryPages); err != nil {
				return err
			}
		}
	}
	for i, t := range m.TableSection {
		if err := checkLimits(SizeKindTable, i, t.Limits, MaxTableSize); err != nil {
			return err
		}
	}
	for i, mem := range m.MemorySection {
		if err := checkLimits(SizeKindMemory, i, mem.Limits, MaxMemoryPages); err != nil {
			return err
		}
	}
	return nil
}

func checkLimits(kind SizeKind, index int, l Limits, cap uint32) error {
	if !l.Valid(cap) {
		return &ValidationError{Size: &SizeError{Kind: kind, Index: index, Limits: l, Maximum: cap}}
	}
	return nil
}

// validateGlobals typechecks every internally declared global's initializer
// as a constant expression of type []->[val_type] under a primed context.
func validateGlobals(m *Module, ctx *Context) error {
	primed := ctx.Prime()
	for i, g := range m.GlobalSection {
		ft := &FunctionType{Results: []ValueType{g.Type.ValType}}
		checker := NewChecker(primed, nil)
		if verr := checker.CheckExpression(ft, g.Init, fmt.Sprintf("at global section #%d", i)); verr != nil {
			return &ValidationError{InstructionViolation: verr}
		}
	}
	return nil
}

func validateExports(m *Module, ctx *Context) error {
	for i, exp := range m.ExportSection {
		var count int
		var referred string
		switch exp.Type {
		case ExternTypeFunc:
			referred, count = "function", len(ctx.FuncTypes)
		case ExternTypeTable:
			referred, count = "table", len(ctx.Tables)
		case ExternTypeMemory:
			referred, count = "memory", len(ctx.Memories)
		case ExternTypeGlobal:
			referred, count = "global", len(ctx.Globals)
		}
		if int(exp.Index) >= count {
			return &ValidationError{IndexOutOfBounds: &IndexOutOfBoundsError{
				Referring: "export", ReferringIndex: i,
				Referred: referred, ReferredIndex: exp.Index, ReferredCount: count,
			}}
		}
	}
	return nil
}

func validateStart(m *Module, ctx *Context) error {
	if m.StartSection == nil {
		return nil
	}
	fn := *m.StartSection
	if int(fn) >= len(ctx.FuncTypes) {
		return &ValidationError{IndexOutOfBounds: &IndexOutOfBoundsError{
			Referring: "start", ReferringIndex: 0,
			Referred: "function", ReferredIndex: fn, ReferredCount: len(ctx.FuncTypes),
		}}
	}
	ft := ctx.FuncType(fn)
	if len(ft.Params) != 0 || len(ft.Results) != 0 {
		return &ValidationError{StartFuncInvalid: &StartFuncInvalidError{FuncType: ft}}
	}
	return nil
}

func validateElements(m *Module, ctx *Context) error {
	primed := ctx.Prime()
	for i, el := range m.ElementSection {
		if el.Kind == ElementActive {
			ti := Index(0)
			if el.TableIndex != nil {
				ti = *el.TableIndex
			}
			if int(ti) >= len(ctx.Tables) {
				return &ValidationError{IndexOutOfBounds: &IndexOutOfBoundsError{
					Referring: "element", ReferringIndex: i,
					Referred: "table", ReferredIndex: ti, ReferredCount: len(ctx.Tables),
				}}
			}
			offsetType := &FunctionType{Results: []ValueType{ValueTypeI32}}
			checker := NewChecker(primed, nil)
			desc := fmt.Sprintf("at element section #%d, offset", i)
			if verr := checker.CheckExpression(offsetType, el.Offset, desc); verr != nil {
				return &ValidationError{InstructionViolation: verr}
			}
		}

		for _, fn := range el.FuncIndices {
			if int(fn) >= len(ctx.FuncTypes) {
				return &ValidationError{IndexOutOfBounds: &IndexOutOfBoundsError{
					Referring: "element", ReferringIndex: i,
					Referred: "function", ReferredIndex: fn, ReferredCount: len(ctx.FuncTypes),
				}}
			}
		}
		itemType := &FunctionType{Results: []ValueType{el.RefType}}
		for j, expr := range el.Exprs {
			checker := NewChecker(primed, nil)
			desc := fmt.Sprintf("at element section #%d, item #%d", i, j)
			if verr := checker.CheckExpression(itemType, expr, desc); verr != nil {
				return &ValidationError{InstructionViolation: verr}
			}
		}
	}
	return nil
}

// validateData checks every active data segment's memory index and
// typechecks its offset as a constant expression of type []->[i32], the
// data-section analogue of validateElements's active-kind handling.
func validateData(m *Module, ctx *Context) error {
	primed := ctx.Prime()
	for i, d := range m.DataSection {
		if d.Mode != DataActive {
			continue
		}
		mi := Index(0)
		if d.MemoryIndex != nil {
			mi = *d.MemoryIndex
		}
		if int(mi) >= len(ctx.Memories) {
			return &ValidationError{IndexOutOfBounds: &IndexOutOfBoundsError{
				Referring: "data", ReferringIndex: i,
				Referred: "memory", ReferredIndex: mi, ReferredCount: len(ctx.Memories),
			}}
		}
		offsetType := &FunctionType{Results: []ValueType{ValueTypeI32}}
		checker := NewChecker(primed, nil)
		desc := fmt.Sprintf("at data section #%d, offset", i)
		if verr := checker.CheckExpression(offsetType, d.Offset, desc); verr != nil {
			return &ValidationError{InstructionViolation: verr}
		}
	}
	return nil
}

// validateCode checks that the function and code sections agree in length,
// then typechecks each function body against its declared signature.
func validateCode(m *Module, ctx *Context) error {
	if len(m.FunctionSection) != len(m.CodeSection) {
		return &ValidationError{CodeSectionLength: &CodeSectionLengthMismatchError{
			FuncsDeclared: len(m.FunctionSection), CodeBodies: len(m.CodeSection),
		}}
	}

	for i, body := range m.CodeSection {
		funcIdx := Index(ctx.ImportedFuncCount + i)
		ft := ctx.FuncType(funcIdx)

		locals := append([]ValueType{}, ft.Params...)
		for _, l := range body.Locals {
			for k := uint32(0); k < l.Count; k++ {
				locals = append(locals, l.Type)
			}
		}

		checker := NewChecker(ctx, locals)
		desc := fmt.Sprintf("at code section #%d", i)
		if verr := checker.CheckExpression(ft, body.Body, desc); verr != nil {
			return &ValidationError{InstructionViolation: verr}
		}
	}
	return nil
}
