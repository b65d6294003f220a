// moduledoc.go defines the on-disk JSON representation of a kernel module
// that `scsan scan`/`scsan batch` read and write. There is no existing
// ecosystem serialization format for this pass's IR (no Go SPIR-V/LLVM
// binding appears anywhere in the retrieved examples), so this package
// defines its own document shape and builds/renders package ir's in-memory
// graph from/to it — the equivalent role go/parser plays for
// cmd/racedetector/instrument, just for this domain's IR instead of Go
// source.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/kolkov/scsan/ir"
)

// ModuleDoc is the root of a kernel-module description file.
type ModuleDoc struct {
	TargetTriple string         `json:"target_triple"`
	Globals      []GlobalDoc    `json:"globals,omitempty"`
	Functions    []FunctionDoc  `json:"functions"`
}

// GlobalDoc describes one module-scope global variable.
type GlobalDoc struct {
	Name       string  `json:"name"`
	ElemType   TypeDoc `json:"elem_type"`
	AddrSpace  string  `json:"addr_space"`
	Constant   bool    `json:"constant,omitempty"`
	ExternInit bool    `json:"extern_init,omitempty"`
	Align      int     `json:"align,omitempty"`
}

// TypeDoc describes an ir.Type.
type TypeDoc struct {
	Kind      string   `json:"kind"` // "void" | "i32" | "i64" | "array" | "ptr"
	Elem      *TypeDoc `json:"elem,omitempty"`
	Count     int      `json:"count,omitempty"`
	AddrSpace string   `json:"addr_space,omitempty"`
}

// FunctionDoc describes one function definition or declaration.
type FunctionDoc struct {
	Name   string      `json:"name"`
	Kernel bool        `json:"kernel,omitempty"`
	Args   []ArgDoc    `json:"args,omitempty"`
	Blocks []BlockDoc  `json:"blocks"`
}

// ArgDoc describes one function parameter.
type ArgDoc struct {
	Name string  `json:"name"`
	Type TypeDoc `json:"type"`
}

// BlockDoc describes one basic block: a name, its non-terminating
// instructions in order, and exactly one terminator.
type BlockDoc struct {
	Name  string    `json:"name"`
	Insts []InstDoc `json:"insts,omitempty"`
	Term  TermDoc   `json:"term"`
}

// InstDoc describes one non-terminating instruction. Operand fields that
// don't apply to Op are left zero; Ref* fields name a previously defined
// argument, global, or instruction result by its identifier.
type InstDoc struct {
	Op        string  `json:"op"` // "alloca" | "load" | "store" | "index" | "addrspacecast" | "binop" | "icmp" | "call" | "atomic_exchange"
	Name      string  `json:"name,omitempty"`
	Type      TypeDoc `json:"type,omitempty"`
	Ref       string  `json:"ref,omitempty"`       // Load.Ptr / Index.Base / AddrSpaceCast.Val
	RefVal    string  `json:"ref_val,omitempty"`   // Store.Val
	RefIndex  string  `json:"ref_index,omitempty"` // Index.IndexVal
	ConstVal  *int64  `json:"const_val,omitempty"` // literal operand instead of a Ref
	AddrSpace string  `json:"addr_space,omitempty"`
	Op2       string  `json:"op2,omitempty"` // BinOp: "add" | "sub"; ICmp: "ult" | "eq"
	LHS       string  `json:"lhs,omitempty"`
	RHS       string  `json:"rhs,omitempty"`
	Callee    string  `json:"callee,omitempty"`  // Call: a runtime symbol or function name
	CallArgs  []Operand `json:"call_args,omitempty"` // Call: operands in order
}

// Operand is a call argument: either a reference to an existing value or a
// literal integer constant.
type Operand struct {
	Ref      string `json:"ref,omitempty"`
	ConstVal *int64 `json:"const_val,omitempty"`
}

// TermDoc describes a block's terminator.
type TermDoc struct {
	Kind  string `json:"kind"` // "br" | "condbr" | "ret"
	Cond  string `json:"cond,omitempty"`
	True  string `json:"true,omitempty"`
	False string `json:"false,omitempty"`
	Target string `json:"target,omitempty"`
}

func parseModuleDoc(data []byte) (*ModuleDoc, error) {
	var doc ModuleDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("moduledoc: %w", err)
	}
	return &doc, nil
}

func (t TypeDoc) build() (ir.Type, error) {
	switch t.Kind {
	case "", "void":
		return ir.VoidType{}, nil
	case "i32":
		return ir.I32, nil
	case "i64":
		return ir.I64, nil
	case "array":
		if t.Elem == nil {
			return nil, fmt.Errorf("array type missing elem")
		}
		elem, err := t.Elem.build()
		if err != nil {
			return nil, err
		}
		return ir.ArrayType{Elem: elem, Count: t.Count}, nil
	case "ptr":
		if t.Elem == nil {
			return nil, fmt.Errorf("ptr type missing elem")
		}
		elem, err := t.Elem.build()
		if err != nil {
			return nil, err
		}
		as, err := parseAddrSpace(t.AddrSpace)
		if err != nil {
			return nil, err
		}
		return ir.PointerType{Elem: elem, AddrSpace: as}, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", t.Kind)
	}
}

func parseAddrSpace(s string) (ir.AddressSpace, error) {
	switch s {
	case "", "generic":
		return ir.AddressSpaceGeneric, nil
	case "global":
		return ir.AddressSpaceGlobal, nil
	case "constant":
		return ir.AddressSpaceConstant, nil
	case "local":
		return ir.AddressSpaceLocal, nil
	default:
		return 0, fmt.Errorf("unknown address space %q", s)
	}
}

// build constructs an *ir.Module from doc. Instruction operands are
// resolved against a per-function symbol table seeded with arguments and
// module globals, populated incrementally as each named instruction is
// built — every Ref must name something already in scope, the same
// forward-reference restriction LLVM textual IR imposes.
func (doc *ModuleDoc) build() (*ir.Module, error) {
	m := &ir.Module{TargetTriple: doc.TargetTriple}

	globals := make(map[string]*ir.GlobalVariable, len(doc.Globals))
	for _, gd := range doc.Globals {
		elemTy, err := gd.ElemType.build()
		if err != nil {
			return nil, fmt.Errorf("global %q: %w", gd.Name, err)
		}
		as, err := parseAddrSpace(gd.AddrSpace)
		if err != nil {
			return nil, fmt.Errorf("global %q: %w", gd.Name, err)
		}
		g := &ir.GlobalVariable{
			Name:       gd.Name,
			ElemType:   elemTy,
			AddrSpace:  as,
			Constant:   gd.Constant,
			ExternInit: gd.ExternInit,
			Align:      gd.Align,
		}
		m.AddGlobal(g)
		globals[g.Name] = g
	}

	for _, fd := range doc.Functions {
		f, err := fd.build(m, globals)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", fd.Name, err)
		}
		m.Functions = append(m.Functions, f)
	}

	return m, nil
}

func (fd FunctionDoc) build(m *ir.Module, globals map[string]*ir.GlobalVariable) (*ir.Function, error) {
	f := &ir.Function{Name: fd.Name, IsKernel: fd.Kernel, Parent: m}
	if fd.Kernel {
		f.CC = ir.CallingConvGPU
	}

	scope := make(map[string]ir.Value, len(fd.Args)+len(globals))
	for name, g := range globals {
		scope[name] = g
	}
	for i, ad := range fd.Args {
		ty, err := ad.Type.build()
		if err != nil {
			return nil, fmt.Errorf("arg %q: %w", ad.Name, err)
		}
		arg := &ir.Argument{Name: ad.Name, Ty: ty, Index: i}
		f.Args = append(f.Args, arg)
		scope[ad.Name] = arg
	}

	blocksByName := make(map[string]*ir.BasicBlock, len(fd.Blocks))
	for _, bd := range fd.Blocks {
		blocksByName[bd.Name] = f.NewBlock(bd.Name)
	}

	for _, bd := range fd.Blocks {
		block := blocksByName[bd.Name]
		for _, id := range bd.Insts {
			inst, name, err := id.build(block, scope, m)
			if err != nil {
				return nil, fmt.Errorf("block %q: %w", bd.Name, err)
			}
			block.Append(inst)
			if name != "" {
				scope[name] = inst
			}
		}
		term, err := bd.Term.build(scope, blocksByName)
		if err != nil {
			return nil, fmt.Errorf("block %q terminator: %w", bd.Name, err)
		}
		block.SetTerminator(term)
	}

	return f, nil
}

func lookup(scope map[string]ir.Value, name string) (ir.Value, error) {
	v, ok := scope[name]
	if !ok {
		return nil, fmt.Errorf("undefined reference %q", name)
	}
	return v, nil
}

func (id InstDoc) operand(scope map[string]ir.Value, ref string, constVal *int64, ty ir.Type) (ir.Value, error) {
	if ref != "" {
		return lookup(scope, ref)
	}
	if constVal != nil {
		it, ok := ty.(ir.IntType)
		if !ok {
			it = ir.I64
		}
		return ir.ConstInt{Ty: it, Val: *constVal}, nil
	}
	return nil, fmt.Errorf("instruction %q: no operand given", id.Op)
}

func (id InstDoc) build(block *ir.BasicBlock, scope map[string]ir.Value, m *ir.Module) (ir.Instruction, string, error) {
	ty, err := id.Type.build()
	if err != nil {
		return nil, "", err
	}

	switch id.Op {
	case "alloca":
		return ir.NewAlloca(id.Name, ty), id.Name, nil
	case "load":
		ptr, err := lookup(scope, id.Ref)
		if err != nil {
			return nil, "", err
		}
		as, err := parseAddrSpace(id.AddrSpace)
		if err != nil {
			return nil, "", err
		}
		return ir.NewLoad(id.Name, ptr, as, ty), id.Name, nil
	case "store":
		ptr, err := lookup(scope, id.Ref)
		if err != nil {
			return nil, "", err
		}
		val, err := id.operand(scope, id.RefVal, id.ConstVal, ty)
		if err != nil {
			return nil, "", err
		}
		as, err := parseAddrSpace(id.AddrSpace)
		if err != nil {
			return nil, "", err
		}
		return ir.NewStore(val, ptr, as), "", nil
	case "index":
		base, err := lookup(scope, id.Ref)
		if err != nil {
			return nil, "", err
		}
		indexVal, err := id.operand(scope, id.RefIndex, id.ConstVal, ir.I32)
		if err != nil {
			return nil, "", err
		}
		return ir.NewIndex(id.Name, base, indexVal, ty), id.Name, nil
	case "addrspacecast":
		val, err := lookup(scope, id.Ref)
		if err != nil {
			return nil, "", err
		}
		as, err := parseAddrSpace(id.AddrSpace)
		if err != nil {
			return nil, "", err
		}
		return ir.NewAddrSpaceCast(id.Name, val, as, ty), id.Name, nil
	case "binop":
		lhs, err := lookup(scope, id.LHS)
		if err != nil {
			return nil, "", err
		}
		rhs, err := lookup(scope, id.RHS)
		if err != nil {
			return nil, "", err
		}
		op, err := parseBinOp(id.Op2)
		if err != nil {
			return nil, "", err
		}
		return ir.NewBinOp(id.Name, op, lhs, rhs, ty), id.Name, nil
	case "icmp":
		lhs, err := lookup(scope, id.LHS)
		if err != nil {
			return nil, "", err
		}
		rhs, err := lookup(scope, id.RHS)
		if err != nil {
			return nil, "", err
		}
		pred, err := parsePredicate(id.Op2)
		if err != nil {
			return nil, "", err
		}
		return ir.NewICmp(id.Name, pred, lhs, rhs), id.Name, nil
	case "call":
		callee, err := resolveCallee(m, scope, id.Callee)
		if err != nil {
			return nil, "", err
		}
		callArgs := make([]ir.Value, 0, len(id.CallArgs))
		for _, a := range id.CallArgs {
			v, err := (InstDoc{Op: "call"}).operand(scope, a.Ref, a.ConstVal, ir.I64)
			if err != nil {
				return nil, "", err
			}
			callArgs = append(callArgs, v)
		}
		return ir.NewCall(id.Name, callee, callArgs, ty), id.Name, nil
	case "atomic_exchange":
		ptr, err := lookup(scope, id.Ref)
		if err != nil {
			return nil, "", err
		}
		val, err := id.operand(scope, id.RefVal, id.ConstVal, ty)
		if err != nil {
			return nil, "", err
		}
		return ir.NewAtomicExchange(id.Name, ptr, val, ty), id.Name, nil
	default:
		return nil, "", fmt.Errorf("unknown instruction op %q", id.Op)
	}
}

func resolveCallee(m *ir.Module, scope map[string]ir.Value, name string) (ir.Value, error) {
	if v, ok := scope[name]; ok {
		return v, nil
	}
	if f, ok := m.Extern(name); ok {
		return f, nil
	}
	return nil, fmt.Errorf("undefined callee %q (only declared externs can be called)", name)
}

func parseBinOp(s string) (ir.BinOpKind, error) {
	switch s {
	case "add":
		return ir.BinAdd, nil
	case "sub":
		return ir.BinSub, nil
	default:
		return 0, fmt.Errorf("unknown binop %q", s)
	}
}

func parsePredicate(s string) (ir.Predicate, error) {
	switch s {
	case "ult":
		return ir.PredULT, nil
	case "eq":
		return ir.PredEQ, nil
	default:
		return 0, fmt.Errorf("unknown predicate %q", s)
	}
}

func (td TermDoc) build(scope map[string]ir.Value, blocks map[string]*ir.BasicBlock) (ir.Terminator, error) {
	switch td.Kind {
	case "ret":
		return ir.NewRetVoid(), nil
	case "br":
		target, ok := blocks[td.Target]
		if !ok {
			return nil, fmt.Errorf("undefined block %q", td.Target)
		}
		return ir.NewBr(target), nil
	case "condbr":
		cond, err := lookup(scope, td.Cond)
		if err != nil {
			return nil, err
		}
		trueBlock, ok := blocks[td.True]
		if !ok {
			return nil, fmt.Errorf("undefined block %q", td.True)
		}
		falseBlock, ok := blocks[td.False]
		if !ok {
			return nil, fmt.Errorf("undefined block %q", td.False)
		}
		return ir.NewCondBr(cond, trueBlock, falseBlock), nil
	default:
		return nil, fmt.Errorf("unknown terminator kind %q", td.Kind)
	}
}

// renderModuleDoc renders m back into a ModuleDoc, the inverse of build.
// It is what scanCommand uses to write the instrumented module back out:
// every block the pass created (shadow-init prologues, bounds/race guard
// diamonds) round-trips through the same document shape a hand-authored
// kernel description uses.
func renderModuleDoc(m *ir.Module) *ModuleDoc {
	doc := &ModuleDoc{TargetTriple: m.TargetTriple}

	for _, g := range m.Globals {
		doc.Globals = append(doc.Globals, GlobalDoc{
			Name:       g.Name,
			ElemType:   renderType(g.ElemType),
			AddrSpace:  renderAddrSpace(g.AddrSpace),
			Constant:   g.Constant,
			ExternInit: g.ExternInit,
			Align:      g.Align,
		})
	}

	for _, f := range m.Functions {
		doc.Functions = append(doc.Functions, renderFunction(f))
	}

	return doc
}

func renderType(t ir.Type) TypeDoc {
	switch v := t.(type) {
	case ir.VoidType:
		return TypeDoc{Kind: "void"}
	case ir.IntType:
		if v.Bits == 64 {
			return TypeDoc{Kind: "i64"}
		}
		return TypeDoc{Kind: "i32"}
	case ir.ArrayType:
		elem := renderType(v.Elem)
		return TypeDoc{Kind: "array", Elem: &elem, Count: v.Count}
	case ir.PointerType:
		elem := renderType(v.Elem)
		return TypeDoc{Kind: "ptr", Elem: &elem, AddrSpace: renderAddrSpace(v.AddrSpace)}
	default:
		return TypeDoc{Kind: "void"}
	}
}

func renderAddrSpace(a ir.AddressSpace) string {
	switch a {
	case ir.AddressSpaceGlobal:
		return "global"
	case ir.AddressSpaceConstant:
		return "constant"
	case ir.AddressSpaceLocal:
		return "local"
	default:
		return "generic"
	}
}

func renderFunction(f *ir.Function) FunctionDoc {
	fd := FunctionDoc{Name: f.Name, Kernel: f.IsKernel}
	for _, a := range f.Args {
		fd.Args = append(fd.Args, ArgDoc{Name: a.Name, Type: renderType(a.Ty)})
	}
	for _, b := range f.Blocks {
		fd.Blocks = append(fd.Blocks, renderBlock(b))
	}
	return fd
}

func renderBlock(b *ir.BasicBlock) BlockDoc {
	bd := BlockDoc{Name: b.Name}
	for _, inst := range b.Insts {
		if t, ok := inst.(ir.Terminator); ok {
			bd.Term = renderTerm(t)
			continue
		}
		bd.Insts = append(bd.Insts, renderInst(inst))
	}
	return bd
}

// renderOperand renders v as a Ref when it names something, or as a literal
// ConstVal when it is a bare constant.
func renderOperand(v ir.Value) (ref string, constVal *int64) {
	if c, ok := v.(ir.ConstInt); ok {
		val := c.Val
		return "", &val
	}
	return ir.Name(v), nil
}

func renderInst(inst ir.Instruction) InstDoc {
	name := ir.Name(inst)
	switch v := inst.(type) {
	case *ir.Alloca:
		return InstDoc{Op: "alloca", Name: name, Type: renderType(v.ElemTy)}
	case *ir.Load:
		return InstDoc{Op: "load", Name: name, Type: renderType(v.ResultTy), Ref: ir.Name(v.Ptr), AddrSpace: renderAddrSpace(v.AddrSpace)}
	case *ir.Store:
		ref, cv := renderOperand(v.Val)
		return InstDoc{Op: "store", Ref: ir.Name(v.Ptr), RefVal: ref, ConstVal: cv, AddrSpace: renderAddrSpace(v.AddrSpace)}
	case *ir.Index:
		idxRef, idxConst := renderOperand(v.IndexVal)
		return InstDoc{Op: "index", Name: name, Type: renderType(v.ResultTy), Ref: ir.Name(v.Base), RefIndex: idxRef, ConstVal: idxConst}
	case *ir.AddrSpaceCast:
		return InstDoc{Op: "addrspacecast", Name: name, Type: renderType(v.Ty), Ref: ir.Name(v.Val), AddrSpace: renderAddrSpace(v.ToAS)}
	case *ir.BinOp:
		return InstDoc{Op: "binop", Name: name, Type: renderType(v.Ty), Op2: v.Op.String(), LHS: ir.Name(v.LHS), RHS: ir.Name(v.RHS)}
	case *ir.ICmp:
		return InstDoc{Op: "icmp", Name: name, Op2: v.Pred.String(), LHS: ir.Name(v.LHS), RHS: ir.Name(v.RHS)}
	case *ir.AtomicExchange:
		ref, cv := renderOperand(v.Val)
		return InstDoc{Op: "atomic_exchange", Name: name, Type: renderType(v.Ty), Ref: ir.Name(v.Ptr), RefVal: ref, ConstVal: cv}
	case *ir.Call:
		callArgs := make([]Operand, len(v.Args))
		for i, a := range v.Args {
			ref, cv := renderOperand(a)
			callArgs[i] = Operand{Ref: ref, ConstVal: cv}
		}
		return InstDoc{Op: "call", Name: name, Type: renderType(v.ResultTy), Callee: ir.Name(v.Callee), CallArgs: callArgs}
	default:
		return InstDoc{Op: "unknown"}
	}
}

func renderTerm(t ir.Terminator) TermDoc {
	switch v := t.(type) {
	case *ir.Ret:
		return TermDoc{Kind: "ret"}
	case *ir.Br:
		return TermDoc{Kind: "br", Target: v.Target.Name}
	case *ir.CondBr:
		return TermDoc{Kind: "condbr", Cond: ir.Name(v.Cond), True: v.True.Name, False: v.False.Name}
	default:
		return TermDoc{Kind: "ret"}
	}
}
