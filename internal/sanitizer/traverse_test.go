package sanitizer

import (
	"bytes"
	"testing"

	"github.com/kolkov/scsan/ir"
)

// buildBoundsKernel returns a kernel with a single bounds-checkable site:
// %p = index buf, 3 ; %v = load %p ; ret void
func buildBoundsKernel(m *ir.Module) *ir.Function {
	buf := ptrArg(0, "buf")
	n := i64Arg(1, "n")
	f := &ir.Function{Name: "k", IsKernel: true, Args: []*ir.Argument{buf, n}, Parent: m}
	m.Functions = append(m.Functions, f)

	entry := f.NewBlock("entry")
	idx := ir.NewIndex("p", buf, ir.ConstInt{Ty: ir.I32, Val: 3}, ir.PointerType{Elem: ir.I32, AddrSpace: ir.AddressSpaceGlobal})
	entry.Append(idx)
	entry.Append(ir.NewLoad("v", idx, ir.AddressSpaceGlobal, ir.I32))
	entry.SetTerminator(ir.NewRetVoid())
	return f
}

func TestInstrumentFunctionBoundsCheck(t *testing.T) {
	m := &ir.Module{}
	f := buildBoundsKernel(m)
	rt := declareRuntimeSymbols(m)
	diag := NewDiagnostics(&bytes.Buffer{})

	bounds, races := instrumentFunction(f, analyzeArgPairs(f), nil, rt, diag)
	if bounds != 1 || races != 0 {
		t.Fatalf("expected 1 bounds check, 0 race guards, got %d/%d", bounds, races)
	}
	if got := len(f.Blocks); got != 3 {
		t.Fatalf("expected entry+then+else blocks, got %d", got)
	}
}

func TestInstrumentFunctionIsIdempotent(t *testing.T) {
	m := &ir.Module{}
	f := buildBoundsKernel(m)
	rt := declareRuntimeSymbols(m)
	diag := NewDiagnostics(&bytes.Buffer{})

	bounds1, _ := instrumentFunction(f, analyzeArgPairs(f), nil, rt, diag)
	blocksAfterFirst := len(f.Blocks)

	bounds2, races2 := instrumentFunction(f, analyzeArgPairs(f), nil, rt, diag)
	if bounds1 != 1 {
		t.Fatalf("expected 1 bounds check on first run, got %d", bounds1)
	}
	if bounds2 != 0 || races2 != 0 {
		t.Fatalf("expected re-running to instrument nothing new, got %d/%d", bounds2, races2)
	}
	if len(f.Blocks) != blocksAfterFirst {
		t.Fatalf("expected no new blocks on re-run, had %d now %d", blocksAfterFirst, len(f.Blocks))
	}
}

func TestInstrumentFunctionBoundsThenRaceInSameFunction(t *testing.T) {
	tile := &ir.GlobalVariable{Name: "tile", ElemType: ir.ArrayType{Elem: ir.I32, Count: 32}, AddrSpace: ir.AddressSpaceLocal}
	m := &ir.Module{Globals: []*ir.GlobalVariable{tile}}
	diag := NewDiagnostics(&bytes.Buffer{})
	links := synthesizeShadowArrays(m, diag)
	rt := declareRuntimeSymbols(m)

	buf := ptrArg(0, "buf")
	n := i64Arg(1, "n")
	f := &ir.Function{Name: "k", IsKernel: true, Args: []*ir.Argument{buf, n}, Parent: m}
	m.Functions = append(m.Functions, f)

	entry := f.NewBlock("entry")
	boundsIdx := ir.NewIndex("p", buf, ir.ConstInt{Ty: ir.I32, Val: 3}, ir.PointerType{Elem: ir.I32, AddrSpace: ir.AddressSpaceGlobal})
	entry.Append(boundsIdx)
	entry.Append(ir.NewLoad("v", boundsIdx, ir.AddressSpaceGlobal, ir.I32))
	raceIdx := ir.NewIndex("q", tile, ir.ConstInt{Ty: ir.I32, Val: 1}, ir.PointerType{Elem: ir.I32, AddrSpace: ir.AddressSpaceLocal})
	entry.Append(raceIdx)
	entry.Append(ir.NewStore(ir.ConstInt{Ty: ir.I32, Val: 7}, raceIdx, ir.AddressSpaceLocal))
	entry.SetTerminator(ir.NewRetVoid())

	bounds, races := instrumentFunction(f, analyzeArgPairs(f), links, rt, diag)
	if bounds != 1 || races != 1 {
		t.Fatalf("expected 1 bounds check and 1 race guard, got %d/%d", bounds, races)
	}
}
