package sanitizer

import (
	"bytes"
	"testing"

	"github.com/kolkov/scsan/ir"
)

func TestFindRaceSiteDirectGlobal(t *testing.T) {
	tile := &ir.GlobalVariable{Name: "tile", ElemType: ir.ArrayType{Elem: ir.I32, Count: 32}, AddrSpace: ir.AddressSpaceLocal}
	shadow := &ir.GlobalVariable{Name: "tile.shadow", ElemType: ir.ArrayType{Elem: ir.I64, Count: 32}, AddrSpace: ir.AddressSpaceLocal}
	links := []ShadowLink{{Original: tile, Shadow: shadow}}

	f := &ir.Function{}
	block := f.NewBlock("entry")
	idx := ir.NewIndex("p", tile, ir.ConstInt{Ty: ir.I32, Val: 1}, ir.PointerType{Elem: ir.I32, AddrSpace: ir.AddressSpaceLocal})
	block.Append(idx)
	store := ir.NewStore(ir.ConstInt{Ty: ir.I32, Val: 9}, idx, ir.AddressSpaceLocal)
	block.Append(store)
	block.SetTerminator(ir.NewRetVoid())

	site, ok := findRaceSite(block, 0, links)
	if !ok {
		t.Fatal("expected a race site")
	}
	if site.link.Shadow != shadow {
		t.Fatalf("unexpected link: %+v", site.link)
	}
}

func TestFindRaceSiteIgnoresReadOnlyAccess(t *testing.T) {
	tile := &ir.GlobalVariable{Name: "tile", ElemType: ir.ArrayType{Elem: ir.I32, Count: 32}, AddrSpace: ir.AddressSpaceLocal}
	shadow := &ir.GlobalVariable{Name: "tile.shadow", ElemType: ir.ArrayType{Elem: ir.I64, Count: 32}, AddrSpace: ir.AddressSpaceLocal}
	links := []ShadowLink{{Original: tile, Shadow: shadow}}

	f := &ir.Function{}
	block := f.NewBlock("entry")
	idx := ir.NewIndex("p", tile, ir.ConstInt{Ty: ir.I32, Val: 1}, ir.PointerType{Elem: ir.I32, AddrSpace: ir.AddressSpaceLocal})
	block.Append(idx)
	load := ir.NewLoad("v", idx, ir.AddressSpaceLocal, ir.I32)
	block.Append(load)
	block.SetTerminator(ir.NewRetVoid())

	if _, ok := findRaceSite(block, 0, links); ok {
		t.Fatal("expected a pure read to be left uninstrumented")
	}
}

func TestFindRaceSiteIgnoresUnlinkedGlobal(t *testing.T) {
	other := &ir.GlobalVariable{Name: "other", ElemType: ir.ArrayType{Elem: ir.I32, Count: 32}, AddrSpace: ir.AddressSpaceLocal}
	f := &ir.Function{}
	block := f.NewBlock("entry")
	idx := ir.NewIndex("p", other, ir.ConstInt{Ty: ir.I32, Val: 1}, ir.PointerType{Elem: ir.I32, AddrSpace: ir.AddressSpaceLocal})
	block.Append(idx)
	block.SetTerminator(ir.NewRetVoid())

	if _, ok := findRaceSite(block, 0, nil); ok {
		t.Fatal("expected no race site without a shadow link")
	}
}

func TestApplyRaceGuardBuildsTwoPhaseDiamond(t *testing.T) {
	tile := &ir.GlobalVariable{Name: "tile", ElemType: ir.ArrayType{Elem: ir.I32, Count: 32}, AddrSpace: ir.AddressSpaceLocal}
	shadow := &ir.GlobalVariable{Name: "tile.shadow", ElemType: ir.ArrayType{Elem: ir.I64, Count: 32}, AddrSpace: ir.AddressSpaceLocal}
	links := []ShadowLink{{Original: tile, Shadow: shadow}}

	m := &ir.Module{}
	f := &ir.Function{Parent: m}
	block := f.NewBlock("entry")
	idx := ir.NewIndex("p", tile, ir.ConstInt{Ty: ir.I32, Val: 1}, ir.PointerType{Elem: ir.I32, AddrSpace: ir.AddressSpaceLocal})
	block.Append(idx)
	store := ir.NewStore(ir.ConstInt{Ty: ir.I32, Val: 9}, idx, ir.AddressSpaceLocal)
	block.Append(store)
	block.SetTerminator(ir.NewRetVoid())

	rt := declareRuntimeSymbols(m)
	diag := NewDiagnostics(&bytes.Buffer{})

	site, ok := findRaceSite(block, 0, links)
	if !ok {
		t.Fatal("expected a race site")
	}
	final := applyRaceGuard(f, block, site, rt, diag)

	if final.SyntheticGuard != ir.GuardRace {
		t.Fatal("expected the final continuation to carry GuardRace")
	}
	if len(final.Insts) != 3 {
		t.Fatalf("expected index, store, ret in final, got %d", len(final.Insts))
	}

	// Phase A's free-slot check: a foreign token must NOT be able to reach
	// final without running Phase B, so both branches here have to lead
	// somewhere other than final directly.
	condFree, ok := block.Terminator().(*ir.CondBr)
	if !ok {
		t.Fatalf("expected block to end in a conditional branch, got %#v", block.Terminator())
	}
	if condFree.True == final || condFree.False == final {
		t.Fatal("phase A must route every outcome through phase B or a conflict block, never straight to final")
	}
	phaseB := condFree.True
	checkSelf := condFree.False

	condSelf, ok := checkSelf.Terminator().(*ir.CondBr)
	if !ok {
		t.Fatalf("expected the self-token check to end in a conditional branch, got %#v", checkSelf.Terminator())
	}
	if condSelf.True != phaseB {
		t.Fatal("a self-owned token must also route through phase B")
	}
	conflictA := condSelf.False
	requireConflictBlock(t, conflictA, rt)

	foundExchange := false
	for _, inst := range phaseB.Insts {
		if _, ok := inst.(*ir.AtomicExchange); ok {
			foundExchange = true
		}
	}
	if !foundExchange {
		t.Fatal("expected phase B to perform a second atomic exchange")
	}

	condB, ok := phaseB.Terminator().(*ir.CondBr)
	if !ok {
		t.Fatalf("expected phase B to end in a conditional branch, got %#v", phaseB.Terminator())
	}
	if condB.True != final {
		t.Fatal("phase B's unclaimed-in-the-window edge should lead to final")
	}
	conflictB := condB.False
	requireConflictBlock(t, conflictB, rt)

	if conflictA == conflictB {
		t.Fatal("phase A and phase B must report through distinct conflict blocks, each with its own owner token")
	}
}

func requireConflictBlock(t *testing.T, conflict *ir.BasicBlock, rt *RuntimeSymbols) {
	t.Helper()
	call, ok := conflict.Insts[len(conflict.Insts)-2].(*ir.Call)
	if !ok || call.Callee != rt.ReportLocalConflict {
		t.Fatalf("expected conflict block to call report_local_memory_conflict, got %#v", conflict.Insts)
	}
	if _, ok := conflict.Terminator().(*ir.Ret); !ok {
		t.Fatal("expected conflict block to end in a ret")
	}
}
