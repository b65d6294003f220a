package sanitizer

import "github.com/kolkov/scsan/ir"

// raceSite is a recognized, instrumentable access into a shadow-linked
// work-group-local array: idx points at an *ir.Index instruction whose Base
// resolves to the shadowed original global.
type raceSite struct {
	idx   int
	index *ir.Index
	link  ShadowLink
}

// findRaceSite scans block starting at from for the first Index instruction
// that addresses a shadow-linked local-memory global, directly or through an
// address-space cast, and that is itself the pointer operand of a later
// local-memory Store in the same block. A write is what the protocol
// guards against; an Index that only ever feeds a Load is a plain read and
// is left uninstrumented, or it would flag two concurrent readers as a
// conflict.
func findRaceSite(block *ir.BasicBlock, from int, links []ShadowLink) (raceSite, bool) {
	for i := from; i < len(block.Insts); i++ {
		idx, ok := block.Insts[i].(*ir.Index)
		if !ok {
			continue
		}
		g, ok := raceBaseGlobal(idx.Base)
		if !ok {
			continue
		}
		link, ok := findShadowByOriginal(links, g)
		if !ok {
			continue
		}
		if !indexFeedsLocalStore(block, i, idx) {
			continue
		}
		return raceSite{idx: i, index: idx, link: link}, true
	}
	return raceSite{}, false
}

// indexFeedsLocalStore reports whether idx, found at position i, is the
// pointer operand of a local-address-space Store later in block.
func indexFeedsLocalStore(block *ir.BasicBlock, i int, idx *ir.Index) bool {
	for j := i + 1; j < len(block.Insts); j++ {
		st, ok := block.Insts[j].(*ir.Store)
		if !ok {
			continue
		}
		if st.Ptr == ir.Value(idx) && st.AddrSpace == ir.AddressSpaceLocal {
			return true
		}
	}
	return false
}

func raceBaseGlobal(v ir.Value) (*ir.GlobalVariable, bool) {
	switch val := v.(type) {
	case *ir.GlobalVariable:
		return val, true
	case *ir.AddrSpaceCast:
		return raceBaseGlobal(val.Val)
	default:
		return nil, false
	}
}

// applyRaceGuard implements C8: guard access to site's element behind the
// two-phase atomic-exchange protocol of §4.8.
//
// Token encoding: slot 0 means unclaimed; slot lid+1 means work-item lid
// currently owns it (tok_me = lid+1, so the zero token never collides with a
// real work-item id).
//
//	Phase A (claim):      tokA = atomic_exchange(&shadow[i], tok_me)
//	                       tokA == 0 || tokA == tok_me -> slot was free or
//	                       already mine, proceed to Phase B to re-confirm
//	                       otherwise -> a foreign work-item holds the slot,
//	                       report the conflict immediately
//	Phase B (re-confirm): tokB = atomic_exchange(&shadow[i], tok_me)
//	                       tokB == tok_me -> nothing claimed the slot between
//	                       the two exchanges, proceed
//	                       otherwise -> a foreign work-item's own Phase A
//	                       landed in that window, report the conflict
//
// tokA == 0 and tokA == tok_me both route to Phase B rather than straight to
// final: §4.8 step 4 only skips the conflict report for those two cases, it
// does not skip re-confirmation. ir has no logical-OR instruction, so the
// condition is decomposed into two sequential ICmp/CondBr pairs rather than
// one combined boolean; each failing comparison has its own conflict block,
// since conflictA reports tokA-1 (the foreign owner Phase A observed) and
// conflictB reports tokB-1 (the foreign owner that won the Phase A/B race),
// and nothing in this IR lets the two share a block without a phi.
//
// The final continuation carries site.index and everything originally after
// it, marked GuardRace so a second pass recognizes the block as already
// instrumented (§8 invariant 7).
func applyRaceGuard(f *ir.Function, block *ir.BasicBlock, site raceSite, rt *RuntimeSymbols, diag *Diagnostics) *ir.BasicBlock {
	m := f.Parent
	lidFn := getOrDeclareIntrinsic(m, IntrinsicGetLocalID, nil, ir.I64)

	// Split first, while site.index still marks the boundary: everything
	// from the access onward moves into final before this block grows any
	// new guard instructions after it.
	final := f.NewBlock(block.Name + ".rc.final")
	final.SyntheticGuard = ir.GuardRace
	block.SpliceFrom(site.index, final)

	lid := ir.NewCall(block.Name+".lid", lidFn, nil, ir.I64)
	block.Append(lid)

	tokMe := ir.NewBinOp(block.Name+".tok_me", ir.BinAdd, lid, ir.ConstInt{Ty: ir.I64, Val: 1}, ir.I64)
	block.Append(tokMe)

	shadowPtr := ir.NewIndex(block.Name+".shadow_slot", site.link.Shadow, site.index.IndexVal,
		ir.PointerType{Elem: ir.I64, AddrSpace: ir.AddressSpaceLocal})
	block.Append(shadowPtr)

	tokA := ir.NewAtomicExchange(block.Name+".tokA", shadowPtr, tokMe, ir.I64)
	block.Append(tokA)

	checkSelf := f.NewBlock(block.Name + ".rc.checkSelf")
	phaseB := f.NewBlock(block.Name + ".rc.phaseB")
	conflictA := f.NewBlock(block.Name + ".rc.conflictA")
	conflictB := f.NewBlock(block.Name + ".rc.conflictB")

	condFree := ir.NewICmp(block.Name+".rc.free", ir.PredEQ, tokA, ir.ConstInt{Ty: ir.I64, Val: 0})
	block.Append(condFree)
	block.SetTerminator(ir.NewCondBr(condFree, phaseB, checkSelf))

	condSelf := ir.NewICmp(block.Name+".rc.self", ir.PredEQ, tokA, tokMe)
	checkSelf.Append(condSelf)
	checkSelf.SetTerminator(ir.NewCondBr(condSelf, phaseB, conflictA))

	ownerA := ir.NewBinOp(block.Name+".rc.ownerA", ir.BinSub, tokA, ir.ConstInt{Ty: ir.I64, Val: 1}, ir.I64)
	conflictA.Append(ownerA)
	conflictA.Append(ir.NewCall("", rt.ReportLocalConflict, []ir.Value{ownerA}, ir.VoidType{}))
	conflictA.SetTerminator(ir.NewRetVoid())

	tokB := ir.NewAtomicExchange(block.Name+".tokB", shadowPtr, tokMe, ir.I64)
	phaseB.Append(tokB)

	condB := ir.NewICmp(block.Name+".rc.condB", ir.PredEQ, tokB, tokMe)
	phaseB.Append(condB)
	phaseB.SetTerminator(ir.NewCondBr(condB, final, conflictB))

	ownerB := ir.NewBinOp(block.Name+".rc.ownerB", ir.BinSub, tokB, ir.ConstInt{Ty: ir.I64, Val: 1}, ir.I64)
	conflictB.Append(ownerB)
	conflictB.Append(ir.NewCall("", rt.ReportLocalConflict, []ir.Value{ownerB}, ir.VoidType{}))
	conflictB.SetTerminator(ir.NewRetVoid())

	diag.Info("inserted race guard for %q against shadow %q", site.index.Name, site.link.Shadow.Name)
	return final
}
