package sanitizer

import "github.com/kolkov/scsan/ir"

// emitShadowInit implements C5: for every shadow link, insert a call to
// shadow_memset at the front of the kernel's entry block so that every slot
// starts in the "no writer" state before any work-item can observe it (§4.5).
//
// Insertion is idempotent: if the entry block already carries a
// shadow_memset call for a given shadow global — which happens when the
// pass runs twice over the same function — emitShadowInit leaves it alone
// rather than adding a second initialization of the same array (§8
// invariant 7).
func emitShadowInit(f *ir.Function, links []ShadowLink, rt *RuntimeSymbols) {
	entry := f.Entry()
	already := alreadyInitialized(entry, rt)

	var prefix []ir.Instruction
	for _, link := range links {
		if already[link.Shadow] {
			continue
		}
		call := ir.NewCall("", rt.ShadowMemset, []ir.Value{
			link.Shadow,
			ir.ConstInt{Ty: ir.I64, Val: int64(link.Original.ArrayLen())},
			ir.ConstInt{Ty: ir.I64, Val: 0},
		}, ir.VoidType{})
		prefix = append(prefix, call)
	}
	if len(prefix) == 0 {
		return
	}
	entry.Insts = append(prefix, entry.Insts...)
}

// alreadyInitialized reports, per shadow global, whether entry already
// contains a shadow_memset call targeting it.
func alreadyInitialized(entry *ir.BasicBlock, rt *RuntimeSymbols) map[*ir.GlobalVariable]bool {
	seen := make(map[*ir.GlobalVariable]bool)
	for _, inst := range entry.Insts {
		call, ok := inst.(*ir.Call)
		if !ok || call.Callee != rt.ShadowMemset {
			continue
		}
		if len(call.Args) == 0 {
			continue
		}
		if g, ok := call.Args[0].(*ir.GlobalVariable); ok {
			seen[g] = true
		}
	}
	return seen
}
