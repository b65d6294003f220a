package sanitizer

import "github.com/kolkov/scsan/ir"

// boundsSite is a recognized, instrumentable indexing instruction: idx
// points at an *ir.Index whose base resolves back to a linked buffer
// argument and whose paired length argument bounds it.
type boundsSite struct {
	idx   int
	index *ir.Index
	link  ArgPair
}

// findBoundsSite scans block starting at from for the first Index
// instruction recognized as an in-bounds-checkable site per §4.7. It
// returns ok=false if the block has no such instruction at or after from.
//
// An Index instruction qualifies when:
//
//	(a) it has no Extra operands (a plain base+index GEP, §4.7 shape
//	    constraint — anything else is an "unrecognized indexing shape")
//	(b) its Base resolves, through one of the three forms recognized by
//	    resolveBase, to a function argument
//	(c) that argument has a length link in pairs (an "unlinked base" is
//	    skipped, not instrumented)
//
// Sites whose shape or base is not recognized are reported via diag and
// skipped rather than instrumented (§7): the pass never guesses.
func findBoundsSite(block *ir.BasicBlock, from int, pairs []ArgPair, diag *Diagnostics) (boundsSite, bool) {
	for i := from; i < len(block.Insts); i++ {
		idx, ok := block.Insts[i].(*ir.Index)
		if !ok {
			continue
		}
		if isGlobalBase(idx.Base) {
			// Indexes a module-scope array, not a kernel buffer argument:
			// a race-check candidate (C8), not a bounds-check one.
			continue
		}
		if idx.NumOperands() != 2 {
			diag.Skip("index %q has a nested indexing shape the pass does not recognize", idx.Name)
			continue
		}
		arg, ok := resolveBase(block, i, idx.Base)
		if !ok {
			diag.Skip("index %q does not resolve to a function argument, skipping", idx.Name)
			continue
		}
		link, ok := findLink(pairs, arg.Index)
		if !ok {
			diag.Skip("argument %q has no paired length argument, skipping bounds check", arg.Name)
			continue
		}
		return boundsSite{idx: i, index: idx, link: link}, true
	}
	return boundsSite{}, false
}

// resolveBase implements §4.7's three recognized forms for tracing an
// Index's Base operand back to the originating function argument:
//
//	1. the argument used directly as Base
//	2. Base is a Load of an Alloca that was Store'd the argument earlier
//	   in the same block (the "reloaded through a stack slot" shape a
//	   non-optimizing frontend produces)
//	3. Base is a Load through a pointer operand that is itself the
//	   argument (the frontend passed a pointer-to-pointer and the kernel
//	   dereferences it once to reach the buffer)
func resolveBase(block *ir.BasicBlock, beforeIdx int, v ir.Value) (*ir.Argument, bool) {
	switch val := v.(type) {
	case *ir.Argument:
		return val, true
	case *ir.Load:
		if arg, ok := val.Ptr.(*ir.Argument); ok {
			return arg, true
		}
		alloca, ok := val.Ptr.(*ir.Alloca)
		if !ok {
			return nil, false
		}
		for i := 0; i < beforeIdx; i++ {
			st, ok := block.Insts[i].(*ir.Store)
			if !ok || st.Ptr != ir.Value(alloca) {
				continue
			}
			if arg, ok := st.Val.(*ir.Argument); ok {
				return arg, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// isGlobalBase reports whether v ultimately addresses a module-scope
// global, stripping address-space casts. Such indices belong to the
// race-check rewriter (C8), not the bounds-check one.
func isGlobalBase(v ir.Value) bool {
	switch val := v.(type) {
	case *ir.GlobalVariable:
		return true
	case *ir.AddrSpaceCast:
		return isGlobalBase(val.Val)
	default:
		return false
	}
}

// applyBoundsCheck implements C7: split block at site.idx, guarding the
// index instruction and everything after it behind a bounds check (§4.7).
//
//	before:             after:
//	  block                block                 then (SyntheticGuard=GuardBounds)
//	    ...                  ...                    %idx = index ...
//	    %idx = index...      %cmp = icmp ult...      ... (rest of block)
//	    ...rest              br %cmp, then, else
//	                       else
//	                         call report_index_out_of_bounds()
//	                         ret void
//
// It returns the "then" block, which the traversal driver continues into,
// since splitting can have exposed further instrumentable sites.
func applyBoundsCheck(f *ir.Function, block *ir.BasicBlock, site boundsSite, rt *RuntimeSymbols, diag *Diagnostics) *ir.BasicBlock {
	length := f.Arg(site.link.LengthArgIndex)

	then := f.NewBlock(block.Name + ".bc.then")
	then.SyntheticGuard = ir.GuardBounds
	block.SpliceFrom(site.index, then)

	elseBlock := f.NewBlock(block.Name + ".bc.else")
	elseBlock.Append(ir.NewCall("", rt.ReportOutOfBounds, nil, ir.VoidType{}))
	elseBlock.SetTerminator(ir.NewRetVoid())

	cmp := ir.NewICmp(block.Name+".bc.cmp", ir.PredULT, site.index.IndexVal, length)
	block.Append(cmp)
	block.SetTerminator(ir.NewCondBr(cmp, then, elseBlock))

	diag.Info("inserted bounds check for %q against argument %q", site.index.Name, length.Name)
	return then
}
