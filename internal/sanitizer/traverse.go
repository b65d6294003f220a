package sanitizer

import "github.com/kolkov/scsan/ir"

// instrumentFunction implements C6: a depth-first walk over f's basic
// blocks that instruments at most one site per visit, then recurses into
// whatever continuation the instrumentation produced (or, if nothing was
// instrumented, into the block's existing successors).
//
// A block already marked with a SyntheticGuard is itself the continuation
// of a previous rewrite (§8 invariant 7): its leading instruction was the
// split point, not a fresh site, so visitBlock starts the matching finder
// (findBoundsSite for GuardBounds, findRaceSite for GuardRace) at index 1
// of such a block, while the other finder still scans from index 0. The
// already-guarded access is therefore never found again, and when nothing
// else in the block qualifies the walk falls through to its successors. This is what
// keeps re-running the pass over its own output a no-op without a general
// dominance computation.
func instrumentFunction(f *ir.Function, pairs []ArgPair, links []ShadowLink, rt *RuntimeSymbols, diag *Diagnostics) (boundsChecks, raceGuards int) {
	visited := make(map[*ir.BasicBlock]bool)
	worklist := []*ir.BasicBlock{f.Entry()}

	for len(worklist) > 0 {
		block := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if visited[block] {
			continue
		}
		visited[block] = true

		next, kind := visitBlock(f, block, pairs, links, rt, diag)
		switch kind {
		case siteBoundsKind:
			boundsChecks++
			// next is the freshly split continuation, not yet visited: push
			// it back rather than its successors, so the same walk checks
			// it for a second site before ever following where it branches.
			worklist = append(worklist, next)
		case siteRaceKind:
			raceGuards++
			worklist = append(worklist, next)
		default:
			worklist = append(worklist, successorsOf(next)...)
		}
	}
	return boundsChecks, raceGuards
}

type siteKind int

const (
	siteNoneKind siteKind = iota
	siteBoundsKind
	siteRaceKind
)

// visitBlock instruments the first recognized site in block, if any, and
// returns the block the walk should continue from (the guard's continuation
// block when something was instrumented, or block itself otherwise) along
// with which kind of site it applied.
func visitBlock(f *ir.Function, block *ir.BasicBlock, pairs []ArgPair, links []ShadowLink, rt *RuntimeSymbols, diag *Diagnostics) (*ir.BasicBlock, siteKind) {
	// A block's leading instruction is itself the site a previous rewrite
	// already instrumented; re-examining it would re-split the same access
	// forever. Everything after it is fair game.
	boundsFrom, raceFrom := 0, 0
	switch block.SyntheticGuard {
	case ir.GuardBounds:
		boundsFrom = 1
	case ir.GuardRace:
		raceFrom = 1
	}

	boundsSite, hasBounds := findBoundsSite(block, boundsFrom, pairs, diag)
	raceSite, hasRace := findRaceSite(block, raceFrom, links)

	switch {
	case hasBounds && (!hasRace || boundsSite.idx <= raceSite.idx):
		return applyBoundsCheck(f, block, boundsSite, rt, diag), siteBoundsKind
	case hasRace:
		return applyRaceGuard(f, block, raceSite, rt, diag), siteRaceKind
	default:
		return block, siteNoneKind
	}
}

// successorsOf returns the blocks block's terminator branches to, or none
// if block is not yet terminated (shouldn't happen once instrumentation for
// this visit is complete) or returns from the function.
func successorsOf(block *ir.BasicBlock) []*ir.BasicBlock {
	switch t := block.Terminator().(type) {
	case *ir.Br:
		return []*ir.BasicBlock{t.Target}
	case *ir.CondBr:
		return []*ir.BasicBlock{t.True, t.False}
	default:
		return nil
	}
}
