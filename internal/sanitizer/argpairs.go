package sanitizer

import "github.com/kolkov/scsan/ir"

// ArgPair is an array-length link (§3): buffer_arg_index holds the element
// count declared by length_arg_index.
type ArgPair struct {
	BufferArgIndex int
	LengthArgIndex int
}

// analyzeArgPairs implements C3: a single left-to-right scan of f's
// parameter list, tracking the most recently seen pointer argument and
// emitting a link the moment a 64-bit integer argument follows it.
//
// State machine (§4.3):
//
//	idle    --pointer-->    pending (remember index)
//	pending --pointer-->    pending (replace remembered index)
//	pending --i64-->        idle    (emit link, remembered -> current)
//	(anything else leaves the state unchanged)
//
// This is deterministic and depends only on the parameter-type sequence
// (§8 invariant 6): re-running it on the same signature always yields the
// same table, independent of how many times the function body has already
// been instrumented.
func analyzeArgPairs(f *ir.Function) []ArgPair {
	var pairs []ArgPair
	pending := -1

	for _, arg := range f.Args {
		switch {
		case arg.IsPointer():
			pending = arg.Index
		case arg.IntBits() == 64:
			if pending >= 0 {
				pairs = append(pairs, ArgPair{BufferArgIndex: pending, LengthArgIndex: arg.Index})
				pending = -1
			}
		}
	}

	return pairs
}

// findLink returns the link whose BufferArgIndex matches argIndex, if any.
func findLink(pairs []ArgPair, argIndex int) (ArgPair, bool) {
	for _, p := range pairs {
		if p.BufferArgIndex == argIndex {
			return p, true
		}
	}
	return ArgPair{}, false
}
