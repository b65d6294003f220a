// Package ir models the portable GPU compute IR that the sanitizer pass
// (package sanitizer) rewrites.
//
// There is no Go binding to the real toolchain's in-memory IR in the
// retrieved corpus, so this package plays the same role for scsan that
// go/ast plays for the teacher tool this repository is patterned on: a
// small, explicit, in-memory representation of a function's basic-block
// graph that the instrumentation pass can splice and branch. A Module holds
// a target triple, global variables, and functions; a Function holds
// arguments and basic blocks; a BasicBlock holds an ordered instruction list
// and exactly one terminator.
//
// The model intentionally covers only what the sanitizer pass needs to
// recognize and rewrite (§4 of the specification this package implements):
// pointer/integer arguments, array indexing, local-memory stores, calls,
// branches, and the small set of scalar/compare/atomic operations the
// guard diamonds require. It is not a general SSA IR.
package ir
