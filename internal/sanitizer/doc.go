// Package sanitizer implements the GPU compute-kernel sanitizer pass: the
// analyses and rewrites of specification components C1–C9.
//
// Run is the entry point. It mirrors instrument.InstrumentFile from the
// teacher tool this package is patterned on: it takes one module, derives
// its shadow-array links once and, for each kernel function, a short-lived
// argument-pair table, and rewrites each kernel's basic blocks in place, returning
// statistics about what was instrumented and what was skipped.
//
// The nine components are split one-per-file:
//
//	target.go      C1 target gate
//	runtime.go     C2 runtime-symbol declarator
//	argpairs.go    C3 argument-pair analyzer
//	shadow.go      C4 shadow-array synthesizer
//	prologue.go    C5 kernel-entry prologue builder
//	traverse.go    C6 block-traversal driver
//	bounds.go      C7 bounds-check rewriter
//	raceguard.go   C8 race-check rewriter
//	pass.go        C9 plugin entry (registration) + orchestration
package sanitizer
