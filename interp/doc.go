// Package interp is a reference interpreter for instrumented kernel
// functions. It does not compile or run on any real device — it walks an
// *ir.Function block by block, one simulated work-item at a time, so that a
// scheduling scenario chosen by the caller (two work-items racing on the
// same local-memory slot, or a buffer access that runs past its declared
// length) can be exercised and checked against the runtime double without
// needing an actual GPU or device compiler.
//
// The interpreter and its runtime double are grounded on the same idea the
// teacher's detector package is built on — a small stateful model of "what
// happened" that a test can interrogate — adapted from goroutine-and-vector-
// clock tracking to the sanitizer's own two-phase slot-owner protocol
// (§4.8), which is a deliberately different algorithm and is not a port of
// FastTrack.
package interp
