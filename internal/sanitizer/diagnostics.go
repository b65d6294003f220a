package sanitizer

import (
	"fmt"
	"io"
	"sync"
)

// Tag prefixes every diagnostic line so they are recognizable in build logs
// (§6 "Diagnostics surface").
const Tag = "scsan"

// Diagnostics collects and emits the pass's human-readable, non-fatal,
// one-line messages. Two kernels in the same module frequently produce the
// same skip message (e.g. the same "unlinked base" diagnostic for a
// parameter name that recurs across near-identical kernels); Diagnostics
// interns messages so each unique line is written at most once per module,
// the same string-deduplication idea as
// internal/race/stackdepot/stackdepot.go in the teacher repository, applied
// to diagnostic text instead of allocation stacks.
type Diagnostics struct {
	w    io.Writer
	mu   sync.Mutex
	seen map[string]struct{}

	Skipped      int
	Instrumented int
}

// NewDiagnostics creates a Diagnostics that writes deduplicated lines to w.
func NewDiagnostics(w io.Writer) *Diagnostics {
	return &Diagnostics{w: w, seen: make(map[string]struct{})}
}

func (d *Diagnostics) emit(kind, format string, args ...any) {
	msg := fmt.Sprintf("%s: %s: %s", Tag, kind, fmt.Sprintf(format, args...))
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[msg]; ok {
		return
	}
	d.seen[msg] = struct{}{}
	fmt.Fprintln(d.w, msg)
}

// Skip records a site the pass could not or chose not to instrument, per the
// error taxonomy of §7 (never fatal).
func (d *Diagnostics) Skip(format string, args ...any) {
	d.Skipped++
	d.emit("skip", format, args...)
}

// Info records a successful instrumentation or other non-error progress
// note.
func (d *Diagnostics) Info(format string, args ...any) {
	d.Instrumented++
	d.emit("info", format, args...)
}
