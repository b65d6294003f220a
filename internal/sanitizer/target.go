package sanitizer

import "github.com/kolkov/scsan/ir"

// shouldRun implements the target gate of §4.1: decide whether the module
// targets the supported GPU IR by inspecting its target triple. Modules
// that don't match are left completely unchanged — not even a diagnostic is
// emitted, per §7's "Triple-mismatch — silent skip".
func shouldRun(m *ir.Module) bool {
	return m.ShouldRun()
}
