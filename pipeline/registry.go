// Package pipeline is a small named-pass registry: a Go analogue of LLVM's
// PassBuilder pipeline-parsing callback, which is how
// _examples/original_source/plugin/Plugin.cc hooks the sanitizer into the
// host compiler's `-passes=` pipeline string under the name
// "spirv-compute-sanitizer". cmd/scsan looks passes up here by name instead
// of hardcoding a single call into package sanitizer, so a future pass can
// register alongside it without cmd/scsan changing.
package pipeline

import (
	"fmt"
	"io"
	"sync"

	"github.com/kolkov/scsan/ir"
)

// Result is what a pass reports back after running once over a module.
type Result struct {
	// Changed reports whether the pass modified the module at all.
	Changed bool
	// Summary is the pass-specific statistics value (e.g. sanitizer.Stats),
	// carried as any so this package stays independent of any one pass.
	Summary any
}

// PassFunc runs one registered pass over m, writing diagnostics to w.
type PassFunc func(m *ir.Module, w io.Writer) (Result, error)

var (
	mu       sync.Mutex
	registry = map[string]PassFunc{}
)

// Register adds a pass under name. Called from a pass package's init, the
// same way llvmGetPassPluginInfo registers its callback with the
// PassBuilder at plugin-load time. Registering the same name twice panics:
// that can only happen from a programming mistake, never from user input.
func Register(name string, fn PassFunc) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("pipeline: pass %q already registered", name))
	}
	registry[name] = fn
}

// Lookup returns the pass registered under name.
func Lookup(name string) (PassFunc, bool) {
	mu.Lock()
	defer mu.Unlock()
	fn, ok := registry[name]
	return fn, ok
}

// Names returns every registered pass name, for `scsan help` style listing.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

// Run looks up name and, if found, runs it over m. It returns an error that
// wraps an unknown-pass condition distinctly from a pass's own error, so
// callers can tell "no such pass" apart from "the pass failed".
func Run(name string, m *ir.Module, w io.Writer) (Result, error) {
	fn, ok := Lookup(name)
	if !ok {
		return Result{}, fmt.Errorf("pipeline: unknown pass %q", name)
	}
	return fn(m, w)
}
