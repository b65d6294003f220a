package ir

import "strings"

// SupportedArchPrefix is the architecture-name prefix a module's target
// triple must start with for the sanitizer pass to run (§4.1). Grounded on
// _examples/original_source/plugin/SPIRVComputeSanitizer.cc's
// is_spirv_triple, which checks Arch.starts_with("spirv").
const SupportedArchPrefix = "spirv"

// Module is a compiled unit: a target triple, module-scope globals, and
// functions.
type Module struct {
	TargetTriple string
	Globals      []*GlobalVariable
	Functions    []*Function
	externs      map[string]*ExternFunc
}

// Arch returns the architecture component of the target triple: the
// substring before the first '-'. An empty triple yields an empty arch.
func (m *Module) Arch() string {
	if m.TargetTriple == "" {
		return ""
	}
	if i := strings.IndexByte(m.TargetTriple, '-'); i >= 0 {
		return m.TargetTriple[:i]
	}
	return m.TargetTriple
}

// ShouldRun implements the target gate of §4.1: an empty triple skips; a
// triple whose architecture begins with SupportedArchPrefix proceeds.
func (m *Module) ShouldRun() bool {
	if m.TargetTriple == "" {
		return false
	}
	return strings.HasPrefix(m.Arch(), SupportedArchPrefix)
}

// GetOrInsertExtern returns the existing module-scope external function
// declaration named name, creating it via make if absent. This is the Go
// analogue of LLVM's Module::getOrInsertFunction, used by both the runtime-
// symbol declarator (C2) and the lazily-declared intrinsics (get_local_id,
// the atomic-exchange symbol) so that re-running the pass, or instrumenting
// two kernels in the same module, never redeclares a symbol.
func (m *Module) GetOrInsertExtern(name string, build func() *ExternFunc) *ExternFunc {
	if m.externs == nil {
		m.externs = make(map[string]*ExternFunc)
	}
	if f, ok := m.externs[name]; ok {
		return f
	}
	f := build()
	m.externs[name] = f
	return f
}

// Extern looks up an already-declared external function by name.
func (m *Module) Extern(name string) (*ExternFunc, bool) {
	f, ok := m.externs[name]
	return f, ok
}

// FindGlobal returns the module-scope global variable named name, if any.
func (m *Module) FindGlobal(name string) (*GlobalVariable, bool) {
	for _, g := range m.Globals {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// AddGlobal appends g to the module's global list.
func (m *Module) AddGlobal(g *GlobalVariable) {
	m.Globals = append(m.Globals, g)
}
