// Package manifest reads batch manifests for `scsan batch`: a go.mod-syntax
// file listing the kernel-module description files one invocation should
// scan, so a build system can drive many modules through the pass with a
// single process start. Grounded on
// cmd/racedetector/runtime/link.go's use of golang.org/x/mod/modfile to
// parse go.mod-syntax text, repurposed here to parse a manifest instead of
// a dependency overlay.
//
// A manifest looks like:
//
//	module nightly-kernels
//
//	go 1.24
//
//	require kernels/reduce.json v0.0.0
//	require kernels/scan.json v0.0.0
package manifest

import (
	"fmt"

	"golang.org/x/mod/modfile"
)

// Manifest is a parsed batch manifest: Name is the module directive's
// path (a free-form label, not a real Go import path), and Targets are the
// require directives' paths, each naming a kernel-module description file
// relative to the manifest's directory.
type Manifest struct {
	Name    string
	Targets []string
}

// Parse parses manifest file contents. path is used only for error
// messages (modfile.Parse's own convention).
func Parse(path string, data []byte) (*Manifest, error) {
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	m := &Manifest{}
	if f.Module != nil {
		m.Name = f.Module.Mod.Path
	}
	for _, req := range f.Require {
		m.Targets = append(m.Targets, req.Mod.Path)
	}
	if len(m.Targets) == 0 {
		return nil, fmt.Errorf("manifest: no require directives naming kernel modules")
	}
	return m, nil
}
