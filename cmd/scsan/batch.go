// batch.go implements the 'scsan batch' command.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kolkov/scsan/cmd/scsan/manifest"
)

// batchCommand implements 'scsan batch <manifest-file>': instrument every
// kernel-module file the manifest lists, in order, overwriting each in
// place. A failing target is reported and skipped; the remaining targets
// are still scanned, and the command exits non-zero with a count of the
// failures if any target failed.
func batchCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: usage: scsan batch <manifest-file>")
		os.Exit(1)
	}
	manifestPath := args[0]

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", manifestPath, err)
		os.Exit(1)
	}

	man, err := manifest.Parse(manifestPath, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Dir(manifestPath)
	failed := 0
	for _, target := range man.Targets {
		path := target
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}

		stats, err := scanFile(path, "", os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", target, err)
			failed++
			continue
		}
		fmt.Printf("scanned: %s\n  %+v\n", target, stats)
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d targets failed\n", failed, len(man.Targets))
		os.Exit(1)
	}
}
