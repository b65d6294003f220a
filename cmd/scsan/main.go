// Package main implements the scsan CLI tool.
//
// scsan runs the GPU compute kernel sanitizer pass over a kernel-module
// description file, inserting bounds checks on buffer/length argument pairs
// and work-group local-memory race detection guards.
//
// Usage:
//
//	scsan scan kernel.json              # instrument a single module
//	scsan batch kernels.manifest        # instrument every module it lists
//	scsan version                       # print version information
//
// This is the CLI entry point for the standalone sanitizer tool; the pass
// itself lives in internal/sanitizer and is reachable from any host tool
// through the pipeline registry under the name "gpu-compute-sanitizer".
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "scan":
		scanCommand(args)
	case "batch":
		batchCommand(args)
	case "version", "--version", "-v":
		fmt.Printf("scsan version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`scsan - GPU Compute Kernel Sanitizer

USAGE:
    scsan <command> [arguments]

COMMANDS:
    scan       Instrument a single kernel-module description file
    batch      Instrument every module listed in a manifest
    version    Show version information
    help       Show this help message

EXAMPLES:
    # Instrument one module, writing the result next to it
    scsan scan kernel.json -o kernel.instrumented.json

    # Instrument every module a manifest lists
    scsan batch kernels.manifest

ABOUT:
    scsan inserts two kinds of guards into GPU compute kernels targeting
    the supported device architecture:

      - bounds checks on buffer/length argument pairs
      - two-phase atomic-exchange race detection on work-group-local
        array accesses

    Modules whose target triple does not name the supported architecture
    are left untouched.
`)
}
