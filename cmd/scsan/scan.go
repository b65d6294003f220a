// scan.go implements the 'scsan scan' command.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kolkov/scsan/pipeline"
)

// scanCommand implements 'scsan scan <file> [-o out.json] [-v]'.
func scanCommand(args []string) {
	inPath, outPath, verbose, err := parseScanArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stats, err := scanFile(inPath, outPath, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printScanSummary(inPath, stats, verbose)
}

func parseScanArgs(args []string) (inPath, outPath string, verbose bool, err error) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-o":
			if i+1 >= len(args) {
				return "", "", false, fmt.Errorf("-o flag requires an argument")
			}
			i++
			outPath = args[i]
		case strings.HasPrefix(arg, "-o="):
			outPath = strings.TrimPrefix(arg, "-o=")
		case arg == "-v":
			verbose = true
		case strings.HasPrefix(arg, "-"):
			return "", "", false, fmt.Errorf("unknown flag %q", arg)
		default:
			if inPath != "" {
				return "", "", false, fmt.Errorf("unexpected extra argument %q", arg)
			}
			inPath = arg
		}
	}
	if inPath == "" {
		return "", "", false, fmt.Errorf("no kernel-module file specified")
	}
	return inPath, outPath, verbose, nil
}

// scanFile reads the module description at inPath, runs the sanitizer pass,
// writes the (possibly instrumented) module back out, and returns the
// pass's statistics. If outPath is empty, the input file is overwritten.
func scanFile(inPath, outPath string, diagWriter io.Writer) (any, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", inPath, err)
	}

	doc, err := parseModuleDoc(data)
	if err != nil {
		return nil, err
	}
	m, err := doc.build()
	if err != nil {
		return nil, fmt.Errorf("building module from %s: %w", inPath, err)
	}

	result, err := pipeline.Run("gpu-compute-sanitizer", m, diagWriter)
	if err != nil {
		return nil, err
	}

	if outPath == "" {
		outPath = inPath
	}
	out, err := json.MarshalIndent(renderModuleDoc(m), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", outPath, err)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", outPath, err)
	}

	return result.Summary, nil
}

func printScanSummary(path string, stats any, verbose bool) {
	fmt.Printf("scanned: %s\n", path)
	if !verbose {
		return
	}
	fmt.Printf("  %+v\n", stats)
}
