package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kolkov/scsan/internal/sanitizer"
)

func writeModuleDoc(t *testing.T, dir, name string, doc *ModuleDoc) string {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestScanFileInstrumentsAndOverwritesInPlace(t *testing.T) {
	dir := t.TempDir()
	path := writeModuleDoc(t, dir, "reduce.json", reduceDoc())

	var diagBuf bytes.Buffer
	summary, err := scanFile(path, "", &diagBuf)
	if err != nil {
		t.Fatalf("scanFile: %v", err)
	}
	stats, ok := summary.(sanitizer.Stats)
	if !ok {
		t.Fatalf("summary is not sanitizer.Stats: %T", summary)
	}
	if stats.BoundsChecks == 0 {
		t.Fatalf("expected at least one bounds check, got %+v", stats)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading instrumented output: %v", err)
	}
	reparsed, err := parseModuleDoc(out)
	if err != nil {
		t.Fatalf("parsing instrumented output: %v", err)
	}
	m, err := reparsed.build()
	if err != nil {
		t.Fatalf("rebuilding instrumented output: %v", err)
	}
	if len(m.Functions[0].Blocks) < 2 {
		t.Fatalf("expected the bounds-check diamond to add a block, got %d blocks", len(m.Functions[0].Blocks))
	}
}

func TestScanFileWritesToSeparateOutputPath(t *testing.T) {
	dir := t.TempDir()
	inPath := writeModuleDoc(t, dir, "reduce.json", reduceDoc())
	outPath := filepath.Join(dir, "reduce.instrumented.json")

	if _, err := scanFile(inPath, outPath, &bytes.Buffer{}); err != nil {
		t.Fatalf("scanFile: %v", err)
	}

	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("expected output file at %s: %v", outPath, err)
	}
	original, err := os.ReadFile(inPath)
	if err != nil {
		t.Fatalf("reading original: %v", err)
	}
	var doc ModuleDoc
	if err := json.Unmarshal(original, &doc); err != nil {
		t.Fatalf("original file is no longer valid JSON: %v", err)
	}
}

func TestScanFileRejectsMissingFile(t *testing.T) {
	if _, err := scanFile(filepath.Join(t.TempDir(), "missing.json"), "", &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error for a nonexistent input file")
	}
}

func TestParseScanArgs(t *testing.T) {
	in, out, verbose, err := parseScanArgs([]string{"kernel.json", "-o", "out.json", "-v"})
	if err != nil {
		t.Fatalf("parseScanArgs: %v", err)
	}
	if in != "kernel.json" || out != "out.json" || !verbose {
		t.Fatalf("unexpected parse result: in=%q out=%q verbose=%v", in, out, verbose)
	}
}

func TestParseScanArgsRejectsMissingInput(t *testing.T) {
	if _, _, _, err := parseScanArgs([]string{"-v"}); err == nil {
		t.Fatal("expected an error when no input file is given")
	}
}

func TestParseScanArgsRejectsUnknownFlag(t *testing.T) {
	if _, _, _, err := parseScanArgs([]string{"kernel.json", "--bogus"}); err == nil {
		t.Fatal("expected an error for an unrecognized flag")
	}
}
