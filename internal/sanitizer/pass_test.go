package sanitizer

import (
	"bytes"
	"testing"

	"github.com/kolkov/scsan/ir"
)

func TestRunSkipsUnsupportedTriple(t *testing.T) {
	m := &ir.Module{TargetTriple: "x86_64-unknown-linux-gnu"}
	buildBoundsKernel(m)

	stats, err := Run(m, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats != (Stats{}) {
		t.Fatalf("expected empty stats for an unsupported triple, got %+v", stats)
	}
	if len(m.Functions[0].Blocks) != 1 {
		t.Fatal("expected the module to be left untouched")
	}
}

func TestRunInstrumentsSupportedModule(t *testing.T) {
	m := &ir.Module{TargetTriple: "spirv64-unknown-unknown"}
	buildBoundsKernel(m)

	var out bytes.Buffer
	stats, err := Run(m, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.KernelsVisited != 1 || stats.BoundsChecks != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunIsIdempotentAcrossInvocations(t *testing.T) {
	m := &ir.Module{TargetTriple: "spirv64-unknown-unknown"}
	buildBoundsKernel(m)

	first, err := Run(m, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := Run(m, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if second.BoundsChecks != 0 || second.RaceGuards != 0 {
		t.Fatalf("expected re-running Run to instrument nothing new, got %+v (first was %+v)", second, first)
	}
}

func TestRunSkipsNonKernelFunctions(t *testing.T) {
	m := &ir.Module{TargetTriple: "spirv64-unknown-unknown"}
	f := buildBoundsKernel(m)
	f.IsKernel = false

	stats, err := Run(m, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.KernelsVisited != 0 {
		t.Fatalf("expected a non-kernel function to be skipped, got %+v", stats)
	}
}
