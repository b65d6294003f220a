package sanitizer

import (
	"io"

	"github.com/kolkov/scsan/ir"
	"github.com/kolkov/scsan/pipeline"
)

// PassName is the identifier the pass registers under in the pipeline
// registry (§6); scsan's scan and batch commands run the pass by this name.
const PassName = "gpu-compute-sanitizer"

func init() {
	pipeline.Register(PassName, func(m *ir.Module, w io.Writer) (pipeline.Result, error) {
		stats, err := Run(m, w)
		return pipeline.Result{
			Changed: stats.BoundsChecks > 0 || stats.RaceGuards > 0 || stats.ShadowArrays > 0,
			Summary: stats,
		}, err
	})
}

// Run implements C9: the full pass over m, visiting every kernel function
// in declaration order. It is the single entry point every driver (the
// pipeline registry, the scsan CLI, and tests) calls.
//
// Run is a no-op, producing an empty Stats, for any module that fails the
// target gate (C1, §4.1) — this is the only silent-skip case; every other
// decision the pass makes is recorded through diag.
func Run(m *ir.Module, w io.Writer) (Stats, error) {
	diag := NewDiagnostics(w)
	var stats Stats

	if !shouldRun(m) {
		return stats, nil
	}

	links := synthesizeShadowArrays(m, diag)
	stats.ShadowArrays = len(links)
	rt := declareRuntimeSymbols(m)

	for _, f := range m.Functions {
		if !f.IsKernel || len(f.Blocks) == 0 {
			continue
		}
		stats.KernelsVisited++

		pairs := analyzeArgPairs(f)
		emitShadowInit(f, links, rt)
		bounds, races := instrumentFunction(f, pairs, links, rt, diag)
		stats.BoundsChecks += bounds
		stats.RaceGuards += races
	}

	stats.Skipped = diag.Skipped
	return stats, nil
}
