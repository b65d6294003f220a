package sanitizer

import "github.com/kolkov/scsan/ir"

// Exact symbol names of the sanitizer runtime ABI (§4.2). These must match
// the runtime implementation bit-exact; they are a contract, not a naming
// convention the pass is free to adjust.
const (
	SymReportOutOfBounds   = "report_index_out_of_bounds"
	SymReportLocalConflict = "report_local_memory_conflict"
	SymShadowMemset        = "shadow_memset"
)

// RuntimeSymbols holds the three declared sanitizer-runtime entry points for
// one module.
type RuntimeSymbols struct {
	ReportOutOfBounds   *ir.ExternFunc
	ReportLocalConflict *ir.ExternFunc
	ShadowMemset        *ir.ExternFunc
}

// declareRuntimeSymbols implements C2: it declares the three external
// sanitizer-runtime entry points with the GPU calling convention,
// convergent, and with every parameter marked non-undefined. ir.ExternFunc
// has no linkage field, so no linkage is recorded on these declarations.
// Declaration is idempotent per module (get-or-insert), so instrumenting
// several kernel functions in the same module, or re-running the pass,
// never produces duplicate declarations (§5: "mutated only once per
// module").
func declareRuntimeSymbols(m *ir.Module) *RuntimeSymbols {
	decl := func(name string, params []ir.Type) *ir.ExternFunc {
		return m.GetOrInsertExtern(name, func() *ir.ExternFunc {
			return &ir.ExternFunc{
				Name:          name,
				ParamTypes:    params,
				ResultTy:      ir.VoidType{},
				CC:            ir.CallingConvGPU,
				Convergent:    true,
				ParamsNoUndef: true,
			}
		})
	}

	return &RuntimeSymbols{
		ReportOutOfBounds: decl(SymReportOutOfBounds, nil),
		ReportLocalConflict: decl(SymReportLocalConflict, []ir.Type{ir.I64}),
		ShadowMemset: decl(SymShadowMemset, []ir.Type{
			ir.PointerType{Elem: ir.I64, AddrSpace: ir.AddressSpaceLocal},
			ir.I64,
			ir.I64,
		}),
	}
}

// getOrDeclareIntrinsic declares (or reuses) a module-scoped helper function
// that is not part of the three-symbol sanitizer-runtime contract. The
// race-check rewriter uses it for the get_local_id accessor; its atomic
// exchanges are ir.AtomicExchange instructions, not calls to a declared
// symbol. The original pass declares these helpers lazily, on first use,
// rather than up front with the report/init symbols (§5 of SPEC_FULL.md);
// this helper preserves that distinction.
func getOrDeclareIntrinsic(m *ir.Module, name string, params []ir.Type, result ir.Type) *ir.ExternFunc {
	return m.GetOrInsertExtern(name, func() *ir.ExternFunc {
		return &ir.ExternFunc{
			Name:          name,
			ParamTypes:    params,
			ResultTy:      result,
			CC:            ir.CallingConvGPU,
			ParamsNoUndef: true,
		}
	})
}

const (
	// IntrinsicGetLocalID returns the calling work-item's local id along
	// dimension 0.
	IntrinsicGetLocalID = "get_local_id"
	// IntrinsicAtomicExchangeLocal names a helper that atomically exchanges
	// a 64-bit local-memory slot, returning the previous value. applyRaceGuard
	// does not declare or call it: Phase A/B (§4.8) emit ir.AtomicExchange
	// directly on the local-address-space shadow slot pointer.
	IntrinsicAtomicExchangeLocal = "atomic_exchange_local_u64"
)
