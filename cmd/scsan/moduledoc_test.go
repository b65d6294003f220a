package main

import (
	"encoding/json"
	"testing"

	"github.com/kolkov/scsan/ir"
)

// reduceDoc builds a minimal but representative module description: one
// work-group-local array global and one kernel with a buffer/length argument
// pair indexing into it, mirroring what a hand-authored kernel description
// looks like before the pass has touched it.
func reduceDoc() *ModuleDoc {
	return &ModuleDoc{
		TargetTriple: "spirv64-unknown-unknown",
		Globals: []GlobalDoc{
			{
				Name:      "scratch",
				ElemType:  TypeDoc{Kind: "array", Elem: &TypeDoc{Kind: "i32"}, Count: 64},
				AddrSpace: "local",
				Align:     4,
			},
		},
		Functions: []FunctionDoc{
			{
				Name:   "reduce",
				Kernel: true,
				Args: []ArgDoc{
					{Name: "buf", Type: TypeDoc{Kind: "ptr", Elem: &TypeDoc{Kind: "i32"}, AddrSpace: "global"}},
					{Name: "n", Type: TypeDoc{Kind: "i64"}},
				},
				Blocks: []BlockDoc{
					{
						Name: "entry",
						Insts: []InstDoc{
							{Op: "index", Name: "p", Type: TypeDoc{Kind: "ptr", Elem: &TypeDoc{Kind: "i32"}, AddrSpace: "global"}, Ref: "buf", RefIndex: "n"},
							{Op: "load", Name: "v", Type: TypeDoc{Kind: "i32"}, Ref: "p", AddrSpace: "global"},
						},
						Term: TermDoc{Kind: "ret"},
					},
				},
			},
		},
	}
}

func TestModuleDocBuildRoundTrips(t *testing.T) {
	doc := reduceDoc()
	m, err := doc.build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if m.TargetTriple != doc.TargetTriple {
		t.Fatalf("target triple mismatch: %q", m.TargetTriple)
	}
	if len(m.Globals) != 1 || m.Globals[0].Name != "scratch" {
		t.Fatalf("global not built: %+v", m.Globals)
	}
	if len(m.Functions) != 1 {
		t.Fatalf("expected one function, got %d", len(m.Functions))
	}
	f := m.Functions[0]
	if !f.IsKernel || f.CC != ir.CallingConvGPU {
		t.Fatalf("kernel flag/calling convention not set: %+v", f)
	}
	if len(f.Args) != 2 || f.Args[0].Name != "buf" || f.Args[1].Name != "n" {
		t.Fatalf("args not built: %+v", f.Args)
	}

	entry := f.Entry()
	if len(entry.Insts) != 3 { // index, load, ret
		t.Fatalf("expected 3 instructions including terminator, got %d", len(entry.Insts))
	}
	idx, ok := entry.Insts[0].(*ir.Index)
	if !ok {
		t.Fatalf("first instruction is not an Index: %T", entry.Insts[0])
	}
	if arg, ok := idx.Base.(*ir.Argument); !ok || arg.Name != "buf" {
		t.Fatalf("index base not resolved to argument buf: %+v", idx.Base)
	}
	if arg, ok := idx.IndexVal.(*ir.Argument); !ok || arg.Name != "n" {
		t.Fatalf("index value not resolved to argument n: %+v", idx.IndexVal)
	}
}

func TestRenderModuleDocRoundTripsThroughJSON(t *testing.T) {
	doc := reduceDoc()
	m, err := doc.build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	rendered := renderModuleDoc(m)
	data, err := json.Marshal(rendered)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	reparsed, err := parseModuleDoc(data)
	if err != nil {
		t.Fatalf("parseModuleDoc: %v", err)
	}
	m2, err := reparsed.build()
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if m2.TargetTriple != m.TargetTriple {
		t.Fatalf("target triple lost in round trip: %q vs %q", m2.TargetTriple, m.TargetTriple)
	}
	if len(m2.Functions) != 1 || len(m2.Functions[0].Entry().Insts) != len(m.Functions[0].Entry().Insts) {
		t.Fatalf("instruction count changed across round trip")
	}
}

func TestResolveCalleeRejectsUndeclaredFunction(t *testing.T) {
	m := &ir.Module{TargetTriple: "spirv64-unknown-unknown"}
	_, err := resolveCallee(m, map[string]ir.Value{}, "some_kernel")
	if err == nil {
		t.Fatal("expected an error resolving a callee that is neither in scope nor a declared extern")
	}
}

func TestResolveCalleeFindsDeclaredExtern(t *testing.T) {
	m := &ir.Module{TargetTriple: "spirv64-unknown-unknown"}
	want := m.GetOrInsertExtern("report_index_out_of_bounds", func() *ir.ExternFunc {
		return &ir.ExternFunc{Name: "report_index_out_of_bounds", ResultTy: ir.VoidType{}}
	})

	got, err := resolveCallee(m, map[string]ir.Value{}, "report_index_out_of_bounds")
	if err != nil {
		t.Fatalf("resolveCallee: %v", err)
	}
	if got != ir.Value(want) {
		t.Fatalf("resolveCallee did not return the declared extern")
	}
}
