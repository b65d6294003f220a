package ir

import "testing"

func TestModuleShouldRun(t *testing.T) {
	cases := []struct {
		triple string
		want   bool
	}{
		{"", false},
		{"x86_64-unknown-linux-gnu", false},
		{"spirv64-unknown-unknown", true},
		{"spirv32-unknown-unknown", true},
		{"spirvfoo-unknown-unknown", true},
	}
	for _, c := range cases {
		m := &Module{TargetTriple: c.triple}
		if got := m.ShouldRun(); got != c.want {
			t.Errorf("ShouldRun(%q) = %v, want %v", c.triple, got, c.want)
		}
	}
}

func TestBasicBlockSpliceFrom(t *testing.T) {
	f := &Function{Name: "k"}
	entry := f.NewBlock("entry")

	a := NewAlloca("a", I32)
	idx := NewIndex("p", &Argument{Name: "buf", Ty: PointerType{Elem: I32}}, ConstInt{Ty: I64, Val: 0}, PointerType{Elem: I32})
	ld := NewLoad("v", idx, AddressSpaceGlobal, I32)
	entry.Append(a)
	entry.Append(idx)
	entry.Append(ld)
	entry.SetTerminator(NewRetVoid())

	then := f.NewBlock("then")
	if !entry.SpliceFrom(idx, then) {
		t.Fatal("SpliceFrom returned false for an instruction that is present")
	}

	if len(entry.Insts) != 1 || entry.Insts[0] != a {
		t.Fatalf("entry block should retain only the alloca, got %d insts", len(entry.Insts))
	}
	if len(then.Insts) != 3 {
		t.Fatalf("then block should hold gep, load, ret; got %d", len(then.Insts))
	}
	if then.Insts[0] != idx || then.Insts[1] != ld {
		t.Fatal("SpliceFrom did not preserve instruction order")
	}
	if entry.Terminator() != nil {
		t.Fatal("entry block should be terminator-free after splicing away its tail")
	}
}

func TestGetOrInsertExternIsIdempotent(t *testing.T) {
	m := &Module{}
	built := 0
	f1 := m.GetOrInsertExtern("foo", func() *ExternFunc {
		built++
		return &ExternFunc{Name: "foo"}
	})
	f2 := m.GetOrInsertExtern("foo", func() *ExternFunc {
		built++
		return &ExternFunc{Name: "foo"}
	})
	if f1 != f2 {
		t.Fatal("GetOrInsertExtern should return the same declaration on repeat calls")
	}
	if built != 1 {
		t.Fatalf("builder should run exactly once, ran %d times", built)
	}
}
