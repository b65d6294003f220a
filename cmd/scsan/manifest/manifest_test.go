package manifest

import "testing"

func TestParse(t *testing.T) {
	data := []byte(`module nightly-kernels

go 1.24

require kernels/reduce.json v0.0.0
require kernels/scan.json v0.0.0
`)

	m, err := Parse("batch.manifest", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Name != "nightly-kernels" {
		t.Fatalf("unexpected name %q", m.Name)
	}
	if len(m.Targets) != 2 || m.Targets[0] != "kernels/reduce.json" || m.Targets[1] != "kernels/scan.json" {
		t.Fatalf("unexpected targets: %+v", m.Targets)
	}
}

func TestParseRejectsEmptyManifest(t *testing.T) {
	data := []byte("module empty\n\ngo 1.24\n")
	if _, err := Parse("batch.manifest", data); err == nil {
		t.Fatal("expected an error for a manifest with no targets")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	if _, err := Parse("batch.manifest", []byte("not a go.mod file {{{")); err == nil {
		t.Fatal("expected a parse error for malformed input")
	}
}
