package compiler

import (
	"strings"
	"testing"
)

func TestLoadOptionsParsesYAML(t *testing.T) {
	r := strings.NewReader(`
library_paths: ["vendor/**/*.pac2", "modules/*.pac2"]
verify: true
debug: ["scopes", "passes"]
`)
	opts, err := LoadOptions(r)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if len(opts.LibraryPaths) != 2 || opts.LibraryPaths[0] != "vendor/**/*.pac2" {
		t.Errorf("LibraryPaths = %v", opts.LibraryPaths)
	}
	if !opts.Verify {
		t.Errorf("Verify = false, want true")
	}
	if !opts.Debug.Scopes() {
		t.Errorf("Debug.Scopes() = false, want true")
	}
	if !opts.Debug.Passes() {
		t.Errorf("Debug.Passes() = false, want true")
	}
	if opts.Debug.Grammars() {
		t.Errorf("Debug.Grammars() = true, want false (not listed)")
	}
	if opts.Debug.DumpAST() {
		t.Errorf("Debug.DumpAST() = true, want false (not listed)")
	}
}

func TestLoadOptionsDefaultsOnEmptyDocument(t *testing.T) {
	opts, err := LoadOptions(strings.NewReader(``))
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if opts.Verify {
		t.Errorf("Verify = true, want false by default")
	}
	if len(opts.LibraryPaths) != 0 {
		t.Errorf("LibraryPaths = %v, want empty", opts.LibraryPaths)
	}
	if opts.Debug.Scopes() {
		t.Errorf("Debug.Scopes() = true, want false on an empty document")
	}
}

func TestLoadOptionsRejectsMalformedYAML(t *testing.T) {
	if _, err := LoadOptions(strings.NewReader("library_paths: [unterminated")); err == nil {
		t.Fatalf("expected an error for malformed YAML")
	}
}

func TestNilDebugFlagsAreAllFalse(t *testing.T) {
	var d DebugFlags
	if d.Scopes() || d.Grammars() || d.Passes() || d.DumpAST() {
		t.Errorf("a nil DebugFlags should report every flag as false")
	}
}
