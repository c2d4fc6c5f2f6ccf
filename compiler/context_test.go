package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kr/pretty"
	"github.com/rogpeppe/go-internal/txtar"

	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/diag"
)

// writeArchive extracts a txtar archive's files into a fresh temp directory
// and returns its root, for LoadOptions-style library-path tests that need
// more than one file on disk.
func writeArchive(t *testing.T, data string) string {
	t.Helper()
	dir := t.TempDir()
	a := txtar.Parse([]byte(data))
	for _, f := range a.Files {
		p := filepath.Join(dir, f.Name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, f.Data, 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return dir
}

func TestParseAndFinalizeBuildsGrammar(t *testing.T) {
	ctx := NewContext(Options{Verify: true})
	mod, bag, err := ctx.Parse(context.Background(), "inline.pac2", `module Packet;
type Header = unit {
	magic: b"PK";
	len:   uint16;
	payload: bytes &length=self.len;
};`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Diagnostics())
	}

	grammars, err := ctx.Finalize(mod, bag)
	if err != nil {
		t.Fatalf("Finalize: %v (diagnostics: %# v)", err, pretty.Formatter(bag.Diagnostics()))
	}
	g, ok := grammars["Header"]
	if !ok {
		t.Fatalf("grammars = %v, want a \"Header\" entry", grammars)
	}
	if msg := g.Check(); msg != "" {
		t.Errorf("unexpected grammar ambiguity: %s", msg)
	}
}

func TestPartialFinalizeSkipsValidator(t *testing.T) {
	ctx := NewContext(Options{Verify: true})
	mod, bag, err := ctx.Parse(context.Background(), "inline.pac2", `module Packet;
type Header = unit {
	len: uint16;
};`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	full, err := ctx.PartialFinalize(mod, bag)
	if err != nil {
		t.Fatalf("PartialFinalize: %v", err)
	}
	if _, ok := full["Header"]; !ok {
		t.Errorf("PartialFinalize did not build a grammar for Header")
	}
}

func TestParseExpressionResolvesOneExpression(t *testing.T) {
	ctx := NewContext(Options{})
	id, err := ctx.ParseExpression("1 + 2 * 3")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	if id == ast.NilNode {
		t.Fatalf("ParseExpression returned NilNode")
	}
}

func TestParseExpressionRejectsTrailingTokens(t *testing.T) {
	ctx := NewContext(Options{})
	if _, err := ctx.ParseExpression("1 + 2 garbage"); err == nil {
		t.Fatalf("expected an error for trailing tokens after the expression")
	}
}

func TestLoadResolvesImportAndCachesModule(t *testing.T) {
	dir := writeArchive(t, `
-- Base.pac2 --
module Base;
export type Flag = unit {
	value: uint8;
};
-- packet.pac2 --
module Packet;
import Base;
type Header = unit {
	flag: uint8;
};
`)
	ctx := NewContext(Options{LibraryPaths: []string{dir + "/*.pac2"}})

	mod, err := ctx.Load(context.Background(), "packet")
	if err != nil {
		t.Fatalf("Load(packet): %v", err)
	}
	if mod.Name != "Packet" {
		t.Errorf("module name = %q, want Packet", mod.Name)
	}

	again, err := ctx.Load(context.Background(), "packet")
	if err != nil {
		t.Fatalf("second Load(packet): %v", err)
	}
	if again != mod {
		t.Errorf("second Load returned a different *ast.Module; expected the cached one")
	}
}

func TestLoadDetectsImportCycle(t *testing.T) {
	dir := writeArchive(t, `
-- a.pac2 --
module A;
import b;
type T = unit {
	x: uint8;
};
-- b.pac2 --
module B;
import a;
type T = unit {
	x: uint8;
};
`)
	ctx := NewContext(Options{LibraryPaths: []string{dir + "/*.pac2"}})

	if _, err := ctx.Load(context.Background(), "a"); err == nil {
		t.Fatalf("expected an ImportError from the import cycle, got nil")
	}

	if _, stillCached := ctx.cache["a"]; stillCached {
		t.Errorf("cache still holds %q after a failed cyclic load", "a")
	}
	if _, stillCached := ctx.cache["b"]; stillCached {
		t.Errorf("cache still holds %q after a failed cyclic load", "b")
	}
}

func TestLoadReportsMissingModule(t *testing.T) {
	dir := t.TempDir()
	ctx := NewContext(Options{LibraryPaths: []string{dir + "/*.pac2"}})
	if _, err := ctx.Load(context.Background(), "nonexistent"); err == nil {
		t.Fatalf("expected an error for a module absent from the library path")
	}
}

func TestWithTraceReceivesOnePerPass(t *testing.T) {
	var passes []string
	ctx := NewContext(Options{Verify: true}, WithTrace(func(pass, module string, _ time.Duration) {
		passes = append(passes, pass)
	}))

	mod, bag, err := ctx.Parse(context.Background(), "trace.pac2", `module Packet;
type Header = unit {
	len: uint16;
};`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := ctx.Finalize(mod, bag); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if len(passes) == 0 {
		t.Fatalf("expected at least one traced pass, got none")
	}
	if passes[0] != "parse" {
		t.Errorf("first traced pass = %q, want %q", passes[0], "parse")
	}
	foundScopeBuilder := false
	for _, p := range passes {
		if p == "scope-builder" {
			foundScopeBuilder = true
		}
	}
	if !foundScopeBuilder {
		t.Errorf("passes = %v, want a \"scope-builder\" entry", passes)
	}
}

func TestIndependentContextsProduceIdenticalDiagnostics(t *testing.T) {
	ctx1 := NewContext(Options{Verify: true})
	ctx2 := NewContext(Options{Verify: true})

	src := `module Packet;
type Header = unit {
	len: uint16;
};`
	mod1, bag1, _ := ctx1.Parse(context.Background(), "x.pac2", src)
	mod2, bag2, _ := ctx2.Parse(context.Background(), "x.pac2", src)
	if _, err := ctx1.Finalize(mod1, bag1); err != nil {
		t.Fatalf("Finalize ctx1: %v", err)
	}
	if _, err := ctx2.Finalize(mod2, bag2); err != nil {
		t.Fatalf("Finalize ctx2: %v", err)
	}

	if diff := cmp.Diff(bag1.Diagnostics(), bag2.Diagnostics(), cmp.Comparer(func(a, b diag.Diagnostic) bool {
		return a.String() == b.String()
	})); diff != "" {
		t.Errorf("two independent contexts resolving the same source produced different diagnostics (-ctx1 +ctx2):\n%s", diff)
	}
}
