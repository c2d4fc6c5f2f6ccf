package compiler

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// Options configures a Context: where load(path) searches for imported
// modules, whether finalize runs the Validator, and which debug dumps
// are enabled.
type Options struct {
	LibraryPaths []string
	Verify       bool
	Debug        DebugFlags
}

// DebugFlags is a string-keyed set of debug toggles rather than a fixed
// struct of booleans: a config file can turn on a dump this package
// doesn't know the name of yet without a schema change.
type DebugFlags map[string]bool

func (d DebugFlags) has(key string) bool { return d != nil && d[key] }

// Scopes gates passes.PrintScopes dumps after scope-building.
func (d DebugFlags) Scopes() bool { return d.has("scopes") }

// Grammars gates grammar.Grammar.PrintTables dumps after grammar building.
func (d DebugFlags) Grammars() bool { return d.has("grammars") }

// Passes gates per-pass trace reporting independent of a TraceFunc being set.
func (d DebugFlags) Passes() bool { return d.has("passes") }

// DumpAST gates ast.Module.Dump dumps before and after each pass.
func (d DebugFlags) DumpAST() bool { return d.has("dump-ast") }

type optionsDoc struct {
	LibraryPaths []string `yaml:"library_paths"`
	Verify       bool     `yaml:"verify"`
	Debug        []string `yaml:"debug"`
}

// LoadOptions parses a YAML options document:
//
//	library_paths: ["vendor/**/*.pac2"]
//	verify: true
//	debug: ["scopes", "passes"]
//
// This is the one place the repository reads configuration from outside
// Go source; it has no effect on parsing or resolution semantics, only on
// where load searches for imports and which passes verify.
func LoadOptions(r io.Reader) (*Options, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading options: %w", err)
	}
	var doc optionsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing options: %w", err)
	}
	debug := make(DebugFlags, len(doc.Debug))
	for _, name := range doc.Debug {
		debug[name] = true
	}
	return &Options{LibraryPaths: doc.LibraryPaths, Verify: doc.Verify, Debug: debug}, nil
}
