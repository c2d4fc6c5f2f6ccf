// Package compiler drives the front end end to end: it owns the module
// cache, resolves `import` names to files via a library search path, and
// runs the fixed-point pass loop that takes a freshly parsed Module to a
// fully resolved one with a Grammar for each of its units.
//
// It is the only package that is allowed to call more than one passes.*
// function in sequence — every other package sees one pass at a time.
package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/grammar"
	"github.com/binpacc/binpacc/lexer"
	"github.com/binpacc/binpacc/operator"
	"github.com/binpacc/binpacc/parser"
	"github.com/binpacc/binpacc/passes"
	"github.com/binpacc/binpacc/token"
)

// maxSweeps bounds the outer fixed-point loop. A well-formed module
// converges in a handful of sweeps (one resolver unlocking the next);
// exceeding this is a bug in a pass, not a legitimately slow compile, so
// it is reported as an InternalError rather than returned quietly.
const maxSweeps = 64

// moduleState tracks one cached module through loading, so a second
// `import` of the same name finds it (resolved or still in progress,
// which means a cycle) instead of re-parsing it.
type moduleState struct {
	mod      *ast.Module
	grammars map[string]*grammar.Grammar
	loading  bool
	finalErr error
}

// Context owns the module cache for one compilation: Load and Parse feed
// it, Finalize drives the pass loop, and the cache is never shared with
// another Context — each Context owns its module cache exclusively.
type Context struct {
	opts  Options
	reg   *operator.Registry
	trace TraceFunc

	cache map[string]*moduleState
}

// NewContext creates a Context configured by opts and any ContextOptions.
func NewContext(opts Options, contextOpts ...ContextOption) *Context {
	c := &Context{
		opts:  opts,
		reg:   operator.NewRegistry(),
		cache: make(map[string]*moduleState),
	}
	for _, o := range contextOpts {
		o(c)
	}
	return c
}

// Load resolves name against c.opts.LibraryPaths (each entry a doublestar
// glob rooted at the working directory), returning the cached module if
// name was already loaded, parsing and finalizing it otherwise. A name
// still `loading` when Load re-enters it means an import cycle; that
// reports an ImportError and leaves no partial module cached for either
// side of the cycle.
func (c *Context) Load(ctx context.Context, name string) (*ast.Module, error) {
	return c.load(ctx, name)
}

func (c *Context) load(ctx context.Context, name string) (*ast.Module, error) {
	if st, ok := c.cache[name]; ok {
		if st.loading {
			return nil, fmt.Errorf("import cycle detected: %q imports itself transitively", name)
		}
		return st.mod, st.finalErr
	}

	path, err := c.findModule(ctx, name)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	c.cache[name] = &moduleState{loading: true}
	mod, bag, err := c.Parse(ctx, path, string(src))
	if err != nil {
		delete(c.cache, name)
		return nil, err
	}
	grammars, finalErr := c.finalize(mod, bag, c.opts.Verify)
	if finalErr != nil {
		// A module that failed to finalize — whether from a cycle, a
		// missing sibling import, or any other error — is not retained:
		// retrying Load after the caller fixes the source should not see
		// a poisoned cache entry.
		delete(c.cache, name)
		return mod, finalErr
	}
	c.cache[name] = &moduleState{mod: mod, grammars: grammars}
	return mod, nil
}

// lookup implements passes.ModuleLookup by loading name through this same
// Context, so an `import i` found mid-ScopeBuilder is resolved the same way
// a top-level Load(i) would be. Cancellation is not threaded through here:
// cancellation is not supported mid-pass, and ScopeBuilder's import
// resolution happens entirely inside one pass.
func (c *Context) lookup(name string) *ast.Module {
	mod, err := c.load(context.Background(), name)
	if err != nil {
		return nil
	}
	return mod
}

// Grammars returns the Grammars built by Load for the named module's own
// unit declarations, or nil if name was never loaded.
func (c *Context) Grammars(name string) map[string]*grammar.Grammar {
	if st, ok := c.cache[name]; ok {
		return st.grammars
	}
	return nil
}

// findModule searches c.opts.LibraryPaths in order for a file matching
// name (bare, or with a .pac2 suffix already attached).
func (c *Context) findModule(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	candidates := []string{name, name + ".pac2"}
	for _, pattern := range c.opts.LibraryPaths {
		root, glob := doublestar.SplitPattern(pattern)
		matches, err := doublestar.Glob(os.DirFS(root), glob)
		if err != nil {
			return "", fmt.Errorf("invalid library path pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			base := filepath.Base(m)
			for _, cand := range candidates {
				if base == cand || base == filepath.Base(cand) {
					return filepath.Join(root, m), nil
				}
			}
		}
	}
	return "", fmt.Errorf("cannot find imported module %q in library paths %v", name, c.opts.LibraryPaths)
}

// Parse constructs an AST from src without finalizing it; name is used as
// the reported source file name. The returned Bag holds syntax errors
// only — the caller decides whether to finalize a module that already has
// parse errors.
func (c *Context) Parse(ctx context.Context, name, src string) (*ast.Module, *diag.Bag, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	bag := diag.NewBag()
	file := token.NewFile(name, src)
	mod := ast.NewModule("", name, file)
	var result *ast.Module
	c.traced("parse", name, func() {
		l := lexer.New(file, bag)
		p := parser.New(l, mod, bag)
		result = p.ParseModule()
	})
	return result, bag, nil
}

// ParseExpression parses src as one standalone expression (no surrounding
// module) and runs the Normalizer on its host module, deliberately not
// running the full resolver chain on a bare expression — useful for
// evaluating a one-off
// `&length=...`-style attribute expression outside a full module.
func (c *Context) ParseExpression(src string) (ast.NodeID, error) {
	bag := diag.NewBag()
	file := token.NewFile("<expr>", src)
	mod := ast.NewModule("", "<expr>", file)
	l := lexer.New(file, bag)
	p := parser.New(l, mod, bag)
	id := p.ParseStandaloneExpr()
	if bag.HasErrors() {
		return ast.NilNode, fmt.Errorf("%s", bag.Diagnostics()[0].String())
	}
	passes.Normalizer(mod)
	return id, nil
}

// Finalize runs the semantic pass pipeline over mod to a fixed point,
// merging every pass's diagnostics into bag, then builds a Grammar for
// each unit type mod itself declares. It panics-and-recovers diag.Panic
// at this boundary only, per diag.Internal's contract.
func (c *Context) Finalize(mod *ast.Module, bag *diag.Bag) (map[string]*grammar.Grammar, error) {
	return c.finalize(mod, bag, c.opts.Verify)
}

// PartialFinalize runs the same pipeline as Finalize but skips the
// Validator, for IDE-style "resolve but don't validate" callers.
func (c *Context) PartialFinalize(mod *ast.Module, bag *diag.Bag) (map[string]*grammar.Grammar, error) {
	return c.finalize(mod, bag, false)
}

func (c *Context) finalize(mod *ast.Module, bag *diag.Bag, verify bool) (grammars map[string]*grammar.Grammar, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, ok := r.(diag.Panic)
			if !ok {
				panic(r)
			}
			err = p
		}
	}()

	sweep := 0
	runPass := func(name string, fn func()) {
		c.traced(name, mod.Name, fn)
	}

	runPass("scope-builder", func() { passes.ScopeBuilder(mod, c.lookup, bag) })
	if bag.HasErrors() {
		return nil, fmt.Errorf("scope-builder: %d error(s)", bag.Count(diag.Error))
	}

	for {
		sweep++
		if sweep > maxSweeps {
			diag.Internal("finalize: pass loop did not converge after %d sweeps on module %q", maxSweeps, mod.Name)
		}

		changed := false
		runPass("id-resolver", func() { passes.IDResolver(mod, bag) })
		runPass("unit-scope-builder", func() { passes.UnitScopeBuilder(mod) })
		runPass("id-resolver", func() { passes.IDResolver(mod, bag) })
		runPass("overload-resolver", func() { passes.OverloadResolver(mod, c.reg, bag) })
		runPass("operator-resolver", func() {
			if passes.OperatorResolver(mod, c.reg, bag) {
				changed = true
			}
		})
		runPass("id-resolver", func() { passes.IDResolver(mod, bag) })
		runPass("normalizer", func() { passes.Normalizer(mod) })

		if !changed {
			break
		}
	}

	if bag.HasErrors() {
		return nil, fmt.Errorf("resolution: %d error(s)", bag.Count(diag.Error))
	}

	if verify {
		runPass("validator", func() { passes.Validator(mod, c.reg, bag) })
		if bag.HasErrors() {
			return nil, fmt.Errorf("validation: %d error(s)", bag.Count(diag.Error))
		}
	}

	grammars = c.buildGrammars(mod, bag)

	if c.opts.Debug.Scopes() {
		passes.PrintScopes(os.Stderr, mod)
	}

	if bag.HasErrors() {
		return nil, fmt.Errorf("finalize: %d error(s)", bag.Count(diag.Error))
	}
	return grammars, nil
}

// buildGrammars derives a Grammar for every unit type mod declares at top
// level. One unit's grammar error does not stop the others: BuildUnit
// errors and Grammar.Check() ambiguities are both reported as GrammarError
// diagnostics scoped to that unit, and the loop continues.
func (c *Context) buildGrammars(mod *ast.Module, bag *diag.Bag) map[string]*grammar.Grammar {
	grammars := make(map[string]*grammar.Grammar)
	for _, declID := range mod.TopLevel {
		d := mod.Decl(declID)
		if d == nil || d.DKind != ast.DeclType {
			continue
		}
		t := mod.TypeNode(d.Payload)
		if t == nil || t.TKind != ast.TUnit {
			continue
		}
		g, err := grammar.BuildUnit(mod, d.ID, d.Payload)
		if err != nil {
			bag.Errorf(diag.GrammarError, mod.Position(d.DPos), "%s: %s", d.ID, err)
			continue
		}
		if msg := g.Check(); msg != "" {
			bag.Errorf(diag.GrammarError, mod.Position(d.DPos), "%s: %s", d.ID, msg)
			continue
		}
		grammars[d.ID] = g
		if c.opts.Debug.Grammars() {
			g.PrintTables(os.Stderr, true)
		}
	}
	return grammars
}
