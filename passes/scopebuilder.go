// Package passes implements the compiler's semantic pipeline: the
// fixed-point sequence of tree walks a parsed Module goes through before a
// grammar can be built from it. Every pass takes a *ast.Module (plus
// whatever side tables it needs) and mutates nodes in place; none of them
// allocate a second tree.
//
// Passes are deliberately small and composable rather than one monolithic
// "resolve everything" walk, because several of them need to run more than
// once: resolving one unit's field type can turn an EID into an EVariable
// that a later IDResolver sweep over a *different* unit now depends on.
// compiler.Context is what actually drives the sweep loop; this package
// only supplies the individual steps.
package passes

import (
	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/token"
)

// ModuleLookup resolves an `import name;` to the already-parsed Module it
// names, or nil if no such module is known yet. compiler.Context supplies
// the real implementation, backed by its module cache.
type ModuleLookup func(name string) *ast.Module

// ScopeBuilder attaches a named child scope to mod.Root for each of mod's
// imports, mirroring every exported declaration of the imported module.
// Declarations are mirrored rather than referenced directly because a
// NodeID is only ever valid within the arena that produced it: an imported
// module's Declaration lives in its own arena, so crossing that boundary
// means copying just enough information (the name and declaration kind) for
// local scope lookups to see it, at the cost of not sharing its full
// payload. A mirrored type declaration's Payload is left pointing at the
// importer's own Unknown-type singleton; cross-module type equality is out
// of scope for a front end that never generates code against it.
func ScopeBuilder(mod *ast.Module, lookup ModuleLookup, bag *diag.Bag) {
	for _, name := range mod.ImportedIDs {
		imported := lookup(name)
		if imported == nil {
			bag.Errorf(diag.ImportError, mod.Position(token.NoPos), "cannot find imported module %q", name)
			continue
		}
		child := ast.NewScope(nil, name)
		for _, exportedName := range imported.Root.Names() {
			if !imported.Exported[exportedName] {
				continue
			}
			srcID, ok := imported.Root.Lookup(exportedName)
			if !ok {
				continue
			}
			srcDecl := imported.Decl(srcID)
			if srcDecl == nil {
				continue
			}
			mirror := mod.NewDeclaration(ast.Declaration{
				DPos:    srcDecl.DPos,
				ID:      exportedName,
				DKind:   srcDecl.DKind,
				Payload: mod.UnknownType(),
				Linkage: ast.LinkagePublic,
			})
			child.Insert(exportedName, mirror)
		}
		mod.Root.AddChild(name, child)
	}
}
