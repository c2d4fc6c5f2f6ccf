package passes

import (
	"fmt"
	"io"
	"strings"

	"github.com/binpacc/binpacc/ast"
)

// PrintScopes writes an indented dump of mod's scope tree — the module
// root, its named children (each import, each unit's field scope), and
// every identifier bound in each — for debugging a resolution pass gone
// wrong. compiler.Context calls it at the end of finalize, writing to
// stderr, only when Options.Debug.Scopes() is set; no pass depends on it.
func PrintScopes(w io.Writer, mod *ast.Module) {
	printScope(w, mod.Root, 0)
}

func printScope(w io.Writer, s *ast.Scope, depth int) {
	if s == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%sscope %q\n", indent, s.Name)
	for _, name := range s.Names() {
		fmt.Fprintf(w, "%s  %s\n", indent, name)
	}
	for _, name := range s.ChildNames() {
		child, _ := s.Child(name)
		fmt.Fprintf(w, "%schild %q:\n", indent, name)
		printScope(w, child, depth+2)
	}
}
