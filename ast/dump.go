package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a readable, indented tree of the module's top-level
// declarations to w. It exists for interactive debugging and golden-file
// tests, not as a serialization format other code depends on.
func (m *Module) Dump(w io.Writer) {
	fmt.Fprintf(w, "module %s (%s)\n", m.Name, m.FileName)
	for _, name := range m.ImportedIDs {
		fmt.Fprintf(w, "  import %s\n", name)
	}
	for _, id := range m.TopLevel {
		m.dumpNode(w, id, 1)
	}
}

func (m *Module) dumpNode(w io.Writer, id NodeID, depth int) {
	n := m.Node(id)
	if n == nil {
		fmt.Fprintf(w, "%s<nil>\n", indent(depth))
		return
	}
	pad := indent(depth)
	switch v := n.(type) {
	case *Declaration:
		fmt.Fprintf(w, "%sdecl %s %s exported=%v\n", pad, v.DKind, v.ID, v.Exported)
		m.dumpNode(w, v.Payload, depth+1)
	case *Function:
		fmt.Fprintf(w, "%sfunction params=%d variadic=%v\n", pad, len(v.Params), v.Variadic)
		if v.ResultType.Valid() {
			m.dumpNode(w, v.ResultType, depth+1)
		}
		if v.Body.Valid() {
			m.dumpNode(w, v.Body, depth+1)
		}
	case *Type:
		fmt.Fprintf(w, "%stype %s\n", pad, v.TKind)
		if v.TKind == TUnit {
			for _, it := range v.Items {
				m.dumpNode(w, it, depth+1)
			}
		}
	case *Expr:
		fmt.Fprintf(w, "%sexpr %s\n", pad, v.EKind)
	case *Stmt:
		fmt.Fprintf(w, "%sstmt %s\n", pad, v.SKind)
		for _, s := range v.Stmts {
			m.dumpNode(w, s, depth+1)
		}
	case *UnitItem:
		fmt.Fprintf(w, "%sitem %s %q\n", pad, v.IKind, v.Name)
	case *Hook:
		fmt.Fprintf(w, "%shook %s\n", pad, v.HKind)
	default:
		fmt.Fprintf(w, "%s%T\n", pad, v)
	}
}

func indent(depth int) string { return strings.Repeat("  ", depth) }
