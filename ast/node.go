// Package ast defines the BinPAC++ abstract syntax tree: declarations,
// types, expressions, statements, and unit items. Nodes live in a
// per-Module arena and are addressed by NodeID rather than by pointer, so
// parent/child edges and cross-references are plain indices. That
// eliminates cycle hazards in a mutually-recursive tree (a unit field can
// reference its own unit type) and keeps visitor walks allocation-free.
//
// A NodeID is only ever meaningful relative to the Module that produced it;
// nothing in this package compares NodeIDs across two different Modules.
package ast

import "github.com/binpacc/binpacc/token"

// NodeID addresses one node inside a Module's arena.
type NodeID int32

// NilNode is the zero-information NodeID: "no node here" (an absent
// optional child, or a cross-reference not yet resolved).
const NilNode NodeID = -1

// Valid reports whether id addresses a real node.
func (id NodeID) Valid() bool { return id >= 0 }

// Kind is the top-level syntactic category of a node: a declaration, a
// type, an expression, a statement, a unit item, or a Function/Hook payload.
type Kind uint8

const (
	KindModule Kind = iota
	KindDeclaration
	KindType
	KindExpr
	KindStmt
	KindUnitItem
	KindFunction
	KindHook
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "Module"
	case KindDeclaration:
		return "Declaration"
	case KindType:
		return "Type"
	case KindExpr:
		return "Expression"
	case KindStmt:
		return "Statement"
	case KindUnitItem:
		return "UnitItem"
	case KindFunction:
		return "Function"
	case KindHook:
		return "Hook"
	default:
		return "unknown"
	}
}

// Node is implemented by every concrete node struct stored in a Module's
// arena. It is intentionally small: dispatch happens via a type switch in
// each pass (Validator, Normalizer, ...), not via a per-node-type virtual
// method for every operation.
type Node interface {
	Kind() Kind
	Position() token.Pos
}

// Module is the root of one compiled BinPAC++ source file: the arena that
// owns every node, the root (body) Scope, and bookkeeping the parser and
// later passes fill in. AST nodes are owned by their enclosing declaration;
// scopes are owned by their block or unit.
type Module struct {
	Name     string // module name, from `module M;`
	FileName string // canonical source path, used as the key in CompilerContext's cache

	nodes []Node
	files *token.File

	Root        *Scope            // the module body's scope
	ImportedIDs []string           // `import i;` names, in source order
	Exported    map[string]bool    // names declared `export`
	TopLevel    []NodeID           // top-level Declaration NodeIDs, in source order
	Properties  []PropertyDecl     // `%property = value;` module properties

	unknownType NodeID // lazily-created singleton Unknown Type node
}

// PropertyDecl is a `%property = value;` module-level declaration.
type PropertyDecl struct {
	Pos   token.Pos
	Name  string
	Value NodeID // Expression
}

// NewModule creates an empty module ready to receive parsed declarations.
func NewModule(name, fileName string, file *token.File) *Module {
	m := &Module{
		Name:     name,
		FileName: fileName,
		files:    file,
		Exported: make(map[string]bool),
		unknownType: NilNode,
	}
	m.Root = NewScope(nil, name)
	return m
}

// File returns the token.File this module's positions are relative to.
func (m *Module) File() *token.File { return m.files }

// Position converts a node's token.Pos into a full source Position.
func (m *Module) Position(pos token.Pos) token.Position {
	if pos == token.NoPos || m.files == nil {
		return token.Position{}
	}
	return m.files.Position(int(pos))
}

// add appends n to the arena and returns its fresh NodeID. It is the only
// way nodes enter a Module, which is what makes the arena allocation-free
// to *walk* (every cross-reference is already a plain int32) even though
// construction itself allocates one Go value per node, same as any other
// Go AST.
func add[T Node](m *Module, n T) NodeID {
	id := NodeID(len(m.nodes))
	m.nodes = append(m.nodes, n)
	return id
}

// Node returns the node stored at id, or nil if id is NilNode or out of
// range (out-of-range only happens for a bug in a pass, not user input).
func (m *Module) Node(id NodeID) Node {
	if id < 0 || int(id) >= len(m.nodes) {
		return nil
	}
	return m.nodes[id]
}

// NodeCount returns how many nodes the arena currently holds, mostly for
// tests asserting that a pass did or did not synthesize new nodes.
func (m *Module) NodeCount() int { return len(m.nodes) }

// UnknownType returns the module's single Unknown-type placeholder node,
// creating it on first use. Every Type reference that has not yet been
// given a concrete shape (e.g. a freshly parsed identifier's static type,
// before the ID resolver runs) points at this one shared node, so
// invariant 3 ("no Unknown type... remains" after ID resolution) can be
// checked with a single equality test against UnknownType() rather than a
// tag scan.
func (m *Module) UnknownType() NodeID {
	if !m.unknownType.Valid() {
		m.unknownType = add(m, &Type{TKind: TUnknown})
	}
	return m.unknownType
}
