// Package codegen defines the read-only surface a backend needs against a
// finalized module: the list of top-level declarations, each unit's
// ordered item list and Grammar, each expression's resolved type and chosen
// operator, and each ID's binding. It emits nothing itself — this module
// stops at the interface the backend would consume from the core, the same
// boundary a bytecode or IR emitter sits behind in a compiler where the
// front end and the emitter are separately replaceable.
package codegen

import (
	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/grammar"
	"github.com/binpacc/binpacc/operator"
)

// View is the read-only query surface a backend runs against one finalized
// module. Nothing on this interface mutates the AST; a backend that needs
// to synthesize new nodes does so in its own IR, not in the Module it was
// handed.
type View interface {
	// TopLevel returns the module's top-level declaration IDs, in source
	// order.
	TopLevel() []ast.NodeID

	// Declaration resolves a top-level or nested declaration ID to its
	// node.
	Declaration(id ast.NodeID) *ast.Declaration

	// UnitItems returns the ordered item list of the unit type declared by
	// declID, or nil if declID does not name a unit.
	UnitItems(declID ast.NodeID) []ast.NodeID

	// Grammar returns the Grammar built for the unit type declared by
	// declID, or nil if none was built (e.g. the unit had a grammar
	// error).
	Grammar(declID ast.NodeID) *grammar.Grammar

	// ExprType returns the resolved Type of an expression node.
	ExprType(exprID ast.NodeID) *ast.Type

	// ResolvedOperator returns the concrete operator entry chosen for an
	// EResolvedOperator expression, or nil if exprID is not one.
	ResolvedOperator(exprID ast.NodeID) *operator.Entry

	// Binding resolves a name-carrying expression (EID/EModule before
	// resolution, or the EFunction/EType/EVariable it becomes afterward) to
	// the declaration or scope-bound expression it denotes.
	Binding(exprID ast.NodeID) ast.NodeID
}

// moduleView is the only implementation of View: a thin, read-only
// adapter over one finalized *ast.Module plus the Grammars the compiler
// context built for it. compiler.Context constructs one of these per
// module rather than handing a backend the Module directly, so a backend
// can never reach the module's mutation methods (NewExpr, NewType, ...).
type moduleView struct {
	mod      *ast.Module
	grammars map[string]*grammar.Grammar
}

// NewView wraps mod and its built grammars (as returned by
// compiler.Context.Grammars) in the read-only surface a backend consumes.
func NewView(mod *ast.Module, grammars map[string]*grammar.Grammar) View {
	return &moduleView{mod: mod, grammars: grammars}
}

func (v *moduleView) TopLevel() []ast.NodeID { return v.mod.TopLevel }

func (v *moduleView) Declaration(id ast.NodeID) *ast.Declaration {
	return v.mod.Decl(id)
}

func (v *moduleView) UnitItems(declID ast.NodeID) []ast.NodeID {
	d := v.mod.Decl(declID)
	if d == nil {
		return nil
	}
	t := v.mod.TypeNode(d.Payload)
	if t == nil || t.TKind != ast.TUnit {
		return nil
	}
	return t.Items
}

func (v *moduleView) Grammar(declID ast.NodeID) *grammar.Grammar {
	d := v.mod.Decl(declID)
	if d == nil {
		return nil
	}
	return v.grammars[d.ID]
}

func (v *moduleView) ExprType(exprID ast.NodeID) *ast.Type {
	e := v.mod.ExprNode(exprID)
	if e == nil {
		return nil
	}
	return v.mod.TypeNode(e.Type)
}

func (v *moduleView) ResolvedOperator(exprID ast.NodeID) *operator.Entry {
	e := v.mod.ExprNode(exprID)
	if e == nil || e.EKind != ast.EResolvedOperator {
		return nil
	}
	return e.OpEntry
}

func (v *moduleView) Binding(exprID ast.NodeID) ast.NodeID {
	e := v.mod.ExprNode(exprID)
	if e == nil {
		return ast.NilNode
	}
	switch e.EKind {
	case ast.EID, ast.EModule, ast.EVariable, ast.EFunction, ast.EType:
		return e.Resolved
	default:
		return ast.NilNode
	}
}
