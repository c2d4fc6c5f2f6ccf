// Package grammar derives an LL(1)-style parser description — a Production
// tree plus FIRST/FOLLOW/lookahead tables — from a resolved unit type. It
// is the last stage the core owns: a code generator consumes the Grammar
// this package builds, but never this package's internals.
//
// The derivation itself (BuildUnit) is one small recursive walk over
// ast.Type(TUnit).Items; nearly all of the package's weight is the
// fixed-point FIRST/FOLLOW computation and the LL(1) disjointness check
// that follows it, mirroring how the original grammar/production classes
// split "what a unit's wire syntax looks like" from "is that syntax
// actually parseable with one token of lookahead".
package grammar

import "github.com/binpacc/binpacc/ast"

// Kind tags a Production's variant.
type Kind uint8

const (
	Epsilon Kind = iota
	Literal
	Variable
	Sequence
	LookAhead
	Switch
	ChildGrammar
)

func (k Kind) String() string {
	switch k {
	case Epsilon:
		return "epsilon"
	case Literal:
		return "literal"
	case Variable:
		return "variable"
	case Sequence:
		return "sequence"
	case LookAhead:
		return "lookahead"
	case Switch:
		return "switch"
	case ChildGrammar:
		return "child-grammar"
	default:
		return "unknown-production"
	}
}

// SwitchArm is one `case value: production` alternative of a Switch
// production, or the default arm when Values is empty.
type SwitchArm struct {
	Values []ast.NodeID // case label Expr NodeIDs; empty means default
	Prod   *Production
}

// Production is the single tagged node for every grammar-construction
// shape: one struct rather than seven concrete types, so the FIRST/FOLLOW
// walk's switch is one statement, matching the tagged-node style the rest
// of the front end uses for Expr/Type/Stmt.
type Production struct {
	Kind   Kind
	Symbol string // unique within one Grammar; what FIRST/FOLLOW/lookahead are keyed by

	// Literal: the Expr this production matches against the input.
	LiteralValue ast.NodeID

	// Variable: the Type this production parses as.
	VarType ast.NodeID

	// Sequence
	Elements []*Production

	// LookAhead
	Alt1, Alt2 *Production

	// Switch
	SwitchOn ast.NodeID
	Arms     []SwitchArm

	// ChildGrammar
	Unit  ast.NodeID
	Child *Grammar
}

// NewEpsilon returns the shared "matches nothing, consumes no input"
// production. Every Epsilon is semantically interchangeable, but each call
// returns its own value since FOLLOW computation never needs to tell two
// Epsilons apart by identity.
func NewEpsilon() *Production { return &Production{Kind: Epsilon, Symbol: "<epsilon>"} }

// NewLiteral returns a production that matches one fixed value: a string,
// bytes, or regexp constant a Field::Constant/Ctor field was declared with.
func NewLiteral(symbol string, value ast.NodeID) *Production {
	return &Production{Kind: Literal, Symbol: symbol, LiteralValue: value}
}

// NewVariable returns a production that parses one value of an atomic
// type directly off the input, with no further grammar structure of its
// own (an integer, a bool, an unconstrained bytes/string run).
func NewVariable(symbol string, varType ast.NodeID) *Production {
	return &Production{Kind: Variable, Symbol: symbol, VarType: varType}
}

// NewSequence returns a production requiring its elements to match in
// order. elems may be nil; use Add to grow a forward-declared sequence the
// way a recursive container body refers back to its own Sequence node.
func NewSequence(symbol string, elems ...*Production) *Production {
	return &Production{Kind: Sequence, Symbol: symbol, Elements: elems}
}

// Add appends one more element to a Sequence production, for building up a
// sequence whose later elements are only available once earlier
// productions (that may refer back to this same sequence) exist.
func (p *Production) Add(elem *Production) { p.Elements = append(p.Elements, elem) }

// NewLookAhead returns an alternation resolved by one token of lookahead
// between alt1 and alt2. Either may be nil when the node is forward
// declared (a recursive container's "more of me" branch needs the
// sequence it is itself an element of); fill both in with SetAlternatives
// once they exist.
func NewLookAhead(symbol string, alt1, alt2 *Production) *Production {
	return &Production{Kind: LookAhead, Symbol: symbol, Alt1: alt1, Alt2: alt2}
}

// SetAlternatives fills in a forward-declared LookAhead's two branches.
func (p *Production) SetAlternatives(alt1, alt2 *Production) {
	p.Alt1, p.Alt2 = alt1, alt2
}

// NewSwitch returns an alternation resolved by evaluating switchOn against
// the unit's field values rather than by lookahead, mirroring a unit's
// `switch (expr) { case ...: field; default: field; }` item.
func NewSwitch(symbol string, switchOn ast.NodeID, arms []SwitchArm) *Production {
	return &Production{Kind: Switch, Symbol: symbol, SwitchOn: switchOn, Arms: arms}
}

// NewChildGrammar wraps an embedded sub-unit's own Grammar so it expands
// transparently into the owner's FIRST/FOLLOW computation.
func NewChildGrammar(symbol string, unit ast.NodeID, child *Grammar) *Production {
	return &Production{Kind: ChildGrammar, Symbol: symbol, Unit: unit, Child: child}
}
