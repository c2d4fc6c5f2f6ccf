package ast

import (
	"github.com/binpacc/binpacc/operator"
	"github.com/binpacc/binpacc/token"
)

// ExprKind tags an Expr's variant.
type ExprKind uint8

const (
	EConstant ExprKind = iota
	ECtor               // a composite literal: regexp, list/vector/set/map/tuple literal
	EID                 // a bare identifier, pre-resolution
	EList               // `[a, b, c]` element list, used both standalone and as a Ctor's argument
	ECoerced            // an implicit or explicit conversion wrapping Inner
	EFunction           // wraps a Declaration(DeclFunction), as a first-class value
	EModule             // a resolved `modname` prefix of a `modname::id` reference
	EParameter          // a resolved reference to a function/hook parameter
	EVariable           // a resolved reference to a global/unit-field variable
	EType               // a type used in value position, e.g. as a Call argument to a parsing hook
	EParserState        // `self`, `$$`, or a named hook parameter inside a unit
	EUnresolvedOperator // built by the parser; eliminated by the operator resolver
	EResolvedOperator   // built by the operator resolver from an EUnresolvedOperator
)

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "unknown-expr"
}

var exprKindNames = [...]string{
	EConstant: "constant", ECtor: "ctor", EID: "id", EList: "list", ECoerced: "coerced",
	EFunction: "function", EModule: "module", EParameter: "parameter", EVariable: "variable",
	EType: "type", EParserState: "parser-state",
	EUnresolvedOperator: "unresolved-operator", EResolvedOperator: "resolved-operator",
}

// ParserStateKind distinguishes the three implicit values available inside
// a unit's field and hook bodies.
type ParserStateKind uint8

const (
	PSSelf ParserStateKind = iota
	PSDollarDollar
	PSParameter
)

// Expr is the single tagged node for every expression shape. As with Type,
// one struct carries every variant's fields so a pass's expression switch
// is one statement, not a type-assertion chain; only the fields relevant
// to EKind are populated.
type Expr struct {
	XPos  token.Pos
	EKind ExprKind

	// Every expression, once typed, carries its static Type here. Freshly
	// parsed expressions point at Module.UnknownType() until a later pass
	// fills this in.
	Type NodeID

	// EConstant, ECtor (pattern text, for ECtor of TRegExp)
	ConstValue interface{}
	CtorType   NodeID // the Type this literal constructs, when known syntactically (e.g. `b"..."` -> TBytes)

	// EID, EModule
	Name     string
	Resolved NodeID // filled in by the ID resolver: the Declaration (or Scope-bound Expr) this name denotes

	// EList, argument lists for ECtor/EUnresolvedOperator(Call/Construct)
	Items []NodeID

	// ECoerced
	Inner      NodeID
	TargetType NodeID

	// EFunction, EParameter, EVariable, EType: the underlying Declaration or Type NodeID
	Decl NodeID

	// EParserState
	PSKind ParserStateKind
	PSDecl NodeID // for PSParameter: the Declaration(DeclVariable) this name binds to

	// EUnresolvedOperator, EResolvedOperator
	OpKind   operator.Kind
	Operands []NodeID
	OpEntry  *operator.Entry // nil until the operator resolver picks a candidate
}

func (e *Expr) Kind() Kind          { return KindExpr }
func (e *Expr) Position() token.Pos { return e.XPos }
