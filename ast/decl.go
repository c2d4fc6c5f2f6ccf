package ast

import "github.com/binpacc/binpacc/token"

// DeclKind classifies a Declaration's Payload.
type DeclKind uint8

const (
	DeclVariable DeclKind = iota
	DeclConstant
	DeclType
	DeclFunction
	DeclHook
)

func (k DeclKind) String() string {
	switch k {
	case DeclVariable:
		return "variable"
	case DeclConstant:
		return "constant"
	case DeclType:
		return "type"
	case DeclFunction:
		return "function"
	case DeclHook:
		return "hook"
	default:
		return "unknown-decl"
	}
}

// Declaration binds one identifier, at module, unit, or block scope, to a
// payload node. It is deliberately a single (ID, kind, payload) triple
// rather than five separate declaration node types, so every pass that
// walks "all declarations in scope order" does so without a type switch of
// its own — the switch happens once, on Payload's own Kind, only where a
// pass actually needs kind-specific data.
type Declaration struct {
	DPos     token.Pos
	ID       string
	DKind    DeclKind
	Payload  NodeID // Type | Function | Expr(EConstant) | Hook, depending on DKind
	Exported bool
	Linkage  Linkage

	// Init is a DeclVariable global's `= expr` initializer, or NilNode for
	// an uninitialized global. Unused by any other DKind.
	Init NodeID
}

func (d *Declaration) Kind() Kind          { return KindDeclaration }
func (d *Declaration) Position() token.Pos { return d.DPos }

// Linkage distinguishes module-local bindings from ones visible to
// importers, independent of Exported: a `global` may be exported, while a
// unit's internal field variables never are.
type Linkage uint8

const (
	LinkagePrivate Linkage = iota
	LinkagePublic
)

// Function is the payload of a DeclFunction (or a unit hook's enclosing
// signature, via Hook.Body directly rather than through a Declaration).
type Function struct {
	FPos       token.Pos
	ResultType NodeID   // Type, or NilNode for a void/hook function
	Params     []NodeID // Declaration(DeclVariable) NodeIDs, in order
	Variadic   bool
	Body       NodeID // Stmt(SBlock), or NilNode for a declaration with no body
}

func (f *Function) Kind() Kind          { return KindFunction }
func (f *Function) Position() token.Pos { return f.FPos }
