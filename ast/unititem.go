package ast

import "github.com/binpacc/binpacc/token"

// Attribute is one `&key` or `&key=value` annotation on a unit field, e.g.
// `&length=4` or the flag-only `&transient`. Implicit marks an entry the
// normalizer inserted from the field type's AttributeSchema default rather
// than one the user wrote.
type Attribute struct {
	Pos      token.Pos
	Key      string
	Value    NodeID // Expr, or NilNode for a bare flag attribute
	Implicit bool
}

// ItemKind tags a UnitItem's variant.
type ItemKind uint8

const (
	IField  ItemKind = iota // a parsed field: literal, type-driven, container, or embedded (see FieldForm)
	ISwitch                 // `switch (e) { case v: item*; ... };` an alternative field group
	IVar                    // `var x: T;` a unit-local variable, not parsed from the input stream
)

func (k ItemKind) String() string {
	switch k {
	case IField:
		return "field"
	case ISwitch:
		return "switch"
	case IVar:
		return "var"
	default:
		return "unknown-item"
	}
}

// FieldForm further distinguishes an IField item, matching the field
// taxonomy: a literal the input must match, a nested type parsed in place,
// a repeated container, or an embedded object spliced in from a sink.
type FieldForm uint8

const (
	FieldLiteral FieldForm = iota
	FieldTyped
	FieldContainer
	FieldEmbedded
)

func (f FieldForm) String() string {
	switch f {
	case FieldLiteral:
		return "literal"
	case FieldTyped:
		return "typed"
	case FieldContainer:
		return "container"
	case FieldEmbedded:
		return "embedded"
	default:
		return "unknown-form"
	}
}

// SwitchCase is one `case v1, v2: item*;` (or `default: item*;` when Values
// is empty) alternative of an ISwitch item.
type SwitchCase struct {
	Pos    token.Pos
	Values []NodeID // case label Expressions; empty means the default arm
	Items  []NodeID // UnitItem NodeIDs parsed when this arm is taken
}

// UnitItem is the single tagged node for everything that can appear in a
// unit body: a field of any form, a switch/alternative group, or a plain
// unit-local variable.
type UnitItem struct {
	IPos  token.Pos
	IKind ItemKind
	Name  string // "" for an anonymous field (still addressable via $$/offset only)

	// IField
	Form         FieldForm
	FieldType    NodeID // the Type this field parses as
	LiteralValue NodeID // FieldLiteral: the Expr the parsed bytes must match

	// ElemItem is the canonicalized per-element UnitItem(IField) of a
	// FieldContainer field: the normalizer rewrites a container's bare
	// `list<T>` element-type shorthand into this explicit inner field, so
	// the grammar builder (and any future per-element attribute) has one
	// field to work from instead of reaching into FieldType.Elem directly.
	// NilNode before the normalizer runs, or for a non-container field.
	ElemItem NodeID

	// Common to IField and ISwitch
	Condition NodeID   // `if (e)` guard; NilNode if the item is unconditional
	Attrs     []Attribute
	Hooks     []NodeID // Hook NodeIDs firing as this item's value is produced

	// ISwitch
	SwitchOn NodeID
	Cases    []SwitchCase

	// IVar
	VarType  NodeID
	VarInit  NodeID // NilNode if uninitialized

	// Scope is this item's own lexical scope, parented to the owning unit's
	// UScope once UnitScopeBuilder runs: `$$` and the bodies of Hooks resolve
	// through it rather than through UScope directly, so a hook can see the
	// field's own value without it leaking into sibling fields' lookups.
	// Populated by UnitScopeBuilder, nil before that pass runs.
	Scope *Scope
}

func (u *UnitItem) Kind() Kind          { return KindUnitItem }
func (u *UnitItem) Position() token.Pos { return u.IPos }

// HookKind distinguishes what fires a Hook.
type HookKind uint8

const (
	HookField      HookKind = iota // fires as a field's value is bound, e.g. `x: uint8 { print $$; }`
	HookForEach                    // the `foreach` variant of a container field's hook
	HookUnitInit                   // `on %init { ... }`
	HookUnitDone                   // `on %done { ... }`
	HookUserEvent                  // a unit-level `on id(params) { ... }` raised explicitly by user code
)

func (k HookKind) String() string {
	switch k {
	case HookField:
		return "field"
	case HookForEach:
		return "foreach"
	case HookUnitInit:
		return "%init"
	case HookUnitDone:
		return "%done"
	case HookUserEvent:
		return "event"
	default:
		return "unknown-hook"
	}
}

// Hook is a `{ ... }` block that runs as a side effect of parsing: attached
// to a single field (HookField/HookForEach), or to the owning unit as a
// whole (HookUnitInit/HookUnitDone/HookUserEvent).
type Hook struct {
	HPos     token.Pos
	HKind    HookKind
	OwnerItem NodeID // UnitItem this hook is attached to; NilNode for unit-level hooks
	OwnerUnit NodeID // the Type(TUnit) this hook belongs to
	Params    []NodeID // Declaration(DeclVariable) NodeIDs, for HookUserEvent
	Body      NodeID   // Stmt(SBlock)
	Priority  int      // `&priority=n`; unit-init/done hooks with equal priority run in source order
}

func (h *Hook) Kind() Kind          { return KindHook }
func (h *Hook) Position() token.Pos { return h.HPos }
