package grammar

import (
	"fmt"

	"github.com/binpacc/binpacc/ast"
)

// resolveAlias follows a TByName chain to the type it ultimately names,
// mirroring passes' own alias resolution; grammar derivation runs after
// every pass has settled, so this never needs to trigger further
// resolution, only read through it.
func resolveAlias(mod *ast.Module, id ast.NodeID) *ast.Type {
	for i := 0; i < 32; i++ { // a resolved program has no alias cycles; this is a depth guard, not a real limit
		t := mod.TypeNode(id)
		if t == nil || t.TKind != ast.TByName {
			return t
		}
		if !t.Resolved.Valid() {
			return t
		}
		d := mod.Decl(t.Resolved)
		if d == nil || d.DKind != ast.DeclType {
			return t
		}
		id = d.Payload
	}
	return mod.TypeNode(id)
}

// symCounter hands out unique, stable symbol names for anonymous
// productions (an unnamed literal field, a container's synthesized
// recursion node) so every Production in one Grammar has a distinct
// Symbol without the caller having to invent one.
type symCounter struct {
	seen map[string]int
}

func newSymCounter() *symCounter { return &symCounter{seen: make(map[string]int)} }

func (c *symCounter) next(base string) string {
	if base == "" {
		base = "_"
	}
	n := c.seen[base]
	c.seen[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s#%d", base, n)
}

// BuildUnit derives unitID's Grammar: walk its items in source order,
// turning each into the matching Production variant, and wrap the
// resulting Sequence with the unit's name as the grammar's root symbol.
// unitID must already have passed every resolution/normalization/
// validation pass; BuildUnit does not re-resolve anything, it only reads
// the now-settled AST.
func BuildUnit(mod *ast.Module, name string, unitID ast.NodeID) (*Grammar, error) {
	unit := mod.TypeNode(unitID)
	if unit == nil || unit.TKind != ast.TUnit {
		return nil, fmt.Errorf("%s: not a unit type", name)
	}
	b := &builder{mod: mod, sym: newSymCounter()}
	root := b.sequence(name, unit.Items)
	return New(name, root), nil
}

type builder struct {
	mod *ast.Module
	sym *symCounter
}

func (b *builder) sequence(symbol string, items []ast.NodeID) *Production {
	seq := NewSequence(symbol)
	for _, id := range items {
		if p := b.item(id); p != nil {
			seq.Add(p)
		}
	}
	return seq
}

func (b *builder) item(id ast.NodeID) *Production {
	item := b.mod.Item(id)
	if item == nil {
		return nil
	}
	switch item.IKind {
	case ast.IVar:
		return nil // not parsed from the input stream
	case ast.ISwitch:
		return b.switchItem(item)
	case ast.IField:
		return b.field(item)
	default:
		return nil
	}
}

func (b *builder) itemSymbol(item *ast.UnitItem, fallback string) string {
	if item.Name != "" {
		return b.sym.next(item.Name)
	}
	return b.sym.next(fallback)
}

func (b *builder) field(item *ast.UnitItem) *Production {
	switch item.Form {
	case ast.FieldLiteral:
		sym := b.itemSymbol(item, "literal")
		return NewLiteral(sym, item.LiteralValue)
	case ast.FieldContainer:
		return b.container(item)
	case ast.FieldEmbedded:
		return b.embeddedOrTyped(item)
	case ast.FieldTyped:
		return b.embeddedOrTyped(item)
	default:
		return nil
	}
}

// embeddedOrTyped handles both Field::Unit (an inline or by-name unit
// type, embedded or not) and a plain atomic Field::AtomicType: a field
// whose resolved type is itself a unit becomes a ChildGrammar, anything
// else becomes a Variable.
func (b *builder) embeddedOrTyped(item *ast.UnitItem) *Production {
	sym := b.itemSymbol(item, "field")
	underlying := resolveAlias(b.mod, item.FieldType)
	if underlying != nil && underlying.TKind == ast.TUnit {
		child, err := BuildUnit(b.mod, sym, item.FieldType)
		if err != nil {
			return NewVariable(sym, item.FieldType)
		}
		return NewChildGrammar(sym, item.FieldType, child)
	}
	return NewVariable(sym, item.FieldType)
}

// container turns a `list<T>`/`vector<T>`/`set<T>` field into a recursive
// LookAhead between "another element then recurse" and stop. The
// element's own Production is built once and shared between the
// "one more" Sequence and (implicitly, via the recursive reference) every
// subsequent repetition.
func (b *builder) container(item *ast.UnitItem) *Production {
	sym := b.itemSymbol(item, "container")
	done := NewEpsilon()
	loop := NewLookAhead(sym, nil, done)

	elem := b.containerElement(item, sym)
	more := NewSequence(b.sym.next(sym+".more"), elem, loop)
	loop.SetAlternatives(more, done)
	return loop
}

// containerElement reads its element type off item.ElemItem, the inner
// field the normalizer canonicalizes a container's `list<T>` shorthand
// into. A container built before that normalization ran (or one over a
// type the normalizer leaves alone, like TMap) falls back to reading the
// container Type's own Elem directly.
func (b *builder) containerElement(item *ast.UnitItem, containerSym string) *Production {
	elemType := b.mod.UnknownType()
	if item.ElemItem.Valid() {
		if elem := b.mod.Item(item.ElemItem); elem != nil {
			elemType = elem.FieldType
		}
	} else if underlying := resolveAlias(b.mod, item.FieldType); underlying != nil {
		elemType = underlying.Elem
	}
	elemUnderlying := resolveAlias(b.mod, elemType)
	elemSym := b.sym.next(containerSym + ".elem")
	if elemUnderlying != nil && elemUnderlying.TKind == ast.TUnit {
		child, err := BuildUnit(b.mod, elemSym, elemType)
		if err == nil {
			return NewChildGrammar(elemSym, elemType, child)
		}
	}
	return NewVariable(elemSym, elemType)
}

func (b *builder) switchItem(item *ast.UnitItem) *Production {
	sym := b.sym.next("switch")
	arms := make([]SwitchArm, 0, len(item.Cases))
	for _, c := range item.Cases {
		armSym := b.sym.next(sym + ".case")
		arms = append(arms, SwitchArm{Values: c.Values, Prod: b.sequence(armSym, c.Items)})
	}
	return NewSwitch(sym, item.SwitchOn, arms)
}
