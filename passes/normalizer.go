package passes

import "github.com/binpacc/binpacc/ast"

// Normalizer fills in the three things the parser deliberately leaves
// incomplete because they need type information the parser itself never
// computes:
//
//   - A FieldLiteral item's type (the parser records only the matched
//     literal expression; TBytes/TString/TRegExp follows from what kind of
//     literal it was).
//   - A field's implicit attributes: AttributeSchema entries marked
//     Implicit (e.g. &chunked=False, &eod=False) that the user didn't write
//     explicitly, synthesized here as ordinary Attribute entries with
//     Implicit set, so every later pass can treat "does this field have
//     &chunked" uniformly regardless of who wrote it.
//
//   - A FieldContainer field's element-type shorthand (`list<T>` naming its
//     element type directly on the container's Type node) rewritten into
//     an explicit inner UnitItem(IField), so later passes and the grammar
//     builder have one field to read regardless of how the element type
//     was spelled.
//
// It must run after the ID resolver has had a chance to resolve TByName
// field types, since AttributeSchema is keyed on the field's *underlying*
// type kind.
func Normalizer(mod *ast.Module) {
	for i := 0; i < mod.NodeCount(); i++ {
		unit := mod.TypeNode(ast.NodeID(i))
		if unit == nil || unit.TKind != ast.TUnit {
			continue
		}
		normalizeUnitItems(mod, unit, unit.Items)
	}
}

func normalizeUnitItems(mod *ast.Module, unit *ast.Type, items []ast.NodeID) {
	for _, id := range items {
		item := mod.Item(id)
		if item == nil {
			continue
		}
		switch item.IKind {
		case ast.IField:
			normalizeField(mod, unit, item)
		case ast.ISwitch:
			for _, c := range item.Cases {
				normalizeUnitItems(mod, unit, c.Items)
			}
		}
	}
}

func normalizeField(mod *ast.Module, unit *ast.Type, item *ast.UnitItem) {
	if item.Form == ast.FieldLiteral && !item.FieldType.Valid() {
		inferLiteralFieldType(mod, unit, item)
	}
	if item.Form == ast.FieldContainer {
		canonicalizeContainerElement(mod, item)
	}
	if !item.FieldType.Valid() {
		return
	}
	underlying := resolveAlias(mod, item.FieldType)
	if underlying == nil {
		return
	}
	for _, entry := range ast.AttributeSchema(underlying.TKind) {
		if !entry.Implicit || hasAttr(item.Attrs, entry.Key) {
			continue
		}
		item.Attrs = append(item.Attrs, ast.Attribute{
			Key:      entry.Key,
			Value:    mod.NewExpr(ast.Expr{EKind: ast.EConstant, Type: defaultValueType(mod, entry.DefaultValue), ConstValue: entry.DefaultValue}),
			Implicit: true,
		})
	}
}

// canonicalizeContainerElement rewrites the shorthand `list<T>`/`vector<T>`/
// `set<T>` element-type reference carried directly on the container's own
// Type node into an explicit inner UnitItem(IField), the same shape every
// other field is built from. It only fires once TByName element types have
// had a chance to resolve (TMap has no single element type and is left
// alone), and is a no-op on a sweep where item.ElemItem already holds the
// current element type, so repeated sweeps never churn the AST arena.
func canonicalizeContainerElement(mod *ast.Module, item *ast.UnitItem) {
	underlying := resolveAlias(mod, item.FieldType)
	if underlying == nil {
		return
	}
	var elemType ast.NodeID
	switch underlying.TKind {
	case ast.TList, ast.TVector, ast.TSet:
		elemType = underlying.Elem
	default:
		return
	}
	if !elemType.Valid() {
		return
	}
	if item.ElemItem.Valid() {
		if existing := mod.Item(item.ElemItem); existing != nil && existing.FieldType == elemType {
			return
		}
	}
	item.ElemItem = mod.NewUnitItem(ast.UnitItem{
		IPos: item.IPos, IKind: ast.IField, Form: ast.FieldTyped, FieldType: elemType,
		LiteralValue: ast.NilNode, Condition: ast.NilNode, ElemItem: ast.NilNode,
	})
}

func inferLiteralFieldType(mod *ast.Module, unit *ast.Type, item *ast.UnitItem) {
	lit := mod.ExprNode(item.LiteralValue)
	if lit == nil {
		return
	}
	var kind ast.TypeKind
	switch v := lit.ConstValue.(type) {
	case []byte:
		kind = ast.TBytes
	case string:
		if lit.EKind == ast.ECtor {
			kind = ast.TRegExp
		} else {
			kind = ast.TString
		}
	default:
		_ = v
		kind = ast.TString
	}
	newType := mod.NewType(ast.Type{TKind: kind})
	item.FieldType = newType
	lit.Type = newType
	if item.Name == "" {
		return
	}
	if declID, ok := unit.UScope.Lookup(item.Name); ok {
		if d := mod.Decl(declID); d != nil {
			d.Payload = newType
		}
	}
}

func hasAttr(attrs []ast.Attribute, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

func defaultValueType(mod *ast.Module, v interface{}) ast.NodeID {
	switch v.(type) {
	case bool:
		return mod.NewType(ast.Type{TKind: ast.TBool})
	default:
		return mod.UnknownType()
	}
}
