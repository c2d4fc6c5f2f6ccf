package passes

import "github.com/binpacc/binpacc/ast"

// UnitScopeBuilder finishes wiring a unit type's scope model beyond what the
// parser could set up while still parsing the unit body: it binds self and
// the unit's own parameters as ParserState values in UScope, gives every
// field item its own child scope (with "$$" bound to the field's value
// type) parented under UScope, reparents each hook body's block scope
// under its owning item (overriding "$$" to the container's element type
// for a foreach hook), and links a unit-typed field's own scope in as a
// named child so chained attribute access such as `self.header.flags`
// resolves through more than one level.
//
// It must run after an IDResolver sweep has had a chance to pin down
// TByName field types, since a field's declared type is not known to be a
// unit (or a container, for the foreach override) until its name reference
// resolves — and since compiler.Context re-runs it every sweep until
// OperatorResolver stops reporting progress, every binding it installs is
// idempotent: an already-correct ParserState node is left in place rather
// than replaced, so an EID already resolved against it by an earlier
// IDResolver sweep never goes stale.
func UnitScopeBuilder(mod *ast.Module) {
	for i := 0; i < mod.NodeCount(); i++ {
		unitID := ast.NodeID(i)
		ty := mod.TypeNode(unitID)
		if ty == nil || ty.TKind != ast.TUnit || ty.UScope == nil {
			continue
		}
		bindSelf(mod, ty, unitID)
		bindParameters(mod, ty)
		for _, itemID := range ty.Items {
			linkItem(mod, ty, itemID)
		}
	}
}

func bindSelf(mod *ast.Module, ty *ast.Type, unitID ast.NodeID) {
	if existing, ok := ty.UScope.Lookup("self"); ok && isParserState(mod, existing, ast.PSSelf) {
		return
	}
	self := mod.NewExpr(ast.Expr{EKind: ast.EParserState, PSKind: ast.PSSelf, Type: unitID})
	ty.UScope.Replace("self", self)
}

// bindParameters upgrades a unit parameter's binding from the raw
// Declaration the parser inserted to a ParserState(Parameter) expression, so
// a bare reference to the parameter resolves to EParameter like any other
// parser-state value rather than EVariable.
func bindParameters(mod *ast.Module, ty *ast.Type) {
	for _, paramID := range ty.UnitParams {
		d := mod.Decl(paramID)
		if d == nil {
			continue
		}
		if existing, ok := ty.UScope.Lookup(d.ID); ok {
			if e := mod.ExprNode(existing); e != nil && e.EKind == ast.EParserState && e.PSKind == ast.PSParameter && e.PSDecl == paramID {
				continue
			}
		}
		bound := mod.NewExpr(ast.Expr{EKind: ast.EParserState, PSKind: ast.PSParameter, PSDecl: paramID, Type: d.Payload})
		ty.UScope.Replace(d.ID, bound)
	}
}

func isParserState(mod *ast.Module, id ast.NodeID, kind ast.ParserStateKind) bool {
	e := mod.ExprNode(id)
	return e != nil && e.EKind == ast.EParserState && e.PSKind == kind
}

// linkItem recurses into an ISwitch item's case arms (each carrying its own
// nested field items) and otherwise delegates to linkFieldItem; an IVar item
// has no scope of its own to build, since it never parses a value and so
// never binds "$$".
func linkItem(mod *ast.Module, ty *ast.Type, itemID ast.NodeID) {
	item := mod.Item(itemID)
	if item == nil {
		return
	}
	switch item.IKind {
	case ast.IField:
		linkFieldItem(mod, ty, item)
	case ast.ISwitch:
		for _, c := range item.Cases {
			for _, sub := range c.Items {
				linkItem(mod, ty, sub)
			}
		}
	}
}

func linkFieldItem(mod *ast.Module, ty *ast.Type, item *ast.UnitItem) {
	if item.Scope == nil {
		item.Scope = ast.NewScope(ty.UScope, "item "+item.Name)
	}
	if item.Name != "" {
		ty.UScope.AddChild("__item_"+item.Name, item.Scope)
	}
	bindDollarDollar(mod, item.Scope, item.FieldType)

	for _, hookID := range item.Hooks {
		reparentHookBody(mod, hookID, item)
	}

	if item.Name == "" || !item.FieldType.Valid() {
		return
	}
	if nested := underlyingUnitType(mod, item.FieldType); nested != nil && nested.UScope != nil {
		ty.UScope.AddChild(item.Name, nested.UScope)
	}
}

// bindDollarDollar installs (or retypes, once dollarType stops being
// Unknown) the "$$" binding a field's own scope carries for its value.
func bindDollarDollar(mod *ast.Module, scope *ast.Scope, dollarType ast.NodeID) {
	if existing, ok := scope.Lookup("$$"); ok {
		if e := mod.ExprNode(existing); e != nil && e.EKind == ast.EParserState && e.PSKind == ast.PSDollarDollar {
			if !isTyped(mod, e.Type) && isTyped(mod, dollarType) {
				e.Type = dollarType
			}
		}
		return
	}
	scope.Insert("$$", mod.NewExpr(ast.Expr{EKind: ast.EParserState, PSKind: ast.PSDollarDollar, Type: dollarType}))
}

// reparentHookBody hangs a hook's block scope under its owning item's scope
// so the hook body sees "$$" and (through the item scope's parent chain)
// self and every sibling field already parsed before it. A foreach hook
// additionally overrides "$$" in its own body scope to the container's
// element type, since each iteration's hook runs once per element rather
// than once for the whole container.
func reparentHookBody(mod *ast.Module, hookID ast.NodeID, item *ast.UnitItem) {
	h := mod.HookNode(hookID)
	if h == nil || !h.Body.Valid() {
		return
	}
	body := mod.StmtNode(h.Body)
	if body == nil || body.Scope == nil {
		return
	}
	body.Scope.Parent = item.Scope

	if h.HKind != ast.HookForEach {
		return
	}
	elemType, ok := containerElementType(mod, item.FieldType)
	if !ok {
		return
	}
	if existing, found := body.Scope.Lookup("$$"); found {
		if e := mod.ExprNode(existing); e != nil && e.EKind == ast.EParserState && e.PSKind == ast.PSDollarDollar && e.Type == elemType {
			return
		}
	}
	body.Scope.Replace("$$", mod.NewExpr(ast.Expr{EKind: ast.EParserState, PSKind: ast.PSDollarDollar, Type: elemType}))
}

// containerElementType reports the element type of a (possibly TByName)
// list/vector/set field type, or ok=false if id does not yet resolve to one.
func containerElementType(mod *ast.Module, id ast.NodeID) (elem ast.NodeID, ok bool) {
	t := resolveAlias(mod, id)
	if t == nil {
		return ast.NilNode, false
	}
	switch t.TKind {
	case ast.TList, ast.TVector, ast.TSet:
		return t.Elem, true
	default:
		return ast.NilNode, false
	}
}

// underlyingUnitType follows a (possibly TByName) type reference down to the
// Type(TUnit) it ultimately names, or returns nil if it names anything else.
func underlyingUnitType(mod *ast.Module, id ast.NodeID) *ast.Type {
	t := mod.TypeNode(id)
	if t == nil {
		return nil
	}
	switch t.TKind {
	case ast.TUnit:
		return t
	case ast.TByName:
		if !t.Resolved.Valid() {
			return nil
		}
		if d := mod.Decl(t.Resolved); d != nil && d.DKind == ast.DeclType {
			return underlyingUnitType(mod, d.Payload)
		}
	}
	return nil
}
