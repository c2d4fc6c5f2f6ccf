package passes

import (
	"regexp"

	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/operator"
	"github.com/binpacc/binpacc/token"
)

// Validator performs the checks that only make sense once resolution has
// settled, one switch case per node kind: that a field's declared type
// actually names a type (not a variable or function accidentally written
// where a type was expected); that every non-implicit attribute a field
// carries is one its underlying type's AttributeSchema actually
// recognizes; that assignments, local/global initializers and function
// returns are type-compatible with their target; that a function's (or
// user-event hook's) formal parameters have admissible types; that a
// foreach hook is only attached to a container field; that a unit has no
// duplicate field names; that a switch with no default arm covers every
// label of its enum/bitset discriminator; that every regexp literal
// compiles; that enum/bitset label names are unique. It does not
// re-report anything the ID resolver or operator resolver already
// diagnosed; those failures leave their node pointed at Module.UnknownType,
// which Validator treats as "already explained" and skips.
func Validator(mod *ast.Module, reg *operator.Registry, bag *diag.Bag) {
	for i := 0; i < mod.NodeCount(); i++ {
		switch n := mod.Node(ast.NodeID(i)).(type) {
		case *ast.Type:
			validateType(mod, reg, n, bag)
		case *ast.Declaration:
			validateDeclaration(mod, reg, n, bag)
		case *ast.Expr:
			if n.EKind == ast.ECtor {
				validateRegexpLiteral(mod, n, bag)
			}
		}
	}
}

func validateType(mod *ast.Module, reg *operator.Registry, t *ast.Type, bag *diag.Bag) {
	switch t.TKind {
	case ast.TUnit:
		validateUnitItems(mod, reg, t.Items, bag)
		validateNoDuplicateFieldNames(mod, t.Items, bag)
		for _, hookID := range t.Hooks {
			validateHookBody(mod, reg, hookID, bag)
		}
	case ast.TEnum, ast.TBitset:
		validateLabelsUnique(mod, t, bag)
	}
}

func validateDeclaration(mod *ast.Module, reg *operator.Registry, d *ast.Declaration, bag *diag.Bag) {
	switch d.DKind {
	case ast.DeclVariable:
		if d.Init.Valid() {
			checkCompatible(mod, reg, d.DPos, exprType(mod, d.Init), d.Payload, "initializer for "+d.ID, bag)
		}
	case ast.DeclFunction:
		fn := mod.Func(d.Payload)
		if fn == nil {
			return
		}
		validateParams(mod, fn.Params, bag)
		if fn.Body.Valid() {
			walkStmt(mod, reg, fn.Body, fn.ResultType, bag)
		}
	}
}

func validateUnitItems(mod *ast.Module, reg *operator.Registry, items []ast.NodeID, bag *diag.Bag) {
	for _, id := range items {
		item := mod.Item(id)
		if item == nil {
			continue
		}
		switch item.IKind {
		case ast.IField:
			validateField(mod, item, bag)
			for _, hookID := range item.Hooks {
				validateHookBody(mod, reg, hookID, bag)
				validateHookMatchesField(mod, item, hookID, bag)
			}
		case ast.IVar:
			if item.VarInit.Valid() {
				checkCompatible(mod, reg, item.IPos, exprType(mod, item.VarInit), item.VarType, "initializer for "+item.Name, bag)
			}
		case ast.ISwitch:
			validateSwitchExhaustive(mod, item, bag)
			for _, c := range item.Cases {
				validateUnitItems(mod, reg, c.Items, bag)
			}
		}
	}
}

func validateField(mod *ast.Module, item *ast.UnitItem, bag *diag.Bag) {
	if !item.FieldType.Valid() {
		return
	}
	t := mod.TypeNode(item.FieldType)
	if t != nil && t.TKind == ast.TByName && t.Resolved.Valid() {
		if d := mod.Decl(t.Resolved); d != nil && d.DKind != ast.DeclType {
			bag.Errorf(diag.TypeError, mod.Position(t.TPos), "%q does not name a type", t.RefName)
			return
		}
	}
	underlying := resolveAlias(mod, item.FieldType)
	if underlying == nil || underlying.TKind == ast.TUnknown {
		return
	}
	for _, a := range item.Attrs {
		if a.Implicit {
			continue
		}
		if _, ok := ast.AttributeSchemaLookup(underlying.TKind, a.Key); !ok {
			bag.Errorf(diag.AttributeError, mod.Position(a.Pos), "type %s has no attribute %q", underlying.TKind, a.Key)
		}
	}
}

// validateHookMatchesField checks that a hook's kind is compatible with the
// field form it is attached to: only a container field can carry a foreach
// hook, since that hook body's "$$" is re-bound to one container element at
// a time rather than to the field's own value.
func validateHookMatchesField(mod *ast.Module, item *ast.UnitItem, hookID ast.NodeID, bag *diag.Bag) {
	h := mod.HookNode(hookID)
	if h == nil || h.HKind != ast.HookForEach {
		return
	}
	if item.Form != ast.FieldContainer {
		bag.Errorf(diag.TypeError, mod.Position(h.HPos),
			"foreach hook on %q requires a container field, got %s", item.Name, item.Form)
	}
}

func validateHookBody(mod *ast.Module, reg *operator.Registry, hookID ast.NodeID, bag *diag.Bag) {
	h := mod.HookNode(hookID)
	if h == nil {
		return
	}
	validateParams(mod, h.Params, bag)
	if h.Body.Valid() {
		walkStmt(mod, reg, h.Body, ast.NilNode, bag)
	}
}

// validateParams flags a parameter declared with type void; any other
// unresolvable parameter type was already reported by the ID resolver.
func validateParams(mod *ast.Module, params []ast.NodeID, bag *diag.Bag) {
	for _, id := range params {
		d := mod.Decl(id)
		if d == nil || !isTyped(mod, d.Payload) {
			continue
		}
		if t := mod.TypeNode(d.Payload); t != nil && t.TKind == ast.TVoid {
			bag.Errorf(diag.TypeError, mod.Position(d.DPos), "parameter %q cannot have type void", d.ID)
		}
	}
}

// walkStmt descends a function or hook body checking every assignment,
// local initializer, and return against its target's type. resultType is
// NilNode for a hook body (which never returns a value).
func walkStmt(mod *ast.Module, reg *operator.Registry, id, resultType ast.NodeID, bag *diag.Bag) {
	s := mod.StmtNode(id)
	if s == nil {
		return
	}
	switch s.SKind {
	case ast.SBlock:
		for _, sub := range s.Stmts {
			walkStmt(mod, reg, sub, resultType, bag)
		}
	case ast.SIf:
		walkStmt(mod, reg, s.Then, resultType, bag)
		if s.Else.Valid() {
			walkStmt(mod, reg, s.Else, resultType, bag)
		}
	case ast.SLocal:
		if d := mod.Decl(s.LocalDecl); d != nil && s.Expr.Valid() {
			checkCompatible(mod, reg, s.SPos, exprType(mod, s.Expr), d.Payload, "local initializer for "+d.ID, bag)
		}
	case ast.SAssign:
		checkCompatible(mod, reg, s.SPos, exprType(mod, s.Expr), exprType(mod, s.Target), "assignment", bag)
	case ast.SReturn:
		checkReturn(mod, reg, s, resultType, bag)
	}
}

func checkReturn(mod *ast.Module, reg *operator.Registry, s *ast.Stmt, resultType ast.NodeID, bag *diag.Bag) {
	if !s.Expr.Valid() {
		if resultType.Valid() {
			bag.Errorf(diag.TypeError, mod.Position(s.SPos), "missing return value")
		}
		return
	}
	if !resultType.Valid() {
		bag.Errorf(diag.TypeError, mod.Position(s.SPos), "return has a value but the enclosing body is void")
		return
	}
	checkCompatible(mod, reg, s.SPos, exprType(mod, s.Expr), resultType, "return value", bag)
}

func checkCompatible(mod *ast.Module, reg *operator.Registry, pos token.Pos, actual, expected ast.NodeID, what string, bag *diag.Bag) {
	if !isTyped(mod, actual) || !isTyped(mod, expected) {
		return
	}
	actualShape, ok1 := typeToShape(mod, actual)
	expectedShape, ok2 := typeToShape(mod, expected)
	if !ok1 || !ok2 {
		return
	}
	if matched, _ := reg.Matches(actualShape, expectedShape, operator.DefaultCoercer); !matched {
		actualT, expectedT := mod.TypeNode(actual), mod.TypeNode(expected)
		bag.Errorf(diag.TypeError, mod.Position(pos), "%s has type %s, expected %s", what, actualT.TKind, expectedT.TKind)
	}
}

func exprType(mod *ast.Module, id ast.NodeID) ast.NodeID {
	e := mod.ExprNode(id)
	if e == nil {
		return ast.NilNode
	}
	return e.Type
}

// validateNoDuplicateFieldNames requires field names be unique among
// direct siblings. Two switch-case arms may reuse a name, since only one
// arm's fields ever exist in a given parse; each arm is checked against
// its own fresh set rather than against the unit's other arms.
func validateNoDuplicateFieldNames(mod *ast.Module, items []ast.NodeID, bag *diag.Bag) {
	seen := make(map[string]bool, len(items))
	for _, id := range items {
		item := mod.Item(id)
		if item == nil || item.Name == "" {
			continue
		}
		if seen[item.Name] {
			bag.Errorf(diag.ScopeError, mod.Position(item.IPos), "duplicate field name %q", item.Name)
			continue
		}
		seen[item.Name] = true
	}
	for _, id := range items {
		item := mod.Item(id)
		if item == nil || item.IKind != ast.ISwitch {
			continue
		}
		for _, c := range item.Cases {
			validateNoDuplicateFieldNames(mod, c.Items, bag)
		}
	}
}

// validateSwitchExhaustive requires either a default arm (a case with no
// Values) or, when the discriminator's type is an enum or bitset, that
// every one of its labels is covered by some case's constant value.
func validateSwitchExhaustive(mod *ast.Module, item *ast.UnitItem, bag *diag.Bag) {
	for _, c := range item.Cases {
		if len(c.Values) == 0 {
			return
		}
	}
	on := resolveAlias(mod, exprType(mod, item.SwitchOn))
	if on == nil || (on.TKind != ast.TEnum && on.TKind != ast.TBitset) {
		bag.Errorf(diag.TypeError, mod.Position(item.IPos), "switch has no default case and is not exhaustive")
		return
	}
	covered := make(map[int64]bool)
	for _, c := range item.Cases {
		for _, vID := range c.Values {
			if v, ok := constInt(mod.ExprNode(vID)); ok {
				covered[v] = true
			}
		}
	}
	for _, label := range on.Labels {
		if !covered[label.Value] {
			bag.Errorf(diag.TypeError, mod.Position(item.IPos), "switch does not cover %s label %q", on.TKind, label.Name)
		}
	}
}

func constInt(e *ast.Expr) (int64, bool) {
	if e == nil || e.EKind != ast.EConstant {
		return 0, false
	}
	v, ok := e.ConstValue.(int64)
	return v, ok
}

func validateRegexpLiteral(mod *ast.Module, e *ast.Expr, bag *diag.Bag) {
	pattern, ok := e.ConstValue.(string)
	if !ok {
		return
	}
	if _, err := regexp.Compile(pattern); err != nil {
		bag.Errorf(diag.TypeError, mod.Position(e.XPos), "invalid regexp %q: %v", pattern, err)
	}
}

func validateLabelsUnique(mod *ast.Module, t *ast.Type, bag *diag.Bag) {
	seen := make(map[string]bool, len(t.Labels))
	for _, l := range t.Labels {
		if seen[l.Name] {
			bag.Errorf(diag.TypeError, mod.Position(t.TPos), "duplicate %s label %q", t.TKind, l.Name)
			continue
		}
		seen[l.Name] = true
	}
}
