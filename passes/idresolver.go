package passes

import (
	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/operator"
)

// IDResolver walks every declaration reachable from mod.TopLevel, binding
// each EID expression's Resolved field against the lexical scope it
// appears in and narrowing its EKind to EFunction/EType/EVariable/EParameter
// once the target's own kind is known (a ParserState(Parameter) binding,
// installed by UnitScopeBuilder, resolves to EParameter rather than a
// Declaration kind). It also resolves TByName type references the same
// way, and gives `self` and `$$` their concrete types.
//
// The walk threads the current *ast.Scope, the enclosing unit's own NodeID
// (unitCtx, NilNode outside any unit), and the enclosing field's "$$" type
// (dollarCtx, NilNode outside a hook body) explicitly as parameters rather
// than storing them on each node: a block's local scope, a unit's field
// scope, and the module root are all just values passed down the call
// chain, with no separate "current scope"/"current unit"/"current field"
// stack to keep in sync.
//
// Already-resolved nodes (Resolved.Valid(), or a TByName's Resolved field
// already set) are left untouched, which is what makes it safe for
// compiler.Context to call IDResolver again after a later pass (the
// UnitScopeBuilder, the Normalizer) adds new nodes that still need
// resolving.
func IDResolver(mod *ast.Module, bag *diag.Bag) {
	for _, id := range mod.TopLevel {
		resolveDecl(mod, id, mod.Root, bag)
	}
}

func resolveDecl(mod *ast.Module, id ast.NodeID, scope *ast.Scope, bag *diag.Bag) {
	d := mod.Decl(id)
	if d == nil {
		return
	}
	switch d.DKind {
	case ast.DeclConstant:
		resolveExpr(mod, d.Payload, scope, ast.NilNode, ast.NilNode, bag)
	case ast.DeclVariable, ast.DeclType:
		resolveType(mod, d.Payload, scope, bag)
		if d.Init.Valid() {
			resolveExpr(mod, d.Init, scope, ast.NilNode, ast.NilNode, bag)
		}
	case ast.DeclFunction:
		resolveFunction(mod, d.Payload, scope, bag)
	}
}

func resolveFunction(mod *ast.Module, id ast.NodeID, scope *ast.Scope, bag *diag.Bag) {
	fn := mod.Func(id)
	if fn == nil {
		return
	}
	if fn.ResultType.Valid() {
		resolveType(mod, fn.ResultType, scope, bag)
	}
	for _, p := range fn.Params {
		if d := mod.Decl(p); d != nil {
			resolveType(mod, d.Payload, scope, bag)
		}
	}
	if fn.Body.Valid() {
		resolveStmt(mod, fn.Body, scope, ast.NilNode, ast.NilNode, bag)
	}
}

func resolveType(mod *ast.Module, id ast.NodeID, scope *ast.Scope, bag *diag.Bag) {
	t := mod.TypeNode(id)
	if t == nil {
		return
	}
	switch t.TKind {
	case ast.TByName:
		if t.Resolved.Valid() {
			return
		}
		target, ok := scope.LookupChain(t.RefName)
		if !ok {
			bag.Errorf(diag.ScopeError, mod.Position(t.TPos), "undeclared type %q", t.RefName)
			return
		}
		t.Resolved = target
	case ast.TList, ast.TVector, ast.TSet:
		resolveType(mod, t.Elem, scope, bag)
	case ast.TMap:
		resolveType(mod, t.Key, scope, bag)
		resolveType(mod, t.Value, scope, bag)
	case ast.TTuple:
		for _, e := range t.Elements {
			resolveType(mod, e, scope, bag)
		}
	case ast.TFunction:
		if t.Result.Valid() {
			resolveType(mod, t.Result, scope, bag)
		}
		for _, p := range t.Params {
			if d := mod.Decl(p); d != nil {
				resolveType(mod, d.Payload, scope, bag)
			}
		}
	case ast.TIterator:
		resolveType(mod, t.Over, scope, bag)
	case ast.TUnit:
		for _, p := range t.UnitParams {
			if d := mod.Decl(p); d != nil {
				resolveType(mod, d.Payload, scope, bag)
			}
		}
		for _, itemID := range t.Items {
			resolveUnitItem(mod, itemID, t.UScope, id, bag)
		}
		for _, hookID := range t.Hooks {
			resolveHook(mod, hookID, t.UScope, id, ast.NilNode, bag)
		}
	}
}

func resolveUnitItem(mod *ast.Module, id ast.NodeID, scope *ast.Scope, unitCtx ast.NodeID, bag *diag.Bag) {
	item := mod.Item(id)
	if item == nil {
		return
	}
	switch item.IKind {
	case ast.IField:
		if item.FieldType.Valid() {
			resolveType(mod, item.FieldType, scope, bag)
		}
		if item.LiteralValue.Valid() {
			resolveExpr(mod, item.LiteralValue, scope, unitCtx, ast.NilNode, bag)
		}
		for _, a := range item.Attrs {
			if a.Value.Valid() {
				resolveExpr(mod, a.Value, scope, unitCtx, ast.NilNode, bag)
			}
		}
		if item.Condition.Valid() {
			resolveExpr(mod, item.Condition, scope, unitCtx, ast.NilNode, bag)
		}
		for _, h := range item.Hooks {
			resolveHook(mod, h, scope, unitCtx, item.FieldType, bag)
		}
	case ast.ISwitch:
		resolveExpr(mod, item.SwitchOn, scope, unitCtx, ast.NilNode, bag)
		for _, c := range item.Cases {
			for _, v := range c.Values {
				resolveExpr(mod, v, scope, unitCtx, ast.NilNode, bag)
			}
			for _, it := range c.Items {
				resolveUnitItem(mod, it, scope, unitCtx, bag)
			}
		}
	case ast.IVar:
		resolveType(mod, item.VarType, scope, bag)
		if item.VarInit.Valid() {
			resolveExpr(mod, item.VarInit, scope, unitCtx, ast.NilNode, bag)
		}
	}
}

// resolveHook resolves a hook body, giving $$ its type from fieldCtx (the
// field type it is attached to) — or, for a foreach hook, from that field's
// container element type once the field type has resolved far enough to
// name one.
func resolveHook(mod *ast.Module, id ast.NodeID, parent *ast.Scope, unitCtx, fieldCtx ast.NodeID, bag *diag.Bag) {
	h := mod.HookNode(id)
	if h == nil {
		return
	}
	for _, p := range h.Params {
		if d := mod.Decl(p); d != nil {
			resolveType(mod, d.Payload, parent, bag)
		}
	}
	dollarCtx := fieldCtx
	if h.HKind == ast.HookForEach {
		if elem, ok := containerElementType(mod, fieldCtx); ok {
			dollarCtx = elem
		} else {
			dollarCtx = ast.NilNode
		}
	}
	if h.Body.Valid() {
		resolveStmt(mod, h.Body, parent, unitCtx, dollarCtx, bag)
	}
}

func resolveStmt(mod *ast.Module, id ast.NodeID, scope *ast.Scope, unitCtx, dollarCtx ast.NodeID, bag *diag.Bag) {
	s := mod.StmtNode(id)
	if s == nil {
		return
	}
	switch s.SKind {
	case ast.SBlock:
		blockScope := scope
		if s.Scope != nil {
			blockScope = s.Scope
		}
		for _, st := range s.Stmts {
			resolveStmt(mod, st, blockScope, unitCtx, dollarCtx, bag)
		}
	case ast.SExpr:
		resolveExpr(mod, s.Expr, scope, unitCtx, dollarCtx, bag)
	case ast.SAssign:
		resolveExpr(mod, s.Target, scope, unitCtx, dollarCtx, bag)
		resolveExpr(mod, s.Expr, scope, unitCtx, dollarCtx, bag)
	case ast.SIf:
		resolveExpr(mod, s.Expr, scope, unitCtx, dollarCtx, bag)
		resolveStmt(mod, s.Then, scope, unitCtx, dollarCtx, bag)
		if s.Else.Valid() {
			resolveStmt(mod, s.Else, scope, unitCtx, dollarCtx, bag)
		}
	case ast.SLocal:
		if d := mod.Decl(s.LocalDecl); d != nil {
			resolveType(mod, d.Payload, scope, bag)
		}
		if s.Expr.Valid() {
			resolveExpr(mod, s.Expr, scope, unitCtx, dollarCtx, bag)
		}
	case ast.SReturn:
		if s.Expr.Valid() {
			resolveExpr(mod, s.Expr, scope, unitCtx, dollarCtx, bag)
		}
	case ast.SPrint:
		for _, a := range s.Args {
			resolveExpr(mod, a, scope, unitCtx, dollarCtx, bag)
		}
	}
}

func resolveExpr(mod *ast.Module, id ast.NodeID, scope *ast.Scope, unitCtx, dollarCtx ast.NodeID, bag *diag.Bag) {
	e := mod.ExprNode(id)
	if e == nil {
		return
	}
	switch e.EKind {
	case ast.EConstant:
		inferConstantType(mod, e)
	case ast.EID:
		if e.Resolved.Valid() {
			return
		}
		target, ok := scope.LookupChain(e.Name)
		if !ok {
			bag.Errorf(diag.ScopeError, mod.Position(e.XPos), "undeclared identifier %q", e.Name)
			return
		}
		e.Resolved = target
		e.Decl = target
		if d := mod.Decl(target); d != nil {
			switch d.DKind {
			case ast.DeclFunction:
				e.EKind = ast.EFunction
			case ast.DeclType:
				e.EKind = ast.EType
			default:
				e.EKind = ast.EVariable
			}
		} else if te := mod.ExprNode(target); te != nil && te.EKind == ast.EParserState && te.PSKind == ast.PSParameter {
			e.EKind = ast.EParameter
			e.Type = te.Type
		}
	case ast.EList:
		for _, it := range e.Items {
			resolveExpr(mod, it, scope, unitCtx, dollarCtx, bag)
		}
	case ast.ECoerced:
		resolveExpr(mod, e.Inner, scope, unitCtx, dollarCtx, bag)
		if e.TargetType.Valid() {
			resolveType(mod, e.TargetType, scope, bag)
		}
	case ast.EParserState:
		switch e.PSKind {
		case ast.PSSelf:
			if unitCtx.Valid() && !isTyped(mod, e.Type) {
				e.Type = unitCtx
			}
		case ast.PSDollarDollar:
			if dollarCtx.Valid() && !isTyped(mod, e.Type) {
				e.Type = dollarCtx
			}
		}
	case ast.EUnresolvedOperator:
		resolveOperatorOperands(mod, e, scope, unitCtx, dollarCtx, bag)
	}
}

// inferConstantType gives a freshly parsed literal its natural type from
// the shape of its Go ConstValue. Run as part of the ID resolver's walk
// (rather than at parse time) so it shares the walk's "already typed, leave
// alone" idempotence and its unitCtx-free simplicity — a literal's type
// never depends on lexical scope or enclosing unit.
func inferConstantType(mod *ast.Module, e *ast.Expr) {
	if isTyped(mod, e.Type) {
		return
	}
	switch e.ConstValue.(type) {
	case int64:
		e.Type = mod.NewType(ast.Type{TKind: ast.TInteger, Width: 64, Signed: true})
	case float64:
		e.Type = mod.NewType(ast.Type{TKind: ast.TDouble})
	case string:
		e.Type = mod.NewType(ast.Type{TKind: ast.TString})
	case []byte:
		e.Type = mod.NewType(ast.Type{TKind: ast.TBytes})
	case bool:
		e.Type = mod.NewType(ast.Type{TKind: ast.TBool})
	}
}

// resolveOperatorOperands resolves an EUnresolvedOperator's operands, except
// that Attribute's second operand is a bare member name rather than a value
// expression: `self.len` must not fail with "undeclared identifier len" just
// because `len` is not in lexical scope. The operator resolver matches that
// name against the first operand's own type once the first operand's type
// is known.
func resolveOperatorOperands(mod *ast.Module, e *ast.Expr, scope *ast.Scope, unitCtx, dollarCtx ast.NodeID, bag *diag.Bag) {
	if e.OpKind == operator.Attribute && len(e.Operands) == 2 {
		resolveExpr(mod, e.Operands[0], scope, unitCtx, dollarCtx, bag)
		return
	}
	for _, operand := range e.Operands {
		resolveExpr(mod, operand, scope, unitCtx, dollarCtx, bag)
	}
}
