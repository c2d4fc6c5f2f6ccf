package parser

import (
	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/token"
)

// parseUnitBody fills in unitID's Items and Hooks from the token stream up
// to (not including) the closing '}' the caller consumes.
func (p *Parser) parseUnitBody(unitID ast.NodeID) {
	unit := p.mod.TypeNode(unitID)
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		switch {
		case p.curIs(token.ON):
			if hookID := p.parseUnitHook(unitID); hookID.Valid() {
				unit.Hooks = append(unit.Hooks, hookID)
			}
		case p.curIs(token.IDENT) && p.cur.Literal == "var":
			unit.Items = append(unit.Items, p.parseVarItem(unitID))
		case p.curIs(token.SWITCH):
			unit.Items = append(unit.Items, p.parseSwitchItem(unitID))
		default:
			unit.Items = append(unit.Items, p.parseFieldItem(unitID))
		}
	}
}

func (p *Parser) parseAttrList() []ast.Attribute {
	var attrs []ast.Attribute
	for p.curIs(token.ATTR_NAME) {
		pos := p.cur.Pos
		key := p.cur.Literal
		p.next()
		val := ast.NilNode
		if p.accept(token.ASSIGN) || p.curIs(token.LPAREN) {
			val = p.parseExpr(lowest)
		}
		attrs = append(attrs, ast.Attribute{Pos: pos, Key: key, Value: val})
	}
	return attrs
}

func priorityFromAttrs(mod *ast.Module, attrs []ast.Attribute) int {
	for _, a := range attrs {
		if a.Key != "priority" || !a.Value.Valid() {
			continue
		}
		if e := mod.ExprNode(a.Value); e != nil {
			if v, ok := e.ConstValue.(int64); ok {
				return int(v)
			}
		}
	}
	return 0
}

// parseUnitHook parses `on %init { ... }`, `on %done { ... }`, or a
// user-defined event `on name(params) { ... }`.
func (p *Parser) parseUnitHook(unitID ast.NodeID) ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'on'
	unit := p.mod.TypeNode(unitID)

	if p.curIs(token.PERCENT) {
		p.next()
		name, ok := p.expect(token.IDENT)
		if !ok {
			p.synchronize()
			return ast.NilNode
		}
		var hkind ast.HookKind
		switch name.Literal {
		case "init":
			hkind = ast.HookUnitInit
		case "done":
			hkind = ast.HookUnitDone
		default:
			p.errorf(name.Pos, "unknown unit hook %%%s", name.Literal)
			hkind = ast.HookUnitInit
		}
		attrs := p.parseAttrList()
		scope := ast.NewScope(unit.UScope, "on %"+name.Literal)
		body := p.parseBlock(scope)
		return p.mod.NewHook(ast.Hook{
			HPos: pos, HKind: hkind, OwnerUnit: unitID, Body: body,
			Priority: priorityFromAttrs(p.mod, attrs),
		})
	}

	name, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return ast.NilNode
	}
	p.expect(token.LPAREN)
	params := p.parseParamList()
	p.expect(token.RPAREN)
	scope := ast.NewScope(unit.UScope, "on "+name.Literal)
	for _, param := range params {
		if d := p.mod.Decl(param); d != nil {
			scope.Insert(d.ID, param)
		}
	}
	body := p.parseBlock(scope)
	return p.mod.NewHook(ast.Hook{HPos: pos, HKind: ast.HookUserEvent, OwnerUnit: unitID, Params: params, Body: body})
}

func (p *Parser) parseVarItem(unitID ast.NodeID) ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'var'
	name, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return ast.NilNode
	}
	p.expect(token.COLON)
	ty := p.parseType()
	init := ast.NilNode
	if p.accept(token.ASSIGN) {
		init = p.parseExpr(lowest)
	}
	p.expect(token.SEMI)

	unit := p.mod.TypeNode(unitID)
	decl := p.mod.NewDeclaration(ast.Declaration{DPos: pos, ID: name.Literal, DKind: ast.DeclVariable, Payload: ty})
	unit.UScope.Insert(name.Literal, decl)

	return p.mod.NewUnitItem(ast.UnitItem{
		IPos: pos, IKind: ast.IVar, Name: name.Literal, VarType: ty, VarInit: init, Condition: ast.NilNode,
	})
}

func (p *Parser) parseSwitchItem(unitID ast.NodeID) ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'switch'
	p.expect(token.LPAREN)
	on := p.parseExpr(lowest)
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)

	var cases []ast.SwitchCase
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		cpos := p.cur.Pos
		var values []ast.NodeID
		switch {
		case p.curIs(token.CASE):
			p.next()
			values = append(values, p.parseExpr(lowest))
			for p.accept(token.COMMA) {
				values = append(values, p.parseExpr(lowest))
			}
		case p.curIs(token.DEFAULT):
			p.next()
		default:
			p.errorf(p.cur.Pos, "expected case or default, found %s %q", p.cur.Kind, p.cur.Literal)
			p.synchronize()
			continue
		}
		p.expect(token.COLON)
		var items []ast.NodeID
		for !p.curIs(token.CASE) && !p.curIs(token.DEFAULT) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			items = append(items, p.parseFieldItem(unitID))
		}
		cases = append(cases, ast.SwitchCase{Pos: cpos, Values: values, Items: items})
	}
	p.expect(token.RBRACE)
	p.expect(token.SEMI)
	return p.mod.NewUnitItem(ast.UnitItem{IPos: pos, IKind: ast.ISwitch, SwitchOn: on, Cases: cases, Condition: ast.NilNode})
}

// parseFieldItem parses one field of any form: a literal the input must
// match, a nested type parsed in place, a repeated container, or (when
// tagged with &embedded) an embedded object.
func (p *Parser) parseFieldItem(unitID ast.NodeID) ast.NodeID {
	pos := p.cur.Pos
	var name string
	if p.curIs(token.IDENT) && p.peekIs(token.COLON) {
		name = p.cur.Literal
		p.next()
		p.next()
	}

	var form ast.FieldForm
	fieldType := ast.NilNode
	literal := ast.NilNode

	switch p.cur.Kind {
	case token.STRING, token.BYTES, token.REGEXP:
		form = ast.FieldLiteral
		literal = p.parseExpr(lowest)
	default:
		fieldType = p.parseType()
		form = ast.FieldTyped
		if ty := p.mod.TypeNode(fieldType); ty != nil {
			switch ty.TKind {
			case ast.TList, ast.TVector, ast.TSet, ast.TMap:
				form = ast.FieldContainer
			}
		}
	}

	attrs := p.parseAttrList()
	for _, a := range attrs {
		if a.Key == "embedded" {
			form = ast.FieldEmbedded
		}
	}

	condition := ast.NilNode
	if p.curIs(token.IDENT) && p.cur.Literal == "if" {
		p.next()
		p.expect(token.LPAREN)
		condition = p.parseExpr(lowest)
		p.expect(token.RPAREN)
	}

	item := p.mod.NewUnitItem(ast.UnitItem{
		IPos: pos, IKind: ast.IField, Name: name, Form: form,
		FieldType: fieldType, LiteralValue: literal, Attrs: attrs, Condition: condition,
		ElemItem: ast.NilNode,
	})

	hkind := ast.HookField
	if form == ast.FieldContainer && p.curIs(token.IDENT) && p.cur.Literal == "foreach" {
		p.next()
		hkind = ast.HookForEach
	}

	if p.curIs(token.LBRACE) {
		unit := p.mod.TypeNode(unitID)
		hookScope := ast.NewScope(unit.UScope, "field "+name)
		body := p.parseBlock(hookScope)
		hookID := p.mod.NewHook(ast.Hook{HPos: pos, HKind: hkind, OwnerItem: item, OwnerUnit: unitID, Body: body})
		p.mod.Item(item).Hooks = append(p.mod.Item(item).Hooks, hookID)
	} else {
		p.expect(token.SEMI)
	}

	if name != "" {
		unit := p.mod.TypeNode(unitID)
		fieldDecl := p.mod.NewDeclaration(ast.Declaration{DPos: pos, ID: name, DKind: ast.DeclVariable, Payload: fieldType})
		unit.UScope.Insert(name, fieldDecl)
	}

	return item
}
