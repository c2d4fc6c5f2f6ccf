package parser

import (
	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/token"
)

func (p *Parser) parseTypeDecl(exported bool) ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'type'
	name, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return ast.NilNode
	}
	p.expect(token.ASSIGN)
	ty := p.parseType()
	p.expect(token.SEMI)
	linkage := ast.LinkagePrivate
	if exported {
		linkage = ast.LinkagePublic
	}
	return p.mod.NewDeclaration(ast.Declaration{
		DPos: pos, ID: name.Literal, DKind: ast.DeclType, Payload: ty,
		Exported: exported, Linkage: linkage,
	})
}

func (p *Parser) parseConstDecl(exported bool) ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'const'
	name, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return ast.NilNode
	}
	p.expect(token.COLON)
	_ = p.parseType() // declared type is informative; the constant's real type comes from its value
	p.expect(token.ASSIGN)
	val := p.parseExpr(lowest)
	p.expect(token.SEMI)
	return p.mod.NewDeclaration(ast.Declaration{
		DPos: pos, ID: name.Literal, DKind: ast.DeclConstant, Payload: val, Exported: exported,
	})
}

func (p *Parser) parseGlobalDecl(exported bool) ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'global'
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
	return p.mod.NewDeclaration(ast.Declaration{
		DPos: pos, ID: name.Literal, DKind: ast.DeclVariable, Payload: ty, Exported: exported, Init: init,
	})
}

func (p *Parser) parseFunctionDecl(exported bool) ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'function'
	name, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return ast.NilNode
	}
	p.expect(token.LPAREN)
	params := p.parseParamList()
	p.expect(token.RPAREN)

	result := ast.NilNode
	if p.accept(token.ARROW) {
		result = p.parseType()
	}

	fnID := p.mod.NewFunction(ast.Function{FPos: pos, ResultType: result, Params: params})
	fn := p.mod.Func(fnID)

	if p.curIs(token.LBRACE) {
		scope := ast.NewScope(p.mod.Root, "function "+name.Literal)
		for _, param := range params {
			if d := p.mod.Decl(param); d != nil {
				scope.Insert(d.ID, param)
			}
		}
		fn.Body = p.parseBlock(scope)
	} else {
		p.expect(token.SEMI)
	}

	return p.mod.NewDeclaration(ast.Declaration{
		DPos: pos, ID: name.Literal, DKind: ast.DeclFunction, Payload: fnID, Exported: exported,
	})
}
