package parser

import (
	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/token"
)

// parseBlock parses `{ stmt* }`, with scope as the block's own lexical
// scope (already chained to whatever encloses it).
func (p *Parser) parseBlock(scope *ast.Scope) ast.NodeID {
	pos := p.cur.Pos
	p.expect(token.LBRACE)
	var stmts []ast.NodeID
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmts = append(stmts, p.parseStmt(scope))
	}
	p.expect(token.RBRACE)
	return p.mod.NewStmt(ast.Stmt{SPos: pos, SKind: ast.SBlock, Stmts: stmts, Scope: scope})
}

// statement-leading words (local/if/return/print) are ordinary identifiers
// to the lexer, not dedicated token kinds, so dispatch checks the literal
// text of an IDENT token before falling back to expression-statement
// parsing.
func (p *Parser) parseStmt(scope *ast.Scope) ast.NodeID {
	if p.curIs(token.LBRACE) {
		return p.parseBlock(ast.NewScope(scope, "block"))
	}
	if p.curIs(token.IDENT) {
		switch p.cur.Literal {
		case "local":
			return p.parseLocal(scope)
		case "if":
			return p.parseIf(scope)
		case "return":
			return p.parseReturn(scope)
		case "print":
			return p.parsePrint(scope)
		}
	}
	return p.parseExprOrAssignStmt(scope)
}

func (p *Parser) parseLocal(scope *ast.Scope) ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'local'
	name, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return ast.NilNode
	}
	p.expect(token.COLON)
	ty := p.parseType()
	decl := p.mod.NewDeclaration(ast.Declaration{DPos: pos, ID: name.Literal, DKind: ast.DeclVariable, Payload: ty})
	scope.Insert(name.Literal, decl)

	init := ast.NilNode
	if p.accept(token.ASSIGN) {
		init = p.parseExpr(lowest)
	}
	p.expect(token.SEMI)
	return p.mod.NewStmt(ast.Stmt{SPos: pos, SKind: ast.SLocal, LocalDecl: decl, Expr: init})
}

func (p *Parser) parseIf(scope *ast.Scope) ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'if'
	p.expect(token.LPAREN)
	cond := p.parseExpr(lowest)
	p.expect(token.RPAREN)
	then := p.parseBlock(ast.NewScope(scope, "then"))
	elseBranch := ast.NilNode
	if p.curIs(token.IDENT) && p.cur.Literal == "else" {
		p.next()
		elseBranch = p.parseBlock(ast.NewScope(scope, "else"))
	}
	return p.mod.NewStmt(ast.Stmt{SPos: pos, SKind: ast.SIf, Expr: cond, Then: then, Else: elseBranch})
}

func (p *Parser) parseReturn(scope *ast.Scope) ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'return'
	expr := ast.NilNode
	if !p.curIs(token.SEMI) {
		expr = p.parseExpr(lowest)
	}
	p.expect(token.SEMI)
	return p.mod.NewStmt(ast.Stmt{SPos: pos, SKind: ast.SReturn, Expr: expr})
}

func (p *Parser) parsePrint(scope *ast.Scope) ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'print'
	var args []ast.NodeID
	if !p.curIs(token.SEMI) {
		args = append(args, p.parseExpr(lowest))
		for p.accept(token.COMMA) {
			args = append(args, p.parseExpr(lowest))
		}
	}
	p.expect(token.SEMI)
	return p.mod.NewStmt(ast.Stmt{SPos: pos, SKind: ast.SPrint, Args: args})
}

// parseExprOrAssignStmt parses `target = expr;` or a bare `expr;`, the
// fallback for any statement not recognized by keyword text above.
func (p *Parser) parseExprOrAssignStmt(scope *ast.Scope) ast.NodeID {
	pos := p.cur.Pos
	expr := p.parseExpr(lowest)
	if p.accept(token.ASSIGN) {
		rhs := p.parseExpr(lowest)
		p.expect(token.SEMI)
		return p.mod.NewStmt(ast.Stmt{SPos: pos, SKind: ast.SAssign, Target: expr, Expr: rhs})
	}
	p.expect(token.SEMI)
	return p.mod.NewStmt(ast.Stmt{SPos: pos, SKind: ast.SExpr, Expr: expr})
}
