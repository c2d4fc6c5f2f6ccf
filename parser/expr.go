package parser

import (
	"strconv"

	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/operator"
	"github.com/binpacc/binpacc/token"
)

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Kind]; ok {
		return pr
	}
	return lowest
}

// parseExpr is the Pratt-parser entry point: parse a prefix expression,
// then keep folding in infix/postfix operators of precedence > minPrec.
func (p *Parser) parseExpr(minPrec int) ast.NodeID {
	left := p.parsePrefix()
	for minPrec < precedences[p.cur.Kind] {
		switch p.cur.Kind {
		case token.LPAREN:
			left = p.parseCall(left)
		case token.LBRACK:
			left = p.parseIndex(left)
		case token.DOT:
			left = p.parseAttribute(left)
		case token.COLONCOLON:
			left = p.parseModuleQualified(left)
		default:
			opTok := p.cur
			prec := precedences[opTok.Kind]
			p.next()
			right := p.parseExpr(prec)
			left = p.mod.NewExpr(ast.Expr{
				XPos: opTok.Pos, EKind: ast.EUnresolvedOperator, Type: p.mod.UnknownType(),
				OpKind: binaryOpKind(opTok.Kind), Operands: []ast.NodeID{left, right},
			})
		}
	}
	return left
}

func binaryOpKind(k token.Kind) operator.Kind {
	switch k {
	case token.PLUS:
		return operator.Plus
	case token.MINUS:
		return operator.Minus
	case token.STAR:
		return operator.Mult
	case token.SLASH:
		return operator.Div
	case token.PERCENT:
		return operator.Mod
	case token.EQ:
		return operator.Equal
	case token.NE:
		return operator.NotEqual
	case token.LANGLE:
		return operator.Less
	case token.RANGLE:
		return operator.Greater
	case token.LE:
		return operator.LessEqual
	case token.GE:
		return operator.GreaterEqual
	case token.AND:
		return operator.LogicalAnd
	case token.OR:
		return operator.LogicalOr
	default:
		return operator.Plus // unreachable given the precedence table's keys
	}
}

func (p *Parser) parsePrefix() ast.NodeID {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.INT:
		lit := p.cur.Literal
		p.next()
		v, _ := strconv.ParseInt(lit, 0, 64)
		return p.mod.NewExpr(ast.Expr{XPos: pos, EKind: ast.EConstant, Type: p.mod.UnknownType(), ConstValue: v})
	case token.FLOAT:
		lit := p.cur.Literal
		p.next()
		v, _ := strconv.ParseFloat(lit, 64)
		return p.mod.NewExpr(ast.Expr{XPos: pos, EKind: ast.EConstant, Type: p.mod.UnknownType(), ConstValue: v})
	case token.STRING:
		lit := p.cur.Literal
		p.next()
		return p.mod.NewExpr(ast.Expr{XPos: pos, EKind: ast.EConstant, Type: p.mod.UnknownType(), ConstValue: lit})
	case token.BYTES:
		lit := p.cur.Literal
		p.next()
		return p.mod.NewExpr(ast.Expr{XPos: pos, EKind: ast.EConstant, Type: p.mod.UnknownType(), ConstValue: []byte(lit)})
	case token.REGEXP:
		lit := p.cur.Literal
		p.next()
		return p.mod.NewExpr(ast.Expr{XPos: pos, EKind: ast.ECtor, Type: p.mod.UnknownType(), ConstValue: lit})
	case token.SELF:
		p.next()
		return p.mod.NewExpr(ast.Expr{XPos: pos, EKind: ast.EParserState, Type: p.mod.UnknownType(), PSKind: ast.PSSelf})
	case token.TRUE, token.FALSE:
		v := p.cur.Kind == token.TRUE
		p.next()
		return p.mod.NewExpr(ast.Expr{XPos: pos, EKind: ast.EConstant, Type: p.mod.UnknownType(), ConstValue: v})
	case token.DOLLARDOLLAR:
		p.next()
		return p.mod.NewExpr(ast.Expr{XPos: pos, EKind: ast.EParserState, Type: p.mod.UnknownType(), PSKind: ast.PSDollarDollar})
	case token.IDENT:
		name := p.cur.Literal
		p.next()
		return p.mod.NewExpr(ast.Expr{XPos: pos, EKind: ast.EID, Type: p.mod.UnknownType(), Name: name, Resolved: ast.NilNode})
	case token.LPAREN:
		p.next()
		inner := p.parseExpr(lowest)
		p.expect(token.RPAREN)
		return inner
	case token.LBRACK:
		return p.parseListLiteral()
	case token.MINUS:
		p.next()
		operand := p.parseExpr(prefixPrec)
		return p.mod.NewExpr(ast.Expr{
			XPos: pos, EKind: ast.EUnresolvedOperator, Type: p.mod.UnknownType(),
			OpKind: operator.Negate, Operands: []ast.NodeID{operand},
		})
	case token.NOT:
		p.next()
		operand := p.parseExpr(prefixPrec)
		return p.mod.NewExpr(ast.Expr{
			XPos: pos, EKind: ast.EUnresolvedOperator, Type: p.mod.UnknownType(),
			OpKind: operator.LogicalNot, Operands: []ast.NodeID{operand},
		})
	default:
		p.errorf(pos, "expected an expression, found %s %q", p.cur.Kind, p.cur.Literal)
		p.next()
		return p.mod.NewExpr(ast.Expr{XPos: pos, EKind: ast.EConstant, Type: p.mod.UnknownType()})
	}
}

func (p *Parser) parseListLiteral() ast.NodeID {
	pos := p.cur.Pos
	p.next() // '['
	var items []ast.NodeID
	for !p.curIs(token.RBRACK) && !p.curIs(token.EOF) {
		items = append(items, p.parseExpr(lowest))
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACK)
	return p.mod.NewExpr(ast.Expr{XPos: pos, EKind: ast.EList, Type: p.mod.UnknownType(), Items: items})
}

func (p *Parser) parseCall(callee ast.NodeID) ast.NodeID {
	pos := p.cur.Pos
	p.next() // '('
	var args []ast.NodeID
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		args = append(args, p.parseExpr(lowest))
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	operands := append([]ast.NodeID{callee}, args...)
	return p.mod.NewExpr(ast.Expr{
		XPos: pos, EKind: ast.EUnresolvedOperator, Type: p.mod.UnknownType(),
		OpKind: operator.Call, Operands: operands,
	})
}

func (p *Parser) parseIndex(receiver ast.NodeID) ast.NodeID {
	pos := p.cur.Pos
	p.next() // '['
	index := p.parseExpr(lowest)
	p.expect(token.RBRACK)
	return p.mod.NewExpr(ast.Expr{
		XPos: pos, EKind: ast.EUnresolvedOperator, Type: p.mod.UnknownType(),
		OpKind: operator.Index, Operands: []ast.NodeID{receiver, index},
	})
}

func (p *Parser) parseAttribute(receiver ast.NodeID) ast.NodeID {
	pos := p.cur.Pos
	p.next() // '.'
	name, ok := p.expect(token.IDENT)
	if !ok {
		return receiver
	}
	member := p.mod.NewExpr(ast.Expr{XPos: name.Pos, EKind: ast.EID, Type: p.mod.UnknownType(), Name: name.Literal})
	return p.mod.NewExpr(ast.Expr{
		XPos: pos, EKind: ast.EUnresolvedOperator, Type: p.mod.UnknownType(),
		OpKind: operator.Attribute, Operands: []ast.NodeID{receiver, member},
	})
}

// parseModuleQualified handles `modname::id`, left-associated the same way
// attribute access is: the module-qualified form differs from `.` only in
// how the ID resolver looks the name up (an imported module's exported
// scope, rather than a unit's field scope).
func (p *Parser) parseModuleQualified(left ast.NodeID) ast.NodeID {
	pos := p.cur.Pos
	p.next() // '::'
	name, ok := p.expect(token.IDENT)
	if !ok {
		return left
	}
	member := p.mod.NewExpr(ast.Expr{XPos: name.Pos, EKind: ast.EID, Type: p.mod.UnknownType(), Name: name.Literal})
	return p.mod.NewExpr(ast.Expr{
		XPos: pos, EKind: ast.EUnresolvedOperator, Type: p.mod.UnknownType(),
		OpKind: operator.Attribute, Operands: []ast.NodeID{left, member},
	})
}
