// Package parser implements a recursive-descent parser over the token
// stream package lexer produces, building an ast.Module. Expressions are
// parsed with a small Pratt parser (prefix/infix function tables keyed by
// token.Kind); everything else — declarations, types, unit bodies,
// statements — is plain recursive descent, each concern split into its own
// file the way the grammar itself is structured.
package parser

import (
	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/lexer"
	"github.com/binpacc/binpacc/token"
)

// Precedence levels for binary expression operators, lowest to highest.
const (
	_ int = iota
	lowest
	orPrec
	andPrec
	equalsPrec
	relationalPrec
	sumPrec
	productPrec
	prefixPrec
	callPrec
)

var precedences = map[token.Kind]int{
	token.OR:      orPrec,
	token.AND:     andPrec,
	token.EQ:      equalsPrec,
	token.NE:      equalsPrec,
	token.LANGLE:  relationalPrec,
	token.RANGLE:  relationalPrec,
	token.LE:      relationalPrec,
	token.GE:      relationalPrec,
	token.PLUS:    sumPrec,
	token.MINUS:   sumPrec,
	token.STAR:    productPrec,
	token.SLASH:   productPrec,
	token.PERCENT: productPrec,
	token.LPAREN:  callPrec,
	token.LBRACK:  callPrec,
	token.DOT:     callPrec,
	token.COLONCOLON: callPrec,
}

// Parser consumes a lexer's token stream one token of lookahead at a time
// (cur, peek) and builds nodes directly into the target ast.Module.
type Parser struct {
	l   *lexer.Lexer
	bag *diag.Bag
	mod *ast.Module

	cur  token.Token
	peek token.Token
}

// New creates a Parser that will populate mod as it consumes l's tokens,
// reporting malformed input to bag.
func New(l *lexer.Lexer, mod *ast.Module, bag *diag.Bag) *Parser {
	p := &Parser{l: l, mod: mod, bag: bag}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.Next()
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

// expect consumes the current token if it has kind k, reporting a
// SyntaxError and leaving the cursor unchanged otherwise.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.cur.Kind != k {
		p.errorf(p.cur.Pos, "expected %s, found %s %q", k, p.cur.Kind, p.cur.Literal)
		return token.Token{}, false
	}
	tok := p.cur
	p.next()
	return tok, true
}

func (p *Parser) accept(k token.Kind) bool {
	if p.cur.Kind == k {
		p.next()
		return true
	}
	return false
}

func (p *Parser) errorf(pos token.Pos, format string, args ...interface{}) {
	p.bag.Errorf(diag.SyntaxError, p.mod.Position(pos), format, args...)
}

// synchronize skips tokens until a statement/declaration boundary, for
// panic-mode recovery after a syntax error so one bad token does not
// suppress every diagnostic in the rest of the file.
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMI) {
			p.next()
			return
		}
		switch p.cur.Kind {
		case token.TYPE, token.CONST, token.GLOBAL, token.FUNCTION, token.IMPORT, token.EXPORT, token.RBRACE:
			return
		}
		p.next()
	}
}

// ParseModule parses one complete source file into p.mod and returns it.
// Errors are reported via the Parser's bag; the returned module may be
// partial if errors occurred, and is not meant to be further processed
// unless bag.HasErrors() is false.
func (p *Parser) ParseModule() *ast.Module {
	if _, ok := p.expect(token.MODULE); ok {
		if name, ok := p.expect(token.IDENT); ok {
			p.mod.Name = name.Literal
		}
		p.expect(token.SEMI)
	}

	for !p.curIs(token.EOF) {
		switch p.cur.Kind {
		case token.IMPORT:
			p.parseImport()
		case token.PERCENT:
			p.parseProperty()
		case token.EXPORT:
			p.next()
			p.parseTopLevelDecl(true)
		default:
			p.parseTopLevelDecl(false)
		}
	}
	return p.mod
}

// ParseStandaloneExpr parses one expression and expects end-of-input
// immediately after it, for callers that want to evaluate a single
// `&length=...`-style attribute expression without a surrounding module
// (compiler.Context.ParseExpression).
func (p *Parser) ParseStandaloneExpr() ast.NodeID {
	expr := p.parseExpr(lowest)
	if !p.curIs(token.EOF) {
		p.errorf(p.cur.Pos, "unexpected %s %q after expression", p.cur.Kind, p.cur.Literal)
	}
	return expr
}

func (p *Parser) parseImport() {
	p.next() // 'import'
	if name, ok := p.expect(token.IDENT); ok {
		p.mod.ImportedIDs = append(p.mod.ImportedIDs, name.Literal)
	}
	p.expect(token.SEMI)
}

func (p *Parser) parseProperty() {
	pos := p.cur.Pos
	p.next() // '%'
	name, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return
	}
	p.expect(token.ASSIGN)
	val := p.parseExpr(lowest)
	p.expect(token.SEMI)
	p.mod.Properties = append(p.mod.Properties, ast.PropertyDecl{Pos: pos, Name: name.Literal, Value: val})
}

func (p *Parser) parseTopLevelDecl(exported bool) {
	var id ast.NodeID
	switch p.cur.Kind {
	case token.TYPE:
		id = p.parseTypeDecl(exported)
	case token.CONST:
		id = p.parseConstDecl(exported)
	case token.GLOBAL:
		id = p.parseGlobalDecl(exported)
	case token.FUNCTION:
		id = p.parseFunctionDecl(exported)
	default:
		p.errorf(p.cur.Pos, "expected a declaration, found %s %q", p.cur.Kind, p.cur.Literal)
		p.synchronize()
		return
	}
	if id.Valid() {
		p.mod.TopLevel = append(p.mod.TopLevel, id)
		if d := p.mod.Decl(id); d != nil {
			if !p.mod.Root.Insert(d.ID, id) {
				p.errorf(d.DPos, "%q is already declared in this module", d.ID)
			}
			if exported {
				p.mod.Exported[d.ID] = true
			}
		}
	}
}
