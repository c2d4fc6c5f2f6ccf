package parser

import (
	"strconv"
	"strings"

	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/token"
)

// builtinAtomic maps a builtin type name's non-width prefix to its TypeKind.
// Integer types are named "uint8".."uint64"/"int8".."int64" and parsed by
// splitting off the trailing width below, rather than being listed here one
// by one.
var builtinAtomic = map[string]ast.TypeKind{
	"void": ast.TVoid, "any": ast.TAny, "bool": ast.TBool, "double": ast.TDouble,
	"string": ast.TString, "bytes": ast.TBytes, "addr": ast.TAddress,
	"net": ast.TNetwork, "port": ast.TPort, "interval": ast.TInterval, "time": ast.TTime,
	"regexp": ast.TRegExp, "sink": ast.TSink, "file": ast.TFile, "caddr": ast.TCAddr,
}

func parseIntegerTypeName(name string) (width int, signed bool, ok bool) {
	switch {
	case strings.HasPrefix(name, "uint"):
		w, err := strconv.Atoi(name[len("uint"):])
		return w, false, err == nil
	case strings.HasPrefix(name, "int"):
		w, err := strconv.Atoi(name[len("int"):])
		return w, true, err == nil
	}
	return 0, false, false
}

// parseType parses one type expression: a builtin atomic name, an integer
// width name, a `list<T>`/`vector<T>`/`set<T>`/`map<K,V>` container, an
// inline `unit { ... }` type, or a bare identifier naming a type declared
// elsewhere (resolved later by the ID resolver).
func (p *Parser) parseType() ast.NodeID {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.UNIT:
		return p.parseUnitType()
	case token.LIST, token.VECTOR, token.SET:
		kind := ast.TList
		switch p.cur.Kind {
		case token.VECTOR:
			kind = ast.TVector
		case token.SET:
			kind = ast.TSet
		}
		p.next()
		p.expect(token.LANGLE)
		elem := p.parseType()
		p.expect(token.RANGLE)
		return p.mod.NewType(ast.Type{TPos: pos, TKind: kind, Elem: elem})
	case token.MAP:
		p.next()
		p.expect(token.LANGLE)
		key := p.parseType()
		p.expect(token.COMMA)
		val := p.parseType()
		p.expect(token.RANGLE)
		return p.mod.NewType(ast.Type{TPos: pos, TKind: ast.TMap, Key: key, Value: val})
	case token.IDENT:
		name := p.cur.Literal
		p.next()
		if kind, ok := builtinAtomic[name]; ok {
			return p.mod.NewType(ast.Type{TPos: pos, TKind: kind})
		}
		if width, signed, ok := parseIntegerTypeName(name); ok {
			return p.mod.NewType(ast.Type{TPos: pos, TKind: ast.TInteger, Width: width, Signed: signed})
		}
		return p.mod.NewType(ast.Type{TPos: pos, TKind: ast.TByName, RefName: name, Resolved: ast.NilNode})
	default:
		p.errorf(pos, "expected a type, found %s %q", p.cur.Kind, p.cur.Literal)
		return p.mod.UnknownType()
	}
}

// parseUnitType parses `unit (params) { item... }`. The enclosing `type Foo
// = ` has already been consumed by the caller when this is a named unit
// type; parseType is also reachable for an anonymous inline unit type used
// directly as a field's declared type.
func (p *Parser) parseUnitType() ast.NodeID {
	pos := p.cur.Pos
	p.next() // 'unit'

	var params []ast.NodeID
	if p.accept(token.LPAREN) {
		params = p.parseParamList()
		p.expect(token.RPAREN)
	}

	unitID := p.mod.NewType(ast.Type{TPos: pos, TKind: ast.TUnit, UnitParams: params})
	unit := p.mod.TypeNode(unitID)
	unit.UScope = ast.NewScope(p.mod.Root, "unit")
	for _, param := range params {
		if d := p.mod.Decl(param); d != nil {
			unit.UScope.Insert(d.ID, param)
		}
	}

	p.expect(token.LBRACE)
	p.parseUnitBody(unitID)
	p.expect(token.RBRACE)
	return unitID
}

func (p *Parser) parseParamList() []ast.NodeID {
	var params []ast.NodeID
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		pos := p.cur.Pos
		name, ok := p.expect(token.IDENT)
		if !ok {
			break
		}
		p.expect(token.COLON)
		ty := p.parseType()
		decl := p.mod.NewDeclaration(ast.Declaration{DPos: pos, ID: name.Literal, DKind: ast.DeclVariable, Payload: ty})
		params = append(params, decl)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return params
}
