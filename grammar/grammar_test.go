package grammar

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/lexer"
	"github.com/binpacc/binpacc/operator"
	"github.com/binpacc/binpacc/parser"
	"github.com/binpacc/binpacc/passes"
	"github.com/binpacc/binpacc/token"
)

func TestSequenceOfThreeLiterals(t *testing.T) {
	a := NewLiteral("a", ast.NilNode)
	b := NewLiteral("b", ast.NilNode)
	c := NewLiteral("c", ast.NilNode)
	root := NewSequence("S", a, b, c)

	g := New("three-literals", root)
	if err := g.Check(); err != "" {
		t.Fatalf("unexpected grammar error: %s", err)
	}
	if got := g.First("S").sorted(); len(got) != 1 || got[0] != "a" {
		t.Errorf("FIRST(S) = %v, want [a]", got)
	}
	if got := g.Follow("S").sorted(); len(got) != 1 || got[0] != endOfInput {
		t.Errorf("FOLLOW(S) = %v, want [%s]", got, endOfInput)
	}
}

// TestAmbiguousABAGrammar reproduces the classic left-factoring trap from
// "Parsing Techniques" (Grune & Jacobs, the td-parse.html worked example):
// S -> ABA | cC, with A, B, C, D themselves nullable-or-not alternatives
// built so that two of them admit the same lookahead token once FOLLOW
// sets are taken into account.
func TestAmbiguousABAGrammar(t *testing.T) {
	a := NewLiteral("a", ast.NilNode)
	b := NewLiteral("b", ast.NilNode)
	c := NewLiteral("c", ast.NilNode)

	A := NewLookAhead("A", NewEpsilon(), a)
	aA := NewSequence("aA", a, A)
	D := NewLookAhead("D", aA, c)
	bD := NewSequence("bD", b, D)
	B := NewLookAhead("B", NewEpsilon(), bD)
	AD := NewSequence("AD", A, D)
	C := NewLookAhead("C", AD, b)
	cC := NewSequence("cC", c, C)
	ABA := NewSequence("ABA", A, B, A)
	S := NewLookAhead("S", ABA, cC)

	g := New("aba", S)
	if err := g.Check(); err == "" {
		t.Fatalf("expected an ambiguity error, got none")
	}
}

// TestNestedSessionGrammar mirrors a small recursive-descent-friendly
// grammar: a Session is either a flat run of Facts followed by a Question,
// or a parenthesized pair of nested Sessions. It is LL(1).
func TestNestedSessionGrammar(t *testing.T) {
	hs := NewLiteral("hs", ast.NilNode)
	pl := NewLiteral("pl", ast.NilNode)
	pr := NewLiteral("pr", ast.NilNode)
	no := NewLiteral("no", ast.NilNode)
	qu := NewLiteral("qu", ast.NilNode)
	st := NewVariable("st", ast.NilNode)

	fact := NewSequence("Fact", no, st)
	question := NewSequence("Question", qu, st)
	session := NewLookAhead("Session", nil, nil)
	parenPair := NewSequence("SS", pl, session, pr, session)
	facts := NewLookAhead("Facts", nil, nil)
	factsQuestion := NewSequence("FsQ", facts, question)
	factThenFacts := NewSequence("FFs", fact, facts)

	session.SetAlternatives(factsQuestion, parenPair)
	facts.SetAlternatives(factThenFacts, NewEpsilon())

	root := NewSequence("Start", session, hs)

	g := New("nested-sessions", root)
	if err := g.Check(); err != "" {
		t.Fatalf("unexpected grammar error: %s", err)
	}
	first := g.First("Session").sorted()
	if len(first) != 3 || first[0] != "no" || first[1] != "pl" || first[2] != "qu" {
		t.Errorf("FIRST(Session) = %v, want [no pl qu]", first)
	}
	follow := g.Follow("Session").sorted()
	if len(follow) != 2 || follow[0] != "hs" || follow[1] != "pr" {
		t.Errorf("FOLLOW(Session) = %v, want [hs pr]", follow)
	}
}

// TestHeaderListFollowedByTrailerIsAmbiguous demonstrates the canonical
// pitfall behind "HTTP-like header list" grammars: a `List -> Header List
// | ε` repetition immediately followed, in its own enclosing sequence, by
// one more field of the same shape. Seeing another header-looking token
// never tells the parser whether to loop again or fall through to the
// trailing field, so List's own epsilon alternative and its Header
// alternative collide through FOLLOW.
func TestHeaderListFollowedByTrailerIsAmbiguous(t *testing.T) {
	hdrKey := NewVariable("HdrKey", ast.NilNode)
	colon := NewLiteral("colon", ast.NilNode)
	hdrVal := NewVariable("HdrVal", ast.NilNode)
	nl := NewLiteral("nl", ast.NilNode)
	header := NewSequence("Header", hdrKey, colon, hdrVal, nl)

	list := NewLookAhead("List2", nil, NewEpsilon())
	list1 := NewSequence("List1", header, list)
	list.SetAlternatives(list1, list.Alt2)

	trailer := NewVariable("HdrKey", ast.NilNode) // same terminal category as a header's own key
	body := NewSequence("Body", list, trailer)

	g := New("header-list", body)
	if err := g.Check(); err == "" {
		t.Fatalf("expected an ambiguity error between List2's alternatives")
	}
}

func parseResolvedModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	bag := diag.NewBag()
	file := token.NewFile("test.pac2", src)
	mod := ast.NewModule("", "test.pac2", file)
	l := lexer.New(file, bag)
	p := parser.New(l, mod, bag)
	mod = p.ParseModule()
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Diagnostics())
	}

	reg := operator.NewRegistry()
	passes.ScopeBuilder(mod, func(string) *ast.Module { return nil }, bag)
	for i := 0; i < 6; i++ {
		passes.IDResolver(mod, bag)
		passes.UnitScopeBuilder(mod)
		passes.Normalizer(mod)
		passes.OperatorResolver(mod, reg, bag)
	}
	passes.OverloadResolver(mod, reg, bag)
	passes.Validator(mod, reg, bag)
	if bag.HasErrors() {
		t.Fatalf("resolution errors: %v", bag.Diagnostics())
	}
	return mod
}

func TestBuildUnitDerivesSequenceOfFields(t *testing.T) {
	mod := parseResolvedModule(t, `module Foo;
type Header = unit {
	magic: b"PK";
	len:   uint16;
	payload: bytes &length=self.len;
};`)

	unitID := mod.Decl(mod.TopLevel[0]).Payload
	g, err := BuildUnit(mod, "Header", unitID)
	if err != nil {
		t.Fatalf("BuildUnit: %v", err)
	}
	if errStr := g.Check(); errStr != "" {
		t.Fatalf("unexpected grammar error: %s", errStr)
	}
	if g.Root.Kind != Sequence || len(g.Root.Elements) != 3 {
		t.Fatalf("root = %+v, want a 3-element sequence", g.Root)
	}
	if g.Root.Elements[0].Kind != Literal {
		t.Errorf("magic production kind = %s, want literal", g.Root.Elements[0].Kind)
	}
	if g.Root.Elements[1].Kind != Variable {
		t.Errorf("len production kind = %s, want variable", g.Root.Elements[1].Kind)
	}
}

func TestBuildUnitEmbedsNestedUnitAsChildGrammar(t *testing.T) {
	mod := parseResolvedModule(t, `module Foo;
type Inner = unit {
	a: uint8;
};
type Outer = unit {
	inner: Inner;
};`)

	unitID := mod.Decl(mod.TopLevel[1]).Payload
	g, err := BuildUnit(mod, "Outer", unitID)
	if err != nil {
		t.Fatalf("BuildUnit: %v", err)
	}
	if len(g.Root.Elements) != 1 || g.Root.Elements[0].Kind != ChildGrammar {
		t.Fatalf("root elements = %+v, want one ChildGrammar", g.Root.Elements)
	}
	if g.Root.Elements[0].Child == nil {
		t.Fatalf("embedded unit's child grammar was not built")
	}
}

func TestBuildUnitContainerIsRecursiveLookAhead(t *testing.T) {
	mod := parseResolvedModule(t, `module Foo;
type Entries = unit {
	items: list<uint8>;
};`)

	unitID := mod.Decl(mod.TopLevel[0]).Payload
	g, err := BuildUnit(mod, "Entries", unitID)
	if err != nil {
		t.Fatalf("BuildUnit: %v", err)
	}
	container := g.Root.Elements[0]
	if container.Kind != LookAhead {
		t.Fatalf("container production kind = %s, want lookahead", container.Kind)
	}
	if container.Alt2.Kind != Epsilon {
		t.Errorf("container's second alternative = %s, want epsilon", container.Alt2.Kind)
	}
	if container.Alt1.Kind != Sequence || len(container.Alt1.Elements) != 2 {
		t.Fatalf("container's first alternative = %+v, want a 2-element sequence", container.Alt1)
	}
	if container.Alt1.Elements[1] != container {
		t.Errorf("container's sequence does not recurse back into the lookahead node")
	}
}

func TestPrintTablesSnapshot(t *testing.T) {
	a := NewLiteral("a", ast.NilNode)
	b := NewLiteral("b", ast.NilNode)
	c := NewLiteral("c", ast.NilNode)
	root := NewSequence("S", a, b, c)
	g := New("three-literals", root)

	var buf bytes.Buffer
	g.PrintTables(&buf, true)
	snaps.MatchSnapshot(t, buf.String())
}
