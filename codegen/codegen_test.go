package codegen

import (
	"context"
	"testing"

	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/compiler"
)

func TestViewExposesUnitItemsAndGrammar(t *testing.T) {
	ctx := compiler.NewContext(compiler.Options{Verify: true})
	mod, bag, err := ctx.Parse(context.Background(), "view.pac2", `module Packet;
type Header = unit {
	magic: b"PK";
	len:   uint16;
};`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	grammars, err := ctx.Finalize(mod, bag)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	view := NewView(mod, grammars)
	if len(view.TopLevel()) != 1 {
		t.Fatalf("TopLevel() = %v, want one declaration", view.TopLevel())
	}

	declID := view.TopLevel()[0]
	items := view.UnitItems(declID)
	if len(items) != 2 {
		t.Fatalf("UnitItems() = %v, want 2 fields", items)
	}

	g := view.Grammar(declID)
	if g == nil {
		t.Fatalf("Grammar(declID) = nil, want the built Header grammar")
	}
	if msg := g.Check(); msg != "" {
		t.Errorf("unexpected grammar ambiguity: %s", msg)
	}
}

func TestViewResolvesExpressionTypeAndBinding(t *testing.T) {
	ctx := compiler.NewContext(compiler.Options{Verify: true})
	mod, bag, err := ctx.Parse(context.Background(), "view.pac2", `module Packet;
const Limit: uint16 = 10;
type Header = unit {
	payload: bytes &length=Limit;
};`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	grammars, err := ctx.Finalize(mod, bag)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	view := NewView(mod, grammars)
	headerDecl := view.TopLevel()[1]
	items := view.UnitItems(headerDecl)
	if len(items) != 1 {
		t.Fatalf("UnitItems() = %v, want 1 field", items)
	}

	item, ok := mod.Node(items[0]).(*ast.UnitItem)
	if !ok {
		t.Fatalf("item node is not a *ast.UnitItem")
	}
	lengthExpr := ast.NilNode
	for _, attr := range item.Attrs {
		if attr.Key == "length" {
			lengthExpr = attr.Value
		}
	}
	if lengthExpr == ast.NilNode {
		t.Fatalf("field has no &length attribute expression")
	}
	if bound := view.Binding(lengthExpr); bound == ast.NilNode {
		t.Errorf("Binding(length-expr) = NilNode, want the Limit declaration")
	}
	if typ := view.ExprType(lengthExpr); typ == nil {
		t.Errorf("ExprType(length-expr) = nil, want uint16")
	}
}
