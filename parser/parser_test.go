package parser

import (
	"testing"

	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/lexer"
	"github.com/binpacc/binpacc/token"
)

func parseSrc(t *testing.T, src string) (*ast.Module, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag()
	file := token.NewFile("test.pac2", src)
	mod := ast.NewModule("", "test.pac2", file)
	l := lexer.New(file, bag)
	p := New(l, mod, bag)
	return p.ParseModule(), bag
}

func TestParseModuleHeader(t *testing.T) {
	mod, bag := parseSrc(t, "module Foo;")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	if mod.Name != "Foo" {
		t.Errorf("Name = %q, want %q", mod.Name, "Foo")
	}
}

func TestParseImportAndProperty(t *testing.T) {
	mod, bag := parseSrc(t, `module Foo;
import Bar;
%byteorder = 1;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	if len(mod.ImportedIDs) != 1 || mod.ImportedIDs[0] != "Bar" {
		t.Errorf("ImportedIDs = %v, want [Bar]", mod.ImportedIDs)
	}
	if len(mod.Properties) != 1 || mod.Properties[0].Name != "byteorder" {
		t.Errorf("Properties = %v, want one entry named byteorder", mod.Properties)
	}
}

func TestParseConstAndGlobal(t *testing.T) {
	mod, bag := parseSrc(t, `module Foo;
const Answer: uint32 = 42;
global counter: uint32;
export global total: uint64;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	if len(mod.TopLevel) != 3 {
		t.Fatalf("TopLevel = %d decls, want 3", len(mod.TopLevel))
	}
	answer := mod.Decl(mod.TopLevel[0])
	if answer.ID != "Answer" || answer.DKind != ast.DeclConstant {
		t.Errorf("decl 0 = %+v, want Answer/DeclConstant", answer)
	}
	total := mod.Decl(mod.TopLevel[2])
	if !total.Exported {
		t.Errorf("total.Exported = false, want true")
	}
}

func TestParseFunctionDecl(t *testing.T) {
	mod, bag := parseSrc(t, `module Foo;
function add(a: uint32, b: uint32) -> uint32 {
	return a;
}`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	decl := mod.Decl(mod.TopLevel[0])
	if decl.DKind != ast.DeclFunction {
		t.Fatalf("DKind = %s, want function", decl.DKind)
	}
	fn := mod.Func(decl.Payload)
	if len(fn.Params) != 2 {
		t.Errorf("len(Params) = %d, want 2", len(fn.Params))
	}
	if !fn.ResultType.Valid() {
		t.Errorf("ResultType is not set")
	}
	if !fn.Body.Valid() {
		t.Fatalf("Body is not set")
	}
	block := mod.StmtNode(fn.Body)
	if len(block.Stmts) != 1 {
		t.Fatalf("len(Stmts) = %d, want 1", len(block.Stmts))
	}
	ret := mod.StmtNode(block.Stmts[0])
	if ret.SKind != ast.SReturn {
		t.Errorf("SKind = %s, want return", ret.SKind)
	}
}

func TestParseUnitWithFields(t *testing.T) {
	mod, bag := parseSrc(t, `module Foo;
type Header = unit {
	magic: b"PK";
	version: uint8;
	len: uint16;
	payload: bytes &length=self.len;
	items: list<uint8> &until($$ == 0);
};`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	decl := mod.Decl(mod.TopLevel[0])
	if decl.DKind != ast.DeclType {
		t.Fatalf("DKind = %s, want type", decl.DKind)
	}
	unit := mod.TypeNode(decl.Payload)
	if unit.TKind != ast.TUnit {
		t.Fatalf("TKind = %s, want unit", unit.TKind)
	}
	if len(unit.Items) != 5 {
		t.Fatalf("len(Items) = %d, want 5", len(unit.Items))
	}

	magic := mod.Item(unit.Items[0])
	if magic.Form != ast.FieldLiteral {
		t.Errorf("magic.Form = %s, want literal", magic.Form)
	}

	payload := mod.Item(unit.Items[3])
	if payload.Form != ast.FieldTyped {
		t.Errorf("payload.Form = %s, want typed", payload.Form)
	}
	if len(payload.Attrs) != 1 || payload.Attrs[0].Key != "length" {
		t.Errorf("payload.Attrs = %+v, want one &length attribute", payload.Attrs)
	}

	items := mod.Item(unit.Items[4])
	if items.Form != ast.FieldContainer {
		t.Errorf("items.Form = %s, want container", items.Form)
	}
}

func TestParseUnitHooksAndSwitch(t *testing.T) {
	mod, bag := parseSrc(t, `module Foo;
type Msg = unit {
	kind: uint8;
	switch (self.kind) {
	case 1: a: uint8;
	default: b: uint16;
	};
	on %init {
		print self;
	}
};`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	unit := mod.TypeNode(mod.Decl(mod.TopLevel[0]).Payload)
	if len(unit.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(unit.Items))
	}
	sw := mod.Item(unit.Items[1])
	if sw.IKind != ast.ISwitch {
		t.Fatalf("IKind = %s, want switch", sw.IKind)
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("len(Cases) = %d, want 2", len(sw.Cases))
	}
	if len(unit.Hooks) != 1 {
		t.Fatalf("len(Hooks) = %d, want 1", len(unit.Hooks))
	}
	if mod.HookNode(unit.Hooks[0]).HKind != ast.HookUnitInit {
		t.Errorf("HKind = %s, want %%init", mod.HookNode(unit.Hooks[0]).HKind)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	mod, bag := parseSrc(t, `module Foo;
const X: bool = 1 + 2 * 3 == 7 && !False;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	decl := mod.Decl(mod.TopLevel[0])
	top := mod.ExprNode(decl.Payload)
	if top.EKind != ast.EUnresolvedOperator {
		t.Fatalf("EKind = %s, want unresolved-operator", top.EKind)
	}
	// top is the && : left is (1 + 2*3 == 7), right is !false
	left := mod.ExprNode(top.Operands[0])
	if left.OpKind.String() != "==" {
		t.Errorf("left.OpKind = %s, want ==", left.OpKind)
	}
}

func TestParseSyntaxErrorRecoversAndReportsAll(t *testing.T) {
	_, bag := parseSrc(t, `module Foo;
const ;
const Y: uint32 = 1;`)
	if !bag.HasErrors() {
		t.Fatalf("expected at least one syntax error")
	}
}
