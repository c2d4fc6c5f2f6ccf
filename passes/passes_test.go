package passes

import (
	"testing"

	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/lexer"
	"github.com/binpacc/binpacc/operator"
	"github.com/binpacc/binpacc/parser"
	"github.com/binpacc/binpacc/token"
)

func parseAndResolve(t *testing.T, src string) (*ast.Module, *diag.Bag) {
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
	ScopeBuilder(mod, func(string) *ast.Module { return nil }, bag)
	for i := 0; i < 6; i++ {
		IDResolver(mod, bag)
		UnitScopeBuilder(mod)
		Normalizer(mod)
		OperatorResolver(mod, reg, bag)
	}
	OverloadResolver(mod, reg, bag)
	Validator(mod, reg, bag)
	return mod, bag
}

func TestIDResolverBindsConstantToTopLevelDecl(t *testing.T) {
	mod, bag := parseAndResolve(t, `module Foo;
const Answer: uint32 = 42;
const Other: uint32 = Answer;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	other := mod.Decl(mod.TopLevel[1])
	val := mod.ExprNode(other.Payload)
	if val.EKind != ast.EVariable {
		t.Fatalf("EKind = %s, want variable", val.EKind)
	}
	if val.Resolved != mod.TopLevel[0] {
		t.Errorf("Resolved = %v, want %v", val.Resolved, mod.TopLevel[0])
	}
}

func TestIDResolverReportsUndeclaredIdentifier(t *testing.T) {
	_, bag := parseAndResolve(t, `module Foo;
const Other: uint32 = Nope;`)
	if !bag.HasErrors() {
		t.Fatalf("expected an undeclared-identifier error")
	}
}

func TestOperatorResolverInfersArithmeticResultType(t *testing.T) {
	mod, bag := parseAndResolve(t, `module Foo;
const A: uint32 = 1 + 2;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	a := mod.Decl(mod.TopLevel[0])
	expr := mod.ExprNode(a.Payload)
	if expr.EKind != ast.EResolvedOperator {
		t.Fatalf("EKind = %s, want resolved-operator", expr.EKind)
	}
	resultType := mod.TypeNode(expr.Type)
	if resultType.TKind != ast.TInteger {
		t.Fatalf("result TKind = %s, want integer", resultType.TKind)
	}
}

func TestAttributeAccessResolvesAgainstUnitField(t *testing.T) {
	mod, bag := parseAndResolve(t, `module Foo;
type Header = unit {
	len: uint16;
	payload: bytes &length=self.len;
};`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	unit := mod.TypeNode(mod.Decl(mod.TopLevel[0]).Payload)
	payload := mod.Item(unit.Items[1])
	lengthAttr := payload.Attrs[0]
	lengthExpr := mod.ExprNode(lengthAttr.Value)
	if lengthExpr.EKind != ast.EResolvedOperator {
		t.Fatalf("EKind = %s, want resolved-operator", lengthExpr.EKind)
	}
	lenType := mod.TypeNode(lengthExpr.Type)
	if lenType.TKind != ast.TInteger || lenType.Width != 16 {
		t.Errorf("length expr type = %+v, want uint16", lenType)
	}
}

func TestNormalizerInfersLiteralFieldTypeAndImplicitAttrs(t *testing.T) {
	mod, bag := parseAndResolve(t, `module Foo;
type Header = unit {
	magic: b"PK";
};`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	unit := mod.TypeNode(mod.Decl(mod.TopLevel[0]).Payload)
	magic := mod.Item(unit.Items[0])
	if !magic.FieldType.Valid() {
		t.Fatalf("magic.FieldType was not inferred")
	}
	ft := mod.TypeNode(magic.FieldType)
	if ft.TKind != ast.TBytes {
		t.Errorf("magic field TKind = %s, want bytes", ft.TKind)
	}
	if !hasAttr(magic.Attrs, "chunked") {
		t.Errorf("expected implicit &chunked attribute to be synthesized")
	}
}

func TestValidatorRejectsUnknownAttribute(t *testing.T) {
	_, bag := parseAndResolve(t, `module Foo;
type Header = unit {
	x: uint8 &bogus=1;
};`)
	if !bag.HasErrors() {
		t.Fatalf("expected an attribute error for &bogus")
	}
}

func TestUnitScopeBuilderLinksEmbeddedUnitFields(t *testing.T) {
	mod, bag := parseAndResolve(t, `module Foo;
type Inner = unit {
	a: uint8;
};
type Outer = unit {
	inner: Inner;
	b: uint8 &default=self.inner.a;
};`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	outer := mod.TypeNode(mod.Decl(mod.TopLevel[1]).Payload)
	if _, ok := outer.UScope.Child("inner"); !ok {
		t.Fatalf("outer.UScope has no child scope named %q", "inner")
	}
	b := mod.Item(outer.Items[1])
	defaultExpr := mod.ExprNode(b.Attrs[0].Value)
	if defaultExpr.EKind != ast.EResolvedOperator {
		t.Fatalf("self.inner.a EKind = %s, want resolved-operator", defaultExpr.EKind)
	}
}

func TestOverloadResolverChecksArity(t *testing.T) {
	_, bag := parseAndResolve(t, `module Foo;
function add(a: uint32, b: uint32) -> uint32 {
	return a;
}
const X: uint32 = add(1);`)
	if !bag.HasErrors() {
		t.Fatalf("expected an arity-mismatch error")
	}
}
