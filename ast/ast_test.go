package ast

import (
	"strings"
	"testing"

	"github.com/binpacc/binpacc/token"
)

func TestModuleArena(t *testing.T) {
	m := NewModule("Test", "test.pac2", token.NewFile("test.pac2", "module Test;"))

	intType := add(m, &Type{TKind: TInteger, Width: 32, Signed: true})
	decl := add(m, &Declaration{ID: "x", DKind: DeclVariable, Payload: intType})
	m.TopLevel = append(m.TopLevel, decl)

	if m.NodeCount() != 2 {
		t.Fatalf("NodeCount() = %d, want 2", m.NodeCount())
	}
	got, ok := m.Node(decl).(*Declaration)
	if !ok {
		t.Fatalf("Node(decl) did not return *Declaration, got %T", m.Node(decl))
	}
	if got.ID != "x" {
		t.Errorf("ID = %q, want %q", got.ID, "x")
	}
	if m.Node(NilNode) != nil {
		t.Errorf("Node(NilNode) = %v, want nil", m.Node(NilNode))
	}
}

func TestModuleUnknownTypeIsSingleton(t *testing.T) {
	m := NewModule("Test", "test.pac2", nil)
	a := m.UnknownType()
	b := m.UnknownType()
	if a != b {
		t.Errorf("UnknownType() returned distinct NodeIDs %v and %v, want the same singleton", a, b)
	}
	if ty, ok := m.Node(a).(*Type); !ok || ty.TKind != TUnknown {
		t.Errorf("UnknownType() node = %#v, want a *Type with TKind=TUnknown", m.Node(a))
	}
}

func TestScopeInsertAndLookup(t *testing.T) {
	parent := NewScope(nil, "module")
	child := NewScope(parent, "block")

	if !parent.Insert("x", NodeID(1)) {
		t.Fatalf("Insert(x) in parent failed unexpectedly")
	}
	if parent.Insert("x", NodeID(2)) {
		t.Errorf("second Insert(x) in parent should fail (duplicate), got success")
	}

	if _, ok := child.Lookup("x"); ok {
		t.Errorf("child.Lookup(x) found a binding, want not found (Lookup does not walk Parent)")
	}
	got, ok := child.LookupChain("x")
	if !ok || got != NodeID(1) {
		t.Errorf("child.LookupChain(x) = (%v, %v), want (1, true)", got, ok)
	}

	if !child.Insert("x", NodeID(3)) {
		t.Fatalf("Insert(x) in child failed unexpectedly (shadowing parent's x should be allowed)")
	}
	got, _ = child.LookupChain("x")
	if got != NodeID(3) {
		t.Errorf("child.LookupChain(x) after shadow = %v, want 3", got)
	}
}

func TestScopeNamesPreservesInsertionOrder(t *testing.T) {
	s := NewScope(nil, "module")
	for _, id := range []string{"c", "a", "b"} {
		s.Insert(id, NodeID(0))
	}
	want := []string{"c", "a", "b"}
	got := s.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScopeChildren(t *testing.T) {
	mod := NewScope(nil, "M")
	imported := NewScope(nil, "Imported")
	mod.AddChild("Imported", imported)

	got, ok := mod.Child("Imported")
	if !ok || got != imported {
		t.Errorf("Child(Imported) = (%v, %v), want the imported scope", got, ok)
	}
	if _, ok := mod.Child("Nope"); ok {
		t.Errorf("Child(Nope) found a scope, want not found")
	}
}

func TestAttributeSchema(t *testing.T) {
	tests := []struct {
		kind     TypeKind
		key      string
		wantOK   bool
		implicit bool
	}{
		{TBytes, "length", true, false},
		{TBytes, "chunked", true, true},
		{TBytes, "nope", false, false},
		{TList, "count", true, false},
		{TRegExp, "nosub", true, true},
		{TUnit, "length", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.key, func(t *testing.T) {
			entry, ok := AttributeSchemaLookup(tt.kind, tt.key)
			if ok != tt.wantOK {
				t.Fatalf("AttributeSchemaLookup(%s, %q) ok = %v, want %v", tt.kind, tt.key, ok, tt.wantOK)
			}
			if ok && entry.Implicit != tt.implicit {
				t.Errorf("Implicit = %v, want %v", entry.Implicit, tt.implicit)
			}
		})
	}
}

func TestModuleDump(t *testing.T) {
	m := NewModule("Test", "test.pac2", nil)
	intType := add(m, &Type{TKind: TInteger, Width: 8})
	decl := add(m, &Declaration{ID: "x", DKind: DeclVariable, Payload: intType})
	m.TopLevel = append(m.TopLevel, decl)

	var buf strings.Builder
	m.Dump(&buf)
	out := buf.String()
	if !strings.Contains(out, "module Test") {
		t.Errorf("Dump() = %q, want it to mention the module name", out)
	}
	if !strings.Contains(out, "decl variable x") {
		t.Errorf("Dump() = %q, want it to describe the declaration", out)
	}
}
