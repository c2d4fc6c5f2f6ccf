package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/binpacc/binpacc/token"
)

func TestMarshalJSONLinesOneLinePerDiagnostic(t *testing.T) {
	b := NewBag()
	b.Errorf(ScopeError, token.Position{File: "x.pac2", Line: 3, Column: 5}, "undeclared identifier %q", "foo")
	b.Warnf(AttributeError, token.Position{File: "x.pac2", Line: 7, Column: 1}, "unrecognized attribute %q", "bar")

	var buf bytes.Buffer
	if err := b.MarshalJSONLines(&buf); err != nil {
		t.Fatalf("MarshalJSONLines: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}

	if got := QueryField(lines[0], "severity").String(); got != "error" {
		t.Errorf("line 0 severity = %q, want error", got)
	}
	if got := QueryField(lines[0], "kind").String(); got != "ScopeError" {
		t.Errorf("line 0 kind = %q, want ScopeError", got)
	}
	if got := QueryField(lines[0], "message").String(); got != `undeclared identifier "foo"` {
		t.Errorf("line 0 message = %q", got)
	}
	if got := QueryField(lines[0], "pos.line").Int(); got != 3 {
		t.Errorf("line 0 pos.line = %d, want 3", got)
	}

	if got := QueryField(lines[1], "severity").String(); got != "warning" {
		t.Errorf("line 1 severity = %q, want warning", got)
	}
	if got := QueryField(lines[1], "pos.column").Int(); got != 1 {
		t.Errorf("line 1 pos.column = %d, want 1", got)
	}
}

func TestMarshalJSONLinesEmptyBag(t *testing.T) {
	var buf bytes.Buffer
	if err := NewBag().MarshalJSONLines(&buf); err != nil {
		t.Fatalf("MarshalJSONLines: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for an empty bag, got %q", buf.String())
	}
}
