package lexer

import (
	"testing"

	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag()
	l := New(token.NewFile("test.pac2", src), bag)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexerKeywordsAndPunctuation(t *testing.T) {
	toks, bag := scanAll(t, "module Foo; import bar; type T = unit { x: uint8; };")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	want := []token.Kind{
		token.MODULE, token.IDENT, token.SEMI,
		token.IMPORT, token.IDENT, token.SEMI,
		token.TYPE, token.IDENT, token.ASSIGN, token.UNIT, token.LBRACE,
		token.IDENT, token.COLON, token.IDENT, token.SEMI,
		token.RBRACE, token.SEMI,
		token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: kind = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		src  string
		kind token.Kind
	}{
		{"0", token.INT},
		{"42", token.INT},
		{"0x1f", token.INT},
		{"1.5", token.FLOAT},
		{"1e10", token.FLOAT},
		{"1.5e-3", token.FLOAT},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, bag := scanAll(t, tt.src)
			if bag.HasErrors() {
				t.Fatalf("unexpected errors: %v", bag.Diagnostics())
			}
			if toks[0].Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", toks[0].Kind, tt.kind)
			}
			if toks[0].Literal != tt.src {
				t.Errorf("Literal = %q, want %q", toks[0].Literal, tt.src)
			}
		})
	}
}

func TestLexerStringAndBytesLiterals(t *testing.T) {
	toks, bag := scanAll(t, `"hello\nworld" b"raw"`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	if toks[0].Kind != token.STRING || toks[0].Literal != "hello\nworld" {
		t.Errorf("token 0 = %+v, want STRING %q", toks[0], "hello\nworld")
	}
	if toks[1].Kind != token.BYTES || toks[1].Literal != "raw" {
		t.Errorf("token 1 = %+v, want BYTES %q", toks[1], "raw")
	}
}

func TestLexerRegexpLiteral(t *testing.T) {
	toks, bag := scanAll(t, `/[a-z]+\//`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	if toks[0].Kind != token.REGEXP {
		t.Fatalf("Kind = %s, want REGEXP", toks[0].Kind)
	}
	if toks[0].Literal != `[a-z]+\/` {
		t.Errorf("Literal = %q, want %q", toks[0].Literal, `[a-z]+\/`)
	}
}

func TestLexerAttributeName(t *testing.T) {
	toks, bag := scanAll(t, "&length=4 &chunked")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	if toks[0].Kind != token.ATTR_NAME || toks[0].Literal != "length" {
		t.Errorf("token 0 = %+v, want ATTR_NAME %q", toks[0], "length")
	}
	if toks[1].Kind != token.ASSIGN {
		t.Errorf("token 1 kind = %s, want ASSIGN", toks[1].Kind)
	}
	if toks[2].Kind != token.INT || toks[2].Literal != "4" {
		t.Errorf("token 2 = %+v, want INT 4", toks[2])
	}
	if toks[3].Kind != token.ATTR_NAME || toks[3].Literal != "chunked" {
		t.Errorf("token 3 = %+v, want ATTR_NAME %q", toks[3], "chunked")
	}
}

func TestLexerMultiCharOperators(t *testing.T) {
	toks, bag := scanAll(t, ":: -> == != <= >= && || $$")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	want := []token.Kind{
		token.COLONCOLON, token.ARROW, token.EQ, token.NE, token.LE, token.GE,
		token.AND, token.OR, token.DOLLARDOLLAR, token.EOF,
	}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: kind = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexerCommentsAreSkipped(t *testing.T) {
	toks, bag := scanAll(t, "module // line comment\nFoo /* block\ncomment */ ;")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Diagnostics())
	}
	want := []token.Kind{token.MODULE, token.IDENT, token.SEMI, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
}

func TestLexerUnterminatedStringReportsError(t *testing.T) {
	_, bag := scanAll(t, `"unterminated`)
	if !bag.HasErrors() {
		t.Errorf("expected an error for an unterminated string literal")
	}
}

func TestLexerIllegalCharacterReportsError(t *testing.T) {
	_, bag := scanAll(t, "@")
	if !bag.HasErrors() {
		t.Errorf("expected an error for an illegal character")
	}
}
