// Package lexer turns BinPAC++ source text into a stream of token.Token
// values for package parser to consume.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/token"
)

// Lexer is a single-pass, backtracking-free scanner over one token.File's
// source text. Construct one per file; it is not safe for concurrent use.
type Lexer struct {
	file *token.File
	src  string
	bag  *diag.Bag

	ch       rune
	offset   int // byte offset of ch
	rdOffset int // byte offset of the rune after ch
}

// New returns a Lexer over file's source, reporting malformed input to bag.
func New(file *token.File, bag *diag.Bag) *Lexer {
	l := &Lexer{file: file, src: file.Src, bag: bag}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.rdOffset >= len(l.src) {
		l.ch = 0
		l.offset = len(l.src)
		l.rdOffset = len(l.src) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.src[l.rdOffset:])
	if r == utf8.RuneError && size == 1 {
		l.errorf(l.rdOffset, "invalid UTF-8 encoding")
	}
	l.offset = l.rdOffset
	l.ch = r
	l.rdOffset += size
}

func (l *Lexer) peekChar() rune {
	if l.rdOffset >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.rdOffset:])
	return r
}

func (l *Lexer) pos(offset int) token.Pos { return token.Pos(offset) }

func (l *Lexer) errorf(offset int, format string, args ...interface{}) {
	if l.bag == nil {
		return
	}
	l.bag.Errorf(diag.SyntaxError, l.file.Position(offset), format, args...)
}

// Next scans and returns the next token. It returns a token.EOF token,
// repeatedly, once the input is exhausted.
func (l *Lexer) Next() token.Token {
	l.skipWhitespaceAndComments()

	start := l.offset
	if l.ch == 0 {
		return token.Token{Kind: token.EOF, Pos: l.pos(start), EndPos: l.pos(start)}
	}

	switch {
	case isIdentStart(l.ch):
		return l.scanIdentOrKeyword(start)
	case isDigit(l.ch):
		return l.scanNumber(start)
	}

	switch l.ch {
	case '"':
		return l.scanString(start, token.STRING)
	case '/':
		// skipWhitespaceAndComments has already consumed any // or /* run,
		// so a '/' reaching here always opens a regexp literal.
		return l.scanRegexp(start)
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.AND, Literal: "&&", Pos: l.pos(start), EndPos: l.pos(l.offset)}
		}
		if isIdentStart(l.peekChar()) {
			l.readChar() // consume '&'
			nameStart := l.offset
			for isIdentPart(l.ch) {
				l.readChar()
			}
			return token.Token{Kind: token.ATTR_NAME, Literal: l.src[nameStart:l.offset], Pos: l.pos(start), EndPos: l.pos(l.offset)}
		}
		l.readChar()
		return token.Token{Kind: token.AMP, Literal: "&", Pos: l.pos(start), EndPos: l.pos(l.offset)}
	case ':':
		l.readChar()
		if l.ch == ':' {
			l.readChar()
			return token.Token{Kind: token.COLONCOLON, Literal: "::", Pos: l.pos(start), EndPos: l.pos(l.offset)}
		}
		return token.Token{Kind: token.COLON, Literal: ":", Pos: l.pos(start), EndPos: l.pos(l.offset)}
	case '-':
		l.readChar()
		if l.ch == '>' {
			l.readChar()
			return token.Token{Kind: token.ARROW, Literal: "->", Pos: l.pos(start), EndPos: l.pos(l.offset)}
		}
		return token.Token{Kind: token.MINUS, Literal: "-", Pos: l.pos(start), EndPos: l.pos(l.offset)}
	case '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token.Token{Kind: token.EQ, Literal: "==", Pos: l.pos(start), EndPos: l.pos(l.offset)}
		}
		return token.Token{Kind: token.ASSIGN, Literal: "=", Pos: l.pos(start), EndPos: l.pos(l.offset)}
	case '!':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token.Token{Kind: token.NE, Literal: "!=", Pos: l.pos(start), EndPos: l.pos(l.offset)}
		}
		return token.Token{Kind: token.NOT, Literal: "!", Pos: l.pos(start), EndPos: l.pos(l.offset)}
	case '<':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token.Token{Kind: token.LE, Literal: "<=", Pos: l.pos(start), EndPos: l.pos(l.offset)}
		}
		return token.Token{Kind: token.LANGLE, Literal: "<", Pos: l.pos(start), EndPos: l.pos(l.offset)}
	case '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token.Token{Kind: token.GE, Literal: ">=", Pos: l.pos(start), EndPos: l.pos(l.offset)}
		}
		return token.Token{Kind: token.RANGLE, Literal: ">", Pos: l.pos(start), EndPos: l.pos(l.offset)}
	case '|':
		l.readChar()
		if l.ch == '|' {
			l.readChar()
			return token.Token{Kind: token.OR, Literal: "||", Pos: l.pos(start), EndPos: l.pos(l.offset)}
		}
		l.errorf(start, "unexpected character %q", '|')
		return token.Token{Kind: token.ILLEGAL, Literal: "|", Pos: l.pos(start), EndPos: l.pos(l.offset)}
	case '$':
		l.readChar()
		if l.ch == '$' {
			l.readChar()
			return token.Token{Kind: token.DOLLARDOLLAR, Literal: "$$", Pos: l.pos(start), EndPos: l.pos(l.offset)}
		}
		l.errorf(start, "unexpected character %q", '$')
		return token.Token{Kind: token.ILLEGAL, Literal: "$", Pos: l.pos(start), EndPos: l.pos(l.offset)}
	}

	if k, lit, ok := singleChar(l.ch); ok {
		l.readChar()
		return token.Token{Kind: k, Literal: lit, Pos: l.pos(start), EndPos: l.pos(l.offset)}
	}

	ch := l.ch
	l.readChar()
	l.errorf(start, "unexpected character %q", ch)
	return token.Token{Kind: token.ILLEGAL, Literal: string(ch), Pos: l.pos(start), EndPos: l.pos(l.offset)}
}

func singleChar(ch rune) (token.Kind, string, bool) {
	switch ch {
	case '(':
		return token.LPAREN, "(", true
	case ')':
		return token.RPAREN, ")", true
	case '{':
		return token.LBRACE, "{", true
	case '}':
		return token.RBRACE, "}", true
	case '[':
		return token.LBRACK, "[", true
	case ']':
		return token.RBRACK, "]", true
	case ',':
		return token.COMMA, ",", true
	case ';':
		return token.SEMI, ";", true
	case '.':
		return token.DOT, ".", true
	case '%':
		return token.PERCENT, "%", true
	case '?':
		return token.QUESTION, "?", true
	case '+':
		return token.PLUS, "+", true
	case '*':
		return token.STAR, "*", true
	}
	return token.ILLEGAL, "", false
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') && l.ch != 0 {
				l.readChar()
			}
			if l.ch == 0 {
				l.errorf(l.offset, "unterminated block comment")
				return
			}
			l.readChar()
			l.readChar()
		default:
			return
		}
	}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func (l *Lexer) scanIdentOrKeyword(start int) token.Token {
	if l.ch == 'b' && l.peekChar() == '"' {
		l.readChar() // consume 'b', leaving l.ch on the opening quote
		return l.scanString(start, token.BYTES)
	}
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lit := l.src[start:l.offset]
	if k, ok := token.LookupKeyword(lit); ok {
		return token.Token{Kind: k, Literal: lit, Pos: l.pos(start), EndPos: l.pos(l.offset)}
	}
	return token.Token{Kind: token.IDENT, Literal: lit, Pos: l.pos(start), EndPos: l.pos(l.offset)}
}

func (l *Lexer) scanNumber(start int) token.Token {
	isFloat := false
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return token.Token{Kind: token.INT, Literal: l.src[start:l.offset], Pos: l.pos(start), EndPos: l.pos(l.offset)}
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	kind := token.INT
	if isFloat {
		kind = token.FLOAT
	}
	return token.Token{Kind: kind, Literal: l.src[start:l.offset], Pos: l.pos(start), EndPos: l.pos(l.offset)}
}

// scanString consumes a "..." or b"..." literal (b-prefix already consumed
// by the caller for BYTES), un-escaping the usual backslash sequences and
// normalizing the result to Unicode NFC so that two spellings of the same
// logical string compare equal later (e.g. in case-label matching).
func (l *Lexer) scanString(start int, kind token.Kind) token.Token {
	l.readChar() // consume opening quote
	var sb strings.Builder
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			l.errorf(start, "unterminated string literal")
			break
		}
		if l.ch == '\\' {
			l.readChar()
			sb.WriteRune(unescape(l.ch))
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '"' {
		l.readChar()
	}
	return token.Token{Kind: kind, Literal: norm.NFC.String(sb.String()), Pos: l.pos(start), EndPos: l.pos(l.offset)}
}

func unescape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return ch
	}
}

// scanRegexp consumes a /pattern/ literal. Unlike a string literal it is
// not unescaped: the raw pattern text, delimiters stripped, is handed
// verbatim to whatever regular-expression engine the runtime uses.
func (l *Lexer) scanRegexp(start int) token.Token {
	l.readChar() // consume opening '/'
	patStart := l.offset
	for l.ch != '/' {
		if l.ch == 0 || l.ch == '\n' {
			l.errorf(start, "unterminated regexp literal")
			return token.Token{Kind: token.ILLEGAL, Literal: l.src[start:l.offset], Pos: l.pos(start), EndPos: l.pos(l.offset)}
		}
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	pattern := l.src[patStart:l.offset]
	l.readChar() // consume closing '/'
	return token.Token{Kind: token.REGEXP, Literal: pattern, Pos: l.pos(start), EndPos: l.pos(l.offset)}
}
