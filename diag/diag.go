// Package diag implements the compiler's diagnostic channel: every failure
// reported — from a stray character in the lexer to a violated grammar
// invariant — flows through a Diagnostic and is collected in a Bag, never
// printed directly by a pass.
package diag

import (
	"fmt"
	"io"
	"sort"

	"github.com/maruel/natural"

	"github.com/binpacc/binpacc/token"
)

// Severity is the level of a Diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// Kind classifies what stage of the pipeline produced a diagnostic.
type Kind int

const (
	SyntaxError Kind = iota
	ImportError
	ScopeError
	TypeError
	OperatorError
	AttributeError
	GrammarError
	InternalError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case ImportError:
		return "ImportError"
	case ScopeError:
		return "ScopeError"
	case TypeError:
		return "TypeError"
	case OperatorError:
		return "OperatorError"
	case AttributeError:
		return "AttributeError"
	case GrammarError:
		return "GrammarError"
	case InternalError:
		return "InternalError"
	default:
		return "Error"
	}
}

// Diagnostic carries severity, source location, and message.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Pos      token.Position
	Message  string
	Unit     string // unit/module name this diagnostic is scoped to, if any
}

// String renders the single-line "path:line:col: severity: message" form.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Format renders a multi-line, source-context view of the diagnostic with a
// caret pointing at the offending column.
func (d Diagnostic) Format(source string) string {
	line := sourceLine(source, d.Pos.Line)
	if line == "" {
		return d.String()
	}
	prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
	caret := make([]byte, len(prefix)+max0(d.Pos.Column-1))
	for i := range caret {
		caret[i] = ' '
	}
	return fmt.Sprintf("%s\n%s%s\n%s^\n%s: %s", d.Pos, prefix, line, caret, d.Severity, d.Message)
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func sourceLine(source string, lineNo int) string {
	if source == "" || lineNo < 1 {
		return ""
	}
	start, line := 0, 0
	for i := 0; i <= len(source); i++ {
		if i == len(source) || source[i] == '\n' {
			line++
			if line == lineNo {
				return source[start:i]
			}
			start = i + 1
		}
	}
	return ""
}

// Bag accumulates diagnostics for one CompilerContext run. It never writes
// anywhere itself: callers drain it with Diagnostics(), or Sort() it and
// range over the result, or hand it to WriteReport/MarshalJSONLines.
type Bag struct {
	diags []Diagnostic
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag { return &Bag{} }

// Add appends one diagnostic.
func (b *Bag) Add(d Diagnostic) { b.diags = append(b.diags, d) }

// Errorf is a convenience wrapper producing an Error-severity diagnostic.
func (b *Bag) Errorf(kind Kind, pos token.Position, format string, args ...interface{}) {
	b.Add(Diagnostic{Severity: Error, Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Warnf is a convenience wrapper producing a Warning-severity diagnostic.
func (b *Bag) Warnf(kind Kind, pos token.Position, format string, args ...interface{}) {
	b.Add(Diagnostic{Severity: Warning, Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics at or above the given severity.
func (b *Bag) Count(min Severity) int {
	n := 0
	for _, d := range b.diags {
		if d.Severity >= min {
			n++
		}
	}
	return n
}

// Diagnostics returns the accumulated diagnostics in insertion order.
func (b *Bag) Diagnostics() []Diagnostic { return b.diags }

// Sort orders diagnostics by file (natural order, so "Unit2" precedes
// "Unit10"), then line, then column, giving deterministic output across
// runs regardless of which pass or goroutine produced each diagnostic.
func (b *Bag) Sort() {
	sort.SliceStable(b.diags, func(i, j int) bool {
		a, c := b.diags[i].Pos, b.diags[j].Pos
		if a.File != c.File {
			return natural.Less(a.File, c.File)
		}
		if a.Line != c.Line {
			return a.Line < c.Line
		}
		return a.Column < c.Column
	})
}

// Merge appends another bag's diagnostics to b.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.diags = append(b.diags, other.diags...)
}

// Panic is the payload of a panic raised for an InternalError. panic is
// reserved strictly for violated compiler invariants, never for reporting
// malformed user input.
type Panic struct {
	Kind    Kind
	Message string
}

func (p Panic) Error() string { return p.Message }

// Internal panics with a Panic value; only CompilerContext.Finalize may
// recover it.
func Internal(format string, args ...interface{}) {
	panic(Panic{Kind: InternalError, Message: fmt.Sprintf(format, args...)})
}

// WriteReport writes one "path:line:col: severity: message" line per
// diagnostic, sorted, to w.
func (b *Bag) WriteReport(w io.Writer) error {
	sorted := make([]Diagnostic, len(b.diags))
	copy(sorted, b.diags)
	tmp := &Bag{diags: sorted}
	tmp.Sort()
	for _, d := range tmp.diags {
		if _, err := fmt.Fprintln(w, d.String()); err != nil {
			return err
		}
	}
	return nil
}
