package grammar

import (
	"fmt"
	"io"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// symbolSet is an unordered string set; every place it becomes visible
// (PrintTables, an ambiguity message) sorts it first with sorted(), so the
// map itself never leaks nondeterministic iteration into output.
type symbolSet map[string]struct{}

func newSymbolSet(syms ...string) symbolSet {
	s := make(symbolSet, len(syms))
	for _, sym := range syms {
		s[sym] = struct{}{}
	}
	return s
}

func (s symbolSet) add(sym string) bool {
	if _, ok := s[sym]; ok {
		return false
	}
	s[sym] = struct{}{}
	return true
}

func (s symbolSet) addAll(other symbolSet) bool {
	changed := false
	for sym := range other {
		if s.add(sym) {
			changed = true
		}
	}
	return changed
}

func (s symbolSet) intersects(other symbolSet) symbolSet {
	shared := make(symbolSet)
	for sym := range s {
		if _, ok := other[sym]; ok {
			shared[sym] = struct{}{}
		}
	}
	return shared
}

func (s symbolSet) sorted() []string {
	keys := maps.Keys(map[string]struct{}(s))
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natural.Less(a, b):
			return -1
		default:
			return 1
		}
	})
	return keys
}

func (s symbolSet) String() string { return "{" + strings.Join(s.sorted(), ", ") + "}" }

// endOfInput is the FOLLOW set member representing "nothing more to
// parse", the `$` of the standard LL(1) presentation.
const endOfInput = "$"

// lookaheadEntry records the two disambiguating sets computed for one
// LookAhead production, keyed by its own Symbol.
type lookaheadEntry struct {
	alt1, alt2 string // the two alternatives' own Symbols, for printing
	set1, set2 symbolSet
}

// Grammar is the productions plus precomputed tables derived from one
// unit's item list: the output of BuildUnit, and the input a code
// generator walks to drive its parser.
type Grammar struct {
	Name string
	Root *Production

	all      []*Production // every reachable production, Symbol-deduplicated, in natural Symbol order
	nullable map[string]bool
	first    map[string]symbolSet
	follow   map[string]symbolSet
	look     map[string]*lookaheadEntry

	errors []string
}

// New builds a Grammar rooted at root and immediately computes its
// FIRST/FOLLOW/lookahead tables and ambiguity/left-recursion diagnostics.
// Call Check (or inspect Errors) to find out whether it is actually LL(1).
func New(name string, root *Production) *Grammar {
	g := &Grammar{Name: name, Root: root}
	g.collect()
	g.computeNullableAndFirst()
	g.computeFollow()
	g.computeLookahead()
	g.detectLeftRecursion()
	return g
}

// collect walks the (possibly shared-subtree, i.e. DAG-shaped) production
// graph reachable from Root and records one entry per distinct Symbol,
// sorted into natural order so every later table walk is deterministic
// regardless of which path first reached a shared node.
func (g *Grammar) collect() {
	seen := make(map[string]*Production)
	var walk func(p *Production)
	walk = func(p *Production) {
		if p == nil {
			return
		}
		if _, ok := seen[p.Symbol]; ok {
			return
		}
		seen[p.Symbol] = p
		switch p.Kind {
		case Sequence:
			for _, e := range p.Elements {
				walk(e)
			}
		case LookAhead:
			walk(p.Alt1)
			walk(p.Alt2)
		case Switch:
			for _, arm := range p.Arms {
				walk(arm.Prod)
			}
		case ChildGrammar:
			// the child's own productions were already collected and
			// checked when its Grammar was built; only its root symbol
			// participates in this grammar's tables.
		}
	}
	walk(g.Root)

	symbols := maps.Keys(seen)
	slices.SortFunc(symbols, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natural.Less(a, b):
			return -1
		default:
			return 1
		}
	})
	g.all = make([]*Production, len(symbols))
	for i, sym := range symbols {
		g.all[i] = seen[sym]
	}

	g.nullable = make(map[string]bool, len(g.all))
	g.first = make(map[string]symbolSet, len(g.all))
	g.follow = make(map[string]symbolSet, len(g.all))
	for _, p := range g.all {
		g.first[p.Symbol] = make(symbolSet)
		g.follow[p.Symbol] = make(symbolSet)
	}
}

func (g *Grammar) isNullable(p *Production) bool {
	if p == nil {
		return true // a nil forward-declared alternative never blocks nullability elsewhere
	}
	if p.Kind == ChildGrammar {
		return p.Child != nil && p.Child.isNullable(p.Child.Root)
	}
	return g.nullable[p.Symbol]
}

func (g *Grammar) firstOf(p *Production) symbolSet {
	if p == nil {
		return newSymbolSet()
	}
	if p.Kind == ChildGrammar {
		if p.Child == nil {
			return newSymbolSet()
		}
		return p.Child.firstOf(p.Child.Root)
	}
	return g.first[p.Symbol]
}

// computeNullableAndFirst is the dataflow fixed point computing nullability and FIRST
// rules: repeat a full pass over every production, folding each one's
// current nullable/FIRST contribution into its dependents, until a
// complete pass makes no further change. A single top-down pass is not
// enough because a container's recursive LookAhead can depend on its own
// Sequence element, which depends back on the LookAhead's nullability.
func (g *Grammar) computeNullableAndFirst() {
	for {
		changed := false
		for _, p := range g.all {
			switch p.Kind {
			case Epsilon:
				if !g.nullable[p.Symbol] {
					g.nullable[p.Symbol] = true
					changed = true
				}
			case Literal, Variable:
				if g.first[p.Symbol].add(p.Symbol) {
					changed = true
				}
			case Sequence:
				allNullableSoFar := true
				for _, e := range p.Elements {
					if allNullableSoFar {
						if g.first[p.Symbol].addAll(g.firstOf(e)) {
							changed = true
						}
					}
					if !g.isNullable(e) {
						allNullableSoFar = false
						break
					}
				}
				if allNullableSoFar && !g.nullable[p.Symbol] {
					g.nullable[p.Symbol] = true
					changed = true
				}
			case LookAhead:
				if g.first[p.Symbol].addAll(g.firstOf(p.Alt1)) {
					changed = true
				}
				if g.first[p.Symbol].addAll(g.firstOf(p.Alt2)) {
					changed = true
				}
				if (g.isNullable(p.Alt1) || g.isNullable(p.Alt2)) && !g.nullable[p.Symbol] {
					g.nullable[p.Symbol] = true
					changed = true
				}
			case Switch:
				anyNullable := false
				for _, arm := range p.Arms {
					if g.first[p.Symbol].addAll(g.firstOf(arm.Prod)) {
						changed = true
					}
					if g.isNullable(arm.Prod) {
						anyNullable = true
					}
				}
				if anyNullable && !g.nullable[p.Symbol] {
					g.nullable[p.Symbol] = true
					changed = true
				}
			case ChildGrammar:
				if g.first[p.Symbol].addAll(g.firstOf(p)) {
					changed = true
				}
				if g.isNullable(p) && !g.nullable[p.Symbol] {
					g.nullable[p.Symbol] = true
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}

// computeFollow is the analogous fixed point for the FOLLOW rules:
// FOLLOW(start) = {$}; inside a Sequence, FOLLOW(Pi) gains FIRST(Pi+1)\{ε}
// and, when Pi+1 is nullable, FOLLOW(Pi+1) too; the sequence's own last
// element inherits the sequence's FOLLOW. A LookAhead's two alternatives
// and a Switch's arms each inherit the node's own FOLLOW directly, since
// whichever alternative is actually taken is followed by the same thing
// that follows the choice as a whole.
func (g *Grammar) computeFollow() {
	g.follow[g.Root.Symbol].add(endOfInput)
	for {
		changed := false
		for _, p := range g.all {
			switch p.Kind {
			case Sequence:
				for i, e := range p.Elements {
					if e == nil {
						continue
					}
					if i+1 < len(p.Elements) {
						next := p.Elements[i+1]
						if g.follow[e.Symbol].addAll(g.firstOf(next)) {
							changed = true
						}
						if next != nil && g.isNullable(next) && g.follow[e.Symbol].addAll(g.follow[next.Symbol]) {
							changed = true
						}
					} else {
						if g.follow[e.Symbol].addAll(g.follow[p.Symbol]) {
							changed = true
						}
					}
				}
			case LookAhead:
				if p.Alt1 != nil && g.follow[p.Alt1.Symbol].addAll(g.follow[p.Symbol]) {
					changed = true
				}
				if p.Alt2 != nil && g.follow[p.Alt2.Symbol].addAll(g.follow[p.Symbol]) {
					changed = true
				}
			case Switch:
				for _, arm := range p.Arms {
					if arm.Prod != nil && g.follow[arm.Prod.Symbol].addAll(g.follow[p.Symbol]) {
						changed = true
					}
				}
			}
		}
		if !changed {
			return
		}
	}
}

// computeLookahead builds the per-LookAhead disambiguating sets:
// la(a) = FIRST(a), extended with FOLLOW(node) when a is nullable
// (symmetrically for b) — and records an ambiguity error for any
// LookAhead whose two sets intersect.
func (g *Grammar) computeLookahead() {
	g.look = make(map[string]*lookaheadEntry)
	for _, p := range g.all {
		if p.Kind != LookAhead {
			continue
		}
		entry := &lookaheadEntry{set1: newSymbolSet(), set2: newSymbolSet()}
		if p.Alt1 != nil {
			entry.alt1 = p.Alt1.Symbol
			entry.set1.addAll(g.firstOf(p.Alt1))
			if g.isNullable(p.Alt1) {
				entry.set1.addAll(g.follow[p.Symbol])
			}
		}
		if p.Alt2 != nil {
			entry.alt2 = p.Alt2.Symbol
			entry.set2.addAll(g.firstOf(p.Alt2))
			if g.isNullable(p.Alt2) {
				entry.set2.addAll(g.follow[p.Symbol])
			}
		}
		g.look[p.Symbol] = entry

		if shared := entry.set1.intersects(entry.set2); len(shared) > 0 {
			g.errors = append(g.errors, fmt.Sprintf(
				"%s: ambiguous, alternatives %q and %q both admit %s",
				p.Symbol, entry.alt1, entry.alt2, shared))
		}
	}
}

// detectLeftRecursion walks the "can appear in first position" edges (a
// Sequence's nullable-prefix elements, a LookAhead's two alternatives, a
// Switch's arms) with a grey/visited marker, the way a recursive-descent
// parser would recurse into each candidate's own start before consuming a
// token. A grey node reached again means a symbol can reach itself
// without ever consuming input — left recursion, fatal for an LL(1)
// parser built on this grammar.
func (g *Grammar) detectLeftRecursion() {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.all))
	var path []string
	var visit func(p *Production)
	visit = func(p *Production) {
		if p == nil || p.Kind == ChildGrammar {
			return
		}
		switch color[p.Symbol] {
		case grey:
			g.errors = append(g.errors, fmt.Sprintf(
				"%s: left-recursive (reaches itself via %s without consuming input)",
				p.Symbol, strings.Join(path, " -> ")))
			return
		case black:
			return
		}
		color[p.Symbol] = grey
		path = append(path, p.Symbol)
		switch p.Kind {
		case Sequence:
			for _, e := range p.Elements {
				visit(e)
				if !g.isNullable(e) {
					break
				}
			}
		case LookAhead:
			visit(p.Alt1)
			visit(p.Alt2)
		case Switch:
			for _, arm := range p.Arms {
				visit(arm.Prod)
			}
		}
		path = path[:len(path)-1]
		color[p.Symbol] = black
	}
	visit(g.Root)
}

// Check returns a non-empty description of every ambiguity and
// left-recursion issue found, or "" if the grammar is LL(1).
func (g *Grammar) Check() string {
	if len(g.errors) == 0 {
		return ""
	}
	return strings.Join(g.errors, "; ")
}

// Errors returns the individual issues Check concatenates, for callers
// that want to report each one as its own diagnostic.
func (g *Grammar) Errors() []string { return g.errors }

// First returns the FIRST set computed for the production named symbol.
func (g *Grammar) First(symbol string) symbolSet { return g.first[symbol] }

// Follow returns the FOLLOW set computed for the production named symbol.
func (g *Grammar) Follow(symbol string) symbolSet { return g.follow[symbol] }

// Nullable reports whether the production named symbol can match the
// empty input.
func (g *Grammar) Nullable(symbol string) bool { return g.nullable[symbol] }

// PrintTables writes a stable, diffable dump of g: one line per
// production naming its kind and children, then each symbol's
// FIRST/FOLLOW (and, verbose, lookahead) sets, then the error list —
// matching a debug table dump a compiler front end would print,
// used here for golden-file tests instead of terminal debugging.
func (g *Grammar) PrintTables(w io.Writer, verbose bool) {
	fmt.Fprintf(w, "grammar %q, root %s\n", g.Name, g.Root.Symbol)
	fmt.Fprintln(w, "productions:")
	for _, p := range g.all {
		fmt.Fprintf(w, "  %s: %s%s\n", p.Symbol, p.Kind, productionChildren(p))
	}
	fmt.Fprintln(w, "first/follow:")
	for _, p := range g.all {
		nullable := ""
		if g.nullable[p.Symbol] {
			nullable = " nullable"
		}
		fmt.Fprintf(w, "  %s: first=%s follow=%s%s\n", p.Symbol, g.first[p.Symbol], g.follow[p.Symbol], nullable)
	}
	if verbose {
		fmt.Fprintln(w, "lookahead:")
		for _, p := range g.all {
			if p.Kind != LookAhead {
				continue
			}
			entry := g.look[p.Symbol]
			fmt.Fprintf(w, "  %s: la(%s)=%s la(%s)=%s\n", p.Symbol, entry.alt1, entry.set1, entry.alt2, entry.set2)
		}
	}
	fmt.Fprintln(w, "errors:")
	if len(g.errors) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for _, e := range g.errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func productionChildren(p *Production) string {
	switch p.Kind {
	case Sequence:
		names := make([]string, len(p.Elements))
		for i, e := range p.Elements {
			names[i] = symbolOf(e)
		}
		return " [" + strings.Join(names, " ") + "]"
	case LookAhead:
		return fmt.Sprintf(" (%s | %s)", symbolOf(p.Alt1), symbolOf(p.Alt2))
	case Switch:
		names := make([]string, len(p.Arms))
		for i, arm := range p.Arms {
			names[i] = symbolOf(arm.Prod)
		}
		return " {" + strings.Join(names, ", ") + "}"
	case ChildGrammar:
		if p.Child != nil {
			return " <- " + p.Child.Name
		}
		return ""
	default:
		return ""
	}
}

func symbolOf(p *Production) string {
	if p == nil {
		return "<nil>"
	}
	return p.Symbol
}
