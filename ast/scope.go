package ast

// Scope is a lexical binding table: module bodies, unit bodies, enum/bitset
// label sets, and blocks each own one. Scopes chain to a Parent so that
// lookup can walk outward to an enclosing module or an imported module's
// exported scope, and may hold named Children for things a plain ID lookup
// should not see through implicitly — an imported module's scope, or a
// unit type's per-field scope reached only via `self.field`.
type Scope struct {
	Name   string // debug label: module name, unit type name, "block", ...
	Parent *Scope

	bindings map[string]NodeID
	order    []string

	children   map[string]*Scope
	childOrder []string
}

// NewScope creates an empty scope chained to parent (nil for a module root).
func NewScope(parent *Scope, name string) *Scope {
	return &Scope{
		Name:     name,
		Parent:   parent,
		bindings: make(map[string]NodeID),
		children: make(map[string]*Scope),
	}
}

// Insert binds id to expr in this scope. It returns false without changing
// the scope if id is already bound locally (the caller, typically the
// scope builder, turns that into a duplicate-declaration diagnostic rather
// than silently shadowing).
func (s *Scope) Insert(id string, expr NodeID) bool {
	if _, exists := s.bindings[id]; exists {
		return false
	}
	s.bindings[id] = expr
	s.order = append(s.order, id)
	return true
}

// Replace overwrites (or creates) a binding unconditionally. Used by passes
// that rewrite a binding's target in place, e.g. the unit scope builder
// rebinding a unit parameter to a ParserState value, or "$$" inside a
// foreach hook body to the container's element type.
func (s *Scope) Replace(id string, expr NodeID) {
	if _, exists := s.bindings[id]; !exists {
		s.order = append(s.order, id)
	}
	s.bindings[id] = expr
}

// Lookup resolves id against this scope only, not its Parent.
func (s *Scope) Lookup(id string) (NodeID, bool) {
	n, ok := s.bindings[id]
	return n, ok
}

// LookupChain resolves id against this scope, then each Parent outward,
// stopping at the first match.
func (s *Scope) LookupChain(id string) (NodeID, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if n, ok := sc.bindings[id]; ok {
			return n, true
		}
	}
	return NilNode, false
}

// Has reports whether id is bound, optionally following the parent chain.
func (s *Scope) Has(id string, followParent bool) bool {
	if followParent {
		_, ok := s.LookupChain(id)
		return ok
	}
	_, ok := s.Lookup(id)
	return ok
}

// AddChild attaches a named child scope, e.g. an imported module's exported
// scope reached as `modname::id`, or a unit type's field scope reached as
// `self.field`. Overwrites any previous child of the same name.
func (s *Scope) AddChild(name string, child *Scope) {
	if _, exists := s.children[name]; !exists {
		s.childOrder = append(s.childOrder, name)
	}
	s.children[name] = child
}

// Child looks up a named child scope without walking Parent.
func (s *Scope) Child(name string) (*Scope, bool) {
	c, ok := s.children[name]
	return c, ok
}

// Names returns the locally bound identifiers in insertion order, which is
// what scope dumps and duplicate-declaration diagnostics iterate over to
// stay deterministic across runs.
func (s *Scope) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// ChildNames returns the named child scopes in insertion order.
func (s *Scope) ChildNames() []string {
	out := make([]string, len(s.childOrder))
	copy(out, s.childOrder)
	return out
}
