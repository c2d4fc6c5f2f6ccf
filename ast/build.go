package ast

// The New* constructors are the parser's and passes' only way to add nodes
// to a Module's arena from outside this package; they all funnel through
// the unexported generic add so NodeID allocation stays centralized.

func (m *Module) NewDeclaration(d Declaration) NodeID { return add(m, &d) }
func (m *Module) NewType(t Type) NodeID               { return add(m, &t) }
func (m *Module) NewExpr(e Expr) NodeID               { return add(m, &e) }
func (m *Module) NewStmt(s Stmt) NodeID               { return add(m, &s) }
func (m *Module) NewUnitItem(i UnitItem) NodeID        { return add(m, &i) }
func (m *Module) NewFunction(f Function) NodeID        { return add(m, &f) }
func (m *Module) NewHook(h Hook) NodeID                { return add(m, &h) }

// Decl, TypeNode, ExprNode, StmtNode, Item, Func, and HookNode fetch a node
// back from the arena with the concrete pointer type already asserted,
// saving every caller its own type switch for the overwhelmingly common
// case where the caller already knows which kind id must be.
func (m *Module) Decl(id NodeID) *Declaration { d, _ := m.Node(id).(*Declaration); return d }
func (m *Module) TypeNode(id NodeID) *Type    { t, _ := m.Node(id).(*Type); return t }
func (m *Module) ExprNode(id NodeID) *Expr    { e, _ := m.Node(id).(*Expr); return e }
func (m *Module) StmtNode(id NodeID) *Stmt    { s, _ := m.Node(id).(*Stmt); return s }
func (m *Module) Item(id NodeID) *UnitItem    { i, _ := m.Node(id).(*UnitItem); return i }
func (m *Module) Func(id NodeID) *Function    { f, _ := m.Node(id).(*Function); return f }
func (m *Module) HookNode(id NodeID) *Hook     { h, _ := m.Node(id).(*Hook); return h }
