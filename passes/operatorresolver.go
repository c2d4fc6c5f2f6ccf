package passes

import (
	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/operator"
)

// OperatorResolver replaces every EUnresolvedOperator expression whose
// operands are now typed with an EResolvedOperator carrying a concrete
// result Type and the operator.Entry that matched. It reports false for
// "ready but no candidate matched" via a diagnostic (terminal: the node is
// still marked resolved, with an Unknown result type, so later sweeps don't
// re-report the same failure) and simply skips operators still waiting on
// an operand whose own type resolution hasn't landed yet.
//
// Index, Call, and Attribute are resolved structurally against the actual
// ast types involved rather than through the registry's abstract Signature
// matching, since their result type is "whatever the container/function/
// field actually declares", not a shape the registry can synthesize.
//
// Returns true if at least one operator was resolved this sweep, which is
// what lets compiler.Context's fixed-point loop know whether another sweep
// might make further progress.
func OperatorResolver(mod *ast.Module, reg *operator.Registry, bag *diag.Bag) bool {
	changed := false
	for i := 0; i < mod.NodeCount(); i++ {
		e := mod.ExprNode(ast.NodeID(i))
		if e == nil || e.EKind != ast.EUnresolvedOperator {
			continue
		}
		if resolveOperator(mod, e, reg, bag) {
			changed = true
		}
	}
	return changed
}

func resolveOperator(mod *ast.Module, e *ast.Expr, reg *operator.Registry, bag *diag.Bag) bool {
	switch e.OpKind {
	case operator.Attribute:
		return resolveAttribute(mod, e, reg, bag)
	case operator.Index:
		return resolveIndex(mod, e, reg, bag)
	case operator.Call:
		return resolveCall(mod, e, reg, bag)
	default:
		return resolveGenericOperator(mod, e, reg, bag)
	}
}

func resolveAttribute(mod *ast.Module, e *ast.Expr, reg *operator.Registry, bag *diag.Bag) bool {
	recv := mod.ExprNode(e.Operands[0])
	member := mod.ExprNode(e.Operands[1])
	if recv == nil || member == nil || !isTyped(mod, recv.Type) {
		return false
	}
	receiverType := resolveAlias(mod, recv.Type)
	if receiverType == nil || receiverType.TKind != ast.TUnit {
		bag.Errorf(diag.OperatorError, mod.Position(e.XPos), "left side of '.' is not a unit value")
		e.EKind, e.Type = ast.EResolvedOperator, mod.UnknownType()
		return true
	}
	fieldDeclID, ok := receiverType.UScope.Lookup(member.Name)
	if !ok {
		bag.Errorf(diag.OperatorError, mod.Position(e.XPos), "unit has no field named %q", member.Name)
		e.EKind, e.Type = ast.EResolvedOperator, mod.UnknownType()
		return true
	}
	fieldDecl := mod.Decl(fieldDeclID)
	fieldType := mod.UnknownType()
	if fieldDecl != nil {
		fieldType = fieldDecl.Payload
	}
	member.Resolved = fieldDeclID
	member.Decl = fieldDeclID
	member.EKind = ast.EVariable
	member.Type = fieldType

	for _, cand := range reg.Candidates(operator.Attribute, 2) {
		if cand.Sig.Operands[0].Family == operator.FUnit {
			e.OpEntry = cand
			break
		}
	}
	e.EKind, e.Type = ast.EResolvedOperator, fieldType
	return true
}

func resolveIndex(mod *ast.Module, e *ast.Expr, reg *operator.Registry, bag *diag.Bag) bool {
	recv := mod.ExprNode(e.Operands[0])
	idx := mod.ExprNode(e.Operands[1])
	if recv == nil || idx == nil || !isTyped(mod, recv.Type) || !isTyped(mod, idx.Type) {
		return false
	}
	container := resolveAlias(mod, recv.Type)
	if container == nil {
		return false
	}

	var resultType ast.NodeID
	var family operator.Family
	switch container.TKind {
	case ast.TList:
		resultType, family = container.Elem, operator.FList
	case ast.TVector:
		resultType, family = container.Elem, operator.FVector
	case ast.TMap:
		resultType, family = container.Value, operator.FMap
	default:
		bag.Errorf(diag.OperatorError, mod.Position(e.XPos), "cannot index a value of type %s", container.TKind)
		e.EKind, e.Type = ast.EResolvedOperator, mod.UnknownType()
		return true
	}

	for _, cand := range reg.Candidates(operator.Index, 2) {
		if cand.Sig.Operands[0].Family == family {
			e.OpEntry = cand
			break
		}
	}
	e.EKind, e.Type = ast.EResolvedOperator, resultType
	return true
}

func resolveCall(mod *ast.Module, e *ast.Expr, reg *operator.Registry, bag *diag.Bag) bool {
	callee := mod.ExprNode(e.Operands[0])
	if callee == nil {
		return false
	}

	var resultType ast.NodeID
	switch callee.EKind {
	case ast.EFunction:
		d := mod.Decl(callee.Decl)
		if d == nil {
			return false
		}
		fn := mod.Func(d.Payload)
		if fn == nil {
			return false
		}
		resultType = fn.ResultType
	case ast.EVariable, ast.EParameter:
		if !isTyped(mod, callee.Type) {
			return false
		}
		ft := resolveAlias(mod, callee.Type)
		if ft == nil || ft.TKind != ast.TFunction {
			bag.Errorf(diag.OperatorError, mod.Position(e.XPos), "called value is not a function")
			e.EKind, e.Type = ast.EResolvedOperator, mod.UnknownType()
			return true
		}
		resultType = ft.Result
	default:
		// Still unresolved (EID) or otherwise not yet a typed callee: wait
		// for a later sweep.
		return false
	}
	if !resultType.Valid() {
		resultType = mod.NewType(ast.Type{TKind: ast.TVoid})
	}

	if cands := reg.Candidates(operator.Call, len(e.Operands)); len(cands) > 0 {
		e.OpEntry = cands[0]
	}
	e.EKind, e.Type = ast.EResolvedOperator, resultType
	return true
}

func resolveGenericOperator(mod *ast.Module, e *ast.Expr, reg *operator.Registry, bag *diag.Bag) bool {
	shapes := make([]operator.Shape, len(e.Operands))
	types := make([]ast.NodeID, len(e.Operands))
	for i, operand := range e.Operands {
		oe := mod.ExprNode(operand)
		if oe == nil || !isTyped(mod, oe.Type) {
			return false
		}
		sh, ok := typeToShape(mod, oe.Type)
		if !ok {
			return false
		}
		shapes[i], types[i] = sh, oe.Type
	}

	for _, cand := range reg.Candidates(e.OpKind, len(shapes)) {
		expected := operator.ShapesForSignature(cand.Sig, len(shapes))
		matched := true
		for i, sh := range shapes {
			if ok, _ := reg.Matches(sh, expected[i], operator.DefaultCoercer); !ok {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		e.EKind = ast.EResolvedOperator
		e.OpEntry = cand
		e.Type = shapeToType(mod, cand.Sig.Result, types)
		return true
	}

	bag.Errorf(diag.OperatorError, mod.Position(e.XPos), "no matching overload for operator %s", e.OpKind)
	e.EKind, e.Type = ast.EResolvedOperator, mod.UnknownType()
	return true
}
