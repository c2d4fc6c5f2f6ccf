package passes

import (
	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/diag"
	"github.com/binpacc/binpacc/operator"
)

// OverloadResolver checks a resolved call's arguments against its callee's
// declared parameter list: arity (respecting Variadic) and, once both sides
// are typed, shape coercibility. It runs after OperatorResolver has already
// turned the call into an EResolvedOperator with its result type fixed;
// this pass only adds diagnostics; it never touches Type.
//
// It is deliberately silent about calls through a function-valued variable
// (EVariable/EParameter callees): those only carry a TFunction shape, not a
// concrete Declaration with named Params, so there is nothing to check
// parameter names or per-parameter coercions against beyond what
// OperatorResolver already verified structurally.
func OverloadResolver(mod *ast.Module, reg *operator.Registry, bag *diag.Bag) {
	for i := 0; i < mod.NodeCount(); i++ {
		e := mod.ExprNode(ast.NodeID(i))
		if e == nil || e.EKind != ast.EResolvedOperator || e.OpKind != operator.Call {
			continue
		}
		checkCallArguments(mod, e, reg, bag)
	}
}

func checkCallArguments(mod *ast.Module, e *ast.Expr, reg *operator.Registry, bag *diag.Bag) {
	if len(e.Operands) == 0 {
		return
	}
	callee := mod.ExprNode(e.Operands[0])
	if callee == nil || callee.EKind != ast.EFunction {
		return
	}
	d := mod.Decl(callee.Decl)
	if d == nil {
		return
	}
	fn := mod.Func(d.Payload)
	if fn == nil {
		return
	}

	args := e.Operands[1:]
	if fn.Variadic {
		if len(args) < len(fn.Params)-1 {
			bag.Errorf(diag.TypeError, mod.Position(e.XPos),
				"%s expects at least %d argument(s), got %d", d.ID, len(fn.Params)-1, len(args))
			return
		}
	} else if len(args) != len(fn.Params) {
		bag.Errorf(diag.TypeError, mod.Position(e.XPos),
			"%s expects %d argument(s), got %d", d.ID, len(fn.Params), len(args))
		return
	}

	for i, argID := range args {
		paramIdx := i
		if paramIdx >= len(fn.Params) {
			paramIdx = len(fn.Params) - 1
		}
		if paramIdx < 0 {
			continue
		}
		paramDecl := mod.Decl(fn.Params[paramIdx])
		argExpr := mod.ExprNode(argID)
		if paramDecl == nil || argExpr == nil || !isTyped(mod, argExpr.Type) || !isTyped(mod, paramDecl.Payload) {
			continue
		}
		argShape, ok1 := typeToShape(mod, argExpr.Type)
		paramShape, ok2 := typeToShape(mod, paramDecl.Payload)
		if !ok1 || !ok2 {
			continue
		}
		if matched, _ := reg.Matches(argShape, paramShape, operator.DefaultCoercer); !matched {
			bag.Errorf(diag.TypeError, mod.Position(argExpr.XPos), "argument %d to %s has incompatible type", i+1, d.ID)
		}
	}
}
