package passes

import (
	"github.com/binpacc/binpacc/ast"
	"github.com/binpacc/binpacc/operator"
)

// resolveAlias follows a (possibly TByName) type reference down to the
// concrete Type it ultimately names, stopping at the first non-alias node
// or the first unresolved alias.
func resolveAlias(mod *ast.Module, id ast.NodeID) *ast.Type {
	t := mod.TypeNode(id)
	for t != nil && t.TKind == ast.TByName {
		if !t.Resolved.Valid() {
			return t
		}
		d := mod.Decl(t.Resolved)
		if d == nil || d.DKind != ast.DeclType {
			return t
		}
		t = mod.TypeNode(d.Payload)
	}
	return t
}

// isTyped reports whether id denotes an already-resolved, concrete type
// rather than NilNode or the module's Unknown-type placeholder.
func isTyped(mod *ast.Module, id ast.NodeID) bool {
	return id.Valid() && id != mod.UnknownType()
}

// typeToShape maps a concrete ast.Type down to the abstract operator.Shape
// the registry matches against. It returns ok=false for types the operator
// registry has no opinion about (TVoid, TOptionalArgument, ...) or for a
// TByName that has not resolved yet.
func typeToShape(mod *ast.Module, id ast.NodeID) (operator.Shape, bool) {
	t := resolveAlias(mod, id)
	if t == nil {
		return operator.Shape{}, false
	}
	switch t.TKind {
	case ast.TBool:
		return operator.Shape{Family: operator.FBool}, true
	case ast.TInteger:
		return operator.Shape{Family: operator.FInteger, Width: t.Width, Signed: t.Signed}, true
	case ast.TDouble:
		return operator.Shape{Family: operator.FDouble}, true
	case ast.TString:
		return operator.Shape{Family: operator.FString}, true
	case ast.TBytes:
		return operator.Shape{Family: operator.FBytes}, true
	case ast.TAddress:
		return operator.Shape{Family: operator.FAddress}, true
	case ast.TNetwork:
		return operator.Shape{Family: operator.FNetwork}, true
	case ast.TPort:
		return operator.Shape{Family: operator.FPort}, true
	case ast.TInterval:
		return operator.Shape{Family: operator.FInterval}, true
	case ast.TTime:
		return operator.Shape{Family: operator.FTime}, true
	case ast.TEnum:
		return operator.Shape{Family: operator.FEnum}, true
	case ast.TBitset:
		return operator.Shape{Family: operator.FBitset}, true
	case ast.TTuple:
		return operator.Shape{Family: operator.FTuple}, true
	case ast.TList:
		elem, _ := typeToShape(mod, t.Elem)
		return operator.Shape{Family: operator.FList, Elem: &elem}, true
	case ast.TVector:
		elem, _ := typeToShape(mod, t.Elem)
		return operator.Shape{Family: operator.FVector, Elem: &elem}, true
	case ast.TSet:
		elem, _ := typeToShape(mod, t.Elem)
		return operator.Shape{Family: operator.FSet, Elem: &elem}, true
	case ast.TMap:
		return operator.Shape{Family: operator.FMap}, true
	case ast.TRegExp:
		return operator.Shape{Family: operator.FRegExp}, true
	case ast.TFunction:
		return operator.Shape{Family: operator.FFunction}, true
	case ast.TUnit:
		return operator.Shape{Family: operator.FUnit}, true
	case ast.TIterator:
		return operator.Shape{Family: operator.FIterator}, true
	case ast.TSink:
		return operator.Shape{Family: operator.FSink}, true
	case ast.TFile:
		return operator.Shape{Family: operator.FFile}, true
	case ast.TCAddr:
		return operator.Shape{Family: operator.FCAddr}, true
	case ast.TEmbeddedObject:
		return operator.Shape{Family: operator.FEmbeddedObject}, true
	case ast.TAny:
		return operator.Shape{Family: operator.FAny}, true
	default:
		return operator.Shape{}, false
	}
}

// shapeToType turns a winning Signature's Result shape back into a concrete
// ast type, given the already-typed operand list it was matched against.
// Most families ignore the operands and just mint a fresh Type; FInteger
// with WidthFromOperand set reuses or widens one of them instead of
// fabricating a width out of nowhere.
func shapeToType(mod *ast.Module, result operator.Shape, operandTypes []ast.NodeID) ast.NodeID {
	switch result.Family {
	case operator.FInteger:
		switch result.WidthFromOperand {
		case operator.WidestOperand:
			return widestIntegerType(mod, operandTypes)
		case -1:
			return mod.NewType(ast.Type{TKind: ast.TInteger, Width: result.Width, Signed: result.Signed})
		default:
			if result.WidthFromOperand >= 0 && result.WidthFromOperand < len(operandTypes) {
				return operandTypes[result.WidthFromOperand]
			}
			return mod.NewType(ast.Type{TKind: ast.TInteger, Width: result.Width, Signed: result.Signed})
		}
	case operator.FDouble:
		return mod.NewType(ast.Type{TKind: ast.TDouble})
	case operator.FBool:
		return mod.NewType(ast.Type{TKind: ast.TBool})
	default:
		return mod.UnknownType()
	}
}

func widestIntegerType(mod *ast.Module, operandTypes []ast.NodeID) ast.NodeID {
	var widest *ast.Type
	var widestID ast.NodeID = ast.NilNode
	for _, id := range operandTypes {
		t := resolveAlias(mod, id)
		if t == nil || t.TKind != ast.TInteger {
			continue
		}
		if widest == nil || t.Width > widest.Width {
			widest, widestID = t, id
		}
	}
	if widestID.Valid() {
		return widestID
	}
	return mod.NewType(ast.Type{TKind: ast.TInteger, Width: 64, Signed: true})
}
