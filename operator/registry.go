// Package operator implements a fixed, process-wide catalog of operator
// kinds and the operand shapes each accepts, consulted by
// passes.OperatorResolver to replace every unresolved operator expression
// with a concrete, type-checked one.
//
// The registry intentionally knows nothing about package ast: it matches
// abstract Shape values, not concrete type nodes. passes.OperatorResolver
// bridges the two, translating an ast type into a Shape before consulting
// Candidates, and translating the winning Signature's result back into a
// concrete ast type afterwards. Keeping the registry ast-agnostic avoids an
// ast<->operator import cycle and keeps the candidate tables a static,
// immutable, built-once-at-startup structure keyed by (kind, arity).
package operator

// Kind enumerates the operator categories: arithmetic, relational, logical,
// indexing, attribute access, call, coerce, construct.
type Kind uint8

const (
	Plus Kind = iota
	Minus
	Mult
	Div
	Mod
	Negate // unary minus
	Equal
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	LogicalAnd
	LogicalOr
	LogicalNot
	Index
	Call
	Attribute
	Coerce
	Construct
)

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown-operator"
}

var kindNames = [...]string{
	Plus: "+", Minus: "-", Mult: "*", Div: "/", Mod: "%", Negate: "unary-",
	Equal: "==", NotEqual: "!=", Less: "<", LessEqual: "<=", Greater: ">", GreaterEqual: ">=",
	LogicalAnd: "&&", LogicalOr: "||", LogicalNot: "!",
	Index: "index", Call: "call", Attribute: "attribute", Coerce: "coerce", Construct: "construct",
}

// Family is a coarse operand category, independent of ast's own type
// representation.
type Family uint8

const (
	FAny Family = iota // wildcard: a signature slot that accepts anything
	FBool
	FInteger
	FDouble
	FString
	FBytes
	FAddress
	FNetwork
	FPort
	FInterval
	FTime
	FEnum
	FBitset
	FList
	FVector
	FSet
	FMap
	FTuple
	FUnit
	FFunction
	FRegExp
	FIterator
	FSink
	FFile
	FCAddr
	FEmbeddedObject
)

// Shape abstractly describes one operand or result. Width/Signed apply only
// to FInteger; WidthFromOperand, when >= 0, tells the resolver "use the
// width of the matched operand at this index" instead of a fixed width —
// the registry's stand-in for "the result type depends on the operands"
// (e.g. uint8 + uint16 widens to uint16).
type Shape struct {
	Family           Family
	Width            int
	Signed           bool
	WidthFromOperand int    // -1 = fixed Width above; WidestOperand = widest integer operand; else index into the matched operand list
	Elem             *Shape // element shape, for FList/FVector/FSet
}

// Signature is one admissible arity/operand-shape/result combination for a
// Kind. Variadic, when true, means the final Operand shape may repeat zero
// or more times (used by Construct and Call).
type Signature struct {
	Operands []Shape
	Variadic bool
	Result   Shape
}

// Entry is one row of the registry: a Kind paired with one Signature.
// Multiple Entries may share a Kind (operator overloading across operand
// shapes); each entry lists the number and shapes of operands it accepts
// and the result shape it yields.
type Entry struct {
	Kind Kind
	Sig  Signature
}

// Registry is the immutable, process-wide catalog built by NewRegistry.
type Registry struct {
	byKind map[Kind][]*Entry
}

// Candidates returns every registered Entry for kind whose arity matches
// argc, in registration order (stable, so resolution is deterministic
// across runs).
func (r *Registry) Candidates(kind Kind, argc int) []*Entry {
	var out []*Entry
	for _, e := range r.byKind[kind] {
		n := len(e.Sig.Operands)
		if e.Sig.Variadic {
			if argc >= n-1 {
				out = append(out, e)
			}
			continue
		}
		if argc == n {
			out = append(out, e)
		}
	}
	return out
}

// ShapesForSignature expands a (possibly variadic) Signature to exactly
// argc operand shapes, repeating the final shape as needed.
func ShapesForSignature(sig Signature, argc int) []Shape {
	if !sig.Variadic || argc <= len(sig.Operands) {
		return sig.Operands
	}
	out := make([]Shape, argc)
	copy(out, sig.Operands)
	last := sig.Operands[len(sig.Operands)-1]
	for i := len(sig.Operands); i < argc; i++ {
		out[i] = last
	}
	return out
}

// byKind==nil check helper kept private; Registry is only ever constructed
// via NewRegistry so the zero value is never observed by callers.
var _ = (*Registry)(nil)
