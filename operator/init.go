package operator

// global is the process-wide registry, built once by init() into an
// immutable structure keyed by (kind, arity) and handed to callers by
// reference.
var global *Registry

// Global returns the process-wide immutable Operator Registry.
func Global() *Registry { return global }

func init() {
	global = NewRegistry()
}

// NewRegistry builds a fresh, fully populated registry. Exposed (rather
// than only the package-level Global) so tests can exercise ambiguity and
// candidate-filtering in isolation without depending on global state.
func NewRegistry() *Registry {
	r := &Registry{byKind: make(map[Kind][]*Entry)}

	register := func(k Kind, sig Signature) {
		r.byKind[k] = append(r.byKind[k], &Entry{Kind: k, Sig: sig})
	}

	// Arithmetic: Integer op Integer -> wider Integer; Double op Double ->
	// Double; Integer op Double -> Double (coercion handles the Integer
	// side). One entry per kind suffices because FInteger/FDouble operand
	// shapes are wildcarded on width and matched structurally by the
	// resolver's Coercer, not by enumerating every width pair here.
	for _, k := range []Kind{Plus, Minus, Mult, Div, Mod} {
		register(k, Signature{
			Operands: []Shape{{Family: FInteger}, {Family: FInteger}},
			Result:   Shape{Family: FInteger, WidthFromOperand: widestOperand},
		})
		register(k, Signature{
			Operands: []Shape{{Family: FDouble}, {Family: FDouble}},
			Result:   Shape{Family: FDouble, WidthFromOperand: -1},
		})
	}
	register(Negate, Signature{
		Operands: []Shape{{Family: FInteger}},
		Result:   Shape{Family: FInteger, WidthFromOperand: 0},
	})
	register(Negate, Signature{
		Operands: []Shape{{Family: FDouble}},
		Result:   Shape{Family: FDouble, WidthFromOperand: -1},
	})

	// Relational: any two operands of the same coercible family -> Bool.
	for _, k := range []Kind{Equal, NotEqual, Less, LessEqual, Greater, GreaterEqual} {
		register(k, Signature{
			Operands: []Shape{{Family: FAny}, {Family: FAny}},
			Result:   Shape{Family: FBool, WidthFromOperand: -1},
		})
	}

	// Logical: Bool op Bool -> Bool.
	register(LogicalAnd, Signature{Operands: []Shape{{Family: FBool}, {Family: FBool}}, Result: Shape{Family: FBool}})
	register(LogicalOr, Signature{Operands: []Shape{{Family: FBool}, {Family: FBool}}, Result: Shape{Family: FBool}})
	register(LogicalNot, Signature{Operands: []Shape{{Family: FBool}}, Result: Shape{Family: FBool}})

	// Indexing: container[Integer] -> element type (the resolver fetches
	// the real element ast.Type off the container operand; FAny here
	// stands for "whatever the container's element shape turns out to
	// be", resolved structurally rather than duplicated per container
	// kind).
	for _, fam := range []Family{FList, FVector, FMap} {
		register(Index, Signature{
			Operands: []Shape{{Family: fam}, {Family: FInteger}},
			Result:   Shape{Family: FAny},
		})
	}

	// Call: Function operand plus a variadic argument tail -> the
	// function's declared result shape, filled in by the resolver from
	// the Function type's own Result field (FAny placeholder here).
	register(Call, Signature{
		Operands: []Shape{{Family: FFunction}, {Family: FAny}},
		Variadic: true,
		Result:   Shape{Family: FAny},
	})

	// Attribute access: Unit.field -> the field's declared type, and
	// EmbeddedObject.member similarly; resolved structurally by the
	// resolver (it is the only operator whose second "operand" is a bare
	// name, not a typed expression).
	register(Attribute, Signature{
		Operands: []Shape{{Family: FUnit}, {Family: FAny}},
		Result:   Shape{Family: FAny},
	})
	register(Attribute, Signature{
		Operands: []Shape{{Family: FEmbeddedObject}, {Family: FAny}},
		Result:   Shape{Family: FAny},
	})

	// Coerce: explicit cast operator, e.g. `x : Type` attribute-driven
	// coercion or an explicit cast expression; always admits anything to
	// anything, with DefaultCoercer (or a user conversion, out of scope
	// here) validating the specific pair at resolution time.
	register(Coerce, Signature{
		Operands: []Shape{{Family: FAny}},
		Result:   Shape{Family: FAny},
	})

	// Construct: container/tuple constructor literals, e.g. `[1, 2, 3]`.
	register(Construct, Signature{
		Operands: []Shape{{Family: FAny}},
		Variadic: true,
		Result:   Shape{Family: FAny},
	})

	return r
}

// widestOperand is a WidthFromOperand sentinel meaning "use whichever
// matched Integer operand has the greater width" rather than copying one
// fixed index; passes.OperatorResolver special-cases this value via the
// exported WidestOperand alias below.
const widestOperand = -2

// WidestOperand is the WidthFromOperand sentinel arithmetic signatures use
// to mean "take the wider of the matched Integer operands" rather than a
// fixed width or a copy of one specific operand's width.
const WidestOperand = widestOperand
