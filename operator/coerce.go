package operator

// Coercer answers whether a value of shape `from` may be implicitly
// converted to shape `to`. A candidate signature matches an actual operand
// either when the shapes are exactly equal or when a Coercer admits the
// conversion.
type Coercer func(from, to Shape) bool

// Matches reports whether actual satisfies expected: either an exact shape
// match, a wildcard (FAny) on either side, or a registered coercion.
func (r *Registry) Matches(actual, expected Shape, coerce Coercer) (ok bool, needsCoercion bool) {
	if expected.Family == FAny || actual.Family == FAny {
		return true, false
	}
	if shapeEqual(actual, expected) {
		return true, false
	}
	if coerce != nil && coerce(actual, expected) {
		return true, true
	}
	return false, false
}

func shapeEqual(a, b Shape) bool {
	if a.Family != b.Family {
		return false
	}
	if a.Family == FInteger {
		return a.Width == b.Width && a.Signed == b.Signed
	}
	if (a.Family == FList || a.Family == FVector || a.Family == FSet) && a.Elem != nil && b.Elem != nil {
		return shapeEqual(*a.Elem, *b.Elem)
	}
	return true
}

// DefaultCoercer implements the numeric-widening and to-string/to-any
// coercions a BinPAC++-like language needs: narrower integers to wider ones
// of the same signedness, any integer to Double, Bool to any integer, Bytes
// to String, and anything to Any.
func DefaultCoercer(from, to Shape) bool {
	if to.Family == FAny {
		return true
	}
	switch {
	case from.Family == FInteger && to.Family == FInteger:
		return from.Signed == to.Signed && from.Width <= to.Width
	case from.Family == FInteger && to.Family == FDouble:
		return true
	case from.Family == FBool && to.Family == FInteger:
		return true
	case from.Family == FBytes && to.Family == FString:
		return true
	default:
		return false
	}
}
