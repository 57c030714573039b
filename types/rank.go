package types

// baseRank is the scalar-to-scalar conversion rank table,
// indexed [src][dst] over {bool, int, uint, float}. 0 means "no conversion".
var baseRank = [4][4]int{
	// dst: bool int uint float
	/* bool  */ {0, 5, 5, 5},
	/* int   */ {4, 0, 3, 5},
	/* uint  */ {4, 2, 0, 5},
	/* float */ {4, 4, 4, 0},
}

func baseIndex(k BaseKind) (int, bool) {
	switch k {
	case Bool:
		return 0, true
	case Int:
		return 1, true
	case Uint:
		return 2, true
	case Float:
		return 3, true
	default:
		return 0, false
	}
}

// ConversionRank returns the rank of converting a value of type src to type
// dst: 0 means impossible, smaller positive values mean a closer
// match. Non-numeric types (string, texture, sampler, struct,
// void) never convert, except a type to itself (rank 1 — an identity
// conversion, needed so exact-match overloads always beat any numeric
// coercion).
func ConversionRank(src, dst Type) int {
	if src.Equal(dst) {
		return 1
	}
	if !src.Base.IsNumeric() || !dst.Base.IsNumeric() {
		return 0
	}
	if src.IsArray() != dst.IsArray() || (src.IsArray() && src.ArrayLength != dst.ArrayLength) {
		return 0
	}

	si, ok := baseIndex(src.Base)
	if !ok {
		return 0
	}
	di, ok := baseIndex(dst.Base)
	if !ok {
		return 0
	}
	rank := baseRank[si][di]
	if rank == 0 && si != di {
		return 0
	}

	switch {
	case src.IsScalar() && dst.IsScalar():
		return rank + 1
	case src.IsScalar() && (dst.IsVector() || dst.IsMatrix()):
		// Scalar broadcast to vector/matrix: +2 modifier.
		return rank + 2 + 1
	case (src.IsVector() || src.IsMatrix()) && dst.IsScalar():
		// Truncation to scalar: +32 modifier.
		return rank + 32 + 1
	case src.IsVector() && dst.IsVector():
		if dst.Rows > src.Rows {
			return 0 // can't widen a vector implicitly
		}
		if dst.Rows < src.Rows {
			return rank + 32 + 1 // truncation
		}
		return rank + 1
	case src.IsMatrix() && dst.IsMatrix():
		if dst.Rows > src.Rows || dst.Cols > src.Cols {
			return 0
		}
		if dst.Rows < src.Rows || dst.Cols < src.Cols {
			return rank + 32 + 1
		}
		return rank + 1
	default:
		// Vector<->matrix direct conversion is not supported.
		return 0
	}
}

// CanConvert reports whether src implicitly converts to dst.
func CanConvert(src, dst Type) bool {
	return ConversionRank(src, dst) > 0
}
