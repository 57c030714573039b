// Package types implements the FX type model: scalar/vector/matrix shapes,
// qualifiers, and the conversion-rank table used for overload resolution
// and implicit-conversion diagnostics.
package types

// BaseKind enumerates the base kind of a Type.
type BaseKind int

const (
	Void BaseKind = iota
	Bool
	Int
	Uint
	Float
	String
	Texture
	Sampler
	Struct
)

func (k BaseKind) String() string {
	switch k {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case String:
		return "string"
	case Texture:
		return "texture"
	case Sampler:
		return "sampler"
	case Struct:
		return "struct"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether values of this base kind participate in
// arithmetic and conversion ranking.
func (k BaseKind) IsNumeric() bool {
	switch k {
	case Bool, Int, Uint, Float:
		return true
	default:
		return false
	}
}

// Qualifier is a bitset of storage/usage/interpolation qualifiers.
type Qualifier uint32

const (
	QualExtern Qualifier = 1 << iota
	QualStatic
	QualUniform
	QualVolatile
	QualPrecise
	QualIn
	QualOut
	QualConst
	QualLinear
	QualNoperspective
	QualCentroid
	QualNointerpolation
)

func (q Qualifier) Has(flag Qualifier) bool { return q&flag != 0 }

// Type is the value type attached to every symbol and expression.
//
// Shape rules: scalar iff Rows==Cols==1 and not an array
// and numeric; vector iff Rows>1 && Cols==1; matrix iff Cols>1.
// ArrayLength 0 means not an array, -1 means unsized.
type Type struct {
	Base        BaseKind
	Rows        int
	Cols        int
	ArrayLength int
	Qualifiers  Qualifier
	// StructID identifies the defining OpTypeStruct declaration when
	// Base == Struct; the symbol table resolves it to a struct symbol.
	StructID uint32
	// StructName carries the declared struct's name for diagnostics and
	// member lookup without a second symbol-table round trip.
	StructName string
}

// Scalar constructs a 1x1 scalar type of the given base kind.
func Scalar(base BaseKind) Type {
	return Type{Base: base, Rows: 1, Cols: 1}
}

// Vector constructs a Rows-component column vector.
func Vector(base BaseKind, rows int) Type {
	return Type{Base: base, Rows: rows, Cols: 1}
}

// Matrix constructs a Rows x Cols matrix.
func Matrix(base BaseKind, rows, cols int) Type {
	return Type{Base: base, Rows: rows, Cols: cols}
}

// VoidType is the canonical void type value.
var VoidType = Type{Base: Void, Rows: 1, Cols: 1}

// IsVoid reports whether t is the void type.
func (t Type) IsVoid() bool { return t.Base == Void }

// IsArray reports whether t is an array (fixed or unsized).
func (t Type) IsArray() bool { return t.ArrayLength != 0 }

// IsUnsizedArray reports whether t is an unsized array (ArrayLength == -1).
func (t Type) IsUnsizedArray() bool { return t.ArrayLength == -1 }

// IsScalar reports whether t is a numeric 1x1, non-array type.
func (t Type) IsScalar() bool {
	return t.Rows == 1 && t.Cols == 1 && !t.IsArray() && t.Base.IsNumeric()
}

// IsVector reports whether t is a column vector (Rows>1, Cols==1).
func (t Type) IsVector() bool {
	return t.Rows > 1 && t.Cols == 1
}

// IsMatrix reports whether t is a matrix (Cols>1).
func (t Type) IsMatrix() bool {
	return t.Cols > 1
}

// Components returns the total scalar component count of the type (rows *
// cols), used by constructor arity checks.
func (t Type) Components() int {
	return t.Rows * t.Cols
}

// WithoutArray returns a copy of t with ArrayLength reset to 0. Used when
// indexing into an array.
func (t Type) WithoutArray() Type {
	t.ArrayLength = 0
	return t
}

// ElementType returns the type obtained by one level of "[]" indexing:
// matrix -> column vector (cols reduced to 1), vector ->
// scalar, array -> element type (array-ness dropped).
func (t Type) ElementType() Type {
	switch {
	case t.IsArray():
		return t.WithoutArray()
	case t.IsMatrix():
		return Type{Base: t.Base, Rows: t.Rows, Cols: 1, Qualifiers: t.Qualifiers}
	case t.IsVector():
		return Type{Base: t.Base, Rows: 1, Cols: 1, Qualifiers: t.Qualifiers}
	default:
		return t
	}
}

// Equal reports structural equality ignoring qualifiers, mirroring how the
// type registry interns SPIR-V types (qualifiers have no SPIR-V representation).
func (t Type) Equal(o Type) bool {
	return t.Base == o.Base && t.Rows == o.Rows && t.Cols == o.Cols &&
		t.ArrayLength == o.ArrayLength && t.StructName == o.StructName
}

// String renders a human-readable type name for diagnostics, e.g. "float4",
// "int3x3", "float[4]".
func (t Type) String() string {
	name := t.Base.String()
	if t.Base == Struct {
		name = t.StructName
	}
	switch {
	case t.IsMatrix():
		name = name + dim(t.Rows) + "x" + dim(t.Cols)
	case t.IsVector():
		name = name + dim(t.Rows)
	}
	if t.ArrayLength > 0 {
		name += "[" + dim(t.ArrayLength) + "]"
	} else if t.IsUnsizedArray() {
		name += "[]"
	}
	return name
}

func dim(n int) string {
	digits := "0123456789"
	if n < 10 {
		return string(digits[n])
	}
	// Dimensions are bounded to 1..4 by the grammar; anything larger is a
	// malformed array length that diagnostics render numerically anyway.
	out := make([]byte, 0, 4)
	for n > 0 {
		out = append([]byte{digits[n%10]}, out...)
		n /= 10
	}
	return string(out)
}
