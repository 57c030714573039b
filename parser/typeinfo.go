package parser

import (
	"math"

	"github.com/fxsl/fxc/spirv"
	"github.com/fxsl/fxc/types"
)

// typeRegistry interns types.Type values into SPIR-V OpType* ids, mirroring
// the deduplication every SPIR-V producer performs since re-emitting an
// identical OpTypeFloat twice is invalid. Constants are interned per
// (typeID, bit-pattern) too, so that e.g. the literal 1.0 used in ten
// different expressions contributes exactly one OpConstant.
type typeRegistry struct {
	b *spirv.ModuleBuilder

	scalarCache map[scalarKey]uint32
	vectorCache map[vectorKey]uint32
	matrixCache map[matrixKey]uint32
	arrayCache  map[arrayKey]uint32
	ptrCache    map[ptrKey]uint32

	intConstCache   map[intConstKey]uint32
	floatConstCache map[floatConstKey]uint32
	boolConstCache  map[bool]uint32
	compositeCache  map[string]uint32
	funcTypeCache   map[string]uint32

	// sampledImageTypeID/image2DTypeID intern the single OpTypeSampledImage
	// and OpTypeImage used for every texture and sampler declaration; FX
	// effects overwhelmingly sample 2D textures, so this compiler interns
	// one combined-image-sampler type rather than tracking per-dimension
	// variants (1D/3D/cube sampling is accepted by the grammar but shares
	// this same SPIR-V shape).
	sampledImageTypeID uint32
	image2DTypeID      uint32
}

// Image2DType returns (creating once) the OpTypeImage id shared by every
// texture global.
func (r *typeRegistry) Image2DType() uint32 {
	if r.image2DTypeID == 0 {
		float := r.scalarID(types.Float)
		r.image2DTypeID = r.b.AddTypeImage(float, spirv.Dim2D, 0, 0, 0, 1, spirv.ImageFormatUnknown)
	}
	return r.image2DTypeID
}

// SampledImageType returns (creating once) the OpTypeSampledImage id used
// to declare every `sampler*D` global.
func (r *typeRegistry) SampledImageType() uint32 {
	if r.sampledImageTypeID == 0 {
		r.sampledImageTypeID = r.b.AddTypeSampledImage(r.Image2DType())
	}
	return r.sampledImageTypeID
}

type scalarKey struct {
	base types.BaseKind
}
type vectorKey struct {
	base types.BaseKind
	rows int
}
type matrixKey struct {
	base       types.BaseKind
	rows, cols int
}
type arrayKey struct {
	elem   uint32
	length int
}
type ptrKey struct {
	base    uint32
	storage spirv.StorageClass
}
type intConstKey struct {
	typeID uint32
	bits   uint32
}
type floatConstKey struct {
	typeID uint32
	bits   uint64
}

func newTypeRegistry(b *spirv.ModuleBuilder) *typeRegistry {
	return &typeRegistry{
		b:               b,
		scalarCache:     map[scalarKey]uint32{},
		vectorCache:     map[vectorKey]uint32{},
		matrixCache:     map[matrixKey]uint32{},
		arrayCache:      map[arrayKey]uint32{},
		ptrCache:        map[ptrKey]uint32{},
		intConstCache:   map[intConstKey]uint32{},
		floatConstCache: map[floatConstKey]uint32{},
		boolConstCache:  map[bool]uint32{},
		compositeCache:  map[string]uint32{},
		funcTypeCache:   map[string]uint32{},
	}
}

// scalarID returns the interned SPIR-V type id for a single base kind
// (bool/int/uint/float, all 32-bit; FX has no native half/double SPIR-V
// distinction beyond the literal's own LiteralKind).
func (r *typeRegistry) scalarID(base types.BaseKind) uint32 {
	key := scalarKey{base}
	if id, ok := r.scalarCache[key]; ok {
		return id
	}
	var id uint32
	switch base {
	case types.Bool:
		id = r.b.AddTypeBool()
	case types.Int:
		id = r.b.AddTypeInt(32, true)
	case types.Uint:
		id = r.b.AddTypeInt(32, false)
	case types.Float:
		id = r.b.AddTypeFloat(32)
	case types.Void:
		id = r.b.AddTypeVoid()
	default:
		id = r.b.AddTypeVoid()
	}
	r.scalarCache[key] = id
	return id
}

// ID returns the interned SPIR-V type id for any Type value: scalar,
// vector, matrix (as an array of column vectors), or fixed-length array.
func (r *typeRegistry) ID(t types.Type) uint32 {
	if t.IsArray() && !t.IsUnsizedArray() {
		elem := t.WithoutArray()
		elemID := r.ID(elem)
		key := arrayKey{elem: elemID, length: t.ArrayLength}
		if id, ok := r.arrayCache[key]; ok {
			return id
		}
		lengthConst := r.IntConstant(types.Scalar(types.Uint), uint32(t.ArrayLength))
		id := r.b.AddTypeArray(elemID, lengthConst)
		r.arrayCache[key] = id
		return id
	}
	switch {
	case t.Base == types.Struct:
		// Struct types are emitted once, at their declaration; the Type
		// value carries the OpTypeStruct id along.
		return t.StructID
	case t.IsMatrix():
		key := matrixKey{base: t.Base, rows: t.Rows, cols: t.Cols}
		if id, ok := r.matrixCache[key]; ok {
			return id
		}
		col := r.ID(types.Vector(t.Base, t.Rows))
		id := r.b.AddTypeMatrix(col, uint32(t.Cols))
		r.matrixCache[key] = id
		return id
	case t.IsVector():
		key := vectorKey{base: t.Base, rows: t.Rows}
		if id, ok := r.vectorCache[key]; ok {
			return id
		}
		comp := r.scalarID(t.Base)
		id := r.b.AddTypeVector(comp, uint32(t.Rows))
		r.vectorCache[key] = id
		return id
	default:
		return r.scalarID(t.Base)
	}
}

// PointerID returns a pointer-to-t type id in the given storage class.
func (r *typeRegistry) PointerID(t types.Type, storage spirv.StorageClass) uint32 {
	base := r.ID(t)
	key := ptrKey{base: base, storage: storage}
	if id, ok := r.ptrCache[key]; ok {
		return id
	}
	id := r.b.AddTypePointer(storage, base)
	r.ptrCache[key] = id
	return id
}

// IntConstant interns an integer/bool constant of type t with the given
// raw 32-bit pattern (the caller picks signed vs. unsigned reinterpretation).
func (r *typeRegistry) IntConstant(t types.Type, bits uint32) uint32 {
	typeID := r.ID(t)
	key := intConstKey{typeID: typeID, bits: bits}
	if id, ok := r.intConstCache[key]; ok {
		return id
	}
	id := r.b.AddConstant(typeID, bits)
	r.intConstCache[key] = id
	return id
}

// FunctionType interns OpTypeFunction per (return, params) signature.
func (r *typeRegistry) FunctionType(returnID uint32, paramIDs []uint32) uint32 {
	key := make([]byte, 0, 4*(len(paramIDs)+1))
	for _, w := range append([]uint32{returnID}, paramIDs...) {
		key = append(key, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	if id, ok := r.funcTypeCache[string(key)]; ok {
		return id
	}
	id := r.b.AddTypeFunction(returnID, paramIDs...)
	r.funcTypeCache[string(key)] = id
	return id
}

// BoolConstant interns OpConstantTrue/OpConstantFalse.
func (r *typeRegistry) BoolConstant(v bool) uint32 {
	if id, ok := r.boolConstCache[v]; ok {
		return id
	}
	id := r.b.AddConstantBool(r.scalarID(types.Bool), v)
	r.boolConstCache[v] = id
	return id
}

// CompositeConstant interns an OpConstantComposite of already-interned
// constituent constants, so a constructor whose operands are all constants
// folds to a single reusable constant id.
func (r *typeRegistry) CompositeConstant(t types.Type, constituents []uint32) uint32 {
	typeID := r.ID(t)
	key := make([]byte, 0, 4*(len(constituents)+1))
	for _, w := range append([]uint32{typeID}, constituents...) {
		key = append(key, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	if id, ok := r.compositeCache[string(key)]; ok {
		return id
	}
	id := r.b.AddConstantComposite(typeID, constituents...)
	r.compositeCache[string(key)] = id
	return id
}

// FloatConstant interns a 32-bit float constant of type t.
func (r *typeRegistry) FloatConstant(t types.Type, value float32) uint32 {
	typeID := r.ID(t)
	key := floatConstKey{typeID: typeID, bits: uint64(math.Float32bits(value))}
	if id, ok := r.floatConstCache[key]; ok {
		return id
	}
	id := r.b.AddConstantFloat32(typeID, value)
	r.floatConstCache[key] = id
	return id
}
