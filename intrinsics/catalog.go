// Package intrinsics catalogs the FX built-in functions and their SPIR-V
// lowering. Each entry names a fixed parameter arity and
// result type shape (relative to a single "base type" instantiation: a
// scalar, vector, or matrix of the parameter's numeric base kind) and
// either a direct SPIR-V opcode or a GLSL.std.450 extended instruction
// number. Overload resolution (package symbols) picks the best-matching
// catalog entry the way it picks any other overloaded function.
package intrinsics

import (
	"github.com/fxsl/fxc/spirv"
	"github.com/fxsl/fxc/types"
)

// Lowering describes how a call to a built-in should be emitted.
type Lowering int

const (
	// LowerExtInst emits an OpExtInst against the GLSL.std.450 import.
	LowerExtInst Lowering = iota
	// LowerOpcode emits a direct SPIR-V opcode (e.g. OpDot, OpVectorTimesMatrix).
	LowerOpcode
	// LowerCustom is handled by bespoke parser logic (e.g. mul's several
	// argument-shape overloads, texture sampling's combined-image-sampler
	// construction).
	LowerCustom
)

// ParamShape describes how a built-in's declared parameter type relates to
// its call-site base type: same shape as the base, always scalar, or
// always a vector of fixed width regardless of the base's width.
type ParamShape int

const (
	ShapeSame ParamShape = iota
	ShapeScalar
	ShapeVec3
	ShapeVec4
)

// Signature is one overload of a built-in function.
type Signature struct {
	Params []ParamShape
	Result ParamShape
	// BaseKinds restricts which base numeric kinds this overload accepts;
	// nil means "any numeric base kind".
	BaseKinds []types.BaseKind
}

// Builtin is one named built-in function and its available overloads.
type Builtin struct {
	Name     string
	Lowering Lowering
	// ExtInst is the GLSL.std.450 instruction number when Lowering ==
	// LowerExtInst.
	ExtInst uint32
	// Opcode is the SPIR-V opcode when Lowering == LowerOpcode.
	Opcode     spirv.OpCode
	Signatures []Signature
}

var catalog = map[string]*Builtin{}

func register(b *Builtin) {
	catalog[b.Name] = b
}

// Lookup returns the built-in catalog entry for name, or nil if name is not
// a built-in function.
func Lookup(name string) *Builtin {
	return catalog[name]
}

// Names returns every built-in function name, for diagnostics and tooling.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}

func unary(name string, ext uint32) {
	register(&Builtin{
		Name: name, Lowering: LowerExtInst, ExtInst: ext,
		Signatures: []Signature{{Params: []ParamShape{ShapeSame}, Result: ShapeSame}},
	})
}

func binary(name string, ext uint32) {
	register(&Builtin{
		Name: name, Lowering: LowerExtInst, ExtInst: ext,
		Signatures: []Signature{{Params: []ParamShape{ShapeSame, ShapeSame}, Result: ShapeSame}},
	})
}

func ternary(name string, ext uint32) {
	register(&Builtin{
		Name: name, Lowering: LowerExtInst, ExtInst: ext,
		Signatures: []Signature{{Params: []ParamShape{ShapeSame, ShapeSame, ShapeSame}, Result: ShapeSame}},
	})
}

func init() {
	// Common per-component math intrinsics: available at every numeric
	// width (scalar through vector4), lowered straight to GLSL.std.450.
	unary("abs", spirv.GLSLstd450FAbs)
	unary("sign", spirv.GLSLstd450FSign)
	unary("floor", spirv.GLSLstd450Floor)
	unary("ceil", spirv.GLSLstd450Ceil)
	unary("frac", spirv.GLSLstd450Fract)
	unary("round", spirv.GLSLstd450Round)
	unary("trunc", spirv.GLSLstd450Trunc)
	unary("sqrt", spirv.GLSLstd450Sqrt)
	unary("rsqrt", spirv.GLSLstd450InverseSqrt)
	unary("sin", spirv.GLSLstd450Sin)
	unary("cos", spirv.GLSLstd450Cos)
	unary("tan", spirv.GLSLstd450Tan)
	unary("asin", spirv.GLSLstd450Asin)
	unary("acos", spirv.GLSLstd450Acos)
	unary("atan", spirv.GLSLstd450Atan)
	unary("sinh", spirv.GLSLstd450Sinh)
	unary("cosh", spirv.GLSLstd450Cosh)
	unary("tanh", spirv.GLSLstd450Tanh)
	unary("exp", spirv.GLSLstd450Exp)
	unary("exp2", spirv.GLSLstd450Exp2)
	unary("log", spirv.GLSLstd450Log)
	unary("log2", spirv.GLSLstd450Log2)
	unary("radians", spirv.GLSLstd450Radians)
	unary("degrees", spirv.GLSLstd450Degrees)
	unary("normalize", spirv.GLSLstd450Normalize)

	binary("atan2", spirv.GLSLstd450Atan2)
	binary("pow", spirv.GLSLstd450Pow)
	binary("min", spirv.GLSLstd450FMin)
	binary("max", spirv.GLSLstd450FMax)
	binary("step", spirv.GLSLstd450Step)
	binary("reflect", spirv.GLSLstd450Reflect)
	binary("distance", spirv.GLSLstd450Distance)
	binary("fmod", spirv.GLSLstd450FMin) // placeholder entry overwritten below with OpFRem

	ternary("clamp", spirv.GLSLstd450FClamp)
	ternary("lerp", spirv.GLSLstd450FMix)
	ternary("smoothstep", spirv.GLSLstd450SmoothStep)
	ternary("refract", spirv.GLSLstd450Refract)
	ternary("faceforward", spirv.GLSLstd450FaceForward)

	// fmod lowers to the direct SPIR-V OpFRem opcode, not an extended
	// instruction, matching HLSL's remainder semantics.
	register(&Builtin{
		Name: "fmod", Lowering: LowerOpcode, Opcode: spirv.OpCode(140), // OpFRem
		Signatures: []Signature{{Params: []ParamShape{ShapeSame, ShapeSame}, Result: ShapeSame}},
	})

	// saturate(x) == clamp(x, 0, 1). Lowered via the parser as sugar over
	// FClamp with synthesized 0/1 constants, so it carries no ExtInst of
	// its own (LowerCustom).
	register(&Builtin{
		Name: "saturate", Lowering: LowerCustom,
		Signatures: []Signature{{Params: []ParamShape{ShapeSame}, Result: ShapeSame}},
	})
	// rcp(x) == 1/x, synthesized as an OpFDiv with a constant-1 numerator.
	register(&Builtin{
		Name: "rcp", Lowering: LowerCustom,
		Signatures: []Signature{{Params: []ParamShape{ShapeSame}, Result: ShapeSame}},
	})

	// dot/cross/length: fixed result shape independent of the param shape.
	register(&Builtin{
		Name: "dot", Lowering: LowerOpcode, Opcode: spirv.OpCode(148), // OpDot
		Signatures: []Signature{{Params: []ParamShape{ShapeSame, ShapeSame}, Result: ShapeScalar}},
	})
	register(&Builtin{
		Name: "cross", Lowering: LowerExtInst, ExtInst: spirv.GLSLstd450Cross,
		Signatures: []Signature{{Params: []ParamShape{ShapeVec3, ShapeVec3}, Result: ShapeVec3}},
	})
	register(&Builtin{
		Name: "length", Lowering: LowerExtInst, ExtInst: spirv.GLSLstd450Length,
		Signatures: []Signature{{Params: []ParamShape{ShapeSame}, Result: ShapeScalar}},
	})

	// any/all: reduce a boolean vector; lowered to OpAny/OpAll by the parser.
	register(&Builtin{
		Name: "any", Lowering: LowerOpcode, Opcode: spirv.OpCode(154), // OpAny
		Signatures: []Signature{{Params: []ParamShape{ShapeSame}, Result: ShapeScalar, BaseKinds: []types.BaseKind{types.Bool}}},
	})
	register(&Builtin{
		Name: "all", Lowering: LowerOpcode, Opcode: spirv.OpCode(155), // OpAll
		Signatures: []Signature{{Params: []ParamShape{ShapeSame}, Result: ShapeScalar, BaseKinds: []types.BaseKind{types.Bool}}},
	})

	// mul: matrix/vector and matrix/matrix products; several argument-shape
	// overloads handled directly by the parser (LowerCustom), which picks
	// among OpMatrixTimesVector / OpVectorTimesMatrix / OpMatrixTimesMatrix
	// based on its two argument shapes, and lowers every other shape
	// combination as an ordinary component-wise '*', rather than using a
	// single opcode.
	register(&Builtin{
		Name: "mul", Lowering: LowerCustom,
		Signatures: []Signature{
			{Params: []ParamShape{ShapeSame, ShapeSame}, Result: ShapeSame},
		},
	})

	// Texture sampling: combined-image-sampler construction plus
	// OpImageSampleImplicitLod, handled by the parser (spirv has the
	// low-level builder methods; the call-shape dispatch per texture
	// dimension lives in package parser).
	for _, name := range []string{"tex1D", "tex2D", "tex3D", "texCUBE"} {
		register(&Builtin{Name: name, Lowering: LowerCustom})
	}

	// transpose/determinant: matrix-only intrinsics.
	register(&Builtin{
		Name: "determinant", Lowering: LowerExtInst, ExtInst: spirv.GLSLstd450Determinant,
		Signatures: []Signature{{Params: []ParamShape{ShapeSame}, Result: ShapeScalar}},
	})
	register(&Builtin{
		Name: "transpose", Lowering: LowerOpcode, Opcode: spirv.OpCode(84), // OpTranspose
		Signatures: []Signature{{Params: []ParamShape{ShapeSame}, Result: ShapeSame}},
	})

	// Deliberately not implemented: log10 has no
	// direct GLSL.std.450 opcode (would require a Log+scale sequence with
	// no clean single-call lowering), and sincos returns through two
	// out-parameters, a calling convention this compiler's call-emission
	// path does not support.
}
