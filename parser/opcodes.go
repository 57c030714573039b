package parser

import "github.com/fxsl/fxc/spirv"

// Local short names for the arithmetic/logical/comparison SPIR-V opcodes
// package spirv doesn't already expose as named constants. Numeric values
// are the stable opcode numbers from the SPIR-V specification.
const (
	opIAdd spirv.OpCode = 128
	opFAdd spirv.OpCode = 129
	opISub spirv.OpCode = 130
	opFSub spirv.OpCode = 131
	opIMul spirv.OpCode = 132
	opFMul spirv.OpCode = 133
	opUDiv spirv.OpCode = 134
	opSDiv spirv.OpCode = 135
	opFDiv spirv.OpCode = 136
	opUMod spirv.OpCode = 137
	opSRem spirv.OpCode = 138
	opFRem spirv.OpCode = 140

	opVectorTimesMatrix spirv.OpCode = 144
	opMatrixTimesVector spirv.OpCode = 145
	opMatrixTimesMatrix spirv.OpCode = 146

	opShiftRightLogical spirv.OpCode = 194
	opShiftLeftLogical  spirv.OpCode = 196
	opBitwiseOr         spirv.OpCode = 197
	opBitwiseXor        spirv.OpCode = 198
	opBitwiseAnd        spirv.OpCode = 199
	opNot               spirv.OpCode = 200

	opLogicalOr  spirv.OpCode = 166
	opLogicalAnd spirv.OpCode = 167
	opLogicalNot spirv.OpCode = 168

	opIEqual              spirv.OpCode = 170
	opINotEqual           spirv.OpCode = 171
	opUGreaterThan        spirv.OpCode = 172
	opSGreaterThan        spirv.OpCode = 173
	opUGreaterThanEqual   spirv.OpCode = 174
	opSGreaterThanEqual   spirv.OpCode = 175
	opULessThan           spirv.OpCode = 176
	opSLessThan           spirv.OpCode = 177
	opULessThanEqual      spirv.OpCode = 178
	opSLessThanEqual      spirv.OpCode = 179
	opFOrdEqual           spirv.OpCode = 180
	opFOrdNotEqual        spirv.OpCode = 182
	opFOrdLessThan        spirv.OpCode = 184
	opFOrdGreaterThan     spirv.OpCode = 186
	opFOrdLessThanEqual   spirv.OpCode = 188

	opBitcast spirv.OpCode = 124

	opSNegate = spirv.OpSNegate
	opFNegate = spirv.OpFNegate

	opConvertSToF = spirv.OpConvertSToF
	opConvertUToF = spirv.OpConvertUToF
	opConvertFToS = spirv.OpConvertFToS
	opConvertFToU = spirv.OpConvertFToU

	opFOrdGreaterThanEqual = spirv.OpFOrdGreaterThanEqual
)
