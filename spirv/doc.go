// Package spirv provides the low-level binary module builder used by the
// effect compiler to emit SPIR-V shader modules.
//
// The package owns the ordered sections of a SPIR-V module (capabilities,
// extensions/imports, debug info, annotations, types/constants/globals,
// functions), a monotonic id allocator, and the word-level binary encoder.
// It does not know anything about the FX source language: the parser
// package drives ModuleBuilder directly while it walks declarations,
// building an incremental SSA-style IR one instruction at a time.
//
//	builder := spirv.NewModuleBuilder(spirv.Version1_3)
//	builder.AddCapability(spirv.CapabilityShader)
//	builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//
//	floatType := builder.AddTypeFloat(32)
//	vec4Type := builder.AddTypeVector(floatType, 4)
//
//	binary := builder.Build()
//
// # SPIR-V structure
//
// SPIR-V modules consist of, in order:
//   - Header (magic, version, generator, bound, schema)
//   - Capabilities
//   - Extensions
//   - Extended instruction imports (GLSL.std.450)
//   - Memory model
//   - Entry points
//   - Execution modes
//   - Debug information (names, source strings)
//   - Annotations (decorations)
//   - Types, constants, and global variables
//   - Functions
//
// # References
//
// SPIR-V Specification: https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html
package spirv
