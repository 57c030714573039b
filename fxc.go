// Package fxc is a front-end compiler for the FX shading effect language.
//
// fxc compiles effect source text into a SPIR-V binary module together with
// a side table of pipeline-state metadata: techniques, passes, textures,
// samplers, and uniforms. The compilation pipeline is a single forward
// pass — lexer, recursive-descent parser with an integrated symbol table
// and type system, SPIR-V module builder — with no intermediate
// representation between the grammar and the binary encoder.
//
// Example usage:
//
//	source := `
//	float4 main() : COLOR {
//	    return float4(1.0, 0.0, 0.0, 1.0);
//	}
//	technique Red { pass P { PixelShader = main; } }
//	`
//	result := fxc.Compile(source, "red.fx")
//	if !result.Success {
//	    log.Fatal(result.Diagnostics.String())
//	}
//	os.WriteFile("red.spv", result.SPIRV, 0o644)
//
// Each call owns its lexer, parser, symbol table, and module builder;
// compilations of different sources may run concurrently. The built-in
// intrinsic catalog is immutable and shared.
package fxc

import (
	"github.com/sirupsen/logrus"

	"github.com/fxsl/fxc/diag"
	"github.com/fxsl/fxc/effect"
	"github.com/fxsl/fxc/parser"
)

// Result is the outcome of one compilation: the SPIR-V words, the effect
// metadata side table, and every diagnostic raised. When Success is false
// the binary is undefined and must not be used.
type Result struct {
	SPIRV       []byte
	Module      *effect.Module
	Diagnostics *diag.Bag
	Success     bool
}

// CompileOptions configures a compilation.
type CompileOptions struct {
	// Pragmas are caller-supplied pragma strings recorded verbatim in the
	// effect metadata.
	Pragmas []string

	// Logger, when non-nil, receives debug-level tracing of the compile
	// (success flag and technique, uniform, texture, sampler and
	// diagnostic counts). Library code never
	// logs on the parse hot path; only this summary hook.
	Logger *logrus.Logger
}

// DefaultOptions returns the default compile options.
func DefaultOptions() CompileOptions {
	return CompileOptions{}
}

// Compile compiles FX effect source under the given display filename
// using default options.
func Compile(source, filename string) *Result {
	return CompileWithOptions(source, filename, DefaultOptions())
}

// CompileWithOptions compiles FX effect source with explicit options.
func CompileWithOptions(source, filename string, opts CompileOptions) *Result {
	res := parser.Parse(source, filename)
	res.Module.Pragmas = append(res.Module.Pragmas, opts.Pragmas...)

	if opts.Logger != nil {
		opts.Logger.WithFields(logrus.Fields{
			"file":        filename,
			"success":     res.Success,
			"techniques":  len(res.Module.Techniques),
			"uniforms":    len(res.Module.Uniforms),
			"textures":    len(res.Module.Textures),
			"samplers":    len(res.Module.Samplers),
			"diagnostics": res.Diagnostics.Len(),
		}).Debug("compiled effect")
	}

	return &Result{
		SPIRV:       res.SPIRV,
		Module:      res.Module,
		Diagnostics: res.Diagnostics,
		Success:     res.Success,
	}
}
