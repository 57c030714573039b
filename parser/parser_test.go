package parser

import (
	"encoding/binary"
	"testing"

	"github.com/fxsl/fxc/spirv"
)

// decodeWords splits a SPIR-V binary into its five header words plus one
// []uint32 per instruction (word_count<<16 | opcode first).
func decodeWords(t *testing.T, bin []byte) (header [5]uint32, instructions [][]uint32) {
	t.Helper()
	if len(bin) < 20 || len(bin)%4 != 0 {
		t.Fatalf("binary length %d is not a valid SPIR-V module", len(bin))
	}
	words := make([]uint32, len(bin)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(bin[i*4:])
	}
	copy(header[:], words[:5])
	for i := 5; i < len(words); {
		count := int(words[i] >> 16)
		if count == 0 || i+count > len(words) {
			t.Fatalf("instruction at word %d has word count %d past end of module", i, count)
		}
		instructions = append(instructions, words[i:i+count])
		i += count
	}
	return header, instructions
}

func opcodesOf(instructions [][]uint32) map[spirv.OpCode]int {
	counts := map[spirv.OpCode]int{}
	for _, inst := range instructions {
		counts[spirv.OpCode(inst[0]&0xffff)]++
	}
	return counts
}

func compileOK(t *testing.T, source string) (*Result, map[spirv.OpCode]int) {
	t.Helper()
	res := Parse(source, "test.fx")
	if !res.Success {
		t.Fatalf("compilation failed:\n%s", res.Diagnostics.String())
	}
	_, instructions := decodeWords(t, res.SPIRV)
	return res, opcodesOf(instructions)
}

func hasDiagnostic(res *Result, code int) bool {
	for _, d := range res.Diagnostics.All() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestCompileSimplePixelShader(t *testing.T) {
	res, ops := compileOK(t, `float4 main() : COLOR { return float4(1, 0, 0, 1); }`)
	if res.Diagnostics.Len() != 0 {
		t.Errorf("expected no diagnostics, got:\n%s", res.Diagnostics.String())
	}
	if ops[spirv.OpConstantComposite] != 1 {
		t.Errorf("OpConstantComposite count = %d, want 1 (constant constructor folds)", ops[spirv.OpConstantComposite])
	}
	if ops[spirv.OpReturnValue] != 1 {
		t.Errorf("OpReturnValue count = %d, want 1", ops[spirv.OpReturnValue])
	}
	if ops[spirv.OpFunction] != 1 {
		t.Errorf("OpFunction count = %d, want 1", ops[spirv.OpFunction])
	}
}

func TestSPIRVHeaderAndWordCounts(t *testing.T) {
	res, _ := compileOK(t, `float4 main() : COLOR { return float4(0, 0, 0, 0); }`)
	header, instructions := decodeWords(t, res.SPIRV)
	if header[0] != spirv.MagicNumber {
		t.Errorf("magic = %#x, want %#x", header[0], spirv.MagicNumber)
	}
	if header[1] != 0x00010300 {
		t.Errorf("version word = %#x, want 1.3", header[1])
	}
	if header[4] != 0 {
		t.Errorf("schema word = %d, want 0", header[4])
	}
	if header[3] == 0 {
		t.Error("bound word is zero")
	}
	if len(instructions) == 0 {
		t.Error("expected at least one instruction")
	}
}

func TestOverloadResolutionIntVsFloat(t *testing.T) {
	res, ops := compileOK(t, `
		int f(int x) { return x; }
		float f(float x) { return x; }
		void use() { f(1); f(1.0); }
	`)
	if res.Diagnostics.Len() != 0 {
		t.Errorf("expected no diagnostics, got:\n%s", res.Diagnostics.String())
	}
	if ops[spirv.OpFunctionCall] != 2 {
		t.Errorf("OpFunctionCall count = %d, want 2", ops[spirv.OpFunctionCall])
	}
}

func TestAmbiguousOverloadDiagnosed(t *testing.T) {
	res := Parse(`
		void f(int x) {}
		void f(uint x) {}
		void use() { f(true); }
	`, "test.fx")
	if res.Success {
		t.Fatal("expected compilation to fail")
	}
	if !hasDiagnostic(res, DiagAmbiguousCall) {
		t.Errorf("expected diagnostic %d, got:\n%s", DiagAmbiguousCall, res.Diagnostics.String())
	}
}

func TestMatrixVectorMul(t *testing.T) {
	res, ops := compileOK(t, `
		uniform float4x4 M;
		float4 vs(float4 p : POSITION) : SV_Position { return mul(M, p); }
	`)
	if got := ops[spirv.OpCode(145)]; got != 1 { // OpMatrixTimesVector
		t.Errorf("OpMatrixTimesVector count = %d, want 1", got)
	}
	if len(res.Module.Uniforms) != 1 || res.Module.Uniforms[0].Name != "M" {
		t.Fatalf("uniform metadata = %+v, want one entry named M", res.Module.Uniforms)
	}
}

func TestImplicitUniformPromotion(t *testing.T) {
	res, ops := compileOK(t, `float x; void f() { x++; }`)
	if !hasDiagnostic(res, DiagImplicitUniform) {
		t.Errorf("expected warning %d, got:\n%s", DiagImplicitUniform, res.Diagnostics.String())
	}
	if len(res.Module.Uniforms) != 1 || res.Module.Uniforms[0].Name != "x" {
		t.Fatalf("uniform metadata = %+v, want one entry named x", res.Module.Uniforms)
	}
	// x++ materializes as load, add, store on the chain rooted at x.
	if ops[spirv.OpLoad] == 0 || ops[spirv.OpFAdd] == 0 || ops[spirv.OpStore] == 0 {
		t.Errorf("expected load/add/store, got loads=%d adds=%d stores=%d",
			ops[spirv.OpLoad], ops[spirv.OpFAdd], ops[spirv.OpStore])
	}
}

func TestInvalidStructMember(t *testing.T) {
	res := Parse(`struct S { float a; }; S s; float g() { return s.b; }`, "test.fx")
	if res.Success {
		t.Fatal("expected compilation to fail")
	}
	if !hasDiagnostic(res, DiagInvalidSubscript) {
		t.Errorf("expected diagnostic %d, got:\n%s", DiagInvalidSubscript, res.Diagnostics.String())
	}
	if res.SPIRV != nil {
		t.Error("expected no SPIR-V output on failure")
	}
}

func TestStructMemberAccess(t *testing.T) {
	res, ops := compileOK(t, `
		struct S { float a; float b; };
		float g() { S s; s.b = 2.0; return s.a + s.b; }
	`)
	if res.Diagnostics.Len() != 0 {
		t.Errorf("unexpected diagnostics:\n%s", res.Diagnostics.String())
	}
	if ops[spirv.OpTypeStruct] != 1 {
		t.Errorf("OpTypeStruct count = %d, want 1", ops[spirv.OpTypeStruct])
	}
	if ops[spirv.OpAccessChain] < 3 {
		t.Errorf("OpAccessChain count = %d, want >= 3", ops[spirv.OpAccessChain])
	}
}

func TestTechniqueMetadata(t *testing.T) {
	res, _ := compileOK(t, `
		texture2D tex { Width = 640; Height = 480; Format = RGBA8; };
		float4 vs() : SV_Position { return float4(0, 0, 0, 1); }
		float4 ps() : COLOR { return float4(1, 1, 1, 1); }
		technique T {
			pass P {
				VertexShader = vs;
				PixelShader = ps;
				RenderTarget0 = tex;
			}
		}
	`)
	if len(res.Module.Techniques) != 1 {
		t.Fatalf("technique count = %d, want 1", len(res.Module.Techniques))
	}
	tech := res.Module.Techniques[0]
	if tech.Name != "T" || len(tech.Passes) != 1 {
		t.Fatalf("technique = %+v, want T with one pass", tech)
	}
	pass := tech.Passes[0]
	if pass.Name != "P" || pass.VertexShader != "vs" || pass.PixelShader != "ps" {
		t.Errorf("pass = %+v, want P/vs/ps", pass)
	}
	if pass.RenderTargets[0] != "tex" {
		t.Errorf("RenderTargets[0] = %q, want tex", pass.RenderTargets[0])
	}
	if len(res.Module.Textures) != 1 || res.Module.Textures[0].Width != 640 {
		t.Errorf("texture metadata = %+v", res.Module.Textures)
	}
}

func TestEntryPointsEmitted(t *testing.T) {
	res, ops := compileOK(t, `
		float4 vs() : SV_Position { return float4(0, 0, 0, 1); }
		float4 ps() : COLOR { return float4(0, 0, 0, 1); }
		technique T { pass { VertexShader = vs; PixelShader = ps; } }
	`)
	if ops[spirv.OpEntryPoint] != 2 {
		t.Errorf("OpEntryPoint count = %d, want 2 (vertex + fragment)", ops[spirv.OpEntryPoint])
	}
	_ = res
}

func TestConstantFoldingOfInitializer(t *testing.T) {
	res, _ := compileOK(t, `const int a = 2 + 3 * 4; int f() { return a; }`)
	_, instructions := decodeWords(t, res.SPIRV)
	found14 := false
	for _, inst := range instructions {
		op := spirv.OpCode(inst[0] & 0xffff)
		switch op {
		case spirv.OpConstant:
			if len(inst) == 4 && inst[3] == 14 {
				found14 = true
			}
		case spirv.OpIAdd, spirv.OpIMul:
			t.Errorf("expected no %v in a folded initializer", op)
		}
	}
	if !found14 {
		t.Error("expected an OpConstant with value 14")
	}
}

func TestTypeInterning(t *testing.T) {
	_, ops := compileOK(t, `
		float f(float x) { float y = x * 2.0; return y + 1.0; }
		float g(float x) { return f(x) * 3.0; }
	`)
	if ops[spirv.OpTypeFloat] != 1 {
		t.Errorf("OpTypeFloat count = %d, want 1 (interned)", ops[spirv.OpTypeFloat])
	}
}

func TestControlFlowShapes(t *testing.T) {
	_, ops := compileOK(t, `
		int f(int n) {
			int acc = 0;
			for (int i = 0; i < n; i++) {
				if (i == 3) continue;
				acc += i;
			}
			while (acc > 100) { acc -= 10; }
			return acc;
		}
	`)
	if ops[spirv.OpLoopMerge] != 2 {
		t.Errorf("OpLoopMerge count = %d, want 2", ops[spirv.OpLoopMerge])
	}
	if ops[spirv.OpSelectionMerge] != 1 {
		t.Errorf("OpSelectionMerge count = %d, want 1", ops[spirv.OpSelectionMerge])
	}
	if ops[spirv.OpBranchConditional] < 3 {
		t.Errorf("OpBranchConditional count = %d, want >= 3", ops[spirv.OpBranchConditional])
	}
}

func TestSwitchLowering(t *testing.T) {
	_, ops := compileOK(t, `
		int f(int n) {
			int r = 0;
			switch (n) {
			case 0: r = 1; break;
			case 1:
			case 2: r = 2; break;
			default: r = 3; break;
			}
			return r;
		}
	`)
	if ops[spirv.OpSwitch] != 1 {
		t.Errorf("OpSwitch count = %d, want 1", ops[spirv.OpSwitch])
	}
}

func TestDiscardEmitsKill(t *testing.T) {
	_, ops := compileOK(t, `
		float4 ps(float4 c : COLOR) : COLOR {
			if (c.a < 0.5) discard;
			return c;
		}
	`)
	if ops[spirv.OpKill] != 1 {
		t.Errorf("OpKill count = %d, want 1", ops[spirv.OpKill])
	}
}

func TestSwizzleForms(t *testing.T) {
	res := Parse(`
		float4 f(float4 v) {
			float2 a = v.xy;
			float4 b = v.wzyx;
			float r = v.r;
			v.x = r;
			return b.xxxx;
		}
	`, "test.fx")
	if !res.Success {
		t.Fatalf("compilation failed:\n%s", res.Diagnostics.String())
	}
}

func TestMixedSwizzleSetRejected(t *testing.T) {
	res := Parse(`float2 f(float4 v) { return v.xg; }`, "test.fx")
	if res.Success {
		t.Fatal("expected failure for mixed swizzle sets")
	}
	if !hasDiagnostic(res, DiagInvalidSubscript) {
		t.Errorf("expected diagnostic %d, got:\n%s", DiagInvalidSubscript, res.Diagnostics.String())
	}
}

func TestMatrixElementAccess(t *testing.T) {
	res := Parse(`
		uniform float4x4 M;
		float f() { return M._11 + M._m33; }
	`, "test.fx")
	if !res.Success {
		t.Fatalf("compilation failed:\n%s", res.Diagnostics.String())
	}
}

func TestIntrinsicSignatureShapes(t *testing.T) {
	res := Parse(`float3 g(float3 a, float3 b) { return cross(a, b); }`, "test.fx")
	if !res.Success {
		t.Fatalf("compilation failed:\n%s", res.Diagnostics.String())
	}

	res = Parse(`float2 f(float2 a, float2 b) { return cross(a, b); }`, "test.fx")
	if res.Success {
		t.Fatal("expected failure for cross on float2 arguments")
	}
	if !hasDiagnostic(res, DiagNoOverload) {
		t.Errorf("expected diagnostic %d, got:\n%s", DiagNoOverload, res.Diagnostics.String())
	}
}

func TestRecursionRejected(t *testing.T) {
	res := Parse(`int f(int x) { return f(x); }`, "test.fx")
	if res.Success {
		t.Fatal("expected failure for a recursive call")
	}
	if !hasDiagnostic(res, DiagRecursiveCall) {
		t.Errorf("expected diagnostic %d, got:\n%s", DiagRecursiveCall, res.Diagnostics.String())
	}
}

func TestReturnValueInVoidFunction(t *testing.T) {
	res := Parse(`void f() { return 1; }`, "test.fx")
	if res.Success {
		t.Fatal("expected failure")
	}
	if !hasDiagnostic(res, DiagReturnValueInVoid) {
		t.Errorf("expected diagnostic %d, got:\n%s", DiagReturnValueInVoid, res.Diagnostics.String())
	}
}

func TestMissingReturnValue(t *testing.T) {
	res := Parse(`int f() { return; }`, "test.fx")
	if res.Success {
		t.Fatal("expected failure")
	}
	if !hasDiagnostic(res, DiagMissingReturnValue) {
		t.Errorf("expected diagnostic %d, got:\n%s", DiagMissingReturnValue, res.Diagnostics.String())
	}
}

func TestUndeclaredIdentifier(t *testing.T) {
	res := Parse(`float f() { return missing; }`, "test.fx")
	if res.Success {
		t.Fatal("expected failure")
	}
	if !hasDiagnostic(res, DiagUndeclaredSymbol) {
		t.Errorf("expected diagnostic %d, got:\n%s", DiagUndeclaredSymbol, res.Diagnostics.String())
	}
}

func TestConstUniformRejected(t *testing.T) {
	res := Parse(`uniform const float x = 1.0;`, "test.fx")
	if res.Success {
		t.Fatal("expected failure for uniform const")
	}
	if !hasDiagnostic(res, DiagConstUniform) {
		t.Errorf("expected diagnostic %d, got:\n%s", DiagConstUniform, res.Diagnostics.String())
	}
}

func TestCastDisambiguation(t *testing.T) {
	res := Parse(`
		float f(int i) {
			float a = (float)i;
			float b = (a + 1.0);
			return a + b;
		}
	`, "test.fx")
	if !res.Success {
		t.Fatalf("compilation failed:\n%s", res.Diagnostics.String())
	}
}

func TestSamplerAndTextureDeclarations(t *testing.T) {
	res, ops := compileOK(t, `
		texture2D colorTex { Width = 1920; Height = 1080; Format = RGBA16F; };
		sampler2D colorSmp {
			Texture = colorTex;
			AddressU = REPEAT;
			AddressV = CLAMP;
			MinFilter = LINEAR;
		};
		float4 ps(float2 uv : TEXCOORD0) : COLOR { return tex2D(colorSmp, uv); }
	`)
	if len(res.Module.Samplers) != 1 {
		t.Fatalf("sampler count = %d, want 1", len(res.Module.Samplers))
	}
	smp := res.Module.Samplers[0]
	if smp.Texture != "colorTex" {
		t.Errorf("sampler texture = %q, want colorTex", smp.Texture)
	}
	if smp.AddressU != 1 || smp.AddressV != 3 {
		t.Errorf("address modes = %d/%d, want wrap(1)/clamp(3)", smp.AddressU, smp.AddressV)
	}
	if ops[spirv.OpImageSampleImplicitLod] != 1 {
		t.Errorf("OpImageSampleImplicitLod count = %d, want 1", ops[spirv.OpImageSampleImplicitLod])
	}
}

func TestNamespaceScoping(t *testing.T) {
	res := Parse(`
		namespace fx {
			float helper(float x) { return x * 2.0; }
		}
		float f() { return fx::helper(1.0); }
	`, "test.fx")
	if !res.Success {
		t.Fatalf("compilation failed:\n%s", res.Diagnostics.String())
	}
}

func TestPreprocessorLinesIgnored(t *testing.T) {
	res := Parse("#define FOO 1\nfloat4 main() : COLOR { return float4(0, 0, 0, 0); }\n", "test.fx")
	if !res.Success {
		t.Fatalf("compilation failed:\n%s", res.Diagnostics.String())
	}
}

func TestAnnotations(t *testing.T) {
	res, _ := compileOK(t, `
		uniform float Strength < string ui_type = "slider"; float ui_min = 0.0; float ui_max = 1.0; > = 0.5;
	`)
	if len(res.Module.Uniforms) != 1 {
		t.Fatalf("uniform count = %d, want 1", len(res.Module.Uniforms))
	}
	u := res.Module.Uniforms[0]
	if v, ok := u.Annotations["ui_type"]; !ok || !v.IsString || v.Str != "slider" {
		t.Errorf("ui_type annotation = %+v, want string slider", u.Annotations)
	}
	if !u.HasInitializer {
		t.Error("expected HasInitializer")
	}
	if !hasDiagnostic(res, DiagAnnotationPrefix) {
		t.Errorf("expected deprecation warning %d for typed annotations", DiagAnnotationPrefix)
	}
}

func TestSyntaxErrorRecovery(t *testing.T) {
	res := Parse(`
		float f( { return 1.0; }
		float g() { return 2.0; }
		float h() { return missing; }
	`, "test.fx")
	if res.Success {
		t.Fatal("expected failure")
	}
	// Recovery should reach h() and still report the undeclared symbol.
	if !hasDiagnostic(res, DiagUndeclaredSymbol) {
		t.Errorf("expected parser to recover and diagnose h(), got:\n%s", res.Diagnostics.String())
	}
}
