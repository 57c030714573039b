package fxc

import (
	"encoding/binary"
	"testing"
)

const sampleEffect = `
uniform float Intensity < string ui_label = "Intensity"; > = 1.0;

texture2D backbufferTex { Width = 1920; Height = 1080; Format = RGBA8; };
sampler2D backbuffer { Texture = backbufferTex; };

float4 psMain(float2 uv : TEXCOORD0) : COLOR {
	float4 color = tex2D(backbuffer, uv);
	return color * Intensity;
}

technique Boost {
	pass {
		PixelShader = psMain;
	}
}
`

func TestCompileSampleEffect(t *testing.T) {
	result := Compile(sampleEffect, "sample.fx")
	if !result.Success {
		t.Fatalf("compilation failed:\n%s", result.Diagnostics.String())
	}
	if len(result.SPIRV) < 20 {
		t.Fatalf("SPIR-V too short: %d bytes", len(result.SPIRV))
	}
	if magic := binary.LittleEndian.Uint32(result.SPIRV); magic != 0x07230203 {
		t.Errorf("magic = %#x, want 0x07230203", magic)
	}
	if len(result.Module.Techniques) != 1 || result.Module.Techniques[0].Name != "Boost" {
		t.Errorf("techniques = %+v, want one named Boost", result.Module.Techniques)
	}
	if len(result.Module.Uniforms) != 1 || result.Module.Uniforms[0].Name != "Intensity" {
		t.Errorf("uniforms = %+v, want one named Intensity", result.Module.Uniforms)
	}
}

func TestCompileFailureLeavesBinaryEmpty(t *testing.T) {
	result := Compile(`float f() { return missing; }`, "bad.fx")
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.SPIRV != nil {
		t.Error("expected no binary on failure")
	}
	if result.Diagnostics.String() == "" {
		t.Error("expected a non-empty diagnostics string")
	}
}

func TestCompileRecordsPragmas(t *testing.T) {
	result := CompileWithOptions(`float4 main() : COLOR { return float4(0, 0, 0, 0); }`, "p.fx",
		CompileOptions{Pragmas: []string{"reshade showfps"}})
	if !result.Success {
		t.Fatalf("compilation failed:\n%s", result.Diagnostics.String())
	}
	if len(result.Module.Pragmas) != 1 || result.Module.Pragmas[0] != "reshade showfps" {
		t.Errorf("pragmas = %v", result.Module.Pragmas)
	}
}
