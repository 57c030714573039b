package intrinsics

import "testing"

func TestLookupKnownBuiltins(t *testing.T) {
	for _, name := range []string{"abs", "sin", "cos", "dot", "cross", "lerp", "mul", "saturate", "rcp", "clamp", "tex2D"} {
		if Lookup(name) == nil {
			t.Errorf("Lookup(%q) = nil, want a catalog entry", name)
		}
	}
}

func TestLookupUnknownReturnsNil(t *testing.T) {
	for _, name := range []string{"log10", "sincos", "notabuiltin"} {
		if b := Lookup(name); b != nil {
			t.Errorf("Lookup(%q) = %v, want nil (not implemented)", name, b)
		}
	}
}

func TestDotResultIsScalar(t *testing.T) {
	b := Lookup("dot")
	if b == nil {
		t.Fatal("dot not found")
	}
	if len(b.Signatures) != 1 || b.Signatures[0].Result != ShapeScalar {
		t.Errorf("dot result shape = %v, want ShapeScalar", b.Signatures[0].Result)
	}
}

func TestCrossRequiresVec3(t *testing.T) {
	b := Lookup("cross")
	if b == nil {
		t.Fatal("cross not found")
	}
	sig := b.Signatures[0]
	if sig.Params[0] != ShapeVec3 || sig.Params[1] != ShapeVec3 {
		t.Errorf("cross params = %v, want [ShapeVec3 ShapeVec3]", sig.Params)
	}
}

func TestNamesNonEmpty(t *testing.T) {
	if len(Names()) == 0 {
		t.Fatal("expected a non-empty builtin catalog")
	}
}
