package types

import "testing"

func TestConversionRankIdentity(t *testing.T) {
	f := Scalar(Float)
	if rank := ConversionRank(f, f); rank == 0 {
		t.Fatalf("identity conversion should never be rank 0, got %d", rank)
	}
}

func TestConversionRankTable(t *testing.T) {
	cases := []struct {
		name     string
		src, dst Type
		wantZero bool
	}{
		{"int-to-float", Scalar(Int), Scalar(Float), false},
		{"float-to-int", Scalar(Float), Scalar(Int), false},
		{"bool-to-int", Scalar(Bool), Scalar(Int), false},
		{"string-to-int", Type{Base: String, Rows: 1, Cols: 1}, Scalar(Int), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rank := ConversionRank(c.src, c.dst)
			if c.wantZero && rank != 0 {
				t.Errorf("ConversionRank(%v,%v) = %d, want 0", c.src, c.dst, rank)
			}
			if !c.wantZero && rank == 0 {
				t.Errorf("ConversionRank(%v,%v) = 0, want nonzero", c.src, c.dst)
			}
		})
	}
}

func TestConversionRankBroadcastPenalty(t *testing.T) {
	scalarToVector := ConversionRank(Scalar(Float), Vector(Float, 4))
	sameRank := ConversionRank(Scalar(Float), Scalar(Float))
	if scalarToVector <= sameRank {
		t.Errorf("broadcast to vector should rank worse than identity: got %d vs %d", scalarToVector, sameRank)
	}
}

func TestConversionRankTruncationPenalty(t *testing.T) {
	vecToScalar := ConversionRank(Vector(Float, 4), Scalar(Float))
	broadcast := ConversionRank(Scalar(Float), Vector(Float, 4))
	if vecToScalar <= broadcast {
		t.Errorf("truncation should rank much worse than broadcast: got %d vs %d", vecToScalar, broadcast)
	}
}

func TestConversionRankVectorWidthMismatch(t *testing.T) {
	if rank := ConversionRank(Vector(Float, 2), Vector(Float, 4)); rank != 0 {
		t.Errorf("widening a vector implicitly should be impossible, got rank %d", rank)
	}
}

func TestTypeString(t *testing.T) {
	cases := []struct {
		typ  Type
		want string
	}{
		{Scalar(Float), "float"},
		{Vector(Float, 4), "float4"},
		{Matrix(Float, 4, 4), "float4x4"},
		{Type{Base: Int, Rows: 1, Cols: 1, ArrayLength: 4}, "int[4]"},
	}
	for _, c := range cases {
		if got := c.typ.String(); got != c.want {
			t.Errorf("Type.String() = %q, want %q", got, c.want)
		}
	}
}
