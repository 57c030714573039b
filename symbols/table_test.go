package symbols

import (
	"testing"

	"github.com/fxsl/fxc/types"
)

func TestInsertFindGlobalScope(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(&Symbol{Name: "x", Kind: KindVariable, Type: types.Scalar(types.Float)})

	sym, ok := tbl.Find("x")
	if !ok {
		t.Fatal("expected to find 'x'")
	}
	if sym.Type.Base != types.Float {
		t.Errorf("Type.Base = %v, want Float", sym.Type.Base)
	}
}

func TestScopeShadowing(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(&Symbol{Name: "x", Kind: KindVariable, Type: types.Scalar(types.Float)})

	tbl.EnterScope()
	tbl.Insert(&Symbol{Name: "x", Kind: KindVariable, Type: types.Scalar(types.Int)})
	inner, _ := tbl.Find("x")
	if inner.Type.Base != types.Int {
		t.Errorf("inner scope lookup = %v, want Int (shadowing)", inner.Type.Base)
	}
	tbl.LeaveScope()

	outer, _ := tbl.Find("x")
	if outer.Type.Base != types.Float {
		t.Errorf("after LeaveScope lookup = %v, want Float (outer restored)", outer.Type.Base)
	}
}

func TestNamespaceQualifiedLookup(t *testing.T) {
	tbl := NewTable()
	tbl.EnterNamespace("ps")
	tbl.Insert(&Symbol{Name: "helper", Kind: KindFunction, Type: types.VoidType})
	tbl.LeaveNamespace()

	if _, ok := tbl.Find("ps::helper"); !ok {
		t.Error("expected global scope to carry the qualified name 'ps::helper'")
	}
	if _, ok := tbl.Find("helper"); !ok {
		t.Error("expected global scope to also carry the bare name 'helper'")
	}
}

func TestResolveCallExactMatchWins(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(&Symbol{
		Name: "f", Kind: KindFunction, Type: types.Scalar(types.Float),
		Params: []types.Type{types.Scalar(types.Float)},
	})
	tbl.Insert(&Symbol{
		Name: "f", Kind: KindFunction, Type: types.Scalar(types.Int),
		Params: []types.Type{types.Scalar(types.Int)},
	})

	sym, err := tbl.ResolveCall("f", []types.Type{types.Scalar(types.Int)})
	if err != nil {
		t.Fatalf("ResolveCall: %v", err)
	}
	if sym.Type.Base != types.Int {
		t.Errorf("resolved overload returns %v, want Int (exact match)", sym.Type.Base)
	}
}

func TestResolveCallNoMatchingArity(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(&Symbol{
		Name: "f", Kind: KindFunction, Type: types.VoidType,
		Params: []types.Type{types.Scalar(types.Float)},
	})
	_, err := tbl.ResolveCall("f", []types.Type{types.Scalar(types.Float), types.Scalar(types.Float)})
	if err == nil {
		t.Fatal("expected an error for mismatched arity")
	}
}

func TestResolveCallAmbiguous(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(&Symbol{
		Name: "f", Kind: KindFunction, Type: types.VoidType,
		Params: []types.Type{types.Scalar(types.Int)},
	})
	tbl.Insert(&Symbol{
		Name: "f", Kind: KindFunction, Type: types.VoidType,
		Params: []types.Type{types.Scalar(types.Uint)},
	})
	// bool->int and bool->uint both rank 5 per the conversion table, so a
	// bool argument should be ambiguous between these two overloads.
	_, err := tbl.ResolveCall("f", []types.Type{types.Scalar(types.Bool)})
	if err == nil {
		t.Fatal("expected an ambiguous-call error")
	}
	if _, ok := err.(*AmbiguousCallError); !ok {
		t.Errorf("error type = %T, want *AmbiguousCallError", err)
	}
}

func TestResolveCallWorstConversionDecides(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(&Symbol{
		Name: "f", Kind: KindFunction, Type: types.Scalar(types.Float),
		Params: []types.Type{types.Scalar(types.Int), types.Scalar(types.Float)},
	})
	tbl.Insert(&Symbol{
		Name: "f", Kind: KindFunction, Type: types.Scalar(types.Bool),
		Params: []types.Type{types.Scalar(types.Bool), types.Scalar(types.Bool)},
	})

	// For (int, int) the (int, float) overload ranks [1, 6] and the
	// (bool, bool) overload [5, 5]. Candidates compare by their sorted
	// ranks, worst first: [6, 1] vs [5, 5] differ at position 0, so the
	// overload whose worst conversion is cheaper wins even though its
	// rank total is larger.
	sym, err := tbl.ResolveCall("f", []types.Type{types.Scalar(types.Int), types.Scalar(types.Int)})
	if err != nil {
		t.Fatalf("ResolveCall: %v", err)
	}
	if sym.Type.Base != types.Bool {
		t.Errorf("resolved overload returns %v, want Bool (lexicographic rank comparison)", sym.Type.Base)
	}
}

func TestResolveCallUndeclared(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.ResolveCall("nope", nil)
	if _, ok := err.(*NotFoundError); !ok {
		t.Errorf("error type = %T, want *NotFoundError", err)
	}
}
