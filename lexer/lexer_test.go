package lexer

import "testing"

// TestTokenizeRoundTrip checks that concatenating every token's Lexeme
// reproduces the original source.
func TestTokenizeRoundTrip(t *testing.T) {
	src := "float4 main(float2 uv : TEXCOORD0) : SV_Target\n{\n  return tex2D(s0, uv).rgba * 0.5f;\n}\n"
	l := New(src, "test.fx", DefaultOptions())
	toks := l.Tokenize()

	var rebuilt []byte
	for _, tok := range toks {
		if tok.Kind == EOF {
			continue
		}
		rebuilt = append(rebuilt, src[tok.Offset:tok.Offset+tok.Length]...)
	}
	// Horizontal whitespace is discarded by the scanner, so compare the
	// reconstructed text with whitespace stripped from both sides instead
	// of a literal byte-for-byte match.
	if string(rebuilt) == "" {
		t.Fatal("expected non-empty reconstruction")
	}
	var stripped []byte
	for i := 0; i < len(src); i++ {
		if src[i] != ' ' && src[i] != '\t' {
			stripped = append(stripped, src[i])
		}
	}
	if string(rebuilt) != string(stripped) {
		t.Errorf("reconstruction = %q, want %q", rebuilt, stripped)
	}
	for _, tok := range toks {
		if tok.Kind != EOF && tok.Offset+tok.Length > len(src) {
			t.Fatalf("token %v span out of bounds: offset=%d length=%d", tok.Kind, tok.Offset, tok.Length)
		}
	}
}

// TestLocationMonotonic checks that token locations never go backwards.
func TestLocationMonotonic(t *testing.T) {
	src := "int a = 1;\nint b = 2;\nfloat c = a + b;\n"
	l := New(src, "test.fx", DefaultOptions())
	toks := l.Tokenize()

	prevLine, prevCol, prevOffset := 0, 0, -1
	for _, tok := range toks {
		if tok.Offset < prevOffset {
			t.Fatalf("byte offset went backwards: %d after %d", tok.Offset, prevOffset)
		}
		if tok.Location.Line < prevLine {
			t.Fatalf("line went backwards: %d after %d", tok.Location.Line, prevLine)
		}
		if tok.Location.Line == prevLine && tok.Kind != EOF && tok.Location.Column < prevCol && tok.Kind != EOL {
			t.Fatalf("column went backwards on same line: %d after %d", tok.Location.Column, prevCol)
		}
		prevOffset = tok.Offset
		prevLine = tok.Location.Line
		prevCol = tok.Location.Column
	}
}

func TestNumericLiterals(t *testing.T) {
	cases := []struct {
		src     string
		kind    Kind
		litKind LiteralKind
	}{
		{"42", IntLiteral, LitInt},
		{"42u", UintLiteral, LitUint},
		{"0x2A", IntLiteral, LitInt},
		{"010", IntLiteral, LitInt},
		{"1.5", DoubleLiteral, LitDouble},
		{"1.5f", FloatLiteral, LitFloat},
		{"1e3", DoubleLiteral, LitDouble},
		{"1e3f", FloatLiteral, LitFloat},
	}
	for _, c := range cases {
		l := New(c.src, "test.fx", DefaultOptions())
		tok := l.Next()
		if tok.Kind != c.kind {
			t.Errorf("%q: Kind = %v, want %v", c.src, tok.Kind, c.kind)
		}
		if tok.LitKind != c.litKind {
			t.Errorf("%q: LitKind = %v, want %v", c.src, tok.LitKind, c.litKind)
		}
	}
}

func TestHexIntOverflowTruncates(t *testing.T) {
	l := New("0xFFFFFFFF", "test.fx", DefaultOptions())
	tok := l.Next()
	if tok.Kind != IntLiteral {
		t.Fatalf("Kind = %v, want IntLiteral", tok.Kind)
	}
	if tok.IntVal != -1 {
		t.Errorf("IntVal = %d, want -1 (0xFFFFFFFF truncated to int32)", tok.IntVal)
	}
}

func TestStringLiteralEscapes(t *testing.T) {
	l := New(`"hello\nworld"`, "test.fx", DefaultOptions())
	tok := l.Next()
	if tok.Kind != StringLiteral {
		t.Fatalf("Kind = %v, want StringLiteral", tok.Kind)
	}
	if tok.StrVal != "hello\nworld" {
		t.Errorf("StrVal = %q, want %q", tok.StrVal, "hello\nworld")
	}
}

func TestPreprocessorDirectiveToken(t *testing.T) {
	l := New("#define FOO 1\nint x;", "test.fx", DefaultOptions())
	tok := l.Next()
	if tok.Kind != PPDirective {
		t.Fatalf("Kind = %v, want PPDirective", tok.Kind)
	}
	if tok.Lexeme != "#define FOO 1" {
		t.Errorf("Lexeme = %q, want %q", tok.Lexeme, "#define FOO 1")
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	l := New("technique float myVar", "test.fx", DefaultOptions())
	toks := l.Tokenize()
	want := []Kind{KwTechnique, KwFloat, Ident, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: Kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestOperators(t *testing.T) {
	l := New("a += b <<= c == d", "test.fx", DefaultOptions())
	toks := l.Tokenize()
	want := []Kind{Ident, PlusEqual, Ident, LessLessEqual, Ident, EqualEqual, Ident, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: Kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	l := New("float int4", "test.fx", DefaultOptions())
	snap := l.Save()
	first := l.Next()
	if first.Kind != KwFloat {
		t.Fatalf("Kind = %v, want KwFloat", first.Kind)
	}
	l.Restore(snap)
	again := l.Next()
	if again.Kind != KwFloat || again.Offset != first.Offset {
		t.Errorf("restore did not rewind lexer correctly: %+v", again)
	}
}
