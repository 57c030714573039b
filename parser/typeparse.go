package parser

import (
	"strconv"
	"strings"

	"github.com/fxsl/fxc/lexer"
	"github.com/fxsl/fxc/symbols"
	"github.com/fxsl/fxc/types"
)

// parseQualifiers consumes every leading qualifier keyword and returns
// the accumulated bitset. Repeating a qualifier is warning 3048.
func (p *Parser) parseQualifiers() types.Qualifier {
	var q types.Qualifier
	for {
		switch {
		case p.match(lexer.KwExtern):
			p.addQualifier(&q, types.QualExtern)
		case p.match(lexer.KwStatic):
			p.addQualifier(&q, types.QualStatic)
		case p.match(lexer.KwUniform):
			p.addQualifier(&q, types.QualUniform)
		case p.match(lexer.KwVolatile):
			p.addQualifier(&q, types.QualVolatile)
		case p.match(lexer.KwPrecise):
			p.addQualifier(&q, types.QualPrecise)
		case p.match(lexer.KwIn):
			p.addQualifier(&q, types.QualIn)
		case p.match(lexer.KwOut):
			p.addQualifier(&q, types.QualOut)
		case p.match(lexer.KwInOut):
			q |= types.QualIn | types.QualOut
		case p.match(lexer.KwConst):
			p.addQualifier(&q, types.QualConst)
		case p.match(lexer.KwLinear):
			p.addQualifier(&q, types.QualLinear)
		case p.match(lexer.KwNoperspective):
			p.addQualifier(&q, types.QualNoperspective)
		case p.match(lexer.KwCentroid):
			p.addQualifier(&q, types.QualCentroid)
		case p.match(lexer.KwNointerpolation):
			p.addQualifier(&q, types.QualNointerpolation)
		default:
			return q
		}
	}
}

func (p *Parser) addQualifier(q *types.Qualifier, flag types.Qualifier) {
	if q.Has(flag) {
		p.warnf(p.previous().Location, DiagDuplicateQualifier, "duplicate usage qualifier '%s'", p.previous().Lexeme)
	}
	*q |= flag
}

// baseKeywordKind maps the scalar-type keywords to their BaseKind; bool,
// int, uint, float all report as numeric, double also reports Float (FX
// has no distinct double SPIR-V lane — it only changes the default
// literal-folding precision).
var baseKeywordKind = map[lexer.Kind]types.BaseKind{
	lexer.KwBool:   types.Bool,
	lexer.KwInt:    types.Int,
	lexer.KwUint:   types.Uint,
	lexer.KwFloat:  types.Float,
	lexer.KwDouble: types.Float,
	lexer.KwString: types.String,
	lexer.KwVoid:   types.Void,
}

// parseType parses qualifiers followed by a base type and an optional
// vector/matrix dimension suffix. It does not consume a trailing array
// bracket or declarator name; those belong to the declaration parser that
// calls this.
func (p *Parser) parseType() (types.Type, bool) {
	loc := p.loc()
	t, ok := p.parseTypeClass()
	if !ok {
		return t, false
	}
	// Interpolation qualifiers only make sense on floating-point
	// interpolants: centroid/noperspective on an integral type is 4576,
	// and centroid alone implies linear.
	if t.Base == types.Bool || t.Base == types.Int || t.Base == types.Uint {
		if t.Qualifiers.Has(types.QualCentroid | types.QualNoperspective) {
			p.errorf(loc, DiagBadInterpolation, "interpolation qualifiers are not valid on integral type '%s'", t.String())
		}
	}
	if t.Qualifiers.Has(types.QualCentroid) && !t.Qualifiers.Has(types.QualNoperspective) {
		t.Qualifiers |= types.QualLinear
	}
	return t, true
}

func (p *Parser) parseTypeClass() (types.Type, bool) {
	qual := p.parseQualifiers()

	switch {
	case p.check(lexer.KwTexture1D), p.check(lexer.KwTexture2D), p.check(lexer.KwTexture3D):
		p.advance()
		return types.Type{Base: types.Texture, Rows: 1, Cols: 1, Qualifiers: qual}, true
	case p.check(lexer.KwSampler1D), p.check(lexer.KwSampler2D), p.check(lexer.KwSampler3D):
		p.advance()
		return types.Type{Base: types.Sampler, Rows: 1, Cols: 1, Qualifiers: qual}, true
	case p.check(lexer.KwVector):
		return p.parseGenericVector(qual)
	case p.check(lexer.KwMatrix):
		return p.parseGenericMatrix(qual)
	}

	if base, ok := baseKeywordKind[p.peek().Kind]; ok {
		p.advance()
		return types.Type{Base: base, Rows: 1, Cols: 1, Qualifiers: qual}, true
	}

	if p.check(lexer.Ident) {
		lexeme := p.peek().Lexeme
		if t, ok := parseSizedIdent(lexeme); ok {
			p.advance()
			t.Qualifiers = qual
			return t, true
		}
		// Not a sized builtin spelling: treat as a struct type name if the
		// symbol table knows it, otherwise this identifier belongs to
		// whatever construct called us (e.g. it's actually a variable
		// name, not a type) and parseType reports failure without
		// consuming the token.
		if sym, found := p.symtab.Find(lexeme); found && sym.Kind == symbols.KindStruct {
			p.advance()
			t := sym.Type
			t.Qualifiers = qual
			return t, true
		}
	}

	p.errorf(p.loc(), DiagUnexpectedToken, "expected a type, got '%s'", p.peek().Lexeme)
	return types.Type{}, false
}

// parseSizedIdent recognizes identifiers like "float4", "int3x3", "bool2"
// as a single lexer.Ident token and splits out the base keyword plus an
// optional RxC or N dimension suffix.
func parseSizedIdent(lexeme string) (types.Type, bool) {
	bases := []struct {
		prefix string
		kind   types.BaseKind
	}{
		{"float", types.Float},
		{"double", types.Float},
		{"int", types.Int},
		{"uint", types.Uint},
		{"bool", types.Bool},
	}
	for _, b := range bases {
		if !strings.HasPrefix(lexeme, b.prefix) {
			continue
		}
		suffix := lexeme[len(b.prefix):]
		if suffix == "" {
			continue // bare "float"/"int"/... is handled by the keyword path
		}
		if rows, cols, ok := parseDimSuffix(suffix); ok {
			return types.Type{Base: b.kind, Rows: rows, Cols: cols}, true
		}
		return types.Type{}, false
	}
	return types.Type{}, false
}

// parseDimSuffix parses "4" -> (4,1) or "3x3" -> (3,3) or "2x4" -> (2,4).
func parseDimSuffix(s string) (rows, cols int, ok bool) {
	if x := strings.IndexByte(s, 'x'); x >= 0 {
		r, err1 := strconv.Atoi(s[:x])
		c, err2 := strconv.Atoi(s[x+1:])
		if err1 != nil || err2 != nil || r < 1 || r > 4 || c < 1 || c > 4 {
			return 0, 0, false
		}
		return r, c, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 4 {
		return 0, 0, false
	}
	return n, 1, true
}

// parseGenericVector parses the "vector<T, N>" spelling.
func (p *Parser) parseGenericVector(qual types.Qualifier) (types.Type, bool) {
	p.advance() // 'vector'
	if !p.match(lexer.Less) {
		return types.Type{Base: types.Float, Rows: 4, Cols: 1, Qualifiers: qual}, true // bare "vector" defaults to float4
	}
	base, ok := baseKeywordKind[p.peek().Kind]
	if !ok {
		p.errorf(p.loc(), DiagUnexpectedToken, "expected a scalar type inside vector<...>")
		return types.Type{}, false
	}
	p.advance()
	p.expect(lexer.Comma, DiagUnexpectedToken, "expected ',' in vector<T, N>")
	n := p.expectIntLiteral(DiagVectorDimension, "expected a vector size")
	p.expect(lexer.Greater, DiagUnexpectedToken, "expected '>' to close vector<T, N>")
	if n < 1 || n > 4 {
		p.errorf(p.loc(), DiagVectorDimension, "vector size must be between 1 and 4, got %d", n)
		n = 4
	}
	return types.Type{Base: base, Rows: n, Cols: 1, Qualifiers: qual}, true
}

// parseGenericMatrix parses the "matrix<T, R, C>" spelling.
func (p *Parser) parseGenericMatrix(qual types.Qualifier) (types.Type, bool) {
	p.advance() // 'matrix'
	if !p.match(lexer.Less) {
		return types.Type{Base: types.Float, Rows: 4, Cols: 4, Qualifiers: qual}, true
	}
	base, ok := baseKeywordKind[p.peek().Kind]
	if !ok {
		p.errorf(p.loc(), DiagUnexpectedToken, "expected a scalar type inside matrix<...>")
		return types.Type{}, false
	}
	p.advance()
	p.expect(lexer.Comma, DiagUnexpectedToken, "expected ',' in matrix<T, R, C>")
	rows := p.expectIntLiteral(DiagMatrixDimension, "expected a row count")
	p.expect(lexer.Comma, DiagUnexpectedToken, "expected ',' in matrix<T, R, C>")
	cols := p.expectIntLiteral(DiagMatrixDimension, "expected a column count")
	p.expect(lexer.Greater, DiagUnexpectedToken, "expected '>' to close matrix<T, R, C>")
	if rows < 1 || rows > 4 || cols < 1 || cols > 4 {
		p.errorf(p.loc(), DiagMatrixDimension, "matrix dimensions must be between 1 and 4, got %dx%d", rows, cols)
		rows, cols = 4, 4
	}
	return types.Type{Base: base, Rows: rows, Cols: cols, Qualifiers: qual}, true
}

func (p *Parser) expectIntLiteral(code int, message string) int {
	tok := p.peek()
	if tok.Kind != lexer.IntLiteral && tok.Kind != lexer.UintLiteral {
		p.errorf(p.loc(), code, "%s, got '%s'", message, tok.Lexeme)
		return 0
	}
	p.advance()
	if tok.Kind == lexer.UintLiteral {
		return int(tok.UintVal)
	}
	return int(tok.IntVal)
}
