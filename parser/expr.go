package parser

import (
	"github.com/fxsl/fxc/intrinsics"
	"github.com/fxsl/fxc/lexer"
	"github.com/fxsl/fxc/spirv"
	"github.com/fxsl/fxc/symbols"
	"github.com/fxsl/fxc/types"
)

// value is the result of parsing one expression: either an already-loaded
// rvalue id, or an lvalue whose access chain has been emitted but whose
// load is deferred until something actually reads it. constInt/constFloat and
// isConst record compile-time-constant literal values so that array
// lengths and simple folded arithmetic don't need a
// runtime load at all.
type value struct {
	Type types.Type

	isLValue  bool
	pointerID uint32
	// storage is the storage class of the variable the access chain is
	// rooted at; derived pointers must be typed in the same class.
	storage spirv.StorageClass

	rvalueID uint32

	isConst    bool
	constInt   int64
	constFloat float64
	isFloat    bool
}

// rvalue returns the loaded SPIR-V value id: an lvalue emits an OpLoad the
// first time it is actually read, a compile-time constant is materialized
// into an interned OpConstant (broadcasting a scalar across every
// component if its type is a vector or matrix), and an already-emitted
// rvalue is returned as-is.
func (p *Parser) rvalue(v value) uint32 {
	if v.isLValue {
		return p.builder.AddLoad(p.types.ID(v.Type), v.pointerID)
	}
	if v.isConst {
		return p.materializeConst(v)
	}
	return v.rvalueID
}

func (p *Parser) materializeConst(v value) uint32 {
	if v.Type.Components() > 1 {
		scalar := v
		scalar.Type = types.Scalar(v.Type.Base)
		id := p.materializeConst(scalar)
		constituents := make([]uint32, v.Type.Components())
		for i := range constituents {
			constituents[i] = id
		}
		return p.types.CompositeConstant(v.Type, constituents)
	}
	if v.Type.Base == types.Bool {
		b := v.constInt != 0
		if v.isFloat {
			b = v.constFloat != 0
		}
		return p.types.BoolConstant(b)
	}
	if v.Type.Base == types.Float {
		f := v.constFloat
		if !v.isFloat {
			f = float64(v.constInt)
		}
		return p.types.FloatConstant(v.Type, float32(f))
	}
	i := v.constInt
	if v.isFloat {
		i = int64(v.constFloat)
	}
	return p.types.IntConstant(v.Type, uint32(i))
}

func constIntValue(i int64) value {
	return value{Type: types.Scalar(types.Int), isConst: true, constInt: i}
}

func constFloatValue(f float64) value {
	return value{Type: types.Scalar(types.Float), isConst: true, constFloat: f, isFloat: true}
}

// parseExpression parses a full expression at assignment precedence, the
// entry point used by statements and initializers.
func (p *Parser) parseExpression() value {
	return p.parseAssignment()
}

// compoundOps maps each compound-assignment token to the plain binary
// operator it combines with '='.
var compoundOps = map[lexer.Kind]lexer.Kind{
	lexer.PlusEqual:           lexer.Plus,
	lexer.MinusEqual:          lexer.Minus,
	lexer.StarEqual:           lexer.Star,
	lexer.SlashEqual:          lexer.Slash,
	lexer.PercentEqual:        lexer.Percent,
	lexer.AmpEqual:            lexer.Ampersand,
	lexer.PipeEqual:           lexer.Pipe,
	lexer.CaretEqual:          lexer.Caret,
	lexer.LessLessEqual:       lexer.LessLess,
	lexer.GreaterGreaterEqual: lexer.GreaterGreater,
}

func (p *Parser) parseAssignment() value {
	lhs := p.parseTernary()

	if p.match(lexer.Equal) {
		rhs := p.parseAssignment()
		return p.emitStore(lhs, rhs)
	}
	if op, ok := compoundOps[p.peek().Kind]; ok {
		p.advance()
		rhs := p.parseAssignment()
		combined := p.emitOperator(op, lhs, rhs)
		return p.emitStore(lhs, combined)
	}
	return lhs
}

func (p *Parser) emitStore(lhs, rhs value) value {
	if !lhs.isLValue {
		p.errorf(p.loc(), DiagNotLValue, "left-hand side of assignment is not an lvalue")
		return lhs
	}
	if lhs.Type.Qualifiers.Has(types.QualConst) || lhs.Type.Qualifiers.Has(types.QualUniform) {
		p.errorf(p.loc(), DiagNotLValue, "cannot assign to a const or uniform value")
		return lhs
	}
	converted := p.convert(rhs, lhs.Type)
	p.builder.AddStore(lhs.pointerID, p.rvalue(converted))
	return lhs
}

func (p *Parser) parseTernary() value {
	cond := p.parseLogicalOr()
	if !p.match(lexer.Question) {
		return cond
	}
	thenV := p.parseExpression()
	p.expect(lexer.Colon, DiagUnexpectedToken, "expected ':' in ternary expression")
	elseV := p.parseAssignment()

	if cond.isConst {
		if cond.constInt != 0 {
			return thenV
		}
		return elseV
	}
	resultType := thenV.Type
	condID := p.rvalue(p.convert(cond, types.Scalar(types.Bool)))
	thenID := p.rvalue(p.convert(thenV, resultType))
	elseID := p.rvalue(p.convert(elseV, resultType))
	id := p.builder.AddSelect(p.types.ID(resultType), condID, thenID, elseID)
	return value{Type: resultType, rvalueID: id}
}

// The precedence ladder, loosest-binding first: logical or,
// logical and, bitwise or/xor/and, equality, relational, shift, additive,
// multiplicative, then parseUnary. Each level parses left-associatively
// before climbing to the next-tighter level.
var bitOrLevel = []lexer.Kind{lexer.Pipe}
var bitXorLevel = []lexer.Kind{lexer.Caret}
var bitAndLevel = []lexer.Kind{lexer.Ampersand}
var equalityLevel = []lexer.Kind{lexer.EqualEqual, lexer.BangEqual}
var relationalLevel = []lexer.Kind{lexer.Less, lexer.Greater, lexer.LessEqual, lexer.GreaterEqual}
var shiftLevel = []lexer.Kind{lexer.LessLess, lexer.GreaterGreater}
var additiveLevel = []lexer.Kind{lexer.Plus, lexer.Minus}
var multiplicativeLevel = []lexer.Kind{lexer.Star, lexer.Slash, lexer.Percent}

func (p *Parser) parseLogicalOr() value {
	left := p.parseLogicalAnd()
	for p.check(lexer.PipePipe) {
		p.advance()
		right := p.parseLogicalAnd()
		left = p.emitLogical(lexer.PipePipe, left, right)
	}
	return left
}

func (p *Parser) parseLogicalAnd() value {
	left := p.parseBitOr()
	for p.check(lexer.AmpAmp) {
		p.advance()
		right := p.parseBitOr()
		left = p.emitLogical(lexer.AmpAmp, left, right)
	}
	return left
}

func (p *Parser) parseBitOr() value  { return p.parseLeftAssoc(bitOrLevel, p.parseBitXor) }
func (p *Parser) parseBitXor() value { return p.parseLeftAssoc(bitXorLevel, p.parseBitAnd) }
func (p *Parser) parseBitAnd() value { return p.parseLeftAssoc(bitAndLevel, p.parseEquality) }
func (p *Parser) parseEquality() value {
	return p.parseLeftAssoc(equalityLevel, p.parseRelational)
}
func (p *Parser) parseRelational() value {
	return p.parseLeftAssoc(relationalLevel, p.parseShift)
}
func (p *Parser) parseShift() value     { return p.parseLeftAssoc(shiftLevel, p.parseAdditive) }
func (p *Parser) parseAdditive() value  { return p.parseLeftAssoc(additiveLevel, p.parseMultiplicative) }
func (p *Parser) parseMultiplicative() value {
	return p.parseLeftAssoc(multiplicativeLevel, p.parseUnary)
}

func (p *Parser) parseLeftAssoc(kinds []lexer.Kind, sub func() value) value {
	left := sub()
	for p.matchAny(kinds) {
		op := p.previous().Kind
		right := sub()
		left = p.emitOperator(op, left, right)
	}
	return left
}

func (p *Parser) matchAny(kinds []lexer.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) parseUnary() value {
	switch {
	case p.match(lexer.Bang):
		v := p.parseUnary()
		if v.isConst {
			if v.constInt == 0 {
				return constIntValue(1)
			}
			return constIntValue(0)
		}
		b := p.convert(v, types.Scalar(types.Bool))
		id := p.builder.AddUnaryOp(opLogicalNot, p.types.ID(b.Type), p.rvalue(b))
		return value{Type: b.Type, rvalueID: id}
	case p.match(lexer.Minus):
		v := p.parseUnary()
		if v.isConst {
			if v.isFloat {
				return constFloatValue(-v.constFloat)
			}
			return constIntValue(-v.constInt)
		}
		op := opSNegate
		if v.Type.Base == types.Float {
			op = opFNegate
		}
		id := p.builder.AddUnaryOp(op, p.types.ID(v.Type), p.rvalue(v))
		return value{Type: v.Type, rvalueID: id}
	case p.match(lexer.Plus):
		return p.parseUnary()
	case p.match(lexer.Tilde):
		v := p.parseUnary()
		id := p.builder.AddUnaryOp(opNot, p.types.ID(v.Type), p.rvalue(v))
		return value{Type: v.Type, rvalueID: id}
	case p.check(lexer.LeftParen) && p.looksLikeCast():
		return p.parseCast()
	default:
		return p.parsePostfix()
	}
}

// looksLikeCast disambiguates "(float)x" (a cast) from "(x + y)" (a
// parenthesized expression) by checking whether the parenthesized
// content is a bare type name, snapshotting and restoring the cursor
// around the probe.
func (p *Parser) looksLikeCast() bool {
	save := p.pos
	defer func() { p.pos = save }()

	p.advance() // '('
	if _, ok := p.parseTypeNoDiag(); !ok {
		return false
	}
	return p.check(lexer.RightParen) && p.peekAt(1).Kind != lexer.EOF
}

// parseTypeNoDiag attempts parseType while discarding any diagnostics it
// raises, used purely for cast-disambiguation lookahead.
func (p *Parser) parseTypeNoDiag() (types.Type, bool) {
	before := len(p.diags.All())
	t, ok := p.parseType()
	for len(p.diags.All()) > before {
		p.diags.Truncate(before)
	}
	return t, ok
}

func (p *Parser) parseCast() value {
	p.advance() // '('
	target, _ := p.parseType()
	p.expect(lexer.RightParen, DiagUnexpectedToken, "expected ')' after cast type")
	operand := p.parseUnary()
	return p.convert(operand, target)
}

func (p *Parser) parsePostfix() value {
	v := p.parsePrimary()
	for {
		switch {
		case p.match(lexer.Dot):
			name := p.expectIdentText(DiagUnexpectedToken, "expected a member or swizzle name")
			v = p.applyMemberOrSwizzle(v, name)
		case p.match(lexer.LeftBracket):
			idx := p.parseExpression()
			p.expect(lexer.RightBracket, DiagUnexpectedToken, "expected ']'")
			v = p.applyIndex(v, idx)
		case p.match(lexer.PlusPlus):
			v = p.applyIncDec(v, opFAdd, opIAdd)
		case p.match(lexer.MinusMinus):
			v = p.applyIncDec(v, opFSub, opISub)
		default:
			return v
		}
	}
}

func (p *Parser) applyIncDec(v value, floatOp, intOp spirv.OpCode) value {
	if !v.isLValue {
		p.errorf(p.loc(), DiagNotLValue, "operand of '++'/'--' is not an lvalue")
		return v
	}
	one := p.oneOf(v.Type)
	op := intOp
	if v.Type.Base == types.Float {
		op = floatOp
	}
	old := p.rvalue(v)
	updated := p.builder.AddBinaryOp(op, p.types.ID(v.Type), old, one)
	p.builder.AddStore(v.pointerID, updated)
	return value{Type: v.Type, rvalueID: old}
}

func (p *Parser) oneOf(t types.Type) uint32 {
	if t.Base == types.Float {
		return p.types.FloatConstant(t, 1)
	}
	return p.types.IntConstant(t, 1)
}

// swizzleSets lists the three equivalent component-letter alphabets FX
// accepts; mixing letters from two different sets on the
// same swizzle is diagnostic 3018.
var swizzleSets = [][4]byte{
	{'x', 'y', 'z', 'w'},
	{'r', 'g', 'b', 'a'},
	{'s', 't', 'p', 'q'},
}

func swizzleIndex(c byte) (int, int, bool) {
	for set, letters := range swizzleSets {
		for i, l := range letters {
			if byte(l) == c {
				return set, i, true
			}
		}
	}
	return 0, 0, false
}

func (p *Parser) applyMemberOrSwizzle(v value, name string) value {
	switch {
	case v.Type.Base == types.Struct:
		return p.applyStructMember(v, name)
	case v.Type.IsMatrix():
		return p.applyMatrixElement(v, name)
	case v.Type.IsVector() || v.Type.IsScalar():
		return p.applySwizzle(v, name)
	}
	p.errorf(p.loc(), DiagInvalidSubscript, "'%s' has no member '%s'", v.Type.String(), name)
	return v
}

func (p *Parser) applySwizzle(v value, name string) value {
	if len(name) == 0 || len(name) > 4 {
		p.errorf(p.loc(), DiagInvalidSubscript, "invalid swizzle '%s'", name)
		return v
	}
	set := -1
	indices := make([]uint32, 0, len(name))
	for i := 0; i < len(name); i++ {
		s, idx, ok := swizzleIndex(name[i])
		if !ok || (set != -1 && s != set) || idx >= v.Type.Rows {
			p.errorf(p.loc(), DiagInvalidSubscript, "invalid swizzle '%s' on '%s'", name, v.Type.String())
			return v
		}
		set = s
		indices = append(indices, uint32(idx))
	}

	if v.Type.IsScalar() {
		// A scalar accepts x/r/s only (all index 0) and broadcasts.
		if len(indices) == 1 {
			return v
		}
		broadcastType := types.Vector(v.Type.Base, len(indices))
		id := p.rvalue(p.convert(v, broadcastType))
		return value{Type: broadcastType, rvalueID: id}
	}

	// A single component of an addressable vector stays addressable: the
	// access chain grows one static index and the result can be stored
	// through. Multi-component swizzles materialize a shuffle and become
	// read-only; a repeated component can only occur there, so repeated
	// swizzles are read-only by construction.
	if len(indices) == 1 && v.isLValue {
		elem := types.Scalar(v.Type.Base)
		idxID := p.types.IntConstant(types.Scalar(types.Uint), indices[0])
		ptr := p.builder.AddAccessChain(p.types.PointerID(elem, v.storage), v.pointerID, idxID)
		return value{Type: elem, isLValue: true, pointerID: ptr, storage: v.storage}
	}

	resultType := types.Scalar(v.Type.Base)
	if len(indices) > 1 {
		resultType = types.Vector(v.Type.Base, len(indices))
	}
	base := p.rvalue(v)
	if len(indices) == 1 {
		id := p.builder.AddCompositeExtract(p.types.ID(resultType), base, indices[0])
		return value{Type: resultType, rvalueID: id}
	}
	id := p.builder.AddVectorShuffle(p.types.ID(resultType), base, base, indices)
	return value{Type: resultType, rvalueID: id}
}

// applyMatrixElement handles the `_11`..`_44` (1-based) and `_m00`..`_m33`
// (0-based) matrix element spellings, up to four components.
func (p *Parser) applyMatrixElement(v value, name string) value {
	coords, ok := parseMatrixMask(name)
	if !ok {
		p.errorf(p.loc(), DiagInvalidSubscript, "invalid matrix element '%s'", name)
		return v
	}
	for _, c := range coords {
		if c.row >= v.Type.Rows || c.col >= v.Type.Cols {
			p.errorf(p.loc(), DiagInvalidSubscript, "matrix element '%s' out of range for '%s'", name, v.Type.String())
			return v
		}
	}

	elem := types.Scalar(v.Type.Base)
	if len(coords) == 1 && v.isLValue {
		colID := p.types.IntConstant(types.Scalar(types.Uint), uint32(coords[0].col))
		rowID := p.types.IntConstant(types.Scalar(types.Uint), uint32(coords[0].row))
		ptr := p.builder.AddAccessChain(p.types.PointerID(elem, v.storage), v.pointerID, colID, rowID)
		return value{Type: elem, isLValue: true, pointerID: ptr, storage: v.storage}
	}

	base := p.rvalue(v)
	scalars := make([]uint32, len(coords))
	for i, c := range coords {
		scalars[i] = p.builder.AddCompositeExtract(p.types.ID(elem), base, uint32(c.col), uint32(c.row))
	}
	if len(scalars) == 1 {
		return value{Type: elem, rvalueID: scalars[0]}
	}
	resultType := types.Vector(v.Type.Base, len(scalars))
	id := p.builder.AddCompositeConstruct(p.types.ID(resultType), scalars...)
	return value{Type: resultType, rvalueID: id}
}

type matrixCoord struct{ row, col int }

func parseMatrixMask(name string) ([]matrixCoord, bool) {
	var coords []matrixCoord
	i := 0
	for i < len(name) {
		if name[i] != '_' {
			return nil, false
		}
		i++
		zeroBased := false
		if i < len(name) && name[i] == 'm' {
			zeroBased = true
			i++
		}
		if i+1 >= len(name) || name[i] < '0' || name[i] > '9' || name[i+1] < '0' || name[i+1] > '9' {
			return nil, false
		}
		row := int(name[i] - '0')
		col := int(name[i+1] - '0')
		if !zeroBased {
			if row < 1 || col < 1 {
				return nil, false
			}
			row--
			col--
		}
		if row > 3 || col > 3 {
			return nil, false
		}
		coords = append(coords, matrixCoord{row: row, col: col})
		i += 2
	}
	if len(coords) == 0 || len(coords) > 4 {
		return nil, false
	}
	return coords, true
}

func (p *Parser) applyStructMember(v value, name string) value {
	info, ok := p.structs[v.Type.StructName]
	if !ok {
		p.errorf(p.loc(), DiagUndeclaredSymbol, "unknown struct type '%s'", v.Type.StructName)
		return v
	}
	memberIndex := -1
	for i, m := range info.members {
		if m.name == name {
			memberIndex = i
			break
		}
	}
	if memberIndex < 0 {
		p.errorf(p.loc(), DiagInvalidSubscript, "invalid subscript '%s' on '%s'", name, v.Type.StructName)
		return v
	}
	member := info.members[memberIndex]
	if v.isLValue {
		idxID := p.types.IntConstant(types.Scalar(types.Int), uint32(memberIndex))
		ptr := p.builder.AddAccessChain(p.types.PointerID(member.typ, v.storage), v.pointerID, idxID)
		return value{Type: member.typ, isLValue: true, pointerID: ptr, storage: v.storage}
	}
	id := p.builder.AddCompositeExtract(p.types.ID(member.typ), v.rvalueID, uint32(memberIndex))
	return value{Type: member.typ, rvalueID: id}
}

func (p *Parser) applyIndex(v value, idx value) value {
	elem := v.Type.ElementType()
	if !v.isLValue {
		p.errorf(p.loc(), DiagNotLValue, "cannot index a non-lvalue expression")
		return value{Type: elem}
	}
	indexID := p.rvalue(p.convert(idx, types.Scalar(types.Int)))
	ptr := p.builder.AddAccessChain(p.types.PointerID(elem, v.storage), v.pointerID, indexID)
	return value{Type: elem, isLValue: true, pointerID: ptr, storage: v.storage}
}

func (p *Parser) parsePrimary() value {
	tok := p.peek()
	switch tok.Kind {
	case lexer.IntLiteral:
		p.advance()
		return constIntValue(int64(tok.IntVal))
	case lexer.UintLiteral:
		p.advance()
		return constIntValue(int64(tok.UintVal))
	case lexer.FloatLiteral:
		p.advance()
		return constFloatValue(float64(tok.FltVal))
	case lexer.DoubleLiteral:
		p.advance()
		return constFloatValue(tok.DblVal)
	case lexer.KwTrue:
		p.advance()
		v := constIntValue(1)
		v.Type = types.Scalar(types.Bool)
		return v
	case lexer.KwFalse:
		p.advance()
		v := constIntValue(0)
		v.Type = types.Scalar(types.Bool)
		return v
	case lexer.LeftParen:
		p.advance()
		v := p.parseExpression()
		p.expect(lexer.RightParen, DiagUnexpectedToken, "expected ')'")
		return v
	case lexer.Ident:
		return p.parseIdentOrCall()
	default:
		p.errorf(p.loc(), DiagUnexpectedToken, "expected an expression, got '%s'", tok.Lexeme)
		p.advance()
		return value{Type: types.VoidType}
	}
}

func (p *Parser) parseIdentOrCall() value {
	name := p.advance().Lexeme
	// "::"-qualified references assemble into the flat qualified name the
	// symbol table binds at namespace insertion.
	for p.check(lexer.ColonColon) && p.peekAt(1).Kind == lexer.Ident {
		p.advance()
		name += "::" + p.advance().Lexeme
	}

	if p.check(lexer.LeftParen) {
		return p.parseCallOrConstructor(name)
	}

	sym, ok := p.symtab.Find(name)
	if !ok {
		p.errorf(p.previous().Location, DiagUndeclaredSymbol, "undeclared identifier '%s'", name)
		return value{Type: types.VoidType}
	}
	storage := spirv.StorageClassFunction
	if s, ok := p.varStorage[sym.ValueID]; ok {
		storage = s
	}
	return value{Type: sym.Type, isLValue: true, pointerID: sym.ValueID, storage: storage}
}

func (p *Parser) parseCallOrConstructor(name string) value {
	p.advance() // '('
	var args []value
	if !p.check(lexer.RightParen) {
		for {
			args = append(args, p.parseAssignment())
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	p.expect(lexer.RightParen, DiagUnexpectedToken, "expected ')' to close call")

	if ctorType, ok := constructorType(name); ok {
		return p.emitConstructor(ctorType, args)
	}

	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		argTypes[i] = a.Type
	}
	sym, err := p.symtab.ResolveCall(name, argTypes)
	if err != nil {
		// Intrinsics are consulted only when no user function matches; an
		// ambiguity between user overloads is reported as such without
		// falling back.
		if _, ambiguous := err.(*symbols.AmbiguousCallError); !ambiguous {
			if b := intrinsics.Lookup(name); b != nil {
				if !matchIntrinsicSignature(b, args) {
					p.errorf(p.previous().Location, DiagNoOverload,
						"no overload of '%s' accepts the given argument types", name)
					return value{Type: types.VoidType}
				}
				return p.emitIntrinsic(b, args)
			}
		}
		switch err.(type) {
		case *symbols.NotFoundError:
			p.errorf(p.previous().Location, DiagUndeclaredSymbol, "%s", err.Error())
		case *symbols.AmbiguousCallError:
			p.errorf(p.previous().Location, DiagAmbiguousCall, "%s", err.Error())
		default:
			p.errorf(p.previous().Location, DiagNoOverload, "%s", err.Error())
		}
		return value{Type: types.VoidType}
	}

	if p.fn.active && sym.Name == p.fn.name {
		p.errorf(p.previous().Location, DiagRecursiveCall, "recursive call to '%s'", sym.Name)
		return value{Type: sym.Type}
	}

	ids := make([]uint32, len(args))
	for i, a := range args {
		ids[i] = p.rvalue(p.convert(a, sym.Params[i]))
	}
	// User-defined function calls lower to OpFunctionCall; emission of the
	// callee's own body happens once, at its declaration site (see decl.go).
	return p.emitFunctionCall(sym, ids)
}

// constructorType recognizes "float4(...)"-style numeric constructor
// syntax, which shares its spelling with the sized-identifier types
// parseSizedIdent already knows how to read.
func constructorType(name string) (types.Type, bool) {
	if t, ok := parseSizedIdent(name); ok {
		return t, true
	}
	switch name {
	case "float", "int", "uint", "bool":
		return types.Scalar(baseKeywordKind[keywordFor(name)]), true
	}
	return types.Type{}, false
}

func keywordFor(name string) lexer.Kind {
	switch name {
	case "float":
		return lexer.KwFloat
	case "int":
		return lexer.KwInt
	case "uint":
		return lexer.KwUint
	case "bool":
		return lexer.KwBool
	default:
		return lexer.Unknown
	}
}

// emitConstructor builds a value of ctorType from args: a single scalar
// argument broadcasts to every component (with
// DiagTruncation never firing for a pure broadcast); otherwise
// the total component count of the arguments must exactly match the
// constructor's arity (DiagConstructorArity) and each argument converts
// independently into the result's base kind (DiagConstructorMismatch).
func (p *Parser) emitConstructor(ctorType types.Type, args []value) value {
	if len(args) == 1 && args[0].Type.IsScalar() && ctorType.Components() > 1 {
		scalar := p.convert(args[0], types.Scalar(ctorType.Base))
		if scalar.isConst {
			scalar.Type = ctorType
			return scalar
		}
		id := p.rvalue(scalar)
		constituents := make([]uint32, ctorType.Components())
		for i := range constituents {
			constituents[i] = id
		}
		composite := p.builder.AddCompositeConstruct(p.types.ID(ctorType), constituents...)
		return value{Type: ctorType, rvalueID: composite}
	}

	// Single-argument numeric constructors are casts; a wider source
	// truncates with warning 3206.
	if len(args) == 1 && args[0].Type.Components() > ctorType.Components() {
		p.warnf(p.loc(), DiagTruncation, "implicit truncation of '%s' to '%s'", args[0].Type.String(), ctorType.String())
		src := args[0]
		base := p.rvalue(src)
		if ctorType.IsScalar() {
			id := p.builder.AddCompositeExtract(p.types.ID(types.Scalar(src.Type.Base)), base, 0)
			return p.convert(value{Type: types.Scalar(src.Type.Base), rvalueID: id}, ctorType)
		}
		indices := make([]uint32, ctorType.Components())
		for i := range indices {
			indices[i] = uint32(i)
		}
		shrunk := types.Vector(src.Type.Base, ctorType.Components())
		id := p.builder.AddVectorShuffle(p.types.ID(shrunk), base, base, indices)
		return p.convert(value{Type: shrunk, rvalueID: id}, ctorType)
	}

	// When every argument is a compile-time constant the whole
	// constructor folds to an interned OpConstantComposite.
	allConst := true
	for _, a := range args {
		if !a.isConst {
			allConst = false
			break
		}
	}
	if allConst && len(args) > 0 && !ctorType.IsMatrix() {
		total := 0
		for _, a := range args {
			total += a.Type.Components()
		}
		if total == ctorType.Components() {
			constituents := make([]uint32, 0, len(args))
			for _, a := range args {
				scalar := p.convert(a, types.Scalar(ctorType.Base))
				for n := 0; n < a.Type.Components(); n++ {
					constituents = append(constituents, p.materializeConst(scalar))
				}
			}
			id := p.types.CompositeConstant(ctorType, constituents)
			return value{Type: ctorType, rvalueID: id}
		}
	}

	total := 0
	for _, a := range args {
		total += a.Type.Components()
	}
	if total != ctorType.Components() {
		p.errorf(p.loc(), DiagConstructorArity,
			"constructor for '%s' expects %d components, got %d", ctorType.String(), ctorType.Components(), total)
		return value{Type: ctorType}
	}

	constituents := make([]uint32, 0, len(args))
	for _, a := range args {
		if !types.CanConvert(a.Type, types.Scalar(ctorType.Base)) && !a.Type.Equal(types.Scalar(ctorType.Base)) {
			p.errorf(p.loc(), DiagConstructorMismatch,
				"cannot convert argument of type '%s' in '%s' constructor", a.Type.String(), ctorType.String())
		}
		converted := p.convert(a, types.Type{Base: ctorType.Base, Rows: a.Type.Rows, Cols: a.Type.Cols})
		constituents = append(constituents, p.rvalue(converted))
	}
	// A matrix is composed of column vectors; scalar arguments are grouped
	// into per-column CompositeConstructs first.
	if ctorType.IsMatrix() && len(constituents) == ctorType.Components() {
		colType := types.Vector(ctorType.Base, ctorType.Rows)
		cols := make([]uint32, 0, ctorType.Cols)
		for c := 0; c < ctorType.Cols; c++ {
			cols = append(cols, p.builder.AddCompositeConstruct(p.types.ID(colType), constituents[c*ctorType.Rows:(c+1)*ctorType.Rows]...))
		}
		constituents = cols
	}
	id := p.builder.AddCompositeConstruct(p.types.ID(ctorType), constituents...)
	return value{Type: ctorType, rvalueID: id}
}

// matchIntrinsicSignature checks a call's argument types against one of
// the builtin's declared signatures: arity, base-kind restriction, and
// fixed-shape parameters. Builtins without declared signatures (texture
// sampling) dispatch entirely on bespoke parser logic and skip the check.
func matchIntrinsicSignature(b *intrinsics.Builtin, args []value) bool {
	if len(b.Signatures) == 0 {
		return true
	}
	for _, sig := range b.Signatures {
		if len(sig.Params) != len(args) {
			continue
		}
		if signatureAccepts(sig, args) {
			return true
		}
	}
	return false
}

func signatureAccepts(sig intrinsics.Signature, args []value) bool {
	for i, shape := range sig.Params {
		t := args[i].Type
		if !t.Base.IsNumeric() {
			return false
		}
		if sig.BaseKinds != nil {
			allowed := false
			for _, k := range sig.BaseKinds {
				if t.Base == k {
					allowed = true
					break
				}
			}
			if !allowed {
				return false
			}
		}
		switch shape {
		case intrinsics.ShapeScalar:
			if !t.IsScalar() {
				return false
			}
		case intrinsics.ShapeVec3:
			if !t.IsVector() || t.Rows != 3 {
				return false
			}
		case intrinsics.ShapeVec4:
			if !t.IsVector() || t.Rows != 4 {
				return false
			}
		}
	}
	return true
}

// emitIntrinsic lowers a built-in function call per its catalog entry.
func (p *Parser) emitIntrinsic(b *intrinsics.Builtin, args []value) value {
	switch b.Name {
	case "saturate":
		zero := p.zeroOf(args[0].Type)
		one := p.oneLiteralOf(args[0].Type)
		id := p.builder.AddExtInst(p.types.ID(args[0].Type), p.glslExt(), spirv.GLSLstd450FClamp,
			p.rvalue(args[0]), zero, one)
		return value{Type: args[0].Type, rvalueID: id}
	case "rcp":
		one := p.oneLiteralOf(args[0].Type)
		id := p.builder.AddBinaryOp(opFDiv, p.types.ID(args[0].Type), one, p.rvalue(args[0]))
		return value{Type: args[0].Type, rvalueID: id}
	case "mul":
		return p.emitMul(args)
	case "tex1D", "tex2D", "tex3D", "texCUBE":
		return p.emitTextureSample(args)
	default:
		resultType := args[0].Type
		if len(b.Signatures) > 0 {
			switch b.Signatures[0].Result {
			case intrinsics.ShapeScalar:
				resultType = types.Scalar(args[0].Type.Base)
			}
		}
		ids := make([]uint32, len(args))
		for i, a := range args {
			ids[i] = p.rvalue(a)
		}
		switch b.Lowering {
		case intrinsics.LowerExtInst:
			id := p.builder.AddExtInst(p.types.ID(resultType), p.glslExt(), b.ExtInst, ids...)
			return value{Type: resultType, rvalueID: id}
		case intrinsics.LowerOpcode:
			if len(ids) == 1 {
				id := p.builder.AddUnaryOp(b.Opcode, p.types.ID(resultType), ids[0])
				return value{Type: resultType, rvalueID: id}
			}
			id := p.builder.AddBinaryOp(b.Opcode, p.types.ID(resultType), ids[0], ids[1])
			return value{Type: resultType, rvalueID: id}
		default:
			return value{Type: resultType}
		}
	}
}

// emitTextureSample lowers texNDs(sampler, coord) to OpImageSampleImplicitLod
// against the combined image+sampler variable the sampler declaration
// created (see decl.go's sampler handling): the sampler argument must be
// an lvalue naming a sampled-image global.
func (p *Parser) emitTextureSample(args []value) value {
	resultType := types.Vector(types.Float, 4)
	if len(args) != 2 || !args[0].isLValue {
		return value{Type: resultType}
	}
	sampledImage := p.builder.AddLoad(p.types.SampledImageType(), args[0].pointerID)
	coord := p.rvalue(args[1])
	id := p.builder.AddImageSampleImplicitLod(p.types.ID(resultType), sampledImage, coord)
	return value{Type: resultType, rvalueID: id}
}

// emitMul dispatches mul(a, b) across the matrix/vector argument-shape
// overloads HLSL-style effects use: matrix*vector,
// vector*matrix, matrix*matrix, or scalar*anything.
func (p *Parser) emitMul(args []value) value {
	a, b := args[0], args[1]
	switch {
	case a.Type.IsMatrix() && b.Type.IsVector():
		id := p.builder.AddBinaryOp(opMatrixTimesVector, p.types.ID(types.Vector(a.Type.Base, a.Type.Rows)), p.rvalue(a), p.rvalue(b))
		return value{Type: types.Vector(a.Type.Base, a.Type.Rows), rvalueID: id}
	case a.Type.IsVector() && b.Type.IsMatrix():
		id := p.builder.AddBinaryOp(opVectorTimesMatrix, p.types.ID(types.Vector(b.Type.Base, b.Type.Cols)), p.rvalue(a), p.rvalue(b))
		return value{Type: types.Vector(b.Type.Base, b.Type.Cols), rvalueID: id}
	case a.Type.IsMatrix() && b.Type.IsMatrix():
		resultType := types.Matrix(a.Type.Base, a.Type.Rows, b.Type.Cols)
		id := p.builder.AddBinaryOp(opMatrixTimesMatrix, p.types.ID(resultType), p.rvalue(a), p.rvalue(b))
		return value{Type: resultType, rvalueID: id}
	default:
		return p.emitOperator(lexer.Star, a, b)
	}
}

func (p *Parser) zeroOf(t types.Type) uint32 {
	if t.Base == types.Float {
		return p.types.FloatConstant(types.Scalar(types.Float), 0)
	}
	return p.types.IntConstant(types.Scalar(t.Base), 0)
}

func (p *Parser) oneLiteralOf(t types.Type) uint32 {
	if t.Base == types.Float {
		return p.types.FloatConstant(types.Scalar(types.Float), 1)
	}
	return p.types.IntConstant(types.Scalar(t.Base), 1)
}

func (p *Parser) glslExt() uint32 {
	if p.extglsl == 0 {
		p.extglsl = p.builder.AddExtInstImport("GLSL.std.450")
	}
	return p.extglsl
}

func (p *Parser) emitFunctionCall(sym *symbols.Symbol, args []uint32) value {
	if sym.Type.IsVoid() {
		p.builder.AddFunctionCall(p.types.ID(types.VoidType), sym.ValueID, args...)
		return value{Type: types.VoidType}
	}
	id := p.builder.AddFunctionCall(p.types.ID(sym.Type), sym.ValueID, args...)
	return value{Type: sym.Type, rvalueID: id}
}

// emitOperator lowers one arithmetic/relational/bitwise binary operator.
// When both operands are compile-time constants, '+', '-', '*', '/' and
// '%' fold to a constant (a constant zero divisor does not fold); the
// relational, equality, bitwise and shift operators are emitted as
// instructions even then.
func (p *Parser) emitOperator(op lexer.Kind, l, r value) value {
	if (op == lexer.Slash || op == lexer.Percent) && r.isConst {
		if (r.isFloat && r.constFloat == 0) || (!r.isFloat && r.constInt == 0) {
			p.warnf(p.loc(), DiagDivideByZero, "division by zero")
		}
	}
	if l.isConst && r.isConst {
		if folded, ok := foldConstant(op, l, r); ok {
			return folded
		}
	}
	common := binaryCommonType(l.Type, r.Type)
	lc := p.convert(l, common)
	rc := p.convert(r, common)
	spv, resultType := binaryOpcode(op, common)
	id := p.builder.AddBinaryOp(spv, p.types.ID(resultType), p.rvalue(lc), p.rvalue(rc))
	return value{Type: resultType, rvalueID: id}
}

func (p *Parser) emitLogical(op lexer.Kind, l, r value) value {
	common := types.Scalar(types.Bool)
	lc := p.convert(l, common)
	rc := p.convert(r, common)
	spv := opLogicalOr
	if op == lexer.AmpAmp {
		spv = opLogicalAnd
	}
	id := p.builder.AddBinaryOp(spv, p.types.ID(common), p.rvalue(lc), p.rvalue(rc))
	return value{Type: common, rvalueID: id}
}

// binaryCommonType picks the wider of two operand types for arithmetic
// promotion: float beats int/uint beats bool, and a vector/matrix beats a
// scalar (broadcast happens in convert).
func binaryCommonType(a, b types.Type) types.Type {
	base := a.Base
	if rankOf(b.Base) > rankOf(a.Base) {
		base = b.Base
	}
	shape := a
	if b.Components() > a.Components() {
		shape = b
	}
	return types.Type{Base: base, Rows: shape.Rows, Cols: shape.Cols}
}

func rankOf(k types.BaseKind) int {
	switch k {
	case types.Bool:
		return 0
	case types.Int:
		return 1
	case types.Uint:
		return 2
	case types.Float:
		return 3
	default:
		return -1
	}
}

// convert emits (or folds) an implicit conversion from v to target, per
// the ranking in package types; broadcasting a scalar into a vector uses
// AddCompositeConstruct with the scalar repeated.
func (p *Parser) convert(v value, target types.Type) value {
	if v.Type.Equal(target) {
		return v
	}
	if v.isConst {
		if target.Base == types.Float {
			f := v.constFloat
			if !v.isFloat {
				f = float64(v.constInt)
			}
			folded := constFloatValue(f)
			folded.Type = target
			return folded
		}
		i := v.constInt
		if v.isFloat {
			i = int64(v.constFloat)
		}
		folded := constIntValue(i)
		folded.Type = target
		return folded
	}

	if v.Type.IsScalar() && target.Components() > 1 {
		scalarTarget := types.Scalar(target.Base)
		converted := p.convert(v, scalarTarget)
		id := p.rvalue(converted)
		constituents := make([]uint32, target.Components())
		for i := range constituents {
			constituents[i] = id
		}
		composite := p.builder.AddCompositeConstruct(p.types.ID(target), constituents...)
		return value{Type: target, rvalueID: composite}
	}

	if v.Type.Base == target.Base {
		return v // same base kind, shape mismatch handled by the caller's arity checks
	}

	id := p.rvalue(v)
	resultType := types.Type{Base: target.Base, Rows: v.Type.Rows, Cols: v.Type.Cols}

	// bool has no bit-pattern conversion: to bool compares against zero,
	// from bool selects between one and zero.
	if target.Base == types.Bool {
		zero := p.zeroOf(v.Type)
		op := opINotEqual
		if v.Type.Base == types.Float {
			op = opFOrdNotEqual
		}
		converted := p.builder.AddBinaryOp(op, p.types.ID(resultType), id, zero)
		return value{Type: resultType, rvalueID: converted}
	}
	if v.Type.Base == types.Bool {
		one := p.oneLiteralOf(types.Scalar(target.Base))
		zero := p.zeroOf(types.Scalar(target.Base))
		converted := p.builder.AddSelect(p.types.ID(resultType), id, one, zero)
		return value{Type: resultType, rvalueID: converted}
	}

	op := conversionOpcode(v.Type.Base, target.Base)
	converted := p.builder.AddUnaryOp(op, p.types.ID(resultType), id)
	return value{Type: resultType, rvalueID: converted}
}

func conversionOpcode(src, dst types.BaseKind) spirv.OpCode {
	switch {
	case src == types.Int && dst == types.Float:
		return opConvertSToF
	case src == types.Uint && dst == types.Float:
		return opConvertUToF
	case src == types.Float && dst == types.Int:
		return opConvertFToS
	case src == types.Float && dst == types.Uint:
		return opConvertFToU
	case src == types.Int && dst == types.Uint, src == types.Uint && dst == types.Int:
		return opBitcast
	default:
		return opBitcast
	}
}

func foldConstant(op lexer.Kind, l, r value) (value, bool) {
	if l.isFloat || r.isFloat {
		lf, rf := l.constFloat, r.constFloat
		if !l.isFloat {
			lf = float64(l.constInt)
		}
		if !r.isFloat {
			rf = float64(r.constInt)
		}
		switch op {
		case lexer.Plus:
			return constFloatValue(lf + rf), true
		case lexer.Minus:
			return constFloatValue(lf - rf), true
		case lexer.Star:
			return constFloatValue(lf * rf), true
		case lexer.Slash:
			if rf == 0 {
				return value{}, false
			}
			return constFloatValue(lf / rf), true
		default:
			return value{}, false
		}
	}
	li, ri := l.constInt, r.constInt
	switch op {
	case lexer.Plus:
		return constIntValue(li + ri), true
	case lexer.Minus:
		return constIntValue(li - ri), true
	case lexer.Star:
		return constIntValue(li * ri), true
	case lexer.Slash:
		if ri == 0 {
			return value{}, false
		}
		return constIntValue(li / ri), true
	case lexer.Percent:
		if ri == 0 {
			return value{}, false
		}
		return constIntValue(li % ri), true
	default:
		return value{}, false
	}
}

func binaryOpcode(op lexer.Kind, t types.Type) (spirv.OpCode, types.Type) {
	isFloat := t.Base == types.Float
	isSigned := t.Base == types.Int
	switch op {
	case lexer.Plus:
		if isFloat {
			return opFAdd, t
		}
		return opIAdd, t
	case lexer.Minus:
		if isFloat {
			return opFSub, t
		}
		return opISub, t
	case lexer.Star:
		if isFloat {
			return opFMul, t
		}
		return opIMul, t
	case lexer.Slash:
		if isFloat {
			return opFDiv, t
		}
		if isSigned {
			return opSDiv, t
		}
		return opUDiv, t
	case lexer.Percent:
		if isFloat {
			return opFRem, t
		}
		if isSigned {
			return opSRem, t
		}
		return opUMod, t
	case lexer.Ampersand:
		return opBitwiseAnd, t
	case lexer.Pipe:
		return opBitwiseOr, t
	case lexer.Caret:
		return opBitwiseXor, t
	case lexer.LessLess:
		return opShiftLeftLogical, t
	case lexer.GreaterGreater:
		return opShiftRightLogical, t
	case lexer.EqualEqual:
		if isFloat {
			return opFOrdEqual, types.Scalar(types.Bool)
		}
		return opIEqual, types.Scalar(types.Bool)
	case lexer.BangEqual:
		if isFloat {
			return opFOrdNotEqual, types.Scalar(types.Bool)
		}
		return opINotEqual, types.Scalar(types.Bool)
	case lexer.Less:
		if isFloat {
			return opFOrdLessThan, types.Scalar(types.Bool)
		}
		if isSigned {
			return opSLessThan, types.Scalar(types.Bool)
		}
		return opULessThan, types.Scalar(types.Bool)
	case lexer.Greater:
		if isFloat {
			return opFOrdGreaterThan, types.Scalar(types.Bool)
		}
		if isSigned {
			return opSGreaterThan, types.Scalar(types.Bool)
		}
		return opUGreaterThan, types.Scalar(types.Bool)
	case lexer.LessEqual:
		if isFloat {
			return opFOrdLessThanEqual, types.Scalar(types.Bool)
		}
		if isSigned {
			return opSLessThanEqual, types.Scalar(types.Bool)
		}
		return opULessThanEqual, types.Scalar(types.Bool)
	case lexer.GreaterEqual:
		if isFloat {
			return opFOrdGreaterThanEqual, types.Scalar(types.Bool)
		}
		if isSigned {
			return opSGreaterThanEqual, types.Scalar(types.Bool)
		}
		return opUGreaterThanEqual, types.Scalar(types.Bool)
	default:
		return opFAdd, t
	}
}
