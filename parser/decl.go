package parser

import (
	"github.com/fxsl/fxc/effect"
	"github.com/fxsl/fxc/lexer"
	"github.com/fxsl/fxc/spirv"
	"github.com/fxsl/fxc/symbols"
	"github.com/fxsl/fxc/types"
)

// structMember is one field of a declared struct type.
type structMember struct {
	name     string
	typ      types.Type
	semantic string
}

// structInfo is the layout record behind a struct symbol, consulted for
// member access and OpTypeStruct reuse.
type structInfo struct {
	name    string
	typeID  uint32
	members []structMember
}

// parseStructDecl parses `struct Name { members } ;` after the `struct`
// keyword has been consumed, registering the type with both the module
// builder and the symbol table.
func (p *Parser) parseStructDecl() {
	loc := p.loc()
	name := p.expectIdentText(DiagUnexpectedToken, "expected struct name")
	if _, exists := p.symtab.FindLocal(name); exists {
		p.errorf(loc, DiagRedefinition, "redefinition of '%s'", name)
	}
	p.expect(lexer.LeftBrace, DiagUnexpectedToken, "expected '{' after struct name")

	info := &structInfo{name: name}
	for !p.check(lexer.RightBrace) && !p.check(lexer.EOF) {
		memberType, ok := p.parseType()
		if !ok {
			p.advance()
			continue
		}
		if memberType.IsVoid() {
			p.errorf(p.loc(), DiagVoidVariable, "struct member cannot be void")
		}
		for {
			memberName := p.expectIdentText(DiagUnexpectedToken, "expected member name")
			mt := memberType
			p.parseArraySuffix(&mt)
			semantic := p.parseSemantic()
			info.members = append(info.members, structMember{name: memberName, typ: mt, semantic: semantic})
			if !p.match(lexer.Comma) {
				break
			}
		}
		p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after struct member")
	}
	p.expect(lexer.RightBrace, DiagUnexpectedToken, "expected '}' to close struct")
	p.match(lexer.Semicolon)

	if len(info.members) == 0 {
		p.warnf(loc, DiagEmptyStruct, "struct '%s' has no members", name)
	}

	memberIDs := make([]uint32, len(info.members))
	for i, m := range info.members {
		memberIDs[i] = p.types.ID(m.typ)
	}
	info.typeID = p.builder.AddTypeStruct(memberIDs...)
	p.builder.AddName(info.typeID, name)
	for i, m := range info.members {
		p.builder.AddMemberName(info.typeID, uint32(i), m.name)
	}

	p.structs[name] = info
	p.symtab.Insert(&symbols.Symbol{
		Name:    name,
		Kind:    symbols.KindStruct,
		Type:    types.Type{Base: types.Struct, Rows: 1, Cols: 1, StructName: name, StructID: info.typeID},
		ValueID: info.typeID,
	})
}

// parseGlobalDeclaration handles any top-level declaration that is not a
// namespace, struct, or technique: a function definition, or one or more
// global variables (including textures and samplers with their brace
// property blocks).
func (p *Parser) parseGlobalDeclaration() {
	declType, ok := p.parseType()
	if !ok {
		p.advance()
		panic(panicError{})
	}

	name := p.expectIdentText(DiagUnexpectedToken, "expected a declaration name")

	if p.check(lexer.LeftParen) {
		p.parseFunctionDecl(declType, name)
		return
	}

	switch declType.Base {
	case types.Texture:
		p.parseTextureDecl(declType, name)
		return
	case types.Sampler:
		p.parseSamplerDecl(declType, name)
		return
	}

	for {
		p.parseGlobalVariable(declType, name)
		if !p.match(lexer.Comma) {
			break
		}
		name = p.expectIdentText(DiagUnexpectedToken, "expected a declaration name")
	}
	p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after declaration")
}

// parseGlobalVariable finishes one global declarator: array suffix,
// semantic, annotations, initializer, promotion to uniform, and SPIR-V
// emission.
func (p *Parser) parseGlobalVariable(declType types.Type, name string) {
	loc := p.previous().Location
	t := declType
	p.parseArraySuffix(&t)
	p.parseSemantic()
	annotations := p.parseAnnotations()

	if t.IsVoid() {
		p.errorf(loc, DiagVoidVariable, "variable '%s' cannot be void", name)
		return
	}
	if _, exists := p.symtab.FindLocal(name); exists {
		p.errorf(loc, DiagRedefinition, "redefinition of '%s'", name)
		return
	}

	qual := t.Qualifiers
	if qual.Has(types.QualUniform) && qual.Has(types.QualConst) {
		p.errorf(loc, DiagConstUniform, "variable '%s' cannot be both uniform and const", name)
		qual &^= types.QualConst
	}
	// A storage-less non-resource global is promoted to uniform so the
	// runtime can bind it (warning 5000).
	if !qual.Has(types.QualStatic) && !qual.Has(types.QualUniform) && !qual.Has(types.QualConst) {
		p.warnf(loc, DiagImplicitUniform, "global variable '%s' is implicitly uniform", name)
		qual |= types.QualUniform
	}
	t.Qualifiers = qual

	var init value
	hasInit := false
	if p.match(lexer.Equal) {
		init = p.parseAssignment()
		hasInit = true
	}

	var id uint32
	switch {
	case qual.Has(types.QualUniform):
		ptr := p.types.PointerID(t, spirv.StorageClassUniform)
		id = p.builder.AddVariable(ptr, spirv.StorageClassUniform)
		p.varStorage[id] = spirv.StorageClassUniform

		offset, size := p.assignUniformOffset(t)
		p.module.Uniforms = append(p.module.Uniforms, effect.Uniform{
			Name:           p.symtab.QualifiedName(name),
			TypeName:       t.String(),
			Offset:         offset,
			Size:           size,
			Annotations:    annotations,
			HasInitializer: hasInit,
		})
	default:
		// static and const globals live in Private storage with a
		// compile-time-constant initializer.
		ptr := p.types.PointerID(t, spirv.StorageClassPrivate)
		if hasInit {
			if !init.isConst {
				p.errorf(loc, DiagNonConstInitializer, "initializer for global '%s' must be a constant expression", name)
				id = p.builder.AddVariable(ptr, spirv.StorageClassPrivate)
			} else {
				converted := p.convert(init, t)
				id = p.builder.AddVariableWithInit(ptr, spirv.StorageClassPrivate, p.materializeConst(converted))
			}
		} else {
			if qual.Has(types.QualConst) {
				p.errorf(loc, DiagNonConstInitializer, "const variable '%s' requires an initializer", name)
			}
			id = p.builder.AddVariable(ptr, spirv.StorageClassPrivate)
		}
		p.varStorage[id] = spirv.StorageClassPrivate
	}
	p.builder.AddName(id, name)

	p.symtab.Insert(&symbols.Symbol{Name: name, Kind: symbols.KindVariable, Type: t, ValueID: id})
}

// assignUniformOffset advances the running constant-block offset using
// std140-style alignment and returns the (offset, size) pair recorded in
// the uniform metadata.
func (p *Parser) assignUniformOffset(t types.Type) (int, int) {
	align, size := std140Layout(t)
	offset := (p.uniformOffset + align - 1) &^ (align - 1)
	p.uniformOffset = offset + size
	return offset, size
}

func std140Layout(t types.Type) (align, size int) {
	switch {
	case t.IsMatrix():
		align = 16
		size = t.Cols * 16
	case t.IsVector():
		switch t.Rows {
		case 2:
			align, size = 8, 8
		default:
			align, size = 16, t.Rows*4
		}
	default:
		align, size = 4, 4
	}
	if t.ArrayLength > 0 {
		stride := (size + 15) &^ 15
		align = 16
		size = stride * t.ArrayLength
	}
	return align, size
}

// parseArraySuffix consumes an optional `[N]` or `[]` after a declarator
// name, folding a constant length expression.
func (p *Parser) parseArraySuffix(t *types.Type) {
	if !p.match(lexer.LeftBracket) {
		return
	}
	if p.match(lexer.RightBracket) {
		t.ArrayLength = -1
		return
	}
	length := p.parseExpression()
	p.expect(lexer.RightBracket, DiagUnexpectedToken, "expected ']' after array length")
	if !length.isConst || length.constInt < 1 || length.constInt > 65536 {
		p.errorf(p.previous().Location, DiagInvalidArrayLength, "array length must be a positive constant")
		t.ArrayLength = 1
		return
	}
	t.ArrayLength = int(length.constInt)
}

// parseSemantic consumes an optional `: NAME` suffix and returns the
// semantic name (empty when absent).
func (p *Parser) parseSemantic() string {
	if !p.check(lexer.Colon) || p.peekAt(1).Kind != lexer.Ident {
		return ""
	}
	p.advance()
	return p.advance().Lexeme
}

// parseAnnotations consumes an optional `< ... >` annotation list.
// Each entry is `[type] name = literal ;`; the legacy
// type prefix is accepted with warning 4717. Values are literals only —
// strings (with adjacent concatenation), numbers, and booleans.
func (p *Parser) parseAnnotations() map[string]effect.ConstantValue {
	if !p.match(lexer.Less) {
		return nil
	}
	annotations := map[string]effect.ConstantValue{}
	for !p.check(lexer.Greater) && !p.check(lexer.EOF) {
		if _, isType := baseKeywordKind[p.peek().Kind]; isType {
			p.warnf(p.loc(), DiagAnnotationPrefix, "type prefix on annotation is deprecated")
			p.advance()
		}
		name := p.expectIdentText(DiagUnexpectedToken, "expected annotation name")
		p.expect(lexer.Equal, DiagUnexpectedToken, "expected '=' in annotation")
		annotations[name] = p.parseAnnotationValue()
		p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after annotation")
	}
	p.expect(lexer.Greater, DiagUnexpectedToken, "expected '>' to close annotations")
	return annotations
}

func (p *Parser) parseAnnotationValue() effect.ConstantValue {
	negative := p.match(lexer.Minus)
	tok := p.peek()
	switch tok.Kind {
	case lexer.StringLiteral:
		p.advance()
		s := tok.StrVal
		// Adjacent string literals concatenate in the parser.
		for p.check(lexer.StringLiteral) {
			s += p.advance().StrVal
		}
		return effect.ConstantValue{IsString: true, Str: s}
	case lexer.IntLiteral:
		p.advance()
		v := int64(tok.IntVal)
		if negative {
			v = -v
		}
		return effect.ConstantValue{IsInt: true, Int: v}
	case lexer.UintLiteral:
		p.advance()
		return effect.ConstantValue{IsInt: true, Int: int64(tok.UintVal)}
	case lexer.FloatLiteral:
		p.advance()
		f := float64(tok.FltVal)
		if negative {
			f = -f
		}
		return effect.ConstantValue{IsFloat: true, Flt: f}
	case lexer.DoubleLiteral:
		p.advance()
		f := tok.DblVal
		if negative {
			f = -f
		}
		return effect.ConstantValue{IsFloat: true, Flt: f}
	case lexer.KwTrue:
		p.advance()
		return effect.ConstantValue{IsBool: true, Bool: true}
	case lexer.KwFalse:
		p.advance()
		return effect.ConstantValue{IsBool: true, Bool: false}
	default:
		p.errorf(p.loc(), DiagUnexpectedToken, "expected a literal annotation value, got '%s'", tok.Lexeme)
		p.advance()
		return effect.ConstantValue{}
	}
}

// parseTextureDecl parses the annotations and `{ property = value; ... }`
// block of a texture global, emitting an image variable and recording the
// metadata entry.
func (p *Parser) parseTextureDecl(declType types.Type, name string) {
	loc := p.previous().Location
	if _, exists := p.symtab.FindLocal(name); exists {
		p.errorf(loc, DiagRedefinition, "redefinition of '%s'", name)
	}
	tex := effect.Texture{Name: name, Width: 1, Height: 1, MipLevels: 1, Format: effect.FormatRGBA8}
	tex.Annotations = p.parseAnnotations()

	if p.match(lexer.LeftBrace) {
		for !p.check(lexer.RightBrace) && !p.check(lexer.EOF) {
			prop := p.expectIdentText(DiagUnexpectedToken, "expected texture property")
			p.expect(lexer.Equal, DiagUnexpectedToken, "expected '=' after texture property")
			switch prop {
			case "Width":
				tex.Width = p.parseConstIntProperty()
			case "Height":
				tex.Height = p.parseConstIntProperty()
			case "Depth":
				tex.Depth = p.parseConstIntProperty()
			case "MipLevels":
				tex.MipLevels = p.parseConstIntProperty()
			case "Format":
				ident := p.expectIdentText(DiagUnexpectedToken, "expected a texture format")
				format, ok := effect.ParseTextureFormat(ident)
				if !ok {
					p.errorf(p.previous().Location, DiagUndeclaredSymbol, "unknown texture format '%s'", ident)
				} else {
					tex.Format = format
				}
			default:
				p.errorf(p.previous().Location, DiagUndeclaredSymbol, "unknown texture property '%s'", prop)
				p.skipPropertyValue()
			}
			p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after texture property")
		}
		p.expect(lexer.RightBrace, DiagUnexpectedToken, "expected '}' to close texture block")
	}
	p.match(lexer.Semicolon)

	if p.texturePtrType == 0 {
		p.texturePtrType = p.builder.AddTypePointer(spirv.StorageClassUniformConstant, p.types.Image2DType())
	}
	id := p.builder.AddVariable(p.texturePtrType, spirv.StorageClassUniformConstant)
	p.builder.AddName(id, name)
	p.varStorage[id] = spirv.StorageClassUniformConstant
	tex.ID = id

	p.module.Textures = append(p.module.Textures, tex)
	p.symtab.Insert(&symbols.Symbol{Name: name, Kind: symbols.KindVariable, Type: declType, ValueID: id})
}

// parseSamplerDecl parses a sampler global's annotations and property
// block, binding it to a declared texture and emitting the combined
// image+sampler variable texNDs sampling loads from.
func (p *Parser) parseSamplerDecl(declType types.Type, name string) {
	loc := p.previous().Location
	if _, exists := p.symtab.FindLocal(name); exists {
		p.errorf(loc, DiagRedefinition, "redefinition of '%s'", name)
	}
	smp := effect.Sampler{
		Name:     name,
		AddressU: effect.AddressClamp,
		AddressV: effect.AddressClamp,
		AddressW: effect.AddressClamp,
		Filter:   effect.Filter{Min: effect.FilterLinear, Mag: effect.FilterLinear, Mip: effect.FilterLinear},
		MaxLOD:   1000,
	}
	smp.Annotations = p.parseAnnotations()

	if p.match(lexer.LeftBrace) {
		for !p.check(lexer.RightBrace) && !p.check(lexer.EOF) {
			prop := p.expectIdentText(DiagUnexpectedToken, "expected sampler property")
			p.expect(lexer.Equal, DiagUnexpectedToken, "expected '=' after sampler property")
			switch prop {
			case "Texture":
				ident := p.expectIdentText(DiagUnexpectedToken, "expected a texture name")
				if _, ok := p.module.FindTexture(ident); !ok {
					p.errorf(p.previous().Location, DiagUndeclaredSymbol, "undeclared texture '%s'", ident)
				}
				smp.Texture = ident
			case "AddressU", "AddressV", "AddressW":
				ident := p.expectIdentText(DiagUnexpectedToken, "expected an address mode")
				mode, ok := effect.ParseAddressMode(ident)
				if !ok {
					p.errorf(p.previous().Location, DiagUndeclaredSymbol, "unknown address mode '%s'", ident)
					break
				}
				switch prop {
				case "AddressU":
					smp.AddressU = mode
				case "AddressV":
					smp.AddressV = mode
				default:
					smp.AddressW = mode
				}
			case "MinFilter", "MagFilter", "MipFilter":
				ident := p.expectIdentText(DiagUnexpectedToken, "expected a filter mode")
				mode, ok := effect.ParseFilterMode(ident)
				if !ok {
					p.errorf(p.previous().Location, DiagUndeclaredSymbol, "unknown filter mode '%s'", ident)
					break
				}
				switch prop {
				case "MinFilter":
					smp.Filter.Min = mode
				case "MagFilter":
					smp.Filter.Mag = mode
				default:
					smp.Filter.Mip = mode
				}
			case "MinLOD":
				smp.MinLOD = p.parseConstFloatProperty()
			case "MaxLOD":
				smp.MaxLOD = p.parseConstFloatProperty()
			case "MipLODBias":
				smp.MipLODBias = p.parseConstFloatProperty()
			default:
				p.errorf(p.previous().Location, DiagUndeclaredSymbol, "unknown sampler property '%s'", prop)
				p.skipPropertyValue()
			}
			p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after sampler property")
		}
		p.expect(lexer.RightBrace, DiagUnexpectedToken, "expected '}' to close sampler block")
	}
	p.match(lexer.Semicolon)

	if p.samplerPtrType == 0 {
		p.samplerPtrType = p.builder.AddTypePointer(spirv.StorageClassUniformConstant, p.types.SampledImageType())
	}
	id := p.builder.AddVariable(p.samplerPtrType, spirv.StorageClassUniformConstant)
	p.builder.AddName(id, name)
	p.varStorage[id] = spirv.StorageClassUniformConstant
	smp.ID = id

	p.module.Samplers = append(p.module.Samplers, smp)
	p.symtab.Insert(&symbols.Symbol{Name: name, Kind: symbols.KindVariable, Type: declType, ValueID: id})
}

func (p *Parser) parseConstIntProperty() int {
	v := p.parseAssignment()
	if !v.isConst {
		p.errorf(p.previous().Location, DiagNonConstInitializer, "property value must be a constant expression")
		return 0
	}
	if v.isFloat {
		return int(v.constFloat)
	}
	return int(v.constInt)
}

func (p *Parser) parseConstFloatProperty() float64 {
	v := p.parseAssignment()
	if !v.isConst {
		p.errorf(p.previous().Location, DiagNonConstInitializer, "property value must be a constant expression")
		return 0
	}
	if v.isFloat {
		return v.constFloat
	}
	return float64(v.constInt)
}

// skipPropertyValue discards tokens up to the terminating ';' of an
// unrecognized property so parsing can continue at the next one.
func (p *Parser) skipPropertyValue() {
	for !p.check(lexer.Semicolon) && !p.check(lexer.RightBrace) && !p.check(lexer.EOF) {
		p.advance()
	}
}

// parseFunctionDecl parses a function's parameter list and body and emits
// the whole definition: OpFunction, OpFunctionParameter per parameter, an
// entry block holding every hoisted local, then the user blocks.
//
// Each parameter is copied into an addressable Function-storage local on
// entry, so parameters behave as ordinary mutable variables inside the
// body the way FX (and HLSL) semantics require.
func (p *Parser) parseFunctionDecl(returnType types.Type, name string) {
	p.expect(lexer.LeftParen, DiagUnexpectedToken, "expected '('")

	type param struct {
		name     string
		typ      types.Type
		semantic string
	}
	var params []param
	if !p.check(lexer.RightParen) {
		for {
			paramType, ok := p.parseType()
			if !ok {
				p.advance()
				panic(panicError{})
			}
			paramName := p.expectIdentText(DiagUnexpectedToken, "expected parameter name")
			p.parseArraySuffix(&paramType)
			semantic := p.parseSemantic()
			if paramType.IsVoid() {
				p.errorf(p.loc(), DiagVoidVariable, "parameter '%s' cannot be void", paramName)
			}
			params = append(params, param{name: paramName, typ: paramType, semantic: semantic})
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	p.expect(lexer.RightParen, DiagUnexpectedToken, "expected ')' after parameters")
	p.parseSemantic()

	returnID := p.types.ID(returnType)
	paramIDs := make([]uint32, len(params))
	paramTypes := make([]types.Type, len(params))
	for i, prm := range params {
		paramIDs[i] = p.types.ID(prm.typ)
		paramTypes[i] = prm.typ
	}
	funcTypeID := p.types.FunctionType(returnID, paramIDs)

	sym := &symbols.Symbol{Name: name, Kind: symbols.KindFunction, Type: returnType, Params: paramTypes}

	// A bare prototype binds the name without a body; a later definition
	// with the same signature fills the id in.
	if p.match(lexer.Semicolon) {
		p.symtab.Insert(sym)
		return
	}

	fnID := p.builder.AddFunction(funcTypeID, returnID, spirv.FunctionControlNone)
	p.builder.AddName(fnID, p.symtab.QualifiedName(name))
	proto := sym
	if prev, ok := p.symtab.FindLocal(name); ok && prev.Kind == symbols.KindFunction {
		for _, cand := range append([]*symbols.Symbol{prev}, prev.Overloads...) {
			match := cand.ValueID == 0 && len(cand.Params) == len(paramTypes)
			for i := 0; match && i < len(paramTypes); i++ {
				match = cand.Params[i].Equal(paramTypes[i])
			}
			if match {
				proto = cand
			}
		}
	}
	if proto == sym {
		p.symtab.Insert(sym)
	}
	proto.ValueID = fnID

	prevFn := p.fn
	p.fn = funcState{active: true, name: name, returnType: returnType}
	p.symtab.EnterScope()

	spirvParams := make([]uint32, len(params))
	for i, prm := range params {
		spirvParams[i] = p.builder.AddFunctionParameter(p.types.ID(prm.typ))
	}
	p.builder.AddLabel()
	p.builder.BeginFunctionBody()
	for i, prm := range params {
		ptr := p.builder.AddLocalVariable(p.types.PointerID(prm.typ, spirv.StorageClassFunction))
		p.builder.AddStore(ptr, spirvParams[i])
		p.builder.AddName(ptr, prm.name)
		p.symtab.Insert(&symbols.Symbol{Name: prm.name, Kind: symbols.KindVariable, Type: prm.typ, ValueID: ptr})
	}

	p.expect(lexer.LeftBrace, DiagUnexpectedToken, "expected '{' to begin function body")
	for !p.check(lexer.RightBrace) && !p.check(lexer.EOF) {
		p.parseStatement()
	}
	p.expect(lexer.RightBrace, DiagUnexpectedToken, "expected '}' to close function body")

	if p.builder.InBlock() {
		if returnType.IsVoid() {
			p.builder.AddReturn()
		} else {
			// Falling off the end of a non-void function: the block must
			// still terminate.
			p.builder.AddUnreachable()
		}
	}
	p.builder.AddFunctionEnd()

	p.symtab.LeaveScope()
	p.fn = prevFn
}
