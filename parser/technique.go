package parser

import (
	"strconv"
	"strings"

	"github.com/fxsl/fxc/diag"
	"github.com/fxsl/fxc/effect"
	"github.com/fxsl/fxc/lexer"
	"github.com/fxsl/fxc/spirv"
	"github.com/fxsl/fxc/symbols"
)

// Pass-state enumerant tables: identifiers on the right of
// a pass state assignment resolve through the table matching that state
// only; they are not looked up in the symbol table, and a name missing
// from the table is diagnostic 3004.
var blendFactorEnums = map[string]effect.BlendFactor{
	"ZERO":         effect.BlendZero,
	"ONE":          effect.BlendOne,
	"SRCCOLOR":     effect.BlendSrcColor,
	"INVSRCCOLOR":  effect.BlendInvSrcColor,
	"SRCALPHA":     effect.BlendSrcAlpha,
	"INVSRCALPHA":  effect.BlendInvSrcAlpha,
	"DESTALPHA":    effect.BlendDestAlpha,
	"INVDESTALPHA": effect.BlendInvDestAlpha,
	"DESTCOLOR":    effect.BlendDestColor,
	"INVDESTCOLOR": effect.BlendInvDestColor,
}

var blendOpEnums = map[string]effect.BlendOp{
	"ADD":         effect.BlendOpAdd,
	"SUBTRACT":    effect.BlendOpSubtract,
	"REVSUBTRACT": effect.BlendOpRevSubtract,
	"MIN":         effect.BlendOpMin,
	"MAX":         effect.BlendOpMax,
}

var stencilOpEnums = map[string]effect.StencilOp{
	"KEEP":    effect.StencilKeep,
	"ZERO":    effect.StencilZero,
	"REPLACE": effect.StencilReplace,
	"INCRSAT": effect.StencilIncrSat,
	"DECRSAT": effect.StencilDecrSat,
	"INVERT":  effect.StencilInvert,
	"INCR":    effect.StencilIncr,
	"DECR":    effect.StencilDecr,
}

var compareFuncEnums = map[string]effect.ComparisonFunc{
	"NEVER":        effect.CompareNever,
	"LESS":         effect.CompareLess,
	"EQUAL":        effect.CompareEqual,
	"LESSEQUAL":    effect.CompareLessEqual,
	"GREATER":      effect.CompareGreater,
	"NOTEQUAL":     effect.CompareNotEqual,
	"GREATEREQUAL": effect.CompareGreaterEqual,
	"ALWAYS":       effect.CompareAlways,
}

// parseTechnique parses `technique Name [<annotations>] { pass* }` after
// the keyword, appending the record to the effect metadata.
func (p *Parser) parseTechnique() {
	name := p.expectIdentText(DiagUnexpectedToken, "expected technique name")
	tech := effect.Technique{Name: p.symtab.QualifiedName(name)}
	tech.Annotations = p.parseAnnotations()
	p.expect(lexer.LeftBrace, DiagUnexpectedToken, "expected '{' after technique name")
	for p.match(lexer.KwPass) {
		tech.Passes = append(tech.Passes, p.parsePass())
	}
	p.expect(lexer.RightBrace, DiagUnexpectedToken, "expected '}' to close technique")
	p.module.Techniques = append(p.module.Techniques, tech)
}

// parsePass parses one `pass [Name] { State = value; ... }` block.
func (p *Parser) parsePass() effect.Pass {
	pass := effect.Pass{ColorWriteMask: 0xf}
	if p.check(lexer.Ident) {
		pass.Name = p.advance().Lexeme
	}
	p.expect(lexer.LeftBrace, DiagUnexpectedToken, "expected '{' after pass")
	for !p.check(lexer.RightBrace) && !p.check(lexer.EOF) {
		state := p.expectIdentText(DiagUnexpectedToken, "expected a pass state name")
		stateLoc := p.previous().Location
		p.expect(lexer.Equal, DiagUnexpectedToken, "expected '=' after pass state")
		p.parsePassState(&pass, state, stateLoc)
		p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after pass state")
	}
	p.expect(lexer.RightBrace, DiagUnexpectedToken, "expected '}' to close pass")
	return pass
}

// parsePassState dispatches over the closed set of pass state names
//; an unknown
// name is diagnostic 3004.
func (p *Parser) parsePassState(pass *effect.Pass, state string, loc diag.Location) {
	switch state {
	case "VertexShader":
		pass.VertexShader = p.parseShaderRef(spirv.ExecutionModelVertex)
	case "PixelShader":
		pass.PixelShader = p.parseShaderRef(spirv.ExecutionModelFragment)
	case "ClearRenderTargets":
		pass.ClearRenderTargets = p.parseStateBool()
	case "BlendEnable":
		pass.BlendEnable = p.parseStateBool()
	case "StencilEnable":
		pass.StencilEnable = p.parseStateBool()
	case "SRGBWriteEnable":
		pass.SRGBWriteEnable = p.parseStateBool()
	case "SrcBlend":
		pass.SrcBlend = p.parseStateEnumBlendFactor()
	case "DestBlend":
		pass.DestBlend = p.parseStateEnumBlendFactor()
	case "SrcBlendAlpha":
		pass.SrcBlendAlpha = p.parseStateEnumBlendFactor()
	case "DestBlendAlpha":
		pass.DestBlendAlpha = p.parseStateEnumBlendFactor()
	case "BlendOp":
		pass.BlendOp = p.parseStateEnumBlendOp()
	case "BlendOpAlpha":
		pass.BlendOpAlpha = p.parseStateEnumBlendOp()
	case "StencilFunc":
		pass.StencilFunc = p.parseStateEnumCompareFunc()
	case "StencilPass", "StencilPassOp":
		pass.StencilPass = p.parseStateEnumStencilOp()
	case "StencilFail", "StencilFailOp":
		pass.StencilFail = p.parseStateEnumStencilOp()
	case "StencilZFail", "StencilDepthFailOp":
		pass.StencilDepthFail = p.parseStateEnumStencilOp()
	case "StencilRef":
		pass.StencilRef = uint8(p.parseStateInt())
	case "StencilReadMask":
		pass.StencilReadMask = uint8(p.parseStateInt())
	case "StencilWriteMask":
		pass.StencilWriteMask = uint8(p.parseStateInt())
	case "ColorWriteMask":
		pass.ColorWriteMask = uint8(p.parseStateInt())
	default:
		if strings.HasPrefix(state, "RenderTarget") {
			index := 0
			if suffix := state[len("RenderTarget"):]; suffix != "" {
				n, err := strconv.Atoi(suffix)
				if err != nil || n < 0 || n > 7 {
					p.errorf(loc, DiagUndeclaredSymbol, "unknown pass state '%s'", state)
					p.skipPropertyValue()
					return
				}
				index = n
			}
			ident := p.expectIdentText(DiagUnexpectedToken, "expected a texture name")
			if _, ok := p.module.FindTexture(ident); !ok {
				p.errorf(p.previous().Location, DiagUndeclaredSymbol, "undeclared texture '%s'", ident)
				return
			}
			pass.RenderTargets[index] = ident
			return
		}
		p.errorf(loc, DiagUndeclaredSymbol, "unknown pass state '%s'", state)
		p.skipPropertyValue()
	}
}

// parseShaderRef resolves a VertexShader/PixelShader value to a declared
// function and appends the matching OpEntryPoint the
// first time that (function, model) pair is referenced.
func (p *Parser) parseShaderRef(model spirv.ExecutionModel) string {
	ident := p.expectIdentText(DiagUnexpectedToken, "expected an entry point name")
	sym, ok := p.symtab.Find(ident)
	if !ok || sym.Kind != symbols.KindFunction {
		p.errorf(p.previous().Location, DiagUndeclaredSymbol, "undeclared shader function '%s'", ident)
		return ident
	}
	key := entryKey{fn: sym.ValueID, model: model}
	if !p.entryPoints[key] {
		p.entryPoints[key] = true
		p.builder.AddEntryPoint(model, sym.ValueID, ident, nil)
		if model == spirv.ExecutionModelFragment {
			p.builder.AddExecutionMode(sym.ValueID, spirv.ExecutionModeOriginUpperLeft)
		}
	}
	return ident
}

// parseStateBool accepts true/false or an integer literal.
func (p *Parser) parseStateBool() bool {
	switch {
	case p.match(lexer.KwTrue):
		return true
	case p.match(lexer.KwFalse):
		return false
	case p.check(lexer.IntLiteral), p.check(lexer.UintLiteral):
		return p.parseStateInt() != 0
	default:
		p.errorf(p.loc(), DiagUnexpectedToken, "expected true, false, or an integer, got '%s'", p.peek().Lexeme)
		p.skipPropertyValue()
		return false
	}
}

func (p *Parser) parseStateInt() int {
	tok := p.peek()
	switch tok.Kind {
	case lexer.IntLiteral:
		p.advance()
		return int(tok.IntVal)
	case lexer.UintLiteral:
		p.advance()
		return int(tok.UintVal)
	default:
		p.errorf(p.loc(), DiagUnexpectedToken, "expected an integer pass state value, got '%s'", tok.Lexeme)
		p.skipPropertyValue()
		return 0
	}
}

// stateEnumIdent consumes the value of an enumerated pass state: either
// an integer literal, used verbatim, or an identifier resolved through
// lookup (per-state table first, then nothing — unknown enumerants are
// 3004).
func (p *Parser) stateEnumIdent() (string, int, bool) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.IntLiteral:
		p.advance()
		return "", int(tok.IntVal), false
	case lexer.UintLiteral:
		p.advance()
		return "", int(tok.UintVal), false
	case lexer.Ident:
		p.advance()
		return strings.ToUpper(tok.Lexeme), 0, true
	default:
		p.errorf(p.loc(), DiagUnexpectedToken, "expected a pass state value, got '%s'", tok.Lexeme)
		p.skipPropertyValue()
		return "", 0, false
	}
}

func (p *Parser) parseStateEnumBlendFactor() effect.BlendFactor {
	name, n, isIdent := p.stateEnumIdent()
	if !isIdent {
		return effect.BlendFactor(n)
	}
	if v, ok := blendFactorEnums[name]; ok {
		return v
	}
	p.errorf(p.previous().Location, DiagUndeclaredSymbol, "unknown blend factor '%s'", name)
	return effect.BlendZero
}

func (p *Parser) parseStateEnumBlendOp() effect.BlendOp {
	name, n, isIdent := p.stateEnumIdent()
	if !isIdent {
		return effect.BlendOp(n)
	}
	if v, ok := blendOpEnums[name]; ok {
		return v
	}
	p.errorf(p.previous().Location, DiagUndeclaredSymbol, "unknown blend operation '%s'", name)
	return effect.BlendOpAdd
}

func (p *Parser) parseStateEnumStencilOp() effect.StencilOp {
	name, n, isIdent := p.stateEnumIdent()
	if !isIdent {
		return effect.StencilOp(n)
	}
	if v, ok := stencilOpEnums[name]; ok {
		return v
	}
	p.errorf(p.previous().Location, DiagUndeclaredSymbol, "unknown stencil operation '%s'", name)
	return effect.StencilKeep
}

func (p *Parser) parseStateEnumCompareFunc() effect.ComparisonFunc {
	name, n, isIdent := p.stateEnumIdent()
	if !isIdent {
		return effect.ComparisonFunc(n)
	}
	if v, ok := compareFuncEnums[name]; ok {
		return v
	}
	p.errorf(p.previous().Location, DiagUndeclaredSymbol, "unknown comparison function '%s'", name)
	return effect.CompareAlways
}
