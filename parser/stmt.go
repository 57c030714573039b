package parser

import (
	"github.com/fxsl/fxc/lexer"
	"github.com/fxsl/fxc/spirv"
	"github.com/fxsl/fxc/symbols"
	"github.com/fxsl/fxc/types"
)

// stmtAttrs carries the bracketed attribute hints ([unroll], [flatten],
// ...) into the control-flow construct that follows them; they map to the
// SPIR-V SelectionControl / LoopControl fields.
type stmtAttrs struct {
	selection spirv.SelectionControl
	loop      spirv.LoopControl
}

// parseStatement parses one statement inside a function body. Code after
// a terminator (return, break, ...) opens a fresh unreachable block so
// emission never targets a closed block.
func (p *Parser) parseStatement() {
	defer p.recoverStatement()

	if !p.builder.InBlock() {
		p.builder.AddLabel()
	}

	attrs := p.parseAttributes()

	switch {
	case p.match(lexer.LeftBrace):
		p.symtab.EnterScope()
		for !p.check(lexer.RightBrace) && !p.check(lexer.EOF) {
			p.parseStatement()
		}
		p.expect(lexer.RightBrace, DiagUnexpectedToken, "expected '}' to close block")
		p.symtab.LeaveScope()
	case p.match(lexer.KwIf):
		p.parseIf(attrs)
	case p.match(lexer.KwSwitch):
		p.parseSwitch(attrs)
	case p.match(lexer.KwWhile):
		p.parseWhile(attrs)
	case p.match(lexer.KwDo):
		p.parseDoWhile(attrs)
	case p.match(lexer.KwFor):
		p.parseFor(attrs)
	case p.match(lexer.KwReturn):
		p.parseReturn()
	case p.match(lexer.KwDiscard):
		p.builder.AddKill()
		p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after 'discard'")
	case p.match(lexer.KwBreak):
		if len(p.breakTargets) == 0 {
			p.errorf(p.previous().Location, DiagUnexpectedToken, "'break' outside of a loop or switch")
		} else {
			p.builder.AddBranch(p.breakTargets[len(p.breakTargets)-1])
		}
		p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after 'break'")
	case p.match(lexer.KwContinue):
		if len(p.continueTargets) == 0 {
			p.errorf(p.previous().Location, DiagUnexpectedToken, "'continue' outside of a loop")
		} else {
			p.builder.AddBranch(p.continueTargets[len(p.continueTargets)-1])
		}
		p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after 'continue'")
	case p.match(lexer.Semicolon):
		// empty statement
	default:
		p.parseDeclOrExprStatement()
	}
}

// recoverStatement resynchronizes after a panicError inside a statement
// by skipping to the next ';' or '}' at the current brace depth.
func (p *Parser) recoverStatement() {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(panicError); !ok {
		panic(r)
	}
	depth := 0
	for !p.check(lexer.EOF) {
		switch p.peek().Kind {
		case lexer.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		case lexer.LeftBrace:
			depth++
		case lexer.RightBrace:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

// parseAttributes consumes any `[name]` attribute prefixes. Unknown
// attribute names warn (unnumbered) and are otherwise ignored.
func (p *Parser) parseAttributes() stmtAttrs {
	var attrs stmtAttrs
	for p.check(lexer.LeftBracket) && p.peekAt(1).Kind == lexer.Ident && p.peekAt(2).Kind == lexer.RightBracket {
		p.advance()
		name := p.advance().Lexeme
		p.advance()
		switch name {
		case "unroll":
			attrs.loop |= spirv.LoopControlUnroll
		case "loop":
			attrs.loop |= spirv.LoopControlDontUnroll
		case "flatten":
			attrs.selection |= spirv.SelectionControlFlatten
		case "branch":
			attrs.selection |= spirv.SelectionControlDontFlatten
		default:
			p.diags.Warningf(p.previous().Location, 0, "unknown attribute '%s'", name)
		}
	}
	return attrs
}

func (p *Parser) parseCondition() uint32 {
	p.expect(lexer.LeftParen, DiagUnexpectedToken, "expected '('")
	cond := p.parseExpression()
	p.expect(lexer.RightParen, DiagUnexpectedToken, "expected ')'")
	return p.rvalue(p.convert(cond, types.Scalar(types.Bool)))
}

// parseIf emits the SelectionMerge → BranchConditional → true block →
// false block → merge label shape SPIR-V structured control flow requires.
func (p *Parser) parseIf(attrs stmtAttrs) {
	cond := p.parseCondition()

	// The else target must be known before the conditional branch but
	// 'else' has not been seen yet; allocate a dedicated false label
	// eagerly and let it fall through to merge when no else appears.
	trueLabel := p.builder.AllocID()
	mergeLabel := p.builder.AllocID()
	falseLabel := p.builder.AllocID()

	p.builder.AddSelectionMerge(mergeLabel, attrs.selection)
	p.builder.AddBranchConditional(cond, trueLabel, falseLabel)

	p.builder.AddLabelWithID(trueLabel)
	p.parseStatement()
	if p.builder.InBlock() {
		p.builder.AddBranch(mergeLabel)
	}

	p.builder.AddLabelWithID(falseLabel)
	if p.match(lexer.KwElse) {
		p.parseStatement()
	}
	if p.builder.InBlock() {
		p.builder.AddBranch(mergeLabel)
	}

	p.builder.AddLabelWithID(mergeLabel)
}

func (p *Parser) parseWhile(attrs stmtAttrs) {
	header := p.builder.AllocID()
	condLabel := p.builder.AllocID()
	body := p.builder.AllocID()
	cont := p.builder.AllocID()
	merge := p.builder.AllocID()

	p.builder.AddBranch(header)
	p.builder.AddLabelWithID(header)
	p.builder.AddLoopMerge(merge, cont, attrs.loop)
	p.builder.AddBranch(condLabel)

	p.builder.AddLabelWithID(condLabel)
	cond := p.parseCondition()
	p.builder.AddBranchConditional(cond, body, merge)

	p.builder.AddLabelWithID(body)
	p.pushLoop(merge, cont)
	p.parseStatement()
	p.popLoop()
	if p.builder.InBlock() {
		p.builder.AddBranch(cont)
	}

	p.builder.AddLabelWithID(cont)
	p.builder.AddBranch(header)
	p.builder.AddLabelWithID(merge)
}

func (p *Parser) parseDoWhile(attrs stmtAttrs) {
	header := p.builder.AllocID()
	body := p.builder.AllocID()
	cont := p.builder.AllocID()
	merge := p.builder.AllocID()

	p.builder.AddBranch(header)
	p.builder.AddLabelWithID(header)
	p.builder.AddLoopMerge(merge, cont, attrs.loop)
	p.builder.AddBranch(body)

	p.builder.AddLabelWithID(body)
	p.pushLoop(merge, cont)
	p.parseStatement()
	p.popLoop()
	if p.builder.InBlock() {
		p.builder.AddBranch(cont)
	}

	p.expect(lexer.KwWhile, DiagUnexpectedToken, "expected 'while' after do-block")
	p.builder.AddLabelWithID(cont)
	cond := p.parseCondition()
	p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after do-while")
	p.builder.AddBranchConditional(cond, header, merge)

	p.builder.AddLabelWithID(merge)
}

// parseFor handles `for (init; cond; incr) body`. The increment clause
// appears in the token stream before the body but must be emitted after
// it (in the continue block), so the parser records the increment's token
// range, skips it, and replays it once the body has been emitted — the
// same cursor backup/restore technique the cast path uses, applied to a
// span.
func (p *Parser) parseFor(attrs stmtAttrs) {
	p.expect(lexer.LeftParen, DiagUnexpectedToken, "expected '(' after 'for'")
	p.symtab.EnterScope()

	if !p.match(lexer.Semicolon) {
		p.parseDeclOrExprStatement()
	}

	header := p.builder.AllocID()
	condLabel := p.builder.AllocID()
	body := p.builder.AllocID()
	cont := p.builder.AllocID()
	merge := p.builder.AllocID()

	p.builder.AddBranch(header)
	p.builder.AddLabelWithID(header)
	p.builder.AddLoopMerge(merge, cont, attrs.loop)
	p.builder.AddBranch(condLabel)

	p.builder.AddLabelWithID(condLabel)
	if p.check(lexer.Semicolon) {
		p.advance()
		p.builder.AddBranch(body)
	} else {
		cond := p.parseExpression()
		p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after for-condition")
		condID := p.rvalue(p.convert(cond, types.Scalar(types.Bool)))
		p.builder.AddBranchConditional(condID, body, merge)
	}

	// Skip the increment clause to its closing ')', remembering where it
	// started.
	incrStart := p.pos
	depth := 0
	for !p.check(lexer.EOF) {
		if p.check(lexer.LeftParen) {
			depth++
		} else if p.check(lexer.RightParen) {
			if depth == 0 {
				break
			}
			depth--
		}
		p.advance()
	}
	p.expect(lexer.RightParen, DiagUnexpectedToken, "expected ')' after for-increment")

	p.builder.AddLabelWithID(body)
	p.pushLoop(merge, cont)
	p.parseStatement()
	p.popLoop()
	if p.builder.InBlock() {
		p.builder.AddBranch(cont)
	}

	p.builder.AddLabelWithID(cont)
	afterBody := p.pos
	if incrStart < afterBody && p.tokens[incrStart].Kind != lexer.RightParen {
		p.pos = incrStart
		p.parseExpression()
		p.pos = afterBody
	}
	p.builder.AddBranch(header)

	p.builder.AddLabelWithID(merge)
	p.symtab.LeaveScope()
}

// parseSwitch lowers switch/case/default to OpSelectionMerge + OpSwitch.
// Case bodies do not fall through: a group that reaches its end branches
// to the merge block.
func (p *Parser) parseSwitch(attrs stmtAttrs) {
	p.expect(lexer.LeftParen, DiagUnexpectedToken, "expected '(' after 'switch'")
	selector := p.parseExpression()
	p.expect(lexer.RightParen, DiagUnexpectedToken, "expected ')'")
	selectorID := p.rvalue(p.convert(selector, types.Scalar(types.Int)))

	merge := p.builder.AllocID()
	defaultLabel := p.builder.AllocID()

	p.builder.AddSelectionMerge(merge, attrs.selection)
	ref := p.builder.AddSwitchForward(selectorID, defaultLabel)

	p.expect(lexer.LeftBrace, DiagUnexpectedToken, "expected '{' after switch")
	p.breakTargets = append(p.breakTargets, merge)

	sawDefault := false
	for p.check(lexer.KwCase) || p.check(lexer.KwDefault) {
		groupLabel := uint32(0)
		isDefault := false
		for p.check(lexer.KwCase) || p.check(lexer.KwDefault) {
			if p.match(lexer.KwDefault) {
				isDefault = true
				sawDefault = true
			} else {
				p.advance()
				lit := p.parseExpression()
				if !lit.isConst {
					p.errorf(p.previous().Location, DiagNonConstInitializer, "case label must be a constant expression")
				}
				if groupLabel == 0 {
					groupLabel = p.builder.AllocID()
				}
				p.builder.AppendSwitchCase(ref, uint32(lit.constInt), groupLabel)
			}
			p.expect(lexer.Colon, DiagUnexpectedToken, "expected ':' after case label")
		}
		if isDefault {
			if groupLabel != 0 {
				// `case N: default:` share one block; alias by emitting the
				// default label as an immediate branch into the group.
				p.builder.AddLabelWithID(defaultLabel)
				p.builder.AddBranch(groupLabel)
			} else {
				groupLabel = defaultLabel
			}
		}
		p.builder.AddLabelWithID(groupLabel)
		for !p.check(lexer.KwCase) && !p.check(lexer.KwDefault) && !p.check(lexer.RightBrace) && !p.check(lexer.EOF) {
			p.parseStatement()
		}
		if p.builder.InBlock() {
			p.builder.AddBranch(merge)
		}
	}
	p.expect(lexer.RightBrace, DiagUnexpectedToken, "expected '}' to close switch")
	p.breakTargets = p.breakTargets[:len(p.breakTargets)-1]

	if !sawDefault {
		p.builder.AddLabelWithID(defaultLabel)
		p.builder.AddBranch(merge)
	}
	p.builder.AddLabelWithID(merge)
}

func (p *Parser) parseReturn() {
	loc := p.previous().Location
	if p.match(lexer.Semicolon) {
		if !p.fn.returnType.IsVoid() {
			p.errorf(loc, DiagMissingReturnValue, "non-void function '%s' must return a value", p.fn.name)
			p.builder.AddReturn()
			return
		}
		p.builder.AddReturn()
		return
	}
	v := p.parseExpression()
	p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after return value")
	if p.fn.returnType.IsVoid() {
		p.errorf(loc, DiagReturnValueInVoid, "void function '%s' cannot return a value", p.fn.name)
		p.builder.AddReturn()
		return
	}
	converted := p.convert(v, p.fn.returnType)
	p.builder.AddReturnValue(p.rvalue(converted))
}

func (p *Parser) pushLoop(merge, cont uint32) {
	p.breakTargets = append(p.breakTargets, merge)
	p.continueTargets = append(p.continueTargets, cont)
}

func (p *Parser) popLoop() {
	p.breakTargets = p.breakTargets[:len(p.breakTargets)-1]
	p.continueTargets = p.continueTargets[:len(p.continueTargets)-1]
}

// parseDeclOrExprStatement disambiguates a local declaration from an
// expression statement: if the tokens at the cursor read as a type
// followed by a name it is a declaration, otherwise the cursor is
// restored and the tokens parse as an expression. The one-token-lookahead
// limit of the grammar makes this the same snapshot/restore trick the
// cast path uses.
func (p *Parser) parseDeclOrExprStatement() {
	save := p.pos
	if t, ok := p.parseTypeNoDiag(); ok && p.check(lexer.Ident) {
		p.parseLocalDeclaration(t)
		return
	}
	p.pos = save
	p.parseExpression()
	p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after expression")
}

func (p *Parser) parseLocalDeclaration(declType types.Type) {
	if declType.Base == types.Texture || declType.Base == types.Sampler {
		p.errorf(p.loc(), DiagVoidVariable, "textures and samplers must be declared at global scope")
	}
	if declType.IsVoid() {
		p.errorf(p.loc(), DiagVoidVariable, "variable cannot be void")
	}
	for {
		name := p.expectIdentText(DiagUnexpectedToken, "expected variable name")
		loc := p.previous().Location
		t := declType
		p.parseArraySuffix(&t)
		p.parseSemantic()

		if _, exists := p.symtab.FindLocal(name); exists {
			p.errorf(loc, DiagRedefinition, "redefinition of '%s'", name)
		}

		var init value
		hasInit := false
		if p.match(lexer.Equal) {
			init = p.parseExpression()
			hasInit = true
		}
		if t.Qualifiers.Has(types.QualConst) && !hasInit {
			p.errorf(loc, DiagNonConstInitializer, "const variable '%s' requires an initializer", name)
		}

		// The OpVariable is hoisted to the function's first block; the
		// initializing store stays here so a declaration inside a loop
		// re-initializes on every pass.
		ptr := p.types.PointerID(t, spirv.StorageClassFunction)
		id := p.builder.AddLocalVariable(ptr)
		if hasInit {
			p.builder.AddStore(id, p.rvalue(p.convert(init, t)))
		}
		p.builder.AddName(id, name)
		p.symtab.Insert(&symbols.Symbol{Name: name, Kind: symbols.KindVariable, Type: t, ValueID: id})

		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.Semicolon, DiagUnexpectedToken, "expected ';' after declaration")
}
