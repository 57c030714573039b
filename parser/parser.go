// Package parser implements the FX recursive-descent parser and semantic
// analyzer. Unlike a two-stage "parse to generic IR, lower per backend"
// pipeline, this parser emits directly into a spirv.ModuleBuilder as it
// recognizes each construct: there is exactly one output format, so an
// intermediate representation only adds an extra pass with no backend to
// justify it.
package parser

import (
	"github.com/fxsl/fxc/diag"
	"github.com/fxsl/fxc/effect"
	"github.com/fxsl/fxc/lexer"
	"github.com/fxsl/fxc/spirv"
	"github.com/fxsl/fxc/symbols"
	"github.com/fxsl/fxc/types"
)

// Diagnostic codes. Stable and numeric, grouped roughly by subsystem.
const (
	DiagUnexpectedToken     = 3000
	DiagRedefinition        = 3003
	DiagUndeclaredSymbol    = 3004
	DiagNonConstInitializer = 3012
	DiagNoOverload          = 3013
	DiagConstructorArity    = 3014
	DiagConstructorMismatch = 3017
	DiagInvalidSubscript    = 3018
	DiagTypeMismatch        = 3020
	DiagNotLValue           = 3025
	DiagConstUniform        = 3035
	DiagInvalidArrayLength  = 3037
	DiagVoidVariable        = 3038
	DiagDuplicateQualifier  = 3048 // warning
	DiagVectorDimension     = 3052
	DiagMatrixDimension     = 3053
	DiagAmbiguousCall       = 3067
	DiagReturnValueInVoid   = 3079
	DiagMissingReturnValue  = 3080
	DiagTruncation          = 3206 // warning
	DiagRecursiveCall       = 3500
	DiagDivideByZero        = 4000 // warning
	DiagBadInterpolation    = 4576
	DiagAnnotationPrefix    = 4717 // warning
	DiagImplicitUniform     = 5000 // warning
	DiagEmptyStruct         = 5001 // warning
)

// Result is the output of a successful or partially successful parse:
// the emitted SPIR-V binary, the effect side-table, and every diagnostic
// raised along the way.
type Result struct {
	SPIRV       []byte
	Module      *effect.Module
	Diagnostics *diag.Bag
	Success     bool
}

// Parser holds all mutable state for one compilation unit.
type Parser struct {
	tokens []lexer.Token
	pos    int

	filename string
	source   string

	diags   *diag.Bag
	symtab  *symbols.Table
	types   *typeRegistry
	builder *spirv.ModuleBuilder
	module  *effect.Module

	extglsl uint32 // GLSL.std.450 extended instruction set id

	// structs records member layout per declared struct name, for member
	// access and OpTypeStruct reuse.
	structs map[string]*structInfo

	// varStorage remembers the storage class of every OpVariable the
	// parser created, so access chains derive their pointer type from the
	// base variable's class rather than assuming Function storage.
	varStorage map[uint32]spirv.StorageClass

	// Function-body state.
	fn funcState

	// uniformOffset is the running std140-style byte offset assigned to
	// uniform globals in the effect's constant block metadata.
	uniformOffset int

	// samplerPtrType/texturePtrType intern the pointer types shared by
	// every sampler and texture global.
	samplerPtrType uint32
	texturePtrType uint32

	// breakTargets/continueTargets are the active break/continue targets,
	// innermost last; switches push a break target only.
	breakTargets    []uint32
	continueTargets []uint32

	// entryPoints tracks (function id, execution model) pairs already
	// appended, so a function referenced from several passes gets one
	// OpEntryPoint per model.
	entryPoints map[entryKey]bool
}

// funcState is the per-function parsing context: the function being
// emitted, its declared return type, and its name for recursion checks.
type funcState struct {
	active     bool
	name       string
	returnType types.Type
}

type entryKey struct {
	fn    uint32
	model spirv.ExecutionModel
}

// Parse tokenizes and parses source under filename, returning the full
// Result. It never panics on malformed input: every grammar violation is
// recorded as a diagnostic and the parser attempts to resynchronize at
// the next statement or declaration boundary.
func Parse(source, filename string) *Result {
	toks := lexer.New(source, filename, lexer.DefaultOptions()).Tokenize()
	// Statements and declarations never need EOL as a token; only the
	// lexer's preprocessor recognition path cares about it, which this
	// parser does not expand — a whole #-directive line arrives as one
	// PPDirective token and is dropped here along with it. Filtering keeps
	// every other grammar rule free of "skip trivia" boilerplate.
	filtered := make([]lexer.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind == lexer.EOL || t.Kind == lexer.PPDirective {
			continue
		}
		filtered = append(filtered, t)
	}

	p := &Parser{
		tokens:      filtered,
		filename:    filename,
		source:      source,
		diags:       &diag.Bag{},
		symtab:      symbols.NewTable(),
		builder:     spirv.NewModuleBuilder(spirv.Version1_3),
		module:      &effect.Module{},
		structs:     map[string]*structInfo{},
		varStorage:  map[uint32]spirv.StorageClass{},
		entryPoints: map[entryKey]bool{},
	}
	p.types = newTypeRegistry(p.builder)
	p.builder.AddCapability(spirv.CapabilityShader)
	p.extglsl = p.builder.AddExtInstImport("GLSL.std.450")
	p.builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	func() {
		// Backstop so no builder invariant violation (e.g. an emission
		// attempted outside any block by a malformed global initializer)
		// can escape Parse as a panic: it degrades to a diagnostic.
		defer func() {
			if r := recover(); r != nil {
				p.diags.Errorf(p.loc(), DiagUnexpectedToken, "unrecoverable parse error: %v", r)
			}
		}()
		p.parseProgram()
	}()

	success := !p.diags.HasErrors()
	var bin []byte
	if success {
		bin = p.builder.Build()
	}
	return &Result{SPIRV: bin, Module: p.module, Diagnostics: p.diags, Success: success}
}

func (p *Parser) parseProgram() {
	for !p.check(lexer.EOF) {
		p.parseTopLevel()
	}
}

func (p *Parser) parseTopLevel() {
	defer p.recoverTopLevel()

	switch {
	case p.match(lexer.KwNamespace):
		p.parseNamespace()
	case p.match(lexer.KwStruct):
		p.parseStructDecl()
	case p.match(lexer.KwTechnique):
		p.parseTechnique()
	case p.check(lexer.Semicolon), p.check(lexer.RightBrace):
		p.advance() // stray ';' or '}' left behind by error recovery
	default:
		p.parseGlobalDeclaration()
	}
}

// recoverTopLevel resynchronizes after a panic-based parse error (see
// panicError) by advancing to the next top-level keyword or ';'.
func (p *Parser) recoverTopLevel() {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(panicError); !ok {
		panic(r)
	}
	for !p.check(lexer.EOF) {
		if p.check(lexer.Semicolon) {
			p.advance()
			return
		}
		switch p.peek().Kind {
		case lexer.KwStruct, lexer.KwTechnique, lexer.KwNamespace, lexer.RightBrace:
			return
		}
		p.advance()
	}
}

// panicError is thrown by expect() on unrecoverable local failures and
// caught by recoverTopLevel/recoverStatement; it is never allowed to
// escape Parse.
type panicError struct{}

func (p *Parser) parseNamespace() {
	name := p.expectIdentText(DiagUnexpectedToken, "expected namespace name")
	p.symtab.EnterNamespace(name)
	p.expect(lexer.LeftBrace, DiagUnexpectedToken, "expected '{' after namespace name")
	for !p.check(lexer.RightBrace) && !p.check(lexer.EOF) {
		p.parseTopLevel()
	}
	p.expect(lexer.RightBrace, DiagUnexpectedToken, "expected '}' to close namespace")
	p.symtab.LeaveNamespace()
}

// --- token stream primitives ---

func (p *Parser) peek() lexer.Token { return p.tokens[p.pos] }

func (p *Parser) peekAt(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() lexer.Token { return p.tokens[p.pos-1] }

func (p *Parser) check(k lexer.Kind) bool { return p.peek().Kind == k }

func (p *Parser) advance() lexer.Token {
	if !p.check(lexer.EOF) {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) match(kinds ...lexer.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(k lexer.Kind, code int, message string) lexer.Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorf(p.peek().Location, code, "%s, got '%s'", message, p.peek().Lexeme)
	panic(panicError{})
}

func (p *Parser) expectIdentText(code int, message string) string {
	tok := p.expect(lexer.Ident, code, message)
	return tok.Lexeme
}

func (p *Parser) errorf(loc diag.Location, code int, format string, args ...interface{}) {
	p.diags.Errorf(loc, code, format, args...)
}

func (p *Parser) warnf(loc diag.Location, code int, format string, args ...interface{}) {
	p.diags.Warningf(loc, code, format, args...)
}

func (p *Parser) loc() diag.Location { return p.peek().Location }
