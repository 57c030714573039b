// Package lexer implements the FX hand-written tokenizer: a character
// stream scanner producing tokens with source locations, byte offsets, and
// literal payloads.
package lexer

import "github.com/fxsl/fxc/diag"

// Kind enumerates every token kind the lexer can produce.
type Kind uint8

const (
	EOF Kind = iota
	EOL
	Unknown
	Ident
	Reserved

	// Literals
	IntLiteral
	UintLiteral
	FloatLiteral
	DoubleLiteral
	StringLiteral
	TrueLiteral
	FalseLiteral

	// Preprocessor
	PPDirective // any #foo line, recognized but not expanded

	// Single-character operators
	Plus
	Minus
	Star
	Slash
	Percent
	Ampersand
	Pipe
	Caret
	Tilde
	Bang
	Equal
	Less
	Greater
	Dot
	Comma
	Colon
	Semicolon
	Question
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	At
	Hash

	// Multi-character operators
	PlusPlus
	MinusMinus
	PlusEqual
	MinusEqual
	StarEqual
	SlashEqual
	PercentEqual
	AmpEqual
	PipeEqual
	CaretEqual
	LessLessEqual
	GreaterGreaterEqual
	EqualEqual
	BangEqual
	LessEqual
	GreaterEqual
	AmpAmp
	PipePipe
	LessLess
	GreaterGreater
	Arrow
	ColonColon
	Ellipsis

	// Keywords — control flow
	KwIf
	KwElse
	KwFor
	KwWhile
	KwDo
	KwSwitch
	KwCase
	KwDefault
	KwBreak
	KwContinue
	KwReturn
	KwDiscard

	// Keywords — declarations
	KwStruct
	KwTechnique
	KwPass
	KwNamespace
	KwTrue
	KwFalse

	// Keywords — storage / modifier qualifiers
	KwExtern
	KwStatic
	KwUniform
	KwVolatile
	KwPrecise
	KwIn
	KwOut
	KwInOut
	KwConst

	// Keywords — interpolation qualifiers
	KwLinear
	KwNoperspective
	KwCentroid
	KwNointerpolation

	// Keywords — scalar type names
	KwVoid
	KwBool
	KwInt
	KwUint
	KwFloat
	KwDouble
	KwString

	// Keywords — vector/matrix spellings
	KwVector
	KwMatrix

	// Keywords — texture/sampler spellings
	KwTexture1D
	KwTexture2D
	KwTexture3D
	KwSampler1D
	KwSampler2D
	KwSampler3D
)

var keywords = map[string]Kind{
	"if": KwIf, "else": KwElse, "for": KwFor, "while": KwWhile, "do": KwDo,
	"switch": KwSwitch, "case": KwCase, "default": KwDefault,
	"break": KwBreak, "continue": KwContinue, "return": KwReturn, "discard": KwDiscard,
	"struct": KwStruct, "technique": KwTechnique, "pass": KwPass, "namespace": KwNamespace,
	"true": KwTrue, "false": KwFalse,
	"extern": KwExtern, "static": KwStatic, "uniform": KwUniform, "volatile": KwVolatile,
	"precise": KwPrecise, "in": KwIn, "out": KwOut, "inout": KwInOut, "const": KwConst,
	"linear": KwLinear, "noperspective": KwNoperspective, "centroid": KwCentroid,
	"nointerpolation": KwNointerpolation,
	"void": KwVoid, "bool": KwBool, "int": KwInt, "uint": KwUint,
	"float": KwFloat, "double": KwDouble, "string": KwString,
	"vector": KwVector, "matrix": KwMatrix,
	"texture1D": KwTexture1D, "texture2D": KwTexture2D, "texture3D": KwTexture3D,
	"sampler1D": KwSampler1D, "sampler2D": KwSampler2D, "sampler3D": KwSampler3D,
}

// Sized type spellings ("float4", "int3x3") are not keywords: the lexer
// recognizes the whole identifier as one Ident token and leaves
// component-count parsing to parser.parseType.

// LiteralKind distinguishes which field of Token's literal payload is valid.
type LiteralKind uint8

const (
	LitNone LiteralKind = iota
	LitInt
	LitUint
	LitFloat
	LitDouble
	LitString
)

// Token is the lexer's output unit: a kind, a location, a byte span into
// the source, and — for literals — a decoded payload.
type Token struct {
	Kind     Kind
	Location diag.Location
	Offset   int
	Length   int
	Lexeme   string

	LitKind LiteralKind
	IntVal  int32
	UintVal uint32
	FltVal  float32
	DblVal  float64
	StrVal  string
}

// IsKeyword reports whether k is one of the reserved FX keywords.
func (k Kind) IsKeyword() bool {
	return k >= KwIf && k <= KwSampler3D
}
