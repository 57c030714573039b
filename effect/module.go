// Package effect models the FX effect's render-state metadata: textures,
// samplers, uniforms, techniques, and passes. This side-table
// travels alongside the SPIR-V binary the parser emits; none of it has a
// SPIR-V representation of its own except the per-uniform variables and
// the texture/sampler variables referenced by Texture.ID/Sampler.ID.
package effect

// TextureFormat enumerates the pixel formats a texture declaration may
// request.
type TextureFormat int

const (
	FormatR8 TextureFormat = iota
	FormatR16F
	FormatR32F
	FormatRG8
	FormatRG16
	FormatRG16F
	FormatRG32F
	FormatRGBA8
	FormatRGBA16
	FormatRGBA16F
	FormatRGBA32F
	FormatDXT1
	FormatDXT3
	FormatDXT5
	FormatLATC1
	FormatLATC2
)

// ParseTextureFormat maps the format identifiers accepted in a texture
// declaration's Format property to their TextureFormat.
func ParseTextureFormat(s string) (TextureFormat, bool) {
	switch s {
	case "R8":
		return FormatR8, true
	case "R16F":
		return FormatR16F, true
	case "R32F":
		return FormatR32F, true
	case "RG8":
		return FormatRG8, true
	case "RG16":
		return FormatRG16, true
	case "RG16F":
		return FormatRG16F, true
	case "RG32F":
		return FormatRG32F, true
	case "RGBA8":
		return FormatRGBA8, true
	case "RGBA16":
		return FormatRGBA16, true
	case "RGBA16F":
		return FormatRGBA16F, true
	case "RGBA32F":
		return FormatRGBA32F, true
	case "DXT1":
		return FormatDXT1, true
	case "DXT3":
		return FormatDXT3, true
	case "DXT5":
		return FormatDXT5, true
	case "LATC1":
		return FormatLATC1, true
	case "LATC2":
		return FormatLATC2, true
	default:
		return 0, false
	}
}

// AddressMode enumerates texture sampler wrap behavior (D3D9-style
// numbering: wrap=1, clamp=3); REPEAT and WRAP both map to AddressWrap
// since effects use either spelling interchangeably.
type AddressMode int

const (
	AddressWrap   AddressMode = 1
	AddressMirror AddressMode = 2
	AddressClamp  AddressMode = 3
	AddressBorder AddressMode = 4
)

// ParseAddressMode maps both "wrap" and "repeat" spellings (and the
// rest) to their AddressMode.
func ParseAddressMode(s string) (AddressMode, bool) {
	switch s {
	case "wrap", "repeat", "WRAP", "REPEAT":
		return AddressWrap, true
	case "mirror", "MIRROR":
		return AddressMirror, true
	case "clamp", "CLAMP":
		return AddressClamp, true
	case "border", "BORDER":
		return AddressBorder, true
	default:
		return 0, false
	}
}

// FilterMode enumerates a single min/mag/mip filter component.
type FilterMode int

const (
	FilterPoint       FilterMode = 0
	FilterLinear      FilterMode = 1
	FilterAnisotropic FilterMode = 3
)

// ParseFilterMode maps POINT/LINEAR/ANISOTROPIC (either case) to a
// FilterMode.
func ParseFilterMode(s string) (FilterMode, bool) {
	switch s {
	case "point", "POINT", "NONE":
		return FilterPoint, true
	case "linear", "LINEAR":
		return FilterLinear, true
	case "anisotropic", "ANISOTROPIC":
		return FilterAnisotropic, true
	default:
		return 0, false
	}
}

// Filter packs independent min/mag/mip 2-bit filter fields into one
// value, matching the D3D9-style packed filter state FX samplers expose.
type Filter struct {
	Min, Mag, Mip FilterMode
}

// Pack encodes the filter as a single integer: mip in bits 0-1, mag in
// bits 2-3, min in bits 4-5 — an arbitrary but stable bit layout used only
// for equality/diagnostics, not emitted into SPIR-V.
func (f Filter) Pack() uint32 {
	return uint32(f.Mip) | uint32(f.Mag)<<2 | uint32(f.Min)<<4
}

// ComparisonFunc enumerates depth/stencil comparison functions.
type ComparisonFunc int

const (
	CompareNever ComparisonFunc = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// BlendFactor enumerates alpha-blend source/destination factors.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendInvSrcColor
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDestAlpha
	BlendInvDestAlpha
	BlendDestColor
	BlendInvDestColor
)

// BlendOp enumerates blend combine operations.
type BlendOp int

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpRevSubtract
	BlendOpMin
	BlendOpMax
)

// StencilOp enumerates stencil buffer update operations.
type StencilOp int

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrSat
	StencilDecrSat
	StencilInvert
	StencilIncr
	StencilDecr
)

// ConstantValue holds one decoded literal from a <annotation = value;>
// list, as written by the parser from the corresponding token's literal
// payload.
type ConstantValue struct {
	IsString bool
	IsFloat  bool
	IsInt    bool
	IsBool   bool
	Str      string
	Flt      float64
	Int      int64
	Bool     bool
}

// Texture describes a `texture` global declaration.
type Texture struct {
	Name          string
	Width, Height int
	// Depth > 0 marks a texture3D declaration.
	Depth    int
	MipLevels int
	Format   TextureFormat
	// ID is the SPIR-V OpVariable id of the underlying OpTypeImage, filled
	// in by the parser once it emits the declaration.
	ID uint32
	Annotations map[string]ConstantValue
}

// Sampler describes a `sampler` global declaration bound to a Texture.
type Sampler struct {
	Name          string
	Texture       string // referenced Texture.Name
	AddressU      AddressMode
	AddressV      AddressMode
	AddressW      AddressMode
	Filter        Filter
	MinLOD, MaxLOD, MipLODBias float64
	ID            uint32
	Annotations   map[string]ConstantValue
}

// Uniform describes a non-texture, non-sampler global (a shader constant
// bound into the effect's uniform block).
type Uniform struct {
	Name        string
	TypeName    string // rendered types.Type.String(), kept decoupled from package types
	Offset      int    // byte offset within the uniform block
	Size        int    // byte size
	Annotations map[string]ConstantValue
	HasInitializer bool
}

// Pass describes one render pass within a Technique: entry points plus
// fixed-function render state.
type Pass struct {
	Name             string
	VertexShader     string // entry point function name, "" if inherited
	PixelShader      string
	RenderTargets    [8]string // empty string means back buffer
	ClearRenderTargets bool

	BlendEnable    bool
	SrcBlend       BlendFactor
	DestBlend      BlendFactor
	BlendOp        BlendOp
	SrcBlendAlpha  BlendFactor
	DestBlendAlpha BlendFactor
	BlendOpAlpha   BlendOp

	DepthEnable    bool
	DepthWriteMask bool
	DepthFunc      ComparisonFunc

	StencilEnable    bool
	StencilReadMask  uint8
	StencilWriteMask uint8
	StencilFunc      ComparisonFunc
	StencilPass      StencilOp
	StencilFail      StencilOp
	StencilDepthFail StencilOp
	StencilRef       uint8

	ColorWriteMask  uint8
	SRGBWriteEnable bool
}

// Technique describes one `technique` block: an ordered list of passes
// plus its own annotations.
type Technique struct {
	Name        string
	Passes      []Pass
	Annotations map[string]ConstantValue
}

// Module is the full side-table a successful compile produces, returned
// alongside the SPIR-V binary by the top-level Compile API.
type Module struct {
	Textures   []Texture
	Samplers   []Sampler
	Uniforms   []Uniform
	Techniques []Technique
	// Pragmas records the caller-supplied pragma strings verbatim.
	Pragmas []string
}

// FindTexture looks up a texture by name, used when resolving a sampler's
// bound texture.
func (m *Module) FindTexture(name string) (*Texture, bool) {
	for i := range m.Textures {
		if m.Textures[i].Name == name {
			return &m.Textures[i], true
		}
	}
	return nil, false
}
