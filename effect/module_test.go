package effect

import "testing"

func TestParseAddressModeWrapAliases(t *testing.T) {
	for _, s := range []string{"wrap", "repeat", "WRAP", "REPEAT"} {
		mode, ok := ParseAddressMode(s)
		if !ok || mode != AddressWrap {
			t.Errorf("ParseAddressMode(%q) = (%v, %v), want (AddressWrap, true)", s, mode, ok)
		}
	}
}

func TestParseAddressModeClamp(t *testing.T) {
	mode, ok := ParseAddressMode("clamp")
	if !ok || mode != AddressClamp {
		t.Errorf("ParseAddressMode(\"clamp\") = (%v, %v), want (AddressClamp, true)", mode, ok)
	}
	if int(AddressClamp) != 3 {
		t.Errorf("AddressClamp = %d, want 3", AddressClamp)
	}
}

func TestParseAddressModeUnknown(t *testing.T) {
	if _, ok := ParseAddressMode("bogus"); ok {
		t.Error("expected ParseAddressMode to reject an unknown mode")
	}
}

func TestFilterPack(t *testing.T) {
	f := Filter{Min: FilterLinear, Mag: FilterPoint, Mip: FilterAnisotropic}
	packed := f.Pack()
	if packed&0b11 != uint32(FilterAnisotropic) {
		t.Errorf("mip bits = %b, want %b", packed&0b11, FilterAnisotropic)
	}
	if (packed>>2)&0b11 != uint32(FilterPoint) {
		t.Errorf("mag bits wrong")
	}
	if (packed>>4)&0b11 != uint32(FilterLinear) {
		t.Errorf("min bits wrong")
	}
}

func TestModuleFindTexture(t *testing.T) {
	m := &Module{Textures: []Texture{{Name: "colorTex", Width: 1920, Height: 1080}}}
	tex, ok := m.FindTexture("colorTex")
	if !ok {
		t.Fatal("expected to find colorTex")
	}
	if tex.Width != 1920 {
		t.Errorf("Width = %d, want 1920", tex.Width)
	}
	if _, ok := m.FindTexture("missing"); ok {
		t.Error("expected FindTexture to report false for an unknown name")
	}
}
