package png

import "testing"

func TestHeaderValidateRejectsZeroDimensions(t *testing.T) {
	h := Header{Width: 0, Height: 1, BitDepth: 8, ColorType: RGBColor}
	if err := h.Validate(); err == nil {
		t.Fatal("expected error for zero width")
	} else if kind, _ := KindOf(err); kind != ImageDimensions {
		t.Fatalf("got kind %v, want ImageDimensions", kind)
	}
}

func TestHeaderValidateRejectsBadColorBitDepthCombo(t *testing.T) {
	h := Header{Width: 1, Height: 1, BitDepth: 1, ColorType: RGBColor}
	if err := h.Validate(); err == nil {
		t.Fatal("expected error for RGB at bit depth 1")
	} else if kind, _ := KindOf(err); kind != ColorMode {
		t.Fatalf("got kind %v, want ColorMode", kind)
	}
}

func TestHeaderValidateAcceptsAllLegalCombinations(t *testing.T) {
	cases := []struct {
		ct    ColorType
		depth uint8
	}{
		{GrayColor, 1}, {GrayColor, 2}, {GrayColor, 4}, {GrayColor, 8}, {GrayColor, 16},
		{PaletteColor, 1}, {PaletteColor, 2}, {PaletteColor, 4}, {PaletteColor, 8},
		{RGBColor, 8}, {RGBColor, 16},
		{GrayAlphaColor, 8}, {GrayAlphaColor, 16},
		{RGBAColor, 8}, {RGBAColor, 16},
	}
	for _, c := range cases {
		h := Header{Width: 4, Height: 4, BitDepth: c.depth, ColorType: c.ct}
		if err := h.Validate(); err != nil {
			t.Errorf("%v/%d: unexpected error %v", c.ct, c.depth, err)
		}
	}
}

func TestRawSizeSubBytePacking(t *testing.T) {
	h := Header{Width: 5, Height: 2, BitDepth: 1, ColorType: GrayColor}
	if got, want := h.RawSize(), 2; got != want {
		t.Fatalf("RawSize = %d, want %d", got, want)
	}
}

func TestExpectedIDATSizeNonInterlaced(t *testing.T) {
	h := Header{Width: 3, Height: 2, BitDepth: 8, ColorType: RGBColor}
	if got, want := expectedIDATSize(h), 2*(1+9); got != want {
		t.Fatalf("expectedIDATSize = %d, want %d", got, want)
	}
}
