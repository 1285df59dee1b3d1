package png

import (
	"bytes"
	"testing"

	"github.com/chunkwise/png/internal/filter"
)

func encodeDecodeRoundTrip(t *testing.T, r *Raster, m *Metadata, opts EncodeOptions) (*Raster, *Metadata) {
	t.Helper()
	var buf bytes.Buffer
	enc := NewEncoder(&buf, nil)
	if err := enc.Encode(r, m, opts); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	dec := NewDecoder(&buf, nil)
	got, gotMeta, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got, gotMeta
}

func TestSingleRedPixelRoundTrip(t *testing.T) {
	r := &Raster{
		Header: Header{Width: 1, Height: 1, BitDepth: 8, ColorType: RGBColor},
		Pixels: []byte{0xFF, 0x00, 0x00},
	}
	got, _ := encodeDecodeRoundTrip(t, r, &Metadata{}, EncodeOptions{UseDefaultStrategy: true})
	if !bytes.Equal(got.Pixels, r.Pixels) {
		t.Fatalf("got pixels %v, want %v", got.Pixels, r.Pixels)
	}
	if got.Header != r.Header {
		t.Fatalf("got header %+v, want %+v", got.Header, r.Header)
	}
}

func TestPaletteWithTransparencyRoundTrip(t *testing.T) {
	r := &Raster{
		Header:  Header{Width: 2, Height: 2, BitDepth: 8, ColorType: PaletteColor},
		Palette: &Palette{Entries: []RGB{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}}},
		Pixels:  []byte{0, 1, 2, 0},
	}
	m := &Metadata{Transparency: &Transparency{PaletteAlpha: []byte{0, 128, 255}}}
	got, gotMeta := encodeDecodeRoundTrip(t, r, m, EncodeOptions{UseDefaultStrategy: true})
	if !bytes.Equal(got.Pixels, r.Pixels) {
		t.Fatalf("got pixels %v, want %v", got.Pixels, r.Pixels)
	}
	if gotMeta.Transparency == nil || !bytes.Equal(gotMeta.Transparency.PaletteAlpha, m.Transparency.PaletteAlpha) {
		t.Fatalf("got transparency %+v", gotMeta.Transparency)
	}
}

func TestInterlacedRoundTrip(t *testing.T) {
	w, h := 13, 9
	pixels := make([]byte, w*h)
	for i := range pixels {
		pixels[i] = byte(i)
	}
	r := &Raster{
		Header: Header{Width: uint32(w), Height: uint32(h), BitDepth: 8, ColorType: GrayColor, Interlace: true},
		Pixels: pixels,
	}
	got, _ := encodeDecodeRoundTrip(t, r, &Metadata{}, EncodeOptions{UseDefaultStrategy: true})
	if !bytes.Equal(got.Pixels, r.Pixels) {
		t.Fatalf("interlaced round trip mismatch")
	}
}

func TestFilterStrategyAffectsIDATSize(t *testing.T) {
	w, h := 64, 64
	pixels := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			pixels[i] = byte(x + y)
			pixels[i+1] = byte(x)
			pixels[i+2] = byte(y)
		}
	}
	r := &Raster{Header: Header{Width: uint32(w), Height: uint32(h), BitDepth: 8, ColorType: RGBColor}, Pixels: pixels}

	sizeFor := func(strategy filter.Strategy) int {
		var buf bytes.Buffer
		enc := NewEncoder(&buf, nil)
		if err := enc.Encode(r, &Metadata{}, EncodeOptions{Strategy: strategy, Level: 9}); err != nil {
			t.Fatal(err)
		}
		return buf.Len()
	}

	zeroSize := sizeFor(filter.StrategyZero)
	minSumSize := sizeFor(filter.StrategyMinSum)
	if minSumSize > zeroSize {
		t.Fatalf("expected MinSum (%d) <= Zero (%d) for a gradient image", minSumSize, zeroSize)
	}
}

func TestEncodeRejectsPaletteWithoutPalette(t *testing.T) {
	r := &Raster{Header: Header{Width: 1, Height: 1, BitDepth: 8, ColorType: PaletteColor}, Pixels: []byte{0}}
	var buf bytes.Buffer
	err := NewEncoder(&buf, nil).Encode(r, &Metadata{}, EncodeOptions{UseDefaultStrategy: true})
	if err == nil {
		t.Fatal("expected error encoding palette image without a palette")
	}
}
