package png

import (
	"image"
	"image/color"
)

// Raster is the decoder's final product and the encoder's input: a
// dense, unfiltered, de-interlaced grid of pixel samples plus the
// metadata needed to interpret them (spec §4.I). Pixels is packed
// exactly as Header.RawSize describes: row-major, no per-row padding,
// sub-byte samples packed MSB-first.
type Raster struct {
	Header  Header
	Palette *Palette
	Pixels  []byte
}

// ToImage converts a Raster into the stdlib image.Image variant that
// matches its color type and bit depth, the adapter original_source's
// RasterLabeled enum performs explicitly by tagging each decode result
// with its pixel layout.
func (r *Raster) ToImage() image.Image {
	w, h := int(r.Header.Width), int(r.Header.Height)
	switch r.Header.ColorType {
	case GrayColor:
		if r.Header.BitDepth == 16 {
			img := image.NewGray16(image.Rect(0, 0, w, h))
			copy(img.Pix, r.Pixels)
			return img
		}
		img := image.NewGray(image.Rect(0, 0, w, h))
		scale := 255 / (1<<uint(r.Header.BitDepth) - 1)
		unpackSamples(img.Pix, r.Pixels, w, h, int(r.Header.BitDepth), 1, func(v []uint8, dst []uint8) {
			dst[0] = v[0] * uint8(scale)
		})
		return img
	case GrayAlphaColor:
		if r.Header.BitDepth == 16 {
			img := image.NewNRGBA64(image.Rect(0, 0, w, h))
			for i, px := 0, 0; px < w*h; px, i = px+1, i+8 {
				gHi, gLo := r.Pixels[px*4], r.Pixels[px*4+1]
				aHi, aLo := r.Pixels[px*4+2], r.Pixels[px*4+3]
				img.Pix[i], img.Pix[i+1] = gHi, gLo
				img.Pix[i+2], img.Pix[i+3] = gHi, gLo
				img.Pix[i+4], img.Pix[i+5] = gHi, gLo
				img.Pix[i+6], img.Pix[i+7] = aHi, aLo
			}
			return img
		}
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for i, px := 0, 0; px < w*h; px, i = px+1, i+4 {
			g := r.Pixels[px*2]
			a := r.Pixels[px*2+1]
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = g, g, g, a
		}
		return img
	case RGBColor:
		if r.Header.BitDepth == 16 {
			img := image.NewRGBA64(image.Rect(0, 0, w, h))
			for i, px := 0, 0; px < w*h; px, i = px+1, i+8 {
				copy(img.Pix[i:i+6], r.Pixels[px*6:px*6+6])
				img.Pix[i+6], img.Pix[i+7] = 0xFF, 0xFF
			}
			return img
		}
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for i, px := 0, 0; px < w*h; px, i = px+1, i+4 {
			copy(img.Pix[i:i+3], r.Pixels[px*3:px*3+3])
			img.Pix[i+3] = 0xFF
		}
		return img
	case PaletteColor:
		pal := make(color.Palette, len(r.Palette.Entries))
		for i, e := range r.Palette.Entries {
			pal[i] = color.NRGBA{R: e.R, G: e.G, B: e.B, A: 0xFF}
		}
		img := image.NewPaletted(image.Rect(0, 0, w, h), pal)
		unpackSamples(img.Pix, r.Pixels, w, h, int(r.Header.BitDepth), 1, func(v []uint8, dst []uint8) {
			dst[0] = v[0]
		})
		return img
	case RGBAColor:
		if r.Header.BitDepth == 16 {
			img := image.NewNRGBA64(image.Rect(0, 0, w, h))
			copy(img.Pix, r.Pixels)
			return img
		}
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		copy(img.Pix, r.Pixels)
		return img
	default:
		return nil
	}
}

// FromImage converts a stdlib image.Image into a Raster ready for
// encoding: *image.Paletted images become 8-bit Palette rasters (the
// palette's alpha is not kept), and every other image becomes 8-bit
// RGBA, so 16-bit samples are reduced to 8 bits.
func FromImage(img image.Image) (*Raster, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, newErr(ImageDimensions)
	}

	if p, ok := img.(*image.Paletted); ok {
		entries := make([]RGB, len(p.Palette))
		for i, c := range p.Palette {
			r, g, bl, _ := c.RGBA()
			entries[i] = RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8)}
		}
		hdr := Header{Width: uint32(w), Height: uint32(h), BitDepth: 8, ColorType: PaletteColor}
		pixels := make([]byte, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pixels[y*w+x] = p.Pix[p.PixOffset(b.Min.X+x, b.Min.Y+y)]
			}
		}
		return &Raster{Header: hdr, Palette: &Palette{Entries: entries}, Pixels: pixels}, nil
	}

	hdr := Header{Width: uint32(w), Height: uint32(h), BitDepth: 8, ColorType: RGBAColor}
	pixels := make([]byte, w*h*4)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// PNG's RGBA samples are straight (non-premultiplied) alpha,
			// but color.Color.RGBA() returns alpha-premultiplied values;
			// converting through NRGBAModel undoes the premultiplication
			// the same way ToImage's NRGBA output expects it.
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = c.R, c.G, c.B, c.A
			i += 4
		}
	}
	return &Raster{Header: hdr, Pixels: pixels}, nil
}

// unpackSamples expands bitDepth-wide samples (1,2,4,8) packed
// MSB-first, channels-per-pixel at a time, into one byte per sample in
// dst via convert.
func unpackSamples(dst, src []byte, w, h, bitDepth, channels int, convert func(sample, out []uint8)) {
	if bitDepth == 8 {
		sample := make([]uint8, channels)
		for i := 0; i < w*h; i++ {
			copy(sample, src[i*channels:(i+1)*channels])
			convert(sample, dst[i*channels:(i+1)*channels])
		}
		return
	}
	lineBits := w * bitDepth
	mask := uint8(1<<uint(bitDepth)) - 1
	for y := 0; y < h; y++ {
		rowBitOff := y * lineBits
		for x := 0; x < w; x++ {
			bitOff := rowBitOff + x*bitDepth
			byteIdx := bitOff / 8
			shift := 8 - bitDepth - (bitOff % 8)
			v := (src[byteIdx] >> uint(shift)) & mask
			convert([]uint8{v}, dst[(y*w+x)*channels:(y*w+x)*channels+channels])
		}
	}
}
