// Package adam7 implements the forward and inverse 7-pass PNG
// interlace schedule (spec §4.G): computing each pass's pixel
// dimensions, and scattering/gathering pixels between a full dense
// raster and the seven reduced per-pass images.
package adam7

import "github.com/chunkwise/png/internal/bitstream"

// start/delta per pass, in PNG's pass order 1..7 (indices 0..6).
var (
	ix = [7]int{0, 4, 0, 2, 0, 1, 0}
	iy = [7]int{0, 0, 4, 0, 2, 0, 1}
	dx = [7]int{8, 8, 4, 4, 2, 2, 1}
	dy = [7]int{8, 8, 8, 4, 4, 2, 2}
)

// Pass describes one Adam7 reduced image: its start offset and stride
// in the final raster (IX,IY,DX,DY) and its own pixel dimensions
// (W,H).
type Pass struct {
	IX, IY, DX, DY int
	W, H           int
}

// Passes computes the 7 passes' pixel dimensions for a width×height
// image. A pass with zero width or height contributes nothing (spec:
// "if either is zero, both are zero").
func Passes(width, height int) [7]Pass {
	var p [7]Pass
	for i := 0; i < 7; i++ {
		p[i] = Pass{IX: ix[i], IY: iy[i], DX: dx[i], DY: dy[i]}
		w := (width + dx[i] - ix[i] - 1) / dx[i]
		h := (height + dy[i] - iy[i] - 1) / dy[i]
		if w <= 0 || h <= 0 {
			w, h = 0, 0
		}
		p[i].W, p[i].H = w, h
	}
	return p
}

// bytesForLine returns ceil(n*bpp/8).
func bytesForLine(n, bpp int) int { return (n*bpp + 7) / 8 }

// Gather extracts, for each pass, the pass's own dense pixel bytes
// (rows packed back-to-back with no inter-row padding, i.e. a
// bitstream of exactly W*H*bpp bits) out of the full dense raster
// (width*height*bpp bits, row-major, no per-row padding — the raster's
// at-rest representation per spec §3).
func Gather(passes [7]Pass, raster []byte, width, bpp int) [7][]byte {
	var out [7][]byte
	if bpp >= 8 {
		bw := bpp / 8
		for i, p := range passes {
			buf := make([]byte, p.W*p.H*bw)
			for y := 0; y < p.H; y++ {
				for x := 0; x < p.W; x++ {
					srcPix := (p.IY+y*p.DY)*width + p.IX + x*p.DX
					dstPix := y*p.W + x
					copy(buf[dstPix*bw:(dstPix+1)*bw], raster[srcPix*bw:(srcPix+1)*bw])
				}
			}
			out[i] = buf
		}
		return out
	}
	olineBits := width * bpp
	for i, p := range passes {
		w := bitstream.NewWriter()
		for y := 0; y < p.H; y++ {
			for x := 0; x < p.W; x++ {
				bitOff := (p.IY+y*p.DY)*olineBits + (p.IX+x*p.DX)*bpp
				r := bitstream.NewReader(raster)
				r.Seek(bitOff)
				w.WriteBits(r.ReadBits(bpp), bpp)
			}
		}
		out[i] = w.Bytes()
	}
	return out
}

// Scatter is Gather's inverse: it writes each pass's dense pixel bytes
// back into their place in a full dense raster.
func Scatter(passes [7]Pass, passData [7][]byte, raster []byte, width, bpp int) {
	if bpp >= 8 {
		bw := bpp / 8
		for i, p := range passes {
			buf := passData[i]
			for y := 0; y < p.H; y++ {
				for x := 0; x < p.W; x++ {
					srcPix := y*p.W + x
					dstPix := (p.IY+y*p.DY)*width + p.IX + x*p.DX
					copy(raster[dstPix*bw:(dstPix+1)*bw], buf[srcPix*bw:(srcPix+1)*bw])
				}
			}
		}
		return
	}
	olineBits := width * bpp
	for i, p := range passes {
		r := bitstream.NewReader(passData[i])
		for y := 0; y < p.H; y++ {
			for x := 0; x < p.W; x++ {
				v := r.ReadBits(bpp)
				bitOff := (p.IY+y*p.DY)*olineBits + (p.IX+x*p.DX)*bpp
				setBits(raster, bitOff, bpp, v)
			}
		}
	}
}

// setBits writes the low n bits of v, MSB first, starting at absolute
// bit offset off in dst.
func setBits(dst []byte, off, n int, v uint32) {
	for i := n - 1; i >= 0; i-- {
		bit := (v>>uint(i))&1 != 0
		byteIdx := off >> 3
		bitPos := 7 - (off & 7)
		if bit {
			dst[byteIdx] |= 1 << uint(bitPos)
		} else {
			dst[byteIdx] &^= 1 << uint(bitPos)
		}
		off++
	}
}

// PaddedLineBytes returns the per-scanline byte count a pass's pixels
// occupy once each row is padded to a byte boundary — the form the
// filter engine operates on.
func PaddedLineBytes(p Pass, bpp int) int { return bytesForLine(p.W, bpp) }
