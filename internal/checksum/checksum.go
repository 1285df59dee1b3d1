// Package checksum provides the two streaming checksums the PNG format
// uses at different layers: CRC-32 over each chunk's (name ‖ data), and
// Adler-32 over the uncompressed zlib payload.
package checksum

import "github.com/snksoft/crc"

// CRC32 is an incremental CRC-32 (polynomial 0xEDB88320, the same
// parameterization PNG's appendix specifies) accumulator. The table
// itself is owned by github.com/snksoft/crc and shared across all
// instances; CRC32 only holds per-stream state.
type CRC32 struct {
	h *crc.Hash
}

// NewCRC32 starts a fresh accumulator.
func NewCRC32() *CRC32 {
	return &CRC32{h: crc.NewHash(crc.CRC32)}
}

// Update feeds more bytes through the accumulator.
func (c *CRC32) Update(p []byte) {
	c.h.Update(p)
}

// Finalize returns the CRC-32 of every byte fed so far.
func (c *CRC32) Finalize() uint32 {
	return uint32(c.h.CRC32())
}

// CRC32Sum computes the CRC-32 of a single byte slice in one call.
func CRC32Sum(p []byte) uint32 {
	c := NewCRC32()
	c.Update(p)
	return c.Finalize()
}

const adlerMod = 65521

// Adler32 is an incremental Adler-32 accumulator per RFC 1950 §8.2.
// s1/s2 are reduced modulo 65521 at least every 5550 bytes. That is
// within 5552, the largest n for which 255*n*(n+1)/2 + (n+1)*65520
// fits in a uint32, so the sums cannot overflow between reductions.
type Adler32 struct {
	s1, s2 uint32
}

// NewAdler32 starts a fresh accumulator at the RFC-mandated initial
// state (s1=1, s2=0).
func NewAdler32() *Adler32 {
	return &Adler32{s1: 1, s2: 0}
}

// Update feeds more bytes through the accumulator.
func (a *Adler32) Update(p []byte) {
	s1, s2 := a.s1, a.s2
	for len(p) > 0 {
		chunk := p
		if len(chunk) > 5550 {
			chunk = chunk[:5550]
		}
		for _, b := range chunk {
			s1 += uint32(b)
			s2 += s1
		}
		s1 %= adlerMod
		s2 %= adlerMod
		p = p[len(chunk):]
	}
	a.s1, a.s2 = s1, s2
}

// Finalize returns the Adler-32 checksum of every byte fed so far.
func (a *Adler32) Finalize() uint32 {
	return (a.s2 << 16) | a.s1
}

// Adler32Sum computes the Adler-32 checksum of a single byte slice.
func Adler32Sum(p []byte) uint32 {
	a := NewAdler32()
	a.Update(p)
	return a.Finalize()
}
