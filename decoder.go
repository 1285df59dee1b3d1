package png

import (
	"io"

	"go.uber.org/zap"

	"github.com/chunkwise/png/internal/adam7"
	"github.com/chunkwise/png/internal/bitstream"
	"github.com/chunkwise/png/internal/chunkio"
	"github.com/chunkwise/png/internal/filter"
	"github.com/chunkwise/png/internal/zlibx"
)

// stage names the decoder's chunk-ordering state machine (spec
// §4.H). Transitions mirror the teacher's single linear read loop in
// ParsePng, generalized into an explicit state so out-of-order or
// duplicate chunks are reported precisely instead of silently
// accepted.
type stage int

const (
	stageAwaitIHDR stage = iota
	stageAwaitPLTE
	stageAux
	stageInIDAT
	stageTrailing
	stageDone
)

// Decoder reads one PNG stream and assembles it into a Raster plus
// its ancillary metadata. It is not safe for concurrent use.
type Decoder struct {
	r      io.Reader
	log    *zap.Logger
	stage  stage
	header Header

	palette    *Palette
	trns       *Transparency
	bkgd       *Background
	phys       *Physical
	time       *Time
	text       []TextEntry
	ztxt       []CompressedTextEntry
	itxt       []InternationalTextEntry
	unknowns   []UnknownChunk
	idat       []byte
	sigChecked bool
}

// UnknownChunk preserves an ancillary chunk this codec doesn't
// otherwise model, keyed by its 4-byte name (spec §4.E's "Unknown"
// chunk kind).
type UnknownChunk struct {
	Name [4]byte
	Data []byte
}

// Metadata is every non-pixel value the decoder collected, returned
// alongside the Raster.
type Metadata struct {
	Palette           *Palette
	Transparency      *Transparency
	Background        *Background
	Physical          *Physical
	Time              *Time
	Text              []TextEntry
	CompressedText    []CompressedTextEntry
	InternationalText []InternationalTextEntry
	Unknown           []UnknownChunk
}

// NewDecoder builds a Decoder reading from r. A nil logger disables
// logging; callers typically pass a *zap.Logger configured the way
// the rest of the process configures its own.
func NewDecoder(r io.Reader, log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decoder{r: r, log: log, stage: stageAwaitIHDR}
}

// Decode runs the decoder to completion and returns the assembled
// Raster and Metadata. It is equivalent to calling NextStep until it
// reports done, and is the entry point most callers want.
func (d *Decoder) Decode() (*Raster, *Metadata, error) {
	for {
		done, err := d.NextStep()
		if err != nil {
			return nil, nil, err
		}
		if done {
			break
		}
	}
	return d.assemble()
}

// NextStep consumes the next unit of work — the signature, or one
// chunk — advancing the chunk-ordering state machine by exactly one
// step. It reports done=true once IEND has been consumed and no
// trailing bytes remain to check. This iterator shape exists so a
// future animated-PNG reader can drive the same state machine frame by
// frame; this codec itself only ever produces a single step sequence
// ending in one static image (APNG playback is out of scope).
func (d *Decoder) NextStep() (done bool, err error) {
	if !d.sigChecked {
		if err := chunkio.ReadSignature(d.r); err != nil {
			return false, translateChunkioErr(err)
		}
		d.sigChecked = true
	}

	if d.stage == stageDone {
		return true, nil
	}

	c, err := chunkio.ReadNextChunk(d.r)
	if err != nil {
		if err == io.EOF {
			if d.stage != stageTrailing && d.stage != stageDone {
				return false, newErr(Eof)
			}
			d.stage = stageDone
			return true, nil
		}
		return false, translateChunkioErr(err)
	}

	d.log.Debug("chunk", zap.String("name", string(c.Name[:])), zap.Int("len", len(c.Data)))
	if err := d.consume(c); err != nil {
		return false, err
	}
	return false, nil
}

func (d *Decoder) consume(c chunkio.Chunk) error {
	if d.stage == stageTrailing {
		return newErrName(TrailingChunk, c.Name[:])
	}
	name := string(c.Name[:])
	if d.stage == stageAwaitIHDR && name != "IHDR" {
		return newErrName(ChunkOrder, c.Name[:])
	}
	switch name {
	case "IHDR":
		if d.stage != stageAwaitIHDR {
			return newErrName(ChunkOrder, c.Name[:])
		}
		h, err := parseIHDR(c.Data)
		if err != nil {
			return err
		}
		d.header = h
		if h.ColorType == PaletteColor {
			d.stage = stageAwaitPLTE
		} else {
			d.stage = stageAux
		}
		return nil
	case "PLTE":
		if d.stage != stageAwaitPLTE && d.stage != stageAux {
			return newErrName(ChunkOrder, c.Name[:])
		}
		if d.palette != nil {
			return newErrName(Multiple, c.Name[:])
		}
		p, err := parsePLTE(c.Data)
		if err != nil {
			return err
		}
		if err := p.validate(); err != nil {
			return err
		}
		d.palette = &p
		d.stage = stageAux
		return nil
	case "IDAT":
		if d.stage == stageAwaitPLTE {
			return newErrName(ChunkOrder, c.Name[:])
		}
		if d.stage != stageAux && d.stage != stageInIDAT {
			return newErrName(ChunkOrder, c.Name[:])
		}
		if d.header.ColorType == PaletteColor && d.palette == nil {
			return newErrName(ChunkOrder, nameIDAT[:])
		}
		d.idat = append(d.idat, c.Data...)
		d.stage = stageInIDAT
		return nil
	case "IEND":
		if d.stage != stageInIDAT && d.stage != stageAux {
			return newErrName(ChunkOrder, c.Name[:])
		}
		if len(d.idat) == 0 {
			return newErr(NoImageData)
		}
		d.stage = stageTrailing
		return nil
	case "tRNS":
		if d.stage == stageInIDAT {
			return newErrName(ChunkOrder, c.Name[:])
		}
		if d.trns != nil {
			return newErrName(Multiple, c.Name[:])
		}
		paletteLen := 0
		if d.palette != nil {
			paletteLen = len(d.palette.Entries)
		}
		t, err := parseTRNS(c.Data, d.header.ColorType, paletteLen)
		if err != nil {
			return err
		}
		d.trns = &t
		return nil
	case "bKGD":
		if d.stage == stageInIDAT {
			return newErrName(ChunkOrder, c.Name[:])
		}
		if d.bkgd != nil {
			return newErrName(Multiple, c.Name[:])
		}
		b, err := parseBKGD(c.Data)
		if err != nil {
			return err
		}
		if err := crossValidateBKGD(b, d.header, d.palette); err != nil {
			return err
		}
		d.bkgd = &b
		return nil
	case "pHYs":
		if d.stage == stageInIDAT {
			return newErrName(ChunkOrder, c.Name[:])
		}
		if d.phys != nil {
			return newErrName(Multiple, c.Name[:])
		}
		p, err := parsePHYS(c.Data)
		if err != nil {
			return err
		}
		d.phys = &p
		return nil
	case "tIME":
		if d.time != nil {
			return newErrName(Multiple, c.Name[:])
		}
		t, err := parseTIME(c.Data)
		if err != nil {
			return err
		}
		d.time = &t
		return nil
	case "tEXt":
		t, err := parseTEXT(c.Data)
		if err != nil {
			return err
		}
		d.text = append(d.text, t)
		return nil
	case "zTXt":
		t, err := parseZTXT(c.Data)
		if err != nil {
			return err
		}
		d.ztxt = append(d.ztxt, t)
		return nil
	case "iTXt":
		t, err := parseITXT(c.Data)
		if err != nil {
			return err
		}
		d.itxt = append(d.itxt, t)
		return nil
	default:
		if c.Critical() {
			return newErrName(UnknownChunkType, c.Name[:])
		}
		d.unknowns = append(d.unknowns, UnknownChunk{Name: c.Name, Data: append([]byte{}, c.Data...)})
		return nil
	}
}

// crossValidateBKGD implements the cross-check original_source leaves
// to its assembler: bKGD's shape must agree with the header's color
// type.
func crossValidateBKGD(b Background, h Header, pal *Palette) error {
	switch h.ColorType {
	case PaletteColor:
		if !b.HasPaletteIndex {
			return newErrN(BackgroundSize, 0)
		}
		if pal != nil && int(b.PaletteIndex) >= len(pal.Entries) {
			return newErrN(BackgroundSize, int(b.PaletteIndex))
		}
	case GrayColor, GrayAlphaColor:
		if !b.HasGray {
			return newErrN(BackgroundSize, 0)
		}
	case RGBColor, RGBAColor:
		if !b.HasRGB {
			return newErrN(BackgroundSize, 0)
		}
	}
	return nil
}

func (d *Decoder) assemble() (*Raster, *Metadata, error) {
	if d.header.ColorType == PaletteColor && d.palette == nil {
		return nil, nil, newErr(NoImageData)
	}

	raw, err := zlibx.Decompress(d.idat)
	if err != nil {
		return nil, nil, translateZlibErr(err)
	}
	if want := expectedIDATSize(d.header); len(raw) != want {
		return nil, nil, newErrN(ChunkLength, len(raw))
	}

	pixels, err := unfilterAndDeinterlace(d.header, raw)
	if err != nil {
		return nil, nil, err
	}

	r := &Raster{Header: d.header, Palette: d.palette, Pixels: pixels}
	m := &Metadata{
		Palette:           d.palette,
		Transparency:      d.trns,
		Background:        d.bkgd,
		Physical:          d.phys,
		Time:              d.time,
		Text:              d.text,
		CompressedText:    d.ztxt,
		InternationalText: d.itxt,
		Unknown:           d.unknowns,
	}
	return r, m, nil
}

// unfilterAndDeinterlace reverses the filter and (if present) Adam7
// stages: for each scanline it strips the filter-type prefix byte and
// un-applies the chosen predictor, then (interlaced images) scatters
// each pass's dense pixels back into one full raster.
func unfilterAndDeinterlace(h Header, raw []byte) ([]byte, error) {
	bpp := h.BitsPerPixel()
	bytewidth := (bpp + 7) / 8
	if bytewidth < 1 {
		bytewidth = 1
	}

	if !h.Interlace {
		lineBytes := (int(h.Width)*bpp + 7) / 8
		padded, err := unfilterPlane(raw, int(h.Height), lineBytes, bytewidth)
		if err != nil {
			return nil, err
		}
		return removePadding(padded, int(h.Width), int(h.Height), bpp), nil
	}

	passes := adam7Passes(h)
	off := 0
	var passData [7][]byte
	for i, p := range passes {
		if p.W == 0 || p.H == 0 {
			continue
		}
		lineBytes := (p.W*bpp + 7) / 8
		planeLen := p.H * (1 + lineBytes)
		padded, err := unfilterPlane(raw[off:off+planeLen], p.H, lineBytes, bytewidth)
		if err != nil {
			return nil, err
		}
		off += planeLen
		passData[i] = removePadding(padded, p.W, p.H, bpp)
	}

	raster := make([]byte, h.RawSize())
	adam7.Scatter(passes, passData, raster, int(h.Width), bpp)
	return raster, nil
}

// unfilterPlane strips each scanline's filter-type byte and applies
// the inverse predictor, returning the plane's padded (byte-aligned
// per row) pixel bytes with no filter-type bytes.
func unfilterPlane(data []byte, height, lineBytes, bytewidth int) ([]byte, error) {
	out := make([]byte, height*lineBytes)
	var prev []byte
	pos := 0
	for y := 0; y < height; y++ {
		if pos >= len(data) {
			return nil, newErr(Eof)
		}
		ft, ok := filter.ParseType(data[pos])
		if !ok {
			return nil, newErr(IllegalFilterType)
		}
		pos++
		if pos+lineBytes > len(data) {
			return nil, newErr(Eof)
		}
		line := data[pos : pos+lineBytes]
		pos += lineBytes
		recon := out[y*lineBytes : (y+1)*lineBytes]
		if err := filter.UnfilterScanline(recon, line, prev, bytewidth, ft); err != nil {
			return nil, newErrInner(IllegalFilterType, err)
		}
		prev = recon
	}
	return out, nil
}

// removePadding repacks each row's padded (byte-aligned) bytes into a
// dense bitstream with no inter-row padding, the raster's at-rest
// representation.
func removePadding(padded []byte, width, height, bpp int) []byte {
	if bpp >= 8 {
		return padded
	}
	lineBits := width * bpp
	lineBytes := (lineBits + 7) / 8
	w := bitstream.NewWriter()
	for y := 0; y < height; y++ {
		row := padded[y*lineBytes : (y+1)*lineBytes]
		r := bitstream.NewReader(row)
		for i := 0; i < lineBits; i++ {
			w.WriteBit(r.ReadBit())
		}
	}
	return w.Bytes()
}
