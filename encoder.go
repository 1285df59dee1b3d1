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

// EncodeOptions controls the encoder's filter and compression choices.
// A zero-value EncodeOptions selects StrategyZero and
// zlibx.DefaultLevel; set UseDefaultStrategy (or Strategy to -1) to get
// spec §4.F's default strategy instead.
type EncodeOptions struct {
	// Strategy picks the scanline filter heuristic. Zero value
	// StrategyZero is a valid explicit choice; use -1 to request
	// filter.DefaultStrategy based on the image's color type/depth.
	Strategy filter.Strategy
	// UseDefaultStrategy, when true, ignores Strategy and derives one
	// from the header via filter.DefaultStrategy, matching spec §4.F.
	UseDefaultStrategy bool
	Level              int
}

// Encoder writes one Raster and its Metadata as a framed PNG stream.
type Encoder struct {
	w   io.Writer
	log *zap.Logger
}

// NewEncoder builds an Encoder writing to w. A nil logger disables
// logging.
func NewEncoder(w io.Writer, log *zap.Logger) *Encoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Encoder{w: w, log: log}
}

// Encode writes r and m as a complete PNG stream: signature, IHDR,
// PLTE (if present), ancillary chunks, IDAT, IEND (spec §4.H's
// chunk-ordering invariants, in reverse).
func (e *Encoder) Encode(r *Raster, m *Metadata, opts EncodeOptions) error {
	if err := r.Header.Validate(); err != nil {
		return err
	}
	if r.Header.ColorType == PaletteColor && (r.Palette == nil || len(r.Palette.Entries) == 0) {
		return newErr(NoImageData)
	}

	if err := chunkio.WriteSignature(e.w); err != nil {
		return translateChunkioErr(err)
	}
	if err := e.writeChunk(nameIHDR, encodeIHDR(r.Header)); err != nil {
		return err
	}
	if r.Header.ColorType == PaletteColor {
		if err := e.writeChunk(namePLTE, encodePLTE(*r.Palette)); err != nil {
			return err
		}
	}

	level := opts.Level
	if level == 0 {
		level = zlibx.DefaultLevel
	}
	if m != nil {
		if err := e.writeAncillary(m, r.Header, level); err != nil {
			return err
		}
	}

	strategy := opts.Strategy
	if opts.UseDefaultStrategy || opts.Strategy < 0 {
		strategy = filter.DefaultStrategy(r.Header.ColorType == PaletteColor, int(r.Header.BitDepth))
	}
	idatPayload, err := filterAndInterlace(r.Header, r.Pixels, strategy, level)
	if err != nil {
		return err
	}
	compressed := zlibx.Compress(idatPayload, level)
	e.log.Debug("encoded IDAT", zap.Int("raw", len(idatPayload)), zap.Int("compressed", len(compressed)))
	if err := e.writeChunk(nameIDAT, compressed); err != nil {
		return err
	}

	return e.writeChunk(nameIEND, nil)
}

func (e *Encoder) writeAncillary(m *Metadata, h Header, level int) error {
	if m.Transparency != nil {
		if err := e.writeChunk(nameTRNS, encodeTRNS(*m.Transparency, h.ColorType)); err != nil {
			return err
		}
	}
	if m.Background != nil {
		if err := e.writeChunk(nameBKGD, encodeBKGD(*m.Background)); err != nil {
			return err
		}
	}
	if m.Physical != nil {
		if err := e.writeChunk(namePHYS, encodePHYS(*m.Physical)); err != nil {
			return err
		}
	}
	if m.Time != nil {
		if err := e.writeChunk(nameTIME, encodeTIME(*m.Time)); err != nil {
			return err
		}
	}
	for _, t := range m.Text {
		if err := e.writeChunk(nameTEXT, encodeTEXT(t)); err != nil {
			return err
		}
	}
	for _, t := range m.CompressedText {
		if err := e.writeChunk(nameZTXT, encodeZTXT(t, level)); err != nil {
			return err
		}
	}
	for _, t := range m.InternationalText {
		if err := e.writeChunk(nameITXT, encodeITXT(t, level)); err != nil {
			return err
		}
	}
	for _, u := range m.Unknown {
		if err := e.writeChunk(u.Name, u.Data); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeChunk(name [4]byte, data []byte) error {
	if err := chunkio.WriteChunk(e.w, name, data); err != nil {
		return translateChunkioErr(err)
	}
	return nil
}

// filterAndInterlace is the encoder's mirror of
// unfilterAndDeinterlace: it (if interlaced) gathers pixels into the 7
// Adam7 passes, pads each scanline to a byte boundary, selects and
// applies a filter per scanline, and prefixes each with its filter
// type byte.
func filterAndInterlace(h Header, pixels []byte, strategy filter.Strategy, level int) ([]byte, error) {
	bpp := h.BitsPerPixel()
	bytewidth := (bpp + 7) / 8
	if bytewidth < 1 {
		bytewidth = 1
	}
	compress := filter.Compressor(func(d []byte, lvl int) []byte { return zlibx.Compress(d, lvl) })

	if !h.Interlace {
		padded := addPadding(pixels, int(h.Width), int(h.Height), bpp)
		lineBytes := (int(h.Width)*bpp + 7) / 8
		return filterPlane(padded, int(h.Height), lineBytes, bytewidth, strategy, level, compress), nil
	}

	passes := adam7Passes(h)
	gathered := adam7.Gather(passes, pixels, int(h.Width), bpp)
	var out []byte
	for i, p := range passes {
		if p.W == 0 || p.H == 0 {
			continue
		}
		padded := addPadding(gathered[i], p.W, p.H, bpp)
		lineBytes := (p.W*bpp + 7) / 8
		out = append(out, filterPlane(padded, p.H, lineBytes, bytewidth, strategy, level, compress)...)
	}
	return out, nil
}

// addPadding repacks a dense (no inter-row padding) pixel buffer into
// one byte-aligned row at a time, the representation the filter
// engine operates on.
func addPadding(dense []byte, width, height, bpp int) []byte {
	if bpp >= 8 {
		return dense
	}
	lineBits := width * bpp
	lineBytes := (lineBits + 7) / 8
	out := make([]byte, lineBytes*height)
	r := bitstream.NewReader(dense)
	for y := 0; y < height; y++ {
		w := bitstream.NewWriter()
		for i := 0; i < lineBits; i++ {
			w.WriteBit(r.ReadBit())
		}
		copy(out[y*lineBytes:(y+1)*lineBytes], w.Bytes())
	}
	return out
}

func filterPlane(padded []byte, height, lineBytes, bytewidth int, strategy filter.Strategy, level int, compress filter.Compressor) []byte {
	out := make([]byte, height*(1+lineBytes))
	var prev []byte
	for y := 0; y < height; y++ {
		line := padded[y*lineBytes : (y+1)*lineBytes]
		filtered := make([]byte, lineBytes)
		ft := filter.SelectLine(filtered, line, prev, bytewidth, strategy, level, compress)
		out[y*(1+lineBytes)] = byte(ft)
		copy(out[y*(1+lineBytes)+1:(y+1)*(1+lineBytes)], filtered)
		prev = line
	}
	return out
}
