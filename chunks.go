package png

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"github.com/chunkwise/png/internal/zlibx"
)

// Chunk type names, exactly as they appear on the wire. Named the way
// the teacher names its ChunkName constants, generalized to cover
// every kind spec §4.E recognizes.
var (
	nameIHDR = [4]byte{'I', 'H', 'D', 'R'}
	namePLTE = [4]byte{'P', 'L', 'T', 'E'}
	nameIDAT = [4]byte{'I', 'D', 'A', 'T'}
	nameIEND = [4]byte{'I', 'E', 'N', 'D'}
	nameTRNS = [4]byte{'t', 'R', 'N', 'S'}
	nameBKGD = [4]byte{'b', 'K', 'G', 'D'}
	namePHYS = [4]byte{'p', 'H', 'Y', 's'}
	nameTIME = [4]byte{'t', 'I', 'M', 'E'}
	nameTEXT = [4]byte{'t', 'E', 'X', 't'}
	nameZTXT = [4]byte{'z', 'T', 'X', 't'}
	nameITXT = [4]byte{'i', 'T', 'X', 't'}
)

// parseIHDR decodes the 13-byte IHDR payload (spec §4.E).
func parseIHDR(data []byte) (Header, error) {
	if len(data) != 13 {
		return Header{}, newErrName(ChunkLength, nameIHDR[:])
	}
	h := Header{
		Width:     binary.BigEndian.Uint32(data[0:4]),
		Height:    binary.BigEndian.Uint32(data[4:8]),
		BitDepth:  data[8],
		ColorType: ColorType(data[9]),
	}
	if data[10] != 0 {
		return Header{}, newErr(CompressionMethod)
	}
	if data[11] != 0 {
		return Header{}, newErr(FilterMethod)
	}
	switch data[12] {
	case 0:
		h.Interlace = false
	case 1:
		h.Interlace = true
	default:
		return Header{}, newErr(InterlaceMethod)
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

func encodeIHDR(h Header) []byte {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:4], h.Width)
	binary.BigEndian.PutUint32(data[4:8], h.Height)
	data[8] = h.BitDepth
	data[9] = byte(h.ColorType)
	data[10] = 0
	data[11] = 0
	if h.Interlace {
		data[12] = 1
	}
	return data
}

// parsePLTE decodes PLTE: a sequence of 3-byte RGB entries.
func parsePLTE(data []byte) (Palette, error) {
	if len(data) == 0 || len(data)%3 != 0 || len(data) > 256*3 {
		return Palette{}, newErrName(ChunkLength, namePLTE[:])
	}
	entries := make([]RGB, len(data)/3)
	for i := range entries {
		entries[i] = RGB{R: data[i*3], G: data[i*3+1], B: data[i*3+2]}
	}
	return Palette{Entries: entries}, nil
}

func encodePLTE(p Palette) []byte {
	data := make([]byte, len(p.Entries)*3)
	for i, e := range p.Entries {
		data[i*3], data[i*3+1], data[i*3+2] = e.R, e.G, e.B
	}
	return data
}

// parseTRNS decodes tRNS. Its shape depends on the image's color type
// (original_source trns.rs: palette images get a byte-per-entry alpha
// list, Gray images a single 16-bit gray key, RGB images one 16-bit
// value per channel).
func parseTRNS(data []byte, ct ColorType, paletteLen int) (Transparency, error) {
	switch ct {
	case PaletteColor:
		if len(data) > paletteLen {
			return Transparency{}, newErr(AlphaPaletteLen)
		}
		return Transparency{PaletteAlpha: append([]byte{}, data...)}, nil
	case GrayColor:
		if len(data) != 2 {
			return Transparency{}, newErrName(ChunkLength, nameTRNS[:])
		}
		return Transparency{HasGrayKey: true, GrayKey: binary.BigEndian.Uint16(data)}, nil
	case RGBColor:
		if len(data) != 6 {
			return Transparency{}, newErrName(ChunkLength, nameTRNS[:])
		}
		return Transparency{HasRGBKey: true, RGBKey: RGB16{
			R: binary.BigEndian.Uint16(data[0:2]),
			G: binary.BigEndian.Uint16(data[2:4]),
			B: binary.BigEndian.Uint16(data[4:6]),
		}}, nil
	default:
		// GrayAlpha and RGBA already carry a full alpha channel; tRNS is
		// illegal for them and is rejected here as a ChunkOrder failure.
		return Transparency{}, newErrName(ChunkOrder, nameTRNS[:])
	}
}

func encodeTRNS(t Transparency, ct ColorType) []byte {
	switch {
	case t.PaletteAlpha != nil:
		return append([]byte{}, t.PaletteAlpha...)
	case t.HasGrayKey:
		data := make([]byte, 2)
		binary.BigEndian.PutUint16(data, t.GrayKey)
		return data
	case t.HasRGBKey:
		data := make([]byte, 6)
		binary.BigEndian.PutUint16(data[0:2], t.RGBKey.R)
		binary.BigEndian.PutUint16(data[2:4], t.RGBKey.G)
		binary.BigEndian.PutUint16(data[4:6], t.RGBKey.B)
		return data
	default:
		return nil
	}
}

// parseBKGD decodes bKGD purely by length, matching original_source
// bkgd.rs; the assembler cross-validates the result against the
// header's color type.
func parseBKGD(data []byte) (Background, error) {
	switch len(data) {
	case 1:
		return Background{HasPaletteIndex: true, PaletteIndex: data[0]}, nil
	case 2:
		return Background{HasGray: true, Gray: binary.BigEndian.Uint16(data)}, nil
	case 6:
		return Background{HasRGB: true, RGB: RGB16{
			R: binary.BigEndian.Uint16(data[0:2]),
			G: binary.BigEndian.Uint16(data[2:4]),
			B: binary.BigEndian.Uint16(data[4:6]),
		}}, nil
	default:
		return Background{}, newErrN(BackgroundSize, len(data))
	}
}

func encodeBKGD(b Background) []byte {
	switch {
	case b.HasPaletteIndex:
		return []byte{b.PaletteIndex}
	case b.HasGray:
		data := make([]byte, 2)
		binary.BigEndian.PutUint16(data, b.Gray)
		return data
	case b.HasRGB:
		data := make([]byte, 6)
		binary.BigEndian.PutUint16(data[0:2], b.RGB.R)
		binary.BigEndian.PutUint16(data[2:4], b.RGB.G)
		binary.BigEndian.PutUint16(data[4:6], b.RGB.B)
		return data
	default:
		return nil
	}
}

// parsePHYS decodes pHYs's fixed 9-byte layout.
func parsePHYS(data []byte) (Physical, error) {
	if len(data) != 9 {
		return Physical{}, newErrName(ChunkLength, namePHYS[:])
	}
	var p Physical
	p.PixelsPerUnitX = binary.BigEndian.Uint32(data[0:4])
	p.PixelsPerUnitY = binary.BigEndian.Uint32(data[4:8])
	switch data[8] {
	case 0:
		p.IsMeter = false
	case 1:
		p.IsMeter = true
	default:
		return Physical{}, newErr(PhysUnits)
	}
	return p, nil
}

func encodePHYS(p Physical) []byte {
	data := make([]byte, 9)
	binary.BigEndian.PutUint32(data[0:4], p.PixelsPerUnitX)
	binary.BigEndian.PutUint32(data[4:8], p.PixelsPerUnitY)
	if p.IsMeter {
		data[8] = 1
	}
	return data
}

// parseTIME decodes tIME's fixed 7-byte layout, with no range
// validation (original_source time.rs does none either).
func parseTIME(data []byte) (Time, error) {
	if len(data) != 7 {
		return Time{}, newErrName(ChunkLength, nameTIME[:])
	}
	return Time{
		Year:   binary.BigEndian.Uint16(data[0:2]),
		Month:  data[2],
		Day:    data[3],
		Hour:   data[4],
		Minute: data[5],
		Second: data[6],
	}, nil
}

func encodeTIME(t Time) []byte {
	data := make([]byte, 7)
	binary.BigEndian.PutUint16(data[0:2], t.Year)
	data[2], data[3], data[4], data[5], data[6] = t.Month, t.Day, t.Hour, t.Minute, t.Second
	return data
}

// splitNullTerminated finds the first NUL byte in data and returns the
// bytes before and after it.
func splitNullTerminated(data []byte) (before, after []byte, ok bool) {
	for i, b := range data {
		if b == 0 {
			return data[:i], data[i+1:], true
		}
	}
	return nil, nil, false
}

// parseTEXT decodes tEXt: a null-terminated keyword (1-79 bytes)
// followed by text. Bytes that aren't valid UTF-8 are lossily replaced
// with U+FFFD (spec §4.E; original_source text.rs uses
// from_utf8_lossy for the same reason).
func parseTEXT(data []byte) (TextEntry, error) {
	key, rest, ok := splitNullTerminated(data)
	if !ok || len(key) == 0 || len(key) > 79 {
		return TextEntry{}, newErrN(TextSize, len(key))
	}
	return TextEntry{Keyword: utf8Lossy(key), Text: utf8Lossy(rest)}, nil
}

func encodeTEXT(t TextEntry) []byte {
	data := make([]byte, 0, len(t.Keyword)+1+len(t.Text))
	data = append(data, t.Keyword...)
	data = append(data, 0)
	data = append(data, t.Text...)
	return data
}

// parseZTXT decodes zTXt: a null-terminated keyword, a compression
// method byte (must be 0), then zlib-compressed text, lossily decoded
// as UTF-8 the same way parseTEXT is.
func parseZTXT(data []byte) (CompressedTextEntry, error) {
	key, rest, ok := splitNullTerminated(data)
	if !ok || len(key) == 0 || len(key) > 79 {
		return CompressedTextEntry{}, newErrN(TextSize, len(key))
	}
	if len(rest) < 1 {
		return CompressedTextEntry{}, newErrName(ChunkLength, nameZTXT[:])
	}
	if rest[0] != 0 {
		return CompressedTextEntry{}, newErr(CompressionMethod)
	}
	text, err := zlibx.Decompress(rest[1:])
	if err != nil {
		return CompressedTextEntry{}, translateZlibErr(err)
	}
	return CompressedTextEntry{Keyword: utf8Lossy(key), Text: utf8Lossy(text)}, nil
}

func encodeZTXT(t CompressedTextEntry, level int) []byte {
	data := make([]byte, 0, len(t.Keyword)+2)
	data = append(data, t.Keyword...)
	data = append(data, 0, 0)
	data = append(data, zlibx.Compress([]byte(t.Text), level)...)
	return data
}

// parseITXT decodes iTXt: keyword, compression flag, compression
// method, language tag, translated keyword, then text (raw UTF-8 or
// zlib-compressed UTF-8 depending on the flag).
func parseITXT(data []byte) (InternationalTextEntry, error) {
	key, rest, ok := splitNullTerminated(data)
	if !ok || len(key) == 0 || len(key) > 79 {
		return InternationalTextEntry{}, newErrN(TextSize, len(key))
	}
	if len(rest) < 2 {
		return InternationalTextEntry{}, newErrName(ChunkLength, nameITXT[:])
	}
	compressedFlag, compressionMethod := rest[0], rest[1]
	rest = rest[2:]
	if compressedFlag != 0 && compressedFlag != 1 {
		return InternationalTextEntry{}, newErrName(ChunkLength, nameITXT[:])
	}
	if compressedFlag == 1 && compressionMethod != 0 {
		return InternationalTextEntry{}, newErr(CompressionMethod)
	}
	lang, rest2, ok := splitNullTerminated(rest)
	if !ok {
		return InternationalTextEntry{}, newErrName(ChunkLength, nameITXT[:])
	}
	transKey, text, ok := splitNullTerminated(rest2)
	if !ok {
		return InternationalTextEntry{}, newErrName(ChunkLength, nameITXT[:])
	}

	e := InternationalTextEntry{
		Keyword:           utf8Lossy(key),
		Compressed:        compressedFlag == 1,
		LanguageTag:       utf8Lossy(lang),
		TranslatedKeyword: utf8Lossy(transKey),
	}
	if e.Compressed {
		plain, err := zlibx.Decompress(text)
		if err != nil {
			return InternationalTextEntry{}, translateZlibErr(err)
		}
		e.Text = utf8Lossy(plain)
	} else {
		e.Text = utf8Lossy(text)
	}
	return e, nil
}

func encodeITXT(e InternationalTextEntry, level int) []byte {
	data := make([]byte, 0, len(e.Keyword)+16)
	data = append(data, e.Keyword...)
	data = append(data, 0)
	if e.Compressed {
		data = append(data, 1, 0)
	} else {
		data = append(data, 0, 0)
	}
	data = append(data, []byte(e.LanguageTag)...)
	data = append(data, 0)
	data = append(data, []byte(e.TranslatedKeyword)...)
	data = append(data, 0)
	if e.Compressed {
		data = append(data, zlibx.Compress([]byte(e.Text), level)...)
	} else {
		data = append(data, []byte(e.Text)...)
	}
	return data
}

func translateZlibErr(err error) error {
	ze, ok := err.(*zlibx.Error)
	if !ok {
		return newErrInner(Inflate, err)
	}
	switch ze.Problem {
	case zlibx.ProblemTooSmall:
		return newErr(ZlibTooSmall)
	case zlibx.ProblemHeader:
		return newErr(ZlibHeader)
	case zlibx.ProblemPresetDict:
		return newErr(PresetDict)
	case zlibx.ProblemAdler:
		return newErr(AdlerChecksum)
	default:
		return newErrInner(Inflate, ze.Inner)
	}
}

// utf8Lossy decodes b as UTF-8, replacing any invalid byte sequence
// with U+FFFD, the same behavior as Rust's String::from_utf8_lossy
// that original_source's text.rs/ztxt.rs rely on.
func utf8Lossy(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
