package png

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one member of the codec's closed error taxonomy. The
// decoder and encoder never return an error outside this set; callers
// that want to branch on failure reason should use errors.As against
// *Error and switch on Kind rather than matching strings.
type Kind int

const (
	// Io wraps a failure from the underlying byte source or sink.
	Io Kind = iota
	InvalidSignature
	Eof
	ChunkLength
	Crc32
	UnknownChunkType
	ChunkOrder
	Multiple
	TrailingChunk
	NoImageData
	InvalidColorType
	InvalidBitDepth
	ColorMode
	CompressionMethod
	FilterMethod
	InterlaceMethod
	ImageDimensions
	AlphaPaletteLen
	BackgroundSize
	PhysUnits
	IllegalFilterType
	TextSize
	ZlibHeader
	ZlibTooSmall
	PresetDict
	AdlerChecksum
	Inflate
	ChunkTooBig
	BadPalette
)

// String returns the Kind's human-readable name, the same text used
// inside Error.Error().
func (k Kind) String() string { return kindNames[k] }

var kindNames = map[Kind]string{
	Io:                 "io",
	InvalidSignature:   "invalid signature",
	Eof:                "unexpected eof",
	ChunkLength:        "chunk length",
	Crc32:              "crc32 mismatch",
	UnknownChunkType:   "unknown chunk type",
	ChunkOrder:         "chunk order",
	Multiple:           "duplicate singleton chunk",
	TrailingChunk:      "trailing chunk after IEND",
	NoImageData:        "no IDAT data",
	InvalidColorType:   "invalid color type",
	InvalidBitDepth:    "invalid bit depth",
	ColorMode:          "illegal color type/bit depth combination",
	CompressionMethod:  "invalid compression method",
	FilterMethod:       "invalid filter method",
	InterlaceMethod:    "invalid interlace method",
	ImageDimensions:    "invalid image dimensions",
	AlphaPaletteLen:    "tRNS longer than palette",
	BackgroundSize:     "bKGD size mismatch",
	PhysUnits:          "invalid pHYs unit specifier",
	IllegalFilterType:  "illegal scanline filter type",
	TextSize:           "text keyword length out of range",
	ZlibHeader:         "invalid zlib header",
	ZlibTooSmall:       "zlib stream too small",
	PresetDict:         "zlib preset dictionary not supported",
	AdlerChecksum:      "adler-32 mismatch",
	Inflate:            "inflate failure",
	ChunkTooBig:        "chunk data exceeds 2^31-1 bytes",
	BadPalette:         "invalid palette",
}

// Error is the single error type the codec returns. Name is populated
// for chunk-scoped failures (Crc32, ChunkLength, UnknownChunkType,
// Multiple, ChunkOrder, TrailingChunk); N carries an auxiliary integer
// payload (e.g. TextSize's out-of-range length); Inner carries the
// wrapped cause for Inflate, Io and IllegalFilterType.
type Error struct {
	Kind  Kind
	Name  [4]byte
	N     int
	Inner error
}

func (e *Error) Error() string {
	msg := kindNames[e.Kind]
	if e.Name != ([4]byte{}) {
		msg = fmt.Sprintf("%s: chunk %q", msg, e.Name[:])
	}
	if e.N != 0 {
		msg = fmt.Sprintf("%s (%d)", msg, e.N)
	}
	if e.Inner != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Inner)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Inner }

// Is lets errors.Is(err, kindErr) match on Kind alone, the way the
// teacher matches its sentinel chunkNotFoundErr.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind) error { return errors.WithStack(&Error{Kind: kind}) }

func newErrName(kind Kind, name []byte) error {
	var n [4]byte
	copy(n[:], name)
	return errors.WithStack(&Error{Kind: kind, Name: n})
}

func newErrN(kind Kind, n int) error { return errors.WithStack(&Error{Kind: kind, N: n}) }

func newErrInner(kind Kind, inner error) error {
	return errors.WithStack(&Error{Kind: kind, Inner: inner})
}

func newErrNameInner(kind Kind, name []byte, inner error) error {
	var n [4]byte
	copy(n[:], name)
	return errors.WithStack(&Error{Kind: kind, Name: n, Inner: inner})
}

// KindOf extracts the Kind from any error produced by this package,
// unwrapping github.com/pkg/errors stack frames along the way. ok is
// false if err is nil or wasn't produced by this package.
func KindOf(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
