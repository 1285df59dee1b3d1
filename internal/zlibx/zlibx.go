// Package zlibx implements the PNG/zlib compression adapter described
// in spec §4.C: a hand-rolled RFC 1950 zlib envelope (2-byte header,
// DEFLATE payload, 4-byte big-endian Adler-32 trailer) around a raw
// DEFLATE codec. The envelope is built by hand, rather than delegated
// to a ready-made zlib reader/writer, because the decoder needs to
// reject preset dictionaries and validate CMF/FLG explicitly before
// the DEFLATE stream is even touched.
package zlibx

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"

	"github.com/chunkwise/png/internal/checksum"
)

// Sentinel kinds surfaced through errors.As by the root package, which
// wraps these into its own *Error taxonomy. zlibx stays decoupled from
// the root package's error type so it can be reused by any chunk codec
// (IDAT, zTXt, iTXt) without an import cycle.
type Problem int

const (
	ProblemNone Problem = iota
	ProblemTooSmall
	ProblemHeader
	ProblemPresetDict
	ProblemInflate
	ProblemAdler
)

// Error reports a zlib envelope failure together with which Problem it
// was and, for ProblemInflate, the underlying flate error.
type Error struct {
	Problem Problem
	Inner   error
}

func (e *Error) Error() string {
	switch e.Problem {
	case ProblemTooSmall:
		return "zlibx: stream shorter than 6 bytes"
	case ProblemHeader:
		return "zlibx: invalid zlib header"
	case ProblemPresetDict:
		return "zlibx: preset dictionary not supported"
	case ProblemAdler:
		return "zlibx: adler-32 checksum mismatch"
	case ProblemInflate:
		return "zlibx: inflate failed: " + e.Inner.Error()
	default:
		return "zlibx: unknown error"
	}
}

func (e *Error) Unwrap() error { return e.Inner }

// DefaultLevel is the compression level used when the caller doesn't
// pick one, matching spec §4.C's "6 is the default".
const DefaultLevel = 6

// Compress wraps data in a zlib envelope: header, DEFLATE-compressed
// payload, Adler-32 trailer. level is clamped into flate's supported
// range; spec allows [0,10], flate natively supports
// [flate.NoCompression, flate.BestCompression] = [0,9], so 10 maps to
// 9 (best).
func Compress(data []byte, level int) []byte {
	if level < 0 {
		level = DefaultLevel
	}
	if level > flate.BestCompression {
		level = flate.BestCompression
	}

	var buf []byte
	buf = append(buf, header(level)...)

	var deflated bytes.Buffer
	fw, _ := flate.NewWriter(&deflated, level)
	fw.Write(data)
	fw.Close()
	buf = append(buf, deflated.Bytes()...)

	adler := checksum.Adler32Sum(data)
	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], adler)
	buf = append(buf, trailer[:]...)
	return buf
}

// header builds CMF/FLG per spec §4.C: CMF=0x78 (deflate, 32K window),
// FLG with FDICT=0 and FCHECK chosen so (CMF*256+FLG) mod 31 == 0.
// FLEVEL (FLG bits 6-7) is set from the compression level but is
// advisory only, matching "not semantically checked on decode".
func header(level int) [2]byte {
	const cmf = 0x78
	var flevel byte
	switch {
	case level == 0:
		flevel = 0
	case level < 6:
		flevel = 1
	case level == 6:
		flevel = 2
	default:
		flevel = 3
	}
	flg := flevel << 6
	rem := (int(cmf)*256 + int(flg)) % 31
	if rem != 0 {
		flg += byte(31 - rem)
	}
	return [2]byte{cmf, flg}
}

// Decompress validates and strips the zlib envelope, inflates the
// DEFLATE payload, and verifies the Adler-32 trailer against the
// decompressed bytes.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < 6 {
		return nil, &Error{Problem: ProblemTooSmall}
	}
	cmf, flg := data[0], data[1]
	if (int(cmf)*256+int(flg))%31 != 0 {
		return nil, &Error{Problem: ProblemHeader}
	}
	if cmf&0x0F != 8 {
		return nil, &Error{Problem: ProblemHeader}
	}
	if cmf>>4 > 7 {
		return nil, &Error{Problem: ProblemHeader}
	}
	if flg&0x20 != 0 {
		return nil, &Error{Problem: ProblemPresetDict}
	}

	payload := data[2 : len(data)-4]
	trailer := data[len(data)-4:]

	fr := flate.NewReader(bytes.NewReader(payload))
	defer fr.Close()
	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, &Error{Problem: ProblemInflate, Inner: errors.WithStack(err)}
	}

	want := binary.BigEndian.Uint32(trailer)
	got := checksum.Adler32Sum(out)
	if want != got {
		return nil, &Error{Problem: ProblemAdler}
	}
	return out, nil
}
