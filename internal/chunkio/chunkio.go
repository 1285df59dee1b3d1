// Package chunkio implements PNG's low-level framing: the 8-byte file
// signature and the length/name/data/CRC envelope each chunk is
// wrapped in (spec §4.D). It is grounded on the teacher's chunk
// struct and readChunk function in chunk.go/png.go, generalized to
// report errors through the closed taxonomy instead of panicking and
// to support writing as well as reading.
package chunkio

import (
	"encoding/binary"
	"io"

	"github.com/chunkwise/png/internal/checksum"
)

// Signature is the 8 magic bytes every PNG stream begins with.
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// MaxChunkLength is the largest length a chunk's length field may
// declare (spec §4.D: chunk data length must fit in a signed 31-bit
// integer).
const MaxChunkLength = 1<<31 - 1

// Chunk is one raw, framed chunk: the 4-byte ASCII name plus its
// payload. Data excludes the length prefix and trailing CRC.
type Chunk struct {
	Name [4]byte
	Data []byte
}

// Critical reports whether bit 5 of the name's first byte is clear,
// PNG's convention for chunks a decoder must understand to proceed.
func (c Chunk) Critical() bool { return c.Name[0]&0x20 == 0 }

// ReadSignature consumes and validates the 8-byte PNG signature.
func ReadSignature(r io.Reader) error {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return ioErr(err)
	}
	if buf != Signature {
		return errInvalidSignature
	}
	return nil
}

// ReadNextChunk reads one length-prefixed, CRC-verified chunk from r.
// It returns io.EOF unchanged when r is exhausted before any bytes of
// a new chunk are read, so callers can use it as a loop terminator the
// same way the teacher's ParsePng loop does.
func ReadNextChunk(r io.Reader) (Chunk, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return Chunk{}, io.EOF
		}
		return Chunk{}, ioErr(err)
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > MaxChunkLength {
		return Chunk{}, errChunkTooBig
	}

	var name [4]byte
	if _, err := io.ReadFull(r, name[:]); err != nil {
		return Chunk{}, ioErr(err)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return Chunk{}, ioErr(err)
	}

	var crcBuf [4]byte
	if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
		return Chunk{}, ioErr(err)
	}
	wantCRC := binary.BigEndian.Uint32(crcBuf[:])

	got := checksum.CRC32Sum(append(append([]byte{}, name[:]...), data...))
	if got != wantCRC {
		return Chunk{}, errCRCMismatch(name)
	}

	return Chunk{Name: name, Data: data}, nil
}

// WriteChunk frames and writes one chunk: length, name, data, CRC.
func WriteChunk(w io.Writer, name [4]byte, data []byte) error {
	if len(data) > MaxChunkLength {
		return errChunkTooBig
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return ioErr(err)
	}
	if _, err := w.Write(name[:]); err != nil {
		return ioErr(err)
	}
	if _, err := w.Write(data); err != nil {
		return ioErr(err)
	}
	crc := checksum.CRC32Sum(append(append([]byte{}, name[:]...), data...))
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	if _, err := w.Write(crcBuf[:]); err != nil {
		return ioErr(err)
	}
	return nil
}

// WriteSignature writes the 8-byte PNG signature.
func WriteSignature(w io.Writer) error {
	_, err := w.Write(Signature[:])
	return ioErr(err)
}
