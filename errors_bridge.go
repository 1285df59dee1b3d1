package png

import (
	"io"

	"github.com/chunkwise/png/internal/chunkio"
)

// translateChunkioErr maps an internal/chunkio.Error onto this
// package's closed Kind taxonomy.
func translateChunkioErr(err error) error {
	ce, ok := err.(*chunkio.Error)
	if !ok {
		return newErrInner(Io, err)
	}
	switch ce.Problem {
	case chunkio.ProblemInvalidSignature:
		return newErr(InvalidSignature)
	case chunkio.ProblemChunkTooBig:
		return newErr(ChunkTooBig)
	case chunkio.ProblemCRCMismatch:
		return newErrName(Crc32, ce.Name[:])
	default:
		if ce.Inner == io.ErrUnexpectedEOF {
			return newErr(Eof)
		}
		return newErrInner(Io, ce.Inner)
	}
}
