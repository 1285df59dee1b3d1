package bitstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	w.WriteBits(0b1, 1)
	w.WriteBits(0b0010, 4)
	w.WriteBit(true)
	out := w.Bytes()
	require.Len(t, out, 2)

	r := NewReader(out)
	require.EqualValues(t, 0b101, r.ReadBits(3))
	require.EqualValues(t, 0b1, r.ReadBits(1))
	require.EqualValues(t, 0b0010, r.ReadBits(4))
	require.True(t, r.ReadBit())
}

func TestSeekAbsolutePositioning(t *testing.T) {
	r := NewReader([]byte{0b10110000, 0b11110000})
	r.Seek(8)
	require.EqualValues(t, 0b1111, r.ReadBits(4))
}

func TestAlignPadsWithZero(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	w.Align()
	out := w.Bytes()
	require.Equal(t, []byte{0b10100000}, out)
}

func TestReadPastEndYieldsFalse(t *testing.T) {
	r := NewReader([]byte{0xFF})
	r.Seek(8)
	require.False(t, r.ReadBit())
}
