package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lines() ([]byte, []byte) {
	line1 := make([]byte, 256*256)
	line2 := make([]byte, 256*256)
	i := 0
	for p := 0; p < 256; p++ {
		for q := 0; q < 256; q++ {
			line1[i] = byte(q)
			line2[i] = byte(p)
			i++
		}
	}
	return line1, line2
}

func TestFilterInvertibilityWithPrev(t *testing.T) {
	line1, line2 := lines()
	filtered := make([]byte, len(line1))
	recon := make([]byte, len(line1))
	for ft := None; ft <= Paeth; ft++ {
		FilterScanline(filtered, line1, line2, 1, ft)
		err := UnfilterScanline(recon, filtered, line2, 1, ft)
		require.NoError(t, err)
		require.Equal(t, line1, recon, "filter type %d", ft)
	}
}

func TestFilterInvertibilityNoPrev(t *testing.T) {
	line1, _ := lines()
	filtered := make([]byte, len(line1))
	recon := make([]byte, len(line1))
	for ft := None; ft <= Paeth; ft++ {
		FilterScanline(filtered, line1, nil, 1, ft)
		err := UnfilterScanline(recon, filtered, nil, 1, ft)
		require.NoError(t, err)
		require.Equal(t, line1, recon, "filter type %d", ft)
	}
}

func TestUnfilterRejectsIllegalType(t *testing.T) {
	recon := make([]byte, 4)
	err := UnfilterScanline(recon, []byte{1, 2, 3, 4}, nil, 1, Type(5))
	require.Error(t, err)
	require.True(t, IsIllegalFilterType(err))
}

func TestParseTypeBounds(t *testing.T) {
	_, ok := ParseType(4)
	require.True(t, ok)
	_, ok = ParseType(5)
	require.False(t, ok)
}

func TestSelectLineZeroStrategy(t *testing.T) {
	scanline := []byte{10, 20, 30, 40}
	out := make([]byte, len(scanline))
	got := SelectLine(out, scanline, nil, 1, StrategyZero, 0, nil)
	require.Equal(t, None, got)
	require.Equal(t, scanline, out)
}

func TestSelectLineMinSumScoresNoneLikeOthers(t *testing.T) {
	// A one-pixel-wide line (bytewidth == len(scanline)), no previous
	// line: Sub/Up/Average/Paeth all degrade to a raw copy of scanline,
	// identical to None's output. A correct MinSum must score these
	// identical byte arrays identically regardless of which Type
	// produced them, so ties break to the first type tried, None.
	// Scoring None by raw byte value instead of signed-magnitude (the
	// bug) would have made None lose to Sub here despite equal output.
	scanline := []byte{200, 200, 200, 200}
	out := make([]byte, len(scanline))
	got := SelectLine(out, scanline, nil, 4, StrategyMinSum, 0, nil)
	require.Equal(t, None, got)
}

func TestDefaultStrategy(t *testing.T) {
	require.Equal(t, StrategyZero, DefaultStrategy(true, 8))
	require.Equal(t, StrategyZero, DefaultStrategy(false, 4))
	require.Equal(t, StrategyMinSum, DefaultStrategy(false, 8))
}
