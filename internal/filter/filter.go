// Package filter implements the five PNG scanline predictors (spec
// §4.F) and the filter-type selection heuristics used on encode.
package filter

// Type identifies one of PNG's five per-scanline predictors.
type Type byte

const (
	None Type = iota
	Sub
	Up
	Average
	Paeth
	numTypes
)

// Strategy picks, for each scanline on encode, which Type to use.
type Strategy int

const (
	// StrategyZero always emits filter type None.
	StrategyZero Strategy = iota
	// StrategyMinSum tries all five and keeps the one with the smallest
	// sum of signed-magnitude byte values, the heuristic the PNG spec
	// itself recommends.
	StrategyMinSum
	// StrategyEntropy tries all five and keeps the one with the lowest
	// Shannon entropy.
	StrategyEntropy
	// StrategyBruteForce compresses every candidate with compress and
	// keeps the smallest result. Quadratic in cost; not a default.
	StrategyBruteForce
)

func paeth(a, b, c int16) byte {
	p := a + b - c
	pa := abs16(p - a)
	pb := abs16(p - b)
	pc := abs16(p - c)
	if pa <= pb && pa <= pc {
		return byte(a)
	}
	if pb <= pc {
		return byte(b)
	}
	return byte(c)
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// FilterScanline applies filter type ft to scanline (length bytes,
// excluding any filter-type prefix byte), given the previous unfiltered
// line (nil for the first row of a pass) and the pixel stride bytewidth
// = ceil(bpp/8). out must have length len(scanline).
func FilterScanline(out, scanline, prevline []byte, bytewidth int, ft Type) {
	length := len(scanline)
	switch ft {
	case None:
		copy(out, scanline)
	case Sub:
		copy(out[:bytewidth], scanline[:bytewidth])
		for i := bytewidth; i < length; i++ {
			out[i] = scanline[i] - scanline[i-bytewidth]
		}
	case Up:
		if prevline != nil {
			for i := 0; i < length; i++ {
				out[i] = scanline[i] - prevline[i]
			}
		} else {
			copy(out, scanline)
		}
	case Average:
		if prevline != nil {
			for i := 0; i < bytewidth; i++ {
				out[i] = scanline[i] - prevline[i]/2
			}
			for i := bytewidth; i < length; i++ {
				s := uint16(scanline[i-bytewidth]) + uint16(prevline[i])
				out[i] = scanline[i] - byte(s/2)
			}
		} else {
			copy(out[:bytewidth], scanline[:bytewidth])
			for i := bytewidth; i < length; i++ {
				out[i] = scanline[i] - scanline[i-bytewidth]/2
			}
		}
	case Paeth:
		if prevline != nil {
			for i := 0; i < bytewidth; i++ {
				out[i] = scanline[i] - prevline[i]
			}
			for i := bytewidth; i < length; i++ {
				out[i] = scanline[i] - paeth(
					int16(scanline[i-bytewidth]),
					int16(prevline[i]),
					int16(prevline[i-bytewidth]),
				)
			}
		} else {
			copy(out[:bytewidth], scanline[:bytewidth])
			for i := bytewidth; i < length; i++ {
				out[i] = scanline[i] - scanline[i-bytewidth]
			}
		}
	}
}

// UnfilterScanline is the inverse of FilterScanline: recon and scanline
// may alias (common in-place usage), precon must not alias recon.
func UnfilterScanline(recon, scanline, precon []byte, bytewidth int, ft Type) error {
	length := len(scanline)
	switch ft {
	case None:
		copy(recon, scanline)
	case Sub:
		copy(recon[:bytewidth], scanline[:bytewidth])
		for i := bytewidth; i < length; i++ {
			recon[i] = scanline[i] + recon[i-bytewidth]
		}
	case Up:
		if precon != nil {
			for i := 0; i < length; i++ {
				recon[i] = scanline[i] + precon[i]
			}
		} else {
			copy(recon, scanline)
		}
	case Average:
		if precon != nil {
			for i := 0; i < bytewidth; i++ {
				recon[i] = scanline[i] + precon[i]/2
			}
			for i := bytewidth; i < length; i++ {
				s := uint16(recon[i-bytewidth]) + uint16(precon[i])
				recon[i] = scanline[i] + byte(s/2)
			}
		} else {
			copy(recon[:bytewidth], scanline[:bytewidth])
			for i := bytewidth; i < length; i++ {
				recon[i] = scanline[i] + recon[i-bytewidth]/2
			}
		}
	case Paeth:
		if precon != nil {
			for i := 0; i < bytewidth; i++ {
				recon[i] = scanline[i] + precon[i]
			}
			for i := bytewidth; i < length; i++ {
				recon[i] = scanline[i] + paeth(
					int16(recon[i-bytewidth]),
					int16(precon[i]),
					int16(precon[i-bytewidth]),
				)
			}
		} else {
			copy(recon[:bytewidth], scanline[:bytewidth])
			for i := bytewidth; i < length; i++ {
				recon[i] = scanline[i] + recon[i-bytewidth]
			}
		}
	default:
		return errIllegalFilterType
	}
	return nil
}

// errIllegalFilterType is returned as a sentinel; the root package maps
// it onto Kind IllegalFilterType so this package stays decoupled from
// the root error taxonomy.
var errIllegalFilterType = illegalFilterTypeErr{}

type illegalFilterTypeErr struct{}

func (illegalFilterTypeErr) Error() string { return "filter: illegal scanline filter type" }

// IsIllegalFilterType reports whether err is the sentinel
// UnfilterScanline returns for an out-of-range filter type byte.
func IsIllegalFilterType(err error) bool {
	_, ok := err.(illegalFilterTypeErr)
	return ok
}
