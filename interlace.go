package png

import "github.com/chunkwise/png/internal/adam7"

// adam7Passes computes the 7 Adam7 pass geometries for h's dimensions.
func adam7Passes(h Header) [7]adam7.Pass {
	return adam7.Passes(int(h.Width), int(h.Height))
}
