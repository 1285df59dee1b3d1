// Command pngdump decodes a PNG file and reports its header and
// ancillary chunks, the way the library's own demo test once opened a
// file and logged its chunks one by one.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chunkwise/png"
)

func main() {
	var (
		roundTrip = flag.String("roundtrip", "", "re-encode the decoded image to this path")
		verbose   = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pngdump [-roundtrip out.png] [-v] file.png")
		os.Exit(2)
	}

	log := newLogger(*verbose)
	defer log.Sync()

	if err := run(flag.Arg(0), *roundTrip, log); err != nil {
		log.Error("pngdump failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		// zap itself failed to build; fall back to a no-op logger rather
		// than crash a tool whose job is to report on a different file.
		return zap.NewNop()
	}
	return log
}

func run(path, roundTripPath string, log *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := png.NewDecoder(f, log)
	raster, meta, err := dec.Decode()
	if err != nil {
		if kind, ok := png.KindOf(err); ok {
			log.Error("decode failed", zap.String("kind", kind.String()))
		}
		return err
	}

	h := raster.Header
	fmt.Printf("%s  %dx%d  color=%s depth=%d interlace=%v\n", path, h.Width, h.Height, h.ColorType, h.BitDepth, h.Interlace)
	if raster.Palette != nil {
		fmt.Printf("  PLTE: %d entries\n", len(raster.Palette.Entries))
	}
	for _, t := range meta.Text {
		fmt.Printf("  tEXt %s: %q\n", t.Keyword, truncate(t.Text, 60))
	}
	for _, t := range meta.CompressedText {
		fmt.Printf("  zTXt %s: %q\n", t.Keyword, truncate(t.Text, 60))
	}
	for _, u := range meta.Unknown {
		fmt.Printf("  unknown chunk %q (%d bytes)\n", u.Name[:], len(u.Data))
	}

	if roundTripPath == "" {
		return nil
	}
	out, err := os.Create(roundTripPath)
	if err != nil {
		return err
	}
	defer out.Close()
	enc := png.NewEncoder(out, log)
	return enc.Encode(raster, meta, png.EncodeOptions{UseDefaultStrategy: true})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
