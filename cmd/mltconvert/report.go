package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"go.uber.org/multierr"

	"github.com/arloliu/mlt"
	"github.com/arloliu/mlt/compress"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/tile"
)

// writeInspect prints the layer and column layout of an encoded tile.
func writeInspect(w io.Writer, infos []tile.LayerInfo, verbose bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, info := range infos {
		fmt.Fprintf(tw, "layer %q\tid=%d\textent=%d\tfeatures=%d\tbytes=%d\n",
			info.Name, info.ID, info.Extent, info.Features, info.Bytes)
		fmt.Fprintln(tw, "  COLUMN\tTYPE\tENCODING\tSTREAMS\tBYTES")
		for _, col := range info.Columns {
			enc := col.Encoding
			if enc == "" {
				enc = "-"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%d\n", col.Name, col.Type, enc, len(col.Streams), col.Bytes)
			if verbose {
				for _, h := range col.Streams {
					fmt.Fprintf(tw, "    %s\t\t\t\t\n", h)
				}
			}
		}
	}

	return tw.Flush()
}

type sizeStats struct {
	Input string
	MVT   int
	Sizes map[format.CompressionType]int
}

// collectStats converts every MVT input once per compression type. Inputs
// that fail are left out and reported in the combined error.
func collectStats(cfg *Config, paths []string) ([]sizeStats, error) {
	var (
		stats []sizeStats
		errs  error
	)
	for _, path := range paths {
		s, err := statsFor(cfg, path)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		stats = append(stats, s)
	}

	return stats, errs
}

func statsFor(cfg *Config, path string) (sizeStats, error) {
	data, err := os.ReadFile(path) //nolint: gosec
	if err != nil {
		return sizeStats{}, err
	}

	layers, schema, err := mlt.FromMVT(data, cfg.inferOptions()...)
	if err != nil {
		return sizeStats{}, err
	}

	encodeOpts, err := cfg.encodeOptions()
	if err != nil {
		return sizeStats{}, err
	}

	s := sizeStats{Input: path, MVT: len(data), Sizes: make(map[format.CompressionType]int)}
	for _, c := range compress.Types() {
		opts := append(encodeOpts[:len(encodeOpts):len(encodeOpts)], mlt.WithCompression(c))
		encoded, err := mlt.Encode(layers, schema, opts...)
		if err != nil {
			return sizeStats{}, err
		}
		s.Sizes[c] = len(encoded)
	}

	return s, nil
}

// writeStats prints one row per input with the MVT size and each envelope
// size as a percentage of it.
func writeStats(w io.Writer, stats []sizeStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(tw, "FILE\tMVT\t")
	for _, c := range compress.Types() {
		fmt.Fprintf(tw, "%s\t", c)
	}
	fmt.Fprintln(tw)

	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t", s.Input, s.MVT)
		for _, c := range compress.Types() {
			fmt.Fprintf(tw, "%d (%.1f%%)\t", s.Sizes[c], percent(s.Sizes[c], s.MVT))
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}

	return float64(part) / float64(whole) * 100
}
