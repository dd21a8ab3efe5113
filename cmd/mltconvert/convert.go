package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/mlt"
	"github.com/arloliu/mlt/tile"
)

// Output file suffixes written next to each converted tile.
const (
	tileSuffix   = ".mlt"
	schemaSuffix = ".schema.yaml"
)

type convertResult struct {
	Input      string
	Output     string
	Schema     string
	InputSize  int
	OutputSize int
	Layers     int
	Features   int
}

type converter struct {
	cfg    *Config
	logger *zap.Logger
	outDir string
}

// convertAll converts every input and keeps going after a failure. The
// returned error combines the failures of all inputs.
func (c *converter) convertAll(paths []string) ([]convertResult, error) {
	var (
		results []convertResult
		errs    error
	)
	for _, path := range paths {
		res, err := c.convertFile(path)
		if err != nil {
			c.logger.Warn("skipping tile", zap.String("input", path), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))

			continue
		}
		c.logger.Info("converted tile",
			zap.String("input", res.Input),
			zap.String("output", res.Output),
			zap.Int("layers", res.Layers),
			zap.Int("features", res.Features),
			zap.Int("mvtBytes", res.InputSize),
			zap.Int("mltBytes", res.OutputSize),
		)
		results = append(results, res)
	}

	return results, errs
}

func (c *converter) convertFile(path string) (convertResult, error) {
	data, err := os.ReadFile(path) //nolint: gosec
	if err != nil {
		return convertResult{}, err
	}

	layers, schema, err := mlt.FromMVT(data, c.cfg.inferOptions()...)
	if err != nil {
		return convertResult{}, err
	}

	encodeOpts, err := c.cfg.encodeOptions()
	if err != nil {
		return convertResult{}, err
	}
	encodeOpts = append(encodeOpts, mlt.WithEncoderOptions(tile.WithLogger(c.logger)))

	encoded, err := mlt.Encode(layers, schema, encodeOpts...)
	if err != nil {
		return convertResult{}, err
	}

	schemaYAML, err := yaml.Marshal(schema)
	if err != nil {
		return convertResult{}, fmt.Errorf("failed to marshal schema: %w", err)
	}

	dir := c.outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res := convertResult{
		Input:      path,
		Output:     filepath.Join(dir, base+tileSuffix),
		Schema:     filepath.Join(dir, base+schemaSuffix),
		InputSize:  len(data),
		OutputSize: len(encoded),
		Layers:     len(layers),
	}
	for _, l := range layers {
		res.Features += len(l.Features)
	}

	if err := os.WriteFile(res.Output, encoded, 0o644); err != nil { //nolint: gosec
		return convertResult{}, err
	}
	if err := os.WriteFile(res.Schema, schemaYAML, 0o644); err != nil { //nolint: gosec
		return convertResult{}, err
	}

	return res, nil
}

// loadSchema reads a schema written by convert.
func loadSchema(path string) (tile.TileSchema, error) {
	data, err := os.ReadFile(path) //nolint: gosec
	if err != nil {
		return tile.TileSchema{}, err
	}

	var schema tile.TileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return tile.TileSchema{}, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}

	return schema, nil
}

// schemaPathFor returns the schema file convert writes for a tile file.
func schemaPathFor(tilePath string) string {
	return strings.TrimSuffix(tilePath, filepath.Ext(tilePath)) + schemaSuffix
}
