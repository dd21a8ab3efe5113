// Package mlt provides a columnar binary format for vector map tiles.
//
// A tile holds layers; each layer stores its feature ids, geometries and
// properties column by column. Every column is a sequence of streams, and
// every integer stream picks the smallest of several encodings (plain,
// delta, run-length, delta run-length) on its own. Geometries are stored as
// flattened vertex buffers or as deduplicated vertex dictionaries ordered
// along a Hilbert or Z-order curve, and strings as dictionaries, optionally
// compressed with FSST.
//
// # Core Features
//
//   - Adaptive per-stream integer encodings with block bit-packing or varints
//   - Geometry dictionaries ordered by space-filling curves
//   - Dictionary and FSST string columns, shared dictionaries for localized names
//   - Schema inference and conversion from Mapbox Vector Tiles
//   - Optional tile compression envelope (None, Zstd, S2, LZ4, Gzip)
//
// # Basic Usage
//
// Converting a Mapbox Vector Tile:
//
//	layers, schema, err := mlt.FromMVT(mvtBytes, mvt.WithIDs(true))
//	if err != nil {
//	    return err
//	}
//	data, err := mlt.Encode(layers, schema, mlt.WithCompression(format.CompressionZstd))
//
// Decoding it again:
//
//	layers, err := mlt.Decode(data, schema)
//
// # Package Structure
//
// This package wraps the tile, mvt and compress packages for the common
// cases. Encode always writes the compression envelope and Decode always
// expects it; use the tile package directly for bare tiles.
package mlt

import (
	"github.com/arloliu/mlt/compress"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/internal/options"
	"github.com/arloliu/mlt/mvt"
	"github.com/arloliu/mlt/tile"
)

type config struct {
	compression format.CompressionType
	encoder     []tile.EncoderOption
}

// Option configures Encode.
type Option = options.Option[*config]

// WithCompression selects the envelope codec. The default is CompressionNone.
func WithCompression(c format.CompressionType) Option {
	return options.New(func(cfg *config) error {
		if _, err := compress.GetCodec(c); err != nil {
			return err
		}
		cfg.compression = c

		return nil
	})
}

// WithEncoderOptions passes options through to the tile encoder.
func WithEncoderOptions(opts ...tile.EncoderOption) Option {
	return options.NoError(func(cfg *config) {
		cfg.encoder = append(cfg.encoder, opts...)
	})
}

// Encode encodes layers into a tile and wraps it in the compression envelope.
//
// Parameters:
//   - layers: Layers to encode, in tile order
//   - schema: Schemas of the layers
//   - opts: WithCompression and WithEncoderOptions
//
// Returns:
//   - []byte: The enveloped tile
//   - error: The first encoding error
func Encode(layers []tile.Layer, schema tile.TileSchema, opts ...Option) ([]byte, error) {
	cfg := &config{compression: format.CompressionNone}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	encoder, err := tile.NewEncoder(schema, cfg.encoder...)
	if err != nil {
		return nil, err
	}
	for _, l := range layers {
		if err := encoder.AddLayer(l); err != nil {
			return nil, err
		}
	}

	data, err := encoder.Finish()
	if err != nil {
		return nil, err
	}

	return compress.Wrap(data, cfg.compression)
}

// Decode unwraps the compression envelope and decodes every layer.
func Decode(data []byte, schema tile.TileSchema, opts ...tile.DecoderOption) ([]tile.Layer, error) {
	raw, _, err := compress.Unwrap(data)
	if err != nil {
		return nil, err
	}

	return tile.Decode(raw, schema, opts...)
}

// Inspect unwraps the compression envelope and reports the layer frames.
func Inspect(data []byte, schema tile.TileSchema) ([]tile.LayerInfo, error) {
	raw, _, err := compress.Unwrap(data)
	if err != nil {
		return nil, err
	}

	return tile.Inspect(raw, schema)
}

// FromMVT decodes a Mapbox Vector Tile, gzip compressed or not, infers its
// schema and maps its layers onto the tile model.
//
// Returns:
//   - []tile.Layer: The converted layers, with ids assigned from MVT layer order
//   - tile.TileSchema: The inferred schema, needed again to decode the tile
//   - error: ErrMalformedStream for unreadable MVT data, or an invalid option
func FromMVT(data []byte, opts ...mvt.InferOption) ([]tile.Layer, tile.TileSchema, error) {
	decoded, err := mvt.Read(data)
	if err != nil {
		return nil, tile.TileSchema{}, err
	}

	schema, err := mvt.InferSchema(decoded, opts...)
	if err != nil {
		return nil, tile.TileSchema{}, err
	}

	layers, err := mvt.ToLayers(decoded, schema, opts...)
	if err != nil {
		return nil, tile.TileSchema{}, err
	}

	return layers, schema, nil
}
