package tile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/mlt/column"
	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/geometry"
	"github.com/arloliu/mlt/internal/options"
	"github.com/arloliu/mlt/stream"
)

// Decoder decodes tiles written by Encoder.
//
// A Decoder holds no per-tile state, so one instance can be shared by
// concurrent goroutines.
type Decoder struct {
	*DecoderConfig

	schema TileSchema
}

// NewDecoder creates a decoder for tiles whose layers are described by schema.
//
// Returns:
//   - *Decoder: A new decoder
//   - error: An invalid option or an invalid layer schema
func NewDecoder(schema TileSchema, opts ...DecoderOption) (*Decoder, error) {
	config := &DecoderConfig{logger: zap.NewNop()}
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	for _, ls := range schema.Layers {
		if err := ls.Validate(); err != nil {
			return nil, err
		}
	}

	return &Decoder{DecoderConfig: config, schema: schema}, nil
}

// Decode is a shortcut for NewDecoder followed by Decoder.Decode.
func Decode(data []byte, schema TileSchema, opts ...DecoderOption) ([]Layer, error) {
	d, err := NewDecoder(schema, opts...)
	if err != nil {
		return nil, err
	}

	return d.Decode(data)
}

// Decode decodes every layer frame in data.
//
// Property values are returned with the Go type listed on Feature; nulls are
// left out of the property map. Layers without an id column get zero ids.
//
// Returns:
//   - []Layer: The decoded layers in tile order
//   - error: The first error met; no partial result is returned
func (d *Decoder) Decode(data []byte) ([]Layer, error) {
	r := stream.NewReader(data)

	var layers []Layer
	for r.Remaining() > 0 {
		frame, err := readFrame(r, d.schema)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", len(layers), err)
		}

		layer, err := decodeFrame(frame)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", frame.schema.Name, err)
		}

		d.logger.Debug("decoded layer",
			zap.String("layer", layer.Name),
			zap.Uint32("id", layer.ID),
			zap.Int("features", len(layer.Features)),
			zap.Int("bytes", frame.size),
		)
		layers = append(layers, layer)
	}

	return layers, nil
}

func decodeFrame(frame layerFrame) (Layer, error) {
	ls := frame.schema

	geoms, err := geometry.Decode(frame.geometry)
	if err != nil {
		return Layer{}, fmt.Errorf("geometry column: %w", err)
	}
	if len(geoms) != frame.features {
		return Layer{}, fmt.Errorf("%w: %d geometries for %d features", errs.ErrMalformedStream, len(geoms), frame.features)
	}

	features := make([]Feature, len(geoms))
	for i, g := range geoms {
		features[i].Geometry = g
		if len(ls.Fields) > 0 {
			features[i].Properties = make(map[string]any, len(ls.Fields))
		}
	}

	if ls.HasIDs() {
		ids, err := column.DecodeIDs(frame.ids, ls.IDType)
		if err != nil {
			return Layer{}, fmt.Errorf("id column: %w", err)
		}
		if len(ids) != len(features) {
			return Layer{}, fmt.Errorf("%w: %d ids for %d features", errs.ErrMalformedStream, len(ids), len(features))
		}
		for i, id := range ids {
			features[i].ID = id
		}
	}

	for _, col := range frame.fields {
		if err := decodeField(features, col); err != nil {
			return Layer{}, fmt.Errorf("field %q: %w", col.field.Name, err)
		}
	}

	return Layer{ID: ls.ID, Name: ls.Name, Extent: frame.extent, Features: features}, nil
}

func decodeField(features []Feature, col fieldColumn) error {
	name := col.field.Name
	streams := col.streams

	switch col.field.Type {
	case format.TypeBoolean:
		return decodeInto(features, name, streams, column.DecodeBooleans)
	case format.TypeInt32:
		return decodeInto(features, name, streams, column.DecodeInt32s)
	case format.TypeUint32:
		return decodeInto(features, name, streams, column.DecodeUint32s)
	case format.TypeInt64:
		return decodeInto(features, name, streams, column.DecodeInt64s)
	case format.TypeUint64:
		return decodeInto(features, name, streams, column.DecodeUint64s)
	case format.TypeFloat:
		return decodeInto(features, name, streams, column.DecodeFloats)
	case format.TypeDouble:
		return decodeInto(features, name, streams, column.DecodeDoubles)
	case format.TypeString:
		return decodeInto(features, name, streams, column.DecodeStrings)
	case format.TypeStruct:
		if col.shared == nil {
			return fmt.Errorf("%w: struct column without shared dictionary", errs.ErrMalformedStream)
		}
		children, err := column.DecodeSharedStrings(*col.shared)
		if err != nil {
			return err
		}

		return setStruct(features, col.field, children)
	default:
		return fmt.Errorf("%w: %s", errs.ErrUnsupportedType, col.field.Type)
	}
}

// decodeInto decodes one nullable column and stores its non-null values as properties.
func decodeInto[T any](features []Feature, name string, streams []stream.Stream,
	decode func([]stream.Stream) (column.Nullable[T], error),
) error {
	values, err := decode(streams)
	if err != nil {
		return err
	}
	if values.Len() != len(features) {
		return fmt.Errorf("%w: %d values for %d features", errs.ErrMalformedStream, values.Len(), len(features))
	}

	for i := range features {
		if v, ok := values.Get(i); ok {
			features[i].Properties[name] = v
		}
	}

	return nil
}

func setStruct(features []Feature, field Field, children []column.Nullable[string]) error {
	for c, child := range children {
		if child.Len() != len(features) {
			return fmt.Errorf("%w: child %q has %d values for %d features",
				errs.ErrMalformedStream, field.Children[c].Name, child.Len(), len(features))
		}
	}

	for i := range features {
		var value map[string]any
		for c, child := range children {
			s, ok := child.Get(i)
			if !ok {
				continue
			}
			if value == nil {
				value = make(map[string]any, len(children))
			}
			value[field.Children[c].Name] = s
		}
		if value != nil {
			features[i].Properties[field.Name] = value
		}
	}

	return nil
}
