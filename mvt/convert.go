// Package mvt converts Mapbox Vector Tiles into tile layers.
//
// Decoding of the MVT protobuf is done by github.com/paulmach/orb/encoding/mvt;
// this package infers a column schema from the decoded features and maps
// their ids, geometries and properties onto the tile model:
//
//	layers, err := mvt.Read(data)
//	schema, err := mvt.InferSchema(layers, mvt.WithIDs(true),
//	    mvt.WithColumnMappings(mvt.ColumnMapping{Prefix: "name"}))
//	tileLayers, err := mvt.ToLayers(layers, schema, opts...)
package mvt

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	orbmvt "github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/internal/options"
	"github.com/arloliu/mlt/tile"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Read decodes an MVT, gzip compressed or not.
func Read(data []byte) (orbmvt.Layers, error) {
	var (
		layers orbmvt.Layers
		err    error
	)
	if bytes.HasPrefix(data, gzipMagic) {
		layers, err = orbmvt.UnmarshalGzipped(data)
	} else {
		layers, err = orbmvt.Unmarshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: mvt: %w", errs.ErrMalformedStream, err)
	}

	return layers, nil
}

// ToLayers maps decoded MVT layers onto the tile model using schema.
//
// Each MVT layer is matched to its schema by name. Property values are kept
// as decoded except for string columns, where numbers and booleans are
// formatted as text, and struct columns, which collect their child
// properties into one map.
//
// The column mappings given in opts supply the delimiter of each struct
// column; struct columns without a mapping use DefaultDelimiter.
//
// Returns:
//   - []tile.Layer: One layer per input layer, in input order
//   - error: ErrUnknownLayer when schema has no layer of that name, or an invalid option
func ToLayers(layers orbmvt.Layers, schema tile.TileSchema, opts ...InferOption) ([]tile.Layer, error) {
	cfg := &InferConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	delims := make(map[string]string, len(cfg.mappings))
	for _, m := range cfg.mappings {
		delims[m.Prefix] = m.delimiter()
	}

	out := make([]tile.Layer, 0, len(layers))
	for _, l := range layers {
		ls, ok := schema.LayerByName(l.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errs.ErrUnknownLayer, l.Name)
		}
		out = append(out, toLayer(l, ls, delims))
	}

	return out, nil
}

func toLayer(l *orbmvt.Layer, ls tile.LayerSchema, delims map[string]string) tile.Layer {
	layer := tile.Layer{
		ID:       ls.ID,
		Name:     ls.Name,
		Extent:   l.Extent,
		Features: make([]tile.Feature, len(l.Features)),
	}

	for i, f := range l.Features {
		feature := tile.Feature{Geometry: f.Geometry}
		if ls.HasIDs() {
			feature.ID, _ = featureID(f)
		}
		if len(ls.Fields) > 0 {
			feature.Properties = make(map[string]any, len(ls.Fields))
		}

		for _, field := range ls.Fields {
			if field.Type == format.TypeStruct {
				delim, ok := delims[field.Name]
				if !ok {
					delim = DefaultDelimiter
				}
				if v := structValue(f.Properties, field, delim); v != nil {
					feature.Properties[field.Name] = v
				}

				continue
			}

			v, ok := f.Properties[field.Name]
			if !ok || v == nil {
				continue
			}
			if field.Type == format.TypeString {
				v = formatString(v)
			}
			feature.Properties[field.Name] = v
		}
		layer.Features[i] = feature
	}

	return layer
}

// structValue collects the child properties of a struct field. The child
// "default" reads the bare property; other children read "<field><delim><child>".
func structValue(props geojson.Properties, field tile.Field, delim string) map[string]any {
	var value map[string]any
	for _, child := range field.Children {
		key := field.Name + delim + child.Name
		if child.Name == structDefaultChild {
			key = field.Name
		}
		v, ok := props[key]
		if !ok || v == nil {
			continue
		}
		if value == nil {
			value = make(map[string]any, len(field.Children))
		}
		value[child.Name] = formatString(v)
	}

	return value
}

func formatString(v any) any {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// featureID reads a geojson feature id as an unsigned integer.
func featureID(f *geojson.Feature) (uint64, bool) {
	switch id := f.ID.(type) {
	case nil:
		return 0, false
	case uint64:
		return id, true
	case uint32:
		return uint64(id), true
	case uint:
		return uint64(id), true
	case int:
		return uint64(id), id >= 0
	case int64:
		return uint64(id), id >= 0
	case int32:
		return uint64(id), id >= 0
	case float64:
		if id < 0 || id != math.Trunc(id) || id >= math.MaxUint64 {
			return 0, false
		}

		return uint64(id), true
	case string:
		u, err := strconv.ParseUint(id, 10, 64)
		return u, err == nil
	default:
		return 0, false
	}
}
