package tile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/mlt/column"
	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/geometry"
	"github.com/arloliu/mlt/internal/options"
	"github.com/arloliu/mlt/internal/pool"
	"github.com/arloliu/mlt/stream"
)

// Encoder writes layers into a tile.
//
// A tile is the concatenation of layer frames. Each frame is laid out as:
//
//	[version: 1 byte]
//	[uvarint layer id][uvarint extent][uvarint geometry column bytes][uvarint feature count]
//	[id column]        (only when the layer schema declares an id type)
//	[geometry column]
//	[property columns] (in schema field order)
//
// Every column starts with a uvarint stream count followed by its streams.
//
// Note: The Encoder is NOT thread-safe and NOT reusable. After calling Finish,
// a new encoder must be created for further encoding.
type Encoder struct {
	*EncoderConfig

	schema   TileSchema
	buf      *pool.ByteBuffer
	layers   int
	finished bool
}

// NewEncoder creates a tile encoder for layers described by schema.
//
// Parameters:
//   - schema: Schemas of every layer that may be added
//   - opts: Optional encoder settings
//
// Returns:
//   - *Encoder: A new encoder
//   - error: An invalid option or an invalid layer schema
func NewEncoder(schema TileSchema, opts ...EncoderOption) (*Encoder, error) {
	config := NewEncoderConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	for _, ls := range schema.Layers {
		if err := ls.Validate(); err != nil {
			return nil, err
		}
	}

	return &Encoder{
		EncoderConfig: config,
		schema:        schema,
		buf:           pool.GetLayerBuffer(),
	}, nil
}

// LayerCount returns the number of layers added so far.
func (e *Encoder) LayerCount() int {
	return e.layers
}

// AddLayer encodes layer and appends its frame to the tile.
//
// The layer schema is looked up by layer.ID. On error nothing is appended,
// so the encoder stays usable for the remaining layers.
//
// Returns:
//   - error: ErrUnknownLayer when the schema has no such layer, ErrSchemaMismatch
//     when a property value does not fit its declared type, ErrUnsupportedType
//     for a geometry or column type without a codec
func (e *Encoder) AddLayer(layer Layer) error {
	if e.finished {
		return errs.ErrEncoderFinished
	}

	ls, ok := e.schema.Layer(layer.ID)
	if !ok {
		return fmt.Errorf("%w: layer %q with id %d", errs.ErrUnknownLayer, layer.Name, layer.ID)
	}

	frame, err := e.encodeLayer(layer, ls)
	if err != nil {
		return fmt.Errorf("layer %q: %w", ls.Name, err)
	}
	e.buf.MustWrite(frame.Bytes())
	pool.PutLayerBuffer(frame)
	e.layers++

	return nil
}

// Finish returns the encoded tile and releases the encoder's buffer.
func (e *Encoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, errs.ErrEncoderFinished
	}
	e.finished = true

	data := e.buf.Clone()
	pool.PutLayerBuffer(e.buf)
	e.buf = nil

	return data, nil
}

// encodedColumn is one encoded column waiting to be framed.
type encodedColumn struct {
	name     string
	typ      format.DataType
	streams  []stream.Stream
	shared   *column.SharedColumn
	encoding string
}

func (c encodedColumn) appendTo(dst []byte) ([]byte, error) {
	if c.shared != nil {
		return c.shared.AppendTo(dst)
	}

	return stream.AppendColumn(dst, c.streams)
}

func (c encodedColumn) streamCount() int {
	if c.shared != nil {
		return c.shared.StreamCount()
	}

	return len(c.streams)
}

// encodeLayer builds the full frame of one layer in a pooled buffer owned by the caller.
// Columns are serialized into pooled column buffers first, since the frame
// header needs the geometry column length.
func (e *Encoder) encodeLayer(layer Layer, ls LayerSchema) (*pool.ByteBuffer, error) {
	extent := layer.Extent
	if extent == 0 {
		extent = ls.Extent
	}

	var cols []encodedColumn

	if ls.HasIDs() {
		ids := make([]uint64, len(layer.Features))
		for i, f := range layer.Features {
			ids[i] = f.ID
		}
		streams, err := column.EncodeIDs(ids, ls.IDType, e.physical)
		if err != nil {
			return nil, fmt.Errorf("id column: %w", err)
		}
		cols = append(cols, encodedColumn{name: "id", typ: ls.IDType, streams: streams})
	}

	geomStreams, geomEncoding, err := geometry.Encode(layer.Geometries(), e.physical)
	if err != nil {
		return nil, fmt.Errorf("geometry column: %w", err)
	}
	geomIndex := len(cols)
	cols = append(cols, encodedColumn{name: "geometry", typ: format.TypeGeometry, streams: geomStreams, encoding: geomEncoding.String()})

	for _, field := range ls.Fields {
		col, err := e.encodeField(layer.Features, field)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Name, err)
		}
		cols = append(cols, col)
	}

	bufs := make([]*pool.ByteBuffer, 0, len(cols))
	defer func() {
		for _, buf := range bufs {
			pool.PutColumnBuffer(buf)
		}
	}()

	total := 0
	for _, col := range cols {
		buf := pool.GetColumnBuffer()
		bufs = append(bufs, buf)
		if buf.B, err = col.appendTo(buf.B); err != nil {
			return nil, fmt.Errorf("column %q: %w", col.name, err)
		}
		total += buf.Len()

		if ce := e.logger.Check(zap.DebugLevel, "encoded column"); ce != nil {
			fields := []zap.Field{
				zap.String("layer", ls.Name),
				zap.String("column", col.name),
				zap.Stringer("type", col.typ),
				zap.Int("streams", col.streamCount()),
				zap.Int("bytes", buf.Len()),
			}
			if col.encoding != "" {
				fields = append(fields, zap.String("encoding", col.encoding))
			}
			ce.Write(fields...)
		}
	}

	frame := pool.GetLayerBuffer()
	_ = frame.WriteByte(Version)
	frame.WriteUvarint(uint64(ls.ID))
	frame.WriteUvarint(uint64(extent))
	frame.WriteUvarint(uint64(bufs[geomIndex].Len()))
	frame.WriteUvarint(uint64(len(layer.Features)))

	frame.Grow(total)
	for _, buf := range bufs {
		frame.MustWrite(buf.B)
	}

	return frame, nil
}

// encodeField gathers one property from every feature and runs the column codec for its type.
func (e *Encoder) encodeField(features []Feature, field Field) (encodedColumn, error) {
	col := encodedColumn{name: field.Name, typ: field.Type}

	var err error
	switch field.Type {
	case format.TypeBoolean:
		var values column.Nullable[bool]
		if values, err = gather(features, field.Name, field.Type, asBool); err == nil {
			col.streams, err = column.EncodeBooleans(values)
		}
	case format.TypeInt32:
		var values column.Nullable[int32]
		if values, err = gather(features, field.Name, field.Type, asInt32); err == nil {
			col.streams, err = column.EncodeInt32s(values, e.physical)
		}
	case format.TypeUint32:
		var values column.Nullable[uint32]
		if values, err = gather(features, field.Name, field.Type, asUint32); err == nil {
			col.streams, err = column.EncodeUint32s(values, e.physical)
		}
	case format.TypeInt64:
		var values column.Nullable[int64]
		if values, err = gather(features, field.Name, field.Type, toInt64); err == nil {
			col.streams, err = column.EncodeInt64s(values, e.physical)
		}
	case format.TypeUint64:
		var values column.Nullable[uint64]
		if values, err = gather(features, field.Name, field.Type, toUint64); err == nil {
			col.streams, err = column.EncodeUint64s(values, e.physical)
		}
	case format.TypeFloat:
		var values column.Nullable[float32]
		if values, err = gather(features, field.Name, field.Type, asFloat32); err == nil {
			col.streams, err = column.EncodeFloats(values)
		}
	case format.TypeDouble:
		var values column.Nullable[float64]
		if values, err = gather(features, field.Name, field.Type, toFloat64); err == nil {
			col.streams, err = column.EncodeDoubles(values)
		}
	case format.TypeString:
		var values column.Nullable[string]
		if values, err = gather(features, field.Name, field.Type, asString); err == nil {
			var enc column.StringEncoding
			col.streams, enc, err = column.EncodeStrings(values, e.physical)
			col.encoding = enc.String()
		}
	case format.TypeStruct:
		var shared column.SharedColumn
		var enc column.StringEncoding
		shared, enc, err = e.encodeStruct(features, field)
		col.shared = &shared
		col.encoding = enc.String()
	default:
		err = fmt.Errorf("%w: %s", errs.ErrUnsupportedType, field.Type)
	}
	if err != nil {
		return encodedColumn{}, err
	}

	return col, nil
}

// encodeStruct encodes the string children of a struct field with one shared dictionary.
func (e *Encoder) encodeStruct(features []Feature, field Field) (column.SharedColumn, column.StringEncoding, error) {
	if !e.sharedDictionary {
		return column.SharedColumn{}, 0, fmt.Errorf("%w: struct column without shared dictionary encoding", errs.ErrUnsupportedType)
	}

	children := make([]column.Nullable[string], len(field.Children))
	for c := range children {
		children[c] = column.NewNullable[string](len(features))
	}

	for i, f := range features {
		raw, ok := f.Properties[field.Name]
		if !ok || raw == nil {
			continue
		}

		for c, child := range field.Children {
			v, ok := structChild(raw, child.Name)
			if !ok {
				if !isStructValue(raw) {
					return column.SharedColumn{}, 0, fmt.Errorf("%w: feature %d: %T is not a struct value",
						errs.ErrSchemaMismatch, i, raw)
				}

				continue
			}
			if v == nil {
				continue
			}
			s, ok := asString(v)
			if !ok {
				return column.SharedColumn{}, 0, fmt.Errorf("%w: feature %d child %q: %T is not a string",
					errs.ErrSchemaMismatch, i, child.Name, v)
			}
			children[c].Set(i, s)
		}
	}

	return column.EncodeSharedStrings(children, e.physical)
}
