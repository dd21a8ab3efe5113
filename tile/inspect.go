package tile

import (
	"fmt"

	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/stream"
)

// ColumnInfo describes one encoded column of a layer.
type ColumnInfo struct {
	Name     string
	Type     format.DataType
	Bytes    int
	Encoding string
	Streams  []stream.Header
}

// LayerInfo describes one layer frame of a tile.
type LayerInfo struct {
	ID       uint32
	Name     string
	Extent   uint32
	Features int
	Bytes    int
	Columns  []ColumnInfo
}

// Inspect walks the layer frames of a tile and reports their stream headers
// and sizes without decoding any values.
//
// Parameters:
//   - data: An encoded tile
//   - schema: Schemas of the layers the tile may contain
//
// Returns:
//   - []LayerInfo: One entry per layer frame, in tile order
//   - error: The first framing error met
func Inspect(data []byte, schema TileSchema) ([]LayerInfo, error) {
	r := stream.NewReader(data)

	var infos []LayerInfo
	for r.Remaining() > 0 {
		frame, err := readFrame(r, schema)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", len(infos), err)
		}

		info := LayerInfo{
			ID:       frame.schema.ID,
			Name:     frame.schema.Name,
			Extent:   frame.extent,
			Features: frame.features,
			Bytes:    frame.size,
		}
		if frame.schema.HasIDs() {
			info.Columns = append(info.Columns, ColumnInfo{
				Name:    "id",
				Type:    frame.schema.IDType,
				Bytes:   stream.ColumnSize(frame.ids),
				Streams: headers(frame.ids),
			})
		}
		info.Columns = append(info.Columns, ColumnInfo{
			Name:     "geometry",
			Type:     format.TypeGeometry,
			Bytes:    stream.ColumnSize(frame.geometry),
			Encoding: geometryEncoding(frame.geometry),
			Streams:  headers(frame.geometry),
		})
		for _, col := range frame.fields {
			ci := ColumnInfo{
				Name:    col.field.Name,
				Type:    col.field.Type,
				Bytes:   col.size,
				Streams: col.streamHeaders(),
			}
			if col.field.Type == format.TypeString || col.field.Type == format.TypeStruct {
				ci.Encoding = stringEncoding(ci.Streams)
			}
			info.Columns = append(info.Columns, ci)
		}
		infos = append(infos, info)
	}

	return infos, nil
}

func geometryEncoding(streams []stream.Stream) string {
	enc := "plain"
	for _, s := range streams {
		switch s.Header.Type { //nolint: exhaustive
		case format.StreamMortonVertexBuffer:
			return "morton"
		case format.StreamVertexOffsets:
			enc = "hilbert"
		}
	}

	return enc
}

func stringEncoding(hs []stream.Header) string {
	enc := "plain"
	for _, h := range hs {
		switch h.Type { //nolint: exhaustive
		case format.StreamSymbolTable:
			return "fsst"
		case format.StreamDictionary:
			enc = "dictionary"
		}
	}

	return enc
}
