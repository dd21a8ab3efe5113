package tile

import (
	"fmt"

	"github.com/arloliu/mlt/column"
	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/stream"
)

// layerFrame is one layer frame split into its columns, with no values decoded yet.
type layerFrame struct {
	schema   LayerSchema
	extent   uint32
	features int
	size     int

	ids      []stream.Stream
	geometry []stream.Stream
	fields   []fieldColumn
}

type fieldColumn struct {
	field   Field
	streams []stream.Stream
	shared  *column.SharedColumn
	size    int
}

func (c fieldColumn) streamHeaders() []stream.Header {
	var streams []stream.Stream
	if c.shared != nil {
		streams = append(streams, c.shared.Dictionary...)
		for _, child := range c.shared.Children {
			streams = append(streams, child...)
		}
	} else {
		streams = c.streams
	}

	return headers(streams)
}

func headers(streams []stream.Stream) []stream.Header {
	out := make([]stream.Header, len(streams))
	for i, s := range streams {
		out[i] = s.Header
	}

	return out
}

// readFrame reads the next layer frame from r, resolving its schema by layer id.
func readFrame(r *stream.Reader, schema TileSchema) (layerFrame, error) {
	start := r.Offset()

	version, err := r.ReadByte()
	if err != nil {
		return layerFrame{}, err
	}
	if version != Version {
		return layerFrame{}, fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, version)
	}

	layerID, err := r.ReadUvarint32()
	if err != nil {
		return layerFrame{}, fmt.Errorf("layer id: %w", err)
	}
	ls, ok := schema.Layer(layerID)
	if !ok {
		return layerFrame{}, fmt.Errorf("%w: id %d", errs.ErrUnknownLayer, layerID)
	}

	frame := layerFrame{schema: ls}
	if frame.extent, err = r.ReadUvarint32(); err != nil {
		return layerFrame{}, fmt.Errorf("layer %q extent: %w", ls.Name, err)
	}
	geomSize, err := r.ReadUvarint32()
	if err != nil {
		return layerFrame{}, fmt.Errorf("layer %q geometry size: %w", ls.Name, err)
	}
	numFeatures, err := r.ReadUvarint32()
	if err != nil {
		return layerFrame{}, fmt.Errorf("layer %q feature count: %w", ls.Name, err)
	}
	frame.features = int(numFeatures)

	if ls.HasIDs() {
		if frame.ids, err = r.ReadColumn(); err != nil {
			return layerFrame{}, fmt.Errorf("layer %q id column: %w", ls.Name, err)
		}
	}

	geomStart := r.Offset()
	if frame.geometry, err = r.ReadColumn(); err != nil {
		return layerFrame{}, fmt.Errorf("layer %q geometry column: %w", ls.Name, err)
	}
	if got := r.Offset() - geomStart; got != int(geomSize) {
		return layerFrame{}, fmt.Errorf("%w: layer %q geometry column is %d bytes, header says %d",
			errs.ErrMalformedStream, ls.Name, got, geomSize)
	}

	frame.fields = make([]fieldColumn, len(ls.Fields))
	for i, field := range ls.Fields {
		colStart := r.Offset()
		col := fieldColumn{field: field}
		if len(field.Children) > 0 {
			shared, err := column.ReadSharedColumn(r, len(field.Children))
			if err != nil {
				return layerFrame{}, fmt.Errorf("layer %q field %q: %w", ls.Name, field.Name, err)
			}
			col.shared = &shared
		} else if col.streams, err = r.ReadColumn(); err != nil {
			return layerFrame{}, fmt.Errorf("layer %q field %q: %w", ls.Name, field.Name, err)
		}
		col.size = r.Offset() - colStart
		frame.fields[i] = col
	}
	frame.size = r.Offset() - start

	return frame, nil
}
