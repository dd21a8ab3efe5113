package column

import (
	"fmt"
	"math"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/stream"
)

// EncodeIDs encodes the feature id column.
//
// Ids are never null, so the column is a single DATA stream without a
// PRESENT stream.
//
// Parameters:
//   - ids: one id per feature
//   - typ: TypeUint32 runs the integer codec with physical; TypeUint64 always uses varint
//   - physical: requested physical technique for 32-bit ids
//
// Returns:
//   - []stream.Stream: DATA
//   - error: ErrSchemaMismatch if a TypeUint32 id does not fit 32 bits,
//     ErrUnsupportedType for any other typ
func EncodeIDs(ids []uint64, typ format.DataType, physical format.PhysicalTechnique) ([]stream.Stream, error) {
	var (
		data stream.Stream
		err  error
	)
	switch typ {
	case format.TypeUint32:
		narrow := make([]uint32, len(ids))
		for i, id := range ids {
			if id > math.MaxUint32 {
				return nil, fmt.Errorf("%w: id %d of feature %d exceeds uint32", errs.ErrSchemaMismatch, id, i)
			}
			narrow[i] = uint32(id)
		}
		data, err = stream.EncodeIntegers(format.StreamData, narrow, false, physical)
	case format.TypeUint64:
		data, err = stream.EncodeIntegers(format.StreamData, ids, false, format.PhysicalVarint)
	default:
		return nil, fmt.Errorf("%w: id column of type %s", errs.ErrUnsupportedType, typ)
	}
	if err != nil {
		return nil, err
	}

	return []stream.Stream{data}, nil
}

// DecodeIDs reverses EncodeIDs. The column must be exactly one DATA stream.
func DecodeIDs(streams []stream.Stream, typ format.DataType) ([]uint64, error) {
	if typ != format.TypeUint32 && typ != format.TypeUint64 {
		return nil, fmt.Errorf("%w: id column of type %s", errs.ErrUnsupportedType, typ)
	}
	if err := expectRoles(streams, format.StreamData); err != nil {
		return nil, err
	}

	if typ == format.TypeUint64 {
		return stream.DecodeIntegers[uint64](streams[0], false)
	}

	narrow, err := stream.DecodeIntegers[uint32](streams[0], false)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(narrow))
	for i, id := range narrow {
		ids[i] = uint64(id)
	}

	return ids, nil
}
