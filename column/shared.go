package column

import (
	"fmt"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/internal/dict"
	"github.com/arloliu/mlt/stream"
)

// SharedColumn is a struct column whose string children share one dictionary.
//
// Wire layout:
//
//	[uvarint len(Dictionary)] Dictionary streams
//	per child: [uvarint 2] PRESENT DATA_REFERENCE
type SharedColumn struct {
	// Dictionary is LENGTH, DICTIONARY or the four FSST dictionary streams.
	Dictionary []stream.Stream
	// Children holds the PRESENT and DATA_REFERENCE streams of each child in schema order.
	Children [][]stream.Stream
}

// EncodeSharedStrings encodes sibling string columns against one dictionary
// built from the non-null values of all of them, in first-seen order walking
// the children in order.
//
// Parameters:
//   - children: the child columns in schema order; at least one
//   - physical: physical technique for the integer streams
//
// Returns:
//   - SharedColumn: the dictionary streams and one stream pair per child
//   - StringEncoding: StringDictionary or StringFSST, whichever dictionary is smaller
//   - error: ErrUnsupportedType for a struct without children
func EncodeSharedStrings(children []Nullable[string], physical format.PhysicalTechnique) (SharedColumn, StringEncoding, error) {
	if len(children) == 0 {
		return SharedColumn{}, 0, fmt.Errorf("%w: struct column without children", errs.ErrUnsupportedType)
	}

	d := dict.NewStrings(0)
	refs := make([][]uint32, len(children))
	for i, child := range children {
		if err := child.validate(); err != nil {
			return SharedColumn{}, 0, err
		}
		compact := child.Compact()
		refs[i] = make([]uint32, len(compact))
		for j, s := range compact {
			refs[i][j] = d.Add(s)
		}
	}

	dictStreams, enc, err := encodeSmallestDictionary(d.Values(), physical)
	if err != nil {
		return SharedColumn{}, 0, err
	}

	col := SharedColumn{Dictionary: dictStreams, Children: make([][]stream.Stream, len(children))}
	for i, child := range children {
		refStream, err := stream.EncodeIntegers(format.StreamDataReference, refs[i], false, physical)
		if err != nil {
			return SharedColumn{}, 0, err
		}
		col.Children[i] = []stream.Stream{stream.EncodeBooleans(format.StreamPresent, child.Present), refStream}
	}

	return col, enc, nil
}

// DecodeSharedStrings resolves every child of col against the shared dictionary.
func DecodeSharedStrings(col SharedColumn) ([]Nullable[string], error) {
	set, err := routeStringStreams(col.Dictionary)
	if err != nil {
		return nil, err
	}
	if set.data != nil || set.dataReference != nil {
		return nil, fmt.Errorf("%w: shared dictionary carries value streams", errs.ErrMalformedStream)
	}
	entries, err := decodeDictionary(set)
	if err != nil {
		return nil, err
	}

	out := make([]Nullable[string], len(col.Children))
	for i, streams := range col.Children {
		if err := expectRoles(streams, format.StreamPresent, format.StreamDataReference); err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		present, err := stream.DecodeBooleans(streams[0])
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		values, err := resolveReferences(streams[1], entries)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		if out[i], err = expand(present, values); err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
	}

	return out, nil
}

// AppendTo appends the wire form of c to dst.
func (c SharedColumn) AppendTo(dst []byte) ([]byte, error) {
	dst, err := stream.AppendColumn(dst, c.Dictionary)
	if err != nil {
		return dst, err
	}
	for _, child := range c.Children {
		if dst, err = stream.AppendColumn(dst, child); err != nil {
			return dst, err
		}
	}

	return dst, nil
}

// Size returns the encoded size of c.
func (c SharedColumn) Size() int {
	size := stream.ColumnSize(c.Dictionary)
	for _, child := range c.Children {
		size += stream.ColumnSize(child)
	}

	return size
}

// StreamCount returns the total number of streams in c.
func (c SharedColumn) StreamCount() int {
	n := len(c.Dictionary)
	for _, child := range c.Children {
		n += len(child)
	}

	return n
}

// ReadSharedColumn reads a shared dictionary column with the given number of children.
func ReadSharedColumn(r *stream.Reader, children int) (SharedColumn, error) {
	if children <= 0 {
		return SharedColumn{}, fmt.Errorf("%w: struct column without children", errs.ErrUnsupportedType)
	}

	dictStreams, err := r.ReadColumn()
	if err != nil {
		return SharedColumn{}, fmt.Errorf("shared dictionary: %w", err)
	}

	col := SharedColumn{Dictionary: dictStreams, Children: make([][]stream.Stream, children)}
	for i := range col.Children {
		if col.Children[i], err = r.ReadColumn(); err != nil {
			return SharedColumn{}, fmt.Errorf("child %d: %w", i, err)
		}
	}

	return col, nil
}
