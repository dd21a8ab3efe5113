package column

import (
	"fmt"

	"github.com/axiomhq/fsst"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/internal/dict"
	"github.com/arloliu/mlt/stream"
)

// StringEncoding names the layout a string column was written with.
type StringEncoding uint8

const (
	StringPlain      StringEncoding = iota // StringPlain stores lengths and raw bytes per value.
	StringDictionary                       // StringDictionary stores distinct values once plus references.
	StringFSST                             // StringFSST is StringDictionary with a symbol-compressed dictionary.
)

func (e StringEncoding) String() string {
	switch e {
	case StringPlain:
		return "plain"
	case StringDictionary:
		return "dictionary"
	case StringFSST:
		return "fsst"
	default:
		return "unknown"
	}
}

// EncodeStrings encodes a string column with whichever of the dictionary and
// FSST dictionary layouts is smaller. The dictionary layout wins ties.
//
// Plain encoding is not a candidate here; use EncodePlainStrings to force it.
//
// Parameters:
//   - col: one slot per row
//   - physical: physical technique for the LENGTH, SYMBOL_LENGTH and DATA_REFERENCE streams
//
// Returns:
//   - []stream.Stream: PRESENT, the dictionary streams, DATA_REFERENCE
//   - StringEncoding: StringDictionary or StringFSST
//   - error: ErrUnsupportedType for an unusable physical technique
func EncodeStrings(col Nullable[string], physical format.PhysicalTechnique) ([]stream.Stream, StringEncoding, error) {
	if err := col.validate(); err != nil {
		return nil, 0, err
	}

	compact := col.Compact()
	d := dict.NewStrings(len(compact))
	refs := make([]uint32, len(compact))
	for i, s := range compact {
		refs[i] = d.Add(s)
	}

	dictStreams, enc, err := encodeSmallestDictionary(d.Values(), physical)
	if err != nil {
		return nil, 0, err
	}
	refStream, err := stream.EncodeIntegers(format.StreamDataReference, refs, false, physical)
	if err != nil {
		return nil, 0, err
	}

	streams := make([]stream.Stream, 0, len(dictStreams)+2)
	streams = append(streams, stream.EncodeBooleans(format.StreamPresent, col.Present))
	streams = append(streams, dictStreams...)
	streams = append(streams, refStream)

	return streams, enc, nil
}

// EncodePlainStrings encodes a string column without deduplication as
// PRESENT, LENGTH and DATA streams.
func EncodePlainStrings(col Nullable[string], physical format.PhysicalTechnique) ([]stream.Stream, error) {
	if err := col.validate(); err != nil {
		return nil, err
	}

	compact := col.Compact()
	lengths, data := concatStrings(compact)
	lengthStream, err := stream.EncodeIntegers(format.StreamLength, lengths, false, physical)
	if err != nil {
		return nil, err
	}

	return []stream.Stream{
		stream.EncodeBooleans(format.StreamPresent, col.Present),
		lengthStream,
		stream.New(format.StreamData, format.LogicalNone, format.PhysicalNone, len(compact), data),
	}, nil
}

// DecodeStrings decodes a string column written by EncodeStrings or
// EncodePlainStrings. Streams after PRESENT are routed by role.
func DecodeStrings(streams []stream.Stream) (Nullable[string], error) {
	if len(streams) == 0 {
		return Nullable[string]{}, fmt.Errorf("%w: string column without streams", errs.ErrMalformedStream)
	}
	if err := stream.Expect(streams[0], format.StreamPresent); err != nil {
		return Nullable[string]{}, err
	}
	present, err := stream.DecodeBooleans(streams[0])
	if err != nil {
		return Nullable[string]{}, err
	}

	set, err := routeStringStreams(streams[1:])
	if err != nil {
		return Nullable[string]{}, err
	}

	var values []string
	switch {
	case set.data != nil:
		if set.dictionary != nil || set.dataReference != nil || set.symbolTable != nil {
			return Nullable[string]{}, fmt.Errorf("%w: plain string column with dictionary streams", errs.ErrMalformedStream)
		}
		values, err = decodePlain(set)
	case set.dataReference != nil:
		var entries []string
		if entries, err = decodeDictionary(set); err != nil {
			return Nullable[string]{}, err
		}
		values, err = resolveReferences(*set.dataReference, entries)
	default:
		return Nullable[string]{}, fmt.Errorf("%w: string column without DATA or DATA_REFERENCE", errs.ErrMalformedStream)
	}
	if err != nil {
		return Nullable[string]{}, err
	}

	return expand(present, values)
}

// stringStreams holds the streams of a string column by role.
type stringStreams struct {
	length        *stream.Stream
	data          *stream.Stream
	dataReference *stream.Stream
	dictionary    *stream.Stream
	symbolLength  *stream.Stream
	symbolTable   *stream.Stream
}

func routeStringStreams(streams []stream.Stream) (stringStreams, error) {
	var set stringStreams
	for i := range streams {
		s := &streams[i]
		var slot **stream.Stream
		switch s.Header.Type {
		case format.StreamLength:
			slot = &set.length
		case format.StreamData:
			slot = &set.data
		case format.StreamDataReference:
			slot = &set.dataReference
		case format.StreamDictionary:
			slot = &set.dictionary
		case format.StreamSymbolLength:
			slot = &set.symbolLength
		case format.StreamSymbolTable:
			slot = &set.symbolTable
		default:
			return stringStreams{}, fmt.Errorf("%w: %s stream in a string column", errs.ErrMalformedStream, s.Header.Type)
		}
		if *slot != nil {
			return stringStreams{}, fmt.Errorf("%w: duplicate %s stream", errs.ErrMalformedStream, s.Header.Type)
		}
		*slot = s
	}

	return set, nil
}

func decodePlain(set stringStreams) ([]string, error) {
	if set.length == nil {
		return nil, fmt.Errorf("%w: plain string column without LENGTH", errs.ErrMalformedStream)
	}
	lengths, err := stream.DecodeIntegers[uint32](*set.length, false)
	if err != nil {
		return nil, err
	}
	if len(lengths) != int(set.data.Header.ValueCount) {
		return nil, fmt.Errorf("%w: %d lengths for %d values", errs.ErrMalformedStream, len(lengths), set.data.Header.ValueCount)
	}

	return splitStrings(set.data.Data, lengths)
}

// decodeDictionary resolves the dictionary entries of a dictionary or FSST
// dictionary layout.
func decodeDictionary(set stringStreams) ([]string, error) {
	if set.length == nil || set.dictionary == nil {
		return nil, fmt.Errorf("%w: dictionary without LENGTH or DICTIONARY stream", errs.ErrMalformedStream)
	}
	lengths, err := stream.DecodeIntegers[uint32](*set.length, false)
	if err != nil {
		return nil, err
	}
	if len(lengths) != int(set.dictionary.Header.ValueCount) {
		return nil, fmt.Errorf("%w: %d lengths for %d dictionary entries",
			errs.ErrMalformedStream, len(lengths), set.dictionary.Header.ValueCount)
	}

	switch {
	case set.symbolTable == nil && set.symbolLength == nil:
		return splitStrings(set.dictionary.Data, lengths)
	case set.symbolTable != nil && set.symbolLength != nil:
		return decodeFSST(*set.symbolTable, *set.symbolLength, set.dictionary.Data, lengths)
	default:
		return nil, fmt.Errorf("%w: FSST dictionary needs both SYMBOL_TABLE and SYMBOL_LENGTH", errs.ErrMalformedStream)
	}
}

func resolveReferences(s stream.Stream, entries []string) ([]string, error) {
	refs, err := stream.DecodeIntegers[uint32](s, false)
	if err != nil {
		return nil, err
	}

	values := make([]string, len(refs))
	for i, ref := range refs {
		if int(ref) >= len(entries) {
			return nil, fmt.Errorf("%w: reference %d into a dictionary of %d entries", errs.ErrInvariantViolation, ref, len(entries))
		}
		values[i] = entries[ref]
	}

	return values, nil
}

// encodeSmallestDictionary writes entries as LENGTH and DICTIONARY streams and,
// when the entries hold any bytes, also as an FSST dictionary; the smaller wins.
func encodeSmallestDictionary(entries []string, physical format.PhysicalTechnique) ([]stream.Stream, StringEncoding, error) {
	plain, err := encodeDictionary(entries, physical)
	if err != nil {
		return nil, 0, err
	}
	compressed, err := encodeFSSTDictionary(entries, physical)
	if err != nil {
		return nil, 0, err
	}
	if compressed == nil || streamsSize(plain) <= streamsSize(compressed) {
		return plain, StringDictionary, nil
	}

	return compressed, StringFSST, nil
}

func encodeDictionary(entries []string, physical format.PhysicalTechnique) ([]stream.Stream, error) {
	lengths, data := concatStrings(entries)
	lengthStream, err := stream.EncodeIntegers(format.StreamLength, lengths, false, physical)
	if err != nil {
		return nil, err
	}

	return []stream.Stream{
		lengthStream,
		stream.New(format.StreamDictionary, format.LogicalNone, format.PhysicalNone, len(entries), data),
	}, nil
}

// encodeFSSTDictionary trains a symbol table on entries and compresses each
// entry with it. SYMBOL_LENGTH holds the compressed length of each entry,
// SYMBOL_TABLE the serialized table, LENGTH the decompressed lengths and
// DICTIONARY the concatenated compressed entries.
//
// Returns nil streams when entries hold no bytes to train on.
func encodeFSSTDictionary(entries []string, physical format.PhysicalTechnique) ([]stream.Stream, error) {
	samples := make([][]byte, 0, len(entries))
	total := 0
	for _, e := range entries {
		samples = append(samples, []byte(e))
		total += len(e)
	}
	if total == 0 {
		return nil, nil
	}

	tbl := fsst.Train(samples)
	table, err := tbl.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: serialize symbol table: %w", errs.ErrInvariantViolation, err)
	}

	corpus := make([]byte, 0, total)
	symbolLengths := make([]uint32, len(samples))
	lengths := make([]uint32, len(samples))
	for i, sample := range samples {
		encoded := tbl.Encode(sample)
		symbolLengths[i] = uint32(len(encoded))
		lengths[i] = uint32(len(sample))
		corpus = append(corpus, encoded...)
	}

	symbolLengthStream, err := stream.EncodeIntegers(format.StreamSymbolLength, symbolLengths, false, physical)
	if err != nil {
		return nil, err
	}
	lengthStream, err := stream.EncodeIntegers(format.StreamLength, lengths, false, physical)
	if err != nil {
		return nil, err
	}

	return []stream.Stream{
		symbolLengthStream,
		stream.New(format.StreamSymbolTable, format.LogicalNone, format.PhysicalNone, len(entries), table),
		lengthStream,
		stream.New(format.StreamDictionary, format.LogicalNone, format.PhysicalNone, len(entries), corpus),
	}, nil
}

func decodeFSST(table, symbolLength stream.Stream, corpus []byte, lengths []uint32) ([]string, error) {
	var tbl fsst.Table
	if err := tbl.UnmarshalBinary(table.Data); err != nil {
		return nil, fmt.Errorf("%w: symbol table: %w", errs.ErrMalformedStream, err)
	}
	symbolLengths, err := stream.DecodeIntegers[uint32](symbolLength, false)
	if err != nil {
		return nil, err
	}
	if len(symbolLengths) != len(lengths) {
		return nil, fmt.Errorf("%w: %d symbol lengths for %d entries", errs.ErrMalformedStream, len(symbolLengths), len(lengths))
	}

	entries := make([]string, len(lengths))
	offset := 0
	for i, n := range symbolLengths {
		if int(n) > len(corpus)-offset {
			return nil, fmt.Errorf("%w: entry %d overruns the compressed dictionary", errs.ErrMalformedStream, i)
		}
		decoded := tbl.DecodeAll(corpus[offset : offset+int(n)])
		if len(decoded) != int(lengths[i]) {
			return nil, fmt.Errorf("%w: entry %d decompresses to %d bytes, want %d",
				errs.ErrMalformedStream, i, len(decoded), lengths[i])
		}
		entries[i] = string(decoded)
		offset += int(n)
	}
	if offset != len(corpus) {
		return nil, fmt.Errorf("%w: %d trailing bytes in compressed dictionary", errs.ErrMalformedStream, len(corpus)-offset)
	}

	return entries, nil
}

func concatStrings(values []string) ([]uint32, []byte) {
	total := 0
	for _, v := range values {
		total += len(v)
	}

	lengths := make([]uint32, len(values))
	data := make([]byte, 0, total)
	for i, v := range values {
		lengths[i] = uint32(len(v))
		data = append(data, v...)
	}

	return lengths, data
}

func splitStrings(data []byte, lengths []uint32) ([]string, error) {
	values := make([]string, len(lengths))
	offset := 0
	for i, n := range lengths {
		if int(n) > len(data)-offset {
			return nil, fmt.Errorf("%w: string %d of %d bytes overruns %d bytes", errs.ErrMalformedStream, i, n, len(data))
		}
		values[i] = string(data[offset : offset+int(n)])
		offset += int(n)
	}
	if offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing string bytes", errs.ErrMalformedStream, len(data)-offset)
	}

	return values, nil
}

func streamsSize(streams []stream.Stream) int {
	size := 0
	for _, s := range streams {
		size += s.Size()
	}

	return size
}
