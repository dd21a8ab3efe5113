// Package compress wraps encoded tiles in an optional compression envelope.
//
// The columnar encodings already remove most redundancy, but a general
// purpose codec on top still pays off for tiles stored at rest or sent over
// links that do not compress on their own. The envelope is:
//
//	[compression type: 1 byte][uvarint raw length][payload]
//
// Supported codecs:
//   - None: the tile is stored as is
//   - Zstd: best ratio, klauspost/compress/zstd with pooled encoders and decoders
//   - S2: fast, klauspost/compress/s2
//   - LZ4: fastest decompression, pierrec/lz4 block format
//   - Gzip: klauspost/compress/gzip, the usual vector tile transport encoding
//
// Example:
//
//	env, err := compress.Wrap(tileBytes, format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	tileBytes, _, err = compress.Unwrap(env)
package compress
