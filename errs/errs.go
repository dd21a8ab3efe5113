// Package errs holds the sentinel errors returned by the tile codec.
//
// Errors produced anywhere in the module wrap one of these values, so callers
// classify failures with errors.Is:
//
//	if errors.Is(err, errs.ErrMalformedStream) {
//	    // skip the tile
//	}
package errs

import "errors"

var (
	// ErrUnsupportedType is returned when a declared data type or nesting shape has no codec.
	ErrUnsupportedType = errors.New("mlt: unsupported data type")
	// ErrMalformedStream is returned when a decoder meets a role/technique combination
	// it cannot interpret or a payload that does not match its header.
	ErrMalformedStream = errors.New("mlt: malformed stream")
	// ErrInvariantViolation is returned when an internal consistency check fails.
	ErrInvariantViolation = errors.New("mlt: invariant violation")
	// ErrInvalidHeader is returned when a stream header cannot be parsed.
	ErrInvalidHeader = errors.New("mlt: invalid stream header")
	// ErrBufferTooShort is returned when a read would go past the end of the buffer.
	ErrBufferTooShort = errors.New("mlt: buffer too short")
	// ErrUnknownLayer is returned when a tile references a layer id absent from the schema.
	ErrUnknownLayer = errors.New("mlt: unknown layer")
	// ErrSchemaMismatch is returned when feature data does not match its declared schema.
	ErrSchemaMismatch = errors.New("mlt: schema mismatch")
	// ErrInvalidCompression is returned for an unknown tile compression type.
	ErrInvalidCompression = errors.New("mlt: invalid compression type")
	// ErrUnsupportedVersion is returned when a layer frame carries an unknown version byte.
	ErrUnsupportedVersion = errors.New("mlt: unsupported layer version")
	// ErrEncoderFinished is returned when an encoder is used after Finish.
	ErrEncoderFinished = errors.New("mlt: encoder already finished")
)
