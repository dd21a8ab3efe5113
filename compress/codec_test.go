package compress

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

func sampleTile() []byte {
	var buf bytes.Buffer
	for i := range 2000 {
		buf.WriteByte(byte(i % 7))
		buf.WriteString("highway")
	}

	return buf.Bytes()
}

func TestCodecs_RoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":  {},
		"single": {0x42},
		"tile":   sampleTile(),
	}

	for _, typ := range Types() {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		for name, input := range inputs {
			t.Run(typ.String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(input)
				require.NoError(t, err)

				got, err := codec.Decompress(compressed, len(input))
				require.NoError(t, err)
				require.Len(t, got, len(input))
				if len(input) > 0 {
					require.Equal(t, input, got)
				}
			})
		}
	}
}

func TestCodecs_Compresses(t *testing.T) {
	input := sampleTile()

	for _, typ := range Types() {
		if typ == format.CompressionNone {
			continue
		}
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		compressed, err := codec.Compress(input)
		require.NoError(t, err)
		require.Less(t, len(compressed), len(input)/4, typ.String())
	}
}

func TestCodecs_WrongSize(t *testing.T) {
	input := sampleTile()

	for _, typ := range Types() {
		t.Run(typ.String(), func(t *testing.T) {
			codec, err := GetCodec(typ)
			require.NoError(t, err)

			compressed, err := codec.Compress(input)
			require.NoError(t, err)

			_, err = codec.Decompress(compressed, len(input)-1)
			require.Error(t, err)
		})
	}
}

func TestGetCodec_Unknown(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)

	_, err = GetCodec(format.CompressionType(0x42))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestEnvelope_RoundTrip(t *testing.T) {
	input := sampleTile()

	for _, typ := range Types() {
		t.Run(typ.String(), func(t *testing.T) {
			env, err := Wrap(input, typ)
			require.NoError(t, err)
			require.Equal(t, byte(typ), env[0])

			size, n := binary.Uvarint(env[1:])
			require.Positive(t, n)
			require.Equal(t, uint64(len(input)), size)

			got, gotType, err := Unwrap(env)
			require.NoError(t, err)
			require.Equal(t, typ, gotType)
			require.Equal(t, input, got)
		})
	}
}

func TestEnvelope_Errors(t *testing.T) {
	valid, err := Wrap(sampleTile(), format.CompressionZstd)
	require.NoError(t, err)

	tooLarge := []byte{byte(format.CompressionNone)}
	tooLarge = binary.AppendUvarint(tooLarge, MaxRawSize+1)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, errs.ErrBufferTooShort},
		{"unknown type", []byte{0x42, 0}, errs.ErrInvalidCompression},
		{"missing length", []byte{byte(format.CompressionNone)}, errs.ErrBufferTooShort},
		{"length too large", tooLarge, errs.ErrMalformedStream},
		{"none with wrong length", []byte{byte(format.CompressionNone), 3, 1, 2}, errs.ErrMalformedStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Unwrap(tt.data)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("corrupt payload", func(t *testing.T) {
		corrupt := append([]byte(nil), valid[:len(valid)/2]...)
		_, _, err := Unwrap(corrupt)
		require.Error(t, err)
	})

	_, err = Wrap([]byte{1}, format.CompressionType(9))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func BenchmarkWrap(b *testing.B) {
	input := sampleTile()

	for _, typ := range Types() {
		b.Run(typ.String(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(input)))
			for b.Loop() {
				if _, err := Wrap(input, typ); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
