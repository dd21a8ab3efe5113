package encoding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mlt/errs"
)

func TestUvarints_RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 300, 1 << 21, math.MaxUint32}
	data := AppendUvarints(nil, values)

	size := 0
	for _, v := range values {
		size += UvarintSize(uint64(v))
	}
	require.Len(t, data, size)

	got, n, err := DecodeUvarints[uint32](data, len(values))
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, values, got)
}

func TestUvarintSize(t *testing.T) {
	tests := []struct {
		value uint64
		want  int
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{16383, 2},
		{16384, 3},
		{math.MaxUint32, 5},
		{math.MaxUint64, 10},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, UvarintSize(tt.value), tt.value)
	}
}

func TestDecodeUvarints_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		n    int
	}{
		{name: "more values than bytes", data: []byte{1}, n: 2},
		{name: "negative count", data: []byte{1}, n: -1},
		{name: "truncated", data: []byte{0x80, 0x80}, n: 1},
		{name: "overflows 32 bits", data: AppendUvarints(nil, []uint64{1 << 32}), n: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeUvarints[uint32](tt.data, tt.n)
			require.ErrorIs(t, err, errs.ErrMalformedStream)
		})
	}
}
