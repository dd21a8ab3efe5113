package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mlt/errs"
)

func TestBooleanRLE_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		bits     []bool
		expected []byte
	}{
		{name: "empty", bits: nil, expected: nil},
		{name: "single true", bits: []bool{true}, expected: []byte{1, 1}},
		{name: "all present", bits: []bool{true, true, true, true}, expected: []byte{4, 1}},
		{name: "mixed", bits: []bool{true, false, false, true}, expected: []byte{1, 1, 2, 0, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := EncodeBooleanRLE(nil, tt.bits)
			require.Equal(t, tt.expected, data)

			got, consumed, err := DecodeBooleanRLE(data, len(tt.bits))
			require.NoError(t, err)
			require.Equal(t, len(data), consumed)
			require.Len(t, got, len(tt.bits))
			for i := range tt.bits {
				require.Equal(t, tt.bits[i], got[i])
			}
		})
	}
}

func TestBooleanRLE_LongRun(t *testing.T) {
	bits := make([]bool, 1000)
	for i := 500; i < 1000; i++ {
		bits[i] = true
	}

	data := EncodeBooleanRLE(nil, bits)
	require.Len(t, data, 6)

	got, _, err := DecodeBooleanRLE(data, len(bits))
	require.NoError(t, err)
	require.Equal(t, bits, got)
	require.Equal(t, 500, CountTrue(got))
}

func TestDecodeBooleanRLE_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		n    int
	}{
		{name: "truncated", data: []byte{3}, n: 3},
		{name: "run past end", data: []byte{5, 1}, n: 3},
		{name: "zero run", data: []byte{0, 1}, n: 1},
		{name: "bad bit", data: []byte{1, 2}, n: 1},
		{name: "missing runs", data: []byte{1, 1}, n: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeBooleanRLE(tt.data, tt.n)
			require.ErrorIs(t, err, errs.ErrMalformedStream)
		})
	}
}
