package encoding

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mlt/errs"
)

func TestPackBlocks_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tests := []struct {
		name   string
		values []uint32
	}{
		{name: "empty", values: nil},
		{name: "tail only", values: []uint32{1, 2, 3, 300}},
		{name: "one zero block", values: make([]uint32, BlockSize)},
		{name: "full width", values: fill(BlockSize*2+5, func(int) uint32 { return math.MaxUint32 })},
		{name: "random small", values: fill(1000, func(int) uint32 { return uint32(rng.Intn(17)) })},
		{name: "random wide", values: fill(777, func(int) uint32 { return rng.Uint32() })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := PackBlocks(nil, tt.values)

			got, consumed, err := UnpackBlocks(packed, len(tt.values))
			require.NoError(t, err)
			require.Equal(t, len(packed), consumed)
			if len(tt.values) == 0 {
				require.Empty(t, got)
				return
			}
			require.Equal(t, tt.values, got)
		})
	}
}

func TestPackBlocks_ZeroBlockIsOneByte(t *testing.T) {
	packed := PackBlocks(nil, make([]uint32, BlockSize))
	require.Equal(t, []byte{0}, packed)
}

func TestPackBlocks_BitWidth(t *testing.T) {
	values := fill(BlockSize, func(i int) uint32 { return uint32(i % 8) })
	packed := PackBlocks(nil, values)
	// 3 bits * 128 values = 12 words.
	require.Equal(t, byte(3), packed[0])
	require.Len(t, packed, 1+12*4)
}

func TestUnpackBlocks_Truncated(t *testing.T) {
	values := fill(BlockSize, func(i int) uint32 { return uint32(i) })
	packed := PackBlocks(nil, values)

	_, _, err := UnpackBlocks(packed[:len(packed)-1], BlockSize)
	require.ErrorIs(t, err, errs.ErrMalformedStream)

	_, _, err = UnpackBlocks([]byte{33}, BlockSize)
	require.ErrorIs(t, err, errs.ErrMalformedStream)
}

func fill(n int, fn func(int) uint32) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = fn(i)
	}

	return out
}
