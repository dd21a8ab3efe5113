package encoding

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

func TestEncodeIntegers_ConstantSequence(t *testing.T) {
	for _, physical := range []format.PhysicalTechnique{format.PhysicalVarint, format.PhysicalFastPFOR} {
		t.Run(physical.String(), func(t *testing.T) {
			enc, err := EncodeIntegers([]uint32{3, 3, 3, 3, 3}, false, physical)
			require.NoError(t, err)
			require.Equal(t, format.LogicalRLE, enc.Logical)
			require.Equal(t, 1, enc.RunCount)
			require.Equal(t, 5, enc.ValueCount)
			require.Equal(t, []byte{5, 3}, enc.Data)

			got, err := DecodeIntegers[uint32](enc.Data, enc.Logical, enc.Physical, enc.ValueCount, enc.RunCount, false)
			require.NoError(t, err)
			require.Equal(t, []uint32{3, 3, 3, 3, 3}, got)
		})
	}
}

func TestEncodeIntegers_ConstantAlwaysSingleRun(t *testing.T) {
	sizes := []int{2, 5, 127, 128, 256, 300, 1024}

	for _, value := range []uint32{0, 1, 1000} {
		for _, physical := range []format.PhysicalTechnique{format.PhysicalVarint, format.PhysicalFastPFOR} {
			for _, n := range sizes {
				values := make([]uint32, n)
				for i := range values {
					values[i] = value
				}

				enc, err := EncodeIntegers(values, false, physical)
				require.NoError(t, err)
				require.Equal(t, format.LogicalRLE, enc.Logical, "value=%d n=%d %s", value, n, physical)
				require.Equal(t, 1, enc.RunCount)
				require.Equal(t, n, enc.ValueCount)

				got, err := DecodeIntegers[uint32](enc.Data, enc.Logical, enc.Physical, enc.ValueCount, enc.RunCount, false)
				require.NoError(t, err)
				require.Equal(t, values, got)
			}
		}
	}
}

func TestEncodeIntegers_ZeroBlockStillRunLength(t *testing.T) {
	// plain FastPFOR packs 128 zeros into a single byte
	require.Len(t, packPhysical(nil, make([]uint32, 128), format.PhysicalFastPFOR), 1)

	enc, err := EncodeIntegers(make([]uint64, 256), false, format.PhysicalVarint)
	require.NoError(t, err)
	require.Equal(t, format.LogicalRLE, enc.Logical)
	require.Equal(t, []byte{0x80, 0x02, 0}, enc.Data)

	signed, err := EncodeIntegers(make([]uint32, 128), true, format.PhysicalFastPFOR)
	require.NoError(t, err)
	require.Equal(t, format.LogicalRLE, signed.Logical)
	require.Equal(t, 1, signed.RunCount)
}

func TestEncodeIntegers_PicksDeltaForSequences(t *testing.T) {
	values := make([]uint32, 200)
	for i := range values {
		values[i] = uint32(100000 + i*3 + i%2)
	}

	enc, err := EncodeIntegers(values, false, format.PhysicalVarint)
	require.NoError(t, err)
	require.Equal(t, format.LogicalDelta, enc.Logical)
}

func TestEncodeIntegers_PicksDeltaRLEForArithmeticProgression(t *testing.T) {
	values := make([]uint32, 100)
	for i := range values {
		values[i] = uint32(500 + 7*i)
	}

	enc, err := EncodeIntegers(values, false, format.PhysicalVarint)
	require.NoError(t, err)
	require.Equal(t, format.LogicalDeltaRLE, enc.Logical)
	require.Equal(t, 2, enc.RunCount)

	got, err := DecodeIntegers[uint32](enc.Data, enc.Logical, enc.Physical, enc.ValueCount, enc.RunCount, false)
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestEncodeIntegers_NeverLargerThanPlain(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		n := rng.Intn(600)
		values := make([]uint32, n)
		for i := range values {
			switch iter % 3 {
			case 0:
				values[i] = rng.Uint32()
			case 1:
				values[i] = uint32(rng.Intn(4))
			default:
				values[i] = uint32(i / 10)
			}
		}

		for _, physical := range []format.PhysicalTechnique{format.PhysicalVarint, format.PhysicalFastPFOR} {
			enc, err := EncodeIntegers(values, false, physical)
			require.NoError(t, err)
			plain := packPhysical(nil, values, physical)
			if CountRuns(values) != 1 {
				require.LessOrEqual(t, len(enc.Data), len(plain))
			}

			got, err := DecodeIntegers[uint32](enc.Data, enc.Logical, enc.Physical, enc.ValueCount, enc.RunCount, false)
			require.NoError(t, err)
			require.Len(t, got, n)
			for i := range values {
				require.Equal(t, values[i], got[i])
			}
		}
	}
}

func TestEncodeIntegers_SignedRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		values []int32
	}{
		{name: "empty", values: []int32{}},
		{name: "single", values: []int32{-5}},
		{name: "extremes", values: []int32{math.MinInt32, math.MaxInt32, 0, -1, math.MinInt32}},
		{name: "negative runs", values: []int32{-3, -3, -3, -3, 8, 8, 8, 8}},
		{name: "descending", values: []int32{100, 90, 80, 70, 60, 50, 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := make([]uint32, len(tt.values))
			for i, v := range tt.values {
				words[i] = uint32(v)
			}

			for _, physical := range []format.PhysicalTechnique{format.PhysicalVarint, format.PhysicalFastPFOR} {
				enc, err := EncodeIntegers(words, true, physical)
				require.NoError(t, err)

				got, err := DecodeIntegers[uint32](enc.Data, enc.Logical, enc.Physical, enc.ValueCount, enc.RunCount, true)
				require.NoError(t, err)
				require.Len(t, got, len(tt.values))
				for i, v := range tt.values {
					require.Equal(t, v, int32(got[i]))
				}
			}
		})
	}
}

func TestEncodeIntegers_64BitForcesVarint(t *testing.T) {
	values := []uint64{1 << 40, 1<<40 + 1, math.MaxUint64}

	enc, err := EncodeIntegers(values, false, format.PhysicalFastPFOR)
	require.NoError(t, err)
	require.Equal(t, format.PhysicalVarint, enc.Physical)

	got, err := DecodeIntegers[uint64](enc.Data, enc.Logical, enc.Physical, enc.ValueCount, enc.RunCount, false)
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestEncodeIntegers_InvalidPhysical(t *testing.T) {
	_, err := EncodeIntegers([]uint32{1}, false, format.PhysicalNone)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestDecodeIntegers_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		logical  format.LogicalTechnique
		physical format.PhysicalTechnique
		count    int
		runs     int
	}{
		{name: "trailing bytes", data: []byte{1, 2, 3}, logical: format.LogicalNone, physical: format.PhysicalVarint, count: 2},
		{name: "truncated", data: []byte{0x80}, logical: format.LogicalNone, physical: format.PhysicalVarint, count: 1},
		{name: "runs do not add up", data: []byte{2, 9}, logical: format.LogicalRLE, physical: format.PhysicalVarint, count: 5, runs: 1},
		{name: "boolean technique", data: []byte{1}, logical: format.LogicalBooleanRLE, physical: format.PhysicalVarint, count: 1},
		{name: "no physical", data: []byte{1}, logical: format.LogicalNone, physical: format.PhysicalNone, count: 1},
		{name: "overflow", data: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x1F}, logical: format.LogicalNone, physical: format.PhysicalVarint, count: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeIntegers[uint32](tt.data, tt.logical, tt.physical, tt.count, tt.runs, false)
			require.ErrorIs(t, err, errs.ErrMalformedStream)
		})
	}
}

func TestMortonCodes_RoundTrip(t *testing.T) {
	codes := []uint32{3, 5, 6, 100, 101, 4096, 70000}

	enc := EncodeMortonCodes(codes)
	require.Equal(t, format.LogicalDelta, enc.Logical)

	got, err := DecodeMortonCodes(enc.Data, enc.Physical, len(codes))
	require.NoError(t, err)
	require.Equal(t, codes, got)
}

func BenchmarkEncodeIntegers(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	values := make([]uint32, 4096)
	for i := range values {
		values[i] = uint32(rng.Intn(1 << 12))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = EncodeIntegers(values, false, format.PhysicalFastPFOR)
	}
}

func BenchmarkDecodeIntegers(b *testing.B) {
	values := make([]uint32, 4096)
	for i := range values {
		values[i] = uint32(i * 3)
	}
	enc, _ := EncodeIntegers(values, false, format.PhysicalFastPFOR)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeIntegers[uint32](enc.Data, enc.Logical, enc.Physical, enc.ValueCount, enc.RunCount, false)
	}
}
