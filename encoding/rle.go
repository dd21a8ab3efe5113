package encoding

import (
	"fmt"

	"github.com/arloliu/mlt/errs"
)

// maxPrealloc caps the capacity reserved from an untrusted count.
const maxPrealloc = 1 << 16

// CountRuns returns the number of runs of equal consecutive values.
func CountRuns[T comparable](values []T) int {
	if len(values) == 0 {
		return 0
	}

	runs := 1
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			runs++
		}
	}

	return runs
}

// RunLengths splits values into runs.
//
// Returns the run lengths and the value of each run, both of length CountRuns(values).
func RunLengths[T Unsigned](values []T) (lengths []T, runValues []T) {
	if len(values) == 0 {
		return nil, nil
	}

	lengths = make([]T, 0, 8)
	runValues = make([]T, 0, 8)
	current := values[0]
	var n T
	for _, v := range values {
		if v != current {
			lengths = append(lengths, n)
			runValues = append(runValues, current)
			current = v
			n = 0
		}
		n++
	}
	lengths = append(lengths, n)
	runValues = append(runValues, current)

	return lengths, runValues
}

// ExpandRuns reverses RunLengths. The expansion must produce exactly total values.
func ExpandRuns[T Unsigned](lengths, runValues []T, total int) ([]T, error) {
	if len(lengths) != len(runValues) {
		return nil, fmt.Errorf("%w: %d run lengths for %d run values", errs.ErrMalformedStream, len(lengths), len(runValues))
	}

	out := make([]T, 0, min(total, maxPrealloc))
	for i, n := range lengths {
		if uint64(len(out))+uint64(n) > uint64(total) {
			return nil, fmt.Errorf("%w: runs expand past %d values", errs.ErrMalformedStream, total)
		}
		for j := T(0); j < n; j++ {
			out = append(out, runValues[i])
		}
	}
	if len(out) != total {
		return nil, fmt.Errorf("%w: runs expand to %d values, want %d", errs.ErrMalformedStream, len(out), total)
	}

	return out, nil
}
