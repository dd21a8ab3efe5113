package encoding

// Delta returns the first differences of values, starting from zero, with
// wrap-around arithmetic in the width of T.
func Delta[T Unsigned](values []T) []T {
	out := make([]T, len(values))
	var prev T
	for i, v := range values {
		out[i] = v - prev
		prev = v
	}

	return out
}

// PrefixSum is the inverse of Delta. It works in place and returns deltas.
func PrefixSum[T Unsigned](deltas []T) []T {
	var acc T
	for i, d := range deltas {
		acc += d
		deltas[i] = acc
	}

	return deltas
}

// ZigZagAll zigzag maps values in place and returns them.
func ZigZagAll[T Unsigned](values []T) []T {
	for i, v := range values {
		values[i] = ZigZag(v)
	}

	return values
}

// UnZigZagAll reverses ZigZagAll in place and returns values.
func UnZigZagAll[T Unsigned](values []T) []T {
	for i, v := range values {
		values[i] = UnZigZag(v)
	}

	return values
}
