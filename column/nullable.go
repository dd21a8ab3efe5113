// Package column implements the typed column codecs of a layer.
//
// Every codec turns one column of row values into the ordered stream sequence
// written after the column's stream count, and back. Property columns start
// with a PRESENT stream and carry values for present rows only. The id
// column is never null and has no PRESENT stream:
//
//	boolean        PRESENT, DATA (both boolean RLE)
//	integer        PRESENT, DATA (adaptive integer codec)
//	float/double   PRESENT, DATA (little-endian IEEE 754)
//	string         PRESENT, LENGTH, DICTIONARY, DATA_REFERENCE
//	               PRESENT, SYMBOL_LENGTH, SYMBOL_TABLE, LENGTH, DICTIONARY, DATA_REFERENCE
//	id             DATA
//
// Struct columns of string children share one dictionary; see EncodeSharedStrings.
package column

import (
	"fmt"

	"github.com/arloliu/mlt/encoding"
	"github.com/arloliu/mlt/errs"
)

// Nullable is a column of optional values, one slot per row.
//
// Values[i] is meaningful only when Present[i] is set. Decoders leave absent
// slots at the zero value of T.
type Nullable[T any] struct {
	Values  []T
	Present []bool
}

// NewNullable creates a column of rows absent values.
func NewNullable[T any](rows int) Nullable[T] {
	return Nullable[T]{
		Values:  make([]T, rows),
		Present: make([]bool, rows),
	}
}

// Dense creates a column where every row is present.
func Dense[T any](values []T) Nullable[T] {
	present := make([]bool, len(values))
	for i := range present {
		present[i] = true
	}

	return Nullable[T]{Values: values, Present: present}
}

// Len returns the number of rows.
func (c Nullable[T]) Len() int {
	return len(c.Present)
}

// Set stores v at row i and marks it present.
func (c Nullable[T]) Set(i int, v T) {
	c.Values[i] = v
	c.Present[i] = true
}

// Get returns the value at row i and whether it is present.
func (c Nullable[T]) Get(i int) (T, bool) {
	if !c.Present[i] {
		var zero T
		return zero, false
	}

	return c.Values[i], true
}

// Compact returns the present values in row order.
func (c Nullable[T]) Compact() []T {
	out := make([]T, 0, len(c.Values))
	for i, ok := range c.Present {
		if ok {
			out = append(out, c.Values[i])
		}
	}

	return out
}

func (c Nullable[T]) validate() error {
	if len(c.Values) != len(c.Present) {
		return fmt.Errorf("%w: column has %d values for %d presence bits", errs.ErrInvariantViolation, len(c.Values), len(c.Present))
	}

	return nil
}

// expand scatters compact values back to the rows flagged in present.
func expand[T any](present []bool, compact []T) (Nullable[T], error) {
	if n := encoding.CountTrue(present); n != len(compact) {
		return Nullable[T]{}, fmt.Errorf("%w: %d values for %d present rows", errs.ErrMalformedStream, len(compact), n)
	}

	col := Nullable[T]{Values: make([]T, len(present)), Present: present}
	next := 0
	for i, ok := range present {
		if ok {
			col.Values[i] = compact[next]
			next++
		}
	}

	return col, nil
}
