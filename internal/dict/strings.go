// Package dict implements the insertion-ordered string dictionary used by the
// string column encoders.
package dict

import "github.com/cespare/xxhash/v2"

// Strings assigns dense indices to distinct strings in first-seen order.
//
// Entries are keyed by their 64-bit xxHash. A string whose hash is already
// taken by a different string is kept in a separate exact-match map, so a
// collision never merges two distinct values into one index.
type Strings struct {
	byHash     map[uint64]uint32
	collisions map[string]uint32
	values     []string
}

// NewStrings creates an empty dictionary sized for roughly capacity distinct values.
func NewStrings(capacity int) *Strings {
	return &Strings{
		byHash: make(map[uint64]uint32, capacity),
		values: make([]string, 0, capacity),
	}
}

// Add returns the index of s, inserting it at the end if it is new.
func (d *Strings) Add(s string) uint32 {
	if idx, ok := d.Lookup(s); ok {
		return idx
	}

	idx := uint32(len(d.values))
	d.values = append(d.values, s)

	h := xxhash.Sum64String(s)
	if _, taken := d.byHash[h]; taken {
		if d.collisions == nil {
			d.collisions = make(map[string]uint32)
		}
		d.collisions[s] = idx

		return idx
	}
	d.byHash[h] = idx

	return idx
}

// Lookup returns the index of s if it was added before.
func (d *Strings) Lookup(s string) (uint32, bool) {
	if idx, ok := d.byHash[xxhash.Sum64String(s)]; ok && d.values[idx] == s {
		return idx, true
	}
	if d.collisions != nil {
		idx, ok := d.collisions[s]
		return idx, ok
	}

	return 0, false
}

// Values returns the distinct strings in insertion order. The slice is owned by the dictionary.
func (d *Strings) Values() []string {
	return d.values
}

func (d *Strings) Len() int {
	return len(d.values)
}
