// Package keyintern implements the decoder's object-key interning:
// reusing one Go string per distinct object key across the many
// entries/records a BJData stream can decode, instead of allocating a
// fresh string header for every occurrence. Keys are looked up by their
// xxHash64 digest.
package keyintern

import "github.com/cespare/xxhash/v2"

// Table interns decoded object key strings. The zero value is not
// usable; construct with New.
type Table struct {
	seen map[uint64]string
}

// New creates an empty interning Table.
func New() *Table {
	return &Table{seen: make(map[uint64]string)}
}

// Intern returns a canonical string equal to key: the first time a
// given key (by content) is seen it is retained and returned as-is; on
// every subsequent call with an equal key, the previously retained
// string is returned instead of key, so repeated keys across many
// objects share one underlying string.
//
// A hash collision between two different keys is vanishingly unlikely
// with xxHash64 but would otherwise silently merge two distinct keys;
// Intern guards against that by falling back to key itself when the
// cached string doesn't match, trading a missed interning opportunity
// for correctness.
func (t *Table) Intern(key string) string {
	h := xxhash.Sum64String(key)

	if existing, ok := t.seen[h]; ok {
		if existing == key {
			return existing
		}

		return key
	}

	t.seen[h] = key

	return key
}

// Reset clears the table, allowing it to be reused across decode calls.
func (t *Table) Reset() {
	for k := range t.seen {
		delete(t.seen, k)
	}
}
