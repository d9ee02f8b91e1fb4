// Package scratch provides pooled scratch byte slices for the codec's
// fixed-width element paths, avoiding a fresh allocation on every
// per-element copy.
package scratch

import "sync"

var byteSlicePool = sync.Pool{
	New: func() any { return &[]byte{} },
}

// GetByteSlice retrieves and resizes a []byte scratch buffer from the
// pool. The returned slice has length exactly size; its contents are
// unspecified. The caller must call the returned cleanup function
// (typically via defer) to return the slice to the pool, and must not
// retain the slice past that call.
func GetByteSlice(size int) ([]byte, func()) {
	ptr, _ := byteSlicePool.Get().(*[]byte)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]byte, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { byteSlicePool.Put(ptr) }
}
