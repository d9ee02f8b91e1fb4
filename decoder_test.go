package bjdata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neurojson/bjdata-go/marker"
	"github.com/neurojson/bjdata-go/reader"
)

// ==============================================================================
// Fatal decoder conditions
// ==============================================================================

func TestDecode_Truncation(t *testing.T) {
	// A UInt16 marker promises 2 payload bytes; supply none.
	_, err := Loadb([]byte{'u'})
	require.Error(t, err)

	var decErr *DecoderError
	require.ErrorAs(t, err, &decErr)
}

func TestDecode_UnknownMarker(t *testing.T) {
	_, err := Loadb([]byte{0x01})
	require.Error(t, err)

	var decErr *DecoderError
	require.ErrorAs(t, err, &decErr)
}

func TestDecode_DeclaredCountExceedsMaximum(t *testing.T) {
	b, err := Dumpb([]any{1, 2, 3}, WithContainerCount())
	require.NoError(t, err)

	_, err = Loadb(b, WithMaxContainerCount(2))
	require.Error(t, err)
}

func TestDecode_ShapeProductExceedsMaximum(t *testing.T) {
	nd := &NDArray{Shape: []int{100, 100}, Elem: marker.Int8, Values: make([]int8, 10000)}

	b, err := Dumpb(NDArrayOf(nd))
	require.NoError(t, err)

	_, err = LoadValue(reader.FromBytes(b), WithMaxShapeProduct(100))
	require.Error(t, err)
}

func TestDecode_NegativeLengthRejected(t *testing.T) {
	// String marker 'S' followed by a negative Int16 length (-1).
	b := []byte{'S', 'I', 0xFF, 0xFF}

	_, err := Loadb(b)
	require.Error(t, err)
}

func TestDecode_InvalidUTF8Rejected(t *testing.T) {
	// String marker, UInt8 length 1, followed by an invalid UTF-8 byte.
	b := []byte{'S', 'U', 0x01, 0xFF}

	_, err := Loadb(b)
	require.Error(t, err)
}

func TestDecode_STCArrayMissingCountPrefix(t *testing.T) {
	// ArrayStart, ContainerType, UInt8 marker, then no '#'.
	b := []byte{'[', '$', 'U', ']'}

	_, err := Loadb(b)
	require.Error(t, err)
}

// ==============================================================================
// Duplicate key resolution
// ==============================================================================

func TestDecode_DuplicateKeys_LastWinsByDefault(t *testing.T) {
	b, err := Dumpb(Object{{Key: "a", Val: Int64(1)}, {Key: "a", Val: Int64(2)}})
	require.NoError(t, err)

	v, err := LoadValue(reader.FromBytes(b))
	require.NoError(t, err)

	obj := v.Object()
	require.Len(t, obj, 1)
	require.Equal(t, int64(2), obj[0].Val.Int64())
}

func TestDecode_DuplicateKeys_FirstWinsWhenConfigured(t *testing.T) {
	b, err := Dumpb(Object{{Key: "a", Val: Int64(1)}, {Key: "a", Val: Int64(2)}})
	require.NoError(t, err)

	v, err := LoadValue(reader.FromBytes(b), WithFirstKeyWins())
	require.NoError(t, err)

	obj := v.Object()
	require.Len(t, obj, 1)
	require.Equal(t, int64(1), obj[0].Val.Int64())
}

// ==============================================================================
// Key interning
// ==============================================================================

func TestDecode_InternObjectKeys(t *testing.T) {
	b, err := Dumpb(Object{{Key: "repeat", Val: Int64(1)}, {Key: "repeat", Val: Int64(2)}}, WithContainerCount())
	require.NoError(t, err)

	v, err := LoadValue(reader.FromBytes(b), WithInternObjectKeys())
	require.NoError(t, err)

	obj := v.Object()
	require.Len(t, obj, 1) // same key, last-wins collapses to one entry
}

// ==============================================================================
// Big-endian decode
// ==============================================================================

func TestDecode_BigEndianRoundTrip(t *testing.T) {
	b, err := Dumpb(70000, WithBigEndian()) // exceeds UInt16, needs UInt32
	require.NoError(t, err)

	got, err := Loadb(b, WithExpectBigEndian())
	require.NoError(t, err)
	require.Equal(t, int64(70000), got)
}
