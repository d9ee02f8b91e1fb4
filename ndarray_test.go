package bjdata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neurojson/bjdata-go/marker"
	"github.com/neurojson/bjdata-go/reader"
)

// ==============================================================================
// NDArray round-trip
// ==============================================================================

func TestNDArray_RoundTrip_1D(t *testing.T) {
	nd := &NDArray{Shape: []int{4}, Elem: marker.Int32, Values: []int32{10, -20, 30, -40}}

	b, err := Dumpb(NDArrayOf(nd))
	require.NoError(t, err)

	v, err := LoadValue(reader.FromBytes(b))
	require.NoError(t, err)
	require.Equal(t, KindNDArray, v.Kind())

	got := v.NDArray()
	require.Equal(t, []int{4}, got.Shape)
	require.Equal(t, marker.Int32, got.Elem)
	require.Equal(t, []int32{10, -20, 30, -40}, got.Values)
}

func TestNDArray_RoundTrip_2D(t *testing.T) {
	nd := &NDArray{Shape: []int{2, 3}, Elem: marker.Float64, Values: []float64{1, 2, 3, 4, 5, 6}}

	b, err := Dumpb(NDArrayOf(nd))
	require.NoError(t, err)

	v, err := LoadValue(reader.FromBytes(b))
	require.NoError(t, err)

	got := v.NDArray()
	require.Equal(t, []int{2, 3}, got.Shape)
	require.Equal(t, 6, got.Len())
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, got.Values)
}

func TestNDArray_ShapeMustBePositive(t *testing.T) {
	nd := &NDArray{Shape: []int{2, 0}, Elem: marker.Int8, Values: []int8{1, 2}}

	_, err := Dumpb(NDArrayOf(nd))
	require.Error(t, err)
}

func TestNDArray_CharWidthRoundTrip(t *testing.T) {
	nd := &NDArray{
		Shape:     []int{2},
		Elem:      marker.Char,
		Values:    []string{"ab", "cd"},
		CharWidth: 2,
	}

	b, err := Dumpb(NDArrayOf(nd))
	require.NoError(t, err)

	v, err := LoadValue(reader.FromBytes(b))
	require.NoError(t, err)

	got := v.NDArray()
	require.Equal(t, []string{"ab", "cd"}, got.Values)
	require.Equal(t, 2, got.CharWidth)
}

func TestNDArray_ScalarZeroDimensional(t *testing.T) {
	nd := &NDArray{Shape: nil, Elem: marker.Float32, Values: []float32{2.5}}

	b, err := Dumpb(NDArrayOf(nd))
	require.NoError(t, err)
	require.Equal(t, byte(marker.Float32), b[0])

	v, err := LoadValue(reader.FromBytes(b))
	require.NoError(t, err)
	require.Equal(t, KindFloat, v.Kind())
	require.InDelta(t, 2.5, v.Float64(), 1e-6)
}

// ==============================================================================
// Structured array / SOA round-trip
// ==============================================================================

func structuredFixture() *StructuredArray {
	return &StructuredArray{
		Fields: []FieldSpec{
			{Name: "id", Elem: marker.Int32},
			{Name: "value", Elem: marker.Float32},
			{Name: "active", Elem: boolFieldMarker},
		},
		Count: 3,
		Columns: []any{
			[]int32{1, 2, 3},
			[]float32{1.5, 2.5, 3.5},
			[]bool{true, false, true},
		},
	}
}

func TestStructuredArray_RoundTrip_Row(t *testing.T) {
	sa := structuredFixture()

	b, err := Dumpb(StructuredArrayOf(sa), WithSOAFormat(SOARow))
	require.NoError(t, err)
	require.Equal(t, byte(marker.ArrayStart), b[0])

	v, err := LoadValue(reader.FromBytes(b))
	require.NoError(t, err)
	require.Equal(t, KindStructuredArray, v.Kind())

	got := v.StructuredArray()
	require.Equal(t, sa.Fields, got.Fields)
	require.Equal(t, sa.Count, got.Count)
	require.Equal(t, []int32{1, 2, 3}, got.Columns[0])
	require.Equal(t, []float32{1.5, 2.5, 3.5}, got.Columns[1])
	require.Equal(t, []bool{true, false, true}, got.Columns[2])
}

func TestStructuredArray_RoundTrip_Column(t *testing.T) {
	sa := structuredFixture()

	b, err := Dumpb(StructuredArrayOf(sa), WithSOAFormat(SOAColumn))
	require.NoError(t, err)
	require.Equal(t, byte(marker.ObjectStart), b[0])

	v, err := LoadValue(reader.FromBytes(b))
	require.NoError(t, err)

	got := v.StructuredArray()
	require.Equal(t, []int32{1, 2, 3}, got.Columns[0])
	require.Equal(t, []float32{1.5, 2.5, 3.5}, got.Columns[1])
	require.Equal(t, []bool{true, false, true}, got.Columns[2])
}

func TestStructuredArray_AutoSelectsColumnWhenUnset(t *testing.T) {
	sa := structuredFixture()

	b, err := Dumpb(StructuredArrayOf(sa))
	require.NoError(t, err)
	// An unset soa_format auto-selects the column-major layout.
	require.Equal(t, byte(marker.ObjectStart), b[0])
}

func TestStructuredArray_RowAndColumnBothEqualOriginal(t *testing.T) {
	sa := structuredFixture()

	rowBytes, err := Dumpb(StructuredArrayOf(sa), WithSOAFormat(SOARow))
	require.NoError(t, err)

	colBytes, err := Dumpb(StructuredArrayOf(sa), WithSOAFormat(SOAColumn))
	require.NoError(t, err)

	rowVal, err := LoadValue(reader.FromBytes(rowBytes))
	require.NoError(t, err)

	colVal, err := LoadValue(reader.FromBytes(colBytes))
	require.NoError(t, err)

	require.Equal(t, rowVal.StructuredArray(), colVal.StructuredArray())
}

// ==============================================================================
// Bytes / STC forms
// ==============================================================================

func TestBytes_RoundTrip_UInt8Array(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xFF, 0x7F}

	b, err := Dumpb(raw)
	require.NoError(t, err)
	require.Equal(t, byte(marker.ArrayStart), b[0])
	require.Equal(t, byte(marker.ContainerType), b[1])
	require.Equal(t, byte(marker.UInt8), b[2])

	got, err := Loadb(b)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestBytes_WithoutUint8Bytes_StillRoundTrips(t *testing.T) {
	// Disabling uint8_bytes routes []byte through the ordinary Sequence
	// dispatch arm instead of the dedicated Bytes wire form, but a
	// uniform []byte is still STC-eligible, so the wire bytes
	// end up identical to the default form and the decoder reconstructs
	// the same []byte value either way.
	raw := []byte{1, 2, 3}

	withFlag, err := Dumpb(raw)
	require.NoError(t, err)

	withoutFlag, err := Dumpb(raw, WithoutUint8Bytes())
	require.NoError(t, err)

	require.Equal(t, withFlag, withoutFlag)

	got, err := Loadb(withoutFlag)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestBytes_NoBytesDecode_KeepsIntegerSequence(t *testing.T) {
	raw := []byte{5, 6, 7}

	b, err := Dumpb(raw)
	require.NoError(t, err)

	got, err := Loadb(b, WithoutBytesDecoding())
	require.NoError(t, err)
	require.Equal(t, []any{int64(5), int64(6), int64(7)}, got)
}

// ==============================================================================
// Explicit typed array (ArrayOfTyped / STC forced form)
// ==============================================================================

func TestArrayOfTyped_RoundTrip(t *testing.T) {
	v := ArrayOfTyped(marker.Int16, Int64(100), Int64(-200), Int64(300))

	b, err := Dumpb(v)
	require.NoError(t, err)
	require.Equal(t, byte(marker.ArrayStart), b[0])
	require.Equal(t, byte(marker.ContainerType), b[1])
	require.Equal(t, byte(marker.Int16), b[2])

	decoded, err := LoadValue(reader.FromBytes(b))
	require.NoError(t, err)
	require.Equal(t, KindArray, decoded.Kind())

	arr := decoded.Array()
	require.Len(t, arr, 3)
	require.Equal(t, int64(100), arr[0].Int64())
	require.Equal(t, int64(-200), arr[1].Int64())
	require.Equal(t, int64(300), arr[2].Int64())
}
