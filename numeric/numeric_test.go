package numeric

import (
	"testing"

	"github.com/neurojson/bjdata-go/endian"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackFloat64(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	values := []float64{0, 1, -1, 3.14159, 1e300, -1e-300}

	for _, v := range values {
		buf := PackFloat64(engine, nil, v)
		require.Len(t, buf, 8)
		require.Equal(t, v, UnpackFloat64(engine, buf))
	}
}

func TestPackUnpackFloat32(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	v := float32(2.5)
	buf := PackFloat32(engine, nil, v)
	require.Len(t, buf, 4)
	require.Equal(t, v, UnpackFloat32(engine, buf))
}

func TestPackUnpackFloat16_RoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	cases := []float32{0, 1, -1, 0.5, 2, 10.0, -10.0}

	for _, v := range cases {
		buf := PackFloat16(engine, nil, v)
		require.Len(t, buf, 2)
		require.InDelta(t, v, UnpackFloat16(engine, buf), 1e-3)
	}
}

func TestMatchesHost_ExactlyOneEngine(t *testing.T) {
	little := MatchesHost(endian.GetLittleEndianEngine())
	big := MatchesHost(endian.GetBigEndianEngine())

	require.NotEqual(t, little, big)
}

func TestFloat64Slice_BothOrdersRoundTrip(t *testing.T) {
	src := []float64{0, 1.5, -2.25, 1e300, -1e-300}

	for _, engine := range []endian.EndianEngine{
		endian.GetLittleEndianEngine(),
		endian.GetBigEndianEngine(),
	} {
		packed := AppendFloat64Slice(engine, nil, src)
		require.Len(t, packed, len(src)*8)

		// The bulk encoding must agree byte-for-byte with the
		// per-element encoding, whichever path produced it.
		var elementwise []byte
		for _, v := range src {
			elementwise = PackFloat64(engine, elementwise, v)
		}
		require.Equal(t, elementwise, packed)

		got := make([]float64, len(src))
		UnpackFloat64Slice(engine, packed, got)
		require.Equal(t, src, got)
	}
}

func TestFloat32Slice_BothOrdersRoundTrip(t *testing.T) {
	src := []float32{0, 2.5, -0.125}

	for _, engine := range []endian.EndianEngine{
		endian.GetLittleEndianEngine(),
		endian.GetBigEndianEngine(),
	} {
		packed := AppendFloat32Slice(engine, nil, src)
		require.Len(t, packed, len(src)*4)

		var elementwise []byte
		for _, v := range src {
			elementwise = PackFloat32(engine, elementwise, v)
		}
		require.Equal(t, elementwise, packed)

		got := make([]float32, len(src))
		UnpackFloat32Slice(engine, packed, got)
		require.Equal(t, src, got)
	}
}

func TestFloatSlice_EmptyIsNoOp(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	require.Empty(t, AppendFloat64Slice(engine, nil, nil))
	UnpackFloat64Slice(engine, nil, nil) // must not panic
}

func TestFloat16_SignedZero(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	buf := PackFloat16(engine, nil, 0)
	require.Equal(t, float32(0), UnpackFloat16(engine, buf))
}

func TestPackInt_NarrowestMarkerWidths(t *testing.T) {
	w, ok := NarrowestSigned(0)
	require.True(t, ok)
	require.Equal(t, 1, w)

	w, ok = NarrowestSigned(-200)
	require.True(t, ok)
	require.Equal(t, 2, w)

	require.Equal(t, 1, NarrowestUnsigned(255))
	require.Equal(t, 2, NarrowestUnsigned(256))
	require.Equal(t, 4, NarrowestUnsigned(1<<16))
	require.Equal(t, 8, NarrowestUnsigned(1<<32))
}

func TestPackInt_Overflow(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	_, err := PackInt(engine, nil, 1, false, 256)
	require.Error(t, err)

	_, err = PackInt(engine, nil, 2, true, 1<<15)
	require.Error(t, err)
}

func TestPackUnpackInt_Endianness(t *testing.T) {
	le := endian.GetLittleEndianEngine()
	be := endian.GetBigEndianEngine()

	leBuf, err := PackInt(le, nil, 2, false, 256)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x01}, leBuf)

	beBuf, err := PackInt(be, nil, 2, false, 256)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x00}, beBuf)

	v, err := UnpackInt(le, leBuf, 2, false)
	require.NoError(t, err)
	require.Equal(t, int64(256), v)
}

func TestPackUnpackUint64Full(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	var big uint64 = 1<<64 - 1
	buf := PackUint64(engine, nil, big)
	require.Equal(t, big, UnpackUint64(engine, buf))
}
