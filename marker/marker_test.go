package marker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarker_WireBytes(t *testing.T) {
	require.Equal(t, byte(0x5A), byte(Null))
	require.Equal(t, byte(0x54), byte(BoolTrue))
	require.Equal(t, byte(0x46), byte(BoolFalse))
	require.Equal(t, byte(0x55), byte(UInt8))
	require.Equal(t, byte(0x75), byte(UInt16))
	require.Equal(t, byte(0x43), byte(Char))
	require.Equal(t, byte(0x53), byte(String))
}

func TestWidth(t *testing.T) {
	w, ok := Width(UInt8)
	require.True(t, ok)
	require.Equal(t, 1, w)

	w, ok = Width(Float64)
	require.True(t, ok)
	require.Equal(t, 8, w)

	_, ok = Width(String)
	require.False(t, ok)
}

func TestSignedUnsigned(t *testing.T) {
	m, ok := Signed(4)
	require.True(t, ok)
	require.Equal(t, Int32, m)

	m, ok = Unsigned(8)
	require.True(t, ok)
	require.Equal(t, UInt64, m)

	_, ok = Signed(3)
	require.False(t, ok)
}

func TestMarker_String(t *testing.T) {
	require.Equal(t, "UInt8", UInt8.String())
	require.Contains(t, Marker('x').String(), "Unknown")
}
