package bjdata

import (
	"math"

	"github.com/neurojson/bjdata-go/marker"
	"github.com/neurojson/bjdata-go/numeric"
)

// Free functions implementing narrowest-marker selection and the float
// width rules, kept independent of the encoder struct so they can be
// unit-tested in isolation.

// ChooseUintMarker selects the narrowest marker for a non-negative
// integer value. ok is false only in strict UBJSON mode when
// u exceeds math.MaxInt64, signaling the caller must fall back to
// HighPrec.
func ChooseUintMarker(u uint64, strict bool) (m marker.Marker, ok bool) {
	if !strict {
		m, _ := marker.Unsigned(numeric.NarrowestUnsigned(u))

		return m, true
	}

	// Strict UBJSON defines UInt8 as its only unsigned marker; larger
	// values use the narrowest signed form that holds them.
	if u <= math.MaxUint8 {
		return marker.UInt8, true
	}

	if u > math.MaxInt64 {
		return 0, false
	}

	width, _ := numeric.NarrowestSigned(int64(u))

	m, _ = marker.Signed(width)

	return m, true
}

// ChooseIntMarker selects the narrowest marker for a signed integer
// value. Every int64 value has a representable marker (at
// worst Int64), so selection never fails for the signed path.
func ChooseIntMarker(n int64, strict bool) marker.Marker {
	if n >= 0 {
		m, _ := ChooseUintMarker(uint64(n), strict)

		return m
	}

	width, _ := numeric.NarrowestSigned(n)
	if width == 1 {
		// Negative scalars never travel as Int8; Int16 is the
		// narrowest signed form the wire carries for them.
		width = 2
	}

	m, _ := marker.Signed(width)

	return m
}

const minNormalFloat32 = 0x1p-126 // smallest positive normal float32, ~1.1754944e-38

// WithinFloat32Range reports whether |f| falls within the finite,
// normal float32 range [minNormalFloat32, math.MaxFloat32].
func WithinFloat32Range(f float64) bool {
	a := math.Abs(f)

	return a >= minNormalFloat32 && a <= math.MaxFloat32
}

// IsSubnormalFloat64 reports whether f is a (non-zero) subnormal
// binary64 value: exponent bits all zero but a non-zero mantissa.
func IsSubnormalFloat64(f float64) bool {
	if f == 0 {
		return false
	}

	bits := math.Float64bits(f)
	exp := (bits >> 52) & 0x7FF

	return exp == 0
}

// NonFiniteText renders a NaN/±Inf float64 as the canonical decimal text
// used by the encoder's HighPrec fallback in BJData mode.
func NonFiniteText(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.Signbit(f):
		return "-inf"
	default:
		return "inf"
	}
}
