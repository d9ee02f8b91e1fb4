package numeric

import (
	"fmt"

	"github.com/neurojson/bjdata-go/endian"
)

// PackInt appends a signed or unsigned integer of the given byte width
// (1, 2, 4, or 8) to dst in the engine's byte order.
//
// It returns an error if value does not fit in the requested width/sign
// combination.
func PackInt(engine endian.EndianEngine, dst []byte, width int, signed bool, value int64) ([]byte, error) {
	if err := checkRange(width, signed, value); err != nil {
		return nil, err
	}

	switch width {
	case 1:
		return append(dst, byte(value)), nil
	case 2:
		return engine.AppendUint16(dst, uint16(value)), nil
	case 4:
		return engine.AppendUint32(dst, uint32(value)), nil
	case 8:
		return engine.AppendUint64(dst, uint64(value)), nil
	default:
		return nil, fmt.Errorf("numeric: unsupported integer width %d", width)
	}
}

// UnpackInt reads a signed or unsigned integer of the given byte width
// from the first width bytes of src, sign- or zero-extending it to int64.
func UnpackInt(engine endian.EndianEngine, src []byte, width int, signed bool) (int64, error) {
	switch width {
	case 1:
		if signed {
			return int64(int8(src[0])), nil
		}

		return int64(src[0]), nil
	case 2:
		u := engine.Uint16(src)
		if signed {
			return int64(int16(u)), nil
		}

		return int64(u), nil
	case 4:
		u := engine.Uint32(src)
		if signed {
			return int64(int32(u)), nil
		}

		return int64(u), nil
	case 8:
		u := engine.Uint64(src)
		if signed {
			return int64(u), nil
		}
		// u64 values above math.MaxInt64 can't round-trip through int64;
		// callers needing the full uint64 range use UnpackUint64 instead.
		return int64(u), nil
	default:
		return 0, fmt.Errorf("numeric: unsupported integer width %d", width)
	}
}

// UnpackUint64 reads a full-width unsigned 64-bit integer, for the one
// case (UInt64 markers in BJData mode) where int64 cannot represent
// every wire value.
func UnpackUint64(engine endian.EndianEngine, src []byte) uint64 {
	return engine.Uint64(src)
}

// PackUint64 appends a full-width unsigned 64-bit integer.
func PackUint64(engine endian.EndianEngine, dst []byte, value uint64) []byte {
	return engine.AppendUint64(dst, value)
}

func checkRange(width int, signed bool, value int64) error {
	var lo, hi int64

	switch {
	case signed && width == 1:
		lo, hi = -1<<7, 1<<7-1
	case signed && width == 2:
		lo, hi = -1<<15, 1<<15-1
	case signed && width == 4:
		lo, hi = -1<<31, 1<<31-1
	case signed && width == 8:
		return nil // full int64 range, always in range
	case !signed && width == 1:
		lo, hi = 0, 1<<8-1
	case !signed && width == 2:
		lo, hi = 0, 1<<16-1
	case !signed && width == 4:
		lo, hi = 0, 1<<32-1
	case !signed && width == 8:
		if value < 0 {
			return fmt.Errorf("numeric: value %d overflows unsigned 64-bit integer", value)
		}

		return nil
	default:
		return fmt.Errorf("numeric: unsupported integer width %d", width)
	}

	if value < lo || value > hi {
		return fmt.Errorf("numeric: value %d overflows %d-byte %s integer", value, width, signedness(signed))
	}

	return nil
}

func signedness(signed bool) string {
	if signed {
		return "signed"
	}

	return "unsigned"
}

// NarrowestSigned returns the smallest width in {1,2,4,8} whose signed
// range contains n. ok is always true: every int64 fits in 8 bytes.
func NarrowestSigned(n int64) (width int, ok bool) {
	switch {
	case n >= -1<<7 && n <= 1<<7-1:
		return 1, true
	case n >= -1<<15 && n <= 1<<15-1:
		return 2, true
	case n >= -1<<31 && n <= 1<<31-1:
		return 4, true
	default:
		return 8, true
	}
}

// NarrowestUnsigned returns the smallest width in {1,2,4,8} whose
// unsigned range contains n. n must be non-negative.
func NarrowestUnsigned(n uint64) int {
	switch {
	case n <= 1<<8-1:
		return 1
	case n <= 1<<16-1:
		return 2
	case n <= 1<<32-1:
		return 4
	default:
		return 8
	}
}
