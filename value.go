// Package bjdata implements a binary serialization codec for the BJData
// (Binary JData) wire format: a binary superset of JSON extending UBJSON
// with additional numeric types, sized containers, and an N-dimensional
// typed-array (NDArray) construct.
//
// The package exposes a small convenience surface (Dump/Dumpb/Load/Loadb)
// on top of the lower-level marker, numeric, endian, buffer and reader
// packages.
package bjdata

import (
	"math"
	"sort"

	"github.com/neurojson/bjdata-go/marker"
)

// Kind identifies which carrier of the Value tagged variant is
// populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindHighPrec
	KindChar
	KindString
	KindBytes
	KindArray
	KindObject
	KindNDArray
	KindStructuredArray
)

var kindNames = [...]string{
	"Null", "Bool", "Int", "Float", "HighPrec", "Char", "String",
	"Bytes", "Array", "Object", "NDArray", "StructuredArray",
}

// String renders the Kind the way marker.Marker.String() renders marker
// names.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Unknown"
}

// HighPrec is an arbitrary-precision decimal carried as canonical
// decimal text. It is a distinct named type (not a plain string) so the
// encoder's dispatch cascade can tell a HighPrec value apart from an
// ordinary String, which the cascade matches first.
type HighPrec string

// KV is one key/value entry of an Object. Duplicate keys are legal and
// preserved in source order by the encoder.
type KV struct {
	Key string
	Val Value
}

// Object is an ordered mapping from UTF-8 string key to Value. Unlike
// map[string]any, iteration order is exactly the slice order, which is
// the order entries are written to the wire unless sort_keys is set.
type Object []KV

// FieldSpec names one field of a StructuredArray's schema: a field name
// plus its scalar element marker.
type FieldSpec struct {
	Name string
	Elem marker.Marker
}

// NDArray is a homogeneously-typed, dense, row-major N-dimensional
// array. Values holds the typed payload and must be one of:
// []int8, []uint8, []int16, []uint16, []int32, []uint32, []int64,
// []uint64, []float32, []float64, or []string (fixed-width UTF-8 char
// elements, CharWidth > 0).
type NDArray struct {
	Shape     []int
	Elem      marker.Marker
	Values    any
	CharWidth int // payload width in bytes per element, only for Elem == marker.Char
}

// Len returns product(Shape), the total element count.
func (nd *NDArray) Len() int {
	n := 1
	for _, d := range nd.Shape {
		n *= d
	}

	return n
}

// StructuredArray is a structured NDArray: named scalar fields, no
// nested shape, one Columns entry per Fields entry.
// Each Columns[i] is a typed slice of length Count, using the same
// element-type conventions as NDArray.Values.
type StructuredArray struct {
	Fields  []FieldSpec
	Count   int
	Columns []any
}

// SOAFormat selects the wire layout for a StructuredArray: row-major
// (interleaved records) or column-major (one contiguous run per field).
type SOAFormat uint8

const (
	SOANone SOAFormat = iota
	SOARow
	SOAColumn
)

// Value is a tagged variant: a Kind discriminator plus only the fields
// relevant to that Kind.
//
// Value is returned by the decoder and may also be constructed directly
// (via the Null/Bool/Int64/.../NDArrayOf/StructuredArrayOf helpers below)
// and handed to Dump/Dumpb when a caller needs to force a representation
// plain Go types can't express unambiguously, such as a HighPrec literal
// or a declared element type/count.
type Value struct {
	kind Kind

	b bool

	i        int64
	u        uint64
	unsigned bool

	f      float64
	fwidth int // 0 = let the encoder choose; 16, 32 or 64 to force a width

	hp HighPrec

	ch byte

	str string

	raw []byte

	arr         []Value
	arrElemSet  bool
	arrElem     marker.Marker
	arrCountSet bool

	obj         Object
	objElemSet  bool
	objElem     marker.Marker
	objCountSet bool

	nd *NDArray
	sa *StructuredArray
}

// Kind reports which carrier is populated.
func (v Value) Kind() Kind { return v.kind }

// Null constructs a Value holding the Null carrier.
func Null() Value { return Value{kind: KindNull} }

// Bool constructs a Value holding the BoolTrue/BoolFalse carrier.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int64 constructs a Value holding a signed Int carrier.
func Int64(n int64) Value { return Value{kind: KindInt, i: n} }

// Uint64 constructs a Value holding an unsigned Int carrier. Unsigned
// markers above UInt8 exist in BJData mode only.
func Uint64(n uint64) Value { return Value{kind: KindInt, u: n, unsigned: true} }

// Float64Val constructs a Value holding a Float carrier at full (binary64)
// precision; the encoder still applies its automatic width selection
// unless FloatWidth is used.
func Float64Val(f float64) Value { return Value{kind: KindFloat, f: f} }

// Float32Val constructs a Value holding a Float carrier already narrowed
// to binary32 precision.
func Float32Val(f float32) Value { return Value{kind: KindFloat, f: float64(f), fwidth: 32} }

// FloatWidth forces the encoded width (16, 32 or 64) of a Float Value,
// bypassing the automatic selection. Used for NDArray element payloads,
// where Float16 is otherwise never chosen for scalars.
func (v Value) FloatWidth(width int) Value {
	v.fwidth = width

	return v
}

// HighPrecText constructs a Value holding the HighPrec carrier from
// canonical decimal text.
func HighPrecText(s string) Value { return Value{kind: KindHighPrec, hp: HighPrec(s)} }

// CharByte constructs a Value holding the Char carrier. b must be a
// single-byte (< 0x80) UTF-8 codepoint.
func CharByte(b byte) Value { return Value{kind: KindChar, ch: b} }

// Str constructs a Value holding the String carrier.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// BytesOf constructs a Value holding the Bytes carrier.
func BytesOf(b []byte) Value { return Value{kind: KindBytes, raw: b} }

// ArrayOf constructs a Value holding the Array carrier with no declared
// element type or count. On encode it takes the STC form when every
// element shares one fixed-width numeric marker; otherwise it is
// count-framed under container_count and terminator-framed without it.
func ArrayOf(vals ...Value) Value { return Value{kind: KindArray, arr: vals} }

// ArrayOfTyped constructs an Array Value with a declared element marker,
// forcing the strongly-typed `$ <marker>` form regardless of
// container_count.
func ArrayOfTyped(elem marker.Marker, vals ...Value) Value {
	return Value{kind: KindArray, arr: vals, arrElem: elem, arrElemSet: true}
}

// ObjectOf constructs a Value holding the Object carrier.
func ObjectOf(obj Object) Value { return Value{kind: KindObject, obj: obj} }

// NDArrayOf constructs a Value holding the NDArray carrier.
func NDArrayOf(nd *NDArray) Value { return Value{kind: KindNDArray, nd: nd} }

// StructuredArrayOf constructs a Value holding a structured NDArray.
func StructuredArrayOf(sa *StructuredArray) Value { return Value{kind: KindStructuredArray, sa: sa} }

// IsNull reports whether v holds the Null carrier.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the BoolTrue/BoolFalse carrier's value.
func (v Value) Bool() bool { return v.b }

// Int64 returns the Int carrier narrowed to int64. For an unsigned value
// above math.MaxInt64 this truncates; callers needing the full range
// should check IsUnsigned and use Uint64 instead.
func (v Value) Int64() int64 {
	if v.unsigned {
		return int64(v.u)
	}

	return v.i
}

// Uint64 returns the Int carrier's bit pattern as an unsigned 64-bit
// integer.
func (v Value) Uint64() uint64 {
	if v.unsigned {
		return v.u
	}

	return uint64(v.i)
}

// IsUnsigned reports whether the Int carrier originated from an unsigned
// marker.
func (v Value) IsUnsigned() bool { return v.unsigned }

// Float64 returns the Float carrier's value.
func (v Value) Float64() float64 { return v.f }

// HighPrec returns the HighPrecision carrier's canonical decimal text.
func (v Value) HighPrec() HighPrec { return v.hp }

// Char returns the Char carrier's single byte.
func (v Value) Char() byte { return v.ch }

// Str returns the String carrier's value.
func (v Value) Str() string { return v.str }

// Bytes returns the Bytes carrier's octets.
func (v Value) Bytes() []byte { return v.raw }

// Array returns the Array carrier's elements.
func (v Value) Array() []Value { return v.arr }

// Object returns the Object carrier's entries.
func (v Value) Object() Object { return v.obj }

// NDArray returns the NDArray carrier.
func (v Value) NDArray() *NDArray { return v.nd }

// StructuredArray returns the StructuredArray carrier.
func (v Value) StructuredArray() *StructuredArray { return v.sa }

// sortObjectKeys returns a copy of obj sorted lexicographically by key's
// UTF-8 bytes, for the sort_keys encoder option.
func sortObjectKeys(obj Object) Object {
	out := make(Object, len(obj))
	copy(out, obj)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out
}

// Native projects a decoded Value back into an idiomatic plain Go value:
// nil, bool, int64 (or uint64 for unsigned values that overflow int64),
// float64, HighPrec, string (Char and String both surface as string),
// []byte, []any, Object, *NDArray or *StructuredArray.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		if v.unsigned && v.u > math.MaxInt64 {
			return v.u
		}

		return v.Int64()
	case KindFloat:
		return v.f
	case KindHighPrec:
		return v.hp
	case KindChar:
		return string(rune(v.ch))
	case KindString:
		return v.str
	case KindBytes:
		return v.raw
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Native()
		}

		return out
	case KindObject:
		return v.obj
	case KindNDArray:
		return v.nd
	case KindStructuredArray:
		return v.sa
	default:
		return nil
	}
}
