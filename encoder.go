package bjdata

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/neurojson/bjdata-go/buffer"
	"github.com/neurojson/bjdata-go/internal/cycleguard"
	"github.com/neurojson/bjdata-go/marker"
	"github.com/neurojson/bjdata-go/numeric"
)

// encoder walks a value graph and writes its BJData encoding to w,
// dispatching on value shape and guarding against circular references
// and unbounded recursion.
//
// An encoder is owned by a single top-level Dump/Dumpb call; it is not
// safe for concurrent use.
type encoder struct {
	cfg   *EncodeConfig
	w     *buffer.Writer
	guard *cycleguard.Guard
}

func newEncoder(cfg *EncodeConfig, w *buffer.Writer) *encoder {
	return &encoder{cfg: cfg, w: w, guard: cycleguard.New(cfg.RecursionLimit)}
}

func (e *encoder) writeBytes(b []byte) error {
	if err := e.w.Write(b); err != nil {
		return newIOError(err)
	}

	return nil
}

func (e *encoder) writeMarker(m marker.Marker) error {
	return e.writeBytes([]byte{byte(m)})
}

// encode is the top-level dispatch over value shapes. Scalars and the
// concrete composite types are matched directly; anything else falls
// through to reflection and finally to the caller's DefaultFunc adapter.
func (e *encoder) encode(v any) error {
	switch val := v.(type) {
	case nil:
		return e.writeMarker(marker.Null)
	case bool:
		if val {
			return e.writeMarker(marker.BoolTrue)
		}

		return e.writeMarker(marker.BoolFalse)
	case string:
		return e.encodeString(val)
	case HighPrec: // a distinct type so the string case cannot shadow it
		return e.encodeHighPrecText(string(val))
	case []byte:
		return e.encodeBytesNative(val)
	case *NDArray:
		return e.encodeNDArray(val)
	case *StructuredArray:
		return e.encodeStructuredArray(val)
	case Value:
		return e.encodeValue(val)
	case Object:
		return e.encodeObject(val)
	case []any:
		return e.encodeSliceAny(val)
	case map[string]any:
		return e.encodeMapAny(val)
	}

	if handled, err := e.encodeSignedIntIfInt(v); handled {
		return err
	}

	if handled, err := e.encodeFloatIfFloat(v); handled {
		return err
	}

	if handled, err := e.encodeReflectComposite(v); handled {
		return err
	}

	if e.cfg.DefaultFunc != nil {
		if repl, ok := e.cfg.DefaultFunc(v); ok {
			return e.encode(repl)
		}
	}

	return newEncoderError("cannot encode type %T", v)
}

// encodeValue dispatches an explicitly-constructed Value, honoring any
// declared element type/count/width it carries.
func (e *encoder) encodeValue(v Value) error {
	switch v.kind {
	case KindNull:
		return e.writeMarker(marker.Null)
	case KindBool:
		if v.b {
			return e.writeMarker(marker.BoolTrue)
		}

		return e.writeMarker(marker.BoolFalse)
	case KindString:
		return e.encodeString(v.str)
	case KindInt:
		return e.encodeInt(v)
	case KindFloat:
		return e.encodeFloatValue(v)
	case KindHighPrec:
		return e.encodeHighPrecText(string(v.hp))
	case KindChar:
		return e.encodeCharByte(v.ch)
	case KindBytes:
		return e.encodeBytesNative(v.raw)
	case KindNDArray:
		return e.encodeNDArray(v.nd)
	case KindStructuredArray:
		return e.encodeStructuredArray(v.sa)
	case KindArray:
		if v.arrElemSet {
			return e.encodeArrayForced(v.arrElem, v.arr)
		}

		return e.encodeArrayValue(v.arr)
	case KindObject:
		return e.encodeObject(v.obj)
	default:
		return newEncoderError("cannot encode Value of kind %s", v.kind)
	}
}

// --- strings, chars, high-precision decimals ---------------------------

func (e *encoder) encodeString(s string) error {
	if len(s) == 1 && s[0] < 0x80 {
		return e.encodeCharByte(s[0])
	}

	return e.writeLengthPrefixedMarked(marker.String, s)
}

func (e *encoder) encodeCharByte(b byte) error {
	if err := e.writeMarker(marker.Char); err != nil {
		return err
	}

	return e.writeBytes([]byte{b})
}

func (e *encoder) writeLengthPrefixedMarked(m marker.Marker, s string) error {
	if err := e.writeMarker(m); err != nil {
		return err
	}

	return e.writeLengthPrefixed(s)
}

// writeLengthPrefixed writes an integer count followed by s's raw
// bytes, with no marker of its own. The form used for both String
// bodies and object/schema key bytes.
func (e *encoder) writeLengthPrefixed(s string) error {
	if err := e.encodeUnsignedInt(uint64(len(s))); err != nil {
		return err
	}

	return e.writeBytes([]byte(s))
}

func (e *encoder) encodeHighPrecText(text string) error {
	if f, err := strconv.ParseFloat(text, 64); err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		// Non-finite decimals map to Null.
		return e.writeMarker(marker.Null)
	}

	return e.writeHighPrecRaw(text)
}

// writeHighPrecRaw writes text under the HighPrec marker
// unconditionally, skipping encodeHighPrecText's non-finite-to-Null
// rule. Used by encodeFloatValue's NaN/±Inf/subnormal fallback, where
// the sentinel text itself ("nan", "inf", "-inf") would otherwise parse
// back as non-finite and collide with the rule meant for user-supplied
// HighPrec decimal literals.
func (e *encoder) writeHighPrecRaw(text string) error {
	return e.writeLengthPrefixedMarked(marker.HighPrec, text)
}

// --- integers ------------------------------------------------------------

func (e *encoder) encodeSignedIntIfInt(v any) (bool, error) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true, e.encodeSignedInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true, e.encodeUnsignedInt(rv.Uint())
	default:
		return false, nil
	}
}

func (e *encoder) encodeInt(v Value) error {
	if v.unsigned {
		return e.encodeUnsignedInt(v.u)
	}

	return e.encodeSignedInt(v.i)
}

func (e *encoder) encodeSignedInt(n int64) error {
	if n >= 0 {
		return e.encodeUnsignedInt(uint64(n))
	}

	m := ChooseIntMarker(n, e.cfg.Strict)
	width, _ := marker.Width(m)

	if err := e.writeMarker(m); err != nil {
		return err
	}

	packed, err := numeric.PackInt(e.cfg.Engine, nil, width, true, n)
	if err != nil {
		return newEncoderError("%v", err)
	}

	return e.writeBytes(packed)
}

func (e *encoder) encodeUnsignedInt(u uint64) error {
	m, ok := ChooseUintMarker(u, e.cfg.Strict)
	if !ok {
		// strict UBJSON mode, value exceeds Int64 range.
		return e.encodeHighPrecText(strconv.FormatUint(u, 10))
	}

	if err := e.writeMarker(m); err != nil {
		return err
	}

	if m == marker.UInt64 {
		return e.writeBytes(numeric.PackUint64(e.cfg.Engine, nil, u))
	}

	width, _ := marker.Width(m)
	signed := !marker.IsUnsigned(m)

	packed, err := numeric.PackInt(e.cfg.Engine, nil, width, signed, int64(u))
	if err != nil {
		return newEncoderError("%v", err)
	}

	return e.writeBytes(packed)
}

// --- floats ----------------------------------------------------------------

func (e *encoder) encodeFloatIfFloat(v any) (bool, error) {
	switch f := v.(type) {
	case float32:
		return true, e.encodeFloatValue(Float32Val(f))
	case float64:
		return true, e.encodeFloatValue(Float64Val(f))
	default:
		return false, nil
	}
}

func (e *encoder) encodeFloatValue(v Value) error {
	f := v.f

	if v.fwidth != 0 {
		return e.writeFixedFloat(widthMarker(v.fwidth), f)
	}

	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		if e.cfg.Strict {
			return e.writeMarker(marker.Null)
		}

		return e.writeHighPrecRaw(NonFiniteText(f))
	case f == 0:
		return e.writeFixedFloat(marker.Float32, f)
	case IsSubnormalFloat64(f):
		return e.writeHighPrecRaw(strconv.FormatFloat(f, 'g', -1, 64))
	default:
		if !e.cfg.NoFloat32 && WithinFloat32Range(f) {
			return e.writeFixedFloat(marker.Float32, f)
		}

		return e.writeFixedFloat(marker.Float64, f)
	}
}

func widthMarker(width int) marker.Marker {
	switch width {
	case 16:
		return marker.Float16
	case 32:
		return marker.Float32
	default:
		return marker.Float64
	}
}

func (e *encoder) writeFixedFloat(m marker.Marker, f float64) error {
	if err := e.writeMarker(m); err != nil {
		return err
	}

	switch m {
	case marker.Float16:
		return e.writeBytes(numeric.PackFloat16(e.cfg.Engine, nil, float32(f)))
	case marker.Float32:
		return e.writeBytes(numeric.PackFloat32(e.cfg.Engine, nil, float32(f)))
	default:
		return e.writeBytes(numeric.PackFloat64(e.cfg.Engine, nil, f))
	}
}

// --- bytes -------------------------------------------------------------

func (e *encoder) encodeBytesNative(b []byte) error {
	if !e.cfg.Uint8Bytes {
		elems := make([]any, len(b))
		for i, x := range b {
			elems[i] = x
		}

		return e.encodeSliceAny(elems)
	}

	if err := e.writeMarker(marker.ArrayStart); err != nil {
		return err
	}

	if err := e.writeMarker(marker.ContainerType); err != nil {
		return err
	}

	if err := e.writeMarker(marker.UInt8); err != nil {
		return err
	}

	if err := e.writeMarker(marker.ContainerCount); err != nil {
		return err
	}

	if err := e.encodeUnsignedInt(uint64(len(b))); err != nil {
		return err
	}

	return e.writeBytes(b)
}

// --- cycle/recursion guard -------------------------------------------------

func (e *encoder) enterComposite(v any) (func(), error) {
	leave, err := e.guard.Enter(v)
	if err != nil {
		if errors.Is(err, cycleguard.ErrCircularReference) {
			return nil, newEncoderError("circular reference detected")
		}

		return nil, newRecursionError("recursion limit exceeded")
	}

	return leave, nil
}

// --- sequences -------------------------------------------------------------

func (e *encoder) encodeSliceAny(s []any) error {
	leave, err := e.enterComposite(s)
	if err != nil {
		return err
	}
	defer leave()

	if ok, err := e.tryWriteSTCNative(s); ok {
		return err
	}

	return e.writeSequence(len(s), func(i int) error { return e.encode(s[i]) })
}

func (e *encoder) encodeArrayValue(arr []Value) error {
	leave, err := e.enterComposite(arr)
	if err != nil {
		return err
	}
	defer leave()

	if ok, err := e.tryWriteSTCValues(arr); ok {
		return err
	}

	return e.writeSequence(len(arr), func(i int) error { return e.encodeValue(arr[i]) })
}

// encodeArrayForced honors an explicit declared element marker
// (ArrayOfTyped), forcing the STC form regardless of container_count.
func (e *encoder) encodeArrayForced(elem marker.Marker, arr []Value) error {
	leave, err := e.enterComposite(arr)
	if err != nil {
		return err
	}
	defer leave()

	if err := e.writeMarker(marker.ArrayStart); err != nil {
		return err
	}

	if err := e.writeMarker(marker.ContainerType); err != nil {
		return err
	}

	if err := e.writeMarker(elem); err != nil {
		return err
	}

	if err := e.writeMarker(marker.ContainerCount); err != nil {
		return err
	}

	if err := e.encodeUnsignedInt(uint64(len(arr))); err != nil {
		return err
	}

	for _, el := range arr {
		if err := e.writeBareScalar(elem, el); err != nil {
			return err
		}
	}

	return nil
}

func (e *encoder) writeSequence(n int, writeElem func(int) error) error {
	if err := e.writeMarker(marker.ArrayStart); err != nil {
		return err
	}

	if e.cfg.ContainerCount {
		if err := e.writeMarker(marker.ContainerCount); err != nil {
			return err
		}

		if err := e.encodeUnsignedInt(uint64(n)); err != nil {
			return err
		}

		for i := range n {
			if err := writeElem(i); err != nil {
				return err
			}
		}

		return nil
	}

	for i := range n {
		if err := writeElem(i); err != nil {
			return err
		}
	}

	return e.writeMarker(marker.ArrayEnd)
}

// --- STC optimization ------------------------------------------------------

// tryWriteSTCValues scans arr for a uniform fixed-width numeric marker
// and, if found, emits the `$ <marker> # <count>` form with no
// per-element markers. ok is false when the scan finds the sequence
// ineligible, in which case the caller falls back to the general path.
func (e *encoder) tryWriteSTCValues(arr []Value) (ok bool, err error) {
	if len(arr) == 0 {
		return false, nil
	}

	m, ok := e.stcMarkerFor(arr[0])
	if !ok {
		return false, nil
	}

	for _, el := range arr[1:] {
		mm, elOK := e.stcMarkerFor(el)
		if !elOK || mm != m {
			return false, nil
		}
	}

	if err := e.writeMarker(marker.ArrayStart); err != nil {
		return true, err
	}

	if err := e.writeMarker(marker.ContainerType); err != nil {
		return true, err
	}

	if err := e.writeMarker(m); err != nil {
		return true, err
	}

	if err := e.writeMarker(marker.ContainerCount); err != nil {
		return true, err
	}

	if err := e.encodeUnsignedInt(uint64(len(arr))); err != nil {
		return true, err
	}

	for _, el := range arr {
		if err := e.writeBareScalar(m, el); err != nil {
			return true, err
		}
	}

	return true, nil
}

// tryWriteSTCNative mirrors tryWriteSTCValues for a native []any
// sequence of plain Go numbers.
func (e *encoder) tryWriteSTCNative(s []any) (ok bool, err error) {
	values := make([]Value, len(s))

	for i, v := range s {
		switch n := v.(type) {
		case int, int8, int16, int32, int64:
			values[i] = Int64(reflect.ValueOf(n).Int())
		case uint, uint8, uint16, uint32, uint64, uintptr:
			values[i] = Uint64(reflect.ValueOf(n).Uint())
		case float32:
			values[i] = Float32Val(n)
		case float64:
			values[i] = Float64Val(n)
		default:
			return false, nil
		}
	}

	return e.tryWriteSTCValues(values)
}

// stcMarkerFor reports the marker a scalar Value would choose, for STC
// eligibility scanning. ok is false for non-numeric kinds or numeric
// values that don't resolve to a fixed-width marker (HighPrec fallback).
func (e *encoder) stcMarkerFor(v Value) (marker.Marker, bool) {
	switch v.kind {
	case KindInt:
		if v.unsigned {
			m, ok := ChooseUintMarker(v.u, e.cfg.Strict)

			return m, ok
		}

		return ChooseIntMarker(v.i, e.cfg.Strict), true
	case KindFloat:
		if v.fwidth != 0 {
			return widthMarker(v.fwidth), true
		}

		f := v.f
		switch {
		case math.IsNaN(f) || math.IsInf(f, 0), IsSubnormalFloat64(f):
			return 0, false
		case f == 0:
			return marker.Float32, true
		case !e.cfg.NoFloat32 && WithinFloat32Range(f):
			return marker.Float32, true
		default:
			return marker.Float64, true
		}
	default:
		return 0, false
	}
}

// writeBareScalar writes v's payload under a declared marker m, with no
// marker byte of its own (the STC/forced-type body form).
func (e *encoder) writeBareScalar(m marker.Marker, v Value) error {
	switch m {
	case marker.Char:
		return e.writeBytes([]byte{v.ch})
	case marker.Float16:
		return e.writeBytes(numeric.PackFloat16(e.cfg.Engine, nil, float32(v.f)))
	case marker.Float32:
		return e.writeBytes(numeric.PackFloat32(e.cfg.Engine, nil, float32(v.f)))
	case marker.Float64:
		return e.writeBytes(numeric.PackFloat64(e.cfg.Engine, nil, v.f))
	case marker.UInt64:
		return e.writeBytes(numeric.PackUint64(e.cfg.Engine, nil, v.Uint64()))
	default:
		width, ok := marker.Width(m)
		if !ok {
			return newEncoderError("unsupported STC element marker %s", m)
		}

		packed, err := numeric.PackInt(e.cfg.Engine, nil, width, !marker.IsUnsigned(m), v.Int64())
		if err != nil {
			return newEncoderError("%v", err)
		}

		return e.writeBytes(packed)
	}
}

// --- mappings --------------------------------------------------------------

// objEntry defers a mapping entry's value encoding so encodeMapAny and
// encodeObject can share one writer without building an intermediate
// Value tree for native map values.
type objEntry struct {
	key string
	enc func() error
}

func (e *encoder) encodeObject(obj Object) error {
	leave, err := e.enterComposite(obj)
	if err != nil {
		return err
	}
	defer leave()

	if e.cfg.SortKeys {
		obj = sortObjectKeys(obj)
	}

	entries := make([]objEntry, len(obj))
	for i, kv := range obj {
		kv := kv
		entries[i] = objEntry{key: kv.Key, enc: func() error { return e.encodeValue(kv.Val) }}
	}

	return e.writeObjectEntries(entries)
}

func (e *encoder) encodeMapAny(m map[string]any) error {
	leave, err := e.enterComposite(m)
	if err != nil {
		return err
	}
	defer leave()

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	if e.cfg.SortKeys {
		sort.Strings(keys)
	}

	entries := make([]objEntry, len(keys))
	for i, k := range keys {
		k := k
		entries[i] = objEntry{key: k, enc: func() error { return e.encode(m[k]) }}
	}

	return e.writeObjectEntries(entries)
}

func (e *encoder) writeObjectEntries(entries []objEntry) error {
	if err := e.writeMarker(marker.ObjectStart); err != nil {
		return err
	}

	if e.cfg.ContainerCount {
		if err := e.writeMarker(marker.ContainerCount); err != nil {
			return err
		}

		if err := e.encodeUnsignedInt(uint64(len(entries))); err != nil {
			return err
		}

		for _, ent := range entries {
			if err := e.writeLengthPrefixed(ent.key); err != nil {
				return err
			}

			if err := ent.enc(); err != nil {
				return err
			}
		}

		return nil
	}

	for _, ent := range entries {
		if err := e.writeLengthPrefixed(ent.key); err != nil {
			return err
		}

		if err := ent.enc(); err != nil {
			return err
		}
	}

	return e.writeMarker(marker.ObjectEnd)
}

// --- generic reflect fallback ----------------------------------------------

// encodeReflectComposite handles Go slice/array/map values not already
// matched by encode's concrete-type cases: e.g. []int, [4]float64,
// map[string]int. Mapping-like values with a non-string key type are
// rejected.
func (e *encoder) encodeReflectComposite(v any) (bool, error) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}

		return true, e.encodeSliceAny(elems)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return true, newEncoderError("Mapping keys can only be strings")
		}

		leave, err := e.enterComposite(v)
		if err != nil {
			return true, err
		}
		defer leave()

		keys := rv.MapKeys()
		names := make([]string, len(keys))

		for i, k := range keys {
			names[i] = k.String()
		}

		if e.cfg.SortKeys {
			sort.Strings(names)
		} else {
			sort.SliceStable(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
			for i, k := range keys {
				names[i] = k.String()
			}
		}

		entries := make([]objEntry, len(names))
		for i, name := range names {
			mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key())).Interface()
			entries[i] = objEntry{key: name, enc: func() error { return e.encode(mv) }}
		}

		return true, e.writeObjectEntries(entries)
	default:
		return false, nil
	}
}
