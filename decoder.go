package bjdata

import (
	"math"
	"unicode/utf8"

	"github.com/neurojson/bjdata-go/internal/keyintern"
	"github.com/neurojson/bjdata-go/marker"
	"github.com/neurojson/bjdata-go/numeric"
	"github.com/neurojson/bjdata-go/reader"
)

// maxDecodeDepth bounds nested composite depth during decode as a
// stack-overflow safety valve.
const maxDecodeDepth = 100_000

// decoder is a grammar-directed pull parser reconstructing exactly one
// Value per top-level decode call. It never looks ahead more than one
// marker byte.
//
// A decoder is owned by a single top-level Load/Loadb call; it is not
// safe for concurrent use.
type decoder struct {
	cfg      *DecodeConfig
	src      *reader.Source
	interner *keyintern.Table
}

func newDecoder(cfg *DecodeConfig, src *reader.Source) *decoder {
	d := &decoder{cfg: cfg, src: src}
	if cfg.InternObjectKeys {
		d.interner = keyintern.New()
	}

	return d
}

func (d *decoder) decode() (Value, error) {
	return d.decodeValue(0)
}

func (d *decoder) read(n int) ([]byte, error) {
	b, err := d.src.Read(n)
	if err != nil {
		return nil, newDecoderError(err, "unexpected end of input")
	}

	return b, nil
}

func (d *decoder) readByte() (byte, error) {
	b, err := d.src.ReadByte()
	if err != nil {
		return 0, newDecoderError(err, "unexpected end of input")
	}

	return b, nil
}

func (d *decoder) peek() (byte, error) {
	b, err := d.src.Peek()
	if err != nil {
		return 0, newDecoderError(err, "unexpected end of input")
	}

	return b, nil
}

func (d *decoder) readMarker() (marker.Marker, error) {
	b, err := d.readByte()

	return marker.Marker(b), err
}

// decodeValue reads one marker and dispatches on it.
func (d *decoder) decodeValue(depth int) (Value, error) {
	if depth > maxDecodeDepth {
		return Value{}, newDecoderError(nil, "recursion limit exceeded while decoding")
	}

	m, err := d.readMarker()
	if err != nil {
		return Value{}, err
	}

	switch m {
	case marker.Null:
		return Null(), nil
	case marker.BoolTrue:
		return Bool(true), nil
	case marker.BoolFalse:
		return Bool(false), nil
	case marker.Char:
		b, err := d.readByte()
		if err != nil {
			return Value{}, err
		}

		return CharByte(b), nil
	case marker.String:
		s, err := d.readLengthPrefixedString()
		if err != nil {
			return Value{}, err
		}

		return Str(s), nil
	case marker.HighPrec:
		s, err := d.readLengthPrefixedString()
		if err != nil {
			return Value{}, err
		}

		return d.decodeHighPrecText(s), nil
	case marker.ArrayStart:
		return d.decodeArray(depth + 1)
	case marker.ObjectStart:
		return d.decodeObject(depth + 1)
	default:
		if marker.IsInt(m) || marker.IsFloat(m) {
			return d.readBareScalar(m)
		}

		return Value{}, newDecoderError(nil, "unknown marker %#x", byte(m))
	}
}

// decodeHighPrecText reconstructs the encoder's non-finite-float
// HighPrec fallback back into a Float Value, so
// decode(encode(NaN)) round-trips; any other text stays a HighPrec
// Value.
func (d *decoder) decodeHighPrecText(text string) Value {
	switch text {
	case "nan":
		return Float64Val(math.NaN())
	case "inf":
		return Float64Val(math.Inf(1))
	case "-inf":
		return Float64Val(math.Inf(-1))
	default:
		return HighPrecText(text)
	}
}

// readLengthPrefixedString reads a marker-prefixed integer count
// followed by that many UTF-8 bytes, validating them.
func (d *decoder) readLengthPrefixedString() (string, error) {
	n, err := d.readIntValue()
	if err != nil {
		return "", err
	}

	if n < 0 {
		return "", newDecoderError(nil, "negative length %d", n)
	}

	if n > int64(d.cfg.MaxContainerCount) {
		return "", newDecoderError(nil, "length %d exceeds configured maximum %d", n, d.cfg.MaxContainerCount)
	}

	buf, err := d.read(int(n))
	if err != nil {
		return "", err
	}

	if !utf8.Valid(buf) {
		return "", newDecoderError(nil, "invalid UTF-8")
	}

	return string(buf), nil
}

func (d *decoder) readKey() (string, error) {
	s, err := d.readLengthPrefixedString()
	if err != nil {
		return "", err
	}

	if d.interner != nil {
		return d.interner.Intern(s), nil
	}

	return s, nil
}

// readIntValue reads one full marker-prefixed integer value, used for
// counts, shape dimensions, and string/key lengths.
func (d *decoder) readIntValue() (int64, error) {
	m, err := d.readMarker()
	if err != nil {
		return 0, err
	}

	if !marker.IsInt(m) {
		return 0, newDecoderError(nil, "expected integer marker, got %s", m)
	}

	v, err := d.readBareScalar(m)
	if err != nil {
		return 0, err
	}

	if v.IsUnsigned() {
		if v.Uint64() > math.MaxInt64 {
			return 0, newDecoderError(nil, "count/length exceeds supported range")
		}

		return int64(v.Uint64()), nil
	}

	return v.Int64(), nil
}

// readBareScalar reads a scalar value's payload given its already-
// consumed marker byte m, with no further marker of its own — the STC,
// NDArray, and structured-array element form.
func (d *decoder) readBareScalar(m marker.Marker) (Value, error) {
	switch m {
	case marker.Char:
		b, err := d.readByte()
		if err != nil {
			return Value{}, err
		}

		return CharByte(b), nil
	case marker.Float16:
		buf, err := d.read(2)
		if err != nil {
			return Value{}, err
		}

		return Float32Val(numeric.UnpackFloat16(d.cfg.Engine, buf)).FloatWidth(16), nil
	case marker.Float32:
		buf, err := d.read(4)
		if err != nil {
			return Value{}, err
		}

		return Float32Val(numeric.UnpackFloat32(d.cfg.Engine, buf)), nil
	case marker.Float64:
		buf, err := d.read(8)
		if err != nil {
			return Value{}, err
		}

		return Float64Val(numeric.UnpackFloat64(d.cfg.Engine, buf)).FloatWidth(64), nil
	case marker.UInt64:
		buf, err := d.read(8)
		if err != nil {
			return Value{}, err
		}

		return Uint64(numeric.UnpackUint64(d.cfg.Engine, buf)), nil
	default:
		width, ok := marker.Width(m)
		if !ok {
			return Value{}, newDecoderError(nil, "unsupported scalar marker %s", m)
		}

		buf, err := d.read(width)
		if err != nil {
			return Value{}, err
		}

		signed := !marker.IsUnsigned(m)

		val, err := numeric.UnpackInt(d.cfg.Engine, buf, width, signed)
		if err != nil {
			return Value{}, newDecoderError(err, "unpacking %s", m)
		}

		if !signed {
			return Uint64(uint64(val)), nil
		}

		return Int64(val), nil
	}
}

// --- arrays / NDArrays -----------------------------------------------------

func (d *decoder) decodeArray(depth int) (Value, error) {
	b, err := d.peek()
	if err != nil {
		return Value{}, err
	}

	switch marker.Marker(b) {
	case marker.ContainerType:
		d.readByte() //nolint:errcheck // byte already peeked successfully

		return d.decodeDeclaredArray(depth)
	case marker.ContainerCount:
		d.readByte() //nolint:errcheck

		return d.decodeCountedArray(depth)
	default:
		return d.decodeTerminatedArray(depth)
	}
}

func (d *decoder) decodeDeclaredArray(depth int) (Value, error) {
	nb, err := d.peek()
	if err != nil {
		return Value{}, err
	}

	if marker.Marker(nb) == marker.ObjectStart {
		fields, err := d.readSchema()
		if err != nil {
			return Value{}, err
		}

		count, err := d.readSOACount()
		if err != nil {
			return Value{}, err
		}

		return d.decodeSOABody(SOARow, fields, count)
	}

	elem, err := d.readMarker()
	if err != nil {
		return Value{}, err
	}

	cb, err := d.peek()
	if err != nil {
		return Value{}, err
	}

	if marker.Marker(cb) != marker.ContainerCount {
		return Value{}, newDecoderError(nil, "STC array missing '#' count prefix after declared type")
	}

	d.readByte() //nolint:errcheck

	isShape, dims, err := d.readCountOrShape()
	if err != nil {
		return Value{}, err
	}

	if isShape {
		return d.decodeNDArrayBody(elem, dims)
	}

	return d.decodeSTCArrayBody(elem, dims[0])
}

func (d *decoder) decodeCountedArray(depth int) (Value, error) {
	isShape, dims, err := d.readCountOrShape()
	if err != nil {
		return Value{}, err
	}

	if isShape {
		return Value{}, newDecoderError(nil, "shape prefix requires a declared element type")
	}

	count := dims[0]
	if count > d.cfg.MaxContainerCount {
		return Value{}, newDecoderError(nil, "declared count %d exceeds configured maximum %d", count, d.cfg.MaxContainerCount)
	}

	elems := make([]Value, count)
	for i := range elems {
		v, err := d.decodeValue(depth)
		if err != nil {
			return Value{}, err
		}

		elems[i] = v
	}

	return ArrayOf(elems...), nil
}

func (d *decoder) decodeTerminatedArray(depth int) (Value, error) {
	var elems []Value

	for {
		nb, err := d.peek()
		if err != nil {
			return Value{}, err
		}

		if marker.Marker(nb) == marker.ArrayEnd {
			d.readByte() //nolint:errcheck

			break
		}

		v, err := d.decodeValue(depth)
		if err != nil {
			return Value{}, err
		}

		elems = append(elems, v)
	}

	return ArrayOf(elems...), nil
}

// readCountOrShape reads either a bare count (a single marker-prefixed
// integer) or a shape (an `[ d1 ... dk ]` run), distinguishing NDArrays
// from flat strongly-typed arrays.
func (d *decoder) readCountOrShape() (isShape bool, dims []int, err error) {
	b, err := d.peek()
	if err != nil {
		return false, nil, err
	}

	if marker.Marker(b) != marker.ArrayStart {
		n, err := d.readIntValue()
		if err != nil {
			return false, nil, err
		}

		if n < 0 {
			return false, nil, newDecoderError(nil, "declared count must be non-negative, got %d", n)
		}

		return false, []int{int(n)}, nil
	}

	d.readByte() //nolint:errcheck

	for {
		nb, err := d.peek()
		if err != nil {
			return false, nil, err
		}

		if marker.Marker(nb) == marker.ArrayEnd {
			d.readByte() //nolint:errcheck

			break
		}

		n, err := d.readIntValue()
		if err != nil {
			return false, nil, err
		}

		if n <= 0 {
			return false, nil, newDecoderError(nil, "NDArray shape dimensions must be positive integers")
		}

		dims = append(dims, int(n))
	}

	return true, dims, nil
}

func (d *decoder) decodeSTCArrayBody(elem marker.Marker, count int) (Value, error) {
	if count > d.cfg.MaxContainerCount {
		return Value{}, newDecoderError(nil, "declared count %d exceeds configured maximum %d", count, d.cfg.MaxContainerCount)
	}

	if elem == marker.UInt8 && !d.cfg.NoBytes {
		raw, err := d.read(count)
		if err != nil {
			return Value{}, err
		}

		return BytesOf(append([]byte(nil), raw...)), nil
	}

	elems := make([]Value, count)

	for i := range elems {
		v, err := d.readBareScalar(elem)
		if err != nil {
			return Value{}, err
		}

		elems[i] = v
	}

	return ArrayOfTyped(elem, elems...), nil
}

func (d *decoder) decodeNDArrayBody(elem marker.Marker, shape []int) (Value, error) {
	dims := shape
	charWidth := 0

	if elem == marker.Char {
		if len(shape) == 0 {
			return Value{}, newDecoderError(nil, "Char NDArray requires a width dimension")
		}

		charWidth = shape[len(shape)-1]
		dims = shape[:len(shape)-1]
	}

	total := 1
	for _, n := range dims {
		total *= n
	}

	if elem == marker.Char && len(dims) == 0 {
		total = 1
	}

	if total > d.cfg.MaxShapeProduct {
		return Value{}, newDecoderError(nil, "NDArray shape product %d exceeds configured maximum %d", total, d.cfg.MaxShapeProduct)
	}

	if elem == marker.Char {
		strs := make([]string, total)

		for i := range strs {
			buf, err := d.read(charWidth)
			if err != nil {
				return Value{}, err
			}

			strs[i] = trimTrailingZeros(buf)
		}

		return NDArrayOf(&NDArray{Shape: dims, Elem: elem, Values: strs, CharWidth: charWidth}), nil
	}

	values, err := d.readDenseValues(elem, total)
	if err != nil {
		return Value{}, err
	}

	return NDArrayOf(&NDArray{Shape: dims, Elem: elem, Values: values}), nil
}

func trimTrailingZeros(buf []byte) string {
	idx := len(buf)
	for idx > 0 && buf[idx-1] == 0 {
		idx--
	}

	return string(buf[:idx])
}

// readDenseValues reads n elements of a dense, marker-less payload into
// a typed Go slice matching elem.
func (d *decoder) readDenseValues(elem marker.Marker, n int) (any, error) {
	engine := d.cfg.Engine

	switch elem {
	case marker.Int8:
		out := make([]int8, n)
		for i := range out {
			b, err := d.read(1)
			if err != nil {
				return nil, err
			}

			out[i] = int8(b[0])
		}

		return out, nil
	case marker.UInt8:
		out := make([]uint8, n)
		for i := range out {
			b, err := d.read(1)
			if err != nil {
				return nil, err
			}

			out[i] = b[0]
		}

		return out, nil
	case marker.Int16:
		out := make([]int16, n)
		for i := range out {
			b, err := d.read(2)
			if err != nil {
				return nil, err
			}

			v, _ := numeric.UnpackInt(engine, b, 2, true)
			out[i] = int16(v)
		}

		return out, nil
	case marker.UInt16:
		out := make([]uint16, n)
		for i := range out {
			b, err := d.read(2)
			if err != nil {
				return nil, err
			}

			v, _ := numeric.UnpackInt(engine, b, 2, false)
			out[i] = uint16(v)
		}

		return out, nil
	case marker.Int32:
		out := make([]int32, n)
		for i := range out {
			b, err := d.read(4)
			if err != nil {
				return nil, err
			}

			v, _ := numeric.UnpackInt(engine, b, 4, true)
			out[i] = int32(v)
		}

		return out, nil
	case marker.UInt32:
		out := make([]uint32, n)
		for i := range out {
			b, err := d.read(4)
			if err != nil {
				return nil, err
			}

			v, _ := numeric.UnpackInt(engine, b, 4, false)
			out[i] = uint32(v)
		}

		return out, nil
	case marker.Int64:
		out := make([]int64, n)
		for i := range out {
			b, err := d.read(8)
			if err != nil {
				return nil, err
			}

			v, _ := numeric.UnpackInt(engine, b, 8, true)
			out[i] = v
		}

		return out, nil
	case marker.UInt64:
		out := make([]uint64, n)
		for i := range out {
			b, err := d.read(8)
			if err != nil {
				return nil, err
			}

			out[i] = numeric.UnpackUint64(engine, b)
		}

		return out, nil
	case marker.Float16:
		out := make([]float32, n)
		for i := range out {
			b, err := d.read(2)
			if err != nil {
				return nil, err
			}

			out[i] = numeric.UnpackFloat16(engine, b)
		}

		return out, nil
	case marker.Float32:
		out := make([]float32, n)
		if n > 0 {
			b, err := d.read(4 * n)
			if err != nil {
				return nil, err
			}

			numeric.UnpackFloat32Slice(engine, b, out)
		}

		return out, nil
	case marker.Float64:
		out := make([]float64, n)
		if n > 0 {
			b, err := d.read(8 * n)
			if err != nil {
				return nil, err
			}

			numeric.UnpackFloat64Slice(engine, b, out)
		}

		return out, nil
	default:
		return nil, newDecoderError(nil, "unsupported NDArray element marker %s", elem)
	}
}

// --- objects ----------------------------------------------------------------

func (d *decoder) decodeObject(depth int) (Value, error) {
	b, err := d.peek()
	if err != nil {
		return Value{}, err
	}

	switch marker.Marker(b) {
	case marker.ContainerType:
		d.readByte() //nolint:errcheck

		return d.decodeDeclaredObject(depth)
	case marker.ContainerCount:
		d.readByte() //nolint:errcheck

		return d.decodeCountedObject(depth)
	default:
		return d.decodeTerminatedObject(depth)
	}
}

func (d *decoder) decodeDeclaredObject(depth int) (Value, error) {
	nb, err := d.peek()
	if err != nil {
		return Value{}, err
	}

	if marker.Marker(nb) == marker.ObjectStart {
		fields, err := d.readSchema()
		if err != nil {
			return Value{}, err
		}

		count, err := d.readSOACount()
		if err != nil {
			return Value{}, err
		}

		return d.decodeSOABody(SOAColumn, fields, count)
	}

	elem, err := d.readMarker()
	if err != nil {
		return Value{}, err
	}

	cb, err := d.peek()
	if err != nil {
		return Value{}, err
	}

	if marker.Marker(cb) != marker.ContainerCount {
		return Value{}, newDecoderError(nil, "STC object missing '#' count prefix after declared type")
	}

	d.readByte() //nolint:errcheck

	isShape, dims, err := d.readCountOrShape()
	if err != nil {
		return Value{}, err
	}

	if isShape {
		return Value{}, newDecoderError(nil, "object declared type does not support a shape prefix")
	}

	return d.decodeObjectTypedBody(elem, dims[0])
}

func (d *decoder) decodeObjectTypedBody(elem marker.Marker, count int) (Value, error) {
	if count > d.cfg.MaxContainerCount {
		return Value{}, newDecoderError(nil, "declared count %d exceeds configured maximum %d", count, d.cfg.MaxContainerCount)
	}

	obj := make(Object, 0, count)
	seen := make(map[string]int, count)

	for range count {
		key, err := d.readKey()
		if err != nil {
			return Value{}, err
		}

		val, err := d.readBareScalar(elem)
		if err != nil {
			return Value{}, err
		}

		obj = d.appendKV(obj, seen, key, val)
	}

	return ObjectOf(obj), nil
}

func (d *decoder) decodeCountedObject(depth int) (Value, error) {
	isShape, dims, err := d.readCountOrShape()
	if err != nil {
		return Value{}, err
	}

	if isShape {
		return Value{}, newDecoderError(nil, "object count must not be a shape")
	}

	count := dims[0]
	if count > d.cfg.MaxContainerCount {
		return Value{}, newDecoderError(nil, "declared count %d exceeds configured maximum %d", count, d.cfg.MaxContainerCount)
	}

	obj := make(Object, 0, count)
	seen := make(map[string]int, count)

	for range count {
		key, err := d.readKey()
		if err != nil {
			return Value{}, err
		}

		val, err := d.decodeValue(depth)
		if err != nil {
			return Value{}, err
		}

		obj = d.appendKV(obj, seen, key, val)
	}

	return ObjectOf(obj), nil
}

func (d *decoder) decodeTerminatedObject(depth int) (Value, error) {
	var obj Object

	seen := make(map[string]int)

	for {
		nb, err := d.peek()
		if err != nil {
			return Value{}, err
		}

		if marker.Marker(nb) == marker.ObjectEnd {
			d.readByte() //nolint:errcheck

			break
		}

		key, err := d.readKey()
		if err != nil {
			return Value{}, err
		}

		val, err := d.decodeValue(depth)
		if err != nil {
			return Value{}, err
		}

		obj = d.appendKV(obj, seen, key, val)
	}

	return ObjectOf(obj), nil
}

// appendKV resolves duplicate keys: last-wins by default, first-wins
// when cfg.DuplicateKeyLastWins is false.
func (d *decoder) appendKV(obj Object, seen map[string]int, key string, val Value) Object {
	if idx, ok := seen[key]; ok {
		if d.cfg.DuplicateKeyLastWins {
			obj[idx].Val = val
		}

		return obj
	}

	obj = append(obj, KV{Key: key, Val: val})
	seen[key] = len(obj) - 1

	return obj
}

// --- structured arrays / SOA -----------------------------------------------

// readSchema consumes the `{...}` schema object following `$`: an
// Object whose entries are `<name-len><name-bytes><type-marker>`.
func (d *decoder) readSchema() ([]FieldSpec, error) {
	if _, err := d.readByte(); err != nil { // consume the schema's own '{'
		return nil, err
	}

	var fields []FieldSpec

	for {
		b, err := d.peek()
		if err != nil {
			return nil, err
		}

		if marker.Marker(b) == marker.ObjectEnd {
			d.readByte() //nolint:errcheck

			break
		}

		name, err := d.readKey()
		if err != nil {
			return nil, err
		}

		mb, err := d.readByte()
		if err != nil {
			return nil, err
		}

		fields = append(fields, FieldSpec{Name: name, Elem: marker.Marker(mb)})
	}

	return fields, nil
}

func (d *decoder) readSOACount() (int, error) {
	cb, err := d.peek()
	if err != nil {
		return 0, err
	}

	if marker.Marker(cb) != marker.ContainerCount {
		return 0, newDecoderError(nil, "SOA schema missing '#' count prefix")
	}

	d.readByte() //nolint:errcheck

	isShape, dims, err := d.readCountOrShape()
	if err != nil {
		return 0, err
	}

	if isShape {
		return 0, newDecoderError(nil, "structured array count must not be a shape")
	}

	return dims[0], nil
}

func (d *decoder) decodeSOABody(format SOAFormat, fields []FieldSpec, count int) (Value, error) {
	if count > d.cfg.MaxContainerCount {
		return Value{}, newDecoderError(nil, "declared count %d exceeds configured maximum %d", count, d.cfg.MaxContainerCount)
	}

	cols := make([]any, len(fields))

	if format == SOARow {
		for fi, f := range fields {
			cols[fi] = d.allocFieldColumn(f.Elem, count)
		}

		for i := range count {
			for fi, f := range fields {
				if err := d.readFieldInto(f.Elem, cols[fi], i); err != nil {
					return Value{}, err
				}
			}
		}

		return StructuredArrayOf(&StructuredArray{Fields: fields, Count: count, Columns: cols}), nil
	}

	for fi, f := range fields {
		col, err := d.readFieldColumn(f.Elem, count)
		if err != nil {
			return Value{}, err
		}

		cols[fi] = col
	}

	return StructuredArrayOf(&StructuredArray{Fields: fields, Count: count, Columns: cols}), nil
}

func (d *decoder) readFieldColumn(elem marker.Marker, count int) (any, error) {
	if elem == boolFieldMarker {
		out := make([]bool, count)

		for i := range out {
			m, err := d.readMarker()
			if err != nil {
				return nil, err
			}

			switch m {
			case marker.BoolTrue:
				out[i] = true
			case marker.BoolFalse:
				out[i] = false
			default:
				return nil, newDecoderError(nil, "expected bool marker in structured-array field, got %s", m)
			}
		}

		return out, nil
	}

	return d.readDenseValues(elem, count)
}

func (d *decoder) allocFieldColumn(elem marker.Marker, count int) any {
	if elem == boolFieldMarker {
		return make([]bool, count)
	}

	switch elem {
	case marker.Int8:
		return make([]int8, count)
	case marker.UInt8:
		return make([]uint8, count)
	case marker.Int16:
		return make([]int16, count)
	case marker.UInt16:
		return make([]uint16, count)
	case marker.Int32:
		return make([]int32, count)
	case marker.UInt32:
		return make([]uint32, count)
	case marker.Int64:
		return make([]int64, count)
	case marker.UInt64:
		return make([]uint64, count)
	case marker.Float16, marker.Float32:
		return make([]float32, count)
	case marker.Float64:
		return make([]float64, count)
	default:
		return nil
	}
}

func (d *decoder) readFieldInto(elem marker.Marker, col any, i int) error {
	if elem == boolFieldMarker {
		m, err := d.readMarker()
		if err != nil {
			return err
		}

		bs, _ := col.([]bool)

		switch m {
		case marker.BoolTrue:
			bs[i] = true
		case marker.BoolFalse:
			bs[i] = false
		default:
			return newDecoderError(nil, "expected bool marker in structured-array field, got %s", m)
		}

		return nil
	}

	v, err := d.readBareScalar(elem)
	if err != nil {
		return err
	}

	switch c := col.(type) {
	case []int8:
		c[i] = int8(v.Int64())
	case []uint8:
		c[i] = uint8(v.Uint64())
	case []int16:
		c[i] = int16(v.Int64())
	case []uint16:
		c[i] = uint16(v.Uint64())
	case []int32:
		c[i] = int32(v.Int64())
	case []uint32:
		c[i] = uint32(v.Uint64())
	case []int64:
		c[i] = v.Int64()
	case []uint64:
		c[i] = v.Uint64()
	case []float32:
		c[i] = float32(v.Float64())
	case []float64:
		c[i] = v.Float64()
	default:
		return newDecoderError(nil, "unsupported structured-array field marker %s", elem)
	}

	return nil
}

// nativeWithConfig projects a decoded Value into a plain Go value,
// applying DecodeConfig.ObjectPairsHook to the top-level Object and to
// every Object reached through Arrays. The hook receives an Object's
// entries as decoded Values, so Objects nested inside an Object's values
// are not passed to the hook. Used by Load/Loadb; LoadValue callers get
// the raw Value instead.
func nativeWithConfig(v Value, cfg *DecodeConfig) (any, error) {
	switch v.kind {
	case KindArray:
		out := make([]any, len(v.arr))

		for i, e := range v.arr {
			nv, err := nativeWithConfig(e, cfg)
			if err != nil {
				return nil, err
			}

			out[i] = nv
		}

		return out, nil
	case KindObject:
		if cfg.ObjectPairsHook != nil {
			return cfg.ObjectPairsHook(v.obj)
		}

		return v.obj, nil
	default:
		return v.Native(), nil
	}
}
