package bjdata

import (
	"reflect"

	"github.com/neurojson/bjdata-go/internal/scratch"
	"github.com/neurojson/bjdata-go/marker"
	"github.com/neurojson/bjdata-go/numeric"
)

// --- NDArray encoding --------------------------------------------------

func (e *encoder) encodeNDArray(nd *NDArray) error {
	for _, d := range nd.Shape {
		if d <= 0 {
			return newEncoderError("NDArray shape dimensions must be positive integers")
		}
	}

	if len(nd.Shape) == 0 {
		return e.encodeNDArrayScalar(nd)
	}

	if err := e.writeMarker(marker.ArrayStart); err != nil {
		return err
	}

	if err := e.writeMarker(marker.ContainerType); err != nil {
		return err
	}

	if err := e.writeMarker(nd.Elem); err != nil {
		return err
	}

	if err := e.writeMarker(marker.ContainerCount); err != nil {
		return err
	}

	shape := nd.Shape
	if nd.Elem == marker.Char && nd.CharWidth > 0 {
		shape = append(append([]int{}, shape...), nd.CharWidth)
	}

	if err := e.writeMarker(marker.ArrayStart); err != nil {
		return err
	}

	for _, d := range shape {
		if err := e.encodeUnsignedInt(uint64(d)); err != nil {
			return err
		}
	}

	if err := e.writeMarker(marker.ArrayEnd); err != nil {
		return err
	}

	return e.writeDensePayload(nd.Elem, nd.Values, nd.CharWidth)
}

// encodeNDArrayScalar handles a zero-dimensional NDArray: just the
// element marker followed by the raw payload, with a count prefix for
// variable-length string scalars.
func (e *encoder) encodeNDArrayScalar(nd *NDArray) error {
	if nd.Elem == marker.String {
		strs, ok := nd.Values.([]string)
		if !ok || len(strs) != 1 {
			return newEncoderError("scalar NDArray String payload must hold exactly one element")
		}

		return e.writeLengthPrefixedMarked(marker.String, strs[0])
	}

	if err := e.writeMarker(nd.Elem); err != nil {
		return err
	}

	return e.writeDensePayload(nd.Elem, nd.Values, nd.CharWidth)
}

// writeDensePayload writes values's elements back to back with no
// per-element marker.
func (e *encoder) writeDensePayload(elem marker.Marker, values any, charWidth int) error {
	if elem == marker.Char {
		strs, ok := values.([]string)
		if !ok {
			return newEncoderError("NDArray Char payload must be []string")
		}

		b, release := scratch.GetByteSlice(charWidth)
		defer release()

		for _, s := range strs {
			for i := range b {
				b[i] = 0
			}
			copy(b, s)

			if err := e.writeBytes(b); err != nil {
				return err
			}
		}

		return nil
	}

	if _, ok := marker.Width(elem); !ok {
		return newEncoderError("unsupported NDArray element marker %s", elem)
	}

	// Dense float payloads take the bulk path: a direct copy when the
	// configured order matches the host, per-element packing otherwise.
	switch vs := values.(type) {
	case []float64:
		if elem == marker.Float64 {
			return e.writeBytes(numeric.AppendFloat64Slice(e.cfg.Engine, nil, vs))
		}
	case []float32:
		if elem == marker.Float32 {
			return e.writeBytes(numeric.AppendFloat32Slice(e.cfg.Engine, nil, vs))
		}
	}

	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice {
		return newEncoderError("NDArray Values must be a slice")
	}

	for i := range rv.Len() {
		if err := e.writeDenseElement(elem, rv.Index(i)); err != nil {
			return err
		}
	}

	return nil
}

func (e *encoder) writeDenseElement(elem marker.Marker, ev reflect.Value) error {
	switch elem {
	case marker.Float16:
		return e.writeBytes(numeric.PackFloat16(e.cfg.Engine, nil, float32(ev.Float())))
	case marker.Float32:
		return e.writeBytes(numeric.PackFloat32(e.cfg.Engine, nil, float32(ev.Float())))
	case marker.Float64:
		return e.writeBytes(numeric.PackFloat64(e.cfg.Engine, nil, ev.Float()))
	case marker.UInt64:
		return e.writeBytes(numeric.PackUint64(e.cfg.Engine, nil, ev.Uint()))
	default:
		width, _ := marker.Width(elem)

		var val int64
		if marker.IsUnsigned(elem) {
			val = int64(ev.Uint())
		} else {
			val = ev.Int()
		}

		packed, err := numeric.PackInt(e.cfg.Engine, nil, width, !marker.IsUnsigned(elem), val)
		if err != nil {
			return newEncoderError("%v", err)
		}

		return e.writeBytes(packed)
	}
}

// --- structured arrays / SOA -----------------------------------------------

// boolFieldMarker marks a FieldSpec as holding booleans: booleans have
// no fixed payload width (the value is entirely in the marker byte), so
// they cannot share the numeric Width table. Any Column/Row value for
// such a field must be a []bool.
const boolFieldMarker = marker.BoolTrue

func (e *encoder) encodeStructuredArray(sa *StructuredArray) error {
	format := e.cfg.SOAFormat
	if format == SOANone {
		// Structured arrays auto-select the column-major layout when no
		// explicit format is configured.
		format = SOAColumn
	}

	outer := marker.ArrayStart
	if format == SOAColumn {
		outer = marker.ObjectStart
	}

	if err := e.writeMarker(outer); err != nil {
		return err
	}

	if err := e.writeMarker(marker.ContainerType); err != nil {
		return err
	}

	if err := e.writeSchema(sa.Fields); err != nil {
		return err
	}

	if err := e.writeMarker(marker.ContainerCount); err != nil {
		return err
	}

	if err := e.encodeUnsignedInt(uint64(sa.Count)); err != nil {
		return err
	}

	if format == SOARow {
		for i := range sa.Count {
			for fi, f := range sa.Fields {
				if err := e.writeFieldElement(f.Elem, sa.Columns[fi], i); err != nil {
					return err
				}
			}
		}

		return nil
	}

	for fi, f := range sa.Fields {
		for i := range sa.Count {
			if err := e.writeFieldElement(f.Elem, sa.Columns[fi], i); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeSchema writes the `${...}` schema object: an Object whose entries
// are `<name-length><name-bytes><type-marker>`.
func (e *encoder) writeSchema(fields []FieldSpec) error {
	if err := e.writeMarker(marker.ObjectStart); err != nil {
		return err
	}

	for _, f := range fields {
		if err := e.writeLengthPrefixed(f.Name); err != nil {
			return err
		}

		if err := e.writeMarker(f.Elem); err != nil {
			return err
		}
	}

	return e.writeMarker(marker.ObjectEnd)
}

func (e *encoder) writeFieldElement(elem marker.Marker, col any, i int) error {
	if elem == boolFieldMarker {
		bs, ok := col.([]bool)
		if !ok {
			return newEncoderError("structured-array bool field column must be []bool")
		}

		if bs[i] {
			return e.writeMarker(marker.BoolTrue)
		}

		return e.writeMarker(marker.BoolFalse)
	}

	rv := reflect.ValueOf(col)
	if rv.Kind() != reflect.Slice {
		return newEncoderError("structured-array field column must be a slice")
	}

	return e.writeDenseElement(elem, rv.Index(i))
}
