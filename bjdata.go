package bjdata

import (
	"io"

	"github.com/neurojson/bjdata-go/buffer"
	"github.com/neurojson/bjdata-go/options"
	"github.com/neurojson/bjdata-go/reader"
)

// Dump encodes value to w as one BJData value. value may be a plain Go
// value (nil, bool, any integer/float kind, string,
// []byte, []any, map[string]any, bjdata.Object, *bjdata.NDArray,
// *bjdata.StructuredArray, bjdata.HighPrec) or an explicit bjdata.Value.
func Dump(value any, w io.Writer, opts ...EncodeOption) error {
	cfg := NewEncodeConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return newConfigError("%v", err)
	}

	buf := buffer.NewSinked(w, buffer.SinkFlushAt)

	enc := newEncoder(cfg, buf)
	if err := enc.encode(value); err != nil {
		return err
	}

	if _, err := buf.Finalize(); err != nil {
		return newIOError(err)
	}

	return nil
}

// Dumpb encodes value and returns the accumulated bytes.
func Dumpb(value any, opts ...EncodeOption) ([]byte, error) {
	cfg := NewEncodeConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, newConfigError("%v", err)
	}

	buf := buffer.Get()
	defer buffer.Put(buf)

	enc := newEncoder(cfg, buf)
	if err := enc.encode(value); err != nil {
		return nil, err
	}

	return buf.Finalize()
}

// Load decodes exactly one value from r. The returned any is the
// decoded Value's Native() projection, except that a configured
// ObjectPairsHook builds the result for the top-level Object and for
// Objects inside Arrays; use LoadValue for the underlying bjdata.Value.
func Load(r io.Reader, opts ...DecodeOption) (any, error) {
	cfg := NewDecodeConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, newConfigError("%v", err)
	}

	dec := newDecoder(cfg, reader.FromReader(r))

	v, err := dec.decode()
	if err != nil {
		return nil, err
	}

	return nativeWithConfig(v, cfg)
}

// Loadb decodes exactly one value from data.
func Loadb(data []byte, opts ...DecodeOption) (any, error) {
	cfg := NewDecodeConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, newConfigError("%v", err)
	}

	dec := newDecoder(cfg, reader.FromBytes(data))

	v, err := dec.decode()
	if err != nil {
		return nil, err
	}

	return nativeWithConfig(v, cfg)
}

// LoadValue decodes exactly one value from src and returns the
// low-level bjdata.Value, preserving declared types/counts/widths that
// Native() would otherwise project away.
func LoadValue(src *reader.Source, opts ...DecodeOption) (Value, error) {
	cfg := NewDecodeConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return Value{}, newConfigError("%v", err)
	}

	dec := newDecoder(cfg, src)

	return dec.decode()
}
