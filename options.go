package bjdata

import (
	"github.com/neurojson/bjdata-go/endian"
	"github.com/neurojson/bjdata-go/options"
)

// Default bounds enforced by the decoder absent an explicit
// WithMaxContainerCount/WithMaxShapeProduct override. Declared counts
// and shape products above these fail before any allocation happens.
const (
	DefaultMaxContainerCount = 64 << 20 // 64Mi elements
	DefaultMaxShapeProduct   = 64 << 20
	// DefaultRecursionLimit bounds nested composite depth absent an
	// explicit WithRecursionLimit override.
	DefaultRecursionLimit = 1024
)

// EncodeConfig holds the encoder's configuration, built from
// EncodeOption values.
type EncodeConfig struct {
	ContainerCount bool
	SortKeys       bool
	NoFloat32      bool
	Uint8Bytes     bool
	Engine         endian.EndianEngine
	DefaultFunc    func(any) (any, bool)
	SOAFormat      SOAFormat
	RecursionLimit int

	// Strict selects strict UBJSON-compatible mode over the default
	// BJData mode: no unsigned 16/32/64-bit markers, non-finite floats
	// fold to Null.
	Strict bool
}

// NewEncodeConfig returns the default EncodeConfig: terminator-framed
// containers, source iteration order, Float32 enabled, []byte emitted as
// a strongly-typed UInt8 array, little-endian payloads, BJData (not
// strict UBJSON) mode, auto SOA layout, and DefaultRecursionLimit.
func NewEncodeConfig() *EncodeConfig {
	return &EncodeConfig{
		Uint8Bytes:     true,
		Engine:         endian.GetLittleEndianEngine(),
		SOAFormat:      SOANone,
		RecursionLimit: DefaultRecursionLimit,
	}
}

// EncodeOption configures an EncodeConfig.
type EncodeOption = options.Option[*EncodeConfig]

// WithContainerCount emits a `#` count prefix instead of a terminator for
// arrays/objects.
func WithContainerCount() EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.ContainerCount = true })
}

// WithSortKeys emits object entries in lexicographic order of their
// UTF-8 key bytes.
func WithSortKeys() EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.SortKeys = true })
}

// WithNoFloat32 always uses Float64 for finite, non-special floats.
func WithNoFloat32() EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.NoFloat32 = true })
}

// WithoutUint8Bytes disables the dedicated Bytes wire form for []byte
// values; they fall through to the ordinary Sequence dispatch arm
// instead.
func WithoutUint8Bytes() EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.Uint8Bytes = false })
}

// WithLittleEndian selects little-endian numeric payloads (the
// default).
func WithLittleEndian() EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.Engine = endian.GetLittleEndianEngine() })
}

// WithBigEndian selects big-endian numeric payloads.
func WithBigEndian() EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.Engine = endian.GetBigEndianEngine() })
}

// WithDefaultFunc installs an adapter invoked for otherwise-unencodable
// values. The adapter's returned value is encoded recursively; ok=false
// causes the original EncoderError to propagate.
func WithDefaultFunc(fn func(any) (any, bool)) EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.DefaultFunc = fn })
}

// WithSOAFormat selects the structured-array wire layout. SOANone
// auto-enables SOAColumn for structured NDArrays.
func WithSOAFormat(f SOAFormat) EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.SOAFormat = f })
}

// WithRecursionLimit sets the maximum nested composite depth. A limit
// <= 0 disables the depth check; circular
// reference detection stays active regardless.
func WithRecursionLimit(n int) EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.RecursionLimit = n })
}

// WithStrictUBJSON selects strict UBJSON-compatible encoding: no
// unsigned 16/32/64-bit markers, and NaN/Inf floats fold to Null instead
// of a HighPrec fallback.
func WithStrictUBJSON() EncodeOption {
	return options.NoError(func(c *EncodeConfig) { c.Strict = true })
}

// DecodeConfig holds the decoder's configuration, built from
// DecodeOption values.
type DecodeConfig struct {
	Engine            endian.EndianEngine
	InternObjectKeys  bool
	ObjectPairsHook   func(Object) (any, error)
	NoBytes           bool
	MaxContainerCount int
	MaxShapeProduct   int

	// DuplicateKeyLastWins governs which of two equal Object keys wins
	// on decode. True (the default) keeps the last entry; false keeps
	// the first.
	DuplicateKeyLastWins bool
}

// NewDecodeConfig returns the default DecodeConfig: little-endian
// payloads, no key interning, no pairs hook, UInt8 strongly-typed arrays
// surfaced as []byte, default container/shape bounds, and last-wins
// duplicate key resolution.
func NewDecodeConfig() *DecodeConfig {
	return &DecodeConfig{
		Engine:               endian.GetLittleEndianEngine(),
		MaxContainerCount:    DefaultMaxContainerCount,
		MaxShapeProduct:      DefaultMaxShapeProduct,
		DuplicateKeyLastWins: true,
	}
}

// DecodeOption configures a DecodeConfig.
type DecodeOption = options.Option[*DecodeConfig]

// WithExpectBigEndian declares that the input stream's numeric payloads
// are big-endian.
func WithExpectBigEndian() DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.Engine = endian.GetBigEndianEngine() })
}

// WithExpectLittleEndian declares that the input stream's numeric
// payloads are little-endian (the default).
func WithExpectLittleEndian() DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.Engine = endian.GetLittleEndianEngine() })
}

// WithInternObjectKeys reuses equal key strings across Object entries
// decoded in this call, trading a small lookup
// cost for fewer allocations on repetitive schemas.
func WithInternObjectKeys() DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.InternObjectKeys = true })
}

// WithObjectPairsHook installs a callable that constructs a mapping from
// ordered key/value pairs instead of the default Object carrier.
func WithObjectPairsHook(fn func(Object) (any, error)) DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.ObjectPairsHook = fn })
}

// WithoutBytesDecoding keeps UInt8 strongly-typed arrays as an integer
// Array rather than materializing a []byte.
func WithoutBytesDecoding() DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.NoBytes = true })
}

// WithMaxContainerCount bounds the declared count a single Array, Object
// or structured array may carry, and the length of a String, HighPrec or
// key, so a maliciously or accidentally huge count is rejected before
// anything is allocated for it. NDArrays are bounded by
// WithMaxShapeProduct instead.
func WithMaxContainerCount(n int) DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.MaxContainerCount = n })
}

// WithMaxShapeProduct bounds product(shape) for a decoded NDArray.
func WithMaxShapeProduct(n int) DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.MaxShapeProduct = n })
}

// WithFirstKeyWins keeps the first of two equal Object keys rather than
// the default last-wins resolution.
func WithFirstKeyWins() DecodeOption {
	return options.NoError(func(c *DecodeConfig) { c.DuplicateKeyLastWins = false })
}
