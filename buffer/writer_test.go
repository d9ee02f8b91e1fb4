package buffer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriter_InMemory_Finalize(t *testing.T) {
	w := New(0)
	require.NoError(t, w.Write([]byte("hello")))
	require.NoError(t, w.Write([]byte(" world")))
	require.Equal(t, 11, w.Len())

	out, err := w.Finalize()
	require.NoError(t, err)
	require.Equal(t, "hello world", string(out))
}

func TestWriter_GrowsPastInitialCapacity(t *testing.T) {
	w := New(4)
	payload := bytes.Repeat([]byte{0xAB}, DefaultSize*2)
	require.NoError(t, w.Write(payload))

	out, err := w.Finalize()
	require.NoError(t, err)
	require.Equal(t, payload, out)
}

func TestWriter_Sinked_FlushesAtThreshold(t *testing.T) {
	var sink bytes.Buffer
	w := NewSinked(&sink, 8)

	require.NoError(t, w.Write([]byte("1234")))
	require.Equal(t, 0, sink.Len()) // below threshold, still buffered
	require.NoError(t, w.Write([]byte("5678")))
	require.Equal(t, 8, sink.Len()) // flush triggered

	out, err := w.Finalize()
	require.NoError(t, err)
	require.Empty(t, out)
	require.Equal(t, "12345678", sink.String())
}

type failingSink struct{}

func (failingSink) Write([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestWriter_Sinked_PropagatesIOError(t *testing.T) {
	w := NewSinked(failingSink{}, 1)
	err := w.Write([]byte("x"))
	require.Error(t, err)
}

func TestWriter_PoolRoundTrip(t *testing.T) {
	w := Get()
	require.NoError(t, w.Write([]byte("pooled")))
	Put(w)

	w2 := Get()
	require.Equal(t, 0, w2.Len())
}
