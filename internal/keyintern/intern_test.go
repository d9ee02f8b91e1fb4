package keyintern

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestTable_InternSharesUnderlyingString(t *testing.T) {
	tbl := New()

	a := tbl.Intern("metric.name")
	b := tbl.Intern(string([]byte("metric.name"))) // force a distinct allocation

	require.Equal(t, a, b)
	require.Equal(t, unsafe.StringData(a), unsafe.StringData(b))
}

func TestTable_Reset(t *testing.T) {
	tbl := New()
	tbl.Intern("k")
	tbl.Reset()

	require.Len(t, tbl.seen, 0)
}
