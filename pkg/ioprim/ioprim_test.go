package ioprim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReader_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteU8(0x7f))
	require.NoError(t, w.WriteU32LE(0xdeadbeef))
	require.NoError(t, w.WriteU64LE(0x0102030405060708))
	require.NoError(t, w.WriteRaw([]byte("hello")))
	require.NoError(t, w.Flush())

	r := NewReader(&buf)
	u8, err := r.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7f), u8)

	u32, err := r.ReadU32LE()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)

	u64, err := r.ReadU64LE()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)

	raw, err := r.ReadStrict(5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), raw)
}

func TestReader_ReadStrict_UnexpectedEOF(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2, 3}))
	_, err := r.ReadStrict(8)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}
