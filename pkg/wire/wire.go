// Package wire implements the ZooKeeper client-protocol binary
// convention — big-endian 32-/64-bit integers, 32-bit-length-prefixed
// UTF-8 strings, and 32-bit-count-prefixed vectors. It is the only place
// in this module where big-endian appears; every other framing
// (snapshot headers, batch bodies) is little-endian. This convention is
// dictated purely by compatibility with the ZooKeeper-style client
// protocol the surrounding system's wire decoder speaks, and is used here
// only to encode the individual records placed inside batch elements.
package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/raftzoo/zoocore/pkg/zkerr"
)

// Buffer accumulates a single record's fields in ZooKeeper binary
// convention before it is handed to a batch.Body as one opaque element.
type Buffer struct {
	buf bytes.Buffer
}

// Bytes returns the accumulated record bytes.
func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

// PutU32 appends a big-endian uint32.
func (b *Buffer) PutU32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
}

// PutI64 appends a big-endian int64.
func (b *Buffer) PutI64(v int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	b.buf.Write(tmp[:])
}

// PutU64 appends a big-endian uint64.
func (b *Buffer) PutU64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.buf.Write(tmp[:])
}

// PutString appends a big-endian length-prefixed UTF-8 string.
func (b *Buffer) PutString(s string) {
	b.PutU32(uint32(len(s)))
	b.buf.WriteString(s)
}

// PutBytes appends a big-endian length-prefixed byte slice.
func (b *Buffer) PutBytes(p []byte) {
	b.PutU32(uint32(len(p)))
	b.buf.Write(p)
}

// PutVectorHeader appends a big-endian element count for a vector whose
// elements the caller writes immediately after.
func (b *Buffer) PutVectorHeader(count int) {
	b.PutU32(uint32(count))
}

// Reader decodes a record previously written with Buffer, in the same
// ZooKeeper big-endian convention.
type Reader struct {
	data []byte
	off  int
}

// NewReader wraps a record's raw bytes for sequential decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) need(n int) error {
	if r.off+n > len(r.data) {
		return errors.Wrapf(zkerr.ErrMalformed, "wire: need %d bytes, have %d", n, len(r.data)-r.off)
	}
	return nil
}

// U32 reads a big-endian uint32.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.off : r.off+4])
	r.off += 4
	return v, nil
}

// I64 reads a big-endian int64.
func (r *Reader) I64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.data[r.off : r.off+8])
	r.off += 8
	return int64(v), nil
}

// U64 reads a big-endian uint64.
func (r *Reader) U64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.data[r.off : r.off+8])
	r.off += 8
	return v, nil
}

// String reads a big-endian length-prefixed UTF-8 string.
func (r *Reader) String() (string, error) {
	n, err := r.U32()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.data[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

// Bytes reads a big-endian length-prefixed byte slice.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.U32()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:r.off+int(n)])
	r.off += int(n)
	return out, nil
}

// VectorHeader reads a big-endian element count for a vector whose
// elements the caller reads immediately after.
func (r *Reader) VectorHeader() (int, error) {
	n, err := r.U32()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
