package ioprim

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ErrUnexpectedEOF is returned by ReadStrict when fewer than n bytes
// remain in the underlying source.
var ErrUnexpectedEOF = io.ErrUnexpectedEOF

// Reader buffers reads from an underlying io.Reader and exposes
// fixed-width little-endian primitives on top of it.
type Reader struct {
	buf *bufio.Reader
}

// NewReader wraps r with a buffered little-endian reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{buf: bufio.NewReader(r)}
}

// ReadStrict reads exactly n bytes, failing with ErrUnexpectedEOF if fewer
// are available.
func (r *Reader) ReadStrict(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.buf, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.Wrapf(ErrUnexpectedEOF, "ioprim: wanted %d bytes", n)
		}
		return nil, errors.Wrap(err, "ioprim: read strict")
	}
	return buf, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.ReadStrict(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU32LE reads 4 little-endian bytes.
func (r *Reader) ReadU32LE() (uint32, error) {
	b, err := r.ReadStrict(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64LE reads 8 little-endian bytes.
func (r *Reader) ReadU64LE() (uint64, error) {
	b, err := r.ReadStrict(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}
