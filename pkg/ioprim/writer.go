// Package ioprim implements the fixed-width little-endian integer and
// raw byte primitives that every higher snapshot layer builds
// on. These are the only primitives in the module that see the disk; the
// byte layout above this package is unambiguous because nothing else
// writes raw bytes.
package ioprim

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Writer buffers writes to an underlying io.Writer and exposes
// fixed-width little-endian primitives on top of it.
type Writer struct {
	buf *bufio.Writer
	w   io.Writer
}

// NewWriter wraps w with a buffered little-endian writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		buf: bufio.NewWriter(w),
		w:   w,
	}
}

// WriteU8 writes a single byte.
func (w *Writer) WriteU8(v uint8) error {
	if err := w.buf.WriteByte(v); err != nil {
		return errors.Wrap(err, "ioprim: write u8")
	}
	return nil
}

// WriteU32LE writes v as 4 little-endian bytes.
func (w *Writer) WriteU32LE(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return w.WriteRaw(b[:])
}

// WriteU64LE writes v as 8 little-endian bytes.
func (w *Writer) WriteU64LE(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return w.WriteRaw(b[:])
}

// WriteRaw appends bytes verbatim.
func (w *Writer) WriteRaw(p []byte) error {
	if _, err := w.buf.Write(p); err != nil {
		return errors.Wrap(err, "ioprim: write raw")
	}
	return nil
}

// Flush delivers buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return errors.Wrap(err, "ioprim: flush")
	}
	return nil
}
