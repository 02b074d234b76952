package batch

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/raftzoo/zoocore/pkg/zkerr"
)

// Body is a typed container of opaque byte elements. Domain meaning is
// assigned only by the serializer that produced the elements; this
// package never inspects their contents. Order within Elements is
// preserved and semantically meaningful — callers must not re-sort.
type Body struct {
	Type     Type
	Elements [][]byte
}

// Add appends an opaque element to the body.
func (b *Body) Add(elem []byte) {
	b.Elements = append(b.Elements, elem)
}

// Reset clears the body so it can be reused for the next batch, keeping
// its Type.
func (b *Body) Reset() {
	b.Elements = b.Elements[:0]
}

// Len reports the number of elements currently accumulated.
func (b *Body) Len() int {
	return len(b.Elements)
}

// Serialize writes the body as: type (i32 LE) | count (i32 LE) |
// (len (i32 LE) | bytes)*count.
func (b *Body) Serialize() []byte {
	size := 4 + 4
	for _, e := range b.Elements {
		size += 4 + len(e)
	}
	out := make([]byte, size)

	binary.LittleEndian.PutUint32(out[0:4], uint32(int32(b.Type)))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(b.Elements)))

	off := 8
	for _, e := range b.Elements {
		binary.LittleEndian.PutUint32(out[off:off+4], uint32(int32(len(e))))
		off += 4
		copy(out[off:], e)
		off += len(e)
	}
	return out
}

// Parse is the inverse of Serialize. It fails with zkerr.ErrMalformed if
// any length prefix would read past the end of data.
func Parse(data []byte) (*Body, error) {
	if len(data) < 8 {
		return nil, errors.Wrap(zkerr.ErrMalformed, "batch: body shorter than type+count header")
	}
	typ := Type(int32(binary.LittleEndian.Uint32(data[0:4])))
	count := int32(binary.LittleEndian.Uint32(data[4:8]))
	if count < 0 {
		return nil, errors.Wrap(zkerr.ErrMalformed, "batch: negative element count")
	}

	body := &Body{Type: typ}
	off := 8
	for i := int32(0); i < count; i++ {
		if off+4 > len(data) {
			return nil, errors.Wrap(zkerr.ErrMalformed, "batch: truncated element length prefix")
		}
		elemLen := int32(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
		if elemLen < 0 || off+int(elemLen) > len(data) {
			return nil, errors.Wrap(zkerr.ErrMalformed, "batch: element length exceeds remaining input")
		}
		elem := make([]byte, elemLen)
		copy(elem, data[off:off+int(elemLen)])
		body.Elements = append(body.Elements, elem)
		off += int(elemLen)
	}
	return body, nil
}
