// Package checksum implements the CRC32 and running file-checksum fold
// used throughout the snapshot format. The polynomial and seed match the
// reference implementation used by pre-existing snapshots (IEEE 802.3,
// i.e. the table returned by hash/crc32.IEEETable) so bytes written by
// this package are verifiable by any conforming reader.
package checksum

import (
	"encoding/binary"
	"hash/crc32"
)

// CRC32 computes the IEEE CRC32 of data.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Fold combines a running file checksum with the next batch's CRC. It
// lays csum and dataCRC back to back as two little-endian uint32s and
// takes the CRC32 of that 8-byte buffer.
//
// Fold is associative over batch order but not commutative: batches must
// be folded in file order, since the fold is itself a CRC over the
// sequence of per-batch CRCs and so detects reordering, omission, or
// duplication of batches in addition to bit errors within a batch.
func Fold(csum, dataCRC uint32) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], csum)
	binary.LittleEndian.PutUint32(buf[4:8], dataCRC)
	return CRC32(buf[:])
}
