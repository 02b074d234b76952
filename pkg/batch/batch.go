// Package batch implements the self-describing Batch Body format used by
// snapshot versions V2 and up, plus the version/type/magic vocabulary
// shared by the whole snapshot file format.
package batch

import "encoding/binary"

// SnapshotVersion tags which on-disk batch encoding a snapshot file uses.
// V0 and V1 share the legacy per-entry protobuf-style record; V2 and V3
// use the self-describing Body defined in this package.
type SnapshotVersion uint8

const (
	VersionV0   SnapshotVersion = 0
	VersionV1   SnapshotVersion = 1
	VersionV2   SnapshotVersion = 2
	VersionV3   SnapshotVersion = 3
	VersionNone SnapshotVersion = 0xFF
)

// IsLegacy reports whether v uses the legacy per-entry batch format
// rather than the Body format in this package.
func (v SnapshotVersion) IsLegacy() bool {
	return v == VersionV0 || v == VersionV1
}

// Type identifies the contents of a batch body.
type Type int32

const (
	// TypeData is reserved for tree-node batches. The data tree itself is
	// out of scope for this module; no serializer here produces it.
	TypeData Type = iota
	TypeACLMap
	TypeSession
	TypeDataEphemeral
	TypeStringMap
	TypeUintMap
)

// headerMagicBytes and tailMagicBytes are the 8-byte ASCII tags that open and close
// every snapshot file. They are compared as raw little-endian uint64s.
var (
	headerMagicBytes = [8]byte{'S', 'n', 'a', 'p', 'H', 'e', 'a', 'd'}
	tailMagicBytes   = [8]byte{'S', 'n', 'a', 'p', 'T', 'a', 'i', 'l'}
)

// HeaderMagicU64 and TailMagicU64 are the little-endian uint64
// interpretations of the file header/tail magic strings.
var (
	HeaderMagicU64 = binary.LittleEndian.Uint64(headerMagicBytes[:])
	TailMagicU64   = binary.LittleEndian.Uint64(tailMagicBytes[:])
)

// HeaderMagic returns the raw 8-byte file header magic.
func HeaderMagic() []byte {
	b := headerMagicBytes
	return b[:]
}

// TailMagic returns the raw 8-byte file tail magic.
func TailMagic() []byte {
	b := tailMagicBytes
	return b[:]
}

// IsFileHeader reports whether x is the little-endian uint64
// interpretation of the "SnapHead" magic.
func IsFileHeader(x uint64) bool {
	return x == HeaderMagicU64
}

// IsFileTail reports whether x is the little-endian uint64 interpretation
// of the "SnapTail" magic. IsFileHeader and IsFileTail are mutually
// exclusive by construction, since the two magics differ.
func IsFileTail(x uint64) bool {
	return x == TailMagicU64
}
