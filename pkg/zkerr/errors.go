// Package zkerr defines the error taxonomy shared by the snapshot and
// commit-processor packages. Each sentinel is raised with github.com/pkg/errors
// so callers get both errors.Is matching and a stack-annotated message.
package zkerr

import "errors"

var (
	// ErrBadMagic is returned when a snapshot file header or tail does not
	// match the expected magic constant.
	ErrBadMagic = errors.New("zkerr: bad magic")
	// ErrUnsupportedVersion is returned when a snapshot's version byte is
	// not one this build knows how to read.
	ErrUnsupportedVersion = errors.New("zkerr: unsupported snapshot version")
	// ErrChecksumMismatch is returned when a per-batch CRC or the tail's
	// folded file checksum does not match the computed value.
	ErrChecksumMismatch = errors.New("zkerr: checksum mismatch")
	// ErrMalformed is returned when a batch body cannot be parsed because
	// a length prefix would read past the end of the input.
	ErrMalformed = errors.New("zkerr: malformed batch body")
	// ErrLogicBug marks a violation of an internal ordering invariant in
	// the commit processor. Per spec, callers log and continue; it must
	// never escape to a client.
	ErrLogicBug = errors.New("zkerr: internal ordering invariant violated")
)
