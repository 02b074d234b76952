package snapshot

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/raftzoo/zoocore/pkg/batch"
	"github.com/raftzoo/zoocore/pkg/checksum"
	"github.com/raftzoo/zoocore/pkg/ioprim"
	"github.com/raftzoo/zoocore/pkg/metrics"
	"github.com/raftzoo/zoocore/pkg/zkerr"
)

// Reader validates a snapshot file's header/tail framing and parses its
// batch stream, one batch at a time, so the caller (a domain rebuilder)
// can dispatch by batch.Type without holding the whole file in memory.
type Reader struct {
	f       *os.File
	r       *ioprim.Reader
	version batch.SnapshotVersion
	path    string

	running uint32
	done    bool
}

// OpenReader opens path, validates the header magic, and reads the
// version byte.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot: open %s for read", path)
	}

	r := &Reader{
		f:    f,
		r:    ioprim.NewReader(f),
		path: path,
	}
	if err := r.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	magic, err := r.r.ReadStrict(8)
	if err != nil {
		return errors.Wrap(err, "snapshot: read header magic")
	}
	var got [8]byte
	copy(got[:], magic)
	if !batch.IsFileHeader(leU64(got)) {
		return errors.Wrapf(zkerr.ErrBadMagic, "snapshot: %s has no SnapHead magic", r.path)
	}

	v, err := r.r.ReadU8()
	if err != nil {
		return errors.Wrap(err, "snapshot: read version byte")
	}
	ver := batch.SnapshotVersion(v)
	switch ver {
	case batch.VersionV0, batch.VersionV1, batch.VersionV2, batch.VersionV3:
		r.version = ver
	default:
		return errors.Wrapf(zkerr.ErrUnsupportedVersion, "snapshot: %s has version byte %d", r.path, v)
	}
	return nil
}

// Version returns the snapshot's version byte, valid after OpenReader
// succeeds.
func (r *Reader) Version() batch.SnapshotVersion {
	return r.version
}

// NextBatch reads one batch_header+batch_body pair and parses the body
// with the codec for this file's version. It returns io.EOF once the
// tail magic is encountered instead of another batch header; callers
// must then call Finish to validate the file-level checksum.
func (r *Reader) NextBatch() (*batch.Body, error) {
	if r.done {
		return nil, io.EOF
	}

	head, err := r.r.ReadStrict(8)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: read batch header or tail magic")
	}
	var headArr [8]byte
	copy(headArr[:], head)

	if batch.IsFileTail(leU64(headArr)) {
		tailChecksum, err := r.r.ReadU32LE()
		if err != nil {
			return nil, errors.Wrap(err, "snapshot: read tail checksum")
		}
		r.done = true
		if tailChecksum != r.running {
			metrics.ChecksumMismatches.Inc()
			return nil, errors.Wrapf(
				zkerr.ErrChecksumMismatch,
				"snapshot: %s tail checksum %d != folded running checksum %d",
				r.path, tailChecksum, r.running,
			)
		}
		return nil, io.EOF
	}

	// head was actually the low 8 bytes of the 16-byte batch header:
	// data_length (already fully consumed as head) then data_crc.
	dataLength := leU64(headArr)
	dataCRCRaw, err := r.r.ReadStrict(8)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: read batch data_crc")
	}
	var crcArr [8]byte
	copy(crcArr[:], dataCRCRaw)
	dataCRC := uint32(leU64(crcArr))

	body, err := r.r.ReadStrict(int(dataLength))
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: read batch body")
	}

	if checksum.CRC32(body) != dataCRC {
		metrics.ChecksumMismatches.Inc()
		return nil, errors.Wrapf(
			zkerr.ErrChecksumMismatch,
			"snapshot: %s batch crc mismatch (want %d, got %d)",
			r.path, dataCRC, checksum.CRC32(body),
		)
	}
	r.running = checksum.Fold(r.running, dataCRC)

	if r.version.IsLegacy() {
		return parseLegacyAsBody(body)
	}
	return batch.Parse(body)
}

// Finish drains any remaining batches and confirms the file ended
// cleanly with a validated tail. Safe to call after NextBatch has
// already returned io.EOF.
func (r *Reader) Finish() error {
	for !r.done {
		if _, err := r.NextBatch(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
	}
	log.WithFields(log.Fields{
		"path":    r.path,
		"version": r.version,
	}).Debug("snapshot: verified file")
	return r.Close()
}

// Close releases the file descriptor.
func (r *Reader) Close() error {
	return r.f.Close()
}

func leU64(b [8]byte) uint64 {
	return binary.LittleEndian.Uint64(b[:])
}
