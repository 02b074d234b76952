// Package snapshot implements the on-disk snapshot file format: header,
// checksummed batch stream, and tail (spec §3/§4.4), plus the domain
// serializers and rebuilders that translate store collections to and
// from batch bodies (spec §4.5).
package snapshot

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/raftzoo/zoocore/pkg/batch"
	"github.com/raftzoo/zoocore/pkg/checksum"
	"github.com/raftzoo/zoocore/pkg/ioprim"
)

// Writer produces one snapshot "object file" — exactly one logical
// collection (one ACL map, one session table, etc). It is invoked on the
// caller's goroutine and never spawns its own. The caller, not the
// Writer, maintains the running checksum across batches with
// checksum.Fold.
type Writer struct {
	f       *os.File
	w       *ioprim.Writer
	version batch.SnapshotVersion
	path    string
	closed  bool
}

// Open creates path (truncating if it exists, mode 0644), and writes the
// file header magic and version byte.
func Open(path string, version batch.SnapshotVersion) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot: open %s for write", path)
	}

	w := &Writer{
		f:       f,
		w:       ioprim.NewWriter(f),
		version: version,
		path:    path,
	}
	if err := w.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	if err := w.w.WriteRaw(batch.HeaderMagic()); err != nil {
		return errors.Wrap(err, "snapshot: write header magic")
	}
	if err := w.w.WriteU8(uint8(w.version)); err != nil {
		return errors.Wrap(err, "snapshot: write version byte")
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return nil
}

// WriteBatch serializes body, writes the 16-byte batch header followed
// by the body, flushes, and returns the number of body bytes written and
// the body's CRC. After WriteBatch returns, body is reset to empty so
// the caller can reuse it for the next batch. Calling WriteBatch with no
// accumulated elements is legal: on the legacy codec it writes a
// data_length=0 body and the CRC of an empty buffer; on the V2+ codec an
// empty Body still serializes to its 8-byte type+count header, so
// data_length is 8 and data_crc is the CRC of those 8 bytes. Callers that
// want a collection with no elements to produce no batches at all (see
// batchAccumulator.Finish) must avoid calling WriteBatch in the first
// place, not rely on it to special-case emptiness.
func (w *Writer) WriteBatch(body *batch.Body) (int, uint32, error) {
	var data []byte
	if w.version.IsLegacy() {
		data = legacySerializeItems(body.Type, body.Elements)
	} else {
		data = body.Serialize()
	}
	crc := checksum.CRC32(data)

	if err := w.w.WriteU64LE(uint64(len(data))); err != nil {
		return 0, 0, errors.Wrap(err, "snapshot: write batch data_length")
	}
	if err := w.w.WriteU64LE(uint64(crc)); err != nil {
		return 0, 0, errors.Wrap(err, "snapshot: write batch data_crc")
	}
	if err := w.w.WriteRaw(data); err != nil {
		return 0, 0, errors.Wrap(err, "snapshot: write batch body")
	}
	if err := w.w.Flush(); err != nil {
		return 0, 0, err
	}

	body.Reset()
	return len(data), crc, nil
}

// CloseWithTail writes the tail magic and the final little-endian u32
// file checksum, then closes the underlying file descriptor.
func (w *Writer) CloseWithTail(runningChecksum uint32) error {
	defer func() {
		w.closed = true
		w.f.Close()
	}()

	if err := w.w.WriteRaw(batch.TailMagic()); err != nil {
		return errors.Wrap(err, "snapshot: write tail magic")
	}
	if err := w.w.WriteU32LE(runningChecksum); err != nil {
		return errors.Wrap(err, "snapshot: write tail checksum")
	}
	if err := w.w.Flush(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"path":     w.path,
		"version":  w.version,
		"checksum": runningChecksum,
	}).Debug("snapshot: wrote file")
	return nil
}

// Close releases the file descriptor on an abort path where
// CloseWithTail was never reached. It is a no-op if the file is already
// closed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.f.Close()
}
