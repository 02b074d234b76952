package snapshot

import (
	"github.com/raftzoo/zoocore/pkg/batch"
	"github.com/raftzoo/zoocore/pkg/store"
	"github.com/raftzoo/zoocore/pkg/wire"
)

// SerializeEphemerals writes eph to path as a sequence of
// DATA_EPHEMERAL batches. Each record is
// `session_id_i64 | path_count | path_str*`. EphemeralIndex.ForEach
// holds the index's lock for the whole emission, matching spec.md §4.5's
// requirement that ephemeral serialization take the ephemerals mutex for
// the entire pass. Unlike the source system's serializeEphemerals, this
// always writes the header and tail, even for an empty index.
func SerializeEphemerals(eph *store.EphemeralIndex, path string, batchSize int, version batch.SnapshotVersion) error {
	w, err := Open(path, version)
	if err != nil {
		return err
	}
	acc := newBatchAccumulator(w, batch.TypeDataEphemeral, batchSize, "ephemeral")

	var forEachErr error
	eph.ForEach(func(session int64, paths []string) {
		if forEachErr != nil {
			return
		}
		var buf wire.Buffer
		buf.PutI64(session)
		buf.PutVectorHeader(len(paths))
		for _, p := range paths {
			buf.PutString(p)
		}
		forEachErr = acc.Add(buf.Bytes())
	})
	if forEachErr != nil {
		w.Close()
		return forEachErr
	}
	return acc.Finish()
}

// RebuildEphemerals replays a DATA_EPHEMERAL snapshot file into eph.
func RebuildEphemerals(path string, eph *store.EphemeralIndex) error {
	return forEachElement(path, "ephemeral", func(elem []byte) error {
		r := wire.NewReader(elem)
		session, err := r.I64()
		if err != nil {
			return err
		}
		count, err := r.VectorHeader()
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			path, err := r.String()
			if err != nil {
				return err
			}
			eph.Add(session, path)
		}
		return nil
	})
}
