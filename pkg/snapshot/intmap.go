package snapshot

import (
	"github.com/raftzoo/zoocore/pkg/batch"
	"github.com/raftzoo/zoocore/pkg/store"
	"github.com/raftzoo/zoocore/pkg/wire"
)

// SerializeIntMap writes m to path as a sequence of UINTMAP batches.
// Each record is `key_str | value_u64`.
func SerializeIntMap(m *store.GenericMap[uint64], path string, batchSize int, version batch.SnapshotVersion) error {
	w, err := Open(path, version)
	if err != nil {
		return err
	}
	acc := newBatchAccumulator(w, batch.TypeUintMap, batchSize, "intmap")

	var forEachErr error
	m.ForEach(func(key string, value uint64) {
		if forEachErr != nil {
			return
		}
		var buf wire.Buffer
		buf.PutString(key)
		buf.PutU64(value)
		forEachErr = acc.Add(buf.Bytes())
	})
	if forEachErr != nil {
		w.Close()
		return forEachErr
	}
	return acc.Finish()
}

// RebuildIntMap replays a UINTMAP snapshot file into m.
func RebuildIntMap(path string, m *store.GenericMap[uint64]) error {
	return forEachElement(path, "intmap", func(elem []byte) error {
		r := wire.NewReader(elem)
		key, err := r.String()
		if err != nil {
			return err
		}
		value, err := r.U64()
		if err != nil {
			return err
		}
		m.Set(key, value)
		return nil
	})
}
