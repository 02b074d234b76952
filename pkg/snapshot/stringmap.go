package snapshot

import (
	"github.com/raftzoo/zoocore/pkg/batch"
	"github.com/raftzoo/zoocore/pkg/store"
	"github.com/raftzoo/zoocore/pkg/wire"
)

// SerializeStringMap writes m to path as a sequence of STRINGMAP
// batches. Each record is `key_str | value_str`.
func SerializeStringMap(m *store.GenericMap[string], path string, batchSize int, version batch.SnapshotVersion) error {
	w, err := Open(path, version)
	if err != nil {
		return err
	}
	acc := newBatchAccumulator(w, batch.TypeStringMap, batchSize, "stringmap")

	var forEachErr error
	m.ForEach(func(key string, value string) {
		if forEachErr != nil {
			return
		}
		var buf wire.Buffer
		buf.PutString(key)
		buf.PutString(value)
		forEachErr = acc.Add(buf.Bytes())
	})
	if forEachErr != nil {
		w.Close()
		return forEachErr
	}
	return acc.Finish()
}

// RebuildStringMap replays a STRINGMAP snapshot file into m.
func RebuildStringMap(path string, m *store.GenericMap[string]) error {
	return forEachElement(path, "stringmap", func(elem []byte) error {
		r := wire.NewReader(elem)
		key, err := r.String()
		if err != nil {
			return err
		}
		value, err := r.String()
		if err != nil {
			return err
		}
		m.Set(key, value)
		return nil
	})
}
