package snapshot

import (
	"github.com/raftzoo/zoocore/pkg/batch"
	"github.com/raftzoo/zoocore/pkg/store"
	"github.com/raftzoo/zoocore/pkg/wire"
)

// SerializeACLs writes acls to path as a sequence of ACLMAP batches.
// Each record is `id_u64 | acl_vector` where acl_vector is
// count-prefixed `(perms_u32, scheme_str, id_str)` entries.
func SerializeACLs(acls *store.ACLTable, path string, batchSize int, version batch.SnapshotVersion) error {
	w, err := Open(path, version)
	if err != nil {
		return err
	}
	acc := newBatchAccumulator(w, batch.TypeACLMap, batchSize, "acl")

	var forEachErr error
	acls.ForEach(func(id uint64, entries []store.ACLEntry) {
		if forEachErr != nil {
			return
		}
		var buf wire.Buffer
		buf.PutU64(id)
		buf.PutVectorHeader(len(entries))
		for _, e := range entries {
			buf.PutU32(e.Perms)
			buf.PutString(e.Scheme)
			buf.PutString(e.ID)
		}
		forEachErr = acc.Add(buf.Bytes())
	})
	if forEachErr != nil {
		w.Close()
		return forEachErr
	}
	return acc.Finish()
}

// RebuildACLs replays an ACLMAP snapshot file into acls.
func RebuildACLs(path string, acls *store.ACLTable) error {
	return forEachElement(path, "acl", func(elem []byte) error {
		r := wire.NewReader(elem)
		id, err := r.U64()
		if err != nil {
			return err
		}
		count, err := r.VectorHeader()
		if err != nil {
			return err
		}
		entries := make([]store.ACLEntry, 0, count)
		for i := 0; i < count; i++ {
			perms, err := r.U32()
			if err != nil {
				return err
			}
			scheme, err := r.String()
			if err != nil {
				return err
			}
			id2, err := r.String()
			if err != nil {
				return err
			}
			entries = append(entries, store.ACLEntry{Perms: perms, Scheme: scheme, ID: id2})
		}
		acls.Set(id, entries)
		return nil
	})
}
